// Package force is a velocity-Verlet force simulation in the style of
// d3-force, shared by the marketing and spring strategies.
//
// A [Simulation] owns a slice of [Node] values and a set of named [Force]
// implementations. Each tick cools the simulation's alpha toward its target,
// lets every force adjust node velocities, then applies velocity decay and
// moves the nodes. Pinned nodes (FX/FY set) stay where they were put.
//
// Ticks can be driven synchronously with [Simulation.Tick] (one-shot
// layouts) or on a background goroutine with [Simulation.Start] (continuous
// layouts). All exported methods are safe for concurrent use.
//
// Forces available: [Link], [ManyBody] (Barnes-Hut via gonum's spatial
// packages), [Collide], [Center], [PositionX], [PositionY], [Radial] and
// [ClusterRepel].
package force
