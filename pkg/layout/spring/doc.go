// Package spring runs a continuous force simulation with live dragging.
//
// Apply starts a [Session] and returns immediately with the initial
// placement. The session ticks on its own goroutine, streaming every tick
// through the layout.TickFunc, until it cools down or OnCleanup stops it.
// Sessions share no state: two layouts may run side by side.
//
// # Forces
//
// Edges act as springs of LinkDistance, every node repels every other with
// ChargeStrength, collisions keep NodeSize+CollidePadding apart and the
// drawing is kept centred. With Group set, nodes sharing a group value are
// linked to the group's first member at GroupLinkDistance, and groups repel
// each other until their first members are ClusterDistance apart. With
// tiers set, tiered nodes are pulled to their tier's level.
//
// # Interaction
//
//   - OnStartDrag raises the alpha target to 0.3 and restarts ticking.
//   - OnMove pins one node. Moving a different node releases the previous one.
//   - OnEndDrag releases the node and lets the simulation cool.
//   - OnAddNode and OnAddEdge re-import the graph after DebounceMillis of
//     quiet. Existing nodes keep position and velocity; the simulation
//     restarts with the new node set.
//   - OnCleanup stops ticking for good.
package spring
