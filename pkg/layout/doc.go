// Package layout defines the contract shared by every layout strategy.
//
// A strategy implements [Layout]: given the simulation graph it returns a
// [Result] holding node positions, optional edge bend points, and optional
// lifecycle [Hooks] for strategies that keep running after Apply returns.
// Strategies live in sub-packages (circular, custom, forceatlas2, fcose,
// planar, marketing, spring); package strategy maps a [Params] value to the
// matching implementation.
//
// # Parameters
//
// Each strategy has one immutable parameter struct ([CircularParams],
// [SpringParams], ...). Factories such as [NewSpringParams] return the
// defaults. [Encode] and [Decode] give the JSON form used across the host
// boundary and in parameter files; the strategy is named by the layoutName
// field (layout_type is accepted when decoding):
//
//	{"layoutName": "spring", "nodeSize": 12, "group": "extras.team"}
//
// Fields missing from the JSON keep their defaults.
//
// # Ticks
//
// Continuous strategies report intermediate positions through a [TickFunc].
// Callbacks run on the strategy's goroutine and must not block.
package layout
