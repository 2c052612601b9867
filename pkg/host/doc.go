// Package host runs layout computations on a dedicated worker goroutine.
//
// A [Host] owns one worker. Callers talk to it only through messages:
//
//   - compute carries JSON layout parameters and a JSON graph snapshot. The
//     worker decodes both, looks the strategy up by layoutName, runs the
//     previous computation's onCleanup callback, applies the strategy to its
//     own copy of the graph and replies with the positions and edge points.
//   - invoke names a lifecycle callback and carries JSON arguments.
//   - close cleans up and stops the worker.
//
// Strategy hooks are closures over worker-local state, so they never leave
// the worker. The worker keeps them in a callback table keyed by name
// (onAddNode, onAddEdge, onStartDrag, onMove, onEndDrag, onCleanup) and
// replaces the table on every compute. Invoking a name that is not in the
// table logs a warning and does nothing: not every strategy supports every
// hook.
//
// Incremental updates from running simulations go through a [Coalescer]:
// updates that arrive while the previous one is still being applied are
// merged, last write winning per node, and applied by a single goroutine.
//
// Every request gets a UUID that appears in the host's log lines.
package host
