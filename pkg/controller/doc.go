// Package controller owns one explored graph: the tree of fetched nodes, the
// force simulation laying it out, and the expansion protocol that grows it.
//
// # Lifecycle
//
// [New] loads the root repository. A failure there is fatal for the graph
// and reported as ROOT_LOAD_FAILED. Afterwards the graph only changes through
// [Controller.Toggle]:
//
//   - an unfetched node issues exactly one remote fetch; on success the
//     children are attached, the layout re-bound (bodies keep their
//     positions) and restarted
//   - an expanded node collapses, keeping its children cached
//   - a collapsed node re-expands from the cache without a fetch
//
// A failed fetch leaves the tree untouched, so the node can be toggled
// again. Listeners receive [Listener.OnExpansionFailed] and Toggle returns
// an EXPANSION_FAILED error.
//
// # Concurrency
//
// All methods are safe for concurrent use. Remote fetches run without the
// controller lock; while one is in flight the node is marked pending in the
// [inflight.Guard] and a second toggle returns PENDING. Identical fetches
// issued concurrently (the same user under two repositories) share one
// request.
//
// [inflight.Guard]: github.com/matzehuels/ghgraph/pkg/inflight.Guard
package controller
