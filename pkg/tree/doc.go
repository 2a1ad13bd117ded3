// Package tree holds the in-memory model of the explored part of the GitHub
// graph.
//
// A [Tree] is rooted at a repository. Every [Node] is either a repository or a
// user, and kinds alternate with depth: a repository's children are its
// contributors, a user's children are the repositories the user owns.
//
// # Node State
//
// Each node is in exactly one of three states:
//
//	Unfetched   children never requested
//	Expanded    children fetched and visible
//	Collapsed   children fetched but hidden (kept for re-expansion)
//
// [Toggle] computes the transition for a user click; [Attach] installs the
// result of a fetch. Hidden children are never discarded, so a collapsed node
// re-expands without another request.
//
// # Flattening
//
// Layout and rendering operate on flat collections. [Flatten] walks the
// visible part of the tree (children before their parent, root last) and
// [Links] derives one edge per visible parent/child pair. Both are
// recomputed from scratch on every call.
//
// # Concurrency
//
// A Tree is not safe for concurrent use; callers serialize access (see
// pkg/controller).
package tree
