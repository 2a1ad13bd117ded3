package tree

import (
	"fmt"
	"math"
	"strconv"
)

// Separator joins a parent id and a child's remote id.
const Separator = "-"

// BranchRadius is the drawn radius of any node whose children are visible.
const BranchRadius = 4.5

// Kind distinguishes repository nodes from user nodes.
type Kind int

const (
	KindRepo Kind = iota
	KindUser
)

// String returns "repo" or "user".
func (k Kind) String() string {
	switch k {
	case KindRepo:
		return "repo"
	case KindUser:
		return "user"
	default:
		return "unknown"
	}
}

// Opposite returns the kind of this kind's children.
func (k Kind) Opposite() Kind {
	if k == KindRepo {
		return KindUser
	}
	return KindRepo
}

// ParseKind is the inverse of [Kind.String].
func ParseKind(s string) (Kind, error) {
	switch s {
	case "repo":
		return KindRepo, nil
	case "user":
		return KindUser, nil
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

// State is the expansion state of a node.
type State int

const (
	Unfetched State = iota
	Expanded
	Collapsed
)

func (s State) String() string {
	switch s {
	case Unfetched:
		return "unfetched"
	case Expanded:
		return "expanded"
	case Collapsed:
		return "collapsed"
	default:
		return "invalid"
	}
}

// Node is a repository or user in the explored graph.
//
// Children are stored once and exposed according to the node's state, so a
// node can never hold visible and cached children at the same time.
type Node struct {
	ID        string
	Kind      Kind
	Size      int    // watchers for repos, contributions for users
	Label     string // full_name for repos, login for users
	RemoteID  int64
	Anonymous bool
	Fixed     bool

	state State
	kids  []*Node
}

// Record is the validated remote data a child node is built from.
type Record struct {
	RemoteID  int64
	Label     string
	Size      int
	Anonymous bool
}

// State returns the node's expansion state.
func (n *Node) State() State { return n.state }

// Fetched reports whether the node's children have been fetched at least once.
func (n *Node) Fetched() bool { return n.state != Unfetched }

// Children returns the visible children, or nil unless the node is expanded.
func (n *Node) Children() []*Node {
	if n.state != Expanded {
		return nil
	}
	return n.kids
}

// Cached returns the hidden children of a collapsed node, or nil.
func (n *Node) Cached() []*Node {
	if n.state != Collapsed {
		return nil
	}
	return n.kids
}

// HasVisibleChildren reports whether at least one child is currently shown.
func (n *Node) HasVisibleChildren() bool { return len(n.Children()) > 0 }

// Expandable reports whether a fetch for this node's children can be issued.
// Anonymous contributors have no login to look up.
func (n *Node) Expandable() bool { return !n.Anonymous && n.Label != "" }

// Tooltip returns the hover text shown for the node.
func (n *Node) Tooltip() string {
	switch {
	case n.Kind == KindRepo:
		return n.Label
	case n.Label != "":
		return n.Label
	default:
		return "anonymous"
	}
}

// Radius maps a node to its drawn radius. Size scales with area, so a leaf's
// radius grows with the square root of its size.
func Radius(n *Node) float64 {
	if n.HasVisibleChildren() {
		return BranchRadius
	}
	if n.Size <= 0 {
		return 0
	}
	return math.Sqrt(float64(n.Size)) / 2
}

// ChildID derives the id of the index-th child of parentID. Records without
// a remote id (anonymous contributors) fall back to their position.
func ChildID(parentID string, remoteID int64, index int) string {
	if remoteID <= 0 {
		return parentID + Separator + "anon" + strconv.Itoa(index)
	}
	return parentID + Separator + strconv.FormatInt(remoteID, 10)
}
