package tree

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrUnknownNode is returned when a node is not part of the tree.
	ErrUnknownNode = errors.New("node not in tree")

	// ErrAlreadyFetched is returned by [Tree.Attach] for a node whose
	// children were fetched before.
	ErrAlreadyFetched = errors.New("children already fetched")

	// ErrDuplicateID is returned when a fetched child would reuse an id.
	ErrDuplicateID = errors.New("duplicate node id")
)

// Action is the effect of toggling a node.
type Action int

const (
	// ActionFetch means the node's children must be fetched; the node is unchanged.
	ActionFetch Action = iota
	// ActionCollapse means the visible children were hidden.
	ActionCollapse
	// ActionExpand means cached children were shown again without a fetch.
	ActionExpand
)

func (a Action) String() string {
	switch a {
	case ActionFetch:
		return "fetch"
	case ActionCollapse:
		return "collapse"
	case ActionExpand:
		return "expand"
	default:
		return "invalid"
	}
}

// Link connects a visible parent to one of its visible children.
type Link struct {
	Source *Node
	Target *Node
}

// Tree is a rooted tree of nodes with an id index.
type Tree struct {
	root  *Node
	index map[string]*Node
}

// New creates a tree holding only a root built from rec. The root's id is
// its remote id (or its label when the remote id is unknown) and the root
// is pinned in place by the layout.
func New(kind Kind, rec Record) *Tree {
	id := rec.Label
	if rec.RemoteID != 0 {
		id = strconv.FormatInt(rec.RemoteID, 10)
	}
	root := &Node{
		ID:        id,
		Kind:      kind,
		Size:      rec.Size,
		Label:     rec.Label,
		RemoteID:  rec.RemoteID,
		Anonymous: rec.Anonymous,
		Fixed:     true,
	}
	return &Tree{root: root, index: map[string]*Node{id: root}}
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Len returns the number of nodes ever attached, hidden ones included.
func (t *Tree) Len() int { return len(t.index) }

// Find looks a node up by id, including nodes hidden under collapsed parents.
func (t *Tree) Find(id string) (*Node, bool) {
	n, ok := t.index[id]
	return n, ok
}

// Walk visits every node in pre-order, descending into hidden children too.
// Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	var visit func(n *Node, depth int) bool
	visit = func(n *Node, depth int) bool {
		if !fn(n, depth) {
			return false
		}
		for _, c := range n.kids {
			if !visit(c, depth+1) {
				return false
			}
		}
		return true
	}
	visit(t.root, 0)
}

// Attach installs the fetched children of n, replacing nothing: n must be
// unfetched. Children get the opposite kind of n and ids prefixed with n's
// id. On error the tree is left untouched.
func (t *Tree) Attach(n *Node, records []Record) ([]*Node, error) {
	if cur, ok := t.index[n.ID]; !ok || cur != n {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, n.ID)
	}
	if n.Fetched() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyFetched, n.ID)
	}

	kids := make([]*Node, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		id := ChildID(n.ID, rec.RemoteID, i)
		if _, dup := t.index[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
		kids = append(kids, &Node{
			ID:        id,
			Kind:      n.Kind.Opposite(),
			Size:      rec.Size,
			Label:     rec.Label,
			RemoteID:  rec.RemoteID,
			Anonymous: rec.Anonymous,
		})
	}

	for _, k := range kids {
		t.index[k.ID] = k
	}
	n.kids = kids
	n.state = Expanded
	return kids, nil
}

// Toggle applies a click on n. Unfetched nodes are left as they are and
// [ActionFetch] is returned; the caller fetches and calls [Tree.Attach].
func Toggle(n *Node) Action {
	switch n.state {
	case Unfetched:
		return ActionFetch
	case Expanded:
		n.state = Collapsed
		return ActionCollapse
	default:
		n.state = Expanded
		return ActionExpand
	}
}

// Flatten lists the visible nodes under root. Each node follows all of its
// visible descendants, so root is always last.
func Flatten(root *Node) []*Node {
	var nodes []*Node
	var recurse func(n *Node)
	recurse = func(n *Node) {
		for _, c := range n.Children() {
			recurse(c)
		}
		nodes = append(nodes, n)
	}
	recurse(root)
	return nodes
}

// Links derives one link per visible parent/child pair among nodes.
func Links(nodes []*Node) []Link {
	var links []Link
	for _, n := range nodes {
		for _, c := range n.Children() {
			links = append(links, Link{Source: n, Target: c})
		}
	}
	return links
}
