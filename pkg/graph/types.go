package graph

import (
	"fmt"

	"github.com/matzehuels/ghgraph/pkg/force"
	"github.com/matzehuels/ghgraph/pkg/tree"
)

// Node fill colours by kind.
const (
	ColorRepo    = "#3498DB"
	ColorUser    = "#E74C3C"
	ColorUnknown = "#F0F"
)

// Color returns the fill colour for a node kind ("repo", "user").
func Color(kind string) string {
	switch kind {
	case tree.KindRepo.String():
		return ColorRepo
	case tree.KindUser.String():
		return ColorUser
	default:
		return ColorUnknown
	}
}

// =============================================================================
// Snapshot - Rendered Graph State
// =============================================================================

// Snapshot is the serialization format for one frame of an explored graph.
// Used for API responses, the render command's JSON output and the web
// client, which redraws from it.
//
// Nodes are listed in flatten order (each node after its visible
// descendants, root last); links reference node ids.
type Snapshot struct {
	Instance string  `json:"instance,omitempty"`
	Root     string  `json:"root"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Alpha    float64 `json:"alpha"`
	Nodes    []Node  `json:"nodes"`
	Links    []Link  `json:"links"`
}

// Node is a positioned, styled graph node.
type Node struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	Label      string  `json:"label,omitempty"`
	Tooltip    string  `json:"tooltip"`
	Size       int     `json:"size"`
	State      string  `json:"state"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	R          float64 `json:"r"`
	Color      string  `json:"color"`
	Fixed      bool    `json:"fixed,omitempty"`
	Expandable bool    `json:"expandable,omitempty"` // a toggle would do something
	Pending    bool    `json:"pending,omitempty"`    // a fetch is in flight
}

// Link is an edge between two visible nodes, with resolved endpoints.
type Link struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
}

// Hot reports whether the layout was still moving when the snapshot was taken.
func (s Snapshot) Hot() bool { return s.Alpha >= force.AlphaMin }

// Find returns the node with the given id.
func (s Snapshot) Find(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Validate checks structural consistency: unique node ids, links between
// known nodes, and a root that is listed last.
func (s Snapshot) Validate() error {
	ids := make(map[string]struct{}, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node without id")
		}
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("duplicate node %q", n.ID)
		}
		ids[n.ID] = struct{}{}
	}
	for _, l := range s.Links {
		if _, ok := ids[l.Source]; !ok {
			return fmt.Errorf("link %s->%s: unknown source", l.Source, l.Target)
		}
		if _, ok := ids[l.Target]; !ok {
			return fmt.Errorf("link %s->%s: unknown target", l.Source, l.Target)
		}
	}
	if len(s.Nodes) > 0 && s.Nodes[len(s.Nodes)-1].ID != s.Root {
		return fmt.Errorf("root %q is not the last node", s.Root)
	}
	return nil
}

// =============================================================================
// Tree + Frame → Snapshot
// =============================================================================

// FromLayout builds a snapshot from the flattened visible nodes, their links
// and the simulation frame holding their positions. Root, dimensions and
// pending flags are left for the caller to fill in.
func FromLayout(nodes []*tree.Node, links []tree.Link, frame force.Frame) Snapshot {
	s := Snapshot{
		Alpha: frame.Alpha,
		Nodes: make([]Node, len(nodes)),
		Links: make([]Link, len(links)),
	}
	for i, n := range nodes {
		p := frame.Positions[n.ID]
		s.Nodes[i] = Node{
			ID:         n.ID,
			Kind:       n.Kind.String(),
			Label:      n.Label,
			Tooltip:    n.Tooltip(),
			Size:       n.Size,
			State:      n.State().String(),
			X:          p.X,
			Y:          p.Y,
			R:          tree.Radius(n),
			Color:      Color(n.Kind.String()),
			Fixed:      n.Fixed,
			Expandable: n.Fetched() || n.Expandable(),
		}
	}
	if len(nodes) > 0 {
		s.Root = nodes[len(nodes)-1].ID
	}
	for i, l := range links {
		from, to := frame.Positions[l.Source.ID], frame.Positions[l.Target.ID]
		s.Links[i] = Link{
			Source: l.Source.ID,
			Target: l.Target.ID,
			X1:     from.X,
			Y1:     from.Y,
			X2:     to.X,
			Y2:     to.Y,
		}
	}
	return s
}
