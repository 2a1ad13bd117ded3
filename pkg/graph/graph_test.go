package graph

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/ghgraph/pkg/force"
	"github.com/matzehuels/ghgraph/pkg/tree"
)

func sampleTree(t *testing.T) (*tree.Tree, []*tree.Node) {
	t.Helper()
	tr := tree.New(tree.KindRepo, tree.Record{RemoteID: 1, Label: "mbostock/d3", Size: 16})
	kids, err := tr.Attach(tr.Root(), []tree.Record{
		{RemoteID: 5, Label: "alice", Size: 16},
		{Label: "", Size: 3, Anonymous: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	return tr, kids
}

func TestFromLayout(t *testing.T) {
	tr, _ := sampleTree(t)
	nodes := tree.Flatten(tr.Root())
	links := tree.Links(nodes)
	frame := force.Frame{
		Alpha: 0.05,
		Positions: map[string]force.Point{
			"1":       {X: 600, Y: 220},
			"1-5":     {X: 630, Y: 220},
			"1-anon1": {X: 570, Y: 210},
		},
	}

	s := FromLayout(nodes, links, frame)

	if s.Root != "1" {
		t.Errorf("Root = %q, want 1", s.Root)
	}
	if len(s.Nodes) != 3 || len(s.Links) != 2 {
		t.Fatalf("got %d nodes, %d links", len(s.Nodes), len(s.Links))
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if !s.Hot() {
		t.Error("alpha 0.05 should be hot")
	}

	root, _ := s.Find("1")
	if root.R != tree.BranchRadius || root.Color != ColorRepo || !root.Fixed || root.State != "expanded" {
		t.Errorf("root = %+v", root)
	}
	alice, _ := s.Find("1-5")
	if alice.R != 2 || alice.Color != ColorUser || alice.Tooltip != "alice" || !alice.Expandable {
		t.Errorf("alice = %+v", alice)
	}
	anon, _ := s.Find("1-anon1")
	if anon.Tooltip != "anonymous" || anon.Expandable {
		t.Errorf("anonymous = %+v", anon)
	}

	for _, l := range s.Links {
		to := frame.Positions[l.Target]
		if l.Source != "1" || l.X1 != 600 || l.X2 != to.X || l.Y2 != to.Y {
			t.Errorf("link = %+v", l)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		snap    Snapshot
		wantErr string
	}{
		{"empty", Snapshot{}, ""},
		{"ok", Snapshot{Root: "r", Nodes: []Node{{ID: "r-1"}, {ID: "r"}}, Links: []Link{{Source: "r", Target: "r-1"}}}, ""},
		{"missing id", Snapshot{Root: "r", Nodes: []Node{{}, {ID: "r"}}}, "without id"},
		{"duplicate", Snapshot{Root: "r", Nodes: []Node{{ID: "r"}, {ID: "r"}}}, "duplicate"},
		{"dangling link", Snapshot{Root: "r", Nodes: []Node{{ID: "r"}}, Links: []Link{{Source: "r", Target: "x"}}}, "unknown target"},
		{"root not last", Snapshot{Root: "r", Nodes: []Node{{ID: "r"}, {ID: "r-1"}}}, "not the last"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	tr, _ := sampleTree(t)
	nodes := tree.Flatten(tr.Root())
	s := FromLayout(nodes, tree.Links(nodes), force.Frame{Positions: map[string]force.Point{}})
	s.Width, s.Height = 1200, 600

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteSnapshotFile(s, path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadSnapshotFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Root != s.Root || len(got.Nodes) != len(s.Nodes) || got.Width != 1200 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestReadSnapshotRejectsInvalid(t *testing.T) {
	tests := []string{
		`{not json`,
		`{"root":"r","nodes":[{"id":"r"}],"links":[{"source":"r","target":"gone"}]}`,
	}
	for _, in := range tests {
		if _, err := ReadSnapshot(strings.NewReader(in)); err == nil {
			t.Errorf("ReadSnapshot(%q) should fail", in)
		}
	}
}

func TestWriteSnapshotEmptyArrays(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSnapshot(Snapshot{}, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"nodes": []`) || !strings.Contains(out, `"links": []`) {
		t.Errorf("empty snapshot should encode empty arrays, got %s", out)
	}
}
