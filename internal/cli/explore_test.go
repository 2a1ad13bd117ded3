package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/ghgraph/pkg/controller"
	errs "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/graph"
	"github.com/matzehuels/ghgraph/pkg/integrations/github"
)

type fakeFetcher struct{}

func (fakeFetcher) FetchRepo(_ context.Context, fullName string) (*github.Repo, error) {
	return &github.Repo{ID: 1, FullName: fullName, Watchers: 16}, nil
}

func (fakeFetcher) FetchContributors(context.Context, string) ([]github.Contributor, error) {
	return []github.Contributor{
		{ID: 5, Login: "alice", Type: "User", Contributions: 4},
		{Type: github.ContributorAnonymous, Contributions: 1},
		{ID: 7, Login: "carol", Type: "User", Contributions: 9},
	}, nil
}

func (fakeFetcher) FetchUserRepos(_ context.Context, login string) ([]github.Repo, error) {
	return []github.Repo{{ID: 11, FullName: login + "/one", Watchers: 2}}, nil
}

func testModel(t *testing.T) exploreModel {
	t.Helper()
	ctrl, err := controller.New(context.Background(), fakeFetcher{}, controller.Options{
		Repo:   "mbostock/d3",
		Seed:   1,
		Logger: log.New(io.Discard),
	})
	if err != nil {
		t.Fatal(err)
	}
	return newExploreModel(context.Background(), ctrl)
}

// run executes cmd and returns the toggle result among its messages.
func runToggle(t *testing.T, cmd tea.Cmd) toggleDoneMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	switch msg := cmd().(type) {
	case toggleDoneMsg:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if done, ok := c().(toggleDoneMsg); ok {
				return done
			}
		}
	}
	t.Fatal("command did not toggle")
	return toggleDoneMsg{}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestExploreToggleRoundTrip(t *testing.T) {
	m := testModel(t)
	if len(m.rows) != 1 {
		t.Fatalf("initial rows = %d, want 1", len(m.rows))
	}

	next, cmd := m.Update(key("enter"))
	m = next.(exploreModel)
	done := runToggle(t, cmd)
	if done.err != nil || done.action.String() != "fetch" {
		t.Fatalf("toggle = %+v", done)
	}
	next, _ = m.Update(done)
	m = next.(exploreModel)

	if len(m.rows) != 4 {
		t.Fatalf("rows after expand = %d, want 4", len(m.rows))
	}
	if m.rows[0].node.ID != "1" || m.rows[1].node.ID != "1-5" || m.rows[1].depth != 1 {
		t.Errorf("outline order: %+v", m.rows)
	}
	if m.cursor != 0 {
		t.Errorf("cursor moved to %d, want to stay on the root", m.cursor)
	}

	// Collapse again: one row, no fetch.
	next, cmd = m.Update(key(" "))
	m = next.(exploreModel)
	done = runToggle(t, cmd)
	next, _ = m.Update(done)
	m = next.(exploreModel)
	if done.action.String() != "collapse" || len(m.rows) != 1 {
		t.Errorf("collapse: action %s, rows %d", done.action, len(m.rows))
	}
}

func TestExploreAnonymousNotToggled(t *testing.T) {
	m := testModel(t)
	next, cmd := m.Update(key("enter"))
	m = next.(exploreModel)
	next, _ = m.Update(runToggle(t, cmd))
	m = next.(exploreModel)

	// rows: root, alice, anonymous, carol
	for range 2 {
		next, _ = m.Update(key("down"))
		m = next.(exploreModel)
	}
	if m.rows[m.cursor].node.Tooltip != "anonymous" {
		t.Fatalf("cursor on %q, want the anonymous contributor", m.rows[m.cursor].node.Tooltip)
	}
	if _, cmd := m.Update(key("enter")); cmd != nil {
		t.Error("toggling an anonymous contributor should do nothing")
	}
}

func TestExploreShowsErrors(t *testing.T) {
	m := testModel(t)
	next, _ := m.Update(toggleDoneMsg{id: "1", err: errs.New(errs.ErrCodeExpansionFailed, "expand 1")})
	m = next.(exploreModel)
	if !strings.Contains(m.View(), "expand 1") {
		t.Error("view does not show the failure")
	}
}

func TestExploreFramesCoolDown(t *testing.T) {
	m := testModel(t)
	var cmd tea.Cmd
	for i := 0; i < 200; i++ {
		var next tea.Model
		next, cmd = m.Update(frameMsg{})
		m = next.(exploreModel)
		if cmd == nil {
			break
		}
	}
	if cmd != nil || m.ticking {
		t.Error("frames should stop once the layout settles")
	}
	if m.snap.Hot() {
		t.Errorf("alpha = %v after settling", m.snap.Alpha)
	}
	if !strings.Contains(m.View(), "layout settled") {
		t.Error("view does not report the settled layout")
	}
}

func TestExploreQuit(t *testing.T) {
	m := testModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not return tea.Quit")
	}
}

func TestOutline(t *testing.T) {
	s := graph.Snapshot{
		Root: "1",
		Nodes: []graph.Node{
			{ID: "1-5-11"}, {ID: "1-5"}, {ID: "1-7"}, {ID: "1"},
		},
		Links: []graph.Link{
			{Source: "1-5", Target: "1-5-11"},
			{Source: "1", Target: "1-5"},
			{Source: "1", Target: "1-7"},
		},
	}
	rows := outline(s)
	var got []string
	for _, r := range rows {
		got = append(got, strings.Repeat(">", r.depth)+r.node.ID)
	}
	if want := "1 >1-5 >>1-5-11 >1-7"; strings.Join(got, " ") != want {
		t.Errorf("outline = %q, want %q", strings.Join(got, " "), want)
	}
}

func TestPlot(t *testing.T) {
	s := graph.Snapshot{
		Width:  1200,
		Height: 600,
		Nodes: []graph.Node{
			{ID: "1", Kind: "repo", X: 600, Y: 220},
			{ID: "far", Kind: "user", X: 5000, Y: -40},
		},
	}
	out := plot(s, 40, 10, "1")
	lines := strings.Split(out, "\n")
	if len(lines) != 10 {
		t.Fatalf("plot has %d rows, want 10", len(lines))
	}
	if !strings.Contains(out, "◉") || !strings.Contains(out, "●") {
		t.Error("plot should draw the selected node and the clamped one")
	}
	if plot(s, 0, 10, "") != "" {
		t.Error("empty grid should draw nothing")
	}
}
