package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ghgraph/pkg/controller"
	errs "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/graph"
	"github.com/matzehuels/ghgraph/pkg/inflight"
	"github.com/matzehuels/ghgraph/pkg/tree"
)

const (
	frameInterval = 33 * time.Millisecond
	ticksPerFrame = 3
	plotRows      = 16
	maxPlotCols   = 72
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	plotBorderStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

// exploreCommand creates the interactive graph browser.
func (c *CLI) exploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore [owner/repo]",
		Short: "Browse a repository's graph interactively",
		Long: `Explore opens a terminal browser on the graph around a repository.

Toggling a repository loads its contributors; toggling a contributor loads
their repositories. Toggling an expanded node hides its children, toggling it
again shows them without another request.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			repo, err := repoArg(cfg, args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			spinner := newSpinnerWithContext(ctx, "Loading "+repo)
			spinner.Start()
			ctrl, err := c.newController(ctx, cfg, repo, inflight.NewMemory(cfg.Server.PendingTTL))
			spinner.Stop()
			if err != nil {
				return err
			}

			// Log lines would tear the alternate screen.
			c.Logger.SetOutput(io.Discard)
			defer c.Logger.SetOutput(cmd.ErrOrStderr())

			_, err = tea.NewProgram(newExploreModel(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
}

// =============================================================================
// exploreModel - Interactive graph browser
// =============================================================================

// outlineRow is one visible node in tree order.
type outlineRow struct {
	node  graph.Node
	depth int
}

// toggleDoneMsg carries the result of a toggle run off the UI goroutine.
type toggleDoneMsg struct {
	id     string
	action tree.Action
	err    error
}

// frameMsg advances the layout by one animation frame.
type frameMsg struct{}

type exploreModel struct {
	ctx  context.Context
	ctrl *controller.Controller

	snap    graph.Snapshot
	rows    []outlineRow
	cursor  int
	offset  int
	height  int
	width   int
	ticking bool
	waiting int // toggles still running
	plot    bool

	status string
	err    error
}

func newExploreModel(ctx context.Context, ctrl *controller.Controller) exploreModel {
	m := exploreModel{ctx: ctx, ctrl: ctrl, height: 15, width: 80, plot: true}
	m.refresh()
	m.ticking = m.snap.Hot()
	return m
}

func (m exploreModel) Init() tea.Cmd {
	if m.ticking {
		return nextFrame()
	}
	return nil
}

func (m *exploreModel) startTicking() tea.Cmd {
	if m.ticking || (!m.snap.Hot() && m.waiting == 0) {
		return nil
	}
	m.ticking = true
	return nextFrame()
}

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

func toggleCmd(ctx context.Context, ctrl *controller.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		action, err := ctrl.Toggle(ctx, id)
		return toggleDoneMsg{id: id, action: action, err: err}
	}
}

// refresh re-reads the snapshot and keeps the cursor on the same node.
func (m *exploreModel) refresh() {
	selected := ""
	if m.cursor < len(m.rows) {
		selected = m.rows[m.cursor].node.ID
	}
	m.snap = m.ctrl.Snapshot()
	m.rows = outline(m.snap)
	m.cursor = 0
	for i, r := range m.rows {
		if r.node.ID == selected {
			m.cursor = i
			break
		}
	}
	m.scroll()
}

func (m *exploreModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.scroll()
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				m.scroll()
			}
		case "p":
			m.plot = !m.plot
		case "enter", " ":
			if len(m.rows) == 0 {
				return m, nil
			}
			n := m.rows[m.cursor].node
			if !n.Expandable || n.Pending {
				return m, nil
			}
			m.err = nil
			m.status = "Loading " + n.Tooltip + "..."
			m.waiting++
			// Frames keep running while the toggle is out so its pending
			// mark shows up.
			cmd := tea.Batch(toggleCmd(m.ctx, m.ctrl, n.ID), m.startTicking())
			return m, cmd
		}

	case toggleDoneMsg:
		m.waiting--
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
		} else {
			m.err = nil
			m.status = fmt.Sprintf("%s %s", msg.action, msg.id)
		}
		m.refresh()
		cmd := m.startTicking()
		return m, cmd

	case frameMsg:
		hot := false
		for range ticksPerFrame {
			if hot = m.ctrl.Step(); !hot {
				break
			}
		}
		m.refresh()
		if hot || m.waiting > 0 {
			return m, nextFrame()
		}
		m.ticking = false

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height - 8
		if m.plot {
			m.height -= plotRows + 2
		}
		if m.height < 5 {
			m.height = 5
		}
		m.scroll()
	}
	return m, nil
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(appName + " · " + m.ctrl.Repo()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ toggle  p plot  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.rows) > 0 {
		n := m.rows[m.cursor].node
		b.WriteString(kindStyle(n.Kind).Render(n.Tooltip))
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s · size %d · %s", n.Kind, n.Size, n.State)))
		b.WriteString("\n")
	}
	switch {
	case m.err != nil:
		b.WriteString(StyleError.Render(iconError + " " + errs.UserMessage(m.err)))
	case m.status != "":
		b.WriteString(StyleDim.Render(m.status))
	}
	b.WriteString("\n")

	layout := "settled"
	if m.snap.Hot() {
		layout = fmt.Sprintf("settling α=%.3f", m.snap.Alpha)
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] layout %s", m.cursor+1, len(m.rows), layout)))

	if m.plot {
		selected := ""
		if len(m.rows) > 0 {
			selected = m.rows[m.cursor].node.ID
		}
		b.WriteString("\n")
		b.WriteString(plotBorderStyle.Render(plot(m.snap, min(m.width-2, maxPlotCols), plotRows, selected)))
	}
	return b.String()
}

func (m exploreModel) renderRow(i int) string {
	r := m.rows[i]
	n := r.node

	marker := "·"
	switch {
	case n.Pending:
		marker = "…"
	case n.State == tree.Expanded.String():
		marker = "▾"
	case n.Expandable:
		marker = "▸"
	}

	name := n.Tooltip
	line := strings.Repeat("  ", r.depth) + marker + " "
	if i == m.cursor {
		return listSelectedStyle.Render("› "+line+name) + listDimStyle.Render(fmt.Sprintf("  %d", n.Size))
	}
	return "  " + line + kindStyle(n.Kind).Render(name) + listDimStyle.Render(fmt.Sprintf("  %d", n.Size))
}

// =============================================================================
// Helpers
// =============================================================================

// outline lists the visible nodes depth first from the root, children in
// the order they were fetched.
func outline(s graph.Snapshot) []outlineRow {
	byID := make(map[string]graph.Node, len(s.Nodes))
	for _, n := range s.Nodes {
		byID[n.ID] = n
	}
	children := make(map[string][]string)
	for _, l := range s.Links {
		children[l.Source] = append(children[l.Source], l.Target)
	}

	rows := make([]outlineRow, 0, len(s.Nodes))
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		n, ok := byID[id]
		if !ok {
			return
		}
		rows = append(rows, outlineRow{node: n, depth: depth})
		for _, c := range children[id] {
			walk(c, depth+1)
		}
	}
	walk(s.Root, 0)
	return rows
}

// plot draws node positions on a character grid of cols by rows cells.
// The selected node is drawn with a distinct glyph.
func plot(s graph.Snapshot, cols, rows int, selected string) string {
	if cols < 1 || rows < 1 {
		return ""
	}
	grid := make([][]string, rows)
	for y := range grid {
		grid[y] = make([]string, cols)
		for x := range grid[y] {
			grid[y][x] = " "
		}
	}

	cell := func(v, extent float64, n int) int {
		if extent <= 0 {
			return 0
		}
		i := int(math.Floor(v / extent * float64(n)))
		return max(0, min(n-1, i))
	}
	frameHeight := float64(s.Height - controller.FrameMargin)
	for _, n := range s.Nodes {
		x := cell(n.X, float64(s.Width), cols)
		y := cell(n.Y, frameHeight, rows)
		glyph := "●"
		if n.ID == selected {
			glyph = "◉"
		}
		grid[y][x] = kindStyle(n.Kind).Render(glyph)
	}

	lines := make([]string, rows)
	for y := range grid {
		lines[y] = strings.Join(grid[y], "")
	}
	return strings.Join(lines, "\n")
}
