package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/ghgraph/pkg/graph"
	"github.com/matzehuels/ghgraph/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Labels prints each node's tooltip text under it.
	// When false, nodes are plain circles as in the explorer.
	Labels bool
}

// ToDOT converts a snapshot to Graphviz DOT. Every node is pinned to its
// layout position (y flipped to Graphviz's bottom-up axis), so neato keeps
// the force layout instead of computing its own.
func ToDOT(s graph.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=false;\n")
	fmt.Fprintf(&buf, "  bb=\"0,0,%d,%d\";\n", s.Width, s.Height)
	buf.WriteString("  node [shape=circle, fixedsize=true, style=filled, color=white, penwidth=1.5, fontsize=9, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [color=\"#9ecae1\", penwidth=1.5];\n")
	buf.WriteString("\n")

	for _, n := range s.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, float64(s.Height), opts.Labels), ", "))
	}

	buf.WriteString("\n")
	for _, l := range s.Links {
		fmt.Fprintf(&buf, "  %q -- %q;\n", l.Source, l.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n graph.Node, height float64, labels bool) []string {
	// Graphviz sizes are in inches; keep invisible nodes at least one point wide.
	width := math.Max(2*n.R, 1) / 72
	attrs := []string{
		fmt.Sprintf("pos=\"%.1f,%.1f!\"", n.X, height-n.Y),
		fmt.Sprintf("width=%.4f", width),
		fmt.Sprintf("fillcolor=%q", n.Color),
		fmt.Sprintf("tooltip=%q", n.Tooltip),
		"label=\"\"",
	}
	if labels {
		attrs = append(attrs, fmt.Sprintf("xlabel=%q", n.Tooltip))
	}
	if n.Fixed {
		attrs = append(attrs, "pin=true")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz neato.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
