package svg

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/ghgraph/pkg/graph"
)

const graphCSS = `
    circle.node { cursor: pointer; stroke: #fff; stroke-width: 1.5px; }
    circle.node.pending { stroke: #999; stroke-dasharray: 2,2; }
    line.link { fill: none; stroke: #9ecae1; stroke-width: 1.5px; }`

const tooltipCSS = `
    #chart-tooltip { pointer-events: none; transition: opacity 0.15s ease; }
    #chart-tooltip rect { fill: #fff; stroke: #ccc; }
    #chart-tooltip text { font: 12px sans-serif; fill: #333; }`

const tooltipJS = `
    const svg = document.currentScript ? document.currentScript.ownerSVGElement : document.querySelector('svg');
    const tip = document.getElementById('chart-tooltip');
    const label = tip.querySelector('text');
    const box = tip.querySelector('rect');
    document.querySelectorAll('circle.node').forEach(el => {
      el.addEventListener('mouseover', () => {
        label.textContent = el.dataset.tooltip;
        const bb = label.getBBox();
        box.setAttribute('width', (bb.width + 12).toFixed(1));
        tip.setAttribute('opacity', '0.9');
      });
      el.addEventListener('mousemove', e => {
        const pt = svg.createSVGPoint();
        pt.x = e.clientX; pt.y = e.clientY;
        const p = pt.matrixTransform(svg.getScreenCTM().inverse());
        tip.setAttribute('transform', 'translate(' + (p.x + 10).toFixed(1) + ',' + (p.y - 28).toFixed(1) + ')');
      });
      el.addEventListener('mouseout', () => tip.setAttribute('opacity', '0'));
    });`

// Option configures SVG rendering.
type Option func(*renderer)

type renderer struct {
	tooltips   bool
	background string
	labels     bool
}

// WithTooltips adds the hover tooltip overlay and its script. Without it
// tooltips are still available as native <title> elements.
func WithTooltips() Option { return func(r *renderer) { r.tooltips = true } }

// WithBackground fills the canvas with color.
func WithBackground(color string) Option { return func(r *renderer) { r.background = color } }

// WithLabels prints the tooltip text next to every node with visible children.
func WithLabels() Option { return func(r *renderer) { r.labels = true } }

// Render draws the snapshot as a standalone SVG document. Links are drawn
// first so nodes stay on top of them.
func Render(s graph.Snapshot, opts ...Option) []byte {
	var r renderer
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		s.Width, s.Height, s.Width, s.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", graphCSS)
	if r.background != "" {
		fmt.Fprintf(&buf, "  <rect width=\"100%%\" height=\"100%%\" fill=\"%s\"/>\n", html.EscapeString(r.background))
	}

	buf.WriteString("  <g class=\"links\">\n")
	for _, l := range s.Links {
		renderLink(&buf, l)
	}
	buf.WriteString("  </g>\n  <g class=\"nodes\">\n")
	for _, n := range s.Nodes {
		renderNode(&buf, n)
	}
	buf.WriteString("  </g>\n")

	if r.labels {
		renderLabels(&buf, s.Nodes)
	}
	if r.tooltips {
		renderTooltip(&buf)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderLink(buf *bytes.Buffer, l graph.Link) {
	fmt.Fprintf(buf, "    <line class=\"link\" data-source=\"%s\" data-target=\"%s\" x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n",
		html.EscapeString(l.Source), html.EscapeString(l.Target), l.X1, l.Y1, l.X2, l.Y2)
}

func renderNode(buf *bytes.Buffer, n graph.Node) {
	class := "node " + n.Kind
	if n.Pending {
		class += " pending"
	}
	tip := html.EscapeString(n.Tooltip)
	fmt.Fprintf(buf, "    <circle class=\"%s\" id=\"node-%s\" data-id=\"%s\" data-state=\"%s\" data-tooltip=\"%s\" cx=\"%.1f\" cy=\"%.1f\" r=\"%.2f\" style=\"fill: %s\"><title>%s</title></circle>\n",
		class, html.EscapeString(n.ID), html.EscapeString(n.ID), n.State, tip, n.X, n.Y, n.R, n.Color, tip)
}

func renderLabels(buf *bytes.Buffer, nodes []graph.Node) {
	buf.WriteString("  <g class=\"labels\" font-family=\"sans-serif\" font-size=\"10\" fill=\"#555\">\n")
	for _, n := range nodes {
		if n.State != "expanded" {
			continue
		}
		fmt.Fprintf(buf, "    <text x=\"%.1f\" y=\"%.1f\">%s</text>\n", n.X+n.R+3, n.Y+3, html.EscapeString(n.Tooltip))
	}
	buf.WriteString("  </g>\n")
}

func renderTooltip(buf *bytes.Buffer) {
	buf.WriteString("  <g id=\"chart-tooltip\" opacity=\"0\"><rect x=\"0\" y=\"0\" height=\"20\" width=\"0\" rx=\"3\"/><text x=\"6\" y=\"14\"></text></g>\n")
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", tooltipCSS)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", tooltipJS)
}
