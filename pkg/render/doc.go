// Package render provides visualization rendering for explored graphs.
//
// # Overview
//
// Every renderer consumes a [graph.Snapshot], the positioned state of a
// graph after (or during) layout:
//
//   - [svg]: native SVG with circles, links and hover tooltips; this is
//     what the explorer draws
//   - [nodelink]: Graphviz DOT with positions pinned to the layout, and
//     SVG rendered from it by neato
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	out := svg.Render(snap, svg.WithTooltips())
//	pdf, err := render.ToPDF(out)
//	png, err := render.ToPNG(out, 2.0)  // 2x scale
//
// [graph.Snapshot]: github.com/matzehuels/ghgraph/pkg/graph.Snapshot
// [svg]: github.com/matzehuels/ghgraph/pkg/render/svg
// [nodelink]: github.com/matzehuels/ghgraph/pkg/render/nodelink
package render
