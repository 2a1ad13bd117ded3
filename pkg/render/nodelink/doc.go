// Package nodelink renders explored graphs through Graphviz.
//
// # Overview
//
// The force layout already decided where every node goes, so the DOT
// produced here pins each node with pos="x,y!" and lets neato only draw.
// This gives a second, Graphviz-native rendering of the same picture that
// can be post-processed with standard Graphviz tooling.
//
// # Usage
//
//	dot := nodelink.ToDOT(snap, nodelink.Options{Labels: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # DOT Format
//
// The generated DOT is an undirected graph with layout=neato and
// inputscale=72, so positions are given in points like the SVG renderer's.
// Circles are fixed-size, filled by kind, and carry their tooltip text.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
