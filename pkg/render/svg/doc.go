// Package svg draws explored graphs as SVG.
//
// Nodes become circles filled by kind (repositories blue, users red) whose
// radius follows the node's size; links become straight lines between the
// current node positions. Every circle carries its tooltip (full name,
// login or "anonymous") as a <title> element and in data-tooltip, plus its
// id and expansion state as data attributes so that a page script can wire
// clicks back to the server.
//
//	out := svg.Render(snap, svg.WithTooltips())
package svg
