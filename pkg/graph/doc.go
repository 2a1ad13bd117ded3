// Package graph provides the serialization format for explored graphs.
//
// This package defines the wire format of a rendered graph state, used for
// the JSON output of `ghgraph render`, the web API and the browser client.
//
// # Architecture
//
// The package sits at the serialization boundary between the internal
// representations and external formats:
//
//   - [Snapshot], [Node], [Link]: Serialization types (this package)
//   - pkg/tree.Tree: Internal node hierarchy and expansion state
//   - pkg/force.Frame: Body positions of the layout
//
// [FromLayout] joins the last two into a [Snapshot].
//
// # Snapshot Serialization
//
//	{
//	  "root": "943149",
//	  "width": 1200,
//	  "height": 600,
//	  "alpha": 0,
//	  "nodes": [
//	    {"id": "943149-5", "kind": "user", "tooltip": "alice", "x": 612.4, ...},
//	    {"id": "943149", "kind": "repo", "tooltip": "mbostock/d3", "fixed": true, ...}
//	  ],
//	  "links": [{"source": "943149", "target": "943149-5", "x1": 600, ...}]
//	}
//
// Common operations:
//
//	graph.WriteSnapshotFile(snap, "graph.json")   // Snapshot → File
//	data, _ := graph.MarshalSnapshot(snap)         // Snapshot → []byte
//	snap, _ := graph.ReadSnapshotFile("graph.json") // File → Snapshot (validated)
//
// # Colours
//
// Nodes are filled by kind: repositories [ColorRepo], users [ColorUser],
// anything else [ColorUnknown].
package graph
