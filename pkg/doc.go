// Package pkg provides the core libraries of ghgraph, a force-directed
// explorer for GitHub repositories and their contributors.
//
// # Overview
//
// Starting from a root repository, ghgraph lazily expands the graph on
// demand: a repository expands into its contributors, a contributor into
// the repositories they own. Node positions are animated by a force
// layout. The pkg directory is organized into these areas:
//
//  1. [tree] - Tree model, flattening and the expand/collapse state machine
//  2. [force] - Force layout simulation with warm-start re-binding
//  3. [controller] - Expansion protocol tying tree, layout and fetches together
//  4. [integrations] - GitHub REST client on a shared, rate-limited HTTP client
//  5. [graph] - Positioned snapshot wire format
//  6. [render] - SVG and Graphviz renderers for snapshots
//  7. [session], [inflight], [cache] - Multi-graph hosting infrastructure
//
// # Architecture
//
// The data flow for one toggle:
//
//	user toggles node
//	         ↓
//	    [controller] (pending mark via [inflight], fetch via [integrations])
//	         ↓
//	    [tree] (attach children, flatten, links)
//	         ↓
//	    [force] (re-bind by node id, restart cooling)
//	         ↓
//	    [graph] snapshot → [render] / TUI / web page
//
// # Quick Start
//
// Load a root repository, expand one level and write an SVG:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/ghgraph/pkg/controller"
//	    "github.com/matzehuels/ghgraph/pkg/integrations/github"
//	    "github.com/matzehuels/ghgraph/pkg/render/svg"
//	)
//
//	client := github.NewClient(github.Options{})
//	c, err := controller.New(ctx, client, controller.Options{Repo: "mbostock/d3"})
//	if err != nil {
//	    return err // ROOT_LOAD_FAILED
//	}
//	if err := c.ExpandAll(ctx, 1, 0); err != nil {
//	    log.Warn("some expansions failed", "err", err)
//	}
//	c.Settle(ctx, nil)
//	os.WriteFile("d3.svg", svg.Render(c.Snapshot(), svg.WithTooltips()), 0o644)
//
// [tree]: github.com/matzehuels/ghgraph/pkg/tree
// [force]: github.com/matzehuels/ghgraph/pkg/force
// [controller]: github.com/matzehuels/ghgraph/pkg/controller
// [integrations]: github.com/matzehuels/ghgraph/pkg/integrations
// [graph]: github.com/matzehuels/ghgraph/pkg/graph
// [render]: github.com/matzehuels/ghgraph/pkg/render
// [session]: github.com/matzehuels/ghgraph/pkg/session
// [inflight]: github.com/matzehuels/ghgraph/pkg/inflight
// [cache]: github.com/matzehuels/ghgraph/pkg/cache
package pkg
