package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/matzehuels/ghgraph/pkg/tree"
)

// ExpandAll expands every expandable node down to depth levels below the
// root, level by level. It stops early once limit nodes are visible; a
// non-positive limit means no limit. Failed expansions are skipped and
// returned joined, so a partial graph is still usable.
func (c *Controller) ExpandAll(ctx context.Context, depth, limit int) error {
	var failed []error
	for level := range depth {
		for _, id := range c.frontier(level) {
			if err := ctx.Err(); err != nil {
				return err
			}
			if limit > 0 && c.Visible() >= limit {
				c.logger.Debug("Node limit reached", "limit", limit)
				return errors.Join(failed...)
			}
			if _, err := c.Toggle(ctx, id); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed = append(failed, err)
			}
		}
	}
	return errors.Join(failed...)
}

// frontier lists the visible, unfetched, expandable nodes at the given
// depth below the root.
func (c *Controller) frontier(level int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ids []string
	for _, n := range c.nodes {
		if n.Fetched() || !n.Expandable() {
			continue
		}
		if strings.Count(n.ID, tree.Separator) == level {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
