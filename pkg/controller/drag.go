package controller

import (
	"math"

	errs "github.com/matzehuels/ghgraph/pkg/errors"
)

// Drag pins the visible node id at (x, y) and reheats the layout, so the
// rest of the graph follows the pointer. The node stays pinned until
// [Controller.Drop].
func (c *Controller) Drag(id string, x, y float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return errs.New(errs.ErrCodeInvalidInput, "drag position (%v, %v) is not finite", x, y)
	}
	return c.drag(id, func() error { return c.sim.Hold(id, x, y) })
}

// Drop ends a drag of the visible node id. The root stays where it was
// dropped; any other node rejoins the layout.
func (c *Controller) Drop(id string) error {
	return c.drag(id, func() error { return c.sim.Release(id) })
}

func (c *Controller) drag(id string, apply func() error) error {
	if err := errs.ValidateNodeID(id); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.visible[id]; !ok {
		return errs.New(errs.ErrCodeNodeNotFound, "no visible node %s", id)
	}
	if err := apply(); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "drag %s", id)
	}
	return nil
}
