package force

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// Cooling schedule.
const (
	DefaultAlpha = 0.1
	AlphaDecay   = 0.99
	AlphaMin     = 0.005
)

// ErrUnknownEndpoint is returned by [Simulation.Bind] for a link that
// references an id missing from the node list.
var ErrUnknownEndpoint = errors.New("link endpoint not bound")

// ErrUnknownBody is returned by [Simulation.Hold] and [Simulation.Release]
// for an id that is not bound.
var ErrUnknownBody = errors.New("body not bound")

// Options configures a [Simulation].
type Options struct {
	Width, Height float64 // frame size; gravity pulls towards its centre
	Friction      float64 // velocity retained per tick
	Gravity       float64
	LinkStrength  float64
	Seed          uint64 // placement of bodies without positioned neighbours
}

// DefaultOptions returns the standard parameters for a frame of the given size.
func DefaultOptions(width, height float64) Options {
	return Options{
		Width:        width,
		Height:       height,
		Friction:     0.9,
		Gravity:      0.1,
		LinkStrength: 1,
		Seed:         1,
	}
}

// Node describes a body to bind. Fixed bodies are placed at (X, Y) and stay
// there unless dragged; for others X and Y are ignored.
type Node struct {
	ID     string
	Charge float64 // negative values repel
	Fixed  bool
	X, Y   float64
}

// Link is a spring between two bound node ids.
type Link struct {
	Source, Target string
	Distance       float64
}

// Point is a position in the frame.
type Point struct{ X, Y float64 }

// Segment is a link with endpoints resolved to current body positions.
type Segment struct {
	Source, Target string
	From, To       Point
}

// Frame is the state of the layout after a tick.
type Frame struct {
	Alpha     float64
	Positions map[string]Point
	Segments  []Segment
}

type body struct {
	id     string
	x, y   float64
	px, py float64
	charge float64
	fixed  bool
	held   bool // pinned by a drag in progress
	moved  bool // dragged at least once; keeps its position across binds
	weight int
}

func (b *body) pinned() bool { return b.fixed || b.held }

type spring struct {
	s, t     *body
	distance float64
}

// Simulation is a force layout over a set of bodies.
type Simulation struct {
	opts   Options
	rng    *rand.Rand
	bodies map[string]*body
	order  []*body
	links  []spring
	alpha  float64
}

// New creates an empty, cold simulation.
func New(opts Options) *Simulation {
	return &Simulation{
		opts:   opts,
		rng:    rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		bodies: make(map[string]*body),
	}
}

// Options returns the parameters the simulation was created with.
func (s *Simulation) Options() Options { return s.opts }

// Bind replaces the bound node and link sets. Bodies whose id persists keep
// their position and velocity; new bodies start next to a positioned
// neighbour, or at a random spot in the frame; bodies whose id vanished are
// dropped. On error the previous binding is kept.
func (s *Simulation) Bind(nodes []Node, links []Link) error {
	next := make(map[string]*body, len(nodes))
	order := make([]*body, 0, len(nodes))
	var fresh []*body
	for _, n := range nodes {
		if _, dup := next[n.ID]; dup {
			return fmt.Errorf("duplicate body %q", n.ID)
		}
		b, ok := s.bodies[n.ID]
		if ok {
			cp := *b
			b = &cp
		} else {
			b = &body{id: n.ID, x: math.NaN(), y: math.NaN()}
			fresh = append(fresh, b)
		}
		b.charge, b.fixed, b.weight = n.Charge, n.Fixed, 0
		if n.Fixed && !b.moved {
			b.x, b.y, b.px, b.py = n.X, n.Y, n.X, n.Y
		}
		next[n.ID] = b
		order = append(order, b)
	}

	springs := make([]spring, 0, len(links))
	neighbours := make(map[*body][]*body)
	for _, l := range links {
		src, ok := next[l.Source]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownEndpoint, l.Source)
		}
		dst, ok := next[l.Target]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownEndpoint, l.Target)
		}
		src.weight++
		dst.weight++
		springs = append(springs, spring{s: src, t: dst, distance: l.Distance})
		neighbours[src] = append(neighbours[src], dst)
		neighbours[dst] = append(neighbours[dst], src)
	}

	for _, b := range fresh {
		if !math.IsNaN(b.x) {
			continue
		}
		s.place(b, neighbours[b])
	}

	s.bodies, s.order, s.links = next, order, springs
	return nil
}

func (s *Simulation) place(b *body, neighbours []*body) {
	for _, nb := range neighbours {
		if math.IsNaN(nb.x) {
			continue
		}
		// Jitter keeps coincident bodies from cancelling the charge force.
		b.x = nb.x + s.rng.Float64()*2 - 1
		b.y = nb.y + s.rng.Float64()*2 - 1
		b.px, b.py = b.x, b.y
		return
	}
	b.x = s.rng.Float64() * s.opts.Width
	b.y = s.rng.Float64() * s.opts.Height
	b.px, b.py = b.x, b.y
}

// Hold pins the body bound to id at (x, y), as while it is dragged, and
// reheats the layout so the other bodies follow.
func (s *Simulation) Hold(id string, x, y float64) error {
	b, ok := s.bodies[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBody, id)
	}
	b.held, b.moved = true, true
	b.x, b.y, b.px, b.py = x, y, x, y
	s.Start()
	return nil
}

// Release ends a drag of the body bound to id. A free body rejoins the
// layout; a fixed one stays where it was dropped.
func (s *Simulation) Release(id string) error {
	b, ok := s.bodies[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBody, id)
	}
	b.held = false
	s.Start()
	return nil
}

// Start heats the layout up so that subsequent ticks move bodies.
func (s *Simulation) Start() { s.alpha = DefaultAlpha }

// Stop cools the layout down immediately.
func (s *Simulation) Stop() { s.alpha = 0 }

// Alpha returns the current cooling parameter.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Hot reports whether ticks still move bodies.
func (s *Simulation) Hot() bool { return s.alpha >= AlphaMin }

// Len returns the number of bound bodies.
func (s *Simulation) Len() int { return len(s.order) }

// Tick advances the layout by one step. It returns false, without moving
// anything, once alpha has decayed below [AlphaMin].
func (s *Simulation) Tick() bool {
	if s.alpha *= AlphaDecay; s.alpha < AlphaMin {
		s.alpha = 0
		return false
	}
	s.springs()
	s.gravity()
	s.charge()
	s.integrate()
	return true
}

func (s *Simulation) springs() {
	for _, l := range s.links {
		dx, dy := l.t.x-l.s.x, l.t.y-l.s.y
		d2 := dx*dx + dy*dy
		if d2 == 0 {
			continue
		}
		d := math.Sqrt(d2)
		k := s.alpha * s.opts.LinkStrength * (d - l.distance) / d
		dx, dy = dx*k, dy*k
		w := float64(l.s.weight) / float64(l.t.weight+l.s.weight)
		l.t.x -= dx * w
		l.t.y -= dy * w
		w = 1 - w
		l.s.x += dx * w
		l.s.y += dy * w
	}
}

func (s *Simulation) gravity() {
	k := s.alpha * s.opts.Gravity
	if k == 0 {
		return
	}
	cx, cy := s.opts.Width/2, s.opts.Height/2
	for _, b := range s.order {
		b.x += (cx - b.x) * k
		b.y += (cy - b.y) * k
	}
}

// charge applies exact pairwise repulsion to every free body. Only the
// previous position is adjusted, which the integration step turns into
// velocity.
func (s *Simulation) charge() {
	for _, b := range s.order {
		if b.pinned() {
			continue
		}
		for _, o := range s.order {
			if o == b || o.charge == 0 {
				continue
			}
			dx, dy := o.x-b.x, o.y-b.y
			d2 := dx*dx + dy*dy
			if d2 == 0 {
				continue
			}
			k := s.alpha * o.charge / d2
			b.px -= dx * k
			b.py -= dy * k
		}
	}
}

func (s *Simulation) integrate() {
	f := s.opts.Friction
	for _, b := range s.order {
		if b.pinned() {
			b.x, b.y = b.px, b.py
			continue
		}
		px, py := b.px, b.py
		b.px, b.py = b.x, b.y
		b.x -= (px - b.x) * f
		b.y -= (py - b.y) * f
	}
}

// Run ticks until the layout converges or ctx is done, calling onTick (if
// non-nil) with the frame after every tick that moved bodies. It returns the
// number of such ticks.
func (s *Simulation) Run(ctx context.Context, onTick func(Frame)) (int, error) {
	ticks := 0
	for {
		if err := ctx.Err(); err != nil {
			return ticks, err
		}
		if !s.Tick() {
			return ticks, nil
		}
		ticks++
		if onTick != nil {
			onTick(s.Frame())
		}
	}
}

// Position returns the position of the body bound to id.
func (s *Simulation) Position(id string) (Point, bool) {
	b, ok := s.bodies[id]
	if !ok {
		return Point{}, false
	}
	return Point{b.x, b.y}, true
}

// Frame captures the current positions. Segment endpoints are read from
// the bodies, so they always match the node positions of the same frame.
func (s *Simulation) Frame() Frame {
	f := Frame{
		Alpha:     s.alpha,
		Positions: make(map[string]Point, len(s.order)),
		Segments:  make([]Segment, len(s.links)),
	}
	for _, b := range s.order {
		f.Positions[b.id] = Point{b.x, b.y}
	}
	for i, l := range s.links {
		f.Segments[i] = Segment{
			Source: l.s.id,
			Target: l.t.id,
			From:   Point{l.s.x, l.s.y},
			To:     Point{l.t.x, l.t.y},
		}
	}
	return f
}
