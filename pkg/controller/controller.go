package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	errs "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/force"
	"github.com/matzehuels/ghgraph/pkg/graph"
	"github.com/matzehuels/ghgraph/pkg/inflight"
	"github.com/matzehuels/ghgraph/pkg/integrations/github"
	"github.com/matzehuels/ghgraph/pkg/observability"
	"github.com/matzehuels/ghgraph/pkg/tree"
)

// Layout parameters.
const (
	DefaultWidth  = 1200
	DefaultHeight = 600

	// FrameMargin is the vertical space below the layout frame.
	FrameMargin = 160

	DefaultCharge          = -30.0
	CollapsedChargeDivisor = 50.0
	BranchDistance         = 80.0
	LeafDistance           = 30.0
)

// ErrMarkLost reports that a node's pending mark expired or was taken over
// before its fetch returned.
var ErrMarkLost = errors.New("pending mark lost before the response arrived")

// Fetcher reads the remote records the graph is built from.
// [*github.Client] implements it.
type Fetcher interface {
	FetchRepo(ctx context.Context, fullName string) (*github.Repo, error)
	FetchContributors(ctx context.Context, fullName string) ([]github.Contributor, error)
	FetchUserRepos(ctx context.Context, login string) ([]github.Repo, error)
}

// Listener observes structural changes of the graph.
// Callbacks run on the goroutine that caused the change, without the
// controller lock held.
type Listener interface {
	// OnRebind is called after the visible node set changed and the
	// layout was restarted.
	OnRebind(s graph.Snapshot)

	// OnExpansionFailed is called when fetching the children of id failed.
	OnExpansionFailed(id string, err error)
}

// Options configures a [Controller].
type Options struct {
	Repo     string // root repository, "owner/name"
	Width    int
	Height   int
	Instance string // namespaces pending marks and labels snapshots
	Seed     uint64
	Guard    inflight.Guard
	Logger   *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Seed == 0 {
		o.Seed = uint64(time.Now().UnixNano())
	}
	if o.Guard == nil {
		o.Guard = inflight.NewMemory(inflight.DefaultTTL)
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= FrameMargin {
		return errs.New(errs.ErrCodeInvalidConfig, "canvas %dx%d too small: need width > 0 and height > %d", o.Width, o.Height, FrameMargin)
	}
	if _, _, err := github.ParseRepoRef(o.Repo); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidRepo, err, "root repository %q", o.Repo)
	}
	return nil
}

// Controller coordinates the tree, the layout and remote fetches of one graph.
type Controller struct {
	opts    Options
	fetcher Fetcher
	guard   inflight.Guard
	group   singleflight.Group
	logger  *log.Logger

	mu        sync.Mutex
	tree      *tree.Tree
	sim       *force.Simulation
	nodes     []*tree.Node
	links     []tree.Link
	visible   map[string]*tree.Node
	pending   map[string]string
	listeners map[int]Listener
	nextID    int
}

// New loads the root repository and builds a graph holding only the root.
// The layout is started but not run; drive it with [Controller.Step] or
// [Controller.Settle].
func New(ctx context.Context, f Fetcher, opts Options) (*Controller, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	repo, err := f.FetchRepo(ctx, opts.Repo)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeRootLoadFailed, err, "load root repository %s", opts.Repo)
	}

	simOpts := force.DefaultOptions(float64(opts.Width), float64(opts.Height-FrameMargin))
	simOpts.Seed = opts.Seed

	c := &Controller{
		opts:      opts,
		fetcher:   f,
		guard:     opts.Guard,
		logger:    opts.Logger,
		tree:      tree.New(tree.KindRepo, tree.Record{RemoteID: repo.ID, Label: repo.FullName, Size: repo.Watchers}),
		sim:       force.New(simOpts),
		pending:   make(map[string]string),
		listeners: make(map[int]Listener),
	}
	if err := c.rebindLocked(); err != nil {
		return nil, err
	}
	c.logger.Info("Loaded root repository", "repo", repo.FullName, "id", c.tree.Root().ID, "watchers", repo.Watchers)
	return c, nil
}

// Width returns the canvas width.
func (c *Controller) Width() int { return c.opts.Width }

// Height returns the canvas height.
func (c *Controller) Height() int { return c.opts.Height }

// Repo returns the root repository's full name.
func (c *Controller) Repo() string { return c.opts.Repo }

// Subscribe registers l and returns a function that removes it.
func (c *Controller) Subscribe(l Listener) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Toggle applies a click on the visible node id and reports what it did.
// For an unfetched node Toggle blocks until the fetch finished.
func (c *Controller) Toggle(ctx context.Context, id string) (tree.Action, error) {
	if err := errs.ValidateNodeID(id); err != nil {
		return 0, err
	}

	c.mu.Lock()
	n, ok := c.visible[id]
	if !ok {
		c.mu.Unlock()
		return 0, errs.New(errs.ErrCodeNodeNotFound, "no visible node %s", id)
	}
	if !n.Fetched() {
		c.mu.Unlock()
		return tree.ActionFetch, c.expand(ctx, n)
	}

	action := tree.Toggle(n)
	err := c.rebindLocked()
	snap, listeners := c.snapshotLocked(), c.listenersLocked()
	c.mu.Unlock()

	if err != nil {
		return action, err
	}
	observability.Graph().OnToggle(ctx, action.String())
	c.logger.Debug("Toggled node", "node", id, "action", action)
	for _, l := range listeners {
		l.OnRebind(snap)
	}
	return action, nil
}

// expand runs the fetch protocol for an unfetched node.
func (c *Controller) expand(ctx context.Context, n *tree.Node) error {
	key := c.pendingKey(n.ID)

	c.mu.Lock()
	if n.Fetched() {
		c.mu.Unlock()
		return nil
	}
	if !n.Expandable() {
		c.mu.Unlock()
		return errs.New(errs.ErrCodeNotExpandable, "node %s has no account to look up", n.ID)
	}
	token, err := c.guard.Acquire(ctx, key)
	if err != nil {
		c.mu.Unlock()
		if errors.Is(err, inflight.ErrPending) {
			return errs.Wrap(errs.ErrCodePending, err, "node %s", n.ID)
		}
		return errs.Wrap(errs.ErrCodeInternal, err, "mark %s pending", n.ID)
	}
	c.pending[n.ID] = token
	id, kind, label := n.ID, n.Kind, n.Label
	c.mu.Unlock()

	hooks := observability.Graph()
	hooks.OnExpandStart(ctx, kind.String(), id)
	c.logger.Debug("Fetching children", "node", id, "kind", kind, "label", label)
	start := time.Now()

	records, ferr := c.fetch(ctx, kind, label)

	// The mark is checked and released with a context that survives
	// cancellation of the request.
	bg := context.WithoutCancel(ctx)

	c.mu.Lock()
	holds, herr := c.guard.Holds(bg, key, token)
	// Children attached meanwhile by a fetch that took over the mark win.
	stale := n.Fetched()
	switch {
	case stale:
		ferr = nil
	case ferr != nil:
	case herr != nil:
		ferr = herr
	case !holds:
		ferr = fmt.Errorf("%w: %s", ErrMarkLost, key)
	}
	if ferr == nil && !stale {
		if _, ferr = c.tree.Attach(n, records); ferr == nil {
			ferr = c.rebindLocked()
		}
	}
	if c.pending[id] == token {
		delete(c.pending, id)
	}
	if err := c.guard.Release(bg, key, token); err != nil {
		c.logger.Warn("Failed to release pending mark", "node", id, "err", err)
	}
	snap, listeners := c.snapshotLocked(), c.listenersLocked()
	c.mu.Unlock()

	hooks.OnExpandComplete(ctx, kind.String(), len(records), time.Since(start), ferr)

	if ferr != nil {
		c.logger.Warn("Expansion failed", "node", id, "label", label, "err", ferr)
		for _, l := range listeners {
			l.OnExpansionFailed(id, ferr)
		}
		return errs.Wrap(errs.ErrCodeExpansionFailed, ferr, "expand %s", id)
	}
	if stale {
		c.logger.Debug("Discarding stale response", "node", id)
		return nil
	}

	c.logger.Info("Expanded node", "node", id, "label", label, "children", len(records),
		"elapsed", time.Since(start).Round(time.Millisecond))
	for _, l := range listeners {
		l.OnRebind(snap)
	}
	return nil
}

// fetch loads the child records of a node of the given kind. Concurrent
// requests for the same label share one call.
func (c *Controller) fetch(ctx context.Context, kind tree.Kind, label string) ([]tree.Record, error) {
	v, err, shared := c.group.Do(kind.String()+":"+label, func() (any, error) {
		return c.fetchRecords(ctx, kind, label)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("Shared in-flight fetch", "kind", kind, "label", label)
	}
	return v.([]tree.Record), nil
}

func (c *Controller) fetchRecords(ctx context.Context, kind tree.Kind, label string) ([]tree.Record, error) {
	switch kind {
	case tree.KindRepo:
		list, err := c.fetcher.FetchContributors(ctx, label)
		if err != nil {
			return nil, err
		}
		return ContributorRecords(list), nil
	case tree.KindUser:
		list, err := c.fetcher.FetchUserRepos(ctx, label)
		if err != nil {
			return nil, err
		}
		return RepoRecords(list), nil
	default:
		return nil, fmt.Errorf("cannot expand node of kind %s", kind)
	}
}

// ContributorRecords maps contributors to child records sized by their
// contribution count. A contributor keeps its remote id whenever it has
// one; only contributors without a login are marked anonymous.
func ContributorRecords(list []github.Contributor) []tree.Record {
	out := make([]tree.Record, len(list))
	for i, ct := range list {
		out[i] = tree.Record{Size: ct.Contributions, Anonymous: ct.Anonymous()}
		if ct.ID > 0 {
			out[i].RemoteID = ct.ID
		}
		if !ct.Anonymous() {
			out[i].Label = ct.Login
		}
	}
	return out
}

// RepoRecords maps repositories to child records sized by their watchers.
func RepoRecords(list []github.Repo) []tree.Record {
	out := make([]tree.Record, len(list))
	for i, r := range list {
		out[i] = tree.Record{RemoteID: r.ID, Label: r.FullName, Size: r.Watchers}
	}
	return out
}

func (c *Controller) pendingKey(id string) string {
	if c.opts.Instance == "" {
		return id
	}
	return c.opts.Instance + ":" + id
}

// rebindLocked re-flattens the tree, binds the result to the simulation and
// restarts it.
func (c *Controller) rebindLocked() error {
	nodes := tree.Flatten(c.tree.Root())
	links := tree.Links(nodes)

	cx, cy := float64(c.opts.Width)/2, float64(c.opts.Height)/2-FrameMargin/2
	bodies := make([]force.Node, len(nodes))
	visible := make(map[string]*tree.Node, len(nodes))
	for i, n := range nodes {
		bodies[i] = force.Node{ID: n.ID, Charge: Charge(n), Fixed: n.Fixed, X: cx, Y: cy}
		visible[n.ID] = n
	}
	springs := make([]force.Link, len(links))
	for i, l := range links {
		springs[i] = force.Link{Source: l.Source.ID, Target: l.Target.ID, Distance: LinkDistance(l)}
	}
	if err := c.sim.Bind(bodies, springs); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "bind layout")
	}
	c.nodes, c.links, c.visible = nodes, links, visible
	c.sim.Start()
	return nil
}

// Charge is the charge of a node's body: collapsed nodes repel in
// proportion to their size, all others with [DefaultCharge].
func Charge(n *tree.Node) float64 {
	if n.State() == tree.Collapsed {
		return -float64(n.Size) / CollapsedChargeDivisor
	}
	return DefaultCharge
}

// LinkDistance is the rest length of a link's spring: longer towards
// targets that show children of their own.
func LinkDistance(l tree.Link) float64 {
	if l.Target.HasVisibleChildren() {
		return BranchDistance
	}
	return LeafDistance
}

func (c *Controller) listenersLocked() []Listener {
	out := make([]Listener, 0, len(c.listeners))
	for i := range c.nextID {
		if l, ok := c.listeners[i]; ok {
			out = append(out, l)
		}
	}
	return out
}

func (c *Controller) snapshotLocked() graph.Snapshot {
	s := graph.FromLayout(c.nodes, c.links, c.sim.Frame())
	s.Instance = c.opts.Instance
	s.Width, s.Height = c.opts.Width, c.opts.Height
	for i := range s.Nodes {
		if _, ok := c.pending[s.Nodes[i].ID]; ok {
			s.Nodes[i].Pending = true
		}
	}
	return s
}

// Snapshot returns the current visible graph with positions.
func (c *Controller) Snapshot() graph.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Visible reports how many nodes are currently shown.
func (c *Controller) Visible() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

// Step advances the layout by one tick. It returns false once the layout
// has cooled down.
func (c *Controller) Step() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim.Tick()
}

// Settle ticks the layout until it cools down or ctx is done. onFrame, if
// not nil, receives a snapshot after every tick. Settle returns the number
// of ticks run.
func (c *Controller) Settle(ctx context.Context, onFrame func(graph.Snapshot)) (int, error) {
	start := time.Now()
	ticks := 0
	var err error
	for {
		if err = ctx.Err(); err != nil {
			break
		}
		c.mu.Lock()
		hot := c.sim.Tick()
		var snap graph.Snapshot
		if hot && onFrame != nil {
			snap = c.snapshotLocked()
		}
		c.mu.Unlock()
		if !hot {
			break
		}
		ticks++
		if onFrame != nil {
			onFrame(snap)
		}
	}
	observability.Graph().OnSettle(ctx, c.Visible(), ticks, time.Since(start))
	return ticks, err
}
