// Package session owns the selection state of one dashboard user and turns
// chart clicks and filter input into freshly derived snapshots.
package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/internal/logging"
	"github.com/spektr-org/needsradar/schema"
)

// ============================================================================
// CROSS-FILTER COORDINATOR
// ============================================================================
// States:
//   Unfocused          all regions allowed by Criteria.Regions
//   Focused(region)    exactly one region; Total stays as radar overlay
//
// Transitions:
//   click(region)  any      → Focused(region)   (re-targets when focused)
//   click(Total)   any      → unchanged
//   click(?)       any      → unchanged, WARN
//   Clear()        any      → Unfocused
//   Reset()        any      → Unfocused, initial criteria
//
// Every applied transition derives a complete Snapshot before it is
// published. Readers load the snapshot pointer and never see a mix.
// ============================================================================

// State is the coordinator's focus state.
type State int

const (
	Unfocused State = iota
	Focused
)

func (s State) String() string {
	if s == Focused {
		return "focused"
	}
	return "unfocused"
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Focus is a state plus the focused region.
type Focus struct {
	State  State  `json:"state"`
	Region string `json:"region,omitempty"`
}

// Transition outcome reasons.
const (
	ReasonFocused       = "focused"
	ReasonUnchanged     = "already focused"
	ReasonTotal         = "total is not a focus target"
	ReasonUnknownRegion = "unknown region"
	ReasonCleared       = "cleared"
	ReasonFilters       = "filters updated"
	ReasonReset         = "reset"
)

// Transition describes the outcome of one interaction.
type Transition struct {
	From    Focus  `json:"from"`
	To      Focus  `json:"to"`
	Applied bool   `json:"applied"`
	Reason  string `json:"reason"`
}

// ClickEvent is what a chart reports when clicked. Label is the clicked
// element's text; ID is a hierarchy node path ("Maule/Agua/Riego");
// CustomData carries anything else the chart attached.
type ClickEvent struct {
	Chart      string   `json:"chart"`
	Label      string   `json:"label,omitempty"`
	ID         string   `json:"id,omitempty"`
	CustomData []string `json:"customData,omitempty"`
}

// Observer receives coordinator events. internal/metrics implements it.
type Observer interface {
	ObserveTransition(chart string, t Transition)
	ObserveDerive(d time.Duration, records int)
}

type nopObserver struct{}

func (nopObserver) ObserveTransition(string, Transition) {}
func (nopObserver) ObserveDerive(time.Duration, int)     {}

// ============================================================================
// OPTIONS
// ============================================================================

// Option configures a Coordinator.
type Option func(*options)

type options struct {
	logger     logging.Logger
	observer   Observer
	engineOpts []engine.Option
	initial    engine.Criteria
	selectable []string
}

// WithLogger sets the coordinator logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver attaches an event observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithEngineOptions passes options to every engine.Derive call.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(o *options) { o.engineOpts = append(o.engineOpts, opts...) }
}

// WithSelectableRegions lets Select focus these names (map regions, for
// instance) even when the dataset has no rows for them. Chart clicks still
// resolve against the dataset only.
func WithSelectableRegions(names []string) Option {
	return func(o *options) { o.selectable = append(o.selectable, names...) }
}

// WithInitialCriteria sets the criteria a new session and Reset start from.
func WithInitialCriteria(c engine.Criteria) Option {
	return func(o *options) { o.initial = c.Clone() }
}

// ============================================================================
// COORDINATOR
// ============================================================================

// Coordinator is the single owner of one session's criteria.
type Coordinator struct {
	mu       sync.Mutex
	ds       *engine.Dataset
	opts     options
	criteria engine.Criteria
	snapshot atomic.Pointer[engine.Snapshot]
	logger   logging.Logger
}

// New creates a coordinator in Unfocused state and derives its first
// snapshot.
func New(ctx context.Context, ds *engine.Dataset, opts ...Option) (*Coordinator, error) {
	o := options{logger: logging.Default(), observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	o.initial.FocusedRegion = ""

	c := &Coordinator{
		ds:       ds,
		opts:     o,
		criteria: o.initial.Clone(),
		logger:   o.logger.Named("session"),
	}
	snap, err := c.derive(ctx, c.criteria)
	if err != nil {
		return nil, err
	}
	c.snapshot.Store(snap)
	return c, nil
}

// Snapshot returns the current published snapshot.
func (c *Coordinator) Snapshot() *engine.Snapshot { return c.snapshot.Load() }

// Dataset returns the shared dataset.
func (c *Coordinator) Dataset() *engine.Dataset { return c.ds }

// Criteria returns a copy of the current criteria.
func (c *Coordinator) Criteria() engine.Criteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.criteria.Clone()
}

// Focus returns the current focus state.
func (c *Coordinator) Focus() Focus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FocusOf(c.criteria)
}

// FocusOf reads the focus carried by criteria, such as a published
// snapshot's.
func FocusOf(c engine.Criteria) Focus {
	if c.FocusedRegion == "" {
		return Focus{State: Unfocused}
	}
	return Focus{State: Focused, Region: c.FocusedRegion}
}

// HandleClick resolves a chart click to a region and focuses it. Clicks on
// Total and clicks that resolve to no known region are no-ops. The only
// error is a canceled context during derivation, in which case nothing
// changes.
func (c *Coordinator) HandleClick(ctx context.Context, ev ClickEvent) (Transition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	from := FocusOf(c.criteria)
	region, isTotal := c.resolve(ev)

	switch {
	case isTotal:
		t := Transition{From: from, To: from, Reason: ReasonTotal}
		c.logger.Debug("click ignored", logging.String("chart", ev.Chart), logging.String("reason", t.Reason))
		c.opts.observer.ObserveTransition(ev.Chart, t)
		return t, nil
	case region == "":
		t := Transition{From: from, To: from, Reason: ReasonUnknownRegion}
		c.logger.Warn("click ignored",
			logging.String("chart", ev.Chart),
			logging.String("label", ev.Label),
			logging.String("id", ev.ID),
			logging.Strings("custom_data", ev.CustomData),
			logging.String("reason", t.Reason))
		c.opts.observer.ObserveTransition(ev.Chart, t)
		return t, nil
	}

	next := c.criteria.Clone()
	next.FocusedRegion = region
	return c.apply(ctx, ev.Chart, from, next, ReasonFocused)
}

// Select focuses region by name, the non-click path used by region pickers.
// An empty name clears focus. A selectable region without rows is focused
// and yields the empty view; other unknown names are no-ops.
func (c *Coordinator) Select(ctx context.Context, region string) (Transition, error) {
	if strings.TrimSpace(region) == "" {
		return c.Clear(ctx)
	}
	if c.lookupRegion(strings.TrimSpace(region)) == "" {
		if name := c.lookupSelectable(region); name != "" {
			c.mu.Lock()
			defer c.mu.Unlock()

			from := FocusOf(c.criteria)
			next := c.criteria.Clone()
			next.FocusedRegion = name
			return c.apply(ctx, "selector", from, next, ReasonFocused)
		}
	}
	return c.HandleClick(ctx, ClickEvent{Chart: "selector", Label: region})
}

// Clear returns to Unfocused from any state.
func (c *Coordinator) Clear(ctx context.Context) (Transition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	from := FocusOf(c.criteria)
	next := c.criteria.Clone()
	next.FocusedRegion = ""
	return c.apply(ctx, "clear", from, next, ReasonCleared)
}

// SetFilters replaces the multi-select criteria. The current focus is kept;
// criteria.FocusedRegion is ignored.
func (c *Coordinator) SetFilters(ctx context.Context, criteria engine.Criteria) (Transition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	from := FocusOf(c.criteria)
	next := criteria.Clone()
	next.FocusedRegion = c.criteria.FocusedRegion
	return c.apply(ctx, "filters", from, next, ReasonFilters)
}

// Reset restores the initial criteria and Unfocused state.
func (c *Coordinator) Reset(ctx context.Context) (Transition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	from := FocusOf(c.criteria)
	return c.apply(ctx, "reset", from, c.opts.initial.Clone(), ReasonReset)
}

// apply derives a snapshot for next and publishes both. Callers hold mu.
func (c *Coordinator) apply(ctx context.Context, source string, from Focus, next engine.Criteria, reason string) (Transition, error) {
	snap, err := c.derive(ctx, next)
	if err != nil {
		c.logger.Error("derive failed; state unchanged", logging.String("source", source), logging.Err(err))
		return Transition{From: from, To: from, Reason: err.Error()}, err
	}

	to := FocusOf(next)
	if reason == ReasonFocused && from == to {
		reason = ReasonUnchanged
	}
	c.criteria = next
	c.snapshot.Store(snap)

	t := Transition{From: from, To: to, Applied: true, Reason: reason}
	c.logger.Info("transition",
		logging.String("source", source),
		logging.String("from", from.State.String()),
		logging.String("to", to.State.String()),
		logging.String("region", to.Region),
		logging.Int("records", snap.Records))
	c.opts.observer.ObserveTransition(source, t)
	return t, nil
}

func (c *Coordinator) derive(ctx context.Context, criteria engine.Criteria) (*engine.Snapshot, error) {
	start := time.Now()
	snap, err := engine.Derive(ctx, c.ds, criteria, c.opts.engineOpts...)
	if err != nil {
		return nil, err
	}
	c.opts.observer.ObserveDerive(time.Since(start), snap.Records)
	return snap, nil
}

// ============================================================================
// CLICK RESOLUTION
// ============================================================================

// resolve tries Label, then the first ID segment, then each CustomData
// entry. A candidate naming Total stops resolution.
func (c *Coordinator) resolve(ev ClickEvent) (region string, isTotal bool) {
	candidates := []string{ev.Label}
	if ev.ID != "" {
		candidates = append(candidates, strings.SplitN(ev.ID, "/", 2)[0])
	}
	candidates = append(candidates, ev.CustomData...)

	for _, cand := range candidates {
		cand = strings.TrimSpace(cand)
		if cand == "" {
			continue
		}
		if cand == engine.TotalLabel || schema.NormalizeName(cand) == schema.NormalizeName(engine.TotalLabel) {
			return "", true
		}
		if r := c.lookupRegion(cand); r != "" {
			return r, false
		}
	}
	return "", false
}

// lookupRegion matches exactly, then accent/case-insensitively.
func (c *Coordinator) lookupRegion(name string) string {
	if c.ds.HasRegion(name) {
		return name
	}
	norm := schema.NormalizeName(name)
	for _, r := range c.ds.Regions() {
		if schema.NormalizeName(r) == norm {
			return r
		}
	}
	return ""
}

// lookupSelectable matches name against the extra selectable regions.
func (c *Coordinator) lookupSelectable(name string) string {
	norm := schema.NormalizeName(name)
	for _, r := range c.opts.selectable {
		if schema.NormalizeName(r) == norm {
			return r
		}
	}
	return ""
}
