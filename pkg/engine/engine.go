package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/weftui/weft/pkg/display"
	"github.com/weftui/weft/pkg/source"
	"github.com/weftui/weft/pkg/span"
	"github.com/weftui/weft/pkg/view"
)

const defaultMaxVisits = 2

// PassStats summarizes one scheduler pass.
type PassStats struct {
	Pass          uint64        `json:"pass"`
	PresenterRuns int           `json:"presenter_runs"`
	MemoHits      int           `json:"memo_hits"`
	NodesBuilt    int           `json:"nodes_built"`
	NodesRazed    int           `json:"nodes_razed"`
	ListBuilds    int           `json:"list_builds"`
	ListRazes     int           `json:"list_razes"`
	ListMoves     int           `json:"list_moves"`
	CycleErrors   int           `json:"cycle_errors"`
	Diagnostics   int           `json:"diagnostics"`
	Duration      time.Duration `json:"duration"`
}

// Engine reconciles presenter output against a retained display-node
// store. Presenters register in a Registry, read reactive state through
// a source.Provider, and the host drives rendering by calling RunPass
// once per tick.
//
// All rendering happens on the goroutine that calls RunPass. Source
// change notifications and the public accessors are safe to call from
// other goroutines.
type Engine struct {
	store      display.Store
	provider   source.Provider
	presenters *Registry

	log       *slog.Logger
	tracer    trace.Tracer
	metrics   *Metrics
	observer  func(PassStats)
	sink      func(Diagnostic)
	maxVisits int

	mu         sync.Mutex
	nextHandle Handle
	arena      map[Handle]*invocation
	roots      []*invocation
	queue      invQueue
	passID     uint64

	// Working accumulators for the in-flight pass; scheduler goroutine
	// only. Published under mu when the pass ends.
	stats PassStats
	diags []Diagnostic

	lastStats PassStats
	lastDiags []Diagnostic
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMetrics attaches Prometheus metrics updated at the end of every
// pass.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTracer sets the tracer used to span each pass. Defaults to the
// global tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithMaxRevisits sets how many times a single invocation may be visited
// within one pass before its chain is dropped with a CycleError. The
// minimum useful value is 2: one render plus one re-visit.
func WithMaxRevisits(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxVisits = n
		}
	}
}

// WithPassObserver registers a callback invoked with the stats of every
// completed pass, after metrics are recorded.
func WithPassObserver(fn func(PassStats)) Option {
	return func(e *Engine) { e.observer = fn }
}

// WithDiagnosticSink registers a callback invoked for every structural
// diagnostic as it is emitted.
func WithDiagnosticSink(fn func(Diagnostic)) Option {
	return func(e *Engine) { e.sink = fn }
}

// New creates an engine over the given display store, data-source
// provider, and presenter registry.
func New(store display.Store, provider source.Provider, presenters *Registry, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		provider:   provider,
		presenters: presenters,
		log:        slog.Default(),
		maxVisits:  defaultMaxVisits,
		arena:      make(map[Handle]*invocation),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer("weft/engine")
	}
	return e
}

// Mount creates a root invocation of the named presenter and schedules
// its first render. When attachTo names a host-owned display node, the
// root's flattened span is attached as that node's children at the end
// of every pass that changes it; pass display.None to leave attachment
// to the host.
func (e *Engine) Mount(presenter string, props any, attachTo display.NodeID) (Handle, error) {
	if !e.presenters.Has(presenter) {
		return 0, ErrUnknownPresenter
	}
	inv := e.newInvocation(presenter, props, nil)
	inv.isRoot = true
	inv.attachTo = attachTo

	e.mu.Lock()
	e.roots = append(e.roots, inv)
	e.mu.Unlock()

	e.markDirty(inv)
	e.log.Debug("mounted root", "presenter", presenter, "invocation", inv.handle)
	return inv.handle, nil
}

// Unmount razes a root invocation: its entire subtree is torn down,
// every display node it owns is despawned, and the attach point (if any)
// is emptied. Store errors during teardown propagate unmodified.
func (e *Engine) Unmount(h Handle) error {
	e.mu.Lock()
	inv, ok := e.arena[h]
	if ok && !inv.isRoot {
		ok = false
	}
	if ok {
		for i, r := range e.roots {
			if r == inv {
				e.roots = append(e.roots[:i], e.roots[i+1:]...)
				break
			}
		}
	}
	e.mu.Unlock()
	if !ok {
		return ErrUnknownInvocation
	}

	if err := e.razeInvocation(inv); err != nil {
		return err
	}
	if inv.attachTo != display.None && len(inv.lastAttach) > 0 {
		if err := e.store.SetChildren(inv.attachTo, nil); err != nil {
			return err
		}
	}
	e.log.Debug("unmounted root", "presenter", inv.presenter, "invocation", h)
	return nil
}

// Span returns the invocation's output span. The returned span is
// identity-stable: it reflects later re-renders without being reacquired.
func (e *Engine) Span(h Handle) (*span.Span, error) {
	inv, ok := e.lookup(h)
	if !ok {
		return nil, ErrUnknownInvocation
	}
	return inv.outSpan, nil
}

// LastPass returns the stats of the most recently completed pass.
func (e *Engine) LastPass() PassStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastStats
}

// Diagnostics returns the structural diagnostics emitted by the most
// recently completed pass.
func (e *Engine) Diagnostics() []Diagnostic {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Diagnostic, len(e.lastDiags))
	copy(out, e.lastDiags)
	return out
}

func (e *Engine) newInvocation(presenter string, props any, parent *invocation) *invocation {
	e.mu.Lock()
	e.nextHandle++
	inv := &invocation{
		handle:    e.nextHandle,
		engine:    e,
		presenter: presenter,
		props:     props,
		outSpan:   span.Empty(),
	}
	if parent != nil {
		inv.parent = parent.handle
		inv.depth = parent.depth + 1
	}
	e.arena[inv.handle] = inv
	e.mu.Unlock()
	return inv
}

func (e *Engine) lookup(h Handle) (*invocation, bool) {
	e.mu.Lock()
	inv, ok := e.arena[h]
	e.mu.Unlock()
	return inv, ok
}

// razeInvocation tears down one invocation record: subscriptions are
// dropped synchronously, the record leaves the arena, and the owned
// state subtree is razed. Razing twice is a fatal lifetime violation.
func (e *Engine) razeInvocation(inv *invocation) error {
	e.mu.Lock()
	if inv.razed {
		e.mu.Unlock()
		panic(&UseAfterRazeError{Invocation: inv.handle, Detail: "invocation razed twice"})
	}
	inv.razed = true
	delete(e.arena, inv.handle)
	e.mu.Unlock()

	for id := range inv.deps {
		e.provider.Unsubscribe(id, inv)
	}
	inv.deps = nil

	st := inv.state
	inv.state = nil
	inv.outSpan.Set(nil)
	if st != nil {
		return e.razeState(inv, st)
	}
	return nil
}

// swapDeps reconciles the invocation's subscriptions to exactly the set
// of sources read during the render that just finished.
func (e *Engine) swapDeps(inv *invocation, reads map[source.ID]source.Version) {
	for id := range inv.deps {
		if _, still := reads[id]; !still {
			e.provider.Unsubscribe(id, inv)
		}
	}
	for id := range reads {
		if _, had := inv.deps[id]; !had {
			e.provider.Subscribe(id, inv)
		}
	}
	inv.deps = reads
}

// depsChanged reports whether any recorded dependency has a newer
// version than the one observed during the last render.
func (e *Engine) depsChanged(inv *invocation) bool {
	for id, seen := range inv.deps {
		_, cur, err := e.provider.Read(id)
		if err != nil || cur != seen {
			return true
		}
	}
	return false
}

// reconcileInvocation renders one invocation and patches its state. A
// clean invocation (same props, same dep versions) is a memo hit: the
// presenter does not run and the previous tree and span are reused.
func (e *Engine) reconcileInvocation(ctx context.Context, inv *invocation) error {
	if inv.razed {
		panic(&UseAfterRazeError{Invocation: inv.handle, Detail: "render scheduled after raze"})
	}
	if inv.state != nil && !inv.propsDirty && !e.depsChanged(inv) {
		e.stats.MemoHits++
		return nil
	}

	_, tspan := e.tracer.Start(ctx, "engine.render",
		trace.WithAttributes(
			attribute.String("engine.presenter", inv.presenter),
			attribute.Int64("engine.invocation", int64(inv.handle)),
		))
	defer tspan.End()

	var tree *view.Node
	reads := make(map[source.ID]source.Version)
	fn, err := e.presenters.Resolve(inv.presenter)
	if err != nil {
		e.diagnose(inv, DiagUnknownPresenter, err.Error())
	} else {
		c := newCtx(e, inv)
		tree = fn(inv.props, c)
		reads = c.reads
	}
	e.swapDeps(inv, reads)
	tree = normalize(tree)

	if inv.state == nil {
		st, err := e.buildNode(inv, tree)
		if err != nil {
			return err
		}
		inv.state = st
	} else {
		st, err := e.updateNode(inv, tree, inv.state)
		if err != nil {
			return err
		}
		inv.state = st
	}
	inv.tree = tree
	inv.outSpan.Set(span.Group(inv.state.spanOut))
	inv.propsDirty = false
	e.stats.PresenterRuns++
	return nil
}

// diagnose records a recoverable structural diagnostic for the current
// pass and logs it.
func (e *Engine) diagnose(inv *invocation, code, msg string) {
	d := Diagnostic{
		Code:       code,
		Message:    msg,
		Invocation: inv.handle,
		Presenter:  inv.presenter,
	}
	e.diags = append(e.diags, d)
	e.stats.Diagnostics++
	e.log.Warn("structural diagnostic",
		"code", code, "presenter", inv.presenter, "invocation", inv.handle, "detail", msg)
	if e.sink != nil {
		e.sink(d)
	}
}
