package engine

import (
	"container/heap"
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/weftui/weft/pkg/display"
	"github.com/weftui/weft/pkg/view"
)

// invQueue is a min-heap of dirty invocations ordered by depth, so a
// parent always renders before its children within a pass. A parent
// render may re-dirty a child it handed new props; depth ordering keeps
// that to a single visit in the common case.
type invQueue []*invocation

func (q invQueue) Len() int            { return len(q) }
func (q invQueue) Less(i, j int) bool  { return q[i].depth < q[j].depth }
func (q invQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *invQueue) Push(x any)         { *q = append(*q, x.(*invocation)) }
func (q *invQueue) Pop() any {
	old := *q
	n := len(old)
	inv := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return inv
}

// markDirty schedules an invocation for the next pass (or later in the
// current one). Safe to call from any goroutine; idempotent while the
// invocation is already queued.
func (e *Engine) markDirty(inv *invocation) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if inv.razed || inv.dirty {
		return
	}
	inv.dirty = true
	heap.Push(&e.queue, inv)
}

// popDirty returns the shallowest dirty invocation, or nil when the
// queue has drained. Invocations razed while queued are skipped.
func (e *Engine) popDirty() *invocation {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.queue.Len() > 0 {
		inv := heap.Pop(&e.queue).(*invocation)
		if inv.razed {
			continue
		}
		inv.dirty = false
		return inv
	}
	return nil
}

// RunPass drains the dirty queue once: every dirty invocation renders in
// parent-before-child order, then root spans are assembled into the
// display store. Call it once per host tick.
//
// An invocation visited more than the configured bound in one pass is
// dropped with a CycleError; unrelated invocations still complete and
// assembly still runs. All accumulated cycle errors are joined into the
// return value. Display-store errors abort the pass and propagate
// unmodified.
func (e *Engine) RunPass(ctx context.Context) error {
	start := time.Now()
	ctx, tspan := e.tracer.Start(ctx, "engine.pass")
	defer tspan.End()

	e.mu.Lock()
	e.passID++
	pass := e.passID
	e.mu.Unlock()
	e.stats = PassStats{Pass: pass}
	e.diags = nil

	var cycleErrs []error
	for {
		inv := e.popDirty()
		if inv == nil {
			break
		}
		if inv.passStamp != pass {
			inv.passStamp = pass
			inv.visits = 0
		}
		inv.visits++
		if inv.visits > e.maxVisits {
			cerr := &CycleError{Invocation: inv.handle, Presenter: inv.presenter, Visits: inv.visits}
			e.diagnose(inv, DiagCycle, cerr.Error())
			e.stats.CycleErrors++
			cycleErrs = append(cycleErrs, cerr)
			continue
		}
		if err := e.reconcileInvocation(ctx, inv); err != nil {
			tspan.RecordError(err)
			return err
		}
	}

	e.mu.Lock()
	roots := make([]*invocation, len(e.roots))
	copy(roots, e.roots)
	e.mu.Unlock()
	for _, root := range roots {
		if err := e.assembleRoot(root); err != nil {
			tspan.RecordError(err)
			return err
		}
	}

	e.stats.Duration = time.Since(start)
	tspan.SetAttributes(
		attribute.Int64("engine.pass", int64(pass)),
		attribute.Int("engine.presenter_runs", e.stats.PresenterRuns),
		attribute.Int("engine.memo_hits", e.stats.MemoHits),
	)
	e.metrics.observePass(e.stats)

	e.mu.Lock()
	e.lastStats = e.stats
	e.lastDiags = e.diags
	e.mu.Unlock()

	if e.observer != nil {
		e.observer(e.stats)
	}
	return errors.Join(cycleErrs...)
}

// assembleRoot walks the root's state tree bottom-up, flattening child
// spans into display-store child lists. Only lists that actually changed
// are written, so a quiescent tree performs zero store mutations.
func (e *Engine) assembleRoot(root *invocation) error {
	if root.state != nil {
		if err := e.assembleState(root.state); err != nil {
			return err
		}
	}
	if root.attachTo == display.None {
		return nil
	}
	flat := root.outSpan.Flatten(nil)
	if idsEqual(flat, root.lastAttach) {
		return nil
	}
	if err := e.store.SetChildren(root.attachTo, flat); err != nil {
		return err
	}
	root.lastAttach = flat
	return nil
}

func (e *Engine) assembleState(st *nodeState) error {
	if st == nil || st.razed {
		return nil
	}
	switch st.kind {
	case view.KindElement:
		for _, cs := range st.children {
			if err := e.assembleState(cs); err != nil {
				return err
			}
		}
		var flat []display.NodeID
		for _, cs := range st.children {
			flat = cs.spanOut.Flatten(flat)
		}
		if !idsEqual(flat, st.lastChildren) {
			if err := e.store.SetChildren(st.id, flat); err != nil {
				return err
			}
			st.lastChildren = flat
		}

	case view.KindFragment:
		for _, cs := range st.children {
			if err := e.assembleState(cs); err != nil {
				return err
			}
		}

	case view.KindConditional:
		return e.assembleState(st.child)

	case view.KindList:
		for _, item := range st.items {
			if err := e.assembleState(item.state); err != nil {
				return err
			}
		}

	case view.KindPresenter:
		child, ok := e.lookup(st.inv)
		if !ok || child.razed {
			return nil
		}
		return e.assembleState(child.state)
	}
	return nil
}

func idsEqual(a, b []display.NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
