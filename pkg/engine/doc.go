// Package engine reconciles declarative view trees against a retained
// display-node store.
//
// Presenters are pure functions from props and a tracked context to a
// view tree (package view). The engine retains, per presenter
// invocation, the previous tree, a mutable state mirror owning the
// display nodes it produced, and the set of data sources the presenter
// read. When a source changes version or a parent hands down different
// props, the invocation is marked dirty; the next RunPass re-renders it
// and patches only what differs.
//
// # Scheduling
//
// The host calls RunPass once per tick. Dirty invocations drain from a
// min-depth heap, so parents render before children and a parent that
// changes a child's props dirties it before the child is visited. An
// invocation re-dirtied past the configured bound within one pass is
// dropped with a CycleError; the rest of the pass completes.
//
// # Memoization
//
// A dirty invocation whose props are unchanged and whose recorded
// dependency versions all still match skips its presenter entirely and
// reuses the previous tree and span.
//
// # Spans
//
// Each invocation exposes an identity-stable span (package span) that
// parents embed by reference. Re-renders mutate the span in place, so
// containment propagates without rebuilding ancestors; actual child-list
// writes happen once per pass during bottom-up assembly, and only for
// lists that changed.
package engine
