// Package weft provides the public API for the weft reconciliation
// engine.
//
// This is the recommended import for most hosts:
//
//	import "github.com/weftui/weft"
//
// Usage:
//
//	store := weft.NewMemoryStore()
//	sources := weft.NewSources()
//	presenters := weft.NewPresenters()
//	presenters.Register("root", func(props any, ctx *weft.Ctx) *weft.Node {
//	    title, _ := ctx.Read("title")
//	    return weft.El("panel", weft.Props{"title": title})
//	})
//
//	e := weft.New(store, sources, presenters)
//	e.Mount("root", nil, window)
//	for range ticker.C {
//	    e.RunPass(ctx)
//	}
package weft

import (
	"github.com/weftui/weft/pkg/display"
	"github.com/weftui/weft/pkg/engine"
	"github.com/weftui/weft/pkg/source"
	"github.com/weftui/weft/pkg/view"
)

// Core types re-exported from pkg/engine and pkg/view.
type (
	// Engine reconciles presenter output against a display store.
	Engine = engine.Engine

	// Ctx is the tracked context passed to presenters.
	Ctx = engine.Ctx

	// Handle identifies a live presenter invocation.
	Handle = engine.Handle

	// PassStats summarizes one scheduler pass.
	PassStats = engine.PassStats

	// Diagnostic describes a recovered structural error.
	Diagnostic = engine.Diagnostic

	// Presenter is a pure function from props to a view tree.
	Presenter = engine.Presenter

	// Node is one node of a declarative view tree.
	Node = view.Node

	// Props holds element attributes and presenter props.
	Props = view.Props
)

// View builders re-exported from pkg/view.
var (
	El         = view.El
	Text       = view.Text
	Leaf       = view.Leaf
	If         = view.If
	For        = view.For
	ForIndexed = view.ForIndexed
	Call       = view.Call
	Group      = view.Group
	Ref        = view.Ref
)

// New creates an engine over the given display store, source provider,
// and presenter registry. See engine.New for options.
func New(store display.Store, provider source.Provider, presenters *engine.Registry, opts ...engine.Option) *Engine {
	return engine.New(store, provider, presenters, opts...)
}

// NewPresenters returns an empty presenter registry.
func NewPresenters() *engine.Registry {
	return engine.NewRegistry()
}

// NewSources returns an empty in-memory source registry.
func NewSources() *source.Registry {
	return source.NewRegistry()
}

// NewMemoryStore returns an empty in-memory display store.
func NewMemoryStore() *display.MemoryStore {
	return display.NewMemoryStore()
}

// Read returns a typed source's current value through the tracked
// context, recording the dependency.
func Read[T any](c *Ctx, s *source.Source[T]) T {
	return engine.Read(c, s)
}
