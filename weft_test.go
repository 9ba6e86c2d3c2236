package weft

import (
	"context"
	"testing"

	"github.com/weftui/weft/pkg/source"
)

// Exercises the package through its re-exported surface only.
func TestFacadeEndToEnd(t *testing.T) {
	store := NewMemoryStore()
	window, err := store.Create("window")
	if err != nil {
		t.Fatal(err)
	}

	sources := NewSources()
	title := source.NewSource(sources, "title", "hello")

	presenters := NewPresenters()
	presenters.Register("root", func(props any, ctx *Ctx) *Node {
		return El("panel", Props{"title": Read(ctx, title)},
			If(true, Text("on"), Text("off")))
	})

	e := New(store, sources, presenters)
	if _, err := e.Mount("root", nil, window); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := e.RunPass(context.Background()); err != nil {
		t.Fatalf("RunPass: %v", err)
	}

	win, _ := store.Node(window)
	if len(win.Children) != 1 {
		t.Fatalf("window children = %v", win.Children)
	}
	panel, _ := store.Node(win.Children[0])
	if panel.Kind != "panel" || panel.Attrs["title"] != "hello" {
		t.Errorf("panel = %+v", panel)
	}

	title.Set("updated")
	if err := e.RunPass(context.Background()); err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	panel, _ = store.Node(win.Children[0])
	if panel.Attrs["title"] != "updated" {
		t.Errorf("title = %v after source write", panel.Attrs["title"])
	}
}
