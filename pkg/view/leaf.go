package view

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/weftui/weft/pkg/display"
)

// LeafRenderer displays an arbitrary leaf value as a single display node.
// Renderers are registered per value type; this is how user code extends
// the set of displayable leaf types without the engine knowing about them.
type LeafRenderer interface {
	// DisplayKind is the display node kind created for values of this type.
	DisplayKind() string

	// Attrs converts the value into display node attributes. It is called
	// on build and on every update; the engine writes only changed
	// attributes to the store.
	Attrs(value any) display.Attrs
}

var (
	leafMu        sync.RWMutex
	leafRenderers = map[reflect.Type]LeafRenderer{}
)

// RegisterLeaf registers a renderer for values of the same dynamic type as
// prototype. Registering a type twice replaces the earlier renderer.
func RegisterLeaf(prototype any, r LeafRenderer) {
	t := reflect.TypeOf(prototype)
	leafMu.Lock()
	leafRenderers[t] = r
	leafMu.Unlock()
}

// LeafRendererFor resolves the renderer for v's dynamic type.
func LeafRendererFor(v any) (LeafRenderer, error) {
	leafMu.RLock()
	r, ok := leafRenderers[reflect.TypeOf(v)]
	leafMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("view: no leaf renderer registered for %T", v)
	}
	return r, nil
}

// textRenderer displays string leaves. It is the one built-in renderer.
type textRenderer struct{}

// TextKind is the display node kind used for text leaves.
const TextKind = "text"

func (textRenderer) DisplayKind() string { return TextKind }

func (textRenderer) Attrs(value any) display.Attrs {
	return display.Attrs{"text": value.(string)}
}

func init() {
	RegisterLeaf("", textRenderer{})
}
