package view

import "github.com/weftui/weft/pkg/display"

// El creates an element node of the given display kind.
func El(kind string, attrs Props, children ...*Node) *Node {
	return &Node{Kind: KindElement, Elem: kind, Attrs: attrs, Children: children}
}

// Text creates a text leaf.
func Text(s string) *Node {
	return &Node{Kind: KindLeaf, Text: s, Value: s}
}

// Leaf creates a leaf displaying an arbitrary value through a registered
// LeafRenderer.
func Leaf(value any) *Node {
	return &Node{Kind: KindLeaf, Value: value}
}

// If creates a conditional node. Either branch may be nil, which renders
// nothing for that branch.
func If(cond bool, then, els *Node) *Node {
	return &Node{Kind: KindConditional, Cond: cond, Then: then, Else: els}
}

// For creates a keyed list node. keyOf must produce keys that are unique
// among the items of one render; duplicates are a structural error.
func For(items []any, keyOf func(item any) any, itemView func(item any) *Node) *Node {
	return &Node{Kind: KindList, Items: items, KeyOf: keyOf, ItemView: itemView}
}

// ForIndexed creates an unkeyed list node reconciled by position. This is
// an explicit fallback: retained items are matched by index, so any
// insertion or removal rewrites every following slot. Prefer For.
func ForIndexed(items []any, itemView func(item any) *Node) *Node {
	return &Node{Kind: KindList, Items: items, ItemView: itemView}
}

// Call creates a nested presenter invocation. props must be structurally
// comparable; the child presenter re-runs only when they change.
func Call(presenter string, props any) *Node {
	return &Node{Kind: KindPresenter, Presenter: presenter, Props: props}
}

// Group creates a fragment: its children's spans concatenate into the
// parent with no wrapper display node.
func Group(children ...*Node) *Node {
	return &Node{Kind: KindFragment, Children: children}
}

// Ref creates a view over an existing host-owned display node. The engine
// positions the node but never despawns it.
func Ref(id display.NodeID) *Node {
	return &Node{Kind: KindRef, RefID: id}
}
