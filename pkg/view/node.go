package view

import "github.com/weftui/weft/pkg/display"

// Kind is the view node variant discriminator.
type Kind uint8

const (
	KindLeaf        Kind = iota // scalar/text leaf
	KindElement                 // display node with attributes and children
	KindConditional             // one of two branches, chosen per render
	KindList                    // dynamic-arity children, keyed or indexed
	KindPresenter               // nested presenter invocation
	KindFragment                // grouping without a wrapper node
	KindRef                     // explicit host-provided display node
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "Leaf"
	case KindElement:
		return "Element"
	case KindConditional:
		return "Conditional"
	case KindList:
		return "List"
	case KindPresenter:
		return "Presenter"
	case KindFragment:
		return "Fragment"
	case KindRef:
		return "Ref"
	default:
		return "Unknown"
	}
}

// Node is an immutable description of desired UI structure for one render.
// Presenters return Node trees; the engine never mutates them. Only the
// fields for the node's Kind are meaningful.
type Node struct {
	Kind Kind

	// Element
	Elem     string  // display node kind, e.g. "panel"
	Attrs    Props   // attributes to apply
	Children []*Node // fixed-arity children (also used by Fragment)

	// Leaf
	Text  string // text leaf content
	Value any    // non-text leaf, displayed via a registered LeafRenderer

	// Conditional
	Cond bool
	Then *Node
	Else *Node

	// List
	Items    []any
	KeyOf    func(item any) any   // nil selects indexed mode
	ItemView func(item any) *Node

	// Presenter
	Presenter string // registered presenter function id
	Props     any    // structurally comparable props

	// Ref
	RefID display.NodeID
}
