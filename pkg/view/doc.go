// Package view defines the immutable view node vocabulary that presenters
// produce.
//
// A view node describes desired UI structure for one render and is never
// mutated by the engine. The variant set is closed: Leaf, Element,
// Conditional, List, Presenter, Fragment, and Ref. Extensibility comes
// from two ends instead of new variants — presenters compose trees out of
// other presenters (Call), and arbitrary leaf value types become
// displayable by registering a LeafRenderer keyed on the value's dynamic
// type.
//
// Trees are built with the factory helpers:
//
//	view.El("panel", view.Props{"dir": "column"},
//	    view.Text("Tasks"),
//	    view.For(items, keyOf, taskRow),
//	    view.If(showFooter, view.Call("footer", FooterProps{}), nil),
//	)
package view
