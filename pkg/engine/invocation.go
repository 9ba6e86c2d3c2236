package engine

import (
	"reflect"

	"github.com/weftui/weft/pkg/display"
	"github.com/weftui/weft/pkg/source"
	"github.com/weftui/weft/pkg/span"
	"github.com/weftui/weft/pkg/view"
)

// Handle is the stable identifier of a presenter invocation record.
// Invocation records live in a flat arena keyed by handle; parent-child
// links are handles, never owning references.
type Handle uint64

// invocation is the record of one live presenter call site: its function
// identity, last props, previous view tree, view state, produced span,
// and current dependency set.
type invocation struct {
	handle Handle
	engine *Engine

	parent Handle // 0 for roots
	depth  int    // root = 0; children render after parents within a pass

	presenter string
	props     any
	tree      *view.Node // view tree from the last render
	state     *nodeState
	// outSpan is the invocation's identity-stable span wrapper. Parents
	// embed it by reference, so a re-render propagates without touching
	// the parent.
	outSpan *span.Span
	deps    map[source.ID]source.Version

	// Root bookkeeping.
	isRoot     bool
	attachTo   display.NodeID
	lastAttach []display.NodeID

	dirty      bool
	propsDirty bool // parent handed down different props
	razed      bool

	// Per-pass re-entrancy accounting.
	passStamp uint64
	visits    int
}

// SourceChanged implements source.Subscriber: a version change marks the
// invocation dirty for the next pass. Notifications arriving after raze
// are ignored; subscriptions are dropped synchronously during raze so
// this is belt and braces.
func (inv *invocation) SourceChanged(source.ID, source.Version) {
	inv.engine.markDirty(inv)
}

// SubscriberID implements source.Subscriber.
func (inv *invocation) SubscriberID() uint64 {
	return uint64(inv.handle)
}

// nodeState is the mutable companion of one view node: it mirrors the
// view tree's shape and owns the display nodes the view produced. Each
// state subtree is exclusively owned by its invocation.
type nodeState struct {
	kind  view.Kind
	razed bool

	// spanOut is the identity-stable span for this node. Parent states
	// hold it by reference inside their own groups.
	spanOut *span.Span

	// Element and leaf.
	id        display.NodeID
	elem      string
	leafType  reflect.Type
	lastAttrs display.Attrs

	// Element: last child id sequence attached to the store, for
	// idempotent assembly.
	lastChildren []display.NodeID

	// Element and fragment.
	children []*nodeState

	// Conditional: -1 indeterminate, 1 then-branch, 0 else-branch.
	branch int8
	child  *nodeState

	// List.
	items []listItem
	keyed bool

	// Presenter.
	presenter string
	inv       Handle

	// Ref.
	refID display.NodeID
}

// listItem pairs a sibling key with the state built for it. The ordered
// item slice is the List node's keyed state mapping.
type listItem struct {
	key   any
	state *nodeState
}

func newNodeState(kind view.Kind) *nodeState {
	return &nodeState{kind: kind, branch: -1, spanOut: span.Empty()}
}
