package engine

import (
	"fmt"
	"reflect"

	"github.com/weftui/weft/pkg/display"
	"github.com/weftui/weft/pkg/span"
	"github.com/weftui/weft/pkg/view"
)

// emptyFragment normalizes nil view nodes: a presenter returning nil, or
// a conditional with a nil branch, renders nothing.
var emptyFragment = &view.Node{Kind: view.KindFragment}

func normalize(n *view.Node) *view.Node {
	if n == nil {
		return emptyFragment
	}
	return n
}

// buildNode performs first construction of a view node: it allocates
// display nodes, initializes view state, and recurses into children.
// Store errors propagate unmodified.
func (e *Engine) buildNode(inv *invocation, n *view.Node) (*nodeState, error) {
	n = normalize(n)
	st := newNodeState(n.Kind)

	switch n.Kind {
	case view.KindLeaf:
		return e.buildLeaf(inv, n, st)

	case view.KindElement:
		id, err := e.createNode(n.Elem)
		if err != nil {
			return nil, err
		}
		st.id = id
		st.elem = n.Elem
		if len(n.Attrs) > 0 {
			attrs := display.Attrs(n.Attrs)
			if err := e.store.SetAttributes(id, attrs); err != nil {
				return nil, err
			}
			st.lastAttrs = attrs
		}
		for _, c := range n.Children {
			cs, err := e.buildNode(inv, c)
			if err != nil {
				return nil, err
			}
			st.children = append(st.children, cs)
		}
		st.spanOut.Set(span.Node(id))

	case view.KindFragment:
		for _, c := range n.Children {
			cs, err := e.buildNode(inv, c)
			if err != nil {
				return nil, err
			}
			st.children = append(st.children, cs)
		}
		st.spanOut.Set(groupOf(st.children))

	case view.KindConditional:
		chosen, branch := chosenBranch(n)
		cs, err := e.buildNode(inv, chosen)
		if err != nil {
			return nil, err
		}
		st.branch = branch
		st.child = cs
		st.spanOut.Set(span.Group(cs.spanOut))

	case view.KindList:
		if err := e.buildList(inv, n, st); err != nil {
			return nil, err
		}

	case view.KindPresenter:
		child := e.newInvocation(n.Presenter, n.Props, inv)
		st.presenter = n.Presenter
		st.inv = child.handle
		st.spanOut.Set(span.Group(child.outSpan))
		e.markDirty(child)

	case view.KindRef:
		st.refID = n.RefID
		st.spanOut.Set(span.Node(n.RefID))
	}

	return st, nil
}

func (e *Engine) buildLeaf(inv *invocation, n *view.Node, st *nodeState) (*nodeState, error) {
	value := leafValue(n)
	renderer, err := view.LeafRendererFor(value)
	if err != nil {
		e.diagnose(inv, DiagUnknownLeaf, err.Error())
		// Render nothing for the offending leaf; the pass continues.
		st.kind = view.KindFragment
		return st, nil
	}

	id, err := e.createNode(renderer.DisplayKind())
	if err != nil {
		return nil, err
	}
	attrs := renderer.Attrs(value)
	if err := e.store.SetAttributes(id, attrs); err != nil {
		return nil, err
	}
	st.id = id
	st.elem = renderer.DisplayKind()
	st.leafType = reflect.TypeOf(value)
	st.lastAttrs = attrs
	st.spanOut.Set(span.Node(id))
	return st, nil
}

// updateNode differentially patches st against the new view node n.
// Same node type and identity patch in place; a mismatch razes the old
// subtree and builds the new one. Reapplying identical input is a no-op.
func (e *Engine) updateNode(inv *invocation, n *view.Node, st *nodeState) (*nodeState, error) {
	n = normalize(n)

	if !sameIdentity(n, st) {
		if err := e.razeState(inv, st); err != nil {
			return nil, err
		}
		ns, err := e.buildNode(inv, n)
		if err != nil {
			return nil, err
		}
		// Keep the old wrapper so parents holding it by reference see the
		// replacement.
		st.spanOut.Set(ns.spanOut)
		ns.spanOut = st.spanOut
		return ns, nil
	}

	switch n.Kind {
	case view.KindLeaf:
		value := leafValue(n)
		renderer, err := view.LeafRendererFor(value)
		if err != nil {
			e.diagnose(inv, DiagUnknownLeaf, err.Error())
			return st, nil
		}
		next := renderer.Attrs(value)
		changed := view.Props(next).Changed(view.Props(st.lastAttrs))
		if len(changed) > 0 {
			if err := e.store.SetAttributes(st.id, display.Attrs(changed)); err != nil {
				return nil, err
			}
		}
		st.lastAttrs = next

	case view.KindElement:
		next := display.Attrs(n.Attrs)
		changed := view.Props(next).Changed(view.Props(st.lastAttrs))
		if len(changed) > 0 {
			if err := e.store.SetAttributes(st.id, display.Attrs(changed)); err != nil {
				return nil, err
			}
		}
		st.lastAttrs = next
		if err := e.updateChildren(inv, n.Children, st); err != nil {
			return nil, err
		}

	case view.KindFragment:
		if err := e.updateChildren(inv, n.Children, st); err != nil {
			return nil, err
		}
		st.spanOut.Set(groupOf(st.children))

	case view.KindConditional:
		chosen, branch := chosenBranch(n)
		if st.branch != branch {
			// Branch flip: the losing subtree is torn down entirely.
			if err := e.razeState(inv, st.child); err != nil {
				return nil, err
			}
			cs, err := e.buildNode(inv, chosen)
			if err != nil {
				return nil, err
			}
			st.branch = branch
			st.child = cs
			st.spanOut.Set(span.Group(cs.spanOut))
		} else {
			cs, err := e.updateNode(inv, chosen, st.child)
			if err != nil {
				return nil, err
			}
			st.child = cs
		}

	case view.KindList:
		if err := e.updateList(inv, n, st); err != nil {
			return nil, err
		}

	case view.KindPresenter:
		child, ok := e.lookup(st.inv)
		if !ok {
			return nil, fmt.Errorf("presenter %q: %w", st.presenter, ErrUnknownInvocation)
		}
		if !view.Comparable(n.Props) {
			e.diagnose(inv, DiagIncomparableProps,
				fmt.Sprintf("props of presenter %q are not structurally comparable", n.Presenter))
			// Forced rebuild of the offending subtree.
			if err := e.razeInvocation(child); err != nil {
				return nil, err
			}
			fresh := e.newInvocation(n.Presenter, n.Props, inv)
			st.inv = fresh.handle
			st.spanOut.Set(span.Group(fresh.outSpan))
			e.markDirty(fresh)
			break
		}
		if !view.ValueEqual(child.props, n.Props) {
			child.props = n.Props
			child.propsDirty = true
			e.markDirty(child)
		}

	case view.KindRef:
		// Identity matched, nothing to patch: the host owns the node.
	}

	return st, nil
}

// updateChildren reconciles fixed-arity children positionally.
func (e *Engine) updateChildren(inv *invocation, kids []*view.Node, st *nodeState) error {
	for i := 0; i < len(kids) && i < len(st.children); i++ {
		cs, err := e.updateNode(inv, kids[i], st.children[i])
		if err != nil {
			return err
		}
		st.children[i] = cs
	}
	for i := len(st.children); i < len(kids); i++ {
		cs, err := e.buildNode(inv, kids[i])
		if err != nil {
			return err
		}
		st.children = append(st.children, cs)
	}
	if len(kids) < len(st.children) {
		for _, cs := range st.children[len(kids):] {
			if err := e.razeState(inv, cs); err != nil {
				return err
			}
		}
		st.children = st.children[:len(kids)]
	}
	return nil
}

// buildList constructs a List node's items and keyed state mapping.
func (e *Engine) buildList(inv *invocation, n *view.Node, st *nodeState) error {
	keys, keyed := e.listKeys(inv, n)
	itemView := listItemView(n)

	st.keyed = keyed
	st.items = make([]listItem, 0, len(n.Items))
	for i, item := range n.Items {
		cs, err := e.buildNode(inv, itemView(item))
		if err != nil {
			return err
		}
		st.items = append(st.items, listItem{key: keys[i], state: cs})
	}
	st.spanOut.Set(groupOfItems(st.items))
	return nil
}

// updateList reconciles dynamic-arity children. Keyed lists go through
// the LCS-style differ; the indexed mode overwrites positionally.
func (e *Engine) updateList(inv *invocation, n *view.Node, st *nodeState) error {
	keys, keyed := e.listKeys(inv, n)
	itemView := listItemView(n)

	if keyed && st.keyed {
		prevKeys := make([]any, len(st.items))
		for i, item := range st.items {
			prevKeys[i] = item.key
		}
		d, err := diffKeys(prevKeys, keys)
		if err == nil {
			return e.applyKeyedDiff(inv, n, st, keys, d, itemView)
		}
		e.diagnose(inv, DiagDuplicateKey, err.Error())
		keyed = false // fall through to the positional full rebuild
	}

	// Positional overwrite: retained slots are matched by index.
	count := len(n.Items)
	for i := 0; i < count && i < len(st.items); i++ {
		cs, err := e.updateNode(inv, itemView(n.Items[i]), st.items[i].state)
		if err != nil {
			return err
		}
		st.items[i] = listItem{key: keys[i], state: cs}
	}
	for i := len(st.items); i < count; i++ {
		cs, err := e.buildNode(inv, itemView(n.Items[i]))
		if err != nil {
			return err
		}
		st.items = append(st.items, listItem{key: keys[i], state: cs})
		e.stats.ListBuilds++
	}
	if count < len(st.items) {
		for _, item := range st.items[count:] {
			if err := e.razeState(inv, item.state); err != nil {
				return err
			}
			e.stats.ListRazes++
		}
		st.items = st.items[:count]
	}
	st.keyed = keyed
	st.spanOut.Set(groupOfItems(st.items))
	return nil
}

// applyKeyedDiff executes a keyed reconciliation plan: absent keys are
// razed, new keys built, retained keys patched and repositioned by
// span-slot reassignment.
func (e *Engine) applyKeyedDiff(inv *invocation, n *view.Node, st *nodeState, keys []any, d keyedDiff, itemView func(any) *view.Node) error {
	for _, p := range d.razed {
		if err := e.razeState(inv, st.items[p].state); err != nil {
			return err
		}
		e.stats.ListRazes++
	}

	next := make([]listItem, len(keys))
	for i, p := range d.match {
		if p >= 0 {
			cs, err := e.updateNode(inv, itemView(n.Items[i]), st.items[p].state)
			if err != nil {
				return err
			}
			next[i] = listItem{key: keys[i], state: cs}
		} else {
			cs, err := e.buildNode(inv, itemView(n.Items[i]))
			if err != nil {
				return err
			}
			next[i] = listItem{key: keys[i], state: cs}
			e.stats.ListBuilds++
		}
	}
	e.stats.ListMoves += d.moves

	st.items = next
	st.keyed = true
	st.spanOut.Set(groupOfItems(st.items))
	return nil
}

// listKeys derives the sibling key sequence for one render. Indexed
// lists key by position; a nil KeyOf selects indexed mode. A duplicate
// or unhashable key degrades the whole list to indexed matching for
// this render, with a diagnostic.
func (e *Engine) listKeys(inv *invocation, n *view.Node) (keys []any, keyed bool) {
	if n.KeyOf == nil {
		return indexedKeys(len(n.Items)), false
	}
	keys = make([]any, len(n.Items))
	seen := make(map[any]struct{}, len(n.Items))
	for i, item := range n.Items {
		k := n.KeyOf(item)
		if !keyUsable(k) {
			e.diagnose(inv, DiagIncomparableKey, fmt.Sprintf("list key %v (%T) is not hashable", k, k))
			return indexedKeys(len(n.Items)), false
		}
		if _, dup := seen[k]; dup {
			e.diagnose(inv, DiagDuplicateKey, fmt.Sprintf("duplicate list key %v", k))
			return indexedKeys(len(n.Items)), false
		}
		seen[k] = struct{}{}
		keys[i] = k
	}
	return keys, true
}

func indexedKeys(n int) []any {
	keys := make([]any, n)
	for i := range keys {
		keys[i] = i
	}
	return keys
}

func listItemView(n *view.Node) func(any) *view.Node {
	if n.ItemView == nil {
		return func(any) *view.Node { return nil }
	}
	return n.ItemView
}

// razeState recursively despawns every display node owned by the state
// subtree and razes nested invocation records. Each subtree is razed
// exactly once; a second raze is a fatal lifetime violation.
func (e *Engine) razeState(inv *invocation, st *nodeState) error {
	if st == nil {
		return nil
	}
	if st.razed {
		panic(&UseAfterRazeError{Invocation: inv.handle, Detail: "state subtree razed twice"})
	}
	st.razed = true

	switch st.kind {
	case view.KindLeaf:
		if err := e.despawnNode(st.id); err != nil {
			return err
		}

	case view.KindElement:
		for _, cs := range st.children {
			if err := e.razeState(inv, cs); err != nil {
				return err
			}
		}
		if err := e.despawnNode(st.id); err != nil {
			return err
		}

	case view.KindFragment:
		for _, cs := range st.children {
			if err := e.razeState(inv, cs); err != nil {
				return err
			}
		}

	case view.KindConditional:
		if err := e.razeState(inv, st.child); err != nil {
			return err
		}

	case view.KindList:
		for _, item := range st.items {
			if err := e.razeState(inv, item.state); err != nil {
				return err
			}
		}

	case view.KindPresenter:
		child, ok := e.lookup(st.inv)
		if !ok {
			// A live presenter state always owns a live child invocation;
			// a missing record means the child was razed out from under it.
			panic(&UseAfterRazeError{Invocation: st.inv, Detail: "child invocation missing at raze"})
		}
		if err := e.razeInvocation(child); err != nil {
			return err
		}

	case view.KindRef:
		// Host-owned; detached by the parent's next SetChildren, never
		// despawned here.
	}

	st.spanOut.Set(nil)
	return nil
}

func (e *Engine) createNode(kind string) (display.NodeID, error) {
	id, err := e.store.Create(kind)
	if err != nil {
		return display.None, err
	}
	e.stats.NodesBuilt++
	return id, nil
}

func (e *Engine) despawnNode(id display.NodeID) error {
	if id == display.None {
		return nil
	}
	if err := e.store.Despawn(id); err != nil {
		return err
	}
	e.stats.NodesRazed++
	return nil
}

// sameIdentity reports whether the new view node patches st in place.
func sameIdentity(n *view.Node, st *nodeState) bool {
	if n.Kind != st.kind {
		return false
	}
	switch n.Kind {
	case view.KindLeaf:
		return reflect.TypeOf(leafValue(n)) == st.leafType
	case view.KindElement:
		return n.Elem == st.elem
	case view.KindPresenter:
		return n.Presenter == st.presenter
	case view.KindRef:
		return n.RefID == st.refID
	default:
		return true
	}
}

func leafValue(n *view.Node) any {
	if n.Value != nil {
		return n.Value
	}
	return n.Text
}

func chosenBranch(n *view.Node) (*view.Node, int8) {
	if n.Cond {
		return normalize(n.Then), 1
	}
	return normalize(n.Else), 0
}

func groupOf(children []*nodeState) *span.Span {
	parts := make([]*span.Span, len(children))
	for i, c := range children {
		parts[i] = c.spanOut
	}
	return span.Group(parts...)
}

func groupOfItems(items []listItem) *span.Span {
	parts := make([]*span.Span, len(items))
	for i, item := range items {
		parts[i] = item.state.spanOut
	}
	return span.Group(parts...)
}
