package span

import "github.com/weftui/weft/pkg/display"

// form discriminates the three span shapes.
type form uint8

const (
	formEmpty form = iota // nothing rendered yet, or a conditional that chose nothing
	formNode              // a single display node
	formGroup             // an ordered sequence of sub-spans
)

// Span is the flattened output of building one view node: an ordered,
// possibly empty sequence of display node ids. Groups hold their sub-spans
// by reference, so a deep fixed structure recomposes without copying when
// a single slot changes; flattening happens only at attach time.
//
// A Span wrapper is identity-stable: the engine allocates one wrapper per
// view slot and mutates its contents in place with Set and SetSlot, so
// parent groups observe child changes without being rebuilt.
type Span struct {
	form  form
	id    display.NodeID
	parts []*Span
}

// Empty returns a new span that renders nothing.
func Empty() *Span {
	return &Span{}
}

// Node returns a new span holding a single display node.
func Node(id display.NodeID) *Span {
	return &Span{form: formNode, id: id}
}

// Group returns a new span composed of the given sub-spans, held by
// reference. Nil parts are replaced with fresh empty spans.
func Group(parts ...*Span) *Span {
	ps := make([]*Span, len(parts))
	for i, p := range parts {
		if p == nil {
			p = Empty()
		}
		ps[i] = p
	}
	return &Span{form: formGroup, parts: ps}
}

// IsEmpty reports whether the span contains no display nodes.
func (s *Span) IsEmpty() bool {
	return s == nil || s.Count() == 0
}

// Count returns the number of display nodes in the span.
func (s *Span) Count() int {
	if s == nil {
		return 0
	}
	switch s.form {
	case formNode:
		return 1
	case formGroup:
		n := 0
		for _, p := range s.parts {
			n += p.Count()
		}
		return n
	default:
		return 0
	}
}

// Flatten appends the span's display node ids, in order, to out and
// returns the extended slice.
func (s *Span) Flatten(out []display.NodeID) []display.NodeID {
	if s == nil {
		return out
	}
	switch s.form {
	case formNode:
		out = append(out, s.id)
	case formGroup:
		for _, p := range s.parts {
			out = p.Flatten(out)
		}
	}
	return out
}

// IDs returns the flattened id sequence as a fresh slice.
func (s *Span) IDs() []display.NodeID {
	return s.Flatten(nil)
}

// Set overwrites the span's contents with those of o, preserving the
// receiver's identity. Parents holding the receiver by reference see the
// new contents on their next flatten.
func (s *Span) Set(o *Span) {
	if o == nil {
		s.form = formEmpty
		s.id = 0
		s.parts = nil
		return
	}
	s.form = o.form
	s.id = o.id
	s.parts = o.parts
}

// Len returns the number of top-level slots. A node span has one slot,
// an empty span none.
func (s *Span) Len() int {
	if s == nil {
		return 0
	}
	switch s.form {
	case formNode:
		return 1
	case formGroup:
		return len(s.parts)
	default:
		return 0
	}
}

// Slot returns the sub-span in slot i of a group span.
func (s *Span) Slot(i int) *Span {
	return s.parts[i]
}

// SetSlot replaces slot i of a group span with sub. The slot's previous
// wrapper loses its place; use Slot(i).Set(...) instead to mutate a slot
// while keeping its identity.
func (s *Span) SetSlot(i int, sub *Span) {
	if sub == nil {
		sub = Empty()
	}
	s.parts[i] = sub
}

// Resize grows or shrinks a group span to n slots. Existing slots keep
// their wrappers; new slots are fresh empty spans. A non-group span
// becomes a group.
func (s *Span) Resize(n int) {
	if s.form != formGroup {
		var parts []*Span
		if s.form == formNode {
			parts = []*Span{Node(s.id)}
		}
		s.form = formGroup
		s.id = 0
		s.parts = parts
	}
	for len(s.parts) < n {
		s.parts = append(s.parts, Empty())
	}
	if len(s.parts) > n {
		s.parts = s.parts[:n]
	}
}

// Reorder permutes a group span's slots so slot i holds the wrapper
// previously at perm[i]. Wrapper identity is preserved, which is how the
// keyed differ repositions retained items without rebuilding them.
func (s *Span) Reorder(perm []int) {
	next := make([]*Span, len(perm))
	for i, from := range perm {
		next[i] = s.parts[from]
	}
	s.parts = next
}

// Equal reports whether two spans flatten to the same id sequence.
func (s *Span) Equal(o *Span) bool {
	a := s.Flatten(nil)
	b := o.Flatten(nil)
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
