package span

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/weftui/weft/pkg/display"
)

func ids(vals ...display.NodeID) []display.NodeID { return vals }

func TestEmptySpan(t *testing.T) {
	s := Empty()
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
	if got := s.Flatten(nil); len(got) != 0 {
		t.Errorf("Flatten() = %v, want empty", got)
	}
	if !s.IsEmpty() {
		t.Error("IsEmpty() = false, want true")
	}
}

func TestNodeSpan(t *testing.T) {
	s := Node(7)
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
	if diff := cmp.Diff(ids(7), s.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupComposesAssociatively(t *testing.T) {
	left := Group(Node(1), Node(2))
	right := Group(Node(3))
	outer := Group(left, right, Empty())

	if outer.Count() != 3 {
		t.Errorf("Count() = %d, want 3", outer.Count())
	}
	if diff := cmp.Diff(ids(1, 2, 3), outer.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestSetPropagatesThroughParentByReference(t *testing.T) {
	slot := Empty()
	parent := Group(Node(1), slot, Node(4))

	slot.Set(Group(Node(2), Node(3)))

	if diff := cmp.Diff(ids(1, 2, 3, 4), parent.IDs()); diff != "" {
		t.Errorf("IDs() after Set mismatch (-want +got):\n%s", diff)
	}

	slot.Set(nil)
	if diff := cmp.Diff(ids(1, 4), parent.IDs()); diff != "" {
		t.Errorf("IDs() after clearing slot mismatch (-want +got):\n%s", diff)
	}
}

func TestResizePreservesSlotIdentity(t *testing.T) {
	s := Group(Node(1), Node(2))
	first := s.Slot(0)

	s.Resize(4)
	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
	if s.Slot(0) != first {
		t.Error("Resize replaced an existing slot wrapper")
	}
	if diff := cmp.Diff(ids(1, 2), s.IDs()); diff != "" {
		t.Errorf("IDs() after grow mismatch (-want +got):\n%s", diff)
	}

	s.Resize(1)
	if s.Slot(0) != first {
		t.Error("shrink replaced the surviving slot wrapper")
	}
	if diff := cmp.Diff(ids(1), s.IDs()); diff != "" {
		t.Errorf("IDs() after shrink mismatch (-want +got):\n%s", diff)
	}
}

func TestReorderKeepsWrappers(t *testing.T) {
	s := Group(Node(1), Node(2), Node(3))
	a, b, c := s.Slot(0), s.Slot(1), s.Slot(2)

	s.Reorder([]int{2, 0, 1})

	if s.Slot(0) != c || s.Slot(1) != a || s.Slot(2) != b {
		t.Error("Reorder did not preserve wrapper identity")
	}
	if diff := cmp.Diff(ids(3, 1, 2), s.IDs()); diff != "" {
		t.Errorf("IDs() after Reorder mismatch (-want +got):\n%s", diff)
	}
}

func TestEqual(t *testing.T) {
	a := Group(Node(1), Group(Node(2)))
	b := Group(Group(Node(1), Node(2)))
	if !a.Equal(b) {
		t.Error("spans with identical flattening reported unequal")
	}
	if a.Equal(Group(Node(2), Node(1))) {
		t.Error("spans with different order reported equal")
	}
}
