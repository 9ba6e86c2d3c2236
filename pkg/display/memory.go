package display

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryNode is a node held by a MemoryStore.
type MemoryNode struct {
	ID       NodeID
	Kind     string
	Attrs    Attrs
	Children []NodeID
}

// MemoryStats counts every mutation applied to a MemoryStore. Tests use it
// to assert that a no-op update pass performs zero mutations.
type MemoryStats struct {
	Creates      int
	AttrSets     int
	ChildSets    int
	Despawns     int
	LiveNodes    int
	TotalSpawned int
}

// MemoryStore is an in-memory Store implementation. It backs the engine's
// tests, the demo app, and the inspector's snapshots. Production hosts
// supply their own Store.
type MemoryStore struct {
	mu     sync.Mutex
	nodes  map[NodeID]*MemoryNode
	nextID NodeID
	stats  MemoryStats
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nodes: make(map[NodeID]*MemoryNode)}
}

// Create implements Store.
func (s *MemoryStore) Create(kind string) (NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.nodes[id] = &MemoryNode{ID: id, Kind: kind, Attrs: Attrs{}}
	s.stats.Creates++
	s.stats.TotalSpawned++
	return id, nil
}

// SetAttributes implements Store.
func (s *MemoryStore) SetAttributes(id NodeID, attrs Attrs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("set attributes on %d: %w", id, ErrUnknownNode)
	}
	for k, v := range attrs {
		node.Attrs[k] = v
	}
	s.stats.AttrSets++
	return nil
}

// SetChildren implements Store.
func (s *MemoryStore) SetChildren(id NodeID, children []NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("set children on %d: %w", id, ErrUnknownNode)
	}
	for _, c := range children {
		if _, ok := s.nodes[c]; !ok {
			return fmt.Errorf("set children on %d: child %d: %w", id, c, ErrUnknownNode)
		}
	}
	node.Children = append([]NodeID(nil), children...)
	s.stats.ChildSets++
	return nil
}

// Despawn implements Store.
func (s *MemoryStore) Despawn(id NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id]; !ok {
		return fmt.Errorf("despawn %d: %w", id, ErrUnknownNode)
	}
	delete(s.nodes, id)
	s.stats.Despawns++
	return nil
}

// Node returns a copy of the node with the given id, or false if it does
// not exist.
func (s *MemoryStore) Node(id NodeID) (MemoryNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return MemoryNode{}, false
	}
	return s.copyNode(node), true
}

// Stats returns a snapshot of the mutation counters.
func (s *MemoryStore) Stats() MemoryStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stats
	st.LiveNodes = len(s.nodes)
	return st
}

// Snapshot returns copies of all live nodes ordered by id.
func (s *MemoryStore) Snapshot() []MemoryNode {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]MemoryNode, 0, len(s.nodes))
	for _, node := range s.nodes {
		out = append(out, s.copyNode(node))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) copyNode(node *MemoryNode) MemoryNode {
	cp := MemoryNode{ID: node.ID, Kind: node.Kind, Attrs: Attrs{}}
	for k, v := range node.Attrs {
		cp.Attrs[k] = v
	}
	cp.Children = append([]NodeID(nil), node.Children...)
	return cp
}
