package display

import "errors"

// NodeID identifies a retained display node in the host's scene graph.
// IDs remain stable and valid until the node is despawned.
type NodeID uint64

// None is the zero NodeID and never refers to a live node.
const None NodeID = 0

// Attrs holds the mutable attributes of a display node.
type Attrs map[string]any

// ErrUnknownNode is returned by a Store when an operation names a NodeID
// that was never created or has already been despawned.
var ErrUnknownNode = errors.New("display: unknown node id")

// Store is the host-owned retained scene graph. The reconciler is the only
// engine component that mutates it, and only during a scheduler pass.
// Store errors propagate to the caller unmodified; the engine never masks
// them.
type Store interface {
	// Create allocates a new display node of the given kind and returns
	// its id.
	Create(kind string) (NodeID, error)

	// SetAttributes overwrites the given attributes on the node.
	// Attributes not present in attrs are left untouched.
	SetAttributes(id NodeID, attrs Attrs) error

	// SetChildren replaces the node's ordered child list.
	SetChildren(id NodeID, children []NodeID) error

	// Despawn removes a single node. The caller is responsible for having
	// detached or despawned its children first.
	Despawn(id NodeID) error
}
