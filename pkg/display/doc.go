// Package display defines the contract between the reconciliation engine
// and the host's retained scene graph.
//
// The engine never stores display state of its own; it drives a Store
// through four operations: Create, SetAttributes, SetChildren, and
// Despawn. Node ids handed out by Create stay valid until despawned,
// which lets the engine hold them inside node spans across passes.
//
// MemoryStore is a reference implementation with mutation counters. It is
// used by the test suite to verify that idempotent updates perform zero
// store mutations, and by the demo command and inspector as a concrete
// scene graph.
package display
