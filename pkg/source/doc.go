// Package source defines the reactive data sources presenters read.
//
// A source is a (value, version) pair owned by the host. The engine only
// reads sources; every mutation happens host-side and reaches the engine
// as a version-change notification, which marks dependent presenter
// invocations dirty for the next scheduler pass. Peripheral mutable state
// (styling, focus, timers) must flow through this channel too — nothing
// outside the reconciler may touch view or state trees directly.
//
// Registry is the in-memory Provider with typed Source[T] handles.
// RedisProvider bridges sources owned by a remote process over Redis
// pub/sub.
package source
