package engine

import (
	"log/slog"

	"github.com/weftui/weft/pkg/source"
)

// Ctx is the tracked context passed to every presenter call. Reading a
// source through it records a (source, version) dependency for the
// calling invocation; after the call the engine subscribes the invocation
// to exactly the set of sources read, dropping subscriptions that were
// not re-affirmed.
//
// The Ctx is only valid for the duration of one presenter call.
type Ctx struct {
	engine *Engine
	inv    *invocation
	reads  map[source.ID]source.Version
}

func newCtx(e *Engine, inv *invocation) *Ctx {
	return &Ctx{
		engine: e,
		inv:    inv,
		reads:  make(map[source.ID]source.Version),
	}
}

// Read returns the source's current value and records the dependency.
// A source that does not exist yet is still recorded, so its first
// write wakes the invocation.
func (c *Ctx) Read(id source.ID) (any, error) {
	value, version, err := c.engine.provider.Read(id)
	c.reads[id] = version
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Logger returns the engine's logger.
func (c *Ctx) Logger() *slog.Logger {
	return c.engine.log
}

// Read returns a typed source's current value through the tracked
// context, recording the dependency.
func Read[T any](c *Ctx, s *source.Source[T]) T {
	value, err := c.Read(s.ID())
	if err != nil {
		var zero T
		return zero
	}
	v, ok := value.(T)
	if !ok {
		var zero T
		return zero
	}
	return v
}
