package source

import "errors"

// ID identifies a reactive data source.
type ID string

// Version is a monotonically increasing change counter for one source.
// A presenter records the version it observed; a later version means the
// dependency is stale.
type Version uint64

// ErrUnknownSource is returned by Read for a source id that was never
// published.
var ErrUnknownSource = errors.New("source: unknown source id")

// Subscriber is notified when a subscribed source changes version.
// The engine's dependency tracker is the only subscriber the engine
// creates; hosts may add their own.
type Subscriber interface {
	// SourceChanged delivers a change notification. It must be cheap:
	// implementations mark state dirty and return, deferring real work to
	// the next scheduler pass.
	SourceChanged(id ID, version Version)

	// SubscriberID returns a stable identifier used to deduplicate
	// subscriptions.
	SubscriberID() uint64
}

// Provider owns reactive data sources. The engine only ever reads them;
// all mutation happens on the host side and is communicated through
// version-change notifications.
type Provider interface {
	// Read returns the source's current value and version.
	Read(id ID) (value any, version Version, err error)

	// Subscribe registers s for change notifications on id.
	// Subscribing twice with the same subscriber id is a no-op.
	Subscribe(id ID, s Subscriber)

	// Unsubscribe removes s's subscription on id, if any. No notification
	// for id is delivered to s after Unsubscribe returns.
	Unsubscribe(id ID, s Subscriber)
}
