package source

import (
	"sync"
	"testing"
)

// recordingSubscriber collects notifications for assertions.
type recordingSubscriber struct {
	id uint64

	mu     sync.Mutex
	events []Version
}

func (r *recordingSubscriber) SourceChanged(_ ID, version Version) {
	r.mu.Lock()
	r.events = append(r.events, version)
	r.mu.Unlock()
}

func (r *recordingSubscriber) SubscriberID() uint64 { return r.id }

func (r *recordingSubscriber) versions() []Version {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Version(nil), r.events...)
}

func TestRegistryReadUnknown(t *testing.T) {
	r := NewRegistry()
	if _, _, err := r.Read("nope"); err != ErrUnknownSource {
		t.Errorf("Read(unknown) err = %v, want ErrUnknownSource", err)
	}
}

func TestRegistryWriteBumpsVersion(t *testing.T) {
	r := NewRegistry()
	r.Write("counter", 1)

	_, v1, err := r.Read("counter")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	r.Write("counter", 2)
	_, v2, _ := r.Read("counter")
	if v2 <= v1 {
		t.Errorf("version did not increase: %d -> %d", v1, v2)
	}
}

func TestRegistryEqualWriteIsDropped(t *testing.T) {
	r := NewRegistry()
	sub := &recordingSubscriber{id: 1}
	r.Write("counter", 5)
	r.Subscribe("counter", sub)

	_, before, _ := r.Read("counter")
	r.Write("counter", 5)
	_, after, _ := r.Read("counter")

	if before != after {
		t.Errorf("equal write bumped version: %d -> %d", before, after)
	}
	if got := sub.versions(); len(got) != 0 {
		t.Errorf("equal write notified subscribers: %v", got)
	}
}

func TestRegistryNotifiesSubscribers(t *testing.T) {
	r := NewRegistry()
	sub := &recordingSubscriber{id: 1}
	r.Write("items", []string{"a"})
	r.Subscribe("items", sub)

	r.Write("items", []string{"a", "b"})

	got := sub.versions()
	if len(got) != 1 {
		t.Fatalf("notifications = %v, want one", got)
	}
	if _, v, _ := r.Read("items"); got[0] != v {
		t.Errorf("notified version %d, current version %d", got[0], v)
	}
}

func TestRegistrySubscribeDeduplicates(t *testing.T) {
	r := NewRegistry()
	sub := &recordingSubscriber{id: 7}
	r.Write("x", 0)
	r.Subscribe("x", sub)
	r.Subscribe("x", sub)

	if n := r.Subscribers("x"); n != 1 {
		t.Errorf("Subscribers() = %d, want 1", n)
	}

	r.Write("x", 1)
	if got := sub.versions(); len(got) != 1 {
		t.Errorf("duplicate subscription delivered %d notifications", len(got))
	}
}

func TestRegistryUnsubscribeStopsDelivery(t *testing.T) {
	r := NewRegistry()
	sub := &recordingSubscriber{id: 2}
	r.Write("x", 0)
	r.Subscribe("x", sub)
	r.Unsubscribe("x", sub)

	r.Write("x", 1)

	if got := sub.versions(); len(got) != 0 {
		t.Errorf("unsubscribed subscriber notified: %v", got)
	}
	if n := r.Subscribers("x"); n != 0 {
		t.Errorf("Subscribers() = %d, want 0", n)
	}
}

func TestTypedSource(t *testing.T) {
	r := NewRegistry()
	counter := NewSource(r, "counter", 10)

	if got := counter.Peek(); got != 10 {
		t.Errorf("Peek() = %d, want 10", got)
	}

	counter.Set(11)
	if got := counter.Peek(); got != 11 {
		t.Errorf("Peek() after Set = %d, want 11", got)
	}

	v, version, err := r.Read(counter.ID())
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if v.(int) != 11 || version == 0 {
		t.Errorf("Read() = (%v, %d)", v, version)
	}
}
