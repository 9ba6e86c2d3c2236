package source

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Default keyspace and channel used by RedisProvider.
const (
	DefaultRedisChannel   = "weft:sources"
	DefaultRedisKeyPrefix = "weft:src:"
)

// RedisProvider bridges sources owned by a remote process into the engine.
// Values live in Redis string keys; change notifications arrive over a
// pub/sub channel as "<id> <version>" messages and are fanned out to local
// subscribers, so a remote write dirties dependent presenters on the next
// pass exactly like a local one.
type RedisProvider struct {
	client  redis.UniversalClient
	channel string
	prefix  string
	log     *slog.Logger

	mu   sync.Mutex
	subs map[ID][]Subscriber

	pubsub *redis.PubSub
	done   chan struct{}
}

// RedisOption configures a RedisProvider.
type RedisOption func(*RedisProvider)

// WithRedisChannel overrides the pub/sub channel name.
func WithRedisChannel(channel string) RedisOption {
	return func(p *RedisProvider) {
		p.channel = channel
	}
}

// WithRedisKeyPrefix overrides the value keyspace prefix.
func WithRedisKeyPrefix(prefix string) RedisOption {
	return func(p *RedisProvider) {
		p.prefix = prefix
	}
}

// WithRedisLogger sets the logger. Defaults to slog.Default.
func WithRedisLogger(log *slog.Logger) RedisOption {
	return func(p *RedisProvider) {
		p.log = log
	}
}

// NewRedisProvider creates a provider over the given client.
func NewRedisProvider(client redis.UniversalClient, opts ...RedisOption) *RedisProvider {
	p := &RedisProvider{
		client:  client,
		channel: DefaultRedisChannel,
		prefix:  DefaultRedisKeyPrefix,
		log:     slog.Default(),
		subs:    make(map[ID][]Subscriber),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins listening for change notifications. It returns once the
// subscription is established; delivery happens on a background goroutine
// until Close is called or ctx is cancelled.
func (p *RedisProvider) Start(ctx context.Context) error {
	p.pubsub = p.client.Subscribe(ctx, p.channel)
	// Force the subscription to be established before returning so no
	// notification published after Start is lost.
	if _, err := p.pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("source: subscribe to %s: %w", p.channel, err)
	}
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		ch := p.pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				p.dispatch(msg.Payload)
			}
		}
	}()
	return nil
}

// Close stops notification delivery.
func (p *RedisProvider) Close() error {
	if p.pubsub == nil {
		return nil
	}
	err := p.pubsub.Close()
	if p.done != nil {
		<-p.done
	}
	return err
}

// dispatch parses an "<id> <version>" payload and notifies subscribers.
func (p *RedisProvider) dispatch(payload string) {
	id, verStr, ok := strings.Cut(payload, " ")
	if !ok {
		p.log.Warn("source: malformed redis notification", "payload", payload)
		return
	}
	version, err := strconv.ParseUint(verStr, 10, 64)
	if err != nil {
		p.log.Warn("source: malformed redis version", "payload", payload)
		return
	}

	p.mu.Lock()
	subs := append([]Subscriber(nil), p.subs[ID(id)]...)
	p.mu.Unlock()

	for _, s := range subs {
		s.SourceChanged(ID(id), Version(version))
	}
}

// Read implements Provider. The value is returned as a string; decoding
// is the host's concern.
func (p *RedisProvider) Read(id ID) (any, Version, error) {
	ctx := context.Background()
	value, err := p.client.Get(ctx, p.prefix+string(id)).Result()
	if err == redis.Nil {
		return nil, 0, ErrUnknownSource
	}
	if err != nil {
		return nil, 0, fmt.Errorf("source: read %s: %w", id, err)
	}
	ver, err := p.client.Get(ctx, p.versionKey(id)).Uint64()
	if err != nil && err != redis.Nil {
		return nil, 0, fmt.Errorf("source: read version of %s: %w", id, err)
	}
	return value, Version(ver), nil
}

// Subscribe implements Provider.
func (p *RedisProvider) Subscribe(id ID, s Subscriber) {
	if s == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	sid := s.SubscriberID()
	for _, existing := range p.subs[id] {
		if existing.SubscriberID() == sid {
			return
		}
	}
	p.subs[id] = append(p.subs[id], s)
}

// Unsubscribe implements Provider.
func (p *RedisProvider) Unsubscribe(id ID, s Subscriber) {
	if s == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	sid := s.SubscriberID()
	subs := p.subs[id]
	for i, existing := range subs {
		if existing.SubscriberID() == sid {
			subs[i] = subs[len(subs)-1]
			p.subs[id] = subs[:len(subs)-1]
			return
		}
	}
}

// Publish writes a value, bumps its version, and broadcasts the change.
// It is the producer-side counterpart of RedisProvider and is typically
// called from a different process than the one rendering.
func Publish(ctx context.Context, client redis.UniversalClient, id ID, value string, opts ...RedisOption) error {
	p := NewRedisProvider(client, opts...)
	if err := client.Set(ctx, p.prefix+string(id), value, 0).Err(); err != nil {
		return fmt.Errorf("source: publish %s: %w", id, err)
	}
	version, err := client.Incr(ctx, p.versionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("source: publish %s: %w", id, err)
	}
	payload := fmt.Sprintf("%s %d", id, version)
	if err := client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("source: publish %s: %w", id, err)
	}
	return nil
}

func (p *RedisProvider) versionKey(id ID) string {
	return p.prefix + "ver:" + string(id)
}
