package source

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisProviderReadUnknown(t *testing.T) {
	_, client := newTestRedis(t)
	p := NewRedisProvider(client)

	_, _, err := p.Read("missing")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestRedisPublishAndRead(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, Publish(ctx, client, "greeting", "hello"))
	require.NoError(t, Publish(ctx, client, "greeting", "world"))

	p := NewRedisProvider(client)
	value, version, err := p.Read("greeting")
	require.NoError(t, err)
	assert.Equal(t, "world", value)
	assert.Equal(t, Version(2), version)
}

func TestRedisProviderNotifies(t *testing.T) {
	_, client := newTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewRedisProvider(client)
	require.NoError(t, p.Start(ctx))
	defer p.Close()

	sub := &recordingSubscriber{id: 1}
	p.Subscribe("remote", sub)

	require.NoError(t, Publish(ctx, client, "remote", "v1"))

	assert.Eventually(t, func() bool {
		return len(sub.versions()) == 1
	}, 2*time.Second, 10*time.Millisecond, "notification not delivered")
	assert.Equal(t, Version(1), sub.versions()[0])
}

func TestRedisProviderUnsubscribe(t *testing.T) {
	_, client := newTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewRedisProvider(client)
	require.NoError(t, p.Start(ctx))
	defer p.Close()

	sub := &recordingSubscriber{id: 1}
	p.Subscribe("remote", sub)
	p.Unsubscribe("remote", sub)

	require.NoError(t, Publish(ctx, client, "remote", "v1"))

	// Give delivery a chance to happen wrongly before asserting.
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, sub.versions())
}
