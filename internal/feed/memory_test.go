package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasenlucas/undercover-bluff/internal/game"
)

func event(code string, version int64, t EventType) Event {
	return Event{
		Type:    t,
		Room:    &game.Room{Code: code, Version: version},
		Version: version,
	}
}

func TestMemoryFeedDeliversInOrder(t *testing.T) {
	f := NewMemory()
	ctx := context.Background()

	events, cancel, err := f.Subscribe(ctx, "AAAAAA")
	require.NoError(t, err)
	defer cancel()

	for v := int64(1); v <= 3; v++ {
		require.NoError(t, f.Publish(ctx, event("AAAAAA", v, EventRoomUpdated)))
	}

	for v := int64(1); v <= 3; v++ {
		select {
		case got := <-events:
			assert.Equal(t, v, got.Version)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", v)
		}
	}
}

func TestMemoryFeedFansOut(t *testing.T) {
	f := NewMemory()
	ctx := context.Background()

	first, cancelFirst, err := f.Subscribe(ctx, "AAAAAA")
	require.NoError(t, err)
	defer cancelFirst()
	second, cancelSecond, err := f.Subscribe(ctx, "AAAAAA")
	require.NoError(t, err)
	defer cancelSecond()

	require.NoError(t, f.Publish(ctx, event("AAAAAA", 1, EventPlayerJoined)))

	for _, ch := range []<-chan Event{first, second} {
		select {
		case got := <-ch:
			assert.Equal(t, EventPlayerJoined, got.Type)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for fan-out")
		}
	}
}

func TestMemoryFeedIsolatesRooms(t *testing.T) {
	f := NewMemory()
	ctx := context.Background()

	events, cancel, err := f.Subscribe(ctx, "AAAAAA")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, f.Publish(ctx, event("BBBBBB", 1, EventRoomUpdated)))

	select {
	case got := <-events:
		t.Fatalf("event for another room leaked: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryFeedCancelStopsDelivery(t *testing.T) {
	f := NewMemory()
	ctx := context.Background()

	events, cancel, err := f.Subscribe(ctx, "AAAAAA")
	require.NoError(t, err)

	cancel()

	// The channel is closed and later publishes go nowhere.
	_, open := <-events
	assert.False(t, open)
	require.NoError(t, f.Publish(ctx, event("AAAAAA", 1, EventRoomUpdated)))

	// Cancelling twice is fine.
	cancel()
}

func TestMemoryFeedContextCancelUnsubscribes(t *testing.T) {
	f := NewMemory()
	subCtx, stop := context.WithCancel(context.Background())

	events, cancel, err := f.Subscribe(subCtx, "AAAAAA")
	require.NoError(t, err)
	defer cancel()

	stop()

	select {
	case _, open := <-events:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after context cancel")
	}
}

func TestMemoryFeedPublishWithoutSubscribers(t *testing.T) {
	f := NewMemory()

	// Nobody listening is not an error.
	assert.NoError(t, f.Publish(context.Background(), event("AAAAAA", 1, EventRoomUpdated)))
}
