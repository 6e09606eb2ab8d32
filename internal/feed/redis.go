package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// Redis is the Feed adapter over Redis pub/sub, for deployments where
// clients connect to more than one server process. Redis delivers per
// channel in publish order, which preserves the per-room commit order as
// long as publishes go through the single controller path.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing Redis client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func channelFor(roomCode string) string {
	return "room:" + roomCode
}

func (f *Redis) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := f.client.Publish(ctx, channelFor(event.Room.Code), payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (f *Redis) Subscribe(ctx context.Context, roomCode string) (<-chan Event, func(), error) {
	pubsub := f.client.Subscribe(ctx, channelFor(roomCode))
	// Force the subscription to be established before returning, so events
	// published after Subscribe are not missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan Event, subscriberBuffer)
	stop := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = pubsub.Close()
			close(stop)
		})
	}

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("room", roomCode).Msg("dropping undecodable feed event")
				continue
			}
			select {
			case out <- event:
			case <-stop:
				return
			}
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-stop:
		}
	}()

	return out, cancel, nil
}
