package feed

import (
	"context"
	"sync"
	"time"
)

const (
	// subscriberBuffer is the per-subscriber channel depth.
	subscriberBuffer = 16

	// sendTimeout bounds how long a publish waits on one slow subscriber
	// before dropping the event for it. Clients recover by re-fetching.
	sendTimeout = time.Second
)

// Memory is the in-process Feed. Each room gets a registry of subscriber
// channels; publishes for a room are serialized so every subscriber sees
// commit order.
type Memory struct {
	mu    sync.RWMutex
	rooms map[string]*roomTopic
}

type roomTopic struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
}

// NewMemory creates an empty in-process feed.
func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[string]*roomTopic),
	}
}

func (f *Memory) topic(roomCode string, create bool) *roomTopic {
	f.mu.RLock()
	t := f.rooms[roomCode]
	f.mu.RUnlock()
	if t != nil || !create {
		return t
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if t = f.rooms[roomCode]; t == nil {
		t = &roomTopic{subs: make(map[int]chan Event)}
		f.rooms[roomCode] = t
	}
	return t
}

func (f *Memory) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := f.topic(event.Room.Code, false)
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- event:
		case <-time.After(sendTimeout):
			// Subscriber is stuck; skip it rather than stall the room.
		}
	}
	return nil
}

func (f *Memory) Subscribe(ctx context.Context, roomCode string) (<-chan Event, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	t := f.topic(roomCode, true)

	t.mu.Lock()
	t.nextID++
	id := t.nextID
	ch := make(chan Event, subscriberBuffer)
	t.subs[id] = ch
	t.mu.Unlock()

	stop := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			close(ch)
			t.mu.Unlock()
			close(stop)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-stop:
		}
	}()

	return ch, cancel, nil
}
