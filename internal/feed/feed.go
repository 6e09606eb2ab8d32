// Package feed is the per-room broadcast channel. The controller publishes a
// snapshot after every committed mutation, never before; each subscriber
// observes one room's events in commit order for the life of its
// subscription. There is no redelivery: a client that (re)subscribes is
// expected to re-fetch the full room state first.
package feed

import (
	"context"

	"github.com/lucasenlucas/undercover-bluff/internal/game"
)

// EventType tags what kind of mutation an event describes.
type EventType string

const (
	EventPlayerJoined EventType = "player-joined"
	EventRoomUpdated  EventType = "room-updated"
	EventRoomClosed   EventType = "room-closed"
)

// Event is one committed state change. Room is a full snapshot including the
// roster; Version is the commit version the snapshot corresponds to.
type Event struct {
	Type    EventType  `json:"type"`
	Room    *game.Room `json:"room"`
	Version int64      `json:"version"`
}

// Feed is the pub/sub collaborator seam.
type Feed interface {
	// Publish delivers the event to all current subscribers of the room.
	Publish(ctx context.Context, event Event) error

	// Subscribe returns an ordered event channel for one room plus a cancel
	// func. Cancelling (or the context ending) releases the registration
	// promptly and closes the channel.
	Subscribe(ctx context.Context, roomCode string) (<-chan Event, func(), error)
}
