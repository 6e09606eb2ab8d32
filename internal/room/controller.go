// Package room implements the state machine that owns every room mutation.
// Commands validate against a fresh read, compute the next state, and commit
// it through the store's compare-and-swap, so concurrent commands resolve by
// version conflict instead of locking. Events go out on the feed strictly
// after a successful commit.
package room

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lucasenlucas/undercover-bluff/internal/catalog"
	"github.com/lucasenlucas/undercover-bluff/internal/feed"
	"github.com/lucasenlucas/undercover-bluff/internal/game"
	"github.com/lucasenlucas/undercover-bluff/internal/store"
)

const (
	// casRetries bounds how often a command re-reads and retries after a
	// version conflict before giving up. Contention here is a host
	// double-click, not sustained load.
	casRetries = 3

	// codeRetries bounds room-code regeneration on collision.
	codeRetries = 5
)

// Controller serializes all mutating commands for rooms.
type Controller struct {
	store   store.RoomStore
	feed    feed.Feed
	catalog catalog.Source

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New wires a controller. The rng drives role assignment; pass a seeded one
// in tests for deterministic rounds.
func New(st store.RoomStore, fd feed.Feed, src catalog.Source, rng *rand.Rand) *Controller {
	return &Controller{
		store:   st,
		feed:    fd,
		catalog: src,
		rng:     rng,
	}
}

// CreateRoom makes a fresh lobby with the host as its first player.
func (c *Controller) CreateRoom(ctx context.Context, hostName string) (*game.Room, game.Player, error) {
	hostID := uuid.New().String()
	host := game.Player{ID: hostID, Name: hostName}

	for range codeRetries {
		room := &game.Room{
			Code:      game.NewRoomCode(),
			HostID:    hostID,
			Phase:     game.PhaseLobby,
			Version:   1,
			CreatedAt: time.Now().UTC(),
			Players:   []game.Player{host},
		}
		err := c.store.CreateRoom(ctx, room)
		if errors.Is(err, game.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			return nil, game.Player{}, err
		}
		log.Info().Str("room", room.Code).Str("host", hostID).Msg("room created")
		return room, host, nil
	}
	return nil, game.Player{}, game.ErrDuplicateCode
}

// Join adds a player to a lobby. Joining again with the same name returns
// the existing player, so a double-submitted form cannot duplicate anyone.
// Rooms that already started reject latecomers.
func (c *Controller) Join(ctx context.Context, code, name string) (*game.Room, game.Player, error) {
	code = game.NormalizeCode(code)
	room, err := c.store.GetRoom(ctx, code)
	if err != nil {
		return nil, game.Player{}, err
	}
	if room.Phase != game.PhaseLobby {
		return nil, game.Player{}, game.ErrGameAlreadyStarted
	}

	player, created, err := c.store.AddPlayerIfAbsent(ctx, code, game.Player{
		ID:   uuid.New().String(),
		Name: name,
	})
	if err != nil {
		return nil, game.Player{}, err
	}

	room, err = c.store.GetRoom(ctx, code)
	if err != nil {
		return nil, game.Player{}, err
	}
	if created {
		log.Info().Str("room", code).Str("player", player.ID).Str("name", name).Msg("player joined")
		c.publish(ctx, feed.EventPlayerJoined, room)
	}
	return room, player, nil
}

// StartRound starts the first round from the lobby or the next one from
// results: assigns roles and content, bumps the round counter, and moves the
// room to playing. Host only.
func (c *Controller) StartRound(ctx context.Context, code, requesterID string) (*game.Room, error) {
	code = game.NormalizeCode(code)
	for attempt := 0; attempt <= casRetries; attempt++ {
		room, err := c.store.GetRoom(ctx, code)
		if err != nil {
			return nil, err
		}
		switch room.Phase {
		case game.PhaseLobby, game.PhaseResults:
			// eligible
		case game.PhasePlaying:
			// Another start already won; the caller acted on stale state.
			return nil, game.ErrConcurrentModification
		default:
			return nil, game.ErrRoomNotFound
		}
		if !room.IsHost(requesterID) {
			return nil, game.ErrNotHost
		}
		if len(room.Players) < game.MinPlayers {
			return nil, game.ErrInsufficientPlayers
		}

		entries, err := c.catalog.Entries(ctx)
		if err != nil {
			return nil, err
		}
		c.rngMu.Lock()
		assignment, err := game.AssignRoles(room.Players, entries, c.rng)
		c.rngMu.Unlock()
		if err != nil {
			return nil, err
		}

		next := room.Clone()
		next.Phase = game.PhasePlaying
		next.Round++
		next.Topic = assignment.Topic
		next.Item = assignment.Item
		next.Imposters = assignment.Imposters

		committed, err := c.store.CompareAndSwap(ctx, next)
		if errors.Is(err, game.ErrVersionConflict) {
			backoff(attempt)
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Info().Str("room", code).Int("round", committed.Round).
			Str("topic", committed.Topic).Int("imposters", len(committed.Imposters)).
			Msg("round started")
		c.publish(ctx, feed.EventRoomUpdated, committed)
		return committed, nil
	}
	return nil, game.ErrConcurrentModification
}

// EndRound freezes the current round and moves the room to results. The
// assignment stays visible for the recap and is only replaced by the next
// StartRound. Host only.
func (c *Controller) EndRound(ctx context.Context, code, requesterID string) (*game.Room, error) {
	code = game.NormalizeCode(code)
	for attempt := 0; attempt <= casRetries; attempt++ {
		room, err := c.store.GetRoom(ctx, code)
		if err != nil {
			return nil, err
		}
		if room.Phase == game.PhaseClosed {
			return nil, game.ErrRoomNotFound
		}
		if !room.IsHost(requesterID) {
			return nil, game.ErrNotHost
		}
		if room.Phase != game.PhasePlaying {
			return nil, game.ErrConcurrentModification
		}

		next := room.Clone()
		next.Phase = game.PhaseResults

		committed, err := c.store.CompareAndSwap(ctx, next)
		if errors.Is(err, game.ErrVersionConflict) {
			backoff(attempt)
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Info().Str("room", code).Int("round", committed.Round).Msg("round ended")
		c.publish(ctx, feed.EventRoomUpdated, committed)
		return committed, nil
	}
	return nil, game.ErrConcurrentModification
}

// CloseRoom terminates the room from any non-terminal phase, tells every
// subscriber, and deletes the record. Host only.
func (c *Controller) CloseRoom(ctx context.Context, code, requesterID string) error {
	code = game.NormalizeCode(code)
	for attempt := 0; attempt <= casRetries; attempt++ {
		room, err := c.store.GetRoom(ctx, code)
		if err != nil {
			return err
		}
		if room.Phase.Terminal() {
			return game.ErrRoomNotFound
		}
		if !room.IsHost(requesterID) {
			return game.ErrNotHost
		}

		next := room.Clone()
		next.Phase = game.PhaseClosed
		next.ClearAssignment()

		committed, err := c.store.CompareAndSwap(ctx, next)
		if errors.Is(err, game.ErrVersionConflict) {
			backoff(attempt)
			continue
		}
		if err != nil {
			return err
		}
		c.publish(ctx, feed.EventRoomClosed, committed)
		if err := c.store.DeleteRoom(ctx, code); err != nil && !errors.Is(err, game.ErrRoomNotFound) {
			return err
		}
		log.Info().Str("room", code).Msg("room closed")
		return nil
	}
	return game.ErrConcurrentModification
}

// GetRoom reads the current snapshot without blocking writers.
func (c *Controller) GetRoom(ctx context.Context, code string) (*game.Room, error) {
	return c.store.GetRoom(ctx, game.NormalizeCode(code))
}

// SetConnected flips the best-effort presence flag and tells subscribers.
func (c *Controller) SetConnected(ctx context.Context, code, playerID string, connected bool) {
	code = game.NormalizeCode(code)
	if err := c.store.SetConnected(ctx, code, playerID, connected); err != nil {
		return
	}
	room, err := c.store.GetRoom(ctx, code)
	if err != nil {
		return
	}
	c.publish(ctx, feed.EventRoomUpdated, room)
}

func (c *Controller) publish(ctx context.Context, t feed.EventType, room *game.Room) {
	err := c.feed.Publish(ctx, feed.Event{
		Type:    t,
		Room:    room,
		Version: room.Version,
	})
	if err != nil {
		log.Warn().Err(err).Str("room", room.Code).Msg("publish failed")
	}
}

func backoff(attempt int) {
	time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
}
