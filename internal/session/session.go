// Package session is the per-connected-player side of the game: it mirrors
// the room through the change feed, derives the player's private view, and
// forwards commands to the controller. The "did I get the item revealed"
// toggle and the round-transition splash live here, on purpose — they are
// presentation state and never replicated.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lucasenlucas/undercover-bluff/internal/feed"
	"github.com/lucasenlucas/undercover-bluff/internal/game"
	"github.com/lucasenlucas/undercover-bluff/internal/room"
)

// DefaultTransitionDelay matches the original round splash timing.
const DefaultTransitionDelay = 3 * time.Second

// Options tune a session.
type Options struct {
	// TransitionDelay is the fixed, non-cancellable pause announcing a new
	// round before the role view updates. Zero means DefaultTransitionDelay.
	TransitionDelay time.Duration

	// OnClosed is called once when the room closes; the caller returns the
	// player to the entry screen.
	OnClosed func()
}

// View is what one player is allowed to see right now.
type View struct {
	Code     string        `json:"code"`
	PlayerID string        `json:"player_id"`
	Phase    game.Phase    `json:"phase"`
	Round    int           `json:"round"`
	Players  []game.Player `json:"players"`
	Imposter bool          `json:"imposter"`
	Topic    string        `json:"topic,omitempty"`

	// Item is set for regular players after the local reveal toggle, and
	// for everyone during the results recap. Imposters never see it
	// mid-round.
	Item string `json:"item,omitempty"`

	// Imposters is only populated during the results recap.
	Imposters []string `json:"imposters,omitempty"`

	// Transitioning is true while the round splash is showing.
	Transitioning bool `json:"transitioning"`
}

// Session tracks one player's live copy of a room.
type Session struct {
	ctrl     *room.Controller
	feed     feed.Feed
	code     string
	playerID string
	opts     Options

	mu            sync.RWMutex
	room          *game.Room
	round         int
	revealed      bool
	transitioning bool
}

// New builds a session for a player already in the room.
func New(ctrl *room.Controller, fd feed.Feed, code, playerID string, opts Options) *Session {
	if opts.TransitionDelay <= 0 {
		opts.TransitionDelay = DefaultTransitionDelay
	}
	return &Session{
		ctrl:     ctrl,
		feed:     fd,
		code:     game.NormalizeCode(code),
		playerID: playerID,
		opts:     opts,
	}
}

// Run subscribes, re-fetches the full state (events before the subscription
// are gone for good, so the snapshot is the starting truth), and applies
// feed events in commit order until the room closes or ctx ends.
func (s *Session) Run(ctx context.Context) error {
	events, cancel, err := s.feed.Subscribe(ctx, s.code)
	if err != nil {
		return err
	}
	defer cancel()

	snapshot, err := s.ctrl.GetRoom(ctx, s.code)
	if err != nil {
		if errors.Is(err, game.ErrRoomNotFound) {
			s.closed()
			return nil
		}
		return err
	}
	s.setRoom(snapshot)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if s.apply(event) {
				return nil
			}
		}
	}
}

// apply folds one event into the local projection. Reports true when the
// room is gone and the session should stop.
func (s *Session) apply(event feed.Event) bool {
	if event.Type == feed.EventRoomClosed || event.Room.Phase == game.PhaseClosed {
		s.setRoom(event.Room)
		s.closed()
		return true
	}

	s.mu.RLock()
	prevRound := s.round
	s.mu.RUnlock()

	if event.Room.Round > prevRound && event.Room.Phase == game.PhasePlaying {
		// Round splash: hold the old view for the fixed delay. Later events
		// stay queued on the subscription and apply afterwards, still in
		// commit order.
		s.mu.Lock()
		s.transitioning = true
		s.mu.Unlock()

		time.Sleep(s.opts.TransitionDelay)

		log.Debug().Str("room", s.code).Int("round", event.Room.Round).Msg("round transition done")
	}

	s.setRoom(event.Room)
	return false
}

func (s *Session) setRoom(r *game.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.room != nil && r.Round > s.room.Round {
		// New round, new secret: the reveal toggle starts hidden again.
		s.revealed = false
	}
	s.room = r
	s.round = r.Round
	s.transitioning = false
}

func (s *Session) closed() {
	if s.opts.OnClosed != nil {
		s.opts.OnClosed()
	}
}

// ToggleReveal flips the local item visibility and returns the new state.
// Never networked.
func (s *Session) ToggleReveal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revealed = !s.revealed
	return s.revealed
}

// View derives the player's private projection from the last-observed
// snapshot. Imposters get the topic only; regular players additionally get
// the item once they toggle the reveal; the full assignment goes public in
// the results recap.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{
		Code:          s.code,
		PlayerID:      s.playerID,
		Transitioning: s.transitioning,
	}
	if s.room == nil {
		return v
	}
	v.Phase = s.room.Phase
	v.Round = s.room.Round
	v.Players = append([]game.Player(nil), s.room.Players...)
	v.Imposter = s.room.IsImposter(s.playerID)
	v.Topic = s.room.Topic

	switch {
	case s.room.Phase == game.PhaseResults:
		v.Item = s.room.Item
		v.Imposters = append([]string(nil), s.room.Imposters...)
	case !v.Imposter && s.revealed:
		v.Item = s.room.Item
	}
	return v
}

// StartRound forwards the host command; local state only changes when the
// resulting commit arrives on the feed.
func (s *Session) StartRound(ctx context.Context) (*game.Room, error) {
	return s.ctrl.StartRound(ctx, s.code, s.playerID)
}

// EndRound forwards the host command.
func (s *Session) EndRound(ctx context.Context) (*game.Room, error) {
	return s.ctrl.EndRound(ctx, s.code, s.playerID)
}

// CloseRoom forwards the host command.
func (s *Session) CloseRoom(ctx context.Context) error {
	return s.ctrl.CloseRoom(ctx, s.code, s.playerID)
}
