package store

import (
	"context"
	"sync"

	"github.com/lucasenlucas/undercover-bluff/internal/game"
)

// Memory is the in-process RoomStore, used in tests and single-node
// deployments without a database.
type Memory struct {
	rooms map[string]*game.Room
	mu    sync.RWMutex
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[string]*game.Room),
	}
}

func (s *Memory) CreateRoom(ctx context.Context, room *game.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[room.Code]; exists {
		return game.ErrDuplicateCode
	}
	s.rooms[room.Code] = room.Clone()
	return nil
}

func (s *Memory) GetRoom(ctx context.Context, code string) (*game.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, exists := s.rooms[code]
	if !exists {
		return nil, game.ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *Memory) CompareAndSwap(ctx context.Context, room *game.Room) (*game.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, exists := s.rooms[room.Code]
	if !exists {
		return nil, game.ErrRoomNotFound
	}
	if stored.Version != room.Version {
		return nil, game.ErrVersionConflict
	}
	next := room.Clone()
	next.Version = stored.Version + 1
	// The roster is owned by AddPlayerIfAbsent/SetConnected, not by the
	// version token; keep whatever is stored.
	next.Players = stored.Players
	s.rooms[room.Code] = next
	return next.Clone(), nil
}

func (s *Memory) AddPlayerIfAbsent(ctx context.Context, code string, p game.Player) (game.Player, bool, error) {
	if err := ctx.Err(); err != nil {
		return game.Player{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	room, exists := s.rooms[code]
	if !exists {
		return game.Player{}, false, game.ErrRoomNotFound
	}
	for _, existing := range room.Players {
		if existing.Name == p.Name {
			return existing, false, nil
		}
	}
	p.JoinOrder = len(room.Players)
	room.Players = append(room.Players, p)
	return p, true, nil
}

func (s *Memory) SetConnected(ctx context.Context, code, playerID string, connected bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	room, exists := s.rooms[code]
	if !exists {
		return game.ErrRoomNotFound
	}
	for i := range room.Players {
		if room.Players[i].ID == playerID {
			room.Players[i].Connected = connected
			return nil
		}
	}
	return game.ErrRoomNotFound
}

func (s *Memory) DeleteRoom(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[code]; !exists {
		return game.ErrRoomNotFound
	}
	delete(s.rooms, code)
	return nil
}
