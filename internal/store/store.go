// Package store defines the authoritative persistence contract for rooms.
// Mutations of a room's phase/round/assignment go through CompareAndSwap so
// that at most one writer wins any logical transition; roster inserts are
// keyed by (room, name) and idempotent, so they need no version token.
package store

import (
	"context"

	"github.com/lucasenlucas/undercover-bluff/internal/game"
)

// RoomStore is the storage collaborator. Implementations must be safe for
// concurrent use. All lookups are by upper-cased room code.
type RoomStore interface {
	// CreateRoom inserts a fresh room. Returns game.ErrDuplicateCode when
	// the code is taken; the caller regenerates and retries.
	CreateRoom(ctx context.Context, room *game.Room) error

	// GetRoom returns the room with its roster in join order, or
	// game.ErrRoomNotFound.
	GetRoom(ctx context.Context, code string) (*game.Room, error)

	// CompareAndSwap commits the room's phase/round/assignment fields if the
	// stored version still equals room.Version. On success the stored
	// version is bumped and the committed snapshot is returned. Returns
	// game.ErrVersionConflict when another writer got there first, or
	// game.ErrRoomNotFound.
	CompareAndSwap(ctx context.Context, room *game.Room) (*game.Room, error)

	// AddPlayerIfAbsent inserts the player unless a player with the same
	// name already exists in the room, in which case the existing record is
	// returned. The created flag reports which happened. Atomic with
	// respect to concurrent joins of the same name.
	AddPlayerIfAbsent(ctx context.Context, code string, p game.Player) (game.Player, bool, error)

	// SetConnected flips a player's best-effort presence flag.
	SetConnected(ctx context.Context, code, playerID string, connected bool) error

	// DeleteRoom removes the room record and its roster.
	DeleteRoom(ctx context.Context, code string) error
}
