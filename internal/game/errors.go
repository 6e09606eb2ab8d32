package game

import "errors"

// Every way a command can refuse to apply. All of these are ordinary return
// values; none of them leaves a room partially mutated.
var (
	ErrRoomNotFound           = errors.New("room not found")
	ErrDuplicateCode          = errors.New("room code already exists")
	ErrInsufficientPlayers    = errors.New("need at least 3 players")
	ErrNotHost                = errors.New("only the host can do that")
	ErrGameAlreadyStarted     = errors.New("game already started")
	ErrVersionConflict        = errors.New("room version conflict")
	ErrConcurrentModification = errors.New("room was modified concurrently")
	ErrEmptyCatalog           = errors.New("content catalog is empty")
)
