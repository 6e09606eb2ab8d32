package game

import "time"

// Phase is the lifecycle state of a room. Transitions are owned exclusively
// by the room controller: lobby -> playing -> results -> playing -> ... -> closed.
type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhasePlaying Phase = "playing"
	PhaseResults Phase = "results"
	PhaseClosed  Phase = "closed"
)

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return p == PhaseClosed
}

// Player is a member of a single room. Players are never removed during a
// room's life; joining again with the same name reuses the existing record.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"is_connected"`
	JoinOrder int    `json:"join_order"`
}

// Room is the authoritative record of one game room. Version is the opaque
// compare-and-swap token: every committed mutation of the phase/round/
// assignment fields bumps it, and writers must present the version they read.
type Room struct {
	Code      string    `json:"code"`
	HostID    string    `json:"host_id"`
	Phase     Phase     `json:"phase"`
	Round     int       `json:"round"`
	Topic     string    `json:"topic,omitempty"`
	Item      string    `json:"item,omitempty"`
	Imposters []string  `json:"imposters,omitempty"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	// Players is the roster ordered by join order.
	Players []Player `json:"players"`
}

// PlayerByID looks a player up in the roster.
func (r *Room) PlayerByID(id string) (Player, bool) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// PlayerByName looks a player up by display name (case-sensitive).
func (r *Room) PlayerByName(name string) (Player, bool) {
	for _, p := range r.Players {
		if p.Name == name {
			return p, true
		}
	}
	return Player{}, false
}

// IsImposter reports whether the player is in the active round's imposter set.
func (r *Room) IsImposter(playerID string) bool {
	for _, id := range r.Imposters {
		if id == playerID {
			return true
		}
	}
	return false
}

// IsHost reports whether the player created the room.
func (r *Room) IsHost(playerID string) bool {
	return r.HostID == playerID
}

// ClearAssignment resets the per-round fields. Rooms in lobby never carry an
// assignment.
func (r *Room) ClearAssignment() {
	r.Topic = ""
	r.Item = ""
	r.Imposters = nil
}

// Clone returns a deep copy so callers can prepare a new state without
// touching the snapshot they read.
func (r *Room) Clone() *Room {
	c := *r
	if r.Imposters != nil {
		c.Imposters = append([]string(nil), r.Imposters...)
	}
	if r.Players != nil {
		c.Players = append([]Player(nil), r.Players...)
	}
	return &c
}
