// Package handlers exposes the room controller and change feed over HTTP:
// JSON for commands and snapshots, Server-Sent Events for the feed. Clients
// identify themselves with the player_id cookie set on create/join.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lucasenlucas/undercover-bluff/internal/feed"
	"github.com/lucasenlucas/undercover-bluff/internal/game"
	"github.com/lucasenlucas/undercover-bluff/internal/room"
)

// Context holds shared application dependencies
type Context struct {
	Ctrl    *room.Controller
	Feed    feed.Feed
	BaseURL string

	// TransitionDelay is served to clients so every screen shows the round
	// splash for the same duration.
	TransitionDelay time.Duration
}

// Routes registers every endpoint on the mux.
func (ctx *Context) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /rooms", ctx.HandleCreateRoom)
	mux.HandleFunc("GET /rooms/{code}", ctx.HandleGetRoom)
	mux.HandleFunc("POST /rooms/{code}/join", ctx.HandleJoinRoom)
	mux.HandleFunc("POST /rooms/{code}/start", ctx.HandleStartRound)
	mux.HandleFunc("POST /rooms/{code}/end", ctx.HandleEndRound)
	mux.HandleFunc("POST /rooms/{code}/close", ctx.HandleCloseRoom)
	mux.HandleFunc("GET /rooms/{code}/role", ctx.HandleRole)
	mux.HandleFunc("GET /rooms/{code}/events", ctx.HandleEvents)
	mux.HandleFunc("GET /rooms/{code}/qr", ctx.HandleQR)
	mux.HandleFunc("GET /client-config", ctx.HandleClientConfig)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// HandleClientConfig returns the knobs clients need to render consistently
// with each other.
func (ctx *Context) HandleClientConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int64{
		"transition_delay_ms": ctx.TransitionDelay.Milliseconds(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNotHost):
		return http.StatusForbidden
	case errors.Is(err, game.ErrGameAlreadyStarted),
		errors.Is(err, game.ErrConcurrentModification),
		errors.Is(err, game.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, game.ErrInsufficientPlayers),
		errors.Is(err, game.ErrEmptyCatalog):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// playerID extracts the session cookie.
func playerID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie("player_id")
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// setPlayerCookie stores the player identity for later commands.
func setPlayerCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "player_id",
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // enable when serving over HTTPS
	})
}

// roomAndPlayer validates membership using the session cookie.
func (ctx *Context) roomAndPlayer(r *http.Request, code string) (*game.Room, string, error) {
	rm, err := ctx.Ctrl.GetRoom(r.Context(), code)
	if err != nil {
		return nil, "", err
	}
	pid, ok := playerID(r)
	if !ok {
		return nil, "", game.ErrRoomNotFound
	}
	if _, member := rm.PlayerByID(pid); !member {
		return nil, "", game.ErrRoomNotFound
	}
	return rm, pid, nil
}

// publicRoom hides the assignment outside the results recap: mid-round the
// topic/item/imposters only travel through the per-player role view.
func publicRoom(rm *game.Room) *game.Room {
	if rm.Phase == game.PhaseResults {
		return rm
	}
	redacted := rm.Clone()
	redacted.ClearAssignment()
	return redacted
}
