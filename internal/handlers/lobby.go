package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

type roomResponse struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id"`
	Host     bool   `json:"host"`
}

// HandleCreateRoom creates a new lobby with the caller as host.
func (ctx *Context) HandleCreateRoom(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	hostName := strings.TrimSpace(r.FormValue("name"))
	if hostName == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	rm, host, err := ctx.Ctrl.CreateRoom(r.Context(), hostName)
	if err != nil {
		writeError(w, err)
		return
	}

	setPlayerCookie(w, host.ID)
	writeJSON(w, http.StatusCreated, roomResponse{
		Code:     rm.Code,
		PlayerID: host.ID,
		Host:     true,
	})
}

// HandleJoinRoom adds the caller to an existing lobby. Joining twice with
// the same name returns the same player.
func (ctx *Context) HandleJoinRoom(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	code := r.PathValue("code")
	playerName := strings.TrimSpace(r.FormValue("name"))
	if playerName == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	rm, player, err := ctx.Ctrl.Join(r.Context(), code, playerName)
	if err != nil {
		writeError(w, err)
		return
	}

	log.Debug().Str("room", rm.Code).Str("player", player.ID).Msg("join handled")
	setPlayerCookie(w, player.ID)
	writeJSON(w, http.StatusOK, roomResponse{
		Code:     rm.Code,
		PlayerID: player.ID,
		Host:     rm.IsHost(player.ID),
	})
}

// HandleGetRoom returns the public snapshot: the assignment only shows
// during the results recap.
func (ctx *Context) HandleGetRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := ctx.Ctrl.GetRoom(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publicRoom(rm))
}
