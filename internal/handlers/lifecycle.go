package handlers

import (
	"net/http"

	"github.com/lucasenlucas/undercover-bluff/internal/game"
)

// HandleStartRound starts the first or next round. Host only.
func (ctx *Context) HandleStartRound(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	pid, ok := playerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rm, err := ctx.Ctrl.StartRound(r.Context(), code, pid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publicRoom(rm))
}

// HandleEndRound moves a playing room to results. Host only.
func (ctx *Context) HandleEndRound(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	pid, ok := playerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rm, err := ctx.Ctrl.EndRound(r.Context(), code, pid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publicRoom(rm))
}

// HandleCloseRoom terminates the room. Host only.
func (ctx *Context) HandleCloseRoom(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	pid, ok := playerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := ctx.Ctrl.CloseRoom(r.Context(), code, pid); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]game.Phase{"phase": game.PhaseClosed})
}
