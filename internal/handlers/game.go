package handlers

import (
	"net/http"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/lucasenlucas/undercover-bluff/internal/game"
)

type roleResponse struct {
	Phase    game.Phase `json:"phase"`
	Round    int        `json:"round"`
	Imposter bool       `json:"imposter"`
	Topic    string     `json:"topic,omitempty"`
	Item     string     `json:"item,omitempty"`
}

// HandleRole returns the caller's private view of the active round. The
// reveal query parameter is the client's local toggle: without it a regular
// player gets the topic only, same as what their screen shows before the
// tap. Imposters never get the item.
func (ctx *Context) HandleRole(w http.ResponseWriter, r *http.Request) {
	rm, pid, err := ctx.roomAndPlayer(r, r.PathValue("code"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := roleResponse{
		Phase:    rm.Phase,
		Round:    rm.Round,
		Imposter: rm.IsImposter(pid),
		Topic:    rm.Topic,
	}
	if !resp.Imposter && (r.URL.Query().Get("reveal") == "1" || rm.Phase == game.PhaseResults) {
		resp.Item = rm.Item
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleQR renders the join link for a room as a PNG, so a phone can join
// by pointing its camera at the host's screen.
func (ctx *Context) HandleQR(w http.ResponseWriter, r *http.Request) {
	rm, err := ctx.Ctrl.GetRoom(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, err)
		return
	}

	png, err := qrcode.Encode(ctx.BaseURL+"/?code="+rm.Code, qrcode.Medium, 256)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
