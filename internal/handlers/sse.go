package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/lucasenlucas/undercover-bluff/internal/feed"
)

// HandleEvents streams the room's change feed as Server-Sent Events. The
// stream opens with a full snapshot (there is no redelivery of anything
// missed before subscribing) and then forwards every commit in order. The
// player's presence flag is on while the stream is.
func (ctx *Context) HandleEvents(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	rm, pid, err := ctx.roomAndPlayer(r, code)
	if err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable buffering in nginx/proxies
	flusher.Flush()

	// Subscribe before the initial snapshot so nothing commits in between
	// unseen.
	events, cancel, err := ctx.Feed.Subscribe(r.Context(), rm.Code)
	if err != nil {
		log.Warn().Err(err).Str("room", rm.Code).Msg("subscribe failed")
		return
	}
	defer cancel()

	// The request context dies with the connection, so presence updates use
	// a fresh one.
	ctx.Ctrl.SetConnected(context.Background(), rm.Code, pid, true)
	defer ctx.Ctrl.SetConnected(context.Background(), rm.Code, pid, false)

	snapshot, err := ctx.Ctrl.GetRoom(r.Context(), rm.Code)
	if err != nil {
		return
	}
	writeSSE(w, feed.Event{Type: feed.EventRoomUpdated, Room: publicRoom(snapshot), Version: snapshot.Version})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			event.Room = publicRoom(event.Room)
			writeSSE(w, event)
			flusher.Flush()
			if event.Type == feed.EventRoomClosed {
				return
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, event feed.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Warn().Err(err).Msg("encode event")
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
}
