package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

// streamPollInterval bounds how often handleStream re-renders the session's
// snapshot while idle; state changes driven by a concurrent resume_* request
// on the same session are picked up on the next tick rather than pushed
// immediately, since RuntimeState carries no change-notification hook of its
// own.
const streamPollInterval = 250 * time.Millisecond

// handleStream opens a read-only WebSocket that pushes the session's
// snapshotView every time its status changes, letting a browser-based
// embedder watch a session progress without polling GET /sessions/{id}
// itself.
func (a *API) handleStream(w http.ResponseWriter, r *http.Request) {
	sess := a.lookupSession(w, r)
	if sess == nil {
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	ctx := r.Context()
	ticker := time.NewTicker(streamPollInterval)
	defer ticker.Stop()

	var lastStatus string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sess.mu.Lock()
			view := snapshot(sess)
			sess.mu.Unlock()

			if view.Status == lastStatus {
				continue
			}
			lastStatus = view.Status
			if err := writeWSJSON(ctx, conn, view); err != nil {
				return
			}
			if isTerminal(view.Status) {
				return
			}
		}
	}
}

func writeWSJSON(ctx context.Context, conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

func isTerminal(status string) bool {
	return status == "completed" || status == "error"
}
