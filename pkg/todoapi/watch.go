package todoapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/xbow/pkg/track"
)

// Frame is one websocket message of the /watch feed.
type Frame struct {
	Path      string `json:"path"`
	Version   uint64 `json:"version"`
	Direction string `json:"direction"`
	Origin    string `json:"origin"`
}

func newFrame(inv track.Invalidation) Frame {
	return Frame{
		Path:      inv.Path.String(),
		Version:   inv.Version,
		Direction: inv.Direction.String(),
		Origin:    inv.Origin.String(),
	}
}

// handleWatch upgrades to a websocket and sends a Frame for every
// invalidation of the requested path (default: the root).
func (a *API) handleWatch(w http.ResponseWriter, r *http.Request) {
	p := a.todos.Root().Path()
	if raw := r.URL.Query().Get("path"); raw != "" {
		parsed, err := track.ParsePath(raw)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		p = parsed
	}

	// Subscribe before the handshake completes so that no change made
	// after the client sees the upgrade is missed.
	stream := a.watch.Stream(p, a.config.StreamBuffer)
	defer stream.Close()

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		a.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	a.logger.Info("watch opened", "path", p.String(), "remote", r.RemoteAddr)
	defer func() {
		a.logger.Info("watch closed",
			"path", p.String(),
			"remote", r.RemoteAddr,
			"dropped", stream.Dropped())
	}()

	// The client never sends data; reading detects close and handles
	// control frames.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(a.config.PingInterval)
	defer ping.Stop()

	for {
		select {
		case inv := <-stream.C():
			conn.SetWriteDeadline(time.Now().Add(a.config.WriteTimeout))
			if err := conn.WriteJSON(newFrame(inv)); err != nil {
				a.logger.Debug("watch write failed", "error", err)
				return
			}

		case <-ping.C:
			deadline := time.Now().Add(a.config.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}

		case <-closed:
			return
		}
	}
}
