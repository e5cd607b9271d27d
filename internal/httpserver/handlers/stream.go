package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/marklist/marklist/internal/httpserver/deps"
	"github.com/marklist/marklist/internal/httpserver/mw"
	"github.com/marklist/marklist/internal/syncer"
)

// keepAliveInterval paces SSE comments so intermediaries keep the
// connection open.
const keepAliveInterval = 30 * time.Second

// StreamBookmarks pushes the reconciled list over server-sent events: one
// snapshot on connect, then one per change, coalesced.
func StreamBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		sess := mw.SessionFrom(r.Context())
		s := d.Registry.Ensure(sess.UserID)

		updates, stopWatch := s.Watch()
		defer stopWatch()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Connection", "keep-alive")

		if err := writeSnapshot(w, s); err != nil {
			return
		}
		flusher.Flush()

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case _, ok := <-updates:
				if !ok {
					// Synchronizer shut down; end the stream so the client
					// reconnects to a fresh one.
					return
				}
				if err := writeSnapshot(w, s); err != nil {
					return
				}
				flusher.Flush()
			case <-keepAlive.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeSnapshot(w http.ResponseWriter, s *syncer.Synchronizer) error {
	data, err := json.Marshal(s.Bookmarks())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: list\ndata: %s\n\n", data)
	return err
}
