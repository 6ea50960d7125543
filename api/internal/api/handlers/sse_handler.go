package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/irgordon/textcipher/api/internal/core/domain"
)

// heartbeatPeriod keeps idle proxies from closing the stream.
const heartbeatPeriod = 15 * time.Second

// EventSource is the subscription side of the activity hub.
type EventSource interface {
	Subscribe() chan domain.TransformEvent
	Unsubscribe(ch chan domain.TransformEvent)
}

type EventsHandler struct {
	Source EventSource
	Logger *slog.Logger
}

func NewEventsHandler(source EventSource, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{Source: source, Logger: logger}
}

// Stream handles GET /events
// Relays transform activity as Server-Sent Events until the client disconnects.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	// 🛡️ Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// The server-wide WriteTimeout would otherwise cut long-lived streams
	_ = rc.SetWriteDeadline(time.Time{})

	events := h.Source.Subscribe()
	defer h.Source.Unsubscribe(events)

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		h.Logger.Warn("SSE flush unsupported", slog.String("error", err.Error()))
		return
	}

	ticker := time.NewTicker(heartbeatPeriod)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			h.Logger.Debug("SSE client disconnected")
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.Logger.Error("Failed to encode activity event", slog.String("error", err.Error()))
				continue
			}
			// SSE framing: "id:", "event:" and "data:" lines closed by a blank line
			if _, err := fmt.Fprintf(w, "id: %s\nevent: transform\ndata: %s\n\n", ev.ID, payload); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
