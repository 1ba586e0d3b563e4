package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const writeTimeout = 60 * time.Second

// Identify returns the signed-in user for a request, or "" for anonymous viewers.
type Identify func(r *http.Request) string

// Handler streams events at GET /api/v1/events.
// Anyone may subscribe: like counts and comments on published recipes are public.
type Handler struct {
	manager  *Manager
	identify Identify
	logger   *slog.Logger
}

// NewHandler creates a Handler. identify may be nil.
func NewHandler(manager *Manager, identify Identify, logger *slog.Logger) *Handler {
	if identify == nil {
		identify = func(*http.Request) string { return "" }
	}
	return &Handler{manager: manager, identify: identify, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.logger.Error("event stream cannot flush", slog.String("error", err.Error()))
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	recipeID := r.URL.Query().Get("recipe_id")
	client, err := h.manager.Connect(h.identify(r), recipeID)
	if err != nil {
		h.logger.Error("event stream registration failed", slog.String("error", err.Error()))
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer h.manager.Disconnect(client.ID)

	log := h.logger.With(slog.String("client_id", client.ID))
	send := func(e Event) error {
		if err := writeEvent(w, e); err != nil {
			return err
		}
		if err := rc.Flush(); err != nil {
			return err
		}
		if err := rc.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			log.Debug("write deadline not supported", slog.String("error", err.Error()))
		}
		return nil
	}

	if err := send(newEvent(EventConnected, ConnectedEventData{ClientID: client.ID, RecipeID: recipeID})); err != nil {
		log.Warn("event stream hello failed", slog.String("error", err.Error()))
		return
	}

	for {
		select {
		case e, ok := <-client.Events:
			if !ok {
				return
			}
			if err := send(e); err != nil {
				log.Debug("event stream write failed", slog.String("error", err.Error()))
				return
			}
		case <-client.Done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// writeEvent writes one event in text/event-stream framing:
//
//	id: <uuid>
//	event: <type>
//	data: <json>
func writeEvent(w io.Writer, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, e.Type, data)
	return err
}
