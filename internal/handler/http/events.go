package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

// DefaultHeartbeat is how often an idle change stream sends a keep-alive.
const DefaultHeartbeat = 25 * time.Second

// EventsHandler streams collection changes as server-sent events.
type EventsHandler struct {
	notifier  *service.Notifier
	badges    *service.BadgeService
	heartbeat time.Duration
	logger    *slog.Logger
}

// NewEventsHandler creates the change stream handler.
func NewEventsHandler(notifier *service.Notifier, badges *service.BadgeService, heartbeat time.Duration, logger *slog.Logger) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &EventsHandler{notifier: notifier, badges: badges, heartbeat: heartbeat, logger: logger}
}

// Stream handles GET /api/v1/events. The first event, "ready", carries the
// current badge; every write to the client's cart or wishlist then produces a
// "change" event with the collection name and its new version.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	client := logger.ClientIDFromContext(ctx)
	l := logger.WithContext(ctx, h.logger)

	badge, err := h.badges.Get(ctx, client)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	// Subscribe before sending the snapshot so no change is missed between them.
	changes, unsubscribe := h.notifier.Subscribe(client)
	defer unsubscribe()

	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		l.WarnContext(ctx, "could not clear write deadline", slog.String("error", err.Error()))
	}

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-store")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "ready", "", badge); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		l.ErrorContext(ctx, "change stream cannot flush", slog.String("error", err.Error()))
		return
	}
	l.DebugContext(ctx, "change stream opened",
		slog.Int("subscribers", h.notifier.Subscribers(client)),
	)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.DebugContext(ctx, "change stream closed")
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			id := fmt.Sprintf("%s-%d", c.Collection, c.Version)
			if err := writeEvent(w, "change", id, c); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w io.Writer, name, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if id != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", id); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
