package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

// BadgeHandler serves the navigation counters.
type BadgeHandler struct {
	service *service.BadgeService
	logger  *slog.Logger
}

// NewBadgeHandler creates a badge handler.
func NewBadgeHandler(svc *service.BadgeService, logger *slog.Logger) *BadgeHandler {
	return &BadgeHandler{service: svc, logger: logger}
}

// GetBadge handles GET /api/v1/badge
func (h *BadgeHandler) GetBadge(w http.ResponseWriter, r *http.Request) {
	badge, err := h.service.Get(r.Context(), logger.ClientIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, badge)
}
