package rest

import (
	"context"
	"net/http"
	"time"

	"property-search-service/internal/contextkeys"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandlers struct {
	store pinger
}

func NewHealthHandlers(store pinger) *HealthHandlers {
	return &HealthHandlers{store: store}
}

// HandleHealth - GET /healthz
func (h *HealthHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Store ping failed", err, nil)
		WriteJSONError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
