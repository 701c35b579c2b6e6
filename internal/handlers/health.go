package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is satisfied by *database.DB
type HealthChecker interface {
	Health(ctx context.Context) error
}

// QueueDepth reports the pending ticket deliveries
type QueueDepth interface {
	Len(ctx context.Context) (int, error)
}

// HealthHandler reports liveness of the API and its dependencies
type HealthHandler struct {
	db    HealthChecker
	queue QueueDepth
}

func NewHealthHandler(db HealthChecker, queue QueueDepth) *HealthHandler {
	return &HealthHandler{db: db, queue: queue}
}

// Health handles GET /health. The database is required; the queue depth
// is informational.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]interface{}{"status": "ok", "database": "ok"}
	status := http.StatusOK

	if h.db != nil {
		if err := h.db.Health(ctx); err != nil {
			body["status"] = "degraded"
			body["database"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	if h.queue != nil {
		if depth, err := h.queue.Len(ctx); err == nil {
			body["delivery_queue"] = depth
		} else {
			body["delivery_queue"] = "unavailable"
		}
	}

	writeJSON(w, status, body)
}
