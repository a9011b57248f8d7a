// Package health serves the liveness endpoint backed by dependency pings.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"stargate/pkg/platform/httputil"
)

// CheckFunc reports whether one dependency answers.
type CheckFunc func(ctx context.Context) error

// Handler runs every registered check on each request.
type Handler struct {
	checks  map[string]CheckFunc
	timeout time.Duration
	logger  *slog.Logger
}

// Response is the /healthz body.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func New(logger *slog.Logger) *Handler {
	return &Handler{
		checks:  map[string]CheckFunc{},
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// Add registers a named check. A nil check is ignored.
func (h *Handler) Add(name string, check CheckFunc) *Handler {
	if check != nil {
		h.checks[name] = check
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := Response{Status: "ok", Checks: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	httputil.WriteJSON(w, status, resp)
}
