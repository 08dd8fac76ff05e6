// Package health provides health check endpoints.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/starquake/kioskquiz/internal/httputil"
	"github.com/starquake/kioskquiz/internal/logging"
	"github.com/starquake/kioskquiz/internal/store"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HandleHealthz returns a handler that serves health check responses.
func HandleHealthz(logger *slog.Logger, stores *store.Stores) http.HandlerFunc {
	type healthStatus struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks,omitempty"`
	}

	checks := []struct {
		name string
		p    pinger
	}{
		{name: "quizzes", p: stores.Quizzes},
		{name: "statistics", p: stores.Stats},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		httpStatus := http.StatusOK
		health := healthStatus{
			Status: "ok",
			Checks: make(map[string]string),
		}

		for _, c := range checks {
			if err := c.p.Ping(ctx); err != nil {
				health.Status = "degraded"
				health.Checks[c.name] = fmt.Sprintf("unhealthy: %v", err)
				httpStatus = http.StatusServiceUnavailable

				continue
			}
			health.Checks[c.name] = "healthy"
		}

		logger.DebugContext(ctx, "health check performed", slog.String("status", health.Status))
		if err := httputil.EncodeJSON(w, httpStatus, health); err != nil {
			logger.ErrorContext(ctx, "error encoding health response", logging.ErrAttr(err))
		}
	}
}
