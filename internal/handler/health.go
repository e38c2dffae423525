package handler

import (
	"context"
	"net/http"
	"time"

	"bookstore-be/internal/logger"
	"bookstore-be/internal/metrics"
	"bookstore-be/internal/utils"

	"go.uber.org/zap"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.FromCtx(r.Context()).Error("health check failed", zap.Error(err))
			utils.WriteJSONError(w, r, http.StatusServiceUnavailable, "database unavailable", nil)
			return
		}
		utils.WriteSuccess(w, r, http.StatusOK, map[string]string{"status": "ok"}, "")
	}
}

func Metrics(m *metrics.OrderMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, r, http.StatusOK, m.Snapshot())
	}
}
