package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/ignite/sparkpost-monitor/internal/pkg/httputil"
)

// HealthChecker reports whether the database is reachable.
type HealthChecker struct {
	db        *sql.DB
	startTime time.Time
}

// NewHealthChecker builds a HealthChecker.
func NewHealthChecker(db *sql.DB) *HealthChecker {
	return &HealthChecker{db: db, startTime: time.Now()}
}

// ServeHTTP reports 200 with "ok" if the database responds to a ping within
// 3 seconds, 503 otherwise.
func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := hc.db.PingContext(ctx); err != nil {
		httputil.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	httputil.OK(w, map[string]string{
		"status": "ok",
		"uptime": time.Since(hc.startTime).String(),
	})
}
