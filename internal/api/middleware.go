package api

import (
	"net/http"

	"github.com/google/uuid"
)

// correlationIDHeader carries a request-scoped id distinct from chi's
// RequestID: chi's is a short per-process counter meant for local log
// correlation, this one is a globally unique id safe to hand to an external
// system (SES/SNS logs, a downstream trace) without colliding across
// processes or restarts.
const correlationIDHeader = "X-Correlation-ID"

// withCorrelationID stamps every response with a fresh UUID and is a no-op
// on the request itself — handlers that want to log it can read the header
// back off the ResponseWriter via a wrapping recorder, but none currently
// need to, so this only needs to set the header.
func withCorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(correlationIDHeader, uuid.New().String())
		next.ServeHTTP(w, r)
	})
}
