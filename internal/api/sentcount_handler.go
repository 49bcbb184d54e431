package api

import (
	"net/http"
	"strconv"

	"github.com/ignite/sparkpost-monitor/internal/pkg/httputil"
	"github.com/ignite/sparkpost-monitor/internal/store"
)

// SentCountHandler serves GET /v1/events/counts/sent.
type SentCountHandler struct {
	requests store.RequestStore
}

// NewSentCountHandler builds a SentCountHandler.
func NewSentCountHandler(requests store.RequestStore) *SentCountHandler {
	return &SentCountHandler{requests: requests}
}

type sentCountResponse struct {
	Count int `json:"count"`
}

func (h *SentCountHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			hours = n
		}
	}

	count, err := h.requests.SentCount(r.Context(), hours)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, sentCountResponse{Count: count})
}
