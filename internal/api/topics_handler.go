package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/sparkpost-monitor/internal/domain"
	"github.com/ignite/sparkpost-monitor/internal/pkg/httputil"
	"github.com/ignite/sparkpost-monitor/internal/store"
)

// TopicsHandler serves GET and DELETE /v1/topics/{topic_id}.
type TopicsHandler struct {
	requests store.RequestStore
	results  store.ResultStore
}

// NewTopicsHandler builds a TopicsHandler.
func NewTopicsHandler(requests store.RequestStore, results store.ResultStore) *TopicsHandler {
	return &TopicsHandler{requests: requests, results: results}
}

// Retrieve returns aggregated request and result counts for a topic.
func (h *TopicsHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	topicID := chi.URLParam(r, "topic_id")

	requestCounts, err := h.requests.CountsByTopic(r.Context(), topicID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	resultCounts, err := h.results.CountsByTopic(r.Context(), topicID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, domain.TopicCounts{
		RequestCounts: requestCounts,
		ResultCounts:  resultCounts,
	})
}

// Stop transitions every pending request in a topic to Stopped, preventing
// any further sends; requests already claimed by the scheduler are
// unaffected.
func (h *TopicsHandler) Stop(w http.ResponseWriter, r *http.Request) {
	topicID := chi.URLParam(r, "topic_id")

	if err := h.requests.StopTopic(r.Context(), topicID); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}
