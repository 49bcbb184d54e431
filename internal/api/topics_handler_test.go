package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/sparkpost-monitor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountTopicsRoute(h *TopicsHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/v1/topics/{topic_id}", h.Retrieve)
	r.Delete("/v1/topics/{topic_id}", h.Stop)
	return r
}

func TestTopicsHandler_Retrieve_success(t *testing.T) {
	requests := &fakeRequestStore{countsByTopic: map[string]int{"created": 2}}
	results := &fakeResultStore{countsByTopic: map[string]int{"delivery": 1}}
	r := mountTopicsRoute(NewTopicsHandler(requests, results))

	req := httptest.NewRequest(http.MethodGet, "/v1/topics/t1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out domain.TopicCounts
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, 2, out.RequestCounts["created"])
	assert.Equal(t, 1, out.ResultCounts["delivery"])
}

func TestTopicsHandler_Retrieve_requestStoreError(t *testing.T) {
	requests := &fakeRequestStore{countsErr: assert.AnError}
	results := &fakeResultStore{}
	r := mountTopicsRoute(NewTopicsHandler(requests, results))

	req := httptest.NewRequest(http.MethodGet, "/v1/topics/t1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTopicsHandler_Stop_success(t *testing.T) {
	requests := &fakeRequestStore{}
	r := mountTopicsRoute(NewTopicsHandler(requests, &fakeResultStore{}))

	req := httptest.NewRequest(http.MethodDelete, "/v1/topics/t1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "t1", requests.stoppedTopic)
}

func TestTopicsHandler_Stop_storeError(t *testing.T) {
	requests := &fakeRequestStore{stopErr: assert.AnError}
	r := mountTopicsRoute(NewTopicsHandler(requests, &fakeResultStore{}))

	req := httptest.NewRequest(http.MethodDelete, "/v1/topics/t1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
