package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ignite/sparkpost-monitor/internal/ingest"
	"github.com/ignite/sparkpost-monitor/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagesHandler_ServeHTTP_invalidJSON(t *testing.T) {
	send, _ := queue.New(10, 10)
	h := NewMessagesHandler(ingest.New(&fakeRequestStore{}, send))

	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessagesHandler_ServeHTTP_malformedScheduledAt(t *testing.T) {
	send, _ := queue.New(10, 10)
	h := NewMessagesHandler(ingest.New(&fakeRequestStore{}, send))

	body := `{"messages":[{"topic_id":"t1","emails":["a@example.com"],"subject":"s","content":"c"}],"scheduled_at":"not-a-date"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessagesHandler_ServeHTTP_storeFailureIsInternalError(t *testing.T) {
	send, _ := queue.New(10, 10)
	requests := &fakeRequestStore{createErr: assert.AnError}
	h := NewMessagesHandler(ingest.New(requests, send))

	body := `{"messages":[{"topic_id":"t1","emails":["a@example.com"],"subject":"s","content":"c"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMessagesHandler_ServeHTTP_success(t *testing.T) {
	send, _ := queue.New(10, 10)
	requests := &fakeRequestStore{}
	h := NewMessagesHandler(ingest.New(requests, send))

	body := `{"messages":[{"topic_id":"t1","emails":["a@example.com","b@example.com"],"subject":"s","content":"c"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, requests.created, 2)
}
