package callback

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ignite/sparkpost-monitor/internal/domain"
	"github.com/ignite/sparkpost-monitor/internal/store"
	"github.com/stretchr/testify/assert"
)

type fakeRequestStore struct {
	idByMessageID map[string]int64
	lookupErr     error
}

func (f *fakeRequestStore) Create(ctx context.Context, r *domain.EmailRequest) error { return nil }
func (f *fakeRequestStore) ClaimDue(ctx context.Context, limit int) ([]domain.EmailRequest, error) {
	return nil, nil
}
func (f *fakeRequestStore) MarkSent(ctx context.Context, id int64, messageID string) error { return nil }
func (f *fakeRequestStore) MarkFailed(ctx context.Context, id int64, reason string) error   { return nil }
func (f *fakeRequestStore) GetIDByMessageID(ctx context.Context, messageID string) (int64, error) {
	if f.lookupErr != nil {
		return 0, f.lookupErr
	}
	id, ok := f.idByMessageID[messageID]
	if !ok {
		return 0, store.ErrNotFound
	}
	return id, nil
}
func (f *fakeRequestStore) StopTopic(ctx context.Context, topicID string) error { return nil }
func (f *fakeRequestStore) CountsByTopic(ctx context.Context, topicID string) (map[string]int, error) {
	return nil, nil
}
func (f *fakeRequestStore) SentCount(ctx context.Context, hours int) (int, error) { return 0, nil }

type fakeResultStore struct {
	appended []domain.EmailResult
	failErr  error
}

func (f *fakeResultStore) Append(ctx context.Context, r *domain.EmailResult) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.appended = append(f.appended, *r)
	return nil
}
func (f *fakeResultStore) CountsByTopic(ctx context.Context, topicID string) (map[string]int, error) {
	return nil, nil
}

func postCallback(h *Handler, msgType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/events/results", strings.NewReader(body))
	if msgType != "" {
		req.Header.Set("x-amz-sns-message-type", msgType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ServeHTTP_missingHeader(t *testing.T) {
	h := NewHandler(&fakeRequestStore{}, &fakeResultStore{})
	rec := postCallback(h, "", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ServeHTTP_subscriptionConfirmation(t *testing.T) {
	h := NewHandler(&fakeRequestStore{}, &fakeResultStore{})
	rec := postCallback(h, "SubscriptionConfirmation", `{"SubscribeURL":"https://sns.example.com/confirm"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_ServeHTTP_notificationRecordsResult(t *testing.T) {
	requests := &fakeRequestStore{idByMessageID: map[string]int64{"ses-msg-1": 42}}
	results := &fakeResultStore{}
	h := NewHandler(requests, results)

	message := `{"notificationType":"Delivery","mail":{"messageId":"ses-msg-1"}}`
	env := `{"Message":` + quoteJSON(message) + `,"MessageId":"sns-id-1"}`
	rec := postCallback(h, "Notification", env)

	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.Len(t, results.appended, 1) {
		assert.Equal(t, int64(42), results.appended[0].RequestID)
		assert.Equal(t, "Delivery", results.appended[0].Status)
	}
}

func TestHandler_ServeHTTP_unknownMessageID(t *testing.T) {
	requests := &fakeRequestStore{idByMessageID: map[string]int64{}}
	results := &fakeResultStore{}
	h := NewHandler(requests, results)

	message := `{"notificationType":"Bounce","mail":{"messageId":"not-tracked"}}`
	env := `{"Message":` + quoteJSON(message) + `,"MessageId":"sns-id-2"}`
	rec := postCallback(h, "Notification", env)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandler_ServeHTTP_bodyTooLarge(t *testing.T) {
	h := NewHandler(&fakeRequestStore{}, &fakeResultStore{})
	big := strings.Repeat("a", maxBodySize+10)
	rec := postCallback(h, "Notification", big)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// quoteJSON escapes s for embedding as a JSON string value without pulling in
// encoding/json in the test just to marshal a string.
func quoteJSON(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' {
			b.WriteString(`\"`)
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
