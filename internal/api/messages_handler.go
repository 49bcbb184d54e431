package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/ignite/sparkpost-monitor/internal/domain"
	"github.com/ignite/sparkpost-monitor/internal/ingest"
	"github.com/ignite/sparkpost-monitor/internal/pkg/httputil"
)

// createBatchRequest is the wire shape of POST /v1/messages.
type createBatchRequest struct {
	Messages []struct {
		TopicID string   `json:"topic_id"`
		Emails  []string `json:"emails"`
		Subject string   `json:"subject"`
		Content string   `json:"content"`
	} `json:"messages"`
	ScheduledAt string `json:"scheduled_at"`
}

// MessagesHandler serves POST /v1/messages.
type MessagesHandler struct {
	ingester *ingest.Ingester
}

// NewMessagesHandler builds a MessagesHandler.
func NewMessagesHandler(ingester *ingest.Ingester) *MessagesHandler {
	return &MessagesHandler{ingester: ingester}
}

// ServeHTTP decodes the batch, ingests it, and returns 200 with the elapsed
// processing time as the body — the response is opaque to clients by design,
// since acknowledging per-recipient status synchronously would require
// blocking on every downstream send.
func (h *MessagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req createBatchRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	cmd := domain.CreateBatchCommand{ScheduledAt: req.ScheduledAt}
	for _, m := range req.Messages {
		cmd.Messages = append(cmd.Messages, domain.Message{
			TopicID: m.TopicID,
			Emails:  m.Emails,
			Subject: m.Subject,
			Content: m.Content,
		})
	}

	if _, err := h.ingester.Accept(r.Context(), cmd); err != nil {
		if errors.Is(err, domain.ErrInvalidScheduledAt) {
			httputil.BadRequest(w, err.Error())
		} else {
			httputil.InternalError(w, err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(time.Since(start).String()))
}
