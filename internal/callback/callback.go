// Package callback ingests SNS-delivered SES notifications (delivery,
// bounce, complaint) and correlates them back to the originating request.
package callback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ignite/sparkpost-monitor/internal/domain"
	"github.com/ignite/sparkpost-monitor/internal/pkg/httputil"
	"github.com/ignite/sparkpost-monitor/internal/pkg/logger"
	"github.com/ignite/sparkpost-monitor/internal/store"
)

// maxBodySize bounds how much of an SNS POST body is read; SNS payloads are
// small JSON documents, so 1 MiB is already generous headroom.
const maxBodySize = 1024 * 1024

// snsEnvelope mirrors the handful of SNS fields this service reads. SNS
// sends one of three shapes distinguished by which fields are present:
// SubscribeURL (subscription confirmation), Message+MessageId (a
// notification), or neither (a type this service doesn't act on).
type snsEnvelope struct {
	SubscribeURL string `json:"SubscribeURL"`
	Message      string `json:"Message"`
	MessageId    string `json:"MessageId"`
}

// sesNotification is the inner JSON carried in snsEnvelope.Message for SES
// event notifications. Only notificationType and mail.messageId are read;
// everything else is kept in Raw for storage.
type sesNotification struct {
	NotificationType string `json:"notificationType"`
	Mail             struct {
		MessageId string `json:"messageId"`
	} `json:"mail"`
}

// Handler serves POST /v1/events/results.
type Handler struct {
	requests store.RequestStore
	results  store.ResultStore
}

// NewHandler builds a callback Handler.
func NewHandler(requests store.RequestStore, results store.ResultStore) *Handler {
	return &Handler{requests: requests, results: results}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	msgType := r.Header.Get("x-amz-sns-message-type")
	if msgType != "Notification" && msgType != "SubscriptionConfirmation" {
		logger.Warn("callback: invalid sns message type header", "type", msgType)
		httputil.BadRequest(w, "invalid SNS message type")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.BadRequest(w, "body too large or unreadable")
		return
	}

	var env snsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		logger.Error("callback: failed to parse sns envelope", "error", err.Error())
		httputil.BadRequest(w, "failed to parse SNS message")
		return
	}

	switch {
	case env.SubscribeURL != "":
		logger.Info("callback: subscription confirmation required", "subscribe_url", env.SubscribeURL)
		httputil.OK(w, "subscription confirmation required")

	case env.Message != "" && env.MessageId != "":
		h.handleNotification(w, r, env)

	default:
		logger.Info("callback: received other message type")
		httputil.OK(w, "other message type received")
	}
}

// IngestEnvelope applies the same notification handling ServeHTTP does, for
// callers that receive the raw SNS envelope out-of-band (see
// internal/callback's SQS consumer) rather than as an HTTP POST body. It
// returns an error only for conditions the HTTP path would answer with 5xx —
// a malformed envelope or an envelope this service doesn't act on is not an
// error, matching ServeHTTP's 200-for-other-message-types behavior.
func (h *Handler) IngestEnvelope(ctx context.Context, body []byte) error {
	var env snsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		logger.Error("callback: failed to parse sns envelope from queue", "error", err.Error())
		return nil
	}
	if env.Message == "" || env.MessageId == "" {
		return nil
	}

	var ses sesNotification
	if err := json.Unmarshal([]byte(env.Message), &ses); err != nil {
		logger.Error("callback: failed to parse ses notification from queue", "error", err.Error())
		return nil
	}
	if ses.Mail.MessageId == "" {
		logger.Error("callback: ses message_id missing in queued envelope", "sns_message_id", env.MessageId)
		return nil
	}

	requestID, err := h.requests.GetIDByMessageID(ctx, ses.Mail.MessageId)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Error("callback: request not found for ses message_id",
				"sns_message_id", env.MessageId, "ses_message_id", ses.Mail.MessageId)
			return nil
		}
		return fmt.Errorf("lookup request by ses message id: %w", err)
	}

	result := &domain.EmailResult{
		RequestID: requestID,
		Status:    ses.NotificationType,
		Raw:       env.Message,
	}
	if err := h.results.Append(ctx, result); err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	return nil
}

func (h *Handler) handleNotification(w http.ResponseWriter, r *http.Request, env snsEnvelope) {
	var ses sesNotification
	if err := json.Unmarshal([]byte(env.Message), &ses); err != nil {
		logger.Error("callback: failed to parse ses notification", "error", err.Error(), "message", env.Message)
		httputil.OK(w, "non-SES notification received")
		return
	}

	if ses.Mail.MessageId == "" {
		logger.Error("callback: ses message_id missing", "sns_message_id", env.MessageId)
		httputil.BadRequest(w, "SES message_id not found")
		return
	}

	requestID, err := h.requests.GetIDByMessageID(r.Context(), ses.Mail.MessageId)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Error("callback: request not found for ses message_id",
				"sns_message_id", env.MessageId, "ses_message_id", ses.Mail.MessageId)
		} else {
			logger.Error("callback: lookup failed", "ses_message_id", ses.Mail.MessageId, "error", err.Error())
		}
		httputil.InternalError(w, errors.New("failed to retrieve request_id"))
		return
	}

	result := &domain.EmailResult{
		RequestID: requestID,
		Status:    ses.NotificationType,
		Raw:       env.Message,
	}
	if err := h.results.Append(r.Context(), result); err != nil {
		logger.Error("callback: failed to save event", "request_id", requestID, "error", err.Error())
		httputil.InternalError(w, errors.New("failed to save event"))
		return
	}

	httputil.OK(w, "OK")
}
