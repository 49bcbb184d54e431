// Package postsend persists the outcome of each dispatch attempt.
package postsend

import (
	"context"

	"github.com/ignite/sparkpost-monitor/internal/domain"
	"github.com/ignite/sparkpost-monitor/internal/pkg/logger"
	"github.com/ignite/sparkpost-monitor/internal/queue"
	"github.com/ignite/sparkpost-monitor/internal/store"
)

// Writer drains OutcomeQueue sequentially and writes each request's final
// status back to the RequestStore. It runs single-threaded by design: the
// outcome queue is already serialised by the channel, and writes for the
// same request never need to race each other.
type Writer struct {
	requests store.RequestStore
	outcome  queue.OutcomeQueue
}

// New builds a Writer.
func New(requests store.RequestStore, outcome queue.OutcomeQueue) *Writer {
	return &Writer{requests: requests, outcome: outcome}
}

// Run blocks until ctx is cancelled or OutcomeQueue is closed, persisting
// every outcome it receives.
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-w.outcome:
			if !ok {
				return
			}
			w.write(ctx, req)
		}
	}
}

func (w *Writer) write(ctx context.Context, req domain.EmailRequest) {
	var err error
	switch req.Status {
	case domain.StatusSent:
		err = w.requests.MarkSent(ctx, req.ID, req.MessageID)
	case domain.StatusFailed:
		err = w.requests.MarkFailed(ctx, req.ID, req.Error)
	default:
		logger.Warn("postsend: unexpected outcome status", "request_id", req.ID, "status", req.Status.String())
		return
	}
	if err != nil {
		logger.Error("postsend: write failed", "request_id", req.ID, "error", err.Error())
	}
}
