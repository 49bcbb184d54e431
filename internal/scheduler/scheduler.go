// Package scheduler polls for due email requests and hands them to the send
// queue.
package scheduler

import (
	"context"
	"time"

	"github.com/ignite/sparkpost-monitor/internal/pkg/logger"
	"github.com/ignite/sparkpost-monitor/internal/queue"
	"github.com/ignite/sparkpost-monitor/internal/store"
)

const (
	// BatchSize caps how many rows one poll cycle claims.
	BatchSize = 1000

	// IdleSleep is how long the scheduler waits after an empty poll before
	// trying again; a busy poll re-checks immediately instead.
	IdleSleep = 60 * time.Second
)

// Scheduler repeatedly claims due EmailRequest rows and pushes them onto
// SendQueue. ClaimDue's single-statement UPDATE...RETURNING makes this safe
// to run from more than one process against the same database: SKIP LOCKED
// guarantees two schedulers never claim the same row.
type Scheduler struct {
	requests store.RequestStore
	send     queue.SendQueue
}

// New builds a Scheduler.
func New(requests store.RequestStore, send queue.SendQueue) *Scheduler {
	return &Scheduler{requests: requests, send: send}
}

// Run blocks until ctx is cancelled, polling for due requests.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		n, err := s.pollOnce(ctx)
		if err != nil {
			logger.Error("scheduler: poll failed", "error", err.Error())
		}

		wait := IdleSleep
		if n > 0 {
			wait = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (s *Scheduler) pollOnce(ctx context.Context) (int, error) {
	claimed, err := s.requests.ClaimDue(ctx, BatchSize)
	if err != nil {
		return 0, err
	}
	if len(claimed) == 0 {
		return 0, nil
	}

	logger.Info("scheduler: claimed batch", "count", len(claimed))
	for _, req := range claimed {
		select {
		case s.send <- req:
		case <-ctx.Done():
			return len(claimed), nil
		}
	}
	return len(claimed), nil
}
