// Package ingest explodes incoming batches into per-recipient EmailRequest
// rows and either queues them immediately or leaves them for the scheduler.
package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/ignite/sparkpost-monitor/internal/domain"
	"github.com/ignite/sparkpost-monitor/internal/queue"
	"github.com/ignite/sparkpost-monitor/internal/store"
)

// fanOutWidth bounds how many recipients are persisted concurrently per
// batch — unbounded fan-out would let one huge batch exhaust the database's
// connection pool.
const fanOutWidth = 100

// Ingester accepts CreateBatchCommand requests from the HTTP layer.
type Ingester struct {
	requests store.RequestStore
	send     queue.SendQueue
}

// New builds an Ingester.
func New(requests store.RequestStore, send queue.SendQueue) *Ingester {
	return &Ingester{requests: requests, send: send}
}

// Accept validates and persists every recipient in cmd, returning the count
// of requests created. A malformed ScheduledAt fails the whole batch before
// anything is persisted. Immediate batches (empty ScheduledAt) are pushed
// onto SendQueue as they're created; scheduled batches are left for the
// Scheduler to claim when due.
func (in *Ingester) Accept(ctx context.Context, cmd domain.CreateBatchCommand) (int, error) {
	scheduledAt, immediate, err := domain.ParseScheduledAt(cmd.ScheduledAt)
	if err != nil {
		return 0, fmt.Errorf("ingest: %w", err)
	}

	type job struct {
		topicID, email, subject, content string
	}

	var jobs []job
	for _, msg := range cmd.Messages {
		for _, email := range msg.Emails {
			jobs = append(jobs, job{msg.TopicID, email, msg.Subject, msg.Content})
		}
	}

	var (
		wg       sync.WaitGroup
		sem      = make(chan struct{}, fanOutWidth)
		mu       sync.Mutex
		firstErr error
		created  int
	)

	for _, j := range jobs {
		j := j
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			req := &domain.EmailRequest{
				TopicID:     j.topicID,
				Email:       j.email,
				Subject:     j.subject,
				Content:     j.content,
				ScheduledAt: scheduledAt,
				Status:      domain.StatusCreated,
			}
			if immediate {
				req.Status = domain.StatusProcessed
			}

			if err := in.requests.Create(ctx, req); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("ingest: create request for %s: %w", j.email, err)
				}
				mu.Unlock()
				return
			}

			mu.Lock()
			created++
			mu.Unlock()

			if immediate {
				select {
				case in.send <- *req:
				case <-ctx.Done():
				}
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return created, firstErr
	}
	return created, nil
}
