// Package rategate drains the send queue at a fixed minimum interval and
// dispatches each request through a MailSender, injecting the open-tracking
// pixel into the body before it goes out.
package rategate

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/sparkpost-monitor/internal/domain"
	"github.com/ignite/sparkpost-monitor/internal/pixel"
	"github.com/ignite/sparkpost-monitor/internal/pkg/logger"
	"github.com/ignite/sparkpost-monitor/internal/queue"
	"github.com/ignite/sparkpost-monitor/internal/sender"
)

// TickLocker is satisfied by *distlock.RedisLock/*distlock.PGAdvisoryLock;
// kept as a narrow interface here so Gate doesn't need to import distlock.
type TickLocker interface {
	Acquire(ctx context.Context) (bool, error)
}

// Gate reads from SendQueue no more than once per Interval and writes the
// outcome of each send onto OutcomeQueue. One Gate consumes one SendQueue;
// running multiple Gates against the same queue multiplies the effective
// send rate, which is why MaxSendPerSecond is enforced per Gate, not globally
// — unless lockFactory is set.
//
// lockFactory is an optional cross-process coordination hook: when non-nil,
// a Gate only dispatches on a tick if it wins the lock for that tick's time
// bucket, so N processes running the same interval share one aggregate send
// rate instead of each adding to it. nil runs the single-process behavior.
type Gate struct {
	mail        sender.MailSender
	send        queue.SendQueue
	outcome     queue.OutcomeQueue
	interval    time.Duration
	fromAddress string
	baseURL     string
	lockFactory func(bucket string) TickLocker
}

// New builds a Gate with no cross-process coordination.
func New(mail sender.MailSender, send queue.SendQueue, outcome queue.OutcomeQueue, interval time.Duration, fromAddress, baseURL string) *Gate {
	return &Gate{
		mail:        mail,
		send:        send,
		outcome:     outcome,
		interval:    interval,
		fromAddress: fromAddress,
		baseURL:     baseURL,
	}
}

// WithTickLock attaches a cross-process lock factory, called once per tick
// with a bucket key derived from the tick time. The returned lock's TTL
// should be shorter than interval so a crashed holder can't stall the bucket.
func (g *Gate) WithTickLock(factory func(bucket string) TickLocker) *Gate {
	g.lockFactory = factory
	return g
}

// Run blocks, dispatching at most one request per tick, until ctx is
// cancelled or SendQueue is closed. The ticker gates how often a send is
// kicked off, not how long it takes to finish: each dispatch runs in its own
// goroutine so a slow MailSender.Send never delays the next ticker.C read.
func (g *Gate) Run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-ticker.C:
			if g.lockFactory != nil {
				bucket := fmt.Sprintf("rategate:%d", tick.UnixNano()/g.interval.Nanoseconds())
				ok, err := g.lockFactory(bucket).Acquire(ctx)
				if err != nil {
					logger.Warn("rategate: tick lock error, dispatching anyway", "error", err.Error())
				} else if !ok {
					continue // another process already claimed this tick
				}
			}

			select {
			case req, ok := <-g.send:
				if !ok {
					return
				}
				go g.dispatch(ctx, req)
			default:
				// nothing queued this tick
			}
		}
	}
}

func (g *Gate) dispatch(ctx context.Context, req domain.EmailRequest) {
	body := req.Content + pixel.Tag(g.baseURL, req.ID)

	messageID, err := g.mail.Send(ctx, g.fromAddress, req.Email, req.Subject, body)
	if err != nil {
		logger.Warn("rategate: send failed", "request_id", req.ID, "error", err.Error())
		req.Status = domain.StatusFailed
		req.Error = err.Error()
	} else {
		req.Status = domain.StatusSent
		req.MessageID = messageID
	}

	select {
	case g.outcome <- req:
	case <-ctx.Done():
	}
}
