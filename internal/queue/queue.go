// Package queue provides the two bounded, process-local channels that link
// the dispatch pipeline's stages. Both are multi-producer, single-consumer:
// the Go channel itself serialises access, so no additional locking is
// needed on either side (unlike a runtime where a channel receiver must be
// held behind an explicit mutex to be shared).
package queue

import "github.com/ignite/sparkpost-monitor/internal/domain"

// SendQueue carries EmailRequest rows claimed by the Ingester or Scheduler,
// awaiting dispatch by the RateGate+Sender. Producers block when full — this
// is the system's primary backpressure lever.
type SendQueue chan domain.EmailRequest

// OutcomeQueue carries EmailRequest rows after a dispatch attempt, carrying
// the final status/message_id/error for the PostSendWriter to persist.
type OutcomeQueue chan domain.EmailRequest

// New creates a SendQueue and OutcomeQueue with the given capacities.
func New(sendCap, outcomeCap int) (SendQueue, OutcomeQueue) {
	return make(SendQueue, sendCap), make(OutcomeQueue, outcomeCap)
}
