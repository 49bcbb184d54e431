// Package store defines the persistence contracts consumed by every pipeline
// component. Implementations live in internal/repository/postgres; components
// depend only on these interfaces so they can be exercised against
// in-memory fakes in tests.
package store

import (
	"context"

	"github.com/ignite/sparkpost-monitor/internal/domain"
)

// RequestStore is the data access contract for EmailRequest rows.
type RequestStore interface {
	// Create persists one request and assigns its ID.
	Create(ctx context.Context, r *domain.EmailRequest) error

	// ClaimDue atomically selects up to limit rows with status=Created and
	// scheduled_at<=now, transitions them to Processed, and returns them.
	// The transition and the read happen in a single statement so no other
	// actor can observe or re-claim the same row mid-cycle.
	ClaimDue(ctx context.Context, limit int) ([]domain.EmailRequest, error)

	// MarkSent records a successful dispatch.
	MarkSent(ctx context.Context, id int64, messageID string) error

	// MarkFailed records a failed dispatch with the given reason.
	MarkFailed(ctx context.Context, id int64, reason string) error

	// GetIDByMessageID resolves the owning request for a provider message-id.
	// Returns ErrNotFound if no request carries that message-id.
	GetIDByMessageID(ctx context.Context, messageID string) (int64, error)

	// StopTopic transitions every Created row in topicID to Stopped. Rows
	// already Processed or terminal are left untouched.
	StopTopic(ctx context.Context, topicID string) error

	// CountsByTopic returns request counts for topicID keyed by status label.
	CountsByTopic(ctx context.Context, topicID string) (map[string]int, error)

	// SentCount returns the number of Sent rows created within the last
	// `hours` hours.
	SentCount(ctx context.Context, hours int) (int, error)
}

// ResultStore is the data access contract for EmailResult rows.
type ResultStore interface {
	// Append inserts one result row. Never mutates or deletes existing rows.
	Append(ctx context.Context, r *domain.EmailResult) error

	// CountsByTopic returns result counts for topicID's requests, keyed by
	// status label, using COUNT(DISTINCT request_id) semantics.
	CountsByTopic(ctx context.Context, topicID string) (map[string]int, error)
}
