package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/sparkpost-monitor/internal/domain"
)

// ResultRepo implements store.ResultStore against PostgreSQL.
type ResultRepo struct{ db *sql.DB }

// NewResultRepo creates a Postgres-backed result repository.
func NewResultRepo(db *sql.DB) *ResultRepo { return &ResultRepo{db: db} }

func (r *ResultRepo) Append(ctx context.Context, e *domain.EmailResult) error {
	var raw sql.NullString
	if e.Raw != "" {
		raw = sql.NullString{String: e.Raw, Valid: true}
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO email_results (request_id, status, raw, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`, e.RequestID, e.Status, raw).Scan(&e.ID, &e.CreatedAt)
}

// CountsByTopic counts results per status for every request under topicID,
// using COUNT(DISTINCT request_id) so that duplicate provider deliveries for
// the same request don't inflate the count (callback ingestion has no
// idempotency guard, so duplicates are expected — see CallbackIngestor).
func (r *ResultRepo) CountsByTopic(ctx context.Context, topicID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(DISTINCT request_id)
		FROM email_results
		WHERE request_id IN (SELECT id FROM email_requests WHERE topic_id = $1)
		GROUP BY status
	`, topicID)
	if err != nil {
		return nil, fmt.Errorf("count results by topic: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan result count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
