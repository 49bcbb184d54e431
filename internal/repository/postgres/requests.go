package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/sparkpost-monitor/internal/domain"
	"github.com/ignite/sparkpost-monitor/internal/store"
)

// RequestRepo implements store.RequestStore against PostgreSQL.
type RequestRepo struct{ db *sql.DB }

// NewRequestRepo creates a Postgres-backed request repository.
func NewRequestRepo(db *sql.DB) *RequestRepo { return &RequestRepo{db: db} }

func (r *RequestRepo) Create(ctx context.Context, e *domain.EmailRequest) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO email_requests
			(topic_id, email, subject, content, scheduled_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id
	`, e.TopicID, e.Email, e.Subject, e.Content, e.ScheduledAt, e.Status).Scan(&e.ID)
}

// ClaimDue collapses the select-then-update race into a single statement:
// the UPDATE's WHERE clause re-checks status=Created at claim time, so a row
// already claimed by a concurrent cycle (or a second scheduler instance) is
// silently excluded rather than double-enqueued.
func (r *RequestRepo) ClaimDue(ctx context.Context, limit int) ([]domain.EmailRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		WITH claimed AS (
			UPDATE email_requests
			SET status = $1, updated_at = NOW()
			WHERE id IN (
				SELECT id FROM email_requests
				WHERE status = $2 AND scheduled_at <= NOW()
				ORDER BY scheduled_at ASC
				LIMIT $3
				FOR UPDATE SKIP LOCKED
			)
			RETURNING id, topic_id, email, subject, content, scheduled_at, status, created_at, updated_at
		)
		SELECT id, topic_id, email, subject, content, scheduled_at, status, created_at, updated_at
		FROM claimed
	`, domain.StatusProcessed, domain.StatusCreated, limit)
	if err != nil {
		return nil, fmt.Errorf("claim due requests: %w", err)
	}
	defer rows.Close()

	var out []domain.EmailRequest
	for rows.Next() {
		var e domain.EmailRequest
		if err := rows.Scan(&e.ID, &e.TopicID, &e.Email, &e.Subject, &e.Content,
			&e.ScheduledAt, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan claimed request: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *RequestRepo) MarkSent(ctx context.Context, id int64, messageID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE email_requests
		SET status = $1, message_id = $2, error = NULL, updated_at = NOW()
		WHERE id = $3
	`, domain.StatusSent, messageID, id)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *RequestRepo) MarkFailed(ctx context.Context, id int64, reason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE email_requests
		SET status = $1, error = $2, updated_at = NOW()
		WHERE id = $3
	`, domain.StatusFailed, reason, id)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *RequestRepo) GetIDByMessageID(ctx context.Context, messageID string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM email_requests WHERE message_id = $1
	`, messageID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get request by message id: %w", err)
	}
	return id, nil
}

func (r *RequestRepo) StopTopic(ctx context.Context, topicID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE email_requests
		SET status = $1, updated_at = NOW()
		WHERE topic_id = $2 AND status = $3
	`, domain.StatusStopped, topicID, domain.StatusCreated)
	if err != nil {
		return fmt.Errorf("stop topic: %w", err)
	}
	return nil
}

func (r *RequestRepo) CountsByTopic(ctx context.Context, topicID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM email_requests WHERE topic_id = $1 GROUP BY status
	`, topicID)
	if err != nil {
		return nil, fmt.Errorf("count requests by topic: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status domain.RequestStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan request count: %w", err)
		}
		counts[status.String()] = n
	}
	return counts, rows.Err()
}

func (r *RequestRepo) SentCount(ctx context.Context, hours int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM email_requests
		WHERE status = $1 AND created_at >= NOW() - ($2 || ' hours')::interval
	`, domain.StatusSent, hours).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sent count: %w", err)
	}
	return n, nil
}

func rowsAffectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
