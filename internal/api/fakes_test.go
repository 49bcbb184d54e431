package api

import (
	"context"

	"github.com/ignite/sparkpost-monitor/internal/domain"
)

// fakeRequestStore and fakeResultStore are shared across this package's
// handler tests; every _test.go file here sees the same package scope, so
// they're declared once rather than per file.
type fakeRequestStore struct {
	createErr     error
	created       []*domain.EmailRequest
	countsByTopic map[string]int
	countsErr     error
	stopErr       error
	stoppedTopic  string
	sentCount     int
	sentCountErr  error
}

func (f *fakeRequestStore) Create(ctx context.Context, r *domain.EmailRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, r)
	return nil
}

func (f *fakeRequestStore) ClaimDue(ctx context.Context, limit int) ([]domain.EmailRequest, error) {
	return nil, nil
}

func (f *fakeRequestStore) MarkSent(ctx context.Context, id int64, messageID string) error {
	return nil
}

func (f *fakeRequestStore) MarkFailed(ctx context.Context, id int64, reason string) error {
	return nil
}

func (f *fakeRequestStore) GetIDByMessageID(ctx context.Context, messageID string) (int64, error) {
	return 0, nil
}

func (f *fakeRequestStore) StopTopic(ctx context.Context, topicID string) error {
	f.stoppedTopic = topicID
	return f.stopErr
}

func (f *fakeRequestStore) CountsByTopic(ctx context.Context, topicID string) (map[string]int, error) {
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	return f.countsByTopic, nil
}

func (f *fakeRequestStore) SentCount(ctx context.Context, hours int) (int, error) {
	return f.sentCount, f.sentCountErr
}

type fakeResultStore struct {
	appended      []domain.EmailResult
	countsByTopic map[string]int
	countsErr     error
}

func (f *fakeResultStore) Append(ctx context.Context, r *domain.EmailResult) error {
	f.appended = append(f.appended, *r)
	return nil
}

func (f *fakeResultStore) CountsByTopic(ctx context.Context, topicID string) (map[string]int, error) {
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	return f.countsByTopic, nil
}
