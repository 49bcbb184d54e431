package rategate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ignite/sparkpost-monitor/internal/domain"
	"github.com/ignite/sparkpost-monitor/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailSender struct {
	mu       sync.Mutex
	sent     []domain.EmailRequest
	failOn   string
	returnID string
}

func (f *fakeMailSender) Send(ctx context.Context, from, to, subject, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && to == f.failOn {
		return "", assert.AnError
	}
	f.sent = append(f.sent, domain.EmailRequest{Email: to, Subject: subject, Content: body})
	return f.returnID, nil
}

type fakeLocker struct {
	ok  bool
	err error
}

func (f fakeLocker) Acquire(ctx context.Context) (bool, error) { return f.ok, f.err }

func TestGate_dispatch_success(t *testing.T) {
	mail := &fakeMailSender{returnID: "msg-123"}
	send, outcome := queue.New(10, 10)
	g := New(mail, send, outcome, time.Hour, "from@example.com", "http://example.com")

	req := domain.EmailRequest{ID: 1, Email: "to@example.com", Subject: "s", Content: "c"}
	g.dispatch(context.Background(), req)

	out := <-outcome
	assert.Equal(t, domain.StatusSent, out.Status)
	assert.Equal(t, "msg-123", out.MessageID)
	require.Len(t, mail.sent, 1)
	assert.Contains(t, mail.sent[0].Content, "c")
}

func TestGate_dispatch_failure(t *testing.T) {
	mail := &fakeMailSender{failOn: "bad@example.com"}
	send, outcome := queue.New(10, 10)
	g := New(mail, send, outcome, time.Hour, "from@example.com", "http://example.com")

	req := domain.EmailRequest{ID: 2, Email: "bad@example.com", Subject: "s", Content: "c"}
	g.dispatch(context.Background(), req)

	out := <-outcome
	assert.Equal(t, domain.StatusFailed, out.Status)
	assert.NotEmpty(t, out.Error)
}

func TestGate_Run_oneSendPerTick(t *testing.T) {
	mail := &fakeMailSender{returnID: "id"}
	send, outcome := queue.New(10, 10)
	g := New(mail, send, outcome, 30*time.Millisecond, "from@example.com", "http://example.com")

	send <- domain.EmailRequest{ID: 1, Email: "a@example.com"}
	send <- domain.EmailRequest{ID: 2, Email: "b@example.com"}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	g.Run(ctx)

	assert.Len(t, outcome, 1)
}

type blockingMailSender struct {
	release chan struct{}
	sent    int32
}

func (f *blockingMailSender) Send(ctx context.Context, from, to, subject, body string) (string, error) {
	atomic.AddInt32(&f.sent, 1)
	<-f.release
	return "id", nil
}

// TestGate_Run_slowSendDoesNotBlockNextTick proves the tick only gates when a
// dispatch starts, not when it finishes: with the first Send still blocked,
// a second tick must still pull and dispatch the next queued request.
func TestGate_Run_slowSendDoesNotBlockNextTick(t *testing.T) {
	mail := &blockingMailSender{release: make(chan struct{})}
	send, outcome := queue.New(10, 10)
	g := New(mail, send, outcome, 10*time.Millisecond, "from@example.com", "http://example.com")

	send <- domain.EmailRequest{ID: 1, Email: "a@example.com"}
	send <- domain.EmailRequest{ID: 2, Email: "b@example.com"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.Run(ctx)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&mail.sent) == 2
	}, 500*time.Millisecond, 5*time.Millisecond, "second tick should dispatch before the first Send returns")

	close(mail.release)
	cancel()
}

func TestGate_Run_skipsTickWhenLockLost(t *testing.T) {
	mail := &fakeMailSender{returnID: "id"}
	send, outcome := queue.New(10, 10)
	g := New(mail, send, outcome, 20*time.Millisecond, "from@example.com", "http://example.com")
	g = g.WithTickLock(func(bucket string) TickLocker { return fakeLocker{ok: false} })

	send <- domain.EmailRequest{ID: 1, Email: "a@example.com"}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	g.Run(ctx)

	assert.Len(t, outcome, 0)
	assert.Len(t, send, 1)
}
