package notification

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"greenpoints/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedSender fails the first failures calls with err, then succeeds.
type scriptedSender struct {
	mu        sync.Mutex
	failures  int
	err       error
	calls     atomic.Int32
	delivered []service.OTPMessage
	block     chan struct{}
}

func (s *scriptedSender) Send(ctx context.Context, msg service.OTPMessage) error {
	s.calls.Add(1)
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--

		return s.err
	}
	s.delivered = append(s.delivered, msg)

	return nil
}

func (s *scriptedSender) deliveredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.delivered)
}

func TestDispatcher_DeliversQueuedMessages(t *testing.T) {
	sender := &scriptedSender{}
	d := NewDispatcher(sender, discardLogger(), DispatcherOptions{Workers: 2, QueueSize: 8})
	d.Start()

	for i := range 5 {
		require.NoError(t, d.Dispatch(context.Background(), service.OTPMessage{Email: "a@example.com", Code: string(rune('0' + i))}))
	}

	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, 5, sender.deliveredCount())
}

func TestDispatcher_RetriesTransientFailures(t *testing.T) {
	sender := &scriptedSender{failures: 2, err: errors.New("upstream 503")}
	d := NewDispatcher(sender, discardLogger(), DispatcherOptions{
		Workers:        1,
		QueueSize:      1,
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
	})
	d.Start()

	require.NoError(t, d.Dispatch(context.Background(), service.OTPMessage{Email: "a@example.com", Code: "123456"}))
	require.NoError(t, d.Stop(context.Background()))

	assert.Equal(t, int32(3), sender.calls.Load())
	assert.Equal(t, 1, sender.deliveredCount())
}

func TestDispatcher_GivesUpAfterMaxRetries(t *testing.T) {
	sender := &scriptedSender{failures: 10, err: errors.New("upstream 503")}
	d := NewDispatcher(sender, discardLogger(), DispatcherOptions{
		Workers:        1,
		QueueSize:      1,
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
	})
	d.Start()

	require.NoError(t, d.Dispatch(context.Background(), service.OTPMessage{Email: "a@example.com", Code: "123456"}))
	require.NoError(t, d.Stop(context.Background()))

	assert.Equal(t, int32(3), sender.calls.Load())
	assert.Equal(t, 0, sender.deliveredCount())
}

func TestDispatcher_LogsMaskedEmail(t *testing.T) {
	var buf bytes.Buffer
	sender := &scriptedSender{failures: 1, err: Permanent(errors.New("422 invalid recipient"))}
	d := NewDispatcher(sender, slog.New(slog.NewTextHandler(&buf, nil)), DispatcherOptions{Workers: 1, QueueSize: 1})
	d.Start()

	require.NoError(t, d.Dispatch(context.Background(), service.OTPMessage{Email: "alice@example.com", Code: "123456"}))
	require.NoError(t, d.Stop(context.Background()))

	assert.Contains(t, buf.String(), "a***@example.com")
	assert.NotContains(t, buf.String(), "alice@example.com")
}

func TestDispatcher_PermanentErrorIsNotRetried(t *testing.T) {
	sender := &scriptedSender{failures: 5, err: Permanent(errors.New("422 invalid recipient"))}
	d := NewDispatcher(sender, discardLogger(), DispatcherOptions{
		Workers:        1,
		QueueSize:      1,
		MaxRetries:     4,
		InitialBackoff: time.Millisecond,
	})
	d.Start()

	require.NoError(t, d.Dispatch(context.Background(), service.OTPMessage{Email: "a@example.com", Code: "123456"}))
	require.NoError(t, d.Stop(context.Background()))

	assert.Equal(t, int32(1), sender.calls.Load())
}

func TestDispatcher_FullQueueRejectsWithoutBlocking(t *testing.T) {
	sender := &scriptedSender{block: make(chan struct{})}
	d := NewDispatcher(sender, discardLogger(), DispatcherOptions{Workers: 1, QueueSize: 1})
	d.Start()

	msg := service.OTPMessage{Email: "a@example.com", Code: "123456"}

	// First message occupies the worker, second fills the queue.
	require.NoError(t, d.Dispatch(context.Background(), msg))
	require.Eventually(t, func() bool { return sender.calls.Load() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, d.Dispatch(context.Background(), msg))

	assert.ErrorIs(t, d.Dispatch(context.Background(), msg), ErrQueueFull)

	close(sender.block)
	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, 2, sender.deliveredCount())
}

func TestDispatcher_RejectsAfterStop(t *testing.T) {
	d := NewDispatcher(&scriptedSender{}, discardLogger(), DispatcherOptions{})
	d.Start()
	require.NoError(t, d.Stop(context.Background()))
	require.NoError(t, d.Stop(context.Background()))

	err := d.Dispatch(context.Background(), service.OTPMessage{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrDispatcherStopped)
}

func TestDispatcher_StopDeadlineAbandonsInFlight(t *testing.T) {
	sender := &scriptedSender{block: make(chan struct{})}
	d := NewDispatcher(sender, discardLogger(), DispatcherOptions{Workers: 1, QueueSize: 1})
	d.Start()

	require.NoError(t, d.Dispatch(context.Background(), service.OTPMessage{Email: "a@example.com"}))
	require.Eventually(t, func() bool { return sender.calls.Load() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Error(t, d.Stop(ctx))
	assert.Equal(t, 0, sender.deliveredCount())
}

func TestIsPermanent(t *testing.T) {
	base := errors.New("bad request")

	assert.True(t, IsPermanent(Permanent(base)))
	assert.True(t, IsPermanent(errors.Wrap(Permanent(base), "send")))
	assert.False(t, IsPermanent(base))
	assert.Nil(t, Permanent(nil))
	assert.ErrorIs(t, Permanent(base), base)
}
