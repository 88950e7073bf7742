package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"greenpoints/internal/domain/service"
	"greenpoints/internal/infra/tracing"
	"greenpoints/internal/util"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	// ErrQueueFull is returned by Dispatch when every slot is taken.
	ErrQueueFull = errors.New("otp delivery queue is full")
	// ErrDispatcherStopped is returned by Dispatch after Stop.
	ErrDispatcherStopped = errors.New("otp dispatcher is stopped")
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}

	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError

	return errors.As(err, &p)
}

// DispatcherOptions tunes the worker pool.
type DispatcherOptions struct {
	Workers        int
	QueueSize      int
	MaxRetries     int
	InitialBackoff time.Duration
}

// Dispatcher delivers OTP messages on a fixed pool of workers fed by a bounded queue.
type Dispatcher struct {
	sender service.OTPSender
	logger *slog.Logger
	opts   DispatcherOptions

	mu      sync.RWMutex
	stopped bool
	queue   chan service.OTPMessage

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a stopped dispatcher; call Start to launch workers.
func NewDispatcher(sender service.OTPSender, logger *slog.Logger, opts DispatcherOptions) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		sender: sender,
		logger: logger,
		opts:   opts,
		queue:  make(chan service.OTPMessage, opts.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the workers.
func (d *Dispatcher) Start() {
	for i := range d.opts.Workers {
		d.wg.Add(1)
		go d.work(i)
	}

	d.logger.Info("OTP dispatcher started",
		slog.Int("workers", d.opts.Workers),
		slog.Int("queue_size", d.opts.QueueSize),
	)
}

// Dispatch enqueues msg without blocking.
func (d *Dispatcher) Dispatch(_ context.Context, msg service.OTPMessage) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrDispatcherStopped
	}

	select {
	case d.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new messages and drains the queue until ctx is done.
// Messages still in flight when ctx expires are abandoned.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()

		return nil
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()

		return nil
	case <-ctx.Done():
		d.cancel()
		<-done

		return errors.Wrap(ctx.Err(), "otp dispatcher did not drain in time")
	}
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()

	for msg := range d.queue {
		d.deliver(id, msg)
	}
}

func (d *Dispatcher) deliver(workerID int, msg service.OTPMessage) {
	ctx, span := tracing.Tracer().Start(d.ctx, "notification.DeliverOTP")
	defer span.End()
	span.SetAttributes(attribute.String("request_id", msg.RequestID))

	logger := d.logger.With(
		slog.Int("worker", workerID),
		slog.String("request_id", msg.RequestID),
		slog.String("email", util.MaskEmail(msg.Email)),
	)

	err := d.sendWithRetry(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		logger.Error("OTP delivery failed", slog.Any("error", err))

		return
	}

	logger.Debug("OTP delivered")
}

// sendWithRetry retries transient failures with doubling backoff.
func (d *Dispatcher) sendWithRetry(ctx context.Context, msg service.OTPMessage) error {
	var lastErr error
	backoff := d.opts.InitialBackoff

	for attempt := 0; attempt <= d.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return errors.Wrapf(ctx.Err(), "abandoned after %d attempts: %v", attempt, lastErr)
			}
			backoff *= 2
		}

		err := d.sender.Send(ctx, msg)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return err
		}

		lastErr = err
		d.logger.Warn("OTP delivery attempt failed",
			slog.String("request_id", msg.RequestID),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err),
		)
	}

	return errors.Wrapf(lastErr, "giving up after %d attempts", d.opts.MaxRetries+1)
}
