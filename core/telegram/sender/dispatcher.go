package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/estatebot/core/logger"
	"github.com/m3rciful/estatebot/core/telegram/netutil"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	// QueueSize is the buffer of each worker queue.
	QueueSize int
	Workers   int
	// Timeout bounds a single Bot API call.
	Timeout time.Duration
}

// Job is one outbound Bot API call. Run is executed at most once.
type Job struct {
	Action string
	// ChatID selects the worker queue, so calls to one chat keep their order.
	ChatID int64
	// Recipient tags logs, e.g. user or operator.
	Recipient string
	Run       func(ctx context.Context) error
	// OnError, if set, is called after a failed Run.
	OnError func(ctx context.Context, err error)
}

// Dispatcher executes outbound Telegram calls on a fixed set of workers.
// Jobs for the same chat always land on the same worker.
type Dispatcher struct {
	opts   Options
	queues []chan queued
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	sent   atomic.Uint64
	failed atomic.Uint64
}

type queued struct {
	ctx context.Context
	job Job
}

// NewDispatcher starts the workers, filling zero options with defaults.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	d := &Dispatcher{
		opts:   opts,
		queues: make([]chan queued, opts.Workers),
	}
	d.wg.Add(opts.Workers)
	for i := range d.queues {
		d.queues[i] = make(chan queued, opts.QueueSize)
		go d.worker(d.queues[i])
	}
	return d
}

// Enqueue schedules j. It never blocks: a saturated queue yields ErrQueueFull.
func (d *Dispatcher) Enqueue(ctx context.Context, j Job) error {
	if j.Run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	// The job outlives the handler that created it.
	ctx = context.WithoutCancel(ctx)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.queues[d.shard(j.ChatID)] <- queued{ctx: ctx, job: j}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Sent returns the number of successful calls.
func (d *Dispatcher) Sent() uint64 { return d.sent.Load() }

// Failed returns the number of failed calls.
func (d *Dispatcher) Failed() uint64 { return d.failed.Load() }

// Close stops accepting jobs and waits until queued ones are done.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) shard(chatID int64) int {
	n := uint64(len(d.queues))
	return int(uint64(chatID) % n)
}

func (d *Dispatcher) worker(q <-chan queued) {
	defer d.wg.Done()
	for item := range q {
		d.run(item.ctx, item.job)
	}
}

func (d *Dispatcher) run(ctx context.Context, j Job) {
	callCtx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	start := time.Now()
	err := j.Run(callCtx)
	elapsed := time.Since(start)
	if err == nil {
		d.sent.Add(1)
		logger.Debug(ctx, "tg.sender", "send.ok", append(jobAttrs(j),
			slog.Duration("duration", logger.RoundMS(elapsed)),
		)...)
		return
	}

	d.failed.Add(1)
	logger.Error(ctx, "tg.sender", "send.fail", append(jobAttrs(j),
		slog.String("status", "fail"),
		slog.String("error_kind", netutil.Classify(err)),
		slog.String("err", netutil.Redact(err)),
		slog.Duration("duration", logger.RoundMS(elapsed)),
	)...)
	if j.OnError != nil {
		j.OnError(ctx, err)
	}
}

func jobAttrs(j Job) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.Action)}
	if j.Recipient != "" {
		attrs = append(attrs, slog.String("recipient", j.Recipient))
	}
	return attrs
}
