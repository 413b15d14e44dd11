// Package audit is the best-effort rejection side-channel. Submission
// rejections get reported here for visibility; nothing user-facing
// ever depends on a report landing. Report never blocks and never
// returns an error: when the queue is full the report is dropped and
// the drop itself is the only trace, via metrics.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/lumenmap/candles/internal/domain/model"
	"github.com/lumenmap/candles/pkg/logger"
	"github.com/lumenmap/candles/pkg/metrics"
)

// Rejection describes one refused candle submission.
type Rejection struct {
	// Reason classifies the rejection, e.g. "rate_limited".
	Reason string `json:"reason"`

	// Emotion and Position echo the refused draft.
	Emotion  string         `json:"emotion"`
	Position model.Position `json:"position"`

	// UserID is the anonymous subject that was refused; may be empty.
	UserID string `json:"user_id,omitempty"`

	// OccurredAt is when the rejection happened.
	OccurredAt time.Time `json:"occurred_at"`
}

// Sink receives rejections from the dispatcher's worker. Sink errors
// are counted and logged, never propagated.
type Sink interface {
	Record(ctx context.Context, r Rejection) error
}

// Dispatcher decouples callers from the sink with a bounded queue and
// a single background worker.
type Dispatcher struct {
	queue chan Rejection
	sink  Sink
	log   logger.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithQueueSize bounds the in-flight rejection queue.
func WithQueueSize(size int) Option {
	return func(d *Dispatcher) {
		if size > 0 {
			d.queue = make(chan Rejection, size)
		}
	}
}

// WithSink sets the rejection destination.
func WithSink(sink Sink) Option {
	return func(d *Dispatcher) {
		if sink != nil {
			d.sink = sink
		}
	}
}

// NewDispatcher creates a dispatcher; call Start before Report.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		queue: make(chan Rejection, 1024),
		sink:  &LogSink{},
		log:   logger.Named("audit"),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the worker. The worker's lifetime is bound to Stop,
// not to ctx: a canceled startup context (service shutdown) must not
// kill the worker before Stop gets to drain the queue, so deliveries
// run on a context detached from ctx's cancellation.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer close(d.done)
		for {
			select {
			case r := <-d.queue:
				d.deliver(ctx, r)
			case <-d.stop:
				// Drain what is already queued, then exit.
				for {
					select {
					case r := <-d.queue:
						d.deliver(ctx, r)
					default:
						return
					}
				}
			}
		}
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, r Rejection) {
	if err := d.sink.Record(ctx, r); err != nil {
		metrics.RecordAuditError()
		d.log.Warn(ctx, "audit sink failed",
			logger.String("reason", r.Reason),
			logger.Error(err))
	}
}

// Report enqueues a rejection. Fire-and-forget: a full queue drops the
// report rather than holding up the caller.
func (d *Dispatcher) Report(ctx context.Context, r Rejection) {
	if r.OccurredAt.IsZero() {
		r.OccurredAt = time.Now().UTC()
	}
	select {
	case d.queue <- r:
		metrics.RecordAuditReport()
	default:
		metrics.RecordAuditDrop()
		d.log.Debug(ctx, "audit queue full, report dropped",
			logger.String("reason", r.Reason))
	}
}

// Stop shuts the worker down after draining queued reports.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stop)
	})
	<-d.done
}

// QueueDepth reports the number of queued, undelivered rejections.
func (d *Dispatcher) QueueDepth() int {
	return len(d.queue)
}

// LogSink writes rejections to the service log.
type LogSink struct{}

func (LogSink) Record(ctx context.Context, r Rejection) error {
	logger.Named("audit").Info(ctx, "submission rejected",
		logger.String("reason", r.Reason),
		logger.String("emotion", r.Emotion),
		logger.Float64("lat", r.Position.Lat),
		logger.Float64("lon", r.Position.Lon),
		logger.String("user_id", r.UserID),
		logger.Any("occurred_at", r.OccurredAt))
	return nil
}
