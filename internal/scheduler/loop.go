package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer = otel.Tracer("mezzo.scheduler")

var (
	callbacksRun = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mezzo_scheduler_callbacks_total",
		Help: "Idle callbacks run",
	})

	callbacksCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mezzo_scheduler_callbacks_cancelled_total",
		Help: "Idle callbacks cancelled before running",
	})

	callbackDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mezzo_scheduler_callback_duration_seconds",
		Help:    "Idle callback duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
	})
)

// JobID identifies a requested idle callback. The zero JobID refers to
// nothing.
type JobID struct {
	id uuid.UUID
}

// IsZero reports whether id refers to nothing.
func (id JobID) IsZero() bool {
	return id.id == uuid.Nil
}

// String returns the id in its canonical uuid form.
func (id JobID) String() string {
	return id.id.String()
}

type job struct {
	id JobID
	fn func()
}

// Loop queues idle callbacks for the goroutine that owns a document.
//
// Callbacks run in request order. A callback may request or cancel other
// callbacks, itself included. A Loop is not safe for concurrent use.
type Loop struct {
	queue []job
}

// NewLoop creates an empty loop.
func NewLoop() *Loop {
	return &Loop{}
}

// RequestIdle queues fn to run during a later idle period.
func (l *Loop) RequestIdle(fn func()) JobID {
	id := JobID{id: uuid.New()}
	l.queue = append(l.queue, job{id: id, fn: fn})
	return id
}

// CancelIdle removes a pending callback. It reports whether the callback
// was still pending.
func (l *Loop) CancelIdle(id JobID) bool {
	for i, j := range l.queue {
		if j.id == id {
			l.queue = append(l.queue[:i:i], l.queue[i+1:]...)
			callbacksCancelled.Inc()
			return true
		}
	}
	return false
}

// Pending returns the number of queued callbacks.
func (l *Loop) Pending() int {
	return len(l.queue)
}

// RunOnce runs the callbacks queued before the call and returns how many
// ran. Callbacks they request wait for the next idle period.
func (l *Loop) RunOnce(ctx context.Context) int {
	n := len(l.queue)
	ran := 0
	for ; n > 0 && len(l.queue) > 0; n-- {
		if ctx.Err() != nil {
			break
		}
		l.runNext(ctx)
		ran++
	}
	return ran
}

// RunIdle runs callbacks until the queue is empty or ctx is done, and
// returns how many ran.
func (l *Loop) RunIdle(ctx context.Context) int {
	ran := 0
	for len(l.queue) > 0 && ctx.Err() == nil {
		l.runNext(ctx)
		ran++
	}
	return ran
}

func (l *Loop) runNext(ctx context.Context) {
	j := l.queue[0]
	l.queue[0] = job{}
	l.queue = l.queue[1:]

	_, span := tracer.Start(ctx, "scheduler.idle",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("job.id", j.id.String())))
	defer span.End()

	start := time.Now()
	j.fn()
	callbackDuration.Observe(time.Since(start).Seconds())
	callbacksRun.Inc()
}
