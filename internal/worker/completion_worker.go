package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/smartquizzer/quizzer-backend/internal/event"
	"github.com/smartquizzer/quizzer-backend/internal/metrics"
)

const jobTimeout = 10 * time.Second

// AnalyticsInvalidator drops a user's cached analytics.
type AnalyticsInvalidator interface {
	Invalidate(ctx context.Context, userID int64)
}

// EventPublisher publishes quiz completion events.
type EventPublisher interface {
	PublishQuizCompleted(ctx context.Context, e *event.QuizCompleted) error
}

// CompletionWorker runs the follow-up of completed quizzes off the request
// path: it evicts the user's analytics entry and publishes quiz.completed.
type CompletionWorker struct {
	queue     chan *event.QuizCompleted
	analytics AnalyticsInvalidator
	publisher EventPublisher
	overflow  sync.WaitGroup
	mu        sync.RWMutex
	stopped   bool
	done      chan struct{}
	log       zerolog.Logger
}

// NewCompletionWorker creates a worker with a buffered queue of queueSize.
func NewCompletionWorker(analytics AnalyticsInvalidator, publisher EventPublisher, queueSize int, log zerolog.Logger) *CompletionWorker {
	return &CompletionWorker{
		queue:     make(chan *event.QuizCompleted, max(queueSize, 1)),
		analytics: analytics,
		publisher: publisher,
		done:      make(chan struct{}),
		log:       log.With().Str("component", "completion_worker").Logger(),
	}
}

// Schedule enqueues e without blocking. When the queue is full the job runs
// in its own goroutine. Once the worker has stopped the job runs inline.
func (w *CompletionWorker) Schedule(e *event.QuizCompleted) {
	w.mu.RLock()
	if w.stopped {
		w.mu.RUnlock()
		w.process(e)
		return
	}
	defer w.mu.RUnlock()

	select {
	case w.queue <- e:
		metrics.InvalidationQueueDepth.Inc()
	default:
		w.log.Warn().Int64("quiz_id", e.QuizID).Msg("Queue full, running job detached")
		w.overflow.Add(1)
		go func() {
			defer w.overflow.Done()
			w.process(e)
		}()
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *CompletionWorker) Start(ctx context.Context) {
	defer close(w.done)
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.mu.Lock()
			w.stopped = true
			w.mu.Unlock()
			w.drain()
			w.log.Info().Msg("Worker stopped")
			return
		case e := <-w.queue:
			metrics.InvalidationQueueDepth.Dec()
			w.process(e)
		}
	}
}

// Done is closed once Start has drained the queue and returned.
func (w *CompletionWorker) Done() <-chan struct{} {
	return w.done
}

func (w *CompletionWorker) process(e *event.QuizCompleted) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	w.analytics.Invalidate(ctx, e.UserID)

	if err := w.publisher.PublishQuizCompleted(ctx, e); err != nil {
		w.log.Error().Err(err).
			Int64("quiz_id", e.QuizID).
			Int64("user_id", e.UserID).
			Msg("Publish quiz.completed failed")
	}
}

// drain processes everything still queued, then waits for detached jobs.
func (w *CompletionWorker) drain() {
	drained := 0
	for {
		select {
		case e := <-w.queue:
			metrics.InvalidationQueueDepth.Dec()
			w.process(e)
			drained++
		default:
			w.overflow.Wait()
			if drained > 0 {
				w.log.Info().Int("count", drained).Msg("Drained pending jobs")
			}
			return
		}
	}
}
