package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// ErrQueueClosed is returned by Enqueue after Shutdown. The text is dropped.
var ErrQueueClosed = errors.New("speech queue is shut down")

// Stats tracks queue counters.
type Stats struct {
	Enqueued int64
	Spoken   int64
	Failed   int64
	Dropped  int64
	Pending  int
	Speaking bool
}

// Observer is notified after every utterance the worker finished, with the
// engine error if vocalization failed. It runs on the worker goroutine.
type Observer func(text string, err error)

type item struct {
	text string
	stop bool
}

// Queue serializes utterances onto a single Speaker.
type Queue struct {
	speaker  Speaker
	logger   *log.Logger
	observer Observer

	mu       sync.Mutex
	notEmpty *sync.Cond
	pending  []item
	closed   bool
	speaking bool
	stats    Stats

	// ctx is handed to the speaker; it is only cancelled once the worker
	// has exited, so an utterance in progress is never cut short.
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithLogger sets the queue logger.
func WithLogger(l *log.Logger) QueueOption {
	return func(q *Queue) {
		q.logger = l
	}
}

// WithObserver registers a callback run after each utterance.
func WithObserver(o Observer) QueueOption {
	return func(q *Queue) {
		q.observer = o
	}
}

// NewQueue creates a queue and starts its worker. The queue owns speaker
// from now on: nothing else may call it.
func NewQueue(speaker Speaker, opts ...QueueOption) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		speaker: speaker,
		logger:  log.Default().WithPrefix("speech"),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	q.notEmpty = sync.NewCond(&q.mu)

	for _, opt := range opts {
		opt(q)
	}

	go q.run()
	return q
}

// Enqueue appends text to the queue. It never blocks on vocalization.
// Blank text is ignored.
func (q *Queue) Enqueue(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.stats.Dropped++
		return ErrQueueClosed
	}

	q.pending = append(q.pending, item{text: text})
	q.stats.Enqueued++
	q.notEmpty.Signal()
	return nil
}

// Shutdown enqueues the stop sentinel. Utterances queued before it are still
// spoken; the worker exits when it reaches the sentinel. Safe to call more
// than once.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.pending = append(q.pending, item{stop: true})
	q.notEmpty.Signal()
}

// Wait blocks until the worker exited or ctx is done.
func (q *Queue) Wait(ctx context.Context) error {
	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts the queue down, waits for the pending utterances and releases
// the speaker. If ctx expires first the speaker is left to the worker.
func (q *Queue) Close(ctx context.Context) error {
	q.Shutdown()
	if err := q.Wait(ctx); err != nil {
		return fmt.Errorf("speech queue did not drain: %w", err)
	}

	q.cancel()
	if c, ok := q.speaker.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close speaker: %w", err)
		}
	}
	return nil
}

// Done is closed when the worker exits.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := q.stats
	s.Pending = len(q.pending)
	if q.closed && s.Pending > 0 {
		s.Pending-- // the sentinel is not an utterance
	}
	s.Speaking = q.speaking
	return s
}

func (q *Queue) run() {
	defer close(q.done)

	for {
		it := q.next()
		if it.stop {
			q.logger.Debug("speech worker stopped")
			return
		}
		q.speak(it.text)
	}
}

// next blocks until an item is available and pops it.
func (q *Queue) next() item {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.pending) == 0 {
		q.notEmpty.Wait()
	}

	it := q.pending[0]
	q.pending[0] = item{}
	q.pending = q.pending[1:]
	q.speaking = !it.stop
	return it
}

func (q *Queue) speak(text string) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("speaker panicked: %v", r)
		}

		q.mu.Lock()
		q.speaking = false
		if err != nil {
			q.stats.Failed++
		} else {
			q.stats.Spoken++
		}
		q.mu.Unlock()

		if err != nil {
			q.logger.Error("could not speak", "text", text, "err", err)
		}
		q.notify(text, err)
	}()

	err = q.speaker.Speak(q.ctx, text)
}

func (q *Queue) notify(text string, err error) {
	if q.observer == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("speech observer panicked", "panic", r)
		}
	}()
	q.observer(text, err)
}
