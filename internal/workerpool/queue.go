// Package workerpool runs submitted tasks on a dedicated goroutine.
package workerpool

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"github.com/jarodbruce/inputrelay/internal/logging"
)

var log = logging.L("workerpool")

// ErrDrainTimeout is returned by Drain when the context ends before every
// queued task has run.
var ErrDrainTimeout = errors.New("queue drain timed out")

// Task is a unit of work submitted to the queue.
type Task func()

// Queue runs tasks one at a time in submission order with a bounded
// backlog. A panicking task is logged and does not stop the queue.
type Queue struct {
	log   *zap.Logger
	tasks chan Task
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// New starts a queue holding at most size pending tasks. A nil logger uses
// the package logger.
func New(size int, logger *zap.Logger) *Queue {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = log
	}
	q := &Queue{
		log:   logger,
		tasks: make(chan Task, size),
		done:  make(chan struct{}),
	}
	go q.run()
	return q
}

// Submit enqueues a task. It returns false if the queue is full or has
// been drained.
func (q *Queue) Submit(task Task) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	select {
	case q.tasks <- task:
		return true
	default:
		q.log.Warn("queue full, task rejected", zap.Int("capacity", cap(q.tasks)))
		return false
	}
}

// Len returns the number of tasks waiting to run.
func (q *Queue) Len() int { return len(q.tasks) }

// Done is closed once the queue has been drained and its last task has
// returned.
func (q *Queue) Done() <-chan struct{} { return q.done }

// Drain stops accepting tasks and waits for the queued ones to finish.
// Tasks still queued when ctx ends keep running in the background.
func (q *Queue) Drain(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		q.log.Warn("queue drain timed out", zap.Int("pending", len(q.tasks)))
		return ErrDrainTimeout
	}
}

func (q *Queue) run() {
	defer close(q.done)
	for task := range q.tasks {
		q.runTask(task)
	}
}

func (q *Queue) runTask(task Task) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("task panicked", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
		}
	}()
	task()
}
