// Package taskset supervises a dynamic group of goroutines that share one cancellation scope.
// The first task to fail or panic aborts every other task in the set.
package taskset

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/errors"
	"go.uber.org/zap"
)

// Task is a unit of supervised work. It must return once ctx is done.
type Task func(ctx context.Context) error

// Spawner registers tasks with a supervisor.
type Spawner interface {
	Go(name string, task Task)
	GoWithContext(ctx context.Context, name string, task Task)
}

// Set is a group of supervised tasks.
type Set struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.SugaredLogger

	wg       sync.WaitGroup
	failed   chan error
	failOnce sync.Once
}

var _ Spawner = (*Set)(nil)

// New returns a Set whose tasks run under a child of ctx.
func New(ctx context.Context, logger *zap.SugaredLogger) *Set {
	ctx, cancel := context.WithCancel(ctx)
	return &Set{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		failed: make(chan error, 1),
	}
}

// Context is cancelled when the set is aborted or closed.
func (s *Set) Context() context.Context {
	return s.ctx
}

// Go starts task in a new goroutine under the set context.
func (s *Set) Go(name string, task Task) {
	s.GoWithContext(s.ctx, name, task)
}

// GoWithContext starts task in a new goroutine under ctx, which must derive from Context()
// so that aborting the set still stops the task.
func (s *Set) GoWithContext(ctx context.Context, name string, task Task) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.run(ctx, name, task); err != nil {
			s.fail(fmt.Errorf("task %q: %w", name, err))
			return
		}
		s.logger.Debugw("task finished", "task", name)
	}()
}

func (s *Set) run(ctx context.Context, name string, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &errors.TaskPanicError{Task: name, Value: r, Stack: debug.Stack()}
		}
	}()
	return task(ctx)
}

func (s *Set) fail(err error) {
	s.failOnce.Do(func() {
		s.logger.Debugw("aborting all tasks", "error", err)
		s.failed <- err
		s.cancel()
	})
}

// Failed delivers the first task failure. Nothing is delivered if every task succeeds.
func (s *Set) Failed() <-chan error {
	return s.failed
}

// Abort cancels every task without waiting for them.
func (s *Set) Abort() {
	s.cancel()
}

// Close aborts every task and waits for all of them to return.
func (s *Set) Close() {
	s.cancel()
	s.wg.Wait()
}
