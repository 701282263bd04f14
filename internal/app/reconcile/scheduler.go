package reconcile

import (
	"context"
	"sync"
	"time"
)

// TaskScheduler runs delayed tasks bound to one lifetime. Close cancels
// everything still pending and waits for running tasks to return.
type TaskScheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewTaskScheduler(parent context.Context) *TaskScheduler {
	ctx, cancel := context.WithCancel(parent)
	return &TaskScheduler{ctx: ctx, cancel: cancel}
}

func (s *TaskScheduler) After(d time.Duration, fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			fn(s.ctx)
		}
	}()
}

func (s *TaskScheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
