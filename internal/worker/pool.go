// Package worker runs research tasks on a bounded in-process pool. There is
// no persistence and no retry: a task either runs to completion in this
// process or not at all.
package worker

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultSize = 4

type Pool struct {
	sem    chan struct{}
	logger *zap.Logger

	mu      sync.Mutex
	running map[uuid.UUID]struct{}
	wg      sync.WaitGroup
}

func NewPool(size int, logger *zap.Logger) *Pool {
	if size <= 0 {
		size = defaultSize
	}
	return &Pool{
		sem:     make(chan struct{}, size),
		logger:  logger,
		running: make(map[uuid.UUID]struct{}),
	}
}

// Submit schedules fn for the given id. It returns false when a task for
// that id is already queued or running, so at most one task per id is ever
// active.
func (p *Pool) Submit(id uuid.UUID, fn func()) bool {
	p.mu.Lock()
	if _, ok := p.running[id]; ok {
		p.mu.Unlock()
		return false
	}
	p.running[id] = struct{}{}
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.sem <- struct{}{}
		defer func() {
			<-p.sem
			p.mu.Lock()
			delete(p.running, id)
			p.mu.Unlock()
		}()
		// A panicking task must not take the process down with it.
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("task panicked", zap.String("task_id", id.String()), zap.Any("panic", r))
			}
		}()
		p.logger.Debug("task started", zap.String("task_id", id.String()))
		fn()
		p.logger.Debug("task finished", zap.String("task_id", id.String()))
	}()
	return true
}

// IsRunning reports whether a task for the id is queued or executing.
func (p *Pool) IsRunning(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.running[id]
	return ok
}

// Active returns the number of queued or executing tasks.
func (p *Pool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.running)
}

// Wait blocks until every submitted task has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}
