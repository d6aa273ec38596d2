package worker_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/masykurm/talent-scout/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPoolSubmit(t *testing.T) {
	t.Run("runs every submitted task", func(t *testing.T) {
		pool := worker.NewPool(2, zap.NewNop())
		var done int32

		for i := 0; i < 10; i++ {
			ok := pool.Submit(uuid.New(), func() { atomic.AddInt32(&done, 1) })
			require.True(t, ok)
		}
		pool.Wait()

		assert.Equal(t, int32(10), atomic.LoadInt32(&done))
	})

	t.Run("never exceeds its concurrency bound", func(t *testing.T) {
		pool := worker.NewPool(2, zap.NewNop())
		var (
			current int32
			peak    int32
		)
		release := make(chan struct{})

		for i := 0; i < 8; i++ {
			pool.Submit(uuid.New(), func() {
				n := atomic.AddInt32(&current, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
						break
					}
				}
				<-release
				atomic.AddInt32(&current, -1)
			})
		}
		time.Sleep(50 * time.Millisecond)
		close(release)
		pool.Wait()

		assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	})

	t.Run("rejects a duplicate id while the task is active", func(t *testing.T) {
		pool := worker.NewPool(1, zap.NewNop())
		id := uuid.New()
		started := make(chan struct{})
		release := make(chan struct{})

		ok := pool.Submit(id, func() {
			close(started)
			<-release
		})
		require.True(t, ok)
		<-started

		assert.False(t, pool.Submit(id, func() {}), "second submission for a running id must be rejected")
		assert.True(t, pool.IsRunning(id))

		close(release)
		pool.Wait()

		assert.False(t, pool.IsRunning(id))
		assert.True(t, pool.Submit(id, func() {}), "a finished id can be submitted again")
		pool.Wait()
	})

	t.Run("survives a panicking task", func(t *testing.T) {
		pool := worker.NewPool(1, zap.NewNop())
		id := uuid.New()

		require.True(t, pool.Submit(id, func() { panic("poisoned task") }))
		pool.Wait()

		assert.False(t, pool.IsRunning(id), "the slot is released after the panic")
		var ran int32
		require.True(t, pool.Submit(uuid.New(), func() { atomic.AddInt32(&ran, 1) }))
		pool.Wait()
		assert.Equal(t, int32(1), atomic.LoadInt32(&ran), "the pool keeps running tasks afterwards")
	})

	t.Run("tracks active count", func(t *testing.T) {
		pool := worker.NewPool(4, zap.NewNop())
		release := make(chan struct{})
		var started sync.WaitGroup

		for i := 0; i < 3; i++ {
			started.Add(1)
			pool.Submit(uuid.New(), func() {
				started.Done()
				<-release
			})
		}
		started.Wait()

		assert.Equal(t, 3, pool.Active())
		close(release)
		pool.Wait()
		assert.Equal(t, 0, pool.Active())
	})
}
