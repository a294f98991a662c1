package utils

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunParallel_KeepsOrder(t *testing.T) {
	tasks := []ParallelTask[string]{
		func() (string, error) { time.Sleep(10 * time.Millisecond); return "mongo", nil },
		func() (string, error) { return "", errors.New("redis down") },
		func() (string, error) { return "kafka", nil },
	}
	results, errs := RunParallel(tasks)
	assert.Equal(t, []string{"mongo", "", "kafka"}, results)
	assert.NoError(t, errs[0])
	assert.EqualError(t, errs[1], "redis down")
	assert.NoError(t, errs[2])
}

func TestRunParallel_Empty(t *testing.T) {
	results, errs := RunParallel[int](nil)
	assert.Empty(t, results)
	assert.Empty(t, errs)
}

func TestWorkerPool_BoundsConcurrency(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	var running, peak, done atomic.Int32
	for i := 0; i < 20; i++ {
		pool.AddTask(func() {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
			done.Add(1)
		})
	}
	pool.Wait()

	assert.Equal(t, int32(20), done.Load())
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestWorkerPool_CloseIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(0)
	pool.AddTask(func() {})
	pool.Wait()
	pool.Close()
	assert.NotPanics(t, pool.Close)
}
