package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/worker"
)

type funcJob struct {
	name string
	run  func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.run(ctx) }

func TestPoolRunsSubmittedJobs(t *testing.T) {
	pool := worker.NewPool(3, 10, logger.Discard())
	pool.Start(context.Background())

	var count atomic.Int32
	for i := 0; i < 10; i++ {
		err := pool.Submit(funcJob{name: "count", run: func(context.Context) error {
			count.Add(1)
			return nil
		}})
		require.NoError(t, err)
	}
	pool.Stop()

	assert.Equal(t, int32(10), count.Load())
}

func TestPoolJobContextCarriesLogger(t *testing.T) {
	pool := worker.NewPool(1, 1, logger.Discard())
	pool.Start(context.Background())

	got := make(chan *logger.Logger, 1)
	require.NoError(t, pool.Submit(funcJob{name: "ctx", run: func(ctx context.Context) error {
		got <- logger.FromContext(ctx)
		return nil
	}}))
	pool.Stop()

	assert.NotNil(t, <-got)
}

func TestPoolSubmitQueueFull(t *testing.T) {
	pool := worker.NewPool(1, 1, logger.Discard())
	pool.Start(context.Background())

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.Submit(funcJob{name: "block", run: func(context.Context) error {
		close(started)
		<-release
		return nil
	}}))
	<-started

	noop := funcJob{name: "noop", run: func(context.Context) error { return nil }}
	require.NoError(t, pool.Submit(noop))
	assert.Equal(t, 1, pool.QueueSize())

	err := pool.Submit(noop)
	assert.ErrorIs(t, err, worker.ErrQueueFull)

	close(release)
	pool.Stop()
}

func TestPoolSubmitAfterStop(t *testing.T) {
	pool := worker.NewPool(1, 1, logger.Discard())
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()

	err := pool.Submit(funcJob{name: "late", run: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, worker.ErrPoolStopped)
}

func TestPoolFailingJobDoesNotStopWorker(t *testing.T) {
	pool := worker.NewPool(1, 4, logger.Discard())
	pool.Start(context.Background())

	var wg sync.WaitGroup
	wg.Add(2)
	require.NoError(t, pool.Submit(funcJob{name: "fail", run: func(context.Context) error {
		defer wg.Done()
		return errors.New("boom")
	}}))
	require.NoError(t, pool.Submit(funcJob{name: "ok", run: func(context.Context) error {
		defer wg.Done()
		return nil
	}}))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs did not run")
	}
	pool.Stop()
}
