package pool_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iamNilotpal/ignitekv/internal/pool"
	"github.com/iamNilotpal/ignitekv/pkg/logger"
)

func TestPoolRunsAllJobs(t *testing.T) {
	p := pool.New(4, logger.NewNop())
	defer p.Shutdown()

	var completed int64
	var wg sync.WaitGroup
	const jobs = 100
	wg.Add(jobs)

	for i := 0; i < jobs; i++ {
		p.Spawn(func() {
			defer wg.Done()
			atomic.AddInt64(&completed, 1)
		})
	}

	waitWithTimeout(t, &wg, 5*time.Second)
	assert.EqualValues(t, jobs, atomic.LoadInt64(&completed))
}

// TestPoolSurvivesPanickingJob mirrors
// original_source/src/thread_pool/shared_queue.rs's Sentinel guarantee: a
// worker whose job panics is respawned, and every job queued after the
// panicking one still runs to completion.
func TestPoolSurvivesPanickingJob(t *testing.T) {
	p := pool.New(4, logger.NewNop())
	defer p.Shutdown()

	var completed int64
	var wg sync.WaitGroup
	const jobs = 100
	wg.Add(jobs)

	for i := 0; i < jobs; i++ {
		i := i
		p.Spawn(func() {
			defer wg.Done()
			if i == 6 {
				panic("boom")
			}
			atomic.AddInt64(&completed, 1)
		})
	}

	waitWithTimeout(t, &wg, 5*time.Second)
	assert.EqualValues(t, jobs-1, atomic.LoadInt64(&completed))
}

// TestSpawnDoesNotBlockWhileWorkersAreBusy pins every worker on a job that
// won't return until released, then enqueues far more jobs than there are
// workers. If the queue were backed by an unbuffered channel, the extra
// Spawn calls would block until a worker freed up; with the dispatcher's
// unbounded slice queue they return immediately instead.
func TestSpawnDoesNotBlockWhileWorkersAreBusy(t *testing.T) {
	const workers = 2
	p := pool.New(workers, logger.NewNop())
	defer p.Shutdown()

	release := make(chan struct{})
	var busy sync.WaitGroup
	busy.Add(workers)
	for i := 0; i < workers; i++ {
		p.Spawn(func() {
			busy.Done()
			<-release
		})
	}
	waitWithTimeout(t, &busy, 5*time.Second)

	spawnedAll := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			p.Spawn(func() {})
		}
		close(spawnedAll)
	}()

	select {
	case <-spawnedAll:
	case <-time.After(time.Second):
		t.Fatal("Spawn blocked while workers were busy")
	}

	close(release)
}

func waitWithTimeout(t *testing.T, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("timed out waiting for jobs to complete")
	}
}
