package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	done := make(chan struct{}, 3)

	q := NewQueue("exports", func(_ context.Context, job Job[int]) error {
		mu.Lock()
		seen[job.ID] = job.Payload
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(Job[int]{ID: id, Payload: i}))
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]int{"a": 0, "b": 1, "c": 2}, seen)
}

func TestQueueRetriesThenReportsFailure(t *testing.T) {
	var attempts atomic.Int32
	failed := make(chan Job[string], 1)

	q := NewQueue("exports", func(_ context.Context, _ Job[string]) error {
		attempts.Add(1)
		return errors.New("render failed")
	}, QueueConfig{MaxRetries: 2, RetryDelay: 5 * time.Millisecond})
	q.OnFailure(func(_ context.Context, job Job[string], err error) {
		assert.EqualError(t, err, "render failed")
		failed <- job
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[string]{ID: "snap", Payload: "csv"}))

	select {
	case job := <-failed:
		assert.Equal(t, "snap", job.ID)
		assert.Equal(t, 3, job.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("failure handler not called")
	}
	assert.Equal(t, int32(3), attempts.Load())
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("exports", func(context.Context, Job[int]) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job[int]{ID: "x"}))
}

func TestQueueEnqueueWhenFull(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 2)
	q := NewQueue("exports", func(context.Context, Job[int]) error {
		started <- struct{}{}
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer q.Stop()
	defer close(block)

	require.NoError(t, q.Enqueue(Job[int]{ID: "running"}))
	<-started
	require.NoError(t, q.Enqueue(Job[int]{ID: "buffered"}))
	assert.ErrorIs(t, q.Enqueue(Job[int]{ID: "overflow"}), ErrQueueFull)
}
