package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcJob struct {
	id string
	fn func(ctx context.Context) error
}

func (j funcJob) ID() string                        { return j.id }
func (j funcJob) Process(ctx context.Context) error { return j.fn(ctx) }

type recorder struct {
	mu       sync.Mutex
	started  []string
	finished []Result
}

func (r *recorder) Started(_ int, jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, jobID)
}

func (r *recorder) Finished(_ int, result Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, result)
}

func TestRunPreservesOrder(t *testing.T) {
	var processed atomic.Int32
	var jobs []Job
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("skin-%02d", i)
		fail := i%5 == 0
		jobs = append(jobs, funcJob{id: id, fn: func(context.Context) error {
			processed.Add(1)
			if fail {
				return errors.New("boom")
			}
			return nil
		}})
	}

	rec := &recorder{}
	results := Run(context.Background(), 3, rec, jobs)

	require.Len(t, results, 20)
	assert.Equal(t, int32(20), processed.Load())
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("skin-%02d", i), r.JobID)
		assert.Equal(t, i, r.Index)
		if i%5 == 0 {
			assert.Error(t, r.Error)
		} else {
			assert.NoError(t, r.Error)
		}
	}
	assert.Len(t, rec.started, 20)
	assert.Len(t, rec.finished, 20)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var processed atomic.Int32
	jobs := []Job{
		funcJob{id: "a", fn: func(context.Context) error { processed.Add(1); return nil }},
		funcJob{id: "b", fn: func(context.Context) error { processed.Add(1); return nil }},
	}

	results := Run(ctx, 1, nil, jobs)
	require.Len(t, results, 2)
	for i, r := range results {
		assert.Equal(t, jobs[i].ID(), r.JobID)
		assert.ErrorIs(t, r.Error, context.Canceled)
	}
	assert.Zero(t, processed.Load())
}

func TestNewPoolDefaultsToCPUCount(t *testing.T) {
	p := NewPool(context.Background(), 0)
	assert.Positive(t, p.WorkerCount())
	p.Start()
	p.Stop()
}
