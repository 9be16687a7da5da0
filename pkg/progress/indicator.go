package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/alde/avdskin/internal/ui"
	"github.com/alde/avdskin/internal/worker"
)

// WorkerProgress tracks progress for individual workers
type WorkerProgress struct {
	WorkerID      int
	JobsCompleted int
	CurrentJob    string
	LastUpdate    time.Time
}

// ProgressTracker prints one status line per finished job and keeps per
// worker counters. It implements worker.Observer.
type ProgressTracker struct {
	mu            sync.Mutex
	out           io.Writer
	workers       map[int]*WorkerProgress
	totalJobs     int
	completedJobs int
	failedJobs    int
	startTime     time.Time
}

var _ worker.Observer = (*ProgressTracker)(nil)

// NewProgressTracker creates a tracker writing to out.
func NewProgressTracker(out io.Writer, totalJobs int) *ProgressTracker {
	return &ProgressTracker{
		out:       out,
		workers:   make(map[int]*WorkerProgress),
		totalJobs: totalJobs,
		startTime: time.Now(),
	}
}

func (pt *ProgressTracker) workerFor(id int) *WorkerProgress {
	w := pt.workers[id]
	if w == nil {
		w = &WorkerProgress{WorkerID: id}
		pt.workers[id] = w
	}
	return w
}

// Started records that a worker picked up a job.
func (pt *ProgressTracker) Started(workerID int, jobID string) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	w := pt.workerFor(workerID)
	w.CurrentJob = jobID
	w.LastUpdate = time.Now()
}

// Finished records a job result and prints its status line.
func (pt *ProgressTracker) Finished(workerID int, result worker.Result) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	w := pt.workerFor(workerID)
	w.CurrentJob = ""
	w.JobsCompleted++
	w.LastUpdate = time.Now()
	pt.completedJobs++

	counter := ui.Dim(fmt.Sprintf("[%d/%d]", pt.completedJobs, pt.totalJobs))
	if result.Error != nil {
		pt.failedJobs++
		fmt.Fprintf(pt.out, "%s %s\n", counter, ui.StatusError(fmt.Sprintf("%s: %v", result.JobID, result.Error)))
		return
	}
	fmt.Fprintf(pt.out, "%s %s\n", counter, ui.StatusSuccess(result.JobID))
}

// Finish prints the final tally.
func (pt *ProgressTracker) Finish() {
	stats := pt.GetStats()
	line := fmt.Sprintf("Converted %d of %d skins in %v", stats.CompletedJobs-stats.FailedJobs, stats.TotalJobs,
		stats.Elapsed.Round(time.Millisecond))
	if stats.FailedJobs > 0 {
		fmt.Fprintln(pt.out, ui.StatusWarning(fmt.Sprintf("%s, %d failed", line, stats.FailedJobs)))
		return
	}
	fmt.Fprintln(pt.out, ui.StatusSuccess(line))
}

// GetStats returns current progress statistics
func (pt *ProgressTracker) GetStats() ProgressStats {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	elapsed := time.Since(pt.startTime)
	rate := 0.0
	if elapsed.Seconds() > 0 {
		rate = float64(pt.completedJobs) / elapsed.Seconds()
	}
	percentage := 0.0
	if pt.totalJobs > 0 {
		percentage = float64(pt.completedJobs) / float64(pt.totalJobs) * 100
	}

	return ProgressStats{
		TotalJobs:     pt.totalJobs,
		CompletedJobs: pt.completedJobs,
		FailedJobs:    pt.failedJobs,
		WorkerCount:   len(pt.workers),
		Elapsed:       elapsed,
		Rate:          rate,
		Percentage:    percentage,
	}
}

// ProgressStats contains progress statistics
type ProgressStats struct {
	TotalJobs     int
	CompletedJobs int
	FailedJobs    int
	WorkerCount   int
	Elapsed       time.Duration
	Rate          float64 // Jobs per second
	Percentage    float64
}
