package worker

import (
	"context"
	"sync"
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/errx"
	"github.com/Abraxas-365/talentmatch/pkg/logx"
	"github.com/Abraxas-365/talentmatch/recruitment/candidate"
	"github.com/Abraxas-365/talentmatch/recruitment/candidate/candidatesrv"
)

const (
	dequeueTimeout    = 5 * time.Second
	delayedTick       = 30 * time.Second
	baseRetryDelay    = 30 * time.Second
	maxRetryDelay     = 30 * time.Minute
	errorBackoffDelay = time.Second
)

// JobProcessor handles one embedding job
type JobProcessor interface {
	ProcessEmbeddingJob(ctx context.Context, job *candidate.EmbeddingJob) error
}

// EmbeddingWorker consumes résumé embedding jobs with a fixed pool of goroutines
type EmbeddingWorker struct {
	processor JobProcessor
	queue     candidate.EmbeddingQueue
	workers   int
	wg        sync.WaitGroup
}

func NewEmbeddingWorker(processor JobProcessor, queue candidate.EmbeddingQueue, workers int) *EmbeddingWorker {
	if workers < 1 {
		workers = 1
	}
	return &EmbeddingWorker{
		processor: processor,
		queue:     queue,
		workers:   workers,
	}
}

// Start launches the pool and the delayed-job mover. They stop when ctx is done.
func (w *EmbeddingWorker) Start(ctx context.Context) {
	logx.Infof("Starting %d embedding workers", w.workers)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.moveDelayedJobs(ctx)
	}()

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.processJobs(ctx, id)
		}(i)
	}
}

// Wait blocks until every goroutine started by Start has returned
func (w *EmbeddingWorker) Wait() {
	w.wg.Wait()
}

func (w *EmbeddingWorker) processJobs(ctx context.Context, workerID int) {
	logx.Infof("Worker %d started", workerID)

	for {
		select {
		case <-ctx.Done():
			logx.Infof("Worker %d stopping", workerID)
			return
		default:
		}

		job, err := w.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			logx.Errorf("Worker %d dequeue error: %v", workerID, err)
			sleep(ctx, errorBackoffDelay)
			continue
		}

		// Queue timeout, no jobs available
		if job == nil {
			continue
		}

		w.handle(ctx, workerID, job)
	}
}

func (w *EmbeddingWorker) handle(ctx context.Context, workerID int, job *candidate.EmbeddingJob) {
	job.Attempt++
	logx.Infof("Worker %d processing job %s (candidate=%s attempt=%d/%d)",
		workerID, job.ID, job.CandidateID, job.Attempt, job.MaxAttempts)

	err := w.processor.ProcessEmbeddingJob(ctx, job)
	if err == nil {
		return
	}

	if errx.IsCode(err, candidate.CodeResumeSuperseded) {
		logx.Infof("Worker %d dropped job %s: candidate %s uploaded a newer résumé",
			workerID, job.ID, job.CandidateID)
		return
	}

	job.LastError = err.Error()
	if !candidatesrv.IsRetryable(err) || !job.CanRetry() {
		logx.Errorf("Worker %d job %s failed permanently: %v", workerID, job.ID, err)
		return
	}

	delay := RetryDelay(job.Attempt)
	if qerr := w.queue.EnqueueDelayed(ctx, job, delay); qerr != nil {
		logx.Errorf("Worker %d could not reschedule job %s: %v (original error: %v)", workerID, job.ID, qerr, err)
		return
	}
	logx.Warnf("Worker %d job %s failed, retrying in %s: %v", workerID, job.ID, delay, err)
}

func (w *EmbeddingWorker) moveDelayedJobs(ctx context.Context) {
	ticker := time.NewTicker(delayedTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := w.queue.MoveDelayedToReady(ctx)
			if err != nil {
				logx.Errorf("Failed to move delayed jobs: %v", err)
			} else if count > 0 {
				logx.Infof("Moved %d delayed jobs to ready queue", count)
			}
		}
	}
}

// RetryDelay doubles the base delay per attempt, capped at maxRetryDelay
func RetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := baseRetryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
