package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/talentmatch/recruitment/candidate"
)

type stubQueue struct {
	delayed []*candidate.EmbeddingJob
	delays  []time.Duration
}

func (q *stubQueue) Enqueue(ctx context.Context, job *candidate.EmbeddingJob) error { return nil }
func (q *stubQueue) Dequeue(ctx context.Context, timeout time.Duration) (*candidate.EmbeddingJob, error) {
	return nil, nil
}
func (q *stubQueue) EnqueueDelayed(ctx context.Context, job *candidate.EmbeddingJob, d time.Duration) error {
	q.delayed = append(q.delayed, job)
	q.delays = append(q.delays, d)
	return nil
}
func (q *stubQueue) MoveDelayedToReady(ctx context.Context) (int, error) { return 0, nil }

type stubProcessor struct{ err error }

func (p stubProcessor) ProcessEmbeddingJob(ctx context.Context, job *candidate.EmbeddingJob) error {
	return p.err
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 30 * time.Second},
		{1, 30 * time.Second},
		{2, time.Minute},
		{3, 2 * time.Minute},
		{20, 30 * time.Minute},
	}
	for _, tt := range tests {
		if got := RetryDelay(tt.attempt); got != tt.want {
			t.Errorf("RetryDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestHandleReschedulesRetryableFailure(t *testing.T) {
	q := &stubQueue{}
	w := NewEmbeddingWorker(stubProcessor{err: errors.New("timeout")}, q, 1)

	job := &candidate.EmbeddingJob{ID: "j1", MaxAttempts: 3}
	w.handle(context.Background(), 0, job)

	if len(q.delayed) != 1 {
		t.Fatalf("delayed = %d, want 1", len(q.delayed))
	}
	if job.Attempt != 1 || job.LastError != "timeout" {
		t.Errorf("job = %+v", job)
	}
	if q.delays[0] != 30*time.Second {
		t.Errorf("delay = %v", q.delays[0])
	}
}

func TestHandleStopsAtMaxAttempts(t *testing.T) {
	q := &stubQueue{}
	w := NewEmbeddingWorker(stubProcessor{err: errors.New("timeout")}, q, 1)

	job := &candidate.EmbeddingJob{ID: "j1", Attempt: 2, MaxAttempts: 3}
	w.handle(context.Background(), 0, job)

	if len(q.delayed) != 0 {
		t.Fatalf("job rescheduled after its last attempt")
	}
}

func TestHandleDropsPermanentFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"missing document", candidate.ErrResumeNotFound()},
		{"superseded résumé", candidate.ErrResumeSuperseded()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &stubQueue{}
			w := NewEmbeddingWorker(stubProcessor{err: tt.err}, q, 1)

			w.handle(context.Background(), 0, &candidate.EmbeddingJob{ID: "j1", MaxAttempts: 3})

			if len(q.delayed) != 0 {
				t.Fatalf("permanent failure was rescheduled")
			}
		})
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewEmbeddingWorker(stubProcessor{}, &stubQueue{}, 2)
	w.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop after cancel")
	}
}
