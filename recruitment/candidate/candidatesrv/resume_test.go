package candidatesrv

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/errx"
	"github.com/Abraxas-365/talentmatch/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/recruitment/candidate"
)

type fakeRepo struct {
	mu       sync.Mutex
	profiles map[kernel.CandidateID]*candidate.Profile
}

func newFakeRepo(ids ...kernel.CandidateID) *fakeRepo {
	r := &fakeRepo{profiles: map[kernel.CandidateID]*candidate.Profile{}}
	for _, id := range ids {
		r.profiles[id] = &candidate.Profile{ID: id}
	}
	return r
}

func (r *fakeRepo) FindPool(ctx context.Context, f candidate.Filters, limit int) ([]candidate.Profile, error) {
	return nil, nil
}

func (r *fakeRepo) KeywordSearch(ctx context.Context, f candidate.Filters, q string, p kernel.PaginationOptions) (*kernel.Paginated[candidate.Profile], error) {
	return kernel.NewPaginated([]candidate.Profile{}, p.Normalize(), 0), nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id kernel.CandidateID) (*candidate.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, candidate.ErrCandidateNotFound()
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) SetResumePath(ctx context.Context, id kernel.CandidateID, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return candidate.ErrCandidateNotFound()
	}
	p.ResumePath = path
	return nil
}

func (r *fakeRepo) UpdateEmbedding(ctx context.Context, id kernel.CandidateID, resumePath string, e kernel.Embedding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok || p.ResumePath != resumePath {
		return candidate.ErrResumeSuperseded()
	}
	p.Embedding = e
	return nil
}

type fakeQueue struct {
	ready   []*candidate.EmbeddingJob
	delayed []*candidate.EmbeddingJob
	failOn  bool
}

func (q *fakeQueue) Enqueue(ctx context.Context, job *candidate.EmbeddingJob) error {
	if q.failOn {
		return errors.New("redis down")
	}
	q.ready = append(q.ready, job)
	return nil
}

func (q *fakeQueue) Dequeue(ctx context.Context, timeout time.Duration) (*candidate.EmbeddingJob, error) {
	if len(q.ready) == 0 {
		return nil, nil
	}
	job := q.ready[0]
	q.ready = q.ready[1:]
	return job, nil
}

func (q *fakeQueue) EnqueueDelayed(ctx context.Context, job *candidate.EmbeddingJob, d time.Duration) error {
	q.delayed = append(q.delayed, job)
	return nil
}

func (q *fakeQueue) MoveDelayedToReady(ctx context.Context) (int, error) {
	n := len(q.delayed)
	q.ready = append(q.ready, q.delayed...)
	q.delayed = nil
	return n, nil
}

type fakeEmbedder struct {
	gotText string
	err     error
	// vectors overrides the returned vector per input text
	vectors map[string][]float32
	// onEmbed runs once, before the vector is returned
	onEmbed func()
}

func (e *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	e.gotText = text
	if hook := e.onEmbed; hook != nil {
		e.onEmbed = nil
		hook()
	}
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func newService(t *testing.T, repo *fakeRepo, queue *fakeQueue, emb *fakeEmbedder) *ResumeService {
	t.Helper()
	fs, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewResumeService(repo, fs, queue, emb, 3)
}

func TestUploadThenProcess(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo("cand-1")
	queue := &fakeQueue{}
	emb := &fakeEmbedder{}
	svc := newService(t, repo, queue, emb)

	resp, err := svc.UploadResume(ctx, "cand-1", "cv.txt", strings.NewReader("Senior Go developer\nKubernetes"))
	if err != nil {
		t.Fatalf("UploadResume: %v", err)
	}
	if resp.Status != "queued" || !strings.HasPrefix(resp.ResumePath, "resumes/cand-1/") {
		t.Fatalf("response = %+v", resp)
	}
	if len(queue.ready) != 1 || queue.ready[0].MaxAttempts != 3 {
		t.Fatalf("queue = %+v", queue.ready)
	}
	if repo.profiles["cand-1"].ResumePath != resp.ResumePath {
		t.Errorf("resume path not recorded")
	}

	if err := svc.ProcessEmbeddingJob(ctx, queue.ready[0]); err != nil {
		t.Fatalf("ProcessEmbeddingJob: %v", err)
	}
	if emb.gotText != "Senior Go developer Kubernetes" {
		t.Errorf("embedded text = %q", emb.gotText)
	}
	if got := repo.profiles["cand-1"].Embedding; len(got) != 3 {
		t.Errorf("embedding = %v", got)
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	svc := newService(t, newFakeRepo("cand-1"), &fakeQueue{}, &fakeEmbedder{})
	_, err := svc.UploadResume(context.Background(), "cand-1", "cv.exe", strings.NewReader("x"))
	if !errx.IsCode(err, candidate.CodeUnsupportedFileType) {
		t.Fatalf("error = %v", err)
	}
}

func TestUploadUnknownCandidate(t *testing.T) {
	svc := newService(t, newFakeRepo(), &fakeQueue{}, &fakeEmbedder{})
	_, err := svc.UploadResume(context.Background(), "ghost", "cv.txt", strings.NewReader("x"))
	if !errx.IsCode(err, candidate.CodeCandidateNotFound) {
		t.Fatalf("error = %v", err)
	}
}

func TestUploadQueueFailure(t *testing.T) {
	svc := newService(t, newFakeRepo("cand-1"), &fakeQueue{failOn: true}, &fakeEmbedder{})
	_, err := svc.UploadResume(context.Background(), "cand-1", "cv.txt", strings.NewReader("x"))
	if !errx.IsCode(err, candidate.CodeQueueFailed) {
		t.Fatalf("error = %v", err)
	}
}

func TestProcessMissingDocument(t *testing.T) {
	svc := newService(t, newFakeRepo("cand-1"), &fakeQueue{}, &fakeEmbedder{})
	err := svc.ProcessEmbeddingJob(context.Background(), &candidate.EmbeddingJob{
		CandidateID: "cand-1", ResumePath: "resumes/cand-1/missing.txt", FileName: "missing.txt",
	})
	if !errx.IsCode(err, candidate.CodeResumeNotFound) {
		t.Fatalf("error = %v", err)
	}
	if IsRetryable(err) {
		t.Error("missing document should not be retried")
	}
}

func TestProcessEmbeddingFailureIsRetryable(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo("cand-1")
	queue := &fakeQueue{}
	svc := newService(t, repo, queue, &fakeEmbedder{err: errors.New("429 quota")})

	if _, err := svc.UploadResume(ctx, "cand-1", "cv.txt", strings.NewReader("Go")); err != nil {
		t.Fatal(err)
	}
	err := svc.ProcessEmbeddingJob(ctx, queue.ready[0])
	if !errx.IsCode(err, candidate.CodeEmbeddingFailed) {
		t.Fatalf("error = %v", err)
	}
	if !IsRetryable(err) {
		t.Error("provider failure should be retryable")
	}
	if repo.profiles["cand-1"].Embedding != nil {
		t.Error("embedding written despite failure")
	}
}

func TestUploadReplacesPreviousDocument(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo("cand-1")
	svc := newService(t, repo, &fakeQueue{}, &fakeEmbedder{})

	first, err := svc.UploadResume(ctx, "cand-1", "cv.txt", strings.NewReader("v1"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.UploadResume(ctx, "cand-1", "cv.txt", strings.NewReader("v2"))
	if err != nil {
		t.Fatal(err)
	}

	if exists, _ := svc.fs.Exists(ctx, first.ResumePath); exists {
		t.Error("previous résumé was not deleted")
	}
	if exists, _ := svc.fs.Exists(ctx, second.ResumePath); !exists {
		t.Error("new résumé missing")
	}
}

func TestProcessOutOfOrderKeepsLatestUpload(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo("cand-1")
	queue := &fakeQueue{}
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"old resume": {1, 0},
		"new resume": {0, 1},
	}}
	svc := newService(t, repo, queue, emb)

	if _, err := svc.UploadResume(ctx, "cand-1", "cv.txt", strings.NewReader("old resume")); err != nil {
		t.Fatal(err)
	}
	oldJob := queue.ready[0]

	// The second upload lands and is embedded while the first job is still in flight
	emb.onEmbed = func() {
		if _, err := svc.UploadResume(ctx, "cand-1", "cv.txt", strings.NewReader("new resume")); err != nil {
			t.Fatal(err)
		}
		if err := svc.ProcessEmbeddingJob(ctx, queue.ready[1]); err != nil {
			t.Fatalf("newer job: %v", err)
		}
	}

	err := svc.ProcessEmbeddingJob(ctx, oldJob)
	if !errx.IsCode(err, candidate.CodeResumeSuperseded) {
		t.Fatalf("older job error = %v, want %s", err, candidate.CodeResumeSuperseded)
	}
	if IsRetryable(err) {
		t.Error("superseded job should not be retried")
	}

	got := repo.profiles["cand-1"].Embedding
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("embedding = %v, want the latest upload's vector", got)
	}
}
