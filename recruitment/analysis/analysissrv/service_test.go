package analysissrv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/talentmatch/internal/ai/docanalyzer"
	"github.com/Abraxas-365/talentmatch/pkg/errx"
	"github.com/Abraxas-365/talentmatch/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/recruitment/analysis"
	"github.com/Abraxas-365/talentmatch/recruitment/job"
)

type fakeJobs map[kernel.JobID]*job.Job

func (f fakeJobs) GetByID(ctx context.Context, id kernel.JobID) (*job.Job, error) {
	j, ok := f[id]
	if !ok {
		return nil, job.ErrJobNotFound()
	}
	return j, nil
}

type fakeAnalyzer struct {
	response   string
	uploadErr  error
	analyzeErr error
	releaseErr error
	block      bool

	uploaded  []docanalyzer.Document
	gotRef    string
	gotPrompt string
	released  []string
}

func (a *fakeAnalyzer) Upload(ctx context.Context, doc docanalyzer.Document) (string, error) {
	if a.uploadErr != nil {
		return "", a.uploadErr
	}
	a.uploaded = append(a.uploaded, doc)
	return "file-123", nil
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, ref, prompt string) (string, error) {
	a.gotRef, a.gotPrompt = ref, prompt
	if a.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if a.analyzeErr != nil {
		return "", a.analyzeErr
	}
	return a.response, nil
}

func (a *fakeAnalyzer) Release(ctx context.Context, ref string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	a.released = append(a.released, ref)
	return a.releaseErr
}

type memStore struct {
	results map[string]*analysis.Result
	err     error
}

func key(u kernel.UserID, j kernel.JobID) string { return u.String() + "/" + j.String() }

func (m *memStore) Upsert(ctx context.Context, r *analysis.Result) error {
	if m.err != nil {
		return m.err
	}
	if prev, ok := m.results[key(r.UserID, r.JobID)]; ok {
		r.ID = prev.ID
		r.CreatedAt = prev.CreatedAt
	}
	m.results[key(r.UserID, r.JobID)] = r
	return nil
}

func (m *memStore) Get(ctx context.Context, u kernel.UserID, j kernel.JobID) (*analysis.Result, error) {
	r, ok := m.results[key(u, j)]
	if !ok {
		return nil, analysis.ErrAnalysisNotFound()
	}
	return r, nil
}

const validResponse = "```json\n{\"strengths\":[\"Go\"],\"weakness\":[\"Kafka\"],\"suggests\":[\"Mention queues\"]}\n```"

var testJob = &job.Job{
	ID:         "job-1",
	Title:      "Backend Engineer",
	SkillNames: []string{"Go", "Kafka"},
}

func setup(t *testing.T, analyzer *fakeAnalyzer, files map[string]string) (*Service, *memStore) {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	fs, err := fsxlocal.NewLocalFileSystem(root)
	if err != nil {
		t.Fatal(err)
	}

	store := &memStore{results: map[string]*analysis.Result{}}
	svc := NewService(fakeJobs{testJob.ID: testJob}, fs, analyzer, store, time.Second)
	return svc, store
}

func request(path string) analysis.OptimizeRequest {
	return analysis.OptimizeRequest{UserID: "user-1", JobID: testJob.ID, ResumePath: path}
}

func TestOptimizeResumeInlinesText(t *testing.T) {
	analyzer := &fakeAnalyzer{response: validResponse}
	svc, store := setup(t, analyzer, map[string]string{"resumes/u1/cv.txt": "Five years   of Go\nservices"})

	res, err := svc.OptimizeResume(context.Background(), request("resumes/u1/cv.txt"))
	if err != nil {
		t.Fatalf("OptimizeResume: %v", err)
	}
	if res.Degraded {
		t.Fatalf("unexpected degraded result: %+v", res)
	}
	if res.Feedback.Strengths[0] != "Go" || res.Feedback.Weaknesses[0] != "Kafka" || res.Feedback.Suggestions[0] != "Mention queues" {
		t.Errorf("feedback = %+v", res.Feedback)
	}
	if res.ResumeTextPreview != "Five years of Go services" {
		t.Errorf("preview = %q", res.ResumeTextPreview)
	}
	if analyzer.gotRef != "" || !strings.Contains(analyzer.gotPrompt, "Five years of Go services") {
		t.Errorf("ref=%q prompt=%q", analyzer.gotRef, analyzer.gotPrompt)
	}
	if len(analyzer.uploaded) != 0 {
		t.Error("text résumé should not be uploaded")
	}
	if res.JobSnapshot.Title != testJob.Title {
		t.Errorf("snapshot = %+v", res.JobSnapshot)
	}
	if _, err := store.Get(context.Background(), "user-1", testJob.ID); err != nil {
		t.Errorf("result not stored: %v", err)
	}
}

func TestOptimizeResumeUploadsPDFAndReleases(t *testing.T) {
	analyzer := &fakeAnalyzer{response: validResponse}
	svc, _ := setup(t, analyzer, map[string]string{"cv.pdf": "%PDF-not-really"})

	res, err := svc.OptimizeResume(context.Background(), request("cv.pdf"))
	if err != nil {
		t.Fatalf("OptimizeResume: %v", err)
	}
	if res.Degraded {
		t.Fatalf("unexpected degraded result: %+v", res)
	}
	if len(analyzer.uploaded) != 1 || analyzer.uploaded[0].ContentType != "application/pdf" {
		t.Fatalf("uploaded = %+v", analyzer.uploaded)
	}
	if analyzer.gotRef != "file-123" {
		t.Errorf("analyze ref = %q", analyzer.gotRef)
	}
	if len(analyzer.released) != 1 || analyzer.released[0] != "file-123" {
		t.Errorf("released = %v", analyzer.released)
	}
}

func TestOptimizeResumeReleasesOnProviderFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{analyzeErr: errors.New("503"), releaseErr: errors.New("delete failed")}
	svc, _ := setup(t, analyzer, map[string]string{"cv.pdf": "%PDF"})

	res, err := svc.OptimizeResume(context.Background(), request("cv.pdf"))
	if err != nil {
		t.Fatalf("provider and cleanup failures must not fail the request: %v", err)
	}
	if !res.Degraded || res.Note != analysis.CodeProviderFailed.String() {
		t.Errorf("degraded=%v note=%q", res.Degraded, res.Note)
	}
	if len(res.Feedback.Strengths) != 0 || len(res.Feedback.Weaknesses) != 0 || len(res.Feedback.Suggestions) != 1 {
		t.Errorf("feedback = %+v", res.Feedback)
	}
	if len(analyzer.released) != 1 {
		t.Error("uploaded file was not released")
	}
}

func TestOptimizeResumeTimeoutStillReleases(t *testing.T) {
	analyzer := &fakeAnalyzer{block: true}
	svc, _ := setup(t, analyzer, map[string]string{"cv.pdf": "%PDF"})
	svc.analyzeTimeout = 20 * time.Millisecond

	res, err := svc.OptimizeResume(context.Background(), request("cv.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Degraded {
		t.Error("timeout should degrade the result")
	}
	if len(analyzer.released) != 1 {
		t.Error("release must run after the analysis deadline expired")
	}
}

func TestOptimizeResumeMalformedResponse(t *testing.T) {
	raw := "I'm sorry, I can't produce JSON today."
	analyzer := &fakeAnalyzer{response: raw}
	svc, _ := setup(t, analyzer, map[string]string{"cv.txt": "Go"})

	res, err := svc.OptimizeResume(context.Background(), request("cv.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Degraded || res.Note != analysis.CodeMalformedResponse.String() {
		t.Errorf("degraded=%v note=%q", res.Degraded, res.Note)
	}
	if len(res.Feedback.Suggestions) != 1 || res.Feedback.Suggestions[0] != raw {
		t.Errorf("suggestions = %v", res.Feedback.Suggestions)
	}
}

func TestOptimizeResumeUploadFailureDegrades(t *testing.T) {
	analyzer := &fakeAnalyzer{uploadErr: errors.New("quota")}
	svc, _ := setup(t, analyzer, map[string]string{"cv.pdf": "%PDF"})

	res, err := svc.OptimizeResume(context.Background(), request("cv.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Degraded || len(analyzer.released) != 0 {
		t.Errorf("degraded=%v released=%v", res.Degraded, analyzer.released)
	}
}

func TestOptimizeResumeErrors(t *testing.T) {
	tests := []struct {
		name string
		req  analysis.OptimizeRequest
		want errx.Code
	}{
		{"missing resume", request("nope.pdf"), analysis.CodeResumeNotFound},
		{"unknown job", analysis.OptimizeRequest{UserID: "user-1", JobID: "ghost", ResumePath: "cv.txt"}, job.CodeJobNotFound},
		{"no user", analysis.OptimizeRequest{JobID: testJob.ID, ResumePath: "cv.txt"}, analysis.CodeInvalidRequest},
		{"no path", analysis.OptimizeRequest{UserID: "user-1", JobID: testJob.ID}, analysis.CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setup(t, &fakeAnalyzer{response: validResponse}, map[string]string{"cv.txt": "Go"})
			_, err := svc.OptimizeResume(context.Background(), tt.req)
			if !errx.IsCode(err, tt.want) {
				t.Fatalf("error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestOptimizeResumeStoreFailurePropagates(t *testing.T) {
	svc, store := setup(t, &fakeAnalyzer{response: validResponse}, map[string]string{"cv.txt": "Go"})
	store.err = errors.New("pg down")

	_, err := svc.OptimizeResume(context.Background(), request("cv.txt"))
	if !errx.IsCode(err, analysis.CodeStorageFailed) {
		t.Fatalf("error = %v", err)
	}
}

func TestOptimizeResumeUpsertsPerPair(t *testing.T) {
	analyzer := &fakeAnalyzer{response: validResponse}
	svc, store := setup(t, analyzer, map[string]string{"cv.txt": "Go"})
	ctx := context.Background()

	first, err := svc.OptimizeResume(ctx, request("cv.txt"))
	if err != nil {
		t.Fatal(err)
	}
	analyzer.response = `{"strengths":[],"weakness":[],"suggests":["second"]}`
	second, err := svc.OptimizeResume(ctx, request("cv.txt"))
	if err != nil {
		t.Fatal(err)
	}

	if len(store.results) != 1 {
		t.Fatalf("stored = %d, want 1", len(store.results))
	}
	if second.ID != first.ID {
		t.Errorf("id changed on upsert: %s -> %s", first.ID, second.ID)
	}
	got, _ := svc.GetAnalysis(ctx, "user-1", testJob.ID)
	if got.Feedback.Suggestions[0] != "second" {
		t.Errorf("stored suggestions = %v", got.Feedback.Suggestions)
	}
}
