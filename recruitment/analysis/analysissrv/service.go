package analysissrv

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/Abraxas-365/talentmatch/internal/ai/docanalyzer"
	"github.com/Abraxas-365/talentmatch/internal/docs"
	"github.com/Abraxas-365/talentmatch/pkg/fsx"
	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/pkg/logx"
	"github.com/Abraxas-365/talentmatch/recruitment/analysis"
	"github.com/Abraxas-365/talentmatch/recruitment/job"
	"github.com/google/uuid"
)

const (
	previewRunes      = 1000
	inlineResumeRunes = 20000
	releaseTimeout    = 10 * time.Second
)

// DocumentAnalyzer runs a prompt against a résumé on the provider side. Files
// uploaded with Upload must be given back with Release.
type DocumentAnalyzer interface {
	Upload(ctx context.Context, doc docanalyzer.Document) (string, error)
	Analyze(ctx context.Context, fileRef, prompt string) (string, error)
	Release(ctx context.Context, fileRef string) error
}

// Service runs résumé gap analyses against jobs
type Service struct {
	jobs           job.Reader
	fs             fsx.FileSystem
	analyzer       DocumentAnalyzer
	store          analysis.Store
	analyzeTimeout time.Duration
	now            func() time.Time
}

// NewService creates a new analysis service
func NewService(
	jobs job.Reader,
	fs fsx.FileSystem,
	analyzer DocumentAnalyzer,
	store analysis.Store,
	analyzeTimeout time.Duration,
) *Service {
	return &Service{
		jobs:           jobs,
		fs:             fs,
		analyzer:       analyzer,
		store:          store,
		analyzeTimeout: analyzeTimeout,
		now:            time.Now,
	}
}

// OptimizeResume analyzes the résumé against the job and stores the result for the
// (user, job) pair. Provider failures and unreadable answers produce a degraded
// result instead of an error.
func (s *Service) OptimizeResume(ctx context.Context, req analysis.OptimizeRequest) (*analysis.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	j, err := s.jobs.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	data, err := s.readResume(ctx, req.ResumePath)
	if err != nil {
		return nil, err
	}

	fileName := path.Base(req.ResumePath)
	text, err := docs.ExtractText(fileName, data)
	if err != nil {
		logx.Warnf("Text extraction failed for %s, continuing without preview: %v", req.ResumePath, err)
		text = ""
	}

	result := &analysis.Result{
		ID:                kernel.AnalysisID(uuid.NewString()),
		UserID:            req.UserID,
		JobID:             req.JobID,
		ResumePath:        req.ResumePath,
		ResumeTextPreview: docs.Preview(text, previewRunes),
		JobSnapshot:       j.Snapshot(),
	}

	raw, err := s.analyze(ctx, j, fileName, data, text)
	if err != nil {
		logx.Warnf("Résumé analysis degraded for user=%s job=%s: %v", req.UserID, req.JobID, err)
		result.Feedback = analysis.ProviderFailureFeedback()
		result.Degraded = true
		result.Note = analysis.CodeProviderFailed.String()
	} else {
		fb, ok := analysis.ParseFeedbackLenient(raw)
		result.Feedback = fb
		if !ok {
			result.Degraded = true
			result.Note = analysis.CodeMalformedResponse.String()
		}
	}

	now := s.now().UTC()
	result.CreatedAt = now
	result.UpdatedAt = now

	if err := s.store.Upsert(ctx, result); err != nil {
		return nil, analysis.ErrRegistry.NewWithCause(analysis.CodeStorageFailed, err).
			WithDetail("user_id", req.UserID).
			WithDetail("job_id", req.JobID)
	}

	logx.Infof("Résumé analysis stored: user=%s job=%s degraded=%v %s",
		req.UserID, req.JobID, result.Degraded, result.Feedback)
	return result, nil
}

// GetAnalysis returns the stored analysis of a user for a job
func (s *Service) GetAnalysis(ctx context.Context, userID kernel.UserID, jobID kernel.JobID) (*analysis.Result, error) {
	return s.store.Get(ctx, userID, jobID)
}

func (s *Service) readResume(ctx context.Context, resumePath string) ([]byte, error) {
	exists, err := s.fs.Exists(ctx, resumePath)
	if err != nil {
		return nil, analysis.ErrRegistry.NewWithCause(analysis.CodeStorageFailed, err).WithDetail("path", resumePath)
	}
	if !exists {
		return nil, analysis.ErrResumeNotFound().WithDetail("path", resumePath)
	}

	data, err := s.fs.ReadFile(ctx, resumePath)
	if err != nil {
		if errors.Is(err, fsx.ErrNotExist) {
			return nil, analysis.ErrResumeNotFound().WithDetail("path", resumePath)
		}
		return nil, analysis.ErrRegistry.NewWithCause(analysis.CodeStorageFailed, err).WithDetail("path", resumePath)
	}
	return data, nil
}

// analyze attaches PDFs as provider files and inlines the extracted text of any
// other format
func (s *Service) analyze(ctx context.Context, j *job.Job, fileName string, data []byte, text string) (string, error) {
	if s.analyzeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.analyzeTimeout)
		defer cancel()
	}

	contentType := docs.MimeType(fileName)
	if contentType != docs.MimePDF {
		if strings.TrimSpace(text) == "" {
			return "", analysis.ErrProviderFailed().WithDetail("reason", "no text to analyze")
		}
		raw, err := s.analyzer.Analyze(ctx, "", analysis.BuildPrompt(j, docs.Preview(text, inlineResumeRunes)))
		if err != nil {
			return "", analysis.ErrRegistry.NewWithCause(analysis.CodeProviderFailed, err)
		}
		return raw, nil
	}

	ref, err := s.analyzer.Upload(ctx, docanalyzer.Document{
		Name:        fileName,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		return "", analysis.ErrRegistry.NewWithCause(analysis.CodeProviderFailed, err)
	}
	defer s.release(ctx, ref)

	raw, err := s.analyzer.Analyze(ctx, ref, analysis.BuildPrompt(j, ""))
	if err != nil {
		return "", analysis.ErrRegistry.NewWithCause(analysis.CodeProviderFailed, err)
	}
	return raw, nil
}

// release runs on its own deadline so an expired analysis still cleans up
func (s *Service) release(ctx context.Context, ref string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := s.analyzer.Release(ctx, ref); err != nil {
		logx.Warnf("Failed to release provider file %s: %v", ref, err)
	}
}
