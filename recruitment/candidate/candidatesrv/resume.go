package candidatesrv

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Abraxas-365/talentmatch/internal/docs"
	"github.com/Abraxas-365/talentmatch/pkg/errx"
	"github.com/Abraxas-365/talentmatch/pkg/fsx"
	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/pkg/logx"
	"github.com/Abraxas-365/talentmatch/recruitment/candidate"
	"github.com/google/uuid"
)

// maxEmbeddingRunes keeps résumé text inside the embedding model's input window
const maxEmbeddingRunes = 24000

// Embedder turns text into an embedding vector
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ResumeService stores résumés and keeps candidate embeddings in sync with them.
// It is the only writer of candidate embeddings.
type ResumeService struct {
	repo        candidate.Repository
	fs          fsx.FileSystem
	queue       candidate.EmbeddingQueue
	embedder    Embedder
	maxAttempts int
}

// NewResumeService creates a new résumé service
func NewResumeService(
	repo candidate.Repository,
	fs fsx.FileSystem,
	queue candidate.EmbeddingQueue,
	embedder Embedder,
	maxAttempts int,
) *ResumeService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &ResumeService{
		repo:        repo,
		fs:          fs,
		queue:       queue,
		embedder:    embedder,
		maxAttempts: maxAttempts,
	}
}

// UploadResume stores the document and queues it for embedding
func (s *ResumeService) UploadResume(
	ctx context.Context,
	candidateID kernel.CandidateID,
	fileName string,
	content io.Reader,
) (*candidate.UploadResumeResponse, error) {
	if !docs.IsSupported(fileName) {
		return nil, candidate.ErrUnsupportedFileType().WithDetail("file_name", fileName)
	}

	profile, err := s.repo.GetByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	path := s.fs.Join("resumes", candidateID.String(), uuid.NewString()+ext)

	if err := s.fs.WriteFileStream(ctx, path, content); err != nil {
		return nil, candidate.ErrRegistry.NewWithCause(candidate.CodeStorageFailed, err).
			WithDetail("candidate_id", candidateID).
			WithDetail("path", path)
	}

	if err := s.repo.SetResumePath(ctx, candidateID, path); err != nil {
		return nil, err
	}

	if previous := profile.ResumePath; previous != "" && previous != path {
		if err := s.fs.DeleteFile(ctx, previous); err != nil {
			logx.Warnf("Failed to delete previous résumé %s: %v", previous, err)
		}
	}

	job := &candidate.EmbeddingJob{
		ID:          uuid.NewString(),
		CandidateID: candidateID,
		ResumePath:  path,
		FileName:    fileName,
		MaxAttempts: s.maxAttempts,
		EnqueuedAt:  time.Now(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return nil, candidate.ErrRegistry.NewWithCause(candidate.CodeQueueFailed, err).
			WithDetail("candidate_id", candidateID)
	}

	logx.Infof("Résumé queued for embedding: candidate=%s job=%s", candidateID, job.ID)

	return &candidate.UploadResumeResponse{
		CandidateID: candidateID,
		ResumePath:  path,
		JobID:       job.ID,
		Status:      "queued",
	}, nil
}

// ProcessEmbeddingJob extracts the résumé text, embeds it and replaces the
// candidate's embedding
func (s *ResumeService) ProcessEmbeddingJob(ctx context.Context, job *candidate.EmbeddingJob) error {
	data, err := s.fs.ReadFile(ctx, job.ResumePath)
	if err != nil {
		if errors.Is(err, fsx.ErrNotExist) {
			return candidate.ErrResumeNotFound().WithDetail("path", job.ResumePath)
		}
		return candidate.ErrRegistry.NewWithCause(candidate.CodeStorageFailed, err).
			WithDetail("path", job.ResumePath)
	}

	text, err := docs.ExtractText(job.FileName, data)
	if err != nil || strings.TrimSpace(text) == "" {
		e := candidate.ErrTextExtractionFailed().WithDetail("file_name", job.FileName)
		if err != nil {
			e = e.WithCause(err)
		}
		return e
	}

	vector, err := s.embedder.GenerateEmbedding(ctx, docs.Preview(text, maxEmbeddingRunes))
	if err != nil {
		return candidate.ErrRegistry.NewWithCause(candidate.CodeEmbeddingFailed, err).
			WithDetail("candidate_id", job.CandidateID)
	}

	if err := s.repo.UpdateEmbedding(ctx, job.CandidateID, job.ResumePath, vector); err != nil {
		return err
	}

	logx.Infof("Embedding updated: candidate=%s dim=%d", job.CandidateID, len(vector))
	return nil
}

// IsRetryable reports whether a failed job may succeed on a later attempt
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	for _, code := range []errx.Code{
		candidate.CodeResumeNotFound,
		candidate.CodeResumeSuperseded,
		candidate.CodeTextExtractionFailed,
		candidate.CodeCandidateNotFound,
		candidate.CodeInvalidRequest,
	} {
		if errx.IsCode(err, code) {
			return false
		}
	}
	return true
}
