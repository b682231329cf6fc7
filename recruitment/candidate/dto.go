package candidate

import (
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
)

// EmbeddingJob asks a worker to embed the résumé stored at ResumePath
type EmbeddingJob struct {
	ID          string             `json:"id"`
	CandidateID kernel.CandidateID `json:"candidate_id"`
	ResumePath  string             `json:"resume_path"`
	FileName    string             `json:"file_name"`
	Attempt     int                `json:"attempt"`
	MaxAttempts int                `json:"max_attempts"`
	EnqueuedAt  time.Time          `json:"enqueued_at"`
	LastError   string             `json:"last_error,omitempty"`
}

// CanRetry reports whether another attempt is allowed after the current one
func (j *EmbeddingJob) CanRetry() bool {
	return j.Attempt < j.MaxAttempts
}

// UploadResumeResponse is returned after a résumé is stored and queued for embedding
type UploadResumeResponse struct {
	CandidateID kernel.CandidateID `json:"candidate_id"`
	ResumePath  string             `json:"resume_path"`
	JobID       string             `json:"job_id"`
	Status      string             `json:"status"`
}
