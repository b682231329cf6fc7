package analysis

import (
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/recruitment/job"
)

// Feedback is the gap analysis of a résumé against a job
type Feedback struct {
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
}

// Result is the stored analysis for one (user, job) pair. A new analysis for the
// same pair replaces the previous one.
type Result struct {
	ID                kernel.AnalysisID `json:"id"`
	UserID            kernel.UserID     `json:"user_id"`
	JobID             kernel.JobID      `json:"job_id"`
	ResumePath        string            `json:"resume_path"`
	Feedback          Feedback          `json:"feedback"`
	ResumeTextPreview string            `json:"resume_text_preview"`
	JobSnapshot       job.Snapshot      `json:"job_snapshot"`
	// Degraded is set when the provider failed or answered with something unparseable
	Degraded  bool      `json:"degraded"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const providerFailureSuggestion = "The résumé could not be analyzed right now. Please try again later."

// ============================================================================
// Domain Methods
// ============================================================================

// DegradedFeedback is the fixed shape returned when a response cannot be parsed:
// no strengths or weaknesses and the raw text as the only suggestion
func DegradedFeedback(raw string) Feedback {
	return Feedback{
		Strengths:   []string{},
		Weaknesses:  []string{},
		Suggestions: []string{raw},
	}
}

// ProviderFailureFeedback is returned when the analysis provider could not be reached
func ProviderFailureFeedback() Feedback {
	return DegradedFeedback(providerFailureSuggestion)
}
