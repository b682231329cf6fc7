package match

import (
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/recruitment/candidate"
	"github.com/Abraxas-365/talentmatch/recruitment/job"
)

// RankedCandidate is one scored entry of a ranking, with the display fields
// copied from the profile at ranking time
type RankedCandidate struct {
	CandidateID kernel.CandidateID `json:"candidate_id"`
	Score       float64            `json:"score"`
	Name        string             `json:"name"`
	Bio         string             `json:"bio,omitempty"`
	Location    string             `json:"location,omitempty"`
	AvatarURL   string             `json:"avatar_url,omitempty"`
}

// MatchResult is the cached ranking of a job. There is at most one per job and it
// is always replaced as a whole.
type MatchResult struct {
	JobID            kernel.JobID      `json:"job_id"`
	JobEmbedding     kernel.Embedding  `json:"job_embedding"`
	RankedCandidates []RankedCandidate `json:"ranked_candidates"`
	AnalyzedAt       time.Time         `json:"analyzed_at"`
	JobSnapshot      job.Snapshot      `json:"job_snapshot"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// NewRankedCandidate copies the display fields of p next to its score
func NewRankedCandidate(p *candidate.Profile, score float64) RankedCandidate {
	return RankedCandidate{
		CandidateID: p.ID,
		Score:       score,
		Name:        p.Name,
		Bio:         p.Bio,
		Location:    p.Location,
		AvatarURL:   p.AvatarURL,
	}
}

// IsEmpty reports whether the ranking holds no candidates
func (m *MatchResult) IsEmpty() bool {
	return len(m.RankedCandidates) == 0
}
