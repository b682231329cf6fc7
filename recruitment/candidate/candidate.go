package candidate

import (
	"slices"
	"strings"
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
)

// Experience is one past position listed on a profile
type Experience struct {
	Title   string `json:"title"`
	Company string `json:"company"`
}

// Profile is the searchable candidate record. Embedding is either absent or a
// complete vector written by the résumé upload path.
type Profile struct {
	ID          kernel.CandidateID `db:"id" json:"id"`
	UserID      kernel.UserID      `db:"user_id" json:"user_id"`
	Name        string             `db:"name" json:"name"`
	Bio         string             `db:"bio" json:"bio"`
	Location    string             `db:"location" json:"location"`
	AvatarURL   string             `db:"avatar_url" json:"avatar_url,omitempty"`
	SkillIDs    []kernel.SkillID   `db:"skill_ids" json:"skill_ids"`
	Experiences []Experience       `db:"experiences" json:"experiences"`
	ResumePath  string             `db:"resume_path" json:"resume_path,omitempty"`
	Embedding   kernel.Embedding   `db:"embedding" json:"-"`
	EmbeddedAt  *time.Time         `db:"embedded_at" json:"embedded_at,omitempty"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}

// Filters are the structural pre-filters shared by vector ranking and keyword search.
// Empty fields do not constrain.
type Filters struct {
	Location          string           `json:"location,omitempty" query:"location"`
	SkillIDs          []kernel.SkillID `json:"skill_ids,omitempty" query:"skills"`
	ExperienceTitle   string           `json:"experience_title,omitempty" query:"title"`
	ExperienceCompany string           `json:"experience_company,omitempty" query:"company"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// HasEmbedding reports whether the profile carries an embedding of length dim
func (p *Profile) HasEmbedding(dim int) bool {
	return len(p.Embedding) > 0 && len(p.Embedding) == dim
}

// MatchesKeyword reports whether name or bio contains query, ignoring case.
// An empty query matches every profile.
func (p *Profile) MatchesKeyword(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Bio), q)
}

// IsEmpty reports whether no filter is set
func (f Filters) IsEmpty() bool {
	return f.Location == "" && len(f.SkillIDs) == 0 &&
		f.ExperienceTitle == "" && f.ExperienceCompany == ""
}

// Matches applies the filters to a profile in memory, with the same semantics the
// stores implement: location substring, any shared skill id, and an experience whose
// title and company contain the requested substrings.
func (f Filters) Matches(p *Profile) bool {
	if f.Location != "" && !containsFold(p.Location, f.Location) {
		return false
	}

	if len(f.SkillIDs) > 0 {
		shared := slices.ContainsFunc(f.SkillIDs, func(id kernel.SkillID) bool {
			return slices.Contains(p.SkillIDs, id)
		})
		if !shared {
			return false
		}
	}

	if f.ExperienceTitle != "" || f.ExperienceCompany != "" {
		found := slices.ContainsFunc(p.Experiences, func(e Experience) bool {
			return (f.ExperienceTitle == "" || containsFold(e.Title, f.ExperienceTitle)) &&
				(f.ExperienceCompany == "" || containsFold(e.Company, f.ExperienceCompany))
		})
		if !found {
			return false
		}
	}

	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
