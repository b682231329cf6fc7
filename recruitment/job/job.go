package job

import (
	"strings"
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
)

// Job holds the posting facts the matching engine reads
type Job struct {
	ID              kernel.JobID            `db:"id" json:"id"`
	Title           kernel.JobTitle         `db:"title" json:"title"`
	Description     kernel.JobDescription   `db:"description" json:"description"`
	Requirements    []kernel.JobRequirement `db:"requirements" json:"requirements"`
	SkillNames      []string                `db:"skill_names" json:"skill_names"`
	CompanyName     kernel.CompanyName      `db:"company_name" json:"company_name"`
	ExperienceLevel kernel.ExperienceLevel  `db:"experience_level" json:"experience_level"`
	JobType         kernel.JobType          `db:"job_type" json:"job_type"`
	CreatedAt       time.Time               `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time               `db:"updated_at" json:"updated_at"`
}

// Snapshot is the denormalized copy of job facts stored next to match and analysis results
type Snapshot struct {
	Title        kernel.JobTitle         `json:"title"`
	CompanyName  kernel.CompanyName      `json:"company_name"`
	Requirements []kernel.JobRequirement `json:"requirements"`
	SkillNames   []string                `json:"skill_names"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// QueryText builds the text embedded to represent this job. The output depends only
// on the job fields: title, experience level, job type, skills, requirements, description.
func (j *Job) QueryText() string {
	parts := make([]string, 0, 6)
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	add(string(j.Title))
	add(string(j.ExperienceLevel))
	add(string(j.JobType))
	add(strings.Join(j.SkillNames, ", "))

	reqs := make([]string, 0, len(j.Requirements))
	for _, r := range j.Requirements {
		if s := strings.TrimSpace(string(r)); s != "" {
			reqs = append(reqs, s)
		}
	}
	add(strings.Join(reqs, ". "))
	add(string(j.Description))

	return strings.Join(parts, " ")
}

// Snapshot copies the informational job facts
func (j *Job) Snapshot() Snapshot {
	reqs := make([]kernel.JobRequirement, len(j.Requirements))
	copy(reqs, j.Requirements)
	skills := make([]string, len(j.SkillNames))
	copy(skills, j.SkillNames)

	return Snapshot{
		Title:        j.Title,
		CompanyName:  j.CompanyName,
		Requirements: reqs,
		SkillNames:   skills,
	}
}
