package jobinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/recruitment/job"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresJobRepository implements job.Reader using PostgreSQL
type PostgresJobRepository struct {
	db *sqlx.DB
}

var _ job.Reader = (*PostgresJobRepository)(nil)

// NewPostgresJobRepository creates a new PostgreSQL job repository
func NewPostgresJobRepository(db *sqlx.DB) *PostgresJobRepository {
	return &PostgresJobRepository{
		db: db,
	}
}

// ============================================================================
// Database Model
// ============================================================================

type jobModel struct {
	ID              string          `db:"id"`
	Title           string          `db:"title"`
	Description     string          `db:"description"`
	Requirements    json.RawMessage `db:"requirements"`
	ExperienceLevel string          `db:"experience_level"`
	JobType         string          `db:"job_type"`
	CompanyName     string          `db:"company_name"`
	SkillNames      pq.StringArray  `db:"skill_names"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// toEntity converts database model to domain entity
func (m *jobModel) toEntity() (*job.Job, error) {
	var requirements []kernel.JobRequirement
	if len(m.Requirements) > 0 {
		if err := json.Unmarshal(m.Requirements, &requirements); err != nil {
			return nil, fmt.Errorf("failed to unmarshal requirements: %w", err)
		}
	}

	skills := []string(m.SkillNames)
	if skills == nil {
		skills = []string{}
	}

	return &job.Job{
		ID:              kernel.JobID(m.ID),
		Title:           kernel.JobTitle(m.Title),
		Description:     kernel.JobDescription(m.Description),
		Requirements:    requirements,
		SkillNames:      skills,
		CompanyName:     kernel.CompanyName(m.CompanyName),
		ExperienceLevel: kernel.ExperienceLevel(m.ExperienceLevel),
		JobType:         kernel.JobType(m.JobType),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}

// ============================================================================
// Repository Implementation
// ============================================================================

// GetByID retrieves a job by ID together with its company and skill names
func (r *PostgresJobRepository) GetByID(ctx context.Context, id kernel.JobID) (*job.Job, error) {
	query := `
		SELECT
			j.id, j.title, j.description, j.requirements,
			j.experience_level, j.job_type,
			COALESCE(c.name, '') AS company_name,
			ARRAY(
				SELECT s.name
				FROM job_skills js
				INNER JOIN skills s ON s.id = js.skill_id
				WHERE js.job_id = j.id
				ORDER BY s.name
			) AS skill_names,
			j.created_at, j.updated_at
		FROM jobs j
		LEFT JOIN companies c ON c.id = j.company_id
		WHERE j.id = $1
	`

	var model jobModel
	err := r.db.GetContext(ctx, &model, query, string(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, job.ErrJobNotFound().WithDetail("job_id", id)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	entity, err := model.toEntity()
	if err != nil {
		return nil, job.ErrRegistry.NewWithCause(job.CodeInvalidJobData, err).WithDetail("job_id", id)
	}
	return entity, nil
}
