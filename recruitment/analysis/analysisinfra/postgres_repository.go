package analysisinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/recruitment/analysis"
	"github.com/Abraxas-365/talentmatch/recruitment/job"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresAnalysisRepository implements analysis.Store on resume_analyses
type PostgresAnalysisRepository struct {
	db *sqlx.DB
}

var _ analysis.Store = (*PostgresAnalysisRepository)(nil)

// NewPostgresAnalysisRepository creates a new PostgreSQL analysis repository
func NewPostgresAnalysisRepository(db *sqlx.DB) *PostgresAnalysisRepository {
	return &PostgresAnalysisRepository{
		db: db,
	}
}

// ============================================================================
// Database Model
// ============================================================================

type analysisRow struct {
	ID                string         `db:"id"`
	UserID            string         `db:"user_id"`
	JobID             string         `db:"job_id"`
	ResumePath        string         `db:"resume_path"`
	Strengths         pq.StringArray `db:"strengths"`
	Weaknesses        pq.StringArray `db:"weaknesses"`
	Suggestions       pq.StringArray `db:"suggestions"`
	ResumeTextPreview string         `db:"resume_text_preview"`
	JobSnapshot       string         `db:"job_snapshot"`
	Degraded          bool           `db:"degraded"`
	Note              string         `db:"note"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func newAnalysisRow(r *analysis.Result) (*analysisRow, error) {
	snapshot, err := json.Marshal(r.JobSnapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal job snapshot: %w", err)
	}

	return &analysisRow{
		ID:                r.ID.String(),
		UserID:            r.UserID.String(),
		JobID:             r.JobID.String(),
		ResumePath:        r.ResumePath,
		Strengths:         pq.StringArray(orEmpty(r.Feedback.Strengths)),
		Weaknesses:        pq.StringArray(orEmpty(r.Feedback.Weaknesses)),
		Suggestions:       pq.StringArray(orEmpty(r.Feedback.Suggestions)),
		ResumeTextPreview: r.ResumeTextPreview,
		JobSnapshot:       string(snapshot),
		Degraded:          r.Degraded,
		Note:              r.Note,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}, nil
}

// ToDomain converts the row to an analysis result
func (row *analysisRow) ToDomain() (*analysis.Result, error) {
	var snapshot job.Snapshot
	if row.JobSnapshot != "" {
		if err := json.Unmarshal([]byte(row.JobSnapshot), &snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal job snapshot for analysis %s: %w", row.ID, err)
		}
	}

	return &analysis.Result{
		ID:         kernel.AnalysisID(row.ID),
		UserID:     kernel.UserID(row.UserID),
		JobID:      kernel.JobID(row.JobID),
		ResumePath: row.ResumePath,
		Feedback: analysis.Feedback{
			Strengths:   orEmpty(row.Strengths),
			Weaknesses:  orEmpty(row.Weaknesses),
			Suggestions: orEmpty(row.Suggestions),
		},
		ResumeTextPreview: row.ResumeTextPreview,
		JobSnapshot:       snapshot,
		Degraded:          row.Degraded,
		Note:              row.Note,
		CreatedAt:         row.CreatedAt.UTC(),
		UpdatedAt:         row.UpdatedAt.UTC(),
	}, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ============================================================================
// Store Operations
// ============================================================================

// Upsert inserts or replaces the analysis of the (user, job) pair. The stored id and
// creation time of an existing pair are kept and written back to result.
func (r *PostgresAnalysisRepository) Upsert(ctx context.Context, result *analysis.Result) error {
	row, err := newAnalysisRow(result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO resume_analyses (
			id, user_id, job_id, resume_path,
			strengths, weaknesses, suggestions,
			resume_text_preview, job_snapshot, degraded, note,
			created_at, updated_at
		) VALUES (
			:id, :user_id, :job_id, :resume_path,
			:strengths, :weaknesses, :suggestions,
			:resume_text_preview, :job_snapshot, :degraded, :note,
			:created_at, :updated_at
		)
		ON CONFLICT (user_id, job_id) DO UPDATE SET
			resume_path         = EXCLUDED.resume_path,
			strengths           = EXCLUDED.strengths,
			weaknesses          = EXCLUDED.weaknesses,
			suggestions         = EXCLUDED.suggestions,
			resume_text_preview = EXCLUDED.resume_text_preview,
			job_snapshot        = EXCLUDED.job_snapshot,
			degraded            = EXCLUDED.degraded,
			note                = EXCLUDED.note,
			updated_at          = EXCLUDED.updated_at
		RETURNING id, created_at`

	named, args, err := sqlx.Named(query, row)
	if err != nil {
		return fmt.Errorf("bind analysis upsert: %w", err)
	}

	var stored struct {
		ID        string    `db:"id"`
		CreatedAt time.Time `db:"created_at"`
	}
	if err := r.db.GetContext(ctx, &stored, r.db.Rebind(named), args...); err != nil {
		return fmt.Errorf("upsert analysis for user %s job %s: %w", result.UserID, result.JobID, err)
	}

	result.ID = kernel.AnalysisID(stored.ID)
	result.CreatedAt = stored.CreatedAt.UTC()
	return nil
}

func (r *PostgresAnalysisRepository) Get(ctx context.Context, userID kernel.UserID, jobID kernel.JobID) (*analysis.Result, error) {
	query := `
		SELECT id, user_id, job_id, resume_path,
			strengths, weaknesses, suggestions,
			resume_text_preview, job_snapshot, degraded, note,
			created_at, updated_at
		FROM resume_analyses
		WHERE user_id = $1 AND job_id = $2`

	var row analysisRow
	if err := r.db.GetContext(ctx, &row, query, userID.String(), jobID.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, analysis.ErrAnalysisNotFound().
				WithDetail("user_id", userID).
				WithDetail("job_id", jobID)
		}
		return nil, fmt.Errorf("get analysis for user %s job %s: %w", userID, jobID, err)
	}

	return row.ToDomain()
}
