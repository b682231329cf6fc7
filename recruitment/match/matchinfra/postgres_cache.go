package matchinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/recruitment/job"
	"github.com/Abraxas-365/talentmatch/recruitment/match"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
)

// PostgresCache is the durable match cache on the match_results table
type PostgresCache struct {
	db *sqlx.DB
}

var _ match.Cache = (*PostgresCache)(nil)

// NewPostgresCache creates a new PostgreSQL match cache
func NewPostgresCache(db *sqlx.DB) *PostgresCache {
	return &PostgresCache{
		db: db,
	}
}

// ============================================================================
// Database Model
// ============================================================================

type matchRow struct {
	JobID            string          `db:"job_id"`
	JobEmbedding     pgvector.Vector `db:"job_embedding"`
	RankedCandidates string          `db:"ranked_candidates"`
	JobSnapshot      string          `db:"job_snapshot"`
	AnalyzedAt       time.Time       `db:"analyzed_at"`
}

func newMatchRow(result *match.MatchResult) (*matchRow, error) {
	ranked := result.RankedCandidates
	if ranked == nil {
		ranked = []match.RankedCandidate{}
	}
	rankedJSON, err := json.Marshal(ranked)
	if err != nil {
		return nil, fmt.Errorf("marshal ranked candidates: %w", err)
	}
	snapshotJSON, err := json.Marshal(result.JobSnapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal job snapshot: %w", err)
	}

	return &matchRow{
		JobID:            result.JobID.String(),
		JobEmbedding:     pgvector.NewVector(result.JobEmbedding),
		RankedCandidates: string(rankedJSON),
		JobSnapshot:      string(snapshotJSON),
		AnalyzedAt:       result.AnalyzedAt,
	}, nil
}

// ToDomain converts the row to a match result
func (r *matchRow) ToDomain() (*match.MatchResult, error) {
	var ranked []match.RankedCandidate
	if err := json.Unmarshal([]byte(r.RankedCandidates), &ranked); err != nil {
		return nil, fmt.Errorf("unmarshal ranked candidates for job %s: %w", r.JobID, err)
	}
	if ranked == nil {
		ranked = []match.RankedCandidate{}
	}

	var snapshot job.Snapshot
	if len(r.JobSnapshot) > 0 {
		if err := json.Unmarshal([]byte(r.JobSnapshot), &snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal job snapshot for job %s: %w", r.JobID, err)
		}
	}

	return &match.MatchResult{
		JobID:            kernel.JobID(r.JobID),
		JobEmbedding:     r.JobEmbedding.Slice(),
		RankedCandidates: ranked,
		AnalyzedAt:       r.AnalyzedAt.UTC(),
		JobSnapshot:      snapshot,
	}, nil
}

// ============================================================================
// Cache Operations
// ============================================================================

func (c *PostgresCache) Get(ctx context.Context, jobID kernel.JobID) (*match.MatchResult, bool, error) {
	query := `
		SELECT job_id, job_embedding, ranked_candidates, job_snapshot, analyzed_at
		FROM match_results
		WHERE job_id = $1`

	var row matchRow
	if err := c.db.GetContext(ctx, &row, query, jobID.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get match result for job %s: %w", jobID, err)
	}

	result, err := row.ToDomain()
	if err != nil {
		return nil, false, err
	}
	return result, true, nil
}

// Upsert replaces the stored ranking in a single statement
func (c *PostgresCache) Upsert(ctx context.Context, result *match.MatchResult) error {
	row, err := newMatchRow(result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO match_results (job_id, job_embedding, ranked_candidates, job_snapshot, analyzed_at)
		VALUES (:job_id, :job_embedding, :ranked_candidates, :job_snapshot, :analyzed_at)
		ON CONFLICT (job_id) DO UPDATE SET
			job_embedding     = EXCLUDED.job_embedding,
			ranked_candidates = EXCLUDED.ranked_candidates,
			job_snapshot      = EXCLUDED.job_snapshot,
			analyzed_at       = EXCLUDED.analyzed_at`

	if _, err := c.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert match result for job %s: %w", result.JobID, err)
	}
	return nil
}

func (c *PostgresCache) Delete(ctx context.Context, jobID kernel.JobID) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM match_results WHERE job_id = $1`, jobID.String()); err != nil {
		return fmt.Errorf("delete match result for job %s: %w", jobID, err)
	}
	return nil
}
