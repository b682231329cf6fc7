package candidateinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/recruitment/candidate"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresCandidateRepository implements candidate.Repository on candidate_profiles
type PostgresCandidateRepository struct {
	db *sqlx.DB
}

var _ candidate.Repository = (*PostgresCandidateRepository)(nil)

// NewPostgresCandidateRepository creates a new PostgreSQL candidate repository
func NewPostgresCandidateRepository(db *sqlx.DB) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{
		db: db,
	}
}

// ============================================================================
// Database Model
// ============================================================================

const profileColumns = `
	id, user_id, name, bio, location, avatar_url,
	skill_ids, experiences, resume_path,
	embedding, embedded_at, created_at, updated_at`

type profileRow struct {
	ID          string           `db:"id"`
	UserID      sql.NullString   `db:"user_id"`
	Name        string           `db:"name"`
	Bio         string           `db:"bio"`
	Location    string           `db:"location"`
	AvatarURL   sql.NullString   `db:"avatar_url"`
	SkillIDs    pq.StringArray   `db:"skill_ids"`
	Experiences json.RawMessage  `db:"experiences"`
	ResumePath  sql.NullString   `db:"resume_path"`
	Embedding   *pgvector.Vector `db:"embedding"`
	EmbeddedAt  sql.NullTime     `db:"embedded_at"`
	CreatedAt   time.Time        `db:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at"`
}

// ToDomain converts the row to a profile
func (r *profileRow) ToDomain() (*candidate.Profile, error) {
	var experiences []candidate.Experience
	if len(r.Experiences) > 0 {
		if err := json.Unmarshal(r.Experiences, &experiences); err != nil {
			return nil, fmt.Errorf("unmarshal experiences for %s: %w", r.ID, err)
		}
	}

	skills := make([]kernel.SkillID, len(r.SkillIDs))
	for i, s := range r.SkillIDs {
		skills[i] = kernel.SkillID(s)
	}

	p := &candidate.Profile{
		ID:          kernel.CandidateID(r.ID),
		UserID:      kernel.UserID(r.UserID.String),
		Name:        r.Name,
		Bio:         r.Bio,
		Location:    r.Location,
		AvatarURL:   r.AvatarURL.String,
		SkillIDs:    skills,
		Experiences: experiences,
		ResumePath:  r.ResumePath.String,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Embedding != nil {
		p.Embedding = kernel.Embedding(r.Embedding.Slice())
	}
	if r.EmbeddedAt.Valid {
		t := r.EmbeddedAt.Time
		p.EmbeddedAt = &t
	}
	return p, nil
}

func rowsToProfiles(rows []profileRow) ([]candidate.Profile, error) {
	profiles := make([]candidate.Profile, 0, len(rows))
	for i := range rows {
		p, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

// ============================================================================
// Filter Builder
// ============================================================================

// likePattern escapes LIKE metacharacters and wraps s for substring matching
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// buildFilterClauses turns filters into SQL conditions starting at placeholder argStart
func buildFilterClauses(f candidate.Filters, argStart int) ([]string, []any, int) {
	clauses := []string{}
	args := []any{}
	n := argStart

	if f.Location != "" {
		clauses = append(clauses, fmt.Sprintf("location ILIKE $%d", n))
		args = append(args, likePattern(f.Location))
		n++
	}

	if len(f.SkillIDs) > 0 {
		ids := make([]string, len(f.SkillIDs))
		for i, id := range f.SkillIDs {
			ids[i] = string(id)
		}
		clauses = append(clauses, fmt.Sprintf("skill_ids && $%d::text[]", n))
		args = append(args, pq.Array(ids))
		n++
	}

	if f.ExperienceTitle != "" || f.ExperienceCompany != "" {
		conds := []string{}
		if f.ExperienceTitle != "" {
			conds = append(conds, fmt.Sprintf("e->>'title' ILIKE $%d", n))
			args = append(args, likePattern(f.ExperienceTitle))
			n++
		}
		if f.ExperienceCompany != "" {
			conds = append(conds, fmt.Sprintf("e->>'company' ILIKE $%d", n))
			args = append(args, likePattern(f.ExperienceCompany))
			n++
		}
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM jsonb_array_elements(experiences) e WHERE %s)",
			strings.Join(conds, " AND "),
		))
	}

	return clauses, args, n
}

// ============================================================================
// Pool Reader
// ============================================================================

// FindPool returns up to limit embedded profiles matching filters
func (r *PostgresCandidateRepository) FindPool(ctx context.Context, filters candidate.Filters, limit int) ([]candidate.Profile, error) {
	clauses, args, n := buildFilterClauses(filters, 1)
	clauses = append([]string{"embedding IS NOT NULL"}, clauses...)

	query := fmt.Sprintf(`
		SELECT %s
		FROM candidate_profiles
		WHERE %s
		ORDER BY id
		LIMIT $%d`, profileColumns, strings.Join(clauses, " AND "), n)
	args = append(args, limit)

	rows := []profileRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find candidate pool: %w", err)
	}

	return rowsToProfiles(rows)
}

// KeywordSearch matches query against name and bio with ILIKE
func (r *PostgresCandidateRepository) KeywordSearch(
	ctx context.Context,
	filters candidate.Filters,
	query string,
	pagination kernel.PaginationOptions,
) (*kernel.Paginated[candidate.Profile], error) {
	pagination = pagination.Normalize()

	clauses, args, n := buildFilterClauses(filters, 1)
	if q := strings.TrimSpace(query); q != "" {
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR bio ILIKE $%d)", n, n))
		args = append(args, likePattern(q))
		n++
	}

	whereSQL := ""
	if len(clauses) > 0 {
		whereSQL = "WHERE " + strings.Join(clauses, " AND ")
	}

	// Count total
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM candidate_profiles %s`, whereSQL)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("count keyword matches: %w", err)
	}

	pageQuery := fmt.Sprintf(`
		SELECT %s
		FROM candidate_profiles
		%s
		ORDER BY id
		LIMIT $%d OFFSET $%d`, profileColumns, whereSQL, n, n+1)
	args = append(args, pagination.PageSize, pagination.Offset())

	rows := []profileRow{}
	if err := r.db.SelectContext(ctx, &rows, pageQuery, args...); err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	profiles, err := rowsToProfiles(rows)
	if err != nil {
		return nil, err
	}
	return kernel.NewPaginated(profiles, pagination, total), nil
}

// ============================================================================
// Repository Implementation
// ============================================================================

// GetByID retrieves a profile by ID
func (r *PostgresCandidateRepository) GetByID(ctx context.Context, id kernel.CandidateID) (*candidate.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM candidate_profiles WHERE id = $1`, profileColumns)

	var row profileRow
	if err := r.db.GetContext(ctx, &row, query, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, candidate.ErrCandidateNotFound().WithDetail("candidate_id", id)
		}
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return row.ToDomain()
}

// SetResumePath records the storage path of the latest résumé
func (r *PostgresCandidateRepository) SetResumePath(ctx context.Context, id kernel.CandidateID, path string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE candidate_profiles SET resume_path = $1, updated_at = NOW() WHERE id = $2`,
		path, string(id),
	)
	if err != nil {
		return fmt.Errorf("set resume path: %w", err)
	}
	return requireRow(result, id)
}

// UpdateEmbedding replaces the embedding column in one statement, so readers see
// either the previous vector or the new one. The write only lands while
// resume_path still names the document the vector was computed from.
func (r *PostgresCandidateRepository) UpdateEmbedding(ctx context.Context, id kernel.CandidateID, resumePath string, embedding kernel.Embedding) error {
	if !embedding.IsPresent() {
		return candidate.ErrInvalidRequest().WithDetail("reason", "empty embedding")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE candidate_profiles
		 SET embedding = $1, embedded_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND resume_path = $3`,
		pgvector.NewVector(embedding), string(id), resumePath,
	)
	if err != nil {
		return fmt.Errorf("update embedding: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return candidate.ErrResumeSuperseded().
			WithDetail("candidate_id", id).
			WithDetail("resume_path", resumePath)
	}
	return nil
}

func requireRow(result sql.Result, id kernel.CandidateID) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return candidate.ErrCandidateNotFound().WithDetail("candidate_id", id)
	}
	return nil
}
