package candidate

import (
	"context"
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
)

// PoolReader is the read-only view of candidate profiles used for ranking
type PoolReader interface {
	// FindPool returns up to limit profiles that satisfy filters and carry an
	// embedding, ordered by id
	FindPool(ctx context.Context, filters Filters, limit int) ([]Profile, error)

	// KeywordSearch returns profiles whose name or bio contains query (case-insensitive)
	// and that satisfy filters, ordered by id
	KeywordSearch(ctx context.Context, filters Filters, query string, pagination kernel.PaginationOptions) (*kernel.Paginated[Profile], error)
}

type Repository interface {
	PoolReader

	// GetByID retrieves a profile by ID
	GetByID(ctx context.Context, id kernel.CandidateID) (*Profile, error)

	// SetResumePath records where the latest résumé document was stored
	SetResumePath(ctx context.Context, id kernel.CandidateID, path string) error

	// UpdateEmbedding replaces the whole embedding in a single write, but only while
	// the profile still points at resumePath. Returns ErrResumeSuperseded otherwise.
	UpdateEmbedding(ctx context.Context, id kernel.CandidateID, resumePath string, embedding kernel.Embedding) error
}

// EmbeddingQueue carries résumé embedding jobs to the background workers
type EmbeddingQueue interface {
	// Enqueue adds a job to the ready queue
	Enqueue(ctx context.Context, job *EmbeddingJob) error

	// Dequeue blocks up to timeout for the next job. Returns nil, nil on timeout.
	Dequeue(ctx context.Context, timeout time.Duration) (*EmbeddingJob, error)

	// EnqueueDelayed schedules a job to become ready after delay
	EnqueueDelayed(ctx context.Context, job *EmbeddingJob, delay time.Duration) error

	// MoveDelayedToReady moves due delayed jobs to the ready queue
	MoveDelayedToReady(ctx context.Context) (int, error)
}
