package match

import (
	"context"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
)

// Cache persists the latest ranking per job across restarts
type Cache interface {
	// Get returns the stored ranking for jobID. ok is false when none exists.
	Get(ctx context.Context, jobID kernel.JobID) (result *MatchResult, ok bool, err error)

	// Upsert replaces any ranking stored for result.JobID
	Upsert(ctx context.Context, result *MatchResult) error

	// Delete removes the ranking for jobID. Deleting a missing entry is not an error.
	Delete(ctx context.Context, jobID kernel.JobID) error
}

// Embedder turns a job's query text into a vector
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}
