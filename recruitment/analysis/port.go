package analysis

import (
	"context"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
)

// Store persists analyses keyed by (user, job)
type Store interface {
	// Upsert inserts or replaces the analysis of result.UserID for result.JobID.
	// ID and CreatedAt are set from the stored row.
	Upsert(ctx context.Context, result *Result) error

	// Get returns the analysis for the pair or ANALYSIS.NOT_FOUND
	Get(ctx context.Context, userID kernel.UserID, jobID kernel.JobID) (*Result, error)
}
