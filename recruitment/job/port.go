package job

import (
	"context"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
)

// Reader is the read side of the job store used by matching and résumé analysis
type Reader interface {
	// GetByID retrieves a job with its company name and skill names.
	// Returns ErrJobNotFound when the id is unknown.
	GetByID(ctx context.Context, id kernel.JobID) (*Job, error)
}
