package analysis

import "github.com/Abraxas-365/talentmatch/pkg/kernel"

// OptimizeRequest asks for a gap analysis of the résumé at ResumePath against a job
type OptimizeRequest struct {
	UserID     kernel.UserID `json:"-"`
	JobID      kernel.JobID  `json:"-"`
	ResumePath string        `json:"resume_path"`
}

// Validate checks the request fields
func (r OptimizeRequest) Validate() error {
	switch {
	case r.UserID.IsEmpty():
		return ErrInvalidRequest().WithDetail("user_id", "missing or empty")
	case r.JobID.IsEmpty():
		return ErrInvalidRequest().WithDetail("job_id", "missing or empty")
	case r.ResumePath == "":
		return ErrInvalidRequest().WithDetail("resume_path", "missing or empty")
	}
	return nil
}
