package kernel

type JobTitle string

type JobDescription string

type JobRequirement string

type CompanyName string

// ExperienceLevel is the seniority a job asks for, e.g. "Senior"
type ExperienceLevel string

// JobType is the contract kind, e.g. "Full-time"
type JobType string

// Embedding is a fixed-length semantic vector. A nil or empty Embedding means "absent".
type Embedding []float32

// Dim returns the vector length
func (e Embedding) Dim() int { return len(e) }

// IsPresent reports whether the embedding has been computed
func (e Embedding) IsPresent() bool { return len(e) > 0 }
