package kernel

type CandidateID string

func NewCandidateID(id string) CandidateID { return CandidateID(id) }
func (r CandidateID) String() string       { return string(r) }
func (r CandidateID) IsEmpty() bool        { return string(r) == "" }

type JobID string

func NewJobID(id string) JobID { return JobID(id) }
func (r JobID) String() string { return string(r) }
func (r JobID) IsEmpty() bool  { return string(r) == "" }

type AnalysisID string

func NewAnalysisID(id string) AnalysisID { return AnalysisID(id) }
func (r AnalysisID) String() string      { return string(r) }
func (r AnalysisID) IsEmpty() bool       { return string(r) == "" }
