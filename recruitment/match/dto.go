package match

import (
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/recruitment/candidate"
)

// RankRequest asks for the ranked candidates of a job
type RankRequest struct {
	JobID          kernel.JobID      `json:"job_id"`
	Filters        candidate.Filters `json:"filters"`
	Page           int               `json:"page" query:"page"`
	PageSize       int               `json:"page_size" query:"page_size"`
	ForceRecompute bool              `json:"force" query:"force"`
	// Query is the keyword used when ranking falls back to keyword search.
	// Defaults to the job title.
	Query string `json:"q,omitempty" query:"q"`
}

// Pagination returns the page options of the request
func (r RankRequest) Pagination() kernel.PaginationOptions {
	return kernel.PaginationOptions{Page: r.Page, PageSize: r.PageSize}
}

// RankedItem is one candidate in a ranking response. Score is nil for keyword
// search results.
type RankedItem struct {
	CandidateID kernel.CandidateID `json:"candidate_id"`
	Name        string             `json:"name"`
	Bio         string             `json:"bio,omitempty"`
	Location    string             `json:"location,omitempty"`
	AvatarURL   string             `json:"avatar_url,omitempty"`
	Score       *float64           `json:"score"`
}

// RankResponse is a page of ranked candidates. Cached is true when served from a
// stored ranking; Fallback is true when keyword search replaced vector ranking.
type RankResponse struct {
	Items      []RankedItem `json:"items"`
	TotalItems int          `json:"total_items"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
	Cached     bool         `json:"cached"`
	Fallback   bool         `json:"fallback"`
	AnalyzedAt *time.Time   `json:"analyzed_at,omitempty"`
}

// NewRankResponse pages over a stored ranking
func NewRankResponse(result *MatchResult, opts kernel.PaginationOptions, cached bool) *RankResponse {
	page := kernel.Paginate(result.RankedCandidates, opts)

	items := make([]RankedItem, len(page.Items))
	for i, rc := range page.Items {
		score := rc.Score
		items[i] = RankedItem{
			CandidateID: rc.CandidateID,
			Name:        rc.Name,
			Bio:         rc.Bio,
			Location:    rc.Location,
			AvatarURL:   rc.AvatarURL,
			Score:       &score,
		}
	}

	resp := &RankResponse{
		Items:      items,
		TotalItems: page.Page.Total,
		Page:       page.Page.Number,
		PageSize:   page.Page.Size,
		TotalPages: page.Page.Pages,
		Cached:     cached,
	}
	if !result.AnalyzedAt.IsZero() {
		at := result.AnalyzedAt
		resp.AnalyzedAt = &at
	}
	return resp
}

// NewFallbackResponse wraps a keyword search page. Items carry no score.
func NewFallbackResponse(page *kernel.Paginated[candidate.Profile]) *RankResponse {
	items := make([]RankedItem, len(page.Items))
	for i, p := range page.Items {
		items[i] = RankedItem{
			CandidateID: p.ID,
			Name:        p.Name,
			Bio:         p.Bio,
			Location:    p.Location,
			AvatarURL:   p.AvatarURL,
		}
	}

	return &RankResponse{
		Items:      items,
		TotalItems: page.Page.Total,
		Page:       page.Page.Number,
		PageSize:   page.Page.Size,
		TotalPages: page.Page.Pages,
		Fallback:   true,
	}
}
