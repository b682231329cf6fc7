package matchapi

import (
	"context"
	"strings"

	"github.com/Abraxas-365/talentmatch/pkg/iam/auth"
	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/recruitment/candidate"
	"github.com/Abraxas-365/talentmatch/recruitment/match"
	"github.com/gofiber/fiber/v2"
)

// Ranker is the ranking service behind the match routes
type Ranker interface {
	Rank(ctx context.Context, req match.RankRequest) (*match.RankResponse, error)
	Invalidate(ctx context.Context, jobID kernel.JobID) error
}

// Handlers provides HTTP handlers for candidate ranking
type Handlers struct {
	ranker Ranker
}

// NewHandlers creates a new match handlers instance
func NewHandlers(ranker Ranker) *Handlers {
	return &Handlers{
		ranker: ranker,
	}
}

// RankCandidates returns the ranked candidates of a job
// GET /api/jobs/:id/candidates
func (h *Handlers) RankCandidates(c *fiber.Ctx) error {
	jobID := kernel.JobID(c.Params("id"))
	if jobID.IsEmpty() {
		return match.ErrInvalidRequest().WithDetail("id", "missing or empty")
	}

	req := match.RankRequest{
		JobID:          jobID,
		Filters:        parseFilters(c),
		Page:           c.QueryInt("page", kernel.DefaultPage),
		PageSize:       c.QueryInt("page_size", kernel.DefaultPageSize),
		ForceRecompute: c.QueryBool("force", false),
		Query:          strings.TrimSpace(c.Query("q")),
	}

	resp, err := h.ranker.Rank(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// InvalidateMatches drops the cached ranking of a job
// DELETE /api/jobs/:id/matches
func (h *Handlers) InvalidateMatches(c *fiber.Ctx) error {
	jobID := kernel.JobID(c.Params("id"))
	if jobID.IsEmpty() {
		return match.ErrInvalidRequest().WithDetail("id", "missing or empty")
	}

	if err := h.ranker.Invalidate(c.Context(), jobID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ============================================================================
// Helpers
// ============================================================================

func parseFilters(c *fiber.Ctx) candidate.Filters {
	var skills []kernel.SkillID
	for _, s := range strings.Split(c.Query("skills"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, kernel.SkillID(s))
		}
	}

	return candidate.Filters{
		Location:          strings.TrimSpace(c.Query("location")),
		SkillIDs:          skills,
		ExperienceTitle:   strings.TrimSpace(c.Query("title")),
		ExperienceCompany: strings.TrimSpace(c.Query("company")),
	}
}

// RegisterRoutes registers all match routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.UnifiedAuthMiddleware) {
	api := app.Group("/api/jobs")

	api.Get("/:id/candidates",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeMatchesRead),
		handlers.RankCandidates,
	)

	api.Delete("/:id/matches",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeMatchesWrite),
		handlers.InvalidateMatches,
	)
}
