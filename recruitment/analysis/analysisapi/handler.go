package analysisapi

import (
	"context"
	"strings"

	"github.com/Abraxas-365/talentmatch/pkg/iam/auth"
	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/recruitment/analysis"
	"github.com/gofiber/fiber/v2"
)

// Analyzer is the résumé analysis service behind these routes
type Analyzer interface {
	OptimizeResume(ctx context.Context, req analysis.OptimizeRequest) (*analysis.Result, error)
	GetAnalysis(ctx context.Context, userID kernel.UserID, jobID kernel.JobID) (*analysis.Result, error)
}

// Handlers provides HTTP handlers for résumé analysis
type Handlers struct {
	service Analyzer
}

// NewHandlers creates a new analysis handlers instance
func NewHandlers(service Analyzer) *Handlers {
	return &Handlers{
		service: service,
	}
}

// OptimizeResume analyzes the caller's résumé against a job
// POST /api/jobs/:id/resume-analysis
func (h *Handlers) OptimizeResume(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingToken()
	}

	var req analysis.OptimizeRequest
	if err := c.BodyParser(&req); err != nil {
		return analysis.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}
	req.UserID = authCtx.UserID
	req.JobID = kernel.JobID(c.Params("id"))
	req.ResumePath = strings.TrimSpace(req.ResumePath)

	result, err := h.service.OptimizeResume(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// GetAnalysis returns the caller's stored analysis for a job
// GET /api/jobs/:id/resume-analysis
func (h *Handlers) GetAnalysis(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingToken()
	}

	jobID := kernel.JobID(c.Params("id"))
	if jobID.IsEmpty() {
		return analysis.ErrInvalidRequest().WithDetail("id", "missing or empty")
	}

	result, err := h.service.GetAnalysis(c.Context(), authCtx.UserID, jobID)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// RegisterRoutes registers all analysis routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.UnifiedAuthMiddleware) {
	api := app.Group("/api/jobs")

	api.Post("/:id/resume-analysis",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeAnalysisWrite),
		handlers.OptimizeResume,
	)

	api.Get("/:id/resume-analysis",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeAnalysisRead),
		handlers.GetAnalysis,
	)
}
