package candidateapi

import (
	"context"
	"io"

	"github.com/Abraxas-365/talentmatch/pkg/iam/auth"
	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/recruitment/candidate"
	"github.com/gofiber/fiber/v2"
)

// ResumeUploader stores a résumé and queues it for embedding
type ResumeUploader interface {
	UploadResume(ctx context.Context, candidateID kernel.CandidateID, fileName string, content io.Reader) (*candidate.UploadResumeResponse, error)
}

// Handlers provides HTTP handlers for candidate operations
type Handlers struct {
	service ResumeUploader
}

// NewHandlers creates a new candidate handlers instance
func NewHandlers(service ResumeUploader) *Handlers {
	return &Handlers{
		service: service,
	}
}

// UploadResume stores the uploaded résumé and schedules its embedding
// POST /api/candidates/:id/resume
func (h *Handlers) UploadResume(c *fiber.Ctx) error {
	candidateID := kernel.CandidateID(c.Params("id"))
	if candidateID.IsEmpty() {
		return candidate.ErrInvalidRequest().WithDetail("id", "missing or empty")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return candidate.ErrInvalidRequest().WithDetail("file", "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return candidate.ErrInvalidRequest().WithDetail("file", err.Error())
	}
	defer file.Close()

	resp, err := h.service.UploadResume(c.Context(), candidateID, fileHeader.Filename, file)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// RegisterRoutes registers all candidate routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.UnifiedAuthMiddleware) {
	api := app.Group("/api/candidates")

	api.Post("/:id/resume",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeCandidatesWrite),
		handlers.UploadResume,
	)
}
