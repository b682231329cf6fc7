package candidate

import (
	"net/http"

	"github.com/Abraxas-365/talentmatch/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("CANDIDATE")

// Error codes
var (
	CodeCandidateNotFound      = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Candidate not found")
	CodeInvalidRequest         = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid request data")
	CodeUnsupportedFileType    = ErrRegistry.Register("UNSUPPORTED_FILE_TYPE", errx.TypeValidation, http.StatusBadRequest, "Unsupported résumé file type")
	CodeResumeNotFound         = ErrRegistry.Register("RESUME_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Résumé document not found")
	CodeTextExtractionFailed   = ErrRegistry.Register("TEXT_EXTRACTION_FAILED", errx.TypeBusiness, http.StatusUnprocessableEntity, "Could not extract text from résumé")
	CodeResumeSuperseded       = ErrRegistry.Register("RESUME_SUPERSEDED", errx.TypeConflict, http.StatusConflict, "Résumé was replaced by a newer upload")
	CodeEmbeddingFailed        = ErrRegistry.Register("EMBEDDING_FAILED", errx.TypeExternal, http.StatusBadGateway, "Embedding provider failed")
	CodeStorageFailed          = ErrRegistry.Register("STORAGE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to store résumé")
	CodeQueueFailed            = ErrRegistry.Register("QUEUE_FAILED", errx.TypeInternal, http.StatusServiceUnavailable, "Failed to queue embedding job")
	CodeInsufficientPermission = ErrRegistry.Register("INSUFFICIENT_PERMISSIONS", errx.TypeAuthorization, http.StatusForbidden, "Insufficient permissions")
)

// Helper functions
func ErrCandidateNotFound() *errx.Error {
	return ErrRegistry.New(CodeCandidateNotFound)
}

func ErrInvalidRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequest)
}

func ErrUnsupportedFileType() *errx.Error {
	return ErrRegistry.New(CodeUnsupportedFileType)
}

func ErrResumeNotFound() *errx.Error {
	return ErrRegistry.New(CodeResumeNotFound)
}

func ErrTextExtractionFailed() *errx.Error {
	return ErrRegistry.New(CodeTextExtractionFailed)
}

func ErrResumeSuperseded() *errx.Error {
	return ErrRegistry.New(CodeResumeSuperseded)
}

func ErrEmbeddingFailed() *errx.Error {
	return ErrRegistry.New(CodeEmbeddingFailed)
}

func ErrStorageFailed() *errx.Error {
	return ErrRegistry.New(CodeStorageFailed)
}

func ErrQueueFailed() *errx.Error {
	return ErrRegistry.New(CodeQueueFailed)
}

func ErrInsufficientPermissions() *errx.Error {
	return ErrRegistry.New(CodeInsufficientPermission)
}
