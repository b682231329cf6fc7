package analysis

import (
	"net/http"

	"github.com/Abraxas-365/talentmatch/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("ANALYSIS")

// Error codes
var (
	CodeAnalysisNotFound  = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Résumé analysis not found")
	CodeResumeNotFound    = ErrRegistry.Register("RESUME_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Résumé document not found")
	CodeInvalidRequest    = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid analysis request")
	CodeProviderFailed    = ErrRegistry.Register("PROVIDER_FAILED", errx.TypeExternal, http.StatusBadGateway, "Analysis provider failed")
	CodeMalformedResponse = ErrRegistry.Register("MALFORMED_RESPONSE", errx.TypeExternal, http.StatusBadGateway, "Analysis provider returned an unreadable response")
	CodeStorageFailed     = ErrRegistry.Register("STORAGE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to store résumé analysis")
)

func ErrAnalysisNotFound() *errx.Error {
	return ErrRegistry.New(CodeAnalysisNotFound)
}

func ErrResumeNotFound() *errx.Error {
	return ErrRegistry.New(CodeResumeNotFound)
}

func ErrInvalidRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequest)
}

func ErrProviderFailed() *errx.Error {
	return ErrRegistry.New(CodeProviderFailed)
}

func ErrMalformedResponse() *errx.Error {
	return ErrRegistry.New(CodeMalformedResponse)
}

func ErrStorageFailed() *errx.Error {
	return ErrRegistry.New(CodeStorageFailed)
}
