package match

import (
	"net/http"

	"github.com/Abraxas-365/talentmatch/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("MATCH")

// Error codes
var (
	CodeInvalidRequest  = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid ranking request")
	CodeEmbeddingFailed = ErrRegistry.Register("EMBEDDING_FAILED", errx.TypeExternal, http.StatusBadGateway, "Job embedding could not be generated")
	CodePoolReadFailed  = ErrRegistry.Register("POOL_READ_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Candidate pool could not be read")
	CodePoolCapExceeded = ErrRegistry.Register("POOL_CAP_EXCEEDED", errx.TypeBusiness, http.StatusOK, "Candidate pool truncated at cap")
	CodeCacheFailed     = ErrRegistry.Register("CACHE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Match cache operation failed")
	CodeRankingAborted  = ErrRegistry.Register("RANKING_ABORTED", errx.TypeInternal, http.StatusServiceUnavailable, "Ranking was cancelled")
)

func ErrInvalidRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequest)
}

func ErrEmbeddingFailed() *errx.Error {
	return ErrRegistry.New(CodeEmbeddingFailed)
}

func ErrPoolReadFailed() *errx.Error {
	return ErrRegistry.New(CodePoolReadFailed)
}

func ErrPoolCapExceeded() *errx.Error {
	return ErrRegistry.New(CodePoolCapExceeded)
}

func ErrCacheFailed() *errx.Error {
	return ErrRegistry.New(CodeCacheFailed)
}

func ErrRankingAborted() *errx.Error {
	return ErrRegistry.New(CodeRankingAborted)
}
