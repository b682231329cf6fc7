package job

import (
	"net/http"

	"github.com/Abraxas-365/talentmatch/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("JOB")

// Error codes
var (
	CodeJobNotFound    = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Job not found")
	CodeInvalidJobData = ErrRegistry.Register("INVALID_DATA", errx.TypeInternal, http.StatusInternalServerError, "Stored job data is invalid")
)

func ErrJobNotFound() *errx.Error {
	return ErrRegistry.New(CodeJobNotFound)
}

func ErrInvalidJobData() *errx.Error {
	return ErrRegistry.New(CodeInvalidJobData)
}
