package render

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Abraxas-365/fittsee/pkg/errx"
)

// ErrRegistry has no prefix so clients see the bare codes
var ErrRegistry = errx.NewRegistry("")

var (
	CodeProfileMissing    = ErrRegistry.Register("PROFILE_MISSING", errx.TypeConflict, http.StatusConflict, "User profile not found.")
	CodeProfileIncomplete = ErrRegistry.Register("PROFILE_INCOMPLETE", errx.TypeConflict, http.StatusConflict, "Complete your profile measurements first.")
	CodeProductNotFound   = ErrRegistry.Register("PRODUCT_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Product not found or inactive")
	CodeInvalidSize       = ErrRegistry.Register("INVALID_SIZE", errx.TypeValidation, http.StatusBadRequest, "Size must be one of XS, S, M, L, XL")
	CodeJobNotFound       = ErrRegistry.Register("JOB_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Job not found")
	CodeForbidden         = ErrRegistry.Register("FORBIDDEN", errx.TypeForbidden, http.StatusForbidden, "Not authorized to view this job")
	CodeQueueUnavailable  = ErrRegistry.Register("QUEUE_UNAVAILABLE", errx.TypeUnavailable, http.StatusServiceUnavailable, "Render queue is unavailable, try again later")
	CodeInvalidTransition = ErrRegistry.Register("INVALID_TRANSITION", errx.TypeInternal, http.StatusInternalServerError, "Invalid render job transition")
)

func ErrProfileMissing() *errx.Error  { return ErrRegistry.New(CodeProfileMissing) }
func ErrProductNotFound() *errx.Error { return ErrRegistry.New(CodeProductNotFound) }
func ErrJobNotFound() *errx.Error     { return ErrRegistry.New(CodeJobNotFound) }
func ErrForbidden() *errx.Error       { return ErrRegistry.New(CodeForbidden) }

func ErrInvalidSize(size string) *errx.Error {
	return ErrRegistry.New(CodeInvalidSize).WithDetail("size", size)
}

func ErrQueueUnavailable(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeQueueUnavailable, cause)
}

func ErrInvalidTransition(from, to Status) *errx.Error {
	return ErrRegistry.New(CodeInvalidTransition).
		WithDetail("from", from).
		WithDetail("to", to)
}

// ProfileIncompleteError lists the required measurements the caller has not filled in
type ProfileIncompleteError struct {
	MissingFields []string
}

func (e *ProfileIncompleteError) Error() string {
	return fmt.Sprintf("profile incomplete: missing %s", strings.Join(e.MissingFields, ", "))
}

// Unwrap exposes the registered error so HTTP mapping and errx.IsCode work.
func (e *ProfileIncompleteError) Unwrap() error {
	return ErrRegistry.New(CodeProfileIncomplete).WithDetail("missing_fields", e.MissingFields)
}
