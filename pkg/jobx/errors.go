package jobx

import (
	"net/http"

	"github.com/Abraxas-365/fittsee/pkg/errx"
)

var jobxErrors = errx.NewRegistry("JOBX")

var (
	ErrEnqueueFailed  = jobxErrors.Register("ENQUEUE_FAILED", errx.TypeUnavailable, http.StatusServiceUnavailable, "Failed to enqueue job")
	ErrDequeueFailed  = jobxErrors.Register("DEQUEUE_FAILED", errx.TypeUnavailable, http.StatusServiceUnavailable, "Failed to dequeue job")
	ErrAckFailed      = jobxErrors.Register("ACK_FAILED", errx.TypeUnavailable, http.StatusServiceUnavailable, "Failed to acknowledge job")
	ErrNoHandler      = jobxErrors.Register("NO_HANDLER", errx.TypeValidation, http.StatusBadRequest, "No handler registered for queue")
	ErrInvalidJob     = jobxErrors.Register("INVALID_JOB", errx.TypeValidation, http.StatusBadRequest, "Invalid job definition")
	ErrAlreadyRunning = jobxErrors.Register("ALREADY_RUNNING", errx.TypeConflict, http.StatusConflict, "Worker is already running")
	ErrHandlerPanic   = jobxErrors.Register("HANDLER_PANIC", errx.TypeInternal, http.StatusInternalServerError, "Job handler panicked")
)
