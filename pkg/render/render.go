package render

import (
	"time"

	"github.com/Abraxas-365/fittsee/pkg/kernel"
)

// Status is the lifecycle state of a render job
type Status string

const (
	StatusQueued  Status = "QUEUED"
	StatusRunning Status = "RUNNING"
	StatusDone    Status = "DONE"
	StatusFailed  Status = "FAILED"
)

// IsTerminal reports whether no further transition can happen
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// DefaultMaxErrorLength bounds the stored error message, in runes
const DefaultMaxErrorLength = 500

// RenderJob is one requested render of a product in a size for a user.
// Only the worker mutates a job after creation.
type RenderJob struct {
	ID           kernel.JobID     `json:"job_id"`
	UserID       kernel.UserID    `json:"-"`
	ProductID    kernel.ProductID `json:"product_id"`
	Size         kernel.Size      `json:"size"`
	Status       Status           `json:"status"`
	Progress     int              `json:"progress"`
	VideoURL     *string          `json:"video_url"`
	ErrorMessage *string          `json:"error_message"`
	EnqueuedAt   *time.Time       `json:"-"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewJob returns a QUEUED job with a fresh id
func NewJob(userID kernel.UserID, productID kernel.ProductID, size kernel.Size) *RenderJob {
	now := time.Now().UTC()
	return &RenderJob{
		ID:        kernel.NewJobID(),
		UserID:    userID,
		ProductID: productID,
		Size:      size,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// VisibleTo reports whether the caller owns the job or is an admin
func (j *RenderJob) VisibleTo(caller kernel.AuthContext) bool {
	return caller.CanAccess(j.UserID)
}

// ============================================================================
// Transitions
// ============================================================================

// Start moves a QUEUED job to RUNNING
func (j *RenderJob) Start() error {
	if j.Status != StatusQueued {
		return ErrInvalidTransition(j.Status, StatusRunning)
	}
	j.Status = StatusRunning
	j.touch()
	return nil
}

// SetProgress records partial progress of a RUNNING job. 100 is reserved for DONE.
func (j *RenderJob) SetProgress(p int) error {
	if j.Status != StatusRunning {
		return ErrInvalidTransition(j.Status, StatusRunning)
	}
	j.Progress = min(max(p, 0), 99)
	j.touch()
	return nil
}

// Complete moves a RUNNING job to DONE with its artifact
func (j *RenderJob) Complete(videoURL string) error {
	if j.Status != StatusRunning {
		return ErrInvalidTransition(j.Status, StatusDone)
	}
	j.Status = StatusDone
	j.Progress = 100
	j.VideoURL = &videoURL
	j.ErrorMessage = nil
	j.touch()
	return nil
}

// Fail moves a RUNNING job to FAILED. Progress is left as it was.
func (j *RenderJob) Fail(message string, maxLen int) error {
	if j.Status != StatusRunning {
		return ErrInvalidTransition(j.Status, StatusFailed)
	}
	msg := TruncateMessage(message, maxLen)
	j.Status = StatusFailed
	j.ErrorMessage = &msg
	j.VideoURL = nil
	j.touch()
	return nil
}

func (j *RenderJob) touch() {
	j.UpdatedAt = time.Now().UTC()
}

// TruncateMessage cuts msg to at most maxLen runes. An empty msg becomes
// "render failed", which is never cut.
func TruncateMessage(msg string, maxLen int) string {
	if msg == "" {
		return "render failed"
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxErrorLength
	}
	runes := []rune(msg)
	if len(runes) <= maxLen {
		return msg
	}
	return string(runes[:maxLen])
}
