package render

import (
	"context"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/catalog"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/profile"
)

// Repository is the job store. It is the single source of truth for job state.
type Repository interface {
	Create(ctx context.Context, job *RenderJob) error
	// FindByID returns JOB_NOT_FOUND for unknown or malformed ids.
	FindByID(ctx context.Context, id kernel.JobID) (*RenderJob, error)
	// Transition persists job only if the stored status still equals from.
	// It reports false when another writer moved the job first.
	Transition(ctx context.Context, job *RenderJob, from Status) (bool, error)
	MarkEnqueued(ctx context.Context, id kernel.JobID, at time.Time) error
	// ListUnqueued returns QUEUED jobs never marked enqueued and created before olderThan.
	ListUnqueued(ctx context.Context, olderThan time.Time, limit int) ([]*RenderJob, error)
	// Delete removes a job that is still QUEUED.
	Delete(ctx context.Context, id kernel.JobID) error
}

// Request is what the executor needs to produce an artifact
type Request struct {
	JobID     kernel.JobID
	ProductID kernel.ProductID
	Size      kernel.Size
}

// Executor produces the video for a job. It never touches the job store and
// calling it twice may produce a second artifact.
type Executor interface {
	Render(ctx context.Context, req Request) (string, error)
}

type ProfileFinder interface {
	FindByUserID(ctx context.Context, userID kernel.UserID) (*profile.Profile, error)
}

type ProductFinder interface {
	FindByID(ctx context.Context, id kernel.ProductID) (*catalog.Product, error)
}
