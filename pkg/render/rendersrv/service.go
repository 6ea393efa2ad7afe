package rendersrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/asyncx"
	"github.com/Abraxas-365/fittsee/pkg/catalog"
	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/jobx"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/logx"
	"github.com/Abraxas-365/fittsee/pkg/profile"
	"github.com/Abraxas-365/fittsee/pkg/render"
)

// Options configures how new jobs reach the work queue
type Options struct {
	Queue           string
	EnqueueAttempts int
	EnqueueBackoff  time.Duration
}

// Service creates render jobs and answers status reads. It never changes a
// job after creation.
type Service struct {
	jobs     render.Repository
	profiles render.ProfileFinder
	products render.ProductFinder
	queue    jobx.Enqueuer
	opts     Options
}

func NewService(
	jobs render.Repository,
	profiles render.ProfileFinder,
	products render.ProductFinder,
	queue jobx.Enqueuer,
	opts Options,
) *Service {
	return &Service{
		jobs:     jobs,
		profiles: profiles,
		products: products,
		queue:    queue,
		opts:     opts,
	}
}

// CreateJob checks the caller's profile and the product, stores a QUEUED job
// and pushes its id on the work queue.
func (s *Service) CreateJob(ctx context.Context, caller kernel.AuthContext, productID kernel.ProductID, size kernel.Size) (*render.RenderJob, error) {
	if !size.IsValid() {
		return nil, render.ErrInvalidSize(size.String())
	}

	p, err := s.profiles.FindByUserID(ctx, caller.UserID)
	if err != nil {
		if errx.IsCode(err, profile.CodeProfileNotFound) {
			return nil, render.ErrProfileMissing()
		}
		return nil, err
	}
	if missing := p.MissingMeasurements(); len(missing) > 0 {
		return nil, &render.ProfileIncompleteError{MissingFields: missing}
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errx.IsCode(err, catalog.CodeProductNotFound) {
			return nil, render.ErrProductNotFound().WithDetail("product_id", productID)
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, render.ErrProductNotFound().WithDetail("product_id", productID)
	}

	job := render.NewJob(caller.UserID, productID, size)
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	log := logx.WithFields(logx.Fields{"job_id": job.ID, "user_id": caller.UserID, "product_id": productID, "size": size})

	if err := s.enqueue(ctx, job.ID); err != nil {
		log.WithError(err).Error("render queue unavailable, discarding job")
		if delErr := s.jobs.Delete(context.WithoutCancel(ctx), job.ID); delErr != nil {
			log.WithError(delErr).Error("failed to discard job; relay will enqueue it later")
		}
		return nil, render.ErrQueueUnavailable(err).WithDetail("attempts", s.opts.EnqueueAttempts)
	}

	now := time.Now().UTC()
	if err := s.jobs.MarkEnqueued(ctx, job.ID, now); err != nil {
		// The relay may push it again; the worker skips jobs that already left QUEUED.
		log.WithError(err).Warn("failed to mark job enqueued")
	} else {
		job.EnqueuedAt = &now
	}

	log.Info("render job queued")
	return job, nil
}

func (s *Service) enqueue(ctx context.Context, id kernel.JobID) error {
	_, err := asyncx.RetryWithBackoff(ctx, s.opts.EnqueueAttempts, s.opts.EnqueueBackoff,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.queue.Enqueue(ctx, s.opts.Queue, id.String())
		})
	return err
}

// GetJob returns the job if the caller owns it or is an admin
func (s *Service) GetJob(ctx context.Context, caller kernel.AuthContext, id kernel.JobID) (*render.RenderJob, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.VisibleTo(caller) {
		return nil, render.ErrForbidden().WithDetail("job_id", id)
	}
	return job, nil
}
