package rendersrv

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/jobx"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/logx"
	"github.com/Abraxas-365/fittsee/pkg/render"
)

// Outcome is what happened to one job in one delivery
type Outcome string

const (
	// OutcomeDropped: the id was not in the job store.
	OutcomeDropped Outcome = "dropped"
	// OutcomeSkipped: the job had already left QUEUED (redelivery).
	OutcomeSkipped Outcome = "skipped"
	OutcomeDone    Outcome = "done"
	OutcomeFailed  Outcome = "failed"
)

// Processor drives one job from QUEUED to a terminal state
type Processor struct {
	jobs      render.Repository
	executor  render.Executor
	maxErrLen int
}

func NewProcessor(jobs render.Repository, executor render.Executor, maxErrLen int) *Processor {
	if maxErrLen <= 0 {
		maxErrLen = render.DefaultMaxErrorLength
	}
	return &Processor{jobs: jobs, executor: executor, maxErrLen: maxErrLen}
}

// Process handles one delivery of jobID. The Outcome is recorded on the job;
// a non-nil error means the worker could not persist state and the job may
// be left inconsistent.
func (p *Processor) Process(ctx context.Context, jobID kernel.JobID) (Outcome, error) {
	log := logx.WithField("job_id", jobID)

	job, err := p.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errx.IsCode(err, render.CodeJobNotFound) {
			log.Warn("job not found in store, dropping message")
			return OutcomeDropped, nil
		}
		return "", err
	}

	if err := job.Start(); err != nil {
		log.WithField("status", job.Status).Warn("job is not QUEUED, skipping redelivered message")
		return OutcomeSkipped, nil
	}
	ok, err := p.jobs.Transition(ctx, job, render.StatusQueued)
	if err != nil {
		return "", err
	}
	if !ok {
		log.Warn("job left QUEUED concurrently, skipping")
		return OutcomeSkipped, nil
	}
	log.Info("job running")

	url, runErr := p.run(ctx, job)

	outcome := OutcomeDone
	if runErr == nil {
		_ = job.Complete(url)
	} else {
		outcome = OutcomeFailed
		_ = job.Fail(runErr.Error(), p.maxErrLen)
	}

	ok, err = p.jobs.Transition(ctx, job, render.StatusRunning)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errx.New("job left RUNNING while being rendered", errx.TypeInternal).
			WithDetail("job_id", jobID).
			WithDetail("target", job.Status)
	}

	if runErr != nil {
		log.WithError(runErr).Error("render failed")
	} else {
		log.WithField("video_url", url).Info("render done")
	}
	return outcome, nil
}

// run calls the executor, turning a panic into an ordinary failure
func (p *Processor) run(ctx context.Context, job *render.RenderJob) (url string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer panic: %v", r)
		}
	}()
	return p.executor.Render(ctx, render.Request{
		JobID:     job.ID,
		ProductID: job.ProductID,
		Size:      job.Size,
	})
}

// Handler adapts the processor to a jobx queue handler
func (p *Processor) Handler() jobx.HandlerFunc {
	return func(ctx context.Context, msg *jobx.Message) error {
		outcome, err := p.Process(ctx, kernel.JobID(msg.Payload))
		if err != nil {
			return errx.Wrap(err, "critical worker error", errx.TypeInternal).WithDetail("job_id", msg.Payload)
		}
		logx.WithFields(logx.Fields{"job_id": msg.Payload, "outcome": outcome}).Debug("message processed")
		return nil
	}
}
