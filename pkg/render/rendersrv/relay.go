package rendersrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/jobx"
	"github.com/Abraxas-365/fittsee/pkg/logx"
	"github.com/Abraxas-365/fittsee/pkg/render"
)

const relayBatchSize = 100

// Relay re-pushes jobs that were stored but never reached the queue,
// e.g. when the API process died between commit and push.
type Relay struct {
	jobs  render.Repository
	queue jobx.Enqueuer
	name  string
	after time.Duration
}

func NewRelay(jobs render.Repository, queue jobx.Enqueuer, queueName string, after time.Duration) *Relay {
	return &Relay{jobs: jobs, queue: queue, name: queueName, after: after}
}

// Run is a jobx.TaskFunc
func (r *Relay) Run(ctx context.Context) error {
	now := time.Now().UTC()
	pending, err := r.jobs.ListUnqueued(ctx, now.Add(-r.after), relayBatchSize)
	if err != nil {
		return err
	}

	for _, job := range pending {
		if err := r.queue.Enqueue(ctx, r.name, job.ID.String()); err != nil {
			return err
		}
		if err := r.jobs.MarkEnqueued(ctx, job.ID, now); err != nil {
			return err
		}
		logx.WithFields(logx.Fields{"job_id": job.ID, "age": now.Sub(job.CreatedAt).String()}).
			Warn("relayed job that never reached the queue")
	}
	return nil
}
