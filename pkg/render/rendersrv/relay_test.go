package rendersrv_test

import (
	"context"
	"testing"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/render"
	"github.com/Abraxas-365/fittsee/pkg/render/rendersrv"
)

func TestRelayPushesStrandedJobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stranded := render.NewJob(owner.UserID, f.product.ID, kernel.SizeL)
	stranded.CreatedAt = time.Now().Add(-5 * time.Minute)
	if err := f.jobs.Create(ctx, stranded); err != nil {
		t.Fatal(err)
	}
	fresh := render.NewJob(owner.UserID, f.product.ID, kernel.SizeS)
	if err := f.jobs.Create(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	relay := rendersrv.NewRelay(f.jobs, f.client, "renders", time.Minute)
	if err := relay.Run(ctx); err != nil {
		t.Fatal(err)
	}

	if n, _ := f.queue.Len(ctx, "renders"); n != 1 {
		t.Fatalf("expected only the stranded job to be pushed, got %d", n)
	}
	msg, _ := f.queue.Pop(ctx, "renders", "test", time.Millisecond)
	if msg == nil || msg.Payload != stranded.ID.String() {
		t.Errorf("expected stranded job on queue, got %+v", msg)
	}

	// Marked jobs are not pushed twice.
	if err := relay.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if n, _ := f.queue.Len(ctx, "renders"); n != 0 {
		t.Errorf("expected no second push, queue has %d", n)
	}
}

func TestRelaySurfacesQueueErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stranded := render.NewJob(owner.UserID, f.product.ID, kernel.SizeL)
	stranded.CreatedAt = time.Now().Add(-time.Hour)
	_ = f.jobs.Create(ctx, stranded)
	f.queue.FailPushes(errStoreDown)

	if err := rendersrv.NewRelay(f.jobs, f.client, "renders", time.Minute).Run(ctx); err == nil {
		t.Error("expected relay to report the queue error")
	}
	job, _ := f.jobs.FindByID(ctx, stranded.ID)
	if job.EnqueuedAt != nil {
		t.Error("job must stay unmarked when the push failed")
	}
}
