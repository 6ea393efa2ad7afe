package rendersrv_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/profile"
	"github.com/Abraxas-365/fittsee/pkg/ptrx"
	"github.com/Abraxas-365/fittsee/pkg/render"
	"github.com/Abraxas-365/fittsee/pkg/render/rendersrv"
)

func TestCreateJobQueuesAndReturnsJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job := f.queued(t)
	if job.Status != render.StatusQueued || job.Progress != 0 || job.VideoURL != nil || job.ErrorMessage != nil {
		t.Errorf("unexpected job: %+v", job)
	}
	if job.EnqueuedAt == nil {
		t.Error("expected job to be marked enqueued")
	}

	if n, _ := f.queue.Len(ctx, "renders"); n != 1 {
		t.Fatalf("expected one message on the queue, got %d", n)
	}
	msg, _ := f.queue.Pop(ctx, "renders", "test", 0)
	if msg == nil || msg.Payload != job.ID.String() {
		t.Errorf("expected the job id as payload, got %+v", msg)
	}

	stored, err := f.service.GetJob(ctx, owner, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != render.StatusQueued || stored.Progress != 0 {
		t.Errorf("expected stored job to be QUEUED/0, got %s/%d", stored.Status, stored.Progress)
	}
}

func TestCreateJobPreconditionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nobody := kernel.AuthContext{UserID: "nobody", Role: kernel.RoleCustomer}

	// No profile wins over a missing product.
	if _, err := f.service.CreateJob(ctx, nobody, "missing", kernel.SizeM); !errx.IsCode(err, render.CodeProfileMissing) {
		t.Errorf("expected PROFILE_MISSING, got %v", err)
	}

	// Incomplete profile wins over a missing product.
	f.profiles["partial"] = measured("partial", ptrx.Float64(180), ptrx.Float64(0), nil)
	_, err := f.service.CreateJob(ctx, kernel.AuthContext{UserID: "partial", Role: kernel.RoleCustomer}, "missing", kernel.SizeM)
	var incomplete *render.ProfileIncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected ProfileIncompleteError, got %v", err)
	}
	if want := []string{profile.FieldChest, profile.FieldShoulders}; !reflect.DeepEqual(incomplete.MissingFields, want) {
		t.Errorf("expected %v, got %v", want, incomplete.MissingFields)
	}
	if !errx.IsCode(err, render.CodeProfileIncomplete) {
		t.Errorf("expected PROFILE_INCOMPLETE code, got %q", errx.CodeOf(err))
	}

	if _, err := f.service.CreateJob(ctx, owner, "missing", kernel.SizeM); !errx.IsCode(err, render.CodeProductNotFound) {
		t.Errorf("expected PRODUCT_NOT_FOUND, got %v", err)
	}
	if _, err := f.service.CreateJob(ctx, owner, f.product.ID, "XXL"); !errx.IsCode(err, render.CodeInvalidSize) {
		t.Errorf("expected INVALID_SIZE, got %v", err)
	}
	if f.jobs.Len() != 0 {
		t.Errorf("failed preconditions must not persist jobs, found %d", f.jobs.Len())
	}
}

func TestCreateJobInactiveProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.product.IsActive = false
	if err := f.catalog.Update(ctx, f.product); err != nil {
		t.Fatal(err)
	}

	if _, err := f.service.CreateJob(ctx, owner, f.product.ID, kernel.SizeM); !errx.IsCode(err, render.CodeProductNotFound) {
		t.Errorf("expected PRODUCT_NOT_FOUND for inactive product, got %v", err)
	}
	if f.jobs.Len() != 0 {
		t.Error("no job must be persisted for an inactive product")
	}
}

func TestCreateJobQueueUnavailable(t *testing.T) {
	f := newFixture(t)
	f.queue.FailPushes(errors.New("dial tcp 127.0.0.1:6379: connect: connection refused"))

	_, err := f.service.CreateJob(context.Background(), owner, f.product.ID, kernel.SizeM)
	if !errx.IsCode(err, render.CodeQueueUnavailable) {
		t.Fatalf("expected QUEUE_UNAVAILABLE, got %v", err)
	}
	var e *errx.Error
	if !errx.As(err, &e) || e.HTTPStatus != 503 {
		t.Errorf("expected 503, got %v", err)
	}
	if f.jobs.Len() != 0 {
		t.Error("the job must be discarded when it cannot be queued")
	}
}

func TestCreateJobStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.jobs.FailWrites(errStoreDown)

	if _, err := f.service.CreateJob(context.Background(), owner, f.product.ID, kernel.SizeM); err == nil {
		t.Fatal("expected store failure to surface")
	}
	if n, _ := f.queue.Len(context.Background(), "renders"); n != 0 {
		t.Error("nothing must be queued when the job cannot be stored")
	}
}

func TestGetJobAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.queued(t)

	if _, err := f.service.GetJob(ctx, stranger, job.ID); !errx.IsCode(err, render.CodeForbidden) {
		t.Errorf("expected FORBIDDEN for stranger, got %v", err)
	}
	if _, err := f.service.GetJob(ctx, admin, job.ID); err != nil {
		t.Errorf("admin must read any job, got %v", err)
	}
	if _, err := f.service.GetJob(ctx, owner, "not-a-uuid"); !errx.IsCode(err, render.CodeJobNotFound) {
		t.Errorf("expected JOB_NOT_FOUND, got %v", err)
	}

	first, _ := f.service.GetJob(ctx, owner, job.ID)
	second, _ := f.service.GetJob(ctx, owner, job.ID)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated reads must return identical jobs")
	}
}

func TestGetJobAccessAfterCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	done := f.queued(t)
	exec := &fakeExecutor{url: "/static/renders/" + done.ID.String() + ".mp4"}
	if _, err := rendersrv.NewProcessor(f.jobs, exec, 500).Process(ctx, done.ID); err != nil {
		t.Fatal(err)
	}

	failed := f.queued(t)
	exec = &fakeExecutor{err: errors.New("renderer crashed")}
	if _, err := rendersrv.NewProcessor(f.jobs, exec, 500).Process(ctx, failed.ID); err != nil {
		t.Fatal(err)
	}

	for name, want := range map[string]struct {
		id     kernel.JobID
		status render.Status
	}{
		"done":   {done.ID, render.StatusDone},
		"failed": {failed.ID, render.StatusFailed},
	} {
		got, err := f.service.GetJob(ctx, owner, want.id)
		if err != nil || got.Status != want.status {
			t.Fatalf("%s: expected owner to read %s job, got %+v, %v", name, want.status, got, err)
		}
		if _, err := f.service.GetJob(ctx, stranger, want.id); !errx.IsCode(err, render.CodeForbidden) {
			t.Errorf("%s: expected FORBIDDEN for stranger, got %v", name, err)
		}
	}
}
