package rendersrv_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/catalog"
	"github.com/Abraxas-365/fittsee/pkg/catalog/cataloginfra"
	"github.com/Abraxas-365/fittsee/pkg/jobx"
	"github.com/Abraxas-365/fittsee/pkg/jobx/jobxmem"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/profile"
	"github.com/Abraxas-365/fittsee/pkg/ptrx"
	"github.com/Abraxas-365/fittsee/pkg/render"
	"github.com/Abraxas-365/fittsee/pkg/render/renderinfra"
	"github.com/Abraxas-365/fittsee/pkg/render/rendersrv"
)

var (
	owner    = kernel.AuthContext{UserID: "owner", Email: "owner@fittsee.local", Role: kernel.RoleCustomer}
	stranger = kernel.AuthContext{UserID: "stranger", Email: "x@fittsee.local", Role: kernel.RoleCustomer}
	admin    = kernel.AuthContext{UserID: "admin", Email: "admin@fittsee.local", Role: kernel.RoleAdmin}
)

type stubProfiles map[kernel.UserID]*profile.Profile

func (s stubProfiles) FindByUserID(_ context.Context, id kernel.UserID) (*profile.Profile, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, profile.ErrProfileNotFound()
}

func measured(id kernel.UserID, height, chest, shoulders *float64) *profile.Profile {
	p := profile.NewEmpty(id)
	p.HeightCM, p.ChestCM, p.ShouldersCM = height, chest, shoulders
	return p
}

// fakeExecutor returns url, err or panics with panicValue
type fakeExecutor struct {
	url        string
	err        error
	panicValue any
	calls      []render.Request
}

func (f *fakeExecutor) Render(_ context.Context, req render.Request) (string, error) {
	f.calls = append(f.calls, req)
	if f.panicValue != nil {
		panic(f.panicValue)
	}
	return f.url, f.err
}

type fixture struct {
	jobs     *renderinfra.MemoryRepository
	queue    *jobxmem.MemoryQueue
	client   *jobx.Client
	catalog  *cataloginfra.MemoryCatalogRepository
	profiles stubProfiles
	service  *rendersrv.Service
	product  *catalog.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		jobs:     renderinfra.NewMemoryRepository(),
		queue:    jobxmem.NewMemoryQueue(),
		catalog:  cataloginfra.NewMemoryCatalogRepository(),
		profiles: stubProfiles{owner.UserID: measured(owner.UserID, ptrx.Float64(180), ptrx.Float64(100), ptrx.Float64(50))},
	}
	f.client = jobx.NewClient(f.queue)

	f.product = catalog.NewProduct(catalog.ProductInput{Name: "Render Tee", Category: "tshirt", FitType: catalog.FitRegular})
	if err := f.catalog.Create(context.Background(), f.product); err != nil {
		t.Fatal(err)
	}

	f.service = rendersrv.NewService(f.jobs, f.profiles, f.catalog, f.client, rendersrv.Options{
		Queue:           "renders",
		EnqueueAttempts: 3,
		EnqueueBackoff:  time.Millisecond,
	})
	return f
}

func (f *fixture) queued(t *testing.T) *render.RenderJob {
	t.Helper()
	job, err := f.service.CreateJob(context.Background(), owner, f.product.ID, kernel.SizeM)
	if err != nil {
		t.Fatal(err)
	}
	return job
}

var errStoreDown = errors.New("connection reset by peer")
