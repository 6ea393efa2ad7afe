package main

import (
	"context"
	"testing"

	"github.com/Abraxas-365/fittsee/pkg/catalog"
	"github.com/Abraxas-365/fittsee/pkg/catalog/cataloginfra"
	"github.com/Abraxas-365/fittsee/pkg/catalog/catalogsrv"
	"github.com/Abraxas-365/fittsee/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
)

func TestCatalogSeederIsIdempotent(t *testing.T) {
	files, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	repo := cataloginfra.NewMemoryCatalogRepository()
	svc := catalogsrv.NewCatalogService(repo, repo, files, "/static")
	seeder := &catalogSeeder{catalog: svc, assets: repo, publicBase: "/static"}
	ctx := context.Background()

	for range 2 {
		if err := seeder.seed(ctx); err != nil {
			t.Fatal(err)
		}
	}

	page, err := svc.ListProducts(ctx, catalog.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if page.Page.Total != len(demoProducts) {
		t.Fatalf("expected %d products, got %d", len(demoProducts), page.Page.Total)
	}

	for _, p := range page.Items {
		if len(p.Variants) != len(kernel.AllSizes) {
			t.Errorf("%s: expected %d variants, got %d", p.Name, len(kernel.AllSizes), len(p.Variants))
		}
		if p.Name != "Boxy Heavy" {
			continue
		}
		assets, _ := svc.GarmentAssets(ctx, p.ID, kernel.SizeL)
		if len(assets) != 1 || assets[0].URL != "/static/garments/placeholders/BOXY_L_front.png" {
			t.Errorf("unexpected placeholder overlay: %+v", assets)
		}
	}

	m, err := svc.DefaultMannequin(ctx)
	if err != nil || m == nil {
		t.Fatalf("expected default mannequin, got %v %v", m, err)
	}
	if m.VideoURL != "/static/mannequin/default.mp4" || m.DurationMS != 2000 || m.RotationDegrees != 180 {
		t.Errorf("unexpected mannequin: %+v", m)
	}
}
