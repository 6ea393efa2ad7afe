package catalogsrv_test

import (
	"context"
	"strings"
	"testing"

	"github.com/Abraxas-365/fittsee/pkg/catalog"
	"github.com/Abraxas-365/fittsee/pkg/catalog/cataloginfra"
	"github.com/Abraxas-365/fittsee/pkg/catalog/catalogsrv"
	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
)

func newService(t *testing.T) *catalogsrv.CatalogService {
	t.Helper()
	files, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	repo := cataloginfra.NewMemoryCatalogRepository()
	return catalogsrv.NewCatalogService(repo, repo, files, "/static")
}

func mustCreate(t *testing.T, svc *catalogsrv.CatalogService, name string, fit catalog.FitType) *catalog.Product {
	t.Helper()
	p, err := svc.CreateProduct(context.Background(), catalog.ProductInput{Name: name, FitType: fit})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCreateProductValidates(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.CreateProduct(ctx, catalog.ProductInput{Name: " ", FitType: catalog.FitBoxy}); !errx.IsCode(err, catalog.CodeInvalidProduct) {
		t.Errorf("expected INVALID_PRODUCT for blank name, got %v", err)
	}
	if _, err := svc.CreateProduct(ctx, catalog.ProductInput{Name: "Tee", FitType: "SKINNY"}); !errx.IsCode(err, catalog.CodeInvalidProduct) {
		t.Errorf("expected INVALID_PRODUCT for unknown fit, got %v", err)
	}

	p, err := svc.CreateProduct(ctx, catalog.ProductInput{Name: "Tee", FitType: "regular"})
	if err != nil {
		t.Fatal(err)
	}
	if p.FitType != catalog.FitRegular || p.Category != catalog.DefaultCategory || !p.IsActive {
		t.Errorf("unexpected defaults: %+v", p)
	}
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	mustCreate(t, svc, "Classic Tee", catalog.FitRegular)
	mustCreate(t, svc, "Street Oversize", catalog.FitOversize)
	hidden := mustCreate(t, svc, "Classic Hidden", catalog.FitRegular)
	if err := svc.DeleteProduct(ctx, hidden.ID); err != nil {
		t.Fatal(err)
	}

	page, err := svc.ListProducts(ctx, catalog.ListFilter{Search: "classic"})
	if err != nil {
		t.Fatal(err)
	}
	if page.Page.Total != 1 || page.Items[0].Name != "Classic Tee" {
		t.Errorf("expected only the active classic tee, got %+v", page)
	}

	page, err = svc.ListProducts(ctx, catalog.ListFilter{PaginationOptions: kernel.PaginationOptions{Page: 2, PageSize: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 1 || page.Page.Pages != 2 || page.HasNext() {
		t.Errorf("unexpected second page: %+v", page)
	}

	if _, err := svc.ListProducts(ctx, catalog.ListFilter{FitType: "tight"}); !errx.IsCode(err, catalog.CodeInvalidProduct) {
		t.Errorf("expected invalid fit filter to fail, got %v", err)
	}
}

func TestSoftDeleteHidesProduct(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p := mustCreate(t, svc, "Summer Crop", catalog.FitCropped)

	if err := svc.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetProduct(ctx, p.ID); !errx.IsCode(err, catalog.CodeProductNotFound) {
		t.Errorf("expected deleted product to be hidden, got %v", err)
	}
	if err := svc.DeleteProduct(ctx, "missing"); !errx.IsCode(err, catalog.CodeProductNotFound) {
		t.Errorf("expected PRODUCT_NOT_FOUND, got %v", err)
	}
}

func TestCreateVariantsIsIdempotent(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p := mustCreate(t, svc, "Boxy Heavy", catalog.FitBoxy)

	for range 2 {
		variants, err := svc.CreateVariants(ctx, p.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(variants) != len(kernel.AllSizes) {
			t.Fatalf("expected %d variants, got %d", len(kernel.AllSizes), len(variants))
		}
		if variants[0].Size != kernel.SizeXS || variants[4].Size != kernel.SizeXL {
			t.Errorf("expected XS..XL order, got %v..%v", variants[0].Size, variants[4].Size)
		}
	}
}

func TestUploadGarmentAssetUpserts(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p := mustCreate(t, svc, "Classic Tee", catalog.FitRegular)

	upload := catalogsrv.Upload{Filename: "front.png", Data: []byte("png")}
	first, err := svc.UploadGarmentAsset(ctx, p.ID, kernel.SizeM, catalog.AssetOverlayFront, nil, upload)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.UploadGarmentAsset(ctx, p.ID, kernel.SizeM, catalog.AssetOverlayFront, nil, upload)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Error("expected the second upload to replace the first asset")
	}
	if !strings.HasPrefix(second.URL, "/static/garments/"+p.ID.String()+"/M/") {
		t.Errorf("unexpected asset url %q", second.URL)
	}

	assets, _ := svc.GarmentAssets(ctx, p.ID, kernel.SizeM)
	if len(assets) != 1 || assets[0].URL != second.URL {
		t.Errorf("expected one asset with the latest url, got %+v", assets)
	}

	if _, err := svc.UploadGarmentAsset(ctx, p.ID, "XXL", catalog.AssetOverlayFront, nil, upload); !errx.IsCode(err, catalog.CodeInvalidAsset) {
		t.Errorf("expected INVALID_ASSET for bad size, got %v", err)
	}
}

func TestSetMannequinVideo(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if m, err := svc.DefaultMannequin(ctx); err != nil || m != nil {
		t.Fatalf("expected no mannequin yet, got %v %v", m, err)
	}
	if _, err := svc.SetMannequinVideo(ctx, catalogsrv.MannequinInput{}); !errx.IsCode(err, catalog.CodeMannequinSource) {
		t.Errorf("expected MANNEQUIN_SOURCE_REQUIRED, got %v", err)
	}

	m, err := svc.SetMannequinVideo(ctx, catalogsrv.MannequinInput{VideoURL: "https://cdn.example.com/m.mp4"})
	if err != nil {
		t.Fatal(err)
	}
	if m.DurationMS != catalog.DefaultMannequinLengthMS || m.RotationDegrees != catalog.DefaultRotationDegrees {
		t.Errorf("expected default timing, got %+v", m)
	}

	m, err = svc.SetMannequinVideo(ctx, catalogsrv.MannequinInput{
		VideoURL: "ignored",
		File:     &catalogsrv.Upload{Filename: "spin.mp4", Data: []byte("mp4")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(m.VideoURL, "/static/mannequin/") {
		t.Errorf("expected uploaded file to win, got %q", m.VideoURL)
	}

	current, _ := svc.DefaultMannequin(ctx)
	if current == nil || current.VideoURL != m.VideoURL {
		t.Errorf("expected stored mannequin to be replaced, got %+v", current)
	}
}
