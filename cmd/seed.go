package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abraxas-365/fittsee/pkg/catalog"
	"github.com/Abraxas-365/fittsee/pkg/catalog/catalogsrv"
	"github.com/Abraxas-365/fittsee/pkg/fsx"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/logx"
	"github.com/Abraxas-365/fittsee/pkg/ptrx"
)

type demoProduct struct {
	Name        string
	FitType     catalog.FitType
	Description string
}

var demoProducts = []demoProduct{
	{"Classic Tee", catalog.FitRegular, "A classic regular fit tee."},
	{"Street Oversize", catalog.FitOversize, "Trendy oversized fit."},
	{"Summer Crop", catalog.FitCropped, "Perfect cropped tee."},
	{"Boxy Heavy", catalog.FitBoxy, "Heavyweight boxy fit."},
}

const demoMannequinPath = "mannequin/default.mp4"

func runSeed(ctx context.Context, container *Container) error {
	logx.Info("🌱 Seeding...")

	created, err := container.IAM.AuthService.EnsureAdmin(ctx, container.Config.Auth.AdminEmail, container.Config.Auth.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		logx.Infof("  ✅ Admin %s created", container.Config.Auth.AdminEmail)
	}

	seeder := &catalogSeeder{
		catalog:    container.CatalogService,
		assets:     container.CatalogRepo,
		publicBase: container.Config.Storage.PublicBaseURL,
	}
	if err := seeder.seed(ctx); err != nil {
		return err
	}

	logx.Info("✅ Seeding complete")
	return nil
}

// catalogSeeder creates the demo products, their variants and placeholder
// overlays, and the default mannequin. Existing rows are left alone.
type catalogSeeder struct {
	catalog    *catalogsrv.CatalogService
	assets     catalog.AssetRepository
	publicBase string
}

func (s *catalogSeeder) seed(ctx context.Context) error {
	for _, demo := range demoProducts {
		exists, err := s.productExists(ctx, demo.Name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := s.createProduct(ctx, demo); err != nil {
			return err
		}
		logx.WithField("product", demo.Name).Info("demo product created")
	}

	mannequin, err := s.catalog.DefaultMannequin(ctx)
	if err != nil {
		return err
	}
	if mannequin == nil {
		_, err := s.catalog.SetMannequinVideo(ctx, catalogsrv.MannequinInput{
			VideoURL:        fsx.PublicURL(s.publicBase, demoMannequinPath),
			DurationMS:      catalog.DefaultMannequinLengthMS,
			RotationDegrees: catalog.DefaultRotationDegrees,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *catalogSeeder) productExists(ctx context.Context, name string) (bool, error) {
	page, err := s.catalog.ListProducts(ctx, catalog.ListFilter{Search: name})
	if err != nil {
		return false, err
	}
	for _, p := range page.Items {
		if strings.EqualFold(p.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (s *catalogSeeder) createProduct(ctx context.Context, demo demoProduct) error {
	product, err := s.catalog.CreateProduct(ctx, catalog.ProductInput{
		Name:        demo.Name,
		Description: ptrx.String(demo.Description),
		Category:    catalog.DefaultCategory,
		FitType:     demo.FitType,
	})
	if err != nil {
		return err
	}
	if _, err := s.catalog.CreateVariants(ctx, product.ID); err != nil {
		return err
	}

	for _, size := range kernel.AllSizes {
		key := fmt.Sprintf("garments/placeholders/%s_%s_front.png", demo.FitType, size)
		err := s.assets.UpsertGarmentAsset(ctx, &catalog.GarmentAsset{
			ProductID: product.ID,
			Size:      size,
			AssetType: catalog.AssetOverlayFront,
			URL:       fsx.PublicURL(s.publicBase, key),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
