package tryonsrv

import (
	"context"

	"github.com/Abraxas-365/fittsee/pkg/asyncx"
	"github.com/Abraxas-365/fittsee/pkg/catalog"
	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/profile"
	"github.com/Abraxas-365/fittsee/pkg/tryon"
)

type TryOnService struct {
	profiles tryon.ProfileFinder
	catalog  tryon.CatalogReader
}

func NewTryOnService(profiles tryon.ProfileFinder, catalog tryon.CatalogReader) *TryOnService {
	return &TryOnService{profiles: profiles, catalog: catalog}
}

// Compose assembles the try-on view of a product for the user.
// It requires a complete profile, body photo included.
func (s *TryOnService) Compose(ctx context.Context, userID kernel.UserID, productID kernel.ProductID, size kernel.Size) (*tryon.Composition, error) {
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errx.IsCode(err, profile.CodeProfileNotFound) {
			return nil, tryon.ErrProfileIncomplete([]string{tryon.MissingAll})
		}
		return nil, err
	}
	if missing := p.MissingForTryOn(); len(missing) > 0 {
		return nil, tryon.ErrProfileIncomplete(missing)
	}

	productF := asyncx.Run(ctx, func(ctx context.Context) (*catalog.Product, error) {
		return s.catalog.GetProduct(ctx, productID)
	})
	mannequinF := asyncx.Run(ctx, func(ctx context.Context) (*catalog.MannequinAsset, error) {
		return s.catalog.DefaultMannequin(ctx)
	})
	assetsF := asyncx.Run(ctx, func(ctx context.Context) ([]catalog.GarmentAsset, error) {
		return s.catalog.GarmentAssets(ctx, productID, size)
	})

	product, err := productF.Await()
	if err != nil {
		return nil, err
	}
	mannequin, err := mannequinF.Await()
	if err != nil {
		return nil, err
	}
	assets, err := assetsF.Await()
	if err != nil {
		return nil, err
	}

	out := &tryon.Composition{
		Product: tryon.ProductSummary{
			ID:      product.ID,
			Name:    product.Name,
			FitType: product.FitType,
		},
		SelectedSize: size,
		Mannequin: tryon.Mannequin{
			BodyType:        catalog.BodyTypeDefault,
			RotationDegrees: catalog.DefaultRotationDegrees,
		},
		Personalization: tryon.Personalization{
			SkinToneHex: p.SkinToneHex,
			FaceCropURL: p.FaceCropURL,
		},
	}
	if mannequin != nil {
		out.Mannequin = tryon.Mannequin{
			BodyType:        mannequin.BodyType,
			VideoURL:        &mannequin.VideoURL,
			RotationDegrees: mannequin.RotationDegrees,
			DurationMS:      &mannequin.DurationMS,
		}
	}
	for _, a := range assets {
		url := a.URL
		switch a.AssetType {
		case catalog.AssetOverlayFront:
			out.Garment.OverlayFrontURL = &url
		case catalog.AssetOverlayBack:
			out.Garment.OverlayBackURL = &url
		}
	}
	return out, nil
}
