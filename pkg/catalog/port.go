package catalog

import (
	"context"

	"github.com/Abraxas-365/fittsee/pkg/kernel"
)

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	// FindByID loads the product with its variants, active or not.
	FindByID(ctx context.Context, id kernel.ProductID) (*Product, error)
	// List returns one page of active products and the total match count.
	List(ctx context.Context, filter ListFilter) ([]Product, int, error)
	ListVariants(ctx context.Context, productID kernel.ProductID) ([]Variant, error)
	// EnsureVariants inserts the missing sizes and returns the product's variants.
	EnsureVariants(ctx context.Context, productID kernel.ProductID, sizes []kernel.Size) ([]Variant, error)
}

type AssetRepository interface {
	// UpsertGarmentAsset replaces the asset for the same product, size and type.
	UpsertGarmentAsset(ctx context.Context, a *GarmentAsset) error
	ListGarmentAssets(ctx context.Context, productID kernel.ProductID, size kernel.Size) ([]GarmentAsset, error)
	FindMannequin(ctx context.Context, bodyType BodyType) (*MannequinAsset, error)
	UpsertMannequin(ctx context.Context, m *MannequinAsset) error
}
