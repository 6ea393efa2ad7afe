package catalogsrv

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/catalog"
	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/fsx"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/logx"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Upload is a file received from an admin form
type Upload struct {
	Filename string
	Data     []byte
}

// MannequinInput sets the default mannequin from a URL or an uploaded video
type MannequinInput struct {
	VideoURL        string
	File            *Upload
	DurationMS      int
	RotationDegrees int
}

type CatalogService struct {
	products   catalog.ProductRepository
	assets     catalog.AssetRepository
	files      fsx.FileSystem
	publicBase string
}

func NewCatalogService(
	products catalog.ProductRepository,
	assets catalog.AssetRepository,
	files fsx.FileSystem,
	publicBase string,
) *CatalogService {
	return &CatalogService{
		products:   products,
		assets:     assets,
		files:      files,
		publicBase: publicBase,
	}
}

// ============================================================================
// Public queries
// ============================================================================

func (s *CatalogService) ListProducts(ctx context.Context, filter catalog.ListFilter) (kernel.Paginated[catalog.Product], error) {
	filter.PaginationOptions = filter.PaginationOptions.Normalize(defaultPageSize, maxPageSize)
	if filter.FitType != "" {
		filter.FitType = catalog.FitType(strings.ToUpper(string(filter.FitType)))
		if !filter.FitType.IsValid() {
			return kernel.Paginated[catalog.Product]{}, catalog.ErrInvalidProduct().WithDetail("fit_type", filter.FitType)
		}
	}

	items, total, err := s.products.List(ctx, filter)
	if err != nil {
		return kernel.Paginated[catalog.Product]{}, err
	}
	return kernel.NewPaginated(items, filter.Page, filter.PageSize, total), nil
}

// GetProduct returns an active product. Soft-deleted products are not found.
func (s *CatalogService) GetProduct(ctx context.Context, id kernel.ProductID) (*catalog.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, catalog.ErrProductNotFound().WithDetail("product_id", id)
	}
	return p, nil
}

func (s *CatalogService) ListVariants(ctx context.Context, id kernel.ProductID) ([]catalog.Variant, error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	return s.products.ListVariants(ctx, id)
}

func (s *CatalogService) GarmentAssets(ctx context.Context, id kernel.ProductID, size kernel.Size) ([]catalog.GarmentAsset, error) {
	return s.assets.ListGarmentAssets(ctx, id, size)
}

// DefaultMannequin returns the DEFAULT mannequin, or nil when none was uploaded
func (s *CatalogService) DefaultMannequin(ctx context.Context) (*catalog.MannequinAsset, error) {
	m, err := s.assets.FindMannequin(ctx, catalog.BodyTypeDefault)
	if errx.IsCode(err, catalog.CodeMannequinNotFound) {
		return nil, nil
	}
	return m, err
}

// ============================================================================
// Admin commands
// ============================================================================

func (s *CatalogService) CreateProduct(ctx context.Context, in catalog.ProductInput) (*catalog.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := catalog.NewProduct(in)
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	logx.WithFields(logx.Fields{"product_id": p.ID, "name": p.Name}).Info("product created")
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id kernel.ProductID, in catalog.ProductInput) (*catalog.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Apply(in)
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProduct deactivates the product. Rows stay for existing render jobs.
func (s *CatalogService) DeleteProduct(ctx context.Context, id kernel.ProductID) error {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	p.IsActive = false
	p.UpdatedAt = time.Now().UTC()
	if err := s.products.Update(ctx, p); err != nil {
		return err
	}
	logx.WithField("product_id", id).Info("product deactivated")
	return nil
}

// CreateVariants ensures one variant per size XS..XL
func (s *CatalogService) CreateVariants(ctx context.Context, id kernel.ProductID) ([]catalog.Variant, error) {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.products.EnsureVariants(ctx, id, kernel.AllSizes)
}

func (s *CatalogService) UploadGarmentAsset(
	ctx context.Context,
	id kernel.ProductID,
	size kernel.Size,
	assetType catalog.AssetType,
	note *string,
	file Upload,
) (*catalog.GarmentAsset, error) {
	if !size.IsValid() {
		return nil, catalog.ErrInvalidAsset().WithDetail("size", size)
	}
	if !assetType.IsValid() {
		return nil, catalog.ErrInvalidAsset().WithDetail("asset_type", assetType)
	}
	if len(file.Data) == 0 {
		return nil, catalog.ErrInvalidAsset().WithDetail("reason", "empty file")
	}
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return nil, err
	}

	key := path.Join("garments", id.String(), size.String(), uuid.NewString()+extOf(file.Filename, ".png"))
	if err := s.files.WriteFile(ctx, key, file.Data); err != nil {
		return nil, err
	}

	asset := &catalog.GarmentAsset{
		ProductID: id,
		Size:      size,
		AssetType: assetType,
		URL:       fsx.PublicURL(s.publicBase, key),
		Note:      note,
	}
	if err := s.assets.UpsertGarmentAsset(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// SetMannequinVideo replaces the DEFAULT mannequin. An uploaded file wins over a URL.
func (s *CatalogService) SetMannequinVideo(ctx context.Context, in MannequinInput) (*catalog.MannequinAsset, error) {
	url := strings.TrimSpace(in.VideoURL)
	if in.File != nil && len(in.File.Data) > 0 {
		key := path.Join("mannequin", uuid.NewString()+extOf(in.File.Filename, ".mp4"))
		if err := s.files.WriteFile(ctx, key, in.File.Data); err != nil {
			return nil, err
		}
		url = fsx.PublicURL(s.publicBase, key)
	}
	if url == "" {
		return nil, catalog.ErrMannequinSource()
	}

	m := &catalog.MannequinAsset{
		BodyType:        catalog.BodyTypeDefault,
		VideoURL:        url,
		DurationMS:      catalog.DefaultMannequinLengthMS,
		RotationDegrees: catalog.DefaultRotationDegrees,
		UpdatedAt:       time.Now().UTC(),
	}
	if in.DurationMS > 0 {
		m.DurationMS = in.DurationMS
	}
	if in.RotationDegrees > 0 {
		m.RotationDegrees = in.RotationDegrees
	}

	if err := s.assets.UpsertMannequin(ctx, m); err != nil {
		return nil, err
	}
	logx.WithField("video_url", url).Info("default mannequin updated")
	return m, nil
}

func extOf(filename, def string) string {
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		return ext
	}
	return def
}
