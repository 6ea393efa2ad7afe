package cataloginfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/catalog"
	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/ptrx"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresCatalogRepository implements catalog.ProductRepository and catalog.AssetRepository.
type PostgresCatalogRepository struct {
	db *sqlx.DB
}

func NewPostgresCatalogRepository(db *sqlx.DB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{db: db}
}

type productRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Brand       sql.NullString `db:"brand"`
	Category    string         `db:"category"`
	FitType     string         `db:"fit_type"`
	IsActive    bool           `db:"is_active"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r productRow) toDomain() catalog.Product {
	return catalog.Product{
		ID:          kernel.ProductID(r.ID),
		Name:        r.Name,
		Description: ptrx.FromNullString(r.Description),
		Brand:       ptrx.FromNullString(r.Brand),
		Category:    r.Category,
		FitType:     catalog.FitType(r.FitType),
		IsActive:    r.IsActive,
		Variants:    []catalog.Variant{},
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toProductRow(p *catalog.Product) productRow {
	return productRow{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: ptrx.ToNullString(p.Description),
		Brand:       ptrx.ToNullString(p.Brand),
		Category:    p.Category,
		FitType:     string(p.FitType),
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type variantRow struct {
	ID        string         `db:"id"`
	ProductID string         `db:"product_id"`
	Size      string         `db:"size"`
	SKU       sql.NullString `db:"sku"`
	IsActive  bool           `db:"is_active"`
}

func (r variantRow) toDomain() catalog.Variant {
	return catalog.Variant{
		ID:        r.ID,
		ProductID: kernel.ProductID(r.ProductID),
		Size:      kernel.Size(r.Size),
		SKU:       ptrx.FromNullString(r.SKU),
		IsActive:  r.IsActive,
	}
}

// ============================================================================
// Products
// ============================================================================

func (r *PostgresCatalogRepository) Create(ctx context.Context, p *catalog.Product) error {
	query := `
		INSERT INTO products (id, name, description, brand, category, fit_type, is_active, created_at, updated_at)
		VALUES (:id, :name, :description, :brand, :category, :fit_type, :is_active, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, toProductRow(p)); err != nil {
		return errx.Wrap(err, "failed to create product", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresCatalogRepository) Update(ctx context.Context, p *catalog.Product) error {
	query := `
		UPDATE products SET
			name = :name, description = :description, brand = :brand, category = :category,
			fit_type = :fit_type, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, toProductRow(p))
	if err != nil {
		return errx.Wrap(err, "failed to update product", errx.TypeInternal)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrProductNotFound().WithDetail("product_id", p.ID)
	}
	return nil
}

func (r *PostgresCatalogRepository) FindByID(ctx context.Context, id kernel.ProductID) (*catalog.Product, error) {
	var row productRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM products WHERE id = $1`, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrProductNotFound().WithDetail("product_id", id)
		}
		return nil, errx.Wrap(err, "failed to find product", errx.TypeInternal)
	}

	p := row.toDomain()
	variants, err := r.ListVariants(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Variants = variants
	return &p, nil
}

func (r *PostgresCatalogRepository) List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, int, error) {
	where := []string{"is_active = TRUE"}
	args := []any{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.FitType != "" {
		args = append(args, string(filter.FitType))
		where = append(where, fmt.Sprintf("fit_type = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM products WHERE `+cond, args...); err != nil {
		return nil, 0, errx.Wrap(err, "failed to count products", errx.TypeInternal)
	}

	query := fmt.Sprintf(`SELECT * FROM products WHERE %s ORDER BY created_at, id LIMIT $%d OFFSET $%d`,
		cond, len(args)+1, len(args)+2)
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, append(args, filter.PageSize, filter.Offset())...); err != nil {
		return nil, 0, errx.Wrap(err, "failed to list products", errx.TypeInternal)
	}
	if len(rows) == 0 {
		return []catalog.Product{}, total, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	variants, err := r.variantsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	products := make([]catalog.Product, len(rows))
	for i, row := range rows {
		products[i] = row.toDomain()
		if vs, ok := variants[row.ID]; ok {
			products[i].Variants = vs
		}
	}
	return products, total, nil
}

func (r *PostgresCatalogRepository) variantsFor(ctx context.Context, productIDs []string) (map[string][]catalog.Variant, error) {
	query, args, err := sqlx.In(`
		SELECT id, product_id, size, sku, is_active FROM product_variants
		WHERE product_id IN (?)
		ORDER BY array_position(ARRAY['XS','S','M','L','XL'], size)`, productIDs)
	if err != nil {
		return nil, errx.Wrap(err, "failed to build variant query", errx.TypeInternal)
	}

	var rows []variantRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, errx.Wrap(err, "failed to load variants", errx.TypeInternal)
	}

	out := make(map[string][]catalog.Variant, len(productIDs))
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], row.toDomain())
	}
	return out, nil
}

func (r *PostgresCatalogRepository) ListVariants(ctx context.Context, productID kernel.ProductID) ([]catalog.Variant, error) {
	byProduct, err := r.variantsFor(ctx, []string{productID.String()})
	if err != nil {
		return nil, err
	}
	if vs := byProduct[productID.String()]; vs != nil {
		return vs, nil
	}
	return []catalog.Variant{}, nil
}

func (r *PostgresCatalogRepository) EnsureVariants(ctx context.Context, productID kernel.ProductID, sizes []kernel.Size) ([]catalog.Variant, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errx.Wrap(err, "failed to begin transaction", errx.TypeInternal)
	}
	defer tx.Rollback()

	for _, size := range sizes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_variants (id, product_id, size, is_active)
			VALUES ($1, $2, $3, TRUE)
			ON CONFLICT (product_id, size) DO NOTHING`,
			uuid.NewString(), productID.String(), size.String())
		if err != nil {
			return nil, errx.Wrap(err, "failed to insert variant", errx.TypeInternal).WithDetail("size", size)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, errx.Wrap(err, "failed to commit variants", errx.TypeInternal)
	}
	return r.ListVariants(ctx, productID)
}

// ============================================================================
// Assets
// ============================================================================

type garmentAssetRow struct {
	ID        string         `db:"id"`
	ProductID string         `db:"product_id"`
	Size      string         `db:"size"`
	AssetType string         `db:"asset_type"`
	URL       string         `db:"url"`
	Note      sql.NullString `db:"note"`
}

type mannequinRow struct {
	ID              string    `db:"id"`
	BodyType        string    `db:"body_type"`
	VideoURL        string    `db:"video_url"`
	DurationMS      int       `db:"duration_ms"`
	RotationDegrees int       `db:"rotation_degrees"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (r *PostgresCatalogRepository) UpsertGarmentAsset(ctx context.Context, a *catalog.GarmentAsset) error {
	query := `
		INSERT INTO garment_assets (id, product_id, size, asset_type, url, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product_id, size, asset_type)
		DO UPDATE SET url = EXCLUDED.url, note = EXCLUDED.note
		RETURNING id`

	err := r.db.GetContext(ctx, &a.ID, query,
		uuid.NewString(), a.ProductID.String(), a.Size.String(), string(a.AssetType), a.URL, ptrx.ToNullString(a.Note))
	if err != nil {
		return errx.Wrap(err, "failed to save garment asset", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresCatalogRepository) ListGarmentAssets(ctx context.Context, productID kernel.ProductID, size kernel.Size) ([]catalog.GarmentAsset, error) {
	var rows []garmentAssetRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, product_id, size, asset_type, url, note FROM garment_assets
		WHERE product_id = $1 AND size = $2
		ORDER BY asset_type`, productID.String(), size.String())
	if err != nil {
		return nil, errx.Wrap(err, "failed to list garment assets", errx.TypeInternal)
	}

	assets := make([]catalog.GarmentAsset, len(rows))
	for i, row := range rows {
		assets[i] = catalog.GarmentAsset{
			ID:        row.ID,
			ProductID: kernel.ProductID(row.ProductID),
			Size:      kernel.Size(row.Size),
			AssetType: catalog.AssetType(row.AssetType),
			URL:       row.URL,
			Note:      ptrx.FromNullString(row.Note),
		}
	}
	return assets, nil
}

func (r *PostgresCatalogRepository) FindMannequin(ctx context.Context, bodyType catalog.BodyType) (*catalog.MannequinAsset, error) {
	var row mannequinRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM mannequin_assets WHERE body_type = $1`, string(bodyType)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrMannequinNotFound().WithDetail("body_type", bodyType)
		}
		return nil, errx.Wrap(err, "failed to find mannequin", errx.TypeInternal)
	}
	return &catalog.MannequinAsset{
		ID:              row.ID,
		BodyType:        catalog.BodyType(row.BodyType),
		VideoURL:        row.VideoURL,
		DurationMS:      row.DurationMS,
		RotationDegrees: row.RotationDegrees,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

func (r *PostgresCatalogRepository) UpsertMannequin(ctx context.Context, m *catalog.MannequinAsset) error {
	query := `
		INSERT INTO mannequin_assets (id, body_type, video_url, duration_ms, rotation_degrees, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (body_type)
		DO UPDATE SET video_url = EXCLUDED.video_url, duration_ms = EXCLUDED.duration_ms,
			rotation_degrees = EXCLUDED.rotation_degrees, updated_at = EXCLUDED.updated_at
		RETURNING id`

	err := r.db.GetContext(ctx, &m.ID, query,
		uuid.NewString(), string(m.BodyType), m.VideoURL, m.DurationMS, m.RotationDegrees, m.UpdatedAt)
	if err != nil {
		return errx.Wrap(err, "failed to save mannequin", errx.TypeInternal)
	}
	return nil
}
