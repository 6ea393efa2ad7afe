package catalog

import (
	"strings"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/google/uuid"
)

// FitType describes the silhouette of a garment
type FitType string

const (
	FitRegular  FitType = "REGULAR"
	FitOversize FitType = "OVERSIZE"
	FitCropped  FitType = "CROPPED"
	FitBoxy     FitType = "BOXY"
)

func (f FitType) IsValid() bool {
	switch f {
	case FitRegular, FitOversize, FitCropped, FitBoxy:
		return true
	}
	return false
}

// AssetType identifies which overlay a garment asset provides
type AssetType string

const (
	AssetOverlayFront AssetType = "OVERLAY_FRONT"
	AssetOverlayBack  AssetType = "OVERLAY_BACK"
)

func (a AssetType) IsValid() bool {
	return a == AssetOverlayFront || a == AssetOverlayBack
}

// BodyType selects the mannequin video. Only DEFAULT exists for now.
type BodyType string

const BodyTypeDefault BodyType = "DEFAULT"

const (
	DefaultCategory          = "tshirt"
	DefaultRotationDegrees   = 180
	DefaultMannequinLengthMS = 2000
)

// ============================================================================
// Entities
// ============================================================================

type Product struct {
	ID          kernel.ProductID `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	Brand       *string          `json:"brand"`
	Category    string           `json:"category"`
	FitType     FitType          `json:"fit_type"`
	IsActive    bool             `json:"is_active"`
	Variants    []Variant        `json:"variants"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type Variant struct {
	ID        string           `json:"id"`
	ProductID kernel.ProductID `json:"product_id"`
	Size      kernel.Size      `json:"size"`
	SKU       *string          `json:"sku"`
	IsActive  bool             `json:"is_active"`
}

type GarmentAsset struct {
	ID        string           `json:"id"`
	ProductID kernel.ProductID `json:"product_id"`
	Size      kernel.Size      `json:"size"`
	AssetType AssetType        `json:"asset_type"`
	URL       string           `json:"url"`
	Note      *string          `json:"note"`
}

type MannequinAsset struct {
	ID              string    `json:"id"`
	BodyType        BodyType  `json:"body_type"`
	VideoURL        string    `json:"video_url"`
	DurationMS      int       `json:"duration_ms"`
	RotationDegrees int       `json:"rotation_degrees"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ============================================================================
// Requests
// ============================================================================

// ProductInput is the admin create and replace payload
type ProductInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Brand       *string `json:"brand"`
	Category    string  `json:"category"`
	FitType     FitType `json:"fit_type"`
	IsActive    *bool   `json:"is_active"`
}

func (in *ProductInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return ErrInvalidProduct().WithDetail("field", "name")
	}
	in.FitType = FitType(strings.ToUpper(string(in.FitType)))
	if !in.FitType.IsValid() {
		return ErrInvalidProduct().WithDetail("field", "fit_type").WithDetail("value", in.FitType)
	}
	if in.Category == "" {
		in.Category = DefaultCategory
	}
	return nil
}

// NewProduct builds an active product from a validated input
func NewProduct(in ProductInput) *Product {
	now := time.Now().UTC()
	p := &Product{
		ID:        kernel.NewProductID(uuid.NewString()),
		IsActive:  true,
		Variants:  []Variant{},
		CreatedAt: now,
	}
	p.Apply(in)
	return p
}

// Apply replaces the editable fields
func (p *Product) Apply(in ProductInput) {
	p.Name = in.Name
	p.Description = in.Description
	p.Brand = in.Brand
	p.Category = in.Category
	p.FitType = in.FitType
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.UpdatedAt = time.Now().UTC()
}

// ListFilter narrows the public product listing
type ListFilter struct {
	Search  string
	FitType FitType
	kernel.PaginationOptions
}
