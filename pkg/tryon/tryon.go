package tryon

import (
	"context"
	"net/http"

	"github.com/Abraxas-365/fittsee/pkg/catalog"
	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/profile"
)

// MissingAll is reported when the user has no profile at all
const MissingAll = "all"

// Composition is everything the client needs to layer a garment on the mannequin
type Composition struct {
	Product         ProductSummary  `json:"product"`
	SelectedSize    kernel.Size     `json:"selected_size"`
	Mannequin       Mannequin       `json:"mannequin"`
	Personalization Personalization `json:"personalization"`
	Garment         Garment         `json:"garment"`
}

type ProductSummary struct {
	ID      kernel.ProductID `json:"id"`
	Name    string           `json:"name"`
	FitType catalog.FitType  `json:"fit_type"`
}

type Mannequin struct {
	BodyType        catalog.BodyType `json:"body_type"`
	VideoURL        *string          `json:"video_url"`
	RotationDegrees int              `json:"rotation_degrees"`
	DurationMS      *int             `json:"duration_ms"`
}

type Personalization struct {
	SkinToneHex *string `json:"skin_tone_hex"`
	FaceCropURL *string `json:"face_crop_url"`
}

type Garment struct {
	OverlayFrontURL *string `json:"overlay_front_url"`
	OverlayBackURL  *string `json:"overlay_back_url"`
}

// ============================================================================
// Ports
// ============================================================================

type ProfileFinder interface {
	FindByUserID(ctx context.Context, userID kernel.UserID) (*profile.Profile, error)
}

type CatalogReader interface {
	GetProduct(ctx context.Context, id kernel.ProductID) (*catalog.Product, error)
	DefaultMannequin(ctx context.Context) (*catalog.MannequinAsset, error)
	GarmentAssets(ctx context.Context, id kernel.ProductID, size kernel.Size) ([]catalog.GarmentAsset, error)
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("")

var (
	CodeProfileIncomplete = ErrRegistry.Register("PROFILE_INCOMPLETE", errx.TypeConflict, http.StatusConflict, "User profile is incomplete.")
	CodeInvalidSize       = ErrRegistry.Register("INVALID_SIZE", errx.TypeValidation, http.StatusBadRequest, "Size must be one of XS, S, M, L, XL")
)

func ErrProfileIncomplete(missing []string) *errx.Error {
	return ErrRegistry.New(CodeProfileIncomplete).WithDetail("missing_fields", missing)
}

func ErrInvalidSize(size string) *errx.Error {
	return ErrRegistry.New(CodeInvalidSize).WithDetail("size", size)
}
