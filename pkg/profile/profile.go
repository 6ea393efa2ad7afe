package profile

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
)

// Field names reported when a profile is incomplete, in reporting order.
const (
	FieldHeight    = "height_cm"
	FieldChest     = "chest_cm"
	FieldShoulders = "shoulders_cm"
	FieldBodyPhoto = "body_photo_url"
)

// DefaultSkinTone is used when the photo cannot be sampled
const DefaultSkinTone = "#D2C5B3"

// Profile holds the body measurements and personalization assets of one user
type Profile struct {
	UserID           kernel.UserID `json:"user_id"`
	FullName         *string       `json:"full_name"`
	HeightCM         *float64      `json:"height_cm"`
	ChestCM          *float64      `json:"chest_cm"`
	ShouldersCM      *float64      `json:"shoulders_cm"`
	WaistCM          *float64      `json:"waist_cm"`
	BodyPhotoURL     *string       `json:"body_photo_url"`
	FaceCropURL      *string       `json:"face_crop_url"`
	SkinToneHex      *string       `json:"skin_tone_hex"`
	ProfileCompleted bool          `json:"profile_completed"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// NewEmpty returns a profile with nothing filled in
func NewEmpty(userID kernel.UserID) *Profile {
	now := time.Now().UTC()
	return &Profile{UserID: userID, CreatedAt: now, UpdatedAt: now}
}

func present(v *float64) bool { return v != nil && *v != 0 }

// MissingMeasurements lists the required measurements that are absent or zero.
func (p *Profile) MissingMeasurements() []string {
	missing := []string{}
	if !present(p.HeightCM) {
		missing = append(missing, FieldHeight)
	}
	if !present(p.ChestCM) {
		missing = append(missing, FieldChest)
	}
	if !present(p.ShouldersCM) {
		missing = append(missing, FieldShoulders)
	}
	return missing
}

// MissingForTryOn adds the body photo to the required measurements.
func (p *Profile) MissingForTryOn() []string {
	missing := p.MissingMeasurements()
	if p.BodyPhotoURL == nil || *p.BodyPhotoURL == "" {
		missing = append(missing, FieldBodyPhoto)
	}
	return missing
}

// RefreshCompletion recomputes ProfileCompleted
func (p *Profile) RefreshCompletion() {
	p.ProfileCompleted = len(p.MissingForTryOn()) == 0
}

// UpdateRequest is a partial update; nil fields are left unchanged
type UpdateRequest struct {
	FullName    *string  `json:"full_name"`
	HeightCM    *float64 `json:"height_cm"`
	ChestCM     *float64 `json:"chest_cm"`
	ShouldersCM *float64 `json:"shoulders_cm"`
	WaistCM     *float64 `json:"waist_cm"`
}

// Validate rejects negative or implausible measurements
func (r UpdateRequest) Validate() error {
	for field, v := range map[string]*float64{
		FieldHeight:    r.HeightCM,
		FieldChest:     r.ChestCM,
		FieldShoulders: r.ShouldersCM,
		"waist_cm":     r.WaistCM,
	} {
		if v != nil && (*v < 0 || *v > 300) {
			return ErrInvalidMeasurement().WithDetail("field", field).WithDetail("value", *v)
		}
	}
	return nil
}

// Apply copies the set fields onto the profile
func (p *Profile) Apply(r UpdateRequest) {
	if r.FullName != nil {
		p.FullName = r.FullName
	}
	if r.HeightCM != nil {
		p.HeightCM = r.HeightCM
	}
	if r.ChestCM != nil {
		p.ChestCM = r.ChestCM
	}
	if r.ShouldersCM != nil {
		p.ShouldersCM = r.ShouldersCM
	}
	if r.WaistCM != nil {
		p.WaistCM = r.WaistCM
	}
	p.UpdatedAt = time.Now().UTC()
	p.RefreshCompletion()
}

// ============================================================================
// Ports
// ============================================================================

type Repository interface {
	FindByUserID(ctx context.Context, userID kernel.UserID) (*Profile, error)
	// Save inserts or replaces the profile row.
	Save(ctx context.Context, p *Profile) error
}

// PhotoAnalyzer extracts personalization from an uploaded body photo
type PhotoAnalyzer interface {
	// SkinTone returns a "#RRGGBB" colour, or DefaultSkinTone when it cannot decide.
	SkinTone(r io.Reader) string
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("PROFILE")

var (
	CodeProfileNotFound    = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Profile not found")
	CodeInvalidMeasurement = ErrRegistry.Register("INVALID_MEASUREMENT", errx.TypeValidation, http.StatusBadRequest, "Invalid measurement")
	CodeInvalidPhoto       = ErrRegistry.Register("INVALID_PHOTO", errx.TypeValidation, http.StatusBadRequest, "Invalid body photo")
)

func ErrProfileNotFound() *errx.Error    { return ErrRegistry.New(CodeProfileNotFound) }
func ErrInvalidMeasurement() *errx.Error { return ErrRegistry.New(CodeInvalidMeasurement) }
func ErrInvalidPhoto() *errx.Error       { return ErrRegistry.New(CodeInvalidPhoto) }
