package profileinfra

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/profile"
	"github.com/Abraxas-365/fittsee/pkg/ptrx"
	"github.com/jmoiron/sqlx"
)

// PostgresProfileRepository es la implementación en PostgreSQL de profile.Repository.
type PostgresProfileRepository struct {
	db *sqlx.DB
}

func NewPostgresProfileRepository(db *sqlx.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

type profileRow struct {
	UserID           string          `db:"user_id"`
	FullName         sql.NullString  `db:"full_name"`
	HeightCM         sql.NullFloat64 `db:"height_cm"`
	ChestCM          sql.NullFloat64 `db:"chest_cm"`
	ShouldersCM      sql.NullFloat64 `db:"shoulders_cm"`
	WaistCM          sql.NullFloat64 `db:"waist_cm"`
	BodyPhotoURL     sql.NullString  `db:"body_photo_url"`
	FaceCropURL      sql.NullString  `db:"face_crop_url"`
	SkinToneHex      sql.NullString  `db:"skin_tone_hex"`
	ProfileCompleted bool            `db:"profile_completed"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (r *PostgresProfileRepository) FindByUserID(ctx context.Context, userID kernel.UserID) (*profile.Profile, error) {
	var row profileRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM user_profiles WHERE user_id = $1`, userID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, profile.ErrProfileNotFound().WithDetail("user_id", userID)
		}
		return nil, errx.Wrap(err, "failed to find profile", errx.TypeInternal)
	}
	return toDomain(row), nil
}

func (r *PostgresProfileRepository) Save(ctx context.Context, p *profile.Profile) error {
	query := `
		INSERT INTO user_profiles (
			user_id, full_name, height_cm, chest_cm, shoulders_cm, waist_cm,
			body_photo_url, face_crop_url, skin_tone_hex, profile_completed, created_at, updated_at
		) VALUES (
			:user_id, :full_name, :height_cm, :chest_cm, :shoulders_cm, :waist_cm,
			:body_photo_url, :face_crop_url, :skin_tone_hex, :profile_completed, :created_at, :updated_at
		)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			height_cm = EXCLUDED.height_cm,
			chest_cm = EXCLUDED.chest_cm,
			shoulders_cm = EXCLUDED.shoulders_cm,
			waist_cm = EXCLUDED.waist_cm,
			body_photo_url = EXCLUDED.body_photo_url,
			face_crop_url = EXCLUDED.face_crop_url,
			skin_tone_hex = EXCLUDED.skin_tone_hex,
			profile_completed = EXCLUDED.profile_completed,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, toPersistence(p)); err != nil {
		return errx.Wrap(err, "failed to save profile", errx.TypeInternal).
			WithDetail("user_id", p.UserID)
	}
	return nil
}

// ============================================================================
// Mapping
// ============================================================================

func toDomain(r profileRow) *profile.Profile {
	return &profile.Profile{
		UserID:           kernel.UserID(r.UserID),
		FullName:         ptrx.FromNullString(r.FullName),
		HeightCM:         ptrx.FromNullFloat64(r.HeightCM),
		ChestCM:          ptrx.FromNullFloat64(r.ChestCM),
		ShouldersCM:      ptrx.FromNullFloat64(r.ShouldersCM),
		WaistCM:          ptrx.FromNullFloat64(r.WaistCM),
		BodyPhotoURL:     ptrx.FromNullString(r.BodyPhotoURL),
		FaceCropURL:      ptrx.FromNullString(r.FaceCropURL),
		SkinToneHex:      ptrx.FromNullString(r.SkinToneHex),
		ProfileCompleted: r.ProfileCompleted,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func toPersistence(p *profile.Profile) profileRow {
	return profileRow{
		UserID:           p.UserID.String(),
		FullName:         ptrx.ToNullString(p.FullName),
		HeightCM:         ptrx.ToNullFloat64(p.HeightCM),
		ChestCM:          ptrx.ToNullFloat64(p.ChestCM),
		ShouldersCM:      ptrx.ToNullFloat64(p.ShouldersCM),
		WaistCM:          ptrx.ToNullFloat64(p.WaistCM),
		BodyPhotoURL:     ptrx.ToNullString(p.BodyPhotoURL),
		FaceCropURL:      ptrx.ToNullString(p.FaceCropURL),
		SkinToneHex:      ptrx.ToNullString(p.SkinToneHex),
		ProfileCompleted: p.ProfileCompleted,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
