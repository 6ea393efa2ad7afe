package profileinfra

import (
	"reflect"
	"testing"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/profile"
	"github.com/Abraxas-365/fittsee/pkg/ptrx"
)

func TestRowMapping(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	p := &profile.Profile{
		UserID:           "u-1",
		FullName:         ptrx.String("Ana"),
		HeightCM:         ptrx.Float64(170),
		ChestCM:          ptrx.Float64(92),
		ShouldersCM:      ptrx.Float64(41.5),
		BodyPhotoURL:     ptrx.String("/static/bodies/u-1.jpg"),
		ProfileCompleted: true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	row := toPersistence(p)
	if !row.HeightCM.Valid || row.HeightCM.Float64 != 170 {
		t.Errorf("expected height to be stored, got %+v", row.HeightCM)
	}
	if row.WaistCM.Valid || row.FaceCropURL.Valid || row.SkinToneHex.Valid {
		t.Error("unset fields must be stored as NULL")
	}

	back := toDomain(row)
	if !reflect.DeepEqual(back, p) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, p)
	}
	if back.WaistCM != nil || back.SkinToneHex != nil {
		t.Error("NULL columns must map back to nil")
	}
}
