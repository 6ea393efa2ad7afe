package profileinfra

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/Abraxas-365/fittsee/pkg/profile"
)

// MeanColorAnalyzer samples the mean colour of the upper-body centre of a photo.
// The window is centred at (w/2, h/4) and spans a quarter of each dimension.
type MeanColorAnalyzer struct{}

func NewMeanColorAnalyzer() *MeanColorAnalyzer {
	return &MeanColorAnalyzer{}
}

func (a *MeanColorAnalyzer) SkinTone(r io.Reader) string {
	img, _, err := image.Decode(r)
	if err != nil {
		return profile.DefaultSkinTone
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cx, cy := b.Min.X+w/2, b.Min.Y+h/4
	sw, sh := w/8, h/8
	region := image.Rect(cx-sw, cy-sh, cx+sw, cy+sh).Intersect(b)
	if region.Empty() {
		region = image.Rect(cx, cy, cx+1, cy+1).Intersect(b)
	}
	if region.Empty() {
		return profile.DefaultSkinTone
	}

	var rs, gs, bs, n uint64
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			rs += uint64(r >> 8)
			gs += uint64(g >> 8)
			bs += uint64(bl >> 8)
			n++
		}
	}
	return fmt.Sprintf("#%02x%02x%02x", rs/n, gs/n, bs/n)
}
