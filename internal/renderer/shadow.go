package renderer

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/ivlev/scrollcam/internal/director"
)

// ShadowFrustum is the orthographic volume of the sun's shadow camera
type ShadowFrustum struct {
	Left, Right, Top, Bottom float64
	Near, Far                float64
	LightPosition            director.Vec3
}

// DefaultShadowFrustum is used until a model has been fitted
func DefaultShadowFrustum() ShadowFrustum {
	const size = 50
	return ShadowFrustum{
		Left:   -size,
		Right:  size,
		Top:    size,
		Bottom: -size,
		Near:   0.1,
		Far:    500,
	}
}

// FitShadowFrustum tightens the shadow frustum around a model's bounds.
// It is a one-time operation at load; failures leave the default in place.
func FitShadowFrustum(b director.Bounds) (ShadowFrustum, error) {
	fr := DefaultShadowFrustum()
	if b.IsEmpty() {
		return fr, errors.New("model bounds are empty")
	}

	size := b.Size()
	if math.IsNaN(size.Length()) || math.IsInf(size.Length(), 0) {
		return fr, errors.New("model bounds are not finite")
	}
	center := b.Center()

	pad := size.MaxComponent()*0.6 + 1
	fr.Left, fr.Right = -pad, pad
	fr.Top, fr.Bottom = pad, -pad

	lightDir := director.Vec3{X: 0.5, Y: -1, Z: 0.5}.Normalize()
	fr.LightPosition = lightDir.Scale(math.Max(size.Length(), 20)).Add(center)

	return fr, nil
}

// blobStops are the alpha stops of the blob shadow gradient
var blobStops = []struct {
	offset float64
	alpha  float64
}{
	{0, 0.45},
	{0.4, 0.28},
	{1, 0},
}

// BlobShadowTexture draws a soft radial shadow into a size x size image
func BlobShadowTexture(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	r0 := float64(size) * 0.05
	r1 := float64(size) / 2

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - c
			dy := float64(y) + 0.5 - c
			t := Clamp((math.Hypot(dx, dy)-r0)/(r1-r0), 0, 1)
			a := uint8(math.Round(gradientAlpha(t) * 255))
			// Black, premultiplied
			img.SetRGBA(x, y, color.RGBA{A: a})
		}
	}
	return img
}

func gradientAlpha(t float64) float64 {
	for i := 1; i < len(blobStops); i++ {
		lo, hi := blobStops[i-1], blobStops[i]
		if t <= hi.offset {
			u := (t - lo.offset) / (hi.offset - lo.offset)
			return lerp(lo.alpha, hi.alpha, u)
		}
	}
	return blobStops[len(blobStops)-1].alpha
}
