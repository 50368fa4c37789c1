package renderer

import (
	"math"
	"testing"

	"github.com/ivlev/scrollcam/internal/director"
)

func TestFitShadowFrustum(t *testing.T) {
	b := director.Bounds{Min: director.Vec3{X: -5, Y: 0, Z: -10}, Max: director.Vec3{X: 5, Y: 4, Z: 10}}

	fr, err := FitShadowFrustum(b)
	if err != nil {
		t.Fatalf("FitShadowFrustum failed: %v", err)
	}

	// max(size) = 20 -> pad = 13
	if math.Abs(fr.Right-13) > 1e-9 || fr.Left != -fr.Right || fr.Top != fr.Right || fr.Bottom != -fr.Right {
		t.Errorf("Unexpected frustum %+v", fr)
	}

	// |size| = sqrt(100+16+400) > 20
	dist := math.Sqrt(516)
	got := fr.LightPosition.Sub(b.Center()).Length()
	if math.Abs(got-dist) > 1e-9 {
		t.Errorf("Expected light at distance %v from center, got %v", dist, got)
	}
	if fr.LightPosition.Y >= b.Center().Y {
		t.Errorf("Light direction points down, position should be below center: %+v", fr.LightPosition)
	}
}

func TestFitShadowFrustumSmallModel(t *testing.T) {
	b := director.Bounds{Max: director.Vec3{X: 1, Y: 1, Z: 1}}
	fr, err := FitShadowFrustum(b)
	if err != nil {
		t.Fatalf("FitShadowFrustum failed: %v", err)
	}
	if got := fr.LightPosition.Sub(b.Center()).Length(); math.Abs(got-20) > 1e-9 {
		t.Errorf("Expected minimum light distance 20, got %v", got)
	}
}

func TestFitShadowFrustumEmpty(t *testing.T) {
	fr, err := FitShadowFrustum(director.Bounds{Min: director.Vec3{X: 1}, Max: director.Vec3{X: -1}})
	if err == nil {
		t.Fatal("Expected error for empty bounds")
	}
	if fr != DefaultShadowFrustum() {
		t.Errorf("Expected default frustum on failure, got %+v", fr)
	}
}

func TestBlobShadowTexture(t *testing.T) {
	img := BlobShadowTexture(64)

	center := img.RGBAAt(32, 32)
	if center.A < 100 || center.A > 120 {
		t.Errorf("Expected center alpha near 0.45*255, got %d", center.A)
	}
	if corner := img.RGBAAt(0, 0); corner.A != 0 {
		t.Errorf("Expected transparent corner, got %d", corner.A)
	}
	if edge := img.RGBAAt(32, 2); edge.A >= center.A {
		t.Errorf("Expected alpha to fall off towards the edge: %d >= %d", edge.A, center.A)
	}
}
