package renderer

import (
	"math"
	"strings"
	"testing"

	"github.com/ivlev/scrollcam/internal/director"
)

func mustTrack(t *testing.T, kfs []director.Keyframe) *director.Track {
	t.Helper()
	track, err := director.NewTrack(kfs)
	if err != nil {
		t.Fatalf("NewTrack failed: %v", err)
	}
	return track
}

func TestEase(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{0.25, 0.0625},
		{0.75, 0.9375},
		{-1, 0},
		{2, 1},
	}

	for _, tt := range tests {
		if got := Ease(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Ease(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEaseMonotonicAndBounded(t *testing.T) {
	prev := Ease(0)
	for i := 1; i <= 10000; i++ {
		x := float64(i) / 10000
		y := Ease(x)
		if y < 0 || y > 1 {
			t.Fatalf("Ease(%v) = %v out of [0,1]", x, y)
		}
		if y < prev {
			t.Fatalf("Ease not monotonic at %v: %v < %v", x, y, prev)
		}
		prev = y
	}
}

func TestLocate(t *testing.T) {
	track := mustTrack(t, director.DefaultScenario().Keyframes)

	tests := []struct {
		t          float64
		start, end int
		local      float64
	}{
		{0, 0, 1, 0},
		{0.35, 0, 1, 0.5},
		{0.7, 0, 1, 1}, // shared boundary prefers the earlier segment
		{0.705, 1, 2, 0.5},
		{0.71, 1, 2, 1},
		{1, 2, 3, 1},
		{-0.5, 0, 1, 0},
		{1.5, 2, 3, 1},
		{math.NaN(), 0, 1, 0},
	}

	for _, tt := range tests {
		seg := Locate(track, tt.t)
		if seg.Start != tt.start || seg.End != tt.end {
			t.Errorf("Locate(%v): got segment %d-%d, want %d-%d", tt.t, seg.Start, seg.End, tt.start, tt.end)
		}
		if math.Abs(seg.Local-tt.local) > 1e-9 {
			t.Errorf("Locate(%v): got local %v, want %v", tt.t, seg.Local, tt.local)
		}
		if seg.Blend != Ease(seg.Local) {
			t.Errorf("Locate(%v): blend %v is not ease(local)", tt.t, seg.Blend)
		}
	}
}

func TestLocateDegenerateSegment(t *testing.T) {
	kfs := []director.Keyframe{
		{Progress: 0, FieldOfView: 50, HourOfDay: 6},
		{Progress: 0.5, FieldOfView: 60, HourOfDay: 8},
		{Progress: 0.5, FieldOfView: 70, HourOfDay: 10},
		{Progress: 1, FieldOfView: 80, HourOfDay: 12},
	}
	track := mustTrack(t, kfs)

	seg := Locate(track, 0.5)
	if seg.Start != 0 || seg.Local != 1 {
		t.Errorf("Expected boundary to stay on segment 0 with local 1, got %+v", seg)
	}

	if got := localFactor(0.5, 0.5, 0.5); got != 1 {
		t.Errorf("Degenerate segment at its end: got %v, want 1", got)
	}
	if got := localFactor(0.5, 0.5, 0.4); got != 0 {
		t.Errorf("Degenerate segment before its end: got %v, want 0", got)
	}

	seg = Locate(track, 0.5+1e-6)
	if seg.Start != 2 {
		t.Errorf("Expected progress past the jump to use segment 2, got %+v", seg)
	}
}

func TestLocateTotal(t *testing.T) {
	track := mustTrack(t, director.DefaultScenario().Keyframes)
	for i := 0; i <= 100000; i++ {
		x := float64(i) / 100000
		seg := Locate(track, x)
		s, e := track.At(seg.Start).Progress, track.At(seg.End).Progress
		if x < s-segmentEpsilon || x > e+segmentEpsilon {
			t.Fatalf("Locate(%v) returned %d-%d spanning [%v,%v]", x, seg.Start, seg.End, s, e)
		}
	}
}

func TestBoundaryExactness(t *testing.T) {
	scenario := director.DefaultScenario()
	scenario.Keyframes[1].SunAzimuth = 33.3
	scenario.Keyframes[2].CameraLookAt = director.Vec3{X: 0.1, Y: 0.7, Z: -0.3}
	track := mustTrack(t, scenario.Keyframes)

	for i := 0; i < track.Len(); i++ {
		kf := track.At(i)
		ch, _ := Sample(track, kf.Progress)

		if ch.CameraPosition != kf.CameraPosition ||
			ch.CameraLookAt != kf.CameraLookAt ||
			ch.FieldOfView != kf.FieldOfView ||
			ch.HourOfDay != kf.HourOfDay ||
			ch.SunAzimuth != kf.SunAzimuth ||
			ch.SpritePosition != kf.SpritePosition {
			t.Errorf("Keyframe %d at progress %v: got %+v, want values of %+v", i, kf.Progress, ch, kf)
		}
	}
}

func TestSampleMidpoint(t *testing.T) {
	track := mustTrack(t, []director.Keyframe{
		{Progress: 0, CameraPosition: director.Vec3{X: 0, Y: 6, Z: -5.5}, FieldOfView: 100, HourOfDay: 12},
		{Progress: 1, CameraPosition: director.Vec3{X: 0, Y: 6, Z: 0}, FieldOfView: 60, HourOfDay: 8},
	})

	ch, seg := Sample(track, 0.5)
	want := director.Vec3{X: 0, Y: 6, Z: -2.75}
	if ch.CameraPosition != want {
		t.Errorf("Expected camera %+v, got %+v", want, ch.CameraPosition)
	}
	if seg.Blend != 0.5 {
		t.Errorf("Expected blend 0.5, got %v", seg.Blend)
	}
	if math.Abs(ch.FieldOfView-80) > 1e-12 || math.Abs(ch.HourOfDay-10) > 1e-12 {
		t.Errorf("Expected fov 80 and hour 10, got %v and %v", ch.FieldOfView, ch.HourOfDay)
	}
}

func TestSampleIsIdempotent(t *testing.T) {
	track := mustTrack(t, director.DefaultScenario().Keyframes)
	for _, x := range []float64{0, 0.123, 0.7, 0.7049, 0.9999, 1} {
		a, segA := Sample(track, x)
		b, segB := Sample(track, x)
		if a != b || segA != segB {
			t.Errorf("Sample(%v) not idempotent: %+v vs %+v", x, a, b)
		}
	}
}

func TestRenderSize(t *testing.T) {
	tests := []struct {
		ratio      float64
		wantW, wantH int
	}{
		{1, 1280, 720},
		{2, 1920, 1080},
		{0, 1280, 720},
		{1.25, 1600, 900},
	}
	for _, tt := range tests {
		w, h := RenderSize(1280, 720, tt.ratio)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("RenderSize(ratio %v) = %dx%d, want %dx%d", tt.ratio, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestGenerateOutputFilter(t *testing.T) {
	filter := GenerateOutputFilter(1920, 1080, 1280, 720, false)
	if !strings.Contains(filter, "scale=1280:720") {
		t.Errorf("Filter should downscale: %s", filter)
	}

	filter = GenerateOutputFilter(1280, 720, 1280, 720, true)
	if strings.Contains(filter, "scale=") {
		t.Errorf("Filter should not scale same-size frames: %s", filter)
	}
	if !strings.Contains(filter, "drawtext") {
		t.Errorf("Debug filter should contain drawtext: %s", filter)
	}

	t.Logf("Generated filter: %s", filter)
}
