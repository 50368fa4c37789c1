package director

import (
	"errors"
	"math"
	"math/rand"
	"path/filepath"
	"testing"
)

func TestNewTrackValidation(t *testing.T) {
	valid := DefaultScenario().Keyframes

	tests := []struct {
		name    string
		mutate  func([]Keyframe) []Keyframe
		wantErr bool
	}{
		{"default", func(k []Keyframe) []Keyframe { return k }, false},
		{"single keyframe", func(k []Keyframe) []Keyframe { return k[:1] }, true},
		{"empty", func(k []Keyframe) []Keyframe { return nil }, true},
		{"not starting at zero", func(k []Keyframe) []Keyframe { k[0].Progress = 0.1; return k }, true},
		{"not ending at one", func(k []Keyframe) []Keyframe { k[len(k)-1].Progress = 0.9; return k }, true},
		{"decreasing", func(k []Keyframe) []Keyframe { k[2].Progress = 0.5; return k }, true},
		{"zero fov", func(k []Keyframe) []Keyframe { k[1].FieldOfView = 0; return k }, true},
		{"hour 24", func(k []Keyframe) []Keyframe { k[1].HourOfDay = 24; return k }, true},
		{"degenerate segment", func(k []Keyframe) []Keyframe { k[2].Progress = 0.7; return k }, false},
		{"near-boundary ends", func(k []Keyframe) []Keyframe {
			k[0].Progress = 1e-12
			k[len(k)-1].Progress = 1 - 1e-12
			return k
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kfs := make([]Keyframe, len(valid))
			copy(kfs, valid)
			track, err := NewTrack(tt.mutate(kfs))

			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidTrack) {
					t.Errorf("Expected ErrInvalidTrack, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if track.First().Progress != 0 || track.At(track.Len()-1).Progress != 1 {
				t.Errorf("Track end points not snapped: %v .. %v", track.First().Progress, track.At(track.Len()-1).Progress)
			}
		})
	}
}

func TestTrackIsImmutable(t *testing.T) {
	kfs := DefaultScenario().Keyframes
	track, err := NewTrack(kfs)
	if err != nil {
		t.Fatalf("NewTrack failed: %v", err)
	}

	kfs[1].FieldOfView = 10
	out := track.Keyframes()
	out[1].FieldOfView = 20

	if track.At(1).FieldOfView != 100 {
		t.Errorf("Track was mutated through a shared slice: fov=%v", track.At(1).FieldOfView)
	}
}

func TestDirectorGenerateScenario(t *testing.T) {
	d := NewDirector()

	shots := []Keyframe{
		{CameraPosition: Vec3{Z: 0}, FieldOfView: 60, HourOfDay: 10},
		{CameraPosition: Vec3{Z: 10}, FieldOfView: 60, HourOfDay: 11},
		{CameraPosition: Vec3{Z: 24}, FieldOfView: 60, HourOfDay: 12},
	}

	scenario, err := d.GenerateScenario(shots)
	if err != nil {
		t.Fatalf("GenerateScenario failed: %v", err)
	}

	if scenario.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", scenario.Version)
	}

	kfs := scenario.Keyframes
	if kfs[0].Progress != 0 || kfs[2].Progress != 1 {
		t.Fatalf("Expected track to span [0,1], got %v..%v", kfs[0].Progress, kfs[2].Progress)
	}

	// 10 units of travel out of 24
	if math.Abs(kfs[1].Progress-10.0/24.0) > 1e-9 {
		t.Errorf("Expected middle shot at %f, got %f", 10.0/24.0, kfs[1].Progress)
	}

	if kfs[1].Focus != "shot_2" {
		t.Errorf("Expected generated focus name shot_2, got %s", kfs[1].Focus)
	}

	for i, kf := range kfs {
		t.Logf("Keyframe %d: progress=%.3f, focus=%s", i, kf.Progress, kf.Focus)
	}
}

func TestDirectorClampsLongSegments(t *testing.T) {
	d := NewDirector()
	shots := []Keyframe{
		{CameraPosition: Vec3{Z: 0}, FieldOfView: 60, HourOfDay: 10},
		{CameraPosition: Vec3{Z: 10}, FieldOfView: 60, HourOfDay: 11},
		{CameraPosition: Vec3{Z: 40}, FieldOfView: 60, HourOfDay: 12},
	}

	scenario, err := d.GenerateScenario(shots)
	if err != nil {
		t.Fatalf("GenerateScenario failed: %v", err)
	}

	// The 30 unit segment is capped at MaxShare
	if got := scenario.Keyframes[1].Progress; math.Abs(got-(1-d.MaxShare)) > 1e-9 {
		t.Errorf("Expected middle shot at %f, got %f", 1-d.MaxShare, got)
	}
	checkShares(t, d, d.calculateShares(shots))
}

func checkShares(t *testing.T, d *Director, shares []float64) {
	t.Helper()
	sum := 0.0
	for i, s := range shares {
		if s < d.MinShare-1e-9 || s > d.MaxShare+1e-9 {
			t.Errorf("Share %d = %f outside [%v, %v] in %v", i, s, d.MinShare, d.MaxShare, shares)
		}
		sum += s
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("Shares %v sum to %f, want 1", shares, sum)
	}
}

func shotsAlongZ(distances ...float64) []Keyframe {
	shots := []Keyframe{{FieldOfView: 60, HourOfDay: 12}}
	z := 0.0
	for _, dz := range distances {
		z += dz
		shots = append(shots, Keyframe{CameraPosition: Vec3{Z: z}, FieldOfView: 60, HourOfDay: 12})
	}
	return shots
}

func TestDirectorSharesStayInBounds(t *testing.T) {
	d := NewDirector()

	tests := [][]float64{
		{100, 0.001},
		{0, 50},
		{100, 0.1, 0.1, 0.1, 0.1, 0.1},
		{1000, 1, 1, 1, 1, 1, 1, 1},
		{5, 5, 5, 5, 0},
		{900, 800, 0.01, 0.01},
	}
	for _, distances := range tests {
		checkShares(t, d, d.calculateShares(shotsAlongZ(distances...)))
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		distances := make([]float64, 2+rng.Intn(8))
		for j := range distances {
			distances[j] = math.Pow(10, rng.Float64()*6-3)
			if rng.Intn(10) == 0 {
				distances[j] = 0
			}
		}
		shots := shotsAlongZ(distances...)
		shares := d.calculateShares(shots)
		checkShares(t, d, shares)

		scenario, err := d.GenerateScenario(shots)
		if err != nil {
			t.Fatalf("GenerateScenario(%v) failed: %v", distances, err)
		}
		kfs := scenario.Keyframes
		for j := 1; j < len(kfs); j++ {
			span := kfs[j].Progress - kfs[j-1].Progress
			if span < d.MinShare-1e-9 || span > d.MaxShare+1e-9 {
				t.Fatalf("Segment %d of %v spans %f", j, distances, span)
			}
		}
	}
}

func TestDirectorStaticShots(t *testing.T) {
	d := NewDirector()
	shots := make([]Keyframe, 5)
	for i := range shots {
		shots[i] = Keyframe{FieldOfView: 50, HourOfDay: 12}
	}

	scenario, err := d.GenerateScenario(shots)
	if err != nil {
		t.Fatalf("GenerateScenario failed: %v", err)
	}

	for i, kf := range scenario.Keyframes {
		want := float64(i) / 4
		if math.Abs(kf.Progress-want) > 1e-9 {
			t.Errorf("Keyframe %d: expected progress %f, got %f", i, want, kf.Progress)
		}
	}
}

func TestDirectorRejectsSingleShot(t *testing.T) {
	if _, err := NewDirector().GenerateScenario([]Keyframe{{FieldOfView: 50}}); err == nil {
		t.Error("Expected error for a single shot")
	}
}

func TestScenarioWriteRead(t *testing.T) {
	scenario := DefaultScenario()
	scenario.Model = &Bounds{Min: Vec3{X: -5, Y: 0, Z: -8}, Max: Vec3{X: 5, Y: 4, Z: 8}}

	tmpFile := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := WriteScenario(scenario, tmpFile); err != nil {
		t.Fatalf("WriteScenario failed: %v", err)
	}

	readScenario, err := ReadScenario(tmpFile)
	if err != nil {
		t.Fatalf("ReadScenario failed: %v", err)
	}

	if readScenario.Version != scenario.Version {
		t.Errorf("Version mismatch: expected %s, got %s", scenario.Version, readScenario.Version)
	}

	if len(readScenario.Keyframes) != len(scenario.Keyframes) {
		t.Fatalf("Keyframe count mismatch: expected %d, got %d", len(scenario.Keyframes), len(readScenario.Keyframes))
	}

	if readScenario.Keyframes[1].CameraPosition != scenario.Keyframes[1].CameraPosition {
		t.Errorf("Camera position mismatch: %+v vs %+v", readScenario.Keyframes[1].CameraPosition, scenario.Keyframes[1].CameraPosition)
	}

	if readScenario.Model == nil || readScenario.Model.Max.Y != 4 {
		t.Errorf("Model bounds not preserved: %+v", readScenario.Model)
	}

	if readScenario.Sprite == nil || readScenario.Sprite.FrameDuration != 0.05 {
		t.Errorf("Sprite settings not preserved: %+v", readScenario.Sprite)
	}
}

func TestReadScenarioRejectsInvalidTrack(t *testing.T) {
	scenario := &Scenario{Version: "1.0", Keyframes: []Keyframe{{Progress: 0, FieldOfView: 90}}}

	tmpFile := filepath.Join(t.TempDir(), "broken.yaml")
	if err := WriteScenario(scenario, tmpFile); err != nil {
		t.Fatalf("WriteScenario failed: %v", err)
	}

	if _, err := ReadScenario(tmpFile); !errors.Is(err, ErrInvalidTrack) {
		t.Errorf("Expected ErrInvalidTrack, got %v", err)
	}
}

func TestBounds(t *testing.T) {
	b := Bounds{Min: Vec3{X: -2, Y: 0, Z: -4}, Max: Vec3{X: 2, Y: 6, Z: 4}}

	if b.IsEmpty() {
		t.Error("Expected non-empty bounds")
	}
	if got := b.Size(); got != (Vec3{X: 4, Y: 6, Z: 8}) {
		t.Errorf("Unexpected size %+v", got)
	}
	if got := b.Center(); got != (Vec3{X: 0, Y: 3, Z: 0}) {
		t.Errorf("Unexpected center %+v", got)
	}
	if !(Bounds{Min: Vec3{X: 1}, Max: Vec3{X: 0}}).IsEmpty() {
		t.Error("Expected inverted bounds to be empty")
	}
}
