package director

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTrack is returned when keyframes cannot form a track
var ErrInvalidTrack = errors.New("invalid keyframe track")

// boundaryEpsilon is the tolerance for the 0 and 1 end points of a track
const boundaryEpsilon = 1e-9

// Track is an ordered, immutable set of keyframes covering progress [0,1]
type Track struct {
	keyframes []Keyframe
}

// NewTrack validates keyframes and builds a track from a private copy of them
func NewTrack(keyframes []Keyframe) (*Track, error) {
	if len(keyframes) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 keyframes, got %d", ErrInvalidTrack, len(keyframes))
	}

	kfs := make([]Keyframe, len(keyframes))
	copy(kfs, keyframes)

	for i, kf := range kfs {
		if math.IsNaN(kf.Progress) || kf.Progress < 0 || kf.Progress > 1 {
			return nil, fmt.Errorf("%w: keyframe %d progress %v outside [0,1]", ErrInvalidTrack, i, kf.Progress)
		}
		if i > 0 && kf.Progress < kfs[i-1].Progress {
			return nil, fmt.Errorf("%w: keyframe %d progress %v is before %v", ErrInvalidTrack, i, kf.Progress, kfs[i-1].Progress)
		}
		if !(kf.FieldOfView > 0) || kf.FieldOfView >= 180 {
			return nil, fmt.Errorf("%w: keyframe %d fov %v must be in (0,180)", ErrInvalidTrack, i, kf.FieldOfView)
		}
		if math.IsNaN(kf.HourOfDay) || kf.HourOfDay < 0 || kf.HourOfDay >= 24 {
			return nil, fmt.Errorf("%w: keyframe %d hour %v outside [0,24)", ErrInvalidTrack, i, kf.HourOfDay)
		}
	}

	if kfs[0].Progress > boundaryEpsilon {
		return nil, fmt.Errorf("%w: first keyframe must start at 0, got %v", ErrInvalidTrack, kfs[0].Progress)
	}
	last := len(kfs) - 1
	if kfs[last].Progress < 1-boundaryEpsilon {
		return nil, fmt.Errorf("%w: last keyframe must end at 1, got %v", ErrInvalidTrack, kfs[last].Progress)
	}
	kfs[0].Progress = 0
	kfs[last].Progress = 1

	return &Track{keyframes: kfs}, nil
}

// Len returns the number of keyframes
func (t *Track) Len() int {
	return len(t.keyframes)
}

// At returns keyframe i
func (t *Track) At(i int) Keyframe {
	return t.keyframes[i]
}

// First returns the keyframe at progress 0
func (t *Track) First() Keyframe {
	return t.keyframes[0]
}

// Keyframes returns a copy of the keyframes
func (t *Track) Keyframes() []Keyframe {
	out := make([]Keyframe, len(t.keyframes))
	copy(out, t.keyframes)
	return out
}

// Track builds the validated track of the scenario
func (s *Scenario) Track() (*Track, error) {
	return NewTrack(s.Keyframes)
}

// DefaultScenario returns the built-in walk-through: a slow dolly over the
// courtyard in the morning light, a cut at 0.7 and a rise back to noon
func DefaultScenario() *Scenario {
	return &Scenario{
		Version: "1.0",
		Keyframes: []Keyframe{
			{
				Progress:       0.0,
				Focus:          "entrance",
				CameraPosition: Vec3{X: 0, Y: 6, Z: -5.5},
				CameraLookAt:   Vec3{X: 0, Y: 2, Z: -5.5},
				FieldOfView:    100,
				HourOfDay:      12,
				SunAzimuth:     0,
				SpritePosition: Vec3{X: 0, Y: 0, Z: -6.5},
			},
			{
				Progress:       0.7,
				Focus:          "courtyard",
				CameraPosition: Vec3{X: 0, Y: 6, Z: 5},
				CameraLookAt:   Vec3{X: 0, Y: 2, Z: 5},
				FieldOfView:    100,
				HourOfDay:      8.5,
				SunAzimuth:     0,
				SpritePosition: Vec3{X: 0, Y: 0, Z: 15},
			},
			{
				Progress:       0.71,
				Focus:          "cut",
				CameraPosition: Vec3{X: 0, Y: 5, Z: 0},
				CameraLookAt:   Vec3{X: 0, Y: 5, Z: 0},
				FieldOfView:    100,
				HourOfDay:      9,
				SunAzimuth:     0,
				SpritePosition: Vec3{X: 0, Y: 0, Z: 15},
			},
			{
				Progress:       1.0,
				Focus:          "overview",
				CameraPosition: Vec3{X: 0, Y: 6, Z: 0},
				CameraLookAt:   Vec3{X: 0, Y: 2, Z: 0},
				FieldOfView:    100,
				HourOfDay:      12,
				SunAzimuth:     0,
				SpritePosition: Vec3{X: 0, Y: 0, Z: 15},
			},
		},
		Sprite: &SpriteSpec{
			Frames:        "content/png",
			FrameDuration: 0.05,
			Height:        1.5,
			Aspect:        371.0 / 835.0,
		},
	}
}

// Director lays out camera shots along the scroll range
type Director struct {
	MinShare float64 // Minimum share of the scroll range per segment
	MaxShare float64 // Maximum share of the scroll range per segment
}

// NewDirector creates a new Director with default settings
func NewDirector() *Director {
	return &Director{
		MinShare: 0.02,
		MaxShare: 0.6,
	}
}

// GenerateScenario distributes shots over [0,1] proportionally to the camera
// travel between them. Progress values of the input shots are ignored.
func (d *Director) GenerateScenario(shots []Keyframe) (*Scenario, error) {
	if len(shots) < 2 {
		return nil, fmt.Errorf("need at least 2 shots, got %d", len(shots))
	}

	shares := d.calculateShares(shots)

	keyframes := make([]Keyframe, len(shots))
	copy(keyframes, shots)
	keyframes[0].Progress = 0
	acc := 0.0
	for i := 1; i < len(keyframes); i++ {
		acc += shares[i-1]
		keyframes[i].Progress = acc
	}
	keyframes[len(keyframes)-1].Progress = 1

	for i := range keyframes {
		if keyframes[i].Focus == "" {
			keyframes[i].Focus = fmt.Sprintf("shot_%d", i+1)
		}
	}

	scenario := &Scenario{
		Version:   "1.0",
		Keyframes: keyframes,
	}
	if _, err := scenario.Track(); err != nil {
		return nil, err
	}
	return scenario, nil
}

// calculateShares returns the normalized share of the scroll range for each
// segment between consecutive shots
func (d *Director) calculateShares(shots []Keyframe) []float64 {
	n := len(shots) - 1
	shares := make([]float64, n)

	total := 0.0
	for i := 0; i < n; i++ {
		shares[i] = shots[i+1].CameraPosition.Sub(shots[i].CameraPosition).Length() +
			shots[i+1].CameraLookAt.Sub(shots[i].CameraLookAt).Length()
		total += shares[i]
	}

	if total == 0 {
		for i := range shares {
			shares[i] = 1 / float64(n)
		}
		return shares
	}

	if d.MinShare*float64(n) > 1 || d.MaxShare*float64(n) < 1 {
		for i := range shares {
			shares[i] /= total
		}
		return shares
	}

	// Find the scale at which the clamped shares fill the range exactly.
	// The clamped sum grows with the scale from n*MinShare to n*MaxShare.
	smallest := math.Inf(1)
	for i := range shares {
		shares[i] = math.Max(shares[i], total*1e-9)
		smallest = math.Min(smallest, shares[i])
	}
	clamped := func(scale float64) float64 {
		sum := 0.0
		for _, raw := range shares {
			sum += math.Max(d.MinShare, math.Min(d.MaxShare, raw*scale))
		}
		return sum
	}

	lo, hi := 0.0, d.MaxShare/smallest
	for i := 0; i < 200 && hi-lo > hi*1e-15; i++ {
		mid := (lo + hi) / 2
		if clamped(mid) < 1 {
			lo = mid
		} else {
			hi = mid
		}
	}

	sum := 0.0
	for i, raw := range shares {
		shares[i] = math.Max(d.MinShare, math.Min(d.MaxShare, raw*hi))
		sum += shares[i]
	}
	for i := range shares {
		shares[i] /= sum
	}

	return shares
}
