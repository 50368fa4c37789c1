package renderer

import (
	"math"

	"github.com/ivlev/scrollcam/internal/director"
)

// segmentEpsilon absorbs float noise when matching progress against
// keyframe boundaries
const segmentEpsilon = 1e-9

// Channels is the scene state interpolated from the keyframe track
type Channels struct {
	CameraPosition director.Vec3
	CameraLookAt   director.Vec3
	FieldOfView    float64 // Degrees
	HourOfDay      float64
	SunAzimuth     float64 // Degrees
	SpritePosition director.Vec3
}

// Segment identifies the bracketing keyframes for a progress value
type Segment struct {
	Start, End int     // Keyframe indices
	Local      float64 // Linear position inside the segment [0,1]
	Blend      float64 // Eased blend factor
}

// Locate finds the first pair of adjacent keyframes whose progress range
// contains t. Progress is clamped to [0,1] first; ties at a shared boundary
// resolve to the earlier segment.
func Locate(track *director.Track, t float64) Segment {
	t = Clamp(t, 0, 1)
	n := track.Len()

	for i := 0; i < n-1; i++ {
		start := track.At(i).Progress
		end := track.At(i + 1).Progress
		if t >= start-segmentEpsilon && t <= end+segmentEpsilon {
			local := localFactor(start, end, t)
			return Segment{Start: i, End: i + 1, Local: local, Blend: Ease(local)}
		}
	}

	// Unreachable for a valid track, kept for float edge cases
	return Segment{Start: n - 2, End: n - 1, Local: 1, Blend: 1}
}

// localFactor maps t into [0,1] over the segment. Zero-length segments snap
// to their end once t reaches it.
func localFactor(start, end, t float64) float64 {
	span := end - start
	if span > segmentEpsilon {
		return Clamp((t-start)/span, 0, 1)
	}
	if t >= end-segmentEpsilon {
		return 1
	}
	return 0
}

// Interpolate blends every channel of two keyframes with the same factor
func Interpolate(a, b director.Keyframe, u float64) Channels {
	return Channels{
		CameraPosition: lerpVec(a.CameraPosition, b.CameraPosition, u),
		CameraLookAt:   lerpVec(a.CameraLookAt, b.CameraLookAt, u),
		FieldOfView:    lerp(a.FieldOfView, b.FieldOfView, u),
		HourOfDay:      lerp(a.HourOfDay, b.HourOfDay, u),
		SunAzimuth:     lerp(a.SunAzimuth, b.SunAzimuth, u),
		SpritePosition: lerpVec(a.SpritePosition, b.SpritePosition, u),
	}
}

// Sample locates the segment for t and interpolates all channels
func Sample(track *director.Track, t float64) (Channels, Segment) {
	seg := Locate(track, t)
	return Interpolate(track.At(seg.Start), track.At(seg.End), seg.Blend), seg
}

// Ease applies the ease-in-out cubic curve to t in [0,1]
func Ease(t float64) float64 {
	return easeInOutCubic(Clamp(t, 0, 1))
}

// Clamp limits v to [lo,hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// lerp performs linear interpolation between a and b. The two-term form
// returns a and b exactly at t=0 and t=1.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func lerpVec(a, b director.Vec3, t float64) director.Vec3 {
	return director.Vec3{
		X: lerp(a.X, b.X, t),
		Y: lerp(a.Y, b.Y, t),
		Z: lerp(a.Z, b.Z, t),
	}
}

// easeInOutCubic applies smooth easing function
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
