package renderer

import (
	"math"

	"github.com/ivlev/scrollcam/internal/director"
)

// SunDistance is how far from the origin the directional light is placed
const SunDistance = 100.0

// Lights holds the lighting parameters derived from the time of day
type Lights struct {
	Elevation        float64       // Degrees above the horizon, [-90,90]
	SunDirection     director.Vec3 // Unit vector towards the sun
	SunPosition      director.Vec3 // SunDirection * SunDistance
	SunIntensity     float64
	AmbientIntensity float64
}

// SunElevation models the day as a cosine arc peaking at solar noon
func SunElevation(hour float64) float64 {
	angle := (hour - 12) * (math.Pi / 12)
	return math.Cos(angle) * 90
}

// Environment derives sun direction and light levels from the hour of day
// and the sun azimuth. Intensities are mapped linearly from the [0,90]
// elevation range and deliberately not clamped, so a sun below the horizon
// yields values under the daytime minimums.
func Environment(hour, azimuth float64) Lights {
	elevation := SunElevation(hour)

	phi := degToRad(90 - elevation)
	theta := degToRad(azimuth)
	dir := sphericalToCartesian(1, phi, theta)

	return Lights{
		Elevation:        elevation,
		SunDirection:     dir,
		SunPosition:      dir.Scale(SunDistance),
		SunIntensity:     MapLinear(elevation, 0, 90, 0.5, 3.5),
		AmbientIntensity: MapLinear(elevation, 0, 90, 0.2, 1.1),
	}
}

// MapLinear remaps x from [a1,a2] to [b1,b2] without clamping
func MapLinear(x, a1, a2, b1, b2 float64) float64 {
	return b1 + (x-a1)*(b2-b1)/(a2-a1)
}

// sphericalToCartesian uses the polar angle phi from +Y and the azimuth theta
// around Y measured from +Z
func sphericalToCartesian(radius, phi, theta float64) director.Vec3 {
	sinPhi := math.Sin(phi) * radius
	return director.Vec3{
		X: sinPhi * math.Sin(theta),
		Y: math.Cos(phi) * radius,
		Z: sinPhi * math.Cos(theta),
	}
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
