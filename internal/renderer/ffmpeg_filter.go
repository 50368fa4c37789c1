package renderer

import (
	"fmt"
	"math"
)

// MaxPixelRatio caps the supersampling factor of rendered frames
const MaxPixelRatio = 1.5

// RenderSize returns the internal render resolution for an output size and a
// device pixel ratio. Dimensions are kept even for yuv420p.
func RenderSize(width, height int, pixelRatio float64) (int, int) {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	ratio := math.Min(pixelRatio, MaxPixelRatio)
	return even(int(math.Round(float64(width) * ratio))), even(int(math.Round(float64(height) * ratio)))
}

// GenerateOutputFilter creates the FFmpeg filter that brings supersampled
// frames down to the output size, optionally with a frame counter
func GenerateOutputFilter(renderW, renderH, width, height int, debug bool) string {
	filter := "setsar=1"
	if renderW != width || renderH != height {
		filter = fmt.Sprintf("scale=%d:%d:flags=lanczos,setsar=1", width, height)
	}

	if debug {
		filter += ",drawtext=text='Frame %{n}':x=w-tw-10:y=10:fontsize=20:fontcolor=yellow:box=1:boxcolor=black@0.5"
	}

	return filter
}

func even(v int) int {
	if v%2 != 0 {
		return v + 1
	}
	return v
}
