package effects

import (
	"image"
	"image/color"
	"image/draw"
)

// FrameInfo is what overlays know about the frame they decorate
type FrameInfo struct {
	Index        int
	Progress     float64
	ProgressText string // Progress as exported to the page
	Segment      [2]int
	Blend        float64
	HourOfDay    float64
	Elevation    float64
}

type Effect interface {
	Apply(dst *image.RGBA, info FrameInfo)
}

// Chain applies effects in order
type Chain []Effect

func (c Chain) Apply(dst *image.RGBA, info FrameInfo) {
	for _, e := range c {
		e.Apply(dst, info)
	}
}

// Corner selects where an overlay is anchored
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

// anchor places a w x h box in the given corner with a margin
func anchor(bounds image.Rectangle, c Corner, w, h, margin int) image.Rectangle {
	var x, y int
	switch c {
	case TopRight:
		x, y = bounds.Max.X-w-margin, bounds.Min.Y+margin
	case BottomLeft:
		x, y = bounds.Min.X+margin, bounds.Max.Y-h-margin
	case BottomRight:
		x, y = bounds.Max.X-w-margin, bounds.Max.Y-h-margin
	default:
		x, y = bounds.Min.X+margin, bounds.Min.Y+margin
	}
	return image.Rect(x, y, x+w, y+h)
}

// shade darkens r with a translucent black box
func shade(dst *image.RGBA, r image.Rectangle, alpha uint8) {
	draw.Draw(dst, r, &image.Uniform{C: color.RGBA{A: alpha}}, image.Point{}, draw.Over)
}
