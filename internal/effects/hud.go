package effects

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// HUD prints frame diagnostics in a corner of the frame
type HUD struct {
	Corner Corner
	Color  color.RGBA
}

func NewHUD() *HUD {
	return &HUD{
		Corner: TopLeft,
		Color:  color.RGBA{R: 255, G: 230, B: 0, A: 255},
	}
}

func (h *HUD) Lines(info FrameInfo) []string {
	return []string{
		fmt.Sprintf("frame %d", info.Index),
		fmt.Sprintf("progress %s", info.ProgressText),
		fmt.Sprintf("segment %d-%d blend %.3f", info.Segment[0], info.Segment[1], info.Blend),
		fmt.Sprintf("hour %.2f sun %.1f", info.HourOfDay, info.Elevation),
	}
}

func (h *HUD) Apply(dst *image.RGBA, info FrameInfo) {
	face := basicfont.Face7x13
	lines := h.Lines(info)

	width := 0
	for _, l := range lines {
		if w := font.MeasureString(face, l).Ceil(); w > width {
			width = w
		}
	}
	const pad = 4
	lineHeight := face.Metrics().Height.Ceil()
	box := anchor(dst.Bounds(), h.Corner, width+2*pad, lineHeight*len(lines)+2*pad, 10)
	shade(dst, box, 128)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(h.Color),
		Face: face,
	}
	for i, l := range lines {
		d.Dot = fixed.P(box.Min.X+pad, box.Min.Y+pad+face.Metrics().Ascent.Ceil()+i*lineHeight)
		d.DrawString(l)
	}
}
