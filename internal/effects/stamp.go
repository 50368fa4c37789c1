package effects

import (
	"image"
	"image/draw"
	"log"

	qrcode "github.com/skip2/go-qrcode"
)

// ProgressStamp draws a QR code with the exported progress string, so frames
// of an encoded video can be checked against the progress sidecar
type ProgressStamp struct {
	Corner Corner
	Size   int // Side of the code in pixels
}

func NewProgressStamp(size int) *ProgressStamp {
	if size < 21 {
		size = 21
	}
	return &ProgressStamp{Corner: BottomRight, Size: size}
}

func (s *ProgressStamp) Apply(dst *image.RGBA, info FrameInfo) {
	if info.ProgressText == "" {
		return
	}
	q, err := qrcode.New(info.ProgressText, qrcode.Medium)
	if err != nil {
		log.Printf("[!] QR stamp for frame %d: %v", info.Index, err)
		return
	}

	code := q.Image(s.Size)
	r := anchor(dst.Bounds(), s.Corner, code.Bounds().Dx(), code.Bounds().Dy(), 10)
	draw.Draw(dst, r, code, code.Bounds().Min, draw.Src)
}
