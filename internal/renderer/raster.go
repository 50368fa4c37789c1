package renderer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/ivlev/scrollcam/internal/director"
)

// View is everything the rasterizer needs to draw one frame
type View struct {
	Camera   Camera
	Lights   Lights
	Sprite   *SpritePose // nil when sprite animation is disabled
	Progress float64
}

// Rasterizer is a software preview renderer: sky, ground grid, model bounds,
// sun marker and the walking sprite billboard
type Rasterizer struct {
	Width, Height int
	GridExtent    float64
	GridStep      float64
	Model         *director.Bounds
	SpriteFrames  []image.Image
	SpriteHeight  float64
	SpriteAspect  float64

	blob *image.RGBA
}

// NewRasterizer creates a rasterizer for a width x height output
func NewRasterizer(width, height int) *Rasterizer {
	return &Rasterizer{
		Width:        width,
		Height:       height,
		GridExtent:   40,
		GridStep:     2,
		SpriteHeight: DefaultSpriteHeight,
		SpriteAspect: DefaultSpriteAspect,
		blob:         BlobShadowTexture(256),
	}
}

var (
	daySky   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	nightSky = color.RGBA{R: 18, G: 22, B: 40, A: 255}
	sunColor = color.RGBA{R: 255, G: 214, B: 90, A: 255}
	boxColor = color.RGBA{R: 90, G: 70, B: 60, A: 255}
)

// Render draws v into dst, which must be at least Width x Height
func (r *Rasterizer) Render(dst *image.RGBA, v View) {
	cam := v.Camera
	cam.Aspect = float64(r.Width) / float64(r.Height)
	cam.UpdateProjection()

	daylight := Clamp(v.Lights.AmbientIntensity/1.1, 0, 1)
	sky := mixColor(nightSky, daySky, daylight)
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: sky}, image.Point{}, draw.Src)

	r.drawGrid(dst, &cam, v.Lights)
	if r.Model != nil && !r.Model.IsEmpty() {
		r.drawBox(dst, &cam, *r.Model)
	}
	r.drawSun(dst, &cam, v.Lights)
	if v.Sprite != nil {
		r.drawSprite(dst, &cam, *v.Sprite)
	}
}

func (r *Rasterizer) drawGrid(dst *image.RGBA, cam *Camera, lights Lights) {
	shade := Clamp(lights.SunIntensity/3.5, 0, 1)
	line := mixColor(color.RGBA{R: 60, G: 60, B: 70, A: 255}, color.RGBA{R: 185, G: 185, B: 185, A: 255}, shade)

	ext := r.GridExtent
	for v := -ext; v <= ext+1e-9; v += r.GridStep {
		r.drawLine3D(dst, cam, director.Vec3{X: v, Z: -ext}, director.Vec3{X: v, Z: ext}, line)
		r.drawLine3D(dst, cam, director.Vec3{X: -ext, Z: v}, director.Vec3{X: ext, Z: v}, line)
	}
}

func (r *Rasterizer) drawBox(dst *image.RGBA, cam *Camera, b director.Bounds) {
	corner := func(i int) director.Vec3 {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		return p
	}
	for i := 0; i < 8; i++ {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				r.drawLine3D(dst, cam, corner(i), corner(i|bit), boxColor)
			}
		}
	}
}

func (r *Rasterizer) drawSun(dst *image.RGBA, cam *Camera, lights Lights) {
	if lights.Elevation <= 0 {
		return
	}
	x, y, _, ok := cam.Project(cam.Position.Add(lights.SunDirection.Scale(SunDistance)), r.Width, r.Height)
	if !ok {
		return
	}
	radius := 6 + 6*Clamp(lights.SunIntensity/3.5, 0, 1)
	fillCircle(dst, x, y, radius, sunColor)
}

func (r *Rasterizer) drawSprite(dst *image.RGBA, cam *Camera, pose SpritePose) {
	// Blob shadow: a ground-level disc sized by the sprite width
	sx, sy, sd, ok := cam.Project(pose.ShadowPosition, r.Width, r.Height)
	if ok && r.blob != nil {
		size := r.SpriteHeight * r.SpriteAspect * 1.3 * pose.ShadowScale * cam.focal / sd * float64(r.Height) / 2
		if size >= 1 && size < float64(r.Width+r.Height)*4 {
			rect := image.Rect(int(sx-size/2), int(sy-size/4), int(sx+size/2), int(sy+size/4))
			mask := &image.Uniform{C: color.Alpha{A: uint8(Clamp(pose.ShadowOpacity, 0, 1) * 255)}}
			draw.BiLinear.Scale(dst, rect, r.blob, r.blob.Bounds(), draw.Over, &draw.Options{SrcMask: mask})
		}
	}

	half := r.SpriteHeight / 2
	_, topY, _, okTop := cam.Project(pose.Position.Add(director.Vec3{Y: half}), r.Width, r.Height)
	cx, bottomY, _, okBottom := cam.Project(pose.Position.Sub(director.Vec3{Y: half}), r.Width, r.Height)
	if !okTop || !okBottom {
		return
	}
	h := math.Abs(bottomY - topY)
	if h < 1 {
		// Seen from straight above, fall back to the projected width
		_, _, d, _ := cam.Project(pose.Position, r.Width, r.Height)
		h = r.SpriteHeight * cam.focal / d * float64(r.Height) / 2
	}
	if h > float64(r.Height)*4 {
		return
	}
	w := h * r.SpriteAspect
	top := math.Min(topY, bottomY)
	rect := image.Rect(int(cx-w/2), int(top), int(cx+w/2), int(top+h))

	if len(r.SpriteFrames) == 0 {
		draw.Draw(dst, rect, &image.Uniform{C: color.RGBA{R: 40, G: 40, B: 40, A: 255}}, image.Point{}, draw.Over)
		return
	}
	frame := r.SpriteFrames[pose.Frame%len(r.SpriteFrames)]
	draw.BiLinear.Scale(dst, rect, frame, frame.Bounds(), draw.Over, nil)
}

// drawLine3D draws the visible part of a world-space line, sampling it so
// that segments crossing the near plane are clipped
func (r *Rasterizer) drawLine3D(dst *image.RGBA, cam *Camera, a, b director.Vec3, c color.RGBA) {
	const steps = 32
	var px, py float64
	prev := false
	for i := 0; i <= steps; i++ {
		p := lerpVec(a, b, float64(i)/steps)
		x, y, _, ok := cam.Project(p, r.Width, r.Height)
		if ok && prev {
			drawLine(dst, px, py, x, y, c)
		}
		px, py, prev = x, y, ok
	}
}

// drawLine is a DDA line limited to the destination bounds
func drawLine(dst *image.RGBA, x0, y0, x1, y1 float64, c color.RGBA) {
	b := dst.Bounds()
	limit := float64(b.Dx()+b.Dy()) * 4
	if math.Abs(x0) > limit || math.Abs(y0) > limit || math.Abs(x1) > limit || math.Abs(y1) > limit {
		return
	}
	n := int(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))) + 1
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		x := int(math.Round(lerp(x0, x1, t)))
		y := int(math.Round(lerp(y0, y1, t)))
		if image.Pt(x, y).In(b) {
			dst.SetRGBA(x, y, c)
		}
	}
}

func fillCircle(dst *image.RGBA, cx, cy, radius float64, c color.RGBA) {
	b := dst.Bounds()
	for y := int(cy - radius); y <= int(cy+radius); y++ {
		for x := int(cx - radius); x <= int(cx+radius); x++ {
			if !image.Pt(x, y).In(b) {
				continue
			}
			if math.Hypot(float64(x)-cx, float64(y)-cy) <= radius {
				dst.SetRGBA(x, y, c)
			}
		}
	}
}

func mixColor(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(lerp(float64(x), float64(y), t)))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
