package viewer

import (
	"image"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ivlev/scrollcam/internal/effects"
	"github.com/ivlev/scrollcam/internal/engine"
	"github.com/ivlev/scrollcam/internal/renderer"
	"github.com/ivlev/scrollcam/internal/scroll"
)

// Options configure the interactive viewer
type Options struct {
	Scenario   string  // Session key, usually the scenario path
	Pages      float64 // Content height in viewport heights
	WheelSpeed float64 // Pixels per wheel notch
	KeySpeed   float64 // Pixels per tick while an arrow key is held
}

// Game hosts the frame loop in an Ebitengine window. The mouse wheel is the
// scroll input and every Update is one tick.
type Game struct {
	loop    *engine.Loop
	sampler *scroll.Sampler
	rast    *renderer.Rasterizer
	effect  effects.Effect
	session *Session
	opts    Options

	offset   float64
	viewport float64
	width    int
	height   int
	scale    float64
	frame    engine.Frame
	ready    bool

	canvas *image.RGBA
	screen *ebiten.Image
}

// NewGame wires a loop to the window. The loop's sampler is driven by the
// window from here on.
func NewGame(loop *engine.Loop, rast *renderer.Rasterizer, eff effects.Effect, session *Session, opts Options) *Game {
	if opts.Pages <= 1 {
		opts.Pages = 5
	}
	if opts.WheelSpeed <= 0 {
		opts.WheelSpeed = 60
	}
	if opts.KeySpeed <= 0 {
		opts.KeySpeed = 12
	}
	g := &Game{
		loop:    loop,
		sampler: loop.Sampler,
		rast:    rast,
		effect:  eff,
		session: session,
		opts:    opts,
	}
	return g
}

// Run opens the window and blocks until it is closed
func Run(g *Game, title string, width, height int) error {
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)

	err := ebiten.RunGame(g)
	g.saveSession()
	if err == ebiten.Termination {
		return nil
	}
	return err
}

func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}

	_, dy := ebiten.Wheel()
	delta := -dy * g.opts.WheelSpeed
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyJ) {
		delta += g.opts.KeySpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyK) {
		delta -= g.opts.KeySpeed
	}
	if delta != 0 {
		g.offset = ScrollBy(g.offset, delta, g.sampler.Range())
		g.sampler.OnScroll(g.offset)
	}

	g.frame = g.loop.Advance()
	g.ready = true
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if !g.ready {
		return
	}
	w, h := g.frame.Width, g.frame.Height
	if g.canvas == nil || g.canvas.Rect.Dx() != w || g.canvas.Rect.Dy() != h {
		g.canvas = image.NewRGBA(image.Rect(0, 0, w, h))
		if g.screen != nil {
			g.screen.Deallocate()
		}
		g.screen = ebiten.NewImage(w, h)
		g.rast.Width, g.rast.Height = w, h
	}

	engine.RenderFrame(g.canvas, g.rast, g.frame, g.effect)
	g.screen.WritePixels(g.canvas.Pix)

	sb := screen.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(sb.Dx())/float64(w), float64(sb.Dy())/float64(h))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(g.screen, op)
}

// Layout treats the window as the page viewport
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := 1.0
	if m := ebiten.Monitor(); m != nil {
		scale = m.DeviceScaleFactor()
	}
	g.resize(outsideWidth, outsideHeight, scale)
	return outsideWidth, outsideHeight
}

// resize forwards every size or scale change to the loop. Only a height
// change moves the scroll range; progress is kept by rescaling the offset.
func (g *Game) resize(width, height int, scale float64) {
	if width == g.width && height == g.height && scale == g.scale {
		return
	}

	viewport := float64(height)
	if viewport != g.viewport {
		first := g.viewport == 0
		progress := g.sampler.Target()
		if first && g.session != nil {
			if p, ok := g.session.Restore(g.opts.Scenario); ok {
				progress = p
				g.loop.Filter.Reset(p)
			}
		}

		g.viewport = viewport
		g.sampler.OnResize(viewport, viewport*g.opts.Pages)
		g.offset = progress * g.sampler.Range()
		g.sampler.OnScroll(g.offset)
	}

	g.width, g.height, g.scale = width, height, scale
	g.loop.Resize(width, height, scale)
}

func (g *Game) saveSession() {
	if g.session == nil {
		return
	}
	g.session.Remember(g.opts.Scenario, g.loop.State().Progress)
	if err := g.session.Save(); err != nil {
		log.Printf("[!] Сессия не сохранена: %v", err)
	}
}

// ScrollBy moves offset by delta within [0, scrollRange]
func ScrollBy(offset, delta, scrollRange float64) float64 {
	return math.Max(0, math.Min(offset+delta, math.Max(scrollRange, 0)))
}
