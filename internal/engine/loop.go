package engine

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/ivlev/scrollcam/internal/director"
	"github.com/ivlev/scrollcam/internal/renderer"
	"github.com/ivlev/scrollcam/internal/scroll"
)

// Scheduler hands out frame ticks. Each Request returns a channel that
// delivers one value when the next frame is due; a closed channel means the
// host has stopped scheduling.
type Scheduler interface {
	Request() <-chan struct{}
}

// Renderer consumes the scene state of one frame
type Renderer interface {
	Render(f Frame)
}

// ProgressObserver receives the smoothed progress once per frame
type ProgressObserver interface {
	ObserveProgress(progress float64)
}

// SceneState is the per-frame interpolation state
type SceneState struct {
	Target   float64 // Latest progress from the sampler
	Progress float64 // Smoothed progress, the only value carried between frames
	Segment  renderer.Segment
	Channels renderer.Channels
	Lights   renderer.Lights
}

// Frame is an immutable snapshot of the scene for rendering
type Frame struct {
	Index int
	SceneState
	Camera        renderer.Camera
	Sprite        *renderer.SpritePose // nil without a sprite
	SpriteChanged bool
	Width, Height int // Render size
}

// View converts the snapshot into rasterizer input
func (f Frame) View() renderer.View {
	return renderer.View{
		Camera:   f.Camera,
		Lights:   f.Lights,
		Sprite:   f.Sprite,
		Progress: f.Progress,
	}
}

// Loop drives the scene from scroll input, one tick per rendered frame
type Loop struct {
	Track     *director.Track
	Sampler   *scroll.Sampler
	Filter    *scroll.Filter
	Animator  *renderer.SpriteAnimator // nil disables the sprite
	Observers []ProgressObserver
	Renderer  Renderer

	state SceneState
	frame int

	width, height atomic.Int64
	pixelRatio    atomic.Uint64
}

// NewLoop creates a loop whose smoothed progress starts at the first keyframe
func NewLoop(track *director.Track, sampler *scroll.Sampler, smoothing float64) *Loop {
	start := track.First().Progress
	l := &Loop{
		Track:   track,
		Sampler: sampler,
		Filter:  scroll.NewFilter(smoothing, start),
	}
	l.state.Progress = start
	l.Resize(1280, 720, 1)
	return l
}

// Resize updates the output viewport. It may be called from any goroutine;
// the new size applies from the next tick.
func (l *Loop) Resize(width, height int, pixelRatio float64) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	l.width.Store(int64(width))
	l.height.Store(int64(height))
	l.pixelRatio.Store(math.Float64bits(pixelRatio))
}

// RenderSize returns the current render resolution
func (l *Loop) RenderSize() (int, int) {
	return renderer.RenderSize(int(l.width.Load()), int(l.height.Load()), math.Float64frombits(l.pixelRatio.Load()))
}

// State returns the state computed by the last tick
func (l *Loop) State() SceneState {
	return l.state
}

// Advance runs the per-frame update: smooth, export, interpolate and derive
// the environment. It never fails; out-of-range input is clamped.
func (l *Loop) Advance() Frame {
	target := l.Sampler.Target()
	progress := l.Filter.Step(target)

	for _, o := range l.Observers {
		o.ObserveProgress(progress)
	}

	w, h := l.RenderSize()
	f := Evaluate(l.Track, progress, w, h, l.Animator)
	f.Index = l.frame
	f.Target = target

	if l.Animator != nil {
		_, f.SpriteChanged = l.Animator.Update(progress)
	}

	l.state = f.SceneState
	l.frame++
	return f
}

// Run ticks until the scheduler stops or ctx is done. The next tick is
// requested before the current frame is rendered.
func (l *Loop) Run(ctx context.Context, sched Scheduler) error {
	next := sched.Request()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-next:
			if !ok {
				return nil
			}
		}

		f := l.Advance()
		next = sched.Request()
		if l.Renderer != nil {
			l.Renderer.Render(f)
		}
	}
}

// Evaluate computes the scene for a smoothed progress value. It has no side
// effects, so equal inputs give equal frames.
func Evaluate(track *director.Track, progress float64, width, height int, anim *renderer.SpriteAnimator) Frame {
	ch, seg := renderer.Sample(track, progress)

	aspect := 1.0
	if height > 0 {
		aspect = float64(width) / float64(height)
	}
	cam := renderer.NewCamera(ch.CameraPosition, ch.FieldOfView, aspect)
	cam.Apply(ch)

	f := Frame{
		SceneState: SceneState{
			Progress: progress,
			Segment:  seg,
			Channels: ch,
			Lights:   renderer.Environment(ch.HourOfDay, ch.SunAzimuth),
		},
		Camera: *cam,
		Width:  width,
		Height: height,
	}

	if anim != nil {
		frame := renderer.FrameIndex(progress, anim.FrameDuration, anim.FrameCount)
		pose := renderer.PoseAt(ch.SpritePosition, frame, anim.Height)
		f.Sprite = &pose
	}
	return f
}

// FrameCollector keeps every rendered frame for offline processing
type FrameCollector struct {
	Frames []Frame
}

func (c *FrameCollector) Render(f Frame) {
	c.Frames = append(c.Frames, f)
}
