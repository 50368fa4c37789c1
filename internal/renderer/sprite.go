package renderer

import (
	"math"

	"github.com/ivlev/scrollcam/internal/director"
)

// Sprite defaults
const (
	DefaultFrameDuration = 0.05
	DefaultSpriteHeight  = 1.5
	DefaultSpriteAspect  = 371.0 / 835.0
	shadowLift           = 0.01
)

// SpritePose is where the walking sprite and its blob shadow are drawn
type SpritePose struct {
	Position       director.Vec3 // Billboard center
	Frame          int
	ShadowPosition director.Vec3
	ShadowScale    float64
	ShadowOpacity  float64
}

// SpriteAnimator picks the walk-cycle frame from scroll progress and counts
// texture switches
type SpriteAnimator struct {
	FrameDuration float64
	FrameCount    int
	Height        float64

	current  int
	switches int
}

// NewSpriteAnimator creates an animator for frameCount frames
func NewSpriteAnimator(frameCount int, frameDuration, height float64) *SpriteAnimator {
	if frameDuration <= 0 {
		frameDuration = DefaultFrameDuration
	}
	if height <= 0 {
		height = DefaultSpriteHeight
	}
	return &SpriteAnimator{
		FrameDuration: frameDuration,
		FrameCount:    frameCount,
		Height:        height,
	}
}

// FrameIndex returns floor(t / frameDuration) mod frameCount
func FrameIndex(t, frameDuration float64, frameCount int) int {
	if frameCount <= 0 || frameDuration <= 0 {
		return 0
	}
	t = Clamp(t, 0, 1)
	return int(math.Floor(t/frameDuration)) % frameCount
}

// Update selects the frame for t. changed is true only when the frame differs
// from the one shown before.
func (a *SpriteAnimator) Update(t float64) (frame int, changed bool) {
	frame = FrameIndex(t, a.FrameDuration, a.FrameCount)
	if frame != a.current {
		a.current = frame
		a.switches++
		return frame, true
	}
	return frame, false
}

// Current returns the frame currently shown
func (a *SpriteAnimator) Current() int {
	return a.current
}

// Switches returns how many times the shown frame has changed
func (a *SpriteAnimator) Switches() int {
	return a.switches
}

// Pose places the billboard for the frame currently shown
func (a *SpriteAnimator) Pose(position director.Vec3) SpritePose {
	return PoseAt(position, a.current, a.Height)
}

// PoseAt puts a sprite of the given height on the ground at position and
// derives the blob shadow from its depth
func PoseAt(position director.Vec3, frame int, height float64) SpritePose {
	center := director.Vec3{
		X: position.X,
		Y: height/2 + position.Y,
		Z: position.Z,
	}
	depth := math.Abs(center.Z)

	return SpritePose{
		Position:       center,
		Frame:          frame,
		ShadowPosition: director.Vec3{X: center.X, Y: shadowLift, Z: center.Z},
		ShadowScale:    1 + depth*0.01,
		ShadowOpacity:  Clamp(1-depth*0.02, 0.35, 0.95),
	}
}
