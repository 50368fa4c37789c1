package renderer

import (
	"math"

	"github.com/ivlev/scrollcam/internal/director"
)

// Camera defaults
const (
	DefaultNear = 0.1
	DefaultFar  = 2000.0
)

// Camera is a perspective camera aimed at a target point
type Camera struct {
	Position director.Vec3
	Target   director.Vec3
	Up       director.Vec3
	Fov      float64 // Vertical field of view, degrees
	Aspect   float64
	Near     float64
	Far      float64

	// View basis, rebuilt by LookAt. The camera looks down -forward.
	right, up, back director.Vec3
	// Projection, rebuilt by UpdateProjection
	projection [16]float64
	focal      float64
}

// NewCamera creates a camera at position with the given fov and aspect
func NewCamera(position director.Vec3, fov, aspect float64) *Camera {
	c := &Camera{
		Position: position,
		Up:       director.Vec3{Y: 1},
		Fov:      fov,
		Aspect:   aspect,
		Near:     DefaultNear,
		Far:      DefaultFar,
		back:     director.Vec3{Z: 1},
		right:    director.Vec3{X: 1},
		up:       director.Vec3{Y: 1},
	}
	c.UpdateProjection()
	return c
}

// LookAt points the camera at target. A target at the camera position keeps
// looking down -Z; a view direction parallel to Up is nudged off the pole.
func (c *Camera) LookAt(target director.Vec3) {
	c.Target = target

	back := c.Position.Sub(target)
	if back.Length() == 0 {
		back = director.Vec3{Z: 1}
	}
	back = back.Normalize()

	right := c.Up.Cross(back)
	if right.Length() == 0 {
		if math.Abs(c.Up.Z) == 1 {
			back.X += 0.0001
		} else {
			back.Z += 0.0001
		}
		back = back.Normalize()
		right = c.Up.Cross(back)
	}
	right = right.Normalize()

	c.back = back
	c.right = right
	c.up = back.Cross(right)
}

// UpdateProjection recomputes the projection from Fov, Aspect, Near and Far
func (c *Camera) UpdateProjection() {
	f := 1.0 / math.Tan(degToRad(c.Fov)/2)
	c.focal = f

	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}

	// Column-major, OpenGL clip space
	c.projection = [16]float64{}
	c.projection[0] = f / aspect
	c.projection[5] = f
	c.projection[10] = (c.Far + c.Near) / (c.Near - c.Far)
	c.projection[11] = -1
	c.projection[14] = 2 * c.Far * c.Near / (c.Near - c.Far)
}

// ProjectionMatrix returns the current projection matrix
func (c *Camera) ProjectionMatrix() [16]float64 {
	return c.projection
}

// Forward returns the unit view direction
func (c *Camera) Forward() director.Vec3 {
	return c.back.Scale(-1)
}

// Project maps a world point to pixel coordinates on a width x height
// viewport. ok is false when the point is behind the near plane.
func (c *Camera) Project(p director.Vec3, width, height int) (x, y, depth float64, ok bool) {
	d := p.Sub(c.Position)
	cx := d.Dot(c.right)
	cy := d.Dot(c.up)
	depth = -d.Dot(c.back)
	if depth < c.Near {
		return 0, 0, depth, false
	}

	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	ndcX := (c.focal / aspect) * cx / depth
	ndcY := c.focal * cy / depth

	x = (ndcX + 1) / 2 * float64(width)
	y = (1 - ndcY) / 2 * float64(height)
	return x, y, depth, true
}

// Apply moves the camera to the interpolated pose
func (c *Camera) Apply(ch Channels) {
	c.Position = ch.CameraPosition
	c.LookAt(ch.CameraLookAt)
	c.Fov = ch.FieldOfView
	c.UpdateProjection()
}
