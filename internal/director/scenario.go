package director

// Scenario represents a complete scroll-driven animation: the keyframe track
// plus the optional assets that decorate it
type Scenario struct {
	Version   string      `yaml:"version"`
	Keyframes []Keyframe  `yaml:"keyframes"`
	Sprite    *SpriteSpec `yaml:"sprite,omitempty"`
	Model     *Bounds     `yaml:"model,omitempty"` // Bounding box of the loaded model, if any
}

// Keyframe represents the scene at a specific scroll progress
type Keyframe struct {
	Progress       float64 `yaml:"progress"`        // Normalized scroll progress [0,1]
	Focus          string  `yaml:"focus,omitempty"` // Description of the shot
	CameraPosition Vec3    `yaml:"camera_position"`
	CameraLookAt   Vec3    `yaml:"camera_look_at"`
	FieldOfView    float64 `yaml:"fov"`         // Vertical field of view, degrees
	HourOfDay      float64 `yaml:"hour"`        // Solar time [0,24)
	SunAzimuth     float64 `yaml:"sun_azimuth"` // Degrees
	SpritePosition Vec3    `yaml:"sprite_position"`
}

// SpriteSpec describes the walking sprite animation
type SpriteSpec struct {
	Frames        string  `yaml:"frames"`         // Directory with frame images
	FrameDuration float64 `yaml:"frame_duration"` // Progress span of one frame
	Height        float64 `yaml:"height"`         // World height of the billboard
	Aspect        float64 `yaml:"aspect"`         // Width / height
}

// Bounds represents an axis-aligned bounding box
type Bounds struct {
	Min Vec3 `yaml:"min"`
	Max Vec3 `yaml:"max"`
}

// Vec3 is a point or direction in world space
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// IsEmpty reports whether the box encloses no volume
func (b Bounds) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// Size returns the extent of the box along each axis
func (b Bounds) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the middle point of the box
func (b Bounds) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}
