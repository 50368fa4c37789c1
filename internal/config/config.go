package config

type Config struct {
	ScenarioInput    string
	ScenarioOutput   string
	GenerateScenario bool
	ShotsInput       string
	RecordingInput   string
	SpriteDir        string
	OutputVideo      string
	ScrollDuration   float64 // Synthetic scroll length when no recording is given
	HoldDuration     float64 // Idle tail after the synthetic scroll
	ViewportHeight   float64
	ContentHeight    float64
	Width            int
	Height           int
	PixelRatio       float64
	FPS              int
	Workers          int
	ChunkFrames      int
	Smoothing        float64
	AudioPath        string
	BackgroundAudio  string
	BackgroundVolume float64
	Preset           string
	VideoEncoder     string
	Quality          int
	Debug            bool
	ShowStats        bool
	BuildVersion     string
}

type SegmentParams struct {
	Width, Height             int // Output size
	RenderWidth, RenderHeight int // Size of the raw frames on stdin
	FPS                       int
	Frames                    int
	Filter                    string
	ChunkIndex                int
}
