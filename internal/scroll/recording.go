package scroll

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Event is a scroll offset observed at a point in time
type Event struct {
	Time   float64 `yaml:"time"`   // Seconds since the start of the session
	Offset float64 `yaml:"offset"` // Pixels scrolled from the top
}

// Recording is a captured scroll session
type Recording struct {
	Viewport float64 `yaml:"viewport"`
	Content  float64 `yaml:"content"`
	// Duration extends the session past the last event so the smoothing
	// filter can settle. Zero means "end at the last event".
	Duration float64 `yaml:"duration,omitempty"`
	Events   []Event `yaml:"events"`
}

// Length returns how long the recording lasts in seconds
func (r *Recording) Length() float64 {
	end := r.Duration
	if n := len(r.Events); n > 0 && r.Events[n-1].Time > end {
		end = r.Events[n-1].Time
	}
	return end
}

// Synthesize creates a recording of a steady scroll from the top of the page
// to the bottom over duration seconds, sampled at rate events per second,
// followed by hold seconds without input
func Synthesize(duration, hold, viewport, content float64, rate int) *Recording {
	if rate <= 0 {
		rate = 60
	}
	rec := &Recording{
		Viewport: viewport,
		Content:  content,
		Duration: duration + hold,
	}

	scrollRange := math.Max(content-viewport, 0)
	n := int(math.Ceil(duration * float64(rate)))
	for i := 0; i <= n; i++ {
		t := math.Min(float64(i)/float64(rate), duration)
		u := 1.0
		if duration > 0 {
			u = t / duration
		}
		rec.Events = append(rec.Events, Event{Time: t, Offset: scrollRange * u})
	}
	return rec
}

// ReadRecording loads a recording from a YAML file. Events are sorted by time.
func ReadRecording(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rec Recording
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if rec.Content < rec.Viewport {
		return nil, fmt.Errorf("recording %s: content height %.0f is smaller than viewport %.0f", path, rec.Content, rec.Viewport)
	}

	sort.SliceStable(rec.Events, func(i, j int) bool {
		return rec.Events[i].Time < rec.Events[j].Time
	})
	return &rec, nil
}

// WriteRecording saves a recording as YAML
func WriteRecording(rec *Recording, path string) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReplayScheduler hands out one tick per video frame at a fixed frame rate.
// Before each tick it feeds every recorded event up to the frame time into
// the sampler, so events between two frames coalesce into the latest one.
type ReplayScheduler struct {
	rec     *Recording
	sampler *Sampler
	fps     int
	frames  int

	frame int
	next  int
}

// NewReplayScheduler creates a scheduler covering the whole recording
func NewReplayScheduler(rec *Recording, sampler *Sampler, fps int) *ReplayScheduler {
	if fps <= 0 {
		fps = 30
	}
	return &ReplayScheduler{
		rec:     rec,
		sampler: sampler,
		fps:     fps,
		frames:  int(math.Floor(rec.Length()*float64(fps))) + 1,
	}
}

// Frames returns the total number of ticks the replay produces
func (s *ReplayScheduler) Frames() int {
	return s.frames
}

// Request feeds the events for the next frame and returns a ready tick.
// The returned channel is closed without a value once the replay is over.
func (s *ReplayScheduler) Request() <-chan struct{} {
	ch := make(chan struct{}, 1)
	if s.frame >= s.frames {
		close(ch)
		return ch
	}

	now := float64(s.frame) / float64(s.fps)
	for s.next < len(s.rec.Events) && s.rec.Events[s.next].Time <= now+1e-9 {
		s.sampler.OnScroll(s.rec.Events[s.next].Offset)
		s.next++
	}
	s.frame++

	ch <- struct{}{}
	return ch
}
