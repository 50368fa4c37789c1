package scroll

import (
	"math"
	"sync/atomic"
)

// Normalize converts a scroll offset into progress. A page that cannot
// scroll always reports 0.
func Normalize(offset, scrollRange float64) float64 {
	if !(scrollRange > 0) {
		return 0
	}
	p := offset / scrollRange
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Sampler holds the latest target progress derived from scroll and resize
// events. Writers and the frame loop may run on different goroutines; the
// latest write wins and intermediate values are dropped.
type Sampler struct {
	offset   atomic.Uint64
	viewport atomic.Uint64
	content  atomic.Uint64
	target   atomic.Uint64
}

// NewSampler creates a sampler for a page of the given heights and samples
// it once at offset 0
func NewSampler(viewport, content float64) *Sampler {
	s := &Sampler{}
	s.viewport.Store(math.Float64bits(viewport))
	s.content.Store(math.Float64bits(content))
	s.sample()
	return s
}

// OnScroll records a new scroll offset
func (s *Sampler) OnScroll(offset float64) {
	s.offset.Store(math.Float64bits(offset))
	s.sample()
}

// OnResize records new viewport and content heights
func (s *Sampler) OnResize(viewport, content float64) {
	s.viewport.Store(math.Float64bits(viewport))
	s.content.Store(math.Float64bits(content))
	s.sample()
}

// Target returns the latest target progress in [0,1]
func (s *Sampler) Target() float64 {
	return math.Float64frombits(s.target.Load())
}

// Offset returns the latest scroll offset
func (s *Sampler) Offset() float64 {
	return math.Float64frombits(s.offset.Load())
}

// Range returns the scrollable distance, content minus viewport
func (s *Sampler) Range() float64 {
	return math.Float64frombits(s.content.Load()) - math.Float64frombits(s.viewport.Load())
}

func (s *Sampler) sample() {
	p := Normalize(s.Offset(), s.Range())
	s.target.Store(math.Float64bits(p))
}
