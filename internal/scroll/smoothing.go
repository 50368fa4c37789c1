package scroll

// DefaultSmoothing is the fraction of the remaining distance covered per tick
const DefaultSmoothing = 0.08

// Filter is a first-order exponential follower. It is advanced once per
// rendered frame, so the settle time depends on the refresh rate.
type Filter struct {
	Factor float64
	value  float64
}

// NewFilter creates a filter starting at initial. Factors outside (0,1]
// fall back to DefaultSmoothing.
func NewFilter(factor, initial float64) *Filter {
	if !(factor > 0 && factor <= 1) {
		factor = DefaultSmoothing
	}
	return &Filter{Factor: factor, value: initial}
}

// Step moves the smoothed value towards target and returns it
func (f *Filter) Step(target float64) float64 {
	f.value += (target - f.value) * f.Factor
	return f.value
}

// Value returns the current smoothed value
func (f *Filter) Value() float64 {
	return f.value
}

// Reset jumps straight to v
func (f *Filter) Reset(v float64) {
	f.value = v
}
