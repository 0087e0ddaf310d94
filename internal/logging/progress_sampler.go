package logging

import "math"

// ProgressSampler thins out progress reports. A report passes when its stage
// differs from the last one passed or when its percentage reaches a step
// above the last passed percentage. S is the stage type, such as an export
// state or a message prefix.
//
// A nil *ProgressSampler passes everything.
type ProgressSampler[S comparable] struct {
	step   float64
	seen   bool
	stage  S
	passed int
}

// NewProgressSampler returns a sampler that passes at most one report per
// step percent within a stage. A non-positive step means 5.
func NewProgressSampler[S comparable](step float64) *ProgressSampler[S] {
	if step <= 0 {
		step = 5
	}
	return &ProgressSampler[S]{step: step, passed: -1}
}

// Allow reports whether the report should be shown. A negative or NaN
// percent is unknown; only a stage change lets it through.
func (s *ProgressSampler[S]) Allow(stage S, percent float64) bool {
	if s == nil {
		return true
	}
	changed := !s.seen || stage != s.stage
	if changed {
		s.seen = true
		s.stage = stage
		s.passed = -1
	}
	if percent < 0 || math.IsNaN(percent) {
		return changed
	}
	level := int(math.Min(percent, 100) / s.step)
	if level <= s.passed {
		return changed
	}
	s.passed = level
	return true
}

// Reset forgets the last stage so the next report always passes.
func (s *ProgressSampler[S]) Reset() {
	if s == nil {
		return
	}
	var zero S
	s.seen = false
	s.stage = zero
	s.passed = -1
}
