package testutil

import "sync"

// ScriptedSource returns predetermined samples in order.
//
// Tests use it to decide exactly which grid steps fire in a spontaneous run.
// Panics once the script is exhausted, to catch a run that draws more samples
// than the test expected.
//
// Thread-safety: ScriptedSource is safe for concurrent use via internal mutex.
type ScriptedSource struct {
	mu      sync.Mutex
	samples []float64
	idx     int
}

// NewScriptedSource creates a source that returns samples in order.
func NewScriptedSource(samples ...float64) *ScriptedSource {
	return &ScriptedSource{samples: samples}
}

// Float64 returns the next scripted sample.
func (s *ScriptedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idx >= len(s.samples) {
		panic("ScriptedSource: all samples exhausted")
	}
	v := s.samples[s.idx]
	s.idx++
	return v
}

// Draws returns how many samples have been consumed.
func (s *ScriptedSource) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx
}

// ConstantSource always returns the same sample.
type ConstantSource float64

// Float64 returns the constant.
func (c ConstantSource) Float64() float64 {
	return float64(c)
}
