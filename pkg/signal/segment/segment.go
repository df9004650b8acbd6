// Package segment splits a conditioned waveform into fixed-length,
// overlapping analysis windows.
package segment

import (
	"fmt"
	"iter"
)

// Segment is one analysis window. Samples aliases the source waveform and
// must be treated as read-only.
type Segment struct {
	Index   int       `json:"index"`
	Start   int       `json:"start"`
	Samples []float64 `json:"-"`
}

// Len returns the window length
func (s Segment) Len() int {
	return len(s.Samples)
}

// Segmenter produces windows of WindowSize samples every Stride samples
type Segmenter struct {
	windowSize int
	stride     int
}

// NewSegmenter creates a segmenter with the given window size and overlap
func NewSegmenter(windowSize, overlap int) (*Segmenter, error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("window size must be positive, got %d", windowSize)
	}
	if overlap < 0 || overlap >= windowSize {
		return nil, fmt.Errorf("overlap must be in [0, %d), got %d", windowSize, overlap)
	}
	return &Segmenter{windowSize: windowSize, stride: windowSize - overlap}, nil
}

func (s *Segmenter) WindowSize() int { return s.windowSize }
func (s *Segmenter) Stride() int     { return s.stride }

// Count returns how many full windows fit in n samples. Trailing samples
// that do not fill a window are dropped.
func (s *Segmenter) Count(n int) int {
	if n < s.windowSize {
		return 0
	}
	return (n-s.windowSize)/s.stride + 1
}

// All yields (index, segment) pairs in order. The sequence can be ranged
// over any number of times.
func (s *Segmenter) All(samples []float64) iter.Seq2[int, Segment] {
	return func(yield func(int, Segment) bool) {
		count := s.Count(len(samples))
		for i := range count {
			start := i * s.stride
			seg := Segment{
				Index:   i,
				Start:   start,
				Samples: samples[start : start+s.windowSize : start+s.windowSize],
			}
			if !yield(i, seg) {
				return
			}
		}
	}
}

// Collect materializes every segment
func (s *Segmenter) Collect(samples []float64) []Segment {
	out := make([]Segment, 0, s.Count(len(samples)))
	for _, seg := range s.All(samples) {
		out = append(out, seg)
	}
	return out
}
