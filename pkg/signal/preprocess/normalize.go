package preprocess

import "gonum.org/v1/gonum/floats"

// Normalizer rescales a waveform to [0, 1]
type Normalizer struct{}

// NewNormalizer creates a min-max normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) Name() string {
	return "normalization"
}

// Apply maps min to 0 and max to 1. A constant waveform is returned as is.
func (n *Normalizer) Apply(samples []float64) ([]float64, error) {
	out := make([]float64, len(samples))
	copy(out, samples)
	if len(samples) == 0 {
		return out, nil
	}

	lo := floats.Min(samples)
	span := floats.Max(samples) - lo
	if span == 0 {
		return out, nil
	}

	for i, v := range samples {
		out[i] = (v - lo) / span
	}
	return out, nil
}
