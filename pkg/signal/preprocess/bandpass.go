package preprocess

import (
	"fmt"

	"github.com/RyanBlaney/ppg-features/pkg/signal/analyzers"
)

// BandpassFilter restricts a waveform to [low, high] Hz with zero phase
type BandpassFilter struct {
	filter *analyzers.IIRFilter
	lowHz  float64
	highHz float64
}

// NewBandpassFilter designs a Butterworth band-pass for the sample rate
func NewBandpassFilter(order int, lowHz, highHz, sampleRate float64) (*BandpassFilter, error) {
	f, err := analyzers.NewButterworthBandpass(order, lowHz, highHz, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to design band-pass filter: %w", err)
	}
	return &BandpassFilter{filter: f, lowHz: lowHz, highHz: highHz}, nil
}

func (b *BandpassFilter) Name() string {
	return "bandpass"
}

// Coefficients exposes the designed transfer function
func (b *BandpassFilter) Coefficients() *analyzers.IIRFilter {
	return b.filter
}

// MinLength returns the shortest waveform the filter accepts
func (b *BandpassFilter) MinLength() int {
	return b.filter.PadLength() + 1
}

// Apply runs forward-backward filtering
func (b *BandpassFilter) Apply(samples []float64) ([]float64, error) {
	return b.filter.FiltFilt(samples)
}
