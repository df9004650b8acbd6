package analyzers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelchSegmentSize(t *testing.T) {
	we := NewWelchEstimator(256, nil)
	assert.Equal(t, 250, we.SegmentSize(1000))
	assert.Equal(t, 256, we.SegmentSize(4000))
	assert.Equal(t, 0, we.SegmentSize(3))
}

func TestWelchSinusoidPeak(t *testing.T) {
	we := NewWelchEstimator(256, nil)

	psd := we.Estimate(sine(10, 125, 1000), 125)
	require.Len(t, psd.Power, 126)
	require.Len(t, psd.Frequencies, 126)
	assert.Equal(t, 250, psd.SegmentSize)
	assert.Equal(t, 7, psd.Segments)

	assert.InDelta(t, 0.5, psd.Frequencies[1], 1e-12)
	assert.InDelta(t, 10.0, psd.PeakFrequency(), 1e-9)

	// Parseval: total density integrates to the signal power of 0.5
	total := 0.0
	for _, p := range psd.Power {
		total += p
	}
	assert.InDelta(t, 0.5, total*0.5, 0.05)
}

func TestWelchBandPower(t *testing.T) {
	ps := &PowerSpectrum{
		Frequencies: []float64{0, 0.5, 1, 1.5},
		Power:       []float64{1, 2, 4, 8},
	}
	assert.InDelta(t, 1.5, ps.BandPower(0.5, 1.5), 1e-12)
	assert.Equal(t, 0.0, ps.BandPower(0.04, 0.15))
	assert.Equal(t, 0.0, ps.BandPower(0.5, 0.9))
}

func TestWelchShortSignal(t *testing.T) {
	we := NewWelchEstimator(256, nil)
	psd := we.Estimate([]float64{1, 2, 3}, 125)
	assert.Empty(t, psd.Power)
	assert.Equal(t, 0.0, psd.PeakFrequency())
}

func TestWelchEstimatorReusedAcrossRates(t *testing.T) {
	we := NewWelchEstimator(256, nil)

	low := we.Estimate(sine(10, 125, 1000), 125)
	high := we.Estimate(sine(20, 250, 1000), 250)

	require.Len(t, high.Frequencies, len(low.Frequencies))
	assert.InDelta(t, 2*low.Frequencies[1], high.Frequencies[1], 1e-12)
	assert.InDelta(t, 10.0, low.PeakFrequency(), 1e-9)
	assert.InDelta(t, 20.0, high.PeakFrequency(), 1e-9)
}

func TestWelchPeriodicHannScaling(t *testing.T) {
	// nperseg=4 uses the taper [0, .5, 1, .5] with energy 1.5
	we := NewWelchEstimator(4, nil)
	x := make([]float64, 16)
	for i := range x {
		x[i] = 1 - 2*float64(i%2)
	}

	psd := we.Estimate(x, 1)
	require.Len(t, psd.Power, 3)
	assert.Equal(t, 7, psd.Segments)
	assert.InDelta(t, 0.0, psd.Power[0], 1e-12)
	assert.InDelta(t, 4.0/3, psd.Power[1], 1e-12)
	assert.InDelta(t, 8.0/3, psd.Power[2], 1e-12)
}
