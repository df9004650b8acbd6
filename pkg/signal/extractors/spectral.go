package extractors

import (
	"math"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/ppg-features/pkg/signal/analyzers"
)

// SpectralExtractor computes band powers and distribution descriptors of
// the Welch power spectrum.
type SpectralExtractor struct {
	epsilon        float64
	entropyEpsilon float64
	lfBand         [2]float64
	hfBand         [2]float64
	welch          *analyzers.WelchEstimator
}

func NewSpectralExtractor(epsilon, entropyEpsilon float64, lfBand, hfBand [2]float64, maxSegment int, logger logging.Logger) *SpectralExtractor {
	return &SpectralExtractor{
		epsilon:        epsilon,
		entropyEpsilon: entropyEpsilon,
		lfBand:         lfBand,
		hfBand:         hfBand,
		welch:          analyzers.NewWelchEstimator(maxSegment, logger),
	}
}

func (s *SpectralExtractor) Family() Family {
	return FamilySpectral
}

// Spectrum returns the PSD the spectral slots are derived from
func (s *SpectralExtractor) Spectrum(x []float64, sampleRate float64) *analyzers.PowerSpectrum {
	return s.welch.Estimate(x, sampleRate)
}

// Extract fills the spectral slots of v. A segment too short for one Welch
// sub-window leaves every slot zero.
func (s *SpectralExtractor) Extract(x []float64, sampleRate float64, v *Vector) {
	psd := s.Spectrum(x, sampleRate)
	if len(psd.Power) == 0 {
		for _, f := range FeaturesOf(FamilySpectral) {
			v.Set(f, 0)
		}
		return
	}

	lf := psd.BandPower(s.lfBand[0], s.lfBand[1])
	hf := psd.BandPower(s.hfBand[0], s.hfBand[1])

	total := floats.Sum(psd.Power) + s.epsilon
	entropy := 0.0
	for _, p := range psd.Power {
		pn := p / total
		entropy -= pn * math.Log(pn+s.entropyEpsilon)
	}

	v.Set(FreqLFPower, lf)
	v.Set(FreqHFPower, hf)
	v.Set(FreqLFHFRatio, lf/(hf+s.epsilon))
	v.Set(FreqPeakFrequency, psd.PeakFrequency())
	v.Set(FreqSpectralEntropy, entropy)
}
