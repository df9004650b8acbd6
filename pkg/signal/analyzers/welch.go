package analyzers

import (
	"math/cmplx"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/sonido-sonar/algorithms/windowing"
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// PowerSpectrum is a one-sided power spectral density estimate
type PowerSpectrum struct {
	Frequencies []float64 `json:"frequencies"` // Hz
	Power       []float64 `json:"power"`       // units^2 / Hz
	SegmentSize int       `json:"segment_size"`
	Segments    int       `json:"segments"`
}

// WelchEstimator averages periodograms of overlapping periodic
// Hann-windowed sub-windows. It holds no per-signal state and is safe for
// concurrent use.
type WelchEstimator struct {
	maxSegment int
	logger     logging.Logger
}

// NewWelchEstimator creates an estimator whose sub-window is
// min(len/4, maxSegment) samples with 50% overlap. A nil logger gets a
// component-scoped default.
func NewWelchEstimator(maxSegment int, logger logging.Logger) *WelchEstimator {
	if logger == nil {
		logger = logging.WithFields(logging.Fields{
			"component": "welch_estimator",
		})
	}
	return &WelchEstimator{
		maxSegment: maxSegment,
		logger:     logger,
	}
}

// SegmentSize returns the sub-window length used for a signal of length n
func (we *WelchEstimator) SegmentSize(n int) int {
	return min(n/4, we.maxSegment)
}

// Estimate computes the density-scaled PSD of a signal sampled at
// sampleRate Hz. A signal too short for a single sub-window yields an empty
// spectrum.
func (we *WelchEstimator) Estimate(signal []float64, sampleRate float64) *PowerSpectrum {
	nperseg := we.SegmentSize(len(signal))
	if nperseg < 1 {
		return &PowerSpectrum{Frequencies: []float64{}, Power: []float64{}}
	}

	noverlap := nperseg / 2
	step := nperseg - noverlap
	segments := (len(signal) - noverlap) / step
	bins := nperseg/2 + 1

	window := windowing.NewHann(nperseg, false)
	coeffs := window.GetCoefficients()
	scale := 1.0 / (sampleRate * floats.Dot(coeffs, coeffs))

	power := make([]float64, bins)
	frame := make([]float64, nperseg)
	for s := range segments {
		start := s * step
		copy(frame, signal[start:start+nperseg])

		// constant detrend
		mean := 0.0
		for _, v := range frame {
			mean += v
		}
		mean /= float64(nperseg)
		for i := range frame {
			frame[i] -= mean
		}
		_ = window.ApplyInPlace(frame)

		spectrum := fft.FFTReal(frame)
		for k := range bins {
			mag := cmplx.Abs(spectrum[k])
			p := mag * mag * scale
			if k > 0 && (k < bins-1 || nperseg%2 == 1) {
				// fold negative frequencies; DC and an even-length Nyquist bin are unique
				p *= 2
			}
			power[k] += p
		}
	}

	freqs := make([]float64, bins)
	for k := range bins {
		freqs[k] = float64(k) * sampleRate / float64(nperseg)
	}
	if segments > 0 {
		for k := range power {
			power[k] /= float64(segments)
		}
	}

	we.logger.Debug("Welch estimate computed", logging.Fields{
		"signal_length": len(signal),
		"sample_rate":   sampleRate,
		"segment_size":  nperseg,
		"segments":      segments,
	})

	return &PowerSpectrum{
		Frequencies: freqs,
		Power:       power,
		SegmentSize: nperseg,
		Segments:    segments,
	}
}

// BandPower integrates the PSD with the trapezoidal rule over bins with
// low <= f < high. Fewer than two bins integrate to zero.
func (ps *PowerSpectrum) BandPower(low, high float64) float64 {
	var fs, pw []float64
	for i, f := range ps.Frequencies {
		if f >= low && f < high {
			fs = append(fs, f)
			pw = append(pw, ps.Power[i])
		}
	}
	return Trapezoid(pw, fs)
}

// PeakFrequency returns the frequency of the first maximum, or 0 when empty
func (ps *PowerSpectrum) PeakFrequency() float64 {
	if len(ps.Power) == 0 {
		return 0
	}
	return ps.Frequencies[floats.MaxIdx(ps.Power)]
}
