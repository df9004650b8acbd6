package preprocess

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/ppg-features/pkg/signal/analyzers"
)

// madToSigma converts the median absolute value of Gaussian noise to its
// standard deviation
const madToSigma = 0.6745

// WaveletDenoiser applies universal-threshold soft shrinkage to the detail
// coefficients of a multilevel wavelet decomposition
type WaveletDenoiser struct {
	wavelet *analyzers.Wavelet
	level   int
}

// NewWaveletDenoiser creates a denoiser for the named wavelet and level
func NewWaveletDenoiser(wavelet string, level int) (*WaveletDenoiser, error) {
	if level < 1 {
		return nil, fmt.Errorf("decomposition level must be at least 1, got %d", level)
	}
	w, err := analyzers.NewWavelet(wavelet)
	if err != nil {
		return nil, err
	}
	return &WaveletDenoiser{wavelet: w, level: level}, nil
}

func (wd *WaveletDenoiser) Name() string {
	return "wavelet_denoise"
}

// Threshold returns the universal threshold sigma*sqrt(2 ln N) for a
// decomposition of an N-sample signal, with sigma estimated from the
// coarsest detail set.
func (wd *WaveletDenoiser) Threshold(coarsestDetail []float64, n int) float64 {
	abs := make([]float64, len(coarsestDetail))
	for i, c := range coarsestDetail {
		abs[i] = math.Abs(c)
	}
	sigma := analyzers.Median(abs) / madToSigma
	return sigma * math.Sqrt(2*math.Log(float64(n)))
}

// Apply returns the denoised waveform trimmed to the input length. Signals
// shorter than 2^level samples are returned unchanged.
func (wd *WaveletDenoiser) Apply(samples []float64) ([]float64, error) {
	n := len(samples)
	if n < 1<<wd.level {
		out := make([]float64, n)
		copy(out, samples)
		return out, nil
	}

	coeffs, err := wd.wavelet.WaveDec(samples, wd.level)
	if err != nil {
		return nil, fmt.Errorf("wavelet decomposition failed: %w", err)
	}

	threshold := wd.Threshold(coeffs[1], n)
	for _, detail := range coeffs[1:] {
		SoftThreshold(detail, threshold)
	}

	rec, err := wd.wavelet.WaveRec(coeffs)
	if err != nil {
		return nil, fmt.Errorf("wavelet reconstruction failed: %w", err)
	}
	if len(rec) < n {
		return nil, fmt.Errorf("reconstruction produced %d samples, expected %d", len(rec), n)
	}

	return rec[:n:n], nil
}

// SoftThreshold shrinks each coefficient toward zero by t in place;
// magnitudes at or below t become zero.
func SoftThreshold(coeffs []float64, t float64) {
	for i, c := range coeffs {
		mag := math.Abs(c) - t
		if mag <= 0 {
			coeffs[i] = 0
			continue
		}
		coeffs[i] = math.Copysign(mag, c)
	}
}
