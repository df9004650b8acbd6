// Package preprocess implements the whole-waveform conditioning stages that
// run before segmentation: spike suppression, min-max normalization, wavelet
// denoising and zero-phase band-limiting.
package preprocess

// Stage is one whole-waveform transform. Implementations never modify the
// input slice and return a slice of the same length.
type Stage interface {
	Name() string
	Apply(samples []float64) ([]float64, error)
}
