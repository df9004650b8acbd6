package config

import (
	"fmt"
	"math"
)

// FilterMode selects how feature-level outlier bounds are computed
type FilterMode string

const (
	// FilterSequential recomputes quartiles on the rows left by earlier columns
	FilterSequential FilterMode = "sequential"
	// FilterIndependent computes every column's bounds once on the full set
	FilterIndependent FilterMode = "independent"
)

// PipelineConfig collects every numeric parameter of the pipeline.
// Values are copied into each stage at construction and never mutated.
type PipelineConfig struct {
	SampleRate float64 `json:"sample_rate"`

	Conditioning ConditioningConfig  `json:"conditioning"`
	Segmentation SegmentationConfig  `json:"segmentation"`
	Features     FeatureConfig       `json:"features"`
	Filter       OutlierFilterConfig `json:"filter"`
}

// ConditioningConfig covers the whole-waveform stages
type ConditioningConfig struct {
	OutlierThreshold float64    `json:"outlier_threshold"` // |z| above this is replaced
	Wavelet          string     `json:"wavelet"`
	WaveletLevel     int        `json:"wavelet_level"`
	BandHz           [2]float64 `json:"band_hz"` // [low, high] corner frequencies
	FilterOrder      int        `json:"filter_order"`
}

// SegmentationConfig defines the analysis windows
type SegmentationConfig struct {
	WindowSize int `json:"window_size"`
	Overlap    int `json:"overlap"`
}

// Stride returns the distance between successive window starts
func (s SegmentationConfig) Stride() int {
	return s.WindowSize - s.Overlap
}

// FeatureConfig holds the per-window extraction parameters
type FeatureConfig struct {
	Epsilon        float64 `json:"epsilon"`
	EntropyEpsilon float64 `json:"entropy_epsilon"`

	MinPeaks            int     `json:"min_peaks"`
	PeakDistanceSeconds float64 `json:"peak_distance_seconds"`

	LFBandHz        [2]float64 `json:"lf_band_hz"` // [low, high)
	HFBandHz        [2]float64 `json:"hf_band_hz"` // [low, high)
	MaxWelchSegment int        `json:"max_welch_segment"`

	SmoothingWindow int `json:"smoothing_window"`
	SmoothingOrder  int `json:"smoothing_order"`
}

// OutlierFilterConfig controls the pooled IQR filter
type OutlierFilterConfig struct {
	Enabled       bool       `json:"enabled"`
	Mode          FilterMode `json:"mode"`
	IQRMultiplier float64    `json:"iqr_multiplier"`
}

// DefaultConfig returns the parameters the downstream models were trained with
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		SampleRate: 125,
		Conditioning: ConditioningConfig{
			OutlierThreshold: 3,
			Wavelet:          "db6",
			WaveletLevel:     3,
			BandHz:           [2]float64{0.5, 8.0},
			FilterOrder:      4,
		},
		Segmentation: SegmentationConfig{
			WindowSize: 1000,
			Overlap:    500,
		},
		Features: FeatureConfig{
			Epsilon:             1e-8,
			EntropyEpsilon:      1e-10,
			MinPeaks:            3,
			PeakDistanceSeconds: 0.6,
			LFBandHz:            [2]float64{0.04, 0.15},
			HFBandHz:            [2]float64{0.15, 0.4},
			MaxWelchSegment:     256,
			SmoothingWindow:     5,
			SmoothingOrder:      2,
		},
		Filter: OutlierFilterConfig{
			Enabled:       true,
			Mode:          FilterSequential,
			IQRMultiplier: 1.5,
		},
	}
}

// Validate checks ranges and cross-field constraints
func (c PipelineConfig) Validate() error {
	if c.SampleRate <= 0 || math.IsInf(c.SampleRate, 0) || math.IsNaN(c.SampleRate) {
		return fmt.Errorf("sample rate must be positive")
	}

	cond := c.Conditioning
	if cond.OutlierThreshold <= 0 {
		return fmt.Errorf("outlier threshold must be positive")
	}
	if cond.WaveletLevel < 1 {
		return fmt.Errorf("wavelet level must be at least 1")
	}
	if cond.Wavelet == "" {
		return fmt.Errorf("wavelet name is required")
	}
	nyquist := c.SampleRate / 2
	if cond.BandHz[0] <= 0 || cond.BandHz[1] <= cond.BandHz[0] || cond.BandHz[1] >= nyquist {
		return fmt.Errorf("band edges must satisfy 0 < low < high < %.2f Hz", nyquist)
	}
	if cond.FilterOrder < 1 {
		return fmt.Errorf("filter order must be positive")
	}

	seg := c.Segmentation
	if seg.WindowSize <= 0 {
		return fmt.Errorf("window size must be positive")
	}
	if seg.Overlap < 0 || seg.Overlap >= seg.WindowSize {
		return fmt.Errorf("overlap must be in [0, window size)")
	}

	f := c.Features
	if f.Epsilon <= 0 || f.EntropyEpsilon <= 0 {
		return fmt.Errorf("epsilon guards must be positive")
	}
	if f.MinPeaks < 2 {
		return fmt.Errorf("min peaks must be at least 2")
	}
	if f.PeakDistanceSeconds < 0 {
		return fmt.Errorf("peak distance cannot be negative")
	}
	if f.LFBandHz[1] <= f.LFBandHz[0] || f.HFBandHz[1] <= f.HFBandHz[0] {
		return fmt.Errorf("spectral bands must have high > low")
	}
	if f.MaxWelchSegment < 1 {
		return fmt.Errorf("max welch segment must be positive")
	}
	if f.SmoothingWindow < 1 || f.SmoothingWindow%2 == 0 {
		return fmt.Errorf("smoothing window must be a positive odd number")
	}
	if f.SmoothingOrder < 0 || f.SmoothingOrder >= f.SmoothingWindow {
		return fmt.Errorf("smoothing order must be less than smoothing window")
	}

	switch c.Filter.Mode {
	case FilterSequential, FilterIndependent:
	default:
		return fmt.Errorf("invalid filter mode: %s (must be sequential or independent)", c.Filter.Mode)
	}
	if c.Filter.IQRMultiplier < 0 {
		return fmt.Errorf("iqr multiplier cannot be negative")
	}

	return nil
}

// PeakDistanceSamples returns the minimum inter-peak distance in samples
func (c PipelineConfig) PeakDistanceSamples(sampleRate float64) int {
	return int(math.Ceil(c.Features.PeakDistanceSeconds * sampleRate))
}
