package configs

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/ppg-features/pkg/signal/config"
)

// setDefaults sets default configuration values for all components
func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()

	// Application defaults
	if !v.IsSet("verbose") {
		v.Set("verbose", d.Verbose)
	}
	if !v.IsSet("log_level") {
		v.Set("log_level", d.LogLevel)
	}
	if !v.IsSet("output_format") {
		v.Set("output_format", d.OutputFormat)
	}
	if !v.IsSet("config_dir") {
		v.Set("config_dir", d.ConfigDir)
	}
	if !v.IsSet("data_dir") {
		v.Set("data_dir", d.DataDir)
	}

	setSignalDefaults(v, d.Signal)
	setFeatureDefaults(v, d.Features)

	// Segmentation defaults
	if !v.IsSet("segment.window_size") {
		v.Set("segment.window_size", d.Segment.WindowSize)
	}
	if !v.IsSet("segment.overlap") {
		v.Set("segment.overlap", d.Segment.Overlap)
	}

	// Outlier filter defaults
	if !v.IsSet("filter.enabled") {
		v.Set("filter.enabled", d.Filter.Enabled)
	}
	if !v.IsSet("filter.mode") {
		v.Set("filter.mode", d.Filter.Mode)
	}
	if !v.IsSet("filter.iqr_multiplier") {
		v.Set("filter.iqr_multiplier", d.Filter.IQRMultiplier)
	}

	// Execution defaults
	if !v.IsSet("pipeline.max_workers") {
		v.Set("pipeline.max_workers", d.Pipeline.MaxWorkers)
	}
	if !v.IsSet("pipeline.fail_fast") {
		v.Set("pipeline.fail_fast", d.Pipeline.FailFast)
	}
	if !v.IsSet("pipeline.timeout") {
		v.Set("pipeline.timeout", d.Pipeline.Timeout)
	}

	// Metrics defaults
	if !v.IsSet("metrics.enabled") {
		v.Set("metrics.enabled", d.Metrics.Enabled)
	}
	if !v.IsSet("metrics.log_file") {
		v.Set("metrics.log_file", d.Metrics.LogFile)
	}
	if !v.IsSet("metrics.prefix") {
		v.Set("metrics.prefix", d.Metrics.Prefix)
	}
	if !v.IsSet("metrics.tags") {
		v.Set("metrics.tags", d.Metrics.Tags)
	}
}

// setSignalDefaults sets conditioning defaults
func setSignalDefaults(v *viper.Viper, s SignalConfig) {
	if !v.IsSet("signal.sample_rate") {
		v.Set("signal.sample_rate", s.SampleRate)
	}
	if !v.IsSet("signal.outlier_threshold") {
		v.Set("signal.outlier_threshold", s.OutlierThreshold)
	}
	if !v.IsSet("signal.wavelet") {
		v.Set("signal.wavelet", s.Wavelet)
	}
	if !v.IsSet("signal.wavelet_level") {
		v.Set("signal.wavelet_level", s.WaveletLevel)
	}
	if !v.IsSet("signal.band_low_hz") {
		v.Set("signal.band_low_hz", s.BandLowHz)
	}
	if !v.IsSet("signal.band_high_hz") {
		v.Set("signal.band_high_hz", s.BandHighHz)
	}
	if !v.IsSet("signal.filter_order") {
		v.Set("signal.filter_order", s.FilterOrder)
	}
}

// setFeatureDefaults sets feature extraction defaults
func setFeatureDefaults(v *viper.Viper, f FeaturesConfig) {
	if !v.IsSet("features.epsilon") {
		v.Set("features.epsilon", f.Epsilon)
	}
	if !v.IsSet("features.entropy_epsilon") {
		v.Set("features.entropy_epsilon", f.EntropyEpsilon)
	}
	if !v.IsSet("features.min_peaks") {
		v.Set("features.min_peaks", f.MinPeaks)
	}
	if !v.IsSet("features.peak_distance_seconds") {
		v.Set("features.peak_distance_seconds", f.PeakDistanceSeconds)
	}
	if !v.IsSet("features.lf_band") {
		v.Set("features.lf_band", f.LFBand)
	}
	if !v.IsSet("features.hf_band") {
		v.Set("features.hf_band", f.HFBand)
	}
	if !v.IsSet("features.max_welch_segment") {
		v.Set("features.max_welch_segment", f.MaxWelchSegment)
	}
	if !v.IsSet("features.smoothing_window") {
		v.Set("features.smoothing_window", f.SmoothingWindow)
	}
	if !v.IsSet("features.smoothing_order") {
		v.Set("features.smoothing_order", f.SmoothingOrder)
	}
}

// GetDefaultConfig returns a Config struct with all default values set
func GetDefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	pc := config.DefaultConfig()

	return &Config{
		// Application settings defaults
		Verbose:      false,
		LogLevel:     "info",
		OutputFormat: "json",
		ConfigDir:    filepath.Join(home, ".config", "ppg-features"),
		DataDir:      filepath.Join(home, ".local", "share", "ppg-features"),

		Signal: SignalConfig{
			SampleRate:       pc.SampleRate,
			OutlierThreshold: pc.Conditioning.OutlierThreshold,
			Wavelet:          pc.Conditioning.Wavelet,
			WaveletLevel:     pc.Conditioning.WaveletLevel,
			BandLowHz:        pc.Conditioning.BandHz[0],
			BandHighHz:       pc.Conditioning.BandHz[1],
			FilterOrder:      pc.Conditioning.FilterOrder,
		},

		Segment: SegmentConfig{
			WindowSize: pc.Segmentation.WindowSize,
			Overlap:    pc.Segmentation.Overlap,
		},

		Features: FeaturesConfig{
			Epsilon:             pc.Features.Epsilon,
			EntropyEpsilon:      pc.Features.EntropyEpsilon,
			MinPeaks:            pc.Features.MinPeaks,
			PeakDistanceSeconds: pc.Features.PeakDistanceSeconds,
			LFBand:              pc.Features.LFBandHz[:],
			HFBand:              pc.Features.HFBandHz[:],
			MaxWelchSegment:     pc.Features.MaxWelchSegment,
			SmoothingWindow:     pc.Features.SmoothingWindow,
			SmoothingOrder:      pc.Features.SmoothingOrder,
		},

		Filter: FilterConfig{
			Enabled:       pc.Filter.Enabled,
			Mode:          string(pc.Filter.Mode),
			IQRMultiplier: pc.Filter.IQRMultiplier,
		},

		// zero workers means one per CPU
		Pipeline: PipelineConfig{
			MaxWorkers: 0,
			FailFast:   false,
		},

		Metrics: MetricsConfig{
			Enabled: false,
			LogFile: "/tmp/ppg-features-metrics.log",
			Prefix:  "ppg.features",
			Tags:    []string{},
		},
	}
}
