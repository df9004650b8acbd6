package configs

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/ppg-features/pkg/signal/config"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose" yaml:"verbose"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	ConfigDir    string `mapstructure:"config_dir" yaml:"config_dir"`
	DataDir      string `mapstructure:"data_dir" yaml:"data_dir"`

	// Whole-waveform conditioning
	Signal SignalConfig `mapstructure:"signal" yaml:"signal"`

	// Analysis windows
	Segment SegmentConfig `mapstructure:"segment" yaml:"segment"`

	// Feature extraction constants
	Features FeaturesConfig `mapstructure:"features" yaml:"features"`

	// Feature-level outlier filtering
	Filter FilterConfig `mapstructure:"filter" yaml:"filter"`

	// Run execution
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`

	// Metric emission
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// SignalConfig contains conditioning settings
type SignalConfig struct {
	SampleRate       float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
	OutlierThreshold float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`
	Wavelet          string  `mapstructure:"wavelet" yaml:"wavelet"`
	WaveletLevel     int     `mapstructure:"wavelet_level" yaml:"wavelet_level"`
	BandLowHz        float64 `mapstructure:"band_low_hz" yaml:"band_low_hz"`
	BandHighHz       float64 `mapstructure:"band_high_hz" yaml:"band_high_hz"`
	FilterOrder      int     `mapstructure:"filter_order" yaml:"filter_order"`
}

// SegmentConfig contains windowing settings
type SegmentConfig struct {
	WindowSize int `mapstructure:"window_size" yaml:"window_size"`
	Overlap    int `mapstructure:"overlap" yaml:"overlap"`
}

// FeaturesConfig contains feature extraction settings
type FeaturesConfig struct {
	Epsilon             float64   `mapstructure:"epsilon" yaml:"epsilon"`
	EntropyEpsilon      float64   `mapstructure:"entropy_epsilon" yaml:"entropy_epsilon"`
	MinPeaks            int       `mapstructure:"min_peaks" yaml:"min_peaks"`
	PeakDistanceSeconds float64   `mapstructure:"peak_distance_seconds" yaml:"peak_distance_seconds"`
	LFBand              []float64 `mapstructure:"lf_band" yaml:"lf_band"`
	HFBand              []float64 `mapstructure:"hf_band" yaml:"hf_band"`
	MaxWelchSegment     int       `mapstructure:"max_welch_segment" yaml:"max_welch_segment"`
	SmoothingWindow     int       `mapstructure:"smoothing_window" yaml:"smoothing_window"`
	SmoothingOrder      int       `mapstructure:"smoothing_order" yaml:"smoothing_order"`
}

// FilterConfig contains outlier filter settings
type FilterConfig struct {
	Enabled       bool    `mapstructure:"enabled" yaml:"enabled"`
	Mode          string  `mapstructure:"mode" yaml:"mode"`
	IQRMultiplier float64 `mapstructure:"iqr_multiplier" yaml:"iqr_multiplier"`
}

// PipelineConfig contains run execution settings
type PipelineConfig struct {
	MaxWorkers int           `mapstructure:"max_workers" yaml:"max_workers"`
	FailFast   bool          `mapstructure:"fail_fast" yaml:"fail_fast"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// MetricsConfig contains metric collector settings
type MetricsConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
	LogFile string   `mapstructure:"log_file" yaml:"log_file"`
	Prefix  string   `mapstructure:"prefix" yaml:"prefix"`
	Tags    []string `mapstructure:"tags" yaml:"tags"`
}

var (
	validOutputFormats = []string{"json", "yaml", "csv", "table"}
	validLogLevels     = []string{"debug", "info", "warn", "error"}
)

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(viper.GetViper())
}

// LoadConfigFrom decodes a specific viper instance, filling any key that
// was not set from the defaults
func LoadConfigFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ToPipelineConfig maps the configuration onto the immutable pipeline
// parameters
func (c *Config) ToPipelineConfig() (config.PipelineConfig, error) {
	lf, err := band("features.lf_band", c.Features.LFBand)
	if err != nil {
		return config.PipelineConfig{}, err
	}
	hf, err := band("features.hf_band", c.Features.HFBand)
	if err != nil {
		return config.PipelineConfig{}, err
	}

	return config.PipelineConfig{
		SampleRate: c.Signal.SampleRate,
		Conditioning: config.ConditioningConfig{
			OutlierThreshold: c.Signal.OutlierThreshold,
			Wavelet:          c.Signal.Wavelet,
			WaveletLevel:     c.Signal.WaveletLevel,
			BandHz:           [2]float64{c.Signal.BandLowHz, c.Signal.BandHighHz},
			FilterOrder:      c.Signal.FilterOrder,
		},
		Segmentation: config.SegmentationConfig{
			WindowSize: c.Segment.WindowSize,
			Overlap:    c.Segment.Overlap,
		},
		Features: config.FeatureConfig{
			Epsilon:             c.Features.Epsilon,
			EntropyEpsilon:      c.Features.EntropyEpsilon,
			MinPeaks:            c.Features.MinPeaks,
			PeakDistanceSeconds: c.Features.PeakDistanceSeconds,
			LFBandHz:            lf,
			HFBandHz:            hf,
			MaxWelchSegment:     c.Features.MaxWelchSegment,
			SmoothingWindow:     c.Features.SmoothingWindow,
			SmoothingOrder:      c.Features.SmoothingOrder,
		},
		Filter: config.OutlierFilterConfig{
			Enabled:       c.Filter.Enabled,
			Mode:          config.FilterMode(c.Filter.Mode),
			IQRMultiplier: c.Filter.IQRMultiplier,
		},
	}, nil
}

func band(key string, values []float64) ([2]float64, error) {
	if len(values) != 2 {
		return [2]float64{}, fmt.Errorf("%s must have exactly two values [low, high], got %d", key, len(values))
	}
	return [2]float64{values[0], values[1]}, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(cfg *Config) error {
	if !slices.Contains(validOutputFormats, cfg.OutputFormat) {
		return fmt.Errorf("invalid output format: %s (must be one of %v)", cfg.OutputFormat, validOutputFormats)
	}

	if !slices.Contains(validLogLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of %v)", cfg.LogLevel, validLogLevels)
	}

	if cfg.Pipeline.MaxWorkers < 0 {
		return fmt.Errorf("max workers cannot be negative")
	}

	if cfg.Pipeline.Timeout < 0 {
		return fmt.Errorf("pipeline timeout cannot be negative")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.LogFile == "" {
		return fmt.Errorf("metrics log file is required when metrics are enabled")
	}

	pc, err := cfg.ToPipelineConfig()
	if err != nil {
		return err
	}
	if err := pc.Validate(); err != nil {
		return fmt.Errorf("invalid pipeline settings: %w", err)
	}

	return nil
}
