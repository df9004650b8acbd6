package configs

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/ppg-features/pkg/signal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, 125.0, cfg.Signal.SampleRate)
	assert.Equal(t, "db6", cfg.Signal.Wavelet)
	assert.Equal(t, 1000, cfg.Segment.WindowSize)
	assert.Equal(t, []float64{0.04, 0.15}, cfg.Features.LFBand)
	assert.Equal(t, "sequential", cfg.Filter.Mode)
	require.NoError(t, ValidateConfig(cfg))

	pc, err := cfg.ToPipelineConfig()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), pc)
}

func TestLoadConfigOverrides(t *testing.T) {
	v := viper.New()
	v.Set("segment.window_size", 500)
	v.Set("segment.overlap", 250)
	v.Set("filter.mode", "independent")
	v.Set("pipeline.timeout", "90s")

	cfg, err := LoadConfigFrom(v)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Segment.WindowSize)
	assert.Equal(t, 90*time.Second, cfg.Pipeline.Timeout)

	pc, err := cfg.ToPipelineConfig()
	require.NoError(t, err)
	assert.Equal(t, config.FilterIndependent, pc.Filter.Mode)
	assert.Equal(t, 250, pc.Segmentation.Stride())
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"output format", func(c *Config) { c.OutputFormat = "xml" }},
		{"log level", func(c *Config) { c.LogLevel = "trace" }},
		{"negative workers", func(c *Config) { c.Pipeline.MaxWorkers = -1 }},
		{"metrics without file", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.LogFile = "" }},
		{"band length", func(c *Config) { c.Features.HFBand = []float64{0.15} }},
		{"pipeline range", func(c *Config) { c.Signal.BandHighHz = 100 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, ValidateConfig(cfg))
		})
	}
}
