package preprocess

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/ppg-features/pkg/signal/common"
	"github.com/RyanBlaney/ppg-features/pkg/signal/config"
)

// Conditioner runs the whole-waveform stages in order: spike suppression,
// normalization, wavelet denoising and band-limiting.
type Conditioner struct {
	stages []Stage
	logger logging.Logger
}

// NewConditioner builds the stage chain from the pipeline configuration.
// The band-pass is designed once here and reused for every waveform.
func NewConditioner(cfg *config.PipelineConfig, logger logging.Logger) (*Conditioner, error) {
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	if logger == nil {
		logger = logging.WithFields(logging.Fields{
			"component": "conditioner",
		})
	}

	cc := cfg.Conditioning

	denoiser, err := NewWaveletDenoiser(cc.Wavelet, cc.WaveletLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create wavelet denoiser: %w", err)
	}

	bandpass, err := NewBandpassFilter(cc.FilterOrder, cc.BandHz[0], cc.BandHz[1], cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	return &Conditioner{
		stages: []Stage{
			NewOutlierSuppressor(cc.OutlierThreshold),
			NewNormalizer(),
			denoiser,
			bandpass,
		},
		logger: logger,
	}, nil
}

// Stages returns the chain in execution order
func (c *Conditioner) Stages() []Stage {
	return c.stages
}

// Condition applies every stage to the waveform and returns a new waveform
// of the same length. The input is left untouched.
func (c *Conditioner) Condition(source string, wf common.Waveform) (common.Waveform, error) {
	if wf.Len() == 0 {
		return common.Waveform{}, common.NewSignalError(common.ErrCodeEmptyWaveform, source, "waveform has no samples", nil)
	}

	samples := wf.Samples
	for _, stage := range c.stages {
		out, err := stage.Apply(samples)
		if err != nil {
			return common.Waveform{}, wrapStageError(source, stage.Name(), err)
		}
		if len(out) != len(samples) {
			return common.Waveform{}, common.NewSignalError(common.ErrCodeInvalidRecord, source,
				fmt.Sprintf("stage %s changed length from %d to %d", stage.Name(), len(samples), len(out)), nil)
		}
		samples = out

		c.logger.Debug("Conditioning stage complete", logging.Fields{
			"source":  source,
			"stage":   stage.Name(),
			"samples": len(samples),
		})
	}

	return wf.WithSamples(samples), nil
}

// wrapStageError keeps typed signal errors and attaches the record source
func wrapStageError(source, stage string, err error) error {
	var se *common.SignalError
	if errors.As(err, &se) {
		return common.NewSignalError(se.Code, source, fmt.Sprintf("%s: %s", stage, se.Message), se.Cause)
	}
	return fmt.Errorf("%s stage failed for %s: %w", stage, source, err)
}
