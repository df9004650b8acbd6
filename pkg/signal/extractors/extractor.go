// Package extractors computes the fixed 33-slot feature vector of a PPG
// analysis window across four families: statistical moments, cardiac cycle
// and HRV, Welch spectral descriptors and derivative morphology.
package extractors

import (
	"fmt"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/ppg-features/pkg/signal/analyzers"
	"github.com/RyanBlaney/ppg-features/pkg/signal/config"
)

// FamilyExtractor fills the slots of one feature family
type FamilyExtractor interface {
	Family() Family
	Extract(x []float64, sampleRate float64, v *Vector)
}

// Extractor runs every family extractor over a segment. It holds no state
// between calls and is safe for concurrent use.
type Extractor struct {
	families []FamilyExtractor
	logger   logging.Logger
}

// NewExtractor builds the family extractors from the feature configuration
func NewExtractor(cfg *config.FeatureConfig, logger logging.Logger) (*Extractor, error) {
	if cfg == nil {
		def := config.DefaultConfig().Features
		cfg = &def
	}
	if logger == nil {
		logger = logging.WithFields(logging.Fields{
			"component": "feature_extractor",
		})
	}

	smoother, err := analyzers.NewSavitzkyGolay(cfg.SmoothingWindow, cfg.SmoothingOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to create smoothing filter: %w", err)
	}

	return &Extractor{
		families: []FamilyExtractor{
			NewStatisticalExtractor(cfg.Epsilon),
			NewCardiacExtractor(cfg.Epsilon, cfg.MinPeaks, cfg.PeakDistanceSeconds),
			NewSpectralExtractor(cfg.Epsilon, cfg.EntropyEpsilon, cfg.LFBandHz, cfg.HFBandHz, cfg.MaxWelchSegment, logger),
			NewMorphologicalExtractor(cfg.Epsilon, smoother),
		},
		logger: logger,
	}, nil
}

// Families returns the family extractors in schema order
func (e *Extractor) Families() []FamilyExtractor {
	return e.families
}

// Extract computes the feature vector of one segment. The segment is not
// modified.
func (e *Extractor) Extract(segment []float64, sampleRate float64) Vector {
	var v Vector
	for _, fe := range e.families {
		fe.Extract(segment, sampleRate, &v)
	}

	if !v.IsFinite() {
		e.logger.Debug("Feature vector contains non-finite values", logging.Fields{
			"samples": len(segment),
		})
	}

	return v
}
