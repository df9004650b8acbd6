package dataset

import (
	"fmt"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/sonido-sonar/algorithms/stats"

	"github.com/RyanBlaney/ppg-features/pkg/signal/config"
	"github.com/RyanBlaney/ppg-features/pkg/signal/extractors"
)

// ColumnBounds is the accepted closed range of one feature column
type ColumnBounds struct {
	Column  string  `json:"column" yaml:"column"`
	Q1      float64 `json:"q1" yaml:"q1"`
	Q3      float64 `json:"q3" yaml:"q3"`
	Lower   float64 `json:"lower" yaml:"lower"`
	Upper   float64 `json:"upper" yaml:"upper"`
	Removed int     `json:"removed" yaml:"removed"`
}

// FilterReport summarizes an outlier filtering pass
type FilterReport struct {
	Mode          config.FilterMode `json:"mode" yaml:"mode"`
	InputRows     int               `json:"input_rows" yaml:"input_rows"`
	RetainedRows  int               `json:"retained_rows" yaml:"retained_rows"`
	NonFiniteRows int               `json:"non_finite_rows" yaml:"non_finite_rows"`
	Columns       []ColumnBounds    `json:"columns" yaml:"columns"`
}

// Removed returns the total number of dropped rows
func (r *FilterReport) Removed() int {
	return r.InputRows - r.RetainedRows
}

// OutlierFilter removes rows whose feature values fall outside per-column
// interquartile bounds
type OutlierFilter struct {
	mode       config.FilterMode
	multiplier float64
	quartiles  *stats.Percentiles
	logger     logging.Logger
}

// NewOutlierFilter creates a filter from its configuration
func NewOutlierFilter(cfg config.OutlierFilterConfig, logger logging.Logger) (*OutlierFilter, error) {
	mode := cfg.Mode
	if mode == "" {
		mode = config.FilterSequential
	}
	if mode != config.FilterSequential && mode != config.FilterIndependent {
		return nil, fmt.Errorf("invalid filter mode: %s", mode)
	}
	if logger == nil {
		logger = logging.WithFields(logging.Fields{
			"component": "outlier_filter",
		})
	}
	return &OutlierFilter{
		mode:       mode,
		multiplier: cfg.IQRMultiplier,
		quartiles:  stats.NewPercentilesWithMethod(stats.Linear),
		logger:     logger,
	}, nil
}

// Apply filters rows and returns the retained rows in their original order.
// Rows with a non-finite feature are always dropped before bounds are
// computed.
func (f *OutlierFilter) Apply(rows []FeatureVector) ([]FeatureVector, *FilterReport) {
	report := &FilterReport{
		Mode:      f.mode,
		InputRows: len(rows),
		Columns:   make([]ColumnBounds, 0, extractors.NumFeatures),
	}

	remaining := make([]FeatureVector, 0, len(rows))
	for _, r := range rows {
		if r.Features.IsFinite() {
			remaining = append(remaining, r)
		}
	}
	report.NonFiniteRows = len(rows) - len(remaining)

	switch f.mode {
	case config.FilterIndependent:
		remaining = f.applyIndependent(remaining, report)
	default:
		remaining = f.applySequential(remaining, report)
	}

	report.RetainedRows = len(remaining)

	f.logger.Debug("Feature outlier filter applied", logging.Fields{
		"mode":       string(f.mode),
		"input":      report.InputRows,
		"retained":   report.RetainedRows,
		"non_finite": report.NonFiniteRows,
	})

	return remaining, report
}

// applySequential recomputes each column's quartiles on the rows that
// survived the previous columns
func (f *OutlierFilter) applySequential(rows []FeatureVector, report *FilterReport) []FeatureVector {
	for feat := range extractors.Feature(extractors.NumFeatures) {
		bounds := f.bounds(feat, rows)

		kept := make([]FeatureVector, 0, len(rows))
		for _, r := range rows {
			if bounds.contains(r.Features.Get(feat)) {
				kept = append(kept, r)
			}
		}
		bounds.Removed = len(rows) - len(kept)
		report.Columns = append(report.Columns, bounds)
		rows = kept
	}
	return rows
}

// applyIndependent computes every column's bounds once over the full input
// and keeps rows inside all of them
func (f *OutlierFilter) applyIndependent(rows []FeatureVector, report *FilterReport) []FeatureVector {
	for feat := range extractors.Feature(extractors.NumFeatures) {
		report.Columns = append(report.Columns, f.bounds(feat, rows))
	}

	kept := make([]FeatureVector, 0, len(rows))
	for _, r := range rows {
		inside := true
		for i := range report.Columns {
			if !report.Columns[i].contains(r.Features[i]) {
				report.Columns[i].Removed++
				inside = false
			}
		}
		if inside {
			kept = append(kept, r)
		}
	}
	return kept
}

func (f *OutlierFilter) bounds(feat extractors.Feature, rows []FeatureVector) ColumnBounds {
	b := ColumnBounds{Column: feat.String()}
	if len(rows) == 0 {
		return b
	}

	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = r.Features.Get(feat)
	}

	_, q1, _, q3, _, err := f.quartiles.CalculateBoxPlotStatistics(values)
	if err != nil {
		return b
	}
	b.Q1, b.Q3 = q1, q3
	iqr := b.Q3 - b.Q1
	b.Lower = b.Q1 - f.multiplier*iqr
	b.Upper = b.Q3 + f.multiplier*iqr
	return b
}

func (b ColumnBounds) contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}
