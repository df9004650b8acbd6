package pipeline

import (
	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/sonido-sonar/algorithms/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/ppg-features/internal/dataset"
)

// SummaryCalculator derives run-level statistics
type SummaryCalculator struct {
	percentiles *stats.Percentiles
	logger      logging.Logger
}

// NewSummaryCalculator creates a new summary calculator
func NewSummaryCalculator(logger logging.Logger) *SummaryCalculator {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	return &SummaryCalculator{
		percentiles: stats.NewPercentilesWithMethod(stats.Linear),
		logger:      logger,
	}
}

// Calculate fills the record and label counts of summary
func (sc *SummaryCalculator) Calculate(summary *RunSummary, records []RecordResult, ds *dataset.Dataset) {
	summary.RecordsTotal = len(records)
	for _, r := range records {
		switch r.Status {
		case StatusOK:
			summary.RecordsSucceeded++
			summary.VectorsExtracted += r.Segments
		default:
			summary.RecordsFailed++
		}
	}

	if ds == nil {
		return
	}

	summary.VectorsRetained = ds.Len()
	summary.SourcesRetained = len(ds.Sources())

	sbp, dbp := ds.Targets()
	summary.SBP = sc.valueStats(sbp)
	summary.DBP = sc.valueStats(dbp)

	sc.logger.Debug("Run summary calculated", logging.Fields{
		"records":  summary.RecordsTotal,
		"failed":   summary.RecordsFailed,
		"vectors":  summary.VectorsExtracted,
		"retained": summary.VectorsRetained,
	})
}

// valueStats calculates statistical measures for a slice of values
func (sc *SummaryCalculator) valueStats(values []float64) *ValueStats {
	if len(values) == 0 {
		return nil
	}

	minimum, _, median, _, maximum, err := sc.percentiles.CalculateBoxPlotStatistics(values)
	if err != nil {
		return nil
	}
	mean, std := stat.PopMeanStdDev(values, nil)

	return &ValueStats{
		Mean:   mean,
		Median: median,
		Min:    minimum,
		Max:    maximum,
		StdDev: std,
		Count:  len(values),
	}
}
