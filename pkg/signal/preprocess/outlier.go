package preprocess

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/ppg-features/pkg/signal/analyzers"
)

// OutlierSuppressor replaces samples whose z-score magnitude exceeds the
// threshold with the waveform median
type OutlierSuppressor struct {
	threshold float64
}

// NewOutlierSuppressor creates a suppressor for |z| > threshold
func NewOutlierSuppressor(threshold float64) *OutlierSuppressor {
	return &OutlierSuppressor{threshold: threshold}
}

func (o *OutlierSuppressor) Name() string {
	return "outlier_suppression"
}

// Apply computes z-scores against the waveform's own mean and population
// standard deviation. A constant waveform (std == 0) is returned unchanged.
func (o *OutlierSuppressor) Apply(samples []float64) ([]float64, error) {
	out := make([]float64, len(samples))
	copy(out, samples)
	if len(samples) == 0 {
		return out, nil
	}

	mean, std := stat.PopMeanStdDev(samples, nil)
	if std == 0 || math.IsNaN(std) {
		return out, nil
	}

	median := analyzers.Median(samples)
	for i, v := range samples {
		if math.Abs((v-mean)/std) > o.threshold {
			out[i] = median
		}
	}
	return out, nil
}

// Replaced counts how many samples Apply would replace
func (o *OutlierSuppressor) Replaced(samples []float64) int {
	if len(samples) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(samples, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	count := 0
	for _, v := range samples {
		if math.Abs((v-mean)/std) > o.threshold {
			count++
		}
	}
	return count
}
