package extractors

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// varianceResolution is the float64 decimal resolution. A variance at or
// below (varianceResolution*mean)^2 leaves the higher moments undefined.
const varianceResolution = 1e-15

// StatisticalExtractor computes population moments of a segment
type StatisticalExtractor struct {
	epsilon float64
}

func NewStatisticalExtractor(epsilon float64) *StatisticalExtractor {
	return &StatisticalExtractor{epsilon: epsilon}
}

func (s *StatisticalExtractor) Family() Family {
	return FamilyStatistical
}

// Extract fills the statistical slots of v. Skewness and kurtosis are zero
// when the segment variance is numerically zero.
func (s *StatisticalExtractor) Extract(x []float64, _ float64, v *Vector) {
	if len(x) == 0 {
		return
	}

	mean := stat.Mean(x, nil)
	variance := stat.PopVariance(x, nil)
	std := math.Sqrt(variance)

	var sumSq, sumAbs float64
	for _, xi := range x {
		sumSq += xi * xi
		sumAbs += math.Abs(xi - mean)
	}
	n := float64(len(x))

	v.Set(Mean, mean)
	v.Set(Std, std)
	v.Set(Variance, variance)
	v.Set(RMS, math.Sqrt(sumSq/n))
	v.Set(MAD, sumAbs/n)
	v.Set(CV, std/(mean+s.epsilon))

	if variance <= math.Pow(varianceResolution*mean, 2) {
		v.Set(Skewness, 0)
		v.Set(Kurtosis, 0)
		return
	}

	m3 := stat.Moment(3, x, nil)
	m4 := stat.Moment(4, x, nil)
	v.Set(Skewness, m3/math.Pow(variance, 1.5))
	v.Set(Kurtosis, m4/(variance*variance)-3)
}
