package analyzers

import (
	"math"

	"github.com/RyanBlaney/sonido-sonar/algorithms/stats"
)

// quantiles is read-only after construction and shared across goroutines
var quantiles = stats.NewPercentilesWithMethod(stats.Linear)

// Median returns the middle order statistic, averaging the two central values
// for even lengths. Returns NaN for an empty slice.
func Median(x []float64) float64 {
	return Quantile(x, 0.5)
}

// Quantile returns the q-quantile of x by linear interpolation between the
// order statistics at floor and ceil of q*(n-1). x need not be sorted and is
// not modified. Returns NaN for an empty slice.
func Quantile(x []float64, q float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	v, err := quantiles.CalculatePercentile(x, min(max(q, 0), 1)*100)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Gradient returns the discrete derivative with unit spacing: central
// differences inside, one-sided differences at the ends. Inputs shorter than
// two samples give all zeros.
func Gradient(x []float64) []float64 {
	n := len(x)
	grad := make([]float64, n)
	if n < 2 {
		return grad
	}

	grad[0] = x[1] - x[0]
	for i := 1; i < n-1; i++ {
		grad[i] = (x[i+1] - x[i-1]) / 2
	}
	grad[n-1] = x[n-1] - x[n-2]
	return grad
}

// SignChanges counts adjacent pairs whose sign bits differ. Negative zero
// counts as negative.
func SignChanges(x []float64) int {
	count := 0
	for i := 1; i < len(x); i++ {
		if math.Signbit(x[i]) != math.Signbit(x[i-1]) {
			count++
		}
	}
	return count
}

// Trapezoid integrates y over the sample points x
func Trapezoid(y, x []float64) float64 {
	n := min(len(x), len(y))
	sum := 0.0
	for i := 1; i < n; i++ {
		sum += (x[i] - x[i-1]) * (y[i] + y[i-1]) / 2
	}
	return sum
}
