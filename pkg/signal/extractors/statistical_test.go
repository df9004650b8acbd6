package extractors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatisticalExtractor(t *testing.T) {
	s := NewStatisticalExtractor(1e-8)

	var v Vector
	s.Extract([]float64{1, 2, 3, 4}, testSampleRate, &v)

	assert.InDelta(t, 2.5, v.Get(Mean), 1e-12)
	assert.InDelta(t, 1.25, v.Get(Variance), 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), v.Get(Std), 1e-12)
	assert.InDelta(t, 0.0, v.Get(Skewness), 1e-12)
	assert.InDelta(t, -1.36, v.Get(Kurtosis), 1e-12)
	assert.InDelta(t, math.Sqrt(7.5), v.Get(RMS), 1e-12)
	assert.InDelta(t, 1.0, v.Get(MAD), 1e-12)
	assert.InDelta(t, math.Sqrt(1.25)/2.5, v.Get(CV), 1e-8)
}

func TestStatisticalExtractorSkewed(t *testing.T) {
	s := NewStatisticalExtractor(1e-8)

	var v Vector
	s.Extract([]float64{0, 0, 0, 1}, testSampleRate, &v)

	// m2 = 3/16, m3 = 3/32
	expected := (3.0 / 32) / math.Pow(3.0/16, 1.5)
	assert.InDelta(t, expected, v.Get(Skewness), 1e-12)
	assert.Greater(t, v.Get(Skewness), 0.0)
}

func TestStatisticalExtractorConstant(t *testing.T) {
	s := NewStatisticalExtractor(1e-8)

	var v Vector
	s.Extract([]float64{0.7, 0.7, 0.7, 0.7, 0.7}, testSampleRate, &v)

	assert.InDelta(t, 0.7, v.Get(Mean), 1e-12)
	assert.Equal(t, 0.0, v.Get(Skewness))
	assert.Equal(t, 0.0, v.Get(Kurtosis))
	assert.False(t, math.IsNaN(v.Get(CV)))
}

func TestStatisticalExtractorNearConstant(t *testing.T) {
	s := NewStatisticalExtractor(1e-8)

	// variance 2^-102 sits above (eps*mean)^2 but below (1e-15*mean)^2
	delta := math.Ldexp(1, -50)
	var v Vector
	s.Extract([]float64{1, 1 + delta, 1, 1 + delta}, testSampleRate, &v)

	assert.Greater(t, v.Get(Variance), 0.0)
	assert.Less(t, v.Get(Variance), 1e-30)
	assert.Equal(t, 0.0, v.Get(Skewness))
	assert.Equal(t, 0.0, v.Get(Kurtosis))
}
