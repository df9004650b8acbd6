package extractors

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/ppg-features/pkg/signal/analyzers"
)

// CardiacExtractor derives beat-to-beat interval and heart-rate variability
// descriptors from systolic peaks.
type CardiacExtractor struct {
	epsilon         float64
	minPeaks        int
	distanceSeconds float64
}

func NewCardiacExtractor(epsilon float64, minPeaks int, distanceSeconds float64) *CardiacExtractor {
	return &CardiacExtractor{
		epsilon:         epsilon,
		minPeaks:        minPeaks,
		distanceSeconds: distanceSeconds,
	}
}

func (c *CardiacExtractor) Family() Family {
	return FamilyCardiac
}

// Peaks returns the systolic peaks of x: local maxima at or above the
// segment mean, thinned to one per distanceSeconds.
func (c *CardiacExtractor) Peaks(x []float64, sampleRate float64) []analyzers.Peak {
	if len(x) == 0 {
		return nil
	}
	distance := int(math.Ceil(c.distanceSeconds * sampleRate))
	detector := analyzers.NewPeakDetector(stat.Mean(x, nil), distance)
	return detector.Detect(x)
}

// Extract fills the cardiac slots of v. With fewer than minPeaks peaks every
// slot stays zero.
func (c *CardiacExtractor) Extract(x []float64, sampleRate float64, v *Vector) {
	peaks := c.Peaks(x, sampleRate)
	if len(peaks) < c.minPeaks {
		for _, f := range FeaturesOf(FamilyCardiac) {
			v.Set(f, 0)
		}
		return
	}

	heights := make([]float64, len(peaks))
	for i, p := range peaks {
		heights[i] = p.Height
	}

	intervals := make([]float64, len(peaks)-1) // seconds
	rr := make([]float64, len(peaks)-1)        // milliseconds
	hr := make([]float64, len(peaks)-1)        // beats per minute
	for i := 1; i < len(peaks); i++ {
		sec := float64(peaks[i].Index-peaks[i-1].Index) / sampleRate
		intervals[i-1] = sec
		rr[i-1] = sec * 1000
		hr[i-1] = 60 / sec
	}

	intervalMean, intervalStd := stat.PopMeanStdDev(intervals, nil)
	rrMean, rrStd := stat.PopMeanStdDev(rr, nil)
	hrMean, hrStd := stat.PopMeanStdDev(hr, nil)

	var sqDiff float64
	for i := 1; i < len(rr); i++ {
		d := rr[i] - rr[i-1]
		sqDiff += d * d
	}
	// mean of an empty difference set is NaN; the row is dropped downstream
	rmssd := math.NaN()
	if len(rr) > 1 {
		rmssd = math.Sqrt(sqDiff / float64(len(rr)-1))
	}

	v.Set(PeakCount, float64(len(peaks)))
	v.Set(PeakMeanHeight, stat.Mean(heights, nil))
	v.Set(PeakStdHeight, stat.PopStdDev(heights, nil))
	v.Set(PeakMeanInterval, intervalMean)
	v.Set(PeakStdInterval, intervalStd)
	v.Set(PeakCVInterval, intervalStd/(intervalMean+c.epsilon))
	v.Set(HRVRMSSD, rmssd)
	v.Set(HRVSDNN, rrStd)
	v.Set(HRVMean, rrMean)
	v.Set(HRVCV, rrStd/(rrMean+c.epsilon))
	v.Set(MeanHR, hrMean)
	v.Set(HRStd, hrStd)
}
