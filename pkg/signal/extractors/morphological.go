package extractors

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/ppg-features/pkg/signal/analyzers"
)

// MorphologicalExtractor describes waveform shape through the first and
// second derivatives of the smoothed segment.
type MorphologicalExtractor struct {
	epsilon  float64
	smoother *analyzers.SavitzkyGolay
}

func NewMorphologicalExtractor(epsilon float64, smoother *analyzers.SavitzkyGolay) *MorphologicalExtractor {
	return &MorphologicalExtractor{epsilon: epsilon, smoother: smoother}
}

func (m *MorphologicalExtractor) Family() Family {
	return FamilyMorphological
}

// Derivatives returns the first and second derivative of the smoothed
// segment. Segments no longer than the smoothing window are used raw.
func (m *MorphologicalExtractor) Derivatives(x []float64) (d1, d2 []float64) {
	smoothed := x
	if m.smoother != nil && len(x) > m.smoother.Window() {
		smoothed = m.smoother.Smooth(x)
	}
	d1 = analyzers.Gradient(smoothed)
	d2 = analyzers.Gradient(d1)
	return d1, d2
}

// Extract fills the morphological slots of v
func (m *MorphologicalExtractor) Extract(x []float64, _ float64, v *Vector) {
	if len(x) == 0 {
		return
	}

	d1, d2 := m.Derivatives(x)

	d1Mean, d1Std := stat.PopMeanStdDev(d1, nil)
	rawStd := stat.PopStdDev(x, nil)

	v.Set(MorphSignalEnergy, floats.Dot(x, x))
	v.Set(MorphFirstDerivMean, d1Mean)
	v.Set(MorphFirstDerivStd, d1Std)
	v.Set(MorphSecondDerivMean, stat.Mean(d2, nil))
	v.Set(MorphSecondDerivStd, stat.PopStdDev(d2, nil))
	v.Set(MorphZeroCrossings1st, float64(analyzers.SignChanges(d1)))
	v.Set(MorphZeroCrossings2nd, float64(analyzers.SignChanges(d2)))
	v.Set(MorphSignalComplexity, d1Std/(rawStd+m.epsilon))
}
