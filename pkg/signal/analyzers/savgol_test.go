package analyzers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavitzkyGolayCoefficients(t *testing.T) {
	sg, err := NewSavitzkyGolay(5, 2)
	require.NoError(t, err)

	expected := []float64{-3.0 / 35, 12.0 / 35, 17.0 / 35, 12.0 / 35, -3.0 / 35}
	coeffs := sg.Coefficients()
	require.Len(t, coeffs, 5)
	for i := range expected {
		assert.InDelta(t, expected[i], coeffs[i], 1e-12)
	}
}

func TestSavitzkyGolayPreservesQuadratic(t *testing.T) {
	sg, err := NewSavitzkyGolay(5, 2)
	require.NoError(t, err)

	x := make([]float64, 20)
	for i := range x {
		f := float64(i)
		x[i] = 0.5*f*f - 3*f + 1
	}

	y := sg.Smooth(x)
	require.Len(t, y, len(x))
	for i := range x {
		assert.InDelta(t, x[i], y[i], 1e-9, "i=%d", i)
	}
}

func TestSavitzkyGolayShortInput(t *testing.T) {
	sg, err := NewSavitzkyGolay(5, 2)
	require.NoError(t, err)

	x := []float64{1, 5, 2}
	y := sg.Smooth(x)
	assert.Equal(t, x, y)

	y[0] = 9
	assert.Equal(t, 1.0, x[0])
}

func TestNewSavitzkyGolayRejectsInvalid(t *testing.T) {
	_, err := NewSavitzkyGolay(4, 2)
	assert.Error(t, err)

	_, err = NewSavitzkyGolay(5, 5)
	assert.Error(t, err)
}
