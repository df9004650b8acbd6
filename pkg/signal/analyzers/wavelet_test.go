package analyzers

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaveletFilters(t *testing.T) {
	for _, name := range []string{"haar", "db2", "db4", "db6"} {
		w, err := NewWavelet(name)
		require.NoError(t, err, name)

		var sumLo, energy float64
		for _, c := range w.recLo {
			sumLo += c
			energy += c * c
		}
		assert.InDelta(t, math.Sqrt2, sumLo, 1e-9, name)
		assert.InDelta(t, 1.0, energy, 1e-9, name)
	}

	w, err := NewWavelet("DB6")
	require.NoError(t, err)
	assert.Equal(t, "db6", w.Name())
	assert.Equal(t, 12, w.FilterLength())

	_, err = NewWavelet("sym5")
	assert.Error(t, err)
}

func TestWaveletPerfectReconstruction(t *testing.T) {
	w, err := NewWavelet("db6")
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for _, n := range []int{8, 9, 13, 100, 1001} {
		signal := make([]float64, n)
		for i := range signal {
			signal[i] = rng.NormFloat64()
		}

		coeffs, err := w.WaveDec(signal, 3)
		require.NoError(t, err)
		require.Len(t, coeffs, 4)

		rec, err := w.WaveRec(coeffs)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(rec), n)

		for i := range n {
			assert.InDelta(t, signal[i], rec[i], 1e-9, "n=%d i=%d", n, i)
		}
	}
}

func TestWaveletCoefficientLengths(t *testing.T) {
	w, err := NewWavelet("db6")
	require.NoError(t, err)

	approx, detail := w.DWT(make([]float64, 1000))
	assert.Len(t, approx, 505)
	assert.Len(t, detail, 505)
	assert.Equal(t, 505, w.CoefficientLength(1000))
}

func TestSymmetricIndex(t *testing.T) {
	n := 4
	cases := map[int]int{-3: 2, -2: 1, -1: 0, 0: 0, 3: 3, 4: 3, 5: 2, 8: 0}
	for k, expected := range cases {
		assert.Equal(t, expected, symmetricIndex(k, n), "k=%d", k)
	}
	assert.Equal(t, 0, symmetricIndex(5, 1))
}
