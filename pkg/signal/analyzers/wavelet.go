package analyzers

import (
	"fmt"
	"math"
	"strings"
)

// Daubechies reconstruction low-pass (scaling) filters, normalized to sum sqrt(2)
var daubechiesScaling = map[string][]float64{
	"db1": {
		math.Sqrt2 / 2,
		math.Sqrt2 / 2,
	},
	"db2": {
		(1 + math.Sqrt(3)) / (4 * math.Sqrt2),
		(3 + math.Sqrt(3)) / (4 * math.Sqrt2),
		(3 - math.Sqrt(3)) / (4 * math.Sqrt2),
		(1 - math.Sqrt(3)) / (4 * math.Sqrt2),
	},
	"db4": {
		0.2303778133088964, 0.7148465705529154, 0.6308807679298587, -0.027983769416859854,
		-0.18703481171909309, 0.030841381835560764, 0.0328830116668852, -0.010597401785069032,
	},
	"db6": {
		0.11154074335008017, 0.4946238903983854, 0.7511339080215775, 0.3152503517092432,
		-0.22626469396516913, -0.12976686756709563, 0.09750160558707936, 0.02752286553001629,
		-0.031582039318031156, 0.0005538422009938016, 0.004777257511010651, -0.00107730108499558,
	},
}

// Wavelet is an orthogonal two-channel filter bank using half-sample
// symmetric boundary extension.
type Wavelet struct {
	name  string
	decLo []float64
	decHi []float64
	recLo []float64
	recHi []float64
}

// NewWavelet builds the filter bank for a named Daubechies wavelet
func NewWavelet(name string) (*Wavelet, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "haar" {
		key = "db1"
	}

	scaling, ok := daubechiesScaling[key]
	if !ok {
		return nil, fmt.Errorf("unsupported wavelet: %s", name)
	}

	n := len(scaling)
	w := &Wavelet{
		name:  key,
		decLo: make([]float64, n),
		decHi: make([]float64, n),
		recLo: make([]float64, n),
		recHi: make([]float64, n),
	}

	copy(w.recLo, scaling)
	for i := range n {
		// quadrature mirror of the scaling filter
		sign := 1.0
		if i%2 == 1 {
			sign = -1.0
		}
		w.recHi[i] = sign * scaling[n-1-i]
	}
	for i := range n {
		w.decLo[i] = w.recLo[n-1-i]
		w.decHi[i] = w.recHi[n-1-i]
	}

	return w, nil
}

// Name returns the canonical wavelet name
func (w *Wavelet) Name() string {
	return w.name
}

// FilterLength returns the number of taps in each filter
func (w *Wavelet) FilterLength() int {
	return len(w.recLo)
}

// CoefficientLength returns the length of one decomposition level's output
func (w *Wavelet) CoefficientLength(inputLen int) int {
	return (inputLen + w.FilterLength() - 1) / 2
}

// DWT computes a single-level decomposition
func (w *Wavelet) DWT(signal []float64) (approx, detail []float64) {
	n := len(signal)
	if n == 0 {
		return []float64{}, []float64{}
	}

	taps := w.FilterLength()
	outLen := w.CoefficientLength(n)
	approx = make([]float64, outLen)
	detail = make([]float64, outLen)

	for o := range outLen {
		i := 2*o + 1
		var a, d float64
		for j := range taps {
			x := signal[symmetricIndex(i-j, n)]
			a += w.decLo[j] * x
			d += w.decHi[j] * x
		}
		approx[o] = a
		detail[o] = d
	}

	return approx, detail
}

// IDWT reconstructs one level from equal-length approximation and detail sets
func (w *Wavelet) IDWT(approx, detail []float64) ([]float64, error) {
	if len(approx) != len(detail) {
		return nil, fmt.Errorf("coefficient length mismatch: approx %d, detail %d", len(approx), len(detail))
	}

	taps := w.FilterLength()
	n := len(approx)
	outLen := 2*n - taps + 2
	if outLen <= 0 {
		return nil, fmt.Errorf("too few coefficients (%d) for %s reconstruction", n, w.name)
	}

	out := make([]float64, outLen)
	for t := range outLen {
		var sum float64
		// only o with 0 <= t+taps-2-2o < taps contribute
		oMin := max(0, (t-1)/2)
		oMax := min(n-1, (t+taps-2)/2)
		for o := oMin; o <= oMax; o++ {
			k := t + taps - 2 - 2*o
			if k < 0 || k >= taps {
				continue
			}
			sum += approx[o]*w.recLo[k] + detail[o]*w.recHi[k]
		}
		out[t] = sum
	}

	return out, nil
}

// WaveDec performs a multilevel decomposition. The result is ordered
// [cA_level, cD_level, ..., cD_1].
func (w *Wavelet) WaveDec(signal []float64, level int) ([][]float64, error) {
	if level < 1 {
		return nil, fmt.Errorf("decomposition level must be at least 1, got %d", level)
	}
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	coeffs := make([][]float64, level+1)
	approx := signal
	for l := range level {
		var detail []float64
		approx, detail = w.DWT(approx)
		coeffs[level-l] = detail
	}
	coeffs[0] = approx

	return coeffs, nil
}

// WaveRec inverts WaveDec. The output may be one sample longer than the
// original signal when an odd length was decomposed.
func (w *Wavelet) WaveRec(coeffs [][]float64) ([]float64, error) {
	if len(coeffs) < 2 {
		return nil, fmt.Errorf("need approximation and at least one detail set, got %d sets", len(coeffs))
	}

	approx := coeffs[0]
	for l, detail := range coeffs[1:] {
		if len(approx) == len(detail)+1 {
			approx = approx[:len(approx)-1]
		}
		rec, err := w.IDWT(approx, detail)
		if err != nil {
			return nil, fmt.Errorf("reconstruction failed at level %d: %w", len(coeffs)-1-l, err)
		}
		approx = rec
	}

	return approx, nil
}

// symmetricIndex maps k onto [0, n) by half-sample reflection
// (... x1 x0 | x0 x1 ... xn-1 | xn-1 xn-2 ...).
func symmetricIndex(k, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	k %= period
	if k < 0 {
		k += period
	}
	if k >= n {
		k = period - 1 - k
	}
	return k
}
