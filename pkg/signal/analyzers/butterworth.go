package analyzers

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/ppg-features/pkg/signal/common"
)

// IIRFilter is a rational transfer function B(z)/A(z) with A[0] == 1
type IIRFilter struct {
	B []float64
	A []float64

	// zi is the steady-state internal state for a unit step input
	zi []float64
}

// NewButterworthBandpass designs a digital Butterworth band-pass filter of the
// given prototype order. Corner frequencies are in Hz. The resulting transfer
// function has order 2*order.
func NewButterworthBandpass(order int, lowHz, highHz, sampleRate float64) (*IIRFilter, error) {
	if order < 1 {
		return nil, fmt.Errorf("filter order must be positive, got %d", order)
	}
	nyquist := sampleRate / 2
	if lowHz <= 0 || highHz <= lowHz || highHz >= nyquist {
		return nil, fmt.Errorf("invalid band [%.3f, %.3f] Hz for nyquist %.3f Hz", lowHz, highHz, nyquist)
	}

	// Normalized edges, prewarped for the bilinear transform at fs = 2
	const fs = 2.0
	warpedLow := 2 * fs * math.Tan(math.Pi*(lowHz/nyquist)/fs)
	warpedHigh := 2 * fs * math.Tan(math.Pi*(highHz/nyquist)/fs)
	bandwidth := warpedHigh - warpedLow
	center := math.Sqrt(warpedLow * warpedHigh)

	// Analog low-pass prototype poles on the unit circle
	protoPoles := make([]complex128, 0, order)
	for m := -order + 1; m < order; m += 2 {
		protoPoles = append(protoPoles, -cmplx.Exp(complex(0, math.Pi*float64(m)/float64(2*order))))
	}

	// Low-pass to band-pass: each pole splits in two, order zeros at the origin
	poles := make([]complex128, 0, 2*order)
	c2 := complex(center*center, 0)
	for _, p := range protoPoles {
		lp := p * complex(bandwidth/2, 0)
		poles = append(poles, lp+cmplx.Sqrt(lp*lp-c2))
	}
	for _, p := range protoPoles {
		lp := p * complex(bandwidth/2, 0)
		poles = append(poles, lp-cmplx.Sqrt(lp*lp-c2))
	}
	zeros := make([]complex128, order)
	gain := math.Pow(bandwidth, float64(order))

	// Bilinear transform
	fs2 := complex(2*fs, 0)
	digitalZeros := make([]complex128, 0, 2*order)
	digitalPoles := make([]complex128, 0, 2*order)
	num := complex(1, 0)
	den := complex(1, 0)
	for _, z := range zeros {
		digitalZeros = append(digitalZeros, (fs2+z)/(fs2-z))
		num *= fs2 - z
	}
	for _, p := range poles {
		digitalPoles = append(digitalPoles, (fs2+p)/(fs2-p))
		den *= fs2 - p
	}
	for len(digitalZeros) < len(digitalPoles) {
		digitalZeros = append(digitalZeros, -1)
	}
	gain *= real(num / den)

	bc := expandRoots(digitalZeros)
	ac := expandRoots(digitalPoles)

	f := &IIRFilter{
		B: make([]float64, len(bc)),
		A: make([]float64, len(ac)),
	}
	for i := range bc {
		f.B[i] = gain * real(bc[i])
	}
	for i := range ac {
		f.A[i] = real(ac[i])
	}

	if err := f.normalize(); err != nil {
		return nil, err
	}
	return f, nil
}

// NewIIRFilter wraps existing coefficients
func NewIIRFilter(b, a []float64) (*IIRFilter, error) {
	f := &IIRFilter{
		B: append([]float64(nil), b...),
		A: append([]float64(nil), a...),
	}
	if err := f.normalize(); err != nil {
		return nil, err
	}
	return f, nil
}

// normalize pads B and A to equal length, scales by A[0] and solves for the
// step-response steady state.
func (f *IIRFilter) normalize() error {
	if len(f.A) == 0 || f.A[0] == 0 {
		return fmt.Errorf("leading denominator coefficient must be non-zero")
	}
	if len(f.B) == 0 {
		return fmt.Errorf("numerator has no coefficients")
	}

	n := max(len(f.A), len(f.B))
	for len(f.A) < n {
		f.A = append(f.A, 0)
	}
	for len(f.B) < n {
		f.B = append(f.B, 0)
	}

	a0 := f.A[0]
	for i := range n {
		f.A[i] /= a0
		f.B[i] /= a0
	}

	zi, err := steadyState(f.B, f.A)
	if err != nil {
		return err
	}
	f.zi = zi
	return nil
}

// steadyState solves (I - companion(A)^T) zi = B[1:] - A[1:]*B[0]
func steadyState(b, a []float64) ([]float64, error) {
	n := len(a) - 1
	if n == 0 {
		return []float64{}, nil
	}

	m := mat.NewDense(n, n, nil)
	rhs := mat.NewVecDense(n, nil)
	for i := range n {
		m.Set(i, i, 1)
		m.Set(i, 0, m.At(i, 0)+a[i+1])
		if i+1 < n {
			m.Set(i, i+1, m.At(i, i+1)-1)
		}
		rhs.SetVec(i, b[i+1]-a[i+1]*b[0])
	}

	var zi mat.VecDense
	if err := zi.SolveVec(m, rhs); err != nil {
		return nil, fmt.Errorf("failed to solve filter initial conditions: %w", err)
	}

	out := make([]float64, n)
	for i := range n {
		out[i] = zi.AtVec(i)
	}
	return out, nil
}

// Order returns the order of the transfer function
func (f *IIRFilter) Order() int {
	return len(f.A) - 1
}

// PadLength returns the odd-extension length used by FiltFilt
func (f *IIRFilter) PadLength() int {
	return 3 * len(f.A)
}

// Filter runs the direct form II transposed recursion over x. state is the
// initial internal state and may be nil for a zero start.
func (f *IIRFilter) Filter(x, state []float64) []float64 {
	order := f.Order()
	z := make([]float64, order)
	copy(z, state)

	y := make([]float64, len(x))
	for n, v := range x {
		out := f.B[0]*v + z[0]
		for i := 0; i < order-1; i++ {
			z[i] = f.B[i+1]*v + z[i+1] - f.A[i+1]*out
		}
		if order > 0 {
			z[order-1] = f.B[order]*v - f.A[order]*out
		}
		y[n] = out
	}
	return y
}

// FiltFilt applies the filter forward then backward so the net phase is zero.
// The signal is padded by odd reflection at both ends and each pass starts
// from the steady state scaled to its first sample.
func (f *IIRFilter) FiltFilt(x []float64) ([]float64, error) {
	pad := f.PadLength()
	n := len(x)
	if n <= pad {
		return nil, common.NewSignalError(common.ErrCodeSignalTooShort, "",
			fmt.Sprintf("zero-phase filtering needs more than %d samples, got %d", pad, n), nil)
	}

	ext := make([]float64, 0, n+2*pad)
	for i := pad; i > 0; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := range pad {
		ext = append(ext, 2*x[n-1]-x[n-2-i])
	}

	y := f.Filter(ext, f.scaledState(ext[0]))
	reverse(y)
	y = f.Filter(y, f.scaledState(y[0]))
	reverse(y)

	out := make([]float64, n)
	copy(out, y[pad:pad+n])
	return out, nil
}

func (f *IIRFilter) scaledState(x0 float64) []float64 {
	s := make([]float64, len(f.zi))
	for i, v := range f.zi {
		s[i] = v * x0
	}
	return s
}

// expandRoots returns the monic polynomial coefficients (highest power first)
// with the given roots.
func expandRoots(roots []complex128) []complex128 {
	coeffs := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] += c
			next[i+1] -= c * r
		}
		coeffs = next
	}
	return coeffs
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
