package analyzers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SavitzkyGolay is a local least-squares polynomial smoother. Interior
// samples use the centred window; the first and last half-window samples are
// evaluated from the polynomial fitted to the first and last full window.
type SavitzkyGolay struct {
	window int
	order  int

	// projection[i][k] is the weight of window sample k in the fitted value at
	// window position i
	projection [][]float64
}

// NewSavitzkyGolay creates a smoother for an odd window and polynomial order
func NewSavitzkyGolay(window, order int) (*SavitzkyGolay, error) {
	if window < 1 || window%2 == 0 {
		return nil, fmt.Errorf("window length must be a positive odd number, got %d", window)
	}
	if order < 0 || order >= window {
		return nil, fmt.Errorf("polynomial order %d must be less than window length %d", order, window)
	}

	half := window / 2
	cols := order + 1

	// Vandermonde matrix on positions centred at zero
	vander := mat.NewDense(window, cols, nil)
	for i := range window {
		t := float64(i - half)
		v := 1.0
		for j := range cols {
			vander.Set(i, j, v)
			v *= t
		}
	}

	// projection = V (V^T V)^-1 V^T
	var gram mat.Dense
	gram.Mul(vander.T(), vander)
	var pinv mat.Dense
	if err := pinv.Solve(&gram, vander.T()); err != nil {
		return nil, fmt.Errorf("failed to solve smoothing normal equations: %w", err)
	}
	var proj mat.Dense
	proj.Mul(vander, &pinv)

	projection := make([][]float64, window)
	for i := range window {
		projection[i] = make([]float64, window)
		for k := range window {
			projection[i][k] = proj.At(i, k)
		}
	}

	return &SavitzkyGolay{
		window:     window,
		order:      order,
		projection: projection,
	}, nil
}

// Window returns the window length
func (sg *SavitzkyGolay) Window() int {
	return sg.window
}

// Coefficients returns the interior smoothing kernel
func (sg *SavitzkyGolay) Coefficients() []float64 {
	return append([]float64(nil), sg.projection[sg.window/2]...)
}

// Smooth returns the smoothed signal. Signals shorter than the window are
// returned as a copy.
func (sg *SavitzkyGolay) Smooth(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n < sg.window {
		copy(out, x)
		return out
	}

	half := sg.window / 2
	center := sg.projection[half]
	for i := half; i < n-half; i++ {
		sum := 0.0
		for k, w := range center {
			sum += w * x[i-half+k]
		}
		out[i] = sum
	}

	for i := range half {
		out[i] = dot(sg.projection[i], x[:sg.window])
	}
	tail := x[n-sg.window:]
	for i := half + 1; i < sg.window; i++ {
		out[n-sg.window+i] = dot(sg.projection[i], tail)
	}

	return out
}

func dot(w, x []float64) float64 {
	sum := 0.0
	for i := range w {
		sum += w[i] * x[i]
	}
	return sum
}
