package analyzers

import "sort"

// Peak is a detected local maximum
type Peak struct {
	Index  int     `json:"index"`
	Height float64 `json:"height"`
}

// PeakDetector finds local maxima above a height floor that are at least
// MinDistance samples apart.
type PeakDetector struct {
	// MinHeight is the inclusive height floor
	MinHeight float64
	// MinDistance is the minimum index gap between retained peaks (in samples)
	MinDistance int
}

// NewPeakDetector creates a detector with the given constraints
func NewPeakDetector(minHeight float64, minDistance int) *PeakDetector {
	return &PeakDetector{
		MinHeight:   minHeight,
		MinDistance: minDistance,
	}
}

// Detect returns the retained peaks in ascending index order
func (pd *PeakDetector) Detect(x []float64) []Peak {
	candidates := localMaxima(x)

	peaks := make([]Peak, 0, len(candidates))
	for _, idx := range candidates {
		if x[idx] >= pd.MinHeight {
			peaks = append(peaks, Peak{Index: idx, Height: x[idx]})
		}
	}

	if pd.MinDistance > 1 && len(peaks) > 1 {
		peaks = pd.filterByDistance(peaks)
	}
	return peaks
}

// localMaxima finds samples strictly greater than both neighbours. A flat
// top resolves to the lower-middle sample of the plateau; plateaus touching
// either end are ignored.
func localMaxima(x []float64) []int {
	var maxima []int
	last := len(x) - 1

	i := 1
	for i < last {
		if x[i-1] < x[i] {
			ahead := i + 1
			for ahead < last && x[ahead] == x[i] {
				ahead++
			}
			if x[ahead] < x[i] {
				maxima = append(maxima, (i+ahead-1)/2)
				i = ahead
			}
		}
		i++
	}

	return maxima
}

// filterByDistance keeps the highest peaks first and discards any neighbour
// closer than MinDistance. Equal heights favour the later peak.
func (pd *PeakDetector) filterByDistance(peaks []Peak) []Peak {
	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return peaks[order[a]].Height < peaks[order[b]].Height
	})

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}

	for i := len(order) - 1; i >= 0; i-- {
		j := order[i]
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j].Index-peaks[k].Index < pd.MinDistance; k-- {
			keep[k] = false
		}
		for k := j + 1; k < len(peaks) && peaks[k].Index-peaks[j].Index < pd.MinDistance; k++ {
			keep[k] = false
		}
	}

	result := make([]Peak, 0, len(peaks))
	for i, p := range peaks {
		if keep[i] {
			result = append(result, p)
		}
	}
	return result
}
