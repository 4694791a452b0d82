package iris

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// circumference normalizes a ring sum into a mean intensity. It uses the ideal
// circumference 2*pi*r rather than the number of rasterized pixels.
const circumference = 2 * math.Pi

// minRadii is the shortest radius sequence that leaves two edge samples after
// differencing and dropping the last difference.
const minRadii = 4

// edgeKernel is the length-5 Gaussian used to smooth the edge profile along the
// radius axis. These are the weights OpenCV derives for a size-5 kernel with sigma 0.
var edgeKernel = [...]float64{1.0 / 16, 4.0 / 16, 6.0 / 16, 4.0 / 16, 1.0 / 16}

// Profile holds every intermediate series of one radial scan.
type Profile struct {
	// Radii are the tested radii in ascending order.
	Radii []int `json:"radii"`

	// Intensity is the mean intensity along each circle, aligned with Radii.
	Intensity []float64 `json:"intensity"`

	// Edge is the smoothed absolute edge strength. Edge[i] is reported
	// against Radii[i]; it has len(Radii)-2 entries.
	Edge []float64 `json:"edge"`
}

// Best returns the index of the strongest edge. The first maximum wins.
func (p *Profile) Best() int {
	return floats.MaxIdx(p.Edge)
}

// edgeProfile turns an intensity profile into smoothed absolute edge strength:
// first difference, last difference dropped, Gaussian smoothing, absolute value.
func edgeProfile(intensity []float64) []float64 {
	if len(intensity) < minRadii {
		return nil
	}
	diff := make([]float64, len(intensity)-1)
	floats.SubTo(diff, intensity[1:], intensity[:len(intensity)-1])
	diff = diff[:len(diff)-1]

	edge := smooth(diff)
	for i, v := range edge {
		edge[i] = math.Abs(v)
	}
	return edge
}

// smooth convolves values with edgeKernel, reflecting at both borders without
// repeating the border sample (reflect-101).
func smooth(values []float64) []float64 {
	n := len(values)
	half := len(edgeKernel) / 2
	out := make([]float64, n)
	for i := range values {
		var acc float64
		for k, w := range edgeKernel {
			acc += w * values[reflect101(i+k-half, n)]
		}
		out[i] = acc
	}
	return out
}

// reflect101 maps an out-of-range index back into [0, n) by mirroring around
// the first and last samples: -1 -> 1, n -> n-2.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*n - 2 - i
		}
	}
	return i
}
