package iris

import (
	"fmt"
	"image"
)

// RadiusRange is a half-open, ascending sequence of radii: Start, Start+Step, ... < End.
type RadiusRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Step  int `json:"step"`
}

// Radii expands the range into the radii it tests. An invalid range yields nil.
func (r RadiusRange) Radii() []int {
	if r.Step < 1 || r.Start >= r.End {
		return nil
	}
	radii := make([]int, 0, (r.End-r.Start+r.Step-1)/r.Step)
	for v := r.Start; v < r.End; v += r.Step {
		radii = append(radii, v)
	}
	return radii
}

// Max returns the largest radius the range tests, or 0 for an invalid range.
func (r RadiusRange) Max() int {
	radii := r.Radii()
	if len(radii) == 0 {
		return 0
	}
	return radii[len(radii)-1]
}

// Validate checks the range on its own, without reference to an image.
func (r RadiusRange) Validate() error {
	if r.Start < 1 {
		return fmt.Errorf("%w: start radius %d must be positive", ErrInvalidParameter, r.Start)
	}
	if r.Step < 1 {
		return fmt.Errorf("%w: radius step %d must be positive", ErrInvalidParameter, r.Step)
	}
	if r.Start >= r.End {
		return fmt.Errorf("%w: start radius %d must be less than end radius %d", ErrInvalidParameter, r.Start, r.End)
	}
	return nil
}

// Params configures a grid search.
type Params struct {
	// PointsStep is the spacing between candidate centers on both axes.
	PointsStep int `json:"points_step"`

	// Radius is the range of radii scanned around every candidate center.
	Radius RadiusRange `json:"radius"`
}

// Validate checks the parameters on their own, without reference to an image.
func (p Params) Validate() error {
	if p.PointsStep < 1 {
		return fmt.Errorf("%w: points step %d must be positive", ErrInvalidParameter, p.PointsStep)
	}
	return p.Radius.Validate()
}

// AxisRange returns the candidate coordinates along one axis of a square image
// of the given side: the central third [side/3, side-side/3), stepped by step.
// A central band narrower than one step is degenerate and yields no coordinates.
func AxisRange(side, step int) []int {
	if step < 1 || side < 1 {
		return nil
	}
	lo := side / 3
	hi := side - side/3
	if hi-lo < step {
		return nil
	}
	var axis []int
	for v := lo; v < hi; v += step {
		axis = append(axis, v)
	}
	return axis
}

// CandidateCenters returns the Cartesian product of AxisRange with itself in
// enumeration order: x is the outer loop, y the inner one.
func CandidateCenters(side, step int) []image.Point {
	axis := AxisRange(side, step)
	centers := make([]image.Point, 0, len(axis)*len(axis))
	for _, x := range axis {
		for _, y := range axis {
			centers = append(centers, image.Point{X: x, Y: y})
		}
	}
	return centers
}

// squareSide returns the side of a square image.
func squareSide(img *image.Gray) (int, error) {
	if img == nil {
		return 0, fmt.Errorf("%w: nil image", ErrInvalidDimensions)
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w <= 0 || h <= 0 {
		return 0, fmt.Errorf("%w: empty image %dx%d", ErrInvalidDimensions, w, h)
	}
	if w != h {
		return 0, fmt.Errorf("%w: image must be square, got %dx%d", ErrInvalidDimensions, w, h)
	}
	return w, nil
}

// checkReach verifies that every circle of the range drawn around center stays
// inside a square image of the given side.
func checkReach(side int, center image.Point, r RadiusRange) error {
	if center.X < 0 || center.Y < 0 || center.X >= side || center.Y >= side {
		return fmt.Errorf("%w: center (%d,%d) outside %dx%d image", ErrInvalidParameter, center.X, center.Y, side, side)
	}
	maxR := r.Max()
	if center.X-maxR < 0 || center.Y-maxR < 0 || center.X+maxR >= side || center.Y+maxR >= side {
		return fmt.Errorf("%w: radius %d around (%d,%d) leaves the %dx%d image",
			ErrInvalidParameter, maxR, center.X, center.Y, side, side)
	}
	return nil
}
