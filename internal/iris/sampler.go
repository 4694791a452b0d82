package iris

import "image"

// RingSampler sums image intensities along a rasterized circle outline.
//
// A sampler owns scratch state and is not safe for concurrent use; the searcher
// creates one per worker.
type RingSampler interface {
	// RingSum returns the sum of the intensities of the pixels on the
	// 1-pixel-thick outline of radius r around center. Every pixel counts once.
	RingSum(center image.Point, r int) float64

	// Close releases the sampler's scratch buffers.
	Close() error
}

// SamplerFactory builds a RingSampler bound to one image.
type SamplerFactory func(img *image.Gray) (RingSampler, error)

// TraceCircle visits the pixels of a midpoint circle of radius r around center.
// Pixels where octants meet are visited more than once and nothing is clipped;
// plot is responsible for bounds and de-duplication.
func TraceCircle(center image.Point, r int, plot func(x, y int)) {
	if r == 0 {
		plot(center.X, center.Y)
		return
	}
	x, y := r, 0
	d := 1 - r
	for x >= y {
		plot(center.X+x, center.Y+y)
		plot(center.X+y, center.Y+x)
		plot(center.X-y, center.Y+x)
		plot(center.X-x, center.Y+y)
		plot(center.X-x, center.Y-y)
		plot(center.X-y, center.Y-x)
		plot(center.X+y, center.Y-x)
		plot(center.X+x, center.Y-y)

		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

// midpointSampler enumerates outline pixels directly and uses a scratch mask
// only to count each pixel once.
type midpointSampler struct {
	img     *image.Gray
	width   int
	height  int
	mask    []bool
	touched []int
}

// NewMidpointSampler returns the default pure-Go RingSampler for img.
func NewMidpointSampler(img *image.Gray) (RingSampler, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	return &midpointSampler{
		img:    img,
		width:  w,
		height: h,
		mask:   make([]bool, w*h),
	}, nil
}

func (s *midpointSampler) RingSum(center image.Point, r int) float64 {
	var sum int
	TraceCircle(center, r, func(x, y int) {
		if x < 0 || y < 0 || x >= s.width || y >= s.height {
			return
		}
		i := y*s.width + x
		if s.mask[i] {
			return
		}
		s.mask[i] = true
		s.touched = append(s.touched, i)
		sum += int(s.img.Pix[y*s.img.Stride+x])
	})

	// clear before the next radius
	for _, i := range s.touched {
		s.mask[i] = false
	}
	s.touched = s.touched[:0]

	return float64(sum)
}

func (s *midpointSampler) Close() error {
	s.mask = nil
	s.touched = nil
	return nil
}
