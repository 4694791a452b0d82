//go:build gocv
// +build gocv

package iris

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// maskSampler draws each outline onto a scratch mask with OpenCV, intersects it
// with the image and sums what is left.
type maskSampler struct {
	src    gocv.Mat
	mask   gocv.Mat
	masked gocv.Mat
}

// NewMaskSampler returns a RingSampler backed by an OpenCV scratch mask.
func NewMaskSampler(img *image.Gray) (RingSampler, error) {
	src, err := gocv.ImageGrayToMatGray(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to Mat: %w", err)
	}
	if src.Empty() {
		src.Close()
		return nil, fmt.Errorf("%w: empty Mat", ErrInvalidDimensions)
	}
	return &maskSampler{
		src:    src,
		mask:   gocv.NewMatWithSize(src.Rows(), src.Cols(), gocv.MatTypeCV8U),
		masked: gocv.NewMat(),
	}, nil
}

// MaskSamplerAvailable reports whether NewMaskSampler is backed by OpenCV.
func MaskSamplerAvailable() bool { return true }

func (s *maskSampler) RingSum(center image.Point, r int) float64 {
	s.mask.SetTo(gocv.NewScalar(0, 0, 0, 0))
	gocv.Circle(&s.mask, center, r, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 1)
	gocv.BitwiseAnd(s.src, s.mask, &s.masked)
	return s.masked.Sum().Val1
}

func (s *maskSampler) Close() error {
	if err := s.masked.Close(); err != nil {
		return err
	}
	if err := s.mask.Close(); err != nil {
		return err
	}
	return s.src.Close()
}
