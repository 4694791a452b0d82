//go:build !gocv
// +build !gocv

package iris

import "image"

// NewMaskSampler is unavailable without OpenCV; use NewMidpointSampler.
func NewMaskSampler(img *image.Gray) (RingSampler, error) {
	return nil, ErrMaskSamplerUnavailable
}

// MaskSamplerAvailable reports whether NewMaskSampler is backed by OpenCV.
func MaskSamplerAvailable() bool { return false }
