package iris

import "errors"

// Error kinds returned by the scanner and the searcher. They are wrapped with
// call-specific detail, so compare with errors.Is.
var (
	// ErrInvalidDimensions reports an image that is empty or not square.
	ErrInvalidDimensions = errors.New("invalid image dimensions")

	// ErrInvalidParameter reports a radius range, grid step or center that
	// cannot be evaluated, including circles that would leave the image.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrEmptyProfile reports a radius range too short to leave at least two
	// edge-strength samples after differencing and truncation.
	ErrEmptyProfile = errors.New("edge profile too short")

	// ErrNoCandidates reports an empty center grid.
	ErrNoCandidates = errors.New("no candidate centers")

	// ErrMaskSamplerUnavailable is returned by NewMaskSampler in builds
	// without the gocv tag.
	ErrMaskSamplerUnavailable = errors.New("mask sampler requires a build with -tags gocv")
)
