package iris

import (
	"fmt"
	"image"
)

// Scanner evaluates radial profiles around centers of one image.
//
// A Scanner reuses its sampler's scratch buffers between calls and is not safe
// for concurrent use. Create one per goroutine.
type Scanner struct {
	img     *image.Gray
	side    int
	sampler RingSampler
}

// NewScanner binds a scanner to a square image. A nil factory selects
// NewMidpointSampler.
func NewScanner(img *image.Gray, factory SamplerFactory) (*Scanner, error) {
	side, err := squareSide(img)
	if err != nil {
		return nil, err
	}
	if factory == nil {
		factory = NewMidpointSampler
	}
	sampler, err := factory(img)
	if err != nil {
		return nil, fmt.Errorf("failed to create ring sampler: %w", err)
	}
	return &Scanner{img: img, side: side, sampler: sampler}, nil
}

// Close releases the scanner's sampler.
func (s *Scanner) Close() error {
	return s.sampler.Close()
}

// Profile computes the intensity and edge profiles around center.
//
// Center coordinates are relative to the image's top-left pixel. Every circle
// in rng must lie inside the image; otherwise ErrInvalidParameter is returned
// and nothing is sampled. A range with fewer than four radii returns
// ErrEmptyProfile.
func (s *Scanner) Profile(center image.Point, rng RadiusRange) (*Profile, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	if err := checkReach(s.side, center, rng); err != nil {
		return nil, err
	}
	radii := rng.Radii()
	if len(radii) < minRadii {
		return nil, fmt.Errorf("%w: %d radii in [%d,%d) step %d, need at least %d",
			ErrEmptyProfile, len(radii), rng.Start, rng.End, rng.Step, minRadii)
	}

	intensity := make([]float64, len(radii))
	for i, r := range radii {
		intensity[i] = s.sampler.RingSum(center, r) / (circumference * float64(r))
	}

	return &Profile{
		Radii:     radii,
		Intensity: intensity,
		Edge:      edgeProfile(intensity),
	}, nil
}

// Scan returns the strongest edge around center and the radius it is reported
// against. The radius is Radii[i] for edge index i; see Profile.
func (s *Scanner) Scan(center image.Point, rng RadiusRange) (float64, int, error) {
	p, err := s.Profile(center, rng)
	if err != nil {
		return 0, 0, err
	}
	idx := p.Best()
	return p.Edge[idx], p.Radii[idx], nil
}

// Scan runs a single radial scan with the default sampler.
func Scan(img *image.Gray, center image.Point, startR, endR, step int) (float64, int, error) {
	s, err := NewScanner(img, nil)
	if err != nil {
		return 0, 0, err
	}
	defer s.Close()
	return s.Scan(center, RadiusRange{Start: startR, End: endR, Step: step})
}
