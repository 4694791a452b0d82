package iris

import (
	"context"
	"fmt"
	"image"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Candidate is the best radius found for one grid center.
type Candidate struct {
	Center image.Point `json:"center"`
	Radius int         `json:"radius"`
	Score  float64     `json:"score"`
}

// Result is the winning candidate of a grid search.
type Result struct {
	Center image.Point `json:"center"`
	Radius int         `json:"radius"`
	Score  float64     `json:"score"`

	// Evaluated is the number of candidate centers that were scanned.
	Evaluated int `json:"evaluated"`

	// Partial is set when a deadline stopped the search before every
	// candidate was scanned and Searcher.AllowPartial permitted a result.
	Partial bool `json:"partial,omitempty"`
}

// Best returns the candidate with the strictly highest score. Ties keep the
// earliest candidate. ok is false for an empty slice.
func Best(cands []Candidate) (best Candidate, ok bool) {
	for i, c := range cands {
		if i == 0 || c.Score > best.Score {
			best = c
		}
	}
	return best, len(cands) > 0
}

// Searcher scans a grid of candidate centers in parallel and reduces the
// results in enumeration order.
type Searcher struct {
	// Workers is the size of the worker pool. Zero or less means runtime.NumCPU().
	Workers int

	// Sampler creates each worker's RingSampler. Nil means NewMidpointSampler.
	Sampler SamplerFactory

	// AllowPartial makes FindBestCircle return the best candidate scanned so
	// far when ctx is done, instead of ctx.Err().
	AllowPartial bool

	// Logger receives a debug summary of each search. Nil discards it.
	Logger logrus.FieldLogger
}

// NewSearcher returns a Searcher with the given pool size and default sampler.
func NewSearcher(workers int) *Searcher {
	return &Searcher{Workers: workers}
}

func (s *Searcher) workers(jobs int) int {
	n := s.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > jobs {
		n = jobs
	}
	return n
}

func (s *Searcher) logger() logrus.FieldLogger {
	if s.Logger != nil {
		return s.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// FindBestCircle scans every candidate center of img and returns the one whose
// radial profile has the sharpest edge.
//
// Errors:
//   - ErrInvalidDimensions: img is nil, empty or not square.
//   - ErrInvalidParameter: bad step or radius range, or a circle around an
//     extreme grid center would leave the image.
//   - ErrNoCandidates: the grid is empty for this image and PointsStep.
//   - ErrEmptyProfile: the radius range is too short to score.
//   - ctx.Err(): ctx was done before the grid was covered, unless AllowPartial
//     is set and at least one candidate was scanned.
func (s *Searcher) FindBestCircle(ctx context.Context, img *image.Gray, p Params) (*Result, error) {
	start := time.Now()
	cands, scored, err := s.evaluate(ctx, img, p)
	if err != nil {
		return nil, err
	}

	done := make([]Candidate, 0, len(cands))
	for i, c := range cands {
		if scored[i] {
			done = append(done, c)
		}
	}
	partial := len(done) < len(cands)
	if partial && (!s.AllowPartial || len(done) == 0) {
		return nil, ctx.Err()
	}

	best, _ := Best(done)
	s.logger().WithFields(logrus.Fields{
		"candidates": len(cands),
		"evaluated":  len(done),
		"center_x":   best.Center.X,
		"center_y":   best.Center.Y,
		"radius":     best.Radius,
		"score":      best.Score,
		"partial":    partial,
		"elapsed":    time.Since(start).String(),
	}).Debug("grid search finished")

	return &Result{
		Center:    best.Center,
		Radius:    best.Radius,
		Score:     best.Score,
		Evaluated: len(done),
		Partial:   partial,
	}, nil
}

// Candidates scans every candidate center and returns the results in
// enumeration order. It never returns a partial grid.
func (s *Searcher) Candidates(ctx context.Context, img *image.Gray, p Params) ([]Candidate, error) {
	cands, scored, err := s.evaluate(ctx, img, p)
	if err != nil {
		return nil, err
	}
	for _, ok := range scored {
		if !ok {
			return nil, ctx.Err()
		}
	}
	return cands, nil
}

// evaluate fans the grid out to the worker pool. Each worker owns a Scanner
// and writes only to the slots of the centers it was handed, so cands and
// scored stay in enumeration order. A scan error cancels the remaining work
// and is returned as is.
func (s *Searcher) evaluate(ctx context.Context, img *image.Gray, p Params) ([]Candidate, []bool, error) {
	side, err := squareSide(img)
	if err != nil {
		return nil, nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	centers := CandidateCenters(side, p.PointsStep)
	if len(centers) == 0 {
		return nil, nil, fmt.Errorf("%w: %dx%d image with points step %d", ErrNoCandidates, side, side, p.PointsStep)
	}
	// The grid is square, so its first and last centers bound every other one.
	for _, c := range []image.Point{centers[0], centers[len(centers)-1]} {
		if err := checkReach(side, c, p.Radius); err != nil {
			return nil, nil, err
		}
	}
	if n := len(p.Radius.Radii()); n < minRadii {
		return nil, nil, fmt.Errorf("%w: %d radii, need at least %d", ErrEmptyProfile, n, minRadii)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cands := make([]Candidate, len(centers))
	scored := make([]bool, len(centers))

	var (
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	workers := s.workers(len(centers))
	s.logger().WithFields(logrus.Fields{
		"side":       side,
		"candidates": len(centers),
		"workers":    workers,
		"radii":      len(p.Radius.Radii()),
	}).Debug("grid search started")

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scanner, err := NewScanner(img, s.Sampler)
			if err != nil {
				fail(err)
				return
			}
			defer scanner.Close()

			for i := range jobs {
				score, radius, err := scanner.Scan(centers[i], p.Radius)
				if err != nil {
					fail(fmt.Errorf("scan at (%d,%d): %w", centers[i].X, centers[i].Y, err))
					continue
				}
				cands[i] = Candidate{Center: centers[i], Radius: radius, Score: score}
				scored[i] = true
			}
		}()
	}

feed:
	for i := range centers {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, nil, firstErr
	}
	return cands, scored, nil
}

// FindBestCircle runs a grid search with the default Searcher and returns the
// winning center and radius.
func FindBestCircle(img *image.Gray, pointsStep, startR, endR, radiusStep int) (image.Point, int, error) {
	res, err := NewSearcher(0).FindBestCircle(context.Background(), img, Params{
		PointsStep: pointsStep,
		Radius:     RadiusRange{Start: startR, End: endR, Step: radiusStep},
	})
	if err != nil {
		return image.Point{}, 0, err
	}
	return res.Center, res.Radius, nil
}
