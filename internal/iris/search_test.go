package iris

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultParams() Params {
	return Params{PointsStep: 5, Radius: RadiusRange{Start: 10, End: 30, Step: 1}}
}

func TestFindBestCircle_SyntheticDisk(t *testing.T) {
	img := createDiskImage(100, 50, 50, 20, 0, 255)

	center, radius, err := FindBestCircle(img, 5, 10, 30, 1)
	require.NoError(t, err)

	assert.InDelta(t, 50, center.X, 5)
	assert.InDelta(t, 50, center.Y, 5)
	assert.InDelta(t, 20, radius, 1)
}

func TestFindBestCircle_CenterOnGrid(t *testing.T) {
	img := createDiskImage(90, 45, 45, 15, 0, 255)

	center, radius, err := FindBestCircle(img, 1, 8, 28, 1)
	require.NoError(t, err)
	assert.Equal(t, image.Point{X: 45, Y: 45}, center)
	assert.Equal(t, 15, radius)
}

func TestFindBestCircle_Deterministic(t *testing.T) {
	img := createDiskImage(100, 47, 52, 18, 30, 220)

	s := NewSearcher(4)
	first, err := s.FindBestCircle(context.Background(), img, defaultParams())
	require.NoError(t, err)
	second, err := s.FindBestCircle(context.Background(), img, defaultParams())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFindBestCircle_WorkerCountIndependent(t *testing.T) {
	img := createDiskImage(100, 52, 46, 17, 10, 240)

	var results []*Result
	for _, workers := range []int{1, 2, 3, 8, 64} {
		res, err := NewSearcher(workers).FindBestCircle(context.Background(), img, defaultParams())
		require.NoError(t, err, "workers=%d", workers)
		results = append(results, res)
	}
	for _, res := range results[1:] {
		assert.Equal(t, results[0], res)
	}
}

func TestFindBestCircle_Errors(t *testing.T) {
	square := createDiskImage(100, 50, 50, 20, 0, 255)

	tests := []struct {
		name    string
		img     *image.Gray
		params  Params
		wantErr error
	}{
		{
			name:    "start equals end",
			img:     square,
			params:  Params{PointsStep: 5, Radius: RadiusRange{Start: 20, End: 20, Step: 1}},
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "tiny image coarse grid",
			img:     createUniformImage(4, 4, 100),
			params:  Params{PointsStep: 10, Radius: RadiusRange{Start: 1, End: 5, Step: 1}},
			wantErr: ErrNoCandidates,
		},
		{
			name:    "non-square",
			img:     image.NewGray(image.Rect(0, 0, 100, 90)),
			params:  defaultParams(),
			wantErr: ErrInvalidDimensions,
		},
		{
			name:    "zero points step",
			img:     square,
			params:  Params{PointsStep: 0, Radius: RadiusRange{Start: 10, End: 30, Step: 1}},
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "radius leaves image from grid corner",
			img:     square,
			params:  Params{PointsStep: 5, Radius: RadiusRange{Start: 10, End: 40, Step: 1}},
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "too few radii",
			img:     square,
			params:  Params{PointsStep: 5, Radius: RadiusRange{Start: 10, End: 13, Step: 1}},
			wantErr: ErrEmptyProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSearcher(2).FindBestCircle(context.Background(), tt.img, tt.params)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBest_ScoreOrdering(t *testing.T) {
	cands := []Candidate{
		{Center: image.Point{X: 1, Y: 1}, Radius: 10, Score: 3},
		{Center: image.Point{X: 1, Y: 2}, Radius: 11, Score: 9},
		{Center: image.Point{X: 2, Y: 1}, Radius: 12, Score: 4},
		{Center: image.Point{X: 2, Y: 2}, Radius: 13, Score: 9},
		{Center: image.Point{X: 3, Y: 1}, Radius: 14, Score: 1},
	}

	best, ok := Best(cands)
	require.True(t, ok)
	assert.Equal(t, cands[1], best, "ties keep the first in enumeration order")

	_, ok = Best(nil)
	assert.False(t, ok)
}

func TestBest_NegativeScores(t *testing.T) {
	best, ok := Best([]Candidate{{Score: -5}, {Score: -2}, {Score: -2}})
	require.True(t, ok)
	assert.Equal(t, -2.0, best.Score)
}

func TestSearcher_CandidatesOrder(t *testing.T) {
	img := createDiskImage(100, 50, 50, 20, 0, 255)

	cands, err := NewSearcher(3).Candidates(context.Background(), img, defaultParams())
	require.NoError(t, err)

	centers := CandidateCenters(100, 5)
	require.Len(t, cands, len(centers))
	for i, c := range cands {
		assert.Equal(t, centers[i], c.Center)
	}

	res, err := NewSearcher(3).FindBestCircle(context.Background(), img, defaultParams())
	require.NoError(t, err)
	best, _ := Best(cands)
	assert.Equal(t, best.Center, res.Center)
	assert.Equal(t, best.Radius, res.Radius)
	assert.Equal(t, len(cands), res.Evaluated)
	assert.False(t, res.Partial)
}

func TestSearcher_CancelledContext(t *testing.T) {
	img := createDiskImage(100, 50, 50, 20, 0, 255)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSearcher(2)
	_, err := s.FindBestCircle(ctx, img, defaultParams())
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.Candidates(ctx, img, defaultParams())
	require.ErrorIs(t, err, context.Canceled)

	s.AllowPartial = true
	_, err = s.FindBestCircle(ctx, img, defaultParams())
	require.ErrorIs(t, err, context.Canceled, "nothing scanned, nothing to return")
}

// cancellingSampler cancels a context after its first RingSum.
type cancellingSampler struct {
	RingSampler
	cancel context.CancelFunc
	calls  *atomic.Int64
}

func (s *cancellingSampler) RingSum(center image.Point, r int) float64 {
	if s.calls.Add(1) == 1 {
		s.cancel()
	}
	return s.RingSampler.RingSum(center, r)
}

func TestSearcher_AllowPartial(t *testing.T) {
	img := createDiskImage(100, 50, 50, 20, 0, 255)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int64
	s := &Searcher{
		Workers:      1,
		AllowPartial: true,
		Sampler: func(img *image.Gray) (RingSampler, error) {
			inner, err := NewMidpointSampler(img)
			if err != nil {
				return nil, err
			}
			return &cancellingSampler{RingSampler: inner, cancel: cancel, calls: &calls}, nil
		},
	}

	res, err := s.FindBestCircle(ctx, img, defaultParams())
	require.NoError(t, err)
	assert.True(t, res.Partial)
	assert.GreaterOrEqual(t, res.Evaluated, 1)
	assert.Less(t, res.Evaluated, len(CandidateCenters(100, 5)))
}

func TestSearcher_SamplerErrorPropagates(t *testing.T) {
	img := createDiskImage(100, 50, 50, 20, 0, 255)
	boom := errors.New("boom")

	s := &Searcher{
		Workers: 3,
		Sampler: func(*image.Gray) (RingSampler, error) { return nil, boom },
	}
	_, err := s.FindBestCircle(context.Background(), img, defaultParams())
	require.ErrorIs(t, err, boom)
}

func TestSearcher_Deadline(t *testing.T) {
	img := createDiskImage(100, 50, 50, 20, 0, 255)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res, err := NewSearcher(0).FindBestCircle(ctx, img, defaultParams())
	require.NoError(t, err)
	assert.False(t, res.Partial)
}

func TestSearcher_LogsSummary(t *testing.T) {
	img := createDiskImage(100, 50, 50, 20, 0, 255)
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	s := &Searcher{Workers: 2, Logger: logger}
	res, err := s.FindBestCircle(context.Background(), img, defaultParams())
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "grid search finished", entry.Message)
	assert.Equal(t, res.Radius, entry.Data["radius"])
	assert.Equal(t, res.Evaluated, entry.Data["evaluated"])
}
