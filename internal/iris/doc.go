// Package iris locates the boundary circle of a dark, roughly circular region
// in a square grayscale image using Daugman's radial intensity integral.
//
// # Radial Scan
//
// For one center and a range of radii, the Scanner measures the mean
// intensity along each circle outline (the radial intensity integral). The
// sum of the outline pixels is divided by the ideal circumference 2*pi*r, not
// by the pixel count, so the scale stays comparable across radii. The first
// difference of that profile is truncated by one sample, smoothed with a
// 5-tap Gaussian along the radius axis and made absolute. The strongest entry
// is the edge strength of the center.
//
// Edge index i is reported against radius Radii[i]. Every center uses the same
// convention, so scores and radii compare consistently across the grid.
//
// # Grid Search
//
// The Searcher enumerates candidate centers over the central third of the
// image, [side/3, side-side/3) on both axes, stepped by Params.PointsStep. The
// product is ordered with x as the outer loop. Candidates are scanned by a
// fixed-size worker pool, each worker owning its own scratch buffers, and the
// results are reduced in enumeration order: the highest score wins and ties
// keep the earliest candidate. The output is identical for any pool size.
//
// # Coordinate System
//
// Centers are relative to the image's top-left pixel, X rightward, Y downward.
//
// # Errors
//
// All failures wrap one of ErrInvalidDimensions, ErrInvalidParameter,
// ErrEmptyProfile or ErrNoCandidates. They are deterministic; retrying with
// the same input fails the same way.
package iris
