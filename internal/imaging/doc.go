// Package imaging prepares images for the iris search and renders its results.
//
// It is the presentational side of the module: decoding and caching image
// files, cropping and resizing them into square grayscale patches, and drawing
// candidate grids and circles over them. Nothing here takes part in scoring;
// the search itself lives in package iris and only reads the patches built here.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y downward. Regions are (x1,y1) inclusive and
// (x2,y2) exclusive.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Cached images are shared and must not
// be mutated; every function in this package returns new images instead.
//
// # Overlays
//
// Overlay layers match the steps of the search: candidate centers as dots,
// the tested rings around each center, each center's best circle, and the
// winning circle. Candidate colors are evenly spaced HCL hues, so the same
// grid always renders the same way.
package imaging
