// Package segment labels candidate nuclei in an intensity tile.
//
// Segmentation is a seeded watershed over the smoothed intensity
// landscape: Gaussian smoothing suppresses noise, a global threshold
// (Otsu by default) separates foreground from background, local
// maxima of the smoothed landscape become seeds, and labels flood
// outward from the seeds in descending intensity order until regions
// meet or the foreground mask ends.
//
// The label raster supports the two post-filters the counting policy
// needs: discarding objects whose mean intensity sits in a fixed low
// band, and discarding objects that touch the tile boundary.
//
// Segmentation is pure: it never mutates the input tile, holds no
// state between calls, and is safe to invoke concurrently from
// multiple goroutines on different tiles.
package segment
