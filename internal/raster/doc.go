// Package raster defines the intensity-tile data model shared by the
// segmentation and counting packages, plus image loading and caching.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left
// corner: X increases rightward, Y increases downward. Tile regions
// follow the standard Go image convention of inclusive top-left and
// exclusive bottom-right corners.
//
// # Intensity Model
//
// Tiles store one float64 per pixel in [0, 1]. Color images are
// reduced to luminance using ITU-R BT.601 weights when converted.
// Fluorescence micrographs are typically single-channel already, so
// the conversion is lossless for the common case.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Tile values are never
// mutated by the segmentation or counting routines, so a single Tile
// may be shared across worker goroutines without synchronization.
package raster
