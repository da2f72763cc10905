// Package tiling partitions a micrograph into tiles and drives the
// per-tile counter over a fixed-size worker pool.
//
// Two layouts are provided. Grid is the non-overlapping partition
// behind the border-corrected count map: every pixel belongs to
// exactly one tile, short edge tiles are zero-padded to full size,
// and the result is one scalar per tile in a pre-allocated CountMap.
// OverlapTiling spaces tiles so neighbors share pixels; it backs the
// exact merge mode, where the same object detected in two
// overlapping tiles is deduplicated by IoU instead of being
// corrected statistically.
//
// # Concurrency
//
// Tiles are independent, so the driver is an explicit task queue
// feeding N workers. Each worker owns the output cells of the tiles
// it processes; nothing else is shared, and the only barrier is the
// final wait before a result is returned. Worker count is a Config
// value passed per call — there is no package-level execution toggle.
//
// # Failure Isolation
//
// A tile that fails leaves its cell at zero and contributes an error
// annotated with its coordinate; all other tiles still complete. The
// combined error is returned after the barrier.
package tiling
