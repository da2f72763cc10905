package segment

import (
	"container/heap"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/blur"
	bildsegment "github.com/anthonynsimon/bild/segment"

	"github.com/petrikoro/nuclei-tools-mcp/internal/raster"
)

// Options controls the fixed segmentation policy. The zero value is
// not useful; start from DefaultOptions.
type Options struct {
	// SmoothRadius is the Gaussian smoothing radius in pixels. It
	// doubles as the seed-separation scale: two candidate seeds
	// closer than 2*SmoothRadius (Chebyshev) collapse into one.
	SmoothRadius float64

	// Threshold is an explicit foreground level in (0, 1]. When 0,
	// the level is chosen automatically with Otsu's method on the
	// smoothed intensity histogram.
	Threshold float64

	// DimMax is the upper bound of the low mean-intensity band.
	// Objects whose mean source intensity falls in [0, DimMax] are
	// discarded as noise.
	DimMax float64
}

// DefaultOptions returns the segmentation policy used by the counting
// tools. The values are tuned for fluorescence nuclei at roughly
// 10-30 px diameter.
func DefaultOptions() Options {
	return Options{
		SmoothRadius: 3.0,
		Threshold:    0,
		DimMax:       0.2,
	}
}

// Segment partitions a tile into labeled candidate objects using a
// seeded watershed-style procedure over the smoothed intensity
// landscape.
//
// Pipeline:
//
//  1. Gaussian smoothing at Options.SmoothRadius
//  2. Foreground mask by global threshold (Otsu when automatic)
//  3. Seeds: local intensity maxima inside the mask, non-maximum
//     suppressed at the seed-separation scale
//  4. Region growing: priority flood from the seeds in descending
//     smoothed-intensity order, confined to the mask
//
// The result contains every candidate object, including dim ones and
// ones touching the tile border; callers apply FilterMeanRange and
// ClearBorder as policy dictates. Segment returns an error for a nil,
// inconsistent, or zero-area tile.
func Segment(t *raster.Tile, opts Options) (*Labels, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if t.Empty() {
		return nil, fmt.Errorf("cannot segment zero-area tile (%dx%d)", t.Width, t.Height)
	}

	gray := t.Gray()
	blurred := blur.Gaussian(gray, opts.SmoothRadius)

	// Smoothed intensity landscape, taken from the red channel: the
	// source is grayscale so all channels agree.
	smoothed := raster.NewTile(t.Width, t.Height)
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			smoothed.Set(x, y, float64(blurred.RGBAAt(x, y).R)/255.0)
		}
	}

	var level uint8
	if opts.Threshold > 0 {
		level = uint8(math.Round(opts.Threshold * 255))
	} else {
		smoothedGray := smoothed.Gray()
		hist, total := histogram(smoothedGray)
		otsu := otsuLevel(hist, total)
		if otsu >= 255 {
			otsu = 254
		}
		level = otsu + 1
	}
	mask := bildsegment.Threshold(blurred, level)

	seeds := findSeeds(smoothed, mask, seedSeparation(opts.SmoothRadius))
	return growRegions(smoothed, mask, seeds), nil
}

// seedSeparation is the minimum Chebyshev distance between two seeds.
func seedSeparation(radius float64) int {
	sep := int(math.Ceil(2 * radius))
	if sep < 1 {
		sep = 1
	}
	return sep
}

type seed struct {
	x, y int
	v    float64
}

// findSeeds locates local maxima of the smoothed landscape inside the
// foreground mask, then suppresses any maximum within sep pixels
// (Chebyshev) of a stronger one. Plateaus produced by smoothing a
// uniform bright region yield many tied maxima; suppression keeps the
// first in scan order.
func findSeeds(smoothed *raster.Tile, mask *image.Gray, sep int) []seed {
	var candidates []seed
	w, h := smoothed.Width, smoothed.Height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !foreground(mask, x, y) {
				continue
			}
			v := smoothed.At(x, y)
			isMax := true
			for dy := -1; dy <= 1 && isMax; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					if smoothed.At(nx, ny) > v {
						isMax = false
						break
					}
				}
			}
			if isMax {
				candidates = append(candidates, seed{x: x, y: y, v: v})
			}
		}
	}

	// Strongest first; scan order breaks ties deterministically.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].v > candidates[j].v
	})

	var accepted []seed
	for _, c := range candidates {
		clear := true
		for _, a := range accepted {
			dx := c.x - a.x
			if dx < 0 {
				dx = -dx
			}
			dy := c.y - a.y
			if dy < 0 {
				dy = -dy
			}
			cheb := dx
			if dy > cheb {
				cheb = dy
			}
			if cheb <= sep {
				clear = false
				break
			}
		}
		if clear {
			accepted = append(accepted, c)
		}
	}
	return accepted
}

// floodPixel is a heap entry for the priority flood. Higher smoothed
// intensity pops first; push order breaks ties so growth is
// deterministic.
type floodPixel struct {
	x, y  int
	v     float64
	label int32
	order int
}

type floodHeap []floodPixel

func (h floodHeap) Len() int { return len(h) }
func (h floodHeap) Less(i, j int) bool {
	if h[i].v != h[j].v {
		return h[i].v > h[j].v
	}
	return h[i].order < h[j].order
}
func (h floodHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *floodHeap) Push(x interface{}) { *h = append(*h, x.(floodPixel)) }
func (h *floodHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// growRegions floods labels outward from the seeds in descending
// smoothed-intensity order, confined to the foreground mask. Each
// masked pixel joins the first region to reach it, which assigns
// watershed-style boundaries where two regions meet.
func growRegions(smoothed *raster.Tile, mask *image.Gray, seeds []seed) *Labels {
	w, h := smoothed.Width, smoothed.Height
	out := &Labels{
		Data:   make([]int32, w*h),
		Width:  w,
		Height: h,
		Count:  len(seeds),
	}

	hp := &floodHeap{}
	heap.Init(hp)
	order := 0
	push := func(x, y int, label int32) {
		out.Data[y*w+x] = label
		heap.Push(hp, floodPixel{x: x, y: y, v: smoothed.At(x, y), label: label, order: order})
		order++
	}

	for i, s := range seeds {
		push(s.x, s.y, int32(i+1))
	}

	for hp.Len() > 0 {
		p := heap.Pop(hp).(floodPixel)
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := p.x+d[0], p.y+d[1]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			if out.Data[ny*w+nx] != 0 || !foreground(mask, nx, ny) {
				continue
			}
			push(nx, ny, p.label)
		}
	}
	return out
}

// foreground reports whether the mask marks (x, y) as foreground.
// bild's Threshold emits a binary image with foreground at 255.
func foreground(mask *image.Gray, x, y int) bool {
	return mask.GrayAt(x, y).Y >= 128
}
