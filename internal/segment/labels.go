package segment

import (
	"github.com/petrikoro/nuclei-tools-mcp/internal/raster"
)

// Labels is a label raster produced by Segment. Background pixels are
// 0; each detected object is a distinct positive label. Labels are
// compact: they run from 1 to Count with no gaps.
type Labels struct {
	// Data holds Height*Width label values in row-major order.
	Data []int32

	// Width is the raster width in pixels.
	Width int

	// Height is the raster height in pixels.
	Height int

	// Count is the number of distinct positive labels present.
	Count int
}

// At returns the label at (x, y).
func (l *Labels) At(x, y int) int32 {
	return l.Data[y*l.Width+x]
}

// MeanIntensities returns the mean source intensity of each label,
// indexed by label value. Index 0 (background) is always 0. The tile
// must have the same dimensions as the label raster.
func (l *Labels) MeanIntensities(t *raster.Tile) []float64 {
	sums := make([]float64, l.Count+1)
	areas := make([]int, l.Count+1)
	for i, lab := range l.Data {
		if lab > 0 {
			sums[lab] += t.Pix[i]
			areas[lab]++
		}
	}
	means := make([]float64, l.Count+1)
	for lab := 1; lab <= l.Count; lab++ {
		if areas[lab] > 0 {
			means[lab] = sums[lab] / float64(areas[lab])
		}
	}
	return means
}

// FilterMeanRange re-labels as background every object whose mean
// source intensity lies in [low, high], then renumbers the survivors
// to stay compact. This is the dim-object filter: candidates whose
// mean intensity sits in the low band are treated as noise rather
// than genuine detections.
func (l *Labels) FilterMeanRange(t *raster.Tile, low, high float64) {
	means := l.MeanIntensities(t)
	drop := make([]bool, l.Count+1)
	for lab := 1; lab <= l.Count; lab++ {
		if means[lab] >= low && means[lab] <= high {
			drop[lab] = true
		}
	}
	l.dropLabels(drop)
}

// ClearBorder re-labels as background every object with at least one
// pixel on the raster's outer boundary (row 0, last row, column 0, or
// last column), then renumbers the survivors.
func (l *Labels) ClearBorder() {
	if l.Width == 0 || l.Height == 0 {
		return
	}
	drop := make([]bool, l.Count+1)
	for x := 0; x < l.Width; x++ {
		if lab := l.At(x, 0); lab > 0 {
			drop[lab] = true
		}
		if lab := l.At(x, l.Height-1); lab > 0 {
			drop[lab] = true
		}
	}
	for y := 0; y < l.Height; y++ {
		if lab := l.At(0, y); lab > 0 {
			drop[lab] = true
		}
		if lab := l.At(l.Width-1, y); lab > 0 {
			drop[lab] = true
		}
	}
	l.dropLabels(drop)
}

// dropLabels clears the marked labels and renumbers the rest so that
// labels stay contiguous from 1.
func (l *Labels) dropLabels(drop []bool) {
	remap := make([]int32, l.Count+1)
	next := int32(0)
	for lab := 1; lab <= l.Count; lab++ {
		if drop[lab] {
			remap[lab] = 0
		} else {
			next++
			remap[lab] = next
		}
	}
	for i, lab := range l.Data {
		if lab > 0 {
			l.Data[i] = remap[lab]
		}
	}
	l.Count = int(next)
}

// Box is the bounding rectangle of one labeled object, with the top
// left corner inclusive and the bottom right corner exclusive.
type Box struct {
	Label int32 `json:"label"`
	X1    int   `json:"x1"`
	Y1    int   `json:"y1"`
	X2    int   `json:"x2"`
	Y2    int   `json:"y2"`
	Area  int   `json:"area"`
}

// BoundingBoxes returns one box per label, ordered by label value.
func (l *Labels) BoundingBoxes() []Box {
	if l.Count == 0 {
		return nil
	}
	boxes := make([]Box, l.Count+1)
	for lab := 1; lab <= l.Count; lab++ {
		boxes[lab] = Box{Label: int32(lab), X1: l.Width, Y1: l.Height}
	}
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			lab := l.At(x, y)
			if lab == 0 {
				continue
			}
			b := &boxes[lab]
			if x < b.X1 {
				b.X1 = x
			}
			if y < b.Y1 {
				b.Y1 = y
			}
			if x+1 > b.X2 {
				b.X2 = x + 1
			}
			if y+1 > b.Y2 {
				b.Y2 = y + 1
			}
			b.Area++
		}
	}
	return boxes[1:]
}
