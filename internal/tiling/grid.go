package tiling

import "fmt"

// Grid describes how an image is partitioned into non-overlapping
// tiles of a fixed size. Images whose dimensions are not an exact
// multiple of the tile size are padded (zero-filled) on the right and
// bottom, so the count map shape is always well-defined and every
// pixel belongs to exactly one tile.
type Grid struct {
	TileWidth   int // Width of each tile in pixels
	TileHeight  int // Height of each tile in pixels
	Cols        int // Number of tiles horizontally
	Rows        int // Number of tiles vertically
	ImageWidth  int // Width of the source image
	ImageHeight int // Height of the source image
}

// MakeGrid partitions an imageWidth x imageHeight image into tiles of
// the given size. Tile dimensions must be positive; image dimensions
// must be non-negative.
func MakeGrid(imageWidth, imageHeight, tileWidth, tileHeight int) (Grid, error) {
	if tileWidth <= 0 || tileHeight <= 0 {
		return Grid{}, fmt.Errorf("tile size must be positive, got %dx%d", tileWidth, tileHeight)
	}
	if imageWidth < 0 || imageHeight < 0 {
		return Grid{}, fmt.Errorf("image size must be non-negative, got %dx%d", imageWidth, imageHeight)
	}
	return Grid{
		TileWidth:   tileWidth,
		TileHeight:  tileHeight,
		Cols:        ceilDiv(imageWidth, tileWidth),
		Rows:        ceilDiv(imageHeight, tileHeight),
		ImageWidth:  imageWidth,
		ImageHeight: imageHeight,
	}, nil
}

// NumTiles returns the total number of tiles in the grid.
func (g Grid) NumTiles() int {
	return g.Cols * g.Rows
}

// TileOrigin returns the pixel coordinates of the top-left corner of
// tile (col, row).
func (g Grid) TileOrigin(col, row int) (int, int) {
	return col * g.TileWidth, row * g.TileHeight
}

// Index maps a tile coordinate to a single number identifying the
// tile, and the tile's cell in a row-major count map.
func (g Grid) Index(col, row int) int {
	return row*g.Cols + col
}

// SplitIndex is the inverse of Index.
func (g Grid) SplitIndex(index int) (col, row int) {
	return index % g.Cols, index / g.Cols
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// CountMap is the downsampled result grid: exactly one corrected
// count per tile, shaped (Rows, Cols) to mirror the tile layout.
type CountMap struct {
	// Cells holds Rows*Cols counts in row-major order.
	Cells []float64 `json:"cells"`

	// Cols is the number of tile columns.
	Cols int `json:"cols"`

	// Rows is the number of tile rows.
	Rows int `json:"rows"`
}

// NewCountMap allocates a zero-filled count map for the grid.
func NewCountMap(g Grid) *CountMap {
	return &CountMap{
		Cells: make([]float64, g.NumTiles()),
		Cols:  g.Cols,
		Rows:  g.Rows,
	}
}

// At returns the count for tile (col, row).
func (m *CountMap) At(col, row int) float64 {
	return m.Cells[row*m.Cols+col]
}

// Total returns the sum of all cells: the corrected estimate of the
// object count for the whole image.
func (m *CountMap) Total() float64 {
	var sum float64
	for _, v := range m.Cells {
		sum += v
	}
	return sum
}

// Max returns the largest cell value, or 0 for an empty map.
func (m *CountMap) Max() float64 {
	var max float64
	for _, v := range m.Cells {
		if v > max {
			max = v
		}
	}
	return max
}
