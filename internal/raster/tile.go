package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Tile is a rectangular sub-region of a larger 2D intensity image.
//
// Pixel intensities are stored row-major as float64 values in [0, 1],
// where 0 is background (black) and 1 is full intensity. A Tile is
// immutable by convention once handed to a counting or segmentation
// routine: those routines never write to Pix.
type Tile struct {
	// Pix holds Height*Width intensity values in row-major order.
	Pix []float64

	// Width is the tile width in pixels.
	Width int

	// Height is the tile height in pixels.
	Height int
}

// NewTile allocates a zero-filled tile of the given dimensions.
func NewTile(width, height int) *Tile {
	return &Tile{
		Pix:    make([]float64, width*height),
		Width:  width,
		Height: height,
	}
}

// At returns the intensity at (x, y). The caller must ensure the
// coordinates are inside the tile.
func (t *Tile) At(x, y int) float64 {
	return t.Pix[y*t.Width+x]
}

// Set writes the intensity at (x, y).
func (t *Tile) Set(x, y int, v float64) {
	t.Pix[y*t.Width+x] = v
}

// Empty reports whether the tile has zero area.
func (t *Tile) Empty() bool {
	return t.Width <= 0 || t.Height <= 0
}

// Validate checks that the tile's dimensions and backing slice are
// consistent. A zero-area tile is valid (see Empty); a nil tile,
// negative dimensions, or a mis-sized Pix slice are not.
func (t *Tile) Validate() error {
	if t == nil {
		return fmt.Errorf("nil tile")
	}
	if t.Width < 0 || t.Height < 0 {
		return fmt.Errorf("negative tile dimensions %dx%d", t.Width, t.Height)
	}
	if len(t.Pix) != t.Width*t.Height {
		return fmt.Errorf("tile pix length %d does not match %dx%d", len(t.Pix), t.Width, t.Height)
	}
	return nil
}

// Gray converts the tile to an 8-bit grayscale image. Intensities are
// clamped to [0, 1] before quantization.
func (t *Tile) Gray() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, t.Width, t.Height))
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			v := t.At(x, y)
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			out.SetGray(x, y, color.Gray{Y: uint8(math.Round(v * 255))})
		}
	}
	return out
}

// FromImage converts an image to an intensity tile using ITU-R BT.601
// luminance weights (0.299*R + 0.587*G + 0.114*B).
func FromImage(img image.Image) *Tile {
	bounds := img.Bounds()
	t := NewTile(bounds.Dx(), bounds.Dy())
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			rf := float64(r>>8) / 255.0
			gf := float64(g>>8) / 255.0
			bf := float64(b>>8) / 255.0
			t.Set(x, y, 0.299*rf+0.587*gf+0.114*bf)
		}
	}
	return t
}

// FromImageRegion converts a rectangular region of an image to a tile.
//
// The region must lie inside the image bounds and have positive area.
func FromImageRegion(img image.Image, x1, y1, x2, y2 int) (*Tile, error) {
	bounds := img.Bounds()
	if x1 < bounds.Min.X || y1 < bounds.Min.Y || x2 > bounds.Max.X || y2 > bounds.Max.Y {
		return nil, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			x1, y1, x2, y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}
	cropped := imaging.Crop(img, image.Rect(x1, y1, x2, y2))
	return FromImage(cropped), nil
}

// SubTile extracts a width x height block whose top-left corner is at
// (x0, y0) in the source tile. Pixels beyond the source bounds are
// zero-filled, so tiles cut from the right and bottom edges of an
// image whose dimensions are not an exact multiple of the tile size
// are padded rather than truncated.
func (t *Tile) SubTile(x0, y0, width, height int) *Tile {
	out := NewTile(width, height)
	for y := 0; y < height; y++ {
		sy := y0 + y
		if sy < 0 || sy >= t.Height {
			continue
		}
		for x := 0; x < width; x++ {
			sx := x0 + x
			if sx < 0 || sx >= t.Width {
				continue
			}
			out.Set(x, y, t.At(sx, sy))
		}
	}
	return out
}
