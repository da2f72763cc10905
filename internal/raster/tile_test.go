package raster

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func createInMemoryImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestFromImage_Luminance(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want float64
	}{
		{"black", color.RGBA{0, 0, 0, 255}, 0},
		{"white", color.RGBA{255, 255, 255, 255}, 1},
		{"pure red", color.RGBA{255, 0, 0, 255}, 0.299},
		{"pure green", color.RGBA{0, 255, 0, 255}, 0.587},
		{"pure blue", color.RGBA{0, 0, 255, 255}, 0.114},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile := FromImage(createInMemoryImage(4, 4, tt.c))
			if tile.Width != 4 || tile.Height != 4 {
				t.Fatalf("dimensions: got %dx%d, want 4x4", tile.Width, tile.Height)
			}
			if got := tile.At(2, 2); math.Abs(got-tt.want) > 0.01 {
				t.Errorf("intensity: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tile    *Tile
		wantErr bool
	}{
		{"valid", NewTile(3, 2), false},
		{"zero area", NewTile(0, 0), false},
		{"nil", nil, true},
		{"negative width", &Tile{Width: -1, Height: 2}, true},
		{"mismatched pix", &Tile{Pix: make([]float64, 5), Width: 2, Height: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tile.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTile_SubTile(t *testing.T) {
	src := NewTile(10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.Set(x, y, float64(y*10+x))
		}
	}

	sub := src.SubTile(2, 3, 4, 4)
	if sub.Width != 4 || sub.Height != 4 {
		t.Fatalf("dimensions: got %dx%d, want 4x4", sub.Width, sub.Height)
	}
	if got, want := sub.At(0, 0), src.At(2, 3); got != want {
		t.Errorf("At(0,0): got %v, want %v", got, want)
	}
	if got, want := sub.At(3, 3), src.At(5, 6); got != want {
		t.Errorf("At(3,3): got %v, want %v", got, want)
	}
}

func TestTile_SubTile_ZeroPadsBeyondBounds(t *testing.T) {
	src := NewTile(5, 5)
	for i := range src.Pix {
		src.Pix[i] = 1
	}

	// 4x4 block starting at (3,3) hangs 2 pixels past each edge.
	sub := src.SubTile(3, 3, 4, 4)
	if got := sub.At(0, 0); got != 1 {
		t.Errorf("in-bounds pixel: got %v, want 1", got)
	}
	if got := sub.At(3, 3); got != 0 {
		t.Errorf("out-of-bounds pixel: got %v, want 0", got)
	}
	if got := sub.At(2, 0); got != 0 {
		t.Errorf("out-of-bounds column: got %v, want 0", got)
	}
}

func TestFromImageRegion(t *testing.T) {
	img := createInMemoryImage(10, 10, color.RGBA{255, 255, 255, 255})

	tile, err := FromImageRegion(img, 2, 2, 6, 8)
	if err != nil {
		t.Fatalf("FromImageRegion failed: %v", err)
	}
	if tile.Width != 4 || tile.Height != 6 {
		t.Errorf("dimensions: got %dx%d, want 4x6", tile.Width, tile.Height)
	}

	if _, err := FromImageRegion(img, -1, 0, 5, 5); err == nil {
		t.Error("expected error for region outside bounds")
	}
	if _, err := FromImageRegion(img, 5, 5, 5, 8); err == nil {
		t.Error("expected error for zero-width region")
	}
}

func TestTile_Gray_RoundTrip(t *testing.T) {
	tile := NewTile(3, 3)
	tile.Set(1, 1, 0.5)
	tile.Set(2, 2, 1.5)  // clamped to 1
	tile.Set(0, 2, -0.5) // clamped to 0

	gray := tile.Gray()
	if got := gray.GrayAt(1, 1).Y; got != 128 {
		t.Errorf("mid intensity: got %d, want 128", got)
	}
	if got := gray.GrayAt(2, 2).Y; got != 255 {
		t.Errorf("clamped high: got %d, want 255", got)
	}
	if got := gray.GrayAt(0, 2).Y; got != 0 {
		t.Errorf("clamped low: got %d, want 0", got)
	}
}
