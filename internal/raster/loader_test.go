package raster

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{128, 128, 128, 255})
		}
	}
	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test png: %v", err)
	}
	return path
}

func TestImageCache_Load(t *testing.T) {
	path := writeTestPNG(t, 20, 10)
	cache := NewImageCache()

	img, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := img.Bounds().Dx(); got != 20 {
		t.Errorf("width: got %d, want 20", got)
	}

	// Second load hits the cache even after the file disappears.
	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove test file: %v", err)
	}
	if _, err := cache.Load(path); err != nil {
		t.Errorf("cached Load failed: %v", err)
	}

	cache.Evict(path)
	if _, err := cache.Load(path); err == nil {
		t.Error("expected error after eviction of deleted file")
	}
}

func TestImageCache_Load_MissingFile(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestImageCache_LoadTile(t *testing.T) {
	path := writeTestPNG(t, 8, 6)
	cache := NewImageCache()

	tile, err := cache.LoadTile(path)
	if err != nil {
		t.Fatalf("LoadTile failed: %v", err)
	}
	if tile.Width != 8 || tile.Height != 6 {
		t.Errorf("dimensions: got %dx%d, want 8x6", tile.Width, tile.Height)
	}
	// 128/255 gray converts to roughly 0.5 intensity.
	if got := tile.At(4, 3); got < 0.45 || got > 0.55 {
		t.Errorf("intensity: got %v, want ~0.5", got)
	}
}

func TestLoadImageInfo(t *testing.T) {
	path := writeTestPNG(t, 20, 10)
	cache := NewImageCache()

	info, err := LoadImageInfo(cache, path)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if info.Width != 20 || info.Height != 10 {
		t.Errorf("dimensions: got %dx%d, want 20x10", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %q, want png", info.Format)
	}
	if info.FileSizeBytes <= 0 {
		t.Errorf("file size: got %d, want > 0", info.FileSizeBytes)
	}
}

func TestGetDimensions(t *testing.T) {
	path := writeTestPNG(t, 33, 44)
	cache := NewImageCache()

	dims, err := GetDimensions(cache, path)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}
	if dims.Width != 33 || dims.Height != 44 {
		t.Errorf("dimensions: got %dx%d, want 33x44", dims.Width, dims.Height)
	}
}
