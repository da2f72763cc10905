package render

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"testing"

	"github.com/petrikoro/nuclei-tools-mcp/internal/tiling"
)

func decodeBase64PNG(t *testing.T, b64 string) (width, height int) {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestHeatmap(t *testing.T) {
	m := &tiling.CountMap{Cells: []float64{0, 1, 2, 3, 4, 5}, Cols: 3, Rows: 2}

	result, err := Heatmap(m, 10)
	if err != nil {
		t.Fatalf("Heatmap failed: %v", err)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}
	if result.MaxCount != 5 {
		t.Errorf("MaxCount: got %v, want 5", result.MaxCount)
	}

	w, h := decodeBase64PNG(t, result.ImageBase64)
	if w != 30 || h != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", w, h)
	}
	if result.Width != w || result.Height != h {
		t.Errorf("reported dimensions %dx%d do not match image %dx%d", result.Width, result.Height, w, h)
	}
}

func TestHeatmap_AllZero(t *testing.T) {
	m := &tiling.CountMap{Cells: make([]float64, 4), Cols: 2, Rows: 2}

	result, err := Heatmap(m, 8)
	if err != nil {
		t.Fatalf("Heatmap failed: %v", err)
	}
	if result.MaxCount != 0 {
		t.Errorf("MaxCount: got %v, want 0", result.MaxCount)
	}
	if w, h := decodeBase64PNG(t, result.ImageBase64); w != 16 || h != 16 {
		t.Errorf("dimensions: got %dx%d, want 16x16", w, h)
	}
}

func TestHeatmap_DefaultCellSize(t *testing.T) {
	m := &tiling.CountMap{Cells: []float64{1}, Cols: 1, Rows: 1}
	result, err := Heatmap(m, 0)
	if err != nil {
		t.Fatalf("Heatmap failed: %v", err)
	}
	if result.Width != 32 || result.Height != 32 {
		t.Errorf("dimensions: got %dx%d, want 32x32", result.Width, result.Height)
	}
}

func TestHeatmap_EmptyMap(t *testing.T) {
	if _, err := Heatmap(nil, 10); err == nil {
		t.Error("expected error for nil map")
	}
	if _, err := Heatmap(&tiling.CountMap{}, 10); err == nil {
		t.Error("expected error for zero-shape map")
	}
}
