package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/petrikoro/nuclei-tools-mcp/internal/tiling"
)

// HeatmapResult contains a count map rendered as a base64 PNG.
type HeatmapResult struct {
	// Width of the output image in pixels.
	Width int `json:"width"`

	// Height of the output image in pixels.
	Height int `json:"height"`

	// ImageBase64 is the heatmap encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`

	// MaxCount is the cell value mapped to the hot end of the scale.
	MaxCount float64 `json:"max_count"`
}

// Heatmap colors are blended in Luv space, which keeps the ramp
// perceptually even from cold to hot.
var (
	heatCold = colorful.Color{R: 0.05, G: 0.05, B: 0.35}
	heatHot  = colorful.Color{R: 1.00, G: 0.85, B: 0.10}
)

// Heatmap renders a count map as a heatmap image, one cellSize x
// cellSize block per tile. Cells are colored relative to the map's
// maximum; an all-zero map renders entirely cold.
func Heatmap(m *tiling.CountMap, cellSize int) (*HeatmapResult, error) {
	if m == nil || m.Cols <= 0 || m.Rows <= 0 {
		return nil, fmt.Errorf("cannot render empty count map")
	}
	if cellSize <= 0 {
		cellSize = 32
	}

	maxCount := m.Max()
	img := image.NewRGBA(image.Rect(0, 0, m.Cols, m.Rows))
	for row := 0; row < m.Rows; row++ {
		for col := 0; col < m.Cols; col++ {
			t := 0.0
			if maxCount > 0 {
				t = m.At(col, row) / maxCount
			}
			r, g, b := heatCold.BlendLuv(heatHot, t).Clamped().RGB255()
			i := img.PixOffset(col, row)
			img.Pix[i] = r
			img.Pix[i+1] = g
			img.Pix[i+2] = b
			img.Pix[i+3] = 255
		}
	}

	scaled := imaging.Resize(img, m.Cols*cellSize, m.Rows*cellSize, imaging.NearestNeighbor)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("failed to encode heatmap: %w", err)
	}

	return &HeatmapResult{
		Width:       scaled.Bounds().Dx(),
		Height:      scaled.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		MaxCount:    maxCount,
	}, nil
}
