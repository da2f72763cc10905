package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/petrikoro/nuclei-tools-mcp/internal/raster"
	"github.com/petrikoro/nuclei-tools-mcp/internal/segment"
)

// OverlayResult contains a segmentation preview encoded as base64 PNG:
// the source tile in grayscale with each labeled object tinted a
// distinct color.
type OverlayResult struct {
	// Width of the output image in pixels.
	Width int `json:"width"`

	// Height of the output image in pixels.
	Height int `json:"height"`

	// ImageBase64 is the overlay encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`

	// Objects is the number of distinct labels rendered.
	Objects int `json:"objects"`
}

// labelColor assigns each label a stable hue. Consecutive labels land
// far apart on the hue wheel so adjacent objects stay visually
// distinct.
func labelColor(label int32) (uint8, uint8, uint8) {
	hue := math.Mod(float64(label)*137.5, 360)
	return colorful.Hsv(hue, 0.85, 1.0).Clamped().RGB255()
}

// Overlay renders a tile with its label raster tinted on top. Labeled
// pixels blend the label color with the underlying intensity;
// background pixels stay grayscale.
func Overlay(t *raster.Tile, labels *segment.Labels) (*OverlayResult, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if labels.Width != t.Width || labels.Height != t.Height {
		return nil, fmt.Errorf("label raster %dx%d does not match tile %dx%d",
			labels.Width, labels.Height, t.Width, t.Height)
	}

	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			v := t.At(x, y)
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			gray := uint8(math.Round(v * 255))

			i := img.PixOffset(x, y)
			if lab := labels.At(x, y); lab > 0 {
				r, g, b := labelColor(lab)
				// Half label tint, half source intensity.
				img.Pix[i] = uint8((int(r) + int(gray)) / 2)
				img.Pix[i+1] = uint8((int(g) + int(gray)) / 2)
				img.Pix[i+2] = uint8((int(b) + int(gray)) / 2)
			} else {
				img.Pix[i] = gray
				img.Pix[i+1] = gray
				img.Pix[i+2] = gray
			}
			img.Pix[i+3] = 255
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}

	return &OverlayResult{
		Width:       t.Width,
		Height:      t.Height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Objects:     labels.Count,
	}, nil
}
