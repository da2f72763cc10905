// Package render produces PNG previews for the tool surface: count
// maps as heatmaps, and segmentations as tinted label overlays.
// Results are base64-encoded so they can travel inside JSON tool
// responses.
package render
