package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema fragment shared by every tool that takes
// an image path.
func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, and file size. Caches the decoded image for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Counting
		{
			Name:        "nuclei_count_tile",
			Description: "Count nuclei in one tile with border correction. Returns the corrected estimate together with the raw counts including and excluding border-touching objects. Pass x1/y1/x2/y2 to count a sub-region; omit them to treat the whole image as one tile.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge of the tile (0-based, inclusive). Optional",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge of the tile (0-based, inclusive). Optional",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge of the tile (exclusive). Optional",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge of the tile (exclusive). Optional",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "nuclei_count_map",
			Description: "Tile an image into a regular grid, count nuclei per tile with border correction over a worker pool, and return the count map plus the total estimate.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"tile_size": map[string]interface{}{
						"type":        "integer",
						"description": "Tile edge length in pixels. Default 100",
						"default":     100,
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Number of concurrent tile workers. Default: one per CPU",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "nuclei_count_merged",
			Description: "Count nuclei exactly by tiling with overlap and merging duplicate detections across tile seams. Slower than nuclei_count_map but returns an integer count instead of a statistical estimate.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"tile_size": map[string]interface{}{
						"type":        "integer",
						"description": "Tile edge length in pixels. Default 100",
						"default":     100,
					},
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum overlap between neighboring tiles in pixels. Default 20",
						"default":     20,
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Number of concurrent tile workers. Default: one per CPU",
					},
				},
				"required": []string{"path"},
			},
		},

		// Previews
		{
			Name:        "nuclei_segment_preview",
			Description: "Segment an image (or a sub-region) and return a base64 PNG with each detected nucleus tinted a distinct color. Useful for judging whether the segmentation policy fits the data before counting.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge of the region (0-based, inclusive). Optional",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge of the region (0-based, inclusive). Optional",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge of the region (exclusive). Optional",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge of the region (exclusive). Optional",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "nuclei_heatmap",
			Description: "Render the per-tile count map of an image as a base64 PNG heatmap. Cold cells are empty tiles; hot cells hold the most nuclei.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"tile_size": map[string]interface{}{
						"type":        "integer",
						"description": "Tile edge length in pixels. Default 100",
						"default":     100,
					},
					"cell_size": map[string]interface{}{
						"type":        "integer",
						"description": "Rendered size of each map cell in pixels. Default 32",
						"default":     32,
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Number of concurrent tile workers. Default: one per CPU",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}
