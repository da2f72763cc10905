package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/petrikoro/nuclei-tools-mcp/internal/count"
	"github.com/petrikoro/nuclei-tools-mcp/internal/raster"
	"github.com/petrikoro/nuclei-tools-mcp/internal/render"
	"github.com/petrikoro/nuclei-tools-mcp/internal/segment"
	"github.com/petrikoro/nuclei-tools-mcp/internal/tiling"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "nuclei_count_map").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Counting
	case "nuclei_count_tile":
		return s.handleCountTile(args)
	case "nuclei_count_map":
		return s.handleCountMap(args)
	case "nuclei_count_merged":
		return s.handleCountMerged(args)

	// Previews
	case "nuclei_segment_preview":
		return s.handleSegmentPreview(args)
	case "nuclei_heatmap":
		return s.handleHeatmap(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return raster.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return raster.GetDimensions(s.cache, a.Path)
}

// === Counting Handlers ===

// regionArgs selects an optional sub-region of an image. When all four
// coordinates are zero the whole image is used.
type regionArgs struct {
	Path string `json:"path"`
	X1   int    `json:"x1"`
	Y1   int    `json:"y1"`
	X2   int    `json:"x2"`
	Y2   int    `json:"y2"`
}

// loadRegionTile loads the image and cuts the requested region, or the
// whole image when no region was given.
func (s *Server) loadRegionTile(a regionArgs) (*raster.Tile, error) {
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	if a.X1 == 0 && a.Y1 == 0 && a.X2 == 0 && a.Y2 == 0 {
		return raster.FromImage(img), nil
	}
	return raster.FromImageRegion(img, a.X1, a.Y1, a.X2, a.Y2)
}

type countTileResult struct {
	Corrected   float64 `json:"corrected"`
	WithBorders int     `json:"with_borders"`
	Interior    int     `json:"interior"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
}

func (s *Server) handleCountTile(args json.RawMessage) (interface{}, error) {
	var a regionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	tile, err := s.loadRegionTile(a)
	if err != nil {
		return nil, err
	}
	res, err := count.Count(tile, segment.DefaultOptions())
	if err != nil {
		return nil, err
	}
	return &countTileResult{
		Corrected:   res.Corrected,
		WithBorders: res.WithBorders,
		Interior:    res.Interior,
		Width:       tile.Width,
		Height:      tile.Height,
	}, nil
}

type countMapArgs struct {
	Path     string `json:"path"`
	TileSize int    `json:"tile_size"`
	Workers  int    `json:"workers"`
}

type countMapResult struct {
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	Cells     []float64 `json:"cells"`
	Total     float64   `json:"total"`
	TileSize  int       `json:"tile_size"`
	ElapsedMS float64   `json:"elapsed_ms"`
}

func (s *Server) handleCountMap(args json.RawMessage) (interface{}, error) {
	var a countMapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	m, elapsed, err := s.countMap(a.Path, a.TileSize, a.Workers)
	if err != nil {
		return nil, err
	}
	return &countMapResult{
		Rows:      m.Rows,
		Cols:      m.Cols,
		Cells:     m.Cells,
		Total:     m.Total(),
		TileSize:  tileSizeOrDefault(a.TileSize),
		ElapsedMS: float64(elapsed.Microseconds()) / 1000.0,
	}, nil
}

func tileSizeOrDefault(tileSize int) int {
	if tileSize <= 0 {
		return 100
	}
	return tileSize
}

// countMap runs the border-corrected counter over a tile grid of the
// named image.
func (s *Server) countMap(path string, tileSize, workers int) (*tiling.CountMap, time.Duration, error) {
	src, err := s.cache.LoadTile(path)
	if err != nil {
		return nil, 0, err
	}
	tileSize = tileSizeOrDefault(tileSize)
	grid, err := tiling.MakeGrid(src.Width, src.Height, tileSize, tileSize)
	if err != nil {
		return nil, 0, err
	}
	start := time.Now()
	m, err := tiling.Run(context.Background(), src, grid, count.Corrected, tiling.Config{Workers: workers})
	if err != nil {
		return nil, 0, err
	}
	return m, time.Since(start), nil
}

type countMergedArgs struct {
	Path     string `json:"path"`
	TileSize int    `json:"tile_size"`
	Padding  int    `json:"padding"`
	Workers  int    `json:"workers"`
}

type countMergedResult struct {
	Count     int     `json:"count"`
	NumTilesX int     `json:"num_tiles_x"`
	NumTilesY int     `json:"num_tiles_y"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

func (s *Server) handleCountMerged(args json.RawMessage) (interface{}, error) {
	var a countMergedArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	src, err := s.cache.LoadTile(a.Path)
	if err != nil {
		return nil, err
	}
	tileSize := tileSizeOrDefault(a.TileSize)
	padding := a.Padding
	if padding <= 0 {
		padding = 20
	}
	overlap, err := tiling.MakeOverlapTiling(src.Width, src.Height, tileSize, tileSize, padding)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	n, err := tiling.CountMerged(context.Background(), src, overlap, segment.DefaultOptions(), tiling.Config{Workers: a.Workers})
	if err != nil {
		return nil, err
	}
	return &countMergedResult{
		Count:     n,
		NumTilesX: overlap.NumX,
		NumTilesY: overlap.NumY,
		ElapsedMS: float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

// === Preview Handlers ===

func (s *Server) handleSegmentPreview(args json.RawMessage) (interface{}, error) {
	var a regionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	tile, err := s.loadRegionTile(a)
	if err != nil {
		return nil, err
	}
	opts := segment.DefaultOptions()
	labels, err := segment.Segment(tile, opts)
	if err != nil {
		return nil, err
	}
	labels.FilterMeanRange(tile, 0, opts.DimMax)
	return render.Overlay(tile, labels)
}

type heatmapArgs struct {
	Path     string `json:"path"`
	TileSize int    `json:"tile_size"`
	CellSize int    `json:"cell_size"`
	Workers  int    `json:"workers"`
}

func (s *Server) handleHeatmap(args json.RawMessage) (interface{}, error) {
	var a heatmapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	m, _, err := s.countMap(a.Path, a.TileSize, a.Workers)
	if err != nil {
		return nil, err
	}
	return render.Heatmap(m, a.CellSize)
}
