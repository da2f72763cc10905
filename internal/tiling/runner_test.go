package tiling

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/petrikoro/nuclei-tools-mcp/internal/count"
	"github.com/petrikoro/nuclei-tools-mcp/internal/raster"
)

func addSquare(tile *raster.Tile, cx, cy, half int, v float64) {
	for y := cy - half; y <= cy+half; y++ {
		if y < 0 || y >= tile.Height {
			continue
		}
		for x := cx - half; x <= cx+half; x++ {
			if x < 0 || x >= tile.Width {
				continue
			}
			tile.Set(x, y, v)
		}
	}
}

// A 500x500 zero image with one bright blob at the center tiles into
// a 5x5 map that is zero everywhere except tile (2,2), which holds a
// count of 1.
func TestRun_EndToEnd(t *testing.T) {
	src := raster.NewTile(500, 500)
	addSquare(src, 250, 250, 5, 1.0)

	grid, err := MakeGrid(src.Width, src.Height, 100, 100)
	if err != nil {
		t.Fatalf("MakeGrid failed: %v", err)
	}

	m, err := Run(context.Background(), src, grid, count.Corrected, Config{Workers: 4})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if m.Cols != 5 || m.Rows != 5 {
		t.Fatalf("map shape: got %dx%d, want 5x5", m.Cols, m.Rows)
	}

	for row := 0; row < 5; row++ {
		for col := 0; col < 5; col++ {
			got := m.At(col, row)
			want := 0.0
			if col == 2 && row == 2 {
				want = 1.0
			}
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("cell (%d,%d): got %v, want %v", col, row, got, want)
			}
		}
	}
	if total := m.Total(); math.Abs(total-1.0) > 1e-9 {
		t.Errorf("Total: got %v, want 1", total)
	}
}

// Workers=1 and Workers=8 must produce identical maps: tile results
// depend only on tile pixels, never on scheduling.
func TestRun_SerialMatchesParallel(t *testing.T) {
	src := raster.NewTile(400, 300)
	addSquare(src, 50, 50, 5, 1.0)
	addSquare(src, 200, 150, 5, 1.0) // straddles a vertical tile seam
	addSquare(src, 350, 250, 5, 0.9)

	grid, err := MakeGrid(src.Width, src.Height, 100, 100)
	if err != nil {
		t.Fatalf("MakeGrid failed: %v", err)
	}

	serial, err := Run(context.Background(), src, grid, count.Corrected, Config{Workers: 1})
	if err != nil {
		t.Fatalf("serial Run failed: %v", err)
	}
	parallel, err := Run(context.Background(), src, grid, count.Corrected, Config{Workers: 8})
	if err != nil {
		t.Fatalf("parallel Run failed: %v", err)
	}

	for i := range serial.Cells {
		if serial.Cells[i] != parallel.Cells[i] {
			col, row := grid.SplitIndex(i)
			t.Errorf("cell (%d,%d): serial %v, parallel %v", col, row, serial.Cells[i], parallel.Cells[i])
		}
	}
}

// One failing tile must not prevent the others from being counted.
func TestRun_TileFailureIsIsolated(t *testing.T) {
	src := raster.NewTile(300, 100)
	grid, err := MakeGrid(src.Width, src.Height, 100, 100)
	if err != nil {
		t.Fatalf("MakeGrid failed: %v", err)
	}

	boom := errors.New("segmentation backend exploded")
	calls := 0
	fn := func(tile *raster.Tile) (float64, error) {
		calls++
		if calls == 2 {
			return 0, boom
		}
		return 7, nil
	}

	m, err := Run(context.Background(), src, grid, fn, Config{Workers: 1})
	if err == nil {
		t.Fatal("expected combined error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error chain missing tile error: %v", err)
	}
	if !strings.Contains(err.Error(), "tile (") {
		t.Errorf("error not annotated with tile coordinate: %v", err)
	}

	succeeded := 0
	for _, v := range m.Cells {
		if v == 7 {
			succeeded++
		}
	}
	if succeeded != 2 {
		t.Errorf("successful tiles: got %d, want 2", succeeded)
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	src := raster.NewTile(500, 500)
	grid, err := MakeGrid(src.Width, src.Height, 100, 100)
	if err != nil {
		t.Fatalf("MakeGrid failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	fn := func(tile *raster.Tile) (float64, error) {
		cancel()
		return 1, nil
	}

	_, err = Run(ctx, src, grid, fn, Config{Workers: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in error chain, got %v", err)
	}
}

func TestRun_EmptyImage(t *testing.T) {
	grid, err := MakeGrid(0, 0, 100, 100)
	if err != nil {
		t.Fatalf("MakeGrid failed: %v", err)
	}
	m, err := Run(context.Background(), raster.NewTile(0, 0), grid,
		func(*raster.Tile) (float64, error) { return 0, fmt.Errorf("must not be called") },
		Config{Workers: 4})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(m.Cells) != 0 {
		t.Errorf("cells: got %d, want 0", len(m.Cells))
	}
}

func TestRun_MalformedSource(t *testing.T) {
	grid, err := MakeGrid(100, 100, 100, 100)
	if err != nil {
		t.Fatalf("MakeGrid failed: %v", err)
	}
	bad := &raster.Tile{Pix: make([]float64, 3), Width: 100, Height: 100}
	if _, err := Run(context.Background(), bad, grid, count.Corrected, Config{}); err == nil {
		t.Error("expected error for malformed source")
	}
}
