// Command nucleicount counts nuclei in a micrograph from the command
// line: it tiles the image, runs the border-corrected counter over a
// worker pool, and prints the per-tile count map plus the total.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"

	"github.com/petrikoro/nuclei-tools-mcp/internal/count"
	"github.com/petrikoro/nuclei-tools-mcp/internal/raster"
	"github.com/petrikoro/nuclei-tools-mcp/internal/segment"
	"github.com/petrikoro/nuclei-tools-mcp/internal/tiling"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("nucleicount", flag.ContinueOnError)
	var (
		imagePath = fs.String("image", "", "path to the micrograph to count")
		tileSize  = fs.Int("tile", 100, "tile edge length in pixels")
		workers   = fs.Int("workers", runtime.NumCPU(), "number of concurrent tile workers")
		mode      = fs.String("mode", "corrected", "counting mode: 'corrected' (border-corrected map) or 'merge' (overlap + dedup)")
		padding   = fs.Int("padding", 20, "tile overlap in pixels (merge mode only)")
	)
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *imagePath == "" {
		ancli.PrintErr("missing required flag: -image\n")
		fs.Usage()
		return 1
	}

	cache := raster.NewImageCache()
	src, err := cache.LoadTile(*imagePath)
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("failed to load image: %v\n", err))
		return 1
	}

	switch *mode {
	case "corrected":
		return runCorrected(ctx, src, *tileSize, *workers)
	case "merge":
		return runMerge(ctx, src, *tileSize, *padding, *workers)
	default:
		ancli.PrintErr(fmt.Sprintf("unknown mode: %q\n", *mode))
		return 1
	}
}

func runCorrected(ctx context.Context, src *raster.Tile, tileSize, workers int) int {
	grid, err := tiling.MakeGrid(src.Width, src.Height, tileSize, tileSize)
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("bad tiling: %v\n", err))
		return 1
	}

	start := time.Now()
	m, err := tiling.Run(ctx, src, grid, count.Corrected, tiling.Config{Workers: workers})
	if err != nil {
		// Failed tiles leave zero cells; the map is still printed.
		ancli.PrintWarn(fmt.Sprintf("some tiles failed: %v\n", err))
	}
	elapsed := time.Since(start)

	printCountMap(m)
	ancli.PrintOK(fmt.Sprintf("total: %.1f nuclei in %d tiles (%dx%d px each, %d workers, %v)\n",
		m.Total(), grid.NumTiles(), tileSize, tileSize, workers, elapsed.Round(time.Millisecond)))
	return 0
}

func runMerge(ctx context.Context, src *raster.Tile, tileSize, padding, workers int) int {
	overlap, err := tiling.MakeOverlapTiling(src.Width, src.Height, tileSize, tileSize, padding)
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("bad tiling: %v\n", err))
		return 1
	}

	start := time.Now()
	n, err := tiling.CountMerged(ctx, src, overlap, segment.DefaultOptions(), tiling.Config{Workers: workers})
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("merge count failed: %v\n", err))
		return 1
	}
	ancli.PrintOK(fmt.Sprintf("total: %d nuclei across %dx%d overlapping tiles (%v)\n",
		n, overlap.NumX, overlap.NumY, time.Since(start).Round(time.Millisecond)))
	return 0
}

func printCountMap(m *tiling.CountMap) {
	var sb strings.Builder
	for row := 0; row < m.Rows; row++ {
		for col := 0; col < m.Cols; col++ {
			fmt.Fprintf(&sb, "%6.1f", m.At(col, row))
		}
		sb.WriteByte('\n')
	}
	fmt.Print(sb.String())
}
