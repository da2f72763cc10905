package tiling

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/multierr"

	"github.com/petrikoro/nuclei-tools-mcp/internal/raster"
)

// Config controls how the tiling driver executes. Execution policy is
// an explicit value passed in at the call site rather than any
// process-wide toggle, so two drivers with different configurations
// can run in the same process.
type Config struct {
	// Workers is the number of concurrent tile workers. Zero or
	// negative means one worker per available CPU. Workers=1 runs
	// the tiles serially and must produce identical results to any
	// other worker count.
	Workers int
}

// TileFunc computes the scalar result for one tile. Implementations
// must be pure functions of the tile so tiles can run concurrently
// and in any order.
type TileFunc func(*raster.Tile) (float64, error)

// Run applies fn to every tile of src under the given grid and
// collects the per-tile scalars into a pre-allocated count map.
//
// Tiles are dispatched over a task queue to a fixed pool of workers.
// Each worker writes only its own tile's cell, so no synchronization
// is needed on the output; the only barrier is the final wait for all
// workers before the map is returned.
//
// One tile's failure does not abort the others: its cell stays 0 and
// the error, annotated with the tile coordinate, is combined into the
// returned error after the barrier. Context cancellation stops
// dispatching new tiles; tiles already in flight finish.
func Run(ctx context.Context, src *raster.Tile, grid Grid, fn TileFunc, cfg Config) (*CountMap, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	numTiles := grid.NumTiles()
	if workers > numTiles {
		workers = numTiles
	}

	out := NewCountMap(grid)
	if numTiles == 0 {
		return out, nil
	}

	jobs := make(chan int)
	var (
		wg     sync.WaitGroup
		errMu  sync.Mutex
		runErr error
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				col, row := grid.SplitIndex(idx)
				x0, y0 := grid.TileOrigin(col, row)
				tile := src.SubTile(x0, y0, grid.TileWidth, grid.TileHeight)

				v, err := fn(tile)
				if err != nil {
					errMu.Lock()
					runErr = multierr.Append(runErr, fmt.Errorf("tile (%d,%d): %w", col, row, err))
					errMu.Unlock()
					continue
				}
				out.Cells[idx] = v
			}
		}()
	}

dispatch:
	for idx := 0; idx < numTiles; idx++ {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			errMu.Lock()
			runErr = multierr.Append(runErr, ctx.Err())
			errMu.Unlock()
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	return out, runErr
}
