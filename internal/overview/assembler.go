package overview

import (
	"context"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"skyview/internal/config"
	"skyview/internal/tiles"
	"skyview/internal/types"
)

// TileFetcher downloads one remote tile, degrading to a blank tile on any
// failure. Implemented by tiles.Fetcher; injected for testability.
type TileFetcher interface {
	Fetch(ctx context.Context, url string) *image.RGBA
}

// StatusSource provides one telescope-status snapshot per assembly.
// Implemented by status.Client; any error degrades the status tile to blank.
type StatusSource interface {
	Snapshot(ctx context.Context) (*types.StatusSnapshot, error)
}

// Assembler orchestrates fetcher, renderers, and compositor to produce one
// full overview image. Every tile degrades independently; only a failure to
// persist the final image is surfaced to the caller.
type Assembler struct {
	cfg     config.OverviewConfig
	fetcher TileFetcher
	status  StatusSource
	clock   types.Clock
	logger  *slog.Logger
}

// AssemblerConfig holds the dependencies for creating an Assembler.
type AssemblerConfig struct {
	Overview config.OverviewConfig
	Fetcher  TileFetcher
	Status   StatusSource // optional; nil renders a blank status tile
	Clock    types.Clock
	Logger   *slog.Logger
}

// NewAssembler creates an Assembler with the given configuration.
func NewAssembler(cfg AssemblerConfig) *Assembler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	return &Assembler{
		cfg:     cfg.Overview,
		fetcher: cfg.Fetcher,
		status:  cfg.Status,
		clock:   clock,
		logger:  logger,
	}
}

// Build produces the composite image in memory: all configured remote tiles
// (fetched with bounded parallelism, result order matching the URL order),
// then the status tile, then the clock tile, composed into the configured
// grid.
func (a *Assembler) Build(ctx context.Context) (*image.RGBA, error) {
	runID := uuid.NewString()
	logger := a.logger.With("run_id", runID)

	imgs := make([]*image.RGBA, len(a.cfg.TileURLs), len(a.cfg.TileURLs)+2)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.FetchConcurrency)
	for i, url := range a.cfg.TileURLs {
		i, url := i, url
		g.Go(func() error {
			// Fetch never errors; failures already degraded to blank.
			imgs[i] = a.fetcher.Fetch(gCtx, url)
			return nil
		})
	}
	// Each slot writes only its own index, so no mutex is needed and the
	// result order is independent of completion order.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	imgs = append(imgs, a.statusTile(ctx, logger))
	imgs = append(imgs, a.clockTile(logger))

	composite, err := Compose(imgs, a.cfg.GridRows, a.cfg.GridCols)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "overview assembled",
		"tiles", len(imgs),
		"grid_rows", a.cfg.GridRows,
		"grid_cols", a.cfg.GridCols,
	)
	return composite, nil
}

// statusTile renders the telescope-status tile, blank on any failure.
func (a *Assembler) statusTile(ctx context.Context, logger *slog.Logger) *image.RGBA {
	if a.status == nil {
		return tiles.Blank(a.cfg.TileRows, a.cfg.TileCols)
	}
	snap, err := a.status.Snapshot(ctx)
	if err != nil {
		logger.WarnContext(ctx, "status source unavailable, using blank tile", "error", err)
		return tiles.Blank(a.cfg.TileRows, a.cfg.TileCols)
	}
	img, err := tiles.RenderStatus(snap, a.cfg.TileRows, a.cfg.TileCols)
	if err != nil {
		logger.WarnContext(ctx, "status tile render failed, using blank tile", "error", err)
		return tiles.Blank(a.cfg.TileRows, a.cfg.TileCols)
	}
	return img
}

// clockTile renders the clock tile, blank on any failure.
func (a *Assembler) clockTile(logger *slog.Logger) *image.RGBA {
	img, err := tiles.RenderClock(a.clock.Now(), a.cfg.TileRows, a.cfg.TileCols)
	if err != nil {
		logger.Warn("clock tile render failed, using blank tile", "error", err)
		return tiles.Blank(a.cfg.TileRows, a.cfg.TileCols)
	}
	return img
}

// WriteImage assembles the composite and JPEG-encodes it to w.
func (a *Assembler) WriteImage(ctx context.Context, w io.Writer) error {
	composite, err := a.Build(ctx)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(w, composite, &jpeg.Options{Quality: a.cfg.JPEGQuality}); err != nil {
		return types.NewAppError(types.ErrCodeWriteFailed, "encoding composite", err)
	}
	return nil
}

// SaveImage assembles the composite and persists it as a JPEG at
// outputPath. A write failure is surfaced to the caller, not swallowed.
//
// The image is written to a temporary name and renamed into place only on
// success: outputPath feeds a numbered frame sequence, so a partial file
// left behind would be counted by the sequence scan and end up inside the
// encoder's frame range.
func (a *Assembler) SaveImage(ctx context.Context, outputPath string) error {
	composite, err := a.Build(ctx)
	if err != nil {
		return err
	}

	tmpPath := outputPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return types.NewAppError(types.ErrCodeWriteFailed, "creating "+tmpPath, err)
	}
	if err := jpeg.Encode(f, composite, &jpeg.Options{Quality: a.cfg.JPEGQuality}); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return types.NewAppError(types.ErrCodeWriteFailed, "encoding "+outputPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return types.NewAppError(types.ErrCodeWriteFailed, "closing "+outputPath, err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return types.NewAppError(types.ErrCodeWriteFailed, "renaming "+tmpPath, err)
	}
	return nil
}
