package tiles

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"time"

	// Webcam endpoints serve a mix of formats regardless of extension.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"skyview/internal/types"
)

// maxTileBytes caps a single download so a misbehaving endpoint cannot
// exhaust memory.
const maxTileBytes = 32 << 20

// Fetcher downloads remote webcam snapshots and resizes them to the
// configured tile resolution. Sources are treated as unreliable: in the
// default mode every failure degrades to a blank tile.
type Fetcher struct {
	client *http.Client
	rows   int
	cols   int
	logger *slog.Logger
}

// FetcherConfig holds the configuration for creating a Fetcher.
type FetcherConfig struct {
	Rows    int
	Cols    int
	Timeout time.Duration
	Client  *http.Client // optional; a default client with Timeout is built when nil
	Logger  *slog.Logger
}

// NewFetcher creates a Fetcher with the given configuration.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Fetcher{
		client: client,
		rows:   cfg.Rows,
		cols:   cfg.Cols,
		logger: logger,
	}
}

// Fetch downloads url and resizes it to the tile resolution. On any failure
// (network, HTTP status, decode) it logs and returns a blank tile; the
// composite must never be aborted by a single source.
func (f *Fetcher) Fetch(ctx context.Context, url string) *image.RGBA {
	img, err := f.FetchStrict(ctx, url)
	if err != nil {
		f.logger.WarnContext(ctx, "tile fetch failed, using blank tile",
			"url", url,
			"error", err,
		)
		return Blank(f.rows, f.cols)
	}
	return img
}

// FetchStrict is Fetch without the blank-tile degradation: the error is
// propagated instead. Used by tests and diagnostics.
func (f *Fetcher) FetchStrict(ctx context.Context, url string) (*image.RGBA, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeFetchFailed, "building request", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeFetchFailed, "downloading "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewAppError(
			types.ErrCodeFetchFailed,
			fmt.Sprintf("downloading %s: unexpected status %d", url, resp.StatusCode),
			nil,
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeFetchFailed, "reading body of "+url, err)
	}

	src, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeFetchFailed, "decoding "+url, err)
	}

	return f.resize(src), nil
}

// resize scales src to exactly rows x cols. Drawing into an RGBA target
// also promotes grayscale and paletted sources to three color channels.
func (f *Fetcher) resize(src image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, f.cols, f.rows))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
