package overview

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyview/internal/config"
	"skyview/internal/tiles"
	"skyview/internal/types"
)

func assemblerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// stubFetcher returns a tile whose red channel encodes the URL's index,
// after a random small delay so completion order differs from input order.
type stubFetcher struct {
	rows, cols int
	failAll    bool

	mu      sync.Mutex
	fetched []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) *image.RGBA {
	time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()

	if f.failAll {
		return tiles.Blank(f.rows, f.cols)
	}
	idx, _ := strconv.Atoi(url[len(url)-1:])
	img := tiles.Blank(f.rows, f.cols)
	for y := 0; y < f.rows; y++ {
		for x := 0; x < f.cols; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(idx + 1), A: 0xff})
		}
	}
	return img
}

// stubStatus fails or returns a fixed snapshot.
type stubStatus struct {
	err  error
	snap *types.StatusSnapshot
}

func (s *stubStatus) Snapshot(context.Context) (*types.StatusSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

func testOverviewConfig(urls []string) config.OverviewConfig {
	return config.OverviewConfig{
		TileURLs:         urls,
		TileRows:         32,
		TileCols:         32,
		GridRows:         3,
		GridCols:         4,
		FetchTimeout:     time.Second,
		FetchConcurrency: 6,
		JPEGQuality:      90,
	}
}

func TestBuild_ResultOrderMatchesURLOrder(t *testing.T) {
	urls := []string{"http://cam/0", "http://cam/1", "http://cam/2", "http://cam/3", "http://cam/4"}
	fetcher := &stubFetcher{rows: 32, cols: 32}

	a := NewAssembler(AssemblerConfig{
		Overview: testOverviewConfig(urls),
		Fetcher:  fetcher,
		Status:   &stubStatus{err: errors.New("unreachable")},
		Logger:   assemblerTestLogger(),
	})

	// Repeat to shake out ordering flakes from the random fetch delays.
	for round := 0; round < 5; round++ {
		got, err := a.Build(context.Background())
		require.NoError(t, err)

		for i := range urls {
			col := i % 4
			row := i / 4
			px := got.RGBAAt(col*32+16, row*32+16)
			assert.Equal(t, uint8(i+1), px.R, "grid cell %d holds the wrong tile", i)
		}
	}
}

func TestBuild_FullDegradationStillComposes(t *testing.T) {
	// Every remote source and the status source fail: the composite must
	// still be produced, all cells blank except the clock tile.
	urls := []string{"http://cam/0", "http://cam/1", "http://cam/2"}
	cfg := testOverviewConfig(urls)
	cfg.GridRows = 2
	cfg.GridCols = 2
	cfg.TileRows = 100
	cfg.TileCols = 100

	a := NewAssembler(AssemblerConfig{
		Overview: cfg,
		Fetcher:  &stubFetcher{rows: 100, cols: 100, failAll: true},
		Status:   &stubStatus{err: errors.New("unreachable")},
		Logger:   assemblerTestLogger(),
	})

	got, err := a.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200, got.Bounds().Dx())
	assert.Equal(t, 200, got.Bounds().Dy())

	// First three cells are blank webcam tiles.
	black := color.RGBA{A: 0xff}
	assert.Equal(t, black, got.RGBAAt(50, 50))
	assert.Equal(t, black, got.RGBAAt(150, 50))
	assert.Equal(t, black, got.RGBAAt(50, 150))
	// The fourth cell would be the status tile (blank), and the clock tile
	// is truncated by the 2x2 grid; the whole image must still be valid.
}

func TestBuild_StatusTileRendersWhenSourceHealthy(t *testing.T) {
	cfg := testOverviewConfig([]string{"http://cam/0"})
	cfg.GridRows = 1
	cfg.GridCols = 3
	cfg.TileRows = 120
	cfg.TileCols = 160

	a := NewAssembler(AssemblerConfig{
		Overview: cfg,
		Fetcher:  &stubFetcher{rows: 120, cols: 160, failAll: true},
		Status: &stubStatus{snap: &types.StatusSnapshot{
			SkyMagnitude: types.Measurement{Value: 21.2, Unit: "mag"},
			SourceName:   "Crab",
		}},
		Logger: assemblerTestLogger(),
	})

	got, err := a.Build(context.Background())
	require.NoError(t, err)

	// The status tile occupies the second cell; rendered text means some
	// red pixels.
	foundRed := false
	for y := 0; y < 120 && !foundRed; y++ {
		for x := 160; x < 320; x++ {
			if got.RGBAAt(x, y).R > 0 {
				foundRed = true
				break
			}
		}
	}
	assert.True(t, foundRed, "status tile has no rendered text")
}

func TestSaveImage_WritesDecodableJPEG(t *testing.T) {
	cfg := testOverviewConfig([]string{"http://cam/0"})
	a := NewAssembler(AssemblerConfig{
		Overview: cfg,
		Fetcher:  &stubFetcher{rows: 32, cols: 32},
		Logger:   assemblerTestLogger(),
	})

	path := filepath.Join(t.TempDir(), "000000.jpg")
	require.NoError(t, a.SaveImage(context.Background(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 4*32, img.Bounds().Dx())
	assert.Equal(t, 3*32, img.Bounds().Dy())
}

func TestSaveImage_FailedEncodeLeavesNoFrameFile(t *testing.T) {
	// The JPEG encoder rejects images with a dimension of 65536 or more,
	// so a 1x1 grid of such tiles fails after the output file was opened.
	// A leftover partial frame would be picked up by the sequence scan and
	// fed to the video encoder, so the target path must not exist.
	cfg := testOverviewConfig([]string{"http://cam/0"})
	cfg.GridRows = 1
	cfg.GridCols = 1
	cfg.TileRows = 1 << 16
	cfg.TileCols = 1

	a := NewAssembler(AssemblerConfig{
		Overview: cfg,
		Fetcher:  &stubFetcher{rows: 1 << 16, cols: 1, failAll: true},
		Logger:   assemblerTestLogger(),
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "000002.jpg")
	err := a.SaveImage(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, types.ErrCodeWriteFailed, types.CodeOf(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed save must not leave files behind")
}

func TestSaveImage_WriteFailureIsSurfaced(t *testing.T) {
	cfg := testOverviewConfig([]string{"http://cam/0"})
	a := NewAssembler(AssemblerConfig{
		Overview: cfg,
		Fetcher:  &stubFetcher{rows: 32, cols: 32},
		Logger:   assemblerTestLogger(),
	})

	err := a.SaveImage(context.Background(), filepath.Join(t.TempDir(), "missing", "000000.jpg"))
	require.Error(t, err)
	assert.Equal(t, types.ErrCodeWriteFailed, types.CodeOf(err))
}
