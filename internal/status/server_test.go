package status

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyview/internal/sequencer"
	"skyview/internal/types"
)

type stubImageWriter struct {
	payload []byte
	err     error
}

func (s *stubImageWriter) WriteImage(_ context.Context, w io.Writer) error {
	if s.err != nil {
		return s.err
	}
	_, err := w.Write(s.payload)
	return err
}

func TestHealthz(t *testing.T) {
	srv := NewServer(ServerConfig{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatus_BeforeFirstTick(t *testing.T) {
	srv := NewServer(ServerConfig{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatus_ReflectsLastTick(t *testing.T) {
	srv := NewServer(ServerConfig{})

	srv.Observer()(sequencer.TickResult{
		Time:       time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC),
		Night:      types.Night{Year: 2026, Month: time.March, Day: 14},
		Phase:      types.PhaseAcquiring,
		FrameIndex: 7,
		FramePath:  "/data/2026/03/14/overview/000007.jpg",
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var view map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "20260314", view["night"])
	assert.Equal(t, string(types.PhaseAcquiring), view["phase"])
	assert.EqualValues(t, 7, view["frame_index"])
}

func TestStatus_ReportsTickError(t *testing.T) {
	srv := NewServer(ServerConfig{})
	srv.Observer()(sequencer.TickResult{
		Night: types.Night{Year: 2026, Month: time.March, Day: 14},
		Phase: types.PhaseAcquiring,
		Err:   errors.New("disk full"),
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	var view map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "disk full", view["error"])
}

func TestLatest_ServesComposite(t *testing.T) {
	srv := NewServer(ServerConfig{
		Images: &stubImageWriter{payload: []byte{0xff, 0xd8, 0xff}},
	})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/latest.jpg", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, rec.Body.Bytes())
}

func TestLatest_WithoutImageSource(t *testing.T) {
	srv := NewServer(ServerConfig{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/latest.jpg", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
