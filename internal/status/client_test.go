package status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statusDoc = `{
	"sky_magnitude": {"value": 21.3, "unit": "mag"},
	"current_min": {"value": 3.1, "unit": "uA"},
	"current_median": {"value": 4.2, "unit": "uA"},
	"current_max": {"value": 6.8, "unit": "uA"},
	"power": {"value": 121.4, "unit": "W"},
	"outside_temp": 8.5,
	"container_temp": 14.2,
	"camera_temp": 11.0,
	"source_name": "Mrk 421",
	"azimuth": {"value": 112.4, "unit": "deg"},
	"zenith_distance": {"value": 23.9, "unit": "deg"}
}`

func TestSnapshot_DecodesStatusDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(statusDoc))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{URL: srv.URL, Timeout: time.Second})
	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 21.3, snap.SkyMagnitude.Value)
	assert.Equal(t, "mag", snap.SkyMagnitude.Unit)
	assert.Equal(t, "Mrk 421", snap.SourceName)
	assert.Equal(t, 112.4, snap.Azimuth.Value)
	assert.Equal(t, 23.9, snap.ZenithDistance.Value)
	assert.Equal(t, 14.2, snap.ContainerTemp)
}

func TestSnapshot_ErrorsPropagate(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusBadGateway)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			c := NewClient(ClientConfig{URL: srv.URL, Timeout: time.Second})
			_, err := c.Snapshot(context.Background())
			require.Error(t, err)
		})
	}
}

func TestSnapshot_UnreachableHostErrors(t *testing.T) {
	c := NewClient(ClientConfig{URL: "http://127.0.0.1:1/status", Timeout: 100 * time.Millisecond})
	_, err := c.Snapshot(context.Background())
	require.Error(t, err)
}
