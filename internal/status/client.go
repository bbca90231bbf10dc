// Package status talks to the telescope status collaborator and exposes the
// daemon's own read-only HTTP surface.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"skyview/internal/types"
)

// Client fetches one StatusSnapshot per call from the telescope status
// endpoint. The document is consumed read-only; any failure here degrades
// the status tile to blank upstream.
type Client struct {
	url    string
	client *http.Client
}

// ClientConfig holds the configuration for creating a Client.
type ClientConfig struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client // optional; a default client with Timeout is built when nil
}

// NewClient creates a status Client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{url: cfg.URL, client: client}
}

// Snapshot fetches and decodes the current status document.
func (c *Client) Snapshot(ctx context.Context) (*types.StatusSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeRenderFailed, "building status request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeRenderFailed, "fetching status", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewAppError(
			types.ErrCodeRenderFailed,
			fmt.Sprintf("fetching status: unexpected status %d", resp.StatusCode),
			nil,
		)
	}

	var snap types.StatusSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, types.NewAppError(types.ErrCodeRenderFailed, "decoding status document", err)
	}
	return &snap, nil
}
