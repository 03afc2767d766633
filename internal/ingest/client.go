// Package ingest downloads the raw ball-by-ball dataset over HTTP.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Client fetches dataset files from a remote source.
type Client struct {
	rest *resty.Client
}

// NewClient creates a download client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(30 * time.Second)
	}
	r.SetRetryCount(2)
	return &Client{rest: r}
}

// Download fetches url into destPath, creating parent directories as
// needed. The response is streamed to disk rather than buffered.
func (c *Client) Download(ctx context.Context, url, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
		return fmt.Errorf("create dataset directory: %w", err)
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetOutput(destPath).
		Get(url)
	if err != nil {
		return fmt.Errorf("download dataset: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("download dataset: %s returned %s", url, resp.Status())
	}

	log.Info().Str("url", url).Str("dest", destPath).Msg("dataset downloaded")
	return nil
}
