package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mediadex/mediadex/internal/httpclient"
)

// CheckTarget fetches the crawl root once before a run starts. Returns nil if
// OK, error with message if not.
func CheckTarget(ctx context.Context, rootURL string) error {
	if rootURL == "" {
		return fmt.Errorf("no crawl target configured")
	}
	// Some index hosts don't support HEAD; use GET and drain the body.
	req, err := httpclient.NewRequest(ctx, rootURL)
	if err != nil {
		return err
	}
	client := httpclient.WithTimeout(15 * time.Second)
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("target unreachable: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("target returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// CheckEndpoints hits the serving endpoints at baseURL and returns the first
// error or nil. Used as a post-start smoke check.
func CheckEndpoints(ctx context.Context, baseURL string) error {
	client := httpclient.WithTimeout(5 * time.Second)
	for _, path := range []string{"/healthz", "/api/catalog", "/playlist.m3u"} {
		url := baseURL + path
		req, _ := httpclient.NewRequest(ctx, url)
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s: HTTP %d", path, resp.StatusCode)
		}
	}
	return nil
}
