// Package fetch resolves logical target URLs through an ordered chain of
// transport strategies: our local relay, a direct request, then a public text
// relay as last resort. The successful strategy and the page's link base are
// recorded so one crawl step resolves all its relative links consistently.
package fetch

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/mediadex/mediadex/internal/httpclient"
)

// maxBodySize caps how much of an index document is read: 8 MiB.
const maxBodySize = 8 << 20

// Config drives a Client. Zero values get safe defaults from New.
type Config struct {
	// RelayBase is the local relay endpoint (strategy 1). Empty disables it.
	RelayBase string
	// TextRelayPrefix is the public text relay (strategy 3). Empty disables it.
	TextRelayPrefix string
	// HTTPClient may be nil to use the shared tuned client.
	HTTPClient *http.Client
}

// Result is one successfully resolved document.
type Result struct {
	Body []byte
	// LinkBase is the normalized, trailing-slash-terminated absolute URL
	// relative hrefs in Body resolve against.
	LinkBase string
	// Strategy is the transport that succeeded.
	Strategy Strategy
}

// ChildFetchURL re-derives the fetch URL for a link found in this document,
// using the same strategy that fetched the document itself.
func (r *Result) ChildFetchURL(link string) string {
	return r.Strategy.FetchURL(link)
}

// Client tries each configured strategy in order until one succeeds.
type Client struct {
	http       *http.Client
	strategies []Strategy
}

// New builds a Client with the strategy chain implied by cfg: local relay
// (when configured), direct, text relay (when configured).
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = httpclient.Default()
	}
	var chain []Strategy
	if cfg.RelayBase != "" {
		chain = append(chain, LocalRelay{Base: cfg.RelayBase})
	}
	chain = append(chain, Direct{})
	if cfg.TextRelayPrefix != "" {
		chain = append(chain, TextRelay{Prefix: cfg.TextRelayPrefix})
	}
	return &Client{http: hc, strategies: chain}
}

// Resolve fetches raw through the strategy chain. When raw is already a
// proxied URL of one of the strategies, only that strategy is used. A 429
// from any strategy aborts immediately instead of falling through; the other
// failures are carried into the final error when every strategy fails.
func (c *Client) Resolve(ctx context.Context, raw string) (*Result, error) {
	target := raw
	chain := c.strategies
	for _, s := range c.strategies {
		if t, ok := s.Claims(raw); ok {
			target, chain = t, []Strategy{s}
			break
		}
	}

	var lastErr error
	for _, s := range chain {
		body, err := c.get(ctx, s.FetchURL(target))
		if err == nil {
			return &Result{Body: body, LinkBase: LinkBase(target), Strategy: s}, nil
		}
		if IsRateLimited(err) {
			return nil, err
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no transport strategy configured")
	}
	return nil, fmt.Errorf("all strategies failed for %s: %w", target, lastErr)
}

func (c *Client) get(ctx context.Context, fetchURL string) ([]byte, error) {
	req, err := httpclient.NewRequest(ctx, fetchURL)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &UpstreamHTTPError{URL: fetchURL, Status: resp.StatusCode}
	}

	var r io.Reader = io.LimitReader(resp.Body, maxBodySize)
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "br":
		r = brotli.NewReader(r)
	case "gzip":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(r)
}

// LinkBase normalizes a target URL to the absolute base its relative links
// resolve against: query and fragment dropped, path terminated with "/".
func LinkBase(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		if !strings.HasSuffix(target, "/") {
			return target + "/"
		}
		return target
	}
	u.RawQuery = ""
	u.Fragment = ""
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}
