// Package safeurl validates externally supplied URLs before the fetch layer
// touches them.
package safeurl

import (
	"fmt"
	"net/url"
)

// IsHTTPOrHTTPS returns true if u is a valid URL with scheme http or https.
// Used to reject file://, ftp://, and other schemes that could lead to SSRF
// or local file access.
func IsHTTPOrHTTPS(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	s := parsed.Scheme
	return s == "http" || s == "https"
}

// Check validates a crawl or relay target: http(s) scheme and a non-empty
// host. Returns a descriptive error suitable for an API response.
func Check(u string) error {
	if u == "" {
		return fmt.Errorf("url must not be empty")
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if s := parsed.Scheme; s != "http" && s != "https" {
		return fmt.Errorf("unsupported scheme %q", s)
	}
	if parsed.Host == "" {
		return fmt.Errorf("url has no host")
	}
	return nil
}
