package fetch

import (
	"net/url"
	"strings"
)

// Strategy is one transport for resolving a logical target URL. Strategies
// are tried strictly in order; the one that succeeds is recorded on the
// Result so relative links found in the body are fetched the same way.
type Strategy interface {
	Name() string
	// FetchURL maps a logical target URL to the URL actually requested.
	FetchURL(target string) string
	// Claims reports whether raw is already a proxied URL of this strategy
	// and, if so, the logical target encoded in it.
	Claims(raw string) (target string, ok bool)
}

// LocalRelay fetches server-side through our own relay endpoint
// (GET <base>?url=<target>).
type LocalRelay struct {
	Base string // e.g. http://127.0.0.1:5080/relay
}

func (s LocalRelay) Name() string { return "local-relay" }

func (s LocalRelay) FetchURL(target string) string {
	return s.Base + "?url=" + url.QueryEscape(target)
}

func (s LocalRelay) Claims(raw string) (string, bool) {
	prefix := s.Base + "?url="
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	target, err := url.QueryUnescape(strings.TrimPrefix(raw, prefix))
	if err != nil {
		return "", false
	}
	return target, true
}

// Direct requests the target straight from the caller.
type Direct struct{}

func (Direct) Name() string                  { return "direct" }
func (Direct) FetchURL(target string) string { return target }
func (Direct) Claims(string) (string, bool)  { return "", false }

// TextRelay is a public read-only text relay used as last resort; the target
// URL is appended to the relay prefix.
type TextRelay struct {
	Prefix string // e.g. https://r.jina.ai/
}

func (s TextRelay) Name() string { return "text-relay" }

func (s TextRelay) FetchURL(target string) string {
	return s.Prefix + target
}

func (s TextRelay) Claims(raw string) (string, bool) {
	if !strings.HasPrefix(raw, s.Prefix) || raw == s.Prefix {
		return "", false
	}
	return strings.TrimPrefix(raw, s.Prefix), true
}
