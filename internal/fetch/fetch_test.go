package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
)

func TestResolve_directSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := New(Config{})
	res, err := c.Resolve(context.Background(), srv.URL+"/dir")
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Body) != "hello" {
		t.Errorf("body = %q", res.Body)
	}
	if res.Strategy.Name() != "direct" {
		t.Errorf("strategy = %q", res.Strategy.Name())
	}
	if res.LinkBase != srv.URL+"/dir/" {
		t.Errorf("link base = %q", res.LinkBase)
	}
}

func TestResolve_fallsThroughToTextRelay(t *testing.T) {
	// Direct target always 500s; the relay prefix serves the page.
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer target.Close()
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("via relay"))
	}))
	defer relay.Close()

	c := New(Config{TextRelayPrefix: relay.URL + "/"})
	res, err := c.Resolve(context.Background(), target.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Body) != "via relay" || res.Strategy.Name() != "text-relay" {
		t.Errorf("res = %q via %q", res.Body, res.Strategy.Name())
	}
}

func TestResolve_429AbortsWithoutFallback(t *testing.T) {
	var relayHits int
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer target.Close()
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		relayHits++
		w.Write([]byte("should never be used"))
	}))
	defer relay.Close()

	c := New(Config{TextRelayPrefix: relay.URL + "/"})
	_, err := c.Resolve(context.Background(), target.URL)
	if !IsRateLimited(err) {
		t.Fatalf("err = %v; want rate-limited", err)
	}
	if relayHits != 0 {
		t.Errorf("relay was hit %d times after a 429", relayHits)
	}
}

func TestResolve_alreadyProxiedSkipsStraightToStrategy(t *testing.T) {
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("url") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte("proxied"))
	}))
	defer relay.Close()

	c := New(Config{RelayBase: relay.URL + "/relay"})
	proxied := (LocalRelay{Base: relay.URL + "/relay"}).FetchURL("http://origin.invalid/dir/")
	res, err := c.Resolve(context.Background(), proxied)
	if err != nil {
		t.Fatal(err)
	}
	if res.Strategy.Name() != "local-relay" || string(res.Body) != "proxied" {
		t.Errorf("res = %q via %q", res.Body, res.Strategy.Name())
	}
	// Link base must come from the logical target, not the proxied URL.
	if res.LinkBase != "http://origin.invalid/dir/" {
		t.Errorf("link base = %q", res.LinkBase)
	}
}

func TestGet_brotliBody(t *testing.T) {
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	bw.Write([]byte("compressed listing"))
	bw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	c := New(Config{})
	res, err := c.Resolve(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Body) != "compressed listing" {
		t.Errorf("body = %q", res.Body)
	}
}

func TestLinkBase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"http://h/a/b/", "http://h/a/b/"},
		{"http://h/a/b", "http://h/a/b/"},
		{"http://h/a/b?C=N;O=D", "http://h/a/b/"},
		{"http://h", "http://h/"},
	}
	for _, tt := range tests {
		if got := LinkBase(tt.in); got != tt.want {
			t.Errorf("LinkBase(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
