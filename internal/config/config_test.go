package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	cfg, err := Load()
	if err == nil {
		// missing explicit file is an error; fall through to the default-path
		// case below
		t.Fatalf("expected error for missing explicit config file, got %+v", cfg)
	}

	t.Setenv(ConfigPathEnvVar, "")
	cfg, err = Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Crawl.MaxDepth != 4 || cfg.Crawl.Throttle != 800*time.Millisecond {
		t.Errorf("crawl defaults = %+v", cfg.Crawl)
	}
	if cfg.Server.Listen != ":8874" {
		t.Errorf("listen = %q", cfg.Server.Listen)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
}

func TestLoad_fileAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediadex.yaml")
	yaml := `
crawl:
  max_depth: 2
  throttle: 100ms
server:
  listen: ":9000"
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("MEDIADEX_CRAWL_MAX_DEPTH", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Crawl.MaxDepth != 7 {
		t.Errorf("max_depth = %d; env must beat file", cfg.Crawl.MaxDepth)
	}
	if cfg.Crawl.Throttle != 100*time.Millisecond {
		t.Errorf("throttle = %s; file must beat default", cfg.Crawl.Throttle)
	}
	if cfg.Server.Listen != ":9000" {
		t.Errorf("listen = %q", cfg.Server.Listen)
	}
	// untouched sections keep defaults
	if cfg.Catalog.Path != "catalog.json" {
		t.Errorf("catalog path = %q", cfg.Catalog.Path)
	}
}

func TestLoad_rejectsNegativeDepth(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("MEDIADEX_CRAWL_MAX_DEPTH", "-1")
	if _, err := Load(); err == nil {
		t.Error("expected validation error for negative max_depth")
	}
}

func TestEnvTransform(t *testing.T) {
	cases := []struct{ in, want string }{
		{"MEDIADEX_CRAWL_MAX_DEPTH", "crawl.max_depth"},
		{"MEDIADEX_SERVER_LISTEN", "server.listen"},
		{"MEDIADEX_METADATA_TMDB_API_KEY", "metadata.tmdb_api_key"},
		{"MEDIADEX_FETCH_TEXT_RELAY_PREFIX", "fetch.text_relay_prefix"},
	}
	for _, tc := range cases {
		if got := envTransform(tc.in); got != tc.want {
			t.Errorf("envTransform(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}
