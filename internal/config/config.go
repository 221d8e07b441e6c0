// Package config loads layered configuration: struct defaults, an optional
// YAML file, then MEDIADEX_-prefixed environment variables, in increasing
// precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces the environment variables this process reads.
const EnvPrefix = "MEDIADEX_"

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = EnvPrefix + "CONFIG"

// defaultConfigPaths are searched in order; the first existing file is used.
var defaultConfigPaths = []string{
	"mediadex.yaml",
	"mediadex.yml",
	"/etc/mediadex/config.yaml",
}

type Config struct {
	Crawl    CrawlConfig    `koanf:"crawl"`
	Fetch    FetchConfig    `koanf:"fetch"`
	Server   ServerConfig   `koanf:"server"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Store    StoreConfig    `koanf:"store"`
	Metadata MetadataConfig `koanf:"metadata"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type CrawlConfig struct {
	MaxDepth int           `koanf:"max_depth"`
	Throttle time.Duration `koanf:"throttle"`
}

type FetchConfig struct {
	// RelayBase is the local relay endpoint tried first; empty disables it.
	RelayBase string `koanf:"relay_base"`
	// TextRelayPrefix is the public text relay used as the last fallback.
	TextRelayPrefix string `koanf:"text_relay_prefix"`
}

type ServerConfig struct {
	Listen  string        `koanf:"listen"`
	Timeout time.Duration `koanf:"timeout"`
}

type CatalogConfig struct {
	Path string `koanf:"path"`
}

type StoreConfig struct {
	Path string `koanf:"path"`
}

type MetadataConfig struct {
	TMDBAPIKey string `koanf:"tmdb_api_key"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaults() *Config {
	return &Config{
		Crawl: CrawlConfig{
			MaxDepth: 4,
			Throttle: 800 * time.Millisecond,
		},
		Fetch: FetchConfig{
			RelayBase:       "",
			TextRelayPrefix: "",
		},
		Server: ServerConfig{
			Listen:  ":8874",
			Timeout: 30 * time.Second,
		},
		Catalog: CatalogConfig{
			Path: "catalog.json",
		},
		Store: StoreConfig{
			Path: "overrides.db",
		},
		Metadata: MetadataConfig{
			TMDBAPIKey: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the effective configuration. Env precedence example:
// MEDIADEX_CRAWL_MAX_DEPTH=2 overrides crawl.max_depth from file or defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envTransform maps MEDIADEX_CRAWL_MAX_DEPTH to crawl.max_depth. Only the
// first underscore becomes a section separator; the rest stay literal since
// key names themselves contain underscores.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Config) validate() error {
	if c.Crawl.MaxDepth < 0 {
		return fmt.Errorf("config: crawl.max_depth must be >= 0, got %d", c.Crawl.MaxDepth)
	}
	if c.Crawl.Throttle < 0 {
		return fmt.Errorf("config: crawl.throttle must be >= 0, got %s", c.Crawl.Throttle)
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("config: server.listen must not be empty")
	}
	return nil
}
