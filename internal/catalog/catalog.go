// Package catalog holds the show/movie candidate model built from crawled
// files, plus JSON persistence for it.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
)

// DiscoveredFile is one playable file found by the crawler. Immutable, scoped
// to a single crawl run.
type DiscoveredFile struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Path  string `json:"path"` // slash-joined path relative to the crawl root
	Depth int    `json:"depth"`
}

// EpisodeRef is one discovered episode file of a show.
type EpisodeRef struct {
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
	URL     string `json:"url"`
	Name    string `json:"name"`
	Path    string `json:"path"`
}

// ShowCandidate groups every episode file that classified to the same show.
// Key is the lowercased show title and is unique within one aggregation run.
type ShowCandidate struct {
	Key      string       `json:"key"`
	Title    string       `json:"title"`
	Episodes []EpisodeRef `json:"episodes"`
}

// MovieEntry is one physical file of a logical movie (extras and re-encodes
// may map several files onto one movie).
type MovieEntry struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// MovieCandidate groups movie files under lowercase(title)+"|"+year.
type MovieCandidate struct {
	Key     string       `json:"key"`
	Title   string       `json:"title"`
	Year    string       `json:"year,omitempty"`
	Entries []MovieEntry `json:"entries"`
}

// Catalog is the aggregated crawl result. Safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	Shows  []ShowCandidate  `json:"shows"`
	Movies []MovieCandidate `json:"movies"`
}

// New returns an empty catalog.
func New() *Catalog { return &Catalog{} }

// Replace swaps in a new aggregation result.
func (c *Catalog) Replace(shows []ShowCandidate, movies []MovieCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Shows = shows
	c.Movies = movies
}

// Snapshot returns copies of both collections for read-only use.
func (c *Catalog) Snapshot() (shows []ShowCandidate, movies []MovieCandidate) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	shows = make([]ShowCandidate, len(c.Shows))
	copy(shows, c.Shows)
	movies = make([]MovieCandidate, len(c.Movies))
	copy(movies, c.Movies)
	return shows, movies
}

// Save writes the catalog to path as JSON using temp-file-then-rename so
// readers never see a partially written file.
func (c *Catalog) Save(path string) error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return err
	}
	dir := filepath.Dir(filepath.Clean(path))
	tmp, err := os.CreateTemp(dir, ".catalog-*.json.tmp")
	if err != nil {
		return fmt.Errorf("catalog save: create temp: %w", err)
	}
	tmpName := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmpName)
		if writeErr != nil {
			return fmt.Errorf("catalog save: write: %w", writeErr)
		}
		return fmt.Errorf("catalog save: close: %w", closeErr)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("catalog save: rename: %w", err)
	}
	return nil
}

// Load replaces the catalog with the contents of path.
func (c *Catalog) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var out struct {
		Shows  []ShowCandidate  `json:"shows"`
		Movies []MovieCandidate `json:"movies"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	c.Replace(out.Shows, out.Movies)
	return nil
}
