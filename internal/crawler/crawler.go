// Package crawler walks a remote HTTP directory index breadth-first and emits
// the playable files it finds. Traversal is deliberately single-threaded with
// an inter-request delay: the targets are unauthenticated static indexes and
// politeness matters more than speed here. Do not parallelize without an
// explicit opt-in.
package crawler

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/mediadex/mediadex/internal/catalog"
	"github.com/mediadex/mediadex/internal/fetch"
	"github.com/mediadex/mediadex/internal/listing"
)

const (
	DefaultMaxDepth = 4
	DefaultThrottle = 800 * time.Millisecond
)

// videoExts is the fixed set of extensions accepted as playable files.
var videoExts = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".m4v": true,
	".ts": true, ".webm": true, ".flv": true, ".mpg": true, ".mpeg": true,
	".wmv": true,
}

// EventType tags a discovery callback invocation.
type EventType int

const (
	EventDir EventType = iota
	EventFile
)

// Event is one discovery, reported synchronously as the crawl progresses.
type Event struct {
	Type  EventType
	Name  string
	URL   string
	Depth int
}

// Options configures one crawl run. Zero values get defaults.
type Options struct {
	MaxDepth   int           // default 4
	Throttle   time.Duration // delay between queue items; default 800ms
	Client     *fetch.Client // default fetch.New(fetch.Config{})
	OnDiscover func(Event)   // optional progress callback
	Logger     zerolog.Logger
}

// Stats summarizes one crawl run.
type Stats struct {
	Pages    int
	Files    int
	Errors   int
	Duration time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf("pages=%d files=%d errs=%d dur=%s", s.Pages, s.Files, s.Errors, s.Duration.Round(time.Millisecond))
}

type item struct {
	fetchURL string
	linkURL  string
	relPath  string
	depth    int
}

// Crawl walks baseURL breadth-first up to opts.MaxDepth. Each crawl owns its
// own queue and seen-set; no state crosses runs. A root failure or a 429 at
// any depth is fatal; other branch failures are logged and abandoned.
// Cancellation is cooperative (checked between queue items) and returns the
// files found so far without an error.
func Crawl(ctx context.Context, baseURL string, opts Options) ([]catalog.DiscoveredFile, error) {
	files, _, err := CrawlStats(ctx, baseURL, opts)
	return files, err
}

// CrawlStats is Crawl plus per-run counters.
func CrawlStats(ctx context.Context, baseURL string, opts Options) ([]catalog.DiscoveredFile, Stats, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Throttle <= 0 {
		opts.Throttle = DefaultThrottle
	}
	if opts.Client == nil {
		opts.Client = fetch.New(fetch.Config{})
	}
	log := opts.Logger

	start := time.Now()
	var stats Stats
	var files []catalog.DiscoveredFile

	queue := []item{{fetchURL: baseURL, linkURL: baseURL, depth: 0}}
	seen := map[string]bool{baseURL: true}
	// Burst 1: the first fetch goes out immediately, every later one waits
	// out the throttle interval. The wait only ever happens when another
	// queue item exists.
	limiter := rate.NewLimiter(rate.Every(opts.Throttle), 1)

	for len(queue) > 0 {
		if ctx.Err() != nil {
			log.Info().Int("files", len(files)).Msg("crawl canceled; returning partial results")
			stats.Duration = time.Since(start)
			return files, stats, nil
		}
		if err := limiter.Wait(ctx); err != nil {
			stats.Duration = time.Since(start)
			return files, stats, nil
		}

		it := queue[0]
		queue = queue[1:]

		res, err := opts.Client.Resolve(ctx, it.fetchURL)
		if err != nil {
			if fetch.IsRateLimited(err) {
				stats.Duration = time.Since(start)
				return files, stats, err
			}
			if it.depth == 0 {
				stats.Duration = time.Since(start)
				return files, stats, fmt.Errorf("crawl root %s: %w", baseURL, err)
			}
			branchErrors.Inc()
			stats.Errors++
			log.Warn().Err(err).Str("url", it.linkURL).Int("depth", it.depth).Msg("branch abandoned")
			continue
		}
		pagesFetched.Inc()
		stats.Pages++

		base, err := url.Parse(res.LinkBase)
		if err != nil {
			continue
		}
		for _, entry := range listing.Parse(res.Body) {
			ref, err := url.Parse(entry.Href)
			if err != nil {
				continue
			}
			linkURL := base.ResolveReference(ref).String()

			if entry.IsDir {
				if it.depth >= opts.MaxDepth {
					continue
				}
				childFetch := res.ChildFetchURL(linkURL)
				if seen[childFetch] {
					continue
				}
				seen[childFetch] = true
				// One dir event per directory actually entered; repeat links
				// and depth-capped directories stay silent.
				emit(opts.OnDiscover, Event{Type: EventDir, Name: entry.Name, URL: linkURL, Depth: it.depth})
				queue = append(queue, item{
					fetchURL: childFetch,
					linkURL:  linkURL,
					relPath:  path.Join(it.relPath, entry.Name),
					depth:    it.depth + 1,
				})
				continue
			}

			if !videoExts[strings.ToLower(path.Ext(entry.Name))] {
				continue
			}
			f := catalog.DiscoveredFile{
				Name:  entry.Name,
				URL:   linkURL,
				Path:  path.Join(it.relPath, entry.Name),
				Depth: it.depth,
			}
			files = append(files, f)
			filesDiscovered.Inc()
			stats.Files++
			emit(opts.OnDiscover, Event{Type: EventFile, Name: entry.Name, URL: linkURL, Depth: it.depth})
		}
	}

	stats.Duration = time.Since(start)
	return files, stats, nil
}

func emit(cb func(Event), ev Event) {
	if cb != nil {
		cb(ev)
	}
}
