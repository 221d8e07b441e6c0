// Command mediadex: crawl an HTTP media index into a catalog, normalize IPTV
// playlists, infer episode URL templates, or serve the result.
//
//	crawl      Walk a directory index, classify filenames, save the catalog
//	normalize  Parse a playlist, infer groups, dedupe, emit a cleaned M3U
//	pattern    Infer a URL template with season/episode placeholders from samples
//	serve      Host the catalog API, relay endpoint and normalized playlist
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediadex/mediadex/internal/catalog"
	"github.com/mediadex/mediadex/internal/config"
	"github.com/mediadex/mediadex/internal/crawler"
	"github.com/mediadex/mediadex/internal/fetch"
	"github.com/mediadex/mediadex/internal/health"
	"github.com/mediadex/mediadex/internal/logging"
	"github.com/mediadex/mediadex/internal/metadata"
	"github.com/mediadex/mediadex/internal/pattern"
	"github.com/mediadex/mediadex/internal/playlist"
	"github.com/mediadex/mediadex/internal/safeurl"
	"github.com/mediadex/mediadex/internal/server"
	"github.com/mediadex/mediadex/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	switch os.Args[1] {
	case "crawl":
		cmdCrawl(cfg, log, os.Args[2:])
	case "normalize":
		cmdNormalize(log, os.Args[2:])
	case "pattern":
		cmdPattern(os.Args[2:])
	case "serve":
		cmdServe(cfg, log, os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: mediadex <command> [flags]

  crawl <rootURL>        walk a directory index and save the catalog
  normalize <playlist>   clean, dedupe and re-emit a playlist
  pattern <url> <url>..  infer a URL template from sample episode URLs
  serve                  host catalog API, relay and normalized playlist
`)
}

func cmdCrawl(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("crawl", flag.ExitOnError)
	depth := fs.Int("depth", cfg.Crawl.MaxDepth, "max traversal depth")
	throttle := fs.Duration("throttle", cfg.Crawl.Throttle, "delay between requests")
	out := fs.String("out", cfg.Catalog.Path, "catalog output path")
	skipCheck := fs.Bool("skip-check", false, "skip the pre-crawl target health check")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mediadex crawl [flags] <rootURL>")
		os.Exit(2)
	}
	root := fs.Arg(0)
	if err := safeurl.Check(root); err != nil {
		log.Fatal().Err(err).Msg("invalid crawl root")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !*skipCheck {
		if err := health.CheckTarget(ctx, root); err != nil {
			log.Fatal().Err(err).Msg("crawl target check failed")
		}
	}

	client := fetch.New(fetch.Config{
		RelayBase:       cfg.Fetch.RelayBase,
		TextRelayPrefix: cfg.Fetch.TextRelayPrefix,
	})
	files, stats, err := crawler.CrawlStats(ctx, root, crawler.Options{
		MaxDepth: *depth,
		Throttle: *throttle,
		Client:   client,
		Logger:   log,
		OnDiscover: func(ev crawler.Event) {
			if ev.Type == crawler.EventFile {
				log.Debug().Str("name", ev.Name).Int("depth", ev.Depth).Msg("file")
			}
		},
	})
	if err != nil {
		log.Fatal().Err(err).Str("detail", fetch.Describe(err)).Msg("crawl failed")
	}

	shows, movies := catalog.Aggregate(files)
	c := catalog.New()
	c.Replace(shows, movies)
	if err := c.Save(*out); err != nil {
		log.Fatal().Err(err).Msg("catalog save failed")
	}
	log.Info().
		Int("shows", len(shows)).
		Int("movies", len(movies)).
		Stringer("stats", stats).
		Str("path", *out).
		Msg("catalog saved")
}

func cmdNormalize(log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	out := fs.String("o", "", "output path (default stdout)")
	liveOnly := fs.Bool("live-only", false, "emit only live channels")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mediadex normalize [flags] <playlist.m3u>")
		os.Exit(2)
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("open playlist")
	}
	defer f.Close()
	res, err := playlist.Normalize(f)
	if err != nil {
		log.Fatal().Err(err).Msg("normalize playlist")
	}

	entries := res.Live
	if !*liveOnly {
		entries = append(entries, res.VOD...)
	}

	w := os.Stdout
	if *out != "" {
		w, err = os.Create(*out)
		if err != nil {
			log.Fatal().Err(err).Msg("create output")
		}
		defer w.Close()
	}
	if err := playlist.WriteM3U(w, entries); err != nil {
		log.Fatal().Err(err).Msg("write playlist")
	}
	log.Info().Int("live", len(res.Live)).Int("vod", len(res.VOD)).Msg("playlist normalized")
}

func cmdPattern(args []string) {
	fs := flag.NewFlagSet("pattern", flag.ExitOnError)
	season := fs.Int("season", 1, "season for the example fill")
	episode := fs.Int("episode", 1, "episode for the example fill")
	_ = fs.Parse(args)
	samples := fs.Args()

	tpl, err := pattern.Infer(samples)
	if err != nil {
		if errors.Is(err, pattern.ErrInsufficientSamples) {
			fmt.Fprintln(os.Stderr, "need at least two sample URLs")
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "infer: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("pattern: %s\n", tpl.Pattern)
	if tpl.Note != "" {
		fmt.Printf("note:    %s\n", tpl.Note)
	}
	if tpl.Pattern != "" {
		fmt.Printf("example: %s\n", tpl.Fill(*season, *episode))
	}
}

func cmdServe(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	listen := fs.String("listen", cfg.Server.Listen, "listen address")
	catalogPath := fs.String("catalog", cfg.Catalog.Path, "catalog path to load and persist")
	playlistPath := fs.String("playlist", "", "source playlist served normalized at /playlist.m3u")
	_ = fs.Parse(args)

	c := catalog.New()
	if err := c.Load(*catalogPath); err != nil {
		log.Warn().Err(err).Str("path", *catalogPath).Msg("no catalog loaded; starting empty")
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("open override store")
	}
	defer st.Close()

	client := fetch.New(fetch.Config{
		RelayBase:       cfg.Fetch.RelayBase,
		TextRelayPrefix: cfg.Fetch.TextRelayPrefix,
	})
	var meta *metadata.Client
	if cfg.Metadata.TMDBAPIKey != "" {
		meta = metadata.New(cfg.Metadata.TMDBAPIKey, log)
	} else {
		log.Info().Msg("no TMDB API key; metadata lookup disabled")
	}
	srv := server.New(server.Options{
		Catalog:      c,
		Store:        st,
		Fetcher:      client,
		Metadata:     meta,
		Crawl:        cfg.Crawl,
		CatalogPath:  *catalogPath,
		PlaylistPath: *playlistPath,
		Logger:       log,
	})

	httpSrv := &http.Server{
		Addr:              *listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", *listen).Msg("serving")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
}
