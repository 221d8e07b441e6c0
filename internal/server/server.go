// Package server exposes the catalog over HTTP: a relay endpoint for the
// fetch layer, the normalized playlist for external players, a small JSON API
// for crawls and override edits, and the usual health/metrics endpoints.
package server

import (
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mediadex/mediadex/internal/catalog"
	"github.com/mediadex/mediadex/internal/config"
	"github.com/mediadex/mediadex/internal/fetch"
	"github.com/mediadex/mediadex/internal/httpclient"
	"github.com/mediadex/mediadex/internal/metadata"
	"github.com/mediadex/mediadex/internal/playlist"
	"github.com/mediadex/mediadex/internal/safeurl"
	"github.com/mediadex/mediadex/internal/store"
)

// Options wires a Server. Catalog is required; Store and PlaylistPath are
// optional features that 404 when unset.
type Options struct {
	Catalog      *catalog.Catalog
	Store        *store.Store
	Fetcher      *fetch.Client
	Metadata     *metadata.Client // nil disables /api/search and /api/lookup
	Crawl        config.CrawlConfig
	CatalogPath  string // when set, a finished crawl persists here
	PlaylistPath string // source playlist served normalized at /playlist.m3u
	Logger       zerolog.Logger
}

type Server struct {
	opts  Options
	log   zerolog.Logger
	relay *http.Client
	jobs  *jobSet
}

func New(opts Options) *Server {
	if opts.Fetcher == nil {
		opts.Fetcher = fetch.New(fetch.Config{})
	}
	return &Server{
		opts:  opts,
		log:   opts.Logger,
		relay: httpclient.Default(),
		jobs:  newJobSet(),
	}
}

// Router builds the route table. Mounted at / by the caller.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/relay", s.handleRelay)
	r.Get("/playlist.m3u", s.handlePlaylist)
	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Post("/crawl", s.handleCrawlStart)
		r.Get("/crawl/{id}", s.handleCrawlStatus)
		r.Delete("/crawl/{id}", s.handleCrawlCancel)
		r.Get("/overrides", s.handleOverridesList)
		r.Put("/overrides/{key}", s.handleOverridePut)
		r.Delete("/overrides/{key}", s.handleOverrideDelete)
		r.Get("/search", s.handleSearch)
		r.Get("/lookup/{kind}/{id}", s.handleLookup)
	})
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRelay proxies one upstream GET. The fetch layer's first strategy
// points here, so a crawl through the relay funnels all upstream traffic
// through this process.
func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if err := safeurl.Check(target); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := httpclient.NewRequest(r.Context(), target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.relay.Do(req)
	if err != nil {
		s.log.Warn().Err(err).Str("url", target).Msg("relay upstream failed")
		writeError(w, http.StatusBadGateway, "upstream unreachable")
		return
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.log.Debug().Err(err).Str("url", target).Msg("relay copy aborted")
	}
}

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	if s.opts.PlaylistPath == "" {
		writeError(w, http.StatusNotFound, "no playlist configured")
		return
	}
	f, err := os.Open(s.opts.PlaylistPath)
	if err != nil {
		s.log.Error().Err(err).Str("path", s.opts.PlaylistPath).Msg("playlist open failed")
		writeError(w, http.StatusInternalServerError, "playlist unavailable")
		return
	}
	defer f.Close()
	res, err := playlist.Normalize(f)
	if err != nil {
		s.log.Error().Err(err).Msg("playlist normalize failed")
		writeError(w, http.StatusInternalServerError, "playlist unavailable")
		return
	}
	w.Header().Set("Content-Type", "audio/x-mpegurl")
	all := append(res.Live, res.VOD...)
	if err := playlist.WriteM3U(w, all); err != nil {
		s.log.Debug().Err(err).Msg("playlist write aborted")
	}
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	shows, movies := s.opts.Catalog.Snapshot()
	if s.opts.Store != nil {
		var err error
		shows, movies, err = s.opts.Store.Apply(shows, movies)
		if err != nil {
			s.log.Error().Err(err).Msg("override apply failed")
			writeError(w, http.StatusInternalServerError, "catalog unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"shows":  shows,
		"movies": movies,
	})
}

func (s *Server) handleOverridesList(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		writeError(w, http.StatusNotFound, "overrides not configured")
		return
	}
	all, err := s.opts.Store.All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if all == nil {
		all = []store.Override{}
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleOverridePut(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		writeError(w, http.StatusNotFound, "overrides not configured")
		return
	}
	var o store.Override
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	o.Key = chi.URLParam(r, "key")
	if err := s.opts.Store.Put(o); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleOverrideDelete(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		writeError(w, http.StatusNotFound, "overrides not configured")
		return
	}
	if err := s.opts.Store.Delete(chi.URLParam(r, "key")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseKind(s string) (metadata.Kind, bool) {
	switch s {
	case "movie":
		return metadata.KindMovie, true
	case "tv", "show", "series":
		return metadata.KindShow, true
	}
	return "", false
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.opts.Metadata == nil {
		writeError(w, http.StatusNotFound, "metadata lookup not configured")
		return
	}
	kind, ok := parseKind(r.URL.Query().Get("kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "kind must be movie or tv")
		return
	}
	hits := s.opts.Metadata.SearchByText(r.Context(), kind, r.URL.Query().Get("q"))
	if hits == nil {
		hits = []metadata.SearchResult{}
	}
	writeJSON(w, http.StatusOK, hits)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if s.opts.Metadata == nil {
		writeError(w, http.StatusNotFound, "metadata lookup not configured")
		return
	}
	kind, ok := parseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "kind must be movie or tv")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be numeric")
		return
	}
	d, err := s.opts.Metadata.LookupByID(r.Context(), kind, id)
	if err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Int64("id", id).Msg("metadata lookup failed")
		writeError(w, http.StatusBadGateway, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
