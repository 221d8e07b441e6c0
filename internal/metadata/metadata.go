// Package metadata looks up titles, artwork and episode lists from TMDB to
// attach identity to catalog candidates.
package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/mediadex/mediadex/internal/httpclient"
)

// Kind selects the TMDB namespace for lookups and searches.
type Kind string

const (
	KindMovie Kind = "movie"
	KindShow  Kind = "tv"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	posterBaseURL  = "https://image.tmdb.org/t/p/w500"
	maxSearchHits  = 8
	requestTimeout = 10 * time.Second
	maxSeasonFetch = 40
)

// Details is the full record for one title.
type Details struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Overview string   `json:"overview"`
	Poster   string   `json:"poster"`
	Seasons  []Season `json:"seasons,omitempty"`
}

// Season holds the episode list for one show season.
type Season struct {
	Number   int       `json:"number"`
	Name     string    `json:"name"`
	Episodes []Episode `json:"episodes"`
}

// Episode is one entry in a season's episode list.
type Episode struct {
	Number   int    `json:"number"`
	Title    string `json:"title"`
	Overview string `json:"overview"`
	AirDate  string `json:"airDate"`
}

// SearchResult is one hit from a text search.
type SearchResult struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	Poster      string  `json:"poster"`
	Date        string  `json:"date"`
	VoteAverage float64 `json:"voteAverage"`
}

// Client talks to the TMDB v3 API.
type Client struct {
	apiKey  string
	baseURL string
	posters string
	http    *http.Client
	log     zerolog.Logger
}

// Option adjusts a Client; used by tests to point at a local server.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithPosterBase(u string) Option {
	return func(c *Client) { c.posters = u }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(apiKey string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		posters: posterBaseURL,
		http:    httpclient.WithTimeout(requestTimeout),
		log:     log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// raw wire shapes; TMDB uses title/name depending on namespace
type tmdbTitle struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	Seasons      []struct {
		SeasonNumber int    `json:"season_number"`
		Name         string `json:"name"`
	} `json:"seasons"`
}

type tmdbSeason struct {
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	Episodes     []struct {
		EpisodeNumber int    `json:"episode_number"`
		Name          string `json:"name"`
		Overview      string `json:"overview"`
		AirDate       string `json:"air_date"`
	} `json:"episodes"`
}

type tmdbSearch struct {
	Results []tmdbTitle `json:"results"`
}

// LookupByID fetches the full record for one title. For shows the per-season
// episode lists are fetched too; a season that fails to load is logged and
// skipped rather than failing the whole lookup.
func (c *Client) LookupByID(ctx context.Context, kind Kind, id int64) (*Details, error) {
	var raw tmdbTitle
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", kind, id), nil, &raw); err != nil {
		return nil, fmt.Errorf("metadata lookup %s/%d: %w", kind, id, err)
	}
	d := &Details{
		ID:       raw.ID,
		Title:    pickTitle(raw),
		Overview: raw.Overview,
		Poster:   c.posterURL(raw.PosterPath),
	}
	if kind != KindShow {
		return d, nil
	}
	for i, s := range raw.Seasons {
		if i >= maxSeasonFetch {
			break
		}
		season, err := c.season(ctx, id, s.SeasonNumber)
		if err != nil {
			c.log.Warn().Err(err).Int64("show", id).Int("season", s.SeasonNumber).
				Msg("season fetch failed, skipping")
			continue
		}
		d.Seasons = append(d.Seasons, season)
	}
	return d, nil
}

func (c *Client) season(ctx context.Context, showID int64, n int) (Season, error) {
	var raw tmdbSeason
	if err := c.get(ctx, fmt.Sprintf("/tv/%d/season/%d", showID, n), nil, &raw); err != nil {
		return Season{}, err
	}
	s := Season{Number: raw.SeasonNumber, Name: raw.Name}
	for _, ep := range raw.Episodes {
		s.Episodes = append(s.Episodes, Episode{
			Number:   ep.EpisodeNumber,
			Title:    ep.Name,
			Overview: ep.Overview,
			AirDate:  ep.AirDate,
		})
	}
	return s, nil
}

// SearchByText runs a text search and returns at most eight hits. An empty
// query or any upstream failure yields an empty list, never an error: search
// is advisory and the caller always has the filename-derived identity to fall
// back on.
func (c *Client) SearchByText(ctx context.Context, kind Kind, query string) []SearchResult {
	if query == "" {
		return nil
	}
	var raw tmdbSearch
	q := url.Values{"query": {query}}
	if err := c.get(ctx, fmt.Sprintf("/search/%s", kind), q, &raw); err != nil {
		c.log.Warn().Err(err).Str("query", query).Msg("metadata search failed")
		return nil
	}
	out := make([]SearchResult, 0, maxSearchHits)
	for _, r := range raw.Results {
		if len(out) == maxSearchHits {
			break
		}
		date := r.ReleaseDate
		if date == "" {
			date = r.FirstAirDate
		}
		out = append(out, SearchResult{
			ID:          r.ID,
			Title:       pickTitle(r),
			Overview:    r.Overview,
			Poster:      c.posterURL(r.PosterPath),
			Date:        date,
			VoteAverage: r.VoteAverage,
		})
	}
	return out
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if c.apiKey == "" {
		return fmt.Errorf("api key not configured")
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.apiKey)
	req, err := httpclient.NewRequest(ctx, c.baseURL+path+"?"+q.Encode())
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) posterURL(path string) string {
	if path == "" {
		return ""
	}
	return c.posters + path
}

func pickTitle(t tmdbTitle) string {
	if t.Title != "" {
		return t.Title
	}
	return t.Name
}
