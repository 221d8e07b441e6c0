package catalog

import (
	"sort"
	"strings"

	"github.com/mediadex/mediadex/internal/classify"
)

// Aggregate folds a flat crawl result through the filename classifier into
// show and movie candidates, keyed as documented on the types. Duplicate
// season/episode pairs are kept as-is; choosing between duplicate URLs is the
// metadata step's problem, not ours. Both collections come back sorted
// case-insensitively by title; episode lists are ordered by (season, episode).
func Aggregate(files []DiscoveredFile) ([]ShowCandidate, []MovieCandidate) {
	shows := map[string]*ShowCandidate{}
	movies := map[string]*MovieCandidate{}

	for _, f := range files {
		id := classify.Classify(f.Name)
		switch id.Kind {
		case classify.KindEpisode:
			key := strings.ToLower(id.Show)
			sc, ok := shows[key]
			if !ok {
				sc = &ShowCandidate{Key: key, Title: id.Show}
				shows[key] = sc
			}
			sc.Episodes = append(sc.Episodes, EpisodeRef{
				Season:  id.Season,
				Episode: id.Episode,
				URL:     f.URL,
				Name:    f.Name,
				Path:    f.Path,
			})
		case classify.KindMovie:
			key := strings.ToLower(id.Title) + "|" + id.Year
			mc, ok := movies[key]
			if !ok {
				mc = &MovieCandidate{Key: key, Title: id.Title, Year: id.Year}
				movies[key] = mc
			}
			mc.Entries = append(mc.Entries, MovieEntry{URL: f.URL, Name: f.Name, Path: f.Path})
		}
	}

	outShows := make([]ShowCandidate, 0, len(shows))
	for _, sc := range shows {
		sort.SliceStable(sc.Episodes, func(i, j int) bool {
			a, b := sc.Episodes[i], sc.Episodes[j]
			if a.Season != b.Season {
				return a.Season < b.Season
			}
			return a.Episode < b.Episode
		})
		outShows = append(outShows, *sc)
	}
	sort.Slice(outShows, func(i, j int) bool {
		return strings.ToLower(outShows[i].Title) < strings.ToLower(outShows[j].Title)
	})

	outMovies := make([]MovieCandidate, 0, len(movies))
	for _, mc := range movies {
		outMovies = append(outMovies, *mc)
	}
	sort.Slice(outMovies, func(i, j int) bool {
		return strings.ToLower(outMovies[i].Title) < strings.ToLower(outMovies[j].Title)
	})
	return outShows, outMovies
}
