// Package classify infers media identity (show episode vs. movie) from raw
// file names. Everything here is a pure function over strings; the heuristics
// are best-effort and favor episode evidence over movie evidence.
package classify

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Kind discriminates the two identity variants.
type Kind int

const (
	KindEpisode Kind = iota
	KindMovie
)

// Identity is the classifier result: either an episode of a show or a movie
// with an optional release year.
type Identity struct {
	Kind Kind

	// Episode fields
	Show    string
	Season  int
	Episode int

	// Movie fields
	Title string
	Year  string // empty when no year token was found
}

// Episode patterns, tried in priority order. First match wins. Episode
// evidence always beats movie evidence: a year inside an episode title is far
// more common than SxxEyy inside a movie title.
var episodePatterns = []*regexp.Regexp{
	// S01E02, s1 e2, S01-E02
	regexp.MustCompile(`(?i)\bS(\d{1,2})\s?-?\s?E(\d{1,2})\b`),
	// Season 1 ... Episode 2
	regexp.MustCompile(`(?i)\bSeason\s+(\d{1,2})\b.{0,40}?\bEpisode\s+(\d{1,3})\b`),
	// 1x02
	regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{1,2})\b`),
}

var yearRe = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

// emptied bracket pairs left behind after a year token is cut out
var emptyBracketRe = regexp.MustCompile(`\(\s*\)|\[\s*\]|\{\s*\}`)

// Classify decodes name (it may be percent-encoded), strips the final
// extension, normalizes it and matches the episode patterns in order. When
// none match, the name is treated as a movie with an optional 19xx/20xx year.
func Classify(name string) Identity {
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	norm := NormalizeTitle(name)

	for _, re := range episodePatterns {
		m := re.FindStringSubmatchIndex(norm)
		if m == nil {
			continue
		}
		season, _ := strconv.Atoi(norm[m[2]:m[3]])
		episode, _ := strconv.Atoi(norm[m[4]:m[5]])
		show := NormalizeTitle(norm[:m[0]])
		show = strings.Trim(show, " -_:.")
		if show == "" {
			show = norm
		}
		return Identity{Kind: KindEpisode, Show: show, Season: season, Episode: episode}
	}

	title, year := splitYear(norm)
	return Identity{Kind: KindMovie, Title: title, Year: year}
}

// splitYear removes the last 4-digit year token from s and returns the
// remaining title plus the year. The last token is used so titles that are
// themselves years ("2012 (2009)") keep their name.
func splitYear(s string) (title, year string) {
	locs := yearRe.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s, ""
	}
	loc := locs[len(locs)-1]
	year = s[loc[0]:loc[1]]
	title = s[:loc[0]] + s[loc[1]:]
	title = emptyBracketRe.ReplaceAllString(title, " ")
	title = multiSpaceRe.ReplaceAllString(title, " ")
	title = strings.Trim(title, " -_")
	if title == "" {
		return s, ""
	}
	return title, year
}
