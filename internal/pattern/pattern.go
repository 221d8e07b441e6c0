// Package pattern proposes URL templates for missing episodes from sample
// URLs. It is an advisory tool: when inference is impossible the result is an
// empty pattern plus a note, never a hard failure.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Placeholder tokens recognized by Template.Fill.
const (
	TokenSeason   = "{season}" // unpadded decimal season
	TokenEpisode  = "{episode}"
	TokenSeason2  = "{s2}" // zero-padded 2-digit season
	TokenEpisode2 = "{e2}"
)

// ErrInsufficientSamples is returned when fewer than two sample URLs are
// supplied. Advisory: the Template note carries the same information.
var ErrInsufficientSamples = errors.New("pattern: need at least two sample URLs")

// Template is an inferred URL pattern with season/episode placeholders.
type Template struct {
	Pattern string
	Note    string // set when inference degraded or failed
}

var digitRunRe = regexp.MustCompile(`\d+`)

// Infer derives a template from the first two sample URLs: the differing
// window between the common prefix and suffix is located, expanded outward to
// absorb adjacent digit runs (so 1 vs 01 is never cut mid-number), and its
// digit runs become season/episode placeholders.
func Infer(samples []string) (Template, error) {
	if len(samples) < 2 {
		return Template{Note: "need at least two sample URLs to infer a pattern"}, ErrInsufficientSamples
	}
	a, b := samples[0], samples[1]
	if a == b {
		return Template{Note: "samples are identical; nothing to infer"}, nil
	}

	p := commonPrefixLen(a, b)
	s := commonSuffixLen(a, b)
	// Prefix and suffix must not overlap on the shorter sample.
	min := len(a)
	if len(b) < min {
		min = len(b)
	}
	if p+s > min {
		s = min - p
	}

	// Absorb digit runs adjacent to the window so a width change like 1→01
	// keeps the whole number inside the window.
	for p > 0 && isDigit(a[p-1]) {
		p--
	}
	for s > 0 && isDigit(a[len(a)-s]) {
		s--
	}

	window := a[p : len(a)-s]
	runs := digitRunRe.FindAllStringIndex(window, -1)
	if len(runs) == 0 {
		return Template{Note: "no digit runs in the differing window; cannot place episode numbers"}, nil
	}

	var out strings.Builder
	out.WriteString(a[:p])
	if len(runs) >= 2 {
		out.WriteString(window[:runs[0][0]])
		out.WriteString(placeholderFor(window[runs[0][0]:runs[0][1]], TokenSeason, TokenSeason2))
		out.WriteString(window[runs[0][1]:runs[1][0]])
		out.WriteString(placeholderFor(window[runs[1][0]:runs[1][1]], TokenEpisode, TokenEpisode2))
		out.WriteString(window[runs[1][1]:])
	} else {
		// One run: episode-only template.
		out.WriteString(window[:runs[0][0]])
		out.WriteString(placeholderFor(window[runs[0][0]:runs[0][1]], TokenEpisode, TokenEpisode2))
		out.WriteString(window[runs[0][1]:])
	}
	out.WriteString(a[len(a)-s:])
	return Template{Pattern: out.String()}, nil
}

// placeholderFor picks the 2-digit-padded variant when the captured run is
// exactly two digits wide.
func placeholderFor(run, bare, padded string) string {
	if len(run) == 2 {
		return padded
	}
	return bare
}

// Fill substitutes concrete season/episode values into the pattern. Unknown
// tokens are left untouched.
func (t Template) Fill(season, episode int) string {
	r := strings.NewReplacer(
		TokenSeason2, fmt.Sprintf("%02d", season),
		TokenEpisode2, fmt.Sprintf("%02d", episode),
		TokenSeason, fmt.Sprintf("%d", season),
		TokenEpisode, fmt.Sprintf("%d", episode),
	)
	return r.Replace(t.Pattern)
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func commonSuffixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return n
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
