package playlist

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// categoryTable maps cleaned titles to content groups. Declaration order is a
// semantic contract: rules are tried top to bottom and the first match wins,
// so broadcaster names outrank the generic genre clusters below them.
var categoryTable = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`(?i)\b(espn|sky sports?|bt sport|bein|dazn|eurosport|nfl|nba|nhl|mlb|ufc|wwe|formula ?1|f1|motogp)\b`), "Sports"},
	{regexp.MustCompile(`(?i)\b(bbc news|cnn|fox news|msnbc|cnbc|bloomberg|al ?jazeera|euronews|sky news|france 24)\b`), "News"},
	{regexp.MustCompile(`(?i)\b(cartoon network|nick(elodeon| jr)?|disney( channel| junior| xd)?|boomerang|pbs kids)\b`), "Kids"},
	{regexp.MustCompile(`(?i)\b(mtv|vh1|vevo|kerrang|kiss tv)\b`), "Music"},
	{regexp.MustCompile(`(?i)\b(discovery|nat ?geo(graphic)?|history|animal planet|documentar\w+)\b`), "Documentary"},
	{regexp.MustCompile(`(?i)\b(hbo|cinemax|showtime|paramount|cinema|movies?|film)\b`), "Movies"},
	{regexp.MustCompile(`(?i)\b(sports?|football|soccer|racing|golf|tennis)\b`), "Sports"},
	{regexp.MustCompile(`(?i)\b(news|weather)\b`), "News"},
	{regexp.MustCompile(`(?i)\b(kids|junior|baby|toons?)\b`), "Kids"},
	{regexp.MustCompile(`(?i)\b(music|radio|hits)\b`), "Music"},
	{regexp.MustCompile(`(?i)\b(bbc|itv|channel [45]|e4|dave|uk)\b`), "UK"},
	{regexp.MustCompile(`(?i)\b(mbc|osn|rotana|arabic|arabia)\b`), "Arabic"},
	{regexp.MustCompile(`(?i)\b(canal\+|tf1|france [2-5]|m6|french)\b`), "French"},
	{regexp.MustCompile(`(?i)\b(ard|zdf|rtl|pro ?sieben|sat ?1|german)\b`), "German"},
	{regexp.MustCompile(`(?i)\b(zee|star plus|sony (tv|max)|colors|hindi)\b`), "Hindi"},
	{regexp.MustCompile(`(?i)\b(antena [13]|telecinco|la sexta|spanish|latino)\b`), "Spanish"},
}

// DefaultGroup is the bucket for entries no category rule matches.
const DefaultGroup = "Misc"

// InferGroup keeps an existing group attribute when present; otherwise the
// cleaned title is run down the category table.
func InferGroup(e *Entry) string {
	if g := strings.TrimSpace(e.Attr(AttrGroup)); g != "" {
		return g
	}
	cleaned := CleanTitle(e.Title)
	for _, c := range categoryTable {
		if c.re.MatchString(cleaned) {
			return c.label
		}
	}
	return DefaultGroup
}

var (
	parenQualityRe = regexp.MustCompile(`(?i)\([^)]*(\d{3,4}p|\bhd\b|\bsd\b|\bfhd\b|\buhd\b|4k)[^)]*\)`)
	bracketTagRe   = regexp.MustCompile(`\[[^\]]*\]`)
	titleSpaceRe   = regexp.MustCompile(`\s+`)
)

// curated typo fixes seen in the wild; applied per word, case-preserving on
// the replacement
var typoFixes = map[string]string{
	"chanel":  "Channel",
	"moive":   "Movie",
	"moives":  "Movies",
	"sprots":  "Sports",
	"epsiode": "Episode",
}

// CleanTitle strips parenthesized quality markers and bracketed tags,
// collapses whitespace and fixes a small curated typo list.
func CleanTitle(s string) string {
	s = parenQualityRe.ReplaceAllString(s, " ")
	s = bracketTagRe.ReplaceAllString(s, " ")
	words := strings.Fields(s)
	for i, w := range words {
		if fix, ok := typoFixes[strings.ToLower(w)]; ok {
			words[i] = fix
		}
	}
	s = strings.Join(words, " ")
	return strings.TrimSpace(titleSpaceRe.ReplaceAllString(s, " "))
}

// vodExts marks container extensions that only ever appear on on-demand files.
var vodExts = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".m4v": true,
	".webm": true, ".flv": true, ".mpg": true, ".mpeg": true, ".wmv": true,
}

var episodeTitleRe = regexp.MustCompile(`(?i)\bS\d{1,2}\s?E\d{1,2}\b|\bseason\s+\d+\b|\bepisode\s+\d+\b`)

var vodGroupHintRe = regexp.MustCompile(`(?i)vod|movies?|series|film|cinema`)

// IsVOD classifies an entry as on-demand. Rules fire in order and the first
// hit wins: a video-file extension, a positive duration (live entries use
// -1), an episode-style title, and finally a VOD-suggestive group label
// combined with a matching extension. The last rule deliberately needs both
// conditions; group text alone would misclassify a live channel that merely
// calls itself "Movies Channel".
func IsVOD(e *Entry) bool {
	ext := urlExt(e.URL)
	if vodExts[ext] {
		return true
	}
	if e.Duration > 0 {
		return true
	}
	if episodeTitleRe.MatchString(e.Title) {
		return true
	}
	if vodGroupHintRe.MatchString(e.Attr(AttrGroup)) && vodExts[ext] {
		return true
	}
	return false
}

func urlExt(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(path.Ext(raw))
	}
	return strings.ToLower(path.Ext(u.Path))
}
