package classify

import (
	"regexp"
	"strings"
)

// releaseTokens are quality/rip/codec/audio/release markers that carry no
// title information. Matched case-insensitively on word boundaries, both
// inside bracketed groups and bare.
var releaseTokens = []string{
	// resolution
	"480p", "576p", "720p", "1080p", "1080i", "2160p", "4k", "uhd",
	// source
	"bluray", "blu-ray", "brrip", "bdrip", "webrip", "web-dl", "webdl",
	"hdtv", "dvdrip", "dvdscr", "hdrip", "camrip", "hdcam", "telesync",
	// codec
	"x264", "x265", "h264", "h265", "hevc", "avc", "xvid", "divx", "10bit", "8bit",
	// audio
	"aac", "ac3", "eac3", "dts", "ddp", "truehd", "atmos", "5 1", "7 1", "2 0",
	// release-group markers
	"proper", "repack", "extended", "unrated", "remastered", "limited", "internal", "multi", "subbed", "dubbed",
}

var (
	releaseTokenRe = regexp.MustCompile(`(?i)\b(` + strings.Join(releaseTokens, "|") + `)\b`)
	bracketGroupRe = regexp.MustCompile(`\[[^\[\]]*\]|\([^()]*\)|\{[^{}]*\}`)
	// trailing "part N" or "- theatrical/extended/director's cut" style suffixes
	trailingEditionRe = regexp.MustCompile(`(?i)(\s*-?\s*(theatrical|extended|director'?s)(\s+cut)?|\s+part\s+\d+)\s*$`)
	multiSpaceRe      = regexp.MustCompile(`\s+`)
)

// NormalizeTitle turns a raw title fragment into a clean display title:
// underscores/dots become spaces, release markers are stripped (bracketed or
// bare), trailing edition suffixes are removed and whitespace is collapsed.
// Idempotent: NormalizeTitle(NormalizeTitle(x)) == NormalizeTitle(x).
func NormalizeTitle(s string) string {
	s = strings.NewReplacer("_", " ", ".", " ").Replace(s)

	// Drop any bracketed group that contains a release marker; keep the rest
	// (years and subtitle parentheticals survive).
	s = bracketGroupRe.ReplaceAllStringFunc(s, func(g string) string {
		if releaseTokenRe.MatchString(g) {
			return " "
		}
		return g
	})
	// Edition suffixes are stripped before and after the bare-token pass:
	// "Extended" is itself a release token, so "X - Extended Cut" would
	// otherwise decay to "X - Cut".
	s = stripTrailingEditions(s)
	s = releaseTokenRe.ReplaceAllString(s, " ")
	s = stripTrailingEditions(s)

	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = strings.Trim(s, " -_")
	return s
}

func stripTrailingEditions(s string) string {
	for {
		trimmed := strings.TrimRight(trailingEditionRe.ReplaceAllString(s, ""), " -_")
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}
