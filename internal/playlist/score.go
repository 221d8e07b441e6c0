package playlist

import "strings"

// unstableHosts are provider host substrings with a track record of dead
// links; matching entries lose points so a stable duplicate wins dedup.
var unstableHosts = []string{
	"freeiptv",
	"iptvfree",
	"tempserver",
	"myiptv.xyz",
	"fastiptv.click",
	"cheap-stream",
}

// QualityScore is an integer heuristic over title and URL substrings, used
// purely to break dedup ties. Resolution tiers add decreasing weight,
// streaming-format hints and HTTPS add small bonuses, known-unstable hosts
// subtract a penalty.
func QualityScore(title, rawURL string) int {
	hay := strings.ToLower(title + " " + rawURL)
	score := 0
	switch {
	case strings.Contains(hay, "1080") || strings.Contains(hay, "fhd"):
		score += 30
	case strings.Contains(hay, "720") || containsWord(hay, "hd"):
		score += 20
	case strings.Contains(hay, "480") || strings.Contains(hay, "576") || containsWord(hay, "sd"):
		score += 10
	}
	lowURL := strings.ToLower(rawURL)
	if strings.Contains(lowURL, ".m3u8") || strings.Contains(lowURL, ".mpd") {
		score += 5
	}
	if strings.HasPrefix(lowURL, "https://") {
		score += 3
	}
	for _, h := range unstableHosts {
		if strings.Contains(lowURL, h) {
			score -= 25
			break
		}
	}
	return score
}

// containsWord reports a whole-word, already-lowercased match.
func containsWord(hay, word string) bool {
	for i := 0; i+len(word) <= len(hay); i++ {
		j := strings.Index(hay[i:], word)
		if j < 0 {
			return false
		}
		i += j
		before := i == 0 || !isAlnum(hay[i-1])
		afterIdx := i + len(word)
		after := afterIdx == len(hay) || !isAlnum(hay[afterIdx])
		if before && after {
			return true
		}
	}
	return false
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
