package playlist

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const maxLineSize = 1 << 20 // 1 MiB per line

// extinfRe captures duration, the attribute block and the display title from
// one metadata line. The attribute block tolerates quoted values containing
// commas, so the title split happens on the first comma after it.
var extinfRe = regexp.MustCompile(`^#EXTINF:\s*(-?\d+)\s*((?:[A-Za-z0-9-]+=(?:"[^"]*"|[^\s,]+)\s*)*),\s*(.*)$`)

var attrRe = regexp.MustCompile(`([A-Za-z0-9-]+)=(?:"([^"]*)"|([^\s,]+))`)

// Parse reads a tagged playlist. Unparseable metadata lines are skipped and
// parsing continues; comment lines between a metadata line and its URL are
// preserved verbatim as passthrough directives (the file/entry markers
// themselves excluded). The first non-comment line after a metadata line is
// taken as the playable URL.
func Parse(r io.Reader) ([]Entry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLineSize)

	var entries []Entry
	var cur *Entry
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#EXTM3U") {
			continue
		}
		if strings.HasPrefix(line, "#EXTINF:") {
			cur = parseExtinf(line)
			continue
		}
		if strings.HasPrefix(line, "#") {
			if cur != nil {
				cur.Extra = append(cur.Extra, line)
			}
			continue
		}
		if cur != nil {
			cur.URL = line
			entries = append(entries, *cur)
			cur = nil
		}
	}
	return entries, sc.Err()
}

func parseExtinf(line string) *Entry {
	m := extinfRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	dur, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	e := &Entry{Duration: dur, Title: strings.TrimSpace(m[3])}
	seen := map[string]bool{}
	for _, am := range attrRe.FindAllStringSubmatch(m[2], -1) {
		key := am[1]
		if seen[key] {
			continue // duplicate keys not allowed; first wins
		}
		seen[key] = true
		val := am[2]
		if val == "" {
			val = am[3]
		}
		e.Attrs = append(e.Attrs, Attr{Key: key, Value: val})
	}
	return e
}
