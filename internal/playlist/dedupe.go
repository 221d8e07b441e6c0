package playlist

import (
	"sort"
	"strings"
)

// Dedupe collapses a scored entry list: entries without a URL are dropped,
// an exact URL already accepted is skipped regardless of score, and within
// each (group, title) dedupe key only the highest-scoring entry survives
// (first seen wins an exact tie). Output ordering is deterministic: by group,
// then title, both case-insensitive.
func Dedupe(entries []*Entry) []*Entry {
	urlSeen := map[string]bool{}
	var kept []*Entry
	for _, e := range entries {
		if e.URL == "" {
			continue
		}
		if urlSeen[e.URL] {
			continue
		}
		urlSeen[e.URL] = true
		kept = append(kept, e)
	}

	winners := map[string]*Entry{}
	var order []string
	for _, e := range kept {
		key := e.DedupeKey()
		cur, ok := winners[key]
		if !ok {
			winners[key] = e
			order = append(order, key)
			continue
		}
		if e.Score > cur.Score {
			winners[key] = e
		}
	}

	out := make([]*Entry, 0, len(order))
	for _, key := range order {
		out = append(out, winners[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		gi, gj := strings.ToLower(out[i].Group), strings.ToLower(out[j].Group)
		if gi != gj {
			return gi < gj
		}
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})
	return out
}
