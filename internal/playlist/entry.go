// Package playlist parses tagged playlists (M3U with #EXTINF metadata),
// classifies entries as live vs. on-demand, infers content groups, scores
// duplicates and emits a deduplicated, sorted playlist.
package playlist

import "strings"

// Recognized attribute keys. Anything else is carried through untouched.
const (
	AttrID      = "tvg-id"
	AttrLogo    = "tvg-logo"
	AttrGroup   = "group-title"
	AttrChannel = "tvg-chno"
)

// Attr is one key="value" pair from a metadata line. Order is preserved for
// stable re-emission; duplicate keys are not allowed (first one wins).
type Attr struct {
	Key   string
	Value string
}

// Entry is one parsed playlist record.
type Entry struct {
	// Duration in seconds; -1 means unknown, which by convention marks a
	// live stream.
	Duration int
	Attrs    []Attr
	Title    string
	URL      string
	// Extra holds comment-prefixed per-entry directive lines (player
	// options etc.), preserved verbatim between the metadata line and the
	// URL line.
	Extra []string

	// Derived during normalization.
	Group string
	Score int
}

// Attr returns the value for key, or "" when absent.
func (e *Entry) Attr(key string) string {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// DedupeKey is the (group, title) composite identity duplicates collapse on.
func (e *Entry) DedupeKey() string {
	return strings.ToLower(e.Group + "|" + e.Title)
}
