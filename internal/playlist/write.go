package playlist

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteM3U re-emits entries as a tagged playlist. Attributes keep their
// insertion order; passthrough directive lines are written verbatim between
// the metadata line and the URL. The derived group is written back as the
// group attribute so players see the inferred grouping.
func WriteM3U(w io.Writer, entries []*Entry) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "#EXTM3U")
	for _, e := range entries {
		var attrs strings.Builder
		wroteGroup := false
		for _, a := range e.Attrs {
			val := a.Value
			if a.Key == AttrGroup && e.Group != "" {
				val = e.Group
				wroteGroup = true
			}
			fmt.Fprintf(&attrs, ` %s=%q`, a.Key, val)
		}
		if !wroteGroup && e.Group != "" {
			fmt.Fprintf(&attrs, ` %s=%q`, AttrGroup, e.Group)
		}
		fmt.Fprintf(bw, "#EXTINF:%d%s,%s\n", e.Duration, attrs.String(), e.Title)
		for _, line := range e.Extra {
			fmt.Fprintln(bw, line)
		}
		fmt.Fprintln(bw, e.URL)
	}
	return bw.Flush()
}
