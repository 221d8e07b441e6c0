// Package listing parses directory index documents (HTML, or a markdown-link
// plaintext fallback) into ordered lists of child entries. A document that
// yields nothing parses to an empty list; malformed input is never an error,
// downstream treats empty as "nothing found here".
package listing

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Entry is one link found in an index document.
type Entry struct {
	Name  string
	Href  string
	IsDir bool
}

// Parse extracts child entries from a raw index document. The primary path
// collects anchors from the HTML tree; when the document has no anchors at
// all (plaintext indexes), a markdown-style [label](url) line scan is used.
func Parse(body []byte) []Entry {
	entries, sawAnchor := parseHTML(body)
	if !sawAnchor {
		return parseMarkdown(body)
	}
	return entries
}

func parseHTML(body []byte) (entries []Entry, sawAnchor bool) {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, false
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			sawAnchor = true
			href := attr(n, "href")
			if e, ok := entryFor(href, anchorText(n)); ok {
				entries = append(entries, e)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return entries, sawAnchor
}

// Label may itself be a bracketed placeholder ("[PARENTDIR]"), hence the
// optional inner bracket pair.
var markdownLinkRe = regexp.MustCompile(`\[(\[?[^\]]*\]?)\]\(([^)\s]+)\)`)

// bracketed placeholder labels emitted by text renderings of Apache-style
// indexes, e.g. "[PARENTDIR]" or "[ICO]"
var placeholderLabelRe = regexp.MustCompile(`^\[.*\]$`)

func parseMarkdown(body []byte) []Entry {
	var entries []Entry
	for _, line := range strings.Split(string(body), "\n") {
		for _, m := range markdownLinkRe.FindAllStringSubmatch(line, -1) {
			label, href := strings.TrimSpace(m[1]), m[2]
			if placeholderLabelRe.MatchString(label) {
				label = ""
			}
			if e, ok := entryFor(href, label); ok {
				entries = append(entries, e)
			}
		}
	}
	return entries
}

// entryFor applies the shared exclusion rules and builds an Entry. Rejected:
// empty hrefs, query-string actions (sort links), fragments, script
// pseudo-URLs and self/parent-directory links.
func entryFor(href, name string) (Entry, bool) {
	switch {
	case href == "":
		return Entry{}, false
	case strings.HasPrefix(href, "?"), strings.HasPrefix(href, "#"):
		return Entry{}, false
	case strings.HasPrefix(strings.ToLower(href), "javascript:"):
		return Entry{}, false
	case href == "/" || href == "." || href == "./" || href == ".." || href == "../":
		return Entry{}, false
	}
	isDir := strings.HasSuffix(href, "/")
	if name == "" {
		name = decodedName(href)
	}
	if name == "" {
		return Entry{}, false
	}
	return Entry{Name: name, Href: href, IsDir: isDir}, true
}

// decodedName derives a display name from the href itself: last path segment,
// percent-decoded.
func decodedName(href string) string {
	h := strings.TrimSuffix(href, "/")
	if i := strings.LastIndex(h, "/"); i >= 0 {
		h = h[i+1:]
	}
	if dec, err := url.PathUnescape(h); err == nil {
		h = dec
	}
	return h
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func anchorText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
