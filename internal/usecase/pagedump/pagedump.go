// Package pagedump reduces a page snapshot to the markup worth keeping
// next to a failure screenshot.
package pagedump

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

type Config struct {
	TagsToRemove  []string
	AttrsToRemove []string
	MaxSize       int
}

var DefaultConfig = Config{
	TagsToRemove: []string{
		"script", "style", "noscript", "svg", "iframe",
		"link", "meta", "head", "title", "template",
	},
	AttrsToRemove: []string{
		"style", "srcset", "sizes", "loading", "decoding", "fetchpriority", "tabindex",
	},
	MaxSize: 200_000,
}

const truncatedMarker = "\n<!-- truncated -->"

// Clean strips scripts, comments and noisy attributes from rawHTML and
// returns the body. Form values are always dropped so typed secrets never
// reach disk. Unparseable input yields an empty string.
func Clean(rawHTML string, cfg *Config) string {
	if cfg == nil {
		cfg = &DefaultConfig
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}
	clean(root, cfg)

	var sb strings.Builder
	if err := html.Render(&sb, root); err != nil {
		return ""
	}
	return truncate(sb.String(), cfg.MaxSize)
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func clean(n *html.Node, cfg *Config) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
		case c.Type == html.ElementNode && slices.Contains(cfg.TagsToRemove, c.Data):
			n.RemoveChild(c)
		case c.Type == html.ElementNode:
			c.Attr = keepAttrs(c, cfg)
			clean(c, cfg)
		}
		c = next
	}
}

func keepAttrs(n *html.Node, cfg *Config) []html.Attribute {
	var kept []html.Attribute
	for _, a := range n.Attr {
		switch {
		case slices.Contains(cfg.AttrsToRemove, a.Key):
		case strings.HasPrefix(a.Key, "data-"), strings.HasPrefix(a.Key, "on"):
		case a.Key == "value" && (n.Data == "input" || n.Data == "textarea"):
		default:
			kept = append(kept, a)
		}
	}
	return kept
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + truncatedMarker
}
