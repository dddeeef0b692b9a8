// Package balance finds the account balance in a page snapshot.
package balance

import (
	"fmt"
	"regexp"
	"strings"

	"checkin-agent/internal/domain/entity"

	"golang.org/x/net/html"
)

type Config struct {
	// CurrencyMarkers must appear next to the amount, e.g. "¥", "元".
	CurrencyMarkers []string
	// ClassHints are class substrings of elements preferred over plain text.
	ClassHints []string
}

var skippedTags = []string{"script", "style", "noscript", "svg", "template", "head"}

var amountRe = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// Extract returns the first amount that sits next to a currency marker,
// looking inside class-hinted elements before the rest of the body.
func Extract(rawHTML string, cfg Config) (string, error) {
	if len(cfg.CurrencyMarkers) == 0 {
		return "", fmt.Errorf("%w: no currency markers configured", entity.ErrBalanceExtraction)
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %v", entity.ErrBalanceExtraction, err)
	}

	root := findBodyNode(doc)
	if root == nil {
		root = doc
	}

	var hinted []*html.Node
	collectHinted(root, cfg.ClassHints, &hinted)
	for _, n := range hinted {
		if amount, ok := amountIn(textContent(n), cfg.CurrencyMarkers); ok {
			return amount, nil
		}
	}

	var found string
	walkMarked(root, cfg.CurrencyMarkers, func(text string) bool {
		if amount, ok := amountIn(text, cfg.CurrencyMarkers); ok {
			found = amount
			return true
		}
		return false
	})
	if found != "" {
		return found, nil
	}

	return "", fmt.Errorf("%w: no amount marked with %v", entity.ErrBalanceExtraction, cfg.CurrencyMarkers)
}

func amountIn(text string, markers []string) (string, bool) {
	if !containsAny(text, markers) {
		return "", false
	}
	m := amountRe.FindString(text)
	if m == "" {
		return "", false
	}
	return strings.ReplaceAll(m, ",", ""), true
}

func findBodyNode(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBodyNode(c); b != nil {
			return b
		}
	}
	return nil
}

func collectHinted(n *html.Node, hints []string, out *[]*html.Node) {
	if len(hints) == 0 {
		return
	}
	if n.Type == html.ElementNode {
		if isOneOf(n.Data, skippedTags...) {
			return
		}
		if class := attr(n, "class"); class != "" && containsAny(strings.ToLower(class), hints) {
			*out = append(*out, n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectHinted(c, hints, out)
	}
}

// walkMarked visits, in document order, the full text of every element
// whose own text nodes mention one of markers.
func walkMarked(n *html.Node, markers []string, visit func(string) bool) bool {
	if n.Type == html.ElementNode {
		if isOneOf(n.Data, skippedTags...) {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode && containsAny(c.Data, markers) {
				if visit(strings.TrimSpace(textContent(n))) {
					return true
				}
				break
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if walkMarked(c, markers, visit) {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isOneOf(n.Data, skippedTags...) {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
