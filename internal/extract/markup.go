package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// looksLikeMarkup reports whether text contains something shaped like a tag
func looksLikeMarkup(text string) bool {
	open := strings.IndexByte(text, '<')
	return open >= 0 && strings.LastIndexByte(text, '>') > open
}

// StripMarkup reduces HTML to its visible text, skipping scripts and styles.
// Text that fails to parse is returned unchanged.
func StripMarkup(text string) string {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return text
	}
	return visibleText(doc)
}

func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.TrimSpace(buf.String())
}
