// Package output renders listings and analyses for files and the terminal.
package output

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// CleanHTML strips script, style and other non-content elements from an HTML
// fragment and returns the remainder. Unparseable input is returned as-is.
func CleanHTML(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	dropNodes(doc)
	var b strings.Builder
	if err := html.Render(&b, doc); err != nil {
		return fragment
	}
	return b.String()
}

var droppedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"svg":      true,
}

func dropNodes(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && droppedElements[c.Data] {
			n.RemoveChild(c)
			continue
		}
		dropNodes(c)
	}
}

// HTMLToMarkdown converts a product description fragment to markdown.
// Relative links and image sources are resolved against baseURL. On
// conversion failure the cleaned plain text is returned instead.
func HTMLToMarkdown(fragment, baseURL string) string {
	conv := md.NewConverter(baseURL, true, nil)
	out, err := conv.ConvertString(CleanHTML(fragment))
	if err != nil {
		log.Debug().Err(err).Msg("Markdown conversion failed, falling back to text")
		return plainText(fragment)
	}
	return strings.TrimSpace(out)
}

func plainText(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && droppedElements[n.Data] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(b.String())
}
