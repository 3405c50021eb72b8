// Package linkverify checks that the landing page only links into
// documentation trees that actually exist on disk.
package linkverify

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/pkgdocs/internal/foundation/errors"
)

// Link represents an extracted link from HTML content.
type Link struct {
	URL        string // The URL or path
	Text       string // Link text
	Tag        string // HTML tag (a, meta, link)
	IsInternal bool   // True if the link targets this site
}

// ExtractLinks extracts all links from an HTML file.
func ExtractLinks(htmlPath string) ([]*Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, errors.FileSystemError("failed to open HTML file").WithCause(err).WithContext("html_path", htmlPath).Build()
	}
	defer func() {
		_ = file.Close()
	}()

	return ExtractLinksFromReader(file)
}

// ExtractLinksFromReader extracts anchors, stylesheet links and meta refresh
// targets from an HTML document.
func ExtractLinksFromReader(r io.Reader) ([]*Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.ValidationError("failed to parse HTML").WithCause(err).Build()
	}

	var links []*Link
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if l := elementLink(n); l != nil {
				links = append(links, l)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)
	return links, nil
}

func elementLink(n *html.Node) *Link {
	switch n.Data {
	case "a":
		if href := getAttr(n, "href"); href != "" {
			return &Link{URL: href, Text: extractText(n), Tag: "a", IsInternal: isInternalLink(href)}
		}
	case "link":
		if href := getAttr(n, "href"); href != "" {
			return &Link{URL: href, Text: getAttr(n, "rel"), Tag: "link", IsInternal: isInternalLink(href)}
		}
	case "meta":
		if !strings.EqualFold(getAttr(n, "http-equiv"), "refresh") {
			return nil
		}
		if target := refreshTarget(getAttr(n, "content")); target != "" {
			return &Link{URL: target, Tag: "meta", IsInternal: isInternalLink(target)}
		}
	}
	return nil
}

// refreshTarget extracts the URL from a meta refresh content value such as
// "0; url=/Core/documentation/core".
func refreshTarget(content string) string {
	_, rest, ok := strings.Cut(content, ";")
	if !ok {
		return ""
	}
	rest = strings.TrimSpace(rest)
	if len(rest) < 4 || !strings.EqualFold(rest[:4], "url=") {
		return ""
	}
	return strings.Trim(strings.TrimSpace(rest[4:]), `'"`)
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// extractText extracts text content from an HTML node and its children.
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(extractText(c))
	}

	return strings.TrimSpace(text.String())
}

// isInternalLink reports whether a URL is a site-absolute path.
func isInternalLink(linkURL string) bool {
	u, err := url.Parse(linkURL)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == "" && strings.HasPrefix(u.Path, "/")
}
