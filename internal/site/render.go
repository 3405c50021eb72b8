package site

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	ferrors "git.home.luguber.info/inful/pkgdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgdocs/internal/manifest"
)

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func appendAll(parent *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		parent.AppendChild(c)
	}
	return parent
}

// skeleton returns the document, its head and its body.
func skeleton(title string) (*html.Node, *html.Node, *html.Node) {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, "lang", "en")
	head := appendAll(element(atom.Head),
		element(atom.Meta, "charset", "utf-8"),
		element(atom.Meta, "name", "viewport", "content", "width=device-width, initial-scale=1"),
		appendAll(element(atom.Title), text(title)),
	)
	body := element(atom.Body)
	appendAll(root, head, body)
	doc.AppendChild(root)
	return doc, head, body
}

func redirectPage(url, name string) *html.Node {
	doc, head, body := skeleton(name + " Documentation")
	head.AppendChild(element(atom.Meta, "http-equiv", "refresh", "content", "0; url="+url))
	appendAll(body, appendAll(element(atom.P),
		text("Redirecting to "),
		appendAll(element(atom.A, "href", url), text(name)),
		text("."),
	))
	return doc
}

func (a *Assembler) listingPage(targets []manifest.Target, hostingBasePath string) (*html.Node, error) {
	doc, _, body := skeleton(a.page.Title)
	body.AppendChild(appendAll(element(atom.H1), text(a.page.Title)))

	if len(bytes.TrimSpace(a.page.Intro)) > 0 {
		intro, err := renderMarkdown(a.page.Intro)
		if err != nil {
			return nil, err
		}
		section := element(atom.Section, "class", "intro")
		appendAll(section, intro...)
		body.AppendChild(section)
	}

	list := element(atom.Ul, "class", "targets")
	for _, t := range targets {
		link := appendAll(element(atom.A, "href", EntryURL(hostingBasePath, t.Name)), text(t.Name))
		list.AppendChild(appendAll(element(atom.Li), link))
	}
	body.AppendChild(list)

	if a.page.Commit != "" {
		footer := appendAll(element(atom.Footer),
			appendAll(element(atom.P), text("Generated from "), appendAll(element(atom.Code), text(shortCommit(a.page.Commit)))),
		)
		body.AppendChild(footer)
	}
	return doc, nil
}

// renderMarkdown converts Markdown to HTML and reparses it as body content so
// it can be grafted into the page tree.
func renderMarkdown(src []byte) ([]*html.Node, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert(src, &buf); err != nil {
		return nil, ferrors.ConfigError("unable to render intro markdown").WithCause(err).Build()
	}
	nodes, err := html.ParseFragment(&buf, element(atom.Body))
	if err != nil {
		return nil, ferrors.InternalError("unable to parse rendered intro").WithCause(err).Build()
	}
	return nodes, nil
}

func shortCommit(c string) string {
	c = strings.TrimSpace(c)
	if len(c) > 12 {
		return c[:12]
	}
	return c
}
