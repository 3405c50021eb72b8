// Package site writes the landing page that ties per-target documentation
// trees together.
package site

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"

	ferrors "git.home.luguber.info/inful/pkgdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgdocs/internal/logfields"
	"git.home.luguber.info/inful/pkgdocs/internal/manifest"
)

// IndexFile is the landing page written at the site root.
const IndexFile = "index.html"

// DefaultTitle is used for the listing page when no title is configured.
const DefaultTitle = "Documentation"

// ErrOutputWriteFailed indicates the landing page could not be written.
var ErrOutputWriteFailed = errors.New("output write failed")

// Page holds optional listing page decoration.
type Page struct {
	Title  string // listing page heading; DefaultTitle when empty
	Intro  []byte // Markdown rendered above the target list
	Commit string // source revision shown in the footer
}

// Assembler writes index.html.
type Assembler struct {
	page Page
}

// NewAssembler returns an Assembler decorating listing pages with page.
func NewAssembler(page Page) *Assembler {
	if page.Title == "" {
		page.Title = DefaultTitle
	}
	return &Assembler{page: page}
}

// EntryURL is the absolute URL of a target's documentation entry page.
func EntryURL(hostingBasePath, name string) string {
	var b strings.Builder
	b.WriteString("/")
	if base := strings.Trim(hostingBasePath, "/"); base != "" {
		b.WriteString(base)
		b.WriteString("/")
	}
	b.WriteString(name)
	b.WriteString("/documentation/")
	b.WriteString(strings.ToLower(name))
	return b.String()
}

// Assemble writes outputRoot/index.html: a redirect when exactly one target is
// documented, otherwise a listing sorted by target name. It returns the path
// written.
func (a *Assembler) Assemble(targets []manifest.Target, outputRoot, hostingBasePath string) (string, error) {
	var doc *html.Node
	if len(targets) == 1 {
		doc = redirectPage(EntryURL(hostingBasePath, targets[0].Name), targets[0].Name)
	} else {
		sorted := append([]manifest.Target(nil), targets...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
		var err error
		doc, err = a.listingPage(sorted, hostingBasePath)
		if err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", ferrors.InternalError("unable to render index page").WithCause(err).Build()
	}

	indexPath := filepath.Join(outputRoot, IndexFile)
	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return "", writeError(err, outputRoot)
	}
	if err := os.WriteFile(indexPath, buf.Bytes(), 0o644); err != nil {
		return "", writeError(err, indexPath)
	}

	slog.Info("Index page written", logfields.Path(indexPath), logfields.Count(len(targets)))
	return indexPath, nil
}

func writeError(err error, path string) error {
	return ferrors.OutputError("unable to write index page").
		WithCause(fmt.Errorf("%w: %w", ErrOutputWriteFailed, err)).
		WithContext("path", path).
		Build()
}
