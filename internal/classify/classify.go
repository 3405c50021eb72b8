// Package classify reconciles manifest targets against the package source tree.
//
// A manifest reports most library targets as "regular"; whether such a target
// is Swift or C-family is only visible from the file extensions under its
// source directory.
package classify

import (
	"errors"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"git.home.luguber.info/inful/pkgdocs/internal/logfields"
	"git.home.luguber.info/inful/pkgdocs/internal/manifest"
)

// Default extension vocabularies. Comparison is case-sensitive.
var (
	DefaultSourceExtensions = []string{"swift"}
	DefaultNativeExtensions = []string{"c", "h", "hpp", "cc", "cpp"}
)

// Classifier rewrites raw manifest targets into terminal kinds.
type Classifier struct {
	sourceExt map[string]struct{}
	nativeExt map[string]struct{}
	logger    *slog.Logger
}

// New returns a Classifier using the default extension sets.
func New() *Classifier {
	return NewWithExtensions(DefaultSourceExtensions, DefaultNativeExtensions)
}

// NewWithExtensions returns a Classifier with explicit extension sets
// (without leading dots).
func NewWithExtensions(source, native []string) *Classifier {
	return &Classifier{
		sourceExt: toSet(source),
		nativeExt: toSet(native),
	}
}

// WithLogger sets the logger used for classification decisions.
func (c *Classifier) WithLogger(l *slog.Logger) *Classifier {
	if l != nil {
		c.logger = l
	}
	return c
}

func (c *Classifier) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// Classify returns the classified targets in input order. fsys is rooted at
// the package directory. Unsupported targets are dropped, terminal kinds pass
// through unchanged, and regular targets are rewritten from their source
// directory contents or dropped when nothing recognizable is found.
func (c *Classifier) Classify(fsys fs.FS, targets []manifest.Target) []manifest.Target {
	out := make([]manifest.Target, 0, len(targets))
	for _, t := range targets {
		switch t.Kind {
		case manifest.KindUnsupported:
			c.log().Debug("Dropping unsupported target", logfields.Target(t.Name))
			continue
		case manifest.KindRegular:
			kind, ok := c.inspect(fsys, t.SourceDir())
			if !ok {
				c.log().Debug("Dropping target without recognizable sources",
					logfields.Target(t.Name), logfields.Path(t.SourceDir()))
				continue
			}
			t.Kind = kind
		}
		c.log().Debug("Classified target", logfields.Target(t.Name), logfields.Kind(t.Kind.String()))
		out = append(out, t)
	}
	return out
}

// inspect walks dir and infers the target kind from the extensions present.
// Source-language files win over native ones.
func (c *Classifier) inspect(fsys fs.FS, dir string) (manifest.Kind, bool) {
	if !fs.ValidPath(dir) {
		return manifest.KindUnsupported, false
	}
	info, err := fs.Stat(fsys, dir)
	if err != nil || !info.IsDir() {
		return manifest.KindUnsupported, false
	}

	foundNative := false
	foundSource := false
	err = fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			// Unreadable nested directory: skip it and keep going.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			// Hidden directories hold build products and checkouts (.build, .swiftpm).
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		ext := extension(d.Name())
		if _, ok := c.sourceExt[ext]; ok {
			foundSource = true
			return fs.SkipAll
		}
		if _, ok := c.nativeExt[ext]; ok {
			foundNative = true
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.SkipAll) {
		return manifest.KindUnsupported, false
	}

	switch {
	case foundSource:
		return manifest.KindSourceLanguage, true
	case foundNative:
		return manifest.KindNativeLanguage, true
	default:
		return manifest.KindUnsupported, false
	}
}

// extension returns the text after the final dot, or "" when there is none.
func extension(name string) string {
	return strings.TrimPrefix(path.Ext(name), ".")
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.TrimPrefix(v, ".")] = struct{}{}
	}
	return set
}
