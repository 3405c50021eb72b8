package publish

import (
	"context"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/pkgdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgdocs/internal/logfields"
)

const defaultContentType = "application/octet-stream"

// Publisher copies a site tree into an ObjectStore.
type Publisher struct {
	store ObjectStore
}

// NewPublisher returns a Publisher writing to store.
func NewPublisher(store ObjectStore) *Publisher {
	return &Publisher{store: store}
}

// ObjectKey maps a slash-separated path relative to the site root onto its
// key under prefix.
func ObjectKey(prefix, rel string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return rel
	}
	return prefix + "/" + rel
}

// ContentType guesses the MIME type of name from its extension.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return defaultContentType
}

// Publish uploads every regular file below siteRoot and returns how many
// objects were written. The first failure aborts the upload.
func (pub *Publisher) Publish(ctx context.Context, siteRoot, prefix string) (int, error) {
	info, err := os.Stat(siteRoot)
	if err != nil || !info.IsDir() {
		return 0, ferrors.FileSystemError("site directory not found").
			Fatal().
			WithContext("path", siteRoot).
			Build()
	}

	count := 0
	walkErr := filepath.WalkDir(siteRoot, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(siteRoot, file)
		if err != nil {
			return err
		}
		key := ObjectKey(prefix, filepath.ToSlash(rel))
		if err := pub.upload(ctx, file, key); err != nil {
			return err
		}
		count++
		slog.Debug("Uploaded object", logfields.Path(file), slog.String("key", key))
		return nil
	})
	if walkErr != nil {
		return count, ferrors.PublishError("unable to publish site").
			WithCause(walkErr).
			WithContext("path", siteRoot).
			WithContext("uploaded", count).
			Build()
	}
	slog.Info("Site published", logfields.Count(count), slog.String("prefix", prefix))
	return count, nil
}

func (pub *Publisher) upload(ctx context.Context, file, key string) error {
	f, err := os.Open(file) // #nosec G304 -- walking the generated site
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	return pub.store.Put(ctx, key, f, info.Size(), ContentType(key))
}
