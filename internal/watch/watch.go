// Package watch rebuilds documentation whenever package sources change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/pkgdocs/internal/logfields"
	"git.home.luguber.info/inful/pkgdocs/internal/manifest"
)

// ManifestFiles are package-root files whose change triggers a rebuild.
var ManifestFiles = []string{"Package.swift", "Package.resolved"}

// Watcher observes a package directory.
type Watcher struct {
	root    string
	ignore  []string
	quiet   time.Duration
	started chan struct{}

	mu      sync.Mutex
	sources []string // absolute target source directories
	fw      *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithQuietWindow sets the debounce window.
func WithQuietWindow(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.quiet = d
		}
	}
}

// WithIgnoredDir excludes a directory tree (typically the output path) from
// triggering rebuilds.
func WithIgnoredDir(dir string) Option {
	return func(w *Watcher) {
		if dir != "" {
			w.ignore = append(w.ignore, filepath.Clean(dir))
		}
	}
}

// New returns a Watcher for the package rooted at root.
func New(root string, opts ...Option) *Watcher {
	w := &Watcher{root: filepath.Clean(root), quiet: DefaultQuietWindow, started: make(chan struct{})}
	w.sources = []string{filepath.Join(w.root, manifest.SourcesDir)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WatchSourceDirs adds target source directories outside Sources/ (custom
// target paths) to the trees that trigger rebuilds. Relative directories are
// taken from the package root. It may be called while Run is active.
func (w *Watcher) WatchSourceDirs(dirs ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, dir := range dirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(w.root, dir)
		}
		dir = filepath.Clean(dir)
		if slices.Contains(w.sources, dir) {
			continue
		}
		w.sources = append(w.sources, dir)
		slog.Debug("Watching target sources", logfields.Path(dir))
		if w.fw != nil {
			w.addDirsRecursive(w.fw, dir)
		}
	}
}

func (w *Watcher) sourceDirs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.sources)
}

// Started is closed once the initial build finished and watches are active.
func (w *Watcher) Started() <-chan struct{} { return w.started }

// Run performs an initial build, then calls rebuild after every burst of
// source changes until ctx is done. Builds never overlap; changes arriving
// during a build queue exactly one follow-up. Build failures are logged and
// watching continues.
func (w *Watcher) Run(ctx context.Context, rebuild func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(w.root); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	w.mu.Lock()
	w.fw = fw
	for _, dir := range w.sources {
		w.addDirsRecursive(fw, dir)
	}
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.fw = nil
		w.mu.Unlock()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	deb := newDebouncer(w.quiet)
	defer deb.stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.build(ctx, rebuild, "initial")
		close(w.started)
		for {
			select {
			case <-ctx.Done():
				return
			case <-deb.C:
				w.build(ctx, rebuild, "change")
			}
		}
	}()

	// stop ends the builder goroutine and waits for an in-flight build.
	stop := func() {
		cancel()
		<-done
	}

	slog.Info("Watching package for changes", logfields.Path(w.root))
	for {
		select {
		case <-ctx.Done():
			<-done
			slog.Info("Watch stopped")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				stop()
				return nil
			}
			w.handleEvent(fw, ev, deb.trigger)
		case err, ok := <-fw.Errors:
			if !ok {
				stop()
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) build(ctx context.Context, rebuild func(context.Context) error, reason string) {
	if ctx.Err() != nil {
		return
	}
	slog.Info("Rebuilding documentation", slog.String("reason", reason))
	start := time.Now()
	if err := rebuild(ctx); err != nil {
		slog.Warn("rebuild failed", logfields.Error(err))
		return
	}
	slog.Info("Rebuild finished", logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}

// handleEvent filters ev and triggers a rebuild when it concerns sources or
// the manifest. New directories in a source tree are watched as they appear.
func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if !w.relevant(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addDirsRecursive(fw, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func (w *Watcher) relevant(path string) bool {
	if shouldIgnoreEvent(path) {
		return false
	}
	for _, dir := range w.ignore {
		if within(dir, path) {
			return false
		}
	}
	if hiddenBelow(w.root, path) {
		return false
	}
	if filepath.Dir(path) == w.root && slices.Contains(ManifestFiles, filepath.Base(path)) {
		return true
	}
	for _, dir := range w.sourceDirs() {
		if within(dir, path) {
			return true
		}
	}
	return false
}

func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if slices.ContainsFunc(w.ignore, func(dir string) bool { return within(dir, path) }) {
				return filepath.SkipDir
			}
			if err := fw.Add(path); err != nil {
				slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// hiddenBelow reports whether path lies in a dot-directory under root, such as
// .build or .swiftpm.
func hiddenBelow(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

// shouldIgnoreEvent reports editor temp files and other noise.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."),
		strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	}
	return false
}
