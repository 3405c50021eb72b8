package commands

import (
	"context"
	"path/filepath"

	"git.home.luguber.info/inful/pkgdocs/internal/manifest"
	"git.home.luguber.info/inful/pkgdocs/internal/runner"
	"git.home.luguber.info/inful/pkgdocs/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	BuildFlags `embed:""`

	runner  runner.Runner        `kong:"-"`
	onWatch func(*watch.Watcher) `kong:"-"`
}

func (w *WatchCmd) Run(global *Global, cli *CLI) error {
	opts, err := w.resolve(global, cli)
	if err != nil {
		return err
	}
	b := newBuild(opts, w.runner)
	watcher := watch.New(opts.WorkingDirectory, watch.WithIgnoredDir(opts.OutputPath))
	if w.onWatch != nil {
		w.onWatch(watcher)
	}
	return watcher.Run(global.context(), func(ctx context.Context) error {
		report, err := b.run(&Global{Context: ctx})
		if report != nil {
			watcher.WatchSourceDirs(sourceDirs(report.Classified)...)
		}
		return err
	})
}

// sourceDirs lists the source directories of targets, relative to the package root.
func sourceDirs(targets []manifest.Target) []string {
	dirs := make([]string, 0, len(targets))
	for _, t := range targets {
		dirs = append(dirs, filepath.FromSlash(t.SourceDir()))
	}
	return dirs
}
