package manifest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	ferrors "git.home.luguber.info/inful/pkgdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgdocs/internal/logfields"
	"git.home.luguber.info/inful/pkgdocs/internal/runner"
)

// DumpPackageArgs is the fixed argument vector asking SwiftPM for its manifest.
var DumpPackageArgs = []string{"package", "dump-package"}

// Fetcher obtains a package manifest by running the manifest command.
type Fetcher struct {
	runner     runner.Runner
	executable string
}

// NewFetcher returns a Fetcher invoking executable (typically "swift") through r.
func NewFetcher(r runner.Runner, executable string) *Fetcher {
	return &Fetcher{runner: r, executable: executable}
}

// Fetch runs the manifest command inside workingDir and decodes its output.
func (f *Fetcher) Fetch(ctx context.Context, workingDir string) (*Package, error) {
	cmd := runner.Command{Path: f.executable, Args: DumpPackageArgs, Dir: workingDir}

	res, err := f.runner.Run(ctx, cmd)
	if err != nil {
		sentinel := ErrManifestUnavailable
		if errors.Is(err, runner.ErrOutput) {
			sentinel = ErrManifestUnreadable
		}
		return nil, ferrors.ManifestError("unable to dump package").
			WithCause(fmt.Errorf("%w: %w", sentinel, err)).
			WithContext("command", cmd.String()).
			WithContext("working_directory", workingDir).
			Build()
	}
	if !res.Success() {
		return nil, ferrors.ManifestError("unable to dump package").
			WithCause(fmt.Errorf("%w: exit status %d", ErrManifestUnavailable, res.ExitCode)).
			WithContext("command", cmd.String()).
			WithContext("working_directory", workingDir).
			WithContext("exit_code", res.ExitCode).
			WithContext("stderr", strings.TrimSpace(string(res.Stderr))).
			Build()
	}

	pkg, err := Decode(res.Stdout)
	if err != nil {
		return nil, ferrors.ManifestError("unable to decode package manifest").
			WithCause(err).
			WithContext("working_directory", workingDir).
			Build()
	}

	slog.Debug("Package manifest decoded", logfields.Path(workingDir), logfields.Count(len(pkg.Targets)))
	return pkg, nil
}
