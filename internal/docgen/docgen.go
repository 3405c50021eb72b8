// Package docgen drives the external documentation generator once per target.
package docgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/pkgdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgdocs/internal/logfields"
	"git.home.luguber.info/inful/pkgdocs/internal/manifest"
	"git.home.luguber.info/inful/pkgdocs/internal/runner"
)

// ErrDocumentationGenerationFailed indicates the generator could not be run or exited non-zero.
var ErrDocumentationGenerationFailed = errors.New("documentation generation failed")

// Request carries the run-wide settings for one generator invocation.
type Request struct {
	WorkingDirectory   string // package root; the generator runs here
	OutputRoot         string // absolute site root
	HostingBasePath    string // global URL prefix, may be empty
	MinimumAccessLevel string
}

// Driver invokes `swift package generate-documentation`.
type Driver struct {
	runner     runner.Runner
	executable string
}

// NewDriver returns a Driver invoking executable through r.
func NewDriver(r runner.Runner, executable string) *Driver {
	return &Driver{runner: r, executable: executable}
}

// TargetHostingBasePath is the base path the generator bakes into a target's
// cross-links: "/<base>/<name>" under a global prefix, else just the name.
func TargetHostingBasePath(hostingBasePath, name string) string {
	base := strings.Trim(hostingBasePath, "/")
	if base == "" {
		return name
	}
	return "/" + base + "/" + name
}

// OutputDir is where a target's documentation tree is written.
func OutputDir(outputRoot, name string) string {
	return filepath.Join(outputRoot, name)
}

// Args builds the generator argument vector for one target.
func Args(target manifest.Target, req Request) []string {
	outDir := OutputDir(req.OutputRoot, target.Name)
	args := []string{
		"package",
		"--allow-writing-to-directory", outDir,
		"generate-documentation",
		"--target", target.Name,
		"--disable-indexing",
		"--transform-for-static-hosting",
		"--hosting-base-path", TargetHostingBasePath(req.HostingBasePath, target.Name),
		"--output-path", outDir,
	}
	if req.MinimumAccessLevel != "" {
		args = append(args, "--symbol-graph-minimum-access-level", req.MinimumAccessLevel)
	}
	return args
}

// Generate produces documentation for target. Only source-language targets
// reach the generator; native targets are accepted and skipped.
func (d *Driver) Generate(ctx context.Context, target manifest.Target, req Request) error {
	if target.Kind == manifest.KindNativeLanguage {
		slog.Debug("Skipping native-language target; no documentation is generated", logfields.Target(target.Name))
		return nil
	}
	if target.Kind != manifest.KindSourceLanguage {
		return ferrors.InternalError("target is not classified").
			WithContext("target", target.Name).
			WithContext("kind", target.Kind.String()).
			Build()
	}

	cmd := runner.Command{Path: d.executable, Args: Args(target, req), Dir: req.WorkingDirectory}
	slog.Info("Generating documentation", logfields.Target(target.Name), logfields.Path(OutputDir(req.OutputRoot, target.Name)))

	res, err := d.runner.Run(ctx, cmd)
	if err != nil {
		return ferrors.GenerationError("unable to generate documentation").
			WithCause(fmt.Errorf("%w: %w", ErrDocumentationGenerationFailed, err)).
			WithContext("target", target.Name).
			WithContext("command", cmd.String()).
			Build()
	}
	if !res.Success() {
		return ferrors.GenerationError("unable to generate documentation").
			WithCause(fmt.Errorf("%w: exit status %d", ErrDocumentationGenerationFailed, res.ExitCode)).
			WithContext("target", target.Name).
			WithContext("command", cmd.String()).
			WithContext("exit_code", res.ExitCode).
			WithContext("stderr", strings.TrimSpace(string(res.Stderr))).
			Build()
	}
	return nil
}
