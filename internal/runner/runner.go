// Package runner executes external tools on behalf of the pipeline.
//
// Both the manifest producer and the documentation generator are modelled as a
// Runner capability rather than direct os/exec calls, so stages can be driven
// by a fake in tests and so every invocation carries an explicit working
// directory instead of relying on the process-wide one.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pkgdocs/internal/logfields"
)

var (
	// ErrStart indicates the executable could not be located or spawned.
	ErrStart = errors.New("command could not be started")
	// ErrOutput indicates the command's standard output could not be fully captured.
	ErrOutput = errors.New("command output could not be read")
)

// Command describes one subprocess invocation.
type Command struct {
	Path string   // executable name or path, resolved through PATH when bare
	Args []string // arguments, not including the executable
	Dir  string   // working directory; empty means the current process directory
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Path + " " + strings.Join(c.Args, " "))
}

// Result is the captured outcome of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the command exited with status 0.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Runner runs a command to completion.
//
// A non-zero exit status is reported through Result.ExitCode with a nil error;
// the returned error is reserved for failures to spawn the command (ErrStart)
// or to capture its output (ErrOutput).
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Func adapts a plain function to the Runner interface.
type Func func(ctx context.Context, cmd Command) (Result, error)

// Run calls f.
func (f Func) Run(ctx context.Context, cmd Command) (Result, error) { return f(ctx, cmd) }

// ExecRunner runs commands as operating system processes.
type ExecRunner struct {
	// Logger receives debug output; nil uses slog.Default().
	Logger *slog.Logger
}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Run starts cmd, reads its entire standard output and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	path, err := exec.LookPath(cmd.Path)
	if err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("%w: %w", ErrStart, err)
	}
	// LookPath resolves relative paths against the process directory, not cmd.Dir.
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	c := exec.CommandContext(ctx, path, cmd.Args...)
	c.Dir = cmd.Dir
	var stderr bytes.Buffer
	c.Stderr = &stderr

	stdout, err := c.StdoutPipe()
	if err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("%w: %w", ErrStart, err)
	}

	r.logger().Debug("Running command", logfields.Command(cmd.String()), logfields.Path(cmd.Dir))

	if err := c.Start(); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("%w: %w", ErrStart, err)
	}

	out, readErr := io.ReadAll(stdout)
	waitErr := c.Wait()

	res := Result{Stdout: out, Stderr: stderr.Bytes()}
	if errStr := strings.TrimSpace(stderr.String()); errStr != "" {
		r.logger().Debug("command stderr", logfields.Command(cmd.Path), slog.String("error_output", errStr))
	}

	if readErr != nil {
		res.ExitCode = -1
		return res, fmt.Errorf("%w: %w", ErrOutput, readErr)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		res.ExitCode = -1
		return res, fmt.Errorf("%w: %w", ErrOutput, waitErr)
	}

	return res, nil
}
