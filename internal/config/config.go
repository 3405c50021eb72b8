// Package config resolves the settings of a documentation run from flags,
// environment, an optional YAML file and defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	ferrors "git.home.luguber.info/inful/pkgdocs/internal/foundation/errors"
)

// Defaults applied when no layer supplies a value.
const (
	DefaultOutputPath = "docs"
	DefaultSwift      = "swift"
)

// Options are the resolved, immutable settings of one run.
type Options struct {
	WorkingDirectory   string `validate:"required,dir"`
	OutputPath         string `validate:"required"`
	HostingBasePath    string
	MinimumAccessLevel AccessLevel `validate:"required,oneof=private fileprivate internal package public open"`
	SwiftExecutable    string      `validate:"required"`
	Title              string
	IntroMarkdown      string `validate:"omitempty,file"`
	MetricsFile        string
	VerifyLinks        bool
}

// Overrides carry values from the command line (kong already folds
// environment variables into them). Empty strings mean "not provided".
type Overrides struct {
	ConfigFile         string
	WorkingDirectory   string
	OutputPath         string
	HostingBasePath    string
	MinimumAccessLevel string
	SwiftExecutable    string
	Title              string
	IntroMarkdown      string
	MetricsFile        string
	VerifyLinks        *bool
}

// Resolve merges overrides, the config file and defaults, in that order of
// precedence. Relative paths from the command line resolve against cwd;
// relative paths from the config file resolve against the file's directory.
func Resolve(ov Overrides, cwd string) (Options, error) {
	workdir := ov.WorkingDirectory
	if workdir == "" {
		workdir = cwd
	}
	workdir = absFrom(cwd, workdir)

	file, err := findFile(absFrom(cwd, ov.ConfigFile), workdir)
	if err != nil {
		return Options{}, ferrors.ConfigError("cannot load configuration file").
			WithCause(err).
			WithContext("working_directory", workdir).
			Build()
	}
	if file == nil {
		file = &File{dir: workdir}
	}

	rawLevel := firstNonEmpty(ov.MinimumAccessLevel, file.MinimumAccessLevel)
	level, err := ParseAccessLevel(rawLevel)
	if err != nil {
		return Options{}, ferrors.ValidationError("invalid minimum access level").
			WithCause(err).
			WithContext("value", rawLevel).
			Build()
	}

	opts := Options{
		WorkingDirectory:   workdir,
		OutputPath:         firstNonEmpty(absFrom(cwd, ov.OutputPath), file.path(file.OutputPath), filepath.Join(cwd, DefaultOutputPath)),
		HostingBasePath:    TrimHostingBasePath(firstNonEmpty(ov.HostingBasePath, file.HostingBasePath)),
		MinimumAccessLevel: level,
		SwiftExecutable:    firstNonEmpty(executablePath(cwd, ov.SwiftExecutable), executablePath(file.dir, file.Swift), DefaultSwift),
		Title:              firstNonEmpty(ov.Title, file.Title),
		IntroMarkdown:      firstNonEmpty(absFrom(cwd, ov.IntroMarkdown), file.path(file.Intro)),
		MetricsFile:        firstNonEmpty(absFrom(cwd, ov.MetricsFile), file.path(file.MetricsFile)),
		VerifyLinks:        true,
	}
	switch {
	case ov.VerifyLinks != nil:
		opts.VerifyLinks = *ov.VerifyLinks
	case file.VerifyLinks != nil:
		opts.VerifyLinks = *file.VerifyLinks
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

var validate = validator.New()

// Validate checks the resolved options.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ferrors.InternalError("option validation failed").WithCause(err).Build()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return ferrors.ValidationError("invalid options: "+strings.Join(fields, ", ")).
		WithCause(err).
		WithContext("working_directory", o.WorkingDirectory).
		Build()
}

// TrimHostingBasePath removes surrounding whitespace and slashes.
func TrimHostingBasePath(hbp string) string {
	return strings.Trim(strings.TrimSpace(hbp), "/")
}

func absFrom(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// executablePath anchors a relative path containing a separator at base.
// Bare names are left for PATH lookup.
func executablePath(base, p string) string {
	if !strings.ContainsRune(p, '/') && !strings.ContainsRune(p, filepath.Separator) {
		return p
	}
	return absFrom(base, p)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
