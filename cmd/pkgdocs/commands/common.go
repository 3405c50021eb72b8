// Package commands defines the pkgdocs command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pkgdocs/internal/config"
)

// Global is bound into every command's Run.
type Global struct {
	Context context.Context
	// Getwd resolves relative paths; os.Getwd when nil.
	Getwd func() (string, error)
}

func (g *Global) context() context.Context {
	if g == nil || g.Context == nil {
		return context.Background()
	}
	return g.Context
}

func (g *Global) cwd() (string, error) {
	if g != nil && g.Getwd != nil {
		return g.Getwd()
	}
	return os.Getwd()
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (default: <working-directory>/.pkgdocs.yaml when present)" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text, json)" enum:"text,json" default:"text"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" default:"withargs" help:"Generate documentation for every documentable target (default)"`
	Watch    WatchCmd    `cmd:"" help:"Regenerate documentation whenever package sources change"`
	Publish  PublishCmd  `cmd:"" help:"Upload a generated site to an S3-compatible bucket"`

	logOut io.Writer `kong:"-"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(c.newLogger())
	return nil
}

func (c *CLI) newLogger() *slog.Logger {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	out := c.logOut
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// BuildFlags are shared by generate and watch.
type BuildFlags struct {
	OutputPath         string `name:"output-path" short:"o" env:"INPUT_OUTPUT_PATH" help:"Site output directory (default: ./docs)" placeholder:"DIR"`
	HostingBasePath    string `name:"hosting-base-path" env:"INPUT_HOSTING_BASE_PATH" help:"URL path prefix the site is served under" placeholder:"PATH"`
	WorkingDirectory   string `name:"working-directory" short:"C" help:"Package directory (default: current directory)" placeholder:"DIR"`
	MinimumAccessLevel string `name:"minimum-access-level" help:"Lowest symbol access level to document (private, fileprivate, internal, package, public, open)" placeholder:"LEVEL"`
	Swift              string `name:"swift" env:"PKGDOCS_SWIFT" help:"Swift executable (default: swift)" placeholder:"PATH"`
	Title              string `name:"title" help:"Heading of the target listing page"`
	Intro              string `name:"intro" help:"Markdown file rendered above the target listing" placeholder:"FILE"`
	MetricsFile        string `name:"metrics-file" help:"Write Prometheus metrics in textfile format to FILE" placeholder:"FILE"`
	NoVerifyLinks      bool   `name:"no-verify-links" help:"Skip checking index links against generated output"`
}

// Overrides converts flags into the highest-precedence configuration layer.
func (f BuildFlags) Overrides(configFile string) config.Overrides {
	ov := config.Overrides{
		ConfigFile:         configFile,
		WorkingDirectory:   f.WorkingDirectory,
		OutputPath:         f.OutputPath,
		HostingBasePath:    f.HostingBasePath,
		MinimumAccessLevel: f.MinimumAccessLevel,
		SwiftExecutable:    f.Swift,
		Title:              f.Title,
		IntroMarkdown:      f.Intro,
		MetricsFile:        f.MetricsFile,
	}
	if f.NoVerifyLinks {
		verify := false
		ov.VerifyLinks = &verify
	}
	return ov
}

func (f BuildFlags) resolve(g *Global, cli *CLI) (config.Options, error) {
	cwd, err := g.cwd()
	if err != nil {
		return config.Options{}, err
	}
	return config.Resolve(f.Overrides(cli.Config), cwd)
}

// valueFlags are flags that consume the following token.
var valueFlags = map[string]bool{
	"-c": true, "--config": true,
	"--log-format":           true,
	"-o":                     true,
	"--output-path":          true,
	"--hosting-base-path":    true,
	"-C":                     true,
	"--working-directory":    true,
	"--minimum-access-level": true,
	"--swift":                true,
	"--title":                true,
	"--intro":                true,
	"--metrics-file":         true,
	"--endpoint":             true,
	"--bucket":               true,
	"--region":               true,
	"--access-key":           true,
	"--secret-key":           true,
}

// NormalizeArgs drops value flags that have no value: a value flag followed
// by another flag or by the end of input is treated as not provided.
func NormalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		if valueFlags[arg] {
			if i+1 >= len(args) || isFlag(args[i+1]) {
				slog.Debug("Ignoring flag without value", slog.String("flag", arg))
				continue
			}
			out = append(out, arg, args[i+1])
			i++
			continue
		}
		out = append(out, arg)
	}
	return out
}

func isFlag(token string) bool {
	return strings.HasPrefix(token, "-") && token != "-"
}
