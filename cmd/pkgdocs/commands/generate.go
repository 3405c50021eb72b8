package commands

import (
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pkgdocs/internal/config"
	"git.home.luguber.info/inful/pkgdocs/internal/logfields"
	"git.home.luguber.info/inful/pkgdocs/internal/metrics"
	"git.home.luguber.info/inful/pkgdocs/internal/pipeline"
	"git.home.luguber.info/inful/pkgdocs/internal/runner"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	BuildFlags `embed:""`

	runner runner.Runner `kong:"-"`
}

func (g *GenerateCmd) Run(global *Global, cli *CLI) error {
	opts, err := g.resolve(global, cli)
	if err != nil {
		return err
	}
	b := newBuild(opts, g.runner)
	_, err = b.run(global)
	return err
}

// build wires one pipeline plus its optional metrics export.
type build struct {
	opts     config.Options
	pipeline *pipeline.Pipeline
	registry *prom.Registry
}

func newBuild(opts config.Options, r runner.Runner) *build {
	if r == nil {
		r = runner.NewExecRunner()
	}
	b := &build{opts: opts}
	var pipeOpts []pipeline.Option
	if opts.MetricsFile != "" {
		b.registry = prom.NewRegistry()
		pipeOpts = append(pipeOpts, pipeline.WithRecorder(metrics.NewPrometheusRecorder(b.registry)))
	}
	b.pipeline = pipeline.New(r, pipeOpts...)
	return b
}

func (b *build) run(global *Global) (*pipeline.Report, error) {
	report, err := b.pipeline.Run(global.context(), b.opts)
	if b.registry != nil {
		if werr := metrics.WriteTextfile(b.opts.MetricsFile, b.registry); werr != nil {
			slog.Warn("Unable to write metrics file", logfields.Path(b.opts.MetricsFile), logfields.Error(werr))
		}
	}
	return report, err
}
