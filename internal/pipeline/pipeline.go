// Package pipeline sequences manifest fetching, classification, per-target
// generation and index assembly into one documentation run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pkgdocs/internal/classify"
	"git.home.luguber.info/inful/pkgdocs/internal/config"
	"git.home.luguber.info/inful/pkgdocs/internal/docgen"
	ferrors "git.home.luguber.info/inful/pkgdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgdocs/internal/git"
	"git.home.luguber.info/inful/pkgdocs/internal/linkverify"
	"git.home.luguber.info/inful/pkgdocs/internal/logfields"
	"git.home.luguber.info/inful/pkgdocs/internal/manifest"
	"git.home.luguber.info/inful/pkgdocs/internal/metrics"
	"git.home.luguber.info/inful/pkgdocs/internal/runner"
	"git.home.luguber.info/inful/pkgdocs/internal/site"
)

// Pipeline runs documentation builds. It holds no per-run state and may be
// reused, but runs must not overlap on the same output directory.
type Pipeline struct {
	runner     runner.Runner
	classifier *classify.Classifier
	recorder   metrics.Recorder
	headCommit func(dir string) (string, error)
	newRunID   func() string
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithHeadCommit replaces the provenance lookup used for the index footer.
func WithHeadCommit(fn func(dir string) (string, error)) Option {
	return func(p *Pipeline) { p.headCommit = fn }
}

// New returns a Pipeline executing subprocesses through r.
func New(r runner.Runner, opts ...Option) *Pipeline {
	p := &Pipeline{
		runner:     r,
		classifier: classify.New(),
		recorder:   metrics.NoopRecorder{},
		headCommit: git.HeadCommit,
		newRunID:   uuid.NewString,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run performs one full build for opts. When no target is documentable the
// run ends early with Report.Skipped set and a nil error; no index is written.
func (p *Pipeline) Run(ctx context.Context, opts config.Options) (*Report, error) {
	report := &Report{RunID: p.newRunID(), Start: p.now()}
	log := slog.Default().With(logfields.RunID(report.RunID))
	log.Info("Starting documentation run",
		logfields.Path(opts.WorkingDirectory),
		slog.String("output", opts.OutputPath),
		slog.String("hosting_base_path", opts.HostingBasePath))

	err := p.run(ctx, opts, report, log)

	report.End = p.now()
	p.recorder.ObserveRunDuration(report.Duration())
	switch {
	case err != nil:
		p.recorder.IncRunOutcome(metrics.RunOutcomeFailed)
		return report, err
	case report.Skipped:
		p.recorder.IncRunOutcome(metrics.RunOutcomeSkipped)
	default:
		p.recorder.IncRunOutcome(metrics.RunOutcomeSuccess)
		log.Info("Documentation run complete",
			logfields.Count(len(report.Documented)),
			logfields.Path(report.IndexPath),
			logfields.DurationMS(float64(report.Duration().Milliseconds())))
	}
	return report, nil
}

func (p *Pipeline) run(ctx context.Context, opts config.Options, report *Report, log *slog.Logger) error {
	var pkg *manifest.Package
	if err := p.stage(ctx, StageFetchManifest, log, func() error {
		var err error
		pkg, err = manifest.NewFetcher(p.runner, opts.SwiftExecutable).Fetch(ctx, opts.WorkingDirectory)
		return err
	}); err != nil {
		return err
	}

	_ = p.stage(ctx, StageClassify, log, func() error {
		pkg.Targets = p.classifier.WithLogger(log).Classify(os.DirFS(opts.WorkingDirectory), pkg.Targets)
		return nil
	})
	report.Classified = pkg.Targets
	for _, t := range pkg.Targets {
		p.recorder.IncClassifiedTarget(t.Kind.String())
	}

	documentable := pkg.Documentable()
	if len(documentable) == 0 {
		report.Skipped = true
		report.SkipReason = SkipReasonNoTargets
		log.Warn("No targets to document", logfields.Count(len(pkg.Targets)))
		return nil
	}

	if err := p.stage(ctx, StagePrepareOutput, log, func() error {
		if err := os.MkdirAll(opts.OutputPath, 0o755); err != nil {
			return ferrors.OutputError("unable to create output directory").
				WithCause(fmt.Errorf("%w: %w", site.ErrOutputWriteFailed, err)).
				WithContext("path", opts.OutputPath).
				Build()
		}
		return nil
	}); err != nil {
		return err
	}

	req := docgen.Request{
		WorkingDirectory:   opts.WorkingDirectory,
		OutputRoot:         opts.OutputPath,
		HostingBasePath:    opts.HostingBasePath,
		MinimumAccessLevel: string(opts.MinimumAccessLevel),
	}
	driver := docgen.NewDriver(p.runner, opts.SwiftExecutable)
	if err := p.stage(ctx, StageGenerate, log, func() error {
		for _, t := range pkg.Targets {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := p.now()
			err := driver.Generate(ctx, t, req)
			if t.Documentable() {
				p.recorder.ObserveTargetDuration(t.Name, p.now().Sub(start), err == nil)
			}
			if err != nil {
				return err
			}
			if t.Documentable() {
				report.Documented = append(report.Documented, t)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	page, err := p.page(opts, log)
	if err != nil {
		return err
	}
	if err := p.stage(ctx, StageAssemble, log, func() error {
		var err error
		report.IndexPath, err = site.NewAssembler(page).Assemble(report.Documented, opts.OutputPath, opts.HostingBasePath)
		return err
	}); err != nil {
		return err
	}

	if opts.VerifyLinks {
		_ = p.stage(ctx, StageVerifyLinks, log, func() error {
			broken, err := linkverify.Verify(report.IndexPath, opts.OutputPath, opts.HostingBasePath)
			if err != nil {
				log.Warn("Link verification failed", logfields.Error(err))
				return nil
			}
			report.BrokenLinks = len(broken)
			for _, b := range broken {
				log.Warn("Broken link in index page", logfields.URL(b.URL), slog.String("reason", b.Reason))
			}
			return nil
		})
	} else {
		p.recorder.IncStageResult(StageVerifyLinks, metrics.ResultSkipped)
		log.Debug("Link verification disabled", logfields.Stage(StageVerifyLinks))
	}
	return nil
}

// page collects listing decoration: the intro Markdown and the source commit.
func (p *Pipeline) page(opts config.Options, log *slog.Logger) (site.Page, error) {
	page := site.Page{Title: opts.Title}
	if opts.IntroMarkdown != "" {
		data, err := os.ReadFile(opts.IntroMarkdown)
		if err != nil {
			return page, ferrors.ConfigError("unable to read intro file").
				WithCause(err).
				WithContext("path", opts.IntroMarkdown).
				Build()
		}
		page.Intro = data
	}
	if p.headCommit != nil {
		commit, err := p.headCommit(opts.WorkingDirectory)
		switch {
		case err == nil:
			page.Commit = commit
		case errors.Is(err, git.ErrNotRepository):
			log.Debug("Package is not a git repository; omitting commit footer")
		default:
			log.Warn("Unable to read source commit", logfields.Error(err))
		}
	}
	return page, nil
}

// stage times fn and records its outcome.
func (p *Pipeline) stage(ctx context.Context, name string, log *slog.Logger, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := p.now()
	log.Debug("Stage started", logfields.Stage(name))
	err := fn()
	d := p.now().Sub(start)
	p.recorder.ObserveStageDuration(name, d)
	if err != nil {
		p.recorder.IncStageResult(name, metrics.ResultFatal)
		log.Error("Stage failed", logfields.Stage(name), logfields.Error(err))
		return err
	}
	p.recorder.IncStageResult(name, metrics.ResultSuccess)
	log.Debug("Stage finished", logfields.Stage(name), logfields.DurationMS(float64(d.Milliseconds())))
	return nil
}
