package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pkgdocs/internal/config"
	"git.home.luguber.info/inful/pkgdocs/internal/docgen"
	ferrors "git.home.luguber.info/inful/pkgdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgdocs/internal/git"
	"git.home.luguber.info/inful/pkgdocs/internal/manifest"
	"git.home.luguber.info/inful/pkgdocs/internal/metrics"
	"git.home.luguber.info/inful/pkgdocs/internal/runner"
	"git.home.luguber.info/inful/pkgdocs/internal/site"
)

// fakeSwift answers dump-package with a canned manifest and emulates
// generate-documentation by creating the target's documentation tree.
type fakeSwift struct {
	t        *testing.T
	manifest string
	dumpExit int
	failFor  string

	mu    sync.Mutex
	calls []runner.Command
}

func (f *fakeSwift) Run(_ context.Context, cmd runner.Command) (runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()

	if slices.Equal(cmd.Args, manifest.DumpPackageArgs) {
		if f.dumpExit != 0 {
			return runner.Result{ExitCode: f.dumpExit, Stderr: []byte("error: no Package.swift")}, nil
		}
		return runner.Result{Stdout: []byte(f.manifest)}, nil
	}

	target := argAfter(cmd.Args, "--target")
	if target == f.failFor {
		return runner.Result{ExitCode: 1, Stderr: []byte("docc failed")}, nil
	}
	out := argAfter(cmd.Args, "--output-path")
	require.NoError(f.t, os.MkdirAll(filepath.Join(out, "documentation", strings.ToLower(target)), 0o755))
	return runner.Result{}, nil
}

func (f *fakeSwift) generated() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, c := range f.calls {
		if slices.Contains(c.Args, "generate-documentation") {
			names = append(names, argAfter(c.Args, "--target"))
		}
	}
	return names
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

type countingRecorder struct {
	metrics.NoopRecorder
	outcomes []metrics.RunOutcomeLabel
	stages   map[string]metrics.ResultLabel
	kinds    map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{stages: map[string]metrics.ResultLabel{}, kinds: map[string]int{}}
}

func (c *countingRecorder) IncRunOutcome(o metrics.RunOutcomeLabel) {
	c.outcomes = append(c.outcomes, o)
}
func (c *countingRecorder) IncStageResult(stage string, r metrics.ResultLabel) {
	c.stages[stage] = r
}
func (c *countingRecorder) IncClassifiedTarget(kind string) { c.kinds[kind]++ }

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("//"), 0o600))
	}
}

func options(t *testing.T, workdir string) config.Options {
	t.Helper()
	return config.Options{
		WorkingDirectory:   workdir,
		OutputPath:         filepath.Join(t.TempDir(), "docs"),
		MinimumAccessLevel: config.AccessPublic,
		SwiftExecutable:    "swift",
		VerifyLinks:        true,
	}
}

func noCommit(string) (string, error) { return "", git.ErrNotRepository }

func TestRun_NativeOnlyPackageShortCircuits(t *testing.T) {
	workdir := t.TempDir()
	writeFiles(t, workdir, "Sources/Core/core.c", "Sources/Core/include/core.h")
	swift := &fakeSwift{t: t, manifest: `{"targets":[{"name":"Core","type":"regular"},{"name":"CoreTests","type":"unsupported"}]}`}
	rec := newCountingRecorder()
	opts := options(t, workdir)

	report, err := New(swift, WithRecorder(rec), WithHeadCommit(noCommit)).Run(context.Background(), opts)
	require.NoError(t, err)
	require.True(t, report.Skipped)
	require.Equal(t, SkipReasonNoTargets, report.SkipReason)
	require.Equal(t, []manifest.Target{{Name: "Core", Kind: manifest.KindNativeLanguage}}, report.Classified)
	require.Empty(t, report.Documented)
	require.Empty(t, swift.generated())
	require.Empty(t, report.IndexPath)
	require.NoFileExists(t, filepath.Join(opts.OutputPath, site.IndexFile))
	require.Equal(t, []metrics.RunOutcomeLabel{metrics.RunOutcomeSkipped}, rec.outcomes)
	require.Equal(t, 1, rec.kinds["nativeLanguage"])
}

func TestRun_SingleTargetWritesRedirect(t *testing.T) {
	workdir := t.TempDir()
	writeFiles(t, workdir, "Sources/Foo/Foo.swift", "Sources/Shim/shim.c")
	swift := &fakeSwift{t: t, manifest: `{"targets":[{"name":"Foo","type":"regular"},{"name":"Shim","type":"regular"},{"name":"FooTests","type":"test"}]}`}
	rec := newCountingRecorder()
	opts := options(t, workdir)

	report, err := New(swift, WithRecorder(rec), WithHeadCommit(noCommit)).Run(context.Background(), opts)
	require.NoError(t, err)
	require.False(t, report.Skipped)
	require.NotEmpty(t, report.RunID)
	require.Equal(t, []string{"Foo"}, swift.generated())
	require.Equal(t, []manifest.Target{{Name: "Foo", Kind: manifest.KindSourceLanguage}}, report.Documented)
	require.Equal(t, filepath.Join(opts.OutputPath, site.IndexFile), report.IndexPath)
	require.Zero(t, report.BrokenLinks)

	data, err := os.ReadFile(report.IndexPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "url=/Foo/documentation/foo")
	require.Equal(t, metrics.ResultSuccess, rec.stages[StageVerifyLinks])
	require.Equal(t, []metrics.RunOutcomeLabel{metrics.RunOutcomeSuccess}, rec.outcomes)
}

func TestRun_GeneratesInClassifiedOrderWithHostingBasePath(t *testing.T) {
	workdir := t.TempDir()
	writeFiles(t, workdir, "Sources/Zeta/Z.swift", "Sources/Alpha/A.swift", "Custom/Beta/B.swift")
	swift := &fakeSwift{t: t, manifest: `{"targets":[
		{"name":"Zeta","type":"regular"},
		{"name":"Alpha","type":"regular"},
		{"name":"Beta","type":"regular","path":"Custom/Beta"}]}`}
	opts := options(t, workdir)
	opts.HostingBasePath = "repo"
	opts.Title = "Kit"

	report, err := New(swift, WithHeadCommit(func(string) (string, error) {
		return "0123456789abcdef0123", nil
	})).Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, []string{"Zeta", "Alpha", "Beta"}, swift.generated())
	require.Len(t, report.Documented, 3)
	require.Zero(t, report.BrokenLinks)

	var gen runner.Command
	for _, c := range swift.calls {
		if argAfter(c.Args, "--target") == "Alpha" {
			gen = c
		}
	}
	require.Equal(t, workdir, gen.Dir)
	require.Equal(t, "/repo/Alpha", argAfter(gen.Args, "--hosting-base-path"))
	require.Equal(t, docgen.OutputDir(opts.OutputPath, "Alpha"), argAfter(gen.Args, "--output-path"))

	data, err := os.ReadFile(report.IndexPath)
	require.NoError(t, err)
	page := string(data)
	require.Less(t, strings.Index(page, "/repo/Alpha/documentation/alpha"), strings.Index(page, "/repo/Beta/documentation/beta"))
	require.Less(t, strings.Index(page, "/repo/Beta/documentation/beta"), strings.Index(page, "/repo/Zeta/documentation/zeta"))
	require.Contains(t, page, "Kit")
	require.Contains(t, page, "0123456789ab")
}

func TestRun_ManifestFailureStopsRun(t *testing.T) {
	swift := &fakeSwift{t: t, dumpExit: 1}
	rec := newCountingRecorder()
	opts := options(t, t.TempDir())

	report, err := New(swift, WithRecorder(rec), WithHeadCommit(noCommit)).Run(context.Background(), opts)
	require.ErrorIs(t, err, manifest.ErrManifestUnavailable)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryManifest))
	require.Len(t, swift.calls, 1)
	require.Nil(t, report.Classified)
	require.NoDirExists(t, opts.OutputPath)
	require.Equal(t, metrics.ResultFatal, rec.stages[StageFetchManifest])
	require.NotContains(t, rec.stages, StageClassify)
	require.Equal(t, []metrics.RunOutcomeLabel{metrics.RunOutcomeFailed}, rec.outcomes)
}

func TestRun_GenerationFailureAbortsRemainingTargets(t *testing.T) {
	workdir := t.TempDir()
	writeFiles(t, workdir, "Sources/A/a.swift", "Sources/B/b.swift", "Sources/C/c.swift")
	swift := &fakeSwift{t: t, failFor: "B", manifest: `{"targets":[{"name":"A","type":"regular"},{"name":"B","type":"regular"},{"name":"C","type":"regular"}]}`}
	opts := options(t, workdir)

	report, err := New(swift, WithHeadCommit(noCommit)).Run(context.Background(), opts)
	require.ErrorIs(t, err, docgen.ErrDocumentationGenerationFailed)
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	target, _ := ce.Context().GetString("target")
	require.Equal(t, "B", target)
	require.Equal(t, []string{"A", "B"}, swift.generated())
	require.Len(t, report.Documented, 1)
	require.NoFileExists(t, filepath.Join(opts.OutputPath, site.IndexFile))
}

func TestRun_ReportsBrokenLinks(t *testing.T) {
	workdir := t.TempDir()
	writeFiles(t, workdir, "Sources/Foo/Foo.swift")
	opts := options(t, workdir)
	// A runner that succeeds without producing any output tree.
	r := runner.Func(func(_ context.Context, cmd runner.Command) (runner.Result, error) {
		if slices.Equal(cmd.Args, manifest.DumpPackageArgs) {
			return runner.Result{Stdout: []byte(`{"targets":[{"name":"Foo","type":"regular"}]}`)}, nil
		}
		return runner.Result{}, nil
	})

	report, err := New(r, WithHeadCommit(noCommit)).Run(context.Background(), opts)
	require.NoError(t, err)
	require.Positive(t, report.BrokenLinks)

	opts.VerifyLinks = false
	rec := newCountingRecorder()
	report, err = New(r, WithRecorder(rec), WithHeadCommit(noCommit)).Run(context.Background(), opts)
	require.NoError(t, err)
	require.Zero(t, report.BrokenLinks)
	require.Equal(t, metrics.ResultSkipped, rec.stages[StageVerifyLinks])
}

func TestRun_MissingIntroIsConfigError(t *testing.T) {
	workdir := t.TempDir()
	writeFiles(t, workdir, "Sources/Foo/Foo.swift")
	swift := &fakeSwift{t: t, manifest: `{"targets":[{"name":"Foo","type":"regular"},{"name":"Bar","type":"regular"}]}`}
	opts := options(t, workdir)
	opts.IntroMarkdown = filepath.Join(workdir, "missing.md")

	_, err := New(swift, WithHeadCommit(noCommit)).Run(context.Background(), opts)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	swift := &fakeSwift{t: t}

	_, err := New(swift, WithHeadCommit(noCommit)).Run(ctx, options(t, t.TempDir()))
	require.True(t, errors.Is(err, context.Canceled))
	require.Empty(t, swift.calls)
}

func TestReportDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &Report{Start: start}
	require.Zero(t, r.Duration())
	r.End = start.Add(1500 * time.Millisecond)
	require.Equal(t, 1500*time.Millisecond, r.Duration())
}
