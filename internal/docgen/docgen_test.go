package docgen

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/pkgdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgdocs/internal/manifest"
	"git.home.luguber.info/inful/pkgdocs/internal/runner"
)

type recordingRunner struct {
	calls  []runner.Command
	result runner.Result
	err    error
}

func (r *recordingRunner) Run(_ context.Context, cmd runner.Command) (runner.Result, error) {
	r.calls = append(r.calls, cmd)
	return r.result, r.err
}

func TestTargetHostingBasePath(t *testing.T) {
	cases := []struct{ base, name, want string }{
		{"", "Core", "Core"},
		{"/", "Core", "Core"},
		{"docs", "Core", "/docs/Core"},
		{"/docs/", "Core", "/docs/Core"},
		{"//org/repo//", "Core", "/org/repo/Core"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, TargetHostingBasePath(tc.base, tc.name), "base=%q", tc.base)
	}
}

func TestArgs(t *testing.T) {
	out := filepath.Join("/site", "Core")
	got := Args(manifest.Target{Name: "Core", Kind: manifest.KindSourceLanguage}, Request{
		OutputRoot:         "/site",
		HostingBasePath:    "/repo/",
		MinimumAccessLevel: "public",
	})
	require.Equal(t, []string{
		"package",
		"--allow-writing-to-directory", out,
		"generate-documentation",
		"--target", "Core",
		"--disable-indexing",
		"--transform-for-static-hosting",
		"--hosting-base-path", "/repo/Core",
		"--output-path", out,
		"--symbol-graph-minimum-access-level", "public",
	}, got)
}

func TestGenerate_RunsGeneratorInPackageDirectory(t *testing.T) {
	r := &recordingRunner{}
	d := NewDriver(r, "swift")

	err := d.Generate(context.Background(), manifest.Target{Name: "Core", Kind: manifest.KindSourceLanguage}, Request{
		WorkingDirectory:   "/pkg",
		OutputRoot:         "/site",
		MinimumAccessLevel: "internal",
	})
	require.NoError(t, err)
	require.Len(t, r.calls, 1)
	require.Equal(t, "swift", r.calls[0].Path)
	require.Equal(t, "/pkg", r.calls[0].Dir)
	require.Contains(t, r.calls[0].Args, "--hosting-base-path")
	require.Contains(t, r.calls[0].Args, "internal")
}

func TestGenerate_NativeTargetIsNoop(t *testing.T) {
	r := &recordingRunner{}
	err := NewDriver(r, "swift").Generate(context.Background(), manifest.Target{Name: "Shim", Kind: manifest.KindNativeLanguage}, Request{OutputRoot: "/site"})
	require.NoError(t, err)
	require.Empty(t, r.calls)
}

func TestGenerate_UnclassifiedTargetIsRejected(t *testing.T) {
	r := &recordingRunner{}
	err := NewDriver(r, "swift").Generate(context.Background(), manifest.Target{Name: "Raw", Kind: manifest.KindRegular}, Request{OutputRoot: "/site"})
	require.Error(t, err)
	require.Empty(t, r.calls)
}

func TestGenerate_NonZeroExitFails(t *testing.T) {
	r := &recordingRunner{result: runner.Result{ExitCode: 1, Stderr: []byte("docc: error")}}
	err := NewDriver(r, "swift").Generate(context.Background(), manifest.Target{Name: "Core", Kind: manifest.KindSourceLanguage}, Request{OutputRoot: "/site"})

	require.ErrorIs(t, err, ErrDocumentationGenerationFailed)
	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	require.Equal(t, ferrors.CategoryGeneration, classified.Category())
	target, _ := classified.Context().GetString("target")
	require.Equal(t, "Core", target)
}

func TestGenerate_SpawnFailureFails(t *testing.T) {
	r := &recordingRunner{err: fmt.Errorf("%w: missing", runner.ErrStart), result: runner.Result{ExitCode: -1}}
	err := NewDriver(r, "swift").Generate(context.Background(), manifest.Target{Name: "Core", Kind: manifest.KindSourceLanguage}, Request{OutputRoot: "/site"})
	require.ErrorIs(t, err, ErrDocumentationGenerationFailed)
	require.ErrorIs(t, err, runner.ErrStart)
}
