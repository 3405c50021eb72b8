package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	ggit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func TestHeadCommit(t *testing.T) {
	dir := t.TempDir()
	repo, err := ggit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Package.swift"), []byte("// swift-tools-version:5.9\n"), 0o600))
	_, err = wt.Add("Package.swift")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &ggit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	sub := filepath.Join(dir, "Sources", "Core")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	got, err := HeadCommit(sub)
	require.NoError(t, err)
	require.Equal(t, hash.String(), got)
}

func TestHeadCommit_NotRepository(t *testing.T) {
	_, err := HeadCommit(t.TempDir())
	require.ErrorIs(t, err, ErrNotRepository)
}

func TestHeadCommit_EmptyRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := ggit.PlainInit(dir, false)
	require.NoError(t, err)

	_, err = HeadCommit(dir)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotRepository)
}
