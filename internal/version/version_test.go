package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "v1.0.0"
	require.Contains(t, String(), "pkgdocs v1.0.0")
	require.Contains(t, String(), "commit "+GitCommit)
}
