// Package version carries build metadata injected with -ldflags, e.g.
// go build -ldflags "-X git.home.luguber.info/inful/pkgdocs/internal/version.Version=v1.2.0".
package version

import "fmt"

var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return fmt.Sprintf("pkgdocs %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
