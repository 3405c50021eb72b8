package linkverify

import (
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pkgdocs/internal/logfields"
)

// BrokenLink is an internal link with no matching file or directory.
type BrokenLink struct {
	URL    string
	Reason string
}

// Verify checks every internal link of the page at indexPath against
// outputRoot. Site-absolute URLs must live under hostingBasePath; the rest of
// the path is resolved relative to outputRoot.
func Verify(indexPath, outputRoot, hostingBasePath string) ([]BrokenLink, error) {
	links, err := ExtractLinks(indexPath)
	if err != nil {
		return nil, err
	}

	prefix := "/"
	if base := strings.Trim(hostingBasePath, "/"); base != "" {
		prefix = "/" + base + "/"
	}

	var broken []BrokenLink
	for _, l := range links {
		if !l.IsInternal {
			continue
		}
		u, err := url.Parse(l.URL)
		if err != nil {
			broken = append(broken, BrokenLink{URL: l.URL, Reason: "unparseable URL"})
			continue
		}
		if !strings.HasPrefix(u.Path, prefix) {
			broken = append(broken, BrokenLink{URL: l.URL, Reason: "outside hosting base path " + prefix})
			continue
		}
		rel := strings.TrimPrefix(u.Path, prefix)
		local := filepath.Join(outputRoot, filepath.FromSlash(rel))
		if _, err := os.Stat(local); err != nil {
			broken = append(broken, BrokenLink{URL: l.URL, Reason: "missing " + local})
			continue
		}
		slog.Debug("Link verified", logfields.URL(l.URL), logfields.Path(local))
	}
	return broken, nil
}
