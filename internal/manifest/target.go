// Package manifest models a Swift package's build targets as reported by
// `swift package dump-package` and fetches them through a command runner.
package manifest

import (
	"encoding/json"
	"path"
)

// SourcesDir is the conventional directory holding one subdirectory per target.
const SourcesDir = "Sources"

// Kind classifies a target for documentation purposes.
type Kind int

const (
	// KindUnsupported covers every manifest kind pkgdocs does not document
	// (test, executable, plugin, macro, binary, system, ...).
	KindUnsupported Kind = iota
	// KindRegular must be reclassified by inspecting its source directory.
	KindRegular
	// KindSourceLanguage targets are written in Swift and produce documentation.
	KindSourceLanguage
	// KindNativeLanguage targets are C-family and are classified but not documented.
	KindNativeLanguage
)

var kindNames = map[Kind]string{
	KindUnsupported:    "unsupported",
	KindRegular:        "regular",
	KindSourceLanguage: "sourceLanguage",
	KindNativeLanguage: "nativeLanguage",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unsupported"
}

// MarshalJSON encodes the kind by name, for reports.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// ParseKind interprets a raw manifest "type" value. Unknown values map to
// KindUnsupported rather than failing; the comparison is case-sensitive.
func ParseKind(raw string) Kind {
	switch raw {
	case "regular":
		return KindRegular
	case "swift":
		return KindSourceLanguage
	case "C":
		return KindNativeLanguage
	default:
		return KindUnsupported
	}
}

// Target is one build unit of a package.
type Target struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	// Path is the manifest's custom source location relative to the package
	// root; empty means Sources/<Name>.
	Path string `json:"path,omitempty"`
}

// SourceDir returns the slash-separated source directory of the target,
// relative to the package root.
func (t Target) SourceDir() string {
	if t.Path != "" {
		return path.Clean(t.Path)
	}
	return path.Join(SourcesDir, t.Name)
}

// Documentable reports whether the documentation generator produces output
// for the target.
func (t Target) Documentable() bool {
	return t.Kind == KindSourceLanguage
}

// Package is the decoded manifest.
type Package struct {
	Targets []Target `json:"targets"`
}

// Documentable returns the targets that produce documentation, in order.
func (p *Package) Documentable() []Target {
	var out []Target
	for _, t := range p.Targets {
		if t.Documentable() {
			out = append(out, t)
		}
	}
	return out
}
