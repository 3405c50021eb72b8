package manifest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// packageSchema describes the subset of dump-package output pkgdocs relies on.
// Everything else in the document is ignored.
const packageSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["targets"],
  "properties": {
    "targets": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "type"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "type": {"type": "string"},
          "path": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(packageSchema)

// FieldError is a single shape violation.
type FieldError struct {
	Field   string
	Message string
}

// ShapeError lists every shape violation found in a manifest document.
type ShapeError struct {
	Errors []FieldError
}

func (e *ShapeError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid manifest shape: " + strings.Join(parts, "; ")
}

type rawTarget struct {
	Name string  `json:"name"`
	Type string  `json:"type"`
	Path *string `json:"path"`
}

type rawPackage struct {
	Targets []rawTarget `json:"targets"`
}

// Decode validates the shape of a dump-package document and interprets target
// kinds. Shape problems (missing targets, names or types, wrong JSON types,
// duplicate names) wrap ErrManifestMalformed; unknown kinds do not.
func Decode(data []byte) (*Package, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		// Not parseable as JSON at all.
		return nil, fmt.Errorf("%w: %w", ErrManifestMalformed, err)
	}
	if !result.Valid() {
		shapeErr := &ShapeError{Errors: make([]FieldError, 0, len(result.Errors()))}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			shapeErr.Errors = append(shapeErr.Errors, FieldError{Field: field, Message: desc.Description()})
		}
		return nil, fmt.Errorf("%w: %w", ErrManifestMalformed, shapeErr)
	}

	var raw rawPackage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestMalformed, err)
	}

	pkg := &Package{Targets: make([]Target, 0, len(raw.Targets))}
	seen := make(map[string]struct{}, len(raw.Targets))
	for _, rt := range raw.Targets {
		if _, dup := seen[rt.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate target name %q", ErrManifestMalformed, rt.Name)
		}
		seen[rt.Name] = struct{}{}

		t := Target{Name: rt.Name, Kind: ParseKind(rt.Type)}
		if rt.Path != nil {
			t.Path = *rt.Path
		}
		pkg.Targets = append(pkg.Targets, t)
	}
	return pkg, nil
}
