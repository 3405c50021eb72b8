package config

import (
	"git.home.luguber.info/inful/pkgdocs/internal/foundation/normalization"
)

// AccessLevel is the minimum symbol visibility included in generated documentation.
type AccessLevel string

const (
	AccessPrivate     AccessLevel = "private"
	AccessFilePrivate AccessLevel = "fileprivate"
	AccessInternal    AccessLevel = "internal"
	AccessPackage     AccessLevel = "package"
	AccessPublic      AccessLevel = "public"
	AccessOpen        AccessLevel = "open"
)

// DefaultAccessLevel is used when no level is configured.
const DefaultAccessLevel = AccessPublic

var accessLevels = normalization.NewNormalizer(map[string]AccessLevel{
	string(AccessPrivate):     AccessPrivate,
	string(AccessFilePrivate): AccessFilePrivate,
	string(AccessInternal):    AccessInternal,
	string(AccessPackage):     AccessPackage,
	string(AccessPublic):      AccessPublic,
	string(AccessOpen):        AccessOpen,
}, DefaultAccessLevel)

// ParseAccessLevel normalizes raw (case-insensitive, trimmed). Blank input
// yields DefaultAccessLevel.
func ParseAccessLevel(raw string) (AccessLevel, error) {
	return accessLevels.NormalizeWithError(raw)
}

// AccessLevels lists every accepted level, sorted.
func AccessLevels() []string { return accessLevels.ValidKeys() }
