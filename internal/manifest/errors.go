package manifest

import "errors"

var (
	// ErrManifestUnavailable indicates the manifest command could not run or exited non-zero.
	ErrManifestUnavailable = errors.New("package manifest unavailable")
	// ErrManifestUnreadable indicates the manifest command's output could not be fully read.
	ErrManifestUnreadable = errors.New("package manifest unreadable")
	// ErrManifestMalformed indicates the manifest output does not have the expected shape.
	ErrManifestMalformed = errors.New("package manifest malformed")
)
