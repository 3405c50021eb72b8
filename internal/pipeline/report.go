package pipeline

import (
	"time"

	"git.home.luguber.info/inful/pkgdocs/internal/manifest"
)

// Stage names used in logs, metrics and error context.
const (
	StageFetchManifest = "fetch_manifest"
	StageClassify      = "classify"
	StagePrepareOutput = "prepare_output"
	StageGenerate      = "generate"
	StageAssemble      = "assemble"
	StageVerifyLinks   = "verify_links"
)

// SkipReasonNoTargets is the Report.SkipReason when nothing is documentable.
const SkipReasonNoTargets = "no targets to document"

// Report summarizes one run.
type Report struct {
	RunID       string
	Start       time.Time
	End         time.Time
	Classified  []manifest.Target // every target surviving classification, manifest order
	Documented  []manifest.Target // targets the generator produced output for
	Skipped     bool
	SkipReason  string
	IndexPath   string
	BrokenLinks int
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}
