package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultSkipped ResultLabel = "skipped"
	ResultFatal   ResultLabel = "fatal"
)

// RunOutcomeLabel enumerates final run outcomes.
type RunOutcomeLabel string

const (
	RunOutcomeSuccess RunOutcomeLabel = "success"
	RunOutcomeSkipped RunOutcomeLabel = "skipped" // nothing to document
	RunOutcomeFailed  RunOutcomeLabel = "failed"
)

// Recorder defines observability hooks for run, stage and target metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome RunOutcomeLabel)
	ObserveTargetDuration(target string, d time.Duration, success bool)
	IncClassifiedTarget(kind string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)        {}
func (NoopRecorder) IncStageResult(string, ResultLabel)                {}
func (NoopRecorder) ObserveRunDuration(time.Duration)                  {}
func (NoopRecorder) IncRunOutcome(RunOutcomeLabel)                     {}
func (NoopRecorder) ObserveTargetDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncClassifiedTarget(string)                        {}
