package engine

import (
	"time"

	"mercator-hq/underwriter/pkg/credit"
)

// Recorder receives decision metrics. Implementations must be safe for
// concurrent use; the engine calls them from worker goroutines.
type Recorder interface {
	RecordApplication(decision credit.Decision, needsReview bool)
	RecordProfileDecision(profileID string, decision credit.Decision, hardDecline bool)
	RecordRuleEvaluation(outcome RuleOutcome)
	RecordRejection(kind string)
	RecordBatch(duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) RecordApplication(credit.Decision, bool)             {}
func (noopRecorder) RecordProfileDecision(string, credit.Decision, bool) {}
func (noopRecorder) RecordRuleEvaluation(RuleOutcome)                    {}
func (noopRecorder) RecordRejection(string)                              {}
func (noopRecorder) RecordBatch(time.Duration)                           {}
