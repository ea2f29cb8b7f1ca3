package engine

import (
	"time"

	"mercator-hq/underwriter/pkg/credit"
)

// RuleEvaluation is the outcome of one active rule against one application.
type RuleEvaluation struct {
	RuleID   string `json:"rule_id"`
	RuleName string `json:"rule_name,omitempty"`

	// Fired is true only when the condition evaluated to true.
	Fired bool `json:"fired"`

	// RuleScore is the rule's weight_override when fired, otherwise 0.
	RuleScore float64 `json:"rule_score"`

	// MatchDetails lists the referenced attributes and their values when the
	// rule fired or faulted.
	MatchDetails string `json:"match_details,omitempty"`

	// Fault describes why the condition could not be evaluated.
	Fault string `json:"fault,omitempty"`

	DeclineReasonCodes []string `json:"decline_reason_codes"`
}

// ProfileDecisionResult is the outcome of one profile against one application.
type ProfileDecisionResult struct {
	ProfileID            string           `json:"profile_id"`
	ProfileName          string           `json:"profile_name"`
	TotalScore           float64          `json:"total_score"`
	Decision             credit.Decision  `json:"decision"`
	HardDeclineTriggered bool             `json:"hard_decline_triggered"`
	RuleEvaluations      []RuleEvaluation `json:"rule_evaluations"`
	DeclineReasonCodes   []string         `json:"decline_reason_codes"`
}

// ApplicationDecisionResult aggregates every profile's outcome for one
// application. Manual fields are copied from the application unchanged.
type ApplicationDecisionResult struct {
	ApplicationID string `json:"application_id"`

	ManualDecisionSource *credit.DecisionSource `json:"manual_decision_source"`
	ManualFinalDecision  *credit.Decision       `json:"manual_final_decision"`
	ManualDeclineReasons []credit.DeclineReason `json:"manual_decline_reasons"`

	ProfileResults []ProfileDecisionResult `json:"profile_results"`

	FinalSystemDecision          credit.Decision `json:"final_system_decision"`
	NeedsManualReview            bool            `json:"needs_manual_review"`
	AggregatedDeclineReasonCodes []string        `json:"aggregated_decline_reason_codes"`
}

// Rejection records an input entity that was not evaluated.
type Rejection struct {
	Kind   string `json:"kind"`             // "application" or "profile"
	Index  int    `json:"index"`            // position in its input
	ID     string `json:"id,omitempty"`     // entity ID, when known
	Source string `json:"source,omitempty"` // originating file, when loaded from disk
	Reason string `json:"reason"`
}

// BatchResult is the output of one Decide call.
type BatchResult struct {
	// Results holds one entry per accepted application, in input order.
	Results []ApplicationDecisionResult `json:"results"`

	// Rejected lists profiles and applications that were not evaluated.
	Rejected []Rejection `json:"rejected"`

	// Partial is true when the run was cancelled before every accepted
	// application completed. Results then holds the completed ones.
	Partial bool `json:"partial"`

	// Summary carries run-level data and is excluded from encoding so that
	// results for identical inputs are byte-identical.
	Summary RunSummary `json:"-"`
}

// RunSummary describes one run of the engine.
type RunSummary struct {
	RunID        string
	StartedAt    time.Time
	Duration     time.Duration
	Applications int // accepted applications
	Profiles     int // accepted profiles
	Completed    int
}

// RuleOutcome classifies a rule evaluation for metrics.
type RuleOutcome string

const (
	OutcomeFired    RuleOutcome = "fired"
	OutcomeNotFired RuleOutcome = "not_fired"
	OutcomeFault    RuleOutcome = "fault"
)

// Outcome returns the evaluation's metric classification.
func (r *RuleEvaluation) Outcome() RuleOutcome {
	switch {
	case r.Fault != "":
		return OutcomeFault
	case r.Fired:
		return OutcomeFired
	default:
		return OutcomeNotFired
	}
}
