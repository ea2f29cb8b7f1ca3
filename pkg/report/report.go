package report

import (
	"sort"

	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/decision/engine"
)

// Summary compares system decisions with the recorded manual decisions of
// one batch.
type Summary struct {
	Applications int  `json:"applications"`
	Rejected     int  `json:"rejected"`
	Partial      bool `json:"partial"`

	Approved    int `json:"approved"`
	Declined    int `json:"declined"`
	Referred    int `json:"referred"`
	NeedsReview int `json:"needs_review"`

	// AutoDecisionRate is the fraction of applications decided without
	// referral.
	AutoDecisionRate float64 `json:"auto_decision_rate"`

	// WithManualDecision counts applications that carry a recorded decision.
	// The comparison figures below consider only those.
	WithManualDecision int `json:"with_manual_decision"`

	// Matched counts applications whose system decision equals the manual one.
	Matched int `json:"matched"`

	// MatchRate is Matched / WithManualDecision.
	MatchRate float64 `json:"match_rate"`

	// FalseApprovals counts system approvals of manually declined applications.
	FalseApprovals int `json:"false_approvals"`

	// FalseDeclines counts system declines of manually approved applications.
	FalseDeclines int `json:"false_declines"`

	// ReferredWithManualDecision counts referrals of applications that have
	// a manual decision.
	ReferredWithManualDecision int `json:"referred_with_manual_decision"`

	Profiles       []ProfileStats `json:"profiles"`
	Rules          []RuleStats    `json:"rules"`
	DeclineReasons []CodeCount    `json:"decline_reasons"`
}

// ProfileStats counts the decisions of one profile.
type ProfileStats struct {
	ProfileID    string  `json:"profile_id"`
	ProfileName  string  `json:"profile_name"`
	Approved     int     `json:"approved"`
	Declined     int     `json:"declined"`
	Referred     int     `json:"referred"`
	HardDeclines int     `json:"hard_declines"`
	MatchRate    float64 `json:"match_rate"`

	matched, withManual int
}

// RuleStats counts the outcomes of one rule within one profile.
type RuleStats struct {
	ProfileID string  `json:"profile_id"`
	RuleID    string  `json:"rule_id"`
	RuleName  string  `json:"rule_name,omitempty"`
	Evaluated int     `json:"evaluated"`
	Fired     int     `json:"fired"`
	Faults    int     `json:"faults"`
	FireRate  float64 `json:"fire_rate"`
}

// CodeCount is the number of applications carrying a decline reason code.
type CodeCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// Summarize computes comparison statistics for a batch result. Profiles and
// rules are listed in first-seen order; decline reasons by descending count.
func Summarize(result *engine.BatchResult) *Summary {
	s := &Summary{
		Profiles:       []ProfileStats{},
		Rules:          []RuleStats{},
		DeclineReasons: []CodeCount{},
	}
	if result == nil {
		return s
	}

	s.Applications = len(result.Results)
	s.Rejected = len(result.Rejected)
	s.Partial = result.Partial

	profileIdx := make(map[string]int)
	ruleIdx := make(map[[2]string]int)
	codes := make(map[string]int)

	for i := range result.Results {
		r := &result.Results[i]
		manual := r.ManualFinalDecision
		s.count(r.FinalSystemDecision, manual, r.NeedsManualReview)

		for _, code := range r.AggregatedDeclineReasonCodes {
			codes[code]++
		}

		for j := range r.ProfileResults {
			pr := &r.ProfileResults[j]

			idx, ok := profileIdx[pr.ProfileID]
			if !ok {
				idx = len(s.Profiles)
				profileIdx[pr.ProfileID] = idx
				s.Profiles = append(s.Profiles, ProfileStats{ProfileID: pr.ProfileID, ProfileName: pr.ProfileName})
			}
			s.Profiles[idx].count(pr, manual)

			for k := range pr.RuleEvaluations {
				eval := &pr.RuleEvaluations[k]
				key := [2]string{pr.ProfileID, eval.RuleID}
				ri, ok := ruleIdx[key]
				if !ok {
					ri = len(s.Rules)
					ruleIdx[key] = ri
					s.Rules = append(s.Rules, RuleStats{ProfileID: pr.ProfileID, RuleID: eval.RuleID, RuleName: eval.RuleName})
				}
				s.Rules[ri].count(eval)
			}
		}
	}

	s.AutoDecisionRate = ratio(s.Approved+s.Declined, s.Applications)
	s.MatchRate = ratio(s.Matched, s.WithManualDecision)
	for i := range s.Profiles {
		p := &s.Profiles[i]
		p.MatchRate = ratio(p.matched, p.withManual)
	}
	for i := range s.Rules {
		r := &s.Rules[i]
		r.FireRate = ratio(r.Fired, r.Evaluated)
	}

	for code, n := range codes {
		s.DeclineReasons = append(s.DeclineReasons, CodeCount{Code: code, Count: n})
	}
	sort.Slice(s.DeclineReasons, func(i, j int) bool {
		a, b := s.DeclineReasons[i], s.DeclineReasons[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Code < b.Code
	})

	return s
}

func (s *Summary) count(system credit.Decision, manual *credit.Decision, review bool) {
	switch system {
	case credit.DecisionApprove:
		s.Approved++
	case credit.DecisionDecline:
		s.Declined++
	default:
		s.Referred++
	}
	if review {
		s.NeedsReview++
	}

	if manual == nil {
		return
	}
	s.WithManualDecision++
	switch {
	case system == *manual:
		s.Matched++
	case system == credit.DecisionApprove && *manual == credit.DecisionDecline:
		s.FalseApprovals++
	case system == credit.DecisionDecline && *manual == credit.DecisionApprove:
		s.FalseDeclines++
	case system == credit.DecisionRefer:
		s.ReferredWithManualDecision++
	}
}

func (p *ProfileStats) count(pr *engine.ProfileDecisionResult, manual *credit.Decision) {
	switch pr.Decision {
	case credit.DecisionApprove:
		p.Approved++
	case credit.DecisionDecline:
		p.Declined++
	default:
		p.Referred++
	}
	if pr.HardDeclineTriggered {
		p.HardDeclines++
	}
	if manual != nil {
		p.withManual++
		if pr.Decision == *manual {
			p.matched++
		}
	}
}

func (r *RuleStats) count(eval *engine.RuleEvaluation) {
	r.Evaluated++
	switch eval.Outcome() {
	case engine.OutcomeFired:
		r.Fired++
	case engine.OutcomeFault:
		r.Faults++
	}
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
