package engine

import (
	"sort"

	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/rulexpr/parser"
)

// ScoreProfile scores one profile against an attribute set.
//
// Only active rules are evaluated. A fired hard-decline rule declines the
// application whatever the score; otherwise the application is approved
// when the total score reaches the approval threshold and referred when it
// does not. A profile never declines on score alone, and a profile without
// active rules always refers.
func ScoreProfile(profile *credit.DecisionProfile, attrs Attributes) ProfileDecisionResult {
	p := parser.NewParser()
	result, _ := scoreProfile(profile, func(rule *credit.RuleCandidate) *compiledCondition {
		return compileCondition(p, rule)
	}, attrs)
	return result
}

// scoreProfile scores a profile using compiled conditions from compile. It
// returns the result and any condition faults for logging.
func scoreProfile(profile *credit.DecisionProfile, compile func(*credit.RuleCandidate) *compiledCondition, attrs Attributes) (ProfileDecisionResult, []error) {
	result := ProfileDecisionResult{
		ProfileID:          profile.Key(),
		ProfileName:        profile.Name,
		Decision:           credit.DecisionRefer,
		RuleEvaluations:    []RuleEvaluation{},
		DeclineReasonCodes: []string{},
	}

	active := profile.ActiveRules()
	if len(active) == 0 {
		return result, nil
	}

	var (
		faults []error
		codes  []string
	)
	for i := range active {
		rc := &active[i]
		eval, err := evaluateRule(result.ProfileID, rc, compile(&rc.Rule), attrs)
		if err != nil {
			faults = append(faults, err)
		}

		if eval.Fired {
			result.TotalScore += eval.RuleScore
			if rc.HardDecline {
				result.HardDeclineTriggered = true
			}
			codes = append(codes, eval.DeclineReasonCodes...)
		}
		result.RuleEvaluations = append(result.RuleEvaluations, eval)
	}
	result.DeclineReasonCodes = sortedUnique(codes)

	switch {
	case result.HardDeclineTriggered:
		result.Decision = credit.DecisionDecline
	case result.TotalScore >= profile.ApprovalThreshold:
		result.Decision = credit.DecisionApprove
	default:
		result.Decision = credit.DecisionRefer
	}

	return result, faults
}

// sortedUnique returns the distinct non-empty codes in ascending order. The
// result is never nil.
func sortedUnique(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
