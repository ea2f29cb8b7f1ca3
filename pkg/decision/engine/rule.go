package engine

import (
	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/rulexpr/parser"
)

// EvaluateRule evaluates one rule config against an attribute set. It never
// fails: a condition that cannot be parsed or evaluated is recorded on the
// result as a fault with zero score.
func EvaluateRule(rc *credit.ProfileRuleConfig, attrs Attributes) RuleEvaluation {
	eval, _ := evaluateRule("", rc, compileCondition(parser.NewParser(), &rc.Rule), attrs)
	return eval
}

// evaluateRule applies a compiled condition. The returned error, when set,
// is the *ConditionError behind the recorded fault.
func evaluateRule(profileID string, rc *credit.ProfileRuleConfig, cond *compiledCondition, attrs Attributes) (RuleEvaluation, error) {
	eval := RuleEvaluation{
		RuleID:             rc.Rule.RuleInstanceID,
		RuleName:           rc.Rule.Name,
		DeclineReasonCodes: []string{},
	}

	if cond.err != nil {
		eval.Fault = cond.err.Error()
		return eval, &ConditionError{ProfileID: profileID, RuleID: eval.RuleID, Cause: cond.err}
	}

	fired, err := Match(cond.expr, attrs)
	if err != nil {
		eval.Fault = err.Error()
		eval.MatchDetails = matchDetails(cond.fields, attrs)
		return eval, &ConditionError{ProfileID: profileID, RuleID: eval.RuleID, Cause: err}
	}
	if !fired {
		return eval, nil
	}

	eval.Fired = true
	eval.RuleScore = rc.WeightOverride
	eval.MatchDetails = matchDetails(cond.fields, attrs)
	if rc.DeclineAligned() {
		eval.DeclineReasonCodes = append(eval.DeclineReasonCodes, rc.Rule.AlignedDeclineReasonCodes...)
	}
	return eval, nil
}
