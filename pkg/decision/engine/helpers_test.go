package engine

import (
	"mercator-hq/underwriter/pkg/credit"
)

// newTestApp creates an application from plain Go values.
func newTestApp(id string, attrs map[string]any) *credit.Application {
	values := make(map[string]credit.Value, len(attrs))
	for name, v := range attrs {
		values[name] = credit.ValueOf(v)
	}
	return credit.NewApplication(id, values)
}

// primeAttrs returns the attributes of a clean, low-risk applicant.
func primeAttrs() map[string]any {
	return map[string]any{
		"credit_score":              820,
		"dti_ratio":                 0.30,
		"num_90d_late_last_24m":     0,
		"bankruptcy_last_7y_flag":   false,
		"employment_status":         "employed",
		"revolving_utilization_pct": 12.5,
		"collateral_value":          nil,
	}
}

// withAttrs returns primeAttrs with overrides applied.
func withAttrs(overrides map[string]any) map[string]any {
	attrs := primeAttrs()
	for k, v := range overrides {
		attrs[k] = v
	}
	return attrs
}

func newRule(id, expr string, weight float64) credit.ProfileRuleConfig {
	return credit.ProfileRuleConfig{
		Rule: credit.RuleCandidate{
			RuleInstanceID:  id,
			Name:            id,
			Expression:      expr,
			SuggestedWeight: 1,
		},
		WeightOverride: weight,
		Active:         true,
	}
}

func hardDeclineRule(id, expr string, codes ...string) credit.ProfileRuleConfig {
	rc := newRule(id, expr, 0)
	rc.HardDecline = true
	rc.Rule.AlignedDeclineReasonCodes = codes
	return rc
}

func newProfile(id string, threshold float64, rules ...credit.ProfileRuleConfig) *credit.DecisionProfile {
	return &credit.DecisionProfile{
		ID:                id,
		Name:              id,
		ApprovalThreshold: threshold,
		Rules:             rules,
	}
}

func decisionPtr(d credit.Decision) *credit.Decision {
	return &d
}

func sourcePtr(s credit.DecisionSource) *credit.DecisionSource {
	return &s
}
