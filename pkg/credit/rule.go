package credit

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Structured condition operators.
const (
	OpLess         = "<"
	OpLessEqual    = "<="
	OpGreater      = ">"
	OpGreaterEqual = ">="
	OpEqual        = "=="
	OpNotEqual     = "!="
	OpBetween      = "between"
	OpIn           = "in"
	OpNotIn        = "not_in"
)

// ConditionOperators lists the operators accepted in a RuleCondition.
var ConditionOperators = []string{
	OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpEqual, OpNotEqual,
	OpBetween, OpIn, OpNotIn,
}

// RuleCondition is the structured form of a single-field condition.
// Value is a scalar, or a list for between (two bounds), in and not_in.
type RuleCondition struct {
	Field    string `json:"field" yaml:"field"`
	Operator string `json:"operator" yaml:"operator"`
	Value    any    `json:"value" yaml:"value"`
}

// RuleCandidate is an authored rule. Only Expression (or Condition when the
// expression is empty), TargetDecisionHint and AlignedDeclineReasonCodes
// affect evaluation; everything else is provenance carried for audit.
type RuleCandidate struct {
	RuleInstanceID string         `json:"rule_instance_id" yaml:"rule_instance_id"`
	RuleTypeID     string         `json:"rule_type_id" yaml:"rule_type_id"`
	Name           string         `json:"name" yaml:"name"`
	Expression     string         `json:"expression" yaml:"expression"`
	Description    string         `json:"description,omitempty" yaml:"description,omitempty"`
	Condition      *RuleCondition `json:"condition,omitempty" yaml:"condition,omitempty"`

	TargetDecisionHint *Decision `json:"target_decision_hint,omitempty" yaml:"target_decision_hint,omitempty"`

	SuggestedBaseScore   float64 `json:"suggested_base_score" yaml:"suggested_base_score"`
	SuggestedWeight      float64 `json:"suggested_weight" yaml:"suggested_weight"`
	SuggestedHardDecline bool    `json:"suggested_hard_decline" yaml:"suggested_hard_decline"`

	SupportCount int      `json:"support_count" yaml:"support_count"`
	Confidence   float64  `json:"confidence" yaml:"confidence"`
	Lift         *float64 `json:"lift,omitempty" yaml:"lift,omitempty"`

	AlignedDeclineReasonCodes []string `json:"aligned_decline_reason_codes" yaml:"aligned_decline_reason_codes"`
	LLMExplanation            string   `json:"llm_explanation,omitempty" yaml:"llm_explanation,omitempty"`
}

// HintsDecline reports whether the rule is authored to support a decline.
func (r *RuleCandidate) HintsDecline() bool {
	return r.TargetDecisionHint != nil && *r.TargetDecisionHint == DecisionDecline
}

// HasCondition reports whether the rule carries an evaluable condition.
func (r *RuleCandidate) HasCondition() bool {
	return r.Expression != "" || r.Condition != nil
}

// UnmarshalJSON applies field defaults before decoding.
func (r *RuleCandidate) UnmarshalJSON(data []byte) error {
	type plain RuleCandidate
	p := plain{SuggestedWeight: 1}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = RuleCandidate(p)
	return nil
}

// UnmarshalYAML applies field defaults before decoding.
func (r *RuleCandidate) UnmarshalYAML(node *yaml.Node) error {
	type plain RuleCandidate
	p := plain{SuggestedWeight: 1}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = RuleCandidate(p)
	return nil
}
