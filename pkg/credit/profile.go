package credit

import (
	"bytes"
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"
)

// ProfileRuleConfig binds a rule into a profile with profile-specific
// scoring parameters.
type ProfileRuleConfig struct {
	Rule           RuleCandidate `json:"rule" yaml:"rule"`
	WeightOverride float64       `json:"weight_override" yaml:"weight_override"`
	HardDecline    bool          `json:"hard_decline" yaml:"hard_decline"`
	Active         bool          `json:"active" yaml:"active"`
}

// DeclineAligned reports whether a firing of this rule contributes decline
// reason codes.
func (c *ProfileRuleConfig) DeclineAligned() bool {
	return c.HardDecline || c.Rule.HintsDecline()
}

// UnmarshalJSON applies weight_override=1 and active=true defaults.
func (c *ProfileRuleConfig) UnmarshalJSON(data []byte) error {
	type plain ProfileRuleConfig
	p := plain{WeightOverride: 1, Active: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = ProfileRuleConfig(p)
	return nil
}

// UnmarshalYAML applies weight_override=1 and active=true defaults.
func (c *ProfileRuleConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain ProfileRuleConfig
	p := plain{WeightOverride: 1, Active: true}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = ProfileRuleConfig(p)
	return nil
}

// DecisionProfile is a named scoring policy.
type DecisionProfile struct {
	ID                string              `json:"id,omitempty" yaml:"id,omitempty"`
	Name              string              `json:"name" yaml:"name"`
	Description       string              `json:"description,omitempty" yaml:"description,omitempty"`
	ApprovalThreshold float64             `json:"approval_threshold" yaml:"approval_threshold"`
	Rules             []ProfileRuleConfig `json:"rules" yaml:"rules"`

	CreatedAt            *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	CreatedBy            string     `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	SourceApplicationIDs []string   `json:"source_application_ids,omitempty" yaml:"source_application_ids,omitempty"`
	LLMExplanation       string     `json:"llm_explanation,omitempty" yaml:"llm_explanation,omitempty"`

	// thresholdMissing is set when a decoded document has no
	// approval_threshold, or a null one.
	thresholdMissing bool
}

// UnmarshalJSON records whether approval_threshold was present.
func (p *DecisionProfile) UnmarshalJSON(data []byte) error {
	type plain DecisionProfile
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	raw, ok := fields["approval_threshold"]

	*p = DecisionProfile(v)
	p.thresholdMissing = !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
	return nil
}

// UnmarshalYAML records whether approval_threshold was present.
func (p *DecisionProfile) UnmarshalYAML(node *yaml.Node) error {
	type plain DecisionProfile
	var v plain
	if err := node.Decode(&v); err != nil {
		return err
	}

	*p = DecisionProfile(v)
	p.thresholdMissing = true
	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == "approval_threshold" && node.Content[i+1].ShortTag() != "!!null" {
				p.thresholdMissing = false
			}
		}
	}
	return nil
}

// Key identifies the profile in results: the ID when set, otherwise the name.
func (p *DecisionProfile) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Name
}

// ActiveRules returns the active rule configs in profile order.
func (p *DecisionProfile) ActiveRules() []ProfileRuleConfig {
	active := make([]ProfileRuleConfig, 0, len(p.Rules))
	for _, rc := range p.Rules {
		if rc.Active {
			active = append(active, rc)
		}
	}
	return active
}
