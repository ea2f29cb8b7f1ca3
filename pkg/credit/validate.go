package credit

import (
	"fmt"
	"math"
	"strings"
)

// Entity kinds reported by ValidationError.
const (
	EntityApplication = "application"
	EntityProfile     = "profile"
)

// ValidationError lists the structural problems that make an entity
// unusable. It is never produced for rule condition faults, which are
// recovered during evaluation.
type ValidationError struct {
	Entity   string
	ID       string
	Problems []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	id := e.ID
	if id == "" {
		id = "<unnamed>"
	}
	return fmt.Sprintf("invalid %s %s: %s", e.Entity, id, strings.Join(e.Problems, "; "))
}

// Validate checks the application's structural requirements: a non-empty
// id and well-typed core attributes.
func (a *Application) Validate() error {
	var problems []string

	if strings.TrimSpace(a.ID) == "" {
		problems = append(problems, "application_id is required")
	}

	for _, spec := range Schema {
		if !spec.Core {
			continue
		}
		v, ok := a.attrs[spec.Name]
		switch {
		case !ok:
			problems = append(problems, spec.Name+" is required")
		case v.IsNull():
			problems = append(problems, spec.Name+" must not be null")
		case v.Kind() == KindMalformed:
			problems = append(problems, fmt.Sprintf("%s is malformed: %s", spec.Name, v.str))
		}
	}

	if a.FinalDecision != nil && *a.FinalDecision == DecisionRefer {
		problems = append(problems, "final_decision must be approve or decline")
	}

	if len(problems) > 0 {
		return &ValidationError{Entity: EntityApplication, ID: a.ID, Problems: problems}
	}
	return nil
}

// Validate checks the profile's structural requirements. All problems are
// collected rather than stopping at the first.
func (p *DecisionProfile) Validate() error {
	var problems []string

	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if p.thresholdMissing {
		problems = append(problems, "approval_threshold is required")
	} else if math.IsNaN(p.ApprovalThreshold) || math.IsInf(p.ApprovalThreshold, 0) {
		problems = append(problems, "approval_threshold must be finite")
	}

	seen := make(map[string]int, len(p.Rules))
	for i, rc := range p.Rules {
		id := rc.Rule.RuleInstanceID
		if strings.TrimSpace(id) == "" {
			problems = append(problems, fmt.Sprintf("rules[%d]: rule_instance_id is required", i))
		} else if first, dup := seen[id]; dup {
			problems = append(problems, fmt.Sprintf("rules[%d]: duplicate rule_instance_id %q (first at rules[%d])", i, id, first))
		} else {
			seen[id] = i
		}

		if math.IsNaN(rc.WeightOverride) || math.IsInf(rc.WeightOverride, 0) {
			problems = append(problems, fmt.Sprintf("rules[%d]: weight_override must be finite", i))
		}
		if !rc.Rule.HasCondition() {
			problems = append(problems, fmt.Sprintf("rules[%d]: expression or condition is required", i))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Entity: EntityProfile, ID: p.Key(), Problems: problems}
	}
	return nil
}
