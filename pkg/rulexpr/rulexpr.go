package rulexpr

import (
	"errors"

	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/rulexpr/ast"
	rxErrors "mercator-hq/underwriter/pkg/rulexpr/errors"
	"mercator-hq/underwriter/pkg/rulexpr/parser"
	"mercator-hq/underwriter/pkg/rulexpr/validator"
)

// ParseAndValidate is a convenience function that parses and validates a condition.
// It returns the parsed AST if successful, or an error if parsing or validation fails.
func ParseAndValidate(src string) (ast.Expr, error) {
	expr, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}

	if err := validator.NewValidator().Validate(expr); err != nil {
		return nil, withSource(err, src)
	}
	return expr, nil
}

// Compile returns the condition tree of a rule: its expression when set,
// otherwise its structured condition.
func Compile(p *parser.Parser, rule *credit.RuleCandidate) (ast.Expr, error) {
	if rule.Expression != "" {
		return p.Parse(rule.Expression)
	}
	return parser.BuildCondition(rule.Condition)
}

// Source returns the text a compiled rule condition is keyed by.
func Source(rule *credit.RuleCandidate) string {
	if rule.Expression != "" || rule.Condition == nil {
		return rule.Expression
	}
	expr, err := parser.BuildCondition(rule.Condition)
	if err != nil {
		return ""
	}
	return expr.String()
}

// Finding is a lint problem attached to one rule of a profile.
type Finding struct {
	RuleID string
	Source string
	Err    *rxErrors.Error
}

// LintProfile compiles and validates every rule of a profile, inactive rules
// included, and returns the problems in rule order.
func LintProfile(profile *credit.DecisionProfile) []Finding {
	p := parser.NewParser()
	v := validator.NewValidator()

	var findings []Finding
	for _, rc := range profile.Rules {
		rule := rc.Rule
		src := Source(&rule)

		expr, err := Compile(p, &rule)
		if err == nil {
			err = v.Validate(expr)
		}
		for _, e := range flatten(err) {
			e.Source = src
			findings = append(findings, Finding{RuleID: rule.RuleInstanceID, Source: src, Err: e})
		}
	}
	return findings
}

func flatten(err error) []*rxErrors.Error {
	if err == nil {
		return nil
	}

	var list *rxErrors.ErrorList
	if errors.As(err, &list) {
		return list.Errors
	}
	var single *rxErrors.Error
	if errors.As(err, &single) {
		return []*rxErrors.Error{single}
	}
	return []*rxErrors.Error{{Type: rxErrors.ErrorTypeSyntax, Message: err.Error()}}
}

func withSource(err error, src string) error {
	var list *rxErrors.ErrorList
	if errors.As(err, &list) {
		return list.WithSource(src)
	}
	return err
}
