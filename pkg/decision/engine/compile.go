package engine

import (
	"context"
	"fmt"
	"log/slog"

	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/rulexpr"
	"mercator-hq/underwriter/pkg/rulexpr/ast"
	"mercator-hq/underwriter/pkg/rulexpr/parser"
)

// compiledCondition is a rule condition parsed once per run. Exactly one of
// expr and err is set.
type compiledCondition struct {
	expr   ast.Expr
	fields []string
	err    error
}

// conditionTable maps condition keys to compiled conditions. It is built
// before any worker starts and is read-only afterwards.
type conditionTable map[string]*compiledCondition

// conditionKey identifies a rule's condition. Rules sharing an expression
// share one compiled tree. Structured conditions are keyed by the canonical
// text of the tree they build, which quotes string literals, so "1" and 1
// never share a key. A condition that does not build is keyed by its
// type-tagged Go syntax.
func conditionKey(rule *credit.RuleCandidate) string {
	if rule.Expression != "" || rule.Condition == nil {
		return "expr:" + rule.Expression
	}
	expr, err := parser.BuildCondition(rule.Condition)
	if err != nil {
		return fmt.Sprintf("cond!%#v", *rule.Condition)
	}
	return "cond:" + expr.String()
}

func compileCondition(p *parser.Parser, rule *credit.RuleCandidate) *compiledCondition {
	expr, err := rulexpr.Compile(p, rule)
	if err != nil {
		return &compiledCondition{err: err}
	}
	return &compiledCondition{expr: expr, fields: ast.Fields(expr)}
}

// compileProfiles compiles the active rules of every profile. Compile
// failures are logged once per condition and kept in the table so that the
// affected rules fault at evaluation time.
func compileProfiles(ctx context.Context, p *parser.Parser, profiles []*credit.DecisionProfile, logger *slog.Logger) conditionTable {
	table := make(conditionTable)
	for _, profile := range profiles {
		for _, rc := range profile.ActiveRules() {
			key := conditionKey(&rc.Rule)
			if _, ok := table[key]; ok {
				continue
			}

			compiled := compileCondition(p, &rc.Rule)
			table[key] = compiled
			if compiled.err != nil && logger != nil {
				logger.WarnContext(ctx, "rule condition does not compile",
					"profile_id", profile.Key(),
					"rule_id", rc.Rule.RuleInstanceID,
					"expression", rulexpr.Source(&rc.Rule),
					"error", compiled.err,
				)
			}
		}
	}
	return table
}

// lookup returns the compiled condition of a rule, compiling it on a miss.
func (t conditionTable) lookup(p *parser.Parser, rule *credit.RuleCandidate) *compiledCondition {
	if compiled, ok := t[conditionKey(rule)]; ok {
		return compiled
	}
	return compileCondition(p, rule)
}
