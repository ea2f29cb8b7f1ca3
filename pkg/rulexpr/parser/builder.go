package parser

import (
	"fmt"
	"strings"

	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/rulexpr/ast"
	rxErrors "mercator-hq/underwriter/pkg/rulexpr/errors"
)

// BuildCondition converts a structured single-field condition into an
// expression tree equivalent to the infix form:
//
//	between [lo, hi]  ->  field >= lo and field <= hi
//	in [a, b]         ->  field == a or field == b
//	not_in [a, b]     ->  not (field == a or field == b)
func BuildCondition(c *credit.RuleCondition) (ast.Expr, error) {
	if c == nil {
		return nil, structuralError("condition is empty", "")
	}
	if !isIdentifier(c.Field) {
		return nil, structuralError(fmt.Sprintf("invalid condition field %q", c.Field), "")
	}

	field := &ast.Ident{Name: c.Field}

	switch c.Operator {
	case credit.OpLess, credit.OpLessEqual, credit.OpGreater, credit.OpGreaterEqual,
		credit.OpEqual, credit.OpNotEqual:
		lit, err := scalarLiteral(c.Value)
		if err != nil {
			return nil, err
		}
		return compare(field, ast.Operator(c.Operator), lit), nil

	case credit.OpBetween:
		bounds, err := listLiterals(c.Value)
		if err != nil {
			return nil, err
		}
		if len(bounds) != 2 {
			return nil, structuralError(fmt.Sprintf("between needs exactly 2 bounds, got %d", len(bounds)), "")
		}
		return &ast.Logical{
			Op: ast.LogicalAnd,
			Terms: []ast.Expr{
				compare(field, ast.OperatorGreaterEqual, bounds[0]),
				compare(field, ast.OperatorLessEqual, bounds[1]),
			},
		}, nil

	case credit.OpIn, credit.OpNotIn:
		items, err := listLiterals(c.Value)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, structuralError(c.Operator+" needs at least one value", "")
		}

		var expr ast.Expr
		if len(items) == 1 {
			expr = compare(field, ast.OperatorEqual, items[0])
		} else {
			terms := make([]ast.Expr, len(items))
			for i, item := range items {
				terms[i] = compare(field, ast.OperatorEqual, item)
			}
			expr = &ast.Logical{Op: ast.LogicalOr, Terms: terms}
		}

		if c.Operator == credit.OpNotIn {
			return &ast.Not{X: expr}, nil
		}
		return expr, nil

	default:
		return nil, structuralError(fmt.Sprintf("unknown condition operator %q", c.Operator),
			fmt.Sprintf("valid operators: %v", credit.ConditionOperators))
	}
}

func compare(field *ast.Ident, op ast.Operator, lit *ast.Literal) *ast.Compare {
	return &ast.Compare{Op: op, Left: field, Right: lit}
}

func scalarLiteral(raw any) (*ast.Literal, error) {
	if _, isList := raw.([]any); isList {
		return nil, structuralError("comparison value must be a scalar, got a list", "")
	}
	v := credit.ValueOf(raw)
	if v.Kind() == credit.KindMalformed {
		return nil, structuralError(fmt.Sprintf("invalid condition value: %s", v), "")
	}
	return &ast.Literal{Value: v}, nil
}

func listLiterals(raw any) ([]*ast.Literal, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, structuralError(fmt.Sprintf("condition value must be a list, got %T", raw), "")
	}

	lits := make([]*ast.Literal, len(items))
	for i, item := range items {
		lit, err := scalarLiteral(item)
		if err != nil {
			return nil, err
		}
		lits[i] = lit
	}
	return lits, nil
}

func structuralError(msg, suggestion string) *rxErrors.Error {
	return &rxErrors.Error{
		Type:       rxErrors.ErrorTypeSyntax,
		Message:    msg,
		Suggestion: suggestion,
	}
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	_, reserved := keywords[strings.ToLower(s)]
	return !reserved
}
