package engine

import (
	"fmt"
	"strings"

	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/rulexpr/ast"
)

// Attributes resolves application attributes by name. *credit.Application
// implements it.
type Attributes interface {
	Attribute(name string) (credit.Value, bool)
}

// Match evaluates a condition against an attribute set. A non-nil error is
// an evaluation fault; the boolean is then always false.
//
// Evaluation is pure: it reads attrs and the immutable tree only.
func Match(expr ast.Expr, attrs Attributes) (bool, error) {
	if expr == nil {
		return false, fmt.Errorf("empty condition")
	}

	switch n := expr.(type) {
	case *ast.Logical:
		if n.Op == ast.LogicalAnd {
			return matchAll(n, attrs)
		}
		return matchAny(n, attrs)

	case *ast.Not:
		matched, err := Match(n.X, attrs)
		if err != nil {
			return false, err
		}
		return !matched, nil

	case *ast.Compare:
		return matchCompare(n, attrs)

	case *ast.Ident, *ast.Literal:
		return matchOperand(n, attrs)

	default:
		return false, fmt.Errorf("unknown expression node %T", expr)
	}
}

// matchAll evaluates an AND - all terms must match.
func matchAll(n *ast.Logical, attrs Attributes) (bool, error) {
	for _, term := range n.Terms {
		matched, err := Match(term, attrs)
		if err != nil {
			return false, err
		}

		// Short-circuit: the remaining terms are not evaluated
		if !matched {
			return false, nil
		}
	}
	return true, nil
}

// matchAny evaluates an OR - at least one term must match.
func matchAny(n *ast.Logical, attrs Attributes) (bool, error) {
	for _, term := range n.Terms {
		matched, err := Match(term, attrs)
		if err != nil {
			return false, err
		}

		// Short-circuit: the remaining terms are not evaluated
		if matched {
			return true, nil
		}
	}
	return false, nil
}

func matchCompare(n *ast.Compare, attrs Attributes) (bool, error) {
	left, err := resolve(n.Left, attrs)
	if err != nil {
		return false, err
	}
	right, err := resolve(n.Right, attrs)
	if err != nil {
		return false, err
	}

	matched, err := evaluateOperator(n.Op, left, right)
	if err != nil {
		return false, fmt.Errorf("operator %q evaluation failed: %w", n.Op, err)
	}
	return matched, nil
}

// matchOperand evaluates a bare operand, which must be a boolean.
func matchOperand(e ast.Expr, attrs Attributes) (bool, error) {
	op, err := resolve(e, attrs)
	if err != nil {
		return false, err
	}

	switch op.value.Kind() {
	case credit.KindBool:
		b, _ := op.value.Bool()
		return b, nil
	case credit.KindNull:
		if op.isLiteral() {
			return false, &TypeMismatchError{ExpectedType: "boolean", ActualType: "null"}
		}
		return false, &NullValueError{FieldName: op.field}
	default:
		return false, &TypeMismatchError{
			FieldName:    op.field,
			ExpectedType: "boolean",
			ActualType:   op.value.Kind().String(),
		}
	}
}

// operand is a resolved comparison side. field is empty for literals.
type operand struct {
	field string
	value credit.Value
}

func (o operand) isLiteral() bool { return o.field == "" }

// resolve looks up an identifier or unwraps a literal. Malformed attribute
// values are faults.
func resolve(e ast.Expr, attrs Attributes) (operand, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return operand{value: n.Value}, nil

	case *ast.Ident:
		v, ok := attrs.Attribute(n.Name)
		if !ok {
			return operand{}, &FieldNotFoundError{FieldName: n.Name}
		}
		if v.Kind() == credit.KindMalformed {
			expected := "well-formed value"
			if spec, known := credit.LookupAttribute(n.Name); known {
				expected = spec.Kind.String()
			}
			return operand{}, &TypeMismatchError{
				FieldName:    n.Name,
				ExpectedType: expected,
				ActualType:   v.String(),
			}
		}
		return operand{field: n.Name, value: v}, nil

	default:
		return operand{}, fmt.Errorf("unexpected operand %T", e)
	}
}

// matchDetails renders the referenced attributes as "name=value" pairs in
// the given (sorted) order.
func matchDetails(fields []string, attrs Attributes) string {
	parts := make([]string, len(fields))
	for i, name := range fields {
		if v, ok := attrs.Attribute(name); ok {
			parts[i] = name + "=" + v.String()
		} else {
			parts[i] = name + "=<absent>"
		}
	}
	return strings.Join(parts, ", ")
}
