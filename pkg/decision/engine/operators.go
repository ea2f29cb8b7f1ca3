package engine

import (
	"fmt"

	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/rulexpr/ast"
)

// evaluateOperator evaluates a comparison between two resolved operands.
func evaluateOperator(op ast.Operator, left, right operand) (bool, error) {
	switch op {
	case ast.OperatorEqual:
		return evaluateEqual(op, left, right)

	case ast.OperatorNotEqual:
		equal, err := evaluateEqual(op, left, right)
		if err != nil {
			return false, err
		}
		return !equal, nil

	case ast.OperatorLessThan, ast.OperatorLessEqual, ast.OperatorGreaterThan, ast.OperatorGreaterEqual:
		a, err := left.number(op)
		if err != nil {
			return false, err
		}
		b, err := right.number(op)
		if err != nil {
			return false, err
		}
		return evaluateOrdering(op, a, b), nil

	default:
		return false, fmt.Errorf("unknown operator: %q", op)
	}
}

// evaluateEqual checks if two operands are equal. Comparing with a null
// literal tests for presence; a null attribute against anything else is a
// fault.
func evaluateEqual(op ast.Operator, left, right operand) (bool, error) {
	leftNull, rightNull := left.value.IsNull(), right.value.IsNull()

	if leftNull || rightNull {
		if (leftNull && left.isLiteral()) || (rightNull && right.isLiteral()) {
			return leftNull && rightNull, nil
		}
		nullSide := left
		if !leftNull {
			nullSide = right
		}
		return false, &NullValueError{FieldName: nullSide.field, Operator: string(op)}
	}

	if left.value.Kind() != right.value.Kind() {
		// Report against the attribute side when there is one
		subject, other := left, right
		if subject.isLiteral() {
			subject, other = right, left
		}
		return false, &TypeMismatchError{
			FieldName:    subject.field,
			ExpectedType: other.value.Kind().String(),
			ActualType:   subject.value.Kind().String(),
		}
	}

	switch left.value.Kind() {
	case credit.KindNumber:
		a, _ := left.value.Number()
		b, _ := right.value.Number()
		return a == b, nil
	case credit.KindString:
		a, _ := left.value.Str()
		b, _ := right.value.Str()
		return a == b, nil
	case credit.KindBool:
		a, _ := left.value.Bool()
		b, _ := right.value.Bool()
		return a == b, nil
	default:
		return false, fmt.Errorf("cannot compare %s values", left.value.Kind())
	}
}

func evaluateOrdering(op ast.Operator, a, b float64) bool {
	switch op {
	case ast.OperatorLessThan:
		return a < b
	case ast.OperatorLessEqual:
		return a <= b
	case ast.OperatorGreaterThan:
		return a > b
	default:
		return a >= b
	}
}

// number returns the operand as a float64 for an ordering comparison.
func (o operand) number(op ast.Operator) (float64, error) {
	switch o.value.Kind() {
	case credit.KindNumber:
		f, _ := o.value.Number()
		return f, nil
	case credit.KindNull:
		if o.isLiteral() {
			return 0, &TypeMismatchError{ExpectedType: "number", ActualType: "null"}
		}
		return 0, &NullValueError{FieldName: o.field, Operator: string(op)}
	default:
		return 0, &TypeMismatchError{
			FieldName:    o.field,
			ExpectedType: "number",
			ActualType:   o.value.Kind().String(),
		}
	}
}
