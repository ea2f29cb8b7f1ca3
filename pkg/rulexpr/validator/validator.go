package validator

import (
	"fmt"
	"sort"

	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/rulexpr/ast"
	rxErrors "mercator-hq/underwriter/pkg/rulexpr/errors"
)

// Validator statically checks a parsed condition against an attribute schema.
// It reports every problem it finds rather than stopping at the first.
type Validator struct {
	attributes map[string]credit.AttributeSpec
	names      []string
}

// NewValidator creates a validator for credit.Schema.
func NewValidator() *Validator {
	return NewValidatorFor(credit.Schema)
}

// NewValidatorFor creates a validator for a custom attribute set.
func NewValidatorFor(specs []credit.AttributeSpec) *Validator {
	v := &Validator{
		attributes: make(map[string]credit.AttributeSpec, len(specs)),
		names:      make([]string, 0, len(specs)),
	}
	for _, spec := range specs {
		v.attributes[spec.Name] = spec
		v.names = append(v.names, spec.Name)
	}
	sort.Strings(v.names)
	return v
}

// Validate checks expr and returns an *errors.ErrorList, or nil if the
// condition is well-formed for the schema.
func (v *Validator) Validate(expr ast.Expr) error {
	errs := rxErrors.NewErrorList()
	v.checkBoolean(expr, errs)
	return errs.ToError()
}

// checkBoolean validates a node that sits in a logical position.
func (v *Validator) checkBoolean(e ast.Expr, errs *rxErrors.ErrorList) {
	switch n := e.(type) {
	case *ast.Logical:
		for _, term := range n.Terms {
			v.checkBoolean(term, errs)
		}
	case *ast.Not:
		v.checkBoolean(n.X, errs)
	case *ast.Compare:
		v.checkCompare(n, errs)
	case *ast.Ident:
		spec, ok := v.lookup(n, errs)
		if ok && spec.Kind != credit.KindBool {
			errs.AddErrorWithSuggestion(rxErrors.ErrorTypeType,
				fmt.Sprintf("attribute '%s' is a %s, not a boolean", n.Name, spec.Kind),
				n.Pos(), "compare it with an operator")
		}
	case *ast.Literal:
		if n.Value.Kind() != credit.KindBool {
			errs.AddError(rxErrors.ErrorTypeType,
				fmt.Sprintf("literal %s is not a boolean", n), n.Pos())
		}
	}
}

func (v *Validator) checkCompare(c *ast.Compare, errs *rxErrors.ErrorList) {
	left, leftKnown := v.operandKind(c.Left, errs)
	right, rightKnown := v.operandKind(c.Right, errs)

	if c.Op.IsOrdering() {
		for _, side := range []struct {
			kind  credit.Kind
			known bool
			expr  ast.Expr
		}{{left, leftKnown, c.Left}, {right, rightKnown, c.Right}} {
			if !side.known || side.kind == credit.KindNumber {
				continue
			}
			errs.AddErrorWithSuggestion(rxErrors.ErrorTypeType,
				fmt.Sprintf("operator '%s' cannot order a %s", c.Op, side.kind),
				side.expr.Pos(), rxErrors.SuggestOperator(side.kind.String()))
		}
		return
	}

	if !leftKnown || !rightKnown || left == credit.KindNull || right == credit.KindNull {
		return
	}
	if left != right {
		errs.AddError(rxErrors.ErrorTypeType,
			fmt.Sprintf("cannot compare %s with %s", left, right), c.Pos())
	}
}

// operandKind returns the static kind of an operand. Unknown attributes are
// reported and yield known=false.
func (v *Validator) operandKind(e ast.Expr, errs *rxErrors.ErrorList) (credit.Kind, bool) {
	switch n := e.(type) {
	case *ast.Ident:
		spec, ok := v.lookup(n, errs)
		return spec.Kind, ok
	case *ast.Literal:
		return n.Value.Kind(), true
	default:
		return credit.KindMalformed, false
	}
}

func (v *Validator) lookup(id *ast.Ident, errs *rxErrors.ErrorList) (credit.AttributeSpec, bool) {
	spec, ok := v.attributes[id.Name]
	if !ok {
		errs.AddErrorWithSuggestion(rxErrors.ErrorTypeSemantic,
			fmt.Sprintf("unknown attribute '%s'", id.Name),
			id.Pos(), rxErrors.SuggestFieldName(id.Name, v.names))
	}
	return spec, ok
}
