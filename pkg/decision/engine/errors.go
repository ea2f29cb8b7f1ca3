package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors
var (
	// ErrInvalidConfig indicates invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrBatchLimit indicates an application beyond the configured batch size.
	ErrBatchLimit = errors.New("batch size limit exceeded")
)

// FieldNotFoundError indicates a condition references an attribute the
// application does not carry.
type FieldNotFoundError struct {
	FieldName string
}

// Error returns the error message.
func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field not found: %q", e.FieldName)
}

// TypeMismatchError indicates a type mismatch in condition evaluation.
// FieldName is empty when the offending operand is a literal.
type TypeMismatchError struct {
	FieldName    string
	ExpectedType string
	ActualType   string
}

// Error returns the error message.
func (e *TypeMismatchError) Error() string {
	if e.FieldName == "" {
		return fmt.Sprintf("type mismatch for literal: expected %s, got %s", e.ExpectedType, e.ActualType)
	}
	return fmt.Sprintf("type mismatch for field %q: expected %s, got %s", e.FieldName, e.ExpectedType, e.ActualType)
}

// NullValueError indicates a null attribute used where a value is required.
type NullValueError struct {
	FieldName string
	Operator  string
}

// Error returns the error message.
func (e *NullValueError) Error() string {
	if e.Operator == "" {
		return fmt.Sprintf("field %q is null", e.FieldName)
	}
	return fmt.Sprintf("field %q is null in '%s' comparison", e.FieldName, e.Operator)
}

// ConditionError indicates a rule condition could not be evaluated. It is
// recorded on the rule's evaluation and never returned from Decide.
type ConditionError struct {
	ProfileID string
	RuleID    string
	Cause     error
}

// Error returns the error message.
func (e *ConditionError) Error() string {
	return fmt.Sprintf("profile %s rule %s: condition error: %v", e.ProfileID, e.RuleID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ConditionError) Unwrap() error {
	return e.Cause
}

// StructuralError indicates an input entity that cannot be evaluated.
type StructuralError struct {
	Kind     string // "application" or "profile"
	Index    int    // position in the input
	ID       string
	Problems []string
	Cause    error
}

// Error returns the error message.
func (e *StructuralError) Error() string {
	id := e.ID
	if id == "" {
		id = "<unnamed>"
	}
	return fmt.Sprintf("%s %s at index %d: %s", e.Kind, id, e.Index, strings.Join(e.Problems, "; "))
}

// Unwrap returns the underlying cause.
func (e *StructuralError) Unwrap() error {
	return e.Cause
}

// BatchValidationError is returned by Decide in RejectFail mode when any
// input entity is structurally invalid.
type BatchValidationError struct {
	Errors []*StructuralError
}

// Error returns the error message.
func (e *BatchValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("batch validation error: %s", e.Errors[0])
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d batch validation errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap returns the individual structural errors.
func (e *BatchValidationError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}
