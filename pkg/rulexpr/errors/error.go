package errors

import (
	"fmt"
	"strings"

	"mercator-hq/underwriter/pkg/rulexpr/ast"
)

// ErrorType classifies a condition problem.
type ErrorType string

const (
	ErrorTypeSyntax   ErrorType = "syntax"   // Token or grammar error
	ErrorTypeLimit    ErrorType = "limit"    // Expression too long or too deep
	ErrorTypeSemantic ErrorType = "semantic" // Unknown attribute
	ErrorTypeType     ErrorType = "type"     // Operator/operand kind mismatch
)

// Error is a problem at one position of a rule condition.
type Error struct {
	Type       ErrorType    // Category of error
	Message    string       // Error message
	Position   ast.Position // Position inside Source
	Source     string       // Expression text (optional)
	Suggestion string       // Suggested fix (optional)
}

// Error implements the error interface with a single-line message.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error at %s: %s", e.Type, e.Position, e.Message)
	if e.Suggestion != "" {
		msg += " (" + e.Suggestion + ")"
	}
	return msg
}

// Detailed returns a multi-line rendering with the source and a caret
// under the offending position.
func (e *Error) Detailed() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", e.Type, e.Message))
	sb.WriteString(fmt.Sprintf("  --> %s\n", e.Position))

	if e.Source != "" {
		sb.WriteString("  |\n")
		sb.WriteString("  | " + e.Source + "\n")
		offset := min(max(e.Position.Offset, 0), len(e.Source))
		sb.WriteString("  | " + strings.Repeat(" ", offset) + "^\n")
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}

	return sb.String()
}

// ErrorList collects every problem of one condition so a lint run can
// report them together.
type ErrorList struct {
	Errors []*Error
}

func NewErrorList() *ErrorList {
	return &ErrorList{}
}

func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError adds a problem without a suggestion.
func (el *ErrorList) AddError(errType ErrorType, message string, pos ast.Position) {
	el.Add(&Error{
		Type:     errType,
		Message:  message,
		Position: pos,
	})
}

// AddErrorWithSuggestion adds a problem with a suggested fix.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, message string, pos ast.Position, suggestion string) {
	el.Add(&Error{
		Type:       errType,
		Message:    message,
		Position:   pos,
		Suggestion: suggestion,
	})
}

// HasErrors reports whether any problem was added.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
func (el *ErrorList) Error() string {
	switch el.Count() {
	case 0:
		return ""
	case 1:
		return el.Errors[0].Error()
	}

	msgs := make([]string, len(el.Errors))
	for i, err := range el.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", el.Count(), strings.Join(msgs, "; "))
}

// ToError returns the list as an error, or nil when it is empty.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// WithSource attaches the condition text to every problem.
func (el *ErrorList) WithSource(src string) *ErrorList {
	for _, err := range el.Errors {
		err.Source = src
	}
	return el
}
