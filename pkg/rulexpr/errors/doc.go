// Package errors provides positioned error types for rule condition parsing
// and validation.
//
// # Error Types
//
// ErrorTypeSyntax: token or grammar errors (unexpected token, unterminated string)
//
// ErrorTypeLimit: expression exceeds the length or nesting bound
//
// ErrorTypeSemantic: reference to an attribute the schema does not define
//
// ErrorTypeType: operator used with an incompatible operand kind
//
// # Basic Usage
//
// Accumulate multiple errors:
//
//	errList := errors.NewErrorList()
//	errList.AddErrorWithSuggestion(errors.ErrorTypeSemantic,
//	    "unknown attribute 'credit_scor'", pos, "did you mean 'credit_score'?")
//
//	if errList.HasErrors() {
//	    return errList.ToError()
//	}
//
// # Error Format
//
// Error returns a single line suitable for logs and result fields. Detailed
// renders the expression with a caret for terminal output:
//
//	[semantic] unknown attribute 'credit_scor'
//	  --> column 1
//	  |
//	  | credit_scor >= 700
//	  | ^
//	  = suggestion: did you mean 'credit_score'?
package errors
