// Package validator performs static checks of parsed rule conditions.
//
// # Checks
//
// Semantic: every referenced attribute must exist in the schema. Unknown
// names get a Levenshtein-based suggestion.
//
// Type: ordering operators (<, <=, >, >=) need numeric operands; == and !=
// need operands of the same kind, except that null may be compared with
// anything as a presence test; a bare operand in a logical position must be
// a boolean.
//
// The validator never rejects a condition at evaluation time. The engine
// evaluates whatever parses and turns the same problems into per-rule
// faults; the validator exists so that authoring tools can report them
// before a batch is run.
//
// # Basic Usage
//
//	expr, err := parser.Parse(rule.Expression)
//	if err != nil {
//	    return err
//	}
//	if err := validator.NewValidator().Validate(expr); err != nil {
//	    for _, e := range err.(*errors.ErrorList).Errors {
//	        fmt.Print(e.Detailed())
//	    }
//	}
package validator
