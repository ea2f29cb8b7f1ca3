// Package parser parses rule condition expressions into ASTs.
//
// # Grammar
//
//	expr       := or
//	or         := and ( "or" and )*
//	and        := unary ( "and" unary )*
//	unary      := "not" unary | primary
//	primary    := "(" expr ")" | comparison
//	comparison := operand ( cmpop operand )?
//	cmpop      := "<" | "<=" | ">" | ">=" | "==" | "!="
//	operand    := IDENT | NUMBER | STRING | "true" | "false" | "null"
//
// Keywords are case-insensitive, and None is accepted as null. Strings use
// single or double quotes with the escapes \\ \' \" \n \t \r. Chained
// comparisons, function calls, attribute access, indexing and arithmetic are
// rejected.
//
// # Limits
//
// Expressions longer than DefaultMaxLength bytes or nesting deeper than
// DefaultMaxDepth levels are rejected with ErrorTypeLimit, so hostile input
// cannot exhaust the stack:
//
//	p := parser.NewParser().WithMaxDepth(16)
//	expr, err := p.Parse("credit_score >= 820 and dti_ratio <= 0.35")
//
// # Structured Conditions
//
// BuildCondition converts a credit.RuleCondition {field, operator, value}
// into the same AST, expanding between, in and not_in into comparisons.
package parser
