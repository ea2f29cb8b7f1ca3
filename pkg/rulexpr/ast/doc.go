// Package ast provides the Abstract Syntax Tree for rule conditions.
//
// A condition is a boolean expression over application attributes, such as
//
//	credit_score >= 820 and (dti_ratio <= 0.35 or secured_flag == true)
//
// # Core Types
//
// Ident: reference to an application attribute
//
// Literal: number, string, boolean or null constant
//
// Compare: binary comparison between two operands (==, !=, <, <=, >, >=)
//
// Logical: n-ary and/or, evaluated left to right
//
// Not: negation
//
// Every node records the Position of its first token so that parse and
// validation errors can point into the source text. Nodes are immutable and
// can be shared between goroutines.
//
// # Traversal
//
// Inspect walks a tree depth-first; Fields lists the referenced attributes:
//
//	expr, _ := parser.NewParser().Parse("credit_score >= 820 and dti_ratio <= 0.35")
//	fmt.Println(ast.Fields(expr)) // [credit_score dti_ratio]
package ast
