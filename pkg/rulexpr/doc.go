// Package rulexpr is the entry point for working with rule conditions.
//
// Conditions go through two stages:
//
//  1. Parsing (package parser): text or a structured condition becomes an
//     immutable AST (package ast). Hostile input is bounded by length and
//     nesting limits.
//  2. Validation (package validator): the AST is checked against the
//     attribute schema for unknown attributes and kind mismatches.
//
// The decision engine only parses; problems the validator would catch
// surface as evaluation faults on the affected rule. LintProfile runs both
// stages over a whole profile for authoring tools:
//
//	for _, f := range rulexpr.LintProfile(profile) {
//	    fmt.Printf("%s: %s", f.RuleID, f.Err.Detailed())
//	}
package rulexpr
