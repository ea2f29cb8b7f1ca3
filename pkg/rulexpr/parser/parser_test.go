package parser

import (
	"errors"
	"strings"
	"testing"

	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/rulexpr/ast"
	rxErrors "mercator-hq/underwriter/pkg/rulexpr/errors"
)

func TestParser_Parse_Canonical(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"credit_score >= 820 and dti_ratio <= 0.35", "credit_score >= 820 and dti_ratio <= 0.35"},
		{"A OR b And NOT c", "A or (b and not c)"},
		{"months_in_industry == None", "months_in_industry == null"},
		{"secured_flag", "secured_flag"},
		{"(a or b) and c", "(a or b) and c"},
		{`'it\'s' == name`, `"it's" == name`},
		{"x > -1.5", "x > -1.5"},
		{"x == TRUE", "x == true"},
		{"not (a and b)", "not (a and b)"},
		{"((x > 1))", "x > 1"},
		{"1e3 < x", "1000 < x"},
		{"x != .5", "x != 0.5"},
		{"channel == \"online\"\n  and  state != 'NY'", `channel == "online" and state != "NY"`},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			expr, err := p.Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := expr.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParser_Parse_Structure(t *testing.T) {
	expr, err := Parse("credit_score >= 820 and dti_ratio <= 0.35 and not bankruptcy_last_7y_flag")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	and, ok := expr.(*ast.Logical)
	if !ok || and.Op != ast.LogicalAnd {
		t.Fatalf("root = %T, want *ast.Logical(and)", expr)
	}
	if len(and.Terms) != 3 {
		t.Fatalf("len(Terms) = %d, want 3", len(and.Terms))
	}

	cmp, ok := and.Terms[0].(*ast.Compare)
	if !ok {
		t.Fatalf("Terms[0] = %T, want *ast.Compare", and.Terms[0])
	}
	if cmp.Op != ast.OperatorGreaterEqual {
		t.Errorf("Op = %q, want %q", cmp.Op, ast.OperatorGreaterEqual)
	}
	lit, ok := cmp.Right.(*ast.Literal)
	if !ok {
		t.Fatalf("Right = %T, want *ast.Literal", cmp.Right)
	}
	if n, _ := lit.Value.Number(); n != 820 {
		t.Errorf("literal = %v, want 820", lit.Value)
	}

	dti := and.Terms[1].(*ast.Compare)
	if dti.Pos().Column() != 25 {
		t.Errorf("dti Pos().Column() = %d, want 25", dti.Pos().Column())
	}

	if _, ok := and.Terms[2].(*ast.Not); !ok {
		t.Errorf("Terms[2] = %T, want *ast.Not", and.Terms[2])
	}

	fields := ast.Fields(expr)
	want := []string{"bankruptcy_last_7y_flag", "credit_score", "dti_ratio"}
	if strings.Join(fields, ",") != strings.Join(want, ",") {
		t.Errorf("Fields() = %v, want %v", fields, want)
	}
}

func TestParser_Parse_Errors(t *testing.T) {
	tests := []struct {
		name           string
		src            string
		wantType       rxErrors.ErrorType
		wantOffset     int
		wantMessage    string
		wantSuggestion string
	}{
		{name: "empty", src: "   ", wantType: rxErrors.ErrorTypeSyntax, wantMessage: "empty expression"},
		{name: "chained comparison", src: "a < b < c", wantType: rxErrors.ErrorTypeSyntax, wantOffset: 6, wantMessage: "chained comparisons"},
		{name: "function call", src: "len(x) > 1", wantType: rxErrors.ErrorTypeSyntax, wantMessage: "function calls"},
		{name: "attribute access", src: "a.b == 1", wantType: rxErrors.ErrorTypeSyntax, wantOffset: 1, wantMessage: "attribute access"},
		{name: "single equals", src: "x = 1", wantType: rxErrors.ErrorTypeSyntax, wantOffset: 2, wantSuggestion: "use '=='"},
		{name: "arithmetic", src: "x == 1 + 2", wantType: rxErrors.ErrorTypeSyntax, wantOffset: 7, wantMessage: "arithmetic"},
		{name: "indexing", src: "x[0] == 1", wantType: rxErrors.ErrorTypeSyntax, wantOffset: 1, wantMessage: "indexing"},
		{name: "unclosed paren", src: "(x > 1", wantType: rxErrors.ErrorTypeSyntax, wantMessage: "missing closing parenthesis"},
		{name: "extra paren", src: "x > 1)", wantType: rxErrors.ErrorTypeSyntax, wantOffset: 5, wantMessage: "unexpected ')'"},
		{name: "missing operand", src: "x >", wantType: rxErrors.ErrorTypeSyntax, wantOffset: 3, wantMessage: "unexpected end"},
		{name: "unterminated string", src: "x > 'abc", wantType: rxErrors.ErrorTypeSyntax, wantOffset: 4, wantMessage: "unterminated"},
		{name: "misspelled keyword", src: "x > 1 andd y", wantType: rxErrors.ErrorTypeSyntax, wantOffset: 6, wantSuggestion: "did you mean 'and'?"},
		{name: "in operator", src: "x in y", wantType: rxErrors.ErrorTypeSyntax, wantOffset: 2, wantSuggestion: "expand"},
		{name: "double ampersand", src: "a && b", wantType: rxErrors.ErrorTypeSyntax, wantOffset: 2, wantSuggestion: "use 'and'"},
		{name: "overflowing number", src: "x > 1e999", wantType: rxErrors.ErrorTypeSyntax, wantOffset: 4, wantMessage: "invalid number"},
		{name: "number with suffix", src: "12abc > 1", wantType: rxErrors.ErrorTypeSyntax, wantMessage: "invalid number"},
		{name: "bad escape", src: `x == 'a\q'`, wantType: rxErrors.ErrorTypeSyntax, wantOffset: 7, wantMessage: "invalid escape"},
		{name: "too deep", src: strings.Repeat("(", 40) + "x" + strings.Repeat(")", 40), wantType: rxErrors.ErrorTypeLimit, wantOffset: 32, wantMessage: "deeper than 32"},
		{name: "too deep with not", src: strings.Repeat("not ", 40) + "x", wantType: rxErrors.ErrorTypeLimit, wantOffset: 124, wantMessage: "deeper than 32"},
		{name: "too long", src: strings.Repeat("x", DefaultMaxLength+1), wantType: rxErrors.ErrorTypeLimit, wantMessage: "exceeds maximum"},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.src)
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}

			var perr *rxErrors.Error
			if !errors.As(err, &perr) {
				t.Fatalf("Parse() error = %T, want *errors.Error", err)
			}
			if perr.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", perr.Type, tt.wantType)
			}
			if perr.Position.Offset != tt.wantOffset {
				t.Errorf("Position.Offset = %d, want %d (%v)", perr.Position.Offset, tt.wantOffset, perr)
			}
			if !strings.Contains(perr.Message, tt.wantMessage) {
				t.Errorf("Message = %q, want it to contain %q", perr.Message, tt.wantMessage)
			}
			if !strings.Contains(perr.Suggestion, tt.wantSuggestion) {
				t.Errorf("Suggestion = %q, want it to contain %q", perr.Suggestion, tt.wantSuggestion)
			}
			if perr.Source != tt.src {
				t.Errorf("Source = %q, want %q", perr.Source, tt.src)
			}
		})
	}
}

func TestParser_WithMaxDepth(t *testing.T) {
	p := NewParser().WithMaxDepth(2)

	if _, err := p.Parse("(x > 1)"); err != nil {
		t.Errorf("Parse() with depth 2 error = %v, want nil", err)
	}
	if _, err := p.Parse("((x > 1))"); err == nil {
		t.Error("Parse() with depth 3 error = nil, want limit error")
	}
}

func TestBuildCondition(t *testing.T) {
	tests := []struct {
		name string
		cond credit.RuleCondition
		want string
	}{
		{"scalar", credit.RuleCondition{Field: "num_30d_late_last_12m", Operator: ">=", Value: 3}, "num_30d_late_last_12m >= 3"},
		{"string", credit.RuleCondition{Field: "channel", Operator: "==", Value: "online"}, `channel == "online"`},
		{"between", credit.RuleCondition{Field: "dti_ratio", Operator: "between", Value: []any{0.1, 0.4}}, "dti_ratio >= 0.1 and dti_ratio <= 0.4"},
		{"in single", credit.RuleCondition{Field: "state", Operator: "in", Value: []any{"CA"}}, `state == "CA"`},
		{"in", credit.RuleCondition{Field: "state", Operator: "in", Value: []any{"CA", "NY"}}, `state == "CA" or state == "NY"`},
		{"not_in", credit.RuleCondition{Field: "state", Operator: "not_in", Value: []any{"CA", "NY"}}, `not (state == "CA" or state == "NY")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := BuildCondition(&tt.cond)
			if err != nil {
				t.Fatalf("BuildCondition() error = %v", err)
			}
			if got := expr.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildCondition_Errors(t *testing.T) {
	tests := []struct {
		name string
		cond *credit.RuleCondition
	}{
		{"nil", nil},
		{"bad field", &credit.RuleCondition{Field: "a.b", Operator: "==", Value: 1}},
		{"keyword field", &credit.RuleCondition{Field: "AND", Operator: "==", Value: 1}},
		{"unknown operator", &credit.RuleCondition{Field: "x", Operator: "contains", Value: "a"}},
		{"list for scalar operator", &credit.RuleCondition{Field: "x", Operator: "<", Value: []any{1}}},
		{"between one bound", &credit.RuleCondition{Field: "x", Operator: "between", Value: []any{1}}},
		{"between scalar", &credit.RuleCondition{Field: "x", Operator: "between", Value: 1}},
		{"empty in", &credit.RuleCondition{Field: "x", Operator: "in", Value: []any{}}},
		{"object value", &credit.RuleCondition{Field: "x", Operator: "==", Value: map[string]any{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildCondition(tt.cond); err == nil {
				t.Error("BuildCondition() error = nil, want error")
			}
		})
	}
}

func FuzzParse(f *testing.F) {
	seeds := []string{
		"credit_score >= 820 and dti_ratio <= 0.35",
		"not (a or b) and c == 'x'",
		"x == None or y != null",
		"((((a))))",
		"a < b < c",
		"x > -1e10",
		`s == "a\"b\\c"`,
		"f(x)",
		"",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	roomy := NewParser().WithMaxDepth(1 << 20).WithMaxLength(1 << 20)

	f.Fuzz(func(t *testing.T, src string) {
		expr, err := NewParser().Parse(src)
		if err != nil {
			var perr *rxErrors.Error
			if !errors.As(err, &perr) {
				t.Fatalf("Parse(%q) error = %T, want *errors.Error", src, err)
			}
			return
		}

		canonical := expr.String()
		again, err := roomy.Parse(canonical)
		if err != nil {
			t.Fatalf("Parse(%q) of canonical form %q error = %v", src, canonical, err)
		}
		if again.String() != canonical {
			t.Errorf("canonical form not stable: %q -> %q", canonical, again.String())
		}
	})
}
