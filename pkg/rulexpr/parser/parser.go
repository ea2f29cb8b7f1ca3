package parser

import (
	"fmt"
	"strings"

	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/rulexpr/ast"
	rxErrors "mercator-hq/underwriter/pkg/rulexpr/errors"
)

const (
	// DefaultMaxDepth bounds nesting of parentheses and 'not'.
	DefaultMaxDepth = 32

	// DefaultMaxLength bounds the expression length in bytes.
	DefaultMaxLength = 4096
)

// Parser parses rule condition expressions into ASTs.
// A Parser holds only configuration and is safe for concurrent use.
type Parser struct {
	maxDepth  int // Maximum nesting depth (default: 32)
	maxLength int // Maximum expression length in bytes (default: 4096)
}

// NewParser creates a new parser with default limits.
func NewParser() *Parser {
	return &Parser{
		maxDepth:  DefaultMaxDepth,
		maxLength: DefaultMaxLength,
	}
}

// WithMaxDepth sets the maximum nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// WithMaxLength sets the maximum expression length.
func (p *Parser) WithMaxLength(length int) *Parser {
	p.maxLength = length
	return p
}

// Parse parses src and returns the expression tree. On failure the error is
// a *errors.Error carrying the position and src as context.
func (p *Parser) Parse(src string) (ast.Expr, error) {
	expr, perr := p.parse(src)
	if perr != nil {
		perr.Source = src
		return nil, perr
	}
	return expr, nil
}

func (p *Parser) parse(src string) (ast.Expr, *rxErrors.Error) {
	if len(src) > p.maxLength {
		return nil, &rxErrors.Error{
			Type:    rxErrors.ErrorTypeLimit,
			Message: fmt.Sprintf("expression length %d exceeds maximum %d bytes", len(src), p.maxLength),
		}
	}
	if strings.TrimSpace(src) == "" {
		return nil, syntaxError(0, "empty expression", "")
	}

	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	st := &state{toks: toks, maxDepth: p.maxDepth}
	expr, err := st.parseExpr()
	if err != nil {
		return nil, err
	}

	if tok := st.peek(); tok.kind != tokEOF {
		return nil, st.unexpected(tok)
	}
	return expr, nil
}

// Parse parses src with the default limits.
func Parse(src string) (ast.Expr, error) {
	return NewParser().Parse(src)
}

// state is the cursor of a single parse.
type state struct {
	toks     []token
	i        int
	depth    int
	maxDepth int
}

func (s *state) peek() token { return s.toks[s.i] }

func (s *state) next() token {
	tok := s.toks[s.i]
	if tok.kind != tokEOF {
		s.i++
	}
	return tok
}

func (s *state) enter(tok token) *rxErrors.Error {
	s.depth++
	if s.depth > s.maxDepth {
		return &rxErrors.Error{
			Type:     rxErrors.ErrorTypeLimit,
			Message:  fmt.Sprintf("expression nests deeper than %d levels", s.maxDepth),
			Position: ast.Position{Offset: tok.pos},
		}
	}
	return nil
}

func (s *state) leave() { s.depth-- }

// expr := or
func (s *state) parseExpr() (ast.Expr, *rxErrors.Error) {
	if err := s.enter(s.peek()); err != nil {
		return nil, err
	}
	defer s.leave()
	return s.parseOr()
}

// or := and ( "or" and )*
func (s *state) parseOr() (ast.Expr, *rxErrors.Error) {
	return s.parseLogical(ast.LogicalOr, tokOr, s.parseAnd)
}

// and := unary ( "and" unary )*
func (s *state) parseAnd() (ast.Expr, *rxErrors.Error) {
	return s.parseLogical(ast.LogicalAnd, tokAnd, s.parseUnary)
}

func (s *state) parseLogical(op ast.LogicalOp, sep tokenKind, operand func() (ast.Expr, *rxErrors.Error)) (ast.Expr, *rxErrors.Error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	if s.peek().kind != sep {
		return first, nil
	}

	terms := []ast.Expr{first}
	for s.peek().kind == sep {
		s.next()
		term, err := operand()
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return &ast.Logical{Op: op, Terms: terms, At: first.Pos()}, nil
}

// unary := "not" unary | primary
func (s *state) parseUnary() (ast.Expr, *rxErrors.Error) {
	tok := s.peek()
	if tok.kind != tokNot {
		return s.parsePrimary()
	}

	s.next()
	if err := s.enter(tok); err != nil {
		return nil, err
	}
	defer s.leave()

	x, err := s.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.Not{X: x, At: ast.Position{Offset: tok.pos}}, nil
}

// primary := "(" expr ")" | comparison
func (s *state) parsePrimary() (ast.Expr, *rxErrors.Error) {
	open := s.peek()
	if open.kind != tokLParen {
		return s.parseComparison()
	}

	s.next()
	expr, err := s.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := s.peek(); tok.kind != tokRParen {
		if tok.kind == tokEOF {
			return nil, syntaxError(open.pos, "missing closing parenthesis", "")
		}
		return nil, s.unexpected(tok)
	}
	s.next()
	return expr, nil
}

// comparison := operand ( cmpop operand )?
func (s *state) parseComparison() (ast.Expr, *rxErrors.Error) {
	left, err := s.parseOperand()
	if err != nil {
		return nil, err
	}

	opTok := s.peek()
	if opTok.kind != tokCompare {
		return left, nil
	}
	s.next()

	right, err := s.parseOperand()
	if err != nil {
		return nil, err
	}

	if tok := s.peek(); tok.kind == tokCompare {
		return nil, syntaxError(tok.pos, "chained comparisons are not supported",
			"join the comparisons with 'and'")
	}

	return &ast.Compare{
		Op:    ast.Operator(opTok.text),
		Left:  left,
		Right: right,
		At:    left.Pos(),
	}, nil
}

// operand := IDENT | NUMBER | STRING | "true" | "false" | "null"
func (s *state) parseOperand() (ast.Expr, *rxErrors.Error) {
	tok := s.next()
	pos := ast.Position{Offset: tok.pos}

	switch tok.kind {
	case tokIdent:
		if s.peek().kind == tokLParen {
			return nil, syntaxError(tok.pos, fmt.Sprintf("function calls are not supported: '%s(...)'", tok.text), "")
		}
		return &ast.Ident{Name: tok.text, At: pos}, nil
	case tokNumber:
		return &ast.Literal{Value: credit.NumberValue(tok.num), At: pos}, nil
	case tokString:
		return &ast.Literal{Value: credit.StringValue(tok.str), At: pos}, nil
	case tokTrue:
		return &ast.Literal{Value: credit.BoolValue(true), At: pos}, nil
	case tokFalse:
		return &ast.Literal{Value: credit.BoolValue(false), At: pos}, nil
	case tokNull:
		return &ast.Literal{Value: credit.NullValue(), At: pos}, nil
	case tokEOF:
		return nil, syntaxError(tok.pos, "unexpected end of expression", "")
	default:
		return nil, syntaxError(tok.pos, fmt.Sprintf("expected attribute or literal, found %s", tok.describe()), "")
	}
}

func (s *state) unexpected(tok token) *rxErrors.Error {
	suggestion := ""
	if tok.kind == tokIdent {
		suggestion = rxErrors.SuggestToken(tok.text)
	}
	return syntaxError(tok.pos, fmt.Sprintf("unexpected %s", tok.describe()), suggestion)
}
