package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"mercator-hq/underwriter/pkg/rulexpr/ast"
	rxErrors "mercator-hq/underwriter/pkg/rulexpr/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokLParen
	tokRParen
	tokCompare
	tokAnd
	tokOr
	tokNot
	tokTrue
	tokFalse
	tokNull
)

type token struct {
	kind tokenKind
	text string  // raw source text
	pos  int     // byte offset
	str  string  // decoded value of a string literal
	num  float64 // value of a number literal
}

// describe renders the token for error messages.
func (t token) describe() string {
	if t.kind == tokEOF {
		return "end of expression"
	}
	return fmt.Sprintf("'%s'", t.text)
}

var keywords = map[string]tokenKind{
	"and":   tokAnd,
	"or":    tokOr,
	"not":   tokNot,
	"true":  tokTrue,
	"false": tokFalse,
	"null":  tokNull,
	"none":  tokNull,
}

// lex splits src into tokens. The final token is always tokEOF.
func lex(src string) ([]token, *rxErrors.Error) {
	var toks []token
	i := 0

	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			text := src[start:i]
			kind, ok := keywords[strings.ToLower(text)]
			if !ok {
				kind = tokIdent
			}
			toks = append(toks, token{kind: kind, text: text, pos: start})

			if i < len(src) && src[i] == '.' && kind == tokIdent {
				return nil, syntaxError(i, "attribute access is not supported", "")
			}

		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])) ||
			(c == '-' && i+1 < len(src) && (isDigit(src[i+1]) || src[i+1] == '.')):
			tok, err := lexNumber(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i += len(tok.text)

		case c == '"' || c == '\'':
			tok, err := lexString(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i += len(tok.text)

		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++

		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++

		case c == '<' || c == '>' || c == '=' || c == '!':
			tok, err := lexOperator(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i += len(tok.text)

		default:
			r, _ := utf8.DecodeRuneInString(src[i:])
			text := string(r)
			if c == '&' || c == '|' {
				text = src[i : i+1]
				if i+1 < len(src) && src[i+1] == c {
					text = src[i : i+2]
				}
			}
			msg := fmt.Sprintf("unexpected character %q", r)
			switch c {
			case '[', ']':
				msg = "indexing and lists are not supported"
			case '+', '-', '*', '/', '%':
				msg = "arithmetic is not supported"
			case ',':
				msg = "unexpected ','; function calls are not supported"
			}
			return nil, syntaxError(i, msg, rxErrors.SuggestToken(text))
		}
	}

	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func lexNumber(src string, start int) (token, *rxErrors.Error) {
	i := start
	if src[i] == '-' {
		i++
	}
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		i++
		if i < len(src) && (src[i] == '+' || src[i] == '-') {
			i++
		}
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (isIdentPart(src[i]) || src[i] == '.') {
		for i < len(src) && (isIdentPart(src[i]) || src[i] == '.') {
			i++
		}
		return token{}, syntaxError(start, fmt.Sprintf("invalid number '%s'", src[start:i]), "")
	}

	text := src[start:i]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) {
		return token{}, syntaxError(start, fmt.Sprintf("invalid number '%s'", text), "")
	}
	return token{kind: tokNumber, text: text, pos: start, num: f}, nil
}

func lexString(src string, start int) (token, *rxErrors.Error) {
	quoteChar := src[start]
	var sb strings.Builder

	for i := start + 1; i < len(src); i++ {
		c := src[i]
		switch c {
		case quoteChar:
			return token{kind: tokString, text: src[start : i+1], pos: start, str: sb.String()}, nil
		case '\\':
			if i+1 >= len(src) {
				return token{}, syntaxError(start, "unterminated string literal", "")
			}
			i++
			switch src[i] {
			case '\\', '\'', '"':
				sb.WriteByte(src[i])
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				return token{}, syntaxError(i-1, fmt.Sprintf("invalid escape sequence '\\%c'", src[i]), "")
			}
		default:
			sb.WriteByte(c)
		}
	}

	return token{}, syntaxError(start, "unterminated string literal", "")
}

func lexOperator(src string, start int) (token, *rxErrors.Error) {
	c := src[start]
	var next byte
	if start+1 < len(src) {
		next = src[start+1]
	}

	switch {
	case next == '=':
		return token{kind: tokCompare, text: src[start : start+2], pos: start}, nil
	case c == '<' && next == '>':
		return token{}, syntaxError(start, "unexpected operator '<>'", rxErrors.SuggestToken("<>"))
	case c == '<' || c == '>':
		return token{kind: tokCompare, text: src[start : start+1], pos: start}, nil
	default:
		return token{}, syntaxError(start, fmt.Sprintf("unexpected operator '%c'", c), rxErrors.SuggestToken(string(c)))
	}
}

func syntaxError(offset int, msg, suggestion string) *rxErrors.Error {
	return &rxErrors.Error{
		Type:       rxErrors.ErrorTypeSyntax,
		Message:    msg,
		Position:   ast.Position{Offset: offset},
		Suggestion: suggestion,
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
