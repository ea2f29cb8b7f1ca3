package ast

import (
	"strings"

	"mercator-hq/underwriter/pkg/credit"
)

// Expr is a node of a parsed condition. Nodes are immutable once built.
type Expr interface {
	// Pos returns the position of the node's first token.
	Pos() Position

	// String renders the node back into canonical expression syntax.
	String() string

	exprNode()
}

// Operator is a comparison operator.
type Operator string

const (
	OperatorEqual        Operator = "=="
	OperatorNotEqual     Operator = "!="
	OperatorLessThan     Operator = "<"
	OperatorGreaterThan  Operator = ">"
	OperatorLessEqual    Operator = "<="
	OperatorGreaterEqual Operator = ">="
)

// IsOrdering returns true for <, <=, > and >=.
func (o Operator) IsOrdering() bool {
	switch o {
	case OperatorLessThan, OperatorGreaterThan, OperatorLessEqual, OperatorGreaterEqual:
		return true
	default:
		return false
	}
}

// IsValid returns true if o is one of the six comparison operators.
func (o Operator) IsValid() bool {
	return o.IsOrdering() || o == OperatorEqual || o == OperatorNotEqual
}

// LogicalOp joins the terms of a Logical node.
type LogicalOp string

const (
	LogicalAnd LogicalOp = "and"
	LogicalOr  LogicalOp = "or"
)

// Ident references an application attribute by name.
type Ident struct {
	Name string
	At   Position
}

// Literal is a constant operand. Value is never malformed.
type Literal struct {
	Value credit.Value
	At    Position
}

// Compare is a single binary comparison between two operands.
type Compare struct {
	Op    Operator
	Left  Expr // *Ident or *Literal
	Right Expr // *Ident or *Literal
	At    Position
}

// Logical is an n-ary and/or. Terms are evaluated left to right.
type Logical struct {
	Op    LogicalOp
	Terms []Expr
	At    Position
}

// Not negates its operand.
type Not struct {
	X  Expr
	At Position
}

func (e *Ident) Pos() Position   { return e.At }
func (e *Literal) Pos() Position { return e.At }
func (e *Compare) Pos() Position { return e.At }
func (e *Logical) Pos() Position { return e.At }
func (e *Not) Pos() Position     { return e.At }

func (*Ident) exprNode()   {}
func (*Literal) exprNode() {}
func (*Compare) exprNode() {}
func (*Logical) exprNode() {}
func (*Not) exprNode()     {}

func (e *Ident) String() string { return e.Name }

func (e *Literal) String() string {
	if s, ok := e.Value.Str(); ok {
		return quote(s)
	}
	return e.Value.String()
}

func (e *Compare) String() string {
	return e.Left.String() + " " + string(e.Op) + " " + e.Right.String()
}

func (e *Logical) String() string {
	parts := make([]string, len(e.Terms))
	for i, term := range e.Terms {
		parts[i] = group(term)
	}
	return strings.Join(parts, " "+string(e.Op)+" ")
}

func (e *Not) String() string {
	return "not " + group(e.X)
}

// quote renders s as a double-quoted string literal using only the escapes
// the lexer understands.
func quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// group parenthesizes logical sub-expressions so String round-trips.
func group(e Expr) string {
	if _, ok := e.(*Logical); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}
