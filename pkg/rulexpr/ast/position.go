package ast

import "fmt"

// Position is a location inside a condition expression.
type Position struct {
	Offset int // Byte offset (0-based)
}

// Column returns the 1-based column of the position.
func (p Position) Column() int {
	return p.Offset + 1
}

// String returns a human-readable representation of the position.
// Format: "column N"
func (p Position) String() string {
	return fmt.Sprintf("column %d", p.Column())
}
