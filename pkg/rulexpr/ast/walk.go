package ast

import "sort"

// Inspect traverses the expression depth-first in source order, calling fn
// for each node. If fn returns false the node's children are skipped.
func Inspect(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}

	switch n := e.(type) {
	case *Compare:
		Inspect(n.Left, fn)
		Inspect(n.Right, fn)
	case *Logical:
		for _, term := range n.Terms {
			Inspect(term, fn)
		}
	case *Not:
		Inspect(n.X, fn)
	}
}

// Fields returns the distinct attribute names referenced by e, sorted.
func Fields(e Expr) []string {
	seen := make(map[string]struct{})
	Inspect(e, func(n Expr) bool {
		if id, ok := n.(*Ident); ok {
			seen[id.Name] = struct{}{}
		}
		return true
	})

	fields := make([]string, 0, len(seen))
	for name := range seen {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}
