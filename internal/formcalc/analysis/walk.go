// Package analysis inspects parsed FormCalc trees: it walks them, collects
// the names a script declares and uses, and renders SOM paths as text.
package analysis

import (
	"strconv"
	"strings"

	"github.com/a3tai/mcp-formcalc/internal/formcalc"
)

// Children returns the direct sub-trees of l in source order
func Children(l formcalc.Leaf) []formcalc.Leaf {
	var out []formcalc.Leaf
	add := func(leaves ...formcalc.Leaf) {
		for _, c := range leaves {
			if c != nil {
				out = append(out, c)
			}
		}
	}

	switch n := l.(type) {
	case *formcalc.Call:
		add(n.Callee)
		add(n.Params...)
	case *formcalc.BuiltinCall:
		add(n.Params...)
	case *formcalc.Subscript:
		add(n.Operand, n.Index)
	case *formcalc.BinaryOperator:
		add(n.Left, n.Right)
	case *formcalc.UnaryOperator:
		add(n.Arg)
	case *formcalc.VarDecl:
		add(n.Expr)
	case *formcalc.Assignment:
		add(n.Target, n.Expr)
	case *formcalc.FuncDecl:
		add(exprList(n.Body))
	case *formcalc.IfDecl:
		add(n.Condition, exprList(n.Then))
		for _, e := range n.ElseIfs {
			add(e)
		}
		add(exprList(n.Else))
	case *formcalc.ElseIfDecl:
		add(n.Condition, exprList(n.Then))
	case *formcalc.WhileDecl:
		add(n.Condition, exprList(n.Body))
	case *formcalc.ForDecl:
		add(n.Assignment, n.End, n.Step, exprList(n.Body))
	case *formcalc.ForeachDecl:
		add(n.Params...)
		add(exprList(n.Body))
	case *formcalc.BlockDecl:
		add(exprList(n.Body))
	case *formcalc.ExprList:
		if n != nil {
			add(n.Exprs...)
		}
	}
	return out
}

// exprList keeps a nil *ExprList from becoming a non-nil Leaf
func exprList(l *formcalc.ExprList) formcalc.Leaf {
	if l == nil {
		return nil
	}
	return l
}

// Walk visits l and its descendants depth first. fn receives each node with
// its depth, the root being 0. Returning false skips the node's children.
func Walk(l formcalc.Leaf, fn func(node formcalc.Leaf, depth int) bool) {
	walk(l, 0, fn)
}

func walk(l formcalc.Leaf, depth int, fn func(formcalc.Leaf, int) bool) {
	if l == nil || !fn(l, depth) {
		return
	}
	for _, c := range Children(l) {
		walk(c, depth+1, fn)
	}
}

// FormatPath renders a SOM path back to FormCalc text, e.g.
// "$record.items[*].price". ok is false when l is not a dot expression.
func FormatPath(l formcalc.Leaf) (string, bool) {
	if !formcalc.IsDotExpression(l) {
		return "", false
	}
	var b strings.Builder
	writePath(&b, l)
	return b.String(), true
}

func writePath(b *strings.Builder, l formcalc.Leaf) {
	switch n := l.(type) {
	case *formcalc.Identifier:
		b.WriteString(n.Name)
	case *formcalc.This:
		b.WriteString("this")
	case *formcalc.EveryOccurrence:
		b.WriteString("*")
	case *formcalc.Subscript:
		writePath(b, n.Operand)
		b.WriteByte('[')
		b.WriteString(formatIndex(n.Index))
		b.WriteByte(']')
	case *formcalc.BinaryOperator:
		writePath(b, n.Left)
		b.WriteString(n.Op.Repr)
		writePath(b, n.Right)
	default:
		b.WriteString("?")
	}
}

func formatIndex(l formcalc.Leaf) string {
	switch n := l.(type) {
	case *formcalc.EveryOccurrence:
		return "*"
	case *formcalc.Number:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	case *formcalc.String:
		return strconv.Quote(n.Value)
	}
	if path, ok := FormatPath(l); ok {
		return path
	}
	return "..."
}
