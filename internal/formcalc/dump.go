package formcalc

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Dump converts a tree into plain data: float64, string and nil for
// literals, map[string]any for records and []any for lists. The shape is
// stable and used for interchange and tests.
func Dump(l Leaf) any {
	switch n := l.(type) {
	case nil:
		return nil
	case *Number:
		return n.Value
	case *String:
		return n.Value
	case *Null:
		return map[string]any{"special": nil}
	case *This:
		return map[string]any{"special": "this"}
	case *EveryOccurrence:
		return map[string]any{"special": "*"}
	case *Break:
		return map[string]any{"special": "break"}
	case *Continue:
		return map[string]any{"special": "continue"}
	case *Identifier:
		return map[string]any{"id": n.Name}
	case *Call:
		return map[string]any{"callee": Dump(n.Callee), "params": dumpList(n.Params)}
	case *BuiltinCall:
		return map[string]any{"builtin": n.Name, "params": dumpList(n.Params)}
	case *Subscript:
		return map[string]any{"operand": Dump(n.Operand), "index": Dump(n.Index)}
	case *BinaryOperator:
		return map[string]any{"operator": n.Op.Repr, "left": Dump(n.Left), "right": Dump(n.Right)}
	case *UnaryOperator:
		return map[string]any{"operator": n.Op.Repr, "arg": Dump(n.Arg)}
	case *VarDecl:
		out := map[string]any{"var": n.Name}
		if n.Expr != nil {
			out["expr"] = Dump(n.Expr)
		}
		return out
	case *Assignment:
		var target any = n.TargetName()
		if _, ok := n.Target.(*Identifier); !ok {
			target = Dump(n.Target)
		}
		return map[string]any{"assignment": target, "expr": Dump(n.Expr)}
	case *FuncDecl:
		params := make([]any, len(n.Params))
		for i, p := range n.Params {
			params[i] = p
		}
		return map[string]any{"func": n.Name, "params": params, "body": Dump(n.Body)}
	case *IfDecl:
		out := map[string]any{"decl": "if", "condition": Dump(n.Condition), "then": Dump(n.Then)}
		if len(n.ElseIfs) > 0 {
			elseIfs := make([]any, len(n.ElseIfs))
			for i, e := range n.ElseIfs {
				elseIfs[i] = Dump(e)
			}
			out["elseif"] = elseIfs
		}
		if n.Else != nil {
			out["else"] = Dump(n.Else)
		}
		return out
	case *ElseIfDecl:
		return map[string]any{"decl": "elseif", "condition": Dump(n.Condition), "then": Dump(n.Then)}
	case *WhileDecl:
		return map[string]any{"decl": "while", "condition": Dump(n.Condition), "body": Dump(n.Body)}
	case *ForDecl:
		out := map[string]any{
			"decl":       "for",
			"assignment": Dump(n.Assignment),
			"type":       "downto",
			"end":        Dump(n.End),
			"body":       Dump(n.Body),
		}
		if n.Upto {
			out["type"] = "upto"
		}
		if n.Step != nil {
			out["step"] = Dump(n.Step)
		}
		return out
	case *ForeachDecl:
		return map[string]any{"decl": "foreach", "id": n.Name, "params": dumpList(n.Params), "body": Dump(n.Body)}
	case *BlockDecl:
		return map[string]any{"decl": "block", "body": Dump(n.Body)}
	case *ExprList:
		if n == nil {
			return []any{}
		}
		return dumpList(n.Exprs)
	}
	return nil
}

func dumpList(leaves []Leaf) []any {
	out := make([]any, len(leaves))
	for i, l := range leaves {
		out[i] = Dump(l)
	}
	return out
}

// IsConstant reports whether l is a number, string or null literal
func IsConstant(l Leaf) bool {
	switch l.(type) {
	case *Number, *String, *Null:
		return true
	}
	return false
}

// ToNumber coerces a leaf for constant folding. Strings that do not parse
// as a number and all non-literal leaves give 0.
func ToNumber(l Leaf) float64 {
	switch n := l.(type) {
	case *Number:
		return n.Value
	case *String:
		return parseNumber(n.Value)
	}
	return 0
}

// decimalPattern is the only number spelling strings convert from. Hex,
// underscores and inf/nan words read as 0.
var decimalPattern = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// parseNumber converts the whole trimmed text or returns 0. A numeric prefix
// such as "12abc" does not count.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return v
}

// Comparable is the value two constants are compared by
type Comparable struct {
	Null bool
	Num  float64
}

// Equal compares two comparables. Null only equals null.
func (c Comparable) Equal(other Comparable) bool {
	if c.Null || other.Null {
		return c.Null == other.Null
	}
	return c.Num == other.Num
}

// ToComparable returns the value a constant compares by: numbers as they
// are, strings coerced to numbers, null as itself. For ordering null counts
// as 0.
func ToComparable(l Leaf) Comparable {
	if _, ok := l.(*Null); ok {
		return Comparable{Null: true}
	}
	return Comparable{Num: ToNumber(l)}
}

// IsDotExpression reports whether l is a SOM path or path segment
func IsDotExpression(l Leaf) bool {
	switch n := l.(type) {
	case *Identifier, *This, *EveryOccurrence, *Subscript:
		return true
	case *BinaryOperator:
		return n.Op.IsSom()
	}
	return false
}

// IsSomPredicate reports whether l is a boolean filter built from SOM paths
// compared against constants, such as a.b <= 3
func IsSomPredicate(l Leaf) bool {
	switch n := l.(type) {
	case *BinaryOperator:
		switch {
		case n.Op.IsComparison():
			left, right := IsDotExpression(n.Left), IsDotExpression(n.Right)
			return (left && (right || IsConstant(n.Right))) || (right && IsConstant(n.Left))
		case n.Op.ID == OpAnd || n.Op.ID == OpOr:
			return IsSomPredicate(n.Left) && IsSomPredicate(n.Right)
		}
	case *UnaryOperator:
		return n.Op.ID == OpNot && IsSomPredicate(n.Arg)
	}
	return false
}
