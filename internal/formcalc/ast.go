package formcalc

import "strings"

// NodeKind identifies the variant of a Leaf
type NodeKind int

const (
	KindNumber NodeKind = iota
	KindString
	KindNull
	KindThis
	KindIdentifier
	KindEveryOccurrence
	KindCall
	KindBuiltinCall
	KindSubscript
	KindBinaryOperator
	KindUnaryOperator
	KindVarDecl
	KindAssignment
	KindFuncDecl
	KindIfDecl
	KindElseIfDecl
	KindWhileDecl
	KindForDecl
	KindForeachDecl
	KindBlockDecl
	KindExprList
	KindBreak
	KindContinue
)

func (k NodeKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindNull:
		return "null"
	case KindThis:
		return "this"
	case KindIdentifier:
		return "identifier"
	case KindEveryOccurrence:
		return "every_occurrence"
	case KindCall:
		return "call"
	case KindBuiltinCall:
		return "builtin_call"
	case KindSubscript:
		return "subscript"
	case KindBinaryOperator:
		return "binary_operator"
	case KindUnaryOperator:
		return "unary_operator"
	case KindVarDecl:
		return "var_decl"
	case KindAssignment:
		return "assignment"
	case KindFuncDecl:
		return "func_decl"
	case KindIfDecl:
		return "if_decl"
	case KindElseIfDecl:
		return "elseif_decl"
	case KindWhileDecl:
		return "while_decl"
	case KindForDecl:
		return "for_decl"
	case KindForeachDecl:
		return "foreach_decl"
	case KindBlockDecl:
		return "block_decl"
	case KindExprList:
		return "expr_list"
	case KindBreak:
		return "break"
	case KindContinue:
		return "continue"
	default:
		return "unknown"
	}
}

// Leaf is a node of the FormCalc syntax tree. The set of implementations is
// closed; Dump and the predicates switch over them.
type Leaf interface {
	Kind() NodeKind
	leaf()
}

// Number is a numeric literal or a folded constant
type Number struct {
	Value float64
}

// String is a string literal
type String struct {
	Value string
}

// Null is the null literal
type Null struct{}

// This is the current-container reference
type This struct{}

// Identifier names a variable, function or SOM node
type Identifier struct {
	Name string
}

// EveryOccurrence is the * wildcard in a[*] and a.*
type EveryOccurrence struct{}

// Call applies an arbitrary callee to arguments
type Call struct {
	Callee Leaf
	Params []Leaf
}

// BuiltinCall calls one of the predefined functions by lowercase name
type BuiltinCall struct {
	Name   string
	Params []Leaf
}

// Subscript indexes an operand: a[0], a[*]
type Subscript struct {
	Operand Leaf
	Index   Leaf
}

// BinaryOperator is an operator application that could not be folded
type BinaryOperator struct {
	Op    *Operator
	Left  Leaf
	Right Leaf
}

// UnaryOperator is a prefix operator application that could not be folded
type UnaryOperator struct {
	Op  *Operator
	Arg Leaf
}

// VarDecl declares a variable with an optional initializer
type VarDecl struct {
	Name string
	Expr Leaf // nil without initializer
}

// Assignment stores Expr into Target, an Identifier or a SOM path
type Assignment struct {
	Target Leaf
	Expr   Leaf
}

// FuncDecl declares a user function
type FuncDecl struct {
	Name   string
	Params []string
	Body   *ExprList
}

// IfDecl is if ... [elseif ...] [else ...] endif
type IfDecl struct {
	Condition Leaf
	Then      *ExprList
	ElseIfs   []*ElseIfDecl
	Else      *ExprList // nil without else branch
}

// ElseIfDecl is one elseif branch of an IfDecl
type ElseIfDecl struct {
	Condition Leaf
	Then      *ExprList
}

// WhileDecl is while (...) do ... endwhile
type WhileDecl struct {
	Condition Leaf
	Body      *ExprList
}

// ForDecl is for i = a upto|downto b [step c] do ... endfor.
// Assignment is either a *VarDecl or an *Assignment.
type ForDecl struct {
	Assignment Leaf
	Upto       bool
	End        Leaf
	Step       Leaf // nil when absent
	Body       *ExprList
}

// ForeachDecl is foreach id in (...) do ... endfor
type ForeachDecl struct {
	Name   string
	Params []Leaf
	Body   *ExprList
}

// BlockDecl is do ... end
type BlockDecl struct {
	Body *ExprList
}

// ExprList is an ordered statement list and the root of every parse
type ExprList struct {
	Exprs []Leaf
}

// Break is the break statement
type Break struct{}

// Continue is the continue statement
type Continue struct{}

func (*Number) Kind() NodeKind          { return KindNumber }
func (*String) Kind() NodeKind          { return KindString }
func (*Null) Kind() NodeKind            { return KindNull }
func (*This) Kind() NodeKind            { return KindThis }
func (*Identifier) Kind() NodeKind      { return KindIdentifier }
func (*EveryOccurrence) Kind() NodeKind { return KindEveryOccurrence }
func (*Call) Kind() NodeKind            { return KindCall }
func (*BuiltinCall) Kind() NodeKind     { return KindBuiltinCall }
func (*Subscript) Kind() NodeKind       { return KindSubscript }
func (*BinaryOperator) Kind() NodeKind  { return KindBinaryOperator }
func (*UnaryOperator) Kind() NodeKind   { return KindUnaryOperator }
func (*VarDecl) Kind() NodeKind         { return KindVarDecl }
func (*Assignment) Kind() NodeKind      { return KindAssignment }
func (*FuncDecl) Kind() NodeKind        { return KindFuncDecl }
func (*IfDecl) Kind() NodeKind          { return KindIfDecl }
func (*ElseIfDecl) Kind() NodeKind      { return KindElseIfDecl }
func (*WhileDecl) Kind() NodeKind       { return KindWhileDecl }
func (*ForDecl) Kind() NodeKind         { return KindForDecl }
func (*ForeachDecl) Kind() NodeKind     { return KindForeachDecl }
func (*BlockDecl) Kind() NodeKind       { return KindBlockDecl }
func (*ExprList) Kind() NodeKind        { return KindExprList }
func (*Break) Kind() NodeKind           { return KindBreak }
func (*Continue) Kind() NodeKind        { return KindContinue }

func (*Number) leaf()          {}
func (*String) leaf()          {}
func (*Null) leaf()            {}
func (*This) leaf()            {}
func (*Identifier) leaf()      {}
func (*EveryOccurrence) leaf() {}
func (*Call) leaf()            {}
func (*BuiltinCall) leaf()     {}
func (*Subscript) leaf()       {}
func (*BinaryOperator) leaf()  {}
func (*UnaryOperator) leaf()   {}
func (*VarDecl) leaf()         {}
func (*Assignment) leaf()      {}
func (*FuncDecl) leaf()        {}
func (*IfDecl) leaf()          {}
func (*ElseIfDecl) leaf()      {}
func (*WhileDecl) leaf()       {}
func (*ForDecl) leaf()         {}
func (*ForeachDecl) leaf()     {}
func (*BlockDecl) leaf()       {}
func (*ExprList) leaf()        {}
func (*Break) leaf()           {}
func (*Continue) leaf()        {}

// lower lowercases the identifier once it is known to be a call target
func (id *Identifier) lower() {
	id.Name = strings.ToLower(id.Name)
}

// TargetName returns the variable name of a plain assignment, or "" when the
// target is a SOM path
func (a *Assignment) TargetName() string {
	if id, ok := a.Target.(*Identifier); ok {
		return id.Name
	}
	return ""
}
