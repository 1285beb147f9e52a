package formcalc

// Assoc is the associativity of an operator
type Assoc int

const (
	AssocLeft Assoc = iota
	AssocRight
)

// OpID identifies an operator
type OpID int

const (
	OpDot OpID = iota
	OpDotDot
	OpDotHash
	OpCall
	OpNeg
	OpPos
	OpNot
	OpMul
	OpDiv
	OpAdd
	OpSub
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd
	OpOr
	OpParen
)

// Operator describes one entry of the precedence table. A lower Rank binds
// tighter.
type Operator struct {
	ID    OpID
	Rank  int
	Assoc Assoc
	Arity int // 0 for pseudo operators that never reduce on their own
	Repr  string
}

var (
	opDot     = &Operator{ID: OpDot, Rank: 1, Assoc: AssocRight, Arity: 2, Repr: "."}
	opDotDot  = &Operator{ID: OpDotDot, Rank: 1, Assoc: AssocRight, Arity: 2, Repr: ".."}
	opDotHash = &Operator{ID: OpDotHash, Rank: 1, Assoc: AssocRight, Arity: 2, Repr: ".#"}
	opCall    = &Operator{ID: OpCall, Rank: 2, Assoc: AssocLeft}
	opNeg     = &Operator{ID: OpNeg, Rank: 3, Assoc: AssocRight, Arity: 1, Repr: "-"}
	opPos     = &Operator{ID: OpPos, Rank: 3, Assoc: AssocRight, Arity: 1, Repr: "+"}
	opNot     = &Operator{ID: OpNot, Rank: 3, Assoc: AssocRight, Arity: 1, Repr: "!"}
	opMul     = &Operator{ID: OpMul, Rank: 4, Assoc: AssocLeft, Arity: 2, Repr: "*"}
	opDiv     = &Operator{ID: OpDiv, Rank: 4, Assoc: AssocLeft, Arity: 2, Repr: "/"}
	opAdd     = &Operator{ID: OpAdd, Rank: 5, Assoc: AssocLeft, Arity: 2, Repr: "+"}
	opSub     = &Operator{ID: OpSub, Rank: 5, Assoc: AssocLeft, Arity: 2, Repr: "-"}
	opLt      = &Operator{ID: OpLt, Rank: 6, Assoc: AssocLeft, Arity: 2, Repr: "<"}
	opLe      = &Operator{ID: OpLe, Rank: 6, Assoc: AssocLeft, Arity: 2, Repr: "<="}
	opGt      = &Operator{ID: OpGt, Rank: 6, Assoc: AssocLeft, Arity: 2, Repr: ">"}
	opGe      = &Operator{ID: OpGe, Rank: 6, Assoc: AssocLeft, Arity: 2, Repr: ">="}
	opEq      = &Operator{ID: OpEq, Rank: 7, Assoc: AssocLeft, Arity: 2, Repr: "=="}
	opNe      = &Operator{ID: OpNe, Rank: 7, Assoc: AssocLeft, Arity: 2, Repr: "!="}
	opAnd     = &Operator{ID: OpAnd, Rank: 8, Assoc: AssocLeft, Arity: 2, Repr: "&&"}
	opOr      = &Operator{ID: OpOr, Rank: 9, Assoc: AssocLeft, Arity: 2, Repr: "||"}
	opParen   = &Operator{ID: OpParen, Rank: 10, Assoc: AssocRight}
)

// binaryOperators maps tokens that are binary operators in operator position
var binaryOperators = map[TokenType]*Operator{
	TokenStar:  opMul,
	TokenSlash: opDiv,
	TokenPlus:  opAdd,
	TokenMinus: opSub,
	TokenLt:    opLt,
	TokenLe:    opLe,
	TokenGt:    opGt,
	TokenGe:    opGe,
	TokenEq:    opEq,
	TokenNe:    opNe,
	TokenAnd:   opAnd,
	TokenOr:    opOr,
}

// somOperators maps path tokens in operator position
var somOperators = map[TokenType]*Operator{
	TokenDot:     opDot,
	TokenDotDot:  opDotDot,
	TokenDotHash: opDotHash,
}

// unaryOperators maps tokens that are prefix operators in operand position
var unaryOperators = map[TokenType]*Operator{
	TokenMinus: opNeg,
	TokenPlus:  opPos,
	TokenNot:   opNot,
}

// IsSom reports whether the operator is a SOM path separator
func (o *Operator) IsSom() bool {
	return o.ID == OpDot || o.ID == OpDotDot || o.ID == OpDotHash
}

// IsComparison reports whether the operator is relational or equality
func (o *Operator) IsComparison() bool {
	return o.ID >= OpLt && o.ID <= OpNe
}

// IsLogical reports whether the operator is and, or or not
func (o *Operator) IsLogical() bool {
	return o.ID == OpAnd || o.ID == OpOr || o.ID == OpNot
}

// bindsBefore reports whether o, already on the stack, must be reduced
// before pushing incoming
func (o *Operator) bindsBefore(incoming *Operator) bool {
	if o.Rank != incoming.Rank {
		return o.Rank < incoming.Rank
	}
	return incoming.Assoc == AssocLeft
}

func truth(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// foldUnary evaluates a prefix operator over a constant
func foldUnary(op *Operator, arg Leaf) (Leaf, bool) {
	if !IsConstant(arg) {
		return nil, false
	}
	x := ToNumber(arg)
	switch op.ID {
	case OpNeg:
		return &Number{Value: -x}, true
	case OpPos:
		return &Number{Value: x}, true
	case OpNot:
		return &Number{Value: truth(x == 0)}, true
	}
	return nil, false
}

// foldBinary evaluates an operator over two constants
func foldBinary(op *Operator, left, right Leaf) (Leaf, bool) {
	if op.IsSom() || !IsConstant(left) || !IsConstant(right) {
		return nil, false
	}

	if op.IsComparison() {
		return &Number{Value: truth(compareConstants(op, left, right))}, true
	}

	x, y := ToNumber(left), ToNumber(right)
	var v float64
	switch op.ID {
	case OpMul:
		v = x * y
	case OpDiv:
		v = x / y
	case OpAdd:
		v = x + y
	case OpSub:
		v = x - y
	case OpAnd:
		v = truth(x != 0 && y != 0)
	case OpOr:
		v = truth(x != 0 || y != 0)
	default:
		return nil, false
	}
	return &Number{Value: v}, true
}

func compareConstants(op *Operator, left, right Leaf) bool {
	var a, b Comparable
	_, leftNum := left.(*Number)
	_, rightNum := right.(*Number)
	if leftNum && rightNum {
		a = Comparable{Num: ToNumber(left)}
		b = Comparable{Num: ToNumber(right)}
	} else {
		a, b = ToComparable(left), ToComparable(right)
	}

	switch op.ID {
	case OpEq:
		return a.Equal(b)
	case OpNe:
		return !a.Equal(b)
	case OpLt:
		return a.Num < b.Num
	case OpLe:
		return a.Num <= b.Num
	case OpGt:
		return a.Num > b.Num
	case OpGe:
		return a.Num >= b.Num
	}
	return false
}
