package formcalc

// parseMode tells the expression parser what it expects next. It decides
// whether + and - are prefix or infix.
type parseMode int

const (
	expectOperand parseMode = iota
	expectOperator
)

// exprParser is an operator-precedence parser for a single expression. It
// keeps an operand stack and an operator stack and reduces on rank.
type exprParser struct {
	lexer     *Lexer
	operands  []Leaf
	operators []*Operator
	mode      parseMode
	last      Token     // Most recent token, for error positions
	prev      TokenType // Type of the token before last
}

func newExprParser(lexer *Lexer) *exprParser {
	return &exprParser{lexer: lexer, mode: expectOperand}
}

// newExprParserWith starts a parser with operand already consumed by the
// caller, e.g. the leading identifier of a statement
func newExprParserWith(lexer *Lexer, operand Leaf) *exprParser {
	p := newExprParser(lexer)
	p.pushOperand(operand)
	return p
}

func (p *exprParser) reset() {
	p.operands = p.operands[:0]
	p.operators = p.operators[:0]
	p.mode = expectOperand
}

// parse reads one expression starting at first, or at the next token when
// first is nil. It returns the first token that is not part of the
// expression, which the caller must handle, and the expression or nil when
// no expression starts at that token.
func (p *exprParser) parse(first *Token) (Token, Leaf, error) {
	var tok Token
	if first != nil {
		tok = *first
	} else {
		var err error
		if tok, err = p.lexer.Next(); err != nil {
			return tok, nil, err
		}
	}

	for {
		p.prev, p.last = p.last.Type, tok
		stop, err := p.step(tok)
		if err != nil {
			return tok, nil, err
		}
		if stop {
			node, err := p.finish()
			return tok, node, err
		}
		if tok, err = p.lexer.Next(); err != nil {
			return tok, nil, err
		}
	}
}

// step consumes tok and reports whether tok ends the expression instead
func (p *exprParser) step(tok Token) (bool, error) {
	switch tok.Type {
	case TokenNumber:
		return p.operand(&Number{Value: tok.Num})
	case TokenString:
		return p.operand(&String{Value: tok.Str})
	case TokenNull:
		return p.operand(&Null{})
	case TokenThis:
		return p.operand(&This{})
	case TokenIdentifier:
		return p.operand(&Identifier{Name: tok.Str})

	case TokenLeftParen:
		if p.mode == expectOperator {
			return p.call()
		}
		p.operators = append(p.operators, opParen)
		return false, nil

	case TokenRightParen:
		if !p.hasOpenParen() {
			return true, nil
		}
		return false, p.closeParen()

	case TokenLeftBracket:
		if p.mode != expectOperator {
			return true, nil
		}
		return false, p.subscript()

	case TokenDot, TokenDotDot, TokenDotHash:
		if p.mode != expectOperator {
			return true, nil
		}
		return false, p.pushOperator(somOperators[tok.Type])

	case TokenDotStar:
		if p.mode != expectOperator {
			return true, nil
		}
		if err := p.pushOperator(opDot); err != nil {
			return false, err
		}
		p.pushOperand(&EveryOccurrence{})
		return false, nil

	case TokenMinus, TokenPlus, TokenNot:
		if p.mode == expectOperand {
			p.operators = append(p.operators, unaryOperators[tok.Type])
			return false, nil
		}
	}

	if op, ok := binaryOperators[tok.Type]; ok && p.mode == expectOperator {
		return false, p.pushOperator(op)
	}
	return true, nil
}

// operand pushes a literal or name, or ends the expression when an operator
// was expected
func (p *exprParser) operand(l Leaf) (bool, error) {
	if p.mode != expectOperand {
		return true, nil
	}
	p.pushOperand(l)
	return false, nil
}

func (p *exprParser) pushOperand(l Leaf) {
	p.operands = append(p.operands, l)
	p.mode = expectOperator
}

func (p *exprParser) popOperand() Leaf {
	l := p.operands[len(p.operands)-1]
	p.operands = p.operands[:len(p.operands)-1]
	return l
}

// pushOperator reduces everything that binds at least as tightly as op and
// then stacks op
func (p *exprParser) pushOperator(op *Operator) error {
	if err := p.flush(op); err != nil {
		return err
	}
	p.operators = append(p.operators, op)
	p.mode = expectOperand
	return nil
}

// flush reduces stacked operators that must apply before op. Grouping
// parens are never crossed.
func (p *exprParser) flush(op *Operator) error {
	for len(p.operators) > 0 {
		top := p.operators[len(p.operators)-1]
		if top == opParen || !top.bindsBefore(op) {
			return nil
		}
		p.operators = p.operators[:len(p.operators)-1]
		if err := p.reduce(top); err != nil {
			return err
		}
	}
	return nil
}

// reduce applies op to its operands, folding constants
func (p *exprParser) reduce(op *Operator) error {
	if len(p.operands) < op.Arity || op.Arity == 0 {
		return newParseError(ErrorKindExpression, p.last)
	}

	if op.Arity == 1 {
		arg := p.popOperand()
		if folded, ok := foldUnary(op, arg); ok {
			p.operands = append(p.operands, folded)
		} else {
			p.operands = append(p.operands, &UnaryOperator{Op: op, Arg: arg})
		}
		return nil
	}

	right := p.popOperand()
	left := p.popOperand()
	if folded, ok := foldBinary(op, left, right); ok {
		p.operands = append(p.operands, folded)
	} else {
		p.operands = append(p.operands, &BinaryOperator{Op: op, Left: left, Right: right})
	}
	return nil
}

func (p *exprParser) hasOpenParen() bool {
	for _, op := range p.operators {
		if op == opParen {
			return true
		}
	}
	return false
}

// closeParen reduces the innermost group
func (p *exprParser) closeParen() error {
	if p.mode != expectOperator {
		return newParseError(ErrorKindExpression, p.last)
	}
	for {
		top := p.operators[len(p.operators)-1]
		p.operators = p.operators[:len(p.operators)-1]
		if top == opParen {
			return nil
		}
		if err := p.reduce(top); err != nil {
			return err
		}
	}
}

// call turns the pending identifier into a call. The null keyword directly
// before the paren calls the null builtin. Any other pending operand cannot
// be called, so the paren ends the expression.
func (p *exprParser) call() (bool, error) {
	switch top := p.operands[len(p.operands)-1].(type) {
	case *Identifier:
		top.lower()
	case *Null:
		if p.prev != TokenNull {
			return true, nil
		}
	default:
		return true, nil
	}

	if err := p.flush(opCall); err != nil {
		return false, err
	}
	callee := p.popOperand()

	params, err := parseParams(p.lexer)
	if err != nil {
		return false, err
	}

	switch name := callee.(type) {
	case *Null:
		p.pushOperand(&BuiltinCall{Name: "null", Params: params})
	case *Identifier:
		if IsBuiltin(name.Name) {
			p.pushOperand(&BuiltinCall{Name: name.Name, Params: params})
			break
		}
		p.pushOperand(&Call{Callee: callee, Params: params})
	default:
		p.pushOperand(&Call{Callee: callee, Params: params})
	}
	return false, nil
}

// subscript wraps the pending operand in an index
func (p *exprParser) subscript() error {
	index, err := parseIndex(p.lexer)
	if err != nil {
		return err
	}
	operand := p.popOperand()
	p.pushOperand(&Subscript{Operand: operand, Index: index})
	return nil
}

// finish reduces whatever is left on the stacks into a single node
func (p *exprParser) finish() (Leaf, error) {
	if p.mode == expectOperand && len(p.operators) > 0 {
		return nil, newParseError(ErrorKindExpression, p.last)
	}
	for len(p.operators) > 0 {
		top := p.operators[len(p.operators)-1]
		p.operators = p.operators[:len(p.operators)-1]
		if top == opParen {
			return nil, newParseError(ErrorKindExpression, p.last)
		}
		if err := p.reduce(top); err != nil {
			return nil, err
		}
	}

	switch len(p.operands) {
	case 0:
		return nil, nil
	case 1:
		return p.operands[0], nil
	default:
		return nil, newParseError(ErrorKindExpression, p.last)
	}
}

// parseParams parses a comma separated argument list up to the closing
// paren, which it consumes. An empty list is allowed, an empty argument is
// not.
func parseParams(lexer *Lexer) ([]Leaf, error) {
	p := newExprParser(lexer)
	params := []Leaf{}
	for {
		tok, param, err := p.parse(nil)
		if err != nil {
			return nil, err
		}
		if param == nil && (tok.Type == TokenComma || len(params) > 0) {
			return nil, newParseError(ErrorKindParams, tok)
		}
		if param != nil {
			params = append(params, param)
		}

		switch tok.Type {
		case TokenRightParen:
			return params, nil
		case TokenComma:
			p.reset()
		default:
			return nil, newParseError(ErrorKindParams, tok)
		}
	}
}

// parseIndex parses the inside of [...] including the closing bracket
func parseIndex(lexer *Lexer) (Leaf, error) {
	tok, err := lexer.Next()
	if err != nil {
		return nil, err
	}

	if tok.Type == TokenStar {
		if tok, err = lexer.Next(); err != nil {
			return nil, err
		}
		if tok.Type != TokenRightBracket {
			return nil, newParseError(ErrorKindIndex, tok)
		}
		return &EveryOccurrence{}, nil
	}

	tok, index, err := newExprParser(lexer).parse(&tok)
	if err != nil {
		return nil, err
	}
	if tok.Type != TokenRightBracket || index == nil {
		return nil, newParseError(ErrorKindIndex, tok)
	}
	return index, nil
}
