package formcalc

import "fmt"

// Option configures a parse
type Option func(*options)

type options struct {
	maxSourceSize int
}

// WithMaxSourceSize rejects sources longer than n bytes before lexing.
// Zero or a negative n disables the limit.
func WithMaxSourceSize(n int) Option {
	return func(o *options) {
		o.maxSourceSize = n
	}
}

// Parser is a recursive-descent parser for FormCalc scripts. Every
// production takes the current token and returns the node it built
// together with the first token it did not consume.
type Parser struct {
	lexer *Lexer
}

// NewParser creates a parser over src. A parser is used for one Parse call.
func NewParser(src string) *Parser {
	return &Parser{lexer: NewLexer(src)}
}

// Parse parses a complete FormCalc script
func Parse(src string) (*ExprList, error) {
	return NewParser(src).Parse()
}

// ParseWithOptions parses a complete FormCalc script with options applied
func ParseWithOptions(src string, opts ...Option) (*ExprList, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxSourceSize > 0 && len(src) > o.maxSourceSize {
		return nil, &ParseError{
			Kind:   ErrorKindLexical,
			Pos:    o.maxSourceSize,
			Detail: fmt.Sprintf("source is %d bytes, limit is %d", len(src), o.maxSourceSize),
		}
	}
	return Parse(src)
}

// Parse parses statements until the end of input. Any token left over after
// the statement list is an error.
func (p *Parser) Parse() (*ExprList, error) {
	tok, err := p.lexer.Next()
	if err != nil {
		return nil, err
	}

	tok, list, err := p.parseExprList(tok)
	if err != nil {
		return nil, err
	}
	if tok.Type != TokenEOF {
		return nil, newParseError(ErrorKindUnexpected, tok)
	}
	return list, nil
}

// expect reads the next token and fails with kind unless it has type typ
func (p *Parser) expect(typ TokenType, kind ErrorKind) (Token, error) {
	tok, err := p.lexer.Next()
	if err != nil {
		return tok, err
	}
	if tok.Type != typ {
		return tok, newParseError(kind, tok)
	}
	return tok, nil
}

// parseExpr parses an expression starting after the current token
func (p *Parser) parseExpr() (Token, Leaf, error) {
	return newExprParser(p.lexer).parse(nil)
}

// parseExprList parses statements until a token that cannot start one
func (p *Parser) parseExprList(tok Token) (Token, *ExprList, error) {
	list := &ExprList{Exprs: []Leaf{}}
	for {
		next, stmt, err := p.parseStatement(tok)
		if err != nil {
			return next, nil, err
		}
		if stmt == nil {
			return next, list, nil
		}
		list.Exprs = append(list.Exprs, stmt)
		tok = next
	}
}

// parseStatement dispatches on the leading token. A nil node means tok does
// not start a statement.
func (p *Parser) parseStatement(tok Token) (Token, Leaf, error) {
	switch tok.Type {
	case TokenIdentifier:
		return p.parseAssignmentOrExpression(tok)
	case TokenBreak:
		next, err := p.lexer.Next()
		return next, &Break{}, err
	case TokenContinue:
		next, err := p.lexer.Next()
		return next, &Continue{}, err
	case TokenDo:
		return p.parseBlock()
	case TokenFor:
		return p.parseFor()
	case TokenForeach:
		return p.parseForeach()
	case TokenFunc:
		return p.parseFunc()
	case TokenIf:
		return p.parseIf()
	case TokenVar:
		return p.parseVarDecl()
	case TokenWhile:
		return p.parseWhile()
	}

	next, expr, err := newExprParser(p.lexer).parse(&tok)
	if err != nil || expr == nil {
		return next, nil, err
	}
	return p.parsePathAssignment(next, expr)
}

// parseAssignmentOrExpression handles a statement starting with an
// identifier: either "id = expr" or an expression the identifier begins.
func (p *Parser) parseAssignmentOrExpression(ident Token) (Token, Leaf, error) {
	tok, err := p.lexer.Next()
	if err != nil {
		return tok, nil, err
	}

	if tok.Type == TokenAssign {
		next, expr, err := p.parseExpr()
		if err != nil {
			return next, nil, err
		}
		if expr == nil {
			return next, nil, newParseError(ErrorKindAssignment, next)
		}
		return next, &Assignment{Target: &Identifier{Name: ident.Str}, Expr: expr}, nil
	}

	next, expr, err := newExprParserWith(p.lexer, &Identifier{Name: ident.Str}).parse(&tok)
	if err != nil {
		return next, nil, err
	}
	return p.parsePathAssignment(next, expr)
}

// parsePathAssignment turns "path = expr" into an assignment to a SOM path;
// otherwise expr stands as an expression statement.
func (p *Parser) parsePathAssignment(tok Token, expr Leaf) (Token, Leaf, error) {
	if tok.Type != TokenAssign {
		return tok, expr, nil
	}
	if !IsDotExpression(expr) {
		return tok, nil, newParseError(ErrorKindAssignment, tok)
	}

	next, value, err := p.parseExpr()
	if err != nil {
		return next, nil, err
	}
	if value == nil {
		return next, nil, newParseError(ErrorKindAssignment, next)
	}
	return next, &Assignment{Target: expr, Expr: value}, nil
}

// parseBlock parses do ... end
func (p *Parser) parseBlock() (Token, Leaf, error) {
	tok, err := p.lexer.Next()
	if err != nil {
		return tok, nil, err
	}
	tok, body, err := p.parseExprList(tok)
	if err != nil {
		return tok, nil, err
	}
	if tok.Type != TokenEnd {
		return tok, nil, newParseError(ErrorKindBlock, tok)
	}

	next, err := p.lexer.Next()
	return next, &BlockDecl{Body: body}, err
}

// parseVarDecl parses var id [= expr]
func (p *Parser) parseVarDecl() (Token, Leaf, error) {
	ident, err := p.expect(TokenIdentifier, ErrorKindVar)
	if err != nil {
		return ident, nil, err
	}

	tok, err := p.lexer.Next()
	if err != nil {
		return tok, nil, err
	}
	if tok.Type != TokenAssign {
		return tok, &VarDecl{Name: ident.Str}, nil
	}

	next, expr, err := p.parseExpr()
	if err != nil {
		return next, nil, err
	}
	if expr == nil {
		return next, nil, newParseError(ErrorKindVar, next)
	}
	return next, &VarDecl{Name: ident.Str, Expr: expr}, nil
}

// parseFunc parses func id(a, b, ...) do ... endfunc
func (p *Parser) parseFunc() (Token, Leaf, error) {
	ident, err := p.expect(TokenIdentifier, ErrorKindFunc)
	if err != nil {
		return ident, nil, err
	}
	if tok, err := p.expect(TokenLeftParen, ErrorKindFunc); err != nil {
		return tok, nil, err
	}

	params := []string{}
	tok, err := p.lexer.Next()
	if err != nil {
		return tok, nil, err
	}
	if tok.Type != TokenRightParen {
		for {
			if tok.Type != TokenIdentifier {
				return tok, nil, newParseError(ErrorKindFunc, tok)
			}
			params = append(params, tok.Str)

			if tok, err = p.lexer.Next(); err != nil {
				return tok, nil, err
			}
			if tok.Type == TokenRightParen {
				break
			}
			if tok.Type != TokenComma {
				return tok, nil, newParseError(ErrorKindFunc, tok)
			}
			if tok, err = p.lexer.Next(); err != nil {
				return tok, nil, err
			}
		}
	}

	if tok, err := p.expect(TokenDo, ErrorKindFunc); err != nil {
		return tok, nil, err
	}
	if tok, err = p.lexer.Next(); err != nil {
		return tok, nil, err
	}
	tok, body, err := p.parseExprList(tok)
	if err != nil {
		return tok, nil, err
	}
	if tok.Type != TokenEndFunc {
		return tok, nil, newParseError(ErrorKindFunc, tok)
	}

	next, err := p.lexer.Next()
	return next, &FuncDecl{Name: ident.Str, Params: params, Body: body}, err
}

// parseCondition parses a parenthesized condition
func (p *Parser) parseCondition(kind ErrorKind) (Leaf, error) {
	if _, err := p.expect(TokenLeftParen, kind); err != nil {
		return nil, err
	}
	tok, cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok.Type != TokenRightParen || cond == nil {
		return nil, newParseError(kind, tok)
	}
	return cond, nil
}

// parseBody reads the token after a header keyword and the statement list
// that follows it
func (p *Parser) parseBody() (Token, *ExprList, error) {
	tok, err := p.lexer.Next()
	if err != nil {
		return tok, nil, err
	}
	return p.parseExprList(tok)
}

// parseIf parses if (c) then ... [elseif (c) then ...]* [else ...] endif
func (p *Parser) parseIf() (Token, Leaf, error) {
	cond, err := p.parseCondition(ErrorKindIf)
	if err != nil {
		return Token{}, nil, err
	}
	if tok, err := p.expect(TokenThen, ErrorKindIf); err != nil {
		return tok, nil, err
	}
	tok, then, err := p.parseBody()
	if err != nil {
		return tok, nil, err
	}

	decl := &IfDecl{Condition: cond, Then: then}
	for tok.Type == TokenElseIf {
		cond, err := p.parseCondition(ErrorKindElseIf)
		if err != nil {
			return tok, nil, err
		}
		if tok, err = p.expect(TokenThen, ErrorKindElseIf); err != nil {
			return tok, nil, err
		}
		var body *ExprList
		if tok, body, err = p.parseBody(); err != nil {
			return tok, nil, err
		}
		decl.ElseIfs = append(decl.ElseIfs, &ElseIfDecl{Condition: cond, Then: body})
	}

	if tok.Type == TokenElse {
		if tok, decl.Else, err = p.parseBody(); err != nil {
			return tok, nil, err
		}
	}

	if tok.Type != TokenEndIf {
		return tok, nil, newParseError(ErrorKindIf, tok)
	}
	next, err := p.lexer.Next()
	return next, decl, err
}

// parseWhile parses while (c) do ... endwhile
func (p *Parser) parseWhile() (Token, Leaf, error) {
	cond, err := p.parseCondition(ErrorKindWhile)
	if err != nil {
		return Token{}, nil, err
	}
	if tok, err := p.expect(TokenDo, ErrorKindWhile); err != nil {
		return tok, nil, err
	}
	tok, body, err := p.parseBody()
	if err != nil {
		return tok, nil, err
	}
	if tok.Type != TokenEndWhile {
		return tok, nil, newParseError(ErrorKindWhile, tok)
	}

	next, err := p.lexer.Next()
	return next, &WhileDecl{Condition: cond, Body: body}, err
}

// parseFor parses for [var] i = a upto|downto b [step c] do ... endfor
func (p *Parser) parseFor() (Token, Leaf, error) {
	tok, err := p.lexer.Next()
	if err != nil {
		return tok, nil, err
	}

	var header Leaf
	switch tok.Type {
	case TokenVar:
		var decl Leaf
		if tok, decl, err = p.parseVarDecl(); err != nil {
			return tok, nil, err
		}
		if decl.(*VarDecl).Expr == nil {
			return tok, nil, newParseError(ErrorKindVar, tok)
		}
		header = decl
	case TokenIdentifier:
		var stmt Leaf
		if tok, stmt, err = p.parseAssignmentOrExpression(tok); err != nil {
			return tok, nil, err
		}
		assignment, ok := stmt.(*Assignment)
		if !ok || assignment.TargetName() == "" {
			return tok, nil, newParseError(ErrorKindAssignment, tok)
		}
		header = assignment
	default:
		return tok, nil, newParseError(ErrorKindAssignment, tok)
	}

	if tok.Type != TokenUpto && tok.Type != TokenDownto {
		return tok, nil, newParseError(ErrorKindFor, tok)
	}
	decl := &ForDecl{Assignment: header, Upto: tok.Type == TokenUpto}

	if tok, decl.End, err = p.parseExpr(); err != nil {
		return tok, nil, err
	}
	if decl.End == nil {
		return tok, nil, newParseError(ErrorKindFor, tok)
	}

	if tok.Type == TokenStep {
		if tok, decl.Step, err = p.parseExpr(); err != nil {
			return tok, nil, err
		}
		if decl.Step == nil {
			return tok, nil, newParseError(ErrorKindFor, tok)
		}
	}

	if tok.Type != TokenDo {
		return tok, nil, newParseError(ErrorKindFor, tok)
	}
	if tok, decl.Body, err = p.parseBody(); err != nil {
		return tok, nil, err
	}
	if tok.Type != TokenEndFor {
		return tok, nil, newParseError(ErrorKindFor, tok)
	}

	next, err := p.lexer.Next()
	return next, decl, err
}

// parseForeach parses foreach id in (a, b, ...) do ... endfor
func (p *Parser) parseForeach() (Token, Leaf, error) {
	ident, err := p.expect(TokenIdentifier, ErrorKindForeach)
	if err != nil {
		return ident, nil, err
	}
	if tok, err := p.expect(TokenIn, ErrorKindForeach); err != nil {
		return tok, nil, err
	}
	if tok, err := p.expect(TokenLeftParen, ErrorKindForeach); err != nil {
		return tok, nil, err
	}
	params, err := parseParams(p.lexer)
	if err != nil {
		return Token{}, nil, err
	}
	if tok, err := p.expect(TokenDo, ErrorKindForeach); err != nil {
		return tok, nil, err
	}

	tok, body, err := p.parseBody()
	if err != nil {
		return tok, nil, err
	}
	if tok.Type != TokenEndFor {
		return tok, nil, newParseError(ErrorKindForeach, tok)
	}

	next, err := p.lexer.Next()
	return next, &ForeachDecl{Name: ident.Str, Params: params, Body: body}, err
}
