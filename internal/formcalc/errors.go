package formcalc

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the grammar production that rejected a formula
type ErrorKind int

const (
	ErrorKindUnexpected ErrorKind = iota
	ErrorKindLexical
	ErrorKindExpression
	ErrorKindAssignment
	ErrorKindBlock
	ErrorKindElseIf
	ErrorKindFor
	ErrorKindForeach
	ErrorKindFunc
	ErrorKindIf
	ErrorKindIndex
	ErrorKindParams
	ErrorKindVar
	ErrorKindWhile
)

// String returns the short tag of the error kind
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindLexical:
		return "lexical"
	case ErrorKindExpression:
		return "expression"
	case ErrorKindAssignment:
		return "assignment"
	case ErrorKindBlock:
		return "block"
	case ErrorKindElseIf:
		return "elseif"
	case ErrorKindFor:
		return "for"
	case ErrorKindForeach:
		return "foreach"
	case ErrorKindFunc:
		return "func"
	case ErrorKindIf:
		return "if"
	case ErrorKindIndex:
		return "index"
	case ErrorKindParams:
		return "params"
	case ErrorKindVar:
		return "var"
	case ErrorKindWhile:
		return "while"
	default:
		return "unexpected"
	}
}

// Message returns the static message for the error kind
func (k ErrorKind) Message() string {
	switch k {
	case ErrorKindLexical:
		return "invalid character sequence"
	case ErrorKindExpression:
		return "malformed expression"
	case ErrorKindAssignment:
		return "invalid token in assignment"
	case ErrorKindBlock:
		return "invalid token in do ... end declaration"
	case ErrorKindElseIf:
		return "invalid elseif declaration"
	case ErrorKindFor:
		return "invalid token in for ... endfor declaration"
	case ErrorKindForeach:
		return "invalid token in foreach ... endfor declaration"
	case ErrorKindFunc:
		return "invalid token in func declaration"
	case ErrorKindIf:
		return "invalid token in if ... endif declaration"
	case ErrorKindIndex:
		return "invalid token in index"
	case ErrorKindParams:
		return "invalid token in parameter list"
	case ErrorKindVar:
		return "invalid token in var declaration"
	case ErrorKindWhile:
		return "invalid token in while ... endwhile declaration"
	default:
		return "unexpected token"
	}
}

// ParseError reports why a formula was rejected. Parsing stops at the first
// error and no partial tree is returned.
type ParseError struct {
	Kind   ErrorKind
	Pos    int    // Byte offset of the offending token, -1 when unknown
	Token  string // Printable offending token
	Detail string // Optional extra context
}

func (e *ParseError) Error() string {
	msg := e.Kind.Message()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Pos >= 0 {
		if e.Token != "" {
			return fmt.Sprintf("FormCalc parse error at offset %d near %s: %s", e.Pos, e.Token, msg)
		}
		return fmt.Sprintf("FormCalc parse error at offset %d: %s", e.Pos, msg)
	}
	return fmt.Sprintf("FormCalc parse error: %s", msg)
}

// Is matches another *ParseError of the same kind, so callers can test with
// errors.Is(err, &ParseError{Kind: ErrorKindVar}).
func (e *ParseError) Is(target error) bool {
	var other *ParseError
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

func newParseError(kind ErrorKind, tok Token) *ParseError {
	return &ParseError{Kind: kind, Pos: tok.Pos, Token: tok.String()}
}

func newLexError(pos int, detail string) *ParseError {
	return &ParseError{Kind: ErrorKindLexical, Pos: pos, Detail: detail}
}

// ErrorKindOf returns the kind of a parse error anywhere in err's chain
func ErrorKindOf(err error) (ErrorKind, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}
