package formcalc

import (
	"strconv"
	"strings"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenString
	TokenIdentifier
	TokenThis
	TokenNull

	// Control keywords
	TokenFor
	TokenForeach
	TokenWhile
	TokenIf
	TokenThen
	TokenElseIf
	TokenElse
	TokenEndIf
	TokenEndFor
	TokenEndWhile
	TokenDo
	TokenEnd
	TokenFunc
	TokenEndFunc
	TokenVar
	TokenBreak
	TokenContinue
	TokenIn
	TokenUpto
	TokenDownto
	TokenStep

	// Operators, either spelled as words or as symbols
	TokenEq
	TokenNe
	TokenLt
	TokenLe
	TokenGt
	TokenGe
	TokenAnd
	TokenOr
	TokenNot

	// Punctuation
	TokenLeftParen
	TokenRightParen
	TokenLeftBracket
	TokenRightBracket
	TokenComma
	TokenAssign
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenDot
	TokenDotDot
	TokenDotHash
	TokenDotStar
)

var tokenNames = map[TokenType]string{
	TokenEOF:          "EOF",
	TokenNumber:       "number",
	TokenString:       "string",
	TokenIdentifier:   "identifier",
	TokenThis:         "this",
	TokenNull:         "null",
	TokenFor:          "for",
	TokenForeach:      "foreach",
	TokenWhile:        "while",
	TokenIf:           "if",
	TokenThen:         "then",
	TokenElseIf:       "elseif",
	TokenElse:         "else",
	TokenEndIf:        "endif",
	TokenEndFor:       "endfor",
	TokenEndWhile:     "endwhile",
	TokenDo:           "do",
	TokenEnd:          "end",
	TokenFunc:         "func",
	TokenEndFunc:      "endfunc",
	TokenVar:          "var",
	TokenBreak:        "break",
	TokenContinue:     "continue",
	TokenIn:           "in",
	TokenUpto:         "upto",
	TokenDownto:       "downto",
	TokenStep:         "step",
	TokenEq:           "==",
	TokenNe:           "<>",
	TokenLt:           "<",
	TokenLe:           "<=",
	TokenGt:           ">",
	TokenGe:           ">=",
	TokenAnd:          "and",
	TokenOr:           "or",
	TokenNot:          "not",
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenLeftBracket:  "[",
	TokenRightBracket: "]",
	TokenComma:        ",",
	TokenAssign:       "=",
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenStar:         "*",
	TokenSlash:        "/",
	TokenDot:          ".",
	TokenDotDot:       "..",
	TokenDotHash:      ".#",
	TokenDotStar:      ".*",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "unknown"
}

// keywords maps reserved spellings (lowercase) to their token type.
// nan and infinity are handled separately since they lex as numbers.
var keywords = map[string]TokenType{
	"and":      TokenAnd,
	"break":    TokenBreak,
	"continue": TokenContinue,
	"do":       TokenDo,
	"downto":   TokenDownto,
	"else":     TokenElse,
	"elseif":   TokenElseIf,
	"end":      TokenEnd,
	"endfor":   TokenEndFor,
	"endfunc":  TokenEndFunc,
	"endif":    TokenEndIf,
	"endwhile": TokenEndWhile,
	"eq":       TokenEq,
	"for":      TokenFor,
	"foreach":  TokenForeach,
	"func":     TokenFunc,
	"ge":       TokenGe,
	"gt":       TokenGt,
	"if":       TokenIf,
	"in":       TokenIn,
	"le":       TokenLe,
	"lt":       TokenLt,
	"ne":       TokenNe,
	"not":      TokenNot,
	"null":     TokenNull,
	"or":       TokenOr,
	"step":     TokenStep,
	"then":     TokenThen,
	"this":     TokenThis,
	"upto":     TokenUpto,
	"var":      TokenVar,
	"while":    TokenWhile,
}

// LookupKeyword reports the keyword token for an identifier spelling.
// Matching is case-insensitive.
func LookupKeyword(ident string) (TokenType, bool) {
	typ, ok := keywords[strings.ToLower(ident)]
	return typ, ok
}

// Token is a single lexical token. Num is set for TokenNumber, Str for
// TokenString and TokenIdentifier.
type Token struct {
	Type TokenType
	Num  float64
	Str  string
	Pos  int // Byte offset of the token start
}

// String returns a printable form of the token, used in error messages
func (t Token) String() string {
	switch t.Type {
	case TokenNumber:
		return strconv.FormatFloat(t.Num, 'g', -1, 64)
	case TokenString:
		return strconv.Quote(t.Str)
	case TokenIdentifier:
		return t.Str
	default:
		return t.Type.String()
	}
}
