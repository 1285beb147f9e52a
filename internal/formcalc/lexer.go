package formcalc

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// Lexer tokenizes FormCalc source on demand. It holds no grammar state; the
// parser keeps any pushed-back token.
type Lexer struct {
	src string
	pos int
	buf strings.Builder
}

// NewLexer creates a lexer over src
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Pos returns the byte offset of the next unread character
func (l *Lexer) Pos() int {
	return l.pos
}

// peek returns the byte at pos+n, or 0 past the end
func (l *Lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

// skipLine advances past the end of the current line
func (l *Lexer) skipLine() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' && l.src[l.pos] != '\r' {
		l.pos++
	}
}

// skipBlanks skips whitespace and comments
func (l *Lexer) skipBlanks() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ';':
			l.skipLine()
		case c == '/' && l.peek(1) == '/':
			l.skipLine()
		case c < utf8.RuneSelf:
			if c != ' ' && c != '\t' && c != '\n' && c != '\r' && c != '\f' && c != '\v' {
				return
			}
			l.pos++
		default:
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			if !unicode.IsSpace(r) {
				return
			}
			l.pos += size
		}
	}
}

// Next returns the next token. At end of input it keeps returning TokenEOF.
func (l *Lexer) Next() (Token, error) {
	l.skipBlanks()

	start := l.pos
	if l.pos >= len(l.src) {
		return Token{Type: TokenEOF, Pos: start}, nil
	}

	simple := func(typ TokenType, width int) (Token, error) {
		l.pos += width
		return Token{Type: typ, Pos: start}, nil
	}

	c := l.src[l.pos]
	switch c {
	case '"':
		return l.readString()
	case '(':
		return simple(TokenLeftParen, 1)
	case ')':
		return simple(TokenRightParen, 1)
	case '[':
		return simple(TokenLeftBracket, 1)
	case ']':
		return simple(TokenRightBracket, 1)
	case ',':
		return simple(TokenComma, 1)
	case '+':
		return simple(TokenPlus, 1)
	case '-':
		return simple(TokenMinus, 1)
	case '*':
		return simple(TokenStar, 1)
	case '/':
		return simple(TokenSlash, 1)
	case '&':
		return simple(TokenAnd, 1)
	case '|':
		return simple(TokenOr, 1)
	case '=':
		if l.peek(1) == '=' {
			return simple(TokenEq, 2)
		}
		return simple(TokenAssign, 1)
	case '<':
		switch l.peek(1) {
		case '=':
			return simple(TokenLe, 2)
		case '>':
			return simple(TokenNe, 2)
		}
		return simple(TokenLt, 1)
	case '>':
		if l.peek(1) == '=' {
			return simple(TokenGe, 2)
		}
		return simple(TokenGt, 1)
	case '.':
		switch next := l.peek(1); {
		case next == '.':
			return simple(TokenDotDot, 2)
		case next == '#':
			return simple(TokenDotHash, 2)
		case next == '*':
			return simple(TokenDotStar, 2)
		case isDigit(next):
			return l.readNumber()
		}
		return simple(TokenDot, 1)
	}

	if isDigit(c) {
		return l.readNumber()
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	if isIdentifierStart(r) {
		return l.readIdentifier(), nil
	}

	return Token{}, newLexError(start, "unexpected character "+strconv.QuoteRune(r))
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$' || r == '!'
}

func isIdentifierPart(r rune) bool {
	return isIdentifierStart(r) || unicode.IsDigit(r)
}

// readNumber reads digits, an optional fraction and an optional exponent.
// Either side of the decimal point may be empty but not both.
func (l *Lexer) readNumber() (Token, error) {
	start := l.pos

	for isDigit(l.peek(0)) {
		l.pos++
	}
	if l.peek(0) == '.' {
		l.pos++
		for isDigit(l.peek(0)) {
			l.pos++
		}
	}
	if c := l.peek(0); c == 'e' || c == 'E' {
		n := 1
		if s := l.peek(1); s == '+' || s == '-' {
			n++
		}
		if isDigit(l.peek(n)) {
			l.pos += n
			for isDigit(l.peek(0)) {
				l.pos++
			}
		}
	}

	text := l.src[start:l.pos]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Token{}, newLexError(start, "invalid number "+strconv.Quote(text))
	}
	// Out of range values come back as ±Inf or 0 together with ErrRange.
	return Token{Type: TokenNumber, Num: value, Pos: start}, nil
}

// readIdentifier reads an identifier and classifies reserved spellings
func (l *Lexer) readIdentifier() Token {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentifierPart(r) {
			break
		}
		l.pos += size
	}

	ident := l.src[start:l.pos]
	switch strings.ToLower(ident) {
	case "nan":
		return Token{Type: TokenNumber, Num: math.NaN(), Pos: start}
	case "infinity":
		return Token{Type: TokenNumber, Num: math.Inf(1), Pos: start}
	}
	if typ, ok := LookupKeyword(ident); ok {
		return Token{Type: typ, Str: strings.ToLower(ident), Pos: start}
	}
	return Token{Type: TokenIdentifier, Str: ident, Pos: start}
}

// readString reads a quoted literal. A doubled quote stands for one quote;
// \uXXXX and \UXXXXXXXX escapes are decoded and every other backslash is kept.
func (l *Lexer) readString() (Token, error) {
	start := l.pos
	l.pos++ // Skip opening quote
	l.buf.Reset()

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '"':
			if l.peek(1) == '"' {
				l.buf.WriteByte('"')
				l.pos += 2
				continue
			}
			l.pos++
			return Token{Type: TokenString, Str: l.buf.String(), Pos: start}, nil
		case c == '\\':
			if r, width, ok := l.readEscape(); ok {
				l.buf.WriteRune(r)
				l.pos += width
				continue
			}
			l.buf.WriteByte(c)
			l.pos++
		default:
			l.buf.WriteByte(c)
			l.pos++
		}
	}

	return Token{}, newLexError(start, "unterminated string")
}

// readEscape decodes a unicode escape at the current backslash. It reports
// the rune, the number of bytes consumed and whether the escape was valid.
func (l *Lexer) readEscape() (rune, int, bool) {
	r, width, ok := l.hexEscape(l.pos)
	if !ok {
		return 0, 0, false
	}
	if utf16.IsSurrogate(r) {
		// Only a high surrogate followed by a low surrogate escape forms a
		// code point; a lone surrogate is left as typed.
		low, lowWidth, ok := l.hexEscape(l.pos + width)
		if !ok {
			return 0, 0, false
		}
		combined := utf16.DecodeRune(r, low)
		if combined == unicode.ReplacementChar {
			return 0, 0, false
		}
		return combined, width + lowWidth, true
	}
	return r, width, true
}

// hexEscape parses \uXXXX or \UXXXXXXXX starting at offset at
func (l *Lexer) hexEscape(at int) (rune, int, bool) {
	if at+1 >= len(l.src) || l.src[at] != '\\' {
		return 0, 0, false
	}

	var digits int
	switch l.src[at+1] {
	case 'u':
		digits = 4
	case 'U':
		digits = 8
	default:
		return 0, 0, false
	}

	end := at + 2 + digits
	if end > len(l.src) {
		return 0, 0, false
	}
	value, err := strconv.ParseUint(l.src[at+2:end], 16, 32)
	if err != nil || value > unicode.MaxRune {
		return 0, 0, false
	}
	return rune(value), end - at, true
}
