package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// illegalLeaders are symbols that never start a token on their own. Followed
// by word characters they form an "illegal sequence" that is reported and
// dropped as a whole. A lone '%' and "&&" are still operators.
const illegalLeaders = "@#$%^&~\\`"

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	errs []string
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	return l.peekAt(1)
}

func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

func (l *Lexer) errorf(line int, reason, lexeme string) {
	l.errs = append(l.errs, fmt.Sprintf("Lexical Error at line %d: %s %s", line, reason, lexeme))
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isIdentChar(r rune) bool { return isIdentStart(r) || isDigit(r) }

// skipWhitespace discards blanks; every newline advances the line counter.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

// scanIdent collects a full identifier or keyword token.
// The first character (letter or '_') must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) && isIdentChar(l.peek()) {
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	tok := Token{Type: tt, Lexeme: lexeme, Line: line}
	switch tt {
	case TRUE:
		tok.Value = BoolValue(true)
	case FALSE:
		tok.Value = BoolValue(false)
	}
	return tok
}

// scanNumber collects an integer or float literal. A digit run that runs
// straight into identifier characters (3abc, 0x1fg) is an invalid
// identifier and yields no token. The first digit must still be at l.peek().
func (l *Lexer) scanNumber() (Token, bool) {
	line := l.line
	start := l.pos

	// Check for '0x' or '0X' prefix
	if l.peek() == '0' && (l.peek2() == 'x' || l.peek2() == 'X') && isHexDigit(l.peekAt(2)) {
		l.advance() // consume '0'
		l.advance() // consume 'x'
		for l.pos < len(l.src) && isHexDigit(l.peek()) {
			l.advance()
		}
		if isIdentChar(l.peek()) {
			return l.invalidIdent(start, line), false
		}
		lexeme := string(l.src[start:l.pos])
		v, err := strconv.ParseInt(lexeme[2:], 16, 64)
		if err != nil {
			l.errorf(line, "invalid integer", lexeme)
		}
		return Token{Type: INT_LIT, Lexeme: lexeme, Value: IntValue(v), Line: line}, true
	}

	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && isDigit(l.peek2()) {
		l.advance() // consume '.'
		for l.pos < len(l.src) && isDigit(l.peek()) {
			l.advance()
		}
		if e := l.peek(); e == 'e' || e == 'E' {
			sign := l.peek2()
			switch {
			case isDigit(sign):
				l.advance()
			case (sign == '+' || sign == '-') && isDigit(l.peekAt(2)):
				l.advance()
				l.advance()
			}
			for l.pos < len(l.src) && isDigit(l.peek()) {
				l.advance()
			}
		}
		lexeme := string(l.src[start:l.pos])
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			l.errorf(line, "invalid float literal", lexeme)
		}
		return Token{Type: FLOAT_LIT, Lexeme: lexeme, Value: FloatValue(f), Line: line}, true
	}

	if isIdentChar(l.peek()) {
		return l.invalidIdent(start, line), false
	}

	lexeme := string(l.src[start:l.pos])
	v, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		l.errorf(line, "invalid integer", lexeme)
	}
	return Token{Type: INT_LIT, Lexeme: lexeme, Value: IntValue(v), Line: line}, true
}

func (l *Lexer) invalidIdent(start, line int) Token {
	for l.pos < len(l.src) && isIdentChar(l.peek()) {
		l.advance()
	}
	l.errorf(line, "invalid identifier", string(l.src[start:l.pos]))
	return Token{}
}

// unescape decodes the character after a backslash.
func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	}
	return r
}

// scanString collects a string literal "...". Strings may not span lines; a
// newline or end of input before the closing quote is reported and the
// partial literal is dropped.
func (l *Lexer) scanString() (Token, bool) {
	line := l.line
	start := l.pos
	l.advance() // consume opening "
	var val strings.Builder

	for {
		r := l.peek()
		if l.pos >= len(l.src) || r == '\n' {
			l.errorf(line, "unterminated string literal", string(l.src[start:l.pos]))
			return Token{}, false
		}
		if r == '"' {
			break
		}
		if r == '\\' {
			if next := l.peek2(); next != 0 && next != '\n' {
				l.advance() // consume backslash
				val.WriteRune(unescape(l.advance()))
				continue
			}
		}
		val.WriteRune(l.advance())
	}
	l.advance() // consume closing "

	lexeme := string(l.src[start:l.pos])
	return Token{Type: STRING_LIT, Lexeme: lexeme, Value: StringValue(val.String()), Line: line}, true
}

// scanChar collects a character literal 'c' or '\c'. It consumes nothing and
// reports false when the quote does not start a well-formed literal.
func (l *Lexer) scanChar() (Token, bool) {
	line := l.line
	r := l.peek2()
	var val rune
	width := 3 // 'c'
	switch {
	case r == '\\' && l.peekAt(2) != 0 && l.peekAt(2) != '\n':
		val = unescape(l.peekAt(2))
		width = 4
	case r != 0 && r != '\\' && r != '\'' && r != '\n':
		val = r
	default:
		return Token{}, false
	}
	if l.peekAt(width-1) != '\'' {
		return Token{}, false
	}
	start := l.pos
	for i := 0; i < width; i++ {
		l.advance()
	}
	return Token{Type: CHAR_LIT, Lexeme: string(l.src[start:l.pos]), Value: CharValue(val), Line: line}, true
}

// scanIllegalSequence reports a leader symbol and the word characters glued to
// it. It returns false, consuming nothing, when the symbol is really the
// start of an operator.
func (l *Lexer) scanIllegalSequence() bool {
	line := l.line
	start := l.pos
	lead := l.peek()
	next := l.peek2()
	if !isIdentChar(next) && (lead == '%' || (lead == '&' && next == '&')) {
		return false
	}
	l.advance()
	for l.pos < len(l.src) && isIdentChar(l.peek()) {
		l.advance()
	}
	l.errorf(line, "illegal sequence", string(l.src[start:l.pos]))
	return true
}

// scanOperator matches fixed operators and punctuation, two-character forms first.
func (l *Lexer) scanOperator() (Token, bool) {
	line := l.line
	if l.pos+1 < len(l.src) {
		two := string(l.src[l.pos : l.pos+2])
		if tt, ok := operators[two]; ok {
			l.advance()
			l.advance()
			return Token{Type: tt, Lexeme: two, Line: line}, true
		}
	}
	one := string(l.peek())
	if tt, ok := operators[one]; ok {
		l.advance()
		return Token{Type: tt, Lexeme: one, Line: line}, true
	}
	return Token{}, false
}

// nextToken skips whitespace and returns the next Token. The boolean is false
// when the scanned span produced a diagnostic instead of a token.
func (l *Lexer) nextToken() (Token, bool) {
	l.skipWhitespace()
	if l.pos >= len(l.src) {
		return Token{Type: EOF, Lexeme: "", Line: l.line}, true
	}

	ch := l.peek()
	line := l.line

	switch {
	case ch == '"':
		return l.scanString()
	case ch == '\'':
		if tok, ok := l.scanChar(); ok {
			return tok, true
		}
	case isDigit(ch):
		return l.scanNumber()
	case isIdentStart(ch):
		return l.scanIdent(), true
	case strings.ContainsRune(illegalLeaders, ch):
		if l.scanIllegalSequence() {
			return Token{}, false
		}
	}

	if tok, ok := l.scanOperator(); ok {
		return tok, true
	}

	l.advance()
	l.errorf(line, "illegal character", fmt.Sprintf("'%c'", ch))
	return Token{}, false
}

// Lex tokenises src and returns all tokens including the final EOF token,
// together with every lexical error met on the way. Scanning never stops
// early: each malformed span is reported and skipped.
func Lex(src string) ([]Token, []string) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, ok := l.nextToken()
		if !ok {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, l.errs
		}
	}
}
