package compiler

import (
	"fmt"
	"strconv"
)

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable / function name
	INT_LIT    // decimal or 0x-prefixed integer literal
	FLOAT_LIT  // 1.5, 2.0e10
	CHAR_LIT   // 'c'
	STRING_LIT // "..."

	// Keywords
	FUNC     // "func"
	IF       // "if"
	ELIF     // "elif"
	ELSE     // "else"
	WHILE    // "while"
	FOR      // "for"
	BREAK    // "break"
	CONTINUE // "continue"
	INT      // "int"
	FLOAT    // "float"
	BOOL     // "bool"
	CHAR     // "char"
	STRING   // "string"
	RETURN   // "return"
	PRINT    // "print"
	INPUT    // "input"
	TRUE     // "true"
	FALSE    // "false"

	// Paired delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }
	LBRACKET // [
	RBRACKET // ]

	// Punctuation
	SEMICOLON // ;
	COMMA     // ,

	// Arithmetic operators
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %

	// Assignment / comparison  (order matters: ASSIGN before EQUALS)
	ASSIGN     // =
	EQUALS     // ==
	NOT_EQ     // !=
	LESS       // <
	LESS_EQ    // <=
	GREATER    // >
	GREATER_EQ // >=

	// Logical
	AND_LOGICAL // &&
	OR_LOGICAL  // ||
	NOT         // !
)

var tokenNames = [...]string{
	EOF:         "EOF",
	IDENTIFIER:  "IDENTIFIER",
	INT_LIT:     "INT_LITERAL",
	FLOAT_LIT:   "FLOAT_LITERAL",
	CHAR_LIT:    "CHAR_LITERAL",
	STRING_LIT:  "STRING_LITERAL",
	FUNC:        "FUNC",
	IF:          "IF",
	ELIF:        "ELIF",
	ELSE:        "ELSE",
	WHILE:       "WHILE",
	FOR:         "FOR",
	BREAK:       "BREAK",
	CONTINUE:    "CONTINUE",
	INT:         "INT",
	FLOAT:       "FLOAT",
	BOOL:        "BOOL",
	CHAR:        "CHAR",
	STRING:      "STRING",
	RETURN:      "RETURN",
	PRINT:       "PRINT",
	INPUT:       "INPUT",
	TRUE:        "TRUE",
	FALSE:       "FALSE",
	LPAREN:      "LPAREN",
	RPAREN:      "RPAREN",
	LBRACE:      "LBRACE",
	RBRACE:      "RBRACE",
	LBRACKET:    "LBRACKET",
	RBRACKET:    "RBRACKET",
	SEMICOLON:   "SEMICOLON",
	COMMA:       "COMMA",
	PLUS:        "PLUS",
	MINUS:       "MINUS",
	STAR:        "TIMES",
	SLASH:       "DIVIDE",
	PERCENT:     "MOD",
	ASSIGN:      "ASSIGN",
	EQUALS:      "EQ",
	NOT_EQ:      "NE",
	LESS:        "LT",
	LESS_EQ:     "LE",
	GREATER:     "GT",
	GREATER_EQ:  "GE",
	AND_LOGICAL: "AND",
	OR_LOGICAL:  "OR",
	NOT:         "NOT",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// IsType reports whether tt is one of the declarable type keywords.
func (tt TokenType) IsType() bool {
	switch tt {
	case INT, FLOAT, BOOL, CHAR, STRING:
		return true
	}
	return false
}

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"func":     FUNC,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"break":    BREAK,
	"continue": CONTINUE,
	"int":      INT,
	"float":    FLOAT,
	"bool":     BOOL,
	"char":     CHAR,
	"string":   STRING,
	"return":   RETURN,
	"print":    PRINT,
	"input":    INPUT,
	"true":     TRUE,
	"false":    FALSE,
}

// operators maps fixed operator/punctuation text to its TokenType.
// Two-character entries are tried before one-character ones.
var operators = map[string]TokenType{
	"==": EQUALS,
	"!=": NOT_EQ,
	"<=": LESS_EQ,
	">=": GREATER_EQ,
	"&&": AND_LOGICAL,
	"||": OR_LOGICAL,
	"+":  PLUS,
	"-":  MINUS,
	"*":  STAR,
	"/":  SLASH,
	"%":  PERCENT,
	"=":  ASSIGN,
	"<":  LESS,
	">":  GREATER,
	"!":  NOT,
	"(":  LPAREN,
	")":  RPAREN,
	"{":  LBRACE,
	"}":  RBRACE,
	"[":  LBRACKET,
	"]":  RBRACKET,
	";":  SEMICOLON,
	",":  COMMA,
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Value  Value  // decoded value; set for literal tokens only
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-14s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}

// display is the token text quoted in syntax errors: decoded values for
// literals, the lexeme otherwise.
func (t Token) display() string {
	switch t.Type {
	case INT_LIT:
		return strconv.FormatInt(t.Value.Int, 10)
	case CHAR_LIT:
		return string(t.Value.Char)
	case STRING_LIT:
		return t.Value.Str
	}
	return t.Lexeme
}
