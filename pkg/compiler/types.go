package compiler

import (
	"math"
	"strconv"
	"strings"
)

// Type is the static type of a symbol or expression.
type Type int

const (
	// TypeUnknown is substituted for a sub-expression that already failed
	// analysis so that its parents do not report again.
	TypeUnknown Type = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeChar
	TypeString
	TypeFunc
	TypeVoid
)

var typeNames = [...]string{
	TypeUnknown: "unknown",
	TypeInt:     "int",
	TypeFloat:   "float",
	TypeBool:    "bool",
	TypeChar:    "char",
	TypeString:  "string",
	TypeFunc:    "func",
	TypeVoid:    "void",
}

func (t Type) String() string {
	if int(t) >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// IsNumeric reports whether arithmetic is defined on t.
func (t Type) IsNumeric() bool { return t == TypeInt || t == TypeFloat }

// typeOfKeyword maps a type keyword token to its Type.
func typeOfKeyword(tt TokenType) Type {
	switch tt {
	case INT:
		return TypeInt
	case FLOAT:
		return TypeFloat
	case BOOL:
		return TypeBool
	case CHAR:
		return TypeChar
	case STRING:
		return TypeString
	}
	return TypeUnknown
}

// Assignable reports whether a value of type src may be stored in a
// location of type dst. Identical types always are; int widens to float.
func Assignable(dst, src Type) bool {
	if dst == src {
		return true
	}
	return dst == TypeFloat && src == TypeInt
}

// LitKind is the kind of value a literal carries.
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitChar
	LitString
	LitBool
)

// Value is a decoded literal value.
type Value struct {
	Kind  LitKind
	Int   int64
	Float float64
	Char  rune
	Str   string
	Bool  bool
}

func IntValue(i int64) Value     { return Value{Kind: LitInt, Int: i} }
func FloatValue(f float64) Value { return Value{Kind: LitFloat, Float: f} }
func CharValue(c rune) Value     { return Value{Kind: LitChar, Char: c} }
func StringValue(s string) Value { return Value{Kind: LitString, Str: s} }
func BoolValue(b bool) Value     { return Value{Kind: LitBool, Bool: b} }

// Type is the static type of a literal carrying v.
func (v Value) Type() Type {
	switch v.Kind {
	case LitInt:
		return TypeInt
	case LitFloat:
		return TypeFloat
	case LitChar:
		return TypeChar
	case LitString:
		return TypeString
	case LitBool:
		return TypeBool
	}
	return TypeUnknown
}

// String renders v the way it appears as a TAC operand.
func (v Value) String() string {
	switch v.Kind {
	case LitInt:
		return strconv.FormatInt(v.Int, 10)
	case LitFloat:
		return FormatFloat(v.Float)
	case LitChar:
		return strconv.QuoteRune(v.Char)
	case LitString:
		return strconv.Quote(v.Str)
	case LitBool:
		return strconv.FormatBool(v.Bool)
	}
	return "?"
}

// FormatFloat prints f so that it always reads back as a float literal.
func FormatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
