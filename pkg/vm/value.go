package vm

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gotac/pkg/compiler"
)

type Value = compiler.Value

// literal decodes an operand spelled the way the code generator prints
// literal values. Anything else is a name.
func literal(s string) (Value, bool) {
	if s == "" {
		return Value{}, false
	}
	switch c := s[0]; {
	case c >= '0' && c <= '9', (c == '+' || c == '-') && len(s) > 1:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return compiler.IntValue(i), true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return compiler.FloatValue(f), true
		}
	case c == '\'':
		if r, err := strconv.Unquote(s); err == nil {
			if rs := []rune(r); len(rs) == 1 {
				return compiler.CharValue(rs[0]), true
			}
		}
	case c == '"':
		if str, err := strconv.Unquote(s); err == nil {
			return compiler.StringValue(str), true
		}
	case s == "true":
		return compiler.BoolValue(true), true
	case s == "false":
		return compiler.BoolValue(false), true
	}
	return Value{}, false
}

// Display renders v the way print shows it.
func Display(v Value) string {
	switch v.Kind {
	case compiler.LitInt:
		return strconv.FormatInt(v.Int, 10)
	case compiler.LitFloat:
		return compiler.FormatFloat(v.Float)
	case compiler.LitChar:
		return string(v.Char)
	case compiler.LitString:
		return v.Str
	case compiler.LitBool:
		return strconv.FormatBool(v.Bool)
	}
	return "?"
}

// parseInput reads one line typed by the user as an int, float or bool,
// falling back to a string.
func parseInput(line string) Value {
	s := strings.TrimSpace(line)
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return compiler.IntValue(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return compiler.FloatValue(f)
	}
	if s == "true" || s == "false" {
		return compiler.BoolValue(s == "true")
	}
	return compiler.StringValue(s)
}

func isNumeric(v Value) bool { return v.Kind == compiler.LitInt || v.Kind == compiler.LitFloat }

func isText(v Value) bool { return v.Kind == compiler.LitChar || v.Kind == compiler.LitString }

func asFloat(v Value) float64 {
	if v.Kind == compiler.LitInt {
		return float64(v.Int)
	}
	return v.Float
}

func badOperands(a Value, op string, b Value) error {
	return fmt.Errorf("%w: %s %s %s", ErrBadOperand, a.Type(), op, b.Type())
}

// arith applies + - * / %. Two ints give an int; otherwise both sides are
// widened to float.
func arith(op string, a, b Value) (Value, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return Value{}, badOperands(a, op, b)
	}
	if a.Kind == compiler.LitInt && b.Kind == compiler.LitInt {
		x, y := a.Int, b.Int
		switch op {
		case "+":
			return compiler.IntValue(x + y), nil
		case "-":
			return compiler.IntValue(x - y), nil
		case "*":
			return compiler.IntValue(x * y), nil
		case "/", "%":
			if y == 0 {
				return Value{}, ErrDivisionByZero
			}
			if op == "/" {
				return compiler.IntValue(x / y), nil
			}
			return compiler.IntValue(x % y), nil
		}
	}
	x, y := asFloat(a), asFloat(b)
	switch op {
	case "+":
		return compiler.FloatValue(x + y), nil
	case "-":
		return compiler.FloatValue(x - y), nil
	case "*":
		return compiler.FloatValue(x * y), nil
	case "/", "%":
		if y == 0 {
			return Value{}, ErrDivisionByZero
		}
		if op == "/" {
			return compiler.FloatValue(x / y), nil
		}
		return compiler.FloatValue(math.Mod(x, y)), nil
	}
	return Value{}, fmt.Errorf("%w: %s", ErrBadInstruction, op)
}

// compare applies a relational or equality operator. Numbers compare by
// value, chars and strings by text, bools by equality only.
func compare(op string, a, b Value) (Value, error) {
	var c int
	switch {
	case isNumeric(a) && isNumeric(b):
		if a.Kind == compiler.LitInt && b.Kind == compiler.LitInt {
			c = cmp.Compare(a.Int, b.Int)
		} else {
			c = cmp.Compare(asFloat(a), asFloat(b))
		}
	case isText(a) && isText(b):
		c = strings.Compare(Display(a), Display(b))
	case a.Kind == compiler.LitBool && b.Kind == compiler.LitBool && (op == "==" || op == "!="):
		if a.Bool != b.Bool {
			c = 1
		}
	default:
		return Value{}, badOperands(a, op, b)
	}

	var r bool
	switch op {
	case "==":
		r = c == 0
	case "!=":
		r = c != 0
	case "<":
		r = c < 0
	case "<=":
		r = c <= 0
	case ">":
		r = c > 0
	case ">=":
		r = c >= 0
	}
	return compiler.BoolValue(r), nil
}

func logical(op string, a, b Value) (Value, error) {
	if a.Kind != compiler.LitBool || b.Kind != compiler.LitBool {
		return Value{}, badOperands(a, op, b)
	}
	if op == "and" {
		return compiler.BoolValue(a.Bool && b.Bool), nil
	}
	return compiler.BoolValue(a.Bool || b.Bool), nil
}
