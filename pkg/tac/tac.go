// Package tac defines three-address code: a flat sequence of quadruples
// (op, arg1, arg2, result) produced by the compiler and executed by the vm.
package tac

import (
	"fmt"
	"strings"
)

// Blank marks a missing operand.
const Blank = "_"

// Operators emitted by the code generator.
const (
	OpAssign     = "="
	OpIndex      = "[]"  // result = arg1[arg2]
	OpIndexStore = "[]=" // result[arg2] = arg1
	OpUMinus     = "uminus"
	OpNot        = "not"
	OpAnd        = "and"
	OpOr         = "or"
	OpIfFalse    = "ifFalse"
	OpGoto       = "goto"
	OpLabel      = "label"
	OpPrint      = "print"
	OpInput      = "input"
	OpFunc       = "func"
	OpEndFunc    = "endfunc"
	OpCall       = "call"
	OpReturn     = "return"
)

// Quad is one instruction. An empty field is a missing operand.
type Quad struct {
	Op     string
	Arg1   string
	Arg2   string
	Result string
}

func field(s string) string {
	if s == "" {
		return Blank
	}
	return s
}

// String renders q as (op, arg1, arg2, result).
func (q Quad) String() string {
	return fmt.Sprintf("(%s, %s, %s, %s)", q.Op, field(q.Arg1), field(q.Arg2), field(q.Result))
}

// Fields returns the four fields with missing operands rendered as "_".
func (q Quad) Fields() [4]string {
	return [4]string{q.Op, field(q.Arg1), field(q.Arg2), field(q.Result)}
}

// IsJump reports whether q transfers control to the label in Result.
func (q Quad) IsJump() bool {
	return q.Op == OpGoto || q.Op == OpIfFalse
}

// Program is an append-only instruction sequence.
type Program struct {
	Quads []Quad

	// Params maps each function to its parameter names in order. It is
	// metadata for execution and is not part of the listing.
	Params map[string][]string

	// Globals lists the variables declared outside any function and Locals
	// the variables declared inside each function body, in declaration order.
	Globals []string
	Locals  map[string][]string

	// Types holds the declared type of every variable, array and
	// parameter, by function ("" for globals) and then by name.
	Types map[string]map[string]string
}

func NewProgram() *Program {
	return &Program{
		Params: make(map[string][]string),
		Locals: make(map[string][]string),
		Types:  make(map[string]map[string]string),
	}
}

// Declare records a variable of type typ declared in fn, or a global when
// fn is empty.
func (p *Program) Declare(fn, name, typ string) {
	if fn == "" {
		p.Globals = append(p.Globals, name)
	} else {
		p.Locals[fn] = append(p.Locals[fn], name)
	}
	p.SetType(fn, name, typ)
}

// SetType records the declared type of name in fn.
func (p *Program) SetType(fn, name, typ string) {
	m, ok := p.Types[fn]
	if !ok {
		m = make(map[string]string)
		p.Types[fn] = m
	}
	m[name] = typ
}

// TypeOf returns the declared type of name in fn, or "" for temporaries
// and unknown names.
func (p *Program) TypeOf(fn, name string) string {
	return p.Types[fn][name]
}

// Emit appends one instruction.
func (p *Program) Emit(op, arg1, arg2, result string) {
	p.Quads = append(p.Quads, Quad{Op: op, Arg1: arg1, Arg2: arg2, Result: result})
}

// Len returns the number of instructions.
func (p *Program) Len() int { return len(p.Quads) }

// String returns the numbered listing, one instruction per line:
//
//	0: (=, 5, _, t1)
//	1: (=, t1, _, x)
func (p *Program) String() string {
	var sb strings.Builder
	for i, q := range p.Quads {
		fmt.Fprintf(&sb, "%d: %s\n", i, q)
	}
	return sb.String()
}

// Labels maps every label name to the index of its label instruction.
// When a label is defined twice the first definition wins.
func (p *Program) Labels() map[string]int {
	out := make(map[string]int)
	for i, q := range p.Quads {
		if q.Op != OpLabel {
			continue
		}
		if _, dup := out[q.Result]; !dup {
			out[q.Result] = i
		}
	}
	return out
}

// Functions maps every function name to the index of its func marker.
func (p *Program) Functions() map[string]int {
	out := make(map[string]int)
	for i, q := range p.Quads {
		if q.Op == OpFunc {
			out[q.Arg1] = i
		}
	}
	return out
}
