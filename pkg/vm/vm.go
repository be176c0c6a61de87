// Package vm executes three-address code produced by the compiler.
//
// Variables live in a global frame plus one frame per active call. A name
// used inside a function belongs to the call's frame unless it is a global
// the function neither declares nor takes as a parameter.
package vm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gotac/pkg/compiler"
	"gotac/pkg/log"
	"gotac/pkg/tac"
)

// MaxCallDepth bounds recursion.
const MaxCallDepth = 10000

// Frame holds the variables of the global scope or of one call.
type Frame struct {
	Func   string
	Vars   map[string]Value
	Arrays map[string]map[int64]Value

	owned map[string]bool // params and declared locals
	ret   int
}

func newFrame(fn string) *Frame {
	return &Frame{
		Func:   fn,
		Vars:   make(map[string]Value),
		Arrays: make(map[string]map[int64]Value),
		owned:  make(map[string]bool),
	}
}

type VM struct {
	PC     int
	Steps  int
	Halted bool

	// MaxSteps stops a run with ErrStepLimit when positive.
	MaxSteps int

	// Output receives print lines. If nil, os.Stdout is used.
	Output io.Writer
	// Input is read by input instructions. If nil, os.Stdin is used.
	Input io.Reader

	prog    *tac.Program
	labels  map[string]int
	funcs   map[string]int
	global  map[string]bool
	globals *Frame
	frames  []*Frame
	in      *bufio.Reader
	log     log.Logger
}

// New prepares prog for execution from its first instruction.
func New(prog *tac.Program) *VM {
	vm := &VM{
		prog:    prog,
		labels:  prog.Labels(),
		funcs:   prog.Functions(),
		global:  make(map[string]bool),
		globals: newFrame(""),
		log:     log.New("module", "vm"),
	}
	for _, name := range prog.Globals {
		vm.global[name] = true
	}
	return vm
}

func (vm *VM) outputSink() io.Writer {
	if vm.Output != nil {
		return vm.Output
	}
	return os.Stdout
}

func (vm *VM) reader() *bufio.Reader {
	if vm.in == nil {
		src := vm.Input
		if src == nil {
			src = os.Stdin
		}
		vm.in = bufio.NewReader(src)
	}
	return vm.in
}

// Global returns the value of a global variable.
func (vm *VM) Global(name string) (Value, bool) {
	v, ok := vm.globals.Vars[name]
	return v, ok
}

// CallDepth is the number of active calls.
func (vm *VM) CallDepth() int { return len(vm.frames) }

// frame returns the frame that owns name at this point of execution.
func (vm *VM) frame(name string) *Frame {
	if n := len(vm.frames); n > 0 {
		top := vm.frames[n-1]
		if top.owned[name] || !vm.global[name] {
			return top
		}
	}
	return vm.globals
}

func (vm *VM) load(operand string) (Value, error) {
	if v, ok := literal(operand); ok {
		return v, nil
	}
	v, ok := vm.frame(operand).Vars[operand]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrUndefined, operand)
	}
	return v, nil
}

func (vm *VM) store(name string, v Value) {
	f := vm.frame(name)
	f.Vars[name] = vm.widen(f, name, v)
}

// widen converts an int stored into a variable declared float in f.
func (vm *VM) widen(f *Frame, name string, v Value) Value {
	if v.Kind == compiler.LitInt && vm.prog.TypeOf(f.Func, name) == compiler.TypeFloat.String() {
		return compiler.FloatValue(float64(v.Int))
	}
	return v
}

func (vm *VM) array(name string) map[int64]Value {
	f := vm.frame(name)
	arr, ok := f.Arrays[name]
	if !ok {
		arr = make(map[int64]Value)
		f.Arrays[name] = arr
	}
	return arr
}

func (vm *VM) index(operand string) (int64, error) {
	v, err := vm.load(operand)
	if err != nil {
		return 0, err
	}
	if v.Kind != compiler.LitInt {
		return 0, fmt.Errorf("%w: %s index", ErrBadOperand, v.Type())
	}
	return v.Int, nil
}

func (vm *VM) jump(label string) error {
	target, ok := vm.labels[label]
	if !ok {
		return fmt.Errorf("%w: label %s", ErrUndefined, label)
	}
	vm.PC = target
	return nil
}

// skipFunc returns the index after the endfunc matching the func marker at pc.
func (vm *VM) skipFunc(pc int) int {
	depth := 0
	for i := pc + 1; i < len(vm.prog.Quads); i++ {
		switch vm.prog.Quads[i].Op {
		case tac.OpFunc:
			depth++
		case tac.OpEndFunc:
			if depth == 0 {
				return i + 1
			}
			depth--
		}
	}
	return len(vm.prog.Quads)
}

func (vm *VM) call(name, args string, ret int) error {
	start, ok := vm.funcs[name]
	if !ok {
		return fmt.Errorf("%w: function %s", ErrUndefined, name)
	}
	if len(vm.frames) >= MaxCallDepth {
		return ErrStackOverflow
	}

	var argv []string
	if args != tac.Blank && args != "" {
		argv = strings.Split(args, ",")
	}
	params := vm.prog.Params[name]
	if len(argv) != len(params) {
		return fmt.Errorf("%w: %s wants %d, got %d", ErrArgCount, name, len(params), len(argv))
	}

	f := newFrame(name)
	f.ret = ret
	for _, local := range vm.prog.Locals[name] {
		f.owned[local] = true
	}
	for i, p := range params {
		v, err := vm.load(argv[i])
		if err != nil {
			return err
		}
		f.Vars[p] = vm.widen(f, p, v)
		f.owned[p] = true
	}

	vm.log.Trace("Call", "func", name, "depth", len(vm.frames)+1)
	vm.frames = append(vm.frames, f)
	vm.PC = start + 1
	return nil
}

func (vm *VM) ret() error {
	n := len(vm.frames)
	if n == 0 {
		return ErrReturnOutside
	}
	vm.PC = vm.frames[n-1].ret
	vm.frames = vm.frames[:n-1]
	return nil
}

// Step executes one instruction. Running past the last instruction halts
// the machine. A fault halts it too and is returned as a *RuntimeError.
func (vm *VM) Step() error {
	if vm.Halted {
		return nil
	}
	if vm.PC >= len(vm.prog.Quads) {
		vm.Halted = true
		vm.log.Debug("Program finished", "steps", vm.Steps)
		return nil
	}

	pc := vm.PC
	q := vm.prog.Quads[pc]
	if vm.MaxSteps > 0 && vm.Steps >= vm.MaxSteps {
		return vm.fault(pc, q, fmt.Errorf("%w (%d)", ErrStepLimit, vm.MaxSteps))
	}
	vm.Steps++
	vm.PC++

	if err := vm.exec(pc, q); err != nil {
		return vm.fault(pc, q, err)
	}
	return nil
}

func (vm *VM) fault(pc int, q tac.Quad, err error) error {
	vm.Halted = true
	return &RuntimeError{PC: pc, Quad: q, Err: err}
}

func (vm *VM) exec(pc int, q tac.Quad) error {
	switch q.Op {
	case tac.OpAssign:
		v, err := vm.load(q.Arg1)
		if err != nil {
			return err
		}
		vm.store(q.Result, v)

	case tac.OpIndex:
		idx, err := vm.index(q.Arg2)
		if err != nil {
			return err
		}
		v, ok := vm.array(q.Arg1)[idx]
		if !ok {
			return fmt.Errorf("%w: %s[%d]", ErrUndefined, q.Arg1, idx)
		}
		vm.store(q.Result, v)

	case tac.OpIndexStore:
		v, err := vm.load(q.Arg1)
		if err != nil {
			return err
		}
		idx, err := vm.index(q.Arg2)
		if err != nil {
			return err
		}
		vm.array(q.Result)[idx] = vm.widen(vm.frame(q.Result), q.Result, v)

	case "+", "-", "*", "/", "%":
		return vm.binary(q, arith)
	case "<", "<=", ">", ">=", "==", "!=":
		return vm.binary(q, compare)
	case tac.OpAnd, tac.OpOr:
		return vm.binary(q, logical)

	case tac.OpUMinus:
		v, err := vm.load(q.Arg1)
		if err != nil {
			return err
		}
		switch v.Kind {
		case compiler.LitInt:
			vm.store(q.Result, compiler.IntValue(-v.Int))
		case compiler.LitFloat:
			vm.store(q.Result, compiler.FloatValue(-v.Float))
		default:
			return fmt.Errorf("%w: -%s", ErrBadOperand, v.Type())
		}

	case tac.OpNot:
		v, err := vm.load(q.Arg1)
		if err != nil {
			return err
		}
		if v.Kind != compiler.LitBool {
			return fmt.Errorf("%w: !%s", ErrBadOperand, v.Type())
		}
		vm.store(q.Result, compiler.BoolValue(!v.Bool))

	case tac.OpIfFalse:
		v, err := vm.load(q.Arg1)
		if err != nil {
			return err
		}
		if v.Kind != compiler.LitBool {
			return fmt.Errorf("%w: %s condition", ErrBadOperand, v.Type())
		}
		if !v.Bool {
			return vm.jump(q.Result)
		}

	case tac.OpGoto:
		return vm.jump(q.Result)

	case tac.OpLabel:
		// No operation.

	case tac.OpPrint:
		v, err := vm.load(q.Arg1)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(vm.outputSink(), Display(v))
		return err

	case tac.OpInput:
		line, err := vm.reader().ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return ErrNoInput
			}
			return err
		}
		vm.store(q.Result, parseInput(line))

	case tac.OpFunc:
		vm.PC = vm.skipFunc(pc)

	case tac.OpCall:
		return vm.call(q.Arg1, q.Arg2, pc+1)

	case tac.OpReturn, tac.OpEndFunc:
		return vm.ret()

	default:
		return fmt.Errorf("%w: %s", ErrBadInstruction, q.Op)
	}
	return nil
}

func (vm *VM) binary(q tac.Quad, fn func(op string, a, b Value) (Value, error)) error {
	a, err := vm.load(q.Arg1)
	if err != nil {
		return err
	}
	b, err := vm.load(q.Arg2)
	if err != nil {
		return err
	}
	v, err := fn(q.Op, a, b)
	if err != nil {
		return err
	}
	vm.store(q.Result, v)
	return nil
}

// Run executes until the program ends or faults.
func (vm *VM) Run() error {
	return vm.RunContext(context.Background())
}

// RunContext is Run that also stops when ctx is done.
func (vm *VM) RunContext(ctx context.Context) error {
	for !vm.Halted {
		if vm.Steps%1024 == 0 {
			if err := ctx.Err(); err != nil {
				vm.Halted = true
				return err
			}
		}
		if err := vm.Step(); err != nil {
			return err
		}
	}
	return nil
}
