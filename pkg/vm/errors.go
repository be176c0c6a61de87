package vm

import (
	"errors"
	"fmt"

	"gotac/pkg/tac"
)

var (
	ErrUndefined      = errors.New("undefined name")
	ErrDivisionByZero = errors.New("division by zero")
	ErrBadOperand     = errors.New("invalid operand")
	ErrBadInstruction = errors.New("unknown instruction")
	ErrArgCount       = errors.New("argument count mismatch")
	ErrReturnOutside  = errors.New("return outside of function")
	ErrStepLimit      = errors.New("step limit exceeded")
	ErrStackOverflow  = errors.New("call stack overflow")
	ErrNoInput        = errors.New("input exhausted")
)

// RuntimeError is a fault raised by one instruction. Execution stops at the
// first one.
type RuntimeError struct {
	PC   int
	Quad tac.Quad
	Err  error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at %d %s: %v", e.PC, e.Quad, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }
