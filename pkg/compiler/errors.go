package compiler

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a semantic error.
type ErrorKind int

const (
	DuplicateSymbol ErrorKind = iota
	UndefinedSymbol
	TypeMismatch
	NonBooleanCondition
	NotAnArray
	InvalidIndexType
	InvalidArraySize
	ArityMismatch
	NotAFunction
	VoidValueUsed
	ReturnOutsideFunction
	VoidReturnWithValue
	InvalidOperandType
	BreakOutsideLoop
)

var errorKindNames = [...]string{
	DuplicateSymbol:       "DuplicateSymbol",
	UndefinedSymbol:       "UndefinedSymbol",
	TypeMismatch:          "TypeMismatch",
	NonBooleanCondition:   "NonBooleanCondition",
	NotAnArray:            "NotAnArray",
	InvalidIndexType:      "InvalidIndexType",
	InvalidArraySize:      "InvalidArraySize",
	ArityMismatch:         "ArityMismatch",
	NotAFunction:          "NotAFunction",
	VoidValueUsed:         "VoidValueUsed",
	ReturnOutsideFunction: "ReturnOutsideFunction",
	VoidReturnWithValue:   "VoidReturnWithValue",
	InvalidOperandType:    "InvalidOperandType",
	BreakOutsideLoop:      "BreakOutsideLoop",
}

func (k ErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// SemanticError is one failed check, attached to the line of the node that
// failed it.
type SemanticError struct {
	Kind ErrorKind
	Msg  string
	Line int
}

func (e *SemanticError) Error() string {
	return "Semantic Error: " + e.Msg
}

func semErr(kind ErrorKind, line int, format string, args ...any) *SemanticError {
	return &SemanticError{Kind: kind, Msg: fmt.Sprintf(format, args...), Line: line}
}

// Stage names a pipeline stage.
type Stage int

const (
	StageNone Stage = iota
	StageLex
	StageParse
	StageSemantic
	StageCodegen
)

var stageNames = [...]string{
	StageNone:     "none",
	StageLex:      "lexical analysis",
	StageParse:    "parsing",
	StageSemantic: "semantic analysis",
	StageCodegen:  "code generation",
}

func (s Stage) String() string {
	if int(s) >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Diagnostics is the error returned for a failed stage. It carries every
// message that stage produced, in order.
type Diagnostics struct {
	Stage    Stage
	Messages []string
}

func (d *Diagnostics) Error() string {
	if len(d.Messages) == 1 {
		return fmt.Sprintf("%s failed: %s", d.Stage, d.Messages[0])
	}
	return fmt.Sprintf("%s failed with %d errors:\n  %s", d.Stage, len(d.Messages), strings.Join(d.Messages, "\n  "))
}
