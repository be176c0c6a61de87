package compiler

import (
	"gotac/pkg/tac"
)

// Options tune a pipeline run.
type Options struct {
	// Verify runs the label checker on the generated code.
	Verify bool
}

// Result holds the output and diagnostics of every stage that ran. Stages
// after the first failing one are not run and leave their fields zero.
type Result struct {
	Tokens    []Token
	LexErrors []string

	AST          *Program
	SyntaxErrors []string

	Analysis *Analysis

	TAC      *tac.Program
	Warnings []string

	// Failed is the stage that stopped the pipeline, or StageNone.
	Failed Stage
}

// SemanticErrors returns the semantic error messages, if analysis ran.
func (r *Result) SemanticErrors() []string {
	if r.Analysis == nil {
		return nil
	}
	return r.Analysis.Messages()
}

// OK reports whether every stage succeeded.
func (r *Result) OK() bool { return r.Failed == StageNone }

// Err returns the diagnostics of the failed stage as one error, or nil.
func (r *Result) Err() error {
	var msgs []string
	switch r.Failed {
	case StageNone:
		return nil
	case StageLex:
		msgs = r.LexErrors
	case StageParse:
		msgs = r.SyntaxErrors
	case StageSemantic:
		msgs = r.SemanticErrors()
	case StageCodegen:
		msgs = r.Warnings
	}
	return &Diagnostics{Stage: r.Failed, Messages: msgs}
}

// Compile runs the whole pipeline on src with default options.
func Compile(src string) *Result {
	return CompileWith(src, Options{})
}

// CompileWith runs Lex, Parse, Analyze and Generate in order. Lexical errors
// block parsing, syntax errors block analysis and semantic errors block code
// generation.
func CompileWith(src string, opts Options) *Result {
	r := &Result{}

	r.Tokens, r.LexErrors = Lex(src)
	if len(r.LexErrors) > 0 {
		r.Failed = StageLex
		return r
	}

	r.AST, r.SyntaxErrors = Parse(r.Tokens)
	if len(r.SyntaxErrors) > 0 {
		r.Failed = StageParse
		return r
	}

	r.Analysis = Analyze(r.AST)
	if len(r.Analysis.Errors) > 0 {
		r.Failed = StageSemantic
		return r
	}

	r.TAC, r.Warnings = GenerateWithWarnings(r.AST)
	if opts.Verify {
		if err := Verify(r.TAC); err != nil {
			r.Warnings = append(r.Warnings, err.Error())
			r.Failed = StageCodegen
		}
	}
	return r
}
