// Package compiler provides the lexer, parser, semantic analyzer and
// three-address code generator for a small typed imperative language.
//
// Pipeline: source → Lex → Parse → Analyze → Generate → tac.Program
//
// Every stage returns its diagnostics next to its output and never stops at
// the first error. Compile runs the stages in order and stops after the
// first stage that reported errors.
package compiler
