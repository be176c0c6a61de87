package main

import (
	"bytes"
	"fmt"
	"strings"

	"gotac/pkg/compiler"
	"gotac/pkg/report"
)

// Tab titles, in display order.
var tabTitles = []string{"Source", "Lexer", "Parser", "Semantic", "CodeGen"}

// tab is the rendered text of one pipeline stage.
type tab struct {
	title string
	lines []string
	// failed marks a stage that reported errors.
	failed bool
}

// buildTabs compiles src and renders every stage into a tab. Stages that
// did not run say why.
func buildTabs(src string) ([]tab, *compiler.Result) {
	r := compiler.CompileWith(src, compiler.Options{Verify: true})
	tabs := make([]tab, len(tabTitles))
	for i, title := range tabTitles {
		tabs[i].title = title
	}

	var buf bytes.Buffer
	p := &report.Printer{Out: &buf, Table: true}
	flush := func(t *tab) {
		t.lines = append(t.lines, splitLines(buf.String())...)
		buf.Reset()
	}

	for i, line := range splitLines(src) {
		tabs[0].lines = append(tabs[0].lines, fmt.Sprintf("%4d  %s", i+1, strings.ReplaceAll(line, "\t", "    ")))
	}

	lexer := &tabs[1]
	p.Tokens(r.Tokens)
	flush(lexer)
	if len(r.LexErrors) > 0 {
		lexer.failed = true
		lexer.lines = append(lexer.lines, "", "Lexical Errors:")
		lexer.lines = append(lexer.lines, r.LexErrors...)
	}

	parser := &tabs[2]
	switch {
	case r.AST == nil:
		parser.lines = skipped(compiler.StageLex)
	case len(r.SyntaxErrors) > 0:
		parser.failed = true
		parser.lines = append([]string{"Syntax Errors:"}, r.SyntaxErrors...)
	default:
		parser.lines = append(parser.lines, "Syntax OK", "")
		p.Tree(r.AST)
		flush(parser)
	}

	semantic := &tabs[3]
	if r.Analysis == nil {
		semantic.lines = skipped(r.Failed)
	} else {
		if msgs := r.SemanticErrors(); len(msgs) > 0 {
			semantic.failed = true
			semantic.lines = append([]string{"Semantic Errors:"}, msgs...)
		} else {
			semantic.lines = []string{"Semantic Analysis OK"}
		}
		semantic.lines = append(semantic.lines, "", "Symbol Table:")
		p.Symbols(r.Analysis.Symbols)
		flush(semantic)
	}

	codegen := &tabs[4]
	if r.TAC == nil {
		codegen.lines = skipped(r.Failed)
	} else {
		p.TAC(r.TAC)
		flush(codegen)
		if len(r.Warnings) > 0 {
			codegen.failed = r.Failed == compiler.StageCodegen
			codegen.lines = append(codegen.lines, "", "Warnings:")
			codegen.lines = append(codegen.lines, r.Warnings...)
		}
	}
	return tabs, r
}

func skipped(failed compiler.Stage) []string {
	return []string{fmt.Sprintf("Skipped: %s failed.", failed)}
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// viewer is the window state that does not depend on the graphics backend.
type viewer struct {
	tabs    []tab
	result  *compiler.Result
	current int
	scroll  int
	rows    int
}

func (v *viewer) load(src string) {
	v.tabs, v.result = buildTabs(src)
	v.scroll = 0
}

func (v *viewer) selectTab(i int) {
	if i < 0 || i >= len(v.tabs) {
		return
	}
	v.current = i
	v.scroll = 0
}

func (v *viewer) nextTab() { v.selectTab((v.current + 1) % len(v.tabs)) }

// scrollBy moves the view by n lines, keeping the last page in view.
func (v *viewer) scrollBy(n int) {
	v.scroll += n
	if last := len(v.tabs[v.current].lines) - v.rows; v.scroll > last {
		v.scroll = last
	}
	if v.scroll < 0 {
		v.scroll = 0
	}
}

// visible returns the lines of the current tab that fit on screen.
func (v *viewer) visible() []string {
	lines := v.tabs[v.current].lines
	end := v.scroll + v.rows
	if end > len(lines) {
		end = len(lines)
	}
	return lines[v.scroll:end]
}

// status summarizes the last compilation for the bottom line.
func (v *viewer) status() string {
	if v.result.OK() {
		return fmt.Sprintf("OK: %d instructions", len(v.result.TAC.Quads))
	}
	msg := v.result.Err().Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
