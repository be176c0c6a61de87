// Package report renders the output of each compiler stage for people:
// token and instruction tables, the AST outline, the symbol table and
// colored diagnostics.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"gotac/pkg/compiler"
	"gotac/pkg/tac"
)

// Printer writes stage reports to Out. Table selects bordered tables over
// the plain listings; Color enables ANSI colors in diagnostics.
type Printer struct {
	Out   io.Writer
	Table bool
	Color bool
}

func (p *Printer) table(header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(p.Out)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

// Tokens lists every token with its line, type, lexeme and decoded value.
func (p *Printer) Tokens(toks []compiler.Token) {
	if !p.Table {
		for _, tok := range toks {
			fmt.Fprintf(p.Out, "%d\t%s\t%s\n", tok.Line, tok.Type, tok.Lexeme)
		}
		return
	}
	t := p.table("Line", "Type", "Lexeme", "Value")
	for _, tok := range toks {
		t.Append([]string{strconv.Itoa(tok.Line), tok.Type.String(), tok.Lexeme, tokenValue(tok)})
	}
	t.Render()
}

func tokenValue(tok compiler.Token) string {
	switch tok.Type {
	case compiler.INT_LIT, compiler.FLOAT_LIT, compiler.CHAR_LIT, compiler.STRING_LIT, compiler.TRUE, compiler.FALSE:
		return tok.Value.String()
	}
	return ""
}

// TAC lists the instructions of prog.
func (p *Printer) TAC(prog *tac.Program) {
	if !p.Table {
		io.WriteString(p.Out, prog.String())
		return
	}
	t := p.table("#", "Op", "Arg1", "Arg2", "Result")
	for i, q := range prog.Quads {
		f := q.Fields()
		t.Append([]string{strconv.Itoa(i), f[0], f[1], f[2], f[3]})
	}
	t.Render()
}

// Symbols lists every scope ever opened with its symbols.
func (p *Printer) Symbols(syms *compiler.SymbolTable) {
	if !p.Table {
		io.WriteString(p.Out, syms.String())
		return
	}
	t := p.table("Scope", "Name", "Symbol", "Line")
	for i, sc := range syms.Scopes() {
		label := fmt.Sprintf("%d (%s)", i, sc.Name)
		if len(sc.Names()) == 0 {
			t.Append([]string{label, "", "(empty)", ""})
			continue
		}
		for _, name := range sc.Names() {
			sym, _ := sc.Get(name)
			t.Append([]string{label, name, sym.String(), strconv.Itoa(sym.Line)})
		}
	}
	t.Render()
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
}

// Dump writes every field of the tree.
func (p *Printer) Dump(prog *compiler.Program) {
	dumper.Fdump(p.Out, prog)
}

// Tree writes an indented outline of the tree, one node per line.
func (p *Printer) Tree(prog *compiler.Program) {
	fmt.Fprintf(p.Out, "Program\n")
	for _, s := range prog.Stmts {
		p.stmt(s, 1)
	}
}

func (p *Printer) line(depth int, format string, args ...interface{}) {
	fmt.Fprintf(p.Out, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (p *Printer) block(b *compiler.Block, depth int) {
	for _, s := range b.Stmts {
		p.stmt(s, depth)
	}
}

func (p *Printer) stmt(s compiler.Stmt, depth int) {
	switch n := s.(type) {
	case *compiler.FuncDecl:
		params := make([]string, len(n.Params))
		for i, prm := range n.Params {
			params[i] = prm.String()
		}
		p.line(depth, "FuncDecl %s(%s)", n.Name, strings.Join(params, ", "))
		p.block(n.Body, depth+1)
	case *compiler.Block:
		p.line(depth, "Block")
		p.block(n, depth+1)
	case *compiler.If:
		p.line(depth, "If %s", n.Cond)
		p.block(n.Then, depth+1)
		for e := n.Elif; e != nil; e = e.Next {
			p.line(depth, "Elif %s", e.Cond)
			p.block(e.Body, depth+1)
		}
		if n.Else != nil {
			p.line(depth, "Else")
			p.block(n.Else, depth+1)
		}
	case *compiler.While:
		p.line(depth, "While %s", n.Cond)
		p.block(n.Body, depth+1)
	case *compiler.For:
		p.line(depth, "For %s; %s; %s", n.Init, n.Cond, n.Step)
		p.block(n.Body, depth+1)
	default:
		p.line(depth, "%s", s)
	}
}

// Diagnostics prints the outcome of a pipeline run: the messages of the
// failed stage in red, code generation warnings in yellow, or a green OK.
// It returns the number of error lines written.
func (p *Printer) Diagnostics(name string, r *compiler.Result) int {
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen)
	for _, c := range []*color.Color{red, yellow, green} {
		if p.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	if r.OK() {
		for _, w := range r.Warnings {
			yellow.Fprintln(p.Out, w)
		}
		green.Fprintf(p.Out, "%s: OK\n", name)
		return 0
	}

	var msgs []string
	switch r.Failed {
	case compiler.StageLex:
		msgs = r.LexErrors
	case compiler.StageParse:
		msgs = r.SyntaxErrors
	case compiler.StageSemantic:
		msgs = r.SemanticErrors()
	case compiler.StageCodegen:
		msgs = r.Warnings
	}
	red.Fprintf(p.Out, "%s: %s failed\n", name, r.Failed)
	for _, m := range msgs {
		red.Fprintln(p.Out, "  "+m)
	}
	return len(msgs)
}
