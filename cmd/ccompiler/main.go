package main

import (
	"fmt"
	"io"
	"os"

	"gotac/pkg/compiler"
	"gotac/pkg/report"
	"gotac/pkg/utils"
)

const testSource = `int x = 10;
int y = 20;
if (x < y) {
    print(y - x);
}
`

func main() {
	src := testSource
	name := "<builtin>"
	if len(os.Args) > 1 {
		fullPath, data, err := utils.ReadSource(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src, name = data, fullPath
	}
	os.Exit(dump(os.Stdout, os.Stderr, name, src))
}

// dump prints every stage that ran and returns the process exit code.
func dump(out, errOut io.Writer, name, src string) int {
	p := &report.Printer{Out: out, Table: true}
	r := compiler.CompileWith(src, compiler.Options{Verify: true})

	fmt.Fprintf(out, "Source (%s):\n%s\n", name, src)

	fmt.Fprintf(out, "Tokens (%d)\n", len(r.Tokens))
	p.Tokens(r.Tokens)
	fmt.Fprintln(out)

	if r.AST != nil && len(r.SyntaxErrors) == 0 {
		fmt.Fprintln(out, "AST")
		p.Tree(r.AST)
		fmt.Fprintln(out)
	}

	if r.Analysis != nil {
		fmt.Fprintln(out, "Symbols")
		p.Symbols(r.Analysis.Symbols)
		fmt.Fprintln(out)
	}

	if r.TAC != nil {
		fmt.Fprintln(out, "Generated TAC")
		p.TAC(r.TAC)
		fmt.Fprintln(out)
	}

	diag := &report.Printer{Out: errOut}
	if diag.Diagnostics(name, r) > 0 {
		return 1
	}
	return 0
}
