package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"gotac/pkg/compiler"
	"gotac/pkg/config"
	"gotac/pkg/report"
	"gotac/pkg/utils"
	"gotac/pkg/vm"
)

var errCompileFailed = errors.New("compilation failed")

// prompter is the part of *liner.State the console uses.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type console struct {
	prompter prompter
	out      io.Writer
	showTAC  bool
	color    bool
	maxSteps int
}

// execute compiles src and runs it, reading program input from in.
func (c *console) execute(name, src string, in io.Reader) error {
	r := compiler.CompileWith(src, config.Defaults.CompileOptions())
	p := &report.Printer{Out: c.out, Color: c.color}
	if p.Diagnostics(name, r) > 0 {
		return errCompileFailed
	}
	if c.showTAC {
		p.TAC(r.TAC)
	}

	m := vm.New(r.TAC)
	m.Output = c.out
	m.Input = in
	m.MaxSteps = c.maxSteps
	if err := m.Run(); err != nil {
		fmt.Fprintln(c.out, err)
		return err
	}
	return nil
}

// readProgram collects lines until one reads "end". End of input finishes
// a partly typed program.
func (c *console) readProgram() (string, error) {
	var lines []string
	for {
		prompt := "> "
		if len(lines) > 0 {
			prompt = ". "
		}
		line, err := c.prompter.Prompt(prompt)
		if err != nil {
			if err == io.EOF && len(lines) > 0 {
				break
			}
			return "", err
		}
		if strings.TrimSpace(line) == "end" {
			break
		}
		if strings.TrimSpace(line) != "" {
			c.prompter.AppendHistory(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// loop reads and runs programs until the user quits.
func (c *console) loop() error {
	fmt.Fprintln(c.out, "Enter your program (type end on a separate line to run it, Ctrl-D to quit):")
	for {
		src, err := c.readProgram()
		switch {
		case err == io.EOF || err == liner.ErrPromptAborted:
			return nil
		case err != nil:
			return err
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		// Errors are already reported; the session goes on.
		c.execute("<console>", src, &promptReader{p: c.prompter})
	}
}

// promptReader serves the program's input instructions from the prompt,
// one line per read.
type promptReader struct {
	p   prompter
	buf []byte
}

func (r *promptReader) Read(b []byte) (int, error) {
	if len(r.buf) == 0 {
		line, err := r.p.Prompt("? ")
		if err != nil {
			return 0, io.EOF
		}
		r.buf = []byte(line + "\n")
	}
	n := copy(b, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func main() {
	c := &console{out: os.Stdout, maxSteps: config.Defaults.VM.MaxSteps}

	var filename string
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--show-tac":
			c.showTAC = true
		case "--color":
			c.color = true
		default:
			filename = arg
		}
	}

	if filename != "" {
		fullPath, src, err := utils.ReadSource(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read source file: %v\n", err)
			os.Exit(1)
		}
		if err := c.execute(fullPath, src, os.Stdin); err != nil {
			os.Exit(1)
		}
		return
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	c.prompter = line
	if err := c.loop(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
