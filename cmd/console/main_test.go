package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// script answers prompts from a fixed list of lines, then reports err.
type script struct {
	lines   []string
	err     error
	prompts []string
	history []string
}

func (s *script) Prompt(p string) (string, error) {
	s.prompts = append(s.prompts, p)
	if len(s.lines) == 0 {
		return "", s.err
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *script) AppendHistory(item string) { s.history = append(s.history, item) }

func TestLoopRunsEachProgram(t *testing.T) {
	s := &script{
		lines: []string{
			"int n;",
			"input(n);",
			"print(n * n);",
			"end",
			"7",
			"",
			"end",
			"print(y);",
			"end",
		},
		err: io.EOF,
	}
	var out bytes.Buffer
	c := &console{prompter: s, out: &out, maxSteps: 1000}
	require.NoError(t, c.loop())

	got := out.String()
	assert.Contains(t, got, "<console>: OK\n49\n")
	assert.Contains(t, got, "<console>: semantic analysis failed\n  Semantic Error: 'y' is not defined\n")
	assert.Equal(t, []string{"int n;", "input(n);", "print(n * n);", "print(y);"}, s.history)
	assert.Equal(t, []string{"> ", ". ", ". ", ". ", "? ", "> ", ". ", "> ", ". ", "> "}, s.prompts)
}

func TestLoopStopsOnAbort(t *testing.T) {
	s := &script{lines: []string{"int x;"}, err: liner.ErrPromptAborted}
	c := &console{prompter: s, out: &bytes.Buffer{}}
	assert.NoError(t, c.loop())
}

func TestReadProgramFinishesAtEOF(t *testing.T) {
	s := &script{lines: []string{"int x = 1;", "print(x);"}, err: io.EOF}
	c := &console{prompter: s, out: &bytes.Buffer{}}
	src, err := c.readProgram()
	require.NoError(t, err)
	assert.Equal(t, "int x = 1;\nprint(x);", src)
}

func TestExecute(t *testing.T) {
	var out bytes.Buffer
	c := &console{out: &out, showTAC: true, maxSteps: 10}

	require.NoError(t, c.execute("p.src", "print(1 + 2);", strings.NewReader("")))
	assert.Contains(t, out.String(), "0: (=, 1, _, t1)")
	assert.True(t, strings.HasSuffix(out.String(), "3\n"), out.String())

	out.Reset()
	err := c.execute("loop.src", "while (true) { print(1); }", strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, out.String(), "step limit exceeded")

	assert.Equal(t, errCompileFailed, c.execute("bad.src", "int x = ;", strings.NewReader("")))
}
