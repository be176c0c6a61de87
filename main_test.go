//go:build !js

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gotac/pkg/vm"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

// runApp runs the CLI with args and returns what it wrote to stdout and
// stderr.
func runApp(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	app := newApp()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut

	saved := stdin
	stdin = strings.NewReader(input)
	defer func() { stdin = saved }()

	err := app.Run(append([]string{"gotac", "--verbosity", "1"}, args...))
	return out.String(), errOut.String(), err
}

func TestTACCommand(t *testing.T) {
	path := writeSource(t, t.TempDir(), "p.src", "int x = 5;")

	out, _, err := runApp(t, "", "--format", "plain", "tac", path)
	require.NoError(t, err)
	assert.Equal(t, "0: (=, 5, _, t1)\n1: (=, t1, _, x)\n", out)

	out, _, err = runApp(t, "", "tac", "--symbols", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Result")
	assert.Contains(t, out, "0 (global)")
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "double.src", "int n; input(n); print(n * 2);")

	out, _, err := runApp(t, "21\n", "run", path)
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)

	loop := writeSource(t, dir, "loop.src", "int i = 0; while (true) { i = i + 1; }")
	_, _, err = runApp(t, "", "run", "--max-steps", "50", loop)
	assert.True(t, errors.Is(err, vm.ErrStepLimit), "got %v", err)
}

func TestCompileFailures(t *testing.T) {
	dir := t.TempDir()
	lexBad := writeSource(t, dir, "lex.src", "int @x;")
	parseBad := writeSource(t, dir, "parse.src", "int x = ;")
	semBad := writeSource(t, dir, "sem.src", "y = 1;")

	tests := []struct {
		args   []string
		stderr string
	}{
		{[]string{"tokens", lexBad}, "lexical analysis failed"},
		{[]string{"ast", parseBad}, "Syntax Error at line 1: unexpected token ';'"},
		{[]string{"tac", semBad}, "Semantic Error: 'y' is not defined"},
		{[]string{"run", semBad}, "semantic analysis failed"},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			_, stderr, err := runApp(t, "", tt.args...)
			assert.Equal(t, errCompileFailed, err)
			assert.Contains(t, stderr, tt.stderr)
		})
	}
}

func TestTokensAndAST(t *testing.T) {
	path := writeSource(t, t.TempDir(), "p.src", "int x = 5;\nwhile (x > 0) { x = x - 1; }")

	out, _, err := runApp(t, "", "--format", "plain", "tokens", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "1\tINT\tint\n"), out)
	assert.True(t, strings.HasSuffix(out, "2\tEOF\t\n"), out)

	out, _, err = runApp(t, "", "ast", path)
	require.NoError(t, err)
	assert.Equal(t, "Program\n  VarDecl(int x = 5)\n  While (x > 0)\n    Assign(x = (x - 1))\n", out)

	out, _, err = runApp(t, "", "ast", "--raw", path)
	require.NoError(t, err)
	assert.Contains(t, out, `Name: (string) (len=1) "x"`)
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "good.src", "int x;")
	bad := writeSource(t, dir, "bad.src", "int x; int x;")

	_, stderr, err := runApp(t, "", "--color", "never", "check", good, bad)
	require.EqualError(t, err, "1 of 2 files failed")
	assert.Contains(t, stderr, good+": OK\n")
	assert.Contains(t, stderr, bad+": semantic analysis failed\n  Semantic Error: redeclaration of 'x'\n")

	_, _, err = runApp(t, "", "check")
	assert.Error(t, err)
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	a := writeSource(t, dir, "a.src", "int x = 1;")
	b := writeSource(t, dir, "b.src", "print(2);")
	c := writeSource(t, dir, "c.src", "int x = 1;")

	_, _, err := runApp(t, "", "build", "--out", out, a, b, c)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "a.tac"))
	require.NoError(t, err)
	assert.Equal(t, "0: (=, 1, _, t1)\n1: (=, t1, _, x)\n", string(data))

	data, err = os.ReadFile(filepath.Join(out, "b.tac"))
	require.NoError(t, err)
	assert.Equal(t, "0: (=, 2, _, t1)\n1: (print, t1, _, _)\n", string(data))
	assert.FileExists(t, filepath.Join(out, "c.tac"))

	bad := writeSource(t, dir, "bad.src", "int x = ;")
	_, stderr, err := runApp(t, "", "build", a, bad)
	require.EqualError(t, err, "1 of 2 files failed")
	assert.Contains(t, stderr, "parsing failed")
	assert.FileExists(t, filepath.Join(dir, "a.tac"))
	assert.NoFileExists(t, filepath.Join(dir, "bad.tac"))
}

func TestDumpConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeSource(t, dir, "gotac.toml", "[VM]\nMaxSteps = 7\n")

	out, _, err := runApp(t, "", "--config", cfgPath, "--color", "always", "dumpconfig")
	require.NoError(t, err)
	assert.Contains(t, out, "MaxSteps = 7")
	assert.Contains(t, out, `Color = "always"`)
	assert.Contains(t, out, `Level = "error"`)

	dump := filepath.Join(dir, "dump.toml")
	_, _, err = runApp(t, "", "dumpconfig", dump)
	require.NoError(t, err)
	assert.FileExists(t, dump)
}

func TestGlobalFlagErrors(t *testing.T) {
	path := writeSource(t, t.TempDir(), "p.src", "int x;")
	tests := [][]string{
		{"--color", "rainbow", "tac", path},
		{"--format", "xml", "tac", path},
		{"--verbosity", "9", "tac", path},
		{"--config", filepath.Join(t.TempDir(), "missing.toml"), "tac", path},
	}
	for _, args := range tests {
		app := newApp()
		app.Writer = &bytes.Buffer{}
		app.ErrWriter = &bytes.Buffer{}
		err := app.Run(append([]string{"gotac"}, args...))
		assert.Error(t, err, strings.Join(args, " "))
	}
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitAndTrim(" http://a, ,http://b "))
	assert.Nil(t, splitAndTrim(""))
}
