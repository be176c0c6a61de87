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

	"gotac/pkg/compiler"
	"gotac/pkg/vm"
)

func compileApp(t *testing.T, name string) *compiler.Result {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("..", "_apps", name))
	require.NoError(t, err)
	return compiler.CompileWith(string(src), compiler.Options{Verify: true})
}

func TestCompilerAndVM(t *testing.T) {
	tests := []struct {
		app    string
		input  string
		output []string
	}{
		{
			app:    "fib.src",
			input:  "7\n",
			output: []string{"0", "1", "1", "2", "3", "5", "8"},
		},
		{
			app:    "sort.src",
			output: []string{"1", "2", "3", "4", "5"},
		},
		{
			app:    "countdown.src",
			output: []string{"3", "2", "1", "3"},
		},
		{
			app:    "grades.src",
			input:  "ada\n80\n91\n-1\n",
			output: []string{"ada", "2", "85.5", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.app, func(t *testing.T) {
			r := compileApp(t, tt.app)
			require.True(t, r.OK(), "%v", r.Err())

			var output bytes.Buffer
			m := vm.New(r.TAC)
			m.Output = &output
			m.Input = strings.NewReader(tt.input)
			m.MaxSteps = 100000

			require.NoError(t, m.Run(), "TAC:\n%s", r.TAC)
			assert.True(t, m.Halted)
			assert.Zero(t, m.CallDepth(), "call stack unwound")
			assert.Equal(t, strings.Join(tt.output, "\n")+"\n", output.String())
		})
	}
}

func TestBrokenAppReportsEverySemanticError(t *testing.T) {
	r := compileApp(t, "broken.src")
	require.Equal(t, compiler.StageSemantic, r.Failed)
	assert.Equal(t, []string{
		"Semantic Error: Cannot assign int to bool",
		"Semantic Error: Condition of while must be bool",
		"Semantic Error: 'y' is not defined",
	}, r.SemanticErrors())
	assert.Nil(t, r.TAC, "code generation is gated on semantic errors")

	var d *compiler.Diagnostics
	require.True(t, errors.As(r.Err(), &d))
	assert.Len(t, d.Messages, 3)
}

func TestFibGlobalsAfterRun(t *testing.T) {
	r := compileApp(t, "fib.src")
	require.True(t, r.OK())

	m := vm.New(r.TAC)
	m.Output = &bytes.Buffer{}
	m.Input = strings.NewReader("10\n")
	require.NoError(t, m.Run())

	for name, want := range map[string]int64{"n": 10, "i": 10, "a": 55, "b": 89} {
		v, ok := m.Global(name)
		require.True(t, ok, name)
		assert.Equal(t, want, v.Int, name)
	}
}
