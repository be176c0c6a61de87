package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzeSource(t *testing.T, src string) *Analysis {
	t.Helper()
	prog, errs := parseSource(t, src)
	require.Empty(t, errs, "parsing %q", src)
	return Analyze(prog)
}

func kinds(errs []*SemanticError) []ErrorKind {
	out := make([]ErrorKind, len(errs))
	for i, e := range errs {
		out[i] = e.Kind
	}
	return out
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kinds    []ErrorKind
		messages []string
	}{
		{
			name:  "int widens to float",
			input: "int x = 5; float y; y = x; print(y);",
		},
		{
			name:     "duplicate declaration",
			input:    "int x; int x;",
			kinds:    []ErrorKind{DuplicateSymbol},
			messages: []string{"Semantic Error: redeclaration of 'x'"},
		},
		{
			name:     "non-boolean while condition",
			input:    "while (1) { print(1); }",
			kinds:    []ErrorKind{NonBooleanCondition},
			messages: []string{"Semantic Error: Condition of while must be bool"},
		},
		{
			name:     "void function returning a value",
			input:    "func f(int a) { return a; }",
			kinds:    []ErrorKind{VoidReturnWithValue},
			messages: []string{"Semantic Error: Void function cannot return a value"},
		},
		{
			name:     "float does not narrow to int",
			input:    "int x; x = 1.5;",
			kinds:    []ErrorKind{TypeMismatch},
			messages: []string{"Semantic Error: Cannot assign float to int"},
		},
		{
			name:  "float initialized from int literal",
			input: "float f = 1;",
		},
		{
			name:     "block variable is gone after the block",
			input:    "{ int y; y = 1; } y = 2;",
			kinds:    []ErrorKind{UndefinedSymbol},
			messages: []string{"Semantic Error: 'y' is not defined"},
		},
		{
			name:     "for body variable is gone after the loop",
			input:    "int i; for (i = 0; i < 3; i = i + 1) { int k; k = i; } k = 1;",
			kinds:    []ErrorKind{UndefinedSymbol},
			messages: []string{"Semantic Error: 'k' is not defined"},
		},
		{
			name:  "inner scope shadows outer",
			input: "int x; { float x; x = 1.5; } x = 2;",
		},
		{
			name:     "indexing a scalar",
			input:    "int a; a[0] = 1;",
			kinds:    []ErrorKind{NotAnArray},
			messages: []string{"Semantic Error: 'a' is not an array"},
		},
		{
			name:  "index of a scalar is still checked",
			input: "int x; x[y] = 1;",
			kinds: []ErrorKind{UndefinedSymbol, NotAnArray},
			messages: []string{
				"Semantic Error: 'y' is not defined",
				"Semantic Error: 'x' is not an array",
			},
		},
		{
			name:  "index of an undefined array is still checked",
			input: "q[y] = 1;",
			kinds: []ErrorKind{UndefinedSymbol, UndefinedSymbol},
		},
		{
			name:     "float index",
			input:    "int a[3]; a[1.5] = 1;",
			kinds:    []ErrorKind{InvalidIndexType},
			messages: []string{"Semantic Error: Array index must be int"},
		},
		{
			name:  "array element types",
			input: "float a[3]; a[0] = 1; a[1] = a[0] * 2.5; print(a[1]);",
		},
		{
			name:  "zero-length array",
			input: "int a[0];",
			kinds: []ErrorKind{InvalidArraySize},
		},
		{
			name:     "return at top level",
			input:    "return;",
			kinds:    []ErrorKind{ReturnOutsideFunction},
			messages: []string{"Semantic Error: Return outside of function"},
		},
		{
			name:     "break outside loop",
			input:    "break;",
			kinds:    []ErrorKind{BreakOutsideLoop},
			messages: []string{"Semantic Error: 'break' outside of loop"},
		},
		{
			name:  "loops do not reach into function bodies",
			input: "while (true) { func g() { continue; } }",
			kinds: []ErrorKind{BreakOutsideLoop},
		},
		{
			name:  "break and continue inside loops",
			input: "int i; for (i = 0; i < 9; i = i + 1) { if (i == 3) { continue; } while (true) { break; } }",
		},
		{
			name:     "logical operator on int",
			input:    "bool b = 1 && true;",
			kinds:    []ErrorKind{InvalidOperandType},
			messages: []string{"Semantic Error: Logical operators require bool"},
		},
		{
			name:     "comparison of different types",
			input:    "bool b = 1 < 1.5;",
			kinds:    []ErrorKind{TypeMismatch},
			messages: []string{"Semantic Error: Type mismatch in comparison"},
		},
		{
			name:     "arithmetic on bool",
			input:    "int x = true + 1;",
			kinds:    []ErrorKind{InvalidOperandType},
			messages: []string{"Semantic Error: Invalid operands for arithmetic"},
		},
		{
			name:     "arithmetic on strings",
			input:    `string s = "a" + "b";`,
			kinds:    []ErrorKind{InvalidOperandType},
			messages: []string{"Semantic Error: Invalid operands for arithmetic"},
		},
		{
			name:  "float operand makes arithmetic float",
			input: `float f = 1.5 + true; float g = 2.0 * "s"; float h = 'c' - 0.5;`,
		},
		{
			name:     "int and char arithmetic",
			input:    "int x = 1 + 'c';",
			kinds:    []ErrorKind{InvalidOperandType},
			messages: []string{"Semantic Error: Invalid operands for arithmetic"},
		},
		{
			name:  "mixed arithmetic is float",
			input: "float f = 1 + 2.5; int i = 7 % 2;",
		},
		{
			name:     "mixed arithmetic does not narrow",
			input:    "int i = 1 + 2.5;",
			kinds:    []ErrorKind{TypeMismatch},
			messages: []string{"Semantic Error: Cannot assign float to int"},
		},
		{
			name:     "not on int",
			input:    "bool b = !1;",
			kinds:    []ErrorKind{InvalidOperandType},
			messages: []string{"Semantic Error: Logical NOT requires bool"},
		},
		{
			name:     "negating a bool",
			input:    "int x = -true;",
			kinds:    []ErrorKind{InvalidOperandType},
			messages: []string{"Semantic Error: Unary minus requires numeric"},
		},
		{
			name:  "char and string literals",
			input: "char c = 'x'; string s = \"x\"; bool same = c == 'y';",
		},
		{
			name:     "calling a variable",
			input:    "int f; f();",
			kinds:    []ErrorKind{NotAFunction},
			messages: []string{"Semantic Error: 'f' is not a function"},
		},
		{
			name:     "calling an undefined function",
			input:    "g();",
			kinds:    []ErrorKind{UndefinedSymbol},
			messages: []string{"Semantic Error: 'g' is not defined"},
		},
		{
			name:     "wrong argument count",
			input:    "func f(int a) { print(a); } f();",
			kinds:    []ErrorKind{ArityMismatch},
			messages: []string{"Semantic Error: Function argument count mismatch"},
		},
		{
			name:  "arguments of a bad call are still checked",
			input: "g(y); int f; f(!1); func h(int a) { print(a); } h(z, 1);",
			kinds: []ErrorKind{
				UndefinedSymbol, UndefinedSymbol,
				InvalidOperandType, NotAFunction,
				UndefinedSymbol, ArityMismatch,
			},
		},
		{
			name:     "wrong argument type",
			input:    "func f(int a) { print(a); } f(1.5);",
			kinds:    []ErrorKind{TypeMismatch},
			messages: []string{"Semantic Error: Cannot assign float to int"},
		},
		{
			name:  "argument widens to float",
			input: "func f(float a) { print(a); } f(1);",
		},
		{
			name:     "call used as a value",
			input:    "func f() { print(1); } int x = f();",
			kinds:    []ErrorKind{VoidValueUsed},
			messages: []string{"Semantic Error: Void function used in expression"},
		},
		{
			name:  "recursion",
			input: "func f(int n) { if (n > 0) { f(n - 1); } }",
		},
		{
			name:  "parameters are local",
			input: "func f(int a) { print(a); } print(a);",
			kinds: []ErrorKind{UndefinedSymbol},
		},
		{
			name:  "duplicate parameter",
			input: "func f(int a, int a) { print(a); }",
			kinds: []ErrorKind{DuplicateSymbol},
		},
		{
			name:  "undefined input target",
			input: "input(z);",
			kinds: []ErrorKind{UndefinedSymbol},
		},
		{
			name:  "failed operand does not cascade",
			input: "int x = y + 1; bool b = !(z < 2);",
			kinds: []ErrorKind{UndefinedSymbol, UndefinedSymbol},
		},
		{
			name:  "every condition of an elif chain is checked",
			input: "if (1) { print(1); } elif (2) { print(2); } elif (true) { print(3); }",
			messages: []string{
				"Semantic Error: Condition of if must be bool",
				"Semantic Error: Condition of elif must be bool",
			},
			kinds: []ErrorKind{NonBooleanCondition, NonBooleanCondition},
		},
		{
			name:  "for condition",
			input: "int i; for (i = 0; i + 1; i = i + 1) { print(i); }",
			kinds: []ErrorKind{NonBooleanCondition},
		},
		{
			name:  "analysis continues after errors",
			input: "int x; int x; bool b = 1; return;",
			kinds: []ErrorKind{DuplicateSymbol, TypeMismatch, ReturnOutsideFunction},
		},
		{
			name:  "duplicate function still has its body checked",
			input: "int f; func f() { x = 1; }",
			kinds: []ErrorKind{DuplicateSymbol, UndefinedSymbol},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := analyzeSource(t, tt.input)
			if len(tt.kinds) == 0 {
				assert.Empty(t, a.Messages())
				return
			}
			assert.Equal(t, tt.kinds, kinds(a.Errors), "messages: %v", a.Messages())
			if tt.messages != nil {
				assert.Equal(t, tt.messages, a.Messages())
			}
		})
	}
}

func TestAnalyzeErrorLines(t *testing.T) {
	a := analyzeSource(t, "int x;\nint y;\nx = true;\n")
	require.Len(t, a.Errors, 1)
	assert.Equal(t, 3, a.Errors[0].Line)
	assert.Equal(t, TypeMismatch, a.Errors[0].Kind)
}

func TestAnalyzeSymbolSnapshot(t *testing.T) {
	a := analyzeSource(t, "int g; func f(int a) { float b; } int i; for (i = 0; i < 1; i = i + 1) { print(i); }")

	names := make([]string, 0)
	for _, sc := range a.Symbols.Scopes() {
		names = append(names, sc.Name)
	}
	assert.Equal(t, []string{"global", "function:f", "block", "for_loop", "block"}, names)

	global := a.Symbols.Scopes()[0]
	assert.Equal(t, []string{"g", "f", "i"}, global.Names())
	f, ok := global.Get("f")
	require.True(t, ok)
	assert.Equal(t, TypeFunc, f.Type)
	require.Len(t, f.Params, 1)
	assert.Equal(t, "a", f.Params[0].Name)
}
