package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ignoreLines compares trees by shape only.
var ignoreLines = cmp.FilterPath(func(p cmp.Path) bool {
	sf, ok := p.Last().(cmp.StructField)
	return ok && sf.Name() == "Line"
}, cmp.Ignore())

func parseSource(t *testing.T, src string) (*Program, []string) {
	t.Helper()
	toks, lexErrs := Lex(src)
	require.Empty(t, lexErrs, "lexing %q", src)
	return Parse(toks)
}

func intLit(v int64) *Literal { return &Literal{Value: IntValue(v)} }
func loc(name string) *Loc    { return &Loc{Name: name} }

func bin(op string, l, r Expr) *BinOp { return &BinOp{Op: op, Left: l, Right: r} }

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Stmt
	}{
		{
			name:  "Variable Declaration",
			input: "int x = 10;",
			expected: []Stmt{
				&VarDecl{Type: INT, Name: "x", Init: intLit(10)},
			},
		},
		{
			name:  "Declaration without initializer",
			input: "string s;",
			expected: []Stmt{
				&VarDecl{Type: STRING, Name: "s"},
			},
		},
		{
			name:  "Array Declaration",
			input: "float a[3];",
			expected: []Stmt{
				&VarDeclArray{Type: FLOAT, Name: "a", Size: intLit(3)},
			},
		},
		{
			name:  "Precedence",
			input: "x = a + b * c;",
			expected: []Stmt{
				&Assign{Target: loc("x"), Value: bin("+", loc("a"), bin("*", loc("b"), loc("c")))},
			},
		},
		{
			name:  "Left associativity",
			input: "x = a - b - c;",
			expected: []Stmt{
				&Assign{Target: loc("x"), Value: bin("-", bin("-", loc("a"), loc("b")), loc("c"))},
			},
		},
		{
			name:  "Parentheses",
			input: "x = (a - b) % 2;",
			expected: []Stmt{
				&Assign{Target: loc("x"), Value: bin("%", bin("-", loc("a"), loc("b")), intLit(2))},
			},
		},
		{
			name:  "Logical precedence",
			input: "b = x < 1 || y == 2 && z;",
			expected: []Stmt{
				&Assign{Target: loc("b"), Value: bin("||",
					bin("<", loc("x"), intLit(1)),
					bin("&&", bin("==", loc("y"), intLit(2)), loc("z")),
				)},
			},
		},
		{
			name:  "Unary nesting",
			input: "x = !-a;",
			expected: []Stmt{
				&Assign{Target: loc("x"), Value: &Unary{Op: "!", Operand: &Unary{Op: "-", Operand: loc("a")}}},
			},
		},
		{
			name:  "Array element assignment",
			input: "a[i + 1] = b[0];",
			expected: []Stmt{
				&Assign{
					Target: &LocArray{Name: "a", Index: bin("+", loc("i"), intLit(1))},
					Value:  &LocArray{Name: "b", Index: intLit(0)},
				},
			},
		},
		{
			name:  "Function Declaration",
			input: "func f(int a, float b) { print(a); return; }",
			expected: []Stmt{
				&FuncDecl{
					Name:   "f",
					Params: []*Param{{Type: INT, Name: "a"}, {Type: FLOAT, Name: "b"}},
					Body: &Block{Stmts: []Stmt{
						&Print{Value: loc("a")},
						&Return{},
					}},
				},
			},
		},
		{
			name:  "Function Call Statements",
			input: "f(1, x); g();",
			expected: []Stmt{
				&CallStmt{Call: &Call{Name: "f", Args: []Expr{intLit(1), loc("x")}}},
				&CallStmt{Call: &Call{Name: "g"}},
			},
		},
		{
			name:  "If Elif Else",
			input: "if (a) { x = 1; } elif (b) { x = 2; } elif (c) { x = 3; } else { x = 4; }",
			expected: []Stmt{
				&If{
					Cond: loc("a"),
					Then: &Block{Stmts: []Stmt{&Assign{Target: loc("x"), Value: intLit(1)}}},
					Elif: &Elif{
						Cond: loc("b"),
						Body: &Block{Stmts: []Stmt{&Assign{Target: loc("x"), Value: intLit(2)}}},
						Next: &Elif{
							Cond: loc("c"),
							Body: &Block{Stmts: []Stmt{&Assign{Target: loc("x"), Value: intLit(3)}}},
						},
					},
					Else: &Block{Stmts: []Stmt{&Assign{Target: loc("x"), Value: intLit(4)}}},
				},
			},
		},
		{
			name:  "While with break and continue",
			input: "while (true) { break; continue; }",
			expected: []Stmt{
				&While{
					Cond: &Literal{Value: BoolValue(true)},
					Body: &Block{Stmts: []Stmt{&Break{}, &Continue{}}},
				},
			},
		},
		{
			name:  "For",
			input: "for (i = 0; i < 10; i = i + 1) { print(i); }",
			expected: []Stmt{
				&For{
					Init: &Assign{Target: loc("i"), Value: intLit(0)},
					Cond: bin("<", loc("i"), intLit(10)),
					Step: &Assign{Target: loc("i"), Value: bin("+", loc("i"), intLit(1))},
					Body: &Block{Stmts: []Stmt{&Print{Value: loc("i")}}},
				},
			},
		},
		{
			name:  "Input and nested block",
			input: "{ int y; input(y); }",
			expected: []Stmt{
				&Block{Stmts: []Stmt{
					&VarDecl{Type: INT, Name: "y"},
					&Input{Name: "y"},
				}},
			},
		},
		{
			name:  "Return with value",
			input: "return x + 1;",
			expected: []Stmt{
				&Return{Value: bin("+", loc("x"), intLit(1))},
			},
		},
		{
			name:  "Call inside expression",
			input: "x = f(2) * 3;",
			expected: []Stmt{
				&Assign{Target: loc("x"), Value: bin("*", &Call{Name: "f", Args: []Expr{intLit(2)}}, intLit(3))},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, errs := parseSource(t, tt.input)
			if len(errs) > 0 {
				t.Fatalf("Parse() unexpected errors: %v", errs)
			}
			if diff := cmp.Diff(tt.expected, prog.Stmts, ignoreLines); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRecordsLines(t *testing.T) {
	prog, errs := parseSource(t, "int x;\n\nwhile (x < 1) {\n  x = x + 1;\n}")
	require.Empty(t, errs)
	require.Len(t, prog.Stmts, 2)
	assert.Equal(t, 1, prog.Stmts[0].Pos())

	w := prog.Stmts[1].(*While)
	assert.Equal(t, 3, w.Pos())
	assert.Equal(t, 4, w.Body.Stmts[0].Pos())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errors []string
		stmts  int // statements that survived recovery
	}{
		{
			name:   "empty program",
			input:  "",
			errors: []string{"Syntax Error: unexpected end of input"},
		},
		{
			name:   "missing initializer",
			input:  "int x = ;",
			errors: []string{"Syntax Error at line 1: unexpected token ';'"},
		},
		{
			name:   "missing semicolon at end",
			input:  "int x = 5",
			errors: []string{"Syntax Error: unexpected end of input"},
		},
		{
			name:  "independent errors are all reported",
			input: "x = 1 +;\ny = ;\nprint(2);",
			errors: []string{
				"Syntax Error at line 1: unexpected token ';'",
				"Syntax Error at line 2: unexpected token ';'",
			},
			stmts: 1,
		},
		{
			name:   "empty block",
			input:  "func f() {}",
			errors: []string{"Syntax Error at line 1: unexpected token '}'"},
		},
		{
			name:   "array size must be a literal",
			input:  "int a[x];\nint b;",
			errors: []string{"Syntax Error at line 1: unexpected token 'x'"},
			stmts:  1,
		},
		{
			name:   "stray closing brace",
			input:  "}\nint y;",
			errors: []string{"Syntax Error at line 1: unexpected token '}'"},
			stmts:  1,
		},
		{
			name:   "error inside a function body",
			input:  "func f() {\n  x = ;\n  y = 2;\n}",
			errors: []string{"Syntax Error at line 2: unexpected token ';'"},
			stmts:  1,
		},
		{
			name:   "unclosed block",
			input:  "func f() { print(1);",
			errors: []string{"Syntax Error: unexpected end of input"},
		},
		{
			name:   "unclosed nested blocks",
			input:  "func f() { if (a) { print(1);",
			errors: []string{"Syntax Error: unexpected end of input"},
		},
		{
			name:   "literal values are shown decoded",
			input:  "int 0x10;",
			errors: []string{"Syntax Error at line 1: unexpected token '16'"},
		},
		{
			name:   "string values are shown without quotes",
			input:  `print "hello";`,
			errors: []string{"Syntax Error at line 1: unexpected token 'hello'"},
		},
		{
			name:   "for header without step",
			input:  "for (i = 0; i < 3) { print(i); }",
			errors: []string{"Syntax Error at line 1: unexpected token ')'"},
			stmts:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, errs := parseSource(t, tt.input)
			assert.Equal(t, tt.errors, errs)
			require.NotNil(t, prog)
			assert.Len(t, prog.Stmts, tt.stmts)
		})
	}
}
