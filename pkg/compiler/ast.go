package compiler

import (
	"fmt"
	"strings"
)

// Node is implemented by every AST node. Line is the 1-based source line of
// the token that starts the node.
type Node interface {
	Pos() int
	String() string
}

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// Location is an expression that names storage: a variable or an array
// element. It is the target of assignments.
type Location interface {
	Expr
	Ident() string
}

// Literal is a compile-time constant.
//
//	int x = 10;
//	        ^^  Literal{Value: IntValue(10)}
type Literal struct {
	Value Value
	Line  int
}

func (*Literal) exprNode()        {}
func (l *Literal) Pos() int       { return l.Line }
func (l *Literal) String() string { return l.Value.String() }

// Loc is a plain variable reference.
//
//	y = x;
//	    ^  Loc{Name: "x"}
type Loc struct {
	Name string
	Line int
}

func (*Loc) exprNode()        {}
func (v *Loc) Pos() int       { return v.Line }
func (v *Loc) Ident() string  { return v.Name }
func (v *Loc) String() string { return v.Name }

// LocArray is an indexed array element: Name[Index].
type LocArray struct {
	Name  string
	Index Expr
	Line  int
}

func (*LocArray) exprNode()        {}
func (a *LocArray) Pos() int       { return a.Line }
func (a *LocArray) Ident() string  { return a.Name }
func (a *LocArray) String() string { return fmt.Sprintf("%s[%s]", a.Name, a.Index) }

// BinOp represents a binary operation: Left Op Right.
//
//	x + 1
//	^ ^ ^
//	| | |
//	| | Right
//	| Op
//	Left
type BinOp struct {
	Op    string
	Left  Expr
	Right Expr
	Line  int
}

func (*BinOp) exprNode()  {}
func (b *BinOp) Pos() int { return b.Line }
func (b *BinOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// Unary represents a prefix operation: "!" or "-".
type Unary struct {
	Op      string
	Operand Expr
	Line    int
}

func (*Unary) exprNode()        {}
func (u *Unary) Pos() int       { return u.Line }
func (u *Unary) String() string { return fmt.Sprintf("(%s%s)", u.Op, u.Operand) }

// Call represents name(args). Functions never return a value, so a Call is
// only meaningful wrapped in a CallStmt.
type Call struct {
	Name string
	Args []Expr
	Line int
}

func (*Call) exprNode()  {}
func (c *Call) Pos() int { return c.Line }
func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(args, ", "))
}

//  Statement nodes

// Stmt is implemented by every node that may appear in a program or block.
// Declarations are statements too.
type Stmt interface {
	Node
	stmtNode()
}

// VarDecl represents  type name;  or  type name = expr;
type VarDecl struct {
	Type TokenType
	Name string
	Init Expr // may be nil
	Line int
}

func (*VarDecl) stmtNode()  {}
func (d *VarDecl) Pos() int { return d.Line }
func (d *VarDecl) String() string {
	if d.Init == nil {
		return fmt.Sprintf("VarDecl(%s %s)", typeOfKeyword(d.Type), d.Name)
	}
	return fmt.Sprintf("VarDecl(%s %s = %s)", typeOfKeyword(d.Type), d.Name, d.Init)
}

// VarDeclArray represents  type name[size];
// The parser only accepts an integer literal for Size.
type VarDeclArray struct {
	Type TokenType
	Name string
	Size Expr
	Line int
}

func (*VarDeclArray) stmtNode()  {}
func (d *VarDeclArray) Pos() int { return d.Line }
func (d *VarDeclArray) String() string {
	return fmt.Sprintf("VarDeclArray(%s %s[%s])", typeOfKeyword(d.Type), d.Name, d.Size)
}

// Param is one formal parameter of a function.
type Param struct {
	Type TokenType
	Name string
	Line int
}

func (p *Param) Pos() int       { return p.Line }
func (p *Param) String() string { return fmt.Sprintf("%s %s", typeOfKeyword(p.Type), p.Name) }

// FuncDecl represents  func name(params) { body }
type FuncDecl struct {
	Name   string
	Params []*Param
	Body   *Block
	Line   int
}

func (*FuncDecl) stmtNode()  {}
func (f *FuncDecl) Pos() int { return f.Line }
func (f *FuncDecl) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("FuncDecl(%s(%s), body=%s)", f.Name, strings.Join(params, ", "), f.Body)
}

// Block represents { item; ... }
type Block struct {
	Stmts []Stmt
	Line  int
}

func (*Block) stmtNode()        {}
func (b *Block) Pos() int       { return b.Line }
func (b *Block) String() string { return fmt.Sprintf("Block(len=%d)", len(b.Stmts)) }

// CallStmt is a function call evaluated for its effects.
type CallStmt struct {
	Call *Call
}

func (*CallStmt) stmtNode()        {}
func (s *CallStmt) Pos() int       { return s.Call.Line }
func (s *CallStmt) String() string { return fmt.Sprintf("CallStmt(%s)", s.Call) }

// Assign represents  target = value;
type Assign struct {
	Target Location
	Value  Expr
	Line   int
}

func (*Assign) stmtNode()  {}
func (a *Assign) Pos() int { return a.Line }
func (a *Assign) String() string {
	return fmt.Sprintf("Assign(%s = %s)", a.Target, a.Value)
}

// If represents if (cond) then [elif ...] [else ...]. Elif and Else may be nil.
type If struct {
	Cond Expr
	Then *Block
	Elif *Elif
	Else *Block
	Line int
}

func (*If) stmtNode()  {}
func (i *If) Pos() int { return i.Line }
func (i *If) String() string {
	return fmt.Sprintf("If(%s then %s elif %v else %v)", i.Cond, i.Then, i.Elif, i.Else)
}

// Elif is one link of an elif chain; Next may be nil.
type Elif struct {
	Cond Expr
	Body *Block
	Next *Elif
	Line int
}

func (e *Elif) Pos() int { return e.Line }
func (e *Elif) String() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Elif(%s then %s next %v)", e.Cond, e.Body, e.Next)
}

// While represents while (cond) body
type While struct {
	Cond Expr
	Body *Block
	Line int
}

func (*While) stmtNode()        {}
func (w *While) Pos() int       { return w.Line }
func (w *While) String() string { return fmt.Sprintf("While(%s do %s)", w.Cond, w.Body) }

// For represents for (init; cond; step) body
type For struct {
	Init *Assign
	Cond Expr
	Step *Assign
	Body *Block
	Line int
}

func (*For) stmtNode()  {}
func (f *For) Pos() int { return f.Line }
func (f *For) String() string {
	return fmt.Sprintf("For(init=%s, cond=%s, step=%s, body=%s)", f.Init, f.Cond, f.Step, f.Body)
}

// Print represents print(expr);
type Print struct {
	Value Expr
	Line  int
}

func (*Print) stmtNode()        {}
func (p *Print) Pos() int       { return p.Line }
func (p *Print) String() string { return fmt.Sprintf("Print(%s)", p.Value) }

// Input represents input(name);
type Input struct {
	Name string
	Line int
}

func (*Input) stmtNode()        {}
func (i *Input) Pos() int       { return i.Line }
func (i *Input) String() string { return fmt.Sprintf("Input(%s)", i.Name) }

// Return represents return; or return expr;
type Return struct {
	Value Expr // may be nil
	Line  int
}

func (*Return) stmtNode()  {}
func (r *Return) Pos() int { return r.Line }
func (r *Return) String() string {
	if r.Value == nil {
		return "Return"
	}
	return fmt.Sprintf("Return(%s)", r.Value)
}

// Break represents break;
type Break struct{ Line int }

func (*Break) stmtNode()        {}
func (b *Break) Pos() int       { return b.Line }
func (b *Break) String() string { return "Break" }

// Continue represents continue;
type Continue struct{ Line int }

func (*Continue) stmtNode()        {}
func (c *Continue) Pos() int       { return c.Line }
func (c *Continue) String() string { return "Continue" }

// Program is the root of the tree: top-level declarations and statements in
// source order.
type Program struct {
	Stmts []Stmt
}

func (p *Program) Pos() int       { return 1 }
func (p *Program) String() string { return fmt.Sprintf("Program(len=%d)", len(p.Stmts)) }
