package compiler

import (
	"fmt"
	"strings"

	"gotac/pkg/log"
	"gotac/pkg/tac"
)

const blank = tac.Blank

// CodeGen walks a checked AST and emits three-address code.
type CodeGen struct {
	prog      *tac.Program
	nextTemp  int
	nextLabel int
	loopStack []*LoopLabel
	curFunc   string
	log       log.Logger

	// scopes maps source names to TAC names, innermost scope last.
	scopes   []map[string]string
	declared map[string]int
	used     map[[2]string]bool // function, TAC name

	// Warnings lists the nodes that had no lowering rule.
	Warnings []string
}

// LoopLabel holds the jump targets of the innermost loops.
type LoopLabel struct {
	Start string
	End   string
	Post  string // where 'continue' jumps to in a for loop; allocated on first use
	isFor bool
}

func newCodeGen() *CodeGen {
	return &CodeGen{
		prog:     tac.NewProgram(),
		log:      log.New("stage", "codegen"),
		scopes:   []map[string]string{make(map[string]string)},
		declared: make(map[string]int),
		used:     make(map[[2]string]bool),
	}
}

func (cg *CodeGen) openScope() {
	cg.scopes = append(cg.scopes, make(map[string]string))
}

func (cg *CodeGen) closeScope() {
	cg.scopes = cg.scopes[:len(cg.scopes)-1]
}

func (cg *CodeGen) lookup(name string) (string, bool) {
	for i := len(cg.scopes) - 1; i >= 0; i-- {
		if tacName, ok := cg.scopes[i][name]; ok {
			return tacName, true
		}
	}
	return "", false
}

// resolve returns the TAC name a source name refers to at this point.
func (cg *CodeGen) resolve(name string) string {
	if tacName, ok := cg.lookup(name); ok {
		return tacName
	}
	return name
}

// bind declares name in the innermost scope and returns its TAC name. A
// declaration that shadows a visible one, or reuses a name already taken
// in the same function, becomes name.N.
func (cg *CodeGen) bind(name string) string {
	cg.declared[name]++
	tacName := name
	_, visible := cg.lookup(name)
	if visible || cg.used[[2]string{cg.curFunc, name}] {
		tacName = fmt.Sprintf("%s.%d", name, cg.declared[name])
	}
	cg.used[[2]string{cg.curFunc, tacName}] = true
	cg.scopes[len(cg.scopes)-1][name] = tacName
	return tacName
}

func (cg *CodeGen) newTemp() string {
	cg.nextTemp++
	return fmt.Sprintf("t%d", cg.nextTemp)
}

func (cg *CodeGen) newLabel() string {
	cg.nextLabel++
	return fmt.Sprintf("L%d", cg.nextLabel)
}

func (cg *CodeGen) emit(op, arg1, arg2, result string) {
	cg.prog.Emit(op, arg1, arg2, result)
}

func (cg *CodeGen) label(l string) {
	cg.emit(tac.OpLabel, blank, blank, l)
}

func (cg *CodeGen) jump(l string) {
	cg.emit(tac.OpGoto, blank, blank, l)
}

func (cg *CodeGen) warn(n Node) {
	kind := fmt.Sprintf("%T", n)
	cg.log.Warn("Unhandled node type in code generation", "kind", kind, "line", n.Pos())
	cg.Warnings = append(cg.Warnings, fmt.Sprintf("Warning: Unhandled node type '%s' in code generation", kind))
}

//  Expressions

// genExpr emits the code computing e and returns the operand holding its
// value: a fresh temporary, or the variable name itself for a plain Loc.
func (cg *CodeGen) genExpr(e Expr) string {
	switch n := e.(type) {
	case *Literal:
		t := cg.newTemp()
		cg.emit(tac.OpAssign, n.Value.String(), blank, t)
		return t

	case *Loc:
		return cg.resolve(n.Name)

	case *LocArray:
		idx := cg.genExpr(n.Index)
		t := cg.newTemp()
		cg.emit(tac.OpIndex, cg.resolve(n.Name), idx, t)
		return t

	case *BinOp:
		l := cg.genExpr(n.Left)
		r := cg.genExpr(n.Right)
		t := cg.newTemp()
		cg.emit(binOpCode(n.Op), l, r, t)
		return t

	case *Unary:
		v := cg.genExpr(n.Operand)
		t := cg.newTemp()
		op := tac.OpUMinus
		if n.Op == "!" {
			op = tac.OpNot
		}
		cg.emit(op, v, blank, t)
		return t

	case *Call:
		return cg.genCall(n)
	}
	cg.warn(e)
	return blank
}

// binOpCode maps a source operator to its TAC spelling.
func binOpCode(op string) string {
	switch op {
	case "&&":
		return tac.OpAnd
	case "||":
		return tac.OpOr
	}
	return op
}

// genCall evaluates the arguments left to right and emits
// call name, "a1,a2,...", tN.
func (cg *CodeGen) genCall(c *Call) string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = cg.genExpr(a)
	}
	argStr := blank
	if len(args) > 0 {
		argStr = strings.Join(args, ",")
	}
	t := cg.newTemp()
	cg.emit(tac.OpCall, c.Name, argStr, t)
	return t
}

//  Statements

func (cg *CodeGen) genBlock(b *Block) {
	cg.openScope()
	for _, s := range b.Stmts {
		cg.genStmt(s)
	}
	cg.closeScope()
}

func (cg *CodeGen) genAssign(a *Assign) {
	v := cg.genExpr(a.Value)
	switch target := a.Target.(type) {
	case *Loc:
		cg.emit(tac.OpAssign, v, blank, cg.resolve(target.Name))
	case *LocArray:
		idx := cg.genExpr(target.Index)
		cg.emit(tac.OpIndexStore, v, idx, cg.resolve(target.Name))
	default:
		cg.warn(a.Target)
	}
}

// genIf lowers if/elif/else. Labels are allocated before the condition is
// evaluated.
func (cg *CodeGen) genIf(n *If) {
	cg.genCond(n.Cond, n.Then, n.Elif, n.Else)
}

// genCond emits one conditional link of an if/elif chain and recurses into
// the rest of the chain. els is the final else block, if any.
func (cg *CodeGen) genCond(cond Expr, then *Block, next *Elif, els *Block) {
	elseLabel := cg.newLabel()
	endLabel := cg.newLabel()

	c := cg.genExpr(cond)
	cg.emit(tac.OpIfFalse, c, blank, elseLabel)
	cg.genBlock(then)
	cg.jump(endLabel)

	cg.label(elseLabel)
	switch {
	case next != nil:
		cg.genCond(next.Cond, next.Body, next.Next, els)
	case els != nil:
		cg.genBlock(els)
	}
	cg.label(endLabel)
}

func (cg *CodeGen) genWhile(n *While) {
	loop := &LoopLabel{Start: cg.newLabel(), End: cg.newLabel()}

	cg.label(loop.Start)
	c := cg.genExpr(n.Cond)
	cg.emit(tac.OpIfFalse, c, blank, loop.End)

	cg.loopStack = append(cg.loopStack, loop)
	cg.genBlock(n.Body)
	cg.loopStack = cg.loopStack[:len(cg.loopStack)-1]

	cg.jump(loop.Start)
	cg.label(loop.End)
}

func (cg *CodeGen) genFor(n *For) {
	loop := &LoopLabel{Start: cg.newLabel(), End: cg.newLabel(), isFor: true}

	cg.genAssign(n.Init)
	cg.label(loop.Start)
	c := cg.genExpr(n.Cond)
	cg.emit(tac.OpIfFalse, c, blank, loop.End)

	cg.loopStack = append(cg.loopStack, loop)
	cg.genBlock(n.Body)
	cg.loopStack = cg.loopStack[:len(cg.loopStack)-1]

	if loop.Post != "" {
		cg.label(loop.Post)
	}
	cg.genAssign(n.Step)
	cg.jump(loop.Start)
	cg.label(loop.End)
}

// continueTarget returns the label a continue in the innermost loop jumps to.
func (cg *CodeGen) continueTarget(loop *LoopLabel) string {
	if !loop.isFor {
		return loop.Start
	}
	if loop.Post == "" {
		loop.Post = cg.newLabel()
	}
	return loop.Post
}

func (cg *CodeGen) genFunc(f *FuncDecl) {
	// A function body is its own control context: loops around the
	// declaration are not visible inside it.
	saved, savedFunc := cg.loopStack, cg.curFunc
	cg.loopStack, cg.curFunc = nil, f.Name

	cg.openScope()
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = cg.bind(p.Name)
		cg.prog.SetType(f.Name, names[i], typeOfKeyword(p.Type).String())
	}
	cg.prog.Params[f.Name] = names

	cg.emit(tac.OpFunc, f.Name, blank, blank)
	cg.genBlock(f.Body)
	cg.emit(tac.OpEndFunc, blank, blank, blank)
	cg.closeScope()

	cg.loopStack, cg.curFunc = saved, savedFunc
}

func (cg *CodeGen) genStmt(s Stmt) {
	switch n := s.(type) {
	case *VarDecl:
		name := cg.bind(n.Name)
		cg.prog.Declare(cg.curFunc, name, typeOfKeyword(n.Type).String())
		if n.Init != nil {
			v := cg.genExpr(n.Init)
			cg.emit(tac.OpAssign, v, blank, name)
		}
	case *VarDeclArray:
		// storage is allocated on first use
		cg.prog.Declare(cg.curFunc, cg.bind(n.Name), typeOfKeyword(n.Type).String())
	case *FuncDecl:
		cg.genFunc(n)
	case *Block:
		cg.genBlock(n)
	case *CallStmt:
		cg.genCall(n.Call)
	case *Assign:
		cg.genAssign(n)
	case *If:
		cg.genIf(n)
	case *While:
		cg.genWhile(n)
	case *For:
		cg.genFor(n)
	case *Print:
		v := cg.genExpr(n.Value)
		cg.emit(tac.OpPrint, v, blank, blank)
	case *Input:
		cg.emit(tac.OpInput, blank, blank, cg.resolve(n.Name))
	case *Return:
		cg.emit(tac.OpReturn, blank, blank, blank)
	case *Break:
		if len(cg.loopStack) == 0 {
			cg.warn(n)
			return
		}
		cg.jump(cg.loopStack[len(cg.loopStack)-1].End)
	case *Continue:
		if len(cg.loopStack) == 0 {
			cg.warn(n)
			return
		}
		cg.jump(cg.continueTarget(cg.loopStack[len(cg.loopStack)-1]))
	default:
		cg.warn(s)
	}
}

// Generate lowers a checked program to three-address code. The program must
// have passed Analyze; on an unchecked tree the output is best effort.
func Generate(prog *Program) *tac.Program {
	p, _ := GenerateWithWarnings(prog)
	return p
}

// GenerateWithWarnings is Generate that also returns the warnings for nodes
// that produced no instruction.
func GenerateWithWarnings(prog *Program) (*tac.Program, []string) {
	cg := newCodeGen()
	for _, s := range prog.Stmts {
		cg.genStmt(s)
	}
	return cg.prog, cg.Warnings
}
