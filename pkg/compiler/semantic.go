package compiler

// Analysis is the outcome of semantic analysis.
type Analysis struct {
	Errors  []*SemanticError
	Symbols *SymbolTable
}

// Messages returns the error strings in the order they were found.
func (a *Analysis) Messages() []string {
	out := make([]string, len(a.Errors))
	for i, e := range a.Errors {
		out[i] = e.Error()
	}
	return out
}

// Analyzer walks the AST once, depth first, maintaining the scope stack.
// A failed check is recorded at the node that failed it and the walk goes
// on, so unrelated errors elsewhere in the tree are all found.
type Analyzer struct {
	syms      *SymbolTable
	errs      []*SemanticError
	curFunc   string
	inFunc    bool
	loopDepth int
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{syms: NewSymbolTable()}
}

// Analyze checks prog and returns every semantic error together with the
// finished symbol table.
func Analyze(prog *Program) *Analysis {
	a := NewAnalyzer()
	for _, s := range prog.Stmts {
		a.visitStmt(s)
	}
	return &Analysis{Errors: a.errs, Symbols: a.syms}
}

func (a *Analyzer) report(err *SemanticError) {
	if err != nil {
		a.errs = append(a.errs, err)
	}
}

// checkAssign reports a TypeMismatch when src cannot be stored in dst.
// Unknown on either side means the error was already reported.
func checkAssign(dst, src Type, line int) *SemanticError {
	if dst == TypeUnknown || src == TypeUnknown || Assignable(dst, src) {
		return nil
	}
	return semErr(TypeMismatch, line, "Cannot assign %s to %s", src, dst)
}

// checkCond reports a NonBooleanCondition for the statement named by what.
func checkCond(t Type, what string, line int) *SemanticError {
	if t == TypeUnknown || t == TypeBool {
		return nil
	}
	return semErr(NonBooleanCondition, line, "Condition of %s must be bool", what)
}

//  Statements

func (a *Analyzer) visitStmt(s Stmt) {
	switch n := s.(type) {
	case *VarDecl:
		a.visitVarDecl(n)
	case *VarDeclArray:
		a.visitVarDeclArray(n)
	case *FuncDecl:
		a.visitFuncDecl(n)
	case *Block:
		a.visitBlock(n)
	case *CallStmt:
		_, err := a.visitCall(n.Call, false)
		a.report(err)
	case *Assign:
		a.visitAssign(n)
	case *If:
		t := a.expr(n.Cond)
		a.report(checkCond(t, "if", n.Line))
		a.visitBlock(n.Then)
		a.visitElif(n.Elif)
		if n.Else != nil {
			a.visitBlock(n.Else)
		}
	case *While:
		t := a.expr(n.Cond)
		a.report(checkCond(t, "while", n.Line))
		a.loopDepth++
		a.visitBlock(n.Body)
		a.loopDepth--
	case *For:
		a.visitFor(n)
	case *Print:
		a.expr(n.Value)
	case *Input:
		if _, ok := a.syms.Lookup(n.Name); !ok {
			a.report(semErr(UndefinedSymbol, n.Line, "'%s' is not defined", n.Name))
		}
	case *Return:
		switch {
		case !a.inFunc:
			a.report(semErr(ReturnOutsideFunction, n.Line, "Return outside of function"))
		case n.Value != nil:
			a.report(semErr(VoidReturnWithValue, n.Line, "Void function cannot return a value"))
		}
	case *Break:
		if a.loopDepth == 0 {
			a.report(semErr(BreakOutsideLoop, n.Line, "'break' outside of loop"))
		}
	case *Continue:
		if a.loopDepth == 0 {
			a.report(semErr(BreakOutsideLoop, n.Line, "'continue' outside of loop"))
		}
	}
}

func (a *Analyzer) visitVarDecl(d *VarDecl) {
	declType := typeOfKeyword(d.Type)
	if !a.syms.Declare(Symbol{Name: d.Name, Type: declType, Line: d.Line}) {
		a.report(semErr(DuplicateSymbol, d.Line, "redeclaration of '%s'", d.Name))
	}
	if d.Init != nil {
		t := a.expr(d.Init)
		a.report(checkAssign(declType, t, d.Line))
	}
}

func (a *Analyzer) visitVarDeclArray(d *VarDeclArray) {
	lit, ok := d.Size.(*Literal)
	if !ok || lit.Value.Kind != LitInt {
		a.report(semErr(InvalidArraySize, d.Line, "Array size must be integer literal"))
		return
	}
	if lit.Value.Int <= 0 {
		a.report(semErr(InvalidArraySize, d.Line, "Array size must be positive"))
		return
	}
	sym := Symbol{Name: d.Name, Type: typeOfKeyword(d.Type), IsArray: true, Size: lit.Value.Int, Line: d.Line}
	if !a.syms.Declare(sym) {
		a.report(semErr(DuplicateSymbol, d.Line, "redeclaration of '%s'", d.Name))
	}
}

func (a *Analyzer) visitFuncDecl(f *FuncDecl) {
	params := make([]Param, len(f.Params))
	for i, p := range f.Params {
		params[i] = *p
	}
	if !a.syms.Declare(Symbol{Name: f.Name, Type: TypeFunc, Params: params, Line: f.Line}) {
		a.report(semErr(DuplicateSymbol, f.Line, "redeclaration of '%s'", f.Name))
	}

	savedFunc, savedIn, savedLoops := a.curFunc, a.inFunc, a.loopDepth
	a.curFunc, a.inFunc, a.loopDepth = f.Name, true, 0

	a.syms.EnterFunction(f.Name)
	for _, p := range f.Params {
		if !a.syms.Declare(Symbol{Name: p.Name, Type: typeOfKeyword(p.Type), Line: p.Line}) {
			a.report(semErr(DuplicateSymbol, p.Line, "redeclaration of '%s'", p.Name))
		}
	}
	a.visitBlock(f.Body)
	a.syms.ExitScope()

	a.curFunc, a.inFunc, a.loopDepth = savedFunc, savedIn, savedLoops
}

func (a *Analyzer) visitBlock(b *Block) {
	a.syms.EnterScope(ScopeBlock)
	for _, s := range b.Stmts {
		a.visitStmt(s)
	}
	a.syms.ExitScope()
}

func (a *Analyzer) visitAssign(s *Assign) {
	lt := a.expr(s.Target)
	rt := a.expr(s.Value)
	a.report(checkAssign(lt, rt, s.Line))
}

// visitElif walks an elif chain head to tail.
func (a *Analyzer) visitElif(e *Elif) {
	for ; e != nil; e = e.Next {
		t := a.expr(e.Cond)
		a.report(checkCond(t, "elif", e.Line))
		a.visitBlock(e.Body)
	}
}

// visitFor opens one scope spanning the header and the body.
func (a *Analyzer) visitFor(f *For) {
	a.syms.EnterScope(ScopeForLoop)
	a.visitAssign(f.Init)
	t := a.expr(f.Cond)
	a.report(checkCond(t, "for", f.Line))
	a.visitAssign(f.Step)
	a.loopDepth++
	a.visitBlock(f.Body)
	a.loopDepth--
	a.syms.ExitScope()
}

//  Expressions

// expr infers the type of e, recording any error and substituting
// TypeUnknown for a failed sub-expression.
func (a *Analyzer) expr(e Expr) Type {
	t, err := a.visitExpr(e)
	if err != nil {
		a.report(err)
		return TypeUnknown
	}
	return t
}

func (a *Analyzer) visitExpr(e Expr) (Type, *SemanticError) {
	switch n := e.(type) {
	case *Literal:
		return n.Value.Type(), nil

	case *Loc:
		sym, ok := a.syms.Lookup(n.Name)
		if !ok {
			return TypeUnknown, semErr(UndefinedSymbol, n.Line, "'%s' is not defined", n.Name)
		}
		return sym.Type, nil

	case *LocArray:
		sym, ok := a.syms.Lookup(n.Name)
		if !ok {
			a.expr(n.Index)
			return TypeUnknown, semErr(UndefinedSymbol, n.Line, "'%s' is not defined", n.Name)
		}
		it := a.expr(n.Index)
		if !sym.IsArray {
			return TypeUnknown, semErr(NotAnArray, n.Line, "'%s' is not an array", n.Name)
		}
		if it != TypeUnknown && it != TypeInt {
			return TypeUnknown, semErr(InvalidIndexType, n.Line, "Array index must be int")
		}
		return sym.Type, nil

	case *BinOp:
		return a.visitBinOp(n)

	case *Unary:
		t := a.expr(n.Operand)
		if t == TypeUnknown {
			return TypeUnknown, nil
		}
		switch n.Op {
		case "!":
			if t != TypeBool {
				return TypeUnknown, semErr(InvalidOperandType, n.Line, "Logical NOT requires bool")
			}
		case "-":
			if !t.IsNumeric() {
				return TypeUnknown, semErr(InvalidOperandType, n.Line, "Unary minus requires numeric")
			}
		}
		return t, nil

	case *Call:
		return a.visitCall(n, true)
	}
	return TypeUnknown, nil
}

func (a *Analyzer) visitBinOp(b *BinOp) (Type, *SemanticError) {
	lt := a.expr(b.Left)
	rt := a.expr(b.Right)
	if lt == TypeUnknown || rt == TypeUnknown {
		return TypeUnknown, nil
	}

	switch b.Op {
	case "&&", "||":
		if lt != TypeBool || rt != TypeBool {
			return TypeUnknown, semErr(InvalidOperandType, b.Line, "Logical operators require bool")
		}
		return TypeBool, nil
	case "<", "<=", ">", ">=", "==", "!=":
		if lt != rt {
			return TypeUnknown, semErr(TypeMismatch, b.Line, "Type mismatch in comparison")
		}
		return TypeBool, nil
	}

	// Arithmetic: float if either side is float, int if both are int.
	switch {
	case lt == TypeFloat || rt == TypeFloat:
		return TypeFloat, nil
	case lt == TypeInt && rt == TypeInt:
		return TypeInt, nil
	}
	return TypeUnknown, semErr(InvalidOperandType, b.Line, "Invalid operands for arithmetic")
}

// visitCall checks a call. Functions are void, so a call in value context
// (asValue) is always an error once the call itself checks out. The
// arguments are analyzed even when the callee is wrong.
func (a *Analyzer) visitCall(c *Call, asValue bool) (Type, *SemanticError) {
	args := make([]Type, len(c.Args))
	for i, arg := range c.Args {
		args[i] = a.expr(arg)
	}

	sym, ok := a.syms.Lookup(c.Name)
	if !ok {
		return TypeUnknown, semErr(UndefinedSymbol, c.Line, "'%s' is not defined", c.Name)
	}
	if sym.Type != TypeFunc {
		return TypeUnknown, semErr(NotAFunction, c.Line, "'%s' is not a function", c.Name)
	}
	if len(sym.Params) != len(c.Args) {
		return TypeUnknown, semErr(ArityMismatch, c.Line, "Function argument count mismatch")
	}
	for i, t := range args {
		a.report(checkAssign(typeOfKeyword(sym.Params[i].Type), t, c.Line))
	}
	if asValue {
		return TypeUnknown, semErr(VoidValueUsed, c.Line, "Void function used in expression")
	}
	return TypeVoid, nil
}
