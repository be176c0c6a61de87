package compiler

import (
	"errors"
	"fmt"
)

// Parser consumes the flat token slice produced by the Lexer and builds an AST.
//
// Grammar:
//
//	program     = item+ EOF
//	item        = varDecl | funcDecl | statement
//	varDecl     = type ID ("=" expr)? ";" | type ID "[" INT_LIT "]" ";"
//	funcDecl    = "func" ID "(" [type ID ("," type ID)*] ")" block
//	block       = "{" item+ "}"
//	statement   = assignment ";" | ifStmt | whileStmt | forStmt
//	            | "print" "(" expr ")" ";" | "input" "(" ID ")" ";"
//	            | "return" [expr] ";" | "break" ";" | "continue" ";"
//	            | block | call ";"
//	assignment  = location "=" expr
//	location    = ID | ID "[" expr "]"
//	ifStmt      = "if" "(" expr ")" block ("elif" "(" expr ")" block)* ["else" block]
//	whileStmt   = "while" "(" expr ")" block
//	forStmt     = "for" "(" assignment ";" expr ";" assignment ")" block
//	expr        = or
//	or          = and ("||" and)*
//	and         = equality ("&&" equality)*
//	equality    = relational (("==" | "!=") relational)*
//	relational  = additive (("<" | "<=" | ">" | ">=") additive)*
//	additive    = term (("+" | "-") term)*
//	term        = unary (("*" | "/" | "%") unary)*
//	unary       = ("!" | "-") unary | primary
//	primary     = literal | "(" expr ")" | call | location
//	call        = ID "(" [expr ("," expr)*] ")"
type Parser struct {
	tokens      []Token
	pos         int
	errs        []string
	depth       int // open blocks
	eofReported bool
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// unexpected builds the diagnostic for tok appearing where it is not allowed.
func (p *Parser) unexpected(tok Token) error {
	if tok.Type == EOF {
		return errUnexpectedEOF
	}
	return fmt.Errorf("Syntax Error at line %d: unexpected token '%s'", tok.Line, tok.display())
}

var errUnexpectedEOF = errors.New("Syntax Error: unexpected end of input")

// report records err once. Running out of input is reported a single time
// however many open constructs it truncates.
func (p *Parser) report(err error) {
	if err == errUnexpectedEOF {
		if p.eofReported {
			return
		}
		p.eofReported = true
	}
	p.errs = append(p.errs, err.Error())
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// peekNext returns the token immediately after the current one.
func (p *Parser) peekNext() Token {
	return p.peekAt(1)
}

func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		if len(p.tokens) > 0 {
			return Token{Type: EOF, Line: p.tokens[len(p.tokens)-1].Line}
		}
		return Token{Type: EOF}
	}
	return p.tokens[p.pos+offset]
}

// advance consumes and returns the current token. EOF is never consumed.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) && tok.Type != EOF {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, p.unexpected(tok)
	}
	return p.advance(), nil
}

// isSyncPoint reports whether tt starts a statement or declaration.
func isSyncPoint(tt TokenType) bool {
	switch tt {
	case FUNC, IF, WHILE, FOR, PRINT, INPUT, RETURN, BREAK, CONTINUE, LBRACE,
		INT, FLOAT, BOOL, CHAR, STRING:
		return true
	}
	return false
}

// synchronize skips to the start of the next item after an error: past the
// next ';', or up to a statement keyword or a '}' closing an open block. If
// the failed item consumed nothing, its first token is dropped so that
// parsing always makes progress.
func (p *Parser) synchronize(start int) {
	if p.pos == start {
		p.advance()
	}
	for {
		switch tt := p.peek().Type; {
		case tt == EOF, isSyncPoint(tt):
			return
		case tt == RBRACE && p.depth > 0:
			return
		case tt == SEMICOLON:
			p.advance()
			return
		}
		p.advance()
	}
}

//  Expressions

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseLogicalOr()
}

// binaryLevel parses one left-associative precedence level.
func (p *Parser) binaryLevel(next func() (Expr, error), ops ...TokenType) (Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		matched := false
		for _, op := range ops {
			if tok.Type == op {
				matched = true
				break
			}
		}
		if !matched {
			return expr, nil
		}
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &BinOp{Op: tok.Lexeme, Left: expr, Right: right, Line: tok.Line}
	}
}

// parseLogicalOr handles ||
func (p *Parser) parseLogicalOr() (Expr, error) {
	return p.binaryLevel(p.parseLogicalAnd, OR_LOGICAL)
}

// parseLogicalAnd handles &&
func (p *Parser) parseLogicalAnd() (Expr, error) {
	return p.binaryLevel(p.parseEquality, AND_LOGICAL)
}

func (p *Parser) parseEquality() (Expr, error) {
	return p.binaryLevel(p.parseRelational, EQUALS, NOT_EQ)
}

func (p *Parser) parseRelational() (Expr, error) {
	return p.binaryLevel(p.parseAdditive, LESS, LESS_EQ, GREATER, GREATER_EQ)
}

func (p *Parser) parseAdditive() (Expr, error) {
	return p.binaryLevel(p.parseMultiplicative, PLUS, MINUS)
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	return p.binaryLevel(p.parseUnary, STAR, SLASH, PERCENT)
}

// parseUnary handles the right-associative prefix operators ! and -.
func (p *Parser) parseUnary() (Expr, error) {
	tok := p.peek()
	if tok.Type == NOT || tok.Type == MINUS {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: tok.Lexeme, Operand: operand, Line: tok.Line}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case INT_LIT, FLOAT_LIT, CHAR_LIT, STRING_LIT, TRUE, FALSE:
		p.advance()
		return &Literal{Value: tok.Value, Line: tok.Line}, nil
	case LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case IDENTIFIER:
		if p.peekNext().Type == LPAREN {
			return p.parseCall()
		}
		return p.parseLocation()
	}
	return nil, p.unexpected(tok)
}

// parseCall parses  ID "(" [expr ("," expr)*] ")"
func (p *Parser) parseCall() (*Call, error) {
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	call := &Call{Name: name.Lexeme, Line: name.Line}
	if p.peek().Type == RPAREN {
		p.advance()
		return call, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if p.peek().Type != COMMA {
			break
		}
		p.advance()
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}

// parseLocation parses  ID | ID "[" expr "]"
func (p *Parser) parseLocation() (Location, error) {
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if p.peek().Type != LBRACKET {
		return &Loc{Name: name.Lexeme, Line: name.Line}, nil
	}
	p.advance()
	index, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RBRACKET); err != nil {
		return nil, err
	}
	return &LocArray{Name: name.Lexeme, Index: index, Line: name.Line}, nil
}

//  Declarations

// parseVarDecl parses a scalar or array declaration. The type keyword is the
// current token.
func (p *Parser) parseVarDecl() (Stmt, error) {
	typ := p.advance()
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}

	switch p.peek().Type {
	case LBRACKET:
		p.advance()
		size, err := p.expect(INT_LIT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RBRACKET); err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return &VarDeclArray{
			Type: typ.Type,
			Name: name.Lexeme,
			Size: &Literal{Value: size.Value, Line: size.Line},
			Line: typ.Line,
		}, nil

	case ASSIGN:
		p.advance()
		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return &VarDecl{Type: typ.Type, Name: name.Lexeme, Init: init, Line: typ.Line}, nil
	}

	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &VarDecl{Type: typ.Type, Name: name.Lexeme, Line: typ.Line}, nil
}

// parseFunctionDecl parses  func ID "(" params ")" block
func (p *Parser) parseFunctionDecl() (Stmt, error) {
	kw := p.advance() // consume 'func'
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}

	fn := &FuncDecl{Name: name.Lexeme, Line: kw.Line}
	if p.peek().Type != RPAREN {
		for {
			typ := p.peek()
			if !typ.Type.IsType() {
				return nil, p.unexpected(typ)
			}
			p.advance()
			pname, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, &Param{Type: typ.Type, Name: pname.Lexeme, Line: typ.Line})
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

//  Statements

// parseBlock parses "{" item+ "}". Errors inside the block are recorded and
// recovered from here; the returned error covers only the braces themselves.
func (p *Parser) parseBlock() (*Block, error) {
	open, err := p.expect(LBRACE)
	if err != nil {
		return nil, err
	}
	block := &Block{Line: open.Line}
	if p.peek().Type == RBRACE {
		return nil, p.unexpected(p.advance())
	}
	p.depth++
	defer func() { p.depth-- }()
	for {
		switch p.peek().Type {
		case RBRACE:
			p.advance()
			return block, nil
		case EOF:
			return nil, errUnexpectedEOF
		}
		if stmt := p.parseItemRecover(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}
}

// parseAssignment parses  location "=" expr  without the trailing ';'.
func (p *Parser) parseAssignment() (*Assign, error) {
	target, err := p.parseLocation()
	if err != nil {
		return nil, err
	}
	eq, err := p.expect(ASSIGN)
	if err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &Assign{Target: target, Value: value, Line: eq.Line}, nil
}

// parseCondition parses  "(" expr ")"
func (p *Parser) parseCondition() (Expr, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIf() (Stmt, error) {
	kw := p.advance() // consume 'if'
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &If{Cond: cond, Then: then, Line: kw.Line}

	// The elif chain is built as a linked list, head first.
	var tail *Elif
	for p.peek().Type == ELIF {
		ekw := p.advance()
		econd, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		link := &Elif{Cond: econd, Body: body, Line: ekw.Line}
		if tail == nil {
			stmt.Elif = link
		} else {
			tail.Next = link
		}
		tail = link
	}

	if p.peek().Type == ELSE {
		p.advance()
		els, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = els
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (Stmt, error) {
	kw := p.advance() // consume 'while'
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &While{Cond: cond, Body: body, Line: kw.Line}, nil
}

// parseForStmt parses  for "(" assignment ";" expr ";" assignment ")" block
func (p *Parser) parseForStmt() (Stmt, error) {
	kw := p.advance() // consume 'for'
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	init, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	step, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &For{Init: init, Cond: cond, Step: step, Body: body, Line: kw.Line}, nil
}

// parseStatement dispatches on the current token.
func (p *Parser) parseStatement() (Stmt, error) {
	tok := p.peek()
	switch tok.Type {
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case FOR:
		return p.parseForStmt()
	case LBRACE:
		return p.parseBlock()

	case PRINT:
		p.advance()
		if _, err := p.expect(LPAREN); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return &Print{Value: value, Line: tok.Line}, nil

	case INPUT:
		p.advance()
		if _, err := p.expect(LPAREN); err != nil {
			return nil, err
		}
		name, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return &Input{Name: name.Lexeme, Line: tok.Line}, nil

	case RETURN:
		p.advance()
		ret := &Return{Line: tok.Line}
		if p.peek().Type != SEMICOLON {
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			ret.Value = value
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return ret, nil

	case BREAK, CONTINUE:
		p.advance()
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		if tok.Type == BREAK {
			return &Break{Line: tok.Line}, nil
		}
		return &Continue{Line: tok.Line}, nil

	case IDENTIFIER:
		if p.peekNext().Type == LPAREN {
			call, err := p.parseCall()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(SEMICOLON); err != nil {
				return nil, err
			}
			return &CallStmt{Call: call}, nil
		}
		assign, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return assign, nil
	}
	return nil, p.unexpected(tok)
}

// parseItem parses one declaration or statement.
func (p *Parser) parseItem() (Stmt, error) {
	switch tt := p.peek().Type; {
	case tt.IsType():
		return p.parseVarDecl()
	case tt == FUNC:
		return p.parseFunctionDecl()
	}
	return p.parseStatement()
}

// parseItemRecover parses one item; on failure it records the error, skips
// ahead to a synchronisation point and returns nil.
func (p *Parser) parseItemRecover() Stmt {
	start := p.pos
	stmt, err := p.parseItem()
	if err != nil {
		p.report(err)
		p.synchronize(start)
		return nil
	}
	return stmt
}

// Parse builds a Program from tokens. It never stops at the first error:
// every independent syntax error is reported. When errors are returned the
// Program is partial and must not be analysed further.
func Parse(tokens []Token) (*Program, []string) {
	p := NewParser(tokens)
	prog := &Program{}
	if p.peek().Type == EOF {
		p.report(errUnexpectedEOF)
		return prog, p.errs
	}
	for p.peek().Type != EOF {
		if stmt := p.parseItemRecover(); stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
	}
	return prog, p.errs
}
