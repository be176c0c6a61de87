package compiler

import (
	"fmt"
	"strings"
)

// Scope names recorded in the table history.
const (
	ScopeGlobal   = "global"
	ScopeBlock    = "block"
	ScopeForLoop  = "for_loop"
	scopeFuncPref = "function:"
)

// Symbol is one declared name.
type Symbol struct {
	Name    string
	Type    Type
	IsArray bool
	Size    int64   // element count, arrays only
	Params  []Param // functions only
	Line    int
}

func (s Symbol) String() string {
	switch {
	case s.Type == TypeFunc:
		params := make([]string, len(s.Params))
		for i, p := range s.Params {
			params[i] = p.String()
		}
		return fmt.Sprintf("{type: func, params: [%s], return: void}", strings.Join(params, ", "))
	case s.IsArray:
		return fmt.Sprintf("{type: %s, array: true, size: %d}", s.Type, s.Size)
	}
	return fmt.Sprintf("{type: %s}", s.Type)
}

// Scope is an ordered name -> Symbol mapping.
type Scope struct {
	Name    string
	names   []string
	symbols map[string]*Symbol
}

func newScope(name string) *Scope {
	return &Scope{Name: name, symbols: make(map[string]*Symbol)}
}

// Names returns the declared names in declaration order.
func (sc *Scope) Names() []string { return sc.names }

// Get returns the symbol declared in this scope only.
func (sc *Scope) Get(name string) (*Symbol, bool) {
	sym, ok := sc.symbols[name]
	return sym, ok
}

// SymbolTable is a stack of lexical scopes plus the history of every scope
// ever opened. The global scope sits at the bottom and is never popped.
type SymbolTable struct {
	// Active scope stack, innermost last.
	stack []*Scope

	// All scopes in the order they were opened, global first.
	history []*Scope
}

func NewSymbolTable() *SymbolTable {
	global := newScope(ScopeGlobal)
	return &SymbolTable{
		stack:   []*Scope{global},
		history: []*Scope{global},
	}
}

// EnterScope pushes a new named scope.
func (s *SymbolTable) EnterScope(name string) {
	sc := newScope(name)
	s.stack = append(s.stack, sc)
	s.history = append(s.history, sc)
}

// EnterFunction pushes the scope holding the parameters of fn.
func (s *SymbolTable) EnterFunction(fn string) {
	s.EnterScope(scopeFuncPref + fn)
}

// ExitScope pops the innermost scope. The global scope stays.
func (s *SymbolTable) ExitScope() {
	if len(s.stack) > 1 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

// Depth is the number of active scopes, global included.
func (s *SymbolTable) Depth() int { return len(s.stack) }

// Declare adds sym to the innermost scope. It reports false, leaving the
// table unchanged, when the name already exists in that scope.
func (s *SymbolTable) Declare(sym Symbol) bool {
	cur := s.stack[len(s.stack)-1]
	if _, dup := cur.symbols[sym.Name]; dup {
		return false
	}
	cur.names = append(cur.names, sym.Name)
	cur.symbols[sym.Name] = &sym
	return true
}

// Lookup searches from the innermost scope outwards.
func (s *SymbolTable) Lookup(name string) (*Symbol, bool) {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if sym, ok := s.stack[i].symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Scopes returns every scope opened so far, global first.
func (s *SymbolTable) Scopes() []*Scope { return s.history }

// String returns the dump of every scope ever opened, in opening order.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	sb.WriteString("----- Symbol Table (All Scopes) -----\n")
	for i, sc := range s.history {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Scope %d (%s):\n", i, sc.Name)
		if len(sc.names) == 0 {
			sb.WriteString("  (empty)\n")
			continue
		}
		for _, name := range sc.names {
			fmt.Fprintf(&sb, "  %s: %s\n", name, sc.symbols[name])
		}
	}
	sb.WriteString("------------------------------------\n")
	return sb.String()
}
