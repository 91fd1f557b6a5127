package symbols

import (
	"github.com/funvibe/snirk/internal/token"
)

// Symbol describes one variable binding. Slot is stable for the whole program
// and is what LOAD_VAR/STORE_VAR address.
type Symbol struct {
	Name        string
	Mutable     bool
	Slot        int
	Token       token.Token // Declaration site; zero for predeclared symbols
	Predeclared bool        // Carried over from an earlier evaluation in the same session
}

// Table is the single flat scope of a program. Symbols are appended during
// parsing and never removed.
type Table struct {
	store   map[string]*Symbol
	ordered []*Symbol
	sealed  bool
}

func NewTable() *Table {
	return &Table{store: make(map[string]*Symbol)}
}

// Predeclare registers a binding that already exists in the session state.
func (t *Table) Predeclare(name string, mutable bool) *Symbol {
	sym := t.add(name, mutable, token.Token{})
	sym.Predeclared = true
	return sym
}

// Define adds a new binding. It returns the existing symbol and false when name
// is already bound.
func (t *Table) Define(name string, mutable bool, tok token.Token) (*Symbol, bool) {
	if existing, ok := t.store[name]; ok {
		return existing, false
	}
	return t.add(name, mutable, tok), true
}

func (t *Table) add(name string, mutable bool, tok token.Token) *Symbol {
	if t.sealed {
		panic("symbols: define on sealed table: " + name)
	}
	sym := &Symbol{Name: name, Mutable: mutable, Slot: len(t.ordered), Token: tok}
	t.store[name] = sym
	t.ordered = append(t.ordered, sym)
	return sym
}

func (t *Table) Find(name string) (*Symbol, bool) {
	sym, ok := t.store[name]
	return sym, ok
}

func (t *Table) IsDefined(name string) bool {
	_, ok := t.store[name]
	return ok
}

// Symbols returns all symbols in slot order.
func (t *Table) Symbols() []*Symbol {
	out := make([]*Symbol, len(t.ordered))
	copy(out, t.ordered)
	return out
}

func (t *Table) Len() int { return len(t.ordered) }

// Seal makes the table read-only; later definitions panic.
func (t *Table) Seal() { t.sealed = true }

func (t *Table) Sealed() bool { return t.sealed }
