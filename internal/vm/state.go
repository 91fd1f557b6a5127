package vm

import (
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Binding is the committed value of one variable.
type Binding struct {
	Value   float64
	Mutable bool
}

// NamedBinding is a Binding together with its name.
type NamedBinding struct {
	Name string
	Binding
}

// State holds the variable bindings of one session. It outlives individual
// runs: every STORE_VAR lands here immediately. Registers are never part of it.
// A State is not safe for concurrent use; independent sessions use independent
// States.
type State struct {
	id       uuid.UUID
	bindings map[string]Binding
}

func NewState() *State {
	return &State{
		id:       uuid.New(),
		bindings: make(map[string]Binding),
	}
}

// ID identifies the session in logs and history records.
func (s *State) ID() string { return s.id.String() }

func (s *State) Get(name string) (Binding, bool) {
	b, ok := s.bindings[name]
	return b, ok
}

// Value returns the current value of name.
func (s *State) Value(name string) (float64, bool) {
	b, ok := s.bindings[name]
	return b.Value, ok
}

func (s *State) Set(name string, b Binding) {
	s.bindings[name] = b
}

// Bindings returns all bindings sorted by name.
func (s *State) Bindings() []NamedBinding {
	out := make([]NamedBinding, 0, len(s.bindings))
	for _, name := range slices.Sorted(maps.Keys(s.bindings)) {
		out = append(out, NamedBinding{Name: name, Binding: s.bindings[name]})
	}
	return out
}

func (s *State) Len() int { return len(s.bindings) }

// Reset drops every binding but keeps the session ID.
func (s *State) Reset() {
	clear(s.bindings)
}
