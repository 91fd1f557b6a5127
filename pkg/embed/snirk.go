// Package snirk is the embedding API: evaluate source against a persistent
// set of bindings.
package snirk

import (
	"github.com/funvibe/snirk/internal/diagnostics"
	"github.com/funvibe/snirk/internal/parser"
	"github.com/funvibe/snirk/internal/session"
	"github.com/funvibe/snirk/internal/vm"
)

// State is a session's persistent bindings. Values and mutability survive
// between evaluations; registers never do.
type State = vm.State

// Binding is the committed value of one variable.
type Binding = vm.Binding

// Error is the diagnostic every failed evaluation returns. Code names the
// failure (e.g. "A002"), Kind its symbolic name (e.g. "ImmutableAssignment").
type Error = diagnostics.DiagnosticError

// Session evaluates submissions in order against its own State.
type Session = session.Session

// Option configures a Session.
type Option = session.Option

var (
	WithBackend     = session.WithBackend
	WithListing     = session.WithListing
	WithTrace       = session.WithTrace
	WithBreakpoints = session.WithBreakpoints
	WithLogger      = session.WithLogger
	WithFile        = session.WithFile
	WithState       = session.WithState
)

// NewState starts an empty set of bindings.
func NewState() *State { return vm.NewState() }

// NewSession starts a session with a fresh State unless WithState is given.
func NewSession(opts ...Option) *Session { return session.New(opts...) }

// Eval runs source against state and returns the value of its final
// expression. Bindings stored before a runtime fault stay in state; a lex,
// parse or semantic error leaves state untouched.
func Eval(source string, state *State) (float64, error) {
	return session.New(session.WithState(state)).Eval(source)
}

// IsIncomplete reports whether err means source ended in the middle of a
// statement, so more input could complete it.
func IsIncomplete(err error) bool { return parser.IsIncomplete(err) }
