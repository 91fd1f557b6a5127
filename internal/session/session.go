// Package session runs submissions through the full pipeline against a
// persistent State.
package session

import (
	"io"
	"log/slog"

	"github.com/funvibe/snirk/internal/analyzer"
	"github.com/funvibe/snirk/internal/backend"
	"github.com/funvibe/snirk/internal/lexer"
	"github.com/funvibe/snirk/internal/parser"
	"github.com/funvibe/snirk/internal/pipeline"
	"github.com/funvibe/snirk/internal/vm"
)

// Session owns a State and evaluates submissions against it in order.
// A Session is not safe for concurrent use; run independent sessions instead.
type Session struct {
	state   *vm.State
	backend backend.Backend
	listing io.Writer
	trace   io.Writer
	stops   io.Writer
	breaks  []int
	logger  *slog.Logger
	file    string
}

// Option configures a Session.
type Option func(*Session)

// WithBackend selects "vm" (default) or "treewalk". Unknown names are ignored.
func WithBackend(name string) Option {
	return func(s *Session) {
		if b := backend.ByName(name); b != nil {
			s.backend = b
		}
	}
}

// WithListing writes the disassembly of every compiled submission to w.
func WithListing(w io.Writer) Option {
	return func(s *Session) { s.listing = w }
}

// WithTrace writes every instruction the VM backend executes to w.
func WithTrace(w io.Writer) Option {
	return func(s *Session) { s.trace = w }
}

// WithBreakpoints dumps the VM registers and bindings to w whenever the VM
// backend reaches one of lines.
func WithBreakpoints(w io.Writer, lines ...int) Option {
	return func(s *Session) {
		s.stops = w
		s.breaks = lines
	}
}

// WithLogger routes pipeline logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithFile names the source in diagnostics.
func WithFile(name string) Option {
	return func(s *Session) { s.file = name }
}

// WithState evaluates against an existing State instead of a fresh one.
func WithState(st *vm.State) Option {
	return func(s *Session) {
		if st != nil {
			s.state = st
		}
	}
}

func New(opts ...Option) *Session {
	s := &Session{state: vm.NewState(), backend: backend.NewVM()}
	for _, opt := range opts {
		opt(s)
	}
	if vb, ok := s.backend.(*backend.VMBackend); ok {
		vb.Trace = s.trace
		vb.Breakpoints = s.breaks
		vb.Stops = s.stops
	}
	return s
}

// Run pushes source through every stage and returns the final context.
func (s *Session) Run(source string) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(source, s.state)
	ctx.FilePath = s.file
	if s.logger != nil {
		ctx.Logger = s.logger.With("session", s.state.ID())
	}

	p := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
		&backend.CompileProcessor{Listing: s.listing},
		backend.NewExecutionProcessor(s.backend),
	)
	return p.Run(ctx)
}

// Eval runs source and returns the value of its final expression, or the
// first diagnostic.
func (s *Session) Eval(source string) (float64, error) {
	ctx := s.Run(source)
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return ctx.Result, nil
}

func (s *Session) State() *vm.State { return s.state }

func (s *Session) ID() string { return s.state.ID() }

func (s *Session) Backend() string { return s.backend.Name() }

// SetListing replaces the disassembly writer; nil turns listing off.
func (s *Session) SetListing(w io.Writer) { s.listing = w }

// Listing reports whether disassembly is on.
func (s *Session) Listing() bool { return s.listing != nil }

// Reset drops every binding.
func (s *Session) Reset() { s.state.Reset() }
