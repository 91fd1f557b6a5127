package pipeline

import (
	"log/slog"

	"github.com/funvibe/snirk/internal/ast"
	"github.com/funvibe/snirk/internal/diagnostics"
	"github.com/funvibe/snirk/internal/symbols"
	"github.com/funvibe/snirk/internal/token"
	"github.com/funvibe/snirk/internal/vm"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// TokenStream is the lazy token source the parser pulls from.
type TokenStream interface {
	Next() token.Token
	Peek(n int) []token.Token
}

// PipelineContext carries one submission through every stage.
type PipelineContext struct {
	SourceCode string
	FilePath   string

	// State holds the session's persistent bindings. It seeds the symbol table
	// and receives STORE_VAR writes.
	State *vm.State

	TokenStream TokenStream
	AstRoot     *ast.Program
	SymbolTable *symbols.Table
	Constants   *symbols.ConstantPool
	Verified    *ast.VerifiedProgram
	Chunk       *vm.Chunk

	Result    float64
	HasResult bool

	Errors []*diagnostics.DiagnosticError

	// Warnings are non-fatal diagnostics; they never stop the pipeline.
	Warnings []*diagnostics.DiagnosticError

	Logger *slog.Logger
}

// NewPipelineContext prepares a context for source evaluated against state.
// A nil state starts a fresh session.
func NewPipelineContext(source string, state *vm.State) *PipelineContext {
	if state == nil {
		state = vm.NewState()
	}
	return &PipelineContext{
		SourceCode: source,
		State:      state,
		Logger:     slog.Default().With("session", state.ID()),
	}
}

// Err returns the first recorded error, or nil.
func (ctx *PipelineContext) Err() error {
	if len(ctx.Errors) == 0 {
		return nil
	}
	return ctx.Errors[0]
}

// AddError records err, filling in the file path when missing.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
}

// Log returns the context's logger, never nil.
func (ctx *PipelineContext) Log() *slog.Logger {
	if ctx.Logger == nil {
		return slog.Default()
	}
	return ctx.Logger
}
