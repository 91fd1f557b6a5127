package backend

import (
	"errors"
	"fmt"
	"io"

	"github.com/funvibe/snirk/internal/diagnostics"
	"github.com/funvibe/snirk/internal/pipeline"
	"github.com/funvibe/snirk/internal/token"
	"github.com/funvibe/snirk/internal/vm"
)

// CompileProcessor lowers ctx.Verified to a chunk. With Listing set, the
// disassembly is written there before execution.
type CompileProcessor struct {
	Listing io.Writer
}

func (cp *CompileProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Verified == nil {
		return ctx
	}

	chunk, err := vm.NewCompiler().Compile(ctx.Verified, ctx.SymbolTable, ctx.Constants)
	if err != nil {
		// The verifier guarantees a final expression; anything else is a bug.
		ctx.AddError(diagnostics.NewError(diagnostics.ErrA004, token.Token{}, err.Error()))
		return ctx
	}
	ctx.Chunk = chunk

	if cp.Listing != nil {
		name := ctx.FilePath
		if name == "" {
			name = "<input>"
		}
		fmt.Fprint(cp.Listing, vm.Disassemble(chunk, name))
	}

	ctx.Log().Debug("compiled",
		"instructions", chunk.Len(),
		"registers", chunk.RegisterCount,
		"slots", len(chunk.Slots),
	)
	return ctx
}

// ExecutionProcessor implements pipeline.Processor to run a Backend
type ExecutionProcessor struct {
	Backend Backend
}

// NewExecutionProcessor creates a new pipeline step for the given backend
func NewExecutionProcessor(b Backend) *ExecutionProcessor {
	return &ExecutionProcessor{Backend: b}
}

func (p *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	// If previous steps failed, don't run execution
	if ctx.Verified == nil || len(ctx.Errors) > 0 {
		return ctx
	}

	result, err := p.Backend.Run(ctx)
	if err != nil {
		p.handleError(ctx, err)
		return ctx
	}

	ctx.Result = result
	ctx.HasResult = true
	ctx.Log().Debug("executed", "backend", p.Backend.Name(), "result", result)
	return ctx
}

func (p *ExecutionProcessor) handleError(ctx *pipeline.PipelineContext, err error) {
	var de *diagnostics.DiagnosticError
	if errors.As(err, &de) {
		ctx.AddError(de)
		ctx.Log().Debug("runtime fault", "code", de.Code, "operand", de.Name)
		return
	}

	// Internal VM failures have no source position; report them as runtime
	// errors so the caller still sees a diagnostic.
	ctx.Log().Error("backend failure", "backend", p.Backend.Name(), "err", err)
	ctx.AddError(diagnostics.NewError(diagnostics.ErrR001, token.Token{}, err.Error()))
}
