package parser

import (
	"errors"

	"github.com/funvibe/snirk/internal/diagnostics"
	"github.com/funvibe/snirk/internal/pipeline"
	"github.com/funvibe/snirk/internal/symbols"
	"github.com/funvibe/snirk/internal/token"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		ctx.AddError(diagnostics.NewError(diagnostics.ErrP001, token.Token{}, "parser: token stream is nil"))
		return ctx
	}

	// Names bound by earlier submissions are visible (and taken) in this one.
	table := symbols.NewTable()
	if ctx.State != nil {
		for _, b := range ctx.State.Bindings() {
			table.Predeclare(b.Name, b.Mutable)
		}
	}
	constants := symbols.NewConstantPool()

	program, err := Parse(ctx.TokenStream, table, constants)
	if err != nil {
		reportParseError(ctx, err)
		return ctx
	}
	program.File = ctx.FilePath

	table.Seal()
	constants.Seal()

	ctx.AstRoot = program
	ctx.SymbolTable = table
	ctx.Constants = constants

	ctx.Log().Debug("parsed",
		"statements", len(program.Statements),
		"symbols", table.Len(),
		"constants", constants.Len(),
	)
	return ctx
}

// reportParseError records err on ctx. Anything that is not already a
// diagnostic becomes an unexpected-token error without a position.
func reportParseError(ctx *pipeline.PipelineContext, err error) {
	var de *diagnostics.DiagnosticError
	if errors.As(err, &de) {
		ctx.AddError(de)
		return
	}
	ctx.AddError(diagnostics.NewError(diagnostics.ErrP001, token.Token{}, err.Error()))
}
