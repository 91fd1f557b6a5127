package analyzer

import (
	"github.com/funvibe/snirk/internal/diagnostics"
	"github.com/funvibe/snirk/internal/pipeline"
	"github.com/funvibe/snirk/internal/token"
)

type SemanticAnalyzerProcessor struct{}

func (sap *SemanticAnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || ctx.SymbolTable == nil {
		return ctx
	}

	a := New(ctx.SymbolTable)
	verified, err := a.Verify(ctx.AstRoot)
	if err != nil {
		if de, ok := err.(*diagnostics.DiagnosticError); ok {
			ctx.AddError(de)
		} else {
			ctx.AddError(diagnostics.NewError(diagnostics.ErrA001, token.Token{}, err.Error()))
		}
		return ctx
	}

	ctx.Verified = verified
	ctx.Warnings = a.Warnings()
	for _, w := range ctx.Warnings {
		w.File = ctx.FilePath
		ctx.Log().Debug("lint", "code", w.Code, "name", w.Name, "line", w.Token.Line)
	}
	ctx.Log().Debug("verified", "statements", len(verified.Program.Statements))
	return ctx
}
