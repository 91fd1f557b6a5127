package parser_test

import (
	"testing"

	"github.com/funvibe/snirk/internal/ast"
	"github.com/funvibe/snirk/internal/lexer"
	"github.com/funvibe/snirk/internal/parser"
	"github.com/funvibe/snirk/internal/pipeline"
	"github.com/funvibe/snirk/internal/vm"
)

// parse is a test helper: lexes+parses input and fails on errors.
func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	ctx := pipeline.NewPipelineContext(input, nil)
	lp := &lexer.LexerProcessor{}
	ctx = lp.Process(ctx)
	pp := &parser.ParserProcessor{}
	ctx = pp.Process(ctx)
	if len(ctx.Errors) > 0 {
		for _, e := range ctx.Errors {
			t.Errorf("parse error: %s", e)
		}
		t.FailNow()
	}
	return ctx.AstRoot
}

// stmtExpr extracts the expression from the nth ExpressionStatement.
func stmtExpr(t *testing.T, prog *ast.Program, idx int) ast.Expression {
	t.Helper()
	if idx >= len(prog.Statements) {
		t.Fatalf("expected at least %d statements, got %d", idx+1, len(prog.Statements))
	}
	es, ok := prog.Statements[idx].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement %d: expected ExpressionStatement, got %T", idx, prog.Statements[idx])
	}
	return es.Expression
}

func bindingOf(v float64, mutable bool) vm.Binding {
	return vm.Binding{Value: v, Mutable: mutable}
}

func TestNewline_AfterOperator(t *testing.T) {
	prog := parse(t, "1 +\n  2")
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	if got := prog.String(); got != "(1 + 2)" {
		t.Errorf("got %q", got)
	}
}

func TestNewline_AfterAssign(t *testing.T) {
	prog := parse(t, "let x =\n\n  5 + 3\nx")
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	decl := prog.Statements[0].(*ast.Declaration)
	if decl.Value.String() != "(5 + 3)" {
		t.Errorf("initializer = %s", decl.Value)
	}
}

func TestNewline_CompoundAssign(t *testing.T) {
	prog := parse(t, "let mut x = 1\nx +=\n    10\nx")
	if len(prog.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Statements))
	}
}

func TestNewline_InsideParens(t *testing.T) {
	prog := parse(t, "(1\n+\n2\n) * 3")
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	if got := stmtExpr(t, prog, 0).String(); got != "((1 + 2) * 3)" {
		t.Errorf("got %q", got)
	}
}

func TestNewline_AfterReturn(t *testing.T) {
	prog := parse(t, "return\n  7")
	es := prog.Statements[0].(*ast.ExpressionStatement)
	if !es.Return || es.Expression.String() != "7" {
		t.Errorf("got %s", es)
	}
}

func TestNewline_EndsStatement(t *testing.T) {
	prog := parse(t, "1\n2\n\n\n3\n")
	if len(prog.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Statements))
	}
}

func TestNewline_CRLF(t *testing.T) {
	prog := parse(t, "let x = 1\r\nx\r\n")
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
}
