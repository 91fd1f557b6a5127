package parser_test

import (
	"testing"

	"github.com/funvibe/snirk/internal/ast"
	"github.com/funvibe/snirk/internal/lexer"
	"github.com/funvibe/snirk/internal/parser"
	"github.com/funvibe/snirk/internal/pipeline"
	"github.com/funvibe/snirk/internal/symbols"
)

func TestParser(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"number", "42", "42"},
		{"precedence", "2 + 3 * 4", "(2 + (3 * 4))"},
		{"left_assoc_sub", "10 - 3 - 2", "((10 - 3) - 2)"},
		{"left_assoc_div", "8 / 4 / 2", "((8 / 4) / 2)"},
		{"mixed_product", "2 * 3 % 4 / 5", "(((2 * 3) % 4) / 5)"},
		{"grouping", "(2 + 3) * 4", "((2 + 3) * 4)"},
		{"prefix_minus", "-5", "(0 - 5)"},
		{"prefix_plus", "+5", "5"},
		{"prefix_binds_tight", "-2 * 3", "((0 - 2) * 3)"},
		{"prefix_operand", "2 * -3", "(2 * (0 - 3))"},
		{"double_prefix", "- -4", "(0 - (0 - 4))"},
		{"declaration", "let x = 1\nx", "let x = 1\nx"},
		{"mutable_declaration", "let mut x = 1\nx", "let mut x = 1\nx"},
		{"assignment", "let mut x = 1\nx = x + 1\nx", "let mut x = 1\nx = (x + 1)\nx"},
		{"compound_add", "let mut x = 1\nx += 2\nx", "let mut x = 1\nx = (x + 2)\nx"},
		{"compound_mod", "let mut x = 7\nx %= 2 + 1\nx", "let mut x = 7\nx = (x % (2 + 1))\nx"},
		{"return", "return 1 + 1", "return (1 + 1)"},
		{"float_exponent", "1.5e3 + 2E-2", "(1.5e3 + 2E-2)"},
		{"comment", "1 // one\n// two\n2", "1\n2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prog := parse(t, tc.input)
			if got := prog.String(); got != tc.want {
				t.Errorf("got\n%s\nwant\n%s", got, tc.want)
			}
		})
	}
}

func TestParser_SymbolTable(t *testing.T) {
	table := symbols.NewTable()
	constants := symbols.NewConstantPool()
	_, err := parser.Parse(lexer.NewTokenStream(lexer.New("let a = 1\nlet mut b = a + 2\nb")), table, constants)
	if err != nil {
		t.Fatal(err)
	}

	a, ok := table.Find("a")
	if !ok || a.Mutable || a.Slot != 0 {
		t.Errorf("a = %+v", a)
	}
	b, ok := table.Find("b")
	if !ok || !b.Mutable || b.Slot != 1 {
		t.Errorf("b = %+v", b)
	}
	if constants.Len() != 2 {
		t.Errorf("constants = %v, want [1 2]", constants.Values())
	}
}

func TestParser_ConstantIndexes(t *testing.T) {
	prog := parse(t, "1 + 2 + 1.0")
	expr := stmtExpr(t, prog, 0).(*ast.BinaryExpression)
	one := expr.Right.(*ast.NumberLiteral)
	left := expr.Left.(*ast.BinaryExpression)
	first := left.Left.(*ast.NumberLiteral)
	two := left.Right.(*ast.NumberLiteral)
	if one.Index != first.Index {
		t.Errorf("1 and 1.0 should share a constant: %d vs %d", first.Index, one.Index)
	}
	if two.Index == first.Index {
		t.Errorf("1 and 2 must not share a constant")
	}
}

func TestParser_Positions(t *testing.T) {
	prog := parse(t, "let x = 1\n  x * 2")
	expr := stmtExpr(t, prog, 1).(*ast.BinaryExpression)
	if expr.Token.Line != 2 || expr.Token.Column != 5 {
		t.Errorf("'*' at %d:%d, want 2:5", expr.Token.Line, expr.Token.Column)
	}
	ref := expr.Left.(*ast.VariableRef)
	if ref.Token.Line != 2 || ref.Token.Column != 3 {
		t.Errorf("x at %d:%d, want 2:3", ref.Token.Line, ref.Token.Column)
	}
}

func TestParserProcessor_SeedsFromState(t *testing.T) {
	ctx := pipeline.NewPipelineContext("y + 1", nil)
	ctx.State.Set("y", bindingOf(3, true))

	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if len(ctx.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}
	sym, ok := ctx.SymbolTable.Find("y")
	if !ok || !sym.Predeclared || !sym.Mutable {
		t.Errorf("y = %+v", sym)
	}
	if !ctx.SymbolTable.Sealed() {
		t.Error("table should be sealed after parsing")
	}
}
