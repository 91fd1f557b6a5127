package analyzer

import (
	"fmt"

	"github.com/funvibe/snirk/internal/ast"
	"github.com/funvibe/snirk/internal/diagnostics"
	"github.com/funvibe/snirk/internal/symbols"
	"github.com/funvibe/snirk/internal/token"
)

// Analyzer validates a parsed program against its symbol table in one pass.
// It never changes the tree, so verifying twice gives the same answer.
type Analyzer struct {
	table *symbols.Table

	// declared holds names whose declaration has been fully walked, plus every
	// predeclared name from the session.
	declared map[string]bool

	// used and mutated feed the usage lint.
	used    map[string]bool
	mutated map[string]bool

	warnings []*diagnostics.DiagnosticError
}

func New(table *symbols.Table) *Analyzer {
	return &Analyzer{table: table}
}

// Verify checks program and, on success, returns it wrapped as verified.
func Verify(program *ast.Program, table *symbols.Table) (*ast.VerifiedProgram, error) {
	return New(table).Verify(program)
}

func (a *Analyzer) Verify(program *ast.Program) (*ast.VerifiedProgram, error) {
	a.declared = make(map[string]bool)
	a.used = make(map[string]bool)
	a.mutated = make(map[string]bool)
	a.warnings = nil
	for _, sym := range a.table.Symbols() {
		if sym.Predeclared {
			a.declared[sym.Name] = true
		}
	}

	for _, stmt := range program.Statements {
		if err := a.checkStatement(stmt); err != nil {
			return nil, err
		}
	}

	if _, ok := program.Last().(*ast.ExpressionStatement); !ok {
		tok := token.Token{}
		if last := program.Last(); last != nil {
			tok = last.GetToken()
		}
		return nil, diagnostics.NewError(
			diagnostics.ErrA004,
			tok,
			"program must end with an expression",
		)
	}

	a.lintUsage()
	return &ast.VerifiedProgram{Program: program}, nil
}

// Warnings returns the usage warnings of the last successful Verify, in
// declaration order. Bindings carried over from earlier submissions are not
// linted.
func (a *Analyzer) Warnings() []*diagnostics.DiagnosticError {
	return a.warnings
}

func (a *Analyzer) lintUsage() {
	for _, sym := range a.table.Symbols() {
		if sym.Predeclared {
			continue
		}
		if !a.used[sym.Name] {
			a.warnings = append(a.warnings, diagnostics.NewNamedError(
				diagnostics.WarnW001,
				sym.Token,
				sym.Name,
				fmt.Sprintf("variable %q is declared but never used", sym.Name),
			))
		}
		if sym.Mutable && !a.mutated[sym.Name] {
			a.warnings = append(a.warnings, diagnostics.NewNamedError(
				diagnostics.WarnW002,
				sym.Token,
				sym.Name,
				fmt.Sprintf("variable %q is declared mutable but never mutated", sym.Name),
			))
		}
	}
}

func (a *Analyzer) checkStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.Declaration:
		// The initializer cannot see the name it is about to bind.
		if err := a.checkExpression(s.Value); err != nil {
			return err
		}
		a.declared[s.Name.Value] = true
		return nil

	case *ast.Assignment:
		if err := a.checkExpression(s.Value); err != nil {
			return err
		}
		sym, ok := a.lookup(s.Name.Value)
		if !ok {
			return unknownVariable(s.Name.Token, s.Name.Value)
		}
		if !sym.Mutable {
			return diagnostics.NewNamedError(
				diagnostics.ErrA002,
				s.Name.Token,
				s.Name.Value,
				fmt.Sprintf("cannot assign to %q: declared without 'mut'", s.Name.Value),
			)
		}
		a.mutated[s.Name.Value] = true
		return nil

	case *ast.ExpressionStatement:
		return a.checkExpression(s.Expression)

	default:
		return fmt.Errorf("analyzer: unknown statement type %T", stmt)
	}
}

func (a *Analyzer) checkExpression(expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return nil

	case *ast.VariableRef:
		if _, ok := a.lookup(e.Name); !ok {
			return unknownVariable(e.Token, e.Name)
		}
		a.used[e.Name] = true
		return nil

	case *ast.BinaryExpression:
		if err := a.checkExpression(e.Left); err != nil {
			return err
		}
		if err := a.checkExpression(e.Right); err != nil {
			return err
		}
		if e.Operator == "/" || e.Operator == "%" {
			if lit, ok := e.Right.(*ast.NumberLiteral); ok && lit.IsZero() {
				return diagnostics.NewError(
					diagnostics.ErrA003,
					e.Token,
					fmt.Sprintf("constant divide by zero in %s", e.String()),
				)
			}
		}
		return nil

	default:
		return fmt.Errorf("analyzer: unknown expression type %T", expr)
	}
}

// lookup finds a symbol that is visible at this point of the walk.
func (a *Analyzer) lookup(name string) (*symbols.Symbol, bool) {
	if !a.declared[name] {
		return nil, false
	}
	return a.table.Find(name)
}

func unknownVariable(tok token.Token, name string) error {
	return diagnostics.NewNamedError(
		diagnostics.ErrA001,
		tok,
		name,
		fmt.Sprintf("unknown variable %q", name),
	)
}
