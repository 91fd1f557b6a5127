package backend

import (
	"fmt"
	"math"

	"github.com/funvibe/snirk/internal/ast"
	"github.com/funvibe/snirk/internal/diagnostics"
	"github.com/funvibe/snirk/internal/pipeline"
	"github.com/funvibe/snirk/internal/vm"
)

// TreeWalkBackend evaluates the verified tree directly. It commits bindings
// and reports faults exactly like the VM and serves as a reference for it.
type TreeWalkBackend struct{}

// NewTreeWalk creates a new tree-walk backend
func NewTreeWalk() *TreeWalkBackend {
	return &TreeWalkBackend{}
}

// Run executes the program using tree-walk interpretation
func (b *TreeWalkBackend) Run(ctx *pipeline.PipelineContext) (float64, error) {
	if ctx.Verified == nil || ctx.Verified.Program == nil {
		return 0, fmt.Errorf("no program to execute")
	}

	w := &walker{state: ctx.State, file: ctx.Verified.Program.File}
	if w.state == nil {
		w.state = vm.NewState()
	}

	var result float64
	stmts := ctx.Verified.Program.Statements
	for i, stmt := range stmts {
		v, err := w.statement(stmt)
		if err != nil {
			return 0, err
		}
		if i == len(stmts)-1 {
			result = v
		}
	}
	return result, nil
}

// Name returns the backend name
func (b *TreeWalkBackend) Name() string {
	return "treewalk"
}

type walker struct {
	state *vm.State
	file  string
}

func (w *walker) statement(stmt ast.Statement) (float64, error) {
	switch s := stmt.(type) {
	case *ast.Declaration:
		return w.store(s.Name.Value, s.Mutable, s.Value)
	case *ast.Assignment:
		b, ok := w.state.Get(s.Name.Value)
		if !ok {
			return 0, fmt.Errorf("treewalk: %q assigned before declaration", s.Name.Value)
		}
		return w.store(s.Name.Value, b.Mutable, s.Value)
	case *ast.ExpressionStatement:
		return w.expression(s.Expression)
	}
	return 0, fmt.Errorf("treewalk: unknown statement type %T", stmt)
}

func (w *walker) store(name string, mutable bool, value ast.Expression) (float64, error) {
	v, err := w.expression(value)
	if err != nil {
		return 0, err
	}
	w.state.Set(name, vm.Binding{Value: v, Mutable: mutable})
	return v, nil
}

func (w *walker) expression(expr ast.Expression) (float64, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return e.Value, nil

	case *ast.VariableRef:
		v, _ := w.state.Value(e.Name)
		return v, nil

	case *ast.BinaryExpression:
		left, err := w.expression(e.Left)
		if err != nil {
			return 0, err
		}
		right, err := w.expression(e.Right)
		if err != nil {
			return 0, err
		}
		switch e.Operator {
		case "+":
			return left + right, nil
		case "-":
			return left - right, nil
		case "*":
			return left * right, nil
		case "/":
			if right == 0 {
				return 0, w.divideByZero(e, "division")
			}
			return left / right, nil
		case "%":
			if right == 0 {
				return 0, w.divideByZero(e, "modulo")
			}
			return math.Mod(left, right), nil
		}
		return 0, fmt.Errorf("treewalk: unknown operator %q", e.Operator)
	}
	return 0, fmt.Errorf("treewalk: unknown expression type %T", expr)
}

func (w *walker) divideByZero(e *ast.BinaryExpression, what string) error {
	operand := e.Right.String()
	tok := e.Token
	tok.Lexeme = operand
	de := diagnostics.NewNamedError(diagnostics.ErrR001, tok,
		operand, fmt.Sprintf("%s by zero (divisor %s)", what, operand))
	de.File = w.file
	return de
}
