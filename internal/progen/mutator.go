package progen

import (
	"math/rand"

	"github.com/funvibe/snirk/internal/ast"
)

var mutationOperators = []string{"+", "-", "*", "/", "%"}

// Mutator applies random edits to a parsed program. The result still prints to
// source that parses; it may no longer verify.
type Mutator struct {
	src RandomSource
}

func NewMutator(seed int64) *Mutator {
	return &Mutator{src: rand.New(rand.NewSource(seed))}
}

func NewMutatorFromData(data []byte) *Mutator {
	return &Mutator{src: &ByteSource{data: data}}
}

// Mutate edits program in place.
func (m *Mutator) Mutate(program *ast.Program) {
	if program == nil || len(program.Statements) == 0 {
		return
	}

	idx := m.src.Intn(len(program.Statements))
	if len(program.Statements) > 1 && m.src.Intn(10) == 0 {
		program.Statements = append(program.Statements[:idx], program.Statements[idx+1:]...)
		return
	}

	switch s := program.Statements[idx].(type) {
	case *ast.Declaration:
		s.Value = m.mutateExpression(s.Value)
	case *ast.Assignment:
		s.Value = m.mutateExpression(s.Value)
	case *ast.ExpressionStatement:
		s.Expression = m.mutateExpression(s.Expression)
	}
}

func (m *Mutator) mutateExpression(expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.BinaryExpression:
		switch m.src.Intn(4) {
		case 0:
			e.Operator = mutationOperators[m.src.Intn(len(mutationOperators))]
			e.Token.Lexeme = e.Operator
		case 1:
			e.Left, e.Right = e.Right, e.Left
		case 2:
			e.Left = m.mutateExpression(e.Left)
		default:
			e.Right = m.mutateExpression(e.Right)
		}
		return e

	case *ast.NumberLiteral:
		// Printing falls back to the value once the lexeme is cleared.
		e.Value += float64(m.src.Intn(21) - 10)
		e.Token.Lexeme = ""
		return e

	case *ast.VariableRef:
		if m.src.Intn(2) == 0 {
			tok := e.Token
			tok.Lexeme = ""
			return &ast.NumberLiteral{Token: tok, Value: float64(m.src.Intn(10))}
		}
		return e
	}
	return expr
}
