package vm

import (
	"errors"
	"fmt"

	"github.com/funvibe/snirk/internal/ast"
	"github.com/funvibe/snirk/internal/symbols"
)

var errNoFinalExpression = errors.New("program has no final expression")

// Compiler lowers a verified program to three-address code.
//
// Registers are handed out in increasing order within a statement and the
// counter starts over at the next statement: a register is never read after
// the statement that wrote it, so the file only needs to be as large as the
// hungriest statement. Variables live in slots, not registers.
type Compiler struct {
	chunk *Chunk
	table *symbols.Table

	nextRegister int
	maxRegisters int
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile produces a chunk for program. The symbol table and constant pool are
// the ones the parser built for it.
func (c *Compiler) Compile(program *ast.VerifiedProgram, table *symbols.Table, constants *symbols.ConstantPool) (*Chunk, error) {
	if program == nil || program.Program == nil {
		return nil, errNoFinalExpression
	}

	c.chunk = NewChunk()
	c.chunk.File = program.Program.File
	c.chunk.Constants = constants.Values()
	c.table = table
	c.maxRegisters = 0

	for _, sym := range table.Symbols() {
		c.chunk.Slots = append(c.chunk.Slots, Slot{Name: sym.Name, Mutable: sym.Mutable})
	}

	stmts := program.Program.Statements
	if len(stmts) == 0 {
		return nil, errNoFinalExpression
	}
	for i, stmt := range stmts {
		c.nextRegister = 0
		if err := c.compileStatement(stmt, i == len(stmts)-1); err != nil {
			return nil, err
		}
	}

	c.chunk.RegisterCount = c.maxRegisters
	return c.chunk, nil
}

func (c *Compiler) compileStatement(stmt ast.Statement, last bool) error {
	switch s := stmt.(type) {
	case *ast.Declaration:
		return c.compileStore(s.Name, s.Value)

	case *ast.Assignment:
		return c.compileStore(s.Name, s.Value)

	case *ast.ExpressionStatement:
		reg, err := c.compileExpression(s.Expression)
		if err != nil {
			return err
		}
		if last {
			tok := s.Expression.GetToken()
			c.chunk.Write(Instruction{Op: OP_RETURN, Left: reg}, tok.Line, tok.Column)
		}
		return nil

	default:
		return fmt.Errorf("compiler: unknown statement type %T", stmt)
	}
}

// compileStore evaluates value and writes it to name's slot.
func (c *Compiler) compileStore(name *ast.Identifier, value ast.Expression) error {
	sym, ok := c.table.Find(name.Value)
	if !ok {
		return fmt.Errorf("compiler: no slot for %q", name.Value)
	}
	reg, err := c.compileExpression(value)
	if err != nil {
		return err
	}
	c.chunk.Write(Instruction{Op: OP_STORE_VAR, Dest: sym.Slot, Left: reg}, name.Token.Line, name.Token.Column)
	return nil
}

// compileExpression emits code for expr (post-order) and returns the register
// holding its value.
func (c *Compiler) compileExpression(expr ast.Expression) (int, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		reg := c.allocRegister()
		c.chunk.Write(Instruction{Op: OP_LOAD_CONST, Dest: reg, Left: e.Index}, e.Token.Line, e.Token.Column)
		return reg, nil

	case *ast.VariableRef:
		sym, ok := c.table.Find(e.Name)
		if !ok {
			return 0, fmt.Errorf("compiler: no slot for %q", e.Name)
		}
		reg := c.allocRegister()
		c.chunk.Write(Instruction{Op: OP_LOAD_VAR, Dest: reg, Left: sym.Slot}, e.Token.Line, e.Token.Column)
		return reg, nil

	case *ast.BinaryExpression:
		op, ok := arithmeticOps[e.Operator]
		if !ok {
			return 0, fmt.Errorf("compiler: unknown operator %q", e.Operator)
		}
		left, err := c.compileExpression(e.Left)
		if err != nil {
			return 0, err
		}
		right, err := c.compileExpression(e.Right)
		if err != nil {
			return 0, err
		}
		dest := c.allocRegister()
		idx := c.chunk.Write(Instruction{Op: op, Dest: dest, Left: left, Right: right}, e.Token.Line, e.Token.Column)
		if op == OP_DIV || op == OP_MOD {
			c.chunk.Operands[idx] = e.Right.String()
		}
		return dest, nil

	default:
		return 0, fmt.Errorf("compiler: unknown expression type %T", expr)
	}
}

func (c *Compiler) allocRegister() int {
	reg := c.nextRegister
	c.nextRegister++
	if c.nextRegister > c.maxRegisters {
		c.maxRegisters = c.nextRegister
	}
	return reg
}
