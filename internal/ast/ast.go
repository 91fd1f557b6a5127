package ast

import (
	"strconv"
	"strings"

	"github.com/funvibe/snirk/internal/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
	String() string
}

// Statement is the closed set {*Declaration, *Assignment, *ExpressionStatement}.
type Statement interface {
	Node
	statementNode()
}

// Expression is the closed set {*NumberLiteral, *VariableRef, *BinaryExpression}.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every AST our parser produces.
type Program struct {
	File       string // Source file path
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) GetToken() token.Token {
	if p == nil || len(p.Statements) == 0 {
		return token.Token{}
	}
	return p.Statements[0].GetToken()
}

func (p *Program) String() string {
	lines := make([]string, 0, len(p.Statements))
	for _, s := range p.Statements {
		lines = append(lines, s.String())
	}
	return strings.Join(lines, "\n")
}

// Last returns the final statement, or nil for an empty program.
func (p *Program) Last() Statement {
	if p == nil || len(p.Statements) == 0 {
		return nil
	}
	return p.Statements[len(p.Statements)-1]
}

// VerifiedProgram marks a Program that passed semantic verification.
// Only analyzer.Verify constructs it; the compiler accepts nothing else.
type VerifiedProgram struct {
	Program *Program
}

// Declaration binds a new name.
// let x = 1 or let mut x = 1
type Declaration struct {
	Token   token.Token // The 'let' token
	Name    *Identifier
	Mutable bool
	Value   Expression
}

func (d *Declaration) statementNode()       {}
func (d *Declaration) TokenLiteral() string { return d.Token.Lexeme }
func (d *Declaration) GetToken() token.Token {
	if d == nil {
		return token.Token{}
	}
	return d.Token
}
func (d *Declaration) String() string {
	var sb strings.Builder
	sb.WriteString("let ")
	if d.Mutable {
		sb.WriteString("mut ")
	}
	sb.WriteString(d.Name.Value)
	sb.WriteString(" = ")
	sb.WriteString(d.Value.String())
	return sb.String()
}

// Assignment rebinds a mutable name. Compound forms are desugared by the parser,
// so x += 1 arrives here as x = (x + 1) with Operator "+=".
type Assignment struct {
	Token    token.Token // The assignment operator token
	Name     *Identifier
	Operator string
	Value    Expression
}

func (a *Assignment) statementNode()       {}
func (a *Assignment) TokenLiteral() string { return a.Token.Lexeme }
func (a *Assignment) GetToken() token.Token {
	if a == nil {
		return token.Token{}
	}
	return a.Token
}
func (a *Assignment) String() string {
	return a.Name.Value + " = " + a.Value.String()
}

// ExpressionStatement is a bare expression, optionally prefixed by 'return'.
type ExpressionStatement struct {
	Token      token.Token // The first token of the expression (or 'return')
	Expression Expression
	Return     bool
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}
func (es *ExpressionStatement) String() string {
	if es.Return {
		return "return " + es.Expression.String()
	}
	return es.Expression.String()
}

// Identifier is a name in binding position.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) String() string { return i.Value }

// NumberLiteral is a numeric constant; Index is its slot in the constant pool.
type NumberLiteral struct {
	Token token.Token
	Value float64
	Index int
}

func (nl *NumberLiteral) expressionNode()       {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Lexeme }
func (nl *NumberLiteral) GetToken() token.Token {
	if nl == nil {
		return token.Token{}
	}
	return nl.Token
}
func (nl *NumberLiteral) String() string {
	if nl.Token.Lexeme != "" {
		return nl.Token.Lexeme
	}
	return strconv.FormatFloat(nl.Value, 'g', -1, 64)
}

// IsZero reports whether the literal is numerically zero.
func (nl *NumberLiteral) IsZero() bool { return nl.Value == 0 }

// VariableRef reads a binding.
type VariableRef struct {
	Token token.Token
	Name  string
}

func (vr *VariableRef) expressionNode()       {}
func (vr *VariableRef) TokenLiteral() string { return vr.Token.Lexeme }
func (vr *VariableRef) GetToken() token.Token {
	if vr == nil {
		return token.Token{}
	}
	return vr.Token
}
func (vr *VariableRef) String() string { return vr.Name }

// BinaryExpression is left Operator right, Operator one of + - * / %.
type BinaryExpression struct {
	Token    token.Token // The operator token
	Operator string
	Left     Expression
	Right    Expression
}

func (be *BinaryExpression) expressionNode()       {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Lexeme }
func (be *BinaryExpression) GetToken() token.Token {
	if be == nil {
		return token.Token{}
	}
	return be.Token
}
func (be *BinaryExpression) String() string {
	return "(" + be.Left.String() + " " + be.Operator + " " + be.Right.String() + ")"
}
