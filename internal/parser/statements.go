package parser

import (
	"fmt"

	"github.com/funvibe/snirk/internal/ast"
	"github.com/funvibe/snirk/internal/diagnostics"
	"github.com/funvibe/snirk/internal/token"
)

// ParseProgram parses statements until EOF. Each statement ends at a NEWLINE
// or at EOF; blank lines are skipped.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{Statements: []ast.Statement{}}

	for !p.failed() && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
			continue
		}

		stmt := p.parseStatement()
		if p.failed() {
			break
		}
		program.Statements = append(program.Statements, stmt)

		// curToken is the last token of the statement
		if !p.peekTokenIs(token.NEWLINE) && !p.peekTokenIs(token.EOF) {
			p.unexpected(p.peekToken, "end of statement")
			break
		}
		p.nextToken()
	}

	if p.err != nil {
		return nil, p.err
	}
	return program, nil
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LET:
		return p.parseDeclaration()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.IDENT:
		if p.peekTokenIs(token.ASSIGN) {
			return p.parseAssignment()
		}
		if _, ok := token.CompoundOperator(p.peekToken.Type); ok {
			return p.parseAssignment()
		}
	}
	return p.parseExpressionStatement()
}

// parseDeclaration parses let [mut] name = expr. The name enters the symbol
// table as soon as it is read.
func (p *Parser) parseDeclaration() ast.Statement {
	decl := &ast.Declaration{Token: p.curToken}

	if p.peekTokenIs(token.MUT) {
		p.nextToken()
		decl.Mutable = true
	}

	if !p.peekTokenIs(token.IDENT) {
		p.unexpected(p.peekToken, "variable name")
		return nil
	}
	p.nextToken()
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if _, ok := p.table.Define(decl.Name.Value, decl.Mutable, decl.Name.Token); !ok {
		p.fail(diagnostics.NewNamedError(
			diagnostics.ErrP003,
			decl.Name.Token,
			decl.Name.Value,
			fmt.Sprintf("%q is already declared", decl.Name.Value),
		))
		return nil
	}

	if !p.peekTokenIs(token.ASSIGN) {
		p.fail(diagnostics.NewNamedError(
			diagnostics.ErrP004,
			p.peekToken,
			decl.Name.Value,
			fmt.Sprintf("expected '=' after %q, got %s", decl.Name.Value, describe(p.peekToken)),
		))
		return nil
	}
	p.nextToken() // =
	p.nextToken()

	decl.Value = p.parseOperand(LOWEST, "initializer")
	if decl.Value == nil {
		return nil
	}
	return decl
}

// parseAssignment parses name = expr and name op= expr. The compound form is
// rewritten to name = name op expr here.
func (p *Parser) parseAssignment() ast.Statement {
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	p.nextToken()
	opToken := p.curToken

	stmt := &ast.Assignment{Token: opToken, Name: name, Operator: opToken.Lexeme}

	p.nextToken()
	value := p.parseOperand(LOWEST, "value")
	if value == nil {
		return nil
	}

	if op, ok := token.CompoundOperator(opToken.Type); ok {
		value = &ast.BinaryExpression{
			Token:    token.Token{Type: op, Lexeme: string(op), Literal: string(op), Line: opToken.Line, Column: opToken.Column},
			Operator: string(op),
			Left:     &ast.VariableRef{Token: name.Token, Name: name.Value},
			Right:    value,
		}
	}
	stmt.Value = value
	return stmt
}

// parseReturnStatement parses 'return expr'. The keyword only marks the
// statement; it has no effect on evaluation.
func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken, Return: true}
	p.nextToken()
	stmt.Expression = p.parseOperand(LOWEST, "expression after 'return'")
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}
