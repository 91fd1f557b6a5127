package parser

import (
	"github.com/funvibe/snirk/internal/ast"
	"github.com/funvibe/snirk/internal/diagnostics"
	"github.com/funvibe/snirk/internal/token"
)

// parseOperand parses an expression in a position where one is required, so
// leading newlines are insignificant and EOF leaves the input unterminated.
func (p *Parser) parseOperand(precedence int, expected string) ast.Expression {
	p.skipNewlines()
	if p.failed() {
		return nil
	}
	if p.curTokenIs(token.EOF) {
		p.unterminated(p.curToken, expected)
		return nil
	}
	return p.parseExpression(precedence)
}

// parseExpression is the precedence-climbing core. Operators of equal
// precedence stop the loop, which makes every binary operator left-associative.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		p.fail(diagnostics.NewError(
			diagnostics.ErrP001,
			p.curToken,
			"expression too complex: recursion depth limit exceeded",
		))
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.unexpected(p.curToken, "expression")
		return nil
	}
	leftExp := prefix()
	if leftExp == nil || p.failed() {
		return nil
	}

	for {
		// Inside parentheses a line break never ends the statement.
		if p.parenDepth > 0 {
			p.skipPeekNewlines()
		}

		if precedence >= p.peekPrecedence() {
			break
		}

		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil || p.failed() {
			return nil
		}
	}

	return leftExp
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	idx, value, err := p.constants.AddLiteral(p.curToken.Literal)
	if err != nil {
		p.fail(diagnostics.NewError(diagnostics.ErrL002, p.curToken, err.Error()))
		return nil
	}
	return &ast.NumberLiteral{Token: p.curToken, Value: value, Index: idx}
}

func (p *Parser) parseVariableRef() ast.Expression {
	return &ast.VariableRef{Token: p.curToken, Name: p.curToken.Literal}
}

// parsePrefixExpression handles unary + and -. -x becomes (0 - x) so the tree
// keeps only literals, references and binary nodes.
func (p *Parser) parsePrefixExpression() ast.Expression {
	opToken := p.curToken
	p.nextToken()
	right := p.parseOperand(PREFIX, "operand after "+describe(opToken))
	if right == nil {
		return nil
	}
	if opToken.Type == token.PLUS {
		return right
	}

	zeroToken := token.Token{Type: token.NUMBER, Lexeme: "0", Literal: "0", Line: opToken.Line, Column: opToken.Column}
	return &ast.BinaryExpression{
		Token:    opToken,
		Operator: opToken.Lexeme,
		Left:     &ast.NumberLiteral{Token: zeroToken, Value: 0, Index: p.constants.Add(0)},
		Right:    right,
	}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.BinaryExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	// A newline after an operator continues the expression (x +\n y).
	expression.Right = p.parseOperand(precedence, "operand after "+describe(expression.Token))
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.parenDepth++
	defer func() { p.parenDepth-- }()

	p.nextToken() // consume '('
	exp := p.parseOperand(LOWEST, "expression after '('")
	if exp == nil {
		return nil
	}

	p.skipPeekNewlines()
	if !p.peekTokenIs(token.RPAREN) {
		p.unexpected(p.peekToken, "')'")
		return nil
	}
	p.nextToken()
	return exp
}
