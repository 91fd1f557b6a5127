package parser

import (
	"errors"
	"fmt"

	"github.com/funvibe/snirk/internal/ast"
	"github.com/funvibe/snirk/internal/diagnostics"
	"github.com/funvibe/snirk/internal/lexer"
	"github.com/funvibe/snirk/internal/pipeline"
	"github.com/funvibe/snirk/internal/symbols"
	"github.com/funvibe/snirk/internal/token"
)

const (
	_ int = iota
	LOWEST
	SUM     // + -
	PRODUCT // * / %
	PREFIX  // -x +x
)

// MaxRecursionDepth bounds nesting of parentheses and prefix operators.
const MaxRecursionDepth = 1000

var precedences = map[token.TokenType]int{
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser turns a token stream into a Program, filling the symbol table and the
// constant pool as it goes. It stops at the first error.
type Parser struct {
	stream    pipeline.TokenStream
	table     *symbols.Table
	constants *symbols.ConstantPool

	curToken  token.Token
	peekToken token.Token

	parenDepth int
	depth      int

	err *diagnostics.DiagnosticError

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(stream pipeline.TokenStream, table *symbols.Table, constants *symbols.ConstantPool) *Parser {
	p := &Parser{
		stream:    stream,
		table:     table,
		constants: constants,
	}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.NUMBER: p.parseNumberLiteral,
		token.IDENT:  p.parseVariableRef,
		token.LPAREN: p.parseGroupedExpression,
		token.MINUS:  p.parsePrefixExpression,
		token.PLUS:   p.parsePrefixExpression,
	}
	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for tt := range precedences {
		p.infixParseFns[tt] = p.parseInfixExpression
	}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

// Parse is a convenience wrapper around New + ParseProgram.
func Parse(stream pipeline.TokenStream, table *symbols.Table, constants *symbols.ConstantPool) (*ast.Program, error) {
	return New(stream, table, constants).ParseProgram()
}

// IsIncomplete reports whether err means the input stopped in the middle of an
// expression, so more input could complete it.
func IsIncomplete(err error) bool {
	var de *diagnostics.DiagnosticError
	return errors.As(err, &de) && de.Code == diagnostics.ErrP002
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.curToken.Type == token.EOF || p.curToken.Type == token.ILLEGAL {
		// Never pull past the end of input or past a lex error.
		return
	}
	p.peekToken = p.stream.Next()
	if p.peekToken.Type == token.ILLEGAL {
		p.fail(lexer.IllegalError(p.peekToken))
	}
}

func (p *Parser) failed() bool { return p.err != nil }

// fail records the first error only.
func (p *Parser) fail(err *diagnostics.DiagnosticError) {
	if p.err == nil {
		p.err = err
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// skipNewlines advances past NEWLINE tokens in current position.
func (p *Parser) skipNewlines() {
	for p.curTokenIs(token.NEWLINE) && !p.failed() {
		p.nextToken()
	}
}

// skipPeekNewlines drops NEWLINE tokens sitting in peek position.
func (p *Parser) skipPeekNewlines() {
	for p.peekTokenIs(token.NEWLINE) && !p.failed() {
		p.peekToken = p.stream.Next()
		if p.peekToken.Type == token.ILLEGAL {
			p.fail(lexer.IllegalError(p.peekToken))
		}
	}
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.NEWLINE:
		return "newline"
	}
	if token.IsKeyword(tok.Type) {
		return fmt.Sprintf("keyword %q", tok.Lexeme)
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

func (p *Parser) unexpected(tok token.Token, expected string) {
	if tok.Type == token.EOF {
		p.unterminated(tok, expected)
		return
	}
	msg := "unexpected " + describe(tok)
	if expected != "" {
		msg += ", expected " + expected
	}
	p.fail(diagnostics.NewError(diagnostics.ErrP001, tok, msg))
}

func (p *Parser) unterminated(tok token.Token, expected string) {
	p.fail(diagnostics.NewError(
		diagnostics.ErrP002,
		tok,
		"unexpected end of input, expected "+expected,
	))
}
