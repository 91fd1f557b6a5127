package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/snirk/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// NextToken returns the next token. After the input is exhausted it keeps
// returning EOF. Invalid input yields an ILLEGAL token whose Literal is the
// reason; use IllegalError to turn it into a diagnostic.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	line, col := l.line, l.column

	if l.atEOF() {
		return token.Token{Type: token.EOF, Line: line, Column: col}
	}

	var tok token.Token

	switch l.ch {
	case '\n':
		tok = newToken(token.NEWLINE, "\n", line, col)
	case '=':
		tok = newToken(token.ASSIGN, "=", line, col)
	case '+':
		tok = l.operatorOrAssign(token.PLUS, token.PLUS_ASSIGN, line, col)
	case '-':
		tok = l.operatorOrAssign(token.MINUS, token.MINUS_ASSIGN, line, col)
	case '*':
		tok = l.operatorOrAssign(token.ASTERISK, token.ASTERISK_ASSIGN, line, col)
	case '/':
		tok = l.operatorOrAssign(token.SLASH, token.SLASH_ASSIGN, line, col)
	case '%':
		tok = l.operatorOrAssign(token.PERCENT, token.PERCENT_ASSIGN, line, col)
	case '(':
		tok = newToken(token.LPAREN, "(", line, col)
	case ')':
		tok = newToken(token.RPAREN, ")", line, col)
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(ident), Lexeme: ident, Literal: ident, Line: line, Column: col}
		}
		if isDigit(l.ch) {
			return l.readNumber()
		}
		lexeme := string(l.ch)
		tok = token.Token{
			Type:    token.ILLEGAL,
			Lexeme:  lexeme,
			Literal: fmt.Sprintf("unrecognized character %q", l.ch),
			Line:    line,
			Column:  col,
		}
	}

	l.readChar()
	return tok
}

// operatorOrAssign handles the single-character operators that have an "op=" form.
// On return the current char is the last char of the token.
func (l *Lexer) operatorOrAssign(op, assign token.TokenType, line, col int) token.Token {
	if l.peekChar() == '=' {
		ch := l.ch
		l.readChar()
		return newToken(assign, string(ch)+"=", line, col)
	}
	return newToken(op, string(l.ch), line, col)
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads digits, an optional fraction and an optional exponent.
// The literal text is kept verbatim; conversion happens when the constant pool
// is built, so lexing never fails on range.
func (l *Lexer) readNumber() token.Token {
	startLine, startCol := l.line, l.column
	position := l.position

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // .
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		peek := l.peekChar()
		if isDigit(peek) || ((peek == '+' || peek == '-') && isDigit(l.peekChar2())) {
			l.readChar() // e
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	if isLetter(l.ch) {
		// 2abc, 1e, 1.5x: a name may not start with a digit
		tail := l.position
		l.readIdentifier()
		lexeme := l.input[position:l.position]
		reason := fmt.Sprintf("identifier cannot start with a digit: %q", lexeme)
		if tail < len(l.input) && (l.input[tail] == 'e' || l.input[tail] == 'E') && l.position == tail+1 {
			reason = fmt.Sprintf("malformed exponent in number %q", lexeme)
		}
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: reason, Line: startLine, Column: startCol}
	}

	lexeme := l.input[position:l.position]
	return token.Token{Type: token.NUMBER, Lexeme: lexeme, Literal: lexeme, Line: startLine, Column: startCol}
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekChar2() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	_, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	pos2 := l.readPosition + w
	if pos2 >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos2:])
	return r
}

func newToken(tokenType token.TokenType, lexeme string, line, col int) token.Token {
	return token.Token{Type: tokenType, Lexeme: lexeme, Literal: lexeme, Line: line, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}
		// Line comments run up to, but not including, the newline.
		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
			continue
		}
		break
	}
}
