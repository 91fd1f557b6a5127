package lexer

import (
	"iter"
	"unicode/utf8"

	"github.com/funvibe/snirk/internal/diagnostics"
	"github.com/funvibe/snirk/internal/pipeline"
	"github.com/funvibe/snirk/internal/token"
)

// TokenStream buffers tokens pulled lazily from a Lexer so the parser can look
// ahead without forcing the whole input to be tokenized.
type TokenStream struct {
	lexer  *Lexer
	buffer []token.Token
}

func NewTokenStream(l *Lexer) *TokenStream {
	return &TokenStream{lexer: l}
}

// Next consumes and returns the next token.
func (s *TokenStream) Next() token.Token {
	if len(s.buffer) > 0 {
		tok := s.buffer[0]
		s.buffer = s.buffer[1:]
		return tok
	}
	return s.lexer.NextToken()
}

// Peek returns up to n upcoming tokens without consuming them. The slice stops
// early at EOF or at an ILLEGAL token.
func (s *TokenStream) Peek(n int) []token.Token {
	for len(s.buffer) < n {
		if k := len(s.buffer); k > 0 {
			last := s.buffer[k-1].Type
			if last == token.EOF || last == token.ILLEGAL {
				break
			}
		}
		s.buffer = append(s.buffer, s.lexer.NextToken())
	}
	if n > len(s.buffer) {
		n = len(s.buffer)
	}
	return s.buffer[:n]
}

// Tokenize lexes input lazily. Every call starts from scratch. The sequence ends
// after EOF, or right after the first invalid token, which is paired with its
// *diagnostics.DiagnosticError.
func Tokenize(input string) iter.Seq2[token.Token, error] {
	return func(yield func(token.Token, error) bool) {
		l := New(input)
		for {
			tok := l.NextToken()
			if tok.Type == token.ILLEGAL {
				yield(tok, IllegalError(tok))
				return
			}
			if !yield(tok, nil) || tok.Type == token.EOF {
				return
			}
		}
	}
}

// IllegalError converts an ILLEGAL token into a lex diagnostic. Anything that
// begins with a digit is a malformed literal; everything else is an
// unrecognized character.
func IllegalError(tok token.Token) *diagnostics.DiagnosticError {
	code := diagnostics.ErrL001
	if r, _ := utf8.DecodeRuneInString(tok.Lexeme); isDigit(r) {
		code = diagnostics.ErrL002
	}
	return diagnostics.NewError(code, tok, tok.Literal)
}

type LexerProcessor struct{}

// Process installs a lazy token stream; lex errors surface when the parser
// reaches the offending token.
func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ctx.TokenStream = NewTokenStream(New(ctx.SourceCode))
	return ctx
}
