package token

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"
	NEWLINE TokenType = "NEWLINE"

	// Identifiers + literals
	IDENT  TokenType = "IDENT"
	NUMBER TokenType = "NUMBER"

	// Operators
	ASSIGN          TokenType = "="
	PLUS            TokenType = "+"
	MINUS           TokenType = "-"
	ASTERISK        TokenType = "*"
	SLASH           TokenType = "/"
	PERCENT         TokenType = "%"
	PLUS_ASSIGN     TokenType = "+="
	MINUS_ASSIGN    TokenType = "-="
	ASTERISK_ASSIGN TokenType = "*="
	SLASH_ASSIGN    TokenType = "/="
	PERCENT_ASSIGN  TokenType = "%="

	// Delimiters
	LPAREN TokenType = "("
	RPAREN TokenType = ")"

	// Keywords
	LET    TokenType = "LET"
	MUT    TokenType = "MUT"
	RETURN TokenType = "RETURN"
)

// Token is a single lexical unit. Lexeme is the exact source text; Literal holds
// the message for ILLEGAL tokens and the lexeme otherwise.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal string
	Line    int
	Column  int
}

var keywords = map[string]TokenType{
	"let":    LET,
	"mut":    MUT,
	"return": RETURN,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether t is one of the reserved words.
func IsKeyword(t TokenType) bool {
	return t == LET || t == MUT || t == RETURN
}

// CompoundOperator maps a compound assignment token to its arithmetic operator.
// The second result is false for any other token.
func CompoundOperator(t TokenType) (TokenType, bool) {
	switch t {
	case PLUS_ASSIGN:
		return PLUS, true
	case MINUS_ASSIGN:
		return MINUS, true
	case ASTERISK_ASSIGN:
		return ASTERISK, true
	case SLASH_ASSIGN:
		return SLASH, true
	case PERCENT_ASSIGN:
		return PERCENT, true
	}
	return "", false
}
