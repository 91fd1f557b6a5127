package diagnostics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/snirk/internal/token"
)

type ErrorCode string

// Stage identifies the pipeline stage that produced an error.
type Stage string

const (
	StageLex      Stage = "lex"
	StageParse    Stage = "parse"
	StageSemantic Stage = "semantic"
	StageRuntime  Stage = "runtime"
	StageWarning  Stage = "warning"
)

const (
	// Lexer
	ErrL001 ErrorCode = "L001" // unrecognized character
	ErrL002 ErrorCode = "L002" // malformed identifier or number

	// Parser
	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // unterminated expression
	ErrP003 ErrorCode = "P003" // redeclaration
	ErrP004 ErrorCode = "P004" // assignment without '='

	// Verifier
	ErrA001 ErrorCode = "A001" // unknown variable
	ErrA002 ErrorCode = "A002" // assignment to immutable binding
	ErrA003 ErrorCode = "A003" // constant divide by zero
	ErrA004 ErrorCode = "A004" // missing final expression

	// Runtime
	ErrR001 ErrorCode = "R001" // divide by zero

	// Verifier warnings; these never stop the pipeline
	WarnW001 ErrorCode = "W001" // declared but never used
	WarnW002 ErrorCode = "W002" // declared mut but never mutated
)

var codeKinds = map[ErrorCode]string{
	ErrL001: "UnrecognizedCharacter",
	ErrL002: "MalformedLiteral",
	ErrP001: "UnexpectedToken",
	ErrP002: "UnterminatedExpression",
	ErrP003: "Redeclaration",
	ErrP004: "MissingAssign",
	ErrA001: "UnknownVariable",
	ErrA002: "ImmutableAssignment",
	ErrA003: "ConstantDivideByZero",
	ErrA004: "MissingFinalExpression",
	ErrR001: "DivideByZero",

	WarnW001: "UnusedVariable",
	WarnW002: "NeverMutated",
}

// Stage returns the pipeline stage the code belongs to.
func (c ErrorCode) Stage() Stage {
	switch {
	case strings.HasPrefix(string(c), "L"):
		return StageLex
	case strings.HasPrefix(string(c), "P"):
		return StageParse
	case strings.HasPrefix(string(c), "A"):
		return StageSemantic
	case strings.HasPrefix(string(c), "W"):
		return StageWarning
	default:
		return StageRuntime
	}
}

// Kind returns the symbolic name of the code, e.g. "ImmutableAssignment".
func (c ErrorCode) Kind() string {
	if k, ok := codeKinds[c]; ok {
		return k
	}
	return string(c)
}

// DiagnosticError is the structured error value every stage reports.
// Token carries the position; Name is set for errors about a specific binding.
type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	File    string
	Name    string
	Message string
}

func NewError(code ErrorCode, tok token.Token, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Token: tok, Message: msg}
}

// NewNamedError is NewError for diagnostics that refer to a binding.
func NewNamedError(code ErrorCode, tok token.Token, name, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Token: tok, Name: name, Message: msg}
}

func (e *DiagnosticError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code.Stage()))
	if e.Code.Stage() != StageWarning {
		sb.WriteString(" error")
	}
	if e.File != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.File)
	}
	if e.Token.Line > 0 {
		fmt.Fprintf(&sb, " at %d:%d", e.Token.Line, e.Token.Column)
	}
	fmt.Fprintf(&sb, " [%s]: %s", e.Code, e.Message)
	return sb.String()
}

func (e *DiagnosticError) Stage() Stage { return e.Code.Stage() }

func (e *DiagnosticError) Kind() string { return e.Code.Kind() }

// Is matches another *DiagnosticError by code, so errors.Is(err, &DiagnosticError{Code: ErrA002})
// works without comparing positions.
func (e *DiagnosticError) Is(target error) bool {
	t, ok := target.(*DiagnosticError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf extracts the diagnostic code from err, if it wraps a *DiagnosticError.
func CodeOf(err error) (ErrorCode, bool) {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}
