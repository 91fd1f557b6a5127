package diagnostics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/funvibe/snirk/internal/token"
)

func TestErrorCode_StageAndKind(t *testing.T) {
	tests := []struct {
		code  ErrorCode
		stage Stage
		kind  string
	}{
		{ErrL001, StageLex, "UnrecognizedCharacter"},
		{ErrL002, StageLex, "MalformedLiteral"},
		{ErrP002, StageParse, "UnterminatedExpression"},
		{ErrP003, StageParse, "Redeclaration"},
		{ErrA002, StageSemantic, "ImmutableAssignment"},
		{ErrA004, StageSemantic, "MissingFinalExpression"},
		{ErrR001, StageRuntime, "DivideByZero"},
		{WarnW001, StageWarning, "UnusedVariable"},
		{WarnW002, StageWarning, "NeverMutated"},
	}
	for _, tt := range tests {
		if got := tt.code.Stage(); got != tt.stage {
			t.Errorf("%s.Stage() = %s, want %s", tt.code, got, tt.stage)
		}
		if got := tt.code.Kind(); got != tt.kind {
			t.Errorf("%s.Kind() = %s, want %s", tt.code, got, tt.kind)
		}
	}
	if got := ErrorCode("X999").Kind(); got != "X999" {
		t.Errorf("unknown code kind = %s", got)
	}
}

func TestDiagnosticError_Error(t *testing.T) {
	tests := []struct {
		err  *DiagnosticError
		want string
	}{
		{
			NewError(ErrP001, token.Token{Line: 2, Column: 7}, "unexpected ')'"),
			"parse error at 2:7 [P001]: unexpected ')'",
		},
		{
			&DiagnosticError{Code: ErrR001, File: "calc.snirk", Token: token.Token{Line: 1, Column: 3}, Message: "division by zero"},
			"runtime error in calc.snirk at 1:3 [R001]: division by zero",
		},
		{
			NewError(ErrA004, token.Token{}, "program must end with an expression"),
			"semantic error [A004]: program must end with an expression",
		},
		{
			NewNamedError(WarnW001, token.Token{Line: 1, Column: 5}, "x", "x is declared but never used"),
			"warning at 1:5 [W001]: x is declared but never used",
		},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestDiagnosticError_IsAndCodeOf(t *testing.T) {
	err := NewNamedError(ErrA002, token.Token{Line: 1, Column: 1}, "x", "cannot assign")
	wrapped := fmt.Errorf("eval: %w", err)

	if !errors.Is(wrapped, &DiagnosticError{Code: ErrA002}) {
		t.Error("errors.Is should match by code")
	}
	if errors.Is(wrapped, &DiagnosticError{Code: ErrA001}) {
		t.Error("errors.Is should not match a different code")
	}
	if code, ok := CodeOf(wrapped); !ok || code != ErrA002 {
		t.Errorf("CodeOf = %s, %v", code, ok)
	}
	if _, ok := CodeOf(errors.New("plain")); ok {
		t.Error("CodeOf(plain) should fail")
	}
	if err.Name != "x" || err.Kind() != "ImmutableAssignment" || err.Stage() != StageSemantic {
		t.Errorf("unexpected fields: %+v", err)
	}
}
