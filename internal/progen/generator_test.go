package progen

import (
	"strings"
	"testing"
)

func TestGenerator_Deterministic(t *testing.T) {
	a := New(42).GenerateProgram()
	b := New(42).GenerateProgram()
	if a != b {
		t.Errorf("same seed produced different programs:\n%s\n---\n%s", a, b)
	}

	data := []byte{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5}
	if NewFromData(data).GenerateProgram() != NewFromData(data).GenerateProgram() {
		t.Error("same data produced different programs")
	}
}

func TestGenerator_EndsWithExpression(t *testing.T) {
	for seed := range int64(50) {
		prog := New(seed).GenerateProgram()
		lines := strings.Split(prog, "\n")
		last := lines[len(lines)-1]
		if strings.HasPrefix(last, "let ") || strings.Contains(last, "=") {
			t.Errorf("seed %d: last line %q is not an expression", seed, last)
		}
	}
}

func TestByteSource_Exhausted(t *testing.T) {
	s := &ByteSource{data: []byte{7}}
	if s.Intn(5) != 2 {
		t.Error("first draw should use the data")
	}
	if s.Intn(5) != 0 {
		t.Error("exhausted source should return 0")
	}
}

func TestIsZeroLiteral(t *testing.T) {
	tests := map[string]bool{
		"0":       true,
		"0.0":     true,
		"((0))":   true,
		"-0":      false,
		"1":       false,
		"v0":      false,
		"(0 + 1)": false,
	}
	for in, want := range tests {
		if got := isZeroLiteral(in); got != want {
			t.Errorf("isZeroLiteral(%q) = %v, want %v", in, got, want)
		}
	}
}
