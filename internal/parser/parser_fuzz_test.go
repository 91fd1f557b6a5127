package parser_test

import (
	"testing"

	"github.com/funvibe/snirk/internal/diagnostics"
	"github.com/funvibe/snirk/internal/lexer"
	"github.com/funvibe/snirk/internal/parser"
	"github.com/funvibe/snirk/internal/progen"
	"github.com/funvibe/snirk/internal/symbols"
)

// FuzzParser feeds arbitrary text to the parser. It must never panic, and any
// failure must be a lex or parse diagnostic.
func FuzzParser(f *testing.F) {
	f.Add("let mut x = 5\nx = x + 1\nx")
	f.Add("(1 + (2 * 3)")
	f.Add("let 9x = 1")
	f.Add("a += b /= c")
	f.Add("1 $ 2")
	f.Add("((((((((((1))))))))))")

	f.Fuzz(func(t *testing.T, input string) {
		if len(input) > 10000 {
			return
		}
		_, err := parser.Parse(lexer.NewTokenStream(lexer.New(input)), symbols.NewTable(), symbols.NewConstantPool())
		if err == nil {
			return
		}
		code, ok := diagnostics.CodeOf(err)
		if !ok {
			t.Fatalf("non-diagnostic error %T: %v", err, err)
		}
		if s := code.Stage(); s != diagnostics.StageLex && s != diagnostics.StageParse {
			t.Fatalf("parser reported %s error %v", s, err)
		}
	})
}

// FuzzGeneratedPrograms checks that every generated program parses.
func FuzzGeneratedPrograms(f *testing.F) {
	f.Add([]byte{0})
	f.Add([]byte{5, 4, 3, 2, 1, 0, 1, 2, 3, 4, 5})

	f.Fuzz(func(t *testing.T, data []byte) {
		gen := progen.NewFromData(data)
		gen.Valid = false
		input := gen.GenerateProgram()
		if _, err := parser.Parse(lexer.NewTokenStream(lexer.New(input)), symbols.NewTable(), symbols.NewConstantPool()); err != nil {
			t.Fatalf("generated program does not parse: %v\n%s", err, input)
		}
	})
}
