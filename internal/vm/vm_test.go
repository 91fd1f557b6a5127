package vm_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/funvibe/snirk/internal/analyzer"
	"github.com/funvibe/snirk/internal/diagnostics"
	"github.com/funvibe/snirk/internal/lexer"
	"github.com/funvibe/snirk/internal/parser"
	"github.com/funvibe/snirk/internal/symbols"
	"github.com/funvibe/snirk/internal/vm"
)

// compile runs the front end and the compiler against state's bindings.
func compile(t *testing.T, state *vm.State, input string) *vm.Chunk {
	t.Helper()

	table := symbols.NewTable()
	for _, b := range state.Bindings() {
		table.Predeclare(b.Name, b.Mutable)
	}
	constants := symbols.NewConstantPool()

	program, err := parser.Parse(lexer.NewTokenStream(lexer.New(input)), table, constants)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	verified, err := analyzer.Verify(program, table)
	if err != nil {
		t.Fatalf("verify error: %s", err)
	}

	chunk, err := vm.NewCompiler().Compile(verified, table, constants)
	if err != nil {
		t.Fatalf("compilation error: %s", err)
	}
	return chunk
}

func runVM(t *testing.T, state *vm.State, input string) float64 {
	t.Helper()
	machine := vm.New(state)
	result, err := machine.Run(compile(t, state, input))
	if err != nil {
		t.Fatalf("runtime error: %s", err)
	}
	if machine.Status() != vm.StatusHalted {
		t.Fatalf("status = %s, want halted", machine.Status())
	}
	return result
}

func runVMExpectError(t *testing.T, state *vm.State, input string) *diagnostics.DiagnosticError {
	t.Helper()
	machine := vm.New(state)
	_, err := machine.Run(compile(t, state, input))
	if err == nil {
		t.Fatalf("expected runtime error, but code ran successfully")
	}
	if machine.Status() != vm.StatusFaulted {
		t.Fatalf("status = %s, want faulted", machine.Status())
	}
	var de *diagnostics.DiagnosticError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DiagnosticError, got %T: %v", err, err)
	}
	return de
}

func TestVM_Arithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"1", 1},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 - 3 - 2", 5},
		{"100 / 10 / 2", 5},
		{"7 % 3", 1},
		{"-7 % 3", -1},
		{"7.5 % 2", 1.5},
		{"1.5e2 + 0.5", 150.5},
		{"-(2 + 3)", -5},
		{"+4", 4},
		{"2 * -3", -6},
		{"1 / 4", 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := runVM(t, vm.NewState(), tt.input)
			if got != tt.expected {
				t.Errorf("%q = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestVM_DeclarationsAndAssignment(t *testing.T) {
	state := vm.NewState()
	got := runVM(t, state, "let mut x = 5\nlet y = x * 2\nx = y + 2\nx")
	if got != 12 {
		t.Fatalf("result = %v, want 12", got)
	}

	x, _ := state.Get("x")
	if x.Value != 12 || !x.Mutable {
		t.Errorf("x = %+v, want {12 true}", x)
	}
	y, _ := state.Get("y")
	if y.Value != 10 || y.Mutable {
		t.Errorf("y = %+v, want {10 false}", y)
	}
}

func TestVM_StatePersistsAcrossRuns(t *testing.T) {
	state := vm.NewState()
	runVM(t, state, "let mut x = 5\nlet y = x * 2\nx = y + 2\nx")

	if got := runVM(t, state, "x"); got != 12 {
		t.Errorf("x = %v, want 12", got)
	}
	if got := runVM(t, state, "x += y\nx"); got != 22 {
		t.Errorf("x += y = %v, want 22", got)
	}
}

func TestVM_CompoundAssignment(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"let mut a = 10\na += 5\na", 15},
		{"let mut a = 10\na -= 5\na", 5},
		{"let mut a = 10\na *= 5\na", 50},
		{"let mut a = 10\na /= 4\na", 2.5},
		{"let mut a = 10\na %= 4\na", 2},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := runVM(t, vm.NewState(), tt.input); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestVM_DivisionByZero(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		operand string
		msg     string
	}{
		{"variable divisor", "let z = 0\n10 / z", "z", "division by zero"},
		{"expression divisor", "(10 + 5) / (3 - 3)", "(3 - 3)", "division by zero"},
		{"modulo", "let z = 0\n10 % z", "z", "modulo by zero"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := runVMExpectError(t, vm.NewState(), tt.input)
			if de.Code != diagnostics.ErrR001 {
				t.Errorf("code = %s, want %s", de.Code, diagnostics.ErrR001)
			}
			if de.Name != tt.operand {
				t.Errorf("operand = %q, want %q", de.Name, tt.operand)
			}
			if !strings.Contains(de.Message, tt.msg) {
				t.Errorf("message %q should contain %q", de.Message, tt.msg)
			}
			if de.Token.Line == 0 {
				t.Errorf("expected a source position, got %+v", de.Token)
			}
		})
	}
}

func TestVM_FaultKeepsEarlierStores(t *testing.T) {
	state := vm.NewState()
	runVMExpectError(t, state, "let a = 1\nlet z = 0\nlet b = a / z\nb")

	if v, ok := state.Value("a"); !ok || v != 1 {
		t.Errorf("a = %v (%v), want 1", v, ok)
	}
	if _, ok := state.Get("b"); ok {
		t.Errorf("b must not be bound after the fault")
	}
}

func TestVM_FloatSemantics(t *testing.T) {
	got := runVM(t, vm.NewState(), "1e400")
	if !math.IsInf(got, 1) {
		t.Errorf("1e400 = %v, want +Inf", got)
	}
	got = runVM(t, vm.NewState(), "1e308 * 10 - 1e308 * 10")
	if !math.IsNaN(got) {
		t.Errorf("Inf - Inf = %v, want NaN", got)
	}
}

func TestCompiler_RegistersResetPerStatement(t *testing.T) {
	chunk := compile(t, vm.NewState(), "let a = 1 + 2 * 3\nlet b = a\nb + 1")

	// 1, 2, 3, the product and the sum: five registers, none reused within
	// the statement. Later statements need fewer.
	if chunk.RegisterCount != 5 {
		t.Errorf("RegisterCount = %d, want 5", chunk.RegisterCount)
	}
	last := chunk.Code[len(chunk.Code)-1]
	if last.Op != vm.OP_RETURN {
		t.Errorf("last op = %s, want RETURN", last.Op)
	}
	for i, ins := range chunk.Code {
		if ins.Op == vm.OP_RETURN && i != len(chunk.Code)-1 {
			t.Errorf("RETURN at %d is not the final instruction", i)
		}
	}
}

func TestCompiler_ConstantsAreDeduplicated(t *testing.T) {
	chunk := compile(t, vm.NewState(), "2 + 2 * 2.0")
	if len(chunk.Constants) != 1 {
		t.Errorf("constants = %v, want a single entry", chunk.Constants)
	}
}

func TestCompiler_SlotsFollowDeclarationOrder(t *testing.T) {
	chunk := compile(t, vm.NewState(), "let b = 1\nlet mut a = 2\na")
	if len(chunk.Slots) != 2 {
		t.Fatalf("slots = %v", chunk.Slots)
	}
	if chunk.Slots[0].Name != "b" || chunk.Slots[1].Name != "a" || !chunk.Slots[1].Mutable {
		t.Errorf("slots = %+v", chunk.Slots)
	}
	if chunk.SlotIndex("a") != 1 || chunk.SlotIndex("zz") != -1 {
		t.Errorf("SlotIndex lookups are wrong")
	}
}

func TestCompiler_RejectsEmptyProgram(t *testing.T) {
	if _, err := vm.NewCompiler().Compile(nil, symbols.NewTable(), symbols.NewConstantPool()); err == nil {
		t.Fatal("expected an error for a nil program")
	}
}

func TestVM_MissingReturnIsInternalError(t *testing.T) {
	chunk := vm.NewChunk()
	chunk.Constants = []float64{1}
	chunk.RegisterCount = 1
	chunk.Write(vm.Instruction{Op: vm.OP_LOAD_CONST, Dest: 0, Left: 0}, 1, 1)

	machine := vm.New(nil)
	_, err := machine.Run(chunk)
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := diagnostics.CodeOf(err); ok {
		t.Errorf("internal errors must not carry a diagnostic code: %v", err)
	}
	if machine.Status() != vm.StatusFaulted {
		t.Errorf("status = %s, want faulted", machine.Status())
	}
}

func TestVM_StatusStartsReady(t *testing.T) {
	if s := vm.New(nil).Status(); s != vm.StatusReady {
		t.Errorf("status = %s, want ready", s)
	}
}

func TestDisassemble(t *testing.T) {
	chunk := compile(t, vm.NewState(), "let x = 2\nx * 3")
	out := vm.Disassemble(chunk, "test")

	for _, want := range []string{"== test ==", "LOAD_CONST", "STORE_VAR", "v0 'x'", "MUL", "RETURN"} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly missing %q:\n%s", want, out)
		}
	}
}
