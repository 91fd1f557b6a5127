package vm_test

import (
	"strings"
	"testing"

	"github.com/funvibe/snirk/internal/vm"
)

func TestDebugger_Trace(t *testing.T) {
	state := vm.NewState()
	chunk := compile(t, state, "let x = 2\nx * 3")

	var trace strings.Builder
	d := vm.NewDebugger()
	d.Trace = &trace

	machine := vm.New(state)
	machine.SetDebugger(d)
	if _, err := machine.Run(chunk); err != nil {
		t.Fatalf("runtime error: %s", err)
	}

	lines := strings.Split(strings.TrimSuffix(trace.String(), "\n"), "\n")
	if len(lines) != len(chunk.Code) {
		t.Fatalf("trace has %d lines, want %d:\n%s", len(lines), len(chunk.Code), trace.String())
	}
	if !strings.Contains(lines[len(lines)-1], "RETURN") {
		t.Errorf("last trace line = %q", lines[len(lines)-1])
	}
}

func TestDebugger_Breakpoints(t *testing.T) {
	state := vm.NewState()
	chunk := compile(t, state, "let a = 1 + 1\nlet b = a * 5\nb")

	d := vm.NewDebugger()
	d.SetBreakpoint(2)
	d.SetBreakpoint(3)
	d.RemoveBreakpoint(3)
	if got := d.Breakpoints(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("Breakpoints() = %v, want [2]", got)
	}

	var stops []string
	d.OnStop = func(_ *vm.Debugger, m *vm.VM, c *vm.Chunk) {
		stops = append(stops, vm.Inspect(m, c))
	}

	machine := vm.New(state)
	machine.SetDebugger(d)
	if got, err := machine.Run(chunk); err != nil || got != 10 {
		t.Fatalf("Run = %v, %v; want 10", got, err)
	}

	// Line 2 has four instructions but stops once.
	if len(stops) != 1 {
		t.Fatalf("stopped %d times, want 1", len(stops))
	}
	if !strings.Contains(stops[0], "line 2") || !strings.Contains(stops[0], "a = 2") {
		t.Errorf("inspection = %q", stops[0])
	}

	d.ClearBreakpoints()
	stops = nil
	if _, err := machine.Run(chunk); err != nil {
		t.Fatal(err)
	}
	if len(stops) != 0 {
		t.Errorf("stopped after clearing breakpoints")
	}
}
