package vm

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// Debugger observes a VM run instruction by instruction.
type Debugger struct {
	// Trace, when set, receives one disassembled line per executed instruction.
	Trace io.Writer

	// OnStop is called before the first instruction of every breakpoint line.
	OnStop func(*Debugger, *VM, *Chunk)

	// Breakpoints map: line -> set
	breakpoints map[int]bool

	// Last line stopped at, so a line with several instructions stops once
	lastLine int
}

// NewDebugger creates a debugger with no breakpoints.
func NewDebugger() *Debugger {
	return &Debugger{breakpoints: make(map[int]bool)}
}

// SetBreakpoint stops execution when line is reached.
func (d *Debugger) SetBreakpoint(line int) {
	d.breakpoints[line] = true
}

// RemoveBreakpoint removes the breakpoint at line, if any.
func (d *Debugger) RemoveBreakpoint(line int) {
	delete(d.breakpoints, line)
}

// ClearBreakpoints removes all breakpoints
func (d *Debugger) ClearBreakpoints() {
	clear(d.breakpoints)
}

// Breakpoints returns the breakpoint lines in ascending order.
func (d *Debugger) Breakpoints() []int {
	lines := make([]int, 0, len(d.breakpoints))
	for line := range d.breakpoints {
		lines = append(lines, line)
	}
	slices.Sort(lines)
	return lines
}

// reset forgets the last stop. Called at the start of every run.
func (d *Debugger) reset() {
	d.lastLine = 0
}

// before runs ahead of the instruction at vm.ip.
func (d *Debugger) before(vm *VM, chunk *Chunk) {
	if d.Trace != nil {
		var sb strings.Builder
		disassembleInstruction(&sb, chunk, vm.ip)
		io.WriteString(d.Trace, sb.String())
	}

	line := 0
	if vm.ip < len(chunk.Lines) {
		line = chunk.Lines[vm.ip]
	}
	if line == d.lastLine {
		return
	}
	d.lastLine = line
	if d.breakpoints[line] && d.OnStop != nil {
		d.OnStop(d, vm, chunk)
	}
}

// Inspect formats the registers and slots of a stopped VM.
func Inspect(vm *VM, chunk *Chunk) string {
	var sb strings.Builder
	line := 0
	if vm.ip < len(chunk.Lines) {
		line = chunk.Lines[vm.ip]
	}
	fmt.Fprintf(&sb, "stopped at instruction %d (line %d)\n", vm.ip, line)
	for i, v := range vm.registers {
		fmt.Fprintf(&sb, "  r%d = %g\n", i, v)
	}
	for i, slot := range chunk.Slots {
		if i < len(vm.slots) {
			fmt.Fprintf(&sb, "  %s = %g\n", slot.Name, vm.slots[i])
		}
	}
	return sb.String()
}
