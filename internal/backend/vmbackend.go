package backend

import (
	"fmt"
	"io"

	"github.com/funvibe/snirk/internal/pipeline"
	"github.com/funvibe/snirk/internal/vm"
)

// VMBackend executes programs using the register VM
type VMBackend struct {
	// Trace, when set, receives every executed instruction.
	Trace io.Writer

	// Breakpoints are source lines; on reaching one the VM state is dumped
	// to Stops.
	Breakpoints []int
	Stops       io.Writer
}

// NewVM creates a new VM backend
func NewVM() *VMBackend {
	return &VMBackend{}
}

// Run executes ctx.Chunk, compiling ctx.Verified first when no compile stage
// ran.
func (b *VMBackend) Run(ctx *pipeline.PipelineContext) (float64, error) {
	chunk := ctx.Chunk
	if chunk == nil {
		if ctx.Verified == nil {
			return 0, fmt.Errorf("no program to run")
		}
		var err error
		chunk, err = vm.NewCompiler().Compile(ctx.Verified, ctx.SymbolTable, ctx.Constants)
		if err != nil {
			return 0, err
		}
		ctx.Chunk = chunk
	}

	machine := vm.New(ctx.State)
	if d := b.debugger(); d != nil {
		machine.SetDebugger(d)
	}
	return machine.Run(chunk)
}

func (b *VMBackend) debugger() *vm.Debugger {
	if b.Trace == nil && (len(b.Breakpoints) == 0 || b.Stops == nil) {
		return nil
	}
	d := vm.NewDebugger()
	d.Trace = b.Trace
	if b.Stops != nil {
		for _, line := range b.Breakpoints {
			d.SetBreakpoint(line)
		}
		d.OnStop = func(_ *vm.Debugger, m *vm.VM, c *vm.Chunk) {
			io.WriteString(b.Stops, vm.Inspect(m, c))
		}
	}
	return d
}

// Name returns the backend name
func (b *VMBackend) Name() string {
	return "vm"
}
