package vm

import (
	"errors"
	"fmt"
	"math"

	"github.com/funvibe/snirk/internal/diagnostics"
	"github.com/funvibe/snirk/internal/token"
)

var errMissingReturn = errors.New("chunk ended without RETURN")
var errInvalidRegister = errors.New("invalid register")
var errInvalidSlot = errors.New("invalid slot")
var errInvalidConstantIndex = errors.New("invalid constant index")

// Status is the lifecycle state of a VM run.
type Status int

const (
	StatusReady Status = iota
	StatusRunning
	StatusHalted
	StatusFaulted
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusHalted:
		return "halted"
	case StatusFaulted:
		return "faulted"
	}
	return "unknown"
}

// VM executes chunks against a session State.
//
// Each Run gets a fresh register file sized by the chunk. Stores go straight
// to the State, so a run that faults keeps whatever it committed before the
// faulting instruction.
type VM struct {
	state    *State
	status   Status
	debugger *Debugger

	registers []float64
	slots     []float64
	ip        int
}

// New creates a VM bound to state. A nil state gets a fresh one.
func New(state *State) *VM {
	if state == nil {
		state = NewState()
	}
	return &VM{state: state, status: StatusReady}
}

func (vm *VM) State() *State { return vm.state }

func (vm *VM) Status() Status { return vm.status }

// SetDebugger attaches d to later runs. A nil d detaches it.
func (vm *VM) SetDebugger(d *Debugger) { vm.debugger = d }

// Run executes chunk until RETURN and yields its value. Division or modulo by
// zero stops the run with a runtime DivideByZero diagnostic.
func (vm *VM) Run(chunk *Chunk) (float64, error) {
	vm.status = StatusRunning
	vm.registers = make([]float64, chunk.RegisterCount)
	vm.slots = make([]float64, len(chunk.Slots))
	vm.ip = 0
	if vm.debugger != nil {
		vm.debugger.reset()
	}

	for i, slot := range chunk.Slots {
		if b, ok := vm.state.Get(slot.Name); ok {
			vm.slots[i] = b.Value
		}
	}

	result, err := vm.run(chunk)
	if err != nil {
		vm.status = StatusFaulted
		return 0, err
	}
	vm.status = StatusHalted
	return result, nil
}

func (vm *VM) run(chunk *Chunk) (float64, error) {
	for vm.ip < len(chunk.Code) {
		ins := chunk.Code[vm.ip]
		if vm.debugger != nil {
			vm.debugger.before(vm, chunk)
		}

		switch ins.Op {
		case OP_LOAD_CONST:
			if ins.Left < 0 || ins.Left >= len(chunk.Constants) {
				return 0, vm.internalError(chunk, errInvalidConstantIndex)
			}
			if err := vm.setRegister(chunk, ins.Dest, chunk.Constants[ins.Left]); err != nil {
				return 0, err
			}

		case OP_LOAD_VAR:
			if ins.Left < 0 || ins.Left >= len(vm.slots) {
				return 0, vm.internalError(chunk, errInvalidSlot)
			}
			if err := vm.setRegister(chunk, ins.Dest, vm.slots[ins.Left]); err != nil {
				return 0, err
			}

		case OP_STORE_VAR:
			if ins.Dest < 0 || ins.Dest >= len(vm.slots) {
				return 0, vm.internalError(chunk, errInvalidSlot)
			}
			v, err := vm.register(chunk, ins.Left)
			if err != nil {
				return 0, err
			}
			vm.slots[ins.Dest] = v
			slot := chunk.Slots[ins.Dest]
			vm.state.Set(slot.Name, Binding{Value: v, Mutable: slot.Mutable})

		case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_MOD:
			a, err := vm.register(chunk, ins.Left)
			if err != nil {
				return 0, err
			}
			b, err := vm.register(chunk, ins.Right)
			if err != nil {
				return 0, err
			}
			v, err := vm.arithmetic(chunk, ins.Op, a, b)
			if err != nil {
				return 0, err
			}
			if err := vm.setRegister(chunk, ins.Dest, v); err != nil {
				return 0, err
			}

		case OP_RETURN:
			return vm.register(chunk, ins.Left)

		default:
			return 0, vm.internalError(chunk, fmt.Errorf("unknown opcode %d", ins.Op))
		}

		vm.ip++
	}

	return 0, vm.internalError(chunk, errMissingReturn)
}

func (vm *VM) arithmetic(chunk *Chunk, op Opcode, a, b float64) (float64, error) {
	switch op {
	case OP_ADD:
		return a + b, nil
	case OP_SUB:
		return a - b, nil
	case OP_MUL:
		return a * b, nil
	case OP_DIV:
		if b == 0 {
			return 0, vm.divideByZero(chunk, "division")
		}
		return a / b, nil
	case OP_MOD:
		if b == 0 {
			return 0, vm.divideByZero(chunk, "modulo")
		}
		return math.Mod(a, b), nil
	}
	return 0, vm.internalError(chunk, fmt.Errorf("not an arithmetic opcode: %s", op))
}

func (vm *VM) register(chunk *Chunk, r int) (float64, error) {
	if r < 0 || r >= len(vm.registers) {
		return 0, vm.internalError(chunk, fmt.Errorf("%w r%d", errInvalidRegister, r))
	}
	return vm.registers[r], nil
}

func (vm *VM) setRegister(chunk *Chunk, r int, v float64) error {
	if r < 0 || r >= len(vm.registers) {
		return vm.internalError(chunk, fmt.Errorf("%w r%d", errInvalidRegister, r))
	}
	vm.registers[r] = v
	return nil
}

// position returns the source token for the current instruction.
func (vm *VM) position(chunk *Chunk) token.Token {
	tok := token.Token{}
	if vm.ip < len(chunk.Lines) {
		tok.Line = chunk.Lines[vm.ip]
		tok.Column = chunk.Columns[vm.ip]
	}
	return tok
}

func (vm *VM) divideByZero(chunk *Chunk, what string) error {
	tok := vm.position(chunk)
	operand := ""
	if vm.ip < len(chunk.Operands) {
		operand = chunk.Operands[vm.ip]
	}
	tok.Lexeme = operand
	msg := what + " by zero"
	if operand != "" {
		msg = fmt.Sprintf("%s by zero (divisor %s)", what, operand)
	}
	de := diagnostics.NewNamedError(diagnostics.ErrR001, tok, operand, msg)
	de.File = chunk.File
	return de
}

func (vm *VM) internalError(chunk *Chunk, err error) error {
	tok := vm.position(chunk)
	return fmt.Errorf("vm: internal error at instruction %d (line %d): %w", vm.ip, tok.Line, err)
}
