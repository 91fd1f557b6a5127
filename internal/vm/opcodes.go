// Package vm implements the compiler to three-address code and the register
// machine that runs it.
package vm

// Opcode represents a single VM instruction
type Opcode byte

const (
	OP_LOAD_CONST Opcode = iota // R[Dest] = K[Left]
	OP_LOAD_VAR                 // R[Dest] = V[Left]
	OP_STORE_VAR                // V[Dest] = R[Left]

	// Arithmetic: R[Dest] = R[Left] op R[Right]
	OP_ADD // +
	OP_SUB // -
	OP_MUL // *
	OP_DIV // /
	OP_MOD // %

	OP_RETURN // halt with R[Left]
)

// OpcodeNames maps opcodes to their string names (for debugging)
var OpcodeNames = map[Opcode]string{
	OP_LOAD_CONST: "LOAD_CONST",
	OP_LOAD_VAR:   "LOAD_VAR",
	OP_STORE_VAR:  "STORE_VAR",

	OP_ADD: "ADD",
	OP_SUB: "SUB",
	OP_MUL: "MUL",
	OP_DIV: "DIV",
	OP_MOD: "MOD",

	OP_RETURN: "RETURN",
}

func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

// arithmeticOps maps infix operators to their opcode.
var arithmeticOps = map[string]Opcode{
	"+": OP_ADD,
	"-": OP_SUB,
	"*": OP_MUL,
	"/": OP_DIV,
	"%": OP_MOD,
}

// Instruction is one three-address instruction. The meaning of the operand
// fields depends on Op; see the opcode comments.
type Instruction struct {
	Op    Opcode
	Dest  int
	Left  int
	Right int
}
