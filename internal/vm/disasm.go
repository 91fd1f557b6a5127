package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// Disassemble returns a human-readable listing of the chunk.
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "== %s ==\n", name)
	fmt.Fprintf(&sb, "registers: %d  slots: %d  constants: %d\n",
		chunk.RegisterCount, len(chunk.Slots), len(chunk.Constants))

	for offset := range chunk.Code {
		disassembleInstruction(&sb, chunk, offset)
	}

	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) {
	fmt.Fprintf(sb, "%04d ", offset)

	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(sb, "%4d ", chunk.Lines[offset])
	}

	ins := chunk.Code[offset]
	name := ins.Op.String()

	switch ins.Op {
	case OP_LOAD_CONST:
		fmt.Fprintf(sb, "%-12s r%d, k%d '%s'\n", name, ins.Dest, ins.Left, constantText(chunk, ins.Left))
	case OP_LOAD_VAR:
		fmt.Fprintf(sb, "%-12s r%d, %s\n", name, ins.Dest, slotText(chunk, ins.Left))
	case OP_STORE_VAR:
		fmt.Fprintf(sb, "%-12s %s, r%d\n", name, slotText(chunk, ins.Dest), ins.Left)
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_MOD:
		fmt.Fprintf(sb, "%-12s r%d, r%d, r%d\n", name, ins.Dest, ins.Left, ins.Right)
	case OP_RETURN:
		fmt.Fprintf(sb, "%-12s r%d\n", name, ins.Left)
	default:
		fmt.Fprintf(sb, "Unknown opcode %d\n", ins.Op)
	}
}

func constantText(chunk *Chunk, idx int) string {
	if idx < 0 || idx >= len(chunk.Constants) {
		return "(invalid)"
	}
	return strconv.FormatFloat(chunk.Constants[idx], 'g', -1, 64)
}

func slotText(chunk *Chunk, idx int) string {
	if idx < 0 || idx >= len(chunk.Slots) {
		return fmt.Sprintf("v%d (invalid)", idx)
	}
	return fmt.Sprintf("v%d '%s'", idx, chunk.Slots[idx].Name)
}
