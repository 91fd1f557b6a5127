package vm

// Slot describes one variable storage location of a chunk.
type Slot struct {
	Name    string
	Mutable bool
}

// Chunk is a compiled program: a flat instruction list plus everything the VM
// needs to run it.
type Chunk struct {
	// Code is the instruction sequence
	Code []Instruction

	// Constants pool, addressed by LOAD_CONST
	Constants []float64

	// Slots maps variable slot index to its binding name
	Slots []Slot

	// RegisterCount is the size of the register file the chunk needs
	RegisterCount int

	// Lines and Columns map instruction index to source position (for errors)
	Lines   []int
	Columns []int

	// Operands records, for DIV and MOD, the source text of the divisor
	Operands []string

	// File is the source file name
	File string
}

// NewChunk creates a new empty chunk
func NewChunk() *Chunk {
	return &Chunk{
		Code:     make([]Instruction, 0, 32),
		Lines:    make([]int, 0, 32),
		Columns:  make([]int, 0, 32),
		Operands: make([]string, 0, 32),
	}
}

// Write appends an instruction with its source position and returns its index.
func (c *Chunk) Write(ins Instruction, line, col int) int {
	c.Code = append(c.Code, ins)
	c.Lines = append(c.Lines, line)
	c.Columns = append(c.Columns, col)
	c.Operands = append(c.Operands, "")
	return len(c.Code) - 1
}

// Len returns the number of instructions in the chunk
func (c *Chunk) Len() int {
	return len(c.Code)
}

// SlotIndex returns the slot bound to name, or -1.
func (c *Chunk) SlotIndex(name string) int {
	for i, s := range c.Slots {
		if s.Name == name {
			return i
		}
	}
	return -1
}
