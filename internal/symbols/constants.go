package symbols

import (
	"errors"
	"fmt"
	"strconv"
)

// ConstantPool holds the distinct numeric literals of a program, in first-seen
// order. Literal text is converted here rather than in the lexer.
type ConstantPool struct {
	values []float64
	index  map[float64]int
	sealed bool
}

func NewConstantPool() *ConstantPool {
	return &ConstantPool{index: make(map[float64]int)}
}

// AddLiteral parses a numeric literal and interns it. Out-of-range literals
// saturate to ±Inf, matching IEEE 754 conversion.
func (p *ConstantPool) AddLiteral(text string) (int, float64, error) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, 0, fmt.Errorf("invalid numeric literal %q: %w", text, err)
	}
	return p.Add(v), v, nil
}

// Add interns v and returns its index. Equal values share one entry.
func (p *ConstantPool) Add(v float64) int {
	if idx, ok := p.index[v]; ok {
		return idx
	}
	if p.sealed {
		panic(fmt.Sprintf("symbols: add %v to sealed constant pool", v))
	}
	p.values = append(p.values, v)
	p.index[v] = len(p.values) - 1
	return len(p.values) - 1
}

func (p *ConstantPool) Get(idx int) (float64, bool) {
	if idx < 0 || idx >= len(p.values) {
		return 0, false
	}
	return p.values[idx], true
}

// Values returns a copy of the pool in index order.
func (p *ConstantPool) Values() []float64 {
	out := make([]float64, len(p.values))
	copy(out, p.values)
	return out
}

func (p *ConstantPool) Len() int { return len(p.values) }

func (p *ConstantPool) Seal() { p.sealed = true }
