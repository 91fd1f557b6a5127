// Package progen generates random snirk programs for fuzz and property tests.
package progen

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// RandomSource abstracts the source of randomness.
type RandomSource interface {
	Intn(n int) int
}

// ByteSource uses a byte slice as a source of randomness, so fuzz inputs map
// to programs deterministically.
type ByteSource struct {
	data []byte
	pos  int
}

func (s *ByteSource) Intn(n int) int {
	if n <= 0 || s.pos >= len(s.data) {
		return 0
	}
	v := int(s.data[s.pos])
	s.pos++
	return v % n
}

const (
	MaxDepth      = 5
	MaxStatements = 6
)

type variable struct {
	name    string
	mutable bool
}

// Generator produces programs that always lex and parse. Whether they verify
// depends on Valid: valid programs only reference declared names and only
// assign to mutable ones.
type Generator struct {
	src   RandomSource
	depth int
	vars  []variable
	next  int

	// Valid restricts output to programs that pass verification, except that
	// a literal zero divisor may still appear when AllowZero is set.
	Valid     bool
	AllowZero bool
}

func New(seed int64) *Generator {
	return &Generator{src: rand.New(rand.NewSource(seed)), Valid: true}
}

func NewFromData(data []byte) *Generator {
	return &Generator{src: &ByteSource{data: data}, Valid: true}
}

// Intn exposes the random source.
func (g *Generator) Intn(n int) int { return g.src.Intn(n) }

// GenerateProgram returns statements separated by newlines, ending in an
// expression statement.
func (g *Generator) GenerateProgram() string {
	var sb strings.Builder
	count := g.src.Intn(MaxStatements)
	for range count {
		sb.WriteString(g.GenerateStatement())
		sb.WriteString("\n")
		sb.WriteString(g.GenerateNoise())
	}
	sb.WriteString(g.GenerateExpression())
	return sb.String()
}

// GenerateNoise occasionally emits blank lines, comments or extra spaces.
func (g *Generator) GenerateNoise() string {
	if g.src.Intn(10) != 0 {
		return ""
	}
	switch g.src.Intn(3) {
	case 0:
		return "\n"
	case 1:
		return "// note\n"
	default:
		return "   \t\n"
	}
}

func (g *Generator) GenerateStatement() string {
	mutable := g.mutableVars()
	switch c := g.src.Intn(10); {
	case c < 5 || (len(mutable) == 0 && g.Valid):
		return g.GenerateDeclaration()
	case c < 8:
		return g.GenerateAssignment(mutable)
	default:
		return g.GenerateExpression()
	}
}

func (g *Generator) GenerateDeclaration() string {
	// The initializer cannot see the name being declared in a valid program.
	value := g.GenerateExpression()
	v := variable{name: fmt.Sprintf("v%d", g.next), mutable: g.src.Intn(2) == 0}
	g.next++
	g.vars = append(g.vars, v)
	if v.mutable {
		return fmt.Sprintf("let mut %s = %s", v.name, value)
	}
	return fmt.Sprintf("let %s = %s", v.name, value)
}

func (g *Generator) GenerateAssignment(mutable []variable) string {
	var target string
	switch {
	case len(mutable) > 0:
		target = mutable[g.src.Intn(len(mutable))].name
	case len(g.vars) > 0:
		target = g.vars[g.src.Intn(len(g.vars))].name
	default:
		target = "undeclared"
	}
	ops := []string{"=", "+=", "-=", "*=", "/=", "%="}
	op := ops[g.src.Intn(len(ops))]
	value := g.GenerateExpression()
	if (op == "/=" || op == "%=") && !g.AllowZero && isZeroLiteral(value) {
		value = "1"
	}
	return fmt.Sprintf("%s %s %s", target, op, value)
}

// GenerateExpression returns an expression over declared names and literals.
func (g *Generator) GenerateExpression() string {
	if g.depth >= MaxDepth {
		return g.generateAtom()
	}
	g.depth++
	defer func() { g.depth-- }()

	switch g.src.Intn(6) {
	case 0, 1:
		return g.generateAtom()
	case 2:
		return "(" + g.GenerateExpression() + ")"
	case 3:
		return "-" + g.generateAtom()
	default:
		ops := []string{"+", "-", "*", "/", "%"}
		op := ops[g.src.Intn(len(ops))]
		left := g.GenerateExpression()
		right := g.GenerateExpression()
		if (op == "/" || op == "%") && !g.AllowZero && isZeroLiteral(right) {
			right = "1"
		}
		return left + " " + op + " " + right
	}
}

func (g *Generator) generateAtom() string {
	if len(g.vars) > 0 && g.src.Intn(2) == 0 {
		return g.vars[g.src.Intn(len(g.vars))].name
	}
	if !g.Valid && g.src.Intn(8) == 0 {
		return "ghost"
	}
	switch g.src.Intn(4) {
	case 0:
		return "0"
	case 1:
		return fmt.Sprintf("%d.%d", g.src.Intn(100), g.src.Intn(10))
	case 2:
		return fmt.Sprintf("%de%d", g.src.Intn(10)+1, g.src.Intn(4))
	default:
		return fmt.Sprintf("%d", g.src.Intn(1000))
	}
}

func (g *Generator) mutableVars() []variable {
	var out []variable
	for _, v := range g.vars {
		if v.mutable {
			out = append(out, v)
		}
	}
	return out
}

// isZeroLiteral reports whether s is a number literal equal to zero, possibly
// parenthesized. Parentheses leave no trace in the tree, so (0) is still a
// literal divisor.
func isZeroLiteral(s string) bool {
	for strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
	}
	if s == "" || s[0] < '0' || s[0] > '9' {
		return false
	}
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && v == 0
}
