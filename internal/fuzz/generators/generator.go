// Package generators produces syntactically valid match programs from a
// random source, for fuzz targets that need to get past the parser.
package generators

import (
	"fmt"
	"math/rand"
	"strings"
)

// RandomSource abstracts the source of randomness.
type RandomSource interface {
	Intn(n int) int
}

// RandSource wraps math/rand.
type RandSource struct {
	*rand.Rand
}

// ByteSource draws from a byte slice and yields zeros once it is used up,
// so every input terminates.
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

// Generator writes match programs over a fixed set of target types.
type Generator struct {
	src   RandomSource
	depth int
	fresh int
	bound map[string]bool
}

const (
	MaxDepth     = 3
	MaxArms      = 6
	MaxFunctions = 4
)

// Prelude declares the sum type and recognizers generated matches use.
const Prelude = `type Shape = | Circle(Int) | Square(Int) | Dot

pattern (|Even|_|)(n: Int) = if n % 2 == 0 then Some(n) else None

@pure pattern (|Sign|)(n: Int) = if n < 0 then -1 else 1
`

func New(seed int64) *Generator {
	return &Generator{src: &RandSource{rand.New(rand.NewSource(seed))}}
}

func NewFromData(data []byte) *Generator {
	return &Generator{src: &ByteSource{data: data}}
}

// Intn exposes the random source.
func (g *Generator) Intn(n int) int { return g.src.Intn(n) }

// Type is a target type the generator knows how to write patterns for.
type Type int

const (
	TInt Type = iota
	TBool
	TString
	TOption
	TPair
	TShape
	TArray
	numTypes
)

func (t Type) String() string {
	switch t {
	case TInt:
		return "Int"
	case TBool:
		return "Bool"
	case TString:
		return "String"
	case TOption:
		return "Option<Int>"
	case TPair:
		return "(Int, Bool)"
	case TShape:
		return "Shape"
	case TArray:
		return "[Int]"
	}
	return "Int"
}

// GenerateProgram returns the prelude followed by functions that each
// match on their parameter.
func (g *Generator) GenerateProgram() string {
	var sb strings.Builder
	sb.WriteString(Prelude)
	n := g.src.Intn(MaxFunctions) + 1
	for i := 0; i < n; i++ {
		sb.WriteString("\n")
		sb.WriteString(g.GenerateFunction(fmt.Sprintf("f%d", i)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (g *Generator) GenerateFunction(name string) string {
	t := Type(g.src.Intn(int(numTypes)))
	return fmt.Sprintf("fn %s(v: %s) -> Int = %s", name, t, g.GenerateMatch("v", t))
}

// GenerateMatch writes a match on target. The last arm is a wildcard
// about half of the time.
func (g *Generator) GenerateMatch(target string, t Type) string {
	var sb strings.Builder
	sb.WriteString("match " + target + " with")
	arms := g.src.Intn(MaxArms) + 1
	for i := 0; i < arms; i++ {
		sb.WriteString(g.separator())
		sb.WriteString(g.GenerateArm(t))
	}
	if g.src.Intn(2) == 0 {
		sb.WriteString(g.separator())
		sb.WriteString("| _ -> 0")
	}
	return sb.String()
}

func (g *Generator) separator() string {
	if g.src.Intn(3) == 0 {
		return " "
	}
	return "\n"
}

func (g *Generator) GenerateArm(t Type) string {
	g.bound = map[string]bool{}
	g.depth = 0
	var sb strings.Builder
	sb.WriteString("| ")
	sb.WriteString(g.GeneratePattern(t))
	if g.src.Intn(4) == 0 {
		sb.WriteString(" as " + g.name())
	}
	if g.src.Intn(4) == 0 {
		kw := "when"
		if g.src.Intn(3) == 0 {
			kw = "if"
		}
		sb.WriteString(fmt.Sprintf(" %s %d > 0", kw, g.src.Intn(3)))
	}
	sb.WriteString(fmt.Sprintf(" -> %d", g.src.Intn(100)))
	return sb.String()
}

// name returns an identifier not yet bound in the current arm.
func (g *Generator) name() string {
	for {
		g.fresh++
		n := fmt.Sprintf("x%d", g.fresh)
		if !g.bound[n] {
			g.bound[n] = true
			return n
		}
	}
}

// GeneratePattern writes a pattern that can match a value of type t.
func (g *Generator) GeneratePattern(t Type) string {
	g.depth++
	defer func() { g.depth-- }()

	switch g.src.Intn(8) {
	case 0:
		return "_"
	case 1:
		return g.name()
	case 2:
		if g.depth < MaxDepth {
			return fmt.Sprintf("(%s | %s)", g.closedPattern(t), g.closedPattern(t))
		}
	case 3:
		if g.depth < MaxDepth {
			return fmt.Sprintf("(%s as %s)", g.GeneratePattern(t), g.name())
		}
	}
	return g.shaped(t)
}

// closedPattern writes a pattern without bindings, for or-alternatives.
func (g *Generator) closedPattern(t Type) string {
	switch t {
	case TInt:
		return fmt.Sprint(g.src.Intn(10))
	case TBool:
		return [...]string{"true", "false"}[g.src.Intn(2)]
	case TString:
		return fmt.Sprintf("%q", [...]string{"a", "b", ""}[g.src.Intn(3)])
	case TOption:
		return [...]string{"None", "Some(_)", "Some(0)"}[g.src.Intn(3)]
	case TPair:
		return fmt.Sprintf("(%s, _)", g.closedPattern(TInt))
	case TShape:
		return [...]string{"Dot", "Circle(_)", "Square(1)"}[g.src.Intn(3)]
	case TArray:
		return [...]string{"[]", "[_]", "[0, ..]"}[g.src.Intn(3)]
	}
	return "_"
}

func (g *Generator) shaped(t Type) string {
	switch t {
	case TInt:
		switch g.src.Intn(5) {
		case 0:
			lo := g.src.Intn(10)
			return fmt.Sprintf("%d..=%d", lo, lo+g.src.Intn(10))
		case 1:
			return "(|Even|_|) " + g.GeneratePattern(TInt)
		case 2:
			return "(|Sign|) " + g.GeneratePattern(TInt)
		case 3:
			return fmt.Sprintf("-%d", g.src.Intn(5)+1)
		}
	case TString:
		if g.src.Intn(3) == 0 {
			return `r"^[a-z]+$"`
		}
	case TOption:
		if g.src.Intn(2) == 0 {
			return "Some(" + g.GeneratePattern(TInt) + ")"
		}
		return "None"
	case TPair:
		return fmt.Sprintf("(%s, %s)", g.GeneratePattern(TInt), g.GeneratePattern(TBool))
	case TShape:
		switch g.src.Intn(3) {
		case 0:
			return "Circle(" + g.GeneratePattern(TInt) + ")"
		case 1:
			return "Square(" + g.GeneratePattern(TInt) + ")"
		}
		return "Dot"
	case TArray:
		return g.slice()
	}
	return g.closedPattern(t)
}

func (g *Generator) slice() string {
	var items []string
	n := g.src.Intn(3)
	for i := 0; i < n; i++ {
		items = append(items, g.GeneratePattern(TInt))
	}
	switch g.src.Intn(3) {
	case 0:
		items = append(items, "..")
	case 1:
		items = append(items, ".."+g.name())
	}
	return "[" + strings.Join(items, ", ") + "]"
}
