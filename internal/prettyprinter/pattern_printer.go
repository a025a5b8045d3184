package prettyprinter

import (
	"strconv"
	"strings"

	"github.com/funvibe/matchcore/internal/ast"
)

// patternContext is the grammar position a pattern is printed in.
type patternContext int

const (
	// ctxArm is the top of a match arm, where a trailing `as` is the alias.
	ctxArm patternContext = iota
	// ctxNested is an element of a tuple, constructor, slice or record.
	ctxNested
	// ctxPrimary is an or-alternative, an active argument or an `@` body.
	ctxPrimary
)

// PatternPrinter renders surface patterns as source text that parses back
// to the same tree.
type PatternPrinter struct {
	buf strings.Builder
	ctx patternContext
}

func NewPatternPrinter() *PatternPrinter {
	return &PatternPrinter{}
}

// PrintPattern renders p as it would appear at the top of a match arm.
func PrintPattern(p ast.Pattern) string {
	pp := NewPatternPrinter()
	pp.print(p, ctxArm)
	return pp.String()
}

func (pp *PatternPrinter) String() string { return pp.buf.String() }

func (pp *PatternPrinter) write(s string) { pp.buf.WriteString(s) }

func (pp *PatternPrinter) print(p ast.Pattern, ctx patternContext) {
	if p == nil {
		pp.write("<???>")
		return
	}
	saved := pp.ctx
	pp.ctx = ctx
	p.Accept(pp)
	pp.ctx = saved
}

func (pp *PatternPrinter) list(ps []ast.Pattern) {
	for i, p := range ps {
		if i > 0 {
			pp.write(", ")
		}
		pp.print(p, ctxNested)
	}
}

func (pp *PatternPrinter) VisitWildcardPattern(p *ast.WildcardPattern) { pp.write("_") }

func (pp *PatternPrinter) VisitVarPattern(p *ast.VarPattern) { pp.write(p.Name) }

func (pp *PatternPrinter) VisitLiteralPattern(p *ast.LiteralPattern) {
	pp.write(literal(p.Value))
}

func (pp *PatternPrinter) VisitTuplePattern(p *ast.TuplePattern) {
	pp.write("(")
	pp.list(p.Elements)
	pp.write(")")
}

func (pp *PatternPrinter) VisitRecordPattern(p *ast.RecordPattern) {
	if len(p.Fields) == 0 && !p.HasRest {
		pp.write("{}")
		return
	}
	pp.write("{ ")
	for i, f := range p.Fields {
		if i > 0 {
			pp.write(", ")
		}
		pp.write(f.Key)
		if v, ok := f.Value.(*ast.VarPattern); ok && v.Name == f.Key {
			continue
		}
		pp.write(": ")
		pp.print(f.Value, ctxNested)
	}
	if p.HasRest {
		if len(p.Fields) > 0 {
			pp.write(", ")
		}
		pp.write("..")
	}
	pp.write(" }")
}

func (pp *PatternPrinter) VisitConstructorPattern(p *ast.ConstructorPattern) {
	pp.write(p.Name)
	if len(p.Elements) > 0 {
		pp.write("(")
		pp.list(p.Elements)
		pp.write(")")
	}
}

func (pp *PatternPrinter) VisitBindingPattern(p *ast.BindingPattern) {
	if p.ViaAt {
		pp.write(p.Name + " @ ")
		pp.print(p.Pattern, ctxPrimary)
		return
	}
	wrap := pp.ctx != ctxNested
	if wrap {
		pp.write("(")
	}
	pp.print(p.Pattern, ctxNested)
	pp.write(" as " + p.Name)
	if wrap {
		pp.write(")")
	}
}

func (pp *PatternPrinter) VisitOrPattern(p *ast.OrPattern) {
	wrap := pp.ctx == ctxPrimary
	if wrap {
		pp.write("(")
	}
	for i, alt := range p.Alternatives {
		if i > 0 {
			pp.write(" | ")
		}
		pp.print(alt, ctxPrimary)
	}
	if wrap {
		pp.write(")")
	}
}

func (pp *PatternPrinter) VisitSlicePattern(p *ast.SlicePattern) {
	pp.write("[")
	for i, it := range p.Items {
		if i > 0 {
			pp.write(", ")
		}
		if it.IsRest {
			pp.write(".." + it.Binding)
			continue
		}
		pp.print(it.Element, ctxNested)
	}
	pp.write("]")
}

func (pp *PatternPrinter) VisitRangePattern(p *ast.RangePattern) {
	if p.Start != nil {
		pp.print(p.Start, ctxPrimary)
	}
	if p.Inclusive {
		pp.write("..=")
	} else {
		pp.write("..")
	}
	if p.End != nil {
		pp.print(p.End, ctxPrimary)
	}
}

func (pp *PatternPrinter) VisitRegexPattern(p *ast.RegexPattern) {
	pp.write(`r"` + strings.ReplaceAll(p.Pattern, `"`, `\"`) + `"`)
}

func (pp *PatternPrinter) VisitActivePattern(p *ast.ActivePattern) {
	pp.write("(|" + p.Name)
	if p.IsPartial {
		pp.write("|_|)")
	} else {
		pp.write("|)")
	}
	if p.Argument != nil {
		pp.write(" ")
		pp.print(p.Argument, ctxPrimary)
	}
}

// literal renders a literal value so the lexer reads it back unchanged.
func literal(v interface{}) string {
	switch v := v.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case string:
		return quote(v)
	case bool:
		return strconv.FormatBool(v)
	}
	return "()"
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`, "\x00", `\0`)

func quote(s string) string {
	return `"` + escaper.Replace(s) + `"`
}
