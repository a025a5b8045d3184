package prettyprinter

import (
	"bytes"
	"strings"

	"github.com/funvibe/matchcore/internal/ast"
)

// --- Code Printer (Output looks like source code) ---

// Operator precedence (higher = binds tighter)
var operatorPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3,
	"!=": 3,
	"<":  4,
	">":  4,
	"<=": 4,
	">=": 4,
	"+":  5,
	"-":  5,
	"*":  6,
	"/":  6,
	"%":  6,
}

const (
	precLowest  = 0
	precPrefix  = 7
	precPostfix = 8
	precAtom    = 9
)

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return precPostfix
}

func exprPrecedence(e ast.Expression) int {
	switch e := e.(type) {
	case *ast.InfixExpression:
		return getPrecedence(e.Operator)
	case *ast.PrefixExpression:
		return precPrefix
	case *ast.CallExpression, *ast.FieldAccess:
		return precPostfix
	case *ast.IfExpression, *ast.MatchExpression:
		return precLowest
	}
	return precAtom
}

type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

// PrintProgram renders a whole module, one blank line between declarations.
func PrintProgram(prog *ast.Program) string {
	p := NewCodePrinter()
	p.Program(prog)
	return p.String()
}

// PrintExpression renders a single expression.
func PrintExpression(e ast.Expression) string {
	p := NewCodePrinter()
	p.printExpr(e, precLowest)
	return p.String()
}

func (p *CodePrinter) Program(prog *ast.Program) {
	if prog.Module != nil {
		p.write("module " + strings.Join(prog.Module.Path, "."))
		p.writeln()
	}
	for _, u := range prog.Uses {
		p.write("use " + strings.Join(u.Path, "."))
		p.writeln()
	}
	if prog.Module != nil || len(prog.Uses) > 0 {
		p.writeln()
	}
	for i, d := range prog.Declarations {
		if i > 0 {
			p.writeln()
		}
		p.Declaration(d)
		p.writeln()
	}
}

func (p *CodePrinter) Declaration(d ast.Declaration) {
	switch d := d.(type) {
	case *ast.FunctionDeclaration:
		for _, a := range d.Annotations {
			p.write("@" + a + " ")
		}
		if d.Visibility == ast.Public {
			p.write("pub ")
		}
		p.write("fn " + d.Name)
		p.params(d.Params)
		if d.ReturnType != nil {
			p.write(" -> " + d.ReturnType.String())
		}
		p.write(" = ")
		p.printExpr(d.Body, precLowest)
	case *ast.ActivePatternDeclaration:
		if d.Pure {
			p.write("@pure ")
		}
		if d.Visibility == ast.Public {
			p.write("pub ")
		}
		p.write("pattern (|" + d.Name)
		if d.IsPartial {
			p.write("|_|)")
		} else {
			p.write("|)")
		}
		p.params(d.Params)
		if d.ReturnType != nil {
			p.write(" -> " + d.ReturnType.String())
		}
		p.write(" = ")
		p.printExpr(d.Body, precLowest)
	case *ast.TypeDeclaration:
		p.typeDecl(d)
	case *ast.TopLevelExpression:
		p.printExpr(d.Expression, precLowest)
	}
}

func (p *CodePrinter) params(ps []*ast.Param) {
	p.write("(")
	for i, prm := range ps {
		if i > 0 {
			p.write(", ")
		}
		p.write(prm.Name)
		if prm.Type != nil {
			p.write(": " + prm.Type.String())
		}
	}
	p.write(")")
}

func (p *CodePrinter) typeDecl(d *ast.TypeDeclaration) {
	if d.Visibility == ast.Public {
		p.write("pub ")
	}
	p.write("type " + d.Name + " = ")
	if d.IsRecord() {
		p.write("{ ")
		for i, f := range d.Fields {
			if i > 0 {
				p.write(", ")
			}
			p.write(f.Name + ": " + f.Type.String())
		}
		p.write(" }")
		return
	}
	for i, v := range d.Variants {
		if i > 0 {
			p.write(" ")
		}
		p.write("| " + v.Name)
		if len(v.Fields) > 0 {
			parts := make([]string, len(v.Fields))
			for j, f := range v.Fields {
				parts[j] = f.String()
			}
			p.write("(" + strings.Join(parts, ", ") + ")")
		}
	}
}

// printExpr prints an expression, adding parentheses only if needed
func (p *CodePrinter) printExpr(expr ast.Expression, parentPrec int) {
	if expr == nil {
		p.write("<???>")
		return
	}
	if exprPrecedence(expr) < parentPrec {
		p.write("(")
		p.printExpr(expr, precLowest)
		p.write(")")
		return
	}
	switch e := expr.(type) {
	case *ast.Identifier:
		p.write(e.Value)
	case *ast.IntegerLiteral:
		p.write(literal(e.Value))
	case *ast.FloatLiteral:
		p.write(literal(e.Value))
	case *ast.StringLiteral:
		p.write(quote(e.Value))
	case *ast.BooleanLiteral:
		p.write(literal(e.Value))
	case *ast.UnitLiteral:
		p.write("()")
	case *ast.ConstructorExpression:
		p.write(e.Name)
		if len(e.Arguments) > 0 {
			p.write("(")
			p.exprList(e.Arguments)
			p.write(")")
		}
	case *ast.CallExpression:
		p.printExpr(e.Function, precPostfix)
		p.write("(")
		p.exprList(e.Arguments)
		p.write(")")
	case *ast.FieldAccess:
		p.printExpr(e.Left, precPostfix)
		p.write("." + e.Field)
	case *ast.PrefixExpression:
		p.write(e.Operator)
		p.printExpr(e.Right, precPrefix)
	case *ast.InfixExpression:
		prec := getPrecedence(e.Operator)
		p.printExpr(e.Left, prec)
		p.write(" " + e.Operator + " ")
		// left-associative: an equal-precedence right operand needs parens
		p.printExpr(e.Right, prec+1)
	case *ast.IfExpression:
		p.write("if ")
		p.nested(e.Condition)
		p.write(" then ")
		p.nested(e.Consequence)
		if e.Alternative != nil {
			p.write(" else ")
			p.nested(e.Alternative)
		}
	case *ast.MatchExpression:
		p.match(e)
	case *ast.BlockExpression:
		p.write("{ ")
		for _, l := range e.Lets {
			p.write("let " + l.Name + " = ")
			p.nested(l.Value)
			p.write("; ")
		}
		if e.Result != nil {
			p.printExpr(e.Result, precLowest)
			p.write(" ")
		}
		p.write("}")
	case *ast.PerformExpression:
		p.write("perform " + e.Effect + "(")
		p.exprList(e.Arguments)
		p.write(")")
	case *ast.TupleLiteral:
		p.write("(")
		p.exprList(e.Elements)
		p.write(")")
	case *ast.ArrayLiteral:
		p.write("[")
		p.exprList(e.Elements)
		p.write("]")
	case *ast.RecordLiteral:
		p.write("{ ")
		for i, f := range e.Fields {
			if i > 0 {
				p.write(", ")
			}
			p.write(f.Key + ": ")
			p.nested(f.Value)
		}
		p.write(" }")
	default:
		p.write("<???>")
	}
}

// nested prints an expression that is followed by more syntax. A match
// there would swallow what follows, so it is parenthesized.
func (p *CodePrinter) nested(e ast.Expression) {
	if _, ok := e.(*ast.MatchExpression); ok {
		p.write("(")
		p.printExpr(e, precLowest)
		p.write(")")
		return
	}
	p.printExpr(e, precLowest)
}

func (p *CodePrinter) exprList(es []ast.Expression) {
	for i, e := range es {
		if i > 0 {
			p.write(", ")
		}
		p.nested(e)
	}
}

func (p *CodePrinter) match(m *ast.MatchExpression) {
	p.write("match ")
	p.nested(m.Target)
	p.write(" with")
	p.indent++
	for i, arm := range m.Arms {
		p.writeln()
		p.writeIndent()
		p.write("| " + PrintPattern(arm.Pattern))
		if arm.Alias != "" {
			p.write(" as " + arm.Alias)
		}
		if arm.Guard != nil {
			if arm.GuardUsedIf {
				p.write(" if ")
			} else {
				p.write(" when ")
			}
			p.nested(arm.Guard)
		}
		p.write(" -> ")
		if i < len(m.Arms)-1 {
			p.nested(arm.Body)
		} else {
			p.printExpr(arm.Body, precLowest)
		}
	}
	p.indent--
}
