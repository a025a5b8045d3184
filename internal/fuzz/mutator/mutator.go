// Package mutator applies random edits to the match expressions of a
// parsed program: reordering, duplicating and dropping arms, changing
// literals and guards.
package mutator

import (
	"math/rand"

	"github.com/funvibe/matchcore/internal/ast"
)

// ASTMutator applies random mutations to an AST.
type ASTMutator struct {
	rnd *rand.Rand
}

func NewASTMutator(seed int64) *ASTMutator {
	return &ASTMutator{rnd: rand.New(rand.NewSource(seed))}
}

// Matches returns every match expression in the program, outermost first.
func Matches(program *ast.Program) []*ast.MatchExpression {
	var out []*ast.MatchExpression
	for _, d := range program.Declarations {
		switch d := d.(type) {
		case *ast.FunctionDeclaration:
			out = collect(d.Body, out)
		case *ast.ActivePatternDeclaration:
			out = collect(d.Body, out)
		case *ast.TopLevelExpression:
			out = collect(d.Expression, out)
		}
	}
	return out
}

func collect(e ast.Expression, out []*ast.MatchExpression) []*ast.MatchExpression {
	switch e := e.(type) {
	case *ast.MatchExpression:
		out = append(out, e)
		out = collect(e.Target, out)
		for _, arm := range e.Arms {
			out = collect(arm.Guard, out)
			out = collect(arm.Body, out)
		}
	case *ast.IfExpression:
		out = collect(e.Condition, out)
		out = collect(e.Consequence, out)
		out = collect(e.Alternative, out)
	case *ast.BlockExpression:
		for _, l := range e.Lets {
			out = collect(l.Value, out)
		}
		out = collect(e.Result, out)
	case *ast.InfixExpression:
		out = collect(e.Left, out)
		out = collect(e.Right, out)
	case *ast.PrefixExpression:
		out = collect(e.Right, out)
	case *ast.CallExpression:
		out = collect(e.Function, out)
		for _, a := range e.Arguments {
			out = collect(a, out)
		}
	case *ast.ConstructorExpression:
		for _, a := range e.Arguments {
			out = collect(a, out)
		}
	case *ast.TupleLiteral:
		for _, el := range e.Elements {
			out = collect(el, out)
		}
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			out = collect(el, out)
		}
	case *ast.RecordLiteral:
		for _, f := range e.Fields {
			out = collect(f.Value, out)
		}
	case *ast.FieldAccess:
		out = collect(e.Left, out)
	case *ast.PerformExpression:
		for _, a := range e.Arguments {
			out = collect(a, out)
		}
	}
	return out
}

// Mutate edits one random match in place. It reports false when the
// program has no match to edit.
func (m *ASTMutator) Mutate(program *ast.Program) bool {
	matches := Matches(program)
	if len(matches) == 0 {
		return false
	}
	me := matches[m.rnd.Intn(len(matches))]
	if len(me.Arms) == 0 {
		return false
	}
	i := m.rnd.Intn(len(me.Arms))
	switch m.rnd.Intn(6) {
	case 0:
		j := m.rnd.Intn(len(me.Arms))
		me.Arms[i], me.Arms[j] = me.Arms[j], me.Arms[i]
	case 1:
		dup := *me.Arms[i]
		me.Arms = append(me.Arms, &dup)
	case 2:
		if len(me.Arms) > 1 {
			me.Arms = append(me.Arms[:i], me.Arms[i+1:]...)
		}
	case 3:
		me.Arms[i].Guard = nil
		me.Arms[i].GuardUsedIf = false
	case 4:
		old := me.Arms[i].Pattern
		me.Arms[i].Pattern = &ast.WildcardPattern{Token: old.GetToken(), Span: old.GetSpan()}
	default:
		m.mutatePattern(me.Arms[i].Pattern)
	}
	return true
}

func (m *ASTMutator) mutatePattern(p ast.Pattern) {
	switch p := p.(type) {
	case *ast.LiteralPattern:
		switch v := p.Value.(type) {
		case int64:
			p.Value = v + m.rnd.Int63n(5) - 2
		case bool:
			p.Value = !v
		case string:
			p.Value = v + "x"
		}
	case *ast.TuplePattern:
		if len(p.Elements) > 0 {
			m.mutatePattern(p.Elements[m.rnd.Intn(len(p.Elements))])
		}
	case *ast.ConstructorPattern:
		if len(p.Elements) > 0 {
			m.mutatePattern(p.Elements[m.rnd.Intn(len(p.Elements))])
		}
	case *ast.BindingPattern:
		m.mutatePattern(p.Pattern)
	case *ast.OrPattern:
		if len(p.Alternatives) > 1 && m.rnd.Intn(2) == 0 {
			p.Alternatives = p.Alternatives[:len(p.Alternatives)-1]
			return
		}
		if len(p.Alternatives) > 0 {
			m.mutatePattern(p.Alternatives[m.rnd.Intn(len(p.Alternatives))])
		}
	case *ast.RangePattern:
		p.Start, p.End = p.End, p.Start
	case *ast.ActivePattern:
		p.IsPartial = !p.IsPartial
	case *ast.SlicePattern:
		p.Items = append(p.Items, &ast.SliceItem{Token: p.Token, IsRest: true})
	}
}
