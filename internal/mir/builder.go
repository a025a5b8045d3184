package mir

import (
	"github.com/funvibe/matchcore/internal/typed"
)

// ExprBuilder flattens one declaration body into an expression table.
// Ids increase monotonically in allocation order; a builder is owned by a
// single declaration and is not safe for concurrent use.
type ExprBuilder struct {
	opts  Options
	owner string
	next  ExprID
	exprs []Expr
}

func NewExprBuilder(opts Options, owner string) *ExprBuilder {
	return &ExprBuilder{opts: opts, owner: owner}
}

// Exprs returns the table built so far, ordered by id.
func (b *ExprBuilder) Exprs() []Expr { return b.exprs }

func (b *ExprBuilder) alloc(e Expr) ExprID {
	e.ID = b.next
	b.next++
	b.exprs = append(b.exprs, e)
	return e.ID
}

func ref(id ExprID) *ExprID { return &id }

// Lower adds e and its children to the table and returns e's id. Children
// are lowered first.
func (b *ExprBuilder) Lower(e *typed.Expr) ExprID {
	out := Expr{Span: e.Span, Type: b.opts.typeLabel(e.Type)}
	switch e.Kind {
	case typed.IdentExpr:
		out.Kind = ExprIdentifier
		out.Name = e.Name
	case typed.LiteralExpr:
		out.Kind = ExprLiteral
		out.Literal = &Literal{Value: e.Literal.Value}
	case typed.ConstructorExpr:
		out.Kind = ExprConstructor
		out.Name = e.Name
		out.Args = b.lowerAll(e.Args)
	case typed.CallExpr:
		out.Kind = ExprCall
		out.Callee = ref(b.Lower(e.Callee))
		out.Args = b.lowerAll(e.Args)
	case typed.PrefixExpr:
		out.Kind = ExprUnary
		out.Operator = e.Operator
		out.Args = b.lowerAll(e.Args)
	case typed.InfixExpr:
		out.Kind = ExprBinary
		out.Operator = e.Operator
		out.Args = b.lowerAll(e.Args)
	case typed.IfExpr:
		out.Kind = ExprIfElse
		out.Condition = ref(b.Lower(e.Args[0]))
		out.Then = ref(b.Lower(e.Args[1]))
		if len(e.Args) > 2 {
			out.Else = ref(b.Lower(e.Args[2]))
		}
	case typed.MatchExpr:
		out.Kind = ExprMatch
		b.lowerMatch(e.Match, &out)
	case typed.BlockExpr:
		out.Kind = ExprBlock
		for _, l := range e.Lets {
			out.Statements = append(out.Statements, Let{Name: l.Name, Value: b.Lower(l.Value)})
		}
		if len(e.Args) > 0 {
			out.Tail = ref(b.Lower(e.Args[0]))
		}
	case typed.PerformExpr:
		out.Kind = ExprPerform
		out.Name = e.Name
		out.Args = b.lowerAll(e.Args)
	case typed.TupleExpr:
		out.Kind = ExprTuple
		out.Args = b.lowerAll(e.Args)
	case typed.ArrayExpr:
		out.Kind = ExprArray
		out.Args = b.lowerAll(e.Args)
	case typed.RecordExpr:
		out.Kind = ExprRecord
		out.Keys = append([]string(nil), e.Names...)
		out.Args = b.lowerAll(e.Args)
	case typed.FieldExpr:
		out.Kind = ExprFieldAccess
		out.Name = e.Name
		out.Args = b.lowerAll(e.Args)
	}
	return b.alloc(out)
}

func (b *ExprBuilder) lowerAll(es []*typed.Expr) []ExprID {
	if len(es) == 0 {
		return nil
	}
	out := make([]ExprID, len(es))
	for i, e := range es {
		out[i] = b.Lower(e)
	}
	return out
}

// lowerMatch evaluates the target once; arms refer to it by id.
func (b *ExprBuilder) lowerMatch(m *typed.Match, out *Expr) {
	out.Target = ref(b.Lower(m.Target))
	for _, arm := range m.Arms {
		ma := MatchArm{Pattern: LowerPattern(arm.Pattern), Alias: arm.Alias}
		if arm.Guard != nil {
			ma.Guard = ref(b.Lower(arm.Guard))
		}
		ma.Body = b.Lower(arm.Body)
		out.Arms = append(out.Arms, ma)
	}
	plan := b.opts.BuildMatchLowering(m.Span, m.Target, m.Arms)
	plan.Owner = b.owner
	out.Lowering = &plan
}

func params(ps []typed.Param, opts Options) []Param {
	out := make([]Param, len(ps))
	for i, p := range ps {
		out[i] = Param{Name: p.Name, Type: opts.typeLabel(p.Type)}
	}
	return out
}

// FunctionOwner and ActiveOwner name the declaration a plan belongs to.
func FunctionOwner(name string) string { return "fn " + name }

func ActiveOwner(name string) string { return "active " + name }

// LowerModule lowers every declaration of mod and collects the plans of
// all its matches. The result depends only on mod and opts.
func LowerModule(mod *typed.Module, opts Options) *Module {
	out := &Module{
		SchemaVersion:  SchemaVersion,
		File:           mod.File,
		Functions:      make([]Function, 0, len(mod.Functions)),
		ActivePatterns: make([]ActivePattern, 0, len(mod.ActivePatterns)),
	}
	for _, fn := range mod.Functions {
		b := NewExprBuilder(opts, FunctionOwner(fn.Name))
		body := b.Lower(fn.Body)
		out.Functions = append(out.Functions, Function{
			Name:       fn.Name,
			Span:       fn.Span,
			Params:     params(fn.Params, opts),
			ReturnType: opts.typeLabel(fn.Result),
			Body:       body,
			Exprs:      b.Exprs(),
		})
	}
	for _, ap := range mod.ActivePatterns {
		b := NewExprBuilder(opts, ActiveOwner(ap.Name))
		body := b.Lower(ap.Body)
		out.ActivePatterns = append(out.ActivePatterns, ActivePattern{
			Name:          ap.Name,
			Span:          ap.Span,
			Kind:          ap.Kind,
			ReturnCarrier: ap.ReturnCarrier,
			HasMissPath:   ap.HasMissPath,
			Params:        params(ap.Params, opts),
			Body:          body,
			Exprs:         b.Exprs(),
		})
	}
	out.MatchLowerings = BuildMatchLowerings(mod, opts)
	return out
}

// BuildMatchLowerings returns one plan per match in mod: functions first,
// then recognizers, then top-level expressions. Within a body, an outer
// match precedes the matches nested inside it.
func BuildMatchLowerings(mod *typed.Module, opts Options) []MatchLoweringPlan {
	plans := []MatchLoweringPlan{}
	collect := func(body *typed.Expr, owner string) {
		for _, m := range typed.Matches(body) {
			plan := opts.BuildMatchLowering(m.Span, m.Target, m.Arms)
			plan.Owner = owner
			plans = append(plans, plan)
		}
	}
	for _, fn := range mod.Functions {
		collect(fn.Body, FunctionOwner(fn.Name))
	}
	for _, ap := range mod.ActivePatterns {
		collect(ap.Body, ActiveOwner(ap.Name))
	}
	for _, e := range mod.Inline {
		collect(e, opts.InlineOwner)
	}
	return plans
}
