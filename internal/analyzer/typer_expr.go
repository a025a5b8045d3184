package analyzer

import (
	"github.com/funvibe/matchcore/internal/ast"
	"github.com/funvibe/matchcore/internal/config"
	"github.com/funvibe/matchcore/internal/typed"
	"github.com/funvibe/matchcore/internal/typesystem"
)

func (t *typer) expr(e ast.Expression) *typed.Expr {
	if e == nil {
		return &typed.Expr{Kind: typed.LiteralExpr, Type: typesystem.Unit}
	}
	out := &typed.Expr{Span: e.GetSpan(), Type: typesystem.Unknown}
	switch e := e.(type) {
	case *ast.Identifier:
		out.Kind = typed.IdentExpr
		out.Name = e.Value
		if ty, ok := t.scope.lookup(e.Value); ok {
			out.Type = ty
		} else if fn, ok := t.funcs[e.Value]; ok {
			params := make([]typesystem.Type, len(fn.Params))
			for i, p := range fn.Params {
				params[i] = p.Type
			}
			out.Type = typesystem.TFunc{Params: params, Result: fn.Result}
		}
	case *ast.IntegerLiteral:
		out.Kind, out.Literal, out.Type = typed.LiteralExpr, typed.Literal{Value: e.Value}, typesystem.Int
	case *ast.FloatLiteral:
		out.Kind, out.Literal, out.Type = typed.LiteralExpr, typed.Literal{Value: e.Value}, typesystem.Float
	case *ast.StringLiteral:
		out.Kind, out.Literal, out.Type = typed.LiteralExpr, typed.Literal{Value: e.Value}, typesystem.String
	case *ast.BooleanLiteral:
		out.Kind, out.Literal, out.Type = typed.LiteralExpr, typed.Literal{Value: e.Value}, typesystem.Bool
	case *ast.UnitLiteral:
		out.Kind, out.Type = typed.LiteralExpr, typesystem.Unit
	case *ast.ConstructorExpression:
		out.Kind = typed.ConstructorExpr
		out.Name = e.Name
		out.Args = t.exprs(e.Arguments)
		out.Type = t.constructorType(e.Name, out.Args)
	case *ast.CallExpression:
		out.Kind = typed.CallExpr
		out.Callee = t.expr(e.Function)
		out.Args = t.exprs(e.Arguments)
		if fn, ok := out.Callee.Type.(typesystem.TFunc); ok {
			out.Type = fn.Result
		}
	case *ast.PrefixExpression:
		out.Kind = typed.PrefixExpr
		out.Operator = e.Operator
		out.Args = []*typed.Expr{t.expr(e.Right)}
		if e.Operator == "!" {
			out.Type = typesystem.Bool
		} else {
			out.Type = out.Args[0].Type
		}
	case *ast.InfixExpression:
		out.Kind = typed.InfixExpr
		out.Operator = e.Operator
		l, r := t.expr(e.Left), t.expr(e.Right)
		out.Args = []*typed.Expr{l, r}
		out.Type = infixType(e.Operator, l.Type, r.Type)
	case *ast.IfExpression:
		out.Kind = typed.IfExpr
		cond, then := t.expr(e.Condition), t.expr(e.Consequence)
		out.Args = []*typed.Expr{cond, then}
		if e.Alternative != nil {
			alt := t.expr(e.Alternative)
			out.Args = append(out.Args, alt)
			out.Type = join(then.Type, alt.Type)
		} else {
			out.Type = typesystem.Unit
		}
	case *ast.MatchExpression:
		out.Kind = typed.MatchExpr
		out.Match = t.match(e)
		out.Type = typesystem.Unknown
		for i, arm := range out.Match.Arms {
			if i == 0 {
				out.Type = arm.Body.Type
				continue
			}
			out.Type = join(out.Type, arm.Body.Type)
		}
	case *ast.BlockExpression:
		out.Kind = typed.BlockExpr
		t.push()
		for _, l := range e.Lets {
			v := t.expr(l.Value)
			out.Lets = append(out.Lets, typed.Let{Name: l.Name, Value: v})
			t.bind(l.Name, v.Type)
		}
		if e.Result != nil {
			res := t.expr(e.Result)
			out.Args = []*typed.Expr{res}
			out.Type = res.Type
		} else {
			out.Type = typesystem.Unit
		}
		t.pop()
	case *ast.PerformExpression:
		out.Kind = typed.PerformExpr
		out.Name = e.Effect
		out.Args = t.exprs(e.Arguments)
	case *ast.TupleLiteral:
		out.Kind = typed.TupleExpr
		out.Args = t.exprs(e.Elements)
		els := make([]typesystem.Type, len(out.Args))
		for i, a := range out.Args {
			els[i] = a.Type
		}
		out.Type = typesystem.TTuple{Elements: els}
	case *ast.ArrayLiteral:
		out.Kind = typed.ArrayExpr
		out.Args = t.exprs(e.Elements)
		var elem typesystem.Type = typesystem.Unknown
		for _, a := range out.Args {
			elem = join(elem, a.Type)
		}
		out.Type = typesystem.TArray{Element: elem}
	case *ast.RecordLiteral:
		out.Kind = typed.RecordExpr
		rec := typesystem.TRecord{}
		for _, f := range e.Fields {
			v := t.expr(f.Value)
			out.Names = append(out.Names, f.Key)
			out.Args = append(out.Args, v)
			rec.Fields = append(rec.Fields, typesystem.TField{Name: f.Key, Type: v.Type})
		}
		out.Type = rec
	case *ast.FieldAccess:
		out.Kind = typed.FieldExpr
		out.Name = e.Field
		left := t.expr(e.Left)
		out.Args = []*typed.Expr{left}
		if rec, ok := t.types.Resolve(left.Type).(typesystem.TRecord); ok {
			if ft, ok := rec.Field(e.Field); ok {
				out.Type = ft
			}
		}
	}
	return out
}

func (t *typer) exprs(es []ast.Expression) []*typed.Expr {
	out := make([]*typed.Expr, len(es))
	for i, e := range es {
		out[i] = t.expr(e)
	}
	return out
}

func (t *typer) constructorType(name string, args []*typed.Expr) typesystem.Type {
	arg := func(i int) typesystem.Type {
		if i < len(args) {
			return args[i].Type
		}
		return typesystem.Unknown
	}
	switch name {
	case config.SomeCtorName:
		return typesystem.Option(arg(0))
	case config.NoneCtorName:
		return typesystem.Option(typesystem.Unknown)
	case config.OkCtorName:
		return typesystem.Result(arg(0), typesystem.Unknown)
	case config.ErrCtorName:
		return typesystem.Result(typesystem.Unknown, arg(0))
	}
	if v, ok := t.types.Constructor(name); ok {
		return typesystem.TCon{Name: v.Owner}
	}
	return typesystem.Unknown
}

func infixType(op string, l, r typesystem.Type) typesystem.Type {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		return typesystem.Bool
	case "+":
		if typesystem.IsTextual(l) && !typesystem.IsUnknown(l) {
			return l
		}
	}
	return join(l, r)
}

func (t *typer) match(e *ast.MatchExpression) *typed.Match {
	m := &typed.Match{Span: e.Span, Target: t.expr(e.Target)}
	for _, arm := range e.Arms {
		t.push()
		ta := typed.MatchArm{
			Span:        arm.Span,
			GuardUsedIf: arm.GuardUsedIf,
			Alias:       arm.Alias,
			AliasSpan:   arm.AliasToken.Span(),
		}
		ta.Pattern = t.pattern(arm.Pattern, m.Target.Type)
		if arm.HasAlias() {
			t.bind(arm.Alias, m.Target.Type)
		}
		if arm.Guard != nil {
			ta.Guard = t.expr(arm.Guard)
		}
		ta.Body = t.expr(arm.Body)
		t.pop()
		m.Arms = append(m.Arms, ta)
	}
	return m
}
