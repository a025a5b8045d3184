package analyzer

import (
	"github.com/funvibe/matchcore/internal/activepattern"
	"github.com/funvibe/matchcore/internal/ast"
	"github.com/funvibe/matchcore/internal/typed"
	"github.com/funvibe/matchcore/internal/typesystem"
)

// pattern types p against the scrutinee type and binds its names.
func (t *typer) pattern(p ast.Pattern, expected typesystem.Type) *typed.Pattern {
	if expected == nil {
		expected = typesystem.Unknown
	}
	out := &typed.Pattern{Span: p.GetSpan(), Type: expected}
	switch p := p.(type) {
	case *ast.WildcardPattern:
		out.Kind = typed.WildcardPattern
	case *ast.VarPattern:
		out.Kind = typed.VarPattern
		out.Name = p.Name
		t.bind(p.Name, expected)
	case *ast.LiteralPattern:
		out.Kind = typed.LiteralPattern
		out.Literal, out.Type = literalOf(p.Value)
	case *ast.TuplePattern:
		out.Kind = typed.TuplePattern
		var els []typesystem.Type
		if tt, ok := expected.(typesystem.TTuple); ok && len(tt.Elements) == len(p.Elements) {
			els = tt.Elements
		}
		for i, el := range p.Elements {
			var et typesystem.Type = typesystem.Unknown
			if els != nil {
				et = els[i]
			}
			out.Elements = append(out.Elements, t.pattern(el, et))
		}
		if els == nil {
			types := make([]typesystem.Type, len(out.Elements))
			for i, el := range out.Elements {
				types[i] = el.Type
			}
			if typesystem.IsUnknown(expected) {
				out.Type = typesystem.TTuple{Elements: types}
			}
		}
	case *ast.RecordPattern:
		out.Kind = typed.RecordPattern
		out.HasRest = p.HasRest
		rec, _ := t.types.Resolve(expected).(typesystem.TRecord)
		for _, f := range p.Fields {
			var ft typesystem.Type = typesystem.Unknown
			if x, ok := rec.Field(f.Key); ok {
				ft = x
			}
			out.Fields = append(out.Fields, typed.FieldPattern{Key: f.Key, Value: t.pattern(f.Value, ft)})
		}
	case *ast.ConstructorPattern:
		out.Kind = typed.ConstructorPattern
		out.Name = p.Name
		var fields []typesystem.Type
		if v, ok := t.types.Constructor(p.Name); ok {
			fields = t.types.FieldTypes(v, expected)
			if typesystem.IsUnknown(expected) {
				out.Type = t.ownerType(v)
			}
		}
		for i, el := range p.Elements {
			var et typesystem.Type = typesystem.Unknown
			if i < len(fields) {
				et = fields[i]
			}
			out.Elements = append(out.Elements, t.pattern(el, et))
		}
	case *ast.BindingPattern:
		out.Kind = typed.BindingPattern
		out.Name = p.Name
		out.ViaAt = p.ViaAt
		out.Inner = t.pattern(p.Pattern, expected)
		t.bind(p.Name, expected)
	case *ast.OrPattern:
		out.Kind = typed.OrPattern
		for _, alt := range p.Alternatives {
			out.Elements = append(out.Elements, t.pattern(alt, expected))
		}
	case *ast.SlicePattern:
		out.Kind = typed.SlicePattern
		var elem typesystem.Type = typesystem.Unknown
		if arr, ok := expected.(typesystem.TArray); ok {
			elem = arr.Element
		}
		for _, it := range p.Items {
			item := typed.SliceItem{IsRest: it.IsRest, Binding: it.Binding, Span: it.Token.Span()}
			if it.IsRest {
				if it.Binding != "" {
					t.bind(it.Binding, typesystem.TArray{Element: elem})
				}
			} else {
				item.Element = t.pattern(it.Element, elem)
				item.Span = item.Element.Span
			}
			out.Items = append(out.Items, item)
		}
	case *ast.RangePattern:
		out.Kind = typed.RangePattern
		out.Inclusive = p.Inclusive
		if p.Start != nil {
			out.Start = t.pattern(p.Start, typesystem.Unknown)
		}
		if p.End != nil {
			out.End = t.pattern(p.End, typesystem.Unknown)
		}
	case *ast.RegexPattern:
		out.Kind = typed.RegexPattern
		out.Regex = p.Pattern
	case *ast.ActivePattern:
		out.Kind = typed.ActivePattern
		out.Name = p.Name
		out.ActiveKind = activepattern.KindOf(p.IsPartial)
		ap, ok := t.actives[p.Name]
		out.Unresolved = !ok
		if p.Argument != nil {
			var payload typesystem.Type = typesystem.Unknown
			if ok {
				payload = ap.Payload
			}
			out.Inner = t.pattern(p.Argument, payload)
		}
	}
	return out
}

func (t *typer) ownerType(v *typesystem.Variant) typesystem.Type {
	st, ok := t.types.Sum(v.Owner)
	if !ok || len(st.Params) == 0 {
		return typesystem.TCon{Name: v.Owner}
	}
	args := make([]typesystem.Type, len(st.Params))
	for i := range args {
		args[i] = typesystem.Unknown
	}
	return typesystem.TApp{Constructor: v.Owner, Args: args}
}

func literalOf(v interface{}) (typed.Literal, typesystem.Type) {
	switch v := v.(type) {
	case int64:
		return typed.Literal{Value: v}, typesystem.Int
	case float64:
		return typed.Literal{Value: v}, typesystem.Float
	case string:
		return typed.Literal{Value: v}, typesystem.String
	case bool:
		return typed.Literal{Value: v}, typesystem.Bool
	}
	return typed.Literal{}, typesystem.Unit
}
