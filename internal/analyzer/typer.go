package analyzer

import (
	"github.com/funvibe/matchcore/internal/activepattern"
	"github.com/funvibe/matchcore/internal/ast"
	"github.com/funvibe/matchcore/internal/config"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/typed"
	"github.com/funvibe/matchcore/internal/typesystem"
)

type scope struct {
	vars   map[string]typesystem.Type
	parent *scope
}

func (s *scope) lookup(name string) (typesystem.Type, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// typer is a shallow type oracle: it resolves annotations and local,
// syntax-directed types, and leaves everything else Unknown.
type typer struct {
	types   *typesystem.TypeTable
	funcs   map[string]*typed.Function
	actives map[string]*typed.ActivePatternDecl
	scope   *scope
	diags   []diagnostics.Diagnostic
}

// BuildModule builds the typed module for prog. Structural problems in patterns
// are left for the checker; only declaration clashes are reported here.
func BuildModule(prog *ast.Program) (*typed.Module, []diagnostics.Diagnostic) {
	t := &typer{
		types:   typesystem.NewTypeTable(),
		funcs:   make(map[string]*typed.Function),
		actives: make(map[string]*typed.ActivePatternDecl),
	}
	mod := &typed.Module{File: prog.File, Types: t.types}
	if prog.Module != nil {
		mod.Name = joinPath(prog.Module.Path)
	}

	for _, td := range prog.Types() {
		t.declareType(td)
	}

	fnDecls := prog.Functions()
	for _, fd := range fnDecls {
		fn := &typed.Function{
			Name:   fd.Name,
			Params: t.params(fd.Params),
			Result: t.resolveOr(fd.ReturnType, typesystem.Unknown),
			Public: fd.Visibility == ast.Public,
			Span:   fd.Span,
		}
		mod.Functions = append(mod.Functions, fn)
		if _, dup := t.funcs[fd.Name]; !dup {
			t.funcs[fd.Name] = fn
		}
	}

	apDecls := prog.ActivePatterns()
	for _, ad := range apDecls {
		kind := activepattern.KindOf(ad.IsPartial)
		declared := t.resolveOr(ad.ReturnType, typesystem.Unknown)
		ap := &typed.ActivePatternDecl{
			Name:          ad.Name,
			Kind:          kind,
			Params:        t.params(ad.Params),
			Declared:      declared,
			ReturnType:    declared,
			ReturnCarrier: activepattern.CarrierFor(kind),
			HasMissPath:   activepattern.HasMissPath(kind),
			Pure:          ad.Pure,
			Public:        ad.Visibility == ast.Public,
			Span:          ad.Span,
		}
		ap.Payload = payloadOf(ap)
		mod.ActivePatterns = append(mod.ActivePatterns, ap)
		if _, dup := t.actives[ad.Name]; !dup {
			t.actives[ad.Name] = ap
		}
	}

	// Recognizer bodies first so their payload types are known when the
	// patterns that invoke them are typed.
	for i, ad := range apDecls {
		ap := mod.ActivePatterns[i]
		ap.Body = t.withParams(ap.Params, func() *typed.Expr { return t.expr(ad.Body) })
		if !typesystem.IsUnknown(ap.Body.Type) {
			ap.ReturnType = ap.Body.Type
		}
		ap.Payload = payloadOf(ap)
	}
	for i, fd := range fnDecls {
		fn := mod.Functions[i]
		fn.Body = t.withParams(fn.Params, func() *typed.Expr { return t.expr(fd.Body) })
		if typesystem.IsUnknown(fn.Result) {
			fn.Result = fn.Body.Type
		}
	}
	for _, d := range prog.Declarations {
		if te, ok := d.(*ast.TopLevelExpression); ok {
			t.scope = &scope{vars: map[string]typesystem.Type{}}
			mod.Inline = append(mod.Inline, t.expr(te.Expression))
			t.scope = nil
		}
	}
	return mod, t.diags
}

func payloadOf(ap *typed.ActivePatternDecl) typesystem.Type {
	if ap.Kind == activepattern.Partial {
		return typesystem.OptionPayload(ap.ReturnType)
	}
	return ap.ReturnType
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

func (t *typer) declareType(td *ast.TypeDeclaration) {
	var err error
	if td.IsRecord() {
		rec := typesystem.TRecord{Name: td.Name}
		for _, f := range td.Fields {
			rec.Fields = append(rec.Fields, typesystem.TField{Name: f.Name, Type: t.resolve(f.Type)})
		}
		err = t.types.DeclareRecord(rec)
	} else {
		st := &typesystem.SumType{Name: td.Name}
		for _, v := range td.Variants {
			variant := &typesystem.Variant{Name: v.Name}
			for _, f := range v.Fields {
				variant.Fields = append(variant.Fields, t.resolve(f))
			}
			st.Variants = append(st.Variants, variant)
		}
		err = t.types.DeclareSum(st)
	}
	if err != nil {
		t.diags = append(t.diags, diagnostics.NewDiagnostic(diagnostics.TypeDuplicate, td.Span, err.Error()))
	}
}

func (t *typer) params(ps []*ast.Param) []typed.Param {
	out := make([]typed.Param, len(ps))
	for i, p := range ps {
		out[i] = typed.Param{Name: p.Name, Type: t.resolveOr(p.Type, typesystem.Unknown)}
	}
	return out
}

func (t *typer) withParams(ps []typed.Param, body func() *typed.Expr) *typed.Expr {
	t.scope = &scope{vars: make(map[string]typesystem.Type, len(ps))}
	for _, p := range ps {
		t.scope.vars[p.Name] = p.Type
	}
	defer func() { t.scope = nil }()
	return body()
}

func (t *typer) resolveOr(te ast.TypeExpr, fallback typesystem.Type) typesystem.Type {
	if te == nil {
		return fallback
	}
	return t.resolve(te)
}

// resolve maps a written annotation to a type.
func (t *typer) resolve(te ast.TypeExpr) typesystem.Type {
	switch te := te.(type) {
	case *ast.NamedType:
		args := make([]typesystem.Type, len(te.Args))
		for i, a := range te.Args {
			args[i] = t.resolve(a)
		}
		switch te.Name {
		case config.IntTypeName:
			return typesystem.Int
		case config.FloatTypeName:
			return typesystem.Float
		case config.StringTypeName:
			return typesystem.String
		case config.BytesTypeName:
			return typesystem.Bytes
		case config.BoolTypeName:
			return typesystem.Bool
		case "Array", "List":
			if len(args) == 1 {
				return typesystem.TArray{Element: args[0]}
			}
		}
		if len(args) > 0 {
			return typesystem.TApp{Constructor: te.Name, Args: args}
		}
		return typesystem.TCon{Name: te.Name}
	case *ast.TupleType:
		if len(te.Elements) == 0 {
			return typesystem.Unit
		}
		els := make([]typesystem.Type, len(te.Elements))
		for i, e := range te.Elements {
			els[i] = t.resolve(e)
		}
		return typesystem.TTuple{Elements: els}
	case *ast.ArrayType:
		return typesystem.TArray{Element: t.resolve(te.Element)}
	}
	return typesystem.Unknown
}

func (t *typer) push() { t.scope = &scope{vars: map[string]typesystem.Type{}, parent: t.scope} }
func (t *typer) pop()  { t.scope = t.scope.parent }

func (t *typer) bind(name string, ty typesystem.Type) {
	if t.scope == nil {
		t.push()
	}
	t.scope.vars[name] = ty
}

// join merges the types of two branches, keeping whatever is known.
func join(a, b typesystem.Type) typesystem.Type {
	if typesystem.IsUnknown(a) {
		return b
	}
	if typesystem.IsUnknown(b) {
		return a
	}
	if x, ok := a.(typesystem.TApp); ok {
		if y, ok := b.(typesystem.TApp); ok && x.Constructor == y.Constructor && len(x.Args) == len(y.Args) {
			args := make([]typesystem.Type, len(x.Args))
			for i := range x.Args {
				args[i] = join(x.Args[i], y.Args[i])
			}
			return typesystem.TApp{Constructor: x.Constructor, Args: args}
		}
	}
	if typesystem.Equal(a, b) {
		return a
	}
	return typesystem.Unknown
}
