package typesystem

import "fmt"

// Variant is one constructor of a sum type.
type Variant struct {
	Name   string
	Fields []Type
	Owner  string
}

// SumType is a closed set of constructors.
type SumType struct {
	Name     string
	Params   []string
	Variants []*Variant
}

// TypeTable holds the nominal types visible to a module: the built-in
// Bool, Option and Result plus the module's own declarations.
type TypeTable struct {
	sums    map[string]*SumType
	records map[string]TRecord
	ctors   map[string]*Variant
	order   []string
}

func NewTypeTable() *TypeTable {
	tt := &TypeTable{
		sums:    make(map[string]*SumType),
		records: make(map[string]TRecord),
		ctors:   make(map[string]*Variant),
	}
	tt.builtin(&SumType{Name: "Option", Params: []string{"T"}, Variants: []*Variant{
		{Name: "Some", Fields: []Type{TCon{Name: "T"}}},
		{Name: "None"},
	}})
	tt.builtin(&SumType{Name: "Result", Params: []string{"T", "E"}, Variants: []*Variant{
		{Name: "Ok", Fields: []Type{TCon{Name: "T"}}},
		{Name: "Err", Fields: []Type{TCon{Name: "E"}}},
	}})
	return tt
}

func (tt *TypeTable) builtin(st *SumType) {
	if err := tt.DeclareSum(st); err != nil {
		panic(err)
	}
}

// DeclareSum registers a sum type and its constructors.
func (tt *TypeTable) DeclareSum(st *SumType) error {
	if tt.Has(st.Name) {
		return fmt.Errorf("type %s already declared", st.Name)
	}
	for _, v := range st.Variants {
		if prev, ok := tt.ctors[v.Name]; ok {
			return fmt.Errorf("constructor %s already declared by %s", v.Name, prev.Owner)
		}
	}
	for _, v := range st.Variants {
		v.Owner = st.Name
		tt.ctors[v.Name] = v
	}
	tt.sums[st.Name] = st
	tt.order = append(tt.order, st.Name)
	return nil
}

// DeclareRecord registers a named record type.
func (tt *TypeTable) DeclareRecord(rec TRecord) error {
	if tt.Has(rec.Name) {
		return fmt.Errorf("type %s already declared", rec.Name)
	}
	tt.records[rec.Name] = rec
	tt.order = append(tt.order, rec.Name)
	return nil
}

func (tt *TypeTable) Has(name string) bool {
	_, s := tt.sums[name]
	_, r := tt.records[name]
	return s || r
}

func (tt *TypeTable) Sum(name string) (*SumType, bool) {
	st, ok := tt.sums[name]
	return st, ok
}

func (tt *TypeTable) Record(name string) (TRecord, bool) {
	r, ok := tt.records[name]
	return r, ok
}

// Constructor looks up a constructor by name.
func (tt *TypeTable) Constructor(name string) (*Variant, bool) {
	v, ok := tt.ctors[name]
	return v, ok
}

// Names returns declared type names in declaration order.
func (tt *TypeTable) Names() []string {
	return append([]string(nil), tt.order...)
}

// SumOf returns the sum type that t is an instance of.
func (tt *TypeTable) SumOf(t Type) (*SumType, bool) {
	switch x := t.(type) {
	case TCon:
		return tt.Sum(x.Name)
	case TApp:
		return tt.Sum(x.Constructor)
	}
	return nil, false
}

// Resolve expands a named record to its structural form.
func (tt *TypeTable) Resolve(t Type) Type {
	if c, ok := t.(TCon); ok {
		if r, ok := tt.records[c.Name]; ok {
			return r
		}
	}
	return t
}

// FieldTypes instantiates the field types of a constructor against the
// scrutinee type, substituting the owner's type parameters.
func (tt *TypeTable) FieldTypes(v *Variant, scrutinee Type) []Type {
	st := tt.sums[v.Owner]
	subst := map[string]Type{}
	if app, ok := scrutinee.(TApp); ok && st != nil && app.Constructor == st.Name {
		for i, p := range st.Params {
			if i < len(app.Args) {
				subst[p] = app.Args[i]
			}
		}
	}
	out := make([]Type, len(v.Fields))
	for i, f := range v.Fields {
		out[i] = substitute(f, subst, st)
	}
	return out
}

func substitute(t Type, subst map[string]Type, st *SumType) Type {
	switch x := t.(type) {
	case TCon:
		if r, ok := subst[x.Name]; ok {
			return r
		}
		if st != nil {
			for _, p := range st.Params {
				if p == x.Name {
					return Unknown
				}
			}
		}
		return x
	case TApp:
		args := make([]Type, len(x.Args))
		for i, a := range x.Args {
			args[i] = substitute(a, subst, st)
		}
		return TApp{Constructor: x.Constructor, Args: args}
	case TTuple:
		els := make([]Type, len(x.Elements))
		for i, e := range x.Elements {
			els[i] = substitute(e, subst, st)
		}
		return TTuple{Elements: els}
	case TArray:
		return TArray{Element: substitute(x.Element, subst, st)}
	}
	return t
}
