package analyzer

import (
	"fmt"
	"strings"

	"github.com/funvibe/matchcore/internal/activepattern"
	"github.com/funvibe/matchcore/internal/typed"
	"github.com/funvibe/matchcore/internal/typesystem"
)

// irrefutable reports whether p matches every value of its type.
func irrefutable(p *typed.Pattern) bool {
	if p == nil {
		return true
	}
	switch p.Kind {
	case typed.WildcardPattern, typed.VarPattern:
		return true
	case typed.BindingPattern:
		return irrefutable(p.Inner)
	case typed.ActivePattern:
		return p.ActiveKind == activepattern.Total && !p.Unresolved && irrefutable(p.Inner)
	case typed.OrPattern:
		if len(p.Elements) == 0 {
			return false
		}
		for _, alt := range p.Elements {
			if !irrefutable(alt) {
				return false
			}
		}
		return true
	}
	return false
}

// covers reports whether every value matched by b is also matched by a.
// It answers false whenever that cannot be shown syntactically.
func covers(a, b *typed.Pattern) bool {
	if irrefutable(a) {
		return true
	}
	if a.Kind == typed.BindingPattern {
		return covers(a.Inner, b)
	}
	if b.Kind == typed.BindingPattern {
		return covers(a, b.Inner)
	}
	if b.Kind == typed.OrPattern {
		for _, alt := range b.Elements {
			if !covers(a, alt) {
				return false
			}
		}
		return len(b.Elements) > 0
	}
	if a.Kind == typed.OrPattern {
		for _, alt := range a.Elements {
			if covers(alt, b) {
				return true
			}
		}
		return false
	}

	switch a.Kind {
	case typed.LiteralPattern:
		return b.Kind == typed.LiteralPattern && a.Literal.Value == b.Literal.Value
	case typed.RangePattern:
		return rangeCovers(a, b)
	case typed.TuplePattern:
		return b.Kind == typed.TuplePattern && coversAll(a.Elements, b.Elements)
	case typed.ConstructorPattern:
		return b.Kind == typed.ConstructorPattern && a.Name == b.Name && coversAll(a.Elements, b.Elements)
	case typed.RecordPattern:
		if b.Kind != typed.RecordPattern {
			return false
		}
		for _, af := range a.Fields {
			bv := fieldOf(b, af.Key)
			if bv == nil {
				if !irrefutable(af.Value) {
					return false
				}
				continue
			}
			if !covers(af.Value, bv) {
				return false
			}
		}
		return true
	case typed.SlicePattern:
		return b.Kind == typed.SlicePattern && sliceCovers(a, b)
	case typed.RegexPattern:
		return b.Kind == typed.RegexPattern && a.Regex == b.Regex
	case typed.ActivePattern:
		if a.Unresolved || b.Kind != typed.ActivePattern || a.Name != b.Name || a.ActiveKind != b.ActiveKind {
			return false
		}
		if a.Inner == nil {
			return true
		}
		if b.Inner == nil {
			return irrefutable(a.Inner)
		}
		return covers(a.Inner, b.Inner)
	}
	return false
}

// matchesAll reports whether p accepts every value, counting tuples and
// records made only of such parts.
func matchesAll(p *typed.Pattern) bool {
	if irrefutable(p) {
		return true
	}
	switch p.Kind {
	case typed.BindingPattern:
		return matchesAll(p.Inner)
	case typed.TuplePattern:
		for _, el := range p.Elements {
			if !matchesAll(el) {
				return false
			}
		}
		return true
	case typed.RecordPattern:
		for _, f := range p.Fields {
			if !matchesAll(f.Value) {
				return false
			}
		}
		return true
	case typed.OrPattern:
		for _, alt := range p.Elements {
			if !matchesAll(alt) {
				return false
			}
		}
		return len(p.Elements) > 0
	}
	return false
}

// shadowing returns the part of an arm's pattern that hides later arms.
// An or-pattern whose alternatives do not all match every value shadows
// only through its refutable alternatives.
func shadowing(p *typed.Pattern) *typed.Pattern {
	if p == nil {
		return nil
	}
	switch p.Kind {
	case typed.BindingPattern:
		inner := shadowing(p.Inner)
		if inner == p.Inner {
			return p
		}
		cp := *p
		cp.Inner = inner
		return &cp
	case typed.TuplePattern, typed.ConstructorPattern:
		elems, changed := shadowingAll(p.Elements)
		if !changed {
			return p
		}
		cp := *p
		cp.Elements = elems
		return &cp
	case typed.RecordPattern:
		fields := make([]typed.FieldPattern, len(p.Fields))
		changed := false
		for i, f := range p.Fields {
			fields[i] = typed.FieldPattern{Key: f.Key, Value: shadowing(f.Value)}
			changed = changed || fields[i].Value != f.Value
		}
		if !changed {
			return p
		}
		cp := *p
		cp.Fields = fields
		return &cp
	case typed.OrPattern:
		if matchesAll(p) {
			return p
		}
		var kept []*typed.Pattern
		for _, alt := range p.Elements {
			if !matchesAll(alt) {
				kept = append(kept, shadowing(alt))
			}
		}
		if len(kept) == 1 {
			return kept[0]
		}
		cp := *p
		cp.Elements = kept
		return &cp
	}
	return p
}

func shadowingAll(ps []*typed.Pattern) ([]*typed.Pattern, bool) {
	out := make([]*typed.Pattern, len(ps))
	changed := false
	for i, p := range ps {
		out[i] = shadowing(p)
		changed = changed || out[i] != p
	}
	return out, changed
}

func coversAll(as, bs []*typed.Pattern) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !covers(as[i], bs[i]) {
			return false
		}
	}
	return true
}

func fieldOf(p *typed.Pattern, key string) *typed.Pattern {
	for _, f := range p.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// sliceShape splits a slice pattern around its rest marker.
func sliceShape(p *typed.Pattern) (prefix, suffix []*typed.Pattern, hasRest, ok bool) {
	for _, it := range p.Items {
		switch {
		case it.IsRest && hasRest:
			return nil, nil, false, false
		case it.IsRest:
			hasRest = true
		case hasRest:
			suffix = append(suffix, it.Element)
		default:
			prefix = append(prefix, it.Element)
		}
	}
	return prefix, suffix, hasRest, true
}

func sliceCovers(a, b *typed.Pattern) bool {
	pa, sa, ra, ok := sliceShape(a)
	if !ok {
		return false
	}
	pb, sb, rb, ok := sliceShape(b)
	if !ok {
		return false
	}
	if !ra {
		return !rb && coversAll(pa, pb)
	}
	if !rb {
		if len(pb) < len(pa)+len(sa) {
			return false
		}
		return coversAll(pa, pb[:len(pa)]) && coversAll(sa, pb[len(pb)-len(sa):])
	}
	if len(pb) < len(pa) || len(sb) < len(sa) {
		return false
	}
	return coversAll(pa, pb[:len(pa)]) && coversAll(sa, sb[len(sb)-len(sa):])
}

func rangeCovers(a, b *typed.Pattern) bool {
	switch b.Kind {
	case typed.LiteralPattern:
		v := b.Literal.Value
		if a.Start != nil {
			if c, ok := compareLiterals(a.Start.Literal.Value, v); !ok || c > 0 {
				return false
			}
		}
		if a.End != nil {
			c, ok := compareLiterals(v, a.End.Literal.Value)
			if !ok || c > 0 || (c == 0 && !a.Inclusive) {
				return false
			}
		}
		return true
	case typed.RangePattern:
		if a.Start != nil {
			if b.Start == nil {
				return false
			}
			if c, ok := compareLiterals(a.Start.Literal.Value, b.Start.Literal.Value); !ok || c > 0 {
				return false
			}
		}
		if a.End != nil {
			if b.End == nil {
				return false
			}
			c, ok := compareLiterals(b.End.Literal.Value, a.End.Literal.Value)
			if !ok || c > 0 || (c == 0 && b.Inclusive && !a.Inclusive) {
				return false
			}
		}
		return true
	}
	return false
}

// compareLiterals orders two range bounds of the same ordered type.
func compareLiterals(x, y interface{}) (int, bool) {
	switch a := x.(type) {
	case int64:
		switch b := y.(type) {
		case int64:
			return cmp3(a < b, a > b), true
		case float64:
			return cmp3(float64(a) < b, float64(a) > b), true
		}
	case float64:
		switch b := y.(type) {
		case float64:
			return cmp3(a < b, a > b), true
		case int64:
			return cmp3(a < float64(b), a > float64(b)), true
		}
	case string:
		if b, ok := y.(string); ok {
			return strings.Compare(a, b), true
		}
	}
	return 0, false
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

type ctorKind int

const (
	ctorVariant ctorKind = iota
	ctorBool
	ctorUnit
	ctorTuple
	ctorRecord
	ctorSlice
)

// ctor is one head constructor of a finite type.
type ctor struct {
	kind   ctorKind
	name   string
	fields []typesystem.Type
	keys   []string
	length int
	open   bool
}

func (k ctor) render(args []string) string {
	switch k.kind {
	case ctorBool, ctorUnit:
		return k.name
	case ctorTuple:
		return "(" + strings.Join(args, ", ") + ")"
	case ctorRecord:
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = k.keys[i] + ": " + a
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case ctorSlice:
		if k.open {
			args = append(append([]string(nil), args...), "..")
		}
		return "[" + strings.Join(args, ", ") + "]"
	}
	if len(args) == 0 {
		return k.name
	}
	return k.name + "(" + strings.Join(args, ", ") + ")"
}

// usefulness runs a reduced Maranget usefulness check over pattern rows.
// A nil cell is a wildcard.
type usefulness struct {
	types *typesystem.TypeTable
}

// missing returns a witness row not matched by any of rows.
func (u *usefulness) missing(rows [][]*typed.Pattern, types []typesystem.Type) ([]string, bool) {
	if len(types) == 0 {
		return nil, len(rows) == 0
	}
	var expanded [][]*typed.Pattern
	allWild := true
	for _, row := range rows {
		for _, head := range normalize(row[0]) {
			if head != nil {
				allWild = false
			}
			expanded = append(expanded, prepend(head, row[1:]))
		}
	}

	var ctors []ctor
	finite := false
	if !allWild {
		ctors, finite = u.constructors(types[0], expanded)
	}
	if !finite {
		var rest [][]*typed.Pattern
		for _, row := range expanded {
			if row[0] == nil {
				rest = append(rest, row[1:])
			}
		}
		w, miss := u.missing(rest, types[1:])
		if !miss {
			return nil, false
		}
		return prepend("_", w), true
	}

	for _, k := range ctors {
		var specialized [][]*typed.Pattern
		for _, row := range expanded {
			if args, ok := specialize(row[0], k); ok {
				specialized = append(specialized, append(args, row[1:]...))
			}
		}
		colTypes := make([]typesystem.Type, 0, len(k.fields)+len(types)-1)
		colTypes = append(colTypes, k.fields...)
		colTypes = append(colTypes, types[1:]...)
		w, miss := u.missing(specialized, colTypes)
		if miss {
			n := len(k.fields)
			return prepend(k.render(w[:n]), w[n:]), true
		}
	}
	return nil, false
}

func prepend[T any](head T, tail []T) []T {
	out := make([]T, 0, len(tail)+1)
	out = append(out, head)
	return append(out, tail...)
}

// normalize flattens the head cell into the alternatives the matrix can
// reason about. Cells that may fail for reasons the matrix cannot see are
// dropped.
func normalize(p *typed.Pattern) []*typed.Pattern {
	if p == nil {
		return []*typed.Pattern{nil}
	}
	switch p.Kind {
	case typed.WildcardPattern, typed.VarPattern:
		return []*typed.Pattern{nil}
	case typed.BindingPattern:
		return normalize(p.Inner)
	case typed.OrPattern:
		var out []*typed.Pattern
		for _, alt := range p.Elements {
			out = append(out, normalize(alt)...)
		}
		return out
	case typed.ActivePattern:
		if irrefutable(p) {
			return []*typed.Pattern{nil}
		}
		return nil
	case typed.RegexPattern, typed.RangePattern:
		return nil
	case typed.LiteralPattern:
		switch p.Literal.Value.(type) {
		case bool, nil:
			return []*typed.Pattern{p}
		}
		return nil
	}
	return []*typed.Pattern{p}
}

// constructors lists the head constructors of t. When t is unknown the
// heads present in rows decide.
func (u *usefulness) constructors(t typesystem.Type, rows [][]*typed.Pattern) ([]ctor, bool) {
	t = u.types.Resolve(t)
	if typesystem.IsUnknown(t) {
		t = u.inferFromHeads(rows)
	}
	switch x := t.(type) {
	case typesystem.TCon:
		switch x.Name {
		case typesystem.Bool.Name:
			return []ctor{{kind: ctorBool, name: "true"}, {kind: ctorBool, name: "false"}}, true
		case typesystem.Unit.Name:
			return []ctor{{kind: ctorUnit, name: "()"}}, true
		}
	case typesystem.TTuple:
		return []ctor{{kind: ctorTuple, fields: x.Elements}}, true
	case typesystem.TRecord:
		k := ctor{kind: ctorRecord}
		for _, f := range x.Fields {
			k.keys = append(k.keys, f.Name)
			k.fields = append(k.fields, f.Type)
		}
		return []ctor{k}, true
	case typesystem.TArray:
		return sliceConstructors(x.Element, rows), true
	}
	if st, ok := u.types.SumOf(t); ok {
		out := make([]ctor, len(st.Variants))
		for i, v := range st.Variants {
			out[i] = ctor{kind: ctorVariant, name: v.Name, fields: u.types.FieldTypes(v, t)}
		}
		return out, true
	}
	return nil, false
}

func (u *usefulness) inferFromHeads(rows [][]*typed.Pattern) typesystem.Type {
	for _, row := range rows {
		h := row[0]
		if h == nil {
			continue
		}
		switch h.Kind {
		case typed.ConstructorPattern:
			if v, ok := u.types.Constructor(h.Name); ok {
				return typesystem.TCon{Name: v.Owner}
			}
		case typed.LiteralPattern:
			if _, ok := h.Literal.Value.(bool); ok {
				return typesystem.Bool
			}
			return typesystem.Unit
		case typed.TuplePattern:
			els := make([]typesystem.Type, len(h.Elements))
			for i := range els {
				els[i] = typesystem.Unknown
			}
			return typesystem.TTuple{Elements: els}
		case typed.SlicePattern:
			return typesystem.TArray{Element: typesystem.Unknown}
		}
		return typesystem.Unknown
	}
	return typesystem.Unknown
}

// sliceConstructors enumerates lengths up to the point where every longer
// array is matched by exactly the same rows.
func sliceConstructors(elem typesystem.Type, rows [][]*typed.Pattern) []ctor {
	maxFixed, maxOpen := -1, 0
	for _, row := range rows {
		h := row[0]
		if h == nil || h.Kind != typed.SlicePattern {
			continue
		}
		pre, suf, rest, ok := sliceShape(h)
		if !ok {
			continue
		}
		n := len(pre) + len(suf)
		if rest {
			if n > maxOpen {
				maxOpen = n
			}
		} else if n > maxFixed {
			maxFixed = n
		}
	}
	limit := maxFixed + 1
	if maxOpen > limit {
		limit = maxOpen
	}
	out := make([]ctor, 0, limit+1)
	for n := 0; n <= limit; n++ {
		fields := make([]typesystem.Type, n)
		for i := range fields {
			fields[i] = elem
		}
		out = append(out, ctor{kind: ctorSlice, length: n, fields: fields, open: n == limit && n > maxFixed && n > 0})
	}
	return out
}

// specialize returns the sub-cells of head under constructor k, or false
// when head cannot match k.
func specialize(head *typed.Pattern, k ctor) ([]*typed.Pattern, bool) {
	n := len(k.fields)
	if head == nil {
		return make([]*typed.Pattern, n), true
	}
	switch k.kind {
	case ctorBool:
		b, ok := head.Literal.Value.(bool)
		return nil, head.Kind == typed.LiteralPattern && ok && fmt.Sprint(b) == k.name
	case ctorUnit:
		return nil, head.Kind == typed.LiteralPattern && head.Literal.Value == nil
	case ctorTuple:
		if head.Kind != typed.TuplePattern || len(head.Elements) != n {
			return nil, false
		}
		return append([]*typed.Pattern(nil), head.Elements...), true
	case ctorRecord:
		if head.Kind != typed.RecordPattern {
			return nil, false
		}
		out := make([]*typed.Pattern, n)
		for i, key := range k.keys {
			out[i] = fieldOf(head, key)
		}
		return out, true
	case ctorSlice:
		if head.Kind != typed.SlicePattern {
			return nil, false
		}
		pre, suf, rest, ok := sliceShape(head)
		if !ok {
			return nil, false
		}
		if !rest {
			if len(pre) != n {
				return nil, false
			}
			return append([]*typed.Pattern(nil), pre...), true
		}
		if len(pre)+len(suf) > n {
			return nil, false
		}
		out := make([]*typed.Pattern, n)
		copy(out, pre)
		copy(out[n-len(suf):], suf)
		return out, true
	}
	if head.Kind != typed.ConstructorPattern || head.Name != k.name {
		return nil, false
	}
	out := make([]*typed.Pattern, n)
	copy(out, head.Elements)
	return out, true
}
