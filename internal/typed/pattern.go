// Package typed holds the checked form of a module: patterns, expressions
// and declarations annotated with resolved types. Values are built once by
// the analyzer and never mutated afterwards.
package typed

import (
	"github.com/funvibe/matchcore/internal/activepattern"
	"github.com/funvibe/matchcore/internal/token"
	"github.com/funvibe/matchcore/internal/typesystem"
)

type PatternKind int

const (
	WildcardPattern PatternKind = iota
	VarPattern
	LiteralPattern
	TuplePattern
	RecordPattern
	ConstructorPattern
	BindingPattern
	OrPattern
	SlicePattern
	RangePattern
	RegexPattern
	ActivePattern
)

var patternKindNames = [...]string{
	WildcardPattern:    "wildcard",
	VarPattern:         "var",
	LiteralPattern:     "literal",
	TuplePattern:       "tuple",
	RecordPattern:      "record",
	ConstructorPattern: "constructor",
	BindingPattern:     "binding",
	OrPattern:          "or",
	SlicePattern:       "slice",
	RangePattern:       "range",
	RegexPattern:       "regex",
	ActivePattern:      "active",
}

func (k PatternKind) String() string {
	if int(k) < len(patternKindNames) {
		return patternKindNames[k]
	}
	return "invalid"
}

// Literal is a constant in a pattern. Value is int64, float64, string,
// bool, or nil for unit.
type Literal struct {
	Value interface{}
}

// FieldPattern is `key: pattern` inside a record pattern.
type FieldPattern struct {
	Key   string
	Value *Pattern
}

// SliceItem is an element of a slice pattern; rest markers carry no element.
type SliceItem struct {
	Element *Pattern
	IsRest  bool
	Binding string
	Span    token.Span
}

// Pattern is a typed pattern node. Kind selects which fields are meaningful:
//
//	Var, Binding          Name
//	Literal               Literal
//	Tuple                 Elements
//	Record                Fields, HasRest
//	Constructor           Name, Elements
//	Binding               Inner, ViaAt
//	Or                    Elements (alternatives)
//	Slice                 Items
//	Range                 Start, End, Inclusive
//	Regex                 Regex
//	Active                Name, ActiveKind, Inner (argument, may be nil), Unresolved
type Pattern struct {
	Kind PatternKind
	Span token.Span
	Type typesystem.Type

	Name       string
	Literal    Literal
	Elements   []*Pattern
	Fields     []FieldPattern
	HasRest    bool
	Inner      *Pattern
	ViaAt      bool
	Items      []SliceItem
	Start, End *Pattern
	Inclusive  bool
	Regex      string
	ActiveKind activepattern.Kind
	// Unresolved marks a call to a recognizer with no declaration.
	Unresolved bool
}

// Children returns the direct sub-patterns in source order.
func (p *Pattern) Children() []*Pattern {
	switch p.Kind {
	case TuplePattern, ConstructorPattern, OrPattern:
		return p.Elements
	case RecordPattern:
		out := make([]*Pattern, 0, len(p.Fields))
		for _, f := range p.Fields {
			out = append(out, f.Value)
		}
		return out
	case BindingPattern:
		return []*Pattern{p.Inner}
	case ActivePattern:
		if p.Inner != nil {
			return []*Pattern{p.Inner}
		}
	case SlicePattern:
		var out []*Pattern
		for _, it := range p.Items {
			if !it.IsRest {
				out = append(out, it.Element)
			}
		}
		return out
	case RangePattern:
		var out []*Pattern
		if p.Start != nil {
			out = append(out, p.Start)
		}
		if p.End != nil {
			out = append(out, p.End)
		}
		return out
	}
	return nil
}

// Walk visits p and its descendants depth-first; returning false from fn
// skips the node's children.
func Walk(p *Pattern, fn func(*Pattern) bool) {
	if p == nil || !fn(p) {
		return
	}
	for _, c := range p.Children() {
		Walk(c, fn)
	}
}

// UsesPartialActive reports whether a partial active pattern appears anywhere in p.
func (p *Pattern) UsesPartialActive() bool {
	found := false
	Walk(p, func(n *Pattern) bool {
		if n.Kind == ActivePattern && n.ActiveKind == activepattern.Partial {
			found = true
		}
		return !found
	})
	return found
}

// Wildcard builds an untyped wildcard; handy for synthesized arms.
func Wildcard(span token.Span) *Pattern {
	return &Pattern{Kind: WildcardPattern, Span: span, Type: typesystem.Unknown}
}
