package typed

import (
	"github.com/funvibe/matchcore/internal/activepattern"
	"github.com/funvibe/matchcore/internal/token"
	"github.com/funvibe/matchcore/internal/typesystem"
)

type Param struct {
	Name string
	Type typesystem.Type
}

type Function struct {
	Name   string
	Params []Param
	Result typesystem.Type
	Body   *Expr
	Public bool
	Span   token.Span
}

// ActivePatternDecl is a checked recognizer declaration.
type ActivePatternDecl struct {
	Name          string
	Kind          activepattern.Kind
	Params        []Param
	Declared      typesystem.Type // return annotation, Unknown when absent
	ReturnType    typesystem.Type // as produced by the body
	Payload       typesystem.Type // Option payload for partial, return type for total
	ReturnCarrier activepattern.ReturnCarrier
	HasMissPath   bool
	Pure          bool
	Public        bool
	Body          *Expr
	Span          token.Span
}

// Module is the typed form of one source file.
type Module struct {
	Name           string
	File           string
	Functions      []*Function
	ActivePatterns []*ActivePatternDecl
	// Inline holds top-level expressions; their matches have no owner.
	Inline []*Expr
	Types  *typesystem.TypeTable
}

func (m *Module) Function(name string) (*Function, bool) {
	for _, f := range m.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

func (m *Module) ActivePattern(name string) (*ActivePatternDecl, bool) {
	for _, ap := range m.ActivePatterns {
		if ap.Name == name {
			return ap, true
		}
	}
	return nil, false
}
