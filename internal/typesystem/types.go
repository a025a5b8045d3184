package typesystem

import (
	"fmt"
	"strings"
)

// Type is the interface for all types in our system.
type Type interface {
	String() string
	typeNode()
}

// TCon is a nullary type constructor: Int, String, Shape.
type TCon struct {
	Name string
}

func (t TCon) typeNode()      {}
func (t TCon) String() string { return t.Name }

// TApp applies a constructor to arguments: Option<Int>, Result<Int, String>.
type TApp struct {
	Constructor string
	Args        []Type
}

func (t TApp) typeNode() {}
func (t TApp) String() string {
	return fmt.Sprintf("%s<%s>", t.Constructor, joinTypes(t.Args))
}

// TTuple: (Int, Bool). The empty tuple is Unit and is spelled TCon{"()"}.
type TTuple struct {
	Elements []Type
}

func (t TTuple) typeNode()      {}
func (t TTuple) String() string { return "(" + joinTypes(t.Elements) + ")" }

// TArray: [Int]
type TArray struct {
	Element Type
}

func (t TArray) typeNode()      {}
func (t TArray) String() string { return "[" + t.Element.String() + "]" }

// TField is one field of a record type.
type TField struct {
	Name string
	Type Type
}

// TRecord is a structural record; Name is set for declared records.
type TRecord struct {
	Name   string
	Fields []TField
}

func (t TRecord) typeNode() {}
func (t TRecord) String() string {
	if t.Name != "" {
		return t.Name
	}
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// Field returns the type of field name.
func (t TRecord) Field(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// TFunc is the signature of a function or active pattern.
type TFunc struct {
	Params []Type
	Result Type
}

func (t TFunc) typeNode() {}
func (t TFunc) String() string {
	return "(" + joinTypes(t.Params) + ") -> " + t.Result.String()
}

// TUnknown marks a type the oracle could not resolve. Checks that need a
// concrete type skip it.
type TUnknown struct{}

func (t TUnknown) typeNode()      {}
func (t TUnknown) String() string { return "?" }

func joinTypes(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		if t == nil {
			parts[i] = "?"
			continue
		}
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

var (
	Int     = TCon{Name: "Int"}
	Float   = TCon{Name: "Float"}
	String  = TCon{Name: "String"}
	Bytes   = TCon{Name: "Bytes"}
	Bool    = TCon{Name: "Bool"}
	Unit    = TCon{Name: "()"}
	Unknown = TUnknown{}
)

func Option(t Type) Type { return TApp{Constructor: "Option", Args: []Type{t}} }

func Result(ok, err Type) Type { return TApp{Constructor: "Result", Args: []Type{ok, err}} }

func IsUnknown(t Type) bool {
	if t == nil {
		return true
	}
	_, ok := t.(TUnknown)
	return ok
}

// IsOption reports whether t is Option<_>.
func IsOption(t Type) bool {
	app, ok := t.(TApp)
	return ok && app.Constructor == "Option"
}

// IsResult reports whether t is Result<_, _>.
func IsResult(t Type) bool {
	app, ok := t.(TApp)
	return ok && app.Constructor == "Result"
}

// OptionPayload returns T for Option<T>.
func OptionPayload(t Type) Type {
	if app, ok := t.(TApp); ok && app.Constructor == "Option" && len(app.Args) == 1 {
		return app.Args[0]
	}
	return Unknown
}

// IsTextual reports whether regexes can be matched against t.
func IsTextual(t Type) bool {
	c, ok := t.(TCon)
	return ok && (c.Name == String.Name || c.Name == Bytes.Name)
}

// IsOrdered reports whether range patterns can be used on t.
func IsOrdered(t Type) bool {
	c, ok := t.(TCon)
	return ok && (c.Name == Int.Name || c.Name == Float.Name || c.Name == String.Name)
}

// Equal reports structural equality; Unknown equals anything.
func Equal(a, b Type) bool {
	if IsUnknown(a) || IsUnknown(b) {
		return true
	}
	switch x := a.(type) {
	case TCon:
		y, ok := b.(TCon)
		return ok && x.Name == y.Name
	case TApp:
		y, ok := b.(TApp)
		return ok && x.Constructor == y.Constructor && equalAll(x.Args, y.Args)
	case TTuple:
		y, ok := b.(TTuple)
		return ok && equalAll(x.Elements, y.Elements)
	case TArray:
		y, ok := b.(TArray)
		return ok && Equal(x.Element, y.Element)
	case TRecord:
		y, ok := b.(TRecord)
		if !ok {
			return false
		}
		if x.Name != "" || y.Name != "" {
			return x.Name == y.Name
		}
		if len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if x.Fields[i].Name != y.Fields[i].Name || !Equal(x.Fields[i].Type, y.Fields[i].Type) {
				return false
			}
		}
		return true
	case TFunc:
		y, ok := b.(TFunc)
		return ok && equalAll(x.Params, y.Params) && Equal(x.Result, y.Result)
	}
	return false
}

func equalAll(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
