package mir

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/funvibe/matchcore/internal/activepattern"
	"github.com/funvibe/matchcore/internal/token"
)

type PatternKind string

const (
	PatternWildcard    PatternKind = "wildcard"
	PatternVar         PatternKind = "var"
	PatternLiteral     PatternKind = "literal"
	PatternTuple       PatternKind = "tuple"
	PatternRecord      PatternKind = "record"
	PatternConstructor PatternKind = "constructor"
	PatternBinding     PatternKind = "binding"
	PatternOr          PatternKind = "or"
	PatternSlice       PatternKind = "slice"
	PatternRange       PatternKind = "range"
	PatternRegex       PatternKind = "regex"
	PatternActive      PatternKind = "active"
)

// PatternKinds lists every kind tag in a stable order.
var PatternKinds = []PatternKind{
	PatternWildcard, PatternVar, PatternLiteral, PatternTuple, PatternRecord,
	PatternConstructor, PatternBinding, PatternOr, PatternSlice, PatternRange,
	PatternRegex, PatternActive,
}

// Pattern is a lowered pattern. Kind selects the meaningful fields; the
// binding's inner pattern and the regex source share the "pattern" key on
// the wire.
type Pattern struct {
	Kind PatternKind `json:"kind"`
	Span token.Span  `json:"span"`
	Type string      `json:"ty,omitempty"`

	Name      string             `json:"name,omitempty"`
	Literal   *Literal           `json:"literal,omitempty"`
	Elements  []*Pattern         `json:"elements,omitempty"`
	Fields    []RecordField      `json:"fields,omitempty"`
	HasRest   bool               `json:"has_rest,omitempty"`
	Args      []*Pattern         `json:"args,omitempty"`
	Inner     *Pattern           `json:"-"`
	ViaAt     bool               `json:"via_at,omitempty"`
	Variants  []*Pattern         `json:"variants,omitempty"`
	Head      []*Pattern         `json:"head,omitempty"`
	Rest      *SliceRest         `json:"rest,omitempty"`
	Tail      []*Pattern         `json:"tail,omitempty"`
	Start     *Pattern           `json:"start,omitempty"`
	End       *Pattern           `json:"end,omitempty"`
	Inclusive bool               `json:"inclusive,omitempty"`
	Regex     string             `json:"-"`
	Call      *ActivePatternCall `json:"call,omitempty"`
}

type RecordField struct {
	Key   string   `json:"key"`
	Value *Pattern `json:"value,omitempty"`
}

// SliceRest marks the `..` of a slice pattern.
type SliceRest struct {
	Binding string `json:"binding,omitempty"`
}

// ActivePatternCall is a recognizer invocation inside a pattern. MissTarget
// is set exactly when Kind is Partial.
type ActivePatternCall struct {
	Name         string                    `json:"name"`
	Kind         activepattern.Kind        `json:"kind"`
	Argument     *Pattern                  `json:"argument,omitempty"`
	InputBinding string                    `json:"input_binding,omitempty"`
	MissTarget   *activepattern.JumpTarget `json:"miss_target,omitempty"`
}

func (p Pattern) MarshalJSON() ([]byte, error) {
	type plain Pattern
	out := struct {
		*plain
		Pattern interface{} `json:"pattern,omitempty"`
	}{plain: (*plain)(&p)}
	switch p.Kind {
	case PatternBinding:
		if p.Inner != nil {
			out.Pattern = p.Inner
		}
	case PatternRegex:
		out.Pattern = p.Regex
	}
	return json.Marshal(out)
}

func (p *Pattern) UnmarshalJSON(data []byte) error {
	type plain Pattern
	aux := struct {
		*plain
		Pattern json.RawMessage `json:"pattern,omitempty"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Pattern) == 0 {
		return nil
	}
	switch p.Kind {
	case PatternBinding:
		p.Inner = new(Pattern)
		return json.Unmarshal(aux.Pattern, p.Inner)
	case PatternRegex:
		return json.Unmarshal(aux.Pattern, &p.Regex)
	}
	return fmt.Errorf("%s pattern has no \"pattern\" field", p.Kind)
}

// Literal is a pattern constant. Value is int64, float64, string, bool or
// nil for unit; Type keeps integers and floats apart on the wire.
type Literal struct {
	Value interface{}
}

func literalType(v interface{}) string {
	switch v.(type) {
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case bool:
		return "bool"
	}
	return "unit"
}

// String renders the literal the way it is written in source.
func (l Literal) String() string {
	switch v := l.Value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	}
	return "()"
}

func (l Literal) MarshalJSON() ([]byte, error) {
	out := struct {
		Type  string      `json:"type"`
		Value interface{} `json:"value,omitempty"`
	}{Type: literalType(l.Value), Value: l.Value}
	return json.Marshal(out)
}

func (l *Literal) UnmarshalJSON(data []byte) error {
	var aux struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var err error
	switch aux.Type {
	case "int":
		var v int64
		err = json.Unmarshal(aux.Value, &v)
		l.Value = v
	case "float":
		var v float64
		err = json.Unmarshal(aux.Value, &v)
		l.Value = v
	case "string":
		var v string
		err = json.Unmarshal(aux.Value, &v)
		l.Value = v
	case "bool":
		var v bool
		if len(aux.Value) > 0 {
			err = json.Unmarshal(aux.Value, &v)
		}
		l.Value = v
	case "unit":
		l.Value = nil
	default:
		return fmt.Errorf("unknown literal type %q", aux.Type)
	}
	if err != nil {
		return fmt.Errorf("literal %s: %w", aux.Type, err)
	}
	return nil
}
