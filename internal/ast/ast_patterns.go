package ast

import "github.com/funvibe/matchcore/internal/token"

// --- Pattern Matching ---

type Pattern interface {
	Node
	patternNode()
	Accept(v Visitor)
}

// Visitor walks surface patterns.
type Visitor interface {
	VisitWildcardPattern(p *WildcardPattern)
	VisitVarPattern(p *VarPattern)
	VisitLiteralPattern(p *LiteralPattern)
	VisitTuplePattern(p *TuplePattern)
	VisitRecordPattern(p *RecordPattern)
	VisitConstructorPattern(p *ConstructorPattern)
	VisitBindingPattern(p *BindingPattern)
	VisitOrPattern(p *OrPattern)
	VisitSlicePattern(p *SlicePattern)
	VisitRangePattern(p *RangePattern)
	VisitRegexPattern(p *RegexPattern)
	VisitActivePattern(p *ActivePattern)
}

// WildcardPattern: _
type WildcardPattern struct {
	Token token.Token
	Span  token.Span
}

func (p *WildcardPattern) Accept(v Visitor)      { v.VisitWildcardPattern(p) }
func (p *WildcardPattern) patternNode()          {}
func (p *WildcardPattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *WildcardPattern) GetToken() token.Token { return p.Token }
func (p *WildcardPattern) GetSpan() token.Span   { return p.Span }

// VarPattern: x
type VarPattern struct {
	Token token.Token
	Name  string
	Span  token.Span
}

func (p *VarPattern) Accept(v Visitor)      { v.VisitVarPattern(p) }
func (p *VarPattern) patternNode()          {}
func (p *VarPattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *VarPattern) GetToken() token.Token { return p.Token }
func (p *VarPattern) GetSpan() token.Span   { return p.Span }

// LiteralPattern: 1, -2, 1.5, "s", true, ()
// Value is int64, float64, string, bool, or Unit.
type LiteralPattern struct {
	Token token.Token
	Value interface{}
	Span  token.Span
}

// Unit is the value of the () literal.
type Unit struct{}

func (p *LiteralPattern) Accept(v Visitor)      { v.VisitLiteralPattern(p) }
func (p *LiteralPattern) patternNode()          {}
func (p *LiteralPattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *LiteralPattern) GetToken() token.Token { return p.Token }
func (p *LiteralPattern) GetSpan() token.Span   { return p.Span }

// TuplePattern: (x, y, _)
type TuplePattern struct {
	Token    token.Token // '('
	Elements []Pattern
	Span     token.Span
}

func (p *TuplePattern) Accept(v Visitor)      { v.VisitTuplePattern(p) }
func (p *TuplePattern) patternNode()          {}
func (p *TuplePattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *TuplePattern) GetToken() token.Token { return p.Token }
func (p *TuplePattern) GetSpan() token.Span   { return p.Span }

// RecordPatternField is `key: pattern`; the shorthand `key` binds a var.
type RecordPatternField struct {
	Token token.Token
	Key   string
	Value Pattern
}

// RecordPattern: { x: p1, y, .. }
type RecordPattern struct {
	Token   token.Token // '{'
	Fields  []*RecordPatternField
	HasRest bool
	Span    token.Span
}

func (p *RecordPattern) Accept(v Visitor)      { v.VisitRecordPattern(p) }
func (p *RecordPattern) patternNode()          {}
func (p *RecordPattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *RecordPattern) GetToken() token.Token { return p.Token }
func (p *RecordPattern) GetSpan() token.Span   { return p.Span }

// ConstructorPattern: Some(x), None, Circle(r)
type ConstructorPattern struct {
	Token    token.Token // Constructor name
	Name     string
	Elements []Pattern
	Span     token.Span
}

func (p *ConstructorPattern) Accept(v Visitor)      { v.VisitConstructorPattern(p) }
func (p *ConstructorPattern) patternNode()          {}
func (p *ConstructorPattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *ConstructorPattern) GetToken() token.Token { return p.Token }
func (p *ConstructorPattern) GetSpan() token.Span   { return p.Span }

// BindingPattern: name @ pat (ViaAt) or pat as name
type BindingPattern struct {
	Token   token.Token // name for @, 'as' otherwise
	Name    string
	Pattern Pattern
	ViaAt   bool
	Span    token.Span
}

func (p *BindingPattern) Accept(v Visitor)      { v.VisitBindingPattern(p) }
func (p *BindingPattern) patternNode()          {}
func (p *BindingPattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *BindingPattern) GetToken() token.Token { return p.Token }
func (p *BindingPattern) GetSpan() token.Span   { return p.Span }

// OrPattern: A | B | C
type OrPattern struct {
	Token        token.Token // first '|'
	Alternatives []Pattern
	Span         token.Span
}

func (p *OrPattern) Accept(v Visitor)      { v.VisitOrPattern(p) }
func (p *OrPattern) patternNode()          {}
func (p *OrPattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *OrPattern) GetToken() token.Token { return p.Token }
func (p *OrPattern) GetSpan() token.Span   { return p.Span }

// SliceItem is either an element pattern or a rest marker (`..` / `..name`).
type SliceItem struct {
	Token   token.Token
	Element Pattern // nil for a rest marker
	IsRest  bool
	Binding string // rest binding, may be empty
}

// SlicePattern: [head, ..tail], [a, .., z], []
type SlicePattern struct {
	Token token.Token // '['
	Items []*SliceItem
	Span  token.Span
}

func (p *SlicePattern) Accept(v Visitor)      { v.VisitSlicePattern(p) }
func (p *SlicePattern) patternNode()          {}
func (p *SlicePattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *SlicePattern) GetToken() token.Token { return p.Token }
func (p *SlicePattern) GetSpan() token.Span   { return p.Span }

// RestCount returns the number of rest markers.
func (p *SlicePattern) RestCount() int {
	n := 0
	for _, it := range p.Items {
		if it.IsRest {
			n++
		}
	}
	return n
}

// RangePattern: 1..5, 'a'..='z', ..=10, 3..
type RangePattern struct {
	Token     token.Token // '..' or '..='
	Start     Pattern     // nil when open
	End       Pattern     // nil when open
	Inclusive bool
	Span      token.Span
}

func (p *RangePattern) Accept(v Visitor)      { v.VisitRangePattern(p) }
func (p *RangePattern) patternNode()          {}
func (p *RangePattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *RangePattern) GetToken() token.Token { return p.Token }
func (p *RangePattern) GetSpan() token.Span   { return p.Span }

// RegexPattern: r"^[a-z]+$"
type RegexPattern struct {
	Token   token.Token
	Pattern string
	Span    token.Span
}

func (p *RegexPattern) Accept(v Visitor)      { v.VisitRegexPattern(p) }
func (p *RegexPattern) patternNode()          {}
func (p *RegexPattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *RegexPattern) GetToken() token.Token { return p.Token }
func (p *RegexPattern) GetSpan() token.Span   { return p.Span }

// ActivePattern: (|Even|) n or (|Int|_|) v
type ActivePattern struct {
	Token     token.Token // '('
	Name      string
	IsPartial bool
	Argument  Pattern // nil when the recognizer takes no argument pattern
	Span      token.Span
}

func (p *ActivePattern) Accept(v Visitor)      { v.VisitActivePattern(p) }
func (p *ActivePattern) patternNode()          {}
func (p *ActivePattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *ActivePattern) GetToken() token.Token { return p.Token }
func (p *ActivePattern) GetSpan() token.Span   { return p.Span }

// MatchArm represents a single case in a match expression.
// Alias is bound before Guard is evaluated, whichever order the source used.
type MatchArm struct {
	Token       token.Token // leading '|'
	Pattern     Pattern
	Guard       Expression // nil if no guard
	GuardUsedIf bool       // guard introduced with the legacy `if`
	Alias       string
	AliasToken  token.Token
	Body        Expression
	Span        token.Span
}

// HasAlias reports whether the arm carries an `as name` alias.
func (a *MatchArm) HasAlias() bool { return a.Alias != "" }
