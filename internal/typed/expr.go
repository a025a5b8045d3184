package typed

import (
	"github.com/funvibe/matchcore/internal/token"
	"github.com/funvibe/matchcore/internal/typesystem"
)

type ExprKind int

const (
	IdentExpr ExprKind = iota
	LiteralExpr
	ConstructorExpr
	CallExpr
	PrefixExpr
	InfixExpr
	IfExpr
	MatchExpr
	BlockExpr
	PerformExpr
	TupleExpr
	ArrayExpr
	RecordExpr
	FieldExpr
)

var exprKindNames = [...]string{
	IdentExpr:       "ident",
	LiteralExpr:     "literal",
	ConstructorExpr: "constructor",
	CallExpr:        "call",
	PrefixExpr:      "prefix",
	InfixExpr:       "infix",
	IfExpr:          "if",
	MatchExpr:       "match",
	BlockExpr:       "block",
	PerformExpr:     "perform",
	TupleExpr:       "tuple",
	ArrayExpr:       "array",
	RecordExpr:      "record",
	FieldExpr:       "field",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "invalid"
}

// Let is one `let name = value` of a block.
type Let struct {
	Name  string
	Value *Expr
}

// Expr is a typed expression. Kind selects the meaningful fields:
//
//	Ident                 Name
//	Literal               Literal
//	Constructor, Perform  Name, Args
//	Call                  Callee, Args
//	Prefix, Infix         Operator, Args (operands)
//	If                    Args (cond, then, else)
//	Match                 Match
//	Block                 Lets, Args (result, may be empty)
//	Tuple, Array          Args
//	Record                Names (keys), Args (values)
//	Field                 Args[0], Name
type Expr struct {
	Kind     ExprKind
	Span     token.Span
	Type     typesystem.Type
	Name     string
	Names    []string
	Literal  Literal
	Operator string
	Callee   *Expr
	Args     []*Expr
	Lets     []Let
	Match    *Match
}

// MatchArm is a checked arm. Alias is bound before Guard runs.
type MatchArm struct {
	Pattern     *Pattern
	Guard       *Expr
	GuardUsedIf bool
	Alias       string
	AliasSpan   token.Span
	Body        *Expr
	Span        token.Span
}

func (a MatchArm) HasGuard() bool { return a.Guard != nil }

// Match is a checked match expression.
type Match struct {
	Span   token.Span
	Target *Expr
	Arms   []MatchArm
}

// Subexprs returns the direct child expressions, matches included.
func (e *Expr) Subexprs() []*Expr {
	var out []*Expr
	if e.Callee != nil {
		out = append(out, e.Callee)
	}
	for _, l := range e.Lets {
		out = append(out, l.Value)
	}
	out = append(out, e.Args...)
	if e.Match != nil {
		out = append(out, e.Match.Target)
		for _, arm := range e.Match.Arms {
			if arm.Guard != nil {
				out = append(out, arm.Guard)
			}
			out = append(out, arm.Body)
		}
	}
	return out
}

// Matches returns every match expression under e in source order,
// outer matches before the matches nested in their arms.
func Matches(e *Expr) []*Match {
	var out []*Match
	var walk func(*Expr)
	walk = func(x *Expr) {
		if x == nil {
			return
		}
		if x.Kind == MatchExpr {
			out = append(out, x.Match)
		}
		for _, c := range x.Subexprs() {
			walk(c)
		}
	}
	walk(e)
	return out
}
