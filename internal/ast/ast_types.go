package ast

import (
	"strings"

	"github.com/funvibe/matchcore/internal/token"
)

// TypeExpr is a type annotation as written in source.
type TypeExpr interface {
	Node
	typeNode()
	String() string
}

// NamedType: Int, Option<Int>, Result<Int, String>
type NamedType struct {
	Token token.Token
	Name  string
	Args  []TypeExpr
	Span  token.Span
}

func (t *NamedType) typeNode()             {}
func (t *NamedType) TokenLiteral() string  { return t.Token.Lexeme }
func (t *NamedType) GetToken() token.Token { return t.Token }
func (t *NamedType) GetSpan() token.Span   { return t.Span }
func (t *NamedType) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	return t.Name + "<" + joinTypes(t.Args) + ">"
}

// TupleType: (Int, String); the empty tuple is unit.
type TupleType struct {
	Token    token.Token
	Elements []TypeExpr
	Span     token.Span
}

func (t *TupleType) typeNode()             {}
func (t *TupleType) TokenLiteral() string  { return t.Token.Lexeme }
func (t *TupleType) GetToken() token.Token { return t.Token }
func (t *TupleType) GetSpan() token.Span   { return t.Span }
func (t *TupleType) String() string        { return "(" + joinTypes(t.Elements) + ")" }

// ArrayType: [Int]
type ArrayType struct {
	Token   token.Token
	Element TypeExpr
	Span    token.Span
}

func (t *ArrayType) typeNode()             {}
func (t *ArrayType) TokenLiteral() string  { return t.Token.Lexeme }
func (t *ArrayType) GetToken() token.Token { return t.Token }
func (t *ArrayType) GetSpan() token.Span   { return t.Span }
func (t *ArrayType) String() string        { return "[" + t.Element.String() + "]" }

func joinTypes(ts []TypeExpr) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// Variant is one constructor of a sum type: Bar(Int)
type Variant struct {
	Token  token.Token
	Name   string
	Fields []TypeExpr
}

// RecordFieldType is one field of a record type: x: Int
type RecordFieldType struct {
	Token token.Token
	Name  string
	Type  TypeExpr
}

// TypeDeclaration: type Shape = | Circle(Int) | Square
// or type Point = { x: Int, y: Int }
type TypeDeclaration struct {
	Token      token.Token
	Name       string
	Variants   []*Variant
	Fields     []*RecordFieldType
	Visibility Visibility
	Span       token.Span
}

func (td *TypeDeclaration) declarationNode()      {}
func (td *TypeDeclaration) DeclName() string      { return td.Name }
func (td *TypeDeclaration) TokenLiteral() string  { return td.Token.Lexeme }
func (td *TypeDeclaration) GetToken() token.Token { return td.Token }
func (td *TypeDeclaration) GetSpan() token.Span   { return td.Span }

// IsRecord reports whether the declaration describes a record type.
func (td *TypeDeclaration) IsRecord() bool { return len(td.Variants) == 0 }
