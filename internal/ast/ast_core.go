package ast

import "github.com/funvibe/matchcore/internal/token"

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
	GetSpan() token.Span
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Declaration is a top-level item of a module.
type Declaration interface {
	Node
	declarationNode()
	DeclName() string
}

type Visibility int

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "pub"
	}
	return "private"
}

// Program is the root node of every AST our parser produces.
type Program struct {
	File         string
	Module       *ModuleDeclaration
	Uses         []*UseDeclaration
	Declarations []Declaration
}

func (p *Program) TokenLiteral() string {
	if len(p.Declarations) > 0 {
		return p.Declarations[0].TokenLiteral()
	}
	return ""
}

// Functions returns the function declarations in source order.
func (p *Program) Functions() []*FunctionDeclaration {
	var out []*FunctionDeclaration
	for _, d := range p.Declarations {
		if fn, ok := d.(*FunctionDeclaration); ok {
			out = append(out, fn)
		}
	}
	return out
}

// ActivePatterns returns the active pattern declarations in source order.
func (p *Program) ActivePatterns() []*ActivePatternDeclaration {
	var out []*ActivePatternDeclaration
	for _, d := range p.Declarations {
		if ap, ok := d.(*ActivePatternDeclaration); ok {
			out = append(out, ap)
		}
	}
	return out
}

// Types returns the type declarations in source order.
func (p *Program) Types() []*TypeDeclaration {
	var out []*TypeDeclaration
	for _, d := range p.Declarations {
		if td, ok := d.(*TypeDeclaration); ok {
			out = append(out, td)
		}
	}
	return out
}

// ModuleDeclaration: module Core.Text
type ModuleDeclaration struct {
	Token token.Token
	Path  []string
	Span  token.Span
}

func (md *ModuleDeclaration) TokenLiteral() string  { return md.Token.Lexeme }
func (md *ModuleDeclaration) GetToken() token.Token { return md.Token }
func (md *ModuleDeclaration) GetSpan() token.Span   { return md.Span }

// UseDeclaration: use Core.Prelude
type UseDeclaration struct {
	Token token.Token
	Path  []string
	Span  token.Span
}

func (ud *UseDeclaration) TokenLiteral() string  { return ud.Token.Lexeme }
func (ud *UseDeclaration) GetToken() token.Token { return ud.Token }
func (ud *UseDeclaration) GetSpan() token.Span   { return ud.Span }

// Param is a named, optionally annotated parameter.
type Param struct {
	Token token.Token
	Name  string
	Type  TypeExpr
}

// FunctionDeclaration: [pub] fn name(params) [-> T] = body
type FunctionDeclaration struct {
	Token       token.Token // fn
	Name        string
	NameToken   token.Token
	Params      []*Param
	ReturnType  TypeExpr
	Body        Expression
	Visibility  Visibility
	Annotations []string
	Span        token.Span
}

func (fd *FunctionDeclaration) declarationNode()      {}
func (fd *FunctionDeclaration) DeclName() string      { return fd.Name }
func (fd *FunctionDeclaration) TokenLiteral() string  { return fd.Token.Lexeme }
func (fd *FunctionDeclaration) GetToken() token.Token { return fd.Token }
func (fd *FunctionDeclaration) GetSpan() token.Span   { return fd.Span }

// ActivePatternDeclaration: [@pure] [pub] pattern (|Name|) (params) = body
// A partial declaration is written (|Name|_|) and must produce an Option.
type ActivePatternDeclaration struct {
	Token      token.Token // pattern
	Name       string
	NameToken  token.Token
	IsPartial  bool
	Params     []*Param
	ReturnType TypeExpr
	Body       Expression
	Visibility Visibility
	Pure       bool
	Span       token.Span
}

func (ad *ActivePatternDeclaration) declarationNode()      {}
func (ad *ActivePatternDeclaration) DeclName() string      { return ad.Name }
func (ad *ActivePatternDeclaration) TokenLiteral() string  { return ad.Token.Lexeme }
func (ad *ActivePatternDeclaration) GetToken() token.Token { return ad.Token }
func (ad *ActivePatternDeclaration) GetSpan() token.Span   { return ad.Span }

// TopLevelExpression is a bare expression at module level, as typed into
// the REPL. Its matches have no enclosing declaration.
type TopLevelExpression struct {
	Token      token.Token
	Expression Expression
	Span       token.Span
}

func (te *TopLevelExpression) declarationNode()      {}
func (te *TopLevelExpression) DeclName() string      { return "" }
func (te *TopLevelExpression) TokenLiteral() string  { return te.Token.Lexeme }
func (te *TopLevelExpression) GetToken() token.Token { return te.Token }
func (te *TopLevelExpression) GetSpan() token.Span   { return te.Span }
