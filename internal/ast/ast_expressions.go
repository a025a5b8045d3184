package ast

import "github.com/funvibe/matchcore/internal/token"

type Identifier struct {
	Token token.Token
	Value string
	Span  token.Span
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }
func (i *Identifier) GetSpan() token.Span   { return i.Span }

type IntegerLiteral struct {
	Token token.Token
	Value int64
	Span  token.Span
}

func (il *IntegerLiteral) expressionNode()       {}
func (il *IntegerLiteral) TokenLiteral() string  { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token { return il.Token }
func (il *IntegerLiteral) GetSpan() token.Span   { return il.Span }

type FloatLiteral struct {
	Token token.Token
	Value float64
	Span  token.Span
}

func (fl *FloatLiteral) expressionNode()       {}
func (fl *FloatLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FloatLiteral) GetToken() token.Token { return fl.Token }
func (fl *FloatLiteral) GetSpan() token.Span   { return fl.Span }

type StringLiteral struct {
	Token token.Token
	Value string
	Span  token.Span
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }
func (sl *StringLiteral) GetSpan() token.Span   { return sl.Span }

type BooleanLiteral struct {
	Token token.Token
	Value bool
	Span  token.Span
}

func (b *BooleanLiteral) expressionNode()       {}
func (b *BooleanLiteral) TokenLiteral() string  { return b.Token.Lexeme }
func (b *BooleanLiteral) GetToken() token.Token { return b.Token }
func (b *BooleanLiteral) GetSpan() token.Span   { return b.Span }

// UnitLiteral: ()
type UnitLiteral struct {
	Token token.Token
	Span  token.Span
}

func (u *UnitLiteral) expressionNode()       {}
func (u *UnitLiteral) TokenLiteral() string  { return u.Token.Lexeme }
func (u *UnitLiteral) GetToken() token.Token { return u.Token }
func (u *UnitLiteral) GetSpan() token.Span   { return u.Span }

// ConstructorExpression: Some(x), None, Circle(2)
type ConstructorExpression struct {
	Token     token.Token
	Name      string
	Arguments []Expression
	Span      token.Span
}

func (ce *ConstructorExpression) expressionNode()       {}
func (ce *ConstructorExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *ConstructorExpression) GetToken() token.Token { return ce.Token }
func (ce *ConstructorExpression) GetSpan() token.Span   { return ce.Span }

type CallExpression struct {
	Token     token.Token // '('
	Function  Expression
	Arguments []Expression
	Span      token.Span
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }
func (ce *CallExpression) GetSpan() token.Span   { return ce.Span }

type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
	Span     token.Span
}

func (pe *PrefixExpression) expressionNode()       {}
func (pe *PrefixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }
func (pe *PrefixExpression) GetSpan() token.Span   { return pe.Span }

type InfixExpression struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
	Span     token.Span
}

func (ie *InfixExpression) expressionNode()       {}
func (ie *InfixExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token { return ie.Token }
func (ie *InfixExpression) GetSpan() token.Span   { return ie.Span }

// IfExpression: if c then a else b
type IfExpression struct {
	Token       token.Token
	Condition   Expression
	Consequence Expression
	Alternative Expression // nil yields unit
	Span        token.Span
}

func (ie *IfExpression) expressionNode()       {}
func (ie *IfExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IfExpression) GetToken() token.Token { return ie.Token }
func (ie *IfExpression) GetSpan() token.Span   { return ie.Span }

// MatchExpression: match <Target> with | <arms>
type MatchExpression struct {
	Token  token.Token // match
	Target Expression
	Arms   []*MatchArm
	Span   token.Span
}

func (me *MatchExpression) expressionNode()       {}
func (me *MatchExpression) TokenLiteral() string  { return me.Token.Lexeme }
func (me *MatchExpression) GetToken() token.Token { return me.Token }
func (me *MatchExpression) GetSpan() token.Span   { return me.Span }

// LetBinding: let name = value
type LetBinding struct {
	Token token.Token
	Name  string
	Value Expression
}

// BlockExpression: { let x = 1; let y = 2; x + y }
type BlockExpression struct {
	Token  token.Token
	Lets   []*LetBinding
	Result Expression // nil yields unit
	Span   token.Span
}

func (be *BlockExpression) expressionNode()       {}
func (be *BlockExpression) TokenLiteral() string  { return be.Token.Lexeme }
func (be *BlockExpression) GetToken() token.Token { return be.Token }
func (be *BlockExpression) GetSpan() token.Span   { return be.Span }

// PerformExpression: perform Console("ping")
type PerformExpression struct {
	Token     token.Token
	Effect    string
	Arguments []Expression
	Span      token.Span
}

func (pe *PerformExpression) expressionNode()       {}
func (pe *PerformExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PerformExpression) GetToken() token.Token { return pe.Token }
func (pe *PerformExpression) GetSpan() token.Span   { return pe.Span }

type TupleLiteral struct {
	Token    token.Token
	Elements []Expression
	Span     token.Span
}

func (tl *TupleLiteral) expressionNode()       {}
func (tl *TupleLiteral) TokenLiteral() string  { return tl.Token.Lexeme }
func (tl *TupleLiteral) GetToken() token.Token { return tl.Token }
func (tl *TupleLiteral) GetSpan() token.Span   { return tl.Span }

type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
	Span     token.Span
}

func (al *ArrayLiteral) expressionNode()       {}
func (al *ArrayLiteral) TokenLiteral() string  { return al.Token.Lexeme }
func (al *ArrayLiteral) GetToken() token.Token { return al.Token }
func (al *ArrayLiteral) GetSpan() token.Span   { return al.Span }

type RecordFieldExpr struct {
	Token token.Token
	Key   string
	Value Expression
}

// RecordLiteral: { x: 1, y: 2 }
type RecordLiteral struct {
	Token  token.Token
	Fields []*RecordFieldExpr
	Span   token.Span
}

func (rl *RecordLiteral) expressionNode()       {}
func (rl *RecordLiteral) TokenLiteral() string  { return rl.Token.Lexeme }
func (rl *RecordLiteral) GetToken() token.Token { return rl.Token }
func (rl *RecordLiteral) GetSpan() token.Span   { return rl.Span }

// FieldAccess: p.x
type FieldAccess struct {
	Token token.Token // '.'
	Left  Expression
	Field string
	Span  token.Span
}

func (fa *FieldAccess) expressionNode()       {}
func (fa *FieldAccess) TokenLiteral() string  { return fa.Token.Lexeme }
func (fa *FieldAccess) GetToken() token.Token { return fa.Token }
func (fa *FieldAccess) GetSpan() token.Span   { return fa.Span }
