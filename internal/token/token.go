package token

import "fmt"

type TokenType string

type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
	Offset  int // byte offset of the first character
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Offset + len(t.Lexeme)
}

// Span returns the source range covered by the token.
func (t Token) Span() Span {
	return Span{Start: t.Offset, End: t.End(), Line: t.Line, Column: t.Column}
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"
	NEWLINE TokenType = "NEWLINE"

	// Identifiers + literals
	IDENT_LOWER TokenType = "IDENT_LOWER" // x, value
	IDENT_UPPER TokenType = "IDENT_UPPER" // Some, Foo
	UNDERSCORE  TokenType = "_"
	INT         TokenType = "INT"
	FLOAT       TokenType = "FLOAT"
	STRING      TokenType = "STRING"
	REGEX       TokenType = "REGEX" // r"..."

	// Operators
	ASSIGN     TokenType = "="
	PLUS       TokenType = "+"
	MINUS      TokenType = "-"
	ASTERISK   TokenType = "*"
	SLASH      TokenType = "/"
	PERCENT    TokenType = "%"
	BANG       TokenType = "!"
	EQ         TokenType = "=="
	NOT_EQ     TokenType = "!="
	LT         TokenType = "<"
	GT         TokenType = ">"
	LTE        TokenType = "<="
	GTE        TokenType = ">="
	AND        TokenType = "&&"
	OR         TokenType = "||"
	ARROW      TokenType = "->"
	FAT_ARROW  TokenType = "=>"
	PIPE       TokenType = "|"
	AT         TokenType = "@"
	DOT        TokenType = "."
	DOT_DOT    TokenType = ".."
	DOT_DOT_EQ TokenType = "..="

	// Delimiters
	COMMA     TokenType = ","
	COLON     TokenType = ":"
	SEMICOLON TokenType = ";"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"

	// Keywords
	MODULE  TokenType = "MODULE"
	USE     TokenType = "USE"
	PUB     TokenType = "PUB"
	FN      TokenType = "FN"
	PATTERN TokenType = "PATTERN"
	TYPE    TokenType = "TYPE"
	MATCH   TokenType = "MATCH"
	WITH    TokenType = "WITH"
	WHEN    TokenType = "WHEN"
	IF      TokenType = "IF"
	THEN    TokenType = "THEN"
	ELSE    TokenType = "ELSE"
	AS      TokenType = "AS"
	LET     TokenType = "LET"
	PERFORM TokenType = "PERFORM"
	TRUE    TokenType = "TRUE"
	FALSE   TokenType = "FALSE"
)

var keywords = map[string]TokenType{
	"module":  MODULE,
	"use":     USE,
	"pub":     PUB,
	"fn":      FN,
	"pattern": PATTERN,
	"type":    TYPE,
	"match":   MATCH,
	"with":    WITH,
	"when":    WHEN,
	"if":      IF,
	"then":    THEN,
	"else":    ELSE,
	"as":      AS,
	"let":     LET,
	"perform": PERFORM,
	"true":    TRUE,
	"false":   FALSE,
}

// LookupIdent classifies an identifier as keyword, constructor-style or value-style name.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	if ident == "_" {
		return UNDERSCORE
	}
	if len(ident) > 0 && ident[0] >= 'A' && ident[0] <= 'Z' {
		return IDENT_UPPER
	}
	return IDENT_LOWER
}

// Span is a half-open byte range [Start, End) with the 1-based position of Start.
type Span struct {
	Start  int `json:"start"`
	End    int `json:"end"`
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
}

// Join returns the smallest span covering both s and other.
func (s Span) Join(other Span) Span {
	if other.End == 0 && other.Start == 0 {
		return s
	}
	out := s
	if other.Start < out.Start {
		out.Start = other.Start
		out.Line = other.Line
		out.Column = other.Column
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}
