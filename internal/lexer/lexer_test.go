package lexer

import (
	"testing"

	"github.com/funvibe/matchcore/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `pattern (|IsFoo|_|)(s: String) = s
match xs with
| [head, ..tail] when head >= 1.5 -> head // trailing
| 1..=5 | 7.. -> -1
/* block */ | n @ _ if n != 0 && !b || c -> perform Log("a\"b")
| r"^[a-z]+\"$" => x.y`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.PATTERN, "pattern"},
		{token.LPAREN, "("},
		{token.PIPE, "|"},
		{token.IDENT_UPPER, "IsFoo"},
		{token.PIPE, "|"},
		{token.UNDERSCORE, "_"},
		{token.PIPE, "|"},
		{token.RPAREN, ")"},
		{token.LPAREN, "("},
		{token.IDENT_LOWER, "s"},
		{token.COLON, ":"},
		{token.IDENT_UPPER, "String"},
		{token.RPAREN, ")"},
		{token.ASSIGN, "="},
		{token.IDENT_LOWER, "s"},
		{token.MATCH, "match"},
		{token.IDENT_LOWER, "xs"},
		{token.WITH, "with"},
		{token.PIPE, "|"},
		{token.LBRACKET, "["},
		{token.IDENT_LOWER, "head"},
		{token.COMMA, ","},
		{token.DOT_DOT, ".."},
		{token.IDENT_LOWER, "tail"},
		{token.RBRACKET, "]"},
		{token.WHEN, "when"},
		{token.IDENT_LOWER, "head"},
		{token.GTE, ">="},
		{token.FLOAT, "1.5"},
		{token.ARROW, "->"},
		{token.IDENT_LOWER, "head"},
		{token.PIPE, "|"},
		{token.INT, "1"},
		{token.DOT_DOT_EQ, "..="},
		{token.INT, "5"},
		{token.PIPE, "|"},
		{token.INT, "7"},
		{token.DOT_DOT, ".."},
		{token.ARROW, "->"},
		{token.MINUS, "-"},
		{token.INT, "1"},
		{token.PIPE, "|"},
		{token.IDENT_LOWER, "n"},
		{token.AT, "@"},
		{token.UNDERSCORE, "_"},
		{token.IF, "if"},
		{token.IDENT_LOWER, "n"},
		{token.NOT_EQ, "!="},
		{token.INT, "0"},
		{token.AND, "&&"},
		{token.BANG, "!"},
		{token.IDENT_LOWER, "b"},
		{token.OR, "||"},
		{token.IDENT_LOWER, "c"},
		{token.ARROW, "->"},
		{token.PERFORM, "perform"},
		{token.IDENT_UPPER, "Log"},
		{token.LPAREN, "("},
		{token.STRING, `"a\"b"`},
		{token.RPAREN, ")"},
		{token.PIPE, "|"},
		{token.REGEX, `r"^[a-z]+\"$"`},
		{token.FAT_ARROW, "=>"},
		{token.IDENT_LOWER, "x"},
		{token.DOT, "."},
		{token.IDENT_LOWER, "y"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)", i, tt.expectedType, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != tt.expectedLiteral {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Lexeme)
		}
	}
}

func TestLiteralValues(t *testing.T) {
	l := New(`42 1_000 2.5 "a\nb" r"\d+" true`)
	want := []interface{}{int64(42), int64(1000), 2.5, "a\nb", `\d+`, true}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Literal != w {
			t.Errorf("token %d: literal = %#v, want %#v", i, tok.Literal, w)
		}
	}
}

func TestPositions(t *testing.T) {
	l := New("match x\n  | _ -> 0")
	var last token.Token
	for tok := l.NextToken(); tok.Type != token.EOF; tok = l.NextToken() {
		last = tok
		if tok.Type == token.UNDERSCORE {
			if tok.Line != 2 || tok.Column != 5 || tok.Offset != 12 {
				t.Errorf("_ at %d:%d offset %d", tok.Line, tok.Column, tok.Offset)
			}
		}
	}
	if last.Span().End != len("match x\n  | _ -> 0") {
		t.Errorf("last token ends at %d", last.Span().End)
	}
}

func TestIllegalAndUnterminated(t *testing.T) {
	for _, src := range []string{"&", `"abc`, `r"abc`, "99999999999999999999"} {
		tok := New(src).NextToken()
		if tok.Type != token.ILLEGAL {
			t.Errorf("%q: expected ILLEGAL, got %s", src, tok.Type)
		}
	}
}

func TestTokenStream(t *testing.T) {
	s := NewTokenStream(New("a b"))
	if got := s.Peek(2); len(got) != 2 || got[1].Lexeme != "b" {
		t.Fatalf("Peek(2) = %v", got)
	}
	s.Next()
	s.Next()
	if s.Next().Type != token.EOF || s.Next().Type != token.EOF {
		t.Errorf("EOF should repeat")
	}
}
