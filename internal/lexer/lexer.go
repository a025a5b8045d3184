package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/matchcore/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	line, col, start := l.line, l.column, l.position

	switch l.ch {
	case '=':
		// =, ==, =>
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.span(token.EQ, "==", line, col, start)
		} else if l.peekChar() == '>' {
			l.readChar()
			tok = l.span(token.FAT_ARROW, "=>", line, col, start)
		} else {
			tok = l.span(token.ASSIGN, "=", line, col, start)
		}
	case '+':
		tok = l.span(token.PLUS, "+", line, col, start)
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			tok = l.span(token.ARROW, "->", line, col, start)
		} else {
			tok = l.span(token.MINUS, "-", line, col, start)
		}
	case '*':
		tok = l.span(token.ASTERISK, "*", line, col, start)
	case '/':
		tok = l.span(token.SLASH, "/", line, col, start)
	case '%':
		tok = l.span(token.PERCENT, "%", line, col, start)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.span(token.NOT_EQ, "!=", line, col, start)
		} else {
			tok = l.span(token.BANG, "!", line, col, start)
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.span(token.LTE, "<=", line, col, start)
		} else {
			tok = l.span(token.LT, "<", line, col, start)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.span(token.GTE, ">=", line, col, start)
		} else {
			tok = l.span(token.GT, ">", line, col, start)
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok = l.span(token.AND, "&&", line, col, start)
		} else {
			tok = l.span(token.ILLEGAL, "&", line, col, start)
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok = l.span(token.OR, "||", line, col, start)
		} else {
			tok = l.span(token.PIPE, "|", line, col, start)
		}
	case '.':
		if l.peekChar() == '.' {
			l.readChar()
			if l.peekChar() == '=' {
				l.readChar()
				tok = l.span(token.DOT_DOT_EQ, "..=", line, col, start)
			} else {
				tok = l.span(token.DOT_DOT, "..", line, col, start)
			}
		} else {
			tok = l.span(token.DOT, ".", line, col, start)
		}
	case '@':
		tok = l.span(token.AT, "@", line, col, start)
	case ',':
		tok = l.span(token.COMMA, ",", line, col, start)
	case ':':
		tok = l.span(token.COLON, ":", line, col, start)
	case ';':
		tok = l.span(token.SEMICOLON, ";", line, col, start)
	case '(':
		tok = l.span(token.LPAREN, "(", line, col, start)
	case ')':
		tok = l.span(token.RPAREN, ")", line, col, start)
	case '{':
		tok = l.span(token.LBRACE, "{", line, col, start)
	case '}':
		tok = l.span(token.RBRACE, "}", line, col, start)
	case '[':
		tok = l.span(token.LBRACKET, "[", line, col, start)
	case ']':
		tok = l.span(token.RBRACKET, "]", line, col, start)
	case '"':
		content, ok := l.readString()
		tok = token.Token{Type: token.STRING, Lexeme: l.input[start:l.position], Literal: content, Line: line, Column: col, Offset: start}
		if !ok {
			tok.Type = token.ILLEGAL
		}
		return tok
	case 0:
		return token.Token{Type: token.EOF, Lexeme: "", Line: line, Column: col, Offset: len(l.input)}
	default:
		if l.ch == 'r' && l.peekChar() == '"' {
			l.readChar() // consume r, now at "
			content, ok := l.readRawString()
			tok = token.Token{Type: token.REGEX, Lexeme: l.input[start:l.position], Literal: content, Line: line, Column: col, Offset: start}
			if !ok {
				tok.Type = token.ILLEGAL
			}
			return tok
		}
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			tok = token.Token{Type: token.LookupIdent(ident), Lexeme: ident, Literal: ident, Line: line, Column: col, Offset: start}
			switch tok.Type {
			case token.TRUE:
				tok.Literal = true
			case token.FALSE:
				tok.Literal = false
			}
			return tok
		}
		if isDigit(l.ch) {
			return l.readNumber(line, col, start)
		}
		tok = l.span(token.ILLEGAL, string(l.ch), line, col, start)
	}

	l.readChar()
	return tok
}

// span builds a token whose lexeme was already consumed up to the current char.
func (l *Lexer) span(t token.TokenType, lexeme string, line, col, start int) token.Token {
	return token.Token{Type: t, Lexeme: lexeme, Literal: lexeme, Line: line, Column: col, Offset: start}
}

// readString reads a double-quoted string with escapes. The lexer is left
// after the closing quote.
func (l *Lexer) readString() (string, bool) {
	var out strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return out.String(), false
		case '"':
			l.readChar()
			return out.String(), true
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				out.WriteRune('\n')
			case 't':
				out.WriteRune('\t')
			case 'r':
				out.WriteRune('\r')
			case '0':
				out.WriteRune(0)
			case 0:
				return out.String(), false
			default:
				out.WriteRune(l.ch)
			}
		default:
			out.WriteRune(l.ch)
		}
	}
}

// readRawString reads r"..." content verbatim; only \" is unescaped.
func (l *Lexer) readRawString() (string, bool) {
	var out strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return out.String(), false
		case '"':
			l.readChar()
			return out.String(), true
		case '\\':
			if l.peekChar() == '"' {
				l.readChar()
				out.WriteRune('"')
				continue
			}
			out.WriteRune(l.ch)
		default:
			out.WriteRune(l.ch)
		}
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber(line, col, start int) token.Token {
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	isFloat := false
	// 1.5 is a float, 1..5 is a range
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	lexeme := l.input[start:l.position]
	clean := strings.ReplaceAll(lexeme, "_", "")
	tok := token.Token{Lexeme: lexeme, Line: line, Column: col, Offset: start}
	if isFloat {
		v, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			tok.Type = token.ILLEGAL
			tok.Literal = lexeme
			return tok
		}
		tok.Type = token.FLOAT
		tok.Literal = v
		return tok
	}
	v, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		tok.Type = token.ILLEGAL
		tok.Literal = lexeme
		return tok
	}
	tok.Type = token.INT
	tok.Literal = v
	return tok
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// skipWhitespace skips blanks, newlines and comments. The grammar is
// newline-insensitive; tokens keep their line for call disambiguation.
func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for l.ch != 0 && !(l.ch == '*' && l.peekChar() == '/') {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar()
				l.readChar()
			}
		default:
			return
		}
	}
}
