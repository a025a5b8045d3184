package parser

import (
	"fmt"

	"github.com/funvibe/matchcore/internal/ast"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/token"
)

// MaxRecursionDepth bounds nesting of expressions and patterns.
const MaxRecursionDepth = 256

// Precedences
const (
	_ int = iota
	LOWEST
	LOGIC_OR    // ||
	LOGIC_AND   // &&
	EQUALS      // ==, !=
	LESSGREATER // >, <, >=, <=
	SUM         // +, -
	PRODUCT     // *, /, %
	PREFIX      // -x, !x
	CALL        // f(x)
	FIELD       // p.x
)

var precedences = map[token.TokenType]int{
	token.OR:       LOGIC_OR,
	token.AND:      LOGIC_AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.LTE:      LESSGREATER,
	token.GTE:      LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.LPAREN:   CALL,
	token.DOT:      FIELD,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Stream is the token source the parser reads from.
type Stream interface {
	Next() token.Token
	Peek(n int) []token.Token
}

type Parser struct {
	stream Stream

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	depth      int
	errors     []diagnostics.Diagnostic
	incomplete bool
}

func New(stream Stream) *Parser {
	p := &Parser{stream: stream}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.IDENT_LOWER: p.parseIdentifier,
		token.IDENT_UPPER: p.parseConstructor,
		token.INT:         p.parseIntegerLiteral,
		token.FLOAT:       p.parseFloatLiteral,
		token.STRING:      p.parseStringLiteral,
		token.TRUE:        p.parseBoolean,
		token.FALSE:       p.parseBoolean,
		token.MINUS:       p.parsePrefixExpression,
		token.BANG:        p.parsePrefixExpression,
		token.LPAREN:      p.parseGroupedExpression,
		token.LBRACKET:    p.parseArrayLiteral,
		token.LBRACE:      p.parseRecordLiteralOrBlock,
		token.IF:          p.parseIfExpression,
		token.MATCH:       p.parseMatchExpression,
		token.PERFORM:     p.parsePerformExpression,
	}

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, t := range []token.TokenType{
		token.OR, token.AND, token.EQ, token.NOT_EQ, token.LT, token.GT,
		token.LTE, token.GTE, token.PLUS, token.MINUS, token.ASTERISK,
		token.SLASH, token.PERCENT,
	} {
		p.infixParseFns[t] = p.parseInfixExpression
	}
	p.infixParseFns[token.LPAREN] = p.parseCallExpression
	p.infixParseFns[token.DOT] = p.parseFieldAccess

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns the diagnostics produced so far.
func (p *Parser) Errors() []diagnostics.Diagnostic { return p.errors }

// Incomplete reports whether parsing failed because input ended early.
func (p *Parser) Incomplete() bool { return p.incomplete }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.stream.Next()
}

// peekAfter returns the token following peekToken.
func (p *Parser) peekAfter() token.Token {
	if ts := p.stream.Peek(1); len(ts) > 0 {
		return ts[0]
	}
	return token.Token{Type: token.EOF}
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.TokenType, what string) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(what)
	return false
}

func (p *Parser) addError(code diagnostics.Code, tok token.Token, args ...interface{}) {
	p.errors = append(p.errors, diagnostics.NewDiagnostic(code, tok.Span(), args...))
}

func (p *Parser) peekError(what string) {
	if p.peekTokenIs(token.EOF) {
		p.incomplete = true
		p.addError(diagnostics.ParseUnexpectedEOF, p.peekToken, what)
		return
	}
	p.addError(diagnostics.ParseUnexpectedToken, p.peekToken, what, describe(p.peekToken))
}

func describe(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

// spanFrom covers start through the current token.
func (p *Parser) spanFrom(start token.Token) token.Span {
	return start.Span().Join(p.curToken.Span())
}

func (p *Parser) enter() bool {
	p.depth++
	if p.depth > MaxRecursionDepth {
		p.addError(diagnostics.ParseRecursionTooDeep, p.curToken, MaxRecursionDepth)
		return false
	}
	return true
}

func (p *Parser) leave() { p.depth-- }

// ParseProgram parses a whole module.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	if p.curTokenIs(token.MODULE) {
		start := p.curToken
		path := p.parsePath()
		program.Module = &ast.ModuleDeclaration{Token: start, Path: path, Span: p.spanFrom(start)}
		p.nextToken()
	}
	for p.curTokenIs(token.USE) {
		start := p.curToken
		path := p.parsePath()
		program.Uses = append(program.Uses, &ast.UseDeclaration{Token: start, Path: path, Span: p.spanFrom(start)})
		p.nextToken()
	}

	for !p.curTokenIs(token.EOF) {
		before := len(p.errors)
		decl := p.parseDeclaration()
		if decl != nil && len(p.errors) == before {
			program.Declarations = append(program.Declarations, decl)
			p.nextToken()
			continue
		}
		if decl != nil {
			program.Declarations = append(program.Declarations, decl)
		}
		p.synchronize()
	}
	return program
}

// synchronize skips to the next token that can begin a declaration.
func (p *Parser) synchronize() {
	p.nextToken()
	for !p.curTokenIs(token.EOF) {
		switch p.curToken.Type {
		case token.FN, token.PATTERN, token.TYPE, token.PUB, token.AT:
			return
		}
		p.nextToken()
	}
}

// parsePath reads `Ident(.Ident)*` after a module/use keyword.
func (p *Parser) parsePath() []string {
	var path []string
	for {
		if !p.peekTokenIs(token.IDENT_UPPER) && !p.peekTokenIs(token.IDENT_LOWER) {
			p.peekError("module path")
			return path
		}
		p.nextToken()
		path = append(path, p.curToken.Lexeme)
		if !p.peekTokenIs(token.DOT) {
			return path
		}
		p.nextToken()
	}
}

func (p *Parser) parseDeclaration() ast.Declaration {
	start := p.curToken
	var annotations []string
	for p.curTokenIs(token.AT) {
		if !p.expectPeek(token.IDENT_LOWER, "annotation name") {
			return nil
		}
		annotations = append(annotations, p.curToken.Lexeme)
		p.nextToken()
	}
	visibility := ast.Private
	if p.curTokenIs(token.PUB) {
		visibility = ast.Public
		p.nextToken()
	}

	switch p.curToken.Type {
	case token.FN:
		return p.parseFunctionDeclaration(start, visibility, annotations)
	case token.PATTERN:
		return p.parseActivePatternDeclaration(start, visibility, annotations)
	case token.TYPE:
		return p.parseTypeDeclaration(start, visibility)
	}
	if len(annotations) > 0 || visibility == ast.Public {
		p.addError(diagnostics.ParseUnexpectedToken, p.curToken, "fn, pattern or type", describe(p.curToken))
		return nil
	}
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	return &ast.TopLevelExpression{Token: start, Expression: expr, Span: p.spanFrom(start)}
}

func (p *Parser) parseFunctionDeclaration(start token.Token, vis ast.Visibility, annotations []string) ast.Declaration {
	fn := &ast.FunctionDeclaration{Token: p.curToken, Visibility: vis, Annotations: annotations}
	if !p.peekTokenIs(token.IDENT_LOWER) && !p.peekTokenIs(token.IDENT_UPPER) {
		p.peekError("function name")
		return nil
	}
	p.nextToken()
	fn.Name, fn.NameToken = p.curToken.Lexeme, p.curToken

	params, ok := p.parseParams()
	if !ok {
		return nil
	}
	fn.Params = params
	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		if fn.ReturnType = p.parseType(); fn.ReturnType == nil {
			return nil
		}
	}
	if !p.expectPeek(token.ASSIGN, "=") {
		return nil
	}
	p.nextToken()
	if fn.Body = p.parseExpression(LOWEST); fn.Body == nil {
		return nil
	}
	fn.Span = p.spanFrom(start)
	return fn
}

func (p *Parser) parseActivePatternDeclaration(start token.Token, vis ast.Visibility, annotations []string) ast.Declaration {
	decl := &ast.ActivePatternDeclaration{Token: p.curToken, Visibility: vis}
	for _, a := range annotations {
		if a != "pure" {
			p.addError(diagnostics.ParseInvalidAnnotation, start, a)
			continue
		}
		decl.Pure = true
	}
	if !p.expectPeek(token.LPAREN, "(|") {
		return nil
	}
	name, nameTok, partial, ok := p.parseBananaClip()
	if !ok {
		return nil
	}
	decl.Name, decl.NameToken, decl.IsPartial = name, nameTok, partial

	params, ok := p.parseParams()
	if !ok {
		return nil
	}
	decl.Params = params
	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		if decl.ReturnType = p.parseType(); decl.ReturnType == nil {
			return nil
		}
	}
	if !p.expectPeek(token.ASSIGN, "=") {
		return nil
	}
	p.nextToken()
	if decl.Body = p.parseExpression(LOWEST); decl.Body == nil {
		return nil
	}
	decl.Span = p.spanFrom(start)
	return decl
}

// parseBananaClip reads `|Name|)` or `|Name|_|)` with curToken on '('.
func (p *Parser) parseBananaClip() (string, token.Token, bool, bool) {
	if !p.expectPeek(token.PIPE, "|") {
		return "", token.Token{}, false, false
	}
	if !p.expectPeek(token.IDENT_UPPER, "active pattern name") {
		return "", token.Token{}, false, false
	}
	nameTok := p.curToken
	if !p.expectPeek(token.PIPE, "|") {
		return "", token.Token{}, false, false
	}
	partial := false
	if p.peekTokenIs(token.UNDERSCORE) {
		p.nextToken()
		if !p.expectPeek(token.PIPE, "|") {
			return "", token.Token{}, false, false
		}
		partial = true
	}
	if !p.expectPeek(token.RPAREN, ")") {
		return "", token.Token{}, false, false
	}
	return nameTok.Lexeme, nameTok, partial, true
}

// parseParams reads `(a: T, b)` following the current token.
func (p *Parser) parseParams() ([]*ast.Param, bool) {
	if !p.expectPeek(token.LPAREN, "(") {
		return nil, false
	}
	var params []*ast.Param
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, true
	}
	for {
		if !p.expectPeek(token.IDENT_LOWER, "parameter name") {
			return nil, false
		}
		param := &ast.Param{Token: p.curToken, Name: p.curToken.Lexeme}
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			if param.Type = p.parseType(); param.Type == nil {
				return nil, false
			}
		}
		params = append(params, param)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(token.RPAREN, ", or )") {
			return nil, false
		}
		return params, true
	}
}
