package parser

import (
	"github.com/funvibe/matchcore/internal/ast"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/token"
)

// parseOrPattern parses `p | q | r` at curToken. A trailing `as name` is
// left for the caller: in an arm it is the alias, inside brackets a binding.
func (p *Parser) parseOrPattern() ast.Pattern {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	first := p.parsePrimaryPattern()
	if first == nil {
		return nil
	}
	if !p.peekTokenIs(token.PIPE) {
		return first
	}
	or := &ast.OrPattern{Token: p.peekToken, Alternatives: []ast.Pattern{first}}
	for p.peekTokenIs(token.PIPE) {
		p.nextToken()
		p.nextToken()
		alt := p.parsePrimaryPattern()
		if alt == nil {
			return nil
		}
		or.Alternatives = append(or.Alternatives, alt)
	}
	or.Span = first.GetSpan().Join(p.curToken.Span())
	return or
}

// parseNestedPattern parses a sub-pattern, where `p as name` is a binding.
func (p *Parser) parseNestedPattern() ast.Pattern {
	pat := p.parseOrPattern()
	if pat == nil {
		return nil
	}
	for p.peekTokenIs(token.AS) {
		p.nextToken()
		asTok := p.curToken
		if !p.expectPeek(token.IDENT_LOWER, "binding name") {
			return nil
		}
		pat = &ast.BindingPattern{
			Token:   asTok,
			Name:    p.curToken.Lexeme,
			Pattern: pat,
			Span:    pat.GetSpan().Join(p.curToken.Span()),
		}
	}
	return pat
}

func (p *Parser) parsePrimaryPattern() ast.Pattern {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	tok := p.curToken
	switch tok.Type {
	case token.UNDERSCORE:
		return &ast.WildcardPattern{Token: tok, Span: tok.Span()}
	case token.IDENT_LOWER:
		if p.peekTokenIs(token.AT) {
			p.nextToken()
			p.nextToken()
			inner := p.parsePrimaryPattern()
			if inner == nil {
				return nil
			}
			return &ast.BindingPattern{Token: tok, Name: tok.Lexeme, Pattern: inner, ViaAt: true, Span: p.spanFrom(tok)}
		}
		return &ast.VarPattern{Token: tok, Name: tok.Lexeme, Span: tok.Span()}
	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE, token.MINUS:
		lit := p.parseLiteralPattern()
		if lit == nil {
			return nil
		}
		if p.peekTokenIs(token.DOT_DOT) || p.peekTokenIs(token.DOT_DOT_EQ) {
			p.nextToken()
			return p.parseRangeRest(lit)
		}
		return lit
	case token.DOT_DOT, token.DOT_DOT_EQ:
		rng := &ast.RangePattern{Token: tok, Inclusive: tok.Type == token.DOT_DOT_EQ}
		if !p.peekStartsLiteral() {
			p.peekError("range end")
			return nil
		}
		p.nextToken()
		if rng.End = p.parseLiteralPattern(); rng.End == nil {
			return nil
		}
		rng.Span = p.spanFrom(tok)
		return rng
	case token.IDENT_UPPER:
		return p.parseConstructorPattern()
	case token.LPAREN:
		if p.peekTokenIs(token.PIPE) {
			return p.parseActivePattern()
		}
		return p.parseTupleOrGroupPattern()
	case token.LBRACKET:
		return p.parseSlicePattern()
	case token.LBRACE:
		return p.parseRecordPattern()
	case token.REGEX:
		src, _ := tok.Literal.(string)
		return &ast.RegexPattern{Token: tok, Pattern: src, Span: tok.Span()}
	case token.EOF:
		p.incomplete = true
		p.addError(diagnostics.ParseUnexpectedEOF, tok, "a pattern")
		return nil
	}
	p.addError(diagnostics.ParseExpectedPattern, tok, describe(tok))
	return nil
}

func (p *Parser) peekStartsLiteral() bool {
	switch p.peekToken.Type {
	case token.INT, token.FLOAT, token.STRING, token.MINUS:
		return true
	}
	return false
}

func (p *Parser) parseLiteralPattern() *ast.LiteralPattern {
	tok := p.curToken
	switch tok.Type {
	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE:
		return &ast.LiteralPattern{Token: tok, Value: tok.Literal, Span: tok.Span()}
	case token.MINUS:
		if !p.peekTokenIs(token.INT) && !p.peekTokenIs(token.FLOAT) {
			p.peekError("number")
			return nil
		}
		p.nextToken()
		lit := &ast.LiteralPattern{Token: tok, Span: p.spanFrom(tok)}
		switch v := p.curToken.Literal.(type) {
		case int64:
			lit.Value = -v
		case float64:
			lit.Value = -v
		}
		return lit
	}
	p.addError(diagnostics.ParseExpectedPattern, tok, describe(tok))
	return nil
}

// parseRangeRest finishes `start..[end]` with curToken on the range operator.
func (p *Parser) parseRangeRest(start *ast.LiteralPattern) ast.Pattern {
	rng := &ast.RangePattern{Token: p.curToken, Start: start, Inclusive: p.curTokenIs(token.DOT_DOT_EQ)}
	if p.peekStartsLiteral() {
		p.nextToken()
		end := p.parseLiteralPattern()
		if end == nil {
			return nil
		}
		rng.End = end
	} else if rng.Inclusive {
		p.peekError("range end")
		return nil
	}
	rng.Span = start.GetSpan().Join(p.curToken.Span())
	return rng
}

// parseConstructorPattern: None, Some(x), Pair(a, b)
func (p *Parser) parseConstructorPattern() ast.Pattern {
	cp := &ast.ConstructorPattern{Token: p.curToken, Name: p.curToken.Lexeme}
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		elems, ok := p.parsePatternList(token.RPAREN)
		if !ok {
			return nil
		}
		cp.Elements = elems
	}
	cp.Span = p.spanFrom(cp.Token)
	return cp
}

// parsePatternList reads `p, q<end>` with curToken on the opener.
func (p *Parser) parsePatternList(end token.TokenType) ([]ast.Pattern, bool) {
	var list []ast.Pattern
	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}
	for {
		p.nextToken()
		pat := p.parseNestedPattern()
		if pat == nil {
			return nil, false
		}
		list = append(list, pat)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(end, string(end)) {
			return nil, false
		}
		return list, true
	}
}

// parseTupleOrGroupPattern: (), (p), (p, q)
func (p *Parser) parseTupleOrGroupPattern() ast.Pattern {
	start := p.curToken
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return &ast.LiteralPattern{Token: start, Value: ast.Unit{}, Span: p.spanFrom(start)}
	}
	elems, ok := p.parsePatternList(token.RPAREN)
	if !ok {
		return nil
	}
	if len(elems) == 1 {
		return elems[0]
	}
	return &ast.TuplePattern{Token: start, Elements: elems, Span: p.spanFrom(start)}
}

// parseActivePattern: (|Name|) arg or (|Name|_|) arg; the argument is optional.
func (p *Parser) parseActivePattern() ast.Pattern {
	start := p.curToken
	name, _, partial, ok := p.parseBananaClip()
	if !ok {
		return nil
	}
	ap := &ast.ActivePattern{Token: start, Name: name, IsPartial: partial}
	if p.peekStartsArgument() {
		p.nextToken()
		if ap.Argument = p.parsePrimaryPattern(); ap.Argument == nil {
			return nil
		}
	}
	ap.Span = p.spanFrom(start)
	return ap
}

func (p *Parser) peekStartsArgument() bool {
	switch p.peekToken.Type {
	case token.UNDERSCORE, token.IDENT_LOWER, token.IDENT_UPPER, token.INT, token.FLOAT,
		token.STRING, token.TRUE, token.FALSE, token.MINUS, token.LPAREN,
		token.LBRACKET, token.LBRACE, token.REGEX:
		return true
	}
	return false
}

// parseSlicePattern: [], [x], [head, ..tail], [first, .., last]
func (p *Parser) parseSlicePattern() ast.Pattern {
	sp := &ast.SlicePattern{Token: p.curToken}
	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		sp.Span = p.spanFrom(sp.Token)
		return sp
	}
	for {
		p.nextToken()
		if p.curTokenIs(token.DOT_DOT) && !p.peekStartsLiteral() {
			item := &ast.SliceItem{Token: p.curToken, IsRest: true}
			if p.peekTokenIs(token.IDENT_LOWER) {
				p.nextToken()
				item.Binding = p.curToken.Lexeme
			}
			sp.Items = append(sp.Items, item)
		} else {
			tok := p.curToken
			el := p.parseNestedPattern()
			if el == nil {
				return nil
			}
			sp.Items = append(sp.Items, &ast.SliceItem{Token: tok, Element: el})
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(token.RBRACKET, ", or ]") {
			return nil
		}
		break
	}
	sp.Span = p.spanFrom(sp.Token)
	return sp
}

// parseRecordPattern: { x: p, y, .. }
func (p *Parser) parseRecordPattern() ast.Pattern {
	rp := &ast.RecordPattern{Token: p.curToken}
	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		rp.Span = p.spanFrom(rp.Token)
		return rp
	}
	for {
		p.nextToken()
		switch {
		case p.curTokenIs(token.DOT_DOT):
			rp.HasRest = true
			if !p.expectPeek(token.RBRACE, "} after ..") {
				return nil
			}
			rp.Span = p.spanFrom(rp.Token)
			return rp
		case p.curTokenIs(token.IDENT_LOWER):
			field := &ast.RecordPatternField{Token: p.curToken, Key: p.curToken.Lexeme}
			if p.peekTokenIs(token.COLON) {
				p.nextToken()
				p.nextToken()
				if field.Value = p.parseNestedPattern(); field.Value == nil {
					return nil
				}
			} else {
				field.Value = &ast.VarPattern{Token: p.curToken, Name: p.curToken.Lexeme, Span: p.curToken.Span()}
			}
			rp.Fields = append(rp.Fields, field)
		default:
			p.addError(diagnostics.ParseUnexpectedToken, p.curToken, "field name or ..", describe(p.curToken))
			return nil
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(token.RBRACE, ", or }") {
			return nil
		}
		break
	}
	rp.Span = p.spanFrom(rp.Token)
	return rp
}
