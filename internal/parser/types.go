package parser

import (
	"github.com/funvibe/matchcore/internal/ast"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/token"
)

// parseType parses a type annotation starting at curToken.
func (p *Parser) parseType() ast.TypeExpr {
	start := p.curToken
	switch p.curToken.Type {
	case token.IDENT_UPPER:
		t := &ast.NamedType{Token: start, Name: start.Lexeme}
		if p.peekTokenIs(token.LT) {
			p.nextToken()
			for {
				p.nextToken()
				arg := p.parseType()
				if arg == nil {
					return nil
				}
				t.Args = append(t.Args, arg)
				if p.peekTokenIs(token.COMMA) {
					p.nextToken()
					continue
				}
				if !p.expectPeek(token.GT, ">") {
					return nil
				}
				break
			}
		}
		t.Span = p.spanFrom(start)
		return t
	case token.LPAREN:
		t := &ast.TupleType{Token: start}
		if p.peekTokenIs(token.RPAREN) {
			p.nextToken()
			t.Span = p.spanFrom(start)
			return t
		}
		for {
			p.nextToken()
			el := p.parseType()
			if el == nil {
				return nil
			}
			t.Elements = append(t.Elements, el)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				continue
			}
			if !p.expectPeek(token.RPAREN, ")") {
				return nil
			}
			break
		}
		if len(t.Elements) == 1 {
			return t.Elements[0]
		}
		t.Span = p.spanFrom(start)
		return t
	case token.LBRACKET:
		p.nextToken()
		el := p.parseType()
		if el == nil || !p.expectPeek(token.RBRACKET, "]") {
			return nil
		}
		return &ast.ArrayType{Token: start, Element: el, Span: p.spanFrom(start)}
	}
	p.addError(diagnostics.ParseUnexpectedToken, p.curToken, "type", describe(p.curToken))
	return nil
}

// parseTypeDeclaration:
//
//	type Shape = | Circle(Int) | Square
//	type Point = { x: Int, y: Int }
func (p *Parser) parseTypeDeclaration(start token.Token, vis ast.Visibility) ast.Declaration {
	td := &ast.TypeDeclaration{Token: p.curToken, Visibility: vis}
	if !p.expectPeek(token.IDENT_UPPER, "type name") {
		return nil
	}
	td.Name = p.curToken.Lexeme
	if !p.expectPeek(token.ASSIGN, "=") {
		return nil
	}

	if p.peekTokenIs(token.LBRACE) {
		p.nextToken()
		for !p.peekTokenIs(token.RBRACE) {
			if !p.expectPeek(token.IDENT_LOWER, "field name") {
				return nil
			}
			field := &ast.RecordFieldType{Token: p.curToken, Name: p.curToken.Lexeme}
			if !p.expectPeek(token.COLON, ":") {
				return nil
			}
			p.nextToken()
			if field.Type = p.parseType(); field.Type == nil {
				return nil
			}
			td.Fields = append(td.Fields, field)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
		if !p.expectPeek(token.RBRACE, "}") {
			return nil
		}
		td.Span = p.spanFrom(start)
		return td
	}

	if p.peekTokenIs(token.PIPE) {
		p.nextToken()
	}
	for {
		if !p.expectPeek(token.IDENT_UPPER, "constructor name") {
			return nil
		}
		v := &ast.Variant{Token: p.curToken, Name: p.curToken.Lexeme}
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			for {
				p.nextToken()
				f := p.parseType()
				if f == nil {
					return nil
				}
				v.Fields = append(v.Fields, f)
				if p.peekTokenIs(token.COMMA) {
					p.nextToken()
					continue
				}
				if !p.expectPeek(token.RPAREN, ")") {
					return nil
				}
				break
			}
		}
		td.Variants = append(td.Variants, v)
		if !p.peekTokenIs(token.PIPE) {
			break
		}
		p.nextToken()
	}
	td.Span = p.spanFrom(start)
	return td
}
