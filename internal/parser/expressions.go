package parser

import (
	"github.com/funvibe/matchcore/internal/ast"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError()
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		// A call must open on the same line as its callee; otherwise the
		// parenthesis starts a new expression.
		if p.peekTokenIs(token.LPAREN) && p.peekToken.Line != p.curToken.Line {
			break
		}
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}
	return leftExp
}

func (p *Parser) noPrefixParseFnError() {
	if p.curTokenIs(token.EOF) {
		p.incomplete = true
		p.addError(diagnostics.ParseUnexpectedEOF, p.curToken, "an expression")
		return
	}
	p.addError(diagnostics.ParseExpectedExpr, p.curToken, describe(p.curToken))
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme, Span: p.curToken.Span()}
}

func (p *Parser) parseConstructor() ast.Expression {
	ce := &ast.ConstructorExpression{Token: p.curToken, Name: p.curToken.Lexeme}
	if p.peekTokenIs(token.LPAREN) && p.peekToken.Line == p.curToken.Line {
		p.nextToken()
		args, ok := p.parseExpressionList(token.RPAREN)
		if !ok {
			return nil
		}
		ce.Arguments = args
	}
	ce.Span = p.spanFrom(ce.Token)
	return ce
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	v, _ := p.curToken.Literal.(int64)
	return &ast.IntegerLiteral{Token: p.curToken, Value: v, Span: p.curToken.Span()}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	v, _ := p.curToken.Literal.(float64)
	return &ast.FloatLiteral{Token: p.curToken, Value: v, Span: p.curToken.Span()}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	v, _ := p.curToken.Literal.(string)
	return &ast.StringLiteral{Token: p.curToken, Value: v, Span: p.curToken.Span()}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE), Span: p.curToken.Span()}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.PrefixExpression{Token: p.curToken, Operator: p.curToken.Lexeme}
	p.nextToken()
	if expr.Right = p.parseExpression(PREFIX); expr.Right == nil {
		return nil
	}
	expr.Span = p.spanFrom(expr.Token)
	return expr
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expr := &ast.InfixExpression{Token: p.curToken, Operator: p.curToken.Lexeme, Left: left}
	precedence := p.curPrecedence()
	p.nextToken()
	if expr.Right = p.parseExpression(precedence); expr.Right == nil {
		return nil
	}
	expr.Span = left.GetSpan().Join(expr.Right.GetSpan())
	return expr
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	call := &ast.CallExpression{Token: p.curToken, Function: function}
	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	call.Arguments = args
	call.Span = function.GetSpan().Join(p.curToken.Span())
	return call
}

func (p *Parser) parseFieldAccess(left ast.Expression) ast.Expression {
	fa := &ast.FieldAccess{Token: p.curToken, Left: left}
	if !p.expectPeek(token.IDENT_LOWER, "field name") {
		return nil
	}
	fa.Field = p.curToken.Lexeme
	fa.Span = left.GetSpan().Join(p.curToken.Span())
	return fa
}

// parseExpressionList reads `a, b, c<end>` with curToken on the opener.
func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, bool) {
	var list []ast.Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}
	for {
		p.nextToken()
		e := p.parseExpression(LOWEST)
		if e == nil {
			return nil, false
		}
		list = append(list, e)
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

// parseGroupedExpression handles (), (e) and (a, b).
func (p *Parser) parseGroupedExpression() ast.Expression {
	start := p.curToken
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return &ast.UnitLiteral{Token: start, Span: p.spanFrom(start)}
	}
	elems, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	if len(elems) == 1 {
		return elems[0]
	}
	return &ast.TupleLiteral{Token: start, Elements: elems, Span: p.spanFrom(start)}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	start := p.curToken
	elems, ok := p.parseExpressionList(token.RBRACKET)
	if !ok {
		return nil
	}
	return &ast.ArrayLiteral{Token: start, Elements: elems, Span: p.spanFrom(start)}
}

// parseRecordLiteralOrBlock: `{ x: 1 }` is a record, anything else a block.
func (p *Parser) parseRecordLiteralOrBlock() ast.Expression {
	if p.peekTokenIs(token.IDENT_LOWER) && p.peekAfter().Type == token.COLON {
		return p.parseRecordLiteral()
	}
	return p.parseBlock()
}

func (p *Parser) parseRecordLiteral() ast.Expression {
	rl := &ast.RecordLiteral{Token: p.curToken}
	for {
		if !p.expectPeek(token.IDENT_LOWER, "field name") {
			return nil
		}
		field := &ast.RecordFieldExpr{Token: p.curToken, Key: p.curToken.Lexeme}
		if !p.expectPeek(token.COLON, ":") {
			return nil
		}
		p.nextToken()
		if field.Value = p.parseExpression(LOWEST); field.Value == nil {
			return nil
		}
		rl.Fields = append(rl.Fields, field)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			if p.peekTokenIs(token.RBRACE) {
				break
			}
			continue
		}
		break
	}
	if !p.expectPeek(token.RBRACE, "}") {
		return nil
	}
	rl.Span = p.spanFrom(rl.Token)
	return rl
}

// parseBlock: { let x = e; let y = e; result }
func (p *Parser) parseBlock() ast.Expression {
	block := &ast.BlockExpression{Token: p.curToken}
	for {
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			break
		}
		p.nextToken()
		if p.curTokenIs(token.LET) {
			let := &ast.LetBinding{Token: p.curToken}
			if !p.expectPeek(token.IDENT_LOWER, "binding name") {
				return nil
			}
			let.Name = p.curToken.Lexeme
			if !p.expectPeek(token.ASSIGN, "=") {
				return nil
			}
			p.nextToken()
			if let.Value = p.parseExpression(LOWEST); let.Value == nil {
				return nil
			}
			block.Lets = append(block.Lets, let)
			if p.peekTokenIs(token.SEMICOLON) {
				p.nextToken()
			}
			continue
		}
		if block.Result = p.parseExpression(LOWEST); block.Result == nil {
			return nil
		}
		if p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
		}
		if !p.expectPeek(token.RBRACE, "}") {
			return nil
		}
		break
	}
	block.Span = p.spanFrom(block.Token)
	return block
}

// parseIfExpression: if c then a [else b]
func (p *Parser) parseIfExpression() ast.Expression {
	expr := &ast.IfExpression{Token: p.curToken}
	p.nextToken()
	if expr.Condition = p.parseExpression(LOWEST); expr.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.THEN, "then") {
		return nil
	}
	p.nextToken()
	if expr.Consequence = p.parseExpression(LOWEST); expr.Consequence == nil {
		return nil
	}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		if expr.Alternative = p.parseExpression(LOWEST); expr.Alternative == nil {
			return nil
		}
	}
	expr.Span = p.spanFrom(expr.Token)
	return expr
}

// parsePerformExpression: perform Console("ping")
func (p *Parser) parsePerformExpression() ast.Expression {
	expr := &ast.PerformExpression{Token: p.curToken}
	if !p.expectPeek(token.IDENT_UPPER, "effect name") {
		return nil
	}
	expr.Effect = p.curToken.Lexeme
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		args, ok := p.parseExpressionList(token.RPAREN)
		if !ok {
			return nil
		}
		expr.Arguments = args
	}
	expr.Span = p.spanFrom(expr.Token)
	return expr
}

// parseMatchExpression: match <target> with | <arm> | <arm> ...
func (p *Parser) parseMatchExpression() ast.Expression {
	me := &ast.MatchExpression{Token: p.curToken}
	p.nextToken()
	if me.Target = p.parseExpression(LOWEST); me.Target == nil {
		return nil
	}
	if !p.expectPeek(token.WITH, "with") {
		return nil
	}
	if !p.peekTokenIs(token.PIPE) {
		p.peekError("| to start a match arm")
		return nil
	}
	for p.peekTokenIs(token.PIPE) {
		p.nextToken()
		arm := p.parseMatchArm()
		if arm == nil {
			return nil
		}
		me.Arms = append(me.Arms, arm)
	}
	me.Span = p.spanFrom(me.Token)
	return me
}

// parseMatchArm reads `| pat [as x] [when|if g] [as x] -> body` with
// curToken on the leading '|'. The alias may come before or after the
// guard; both orders produce the same arm.
func (p *Parser) parseMatchArm() *ast.MatchArm {
	arm := &ast.MatchArm{Token: p.curToken}
	p.nextToken()
	if arm.Pattern = p.parseOrPattern(); arm.Pattern == nil {
		return nil
	}

	for {
		switch {
		case p.peekTokenIs(token.AS) && !arm.HasAlias():
			p.nextToken()
			if !p.expectPeek(token.IDENT_LOWER, "alias name") {
				return nil
			}
			arm.Alias, arm.AliasToken = p.curToken.Lexeme, p.curToken
			continue
		case (p.peekTokenIs(token.WHEN) || p.peekTokenIs(token.IF)) && arm.Guard == nil:
			p.nextToken()
			arm.GuardUsedIf = p.curTokenIs(token.IF)
			p.nextToken()
			if arm.Guard = p.parseExpression(LOWEST); arm.Guard == nil {
				return nil
			}
			continue
		}
		break
	}

	if !p.expectPeek(token.ARROW, "->") {
		return nil
	}
	p.nextToken()
	if arm.Body = p.parseExpression(LOWEST); arm.Body == nil {
		return nil
	}
	arm.Span = p.spanFrom(arm.Token)
	return arm
}
