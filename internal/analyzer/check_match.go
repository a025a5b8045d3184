package analyzer

import (
	"fmt"
	"regexp"

	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/token"
	"github.com/funvibe/matchcore/internal/typed"
	"github.com/funvibe/matchcore/internal/typesystem"
)

type matchChecker struct {
	ctx   *DeclContext
	cov   *usefulness
	diags []diagnostics.Diagnostic
}

func (c *matchChecker) report(code diagnostics.Code, span token.Span, args ...interface{}) {
	c.diags = append(c.diags, diagnostics.NewDiagnostic(code, span, args...))
}

// CheckMatch runs every pattern rule over the arms of one match whose
// scrutinee has type target. Rules are independent; none stops the others.
func CheckMatch(arms []typed.MatchArm, target typesystem.Type, ctx *DeclContext) []diagnostics.Diagnostic {
	if target == nil {
		target = typesystem.Unknown
	}
	c := &matchChecker{ctx: ctx, cov: &usefulness{types: ctx.Types}}
	for _, arm := range arms {
		c.checkArm(arm)
	}
	c.checkReachability(arms, target)
	if !c.checkPartialExhaustiveness(arms) {
		c.checkExhaustiveness(arms, target)
	}
	return c.diags
}

func (c *matchChecker) checkArm(arm typed.MatchArm) {
	if arm.GuardUsedIf && c.ctx.Config.WarnLegacyIf() {
		span := arm.Span
		if arm.Guard != nil {
			span = arm.Guard.Span
		}
		c.report(diagnostics.GuardIfDeprecated, span)
	}

	bound := set.New[string](4)
	c.collectBindings(arm.Pattern, bound)
	if arm.Alias != "" {
		if bound.Contains(arm.Alias) {
			c.report(diagnostics.DuplicateBinding, arm.AliasSpan, arm.Alias)
		}
	}

	typed.Walk(arm.Pattern, func(p *typed.Pattern) bool {
		switch p.Kind {
		case typed.SlicePattern:
			c.checkSlice(p)
		case typed.RangePattern:
			c.checkRange(p)
		case typed.RegexPattern:
			c.checkRegex(p)
		case typed.ConstructorPattern:
			c.checkConstructor(p)
		case typed.ActivePattern:
			if _, ok := c.ctx.ActivePatterns[p.Name]; !ok {
				c.report(diagnostics.ActiveUndefined, p.Span, p.Name)
			}
		}
		return true
	})
}

// collectBindings adds the names bound by p to seen, reporting repeats.
// Each or-alternative starts from the same outer scope.
func (c *matchChecker) collectBindings(p *typed.Pattern, seen *set.Set[string]) {
	if p == nil {
		return
	}
	bind := func(name string, span token.Span) {
		if seen.Contains(name) {
			c.report(diagnostics.DuplicateBinding, span, name)
			return
		}
		seen.Insert(name)
	}
	switch p.Kind {
	case typed.VarPattern:
		bind(p.Name, p.Span)
	case typed.BindingPattern:
		c.collectBindings(p.Inner, seen)
		bind(p.Name, p.Span)
	case typed.OrPattern:
		outer := seen.Copy()
		for _, alt := range p.Elements {
			scope := outer.Copy()
			c.collectBindings(alt, scope)
			seen.InsertSet(scope)
		}
	case typed.SlicePattern:
		for _, it := range p.Items {
			if it.IsRest {
				if it.Binding != "" {
					bind(it.Binding, it.Span)
				}
				continue
			}
			c.collectBindings(it.Element, seen)
		}
	default:
		for _, child := range p.Children() {
			c.collectBindings(child, seen)
		}
	}
}

func (c *matchChecker) checkSlice(p *typed.Pattern) {
	rests := 0
	for _, it := range p.Items {
		if it.IsRest {
			rests++
		}
	}
	if rests > 1 {
		c.report(diagnostics.SliceMultipleRest, p.Span, rests)
	}
	if !typesystem.IsUnknown(p.Type) {
		if _, ok := c.ctx.Types.Resolve(p.Type).(typesystem.TArray); !ok {
			c.report(diagnostics.SliceTypeMismatch, p.Span, p.Type)
		}
	}
}

func (c *matchChecker) checkRange(p *typed.Pattern) {
	if p.Start != nil && p.End != nil {
		if !typesystem.Equal(p.Start.Type, p.End.Type) {
			c.report(diagnostics.RangeTypeMismatch, p.Span, p.Start.Type, p.End.Type)
			return
		}
		if cmp, ok := compareLiterals(p.Start.Literal.Value, p.End.Literal.Value); ok {
			if cmp > 0 || (cmp == 0 && !p.Inclusive) {
				c.report(diagnostics.RangeBoundInverted, p.Span, rangeText(p))
			}
		}
	}
	for _, bound := range []*typed.Pattern{p.Start, p.End} {
		if bound == nil {
			continue
		}
		if !typesystem.IsOrdered(bound.Type) || !typesystem.Equal(bound.Type, p.Type) {
			c.report(diagnostics.RangeTypeMismatch, p.Span, bound.Type, p.Type)
			return
		}
	}
}

func rangeText(p *typed.Pattern) string {
	op := ".."
	if p.Inclusive {
		op = "..="
	}
	return fmt.Sprintf("%v%s%v", p.Start.Literal.Value, op, p.End.Literal.Value)
}

func (c *matchChecker) checkRegex(p *typed.Pattern) {
	if !typesystem.IsUnknown(p.Type) && !typesystem.IsTextual(p.Type) {
		c.report(diagnostics.RegexUnsupported, p.Span, p.Type)
	}
	if _, err := regexp.Compile(p.Regex); err != nil {
		c.report(diagnostics.RegexInvalidSyntax, p.Span, p.Regex, err)
	}
}

func (c *matchChecker) checkConstructor(p *typed.Pattern) {
	v, ok := c.ctx.Types.Constructor(p.Name)
	if !ok {
		c.report(diagnostics.ConstructorUnknown, p.Span, p.Name)
		return
	}
	if len(v.Fields) != len(p.Elements) {
		c.report(diagnostics.ConstructorArity, p.Span, p.Name, len(v.Fields), len(p.Elements))
	}
}

func (c *matchChecker) checkReachability(arms []typed.MatchArm, target typesystem.Type) {
	var prior []*typed.Pattern
	var priorIndex []int
	for i, arm := range arms {
		flagged := false
		for j, q := range prior {
			if covers(q, arm.Pattern) {
				c.report(diagnostics.UnreachableArm, arm.Span, fmt.Sprintf("already covered by arm %d", priorIndex[j]+1))
				flagged = true
				break
			}
		}
		rows := make([][]*typed.Pattern, len(prior))
		for j, q := range prior {
			rows[j] = []*typed.Pattern{q}
		}
		if !flagged && len(prior) > 0 && c.structured(target, rows) {
			if _, miss := c.cov.missing(rows, []typesystem.Type{target}); !miss {
				c.report(diagnostics.UnreachableArm, arm.Span, "previous arms already match every value")
				flagged = true
			}
		}
		if !flagged {
			c.checkAlternatives(arm.Pattern, prior)
		}
		if !arm.HasGuard() {
			prior = append(prior, shadowing(arm.Pattern))
			priorIndex = append(priorIndex, i)
		}
	}
}

// checkAlternatives flags or-alternatives that can never be the first to match.
func (c *matchChecker) checkAlternatives(p *typed.Pattern, prior []*typed.Pattern) {
	for p.Kind == typed.BindingPattern {
		p = p.Inner
	}
	if p.Kind != typed.OrPattern {
		return
	}
	for i, alt := range p.Elements {
		reason := ""
		for j := 0; j < i && reason == ""; j++ {
			if covers(p.Elements[j], alt) {
				reason = fmt.Sprintf("alternative already covered by alternative %d", j+1)
			}
		}
		for _, q := range prior {
			if reason != "" {
				break
			}
			if covers(q, alt) {
				reason = "alternative already covered by an earlier arm"
			}
		}
		if reason != "" {
			c.report(diagnostics.UnreachableArm, alt.Span, reason)
		}
	}
}

// checkPartialExhaustiveness reports a match whose last arm using a
// partial recognizer has no unconditional fallback after it.
func (c *matchChecker) checkPartialExhaustiveness(arms []typed.MatchArm) bool {
	last := -1
	for i, arm := range arms {
		if arm.Pattern.UsesPartialActive() {
			last = i
		}
	}
	if last < 0 {
		return false
	}
	for _, arm := range arms[last+1:] {
		if !arm.HasGuard() && irrefutable(arm.Pattern) {
			return false
		}
	}
	c.report(diagnostics.ExhaustivenessMissing, arms[last].Span,
		"a partial active pattern may miss and no later arm matches every value")
	return true
}

func (c *matchChecker) checkExhaustiveness(arms []typed.MatchArm, target typesystem.Type) {
	var rows [][]*typed.Pattern
	for _, arm := range arms {
		if !arm.HasGuard() {
			rows = append(rows, []*typed.Pattern{arm.Pattern})
		}
	}
	if len(arms) == 0 || !c.structured(target, rows) {
		return
	}
	witness, miss := c.cov.missing(rows, []typesystem.Type{target})
	if !miss {
		return
	}
	span := arms[0].Span.Join(arms[len(arms)-1].Span)
	c.report(diagnostics.ExhaustivenessMissing, span, fmt.Sprintf("pattern %s not covered", witness[0]))
}

// structured reports whether exhaustiveness is decidable for target: a
// finite or shape-constrained type, either declared or evident from the
// patterns themselves.
func (c *matchChecker) structured(target typesystem.Type, rows [][]*typed.Pattern) bool {
	if typesystem.IsUnknown(target) {
		var heads [][]*typed.Pattern
		for _, row := range rows {
			for _, h := range normalize(row[0]) {
				heads = append(heads, []*typed.Pattern{h})
			}
		}
		target = c.cov.inferFromHeads(heads)
		if typesystem.IsUnknown(target) {
			return false
		}
	}
	_, ok := c.cov.constructors(target, nil)
	return ok
}
