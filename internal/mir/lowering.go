package mir

import (
	"github.com/funvibe/matchcore/internal/activepattern"
	"github.com/funvibe/matchcore/internal/config"
	"github.com/funvibe/matchcore/internal/token"
	"github.com/funvibe/matchcore/internal/typed"
	"github.com/funvibe/matchcore/internal/typesystem"
)

// Options carries the configurable placeholders written into plans.
type Options struct {
	InlineOwner string
	UnknownType string
}

func DefaultOptions() Options {
	return Options{InlineOwner: config.DefaultInlineOwner, UnknownType: config.DefaultUnknownType}
}

// OptionsFrom reads the plan placeholders from cfg; nil means defaults.
func OptionsFrom(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}
	if cfg.InlineOwner != "" {
		opts.InlineOwner = cfg.InlineOwner
	}
	if cfg.UnknownType != "" {
		opts.UnknownType = cfg.UnknownType
	}
	return opts
}

func (o Options) typeLabel(t typesystem.Type) string {
	if typesystem.IsUnknown(t) {
		return o.UnknownType
	}
	return t.String()
}

// BuildMatchLowering summarizes a checked match with default options.
// It never fails.
func BuildMatchLowering(span token.Span, target *typed.Expr, arms []typed.MatchArm) MatchLoweringPlan {
	return DefaultOptions().BuildMatchLowering(span, target, arms)
}

// BuildMatchLowering summarizes a checked match. The plan records whether
// each arm has a guard but not what the guard does.
func (o Options) BuildMatchLowering(span token.Span, target *typed.Expr, arms []typed.MatchArm) MatchLoweringPlan {
	var targetType typesystem.Type = typesystem.Unknown
	if target != nil {
		targetType = target.Type
	}
	plan := MatchLoweringPlan{
		Owner:      o.InlineOwner,
		Span:       span,
		TargetType: o.typeLabel(targetType),
		ArmCount:   len(arms),
		Arms:       make([]MatchArmLowering, len(arms)),
	}
	for i, arm := range arms {
		plan.Arms[i] = MatchArmLowering{
			Pattern:  LowerPatternForLowering(arm.Pattern),
			HasGuard: arm.HasGuard(),
			Alias:    arm.Alias,
		}
	}
	return plan
}

// LowerPatternForLowering derives the label and failure flags of p.
func LowerPatternForLowering(p *typed.Pattern) PatternLowering {
	if p == nil {
		return PatternLowering{Label: "_", AlwaysMatches: true}
	}
	switch p.Kind {
	case typed.WildcardPattern:
		return PatternLowering{Label: "_", AlwaysMatches: true}
	case typed.VarPattern:
		return PatternLowering{Label: "var(" + p.Name + ")", AlwaysMatches: true}
	case typed.LiteralPattern:
		return PatternLowering{Label: "literal(" + Literal{Value: p.Literal.Value}.String() + ")"}
	case typed.TuplePattern:
		return PatternLowering{Label: "tuple", Children: lowerAll(p.Elements)}
	case typed.RecordPattern:
		var children []PatternLowering
		for _, f := range p.Fields {
			if f.Value != nil {
				children = append(children, LowerPatternForLowering(f.Value))
			}
		}
		if p.HasRest {
			children = append(children, PatternLowering{Label: "rest", AlwaysMatches: true})
		}
		return PatternLowering{Label: "record", Children: children}
	case typed.ConstructorPattern:
		return PatternLowering{Label: "ctor(" + p.Name + ")", Children: lowerAll(p.Elements)}
	case typed.BindingPattern:
		child := LowerPatternForLowering(p.Inner)
		label := "binding(as " + p.Name + ")"
		if p.ViaAt {
			label = "binding(@ " + p.Name + ")"
		}
		return PatternLowering{
			Label:         label,
			MissOnNone:    child.MissOnNone,
			AlwaysMatches: child.AlwaysMatches,
			Children:      []PatternLowering{child},
		}
	case typed.OrPattern:
		children := lowerAll(p.Elements)
		miss := false
		for _, c := range children {
			miss = miss || c.MissOnNone
		}
		return PatternLowering{Label: "or", MissOnNone: miss, Children: children}
	case typed.SlicePattern:
		var children []PatternLowering
		for _, it := range p.Items {
			if !it.IsRest {
				children = append(children, LowerPatternForLowering(it.Element))
				continue
			}
			label := "rest"
			if it.Binding != "" {
				label = "rest(" + it.Binding + ")"
			}
			children = append(children, PatternLowering{Label: label, AlwaysMatches: true})
		}
		return PatternLowering{Label: "slice", Children: children}
	case typed.RangePattern:
		label := "range(..)"
		if p.Inclusive {
			label = "range(..=)"
		}
		var children []PatternLowering
		if p.Start != nil {
			children = append(children, LowerPatternForLowering(p.Start))
		}
		if p.End != nil {
			children = append(children, LowerPatternForLowering(p.End))
		}
		return PatternLowering{Label: label, Children: children}
	case typed.RegexPattern:
		return PatternLowering{Label: "regex(" + p.Regex + ")"}
	case typed.ActivePattern:
		partial := p.ActiveKind == activepattern.Partial
		out := PatternLowering{
			Label:         "active" + activepattern.Label(p.Name, p.ActiveKind),
			MissOnNone:    partial,
			AlwaysMatches: !partial,
		}
		if p.Inner != nil {
			out.Children = []PatternLowering{LowerPatternForLowering(p.Inner)}
		}
		return out
	}
	return PatternLowering{Label: "_", AlwaysMatches: true}
}

func lowerAll(ps []*typed.Pattern) []PatternLowering {
	if len(ps) == 0 {
		return nil
	}
	out := make([]PatternLowering, len(ps))
	for i, p := range ps {
		out[i] = LowerPatternForLowering(p)
	}
	return out
}

// LowerPattern converts a typed pattern to its wire form.
func LowerPattern(p *typed.Pattern) *Pattern {
	if p == nil {
		return nil
	}
	out := &Pattern{Span: p.Span}
	if !typesystem.IsUnknown(p.Type) {
		out.Type = p.Type.String()
	}
	switch p.Kind {
	case typed.WildcardPattern:
		out.Kind = PatternWildcard
	case typed.VarPattern:
		out.Kind = PatternVar
		out.Name = p.Name
	case typed.LiteralPattern:
		out.Kind = PatternLiteral
		out.Literal = &Literal{Value: p.Literal.Value}
	case typed.TuplePattern:
		out.Kind = PatternTuple
		out.Elements = lowerPatterns(p.Elements)
	case typed.RecordPattern:
		out.Kind = PatternRecord
		out.HasRest = p.HasRest
		for _, f := range p.Fields {
			out.Fields = append(out.Fields, RecordField{Key: f.Key, Value: LowerPattern(f.Value)})
		}
	case typed.ConstructorPattern:
		out.Kind = PatternConstructor
		out.Name = p.Name
		out.Args = lowerPatterns(p.Elements)
	case typed.BindingPattern:
		out.Kind = PatternBinding
		out.Name = p.Name
		out.ViaAt = p.ViaAt
		out.Inner = LowerPattern(p.Inner)
	case typed.OrPattern:
		out.Kind = PatternOr
		out.Variants = lowerPatterns(p.Elements)
	case typed.SlicePattern:
		out.Kind = PatternSlice
		for _, it := range p.Items {
			switch {
			case it.IsRest:
				out.Rest = &SliceRest{Binding: it.Binding}
			case out.Rest != nil:
				out.Tail = append(out.Tail, LowerPattern(it.Element))
			default:
				out.Head = append(out.Head, LowerPattern(it.Element))
			}
		}
	case typed.RangePattern:
		out.Kind = PatternRange
		out.Start = LowerPattern(p.Start)
		out.End = LowerPattern(p.End)
		out.Inclusive = p.Inclusive
	case typed.RegexPattern:
		out.Kind = PatternRegex
		out.Regex = p.Regex
	case typed.ActivePattern:
		out.Kind = PatternActive
		out.Call = &ActivePatternCall{
			Name:       p.Name,
			Kind:       p.ActiveKind,
			Argument:   LowerPattern(p.Inner),
			MissTarget: activepattern.MissTarget(p.ActiveKind),
		}
	}
	return out
}

func lowerPatterns(ps []*typed.Pattern) []*Pattern {
	if len(ps) == 0 {
		return nil
	}
	out := make([]*Pattern, len(ps))
	for i, p := range ps {
		out[i] = LowerPattern(p)
	}
	return out
}
