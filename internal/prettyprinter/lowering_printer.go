package prettyprinter

import (
	"fmt"
	"strings"

	"github.com/funvibe/matchcore/internal/mir"
)

// LoweringPrinter draws lowering plans as trees:
//
//	fn classify: Int (2 arms)
//	├─ arm 1: active(|Even|_|) [miss_on_none]
//	│  └─ _ [always]
//	└─ arm 2: _ [always]
type LoweringPrinter struct {
	buf strings.Builder
}

func NewLoweringPrinter() *LoweringPrinter {
	return &LoweringPrinter{}
}

// PrintPlan renders a single plan.
func PrintPlan(plan *mir.MatchLoweringPlan) string {
	p := NewLoweringPrinter()
	p.Plan(plan)
	return p.String()
}

// PrintPlans renders plans separated by blank lines.
func PrintPlans(plans []mir.MatchLoweringPlan) string {
	p := NewLoweringPrinter()
	for i := range plans {
		if i > 0 {
			p.buf.WriteString("\n")
		}
		p.Plan(&plans[i])
	}
	return p.String()
}

func (p *LoweringPrinter) String() string { return p.buf.String() }

func (p *LoweringPrinter) Plan(plan *mir.MatchLoweringPlan) {
	arms := "arms"
	if plan.ArmCount == 1 {
		arms = "arm"
	}
	fmt.Fprintf(&p.buf, "%s: %s (%d %s)\n", plan.Owner, plan.TargetType, plan.ArmCount, arms)
	for i, arm := range plan.Arms {
		last := i == len(plan.Arms)-1
		line := fmt.Sprintf("arm %d: %s", i+1, nodeText(arm.Pattern))
		if arm.HasGuard {
			line += " [guard]"
		}
		if arm.Alias != "" {
			line += " [as " + arm.Alias + "]"
		}
		p.line("", last, line)
		p.children(childPrefix("", last), arm.Pattern.Children)
	}
}

func (p *LoweringPrinter) children(prefix string, nodes []mir.PatternLowering) {
	for i, n := range nodes {
		last := i == len(nodes)-1
		p.line(prefix, last, nodeText(n))
		p.children(childPrefix(prefix, last), n.Children)
	}
}

func (p *LoweringPrinter) line(prefix string, last bool, text string) {
	branch := "├─ "
	if last {
		branch = "└─ "
	}
	p.buf.WriteString(prefix + branch + text + "\n")
}

func childPrefix(prefix string, last bool) string {
	if last {
		return prefix + "   "
	}
	return prefix + "│  "
}

func nodeText(n mir.PatternLowering) string {
	s := n.Label
	if n.AlwaysMatches {
		s += " [always]"
	}
	if n.MissOnNone {
		s += " [miss_on_none]"
	}
	return s
}
