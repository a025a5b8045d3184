package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/matchcore/internal/activepattern"
	"github.com/funvibe/matchcore/internal/mir"
	"github.com/funvibe/matchcore/internal/pipeline"
	"github.com/funvibe/matchcore/internal/wire"
)

// Op is one kind of control step.
type Op string

const (
	OpEvalTarget Op = "eval_target"
	OpEnterArm   Op = "enter_arm"
	OpTest       Op = "test"
	OpInvoke     Op = "invoke"
	OpMiss       Op = "miss"
	OpBindAlias  Op = "bind_alias"
	OpGuard      Op = "guard"
	OpBody       Op = "body"
	OpNoMatch    Op = "no_match"
)

// Step is a single emitted control step. Arm is 1-based; zero means the
// step belongs to the match as a whole.
type Step struct {
	Op    Op     `json:"op"`
	Arm   int    `json:"arm,omitempty"`
	Label string `json:"label,omitempty"`
	Ok    bool   `json:"ok"`
}

func (s Step) String() string {
	var b strings.Builder
	if s.Arm > 0 {
		fmt.Fprintf(&b, "arm %d: ", s.Arm)
	}
	b.WriteString(string(s.Op))
	if s.Label != "" {
		b.WriteString(" " + s.Label)
	}
	switch s.Op {
	case OpTest, OpGuard, OpInvoke:
		if s.Ok {
			b.WriteString(" -> ok")
		} else {
			b.WriteString(" -> fail")
		}
	}
	return b.String()
}

// Trace is the control flow derived for one match. Selected is the 1-based
// arm whose body runs, or zero when no arm matched.
type Trace struct {
	Owner      string `json:"owner"`
	TargetType string `json:"target_type"`
	Steps      []Step `json:"steps"`
	Selected   int    `json:"selected"`
}

func (t *Trace) add(s Step) { t.Steps = append(t.Steps, s) }

// Count returns how many steps of kind op the trace holds.
func (t *Trace) Count(op Op) int {
	n := 0
	for _, s := range t.Steps {
		if s.Op == op {
			n++
		}
	}
	return n
}

func (t Trace) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", t.Owner, t.TargetType)
	for _, s := range t.Steps {
		b.WriteString("  " + s.String() + "\n")
	}
	return b.String()
}

// Probe identifies the node an oracle is asked about.
type Probe struct {
	Owner string
	Arm   int
	Label string
}

// Oracle supplies the runtime outcomes a trace cannot know statically.
type Oracle interface {
	// Test reports whether a refutable node matches.
	Test(p Probe) bool
	// Active returns what the recognizer produced for this arm.
	Active(p Probe, name string, kind activepattern.Kind) activepattern.Outcome
	// Guard reports whether the arm's guard holds.
	Guard(p Probe) bool
}

// TraceBackend walks lowering plans in source order. The target is
// evaluated once per match; a miss moves to the next arm and a guard runs
// only for an arm whose pattern matched.
type TraceBackend struct {
	Oracle Oracle
}

func NewTraceBackend(o Oracle) *TraceBackend {
	if o == nil {
		o = NewScriptedOracle()
	}
	return &TraceBackend{Oracle: o}
}

func (b *TraceBackend) Name() string { return "trace" }

func (b *TraceBackend) Run(ctx *pipeline.PipelineContext) ([]Trace, error) {
	if ctx.Mir == nil {
		return nil, errors.New("no lowered module")
	}
	traces := make([]Trace, 0, len(ctx.Mir.MatchLowerings))
	for i := range ctx.Mir.MatchLowerings {
		tr, err := b.Trace(&ctx.Mir.MatchLowerings[i])
		if err != nil {
			return traces, fmt.Errorf("plan %d (%s): %w", i, ctx.Mir.MatchLowerings[i].Owner, err)
		}
		traces = append(traces, tr)
	}
	return traces, nil
}

// Trace derives the control steps for plan after validating it.
func (b *TraceBackend) Trace(plan *mir.MatchLoweringPlan) (Trace, error) {
	tr := Trace{Owner: plan.Owner, TargetType: plan.TargetType}
	if err := wire.ValidatePlan(plan); err != nil {
		return tr, err
	}
	tr.add(Step{Op: OpEvalTarget, Ok: true})
	for i, arm := range plan.Arms {
		probe := Probe{Owner: plan.Owner, Arm: i + 1}
		tr.add(Step{Op: OpEnterArm, Arm: probe.Arm, Ok: true})
		ok, err := b.walk(&tr, probe, arm.Pattern)
		if err != nil {
			return tr, fmt.Errorf("arm %d: %w", probe.Arm, err)
		}
		if !ok {
			continue
		}
		if arm.Alias != "" {
			tr.add(Step{Op: OpBindAlias, Arm: probe.Arm, Label: arm.Alias, Ok: true})
		}
		if arm.HasGuard {
			held := b.Oracle.Guard(probe)
			tr.add(Step{Op: OpGuard, Arm: probe.Arm, Ok: held})
			if !held {
				continue
			}
		}
		tr.add(Step{Op: OpBody, Arm: probe.Arm, Ok: true})
		tr.Selected = probe.Arm
		return tr, nil
	}
	tr.add(Step{Op: OpNoMatch})
	return tr, nil
}

func (b *TraceBackend) walk(tr *Trace, probe Probe, node mir.PatternLowering) (bool, error) {
	probe.Label = node.Label
	if name, kind, ok := ParseActiveLabel(node.Label); ok {
		inv := activepattern.Invoke(name, kind)
		jump, err := inv.Resolve(b.Oracle.Active(probe, name, kind))
		if err != nil {
			return false, err
		}
		tr.add(Step{Op: OpInvoke, Arm: probe.Arm, Label: node.Label, Ok: jump == nil})
		if jump != nil {
			tr.add(Step{Op: OpMiss, Arm: probe.Arm, Label: jump.String(), Ok: true})
			return false, nil
		}
		return b.walkAll(tr, probe, node.Children)
	}
	switch {
	case node.Label == "or":
		for _, alt := range node.Children {
			ok, err := b.walk(tr, probe, alt)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case node.Label == "tuple" || node.Label == "record" || strings.HasPrefix(node.Label, "binding("):
		return b.walkAll(tr, probe, node.Children)
	case node.AlwaysMatches:
		return true, nil
	}
	ok := b.Oracle.Test(probe)
	tr.add(Step{Op: OpTest, Arm: probe.Arm, Label: node.Label, Ok: ok})
	if !ok || strings.HasPrefix(node.Label, "range(") {
		return ok, nil
	}
	return b.walkAll(tr, probe, node.Children)
}

func (b *TraceBackend) walkAll(tr *Trace, probe Probe, nodes []mir.PatternLowering) (bool, error) {
	for _, n := range nodes {
		ok, err := b.walk(tr, probe, n)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// ParseActiveLabel splits an "active(|Name|)" or "active(|Name|_|)" label.
func ParseActiveLabel(label string) (string, activepattern.Kind, bool) {
	rest, ok := strings.CutPrefix(label, "active(|")
	if !ok {
		return "", activepattern.Total, false
	}
	if name, ok := strings.CutSuffix(rest, "|_|)"); ok && name != "" {
		return name, activepattern.Partial, true
	}
	if name, ok := strings.CutSuffix(rest, "|)"); ok && name != "" {
		return name, activepattern.Total, true
	}
	return "", activepattern.Total, false
}
