package backend_test

import (
	"testing"

	"github.com/funvibe/matchcore/internal/activepattern"
	"github.com/funvibe/matchcore/internal/backend"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/mir"
	"github.com/funvibe/matchcore/internal/pipeline"
)

const classifySource = `pattern (|Even|_|)(n: Int) = if n % 2 == 0 then Some(n) else None

fn classify(v: Int) -> String = match v with
| (|Even|_|) _ -> "even"
| n when n > 100 -> "big"
| 0 -> "zero"
| _ -> "odd"
`

func traceSource(t *testing.T, src string, oracle backend.Oracle) []backend.Trace {
	t.Helper()
	exec := backend.NewExecutionProcessor(backend.NewTraceBackend(oracle))
	ctx := backend.NewPipeline(exec).Run(pipeline.NewContext("trace.mc", src, nil))
	if ctx.Mir == nil {
		t.Fatalf("no module lowered: %v", ctx.Diagnostics.Items())
	}
	if rejected := diagnostics.Filter(ctx.Diagnostics.Items(), diagnostics.BackendPlanRejected); len(rejected) > 0 {
		t.Fatalf("plan rejected: %v", rejected)
	}
	return exec.Traces
}

func stepsFor(tr backend.Trace, arm int) []backend.Step {
	var out []backend.Step
	for _, s := range tr.Steps {
		if s.Arm == arm {
			out = append(out, s)
		}
	}
	return out
}

func TestPartialMissFallsThrough(t *testing.T) {
	oracle := backend.NewScriptedOracle().Miss("Even")
	traces := traceSource(t, classifySource, oracle)
	if len(traces) != 1 {
		t.Fatalf("expected 1 trace, got %d", len(traces))
	}
	tr := traces[0]
	if tr.Owner != "fn classify" {
		t.Errorf("owner = %q", tr.Owner)
	}
	if n := tr.Count(backend.OpEvalTarget); n != 1 {
		t.Errorf("target evaluated %d times", n)
	}
	if tr.Selected != 2 {
		t.Fatalf("selected arm %d, want 2\n%s", tr.Selected, tr)
	}

	first := stepsFor(tr, 1)
	want := []backend.Op{backend.OpEnterArm, backend.OpInvoke, backend.OpMiss}
	if len(first) != len(want) {
		t.Fatalf("arm 1 steps = %v", first)
	}
	for i, op := range want {
		if first[i].Op != op {
			t.Errorf("arm 1 step %d = %s, want %s", i, first[i].Op, op)
		}
	}
	if first[1].Ok {
		t.Errorf("missed invocation reported ok")
	}
	if first[2].Label != activepattern.NextArm.String() {
		t.Errorf("miss label = %q", first[2].Label)
	}
	if len(oracle.Invocations) != 1 || oracle.Invocations[0].Arm != 1 {
		t.Errorf("invocations = %+v", oracle.Invocations)
	}
}

func TestPartialHitSelectsArm(t *testing.T) {
	traces := traceSource(t, classifySource, nil)
	tr := traces[0]
	if tr.Selected != 1 {
		t.Fatalf("selected arm %d, want 1\n%s", tr.Selected, tr)
	}
	if tr.Count(backend.OpMiss) != 0 || tr.Count(backend.OpGuard) != 0 {
		t.Errorf("unexpected steps\n%s", tr)
	}
}

func TestGuardFailureFallsThrough(t *testing.T) {
	oracle := backend.NewScriptedOracle().Miss("Even")
	oracle.Guards[2] = false
	oracle.Tests["literal(0)"] = false
	tr := traceSource(t, classifySource, oracle)[0]
	if tr.Selected != 4 {
		t.Fatalf("selected arm %d, want 4\n%s", tr.Selected, tr)
	}
	guards := 0
	for _, s := range tr.Steps {
		if s.Op == backend.OpGuard {
			guards++
			if s.Arm != 2 || s.Ok {
				t.Errorf("unexpected guard step %v", s)
			}
		}
	}
	if guards != 1 {
		t.Errorf("guard evaluated %d times", guards)
	}
}

func TestNoArmMatches(t *testing.T) {
	oracle := backend.NewScriptedOracle()
	oracle.DefaultTest = false
	tr := traceSource(t, "fn f(b: Bool) -> Int = match b with | true -> 1 | false -> 0", oracle)[0]
	if tr.Selected != 0 {
		t.Errorf("selected arm %d, want none", tr.Selected)
	}
	last := tr.Steps[len(tr.Steps)-1]
	if last.Op != backend.OpNoMatch {
		t.Errorf("last step = %v", last)
	}
	if tr.Count(backend.OpBody) != 0 {
		t.Errorf("body ran\n%s", tr)
	}
}

func TestExecutionRejectsInvalidPlan(t *testing.T) {
	ctx := pipeline.NewContext("bad.mc", "", nil)
	ctx.Mir = &mir.Module{
		SchemaVersion: mir.SchemaVersion,
		MatchLowerings: []mir.MatchLoweringPlan{{
			Owner:      "f",
			TargetType: "Int",
			ArmCount:   2,
			Arms:       []mir.MatchArmLowering{{Pattern: mir.PatternLowering{Label: "_", AlwaysMatches: true}}},
		}},
	}
	backend.NewExecutionProcessor(backend.NewTraceBackend(nil)).Process(ctx)
	rejected := diagnostics.Filter(ctx.Diagnostics.Items(), diagnostics.BackendPlanRejected)
	if len(rejected) != 1 {
		t.Fatalf("expected a rejection, got %v", ctx.Diagnostics.Items())
	}
	if rejected[0].File != "bad.mc" {
		t.Errorf("file = %q", rejected[0].File)
	}
}

func TestParseActiveLabel(t *testing.T) {
	tests := []struct {
		label string
		name  string
		kind  activepattern.Kind
		ok    bool
	}{
		{"active(|Even|_|)", "Even", activepattern.Partial, true},
		{"active(|Parity|)", "Parity", activepattern.Total, true},
		{"active(||)", "", activepattern.Total, false},
		{"ctor(Some)", "", activepattern.Total, false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			name, kind, ok := backend.ParseActiveLabel(tt.label)
			if name != tt.name || kind != tt.kind || ok != tt.ok {
				t.Errorf("ParseActiveLabel(%q) = %q, %v, %v", tt.label, name, kind, ok)
			}
		})
	}
}

func TestLabelsMatchLowering(t *testing.T) {
	for _, kind := range []activepattern.Kind{activepattern.Total, activepattern.Partial} {
		label := "active" + activepattern.Label("P", kind)
		name, got, ok := backend.ParseActiveLabel(label)
		if !ok || name != "P" || got != kind {
			t.Errorf("label %q parsed as %q, %v, %v", label, name, got, ok)
		}
	}
}
