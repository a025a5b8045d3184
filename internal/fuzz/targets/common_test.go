package targets

import (
	"testing"

	"github.com/funvibe/matchcore/internal/backend"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/lexer"
	"github.com/funvibe/matchcore/internal/parser"
	"github.com/funvibe/matchcore/internal/pipeline"
	"github.com/funvibe/matchcore/internal/wire"
)

const fuzzFile = "fuzz.mc"

func compile(src string, extra ...pipeline.Processor) *pipeline.PipelineContext {
	return backend.NewPipeline(extra...).Run(pipeline.NewContext(fuzzFile, src, nil))
}

func parse(src string) *pipeline.PipelineContext {
	return pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(pipeline.NewContext(fuzzFile, src, nil))
}

func syntaxErrors(ctx *pipeline.PipelineContext) []diagnostics.Diagnostic {
	var out []diagnostics.Diagnostic
	for _, d := range ctx.Diagnostics.Items() {
		if d.Stage == diagnostics.StageLexer || d.Stage == diagnostics.StageParser {
			out = append(out, d)
		}
	}
	return out
}

// checkModule asserts the properties every lowered unit must have,
// whatever diagnostics it carries.
func checkModule(t *testing.T, src string, ctx *pipeline.PipelineContext) {
	t.Helper()
	if ctx.Mir == nil {
		return
	}
	if err := wire.ValidateModule(ctx.Mir); err != nil {
		t.Fatalf("lowered module is invalid: %v\nsource:\n%s", err, src)
	}
	for _, plan := range ctx.Mir.MatchLowerings {
		if plan.ArmCount != len(plan.Arms) {
			t.Fatalf("plan %s: arm_count %d, %d arms", plan.Owner, plan.ArmCount, len(plan.Arms))
		}
	}
	if rejected := diagnostics.Filter(ctx.Diagnostics.Items(), diagnostics.BackendPlanRejected); len(rejected) > 0 {
		t.Fatalf("backend rejected a plan: %v\nsource:\n%s", rejected, src)
	}
}
