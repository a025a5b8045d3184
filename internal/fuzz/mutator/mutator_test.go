package mutator_test

import (
	"testing"

	"github.com/funvibe/matchcore/internal/ast"
	"github.com/funvibe/matchcore/internal/fuzz/mutator"
	"github.com/funvibe/matchcore/internal/lexer"
	"github.com/funvibe/matchcore/internal/parser"
	"github.com/funvibe/matchcore/internal/pipeline"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	ctx := pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(pipeline.NewContext("m.mc", src, nil))
	if ctx.AstRoot == nil || ctx.Diagnostics.Len() > 0 {
		t.Fatalf("parse failed: %v", ctx.Diagnostics.Items())
	}
	return ctx.AstRoot
}

func TestMatchesFindsNested(t *testing.T) {
	prog := parse(t, `fn f(n: Int) -> Int = match n with
| 0 -> (match n with | _ -> 1)
| _ -> if true then { let a = match n with | _ -> 2; a } else 3
`)
	if got := len(mutator.Matches(prog)); got != 3 {
		t.Errorf("found %d matches, want 3", got)
	}
}

func TestMutateWithoutMatches(t *testing.T) {
	prog := parse(t, "fn f(n: Int) -> Int = n + 1")
	if mutator.NewASTMutator(1).Mutate(prog) {
		t.Error("mutated a program without matches")
	}
}

func TestMutateKeepsArms(t *testing.T) {
	prog := parse(t, "fn f(n: Int) -> Int = match n with | 0 -> 0 | 1 -> 1 | _ -> 2")
	m := mutator.NewASTMutator(99)
	for i := 0; i < 50; i++ {
		if !m.Mutate(prog) {
			t.Fatal("mutation reported no match")
		}
		if len(mutator.Matches(prog)[0].Arms) == 0 {
			t.Fatal("mutation removed every arm")
		}
	}
}
