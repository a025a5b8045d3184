package prettyprinter_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/funvibe/matchcore/internal/analyzer"
	"github.com/funvibe/matchcore/internal/ast"
	"github.com/funvibe/matchcore/internal/backend"
	"github.com/funvibe/matchcore/internal/lexer"
	"github.com/funvibe/matchcore/internal/parser"
	"github.com/funvibe/matchcore/internal/pipeline"
	"github.com/funvibe/matchcore/internal/prettyprinter"
)

var update = flag.Bool("update", false, "update snapshot files")

func compile(t *testing.T, src string) *pipeline.PipelineContext {
	t.Helper()
	ctx := pipeline.NewContext("test.mc", src, nil)
	ctx = pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
		&backend.LoweringProcessor{},
	).Run(ctx)
	if ctx.AstRoot == nil {
		t.Fatalf("parsing failed: %v", ctx.Diagnostics.Items())
	}
	return ctx
}

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	ctx := pipeline.NewContext("test.mc", src, nil)
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if ctx.Diagnostics.HasErrors() {
		t.Fatalf("parsing failed for:\n%s\n%v", src, ctx.Diagnostics.Items())
	}
	return ctx.AstRoot
}

func TestLoweringSnapshots(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"option_arms", "fn f(o: Option<Int>) -> Int = match o with | Some(n) when n > 0 -> n | None -> 0 | _ -> 1"},
		{"active_patterns", "pattern (|Even|_|)(n: Int) = if n % 2 == 0 then Some(n) else None\nfn g(v: Int) -> Int = match v with | (|Even|_|) k as e -> k | (1 | 2) -> 1 | x -> x"},
		{"nested_structures", "fn h(p: (Int, [Int])) -> Int = match p with | (0, [a, ..rest]) -> a | (n @ 1..=9, []) -> n | _ -> 0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := compile(t, tc.input)
			code := prettyprinter.PrintProgram(ctx.AstRoot)
			tree := prettyprinter.PrintPlans(ctx.Plans())
			actual := "--- Input ---\n" + tc.input + "\n\n--- Source Code ---\n" + code + "\n--- Lowering ---\n" + tree

			snapshotFile := filepath.Join("testdata", tc.name+".snap")
			if *update {
				if err := os.WriteFile(snapshotFile, []byte(actual), 0644); err != nil {
					t.Fatalf("failed to update snapshot: %v", err)
				}
				return
			}
			expected, err := os.ReadFile(snapshotFile)
			if err != nil {
				t.Fatalf("failed to read snapshot file: %v. Run with -update flag to create it.", err)
			}
			if string(expected) != actual {
				t.Errorf("snapshot mismatch:\n--- expected\n%s\n--- actual\n%s", string(expected), actual)
			}
		})
	}
}

func TestPatternPrinting(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"_", "_"},
		{"-3", "-3"},
		{"2.0", "2.0"},
		{`"a\"b"`, `"a\"b"`},
		{"()", "()"},
		{"(a, _)", "(a, _)"},
		{"{ x, y: 0, .. }", "{ x, y: 0, .. }"},
		{"Some((n as m))", "Some(n as m)"},
		{"(Some(_) as whole)", "(Some(_) as whole)"},
		{"n @ Some(_)", "n @ Some(_)"},
		{"Some(1 | 2)", "Some(1 | 2)"},
		{"[head, ..tail]", "[head, ..tail]"},
		{"[a, .., z]", "[a, .., z]"},
		{"1..5", "1..5"},
		{"..=10", "..=10"},
		{`r"^a+$"`, `r"^a+$"`},
		{"(|Even|_|) (1 | 2)", "(|Even|_|) (1 | 2)"},
		{"(|Half|)", "(|Half|)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := parse(t, "match v with | "+tt.input+" -> 0")
			top := prog.Declarations[0].(*ast.TopLevelExpression)
			m := top.Expression.(*ast.MatchExpression)
			if got := prettyprinter.PrintPattern(m.Arms[0].Pattern); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// Printing, parsing the result and printing again must be stable.
func TestCodePrinterRoundTrip(t *testing.T) {
	sources := []string{
		"fn f(n: Int) -> Int = match n with | 0 -> 1 | x when x > 0 -> x * (x - 1) | _ -> -n",
		"fn g(xs: [Int]) = match xs with | [] -> { match 0 with | _ -> 0 } | [x, ..] -> x",
		"@pure pub pattern (|Big|_|)(n: Int) -> Option<Int> = if n > 100 then Some(n) else None",
		"type Shape = | Circle(Int) | Square\ntype Point = { x: Int, y: Int }",
		"fn h(p: Point) = { let a = p.x; let b = (match a with | 1 -> 2 | _ -> 3); a + b }",
		"match (1, \"s\") with | (1, _) as pair if true -> pair | _ -> (0, \"\")",
		"fn k(s: String) = perform Console(s + \"!\")",
		"fn m(a: Int, b: Int) = (a - b) - (a - b) == !(a < b)",
	}
	for _, src := range sources {
		first := prettyprinter.PrintProgram(parse(t, src))
		second := prettyprinter.PrintProgram(parse(t, first))
		if first != second {
			t.Errorf("printing is not stable:\n%s\n---\n%s", first, second)
		}
	}
}
