package parser_test

import (
	"strings"
	"testing"

	"github.com/funvibe/matchcore/internal/ast"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/lexer"
	"github.com/funvibe/matchcore/internal/parser"
	"github.com/funvibe/matchcore/internal/pipeline"
)

func parse(input string) *pipeline.PipelineContext {
	ctx := pipeline.NewContext("test.mc", input, nil)
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	return (&parser.ParserProcessor{}).Process(ctx)
}

func mustParse(t *testing.T, input string) *ast.Program {
	t.Helper()
	ctx := parse(input)
	if items := ctx.Diagnostics.Items(); len(items) > 0 {
		var msgs []string
		for _, d := range items {
			msgs = append(msgs, d.Error())
		}
		t.Fatalf("parsing failed with errors:\n%s\ninput: %s", strings.Join(msgs, "\n"), input)
	}
	return ctx.AstRoot
}

// expectError asserts a diagnostic with the given code.
func expectError(t *testing.T, input string, code diagnostics.Code) diagnostics.Diagnostic {
	t.Helper()
	items := parse(input).Diagnostics.Items()
	for _, d := range items {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("expected %s, got %v\ninput: %s", code, items, input)
	return diagnostics.Diagnostic{}
}

// firstMatch returns the first match expression of a top-level expression.
func firstMatch(t *testing.T, prog *ast.Program) *ast.MatchExpression {
	t.Helper()
	for _, d := range prog.Declarations {
		var body ast.Expression
		switch d := d.(type) {
		case *ast.TopLevelExpression:
			body = d.Expression
		case *ast.FunctionDeclaration:
			body = d.Body
		case *ast.ActivePatternDeclaration:
			body = d.Body
		}
		if m, ok := body.(*ast.MatchExpression); ok {
			return m
		}
	}
	t.Fatalf("no match expression found")
	return nil
}

func TestAliasBeforeGuard(t *testing.T) {
	for _, src := range []string{
		"match n with | _ as value when value > 0 -> value",
		"match n with | _ when value > 0 as value -> value",
	} {
		m := firstMatch(t, mustParse(t, src))
		arm := m.Arms[0]
		if arm.Alias != "value" {
			t.Errorf("%s: alias = %q", src, arm.Alias)
		}
		if arm.Guard == nil {
			t.Errorf("%s: guard missing", src)
		}
		if arm.GuardUsedIf {
			t.Errorf("%s: when-guard flagged as if", src)
		}
		if _, ok := arm.Pattern.(*ast.WildcardPattern); !ok {
			t.Errorf("%s: pattern = %T", src, arm.Pattern)
		}
	}
}

func TestIfGuardRecorded(t *testing.T) {
	m := firstMatch(t, mustParse(t, "match n with | _ if n > 0 -> n | _ -> 0"))
	if !m.Arms[0].GuardUsedIf || m.Arms[0].Guard == nil {
		t.Errorf("if guard not recorded: %+v", m.Arms[0])
	}
	if m.Arms[1].GuardUsedIf || m.Arms[1].Guard != nil {
		t.Errorf("second arm should be unguarded")
	}
}

func TestPatternForms(t *testing.T) {
	src := `match v with
| (|IsFoo|_|) () -> 1
| (|Total|) x -> 2
| [head, ..tail] -> 3
| [a, .., z] -> 4
| 1..=5 -> 5
| ..10 -> 6
| r"^a+$" -> 7
| { x: 1, y, .. } -> 8
| Some(n @ (1 | 2)) -> 9
| (a, b) as pair -> 10
| (Some(x) as s, _) -> 11
| -3 -> 12`
	m := firstMatch(t, mustParse(t, src))
	if len(m.Arms) != 12 {
		t.Fatalf("expected 12 arms, got %d", len(m.Arms))
	}

	ap := m.Arms[0].Pattern.(*ast.ActivePattern)
	if ap.Name != "IsFoo" || !ap.IsPartial {
		t.Errorf("active pattern = %+v", ap)
	}
	if lit, ok := ap.Argument.(*ast.LiteralPattern); !ok || lit.Value != (ast.Unit{}) {
		t.Errorf("active argument = %#v", ap.Argument)
	}
	total := m.Arms[1].Pattern.(*ast.ActivePattern)
	if total.IsPartial || total.Argument.(*ast.VarPattern).Name != "x" {
		t.Errorf("total active = %+v", total)
	}

	sl := m.Arms[2].Pattern.(*ast.SlicePattern)
	if len(sl.Items) != 2 || !sl.Items[1].IsRest || sl.Items[1].Binding != "tail" {
		t.Errorf("slice = %+v", sl.Items)
	}
	if m.Arms[3].Pattern.(*ast.SlicePattern).RestCount() != 1 {
		t.Errorf("expected one anonymous rest")
	}

	rng := m.Arms[4].Pattern.(*ast.RangePattern)
	if !rng.Inclusive || rng.Start.(*ast.LiteralPattern).Value != int64(1) || rng.End.(*ast.LiteralPattern).Value != int64(5) {
		t.Errorf("range = %+v", rng)
	}
	open := m.Arms[5].Pattern.(*ast.RangePattern)
	if open.Start != nil || open.Inclusive {
		t.Errorf("open range = %+v", open)
	}

	if re := m.Arms[6].Pattern.(*ast.RegexPattern); re.Pattern != "^a+$" {
		t.Errorf("regex = %q", re.Pattern)
	}

	rec := m.Arms[7].Pattern.(*ast.RecordPattern)
	if !rec.HasRest || len(rec.Fields) != 2 || rec.Fields[1].Value.(*ast.VarPattern).Name != "y" {
		t.Errorf("record = %+v", rec)
	}

	ctor := m.Arms[8].Pattern.(*ast.ConstructorPattern)
	at := ctor.Elements[0].(*ast.BindingPattern)
	if !at.ViaAt || at.Name != "n" {
		t.Errorf("@ binding = %+v", at)
	}
	if _, ok := at.Pattern.(*ast.OrPattern); !ok {
		t.Errorf("@ inner = %T", at.Pattern)
	}

	if m.Arms[9].Alias != "pair" {
		t.Errorf("top-level as should be the arm alias")
	}
	inner := m.Arms[10].Pattern.(*ast.TuplePattern).Elements[0].(*ast.BindingPattern)
	if inner.ViaAt || inner.Name != "s" {
		t.Errorf("nested as should be a binding: %+v", inner)
	}
	if lit := m.Arms[11].Pattern.(*ast.LiteralPattern); lit.Value != int64(-3) {
		t.Errorf("negative literal = %v", lit.Value)
	}
}

func TestOrPatternAtArmLevel(t *testing.T) {
	m := firstMatch(t, mustParse(t, "match n with | 1 | 2 -> 0 | _ -> 1"))
	if len(m.Arms) != 2 {
		t.Fatalf("expected 2 arms, got %d", len(m.Arms))
	}
	or := m.Arms[0].Pattern.(*ast.OrPattern)
	if len(or.Alternatives) != 2 {
		t.Errorf("alternatives = %d", len(or.Alternatives))
	}
}

func TestDeclarations(t *testing.T) {
	src := `module Demo.Patterns
use Core.Prelude

type Shape = | Circle(Int) | Square

@pure pub pattern (|IsFoo|_|)(s: String) = if s == "foo" then Some(()) else None

pattern (|Total|)(n: Int) -> Int = n

fn run(x: Int) -> Int =
  match x with
  | (|Total|) v -> v
  | _ -> 0
`
	prog := mustParse(t, src)
	if prog.Module == nil || strings.Join(prog.Module.Path, ".") != "Demo.Patterns" {
		t.Errorf("module = %+v", prog.Module)
	}
	if len(prog.Uses) != 1 {
		t.Errorf("uses = %d", len(prog.Uses))
	}
	if n := len(prog.Declarations); n != 4 {
		t.Fatalf("expected 4 declarations, got %d", n)
	}
	shape := prog.Types()[0]
	if shape.Name != "Shape" || len(shape.Variants) != 2 || len(shape.Variants[0].Fields) != 1 {
		t.Errorf("type = %+v", shape)
	}
	aps := prog.ActivePatterns()
	if !aps[0].IsPartial || !aps[0].Pure || aps[0].Visibility != ast.Public {
		t.Errorf("IsFoo = %+v", aps[0])
	}
	if aps[1].IsPartial || aps[1].ReturnType.String() != "Int" {
		t.Errorf("Total = %+v", aps[1])
	}
	fn := prog.Functions()[0]
	if fn.Name != "run" || len(fn.Params) != 1 {
		t.Errorf("fn = %+v", fn)
	}
	if m, ok := fn.Body.(*ast.MatchExpression); !ok || len(m.Arms) != 2 {
		t.Errorf("fn body = %T", fn.Body)
	}
}

func TestCallNeedsSameLine(t *testing.T) {
	prog := mustParse(t, "f(1)\n(2, 3)")
	if len(prog.Declarations) != 2 {
		t.Fatalf("expected two expressions, got %d", len(prog.Declarations))
	}
	if _, ok := prog.Declarations[0].(*ast.TopLevelExpression).Expression.(*ast.CallExpression); !ok {
		t.Errorf("first expression should be a call")
	}
}

func TestParseErrors(t *testing.T) {
	expectError(t, "match x with | -> 1", diagnostics.ParseExpectedPattern)
	expectError(t, "match x with | _ 1", diagnostics.ParseUnexpectedToken)
	expectError(t, "fn f(x) = ", diagnostics.ParseUnexpectedEOF)
	expectError(t, "@impure pattern (|A|)(x) = x", diagnostics.ParseInvalidAnnotation)
	expectError(t, "match x with | (|lower|) -> 1", diagnostics.ParseUnexpectedToken)
	expectError(t, "match x with | 1..= -> 1", diagnostics.ParseUnexpectedToken)
	expectError(t, "match x with | { 1 } -> 1", diagnostics.ParseUnexpectedToken)
	expectError(t, "x & y", diagnostics.ParseIllegalToken)
}

func TestIncompleteInput(t *testing.T) {
	ctx := parse("match x with\n| 1 ->")
	if !ctx.Incomplete {
		t.Errorf("expected incomplete input")
	}
	ctx = parse("match x with | 1 -> )")
	if ctx.Incomplete {
		t.Errorf("a stray token is not incomplete input")
	}
}

func TestRecoveryContinuesAfterBadDeclaration(t *testing.T) {
	ctx := parse("fn broken( = 1\nfn ok() = 2")
	if ctx.Diagnostics.Len() == 0 {
		t.Fatalf("expected a diagnostic")
	}
	fns := ctx.AstRoot.Functions()
	if len(fns) != 1 || fns[0].Name != "ok" {
		t.Errorf("recovered functions = %v", fns)
	}
}
