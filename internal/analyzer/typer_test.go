package analyzer_test

import (
	"testing"

	"github.com/funvibe/matchcore/internal/activepattern"
	"github.com/funvibe/matchcore/internal/analyzer"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/typed"
	"github.com/funvibe/matchcore/internal/typesystem"
)

func TestBuildModuleSignatures(t *testing.T) {
	src := `module demo.shapes
type Shape = | Circle(Int) | Square(Int)
pattern (|Even|_|)(n: Int) = if n % 2 == 0 then Some(n) else None
pub pattern (|Area|)(s: Shape) = match s with | Circle(r) -> r * r * 3 | Square(w) -> w * w
fn describe(s: Shape) = match s with | (|Area|) a -> a`
	ctx := analyze(t, src)
	mod := ctx.Typed
	if mod == nil {
		t.Fatal("typed module missing")
	}
	if mod.Name != "demo.shapes" {
		t.Errorf("module name = %q", mod.Name)
	}

	even, ok := mod.ActivePattern("Even")
	if !ok {
		t.Fatal("Even not declared")
	}
	if even.Kind != activepattern.Partial || !even.HasMissPath || even.ReturnCarrier != activepattern.OptionLike {
		t.Errorf("Even protocol = %+v", even)
	}
	if !typesystem.IsOption(even.ReturnType) || even.Payload.String() != "Int" {
		t.Errorf("Even return %s payload %s", even.ReturnType, even.Payload)
	}

	area, _ := mod.ActivePattern("Area")
	if area.Kind != activepattern.Total || area.HasMissPath || !area.Public {
		t.Errorf("Area protocol = %+v", area)
	}
	if area.Payload.String() != "Int" {
		t.Errorf("Area payload = %s", area.Payload)
	}

	describe, ok := mod.Function("describe")
	if !ok {
		t.Fatal("describe not declared")
	}
	if describe.Result.String() != "Int" {
		t.Errorf("describe result inferred as %s", describe.Result)
	}
	arm := describe.Body.Match.Arms[0]
	if arm.Pattern.Kind != typed.ActivePattern || arm.Pattern.Inner.Type.String() != "Int" {
		t.Errorf("active argument typed as %s", arm.Pattern.Inner.Type)
	}
}

func TestBuildModulePatternTypes(t *testing.T) {
	src := `fn f(o: Option<(Int, String)>) -> Int = match o with
| Some((n, s)) -> n
| None -> 0`
	mod := analyze(t, src).Typed
	fn, _ := mod.Function("f")
	some := fn.Body.Match.Arms[0].Pattern
	if some.Kind != typed.ConstructorPattern || some.Type.String() != "Option<(Int, String)>" {
		t.Fatalf("Some typed as %s", some.Type)
	}
	tuple := some.Elements[0]
	if tuple.Elements[0].Type.String() != "Int" || tuple.Elements[1].Type.String() != "String" {
		t.Errorf("tuple elements typed as %s, %s", tuple.Elements[0].Type, tuple.Elements[1].Type)
	}
}

func TestSliceRestBindingType(t *testing.T) {
	src := `fn f(xs: [String]) -> [String] = match xs with
| [_, ..tail] -> tail
| [] -> xs`
	mod := analyze(t, src).Typed
	fn, _ := mod.Function("f")
	body := fn.Body.Match.Arms[0].Body
	if body.Type.String() != "[String]" {
		t.Errorf("rest binding typed as %s", body.Type)
	}
}

func TestDuplicateTypeDeclaration(t *testing.T) {
	ctx := analyze(t, "type A = | X\ntype A = | Y")
	expectCount(t, ctx, diagnostics.TypeDuplicate, 1)
}

func TestDeclContextEffects(t *testing.T) {
	src := `fn a(s: String) = perform Console(s)
fn b(s: String) = a(s)
fn c(s: String) = s
pattern (|P|)(s: String) = b(s)`
	mod := analyze(t, src).Typed
	dc := analyzer.NewDeclContext(mod, nil)
	for name, want := range map[string]bool{"a": true, "b": true, "c": false} {
		if got := dc.IsEffectful(name); got != want {
			t.Errorf("IsEffectful(%s) = %v, want %v", name, got, want)
		}
	}
	if !dc.ActiveIsEffectful("P") {
		t.Errorf("P should be effectful")
	}
	if !dc.Functions.Contains("c") {
		t.Errorf("functions set missing c")
	}
}
