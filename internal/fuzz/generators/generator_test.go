package generators_test

import (
	"strings"
	"testing"

	"github.com/funvibe/matchcore/internal/fuzz/generators"
)

func TestDeterministicForSeed(t *testing.T) {
	a := generators.New(7).GenerateProgram()
	b := generators.New(7).GenerateProgram()
	if a != b {
		t.Fatalf("same seed produced different programs:\n%s\n---\n%s", a, b)
	}
}

func TestEmptyDataStillProducesAProgram(t *testing.T) {
	src := generators.NewFromData(nil).GenerateProgram()
	if !strings.HasPrefix(src, generators.Prelude) {
		t.Fatalf("missing prelude:\n%s", src)
	}
	if !strings.Contains(src, "fn f0(v: Int) -> Int = match v with") {
		t.Errorf("unexpected program:\n%s", src)
	}
}

func TestArmBindingsAreDistinct(t *testing.T) {
	g := generators.New(3)
	for i := 0; i < 200; i++ {
		arm := g.GenerateArm(generators.TPair)
		seen := map[string]bool{}
		for _, f := range strings.FieldsFunc(arm, func(r rune) bool {
			return !(r == 'x' || (r >= '0' && r <= '9'))
		}) {
			if !strings.HasPrefix(f, "x") {
				continue
			}
			if seen[f] {
				t.Fatalf("name %s bound twice in %q", f, arm)
			}
			seen[f] = true
		}
	}
}
