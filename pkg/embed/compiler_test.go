package matchcore_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	matchcore "github.com/funvibe/matchcore/pkg/embed"
)

func TestCompile(t *testing.T) {
	c := matchcore.New()
	res := c.Compile("demo.mc", `fn sign(n: Int) -> Int = match n with
| 0 -> 0
| k when k > 0 -> 1
| _ -> -1
`)
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Diagnostics)
	}
	if len(res.Plans) != 1 {
		t.Fatalf("expected 1 plan, got %d", len(res.Plans))
	}
	if !res.Plans[0].Arms[1].HasGuard {
		t.Errorf("guard not recorded on arm 2")
	}

	data, err := res.PlanJSON(false)
	if err != nil {
		t.Fatalf("plan json: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("plan json is not valid JSON: %v", err)
	}
	if decoded["run_id"] != res.RunID {
		t.Errorf("run_id = %v, want %s", decoded["run_id"], res.RunID)
	}
	if _, err := res.ModuleJSON(true); err != nil {
		t.Errorf("module json: %v", err)
	}
}

func TestCompileReportsDiagnostics(t *testing.T) {
	res := matchcore.New().Compile("demo.mc", "fn f(n: Int) -> Int = match n with | _ -> 0 | 1 -> 1")
	if len(res.Diagnostics) == 0 {
		t.Fatal("expected an unreachable arm diagnostic")
	}
	if res.Diagnostics[0].File != "demo.mc" {
		t.Errorf("file = %q", res.Diagnostics[0].File)
	}
	if len(res.Plans) != 1 {
		t.Errorf("a plan is still produced, got %d", len(res.Plans))
	}
}

func TestCompileAllKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.mc", "b.mc", "c.mc"} {
		p := filepath.Join(dir, name)
		src := "fn " + name[:1] + "(b: Bool) -> Int = match b with | true -> 1 | false -> 0\n"
		if err := os.WriteFile(p, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	results, err := matchcore.New().CompileAll(context.Background(), paths)
	if err != nil {
		t.Fatalf("compile all: %v", err)
	}
	for i, res := range results {
		if res.File != paths[i] {
			t.Errorf("result %d is for %s", i, res.File)
		}
		if want := "fn " + filepath.Base(paths[i])[:1]; len(res.Plans) != 1 || res.Plans[0].Owner != want {
			t.Errorf("result %d plans = %+v", i, res.Plans)
		}
	}
}

func TestCompileFileMissing(t *testing.T) {
	if _, err := matchcore.New().CompileFile(filepath.Join(t.TempDir(), "none.mc")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestNewFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := "inline_owner: \"<embedded>\"\n"
	if err := os.WriteFile(filepath.Join(dir, "matchc.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := matchcore.NewFromConfig("", dir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	res := c.Compile("demo.mc", "match 1 with | 1 -> 1 | _ -> 0")
	if len(res.Plans) != 1 || res.Plans[0].Owner != "<embedded>" {
		t.Errorf("plans = %+v", res.Plans)
	}
}
