package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/matchcore/internal/config"
)

const classify = `pattern (|Even|_|)(n: Int) = if n % 2 == 0 then Some(n) else None

fn classify(v: Int) -> String = match v with
| (|Even|_|) _ -> "even"
| _ -> "odd"
`

type fixture struct {
	dir    string
	config string
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	f := &fixture{dir: t.TempDir()}
	f.config = filepath.Join(f.dir, "matchc.yaml")
	files["matchc.yaml"] = "workers: 2\n"
	for name, src := range files {
		path := filepath.Join(f.dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func (f *fixture) path(name string) string { return filepath.Join(f.dir, name) }

func (f *fixture) run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{args[0], "-config", f.config}, args[1:]...)
	code := Main(context.Background(), full, strings.NewReader(""), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCheckClean(t *testing.T) {
	f := newFixture(t, map[string]string{"ok.mc": classify})
	code, _, stderr := f.run(t, "check", f.path("ok.mc"))
	if code != 0 {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr)
	}
}

func TestCheckDirectoryReportsErrors(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/ok.mc":   classify,
		"src/bad.mc":  "fn f(xs: Int) -> Int = match xs with\n| [a, ..r, ..s] -> a\n| _ -> 0\n",
		"src/skip.go": "package skip",
	})
	code, stdout, stderr := f.run(t, "check", f.path("src"))
	if code != 1 {
		t.Fatalf("exit %d, want 1\nstderr:\n%s", code, stderr)
	}
	if !strings.Contains(stderr, "bad.mc:2:") {
		t.Errorf("diagnostic location missing:\n%s", stderr)
	}
	if strings.Contains(stderr, "skip.go") || strings.Contains(stdout, "3 files") {
		t.Errorf("non-source file was checked:\n%s%s", stdout, stderr)
	}
}

func TestLowerTree(t *testing.T) {
	f := newFixture(t, map[string]string{"a.mc": classify})
	code, stdout, stderr := f.run(t, "lower", f.path("a.mc"))
	if code != 0 {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr)
	}
	for _, want := range []string{"fn classify: Int (2 arms)", "active(|Even|_|) [miss_on_none]"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output lacks %q:\n%s", want, stdout)
		}
	}
}

func TestLowerJSON(t *testing.T) {
	f := newFixture(t, map[string]string{"a.mc": classify})
	code, stdout, stderr := f.run(t, "lower", "-json", f.path("a.mc"))
	if code != 0 {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr)
	}
	var set struct {
		Plans []struct {
			Owner    string `json:"owner"`
			ArmCount int    `json:"arm_count"`
		} `json:"plans"`
	}
	if err := json.Unmarshal([]byte(stdout), &set); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if len(set.Plans) != 1 || set.Plans[0].Owner != "fn classify" || set.Plans[0].ArmCount != 2 {
		t.Errorf("plans = %+v", set.Plans)
	}
}

func TestTraceMiss(t *testing.T) {
	f := newFixture(t, map[string]string{"a.mc": classify})
	code, stdout, stderr := f.run(t, "trace", "-miss", "Even", f.path("a.mc"))
	if code != 0 {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr)
	}
	for _, want := range []string{"arm 1: miss next_arm", "=> arm 2"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("trace lacks %q:\n%s", want, stdout)
		}
	}
}

func TestStoreAndRuns(t *testing.T) {
	f := newFixture(t, map[string]string{"a.mc": classify})
	db := f.path("state/plans.db")
	if code, _, stderr := f.run(t, "check", "-store", db, f.path("a.mc")); code != 0 {
		t.Fatalf("check exit %d:\n%s", code, stderr)
	}
	code, stdout, stderr := f.run(t, "runs", "-store", db, f.path("a.mc"))
	if code != 0 {
		t.Fatalf("runs exit %d:\n%s", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "RUN") || !strings.HasSuffix(lines[1], "ok") {
		t.Errorf("runs output:\n%s", stdout)
	}
}

func TestUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := Main(context.Background(), []string{"frobnicate"}, nil, &stdout, &stderr); code != 2 {
		t.Errorf("exit %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "Unknown command") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestSessionKeepsDeclarations(t *testing.T) {
	s := &session{cfg: config.Default()}
	if e := s.eval("pattern (|Even|_|)(n: Int) ="); e != nil {
		t.Fatalf("unfinished declaration accepted")
	}
	e := s.eval("pattern (|Even|_|)(n: Int) = if n % 2 == 0 then Some(n) else None")
	if e == nil || len(e.diagnostics) != 0 {
		t.Fatalf("declaration rejected: %+v", e)
	}
	if len(s.decls) != 1 {
		t.Fatalf("declarations = %v", s.decls)
	}

	e = s.eval("match 4 with | (|Even|_|) k -> k | _ -> 0")
	if e == nil {
		t.Fatal("match reported as unfinished")
	}
	if len(e.diagnostics) != 0 {
		t.Errorf("diagnostics: %v", e.diagnostics)
	}
	if len(e.plans) != 1 || e.plans[0].Arms[0].Pattern.Label != "active(|Even|_|)" {
		t.Errorf("plans = %+v", e.plans)
	}
	if len(s.decls) != 1 {
		t.Errorf("match input was kept as a declaration")
	}
}

func TestIsMatchInput(t *testing.T) {
	for input, want := range map[string]bool{
		"match x with | _ -> 1":           true,
		"fn f() -> Int = 1":               false,
		"@pure pattern (|P|)(n: Int) = n": false,
		"  type T = | A | B":              false,
	} {
		if got := isMatchInput(input); got != want {
			t.Errorf("isMatchInput(%q) = %v", input, got)
		}
	}
}
