package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/matchcore/internal/diagnostics"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("{}"), "matchc.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.InlineOwner != "<inline match>" {
		t.Errorf("InlineOwner = %q", cfg.InlineOwner)
	}
	if cfg.UnknownType != "unknown" {
		t.Errorf("UnknownType = %q", cfg.UnknownType)
	}
	if !cfg.WarnLegacyIf() {
		t.Errorf("legacy if guards should warn by default")
	}
	if cfg.Workers < 1 {
		t.Errorf("Workers = %d", cfg.Workers)
	}
	if !cfg.IsSource("a/b.mc") || cfg.IsSource("a/b.go") {
		t.Errorf("IsSource mismatch")
	}
}

func TestParseConfigFull(t *testing.T) {
	data := `
source_extensions: [".pat"]
inline_owner: "<repl>"
legacy_if_guard: allow
diagnostics:
  disable: [pattern.guard.if_deprecated]
  severity:
    pattern.unreachable_arm: error
store: plans.db
listen: "127.0.0.1:9000"
workers: 2
`
	cfg, err := ParseConfig([]byte(data), "matchc.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WarnLegacyIf() {
		t.Errorf("legacy_if_guard allow not honoured")
	}
	if cfg.InlineOwner != "<repl>" || cfg.Store != "plans.db" || cfg.Workers != 2 {
		t.Errorf("unexpected config %+v", cfg)
	}
	p := cfg.DiagnosticPolicy()
	if !p.Disabled[diagnostics.GuardIfDeprecated] {
		t.Errorf("disable not converted")
	}
	if p.Overrides[diagnostics.UnreachableArm] != diagnostics.SeverityError {
		t.Errorf("severity override not converted")
	}
}

func TestParseConfigErrors(t *testing.T) {
	cases := []struct {
		name, data, want string
	}{
		{"bad_extension", `source_extensions: ["mc"]`, "must start with a dot"},
		{"bad_guard_mode", `legacy_if_guard: maybe`, "expected warn or allow"},
		{"unknown_disable", `diagnostics: {disable: [pattern.nope]}`, "unknown code"},
		{"bad_severity", `diagnostics: {severity: {pattern.unreachable_arm: fatal}}`, "invalid severity"},
		{"negative_workers", `workers: -1`, "must not be negative"},
		{"bad_yaml", `workers: [`, "parsing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.data), "matchc.yaml")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "matchc.yaml"), []byte("workers: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	path, err := FindConfig(nested)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "matchc.yaml" {
		t.Fatalf("FindConfig = %q", path)
	}

	cfg, err := Resolve("", nested)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d", cfg.Workers)
	}
}
