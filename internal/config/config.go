// Package config loads matchc.yaml. A Config is built once at pipeline
// start and threaded through the checker and builder; there is no
// package-level mutable state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/matchcore/internal/diagnostics"
)

// Config represents the top-level matchc.yaml configuration.
type Config struct {
	// SourceExtensions lists file extensions treated as sources by `matchc check <dir>`.
	SourceExtensions []string `yaml:"source_extensions,omitempty"`

	// InlineOwner is the plan owner recorded for a match that has no
	// enclosing declaration (REPL input, BuildMatchLowering called directly).
	InlineOwner string `yaml:"inline_owner,omitempty"`

	// UnknownType is the target_type written when a match target has no
	// resolved type.
	UnknownType string `yaml:"unknown_type,omitempty"`

	// LegacyIfGuard controls `| p if g ->`: "warn" emits
	// pattern.guard.if_deprecated, "allow" accepts it silently.
	LegacyIfGuard string `yaml:"legacy_if_guard,omitempty"`

	Diagnostics DiagnosticsConfig `yaml:"diagnostics,omitempty"`

	// Store is the sqlite database receiving plans and diagnostics.
	Store string `yaml:"store,omitempty"`

	// Listen is the gRPC address used by `matchc serve`.
	Listen string `yaml:"listen,omitempty"`

	// Workers bounds the number of files lowered concurrently.
	Workers int `yaml:"workers,omitempty"`
}

// DiagnosticsConfig tunes emitted diagnostics without changing checks.
type DiagnosticsConfig struct {
	Disable  []string          `yaml:"disable,omitempty"`
	Severity map[string]string `yaml:"severity,omitempty"`
}

// Default returns the configuration used when no matchc.yaml is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a matchc.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses matchc.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for matchc.yaml starting from dir and walking up
// to parent directories. It returns "" and a nil error when none exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Resolve loads the config at path, or the nearest one above dir when path
// is empty, or the defaults when neither exists.
func Resolve(path, dir string) (*Config, error) {
	if path == "" {
		found, err := FindConfig(dir)
		if err != nil {
			return nil, err
		}
		if found == "" {
			return Default(), nil
		}
		path = found
	}
	return LoadConfig(path)
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	for i, ext := range c.SourceExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%s: source_extensions[%d]: %q must start with a dot", path, i, ext)
		}
	}

	switch c.LegacyIfGuard {
	case "", "warn", "allow":
	default:
		return fmt.Errorf("%s: legacy_if_guard: expected warn or allow, got %q", path, c.LegacyIfGuard)
	}

	for i, code := range c.Diagnostics.Disable {
		if !diagnostics.Known(diagnostics.Code(code)) {
			return fmt.Errorf("%s: diagnostics.disable[%d]: unknown code %q", path, i, code)
		}
	}
	for code, sev := range c.Diagnostics.Severity {
		if !diagnostics.Known(diagnostics.Code(code)) {
			return fmt.Errorf("%s: diagnostics.severity: unknown code %q", path, code)
		}
		if _, ok := diagnostics.ParseSeverity(sev); !ok {
			return fmt.Errorf("%s: diagnostics.severity[%s]: invalid severity %q", path, code, sev)
		}
	}

	if c.Workers < 0 {
		return fmt.Errorf("%s: workers must not be negative", path)
	}
	return nil
}

// setDefaults fills in default values for optional fields.
func (c *Config) setDefaults() {
	if len(c.SourceExtensions) == 0 {
		c.SourceExtensions = append([]string(nil), SourceFileExtensions...)
	}
	if c.InlineOwner == "" {
		c.InlineOwner = DefaultInlineOwner
	}
	if c.UnknownType == "" {
		c.UnknownType = DefaultUnknownType
	}
	if c.LegacyIfGuard == "" {
		c.LegacyIfGuard = "warn"
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
}

// WarnLegacyIf reports whether `if` guards produce a deprecation warning.
func (c *Config) WarnLegacyIf() bool {
	return c.LegacyIfGuard != "allow"
}

// IsSource reports whether path has one of the configured extensions.
func (c *Config) IsSource(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range c.SourceExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// DiagnosticPolicy converts the diagnostics section into a collector policy.
func (c *Config) DiagnosticPolicy() diagnostics.Policy {
	p := diagnostics.Policy{
		Disabled:  make(map[diagnostics.Code]bool),
		Overrides: make(map[diagnostics.Code]diagnostics.Severity),
	}
	for _, code := range c.Diagnostics.Disable {
		p.Disabled[diagnostics.Code(code)] = true
	}
	for code, sev := range c.Diagnostics.Severity {
		if s, ok := diagnostics.ParseSeverity(sev); ok {
			p.Overrides[diagnostics.Code(code)] = s
		}
	}
	return p
}
