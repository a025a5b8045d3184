package analyzer

import (
	"github.com/funvibe/matchcore/internal/config"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/typed"
)

// CheckModule runs the recognizer checks and then CheckMatch on every
// match of the module, nested matches included.
func CheckModule(mod *typed.Module, cfg *config.Config) []diagnostics.Diagnostic {
	ctx := NewDeclContext(mod, cfg)
	out := CheckActivePatterns(mod.ActivePatterns, ctx)
	for _, m := range ModuleMatches(mod) {
		out = append(out, CheckMatch(m.Arms, m.Target.Type, ctx)...)
	}
	return out
}

// ModuleMatches lists the module's matches: recognizer bodies first, then
// functions, then top-level expressions.
func ModuleMatches(mod *typed.Module) []*typed.Match {
	var out []*typed.Match
	for _, ap := range mod.ActivePatterns {
		out = append(out, typed.Matches(ap.Body)...)
	}
	for _, fn := range mod.Functions {
		out = append(out, typed.Matches(fn.Body)...)
	}
	for _, e := range mod.Inline {
		out = append(out, typed.Matches(e)...)
	}
	return out
}
