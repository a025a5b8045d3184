package analyzer

import (
	"github.com/funvibe/matchcore/internal/activepattern"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/typed"
	"github.com/funvibe/matchcore/internal/typesystem"
)

// CheckActivePatterns validates recognizer declarations: names must not
// clash, the body must honour the kind's return contract, and @pure
// recognizers must not perform effects. Reported at the declaration span.
func CheckActivePatterns(decls []*typed.ActivePatternDecl, ctx *DeclContext) []diagnostics.Diagnostic {
	var out []diagnostics.Diagnostic
	seen := make(map[string]*typed.ActivePatternDecl, len(decls))
	for _, ap := range decls {
		label := activepattern.Label(ap.Name, ap.Kind)
		if ctx.Functions.Contains(ap.Name) {
			out = append(out, diagnostics.NewDiagnostic(diagnostics.ActiveNameConflict, ap.Span, label, "fn "+ap.Name))
		}
		if prev, ok := seen[ap.Name]; ok {
			d := diagnostics.NewDiagnostic(diagnostics.ActiveNameConflict, ap.Span, label,
				activepattern.Label(prev.Name, prev.Kind)).
				WithNote("first declared at %s", prev.Span)
			out = append(out, d)
		} else {
			seen[ap.Name] = ap
		}

		if d, ok := checkReturnContract(ap, ap.Declared); !ok {
			out = append(out, d)
		} else if d, ok := checkReturnContract(ap, ap.ReturnType); !ok {
			out = append(out, d)
		}
		if ap.Pure && ctx.BodyIsEffectful(ap.Body) {
			out = append(out, diagnostics.NewDiagnostic(diagnostics.ActiveEffectViolation, ap.Span, label))
		}
	}
	return out
}

// checkReturnContract checks rt, the annotated or the body type, against
// the carrier the recognizer's kind requires.
func checkReturnContract(ap *typed.ActivePatternDecl, rt typesystem.Type) (diagnostics.Diagnostic, bool) {
	if typesystem.IsUnknown(rt) {
		return diagnostics.Diagnostic{}, true
	}
	label := activepattern.Label(ap.Name, ap.Kind)
	switch ap.Kind {
	case activepattern.Partial:
		if !typesystem.IsOption(rt) {
			return diagnostics.NewDiagnostic(diagnostics.ActiveReturnContract, ap.Span, label, "Option<T>", rt), false
		}
	default:
		if typesystem.IsOption(rt) || typesystem.IsResult(rt) {
			return diagnostics.NewDiagnostic(diagnostics.ActiveReturnContract, ap.Span, label, "a plain value", rt), false
		}
	}
	return diagnostics.Diagnostic{}, true
}
