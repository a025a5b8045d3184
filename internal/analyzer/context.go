package analyzer

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/matchcore/internal/config"
	"github.com/funvibe/matchcore/internal/typed"
	"github.com/funvibe/matchcore/internal/typesystem"
)

// DeclContext is what the checker knows about the module around a match:
// declared recognizers, functions, nominal types and effects.
type DeclContext struct {
	ActivePatterns map[string]*typed.ActivePatternDecl
	Functions      *set.Set[string]
	Types          *typesystem.TypeTable
	Config         *config.Config

	effectful *set.Set[string]
}

// NewDeclContext indexes mod and computes which of its functions and
// recognizers are transitively effectful. A nil cfg means defaults.
func NewDeclContext(mod *typed.Module, cfg *config.Config) *DeclContext {
	if cfg == nil {
		cfg = config.Default()
	}
	ctx := &DeclContext{
		ActivePatterns: make(map[string]*typed.ActivePatternDecl, len(mod.ActivePatterns)),
		Functions:      set.New[string](len(mod.Functions)),
		Types:          mod.Types,
		Config:         cfg,
	}
	if ctx.Types == nil {
		ctx.Types = typesystem.NewTypeTable()
	}
	for _, ap := range mod.ActivePatterns {
		if _, dup := ctx.ActivePatterns[ap.Name]; !dup {
			ctx.ActivePatterns[ap.Name] = ap
		}
	}
	for _, fn := range mod.Functions {
		ctx.Functions.Insert(fn.Name)
	}
	ctx.effectful = effects(mod)
	return ctx
}

// IsEffectful reports whether the named function performs an effect,
// directly or through what it calls.
func (c *DeclContext) IsEffectful(name string) bool {
	return c.effectful.Contains(name)
}

// ActiveIsEffectful is IsEffectful for a recognizer.
func (c *DeclContext) ActiveIsEffectful(name string) bool {
	return c.effectful.Contains(activeKey(name))
}

// BodyIsEffectful reports whether evaluating e may perform an effect.
func (c *DeclContext) BodyIsEffectful(e *typed.Expr) bool {
	return exprEffectful(e, c.effectful)
}

func activeKey(name string) string { return "(|" + name + "|)" }

// effects computes the least fixpoint of "performs, calls something that
// performs, or matches through a recognizer that performs".
func effects(mod *typed.Module) *set.Set[string] {
	out := set.New[string](0)
	type body struct {
		key  string
		expr *typed.Expr
	}
	var bodies []body
	for _, fn := range mod.Functions {
		bodies = append(bodies, body{fn.Name, fn.Body})
	}
	for _, ap := range mod.ActivePatterns {
		bodies = append(bodies, body{activeKey(ap.Name), ap.Body})
	}
	for changed := true; changed; {
		changed = false
		for _, b := range bodies {
			if out.Contains(b.key) {
				continue
			}
			if exprEffectful(b.expr, out) {
				out.Insert(b.key)
				changed = true
			}
		}
	}
	return out
}

func exprEffectful(e *typed.Expr, known *set.Set[string]) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case typed.PerformExpr:
		return true
	case typed.CallExpr:
		if e.Callee != nil && e.Callee.Kind == typed.IdentExpr && known.Contains(e.Callee.Name) {
			return true
		}
	case typed.MatchExpr:
		for _, arm := range e.Match.Arms {
			eff := false
			typed.Walk(arm.Pattern, func(p *typed.Pattern) bool {
				if p.Kind == typed.ActivePattern && known.Contains(activeKey(p.Name)) {
					eff = true
				}
				return !eff
			})
			if eff {
				return true
			}
		}
	}
	for _, sub := range e.Subexprs() {
		if exprEffectful(sub, known) {
			return true
		}
	}
	return false
}
