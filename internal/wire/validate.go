package wire

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/matchcore/internal/activepattern"
	"github.com/funvibe/matchcore/internal/mir"
)

// ValidatePlan checks the structural contract of a lowering plan.
func ValidatePlan(plan *mir.MatchLoweringPlan) error {
	var errs []error
	if plan.Owner == "" {
		errs = append(errs, errors.New("plan has no owner"))
	}
	if plan.TargetType == "" {
		errs = append(errs, errors.New("plan has no target type"))
	}
	if plan.ArmCount != len(plan.Arms) {
		errs = append(errs, fmt.Errorf("arm_count %d does not match %d arms", plan.ArmCount, len(plan.Arms)))
	}
	for i, arm := range plan.Arms {
		if err := ValidateLowering(arm.Pattern); err != nil {
			errs = append(errs, fmt.Errorf("arm %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

// ValidateLowering checks a pattern lowering tree: every node has a label
// and no node both always matches and misses on None.
func ValidateLowering(p mir.PatternLowering) error {
	if p.Label == "" {
		return errors.New("pattern lowering without label")
	}
	if p.AlwaysMatches && p.MissOnNone {
		return fmt.Errorf("%s: always_matches and miss_on_none are exclusive", p.Label)
	}
	if strings.HasPrefix(p.Label, "active(") && strings.HasSuffix(p.Label, "|_|)") != p.MissOnNone {
		return fmt.Errorf("%s: miss_on_none must be set exactly for partial recognizers", p.Label)
	}
	for _, c := range p.Children {
		if err := ValidateLowering(c); err != nil {
			return fmt.Errorf("%s: %w", p.Label, err)
		}
	}
	return nil
}

var knownKinds = func() map[mir.PatternKind]bool {
	m := make(map[mir.PatternKind]bool, len(mir.PatternKinds))
	for _, k := range mir.PatternKinds {
		m[k] = true
	}
	return m
}()

// ValidatePattern checks a lowered pattern: the kind tag is known, the
// kind's required fields are present, and recognizer calls carry a miss
// target exactly when they are partial.
func ValidatePattern(p *mir.Pattern) error {
	if p == nil {
		return errors.New("missing pattern")
	}
	if !knownKinds[p.Kind] {
		return fmt.Errorf("unknown pattern kind %q", p.Kind)
	}
	var children []*mir.Pattern
	switch p.Kind {
	case mir.PatternVar:
		if p.Name == "" {
			return errors.New("var pattern without name")
		}
	case mir.PatternLiteral:
		if p.Literal == nil {
			return errors.New("literal pattern without literal")
		}
	case mir.PatternTuple:
		children = p.Elements
	case mir.PatternRecord:
		for _, f := range p.Fields {
			if f.Value != nil {
				children = append(children, f.Value)
			}
		}
	case mir.PatternConstructor:
		if p.Name == "" {
			return errors.New("constructor pattern without name")
		}
		children = p.Args
	case mir.PatternBinding:
		if p.Name == "" || p.Inner == nil {
			return errors.New("binding pattern needs a name and an inner pattern")
		}
		children = []*mir.Pattern{p.Inner}
	case mir.PatternOr:
		if len(p.Variants) == 0 {
			return errors.New("or pattern without variants")
		}
		children = p.Variants
	case mir.PatternSlice:
		if p.Rest == nil && len(p.Tail) > 0 {
			return errors.New("slice tail without rest")
		}
		children = append(append(children, p.Head...), p.Tail...)
	case mir.PatternRange:
		if p.Start == nil && p.End == nil {
			return errors.New("range pattern without bounds")
		}
		for _, b := range []*mir.Pattern{p.Start, p.End} {
			if b != nil && b.Kind != mir.PatternLiteral {
				return fmt.Errorf("range bound must be a literal, found %s", b.Kind)
			}
		}
	case mir.PatternActive:
		if p.Call == nil || p.Call.Name == "" {
			return errors.New("active pattern without call")
		}
		if (p.Call.MissTarget != nil) != (p.Call.Kind == activepattern.Partial) {
			return fmt.Errorf("active pattern %s: miss_target must be set exactly for partial recognizers", p.Call.Name)
		}
		if p.Call.Argument != nil {
			children = []*mir.Pattern{p.Call.Argument}
		}
	}
	for _, c := range children {
		if err := ValidatePattern(c); err != nil {
			return fmt.Errorf("%s: %w", p.Kind, err)
		}
	}
	return nil
}

// ValidateModule checks every plan and every expression table of mod.
func ValidateModule(mod *mir.Module) error {
	var errs []error
	if mod.SchemaVersion != mir.SchemaVersion {
		errs = append(errs, fmt.Errorf("unsupported schema version %q", mod.SchemaVersion))
	}
	for _, fn := range mod.Functions {
		if err := validateExprs(fn.Exprs, fn.Body); err != nil {
			errs = append(errs, fmt.Errorf("fn %s: %w", fn.Name, err))
		}
	}
	for _, ap := range mod.ActivePatterns {
		if ap.HasMissPath != (ap.Kind == activepattern.Partial) {
			errs = append(errs, fmt.Errorf("active %s: has_miss_path disagrees with kind %s", ap.Name, ap.Kind))
		}
		if ap.ReturnCarrier != activepattern.CarrierFor(ap.Kind) {
			errs = append(errs, fmt.Errorf("active %s: %s recognizer cannot return %s", ap.Name, ap.Kind, ap.ReturnCarrier))
		}
		if err := validateExprs(ap.Exprs, ap.Body); err != nil {
			errs = append(errs, fmt.Errorf("active %s: %w", ap.Name, err))
		}
	}
	for i := range mod.MatchLowerings {
		if err := ValidatePlan(&mod.MatchLowerings[i]); err != nil {
			errs = append(errs, fmt.Errorf("plan %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// validateExprs checks that ids are dense and that every reference points
// to an earlier expression.
func validateExprs(exprs []mir.Expr, body mir.ExprID) error {
	if int(body) >= len(exprs) {
		return fmt.Errorf("body %d out of range", body)
	}
	for i, e := range exprs {
		if int(e.ID) != i {
			return fmt.Errorf("expression %d has id %d", i, e.ID)
		}
		for _, r := range exprRefs(&e) {
			if r >= e.ID {
				return fmt.Errorf("expression %d refers to %d", e.ID, r)
			}
		}
		for _, arm := range e.Arms {
			if err := ValidatePattern(arm.Pattern); err != nil {
				return fmt.Errorf("expression %d: %w", e.ID, err)
			}
		}
		if e.Kind == mir.ExprMatch {
			if e.Lowering == nil {
				return fmt.Errorf("match %d has no lowering plan", e.ID)
			}
			if e.Lowering.ArmCount != len(e.Arms) {
				return fmt.Errorf("match %d: plan has %d arms, expression has %d", e.ID, e.Lowering.ArmCount, len(e.Arms))
			}
		}
	}
	return nil
}

func exprRefs(e *mir.Expr) []mir.ExprID {
	refs := append([]mir.ExprID(nil), e.Args...)
	for _, p := range []*mir.ExprID{e.Callee, e.Tail, e.Condition, e.Then, e.Else, e.Target} {
		if p != nil {
			refs = append(refs, *p)
		}
	}
	for _, s := range e.Statements {
		refs = append(refs, s.Value)
	}
	for _, arm := range e.Arms {
		refs = append(refs, arm.Body)
		if arm.Guard != nil {
			refs = append(refs, *arm.Guard)
		}
	}
	return refs
}
