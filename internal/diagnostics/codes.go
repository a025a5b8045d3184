package diagnostics

// Code is a stable identifier for a diagnostic. Released codes are never
// renamed; new checks add new codes.
type Code string

const (
	// Lexer and parser
	ParseIllegalToken      Code = "parse.illegal_token"
	ParseUnexpectedToken   Code = "parse.unexpected_token"
	ParseExpectedPattern   Code = "parse.expected_pattern"
	ParseExpectedExpr      Code = "parse.expected_expression"
	ParseUnexpectedEOF     Code = "parse.unexpected_eof"
	ParseRecursionTooDeep  Code = "parse.recursion_too_deep"
	ParseInvalidAnnotation Code = "parse.invalid_annotation"

	// Pattern checker
	UnreachableArm        Code = "pattern.unreachable_arm"
	ExhaustivenessMissing Code = "pattern.exhaustiveness.missing"
	DuplicateBinding      Code = "pattern.binding.duplicate_name"
	SliceMultipleRest     Code = "pattern.slice.multiple_rest"
	SliceTypeMismatch     Code = "pattern.slice.type_mismatch"
	RangeBoundInverted    Code = "pattern.range.bound_inverted"
	RangeTypeMismatch     Code = "pattern.range.type_mismatch"
	RegexUnsupported      Code = "pattern.regex.unsupported_target"
	RegexInvalidSyntax    Code = "pattern.regex.invalid_syntax"
	GuardIfDeprecated     Code = "pattern.guard.if_deprecated"
	ConstructorArity      Code = "pattern.constructor.arity_mismatch"
	ConstructorUnknown    Code = "pattern.constructor.unknown"

	// Active pattern contracts
	ActiveReturnContract  Code = "pattern.active.return_contract_invalid"
	ActiveEffectViolation Code = "pattern.active.effect_violation"
	ActiveNameConflict    Code = "pattern.active.name_conflict"
	ActiveUndefined       Code = "pattern.active.undefined"

	// Type declarations
	TypeDuplicate Code = "type.duplicate"

	// Backend consumers
	BackendPlanRejected Code = "backend.plan_rejected"
)

// Stage identifies which phase produced a diagnostic.
type Stage string

const (
	StageLexer   Stage = "lexer"
	StageParser  Stage = "parser"
	StageChecker Stage = "checker"
	StageBackend Stage = "backend"
)

type entry struct {
	stage     Stage
	severity  Severity
	format    string
	mergeable bool
}

var registry = map[Code]entry{
	ParseIllegalToken:      {StageLexer, SeverityError, "illegal token %q", false},
	ParseUnexpectedToken:   {StageParser, SeverityError, "expected %s, found %s", false},
	ParseExpectedPattern:   {StageParser, SeverityError, "expected a pattern, found %s", false},
	ParseExpectedExpr:      {StageParser, SeverityError, "expected an expression, found %s", false},
	ParseUnexpectedEOF:     {StageParser, SeverityError, "unexpected end of input, expected %s", false},
	ParseRecursionTooDeep:  {StageParser, SeverityError, "nesting exceeds %d levels", false},
	ParseInvalidAnnotation: {StageParser, SeverityError, "unknown annotation @%s", false},

	UnreachableArm:        {StageChecker, SeverityWarning, "unreachable match arm: %s", true},
	ExhaustivenessMissing: {StageChecker, SeverityError, "match is not exhaustive: %s", true},
	DuplicateBinding:      {StageChecker, SeverityError, "name `%s` is bound more than once in the same pattern", false},
	SliceMultipleRest:     {StageChecker, SeverityError, "slice pattern has %d rest markers, at most one is allowed", false},
	SliceTypeMismatch:     {StageChecker, SeverityError, "slice pattern cannot match a value of type %s", false},
	RangeBoundInverted:    {StageChecker, SeverityError, "range pattern bounds are inverted: %s", false},
	RangeTypeMismatch:     {StageChecker, SeverityError, "range bounds have incompatible types %s and %s", false},
	RegexUnsupported:      {StageChecker, SeverityError, "regex pattern cannot match a value of type %s", false},
	RegexInvalidSyntax:    {StageChecker, SeverityError, "invalid regex %q: %s", false},
	GuardIfDeprecated:     {StageChecker, SeverityWarning, "guards introduced with `if` are deprecated, use `when`", false},
	ConstructorArity:      {StageChecker, SeverityError, "constructor %s expects %d argument(s), found %d", false},
	ConstructorUnknown:    {StageChecker, SeverityError, "unknown constructor %s", false},

	ActiveReturnContract:  {StageChecker, SeverityError, "active pattern %s must return %s, found %s", false},
	ActiveEffectViolation: {StageChecker, SeverityError, "@pure active pattern %s performs an effect", false},
	ActiveNameConflict:    {StageChecker, SeverityError, "active pattern %s conflicts with %s", false},
	ActiveUndefined:       {StageChecker, SeverityError, "undefined active pattern %s", false},

	TypeDuplicate: {StageChecker, SeverityError, "%s", false},

	BackendPlanRejected: {StageBackend, SeverityError, "backend %s rejected the lowering plan: %s", false},
}

// Codes returns every registered code.
func Codes() []Code {
	out := make([]Code, 0, len(registry))
	for c := range registry {
		out = append(out, c)
	}
	return out
}

// Known reports whether code is registered.
func Known(code Code) bool {
	_, ok := registry[code]
	return ok
}

// DefaultSeverity returns the registered severity of code.
func DefaultSeverity(code Code) Severity {
	if e, ok := registry[code]; ok {
		return e.severity
	}
	return SeverityError
}

// StageOf returns the phase that emits code.
func StageOf(code Code) Stage {
	return registry[code].stage
}

// Mergeable reports whether diagnostics of this class are deduplicated by span.
func Mergeable(code Code) bool {
	return registry[code].mergeable
}
