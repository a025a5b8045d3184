// Package mir is the intermediate form handed to backends: flattened
// expressions with stable ids, lowered patterns, and per-match lowering
// plans that summarize how each arm can fail.
package mir

import (
	"github.com/funvibe/matchcore/internal/activepattern"
	"github.com/funvibe/matchcore/internal/token"
)

// SchemaVersion is bumped whenever a field changes meaning.
const SchemaVersion = "matchcore.mir/1"

type ExprID uint32

// Module is the lowered form of one source file.
type Module struct {
	SchemaVersion  string              `json:"schema_version"`
	File           string              `json:"file,omitempty"`
	Functions      []Function          `json:"functions"`
	ActivePatterns []ActivePattern     `json:"active_patterns"`
	MatchLowerings []MatchLoweringPlan `json:"match_lowerings"`
}

type Param struct {
	Name string `json:"name"`
	Type string `json:"ty"`
}

type Function struct {
	Name       string     `json:"name"`
	Span       token.Span `json:"span"`
	Params     []Param    `json:"params"`
	ReturnType string     `json:"return_type"`
	Body       ExprID     `json:"body"`
	Exprs      []Expr     `json:"exprs"`
}

// ActivePattern is a lowered recognizer declaration.
type ActivePattern struct {
	Name          string                      `json:"name"`
	Span          token.Span                  `json:"span"`
	Kind          activepattern.Kind          `json:"kind"`
	ReturnCarrier activepattern.ReturnCarrier `json:"return_carrier"`
	HasMissPath   bool                        `json:"has_miss_path"`
	Params        []Param                     `json:"params"`
	Body          ExprID                      `json:"body"`
	Exprs         []Expr                      `json:"exprs"`
}

type ExprKind string

const (
	ExprIdentifier  ExprKind = "identifier"
	ExprLiteral     ExprKind = "literal"
	ExprConstructor ExprKind = "constructor"
	ExprCall        ExprKind = "call"
	ExprUnary       ExprKind = "unary"
	ExprBinary      ExprKind = "binary"
	ExprIfElse      ExprKind = "if_else"
	ExprMatch       ExprKind = "match"
	ExprBlock       ExprKind = "block"
	ExprPerform     ExprKind = "perform_call"
	ExprTuple       ExprKind = "tuple"
	ExprArray       ExprKind = "array"
	ExprRecord      ExprKind = "record"
	ExprFieldAccess ExprKind = "field_access"
)

// Expr is one node of a function's flattened expression table. Children
// are referenced by id and always have smaller ids than their parent.
type Expr struct {
	ID   ExprID     `json:"id"`
	Span token.Span `json:"span"`
	Type string     `json:"ty"`
	Kind ExprKind   `json:"kind"`

	Name       string   `json:"name,omitempty"`
	Literal    *Literal `json:"literal,omitempty"`
	Operator   string   `json:"operator,omitempty"`
	Callee     *ExprID  `json:"callee,omitempty"`
	Args       []ExprID `json:"args,omitempty"`
	Keys       []string `json:"keys,omitempty"`
	Statements []Let    `json:"statements,omitempty"`
	Tail       *ExprID  `json:"tail,omitempty"`
	Condition  *ExprID  `json:"condition,omitempty"`
	Then       *ExprID  `json:"then_branch,omitempty"`
	Else       *ExprID  `json:"else_branch,omitempty"`

	Target   *ExprID            `json:"target,omitempty"`
	Arms     []MatchArm         `json:"arms,omitempty"`
	Lowering *MatchLoweringPlan `json:"lowering,omitempty"`
}

type Let struct {
	Name  string `json:"name"`
	Value ExprID `json:"value"`
}

// MatchArm is an arm as the backend executes it. The alias is bound before
// the guard runs.
type MatchArm struct {
	Pattern *Pattern `json:"pattern"`
	Guard   *ExprID  `json:"guard,omitempty"`
	Alias   string   `json:"alias,omitempty"`
	Body    ExprID   `json:"body"`
}

// MatchLoweringPlan is the advisory per-match summary consumed by backends.
type MatchLoweringPlan struct {
	Owner      string             `json:"owner"`
	Span       token.Span         `json:"span"`
	TargetType string             `json:"target_type"`
	ArmCount   int                `json:"arm_count"`
	Arms       []MatchArmLowering `json:"arms"`
}

type MatchArmLowering struct {
	Pattern  PatternLowering `json:"pattern"`
	HasGuard bool            `json:"has_guard"`
	Alias    string          `json:"alias,omitempty"`
}

// PatternLowering describes one pattern node. AlwaysMatches and MissOnNone
// are never both set.
type PatternLowering struct {
	Label         string            `json:"label"`
	MissOnNone    bool              `json:"miss_on_none"`
	AlwaysMatches bool              `json:"always_matches"`
	Children      []PatternLowering `json:"children,omitempty"`
}
