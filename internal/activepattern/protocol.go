// Package activepattern describes how an active pattern recognizer is
// invoked and how its result drives control flow. The checker, the MIR
// builder and the backend consumer all share these definitions.
package activepattern

import (
	"encoding/json"
	"fmt"
)

// Kind distinguishes recognizers that may miss from those that cannot.
type Kind int

const (
	Total Kind = iota
	Partial
)

func KindOf(isPartial bool) Kind {
	if isPartial {
		return Partial
	}
	return Total
}

func (k Kind) String() string {
	if k == Partial {
		return "partial"
	}
	return "total"
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "partial":
		*k = Partial
	case "total":
		*k = Total
	default:
		return fmt.Errorf("unknown active pattern kind %q", s)
	}
	return nil
}

// JumpTarget is where control goes after a miss. New targets are added as
// new values; they are never inferred from labels.
type JumpTarget int

const (
	// NextArm resumes with the next arm in source order against the
	// already evaluated match target.
	NextArm JumpTarget = iota + 1
)

func (j JumpTarget) String() string {
	switch j {
	case NextArm:
		return "next_arm"
	}
	return fmt.Sprintf("JumpTarget(%d)", int(j))
}

func (j JumpTarget) MarshalJSON() ([]byte, error) {
	if j != NextArm {
		return nil, fmt.Errorf("cannot encode jump target %d", int(j))
	}
	return json.Marshal(j.String())
}

func (j *JumpTarget) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != "next_arm" {
		return fmt.Errorf("unknown jump target %q", s)
	}
	*j = NextArm
	return nil
}

// MissTarget returns the jump taken when a recognizer of kind k misses,
// or nil for total recognizers.
func MissTarget(k Kind) *JumpTarget {
	if k != Partial {
		return nil
	}
	t := NextArm
	return &t
}

// HasMissPath reports whether a recognizer of kind k exposes a miss edge.
func HasMissPath(k Kind) bool { return k == Partial }

// ReturnCarrier is the shape a recognizer body must produce.
type ReturnCarrier int

const (
	// Value is a bare payload; used by total recognizers.
	Value ReturnCarrier = iota
	// OptionLike is Option<payload>; Some matches and None misses.
	OptionLike
)

func CarrierFor(k Kind) ReturnCarrier {
	if k == Partial {
		return OptionLike
	}
	return Value
}

func (c ReturnCarrier) String() string {
	if c == OptionLike {
		return "Option<payload>"
	}
	return "payload"
}

func (c ReturnCarrier) MarshalJSON() ([]byte, error) {
	if c == OptionLike {
		return json.Marshal("option_like")
	}
	return json.Marshal("value")
}

func (c *ReturnCarrier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "option_like":
		*c = OptionLike
	case "value":
		*c = Value
	default:
		return fmt.Errorf("unknown return carrier %q", s)
	}
	return nil
}

// State is a step of a single recognizer invocation.
type State int

const (
	Invoked State = iota
	Matched
	Missed
)

func (s State) String() string {
	switch s {
	case Invoked:
		return "invoked"
	case Matched:
		return "matched"
	case Missed:
		return "missed"
	}
	return "unknown"
}

// Outcome is the observed result of one invocation. Present is only
// meaningful for partial recognizers.
type Outcome struct {
	Present bool
	Payload interface{}
}

// Invocation tracks one call of a recognizer through Invoked → Matched|Missed.
type Invocation struct {
	Name  string
	Kind  Kind
	state State
	value interface{}
}

func Invoke(name string, kind Kind) *Invocation {
	return &Invocation{Name: name, Kind: kind, state: Invoked}
}

func (inv *Invocation) State() State { return inv.state }

func (inv *Invocation) Payload() interface{} { return inv.value }

// Resolve moves the invocation out of Invoked. A total recognizer always
// matches whatever the outcome says. It returns the jump to take, or nil
// when the payload is bound and matching continues.
func (inv *Invocation) Resolve(out Outcome) (*JumpTarget, error) {
	if inv.state != Invoked {
		return nil, fmt.Errorf("active pattern %s already %s", inv.Name, inv.state)
	}
	if inv.Kind == Total || out.Present {
		inv.state = Matched
		inv.value = out.Payload
		return nil, nil
	}
	inv.state = Missed
	return MissTarget(inv.Kind), nil
}

// Label renders the banana-clip form used in plans and messages.
func Label(name string, k Kind) string {
	if k == Partial {
		return "(|" + name + "|_|)"
	}
	return "(|" + name + "|)"
}
