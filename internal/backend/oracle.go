package backend

import (
	"github.com/funvibe/matchcore/internal/activepattern"
)

// ScriptedOracle answers probes from fixed tables. Labels and recognizer
// names missing from the tables fall back to the defaults. It records every
// recognizer invocation and is not safe for concurrent use.
type ScriptedOracle struct {
	Tests        map[string]bool
	DefaultTest  bool
	Actives      map[string]activepattern.Outcome
	Guards       map[int]bool
	DefaultGuard bool

	Invocations []Probe
}

// NewScriptedOracle returns an oracle under which every test, recognizer
// and guard succeeds.
func NewScriptedOracle() *ScriptedOracle {
	return &ScriptedOracle{
		Tests:        map[string]bool{},
		DefaultTest:  true,
		Actives:      map[string]activepattern.Outcome{},
		Guards:       map[int]bool{},
		DefaultGuard: true,
	}
}

// Miss makes every listed partial recognizer return None.
func (o *ScriptedOracle) Miss(names ...string) *ScriptedOracle {
	for _, n := range names {
		o.Actives[n] = activepattern.Outcome{Present: false}
	}
	return o
}

func (o *ScriptedOracle) Test(p Probe) bool {
	if v, ok := o.Tests[p.Label]; ok {
		return v
	}
	return o.DefaultTest
}

func (o *ScriptedOracle) Active(p Probe, name string, kind activepattern.Kind) activepattern.Outcome {
	o.Invocations = append(o.Invocations, p)
	if out, ok := o.Actives[name]; ok {
		return out
	}
	return activepattern.Outcome{Present: true}
}

func (o *ScriptedOracle) Guard(p Probe) bool {
	if v, ok := o.Guards[p.Arm]; ok {
		return v
	}
	return o.DefaultGuard
}
