package activepattern

import (
	"encoding/json"
	"testing"
)

func TestTotalNeverMisses(t *testing.T) {
	inv := Invoke("Always", Total)
	jump, err := inv.Resolve(Outcome{Present: false, Payload: 3})
	if err != nil {
		t.Fatal(err)
	}
	if jump != nil {
		t.Fatalf("total recognizer produced a jump: %v", *jump)
	}
	if inv.State() != Matched || inv.Payload() != 3 {
		t.Errorf("state = %s payload = %v", inv.State(), inv.Payload())
	}
}

func TestPartialMissJumpsToNextArm(t *testing.T) {
	inv := Invoke("IsFoo", Partial)
	jump, err := inv.Resolve(Outcome{Present: false})
	if err != nil {
		t.Fatal(err)
	}
	if jump == nil || *jump != NextArm {
		t.Fatalf("expected NextArm, got %v", jump)
	}
	if inv.State() != Missed {
		t.Errorf("state = %s", inv.State())
	}
	if _, err := inv.Resolve(Outcome{Present: true}); err == nil {
		t.Errorf("resolving twice should fail")
	}
}

func TestMissTargetOnlyForPartial(t *testing.T) {
	if MissTarget(Total) != nil {
		t.Errorf("total has a miss target")
	}
	if mt := MissTarget(Partial); mt == nil || *mt != NextArm {
		t.Errorf("partial miss target = %v", mt)
	}
	if HasMissPath(Total) || !HasMissPath(Partial) {
		t.Errorf("HasMissPath mismatch")
	}
	if CarrierFor(Partial) != OptionLike || CarrierFor(Total) != Value {
		t.Errorf("carrier mismatch")
	}
}

func TestJSONEncoding(t *testing.T) {
	type call struct {
		Kind       Kind        `json:"kind"`
		MissTarget *JumpTarget `json:"miss_target,omitempty"`
	}
	data, err := json.Marshal(call{Kind: Partial, MissTarget: MissTarget(Partial)})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"kind":"partial","miss_target":"next_arm"}` {
		t.Errorf("got %s", data)
	}
	var back call
	if err := json.Unmarshal([]byte(`{"kind":"total"}`), &back); err != nil {
		t.Fatal(err)
	}
	if back.Kind != Total || back.MissTarget != nil {
		t.Errorf("decoded %+v", back)
	}
	if err := json.Unmarshal([]byte(`{"kind":"sometimes"}`), &back); err == nil {
		t.Errorf("unknown kind accepted")
	}
}

func TestLabel(t *testing.T) {
	if Label("Even", Total) != "(|Even|)" || Label("Int", Partial) != "(|Int|_|)" {
		t.Errorf("labels: %s %s", Label("Even", Total), Label("Int", Partial))
	}
}
