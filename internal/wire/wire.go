// Package wire is the JSON adapter between the lowering pipeline and
// backends. Encoders validate before writing and decoders validate after
// reading, so a backend never sees a plan that breaks the wire contract.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/funvibe/matchcore/internal/mir"
)

// PlanSet is the document exchanged for one compilation unit.
type PlanSet struct {
	SchemaVersion string                  `json:"schema_version"`
	File          string                  `json:"file,omitempty"`
	RunID         string                  `json:"run_id,omitempty"`
	Plans         []mir.MatchLoweringPlan `json:"plans"`
}

// NewPlanSet wraps plans with the current schema version.
func NewPlanSet(file, runID string, plans []mir.MatchLoweringPlan) PlanSet {
	if plans == nil {
		plans = []mir.MatchLoweringPlan{}
	}
	return PlanSet{SchemaVersion: mir.SchemaVersion, File: file, RunID: runID, Plans: plans}
}

func marshal(v interface{}, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// EncodePlans validates and encodes a plan set.
func EncodePlans(set PlanSet, indent bool) ([]byte, error) {
	for i := range set.Plans {
		if err := ValidatePlan(&set.Plans[i]); err != nil {
			return nil, fmt.Errorf("plan %d: %w", i, err)
		}
	}
	return marshal(set, indent)
}

// DecodePlans parses and validates a plan set.
func DecodePlans(data []byte) (PlanSet, error) {
	var set PlanSet
	if err := strictUnmarshal(data, &set); err != nil {
		return PlanSet{}, fmt.Errorf("decoding plan set: %w", err)
	}
	if set.SchemaVersion != mir.SchemaVersion {
		return PlanSet{}, fmt.Errorf("unsupported schema version %q", set.SchemaVersion)
	}
	for i := range set.Plans {
		if err := ValidatePlan(&set.Plans[i]); err != nil {
			return PlanSet{}, fmt.Errorf("plan %d: %w", i, err)
		}
	}
	return set, nil
}

// EncodePlan encodes a single plan, as stored per row by the plan store.
func EncodePlan(plan *mir.MatchLoweringPlan) ([]byte, error) {
	if err := ValidatePlan(plan); err != nil {
		return nil, err
	}
	return json.Marshal(plan)
}

func DecodePlan(data []byte) (mir.MatchLoweringPlan, error) {
	var plan mir.MatchLoweringPlan
	if err := strictUnmarshal(data, &plan); err != nil {
		return plan, fmt.Errorf("decoding plan: %w", err)
	}
	return plan, ValidatePlan(&plan)
}

// EncodeModule validates and encodes a full lowered module.
func EncodeModule(mod *mir.Module, indent bool) ([]byte, error) {
	if err := ValidateModule(mod); err != nil {
		return nil, err
	}
	return marshal(mod, indent)
}

func DecodeModule(data []byte) (*mir.Module, error) {
	var mod mir.Module
	if err := strictUnmarshal(data, &mod); err != nil {
		return nil, fmt.Errorf("decoding module: %w", err)
	}
	if err := ValidateModule(&mod); err != nil {
		return nil, err
	}
	return &mod, nil
}

// WriteModule encodes mod to w followed by a newline.
func WriteModule(w io.Writer, mod *mir.Module, indent bool) error {
	data, err := EncodeModule(mod, indent)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func strictUnmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
