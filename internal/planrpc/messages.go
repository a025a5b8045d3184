package planrpc

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"

	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/mir"
	"github.com/funvibe/matchcore/internal/token"
)

// PlanSummary is the per-plan header returned next to the full plans.
type PlanSummary struct {
	Owner      string
	TargetType string
	ArmCount   int
}

func summaryMessage(md *desc.MessageDescriptor, plan *mir.MatchLoweringPlan) (*dynamic.Message, error) {
	arms, err := safecast.Conv[uint32](plan.ArmCount)
	if err != nil {
		return nil, fmt.Errorf("plan %s: arm count: %w", plan.Owner, err)
	}
	msg := dynamic.NewMessage(md)
	msg.SetFieldByName("owner", plan.Owner)
	msg.SetFieldByName("target_type", plan.TargetType)
	msg.SetFieldByName("arm_count", arms)
	return msg, nil
}

func diagnosticMessage(md *desc.MessageDescriptor, d diagnostics.Diagnostic) (*dynamic.Message, error) {
	line, err := safecast.Conv[uint32](d.Span.Line)
	if err != nil {
		return nil, err
	}
	col, err := safecast.Conv[uint32](d.Span.Column)
	if err != nil {
		return nil, err
	}
	msg := dynamic.NewMessage(md)
	msg.SetFieldByName("code", string(d.Code))
	msg.SetFieldByName("severity", string(d.Severity))
	msg.SetFieldByName("message", d.Message)
	msg.SetFieldByName("file", d.File)
	msg.SetFieldByName("line", line)
	msg.SetFieldByName("column", col)
	return msg, nil
}

func addDiagnostics(msg *dynamic.Message, field string, ds []diagnostics.Diagnostic) error {
	md := msg.GetMessageDescriptor().FindFieldByName(field).GetMessageType()
	for _, d := range ds {
		dm, err := diagnosticMessage(md, d)
		if err != nil {
			return err
		}
		msg.AddRepeatedFieldByName(field, dm)
	}
	return nil
}

func readSummaries(msg *dynamic.Message) []PlanSummary {
	var out []PlanSummary
	for _, v := range repeated(msg, "plans") {
		out = append(out, PlanSummary{
			Owner:      stringField(v, "owner"),
			TargetType: stringField(v, "target_type"),
			ArmCount:   int(uint32Field(v, "arm_count")),
		})
	}
	return out
}

func readDiagnostics(msg *dynamic.Message) []diagnostics.Diagnostic {
	var out []diagnostics.Diagnostic
	for _, v := range repeated(msg, "diagnostics") {
		code := diagnostics.Code(stringField(v, "code"))
		out = append(out, diagnostics.Diagnostic{
			Code:     code,
			Severity: diagnostics.Severity(stringField(v, "severity")),
			Stage:    diagnostics.StageOf(code),
			Message:  stringField(v, "message"),
			File:     stringField(v, "file"),
			Span: token.Span{
				Line:   int(uint32Field(v, "line")),
				Column: int(uint32Field(v, "column")),
			},
		})
	}
	return out
}

func repeated(msg *dynamic.Message, field string) []*dynamic.Message {
	vals, _ := msg.GetFieldByName(field).([]interface{})
	out := make([]*dynamic.Message, 0, len(vals))
	for _, v := range vals {
		if m, ok := v.(*dynamic.Message); ok {
			out = append(out, m)
		}
	}
	return out
}

func stringField(msg *dynamic.Message, field string) string {
	s, _ := msg.GetFieldByName(field).(string)
	return s
}

func uint32Field(msg *dynamic.Message, field string) uint32 {
	n, _ := msg.GetFieldByName(field).(uint32)
	return n
}

func boolField(msg *dynamic.Message, field string) bool {
	b, _ := msg.GetFieldByName(field).(bool)
	return b
}
