// Package planrpc serves lowering over gRPC. The service schema is parsed
// at startup from the embedded proto source, and messages are built with
// dynamic messages, so no generated code is involved.
package planrpc

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/protobuf/types/descriptorpb"
)

const (
	protoFile   = "matchcore/plan/v1/plan.proto"
	ServiceName = "matchcore.plan.v1.PlanService"
)

const protoSource = `syntax = "proto3";

package matchcore.plan.v1;

message Diagnostic {
  string code = 1;
  string severity = 2;
  string message = 3;
  string file = 4;
  uint32 line = 5;
  uint32 column = 6;
}

message PlanSummary {
  string owner = 1;
  string target_type = 2;
  uint32 arm_count = 3;
}

message LowerRequest {
  string file = 1;
  string source = 2;
  bool indent = 3;
}

message LowerResponse {
  string run_id = 1;
  string plans_json = 2;
  repeated PlanSummary plans = 3;
  repeated Diagnostic diagnostics = 4;
}

message CheckRequest {
  string file = 1;
  string source = 2;
}

message CheckResponse {
  string run_id = 1;
  bool ok = 2;
  repeated Diagnostic diagnostics = 3;
}

service PlanService {
  rpc Lower(LowerRequest) returns (LowerResponse);
  rpc Check(CheckRequest) returns (CheckResponse);
}
`

type schema struct {
	file    *desc.FileDescriptor
	service *desc.ServiceDescriptor
	lower   *desc.MethodDescriptor
	check   *desc.MethodDescriptor
}

func loadSchema() (*schema, error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{protoFile: protoSource}),
	}
	fds, err := parser.ParseFiles(protoFile)
	if err != nil {
		return nil, fmt.Errorf("parsing plan service schema: %w", err)
	}
	s := &schema{file: fds[0]}
	if s.service = s.file.FindService(ServiceName); s.service == nil {
		return nil, fmt.Errorf("service %s not found in schema", ServiceName)
	}
	s.lower = s.service.FindMethodByName("Lower")
	s.check = s.service.FindMethodByName("Check")
	if s.lower == nil || s.check == nil {
		return nil, fmt.Errorf("service %s is missing methods", ServiceName)
	}
	return s, nil
}

// FileDescriptorProto returns the service schema, for reflection clients
// and generated-stub consumers.
func FileDescriptorProto() (*descriptorpb.FileDescriptorProto, error) {
	s, err := loadSchema()
	if err != nil {
		return nil, err
	}
	return s.file.AsFileDescriptorProto(), nil
}

func methodPath(md *desc.MethodDescriptor) string {
	return "/" + ServiceName + "/" + md.GetName()
}
