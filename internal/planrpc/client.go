package planrpc

import (
	"context"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/wire"
)

// LowerResult is the decoded Lower response.
type LowerResult struct {
	RunID       string
	Plans       wire.PlanSet
	Summaries   []PlanSummary
	Diagnostics []diagnostics.Diagnostic
}

// CheckResult is the decoded Check response.
type CheckResult struct {
	RunID       string
	OK          bool
	Diagnostics []diagnostics.Diagnostic
}

type Client struct {
	conn   *grpc.ClientConn
	schema *schema
}

// Dial connects to a plan service at target without transport security.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	sch, err := loadSchema()
	if err != nil {
		return nil, err
	}
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", target, err)
	}
	return &Client{conn: conn, schema: sch}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) invoke(ctx context.Context, md *desc.MethodDescriptor, fields map[string]interface{}) (*dynamic.Message, error) {
	req := dynamic.NewMessage(md.GetInputType())
	for name, v := range fields {
		if err := req.TrySetFieldByName(name, v); err != nil {
			return nil, fmt.Errorf("building %s request: %w", md.GetName(), err)
		}
	}
	resp := dynamic.NewMessage(md.GetOutputType())
	if err := c.conn.Invoke(ctx, methodPath(md), req, resp); err != nil {
		return nil, fmt.Errorf("%s: %w", md.GetName(), err)
	}
	return resp, nil
}

// Lower asks the service to lower source and decodes the returned plans.
func (c *Client) Lower(ctx context.Context, file, source string) (*LowerResult, error) {
	resp, err := c.invoke(ctx, c.schema.lower, map[string]interface{}{
		"file":   file,
		"source": source,
	})
	if err != nil {
		return nil, err
	}
	set, err := wire.DecodePlans([]byte(stringField(resp, "plans_json")))
	if err != nil {
		return nil, fmt.Errorf("decoding plans: %w", err)
	}
	return &LowerResult{
		RunID:       stringField(resp, "run_id"),
		Plans:       set,
		Summaries:   readSummaries(resp),
		Diagnostics: readDiagnostics(resp),
	}, nil
}

// Check asks the service for diagnostics only.
func (c *Client) Check(ctx context.Context, file, source string) (*CheckResult, error) {
	resp, err := c.invoke(ctx, c.schema.check, map[string]interface{}{
		"file":   file,
		"source": source,
	})
	if err != nil {
		return nil, err
	}
	return &CheckResult{
		RunID:       stringField(resp, "run_id"),
		OK:          boolField(resp, "ok"),
		Diagnostics: readDiagnostics(resp),
	}, nil
}
