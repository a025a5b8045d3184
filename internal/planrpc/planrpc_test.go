package planrpc_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/planrpc"
	"github.com/funvibe/matchcore/internal/planstore"
)

const source = `pattern (|Even|_|)(n: Int) = if n % 2 == 0 then Some(n) else None

fn classify(v: Int) -> String = match v with
| (|Even|_|) _ -> "even"
| _ -> "odd"

fn flag(b: Bool) -> Int = match b with
| true -> 1
`

func startServer(t *testing.T, opts ...planrpc.Option) *planrpc.Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := planrpc.NewServer(nil, logger, opts...)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.Serve(lis)
	t.Cleanup(srv.GracefulStop)

	client, err := planrpc.Dial(lis.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestLower(t *testing.T) {
	client := startServer(t)
	res, err := client.Lower(testContext(t), "demo.mc", source)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if res.RunID == "" || res.Plans.RunID != res.RunID {
		t.Errorf("run id mismatch: response %q, plan set %q", res.RunID, res.Plans.RunID)
	}
	if res.Plans.File != "demo.mc" {
		t.Errorf("plan set file = %q", res.Plans.File)
	}
	if len(res.Plans.Plans) != len(res.Summaries) {
		t.Fatalf("%d plans but %d summaries", len(res.Plans.Plans), len(res.Summaries))
	}
	for i, s := range res.Summaries {
		p := res.Plans.Plans[i]
		if s.Owner != p.Owner || s.TargetType != p.TargetType || s.ArmCount != p.ArmCount {
			t.Errorf("summary %d = %+v, plan header = %s %s %d", i, s, p.Owner, p.TargetType, p.ArmCount)
		}
	}
	first := res.Plans.Plans[0]
	if first.Owner != "fn classify" || first.ArmCount != 2 {
		t.Errorf("first plan = %s with %d arms", first.Owner, first.ArmCount)
	}
	if got := first.Arms[0].Pattern.Label; got != "active(|Even|_|)" {
		t.Errorf("first arm label = %q", got)
	}
}

func TestCheckReportsMissingCase(t *testing.T) {
	client := startServer(t)
	res, err := client.Check(testContext(t), "demo.mc", source)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	missing := diagnostics.Filter(res.Diagnostics, diagnostics.ExhaustivenessMissing)
	if len(missing) != 1 {
		t.Fatalf("expected one exhaustiveness diagnostic, got %v", res.Diagnostics)
	}
	d := missing[0]
	if d.File != "demo.mc" || d.Span.Line == 0 {
		t.Errorf("diagnostic location = %s:%d", d.File, d.Span.Line)
	}
	if d.Stage != diagnostics.StageOf(diagnostics.ExhaustivenessMissing) {
		t.Errorf("stage = %q", d.Stage)
	}
	if res.OK != (diagnostics.Count(res.Diagnostics, diagnostics.SeverityError) == 0) {
		t.Errorf("ok = %v disagrees with diagnostics %v", res.OK, res.Diagnostics)
	}
}

func TestCheckCleanSource(t *testing.T) {
	client := startServer(t)
	res, err := client.Check(testContext(t), "", "fn f(b: Bool) -> Int = match b with | true -> 1 | false -> 0")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.OK || len(res.Diagnostics) != 0 {
		t.Errorf("expected a clean check, got ok=%v %v", res.OK, res.Diagnostics)
	}
}

func TestServerRecordsRuns(t *testing.T) {
	st, err := planstore.Open(context.Background(), filepath.Join(t.TempDir(), "plans.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	client := startServer(t, planrpc.WithStore(st))
	ctx := testContext(t)
	res, err := client.Lower(ctx, "demo.mc", source)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	plans, err := st.Plans(ctx, res.RunID)
	if err != nil {
		t.Fatalf("stored plans: %v", err)
	}
	if len(plans) != len(res.Plans.Plans) {
		t.Errorf("stored %d plans, served %d", len(plans), len(res.Plans.Plans))
	}
}

func TestFileDescriptorProto(t *testing.T) {
	fd, err := planrpc.FileDescriptorProto()
	if err != nil {
		t.Fatalf("descriptor: %v", err)
	}
	if fd.GetPackage() != "matchcore.plan.v1" {
		t.Errorf("package = %q", fd.GetPackage())
	}
	if len(fd.GetService()) != 1 || len(fd.GetService()[0].GetMethod()) != 2 {
		t.Errorf("unexpected services: %v", fd.GetService())
	}
}
