package planstore_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/funvibe/matchcore/internal/analyzer"
	"github.com/funvibe/matchcore/internal/backend"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/lexer"
	"github.com/funvibe/matchcore/internal/parser"
	"github.com/funvibe/matchcore/internal/pipeline"
	"github.com/funvibe/matchcore/internal/planstore"
)

func openStore(t *testing.T) *planstore.Store {
	t.Helper()
	s, err := planstore.Open(context.Background(), filepath.Join(t.TempDir(), "plans.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func run(t *testing.T, s *planstore.Store, src string) *pipeline.PipelineContext {
	t.Helper()
	ctx := pipeline.NewContext("demo.mc", src, nil)
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
		&backend.LoweringProcessor{},
		&planstore.StoreProcessor{Store: s},
	).Run(ctx)
}

func TestStoreProcessorSavesRun(t *testing.T) {
	s := openStore(t)
	ctx := run(t, s, "fn f(n: Int) -> Int = match n with | _ -> 0 | 1 -> 1\nfn g(b: Bool) -> Int = match b with | true -> 1")

	info, err := s.LatestRun(context.Background(), "demo.mc")
	if err != nil {
		t.Fatalf("latest run: %v", err)
	}
	if info.ID != ctx.RunID {
		t.Errorf("expected run %s, got %s", ctx.RunID, info.ID)
	}
	if !info.HasErrors {
		t.Error("expected the run to be marked as failing")
	}

	plans, err := s.Plans(context.Background(), info.ID)
	if err != nil {
		t.Fatalf("plans: %v", err)
	}
	if !reflect.DeepEqual(plans, ctx.Plans()) {
		t.Errorf("plans differ:\n%+v\n%+v", plans, ctx.Plans())
	}

	diags, err := s.Diagnostics(context.Background(), info.ID)
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if !reflect.DeepEqual(diags, ctx.Report()) {
		t.Errorf("diagnostics differ:\n%+v\n%+v", diags, ctx.Report())
	}
	if len(diagnostics.Filter(diags, diagnostics.UnreachableArm)) != 1 {
		t.Errorf("expected one unreachable arm, got %v", diags)
	}
}

func TestSaveRunAssignsID(t *testing.T) {
	s := openStore(t)
	id, err := s.SaveRun(context.Background(), planstore.Run{File: "a.mc"})
	if err != nil {
		t.Fatal(err)
	}
	if len(id) != 36 {
		t.Errorf("expected a UUID, got %q", id)
	}
	plans, err := s.Plans(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 0 {
		t.Errorf("expected no plans, got %d", len(plans))
	}
}

func TestLatestRunOrdering(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)
	for i, id := range []string{"first", "second", "third"} {
		if _, err := s.SaveRun(ctx, planstore.Run{ID: id, File: "a.mc", CreatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.SaveRun(ctx, planstore.Run{ID: "other", File: "b.mc", CreatedAt: base.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}

	info, err := s.LatestRun(ctx, "a.mc")
	if err != nil {
		t.Fatal(err)
	}
	if info.ID != "third" {
		t.Errorf("expected third, got %s", info.ID)
	}
	runs, err := s.Runs(ctx, "a.mc")
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 || runs[2].ID != "first" {
		t.Errorf("unexpected runs: %+v", runs)
	}
	if _, err := s.LatestRun(ctx, "missing.mc"); !errors.Is(err, planstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateRunRejected(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	if _, err := s.SaveRun(ctx, planstore.Run{ID: "same", File: "a.mc"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveRun(ctx, planstore.Run{ID: "same", File: "a.mc"}); err == nil {
		t.Fatal("expected duplicate run id to fail")
	}
}
