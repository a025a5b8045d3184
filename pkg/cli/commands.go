package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/funvibe/matchcore/internal/backend"
	"github.com/funvibe/matchcore/internal/config"
	"github.com/funvibe/matchcore/internal/pipeline"
	"github.com/funvibe/matchcore/internal/planstore"
	"github.com/funvibe/matchcore/internal/prettyprinter"
	"github.com/funvibe/matchcore/internal/wire"
)

func (a *app) check(ctx context.Context, args []string) error {
	var c commonFlags
	fs := a.flagSet("check", &c)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: matchc check <file|dir>...")
	}
	cfg, err := a.setup(&c)
	if err != nil {
		return err
	}
	units, err := collectSources(cfg, fs.Args())
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	results := pipeline.RunUnits(ctx, units, cfg.Workers, func(u pipeline.Unit) (*pipeline.Pipeline, *pipeline.PipelineContext) {
		return backend.NewPipeline(stages(st)...), pipeline.NewContext(u.FilePath, u.SourceCode, cfg)
	})
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.report(results...); err != nil {
		return err
	}
	if len(units) > 1 {
		fmt.Fprintf(a.stdout, "%d files checked\n", len(units))
	}
	return nil
}

func (a *app) lower(ctx context.Context, args []string) error {
	var c commonFlags
	fs := a.flagSet("lower", &c)
	asJSON := fs.Bool("json", false, "print the wire format")
	module := fs.Bool("module", false, "with -json, print the whole lowered module")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: matchc lower [-json] <file>")
	}
	cfg, err := a.setup(&c)
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	pctx, err := a.compileOne(cfg, fs.Arg(0), stages(st)...)
	if err != nil {
		return err
	}
	reportErr := a.report(pctx)
	switch {
	case *asJSON && *module:
		if pctx.Mir == nil {
			return reportErr
		}
		if err := wire.WriteModule(a.stdout, pctx.Mir, true); err != nil {
			return err
		}
	case *asJSON:
		data, err := wire.EncodePlans(wire.NewPlanSet(pctx.FilePath, pctx.RunID, pctx.Plans()), true)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, string(data))
	default:
		fmt.Fprint(a.stdout, prettyprinter.PrintPlans(pctx.Plans()))
	}
	return reportErr
}

func (a *app) trace(ctx context.Context, args []string) error {
	var c commonFlags
	fs := a.flagSet("trace", &c)
	miss := fs.String("miss", "", "comma-separated partial patterns that return None")
	failTests := fs.String("fail", "", "comma-separated node labels whose test fails")
	failGuards := fs.Bool("fail-guards", false, "make every guard fail")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: matchc trace [-miss N,...] <file>")
	}
	cfg, err := a.setup(&c)
	if err != nil {
		return err
	}

	oracle := backend.NewScriptedOracle().Miss(splitList(*miss)...)
	for _, label := range splitList(*failTests) {
		oracle.Tests[label] = false
	}
	oracle.DefaultGuard = !*failGuards
	exec := backend.NewExecutionProcessor(backend.NewTraceBackend(oracle))

	pctx, err := a.compileOne(cfg, fs.Arg(0), exec)
	if err != nil {
		return err
	}
	reportErr := a.report(pctx)
	for i, tr := range exec.Traces {
		if i > 0 {
			fmt.Fprintln(a.stdout)
		}
		fmt.Fprint(a.stdout, tr.String())
		if tr.Selected > 0 {
			fmt.Fprintf(a.stdout, "  => arm %d\n", tr.Selected)
		} else {
			fmt.Fprintln(a.stdout, "  => no arm")
		}
	}
	return reportErr
}

func (a *app) runs(ctx context.Context, args []string) error {
	var c commonFlags
	fs := a.flagSet("runs", &c)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: matchc runs <file>")
	}
	cfg, err := a.setup(&c)
	if err != nil {
		return err
	}
	if cfg.Store == "" {
		cfg.Store = config.DefaultStorePath
	}
	st, err := planstore.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	infos, err := st.Runs(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintf(a.stdout, "no runs recorded for %s\n", fs.Arg(0))
		return nil
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tSCHEMA\tSTATUS")
	for _, info := range infos {
		status := "ok"
		if info.HasErrors {
			status = "errors"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.ID, info.CreatedAt.Format(time.RFC3339), info.SchemaVersion, status)
	}
	return tw.Flush()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
