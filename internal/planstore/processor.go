package planstore

import (
	"context"
	"log/slog"

	"github.com/funvibe/matchcore/internal/pipeline"
)

// StoreProcessor records the unit's plans and reported diagnostics under
// the pipeline run id. A store failure is logged and does not stop the
// pipeline.
type StoreProcessor struct {
	Store *Store
}

func (sp *StoreProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if sp.Store == nil || ctx.Mir == nil {
		return ctx
	}
	_, err := sp.Store.SaveRun(context.Background(), Run{
		ID:          ctx.RunID,
		File:        ctx.FilePath,
		Plans:       ctx.Plans(),
		Diagnostics: ctx.Report(),
	})
	if err != nil {
		slog.Warn("plan store: run not saved",
			slog.String("file", ctx.FilePath),
			slog.String("run", ctx.RunID),
			slog.Any("error", err))
	}
	return ctx
}
