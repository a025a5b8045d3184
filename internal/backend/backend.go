// Package backend holds the consumer side of lowered matches: the Backend
// contract, a reference consumer that traces the control steps a code
// generator would emit, and the pipeline stages that produce and hand over
// the lowered module.
package backend

import (
	"github.com/funvibe/matchcore/internal/pipeline"
)

// Backend consumes the lowered module of a compilation unit.
type Backend interface {
	// Run consumes ctx.Mir and returns one trace per lowering plan.
	Run(ctx *pipeline.PipelineContext) ([]Trace, error)

	// Name returns the backend name for display
	Name() string
}
