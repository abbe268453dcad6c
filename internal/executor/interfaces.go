package executor

import (
	"context"

	"github.com/classly-hq/classly-networking/internal/domain"
	"github.com/classly-hq/classly-networking/pkg/reporters"
)

// Recorder persists execution outcomes.
type Recorder interface {
	Record(exec domain.Execution) error
}

// OutcomeReporter forwards execution outcomes downstream.
type OutcomeReporter interface {
	Report(ctx context.Context, r reporters.Report) (int, error)
}
