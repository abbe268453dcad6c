package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/classly-hq/classly-networking/internal/domain"
	"github.com/classly-hq/classly-networking/internal/logger"
	"github.com/classly-hq/classly-networking/pkg/catalog"
	"github.com/classly-hq/classly-networking/pkg/network"
	"github.com/classly-hq/classly-networking/pkg/reporters"
	"golang.org/x/sync/errgroup"
)

// Service runs catalog entries through a network manager, journals every
// outcome and hands it to the reporters.
type Service struct {
	manager     *network.Manager
	recorder    Recorder
	reporter    OutcomeReporter
	concurrency int
	log         logger.Logger
	now         func() time.Time
}

// NewService wires an executor. recorder and reporter may be nil.
func NewService(m *network.Manager, rec Recorder, rep OutcomeReporter, concurrency int, log logger.Logger) *Service {
	if m == nil {
		m = network.NewManager(nil)
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		manager:     m,
		recorder:    rec,
		reporter:    rep,
		concurrency: concurrency,
		log:         log,
		now:         time.Now,
	}
}

// Run executes entries with at most s.concurrency calls in flight. The
// returned executions follow the order of entries; entries not started before
// ctx was cancelled are left out. The error joins every failed request
// together with journal and reporting failures.
func (s *Service) Run(ctx context.Context, runID string, entries []catalog.Entry) ([]domain.Execution, error) {
	if s == nil || s.manager == nil {
		return nil, fmt.Errorf("executor service is not initialized")
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no requests selected for execution")
	}

	execs := make([]domain.Execution, len(entries))
	errs := make([]error, len(entries))
	ran := make([]bool, len(entries))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, e := range entries {
		g.Go(func() error {
			// Entries still queued when the run is cancelled are skipped,
			// not journaled as failures.
			if ctx.Err() != nil {
				return nil
			}
			ran[i] = true
			execs[i], errs[i] = s.runEntry(ctx, runID, e)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.Execution, 0, len(entries))
	for i := range entries {
		if ran[i] {
			out = append(out, execs[i])
		}
	}
	if skipped := len(entries) - len(out); skipped > 0 {
		s.log.WarnObj("run cancelled", "run_cancelled", map[string]any{
			"run_id":  runID,
			"skipped": skipped,
		})
		errs = append(errs, fmt.Errorf("run %s: %d requests skipped: %w", runID, skipped, ctx.Err()))
	}

	return out, errors.Join(errs...)
}

func (s *Service) runEntry(ctx context.Context, runID string, e catalog.Entry) (domain.Execution, error) {
	start := s.now()
	raw, callErr := catalog.Run(ctx, s.manager, e)

	exec := domain.Execution{
		ID:        runID + "/" + e.ID(),
		RequestID: e.ID(),
		Method:    e.HTTPMethod().String(),
		URL:       network.CompleteURL(e),
		Elapsed:   s.now().Sub(start),
		StartedAt: start.UTC(),
		Response:  raw,
	}

	var errs []error
	if callErr != nil {
		exec.ErrorKind = network.KindOf(callErr).String()
		exec.Error = callErr.Error()
		if code, ok := network.StatusCode(callErr); ok {
			exec.StatusCode = code
		}
		s.log.WarnObj("request failed", "request_error", map[string]any{
			"request_id": exec.RequestID,
			"error_kind": exec.ErrorKind,
			"error":      exec.Error,
		})
		errs = append(errs, fmt.Errorf("request %s: %w", e.ID(), callErr))
	} else {
		s.log.InfoObj("request completed", "request_result", map[string]any{
			"request_id": exec.RequestID,
			"elapsed_ms": exec.Elapsed.Milliseconds(),
		})
	}

	if s.recorder != nil {
		if err := s.recorder.Record(exec); err != nil {
			s.log.ErrorObj("journal record failed", "journal_error", map[string]any{
				"execution_id": exec.ID,
				"error":        err.Error(),
			})
			errs = append(errs, fmt.Errorf("record %s: %w", exec.ID, err))
		}
	}

	if s.reporter != nil {
		if _, err := s.reporter.Report(ctx, reporters.NewReport(runID, exec)); err != nil {
			s.log.ErrorObj("report delivery failed", "report_error", map[string]any{
				"execution_id": exec.ID,
				"error":        err.Error(),
			})
			errs = append(errs, fmt.Errorf("report %s: %w", exec.ID, err))
		}
	}

	return exec, errors.Join(errs...)
}
