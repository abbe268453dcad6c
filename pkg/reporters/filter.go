package reporters

import (
	"context"
	"io"
	"slices"
	"strings"
)

// Filter narrows which reports a sink receives.
type Filter struct {
	// OnlyFailures drops reports of successful executions.
	OnlyFailures bool `json:"only_failures" yaml:"only_failures"`
	// Requests limits delivery to these catalog ids. Empty means all.
	Requests []string `json:"requests" yaml:"requests"`
}

// Accepts reports whether r passes the filter.
func (f Filter) Accepts(r Report) bool {
	if f.OnlyFailures && r.Outcome != OutcomeFailure {
		return false
	}
	return len(f.Requests) == 0 || slices.Contains(f.Requests, r.Execution.RequestID)
}

func (f Filter) normalize() Filter {
	var ids []string
	for _, id := range f.Requests {
		if id = strings.TrimSpace(id); id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	f.Requests = ids
	return f
}

func (f Filter) isZero() bool { return !f.OnlyFailures && len(f.Requests) == 0 }

// filtered applies a Filter in front of a Reporter.
type filtered struct {
	Reporter
	filter Filter
}

// Filtered wraps rep so that Fanout only hands it reports f accepts.
func Filtered(rep Reporter, f Filter) Reporter {
	if rep == nil || f.isZero() {
		return rep
	}
	return &filtered{Reporter: rep, filter: f}
}

func (f *filtered) accepts(r Report) bool { return f.filter.Accepts(r) }

// Report delivers r when the filter accepts it and drops it otherwise.
func (f *filtered) Report(ctx context.Context, r Report) error {
	if !f.filter.Accepts(r) {
		return nil
	}
	return f.Reporter.Report(ctx, r)
}

// Close releases the wrapped reporter when it holds resources.
func (f *filtered) Close() error {
	if c, ok := f.Reporter.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
