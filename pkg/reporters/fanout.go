package reporters

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// Fanout delivers each report to every reporter whose filter accepts it.
// Deliveries to different sinks run concurrently.
type Fanout struct {
	reporters []Reporter
}

// NewFanout builds a Fanout over reps, skipping nil entries.
func NewFanout(reps []Reporter) *Fanout {
	f := &Fanout{}
	for _, r := range reps {
		if r != nil {
			f.reporters = append(f.reporters, r)
		}
	}
	return f
}

// Report hands r to the accepting reporters and returns how many delivered
// it. Delivery errors are joined; one failing sink does not stop the others.
func (f *Fanout) Report(ctx context.Context, r Report) (int, error) {
	if f.Size() == 0 {
		return 0, nil
	}

	errs := make([]error, len(f.reporters))
	delivered := make([]bool, len(f.reporters))
	var g errgroup.Group
	for i, rep := range f.reporters {
		if a, ok := rep.(interface{ accepts(Report) bool }); ok && !a.accepts(r) {
			continue
		}
		g.Go(func() error {
			if err := rep.Report(ctx, r); err != nil {
				errs[i] = fmt.Errorf("%s reporter[%s]: %w", rep.Type(), rep.ID(), err)
				return nil
			}
			delivered[i] = true
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, ok := range delivered {
		if ok {
			n++
		}
	}
	return n, errors.Join(errs...)
}

// Size returns the number of reporters.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.reporters)
}

// Close releases reporters holding client connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, rep := range f.reporters {
		c, ok := rep.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s reporter[%s]: %w", rep.Type(), rep.ID(), err))
		}
	}
	return errors.Join(errs...)
}
