package reporters

import (
	"context"
	"fmt"
	"strings"
)

// Builder creates a Reporter from a config entry.
type Builder func(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error)

// Registry maps reporter types to builders.
type Registry map[string]Builder

// DefaultRegistry knows every sink type this package ships.
func DefaultRegistry() Registry {
	return Registry{
		TypeHTTP:   newHTTPReporter,
		TypeSQS:    newSQSReporter,
		TypeSNS:    newSNSReporter,
		TypePubSub: newPubSubReporter,
	}
}

// Build creates the reporter for cfg and applies its filter.
func (r Registry) Build(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error) {
	build, ok := r[strings.ToLower(cfg.Type)]
	if !ok || build == nil {
		return nil, fmt.Errorf("reporter %q: no builder for type %q", cfg.ID, cfg.Type)
	}
	rep, err := build(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("build reporter %q: %w", cfg.ID, err)
	}
	return Filtered(rep, cfg.Filter), nil
}

// BuildAll builds every config. On failure the reporters already built are
// closed before returning.
func BuildAll(ctx context.Context, reg Registry, cfgs []ReporterConfig, log Logger) ([]Reporter, error) {
	reps := make([]Reporter, 0, len(cfgs))
	for _, cfg := range cfgs {
		rep, err := reg.Build(ctx, cfg, log)
		if err != nil {
			_ = NewFanout(reps).Close()
			return nil, err
		}
		reps = append(reps, rep)
	}
	return reps, nil
}
