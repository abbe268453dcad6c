package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/classly-hq/classly-networking/internal/domain"
)

// Package storage provides the local execution journal.

// Store keeps recent execution outcomes.
type Store interface {
	Close() error
	Record(exec domain.Execution) error
	Get(id string) (domain.Execution, bool, error)
	// List returns unexpired executions ordered by start time.
	List() ([]domain.Execution, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

const (
	defaultTTL             = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                               { return nil }
func (noopStore) Record(domain.Execution) error              { return nil }
func (noopStore) Get(string) (domain.Execution, bool, error) { return domain.Execution{}, false, nil }
func (noopStore) List() ([]domain.Execution, error)          { return nil, nil }
