package storage

import (
	"context"

	"github.com/mselser95/polymarket-seeder/pkg/types"
)

// Storage mode names accepted by STORAGE_MODE.
const (
	ModeNone     = "none"
	ModeConsole  = "console"
	ModePostgres = "postgres"
)

// RunStore records pipeline runs for later audit.
type RunStore interface {
	// SaveRun stores a completed selection run.
	SaveRun(ctx context.Context, run *types.SelectionRun) error

	// Close closes the storage connection.
	Close() error
}

// NopStore discards runs.
type NopStore struct{}

// SaveRun does nothing.
func (NopStore) SaveRun(context.Context, *types.SelectionRun) error { return nil }

// Close does nothing.
func (NopStore) Close() error { return nil }
