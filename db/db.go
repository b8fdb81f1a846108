package db

import (
	"context"
	"errors"

	"github.com/TFMV/codemetrics/types"
)

// ErrNotFound is returned when no stored run matches a lookup.
var ErrNotFound = errors.New("run not found")

// DB persists the per-function and per-file metrics of analysis runs.
type DB interface {
	Initialize(ctx context.Context) error
	StoreRun(ctx context.Context, run types.RunReport) error
	Close() error
}
