package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/TFMV/codemetrics/types"
	"github.com/dgraph-io/badger/v4"
)

// Key prefixes for the BadgerDB key scheme.
const (
	prefixRun    = "run:"
	prefixLatest = "latest:"
)

// BadgerDB stores runs in an embedded BadgerDB, one JSON value per run.
type BadgerDB struct {
	db *badger.DB
}

// NewBadgerDB opens (or creates) a store at path. An empty path keeps
// everything in memory.
func NewBadgerDB(path string) (*BadgerDB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // suppress badger logs
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &BadgerDB{db: db}, nil
}

// runPrefix ends the root with a NUL byte, which no path can contain, so the
// prefix of one root never matches another.
func runPrefix(root string) []byte {
	return []byte(prefixRun + root + "\x00")
}

// runKey orders the runs of one root by start time.
func runKey(root string, startedAt int64) []byte {
	return fmt.Appendf(runPrefix(root), "%020d", startedAt)
}

func latestKey(root string) []byte {
	return []byte(prefixLatest + root)
}

func (b *BadgerDB) Initialize(ctx context.Context) error {
	return nil
}

func (b *BadgerDB) StoreRun(ctx context.Context, run types.RunReport) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	key := runKey(run.Root, run.StartedAt.UnixNano())
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(latestKey(run.Root), key)
	})
}

// LatestRun returns the most recently stored run for root.
func (b *BadgerDB) LatestRun(ctx context.Context, root string) (types.RunReport, error) {
	var run types.RunReport
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(latestKey(root))
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		item, err = txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &run)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return types.RunReport{}, fmt.Errorf("%w for %s", ErrNotFound, root)
	}
	if err != nil {
		return types.RunReport{}, fmt.Errorf("failed to load run for %s: %w", root, err)
	}
	return run, nil
}

// Runs returns every stored run for root, oldest first.
func (b *BadgerDB) Runs(ctx context.Context, root string) ([]types.RunReport, error) {
	var runs []types.RunReport
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := runPrefix(root)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var run types.RunReport
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &run)
			}); err != nil {
				return fmt.Errorf("unmarshal run: %w", err)
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for %s: %w", root, err)
	}
	return runs, nil
}

func (b *BadgerDB) Close() error {
	return b.db.Close()
}

var (
	_ DB = (*BadgerDB)(nil)
	_ DB = (*SurrealDB)(nil)
	_ DB = (*MockDB)(nil)
)
