package db

import (
	"context"
	"fmt"
	"time"

	"github.com/TFMV/codemetrics/schema"
	"github.com/TFMV/codemetrics/types"
	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

type SurrealDB struct {
	db     *surrealdb.DB
	config Config
}

// runRow is the stored header of a run; functions and files reference it.
type runRow struct {
	ID        *models.RecordID `json:"id,omitempty"`
	Root      string           `json:"root"`
	StartedAt string           `json:"started_at"`
	Files     int              `json:"files"`
	Functions int              `json:"functions"`
}

type functionRow struct {
	Run string `json:"run"`
	types.FunctionMetrics
}

type fileRow struct {
	Run string `json:"run"`
	types.FileMetrics
}

type failureRow struct {
	Run string `json:"run"`
	types.Failure
}

func NewSurrealDB(config Config) (*SurrealDB, error) {
	db, err := surrealdb.New(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &SurrealDB{
		db:     db,
		config: config,
	}, nil
}

func (s *SurrealDB) Initialize(ctx context.Context) error {
	if err := s.db.Use(s.config.Namespace, s.config.Database); err != nil {
		return fmt.Errorf("failed to set namespace/database: %w", err)
	}

	if s.config.Username != "" {
		authData := &surrealdb.Auth{
			Username: s.config.Username,
			Password: s.config.Password,
		}
		token, err := s.db.SignIn(authData)
		if err != nil {
			return fmt.Errorf("failed to sign in: %w", err)
		}

		if err := s.db.Authenticate(token); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := schema.InitializeSchema(s.db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

func (s *SurrealDB) StoreRun(ctx context.Context, run types.RunReport) error {
	header := runRow{
		Root:      run.Root,
		StartedAt: run.StartedAt.UTC().Format(time.RFC3339Nano),
		Files:     len(run.Files),
		Functions: len(run.Functions),
	}
	created, err := surrealdb.Create[runRow](s.db, models.Table(schema.TableRuns), header)
	if err != nil {
		return fmt.Errorf("error storing run for %s: %w", run.Root, err)
	}
	runID := recordKey(created.ID)

	for _, fn := range run.Functions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := surrealdb.Create[functionRow](s.db, models.Table(schema.TableFunctions), functionRow{Run: runID, FunctionMetrics: fn}); err != nil {
			return fmt.Errorf("error storing function %s: %w", fn.Name, err)
		}
	}

	for _, f := range run.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := surrealdb.Create[fileRow](s.db, models.Table(schema.TableFiles), fileRow{Run: runID, FileMetrics: f}); err != nil {
			return fmt.Errorf("error storing file %s: %w", f.Path, err)
		}
	}

	for _, f := range run.Failures {
		if _, err := surrealdb.Create[failureRow](s.db, models.Table(schema.TableFailures), failureRow{Run: runID, Failure: f}); err != nil {
			return fmt.Errorf("error storing failure for %s: %w", f.Path, err)
		}
	}

	return nil
}

func (s *SurrealDB) Close() error {
	return s.db.Close()
}

func recordKey(id *models.RecordID) string {
	if id == nil {
		return ""
	}
	return fmt.Sprintf("%s:%v", id.Table, id.ID)
}
