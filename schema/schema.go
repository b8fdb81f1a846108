package schema

import (
	"fmt"

	surrealdb "github.com/surrealdb/surrealdb.go"
)

const (
	TableRuns      = "runs"
	TableFunctions = "functions"
	TableFiles     = "files"
	TableFailures  = "failures"
)

// Statements returns the table definitions, one statement group per table.
func Statements() []string {
	return []string{
		// One row per analysis run
		`DEFINE TABLE runs SCHEMAFULL;
		 DEFINE FIELD root ON runs TYPE string;
		 DEFINE FIELD started_at ON runs TYPE string;
		 DEFINE FIELD files ON runs TYPE int;
		 DEFINE FIELD functions ON runs TYPE int;
		 DEFINE FIELD created_at ON runs TYPE datetime DEFAULT time::now();
		 DEFINE INDEX run_root ON runs FIELDS root;`,

		// Per-function metrics
		`DEFINE TABLE functions SCHEMAFULL;
		 DEFINE FIELD run ON functions TYPE string;
		 DEFINE FIELD name ON functions TYPE string;
		 DEFINE FIELD file ON functions TYPE string;
		 DEFINE FIELD language ON functions TYPE string;
		 DEFINE FIELD is_method ON functions TYPE bool;
		 DEFINE FIELD start_line ON functions TYPE int;
		 DEFINE FIELD end_line ON functions TYPE int;
		 DEFINE FIELD cyclomatic_complexity ON functions TYPE int;
		 DEFINE FIELD lines ON functions TYPE object;
		 DEFINE FIELD lines.source ON functions TYPE int;
		 DEFINE FIELD lines.physical ON functions TYPE int;
		 DEFINE FIELD lines.logical ON functions TYPE int;
		 DEFINE FIELD created_at ON functions TYPE datetime DEFAULT time::now();
		 DEFINE INDEX func_run ON functions FIELDS run;
		 DEFINE INDEX func_name ON functions FIELDS name;
		 DEFINE INDEX func_file ON functions FIELDS file;
		 DEFINE INDEX func_complexity ON functions FIELDS cyclomatic_complexity;`,

		// Per-file metrics
		`DEFINE TABLE files SCHEMAFULL;
		 DEFINE FIELD run ON files TYPE string;
		 DEFINE FIELD path ON files TYPE string;
		 DEFINE FIELD language ON files TYPE string;
		 DEFINE FIELD functions ON files TYPE int;
		 DEFINE FIELD total_complexity ON files TYPE int;
		 DEFINE FIELD lines ON files TYPE object;
		 DEFINE FIELD lines.source ON files TYPE int;
		 DEFINE FIELD lines.physical ON files TYPE int;
		 DEFINE FIELD lines.logical ON files TYPE int;
		 DEFINE FIELD created_at ON files TYPE datetime DEFAULT time::now();
		 DEFINE INDEX file_run ON files FIELDS run;
		 DEFINE INDEX file_path ON files FIELDS path;`,

		// Files that could not be analyzed
		`DEFINE TABLE failures SCHEMAFULL;
		 DEFINE FIELD run ON failures TYPE string;
		 DEFINE FIELD path ON failures TYPE string;
		 DEFINE FIELD error ON failures TYPE string;
		 DEFINE INDEX failure_run ON failures FIELDS run;`,
	}
}

// InitializeSchema defines the metric tables and their indexes
func InitializeSchema(db *surrealdb.DB) error {
	for _, schema := range Statements() {
		if _, err := surrealdb.Query[any](db, schema, map[string]interface{}{}); err != nil {
			return fmt.Errorf("schema initialization error: %w", err)
		}
	}

	return nil
}
