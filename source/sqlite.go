// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/magpierre/engarde/datatable"
)

// LoadSQLite runs query against the SQLite database at dsn and returns the
// result set. Column types follow the values SQLite returns: INTEGER,
// REAL, TEXT and BLOB map to int64, float64, utf8 and binary.
func LoadSQLite(ctx context.Context, dsn, query string, opts Options, args ...any) (*datatable.Frame, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	defer db.Close()
	return QueryFrame(ctx, db, query, opts, args...)
}

// QueryFrame runs query on db and returns the result set as a frame.
func QueryFrame(ctx context.Context, db *sql.DB, query string, opts Options, args ...any) (*datatable.Frame, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var records [][]any
	for rows.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	f, err := datatable.FromRecords(names, records, indexOption(opts)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create frame from query: %w", err)
	}
	return apply(ctx, f, opts)
}
