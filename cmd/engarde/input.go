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

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magpierre/engarde/datatable"
	"github.com/magpierre/engarde/source"
)

// inputFlags select the table a command reads.
type inputFlags struct {
	input   string
	sqlite  string
	query   string
	index   string
	where   string
	columns []string
	limit   int
}

func (fl *inputFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&fl.input, "input", "i", "", "input file (.csv, .tsv, .parquet, .json, .ndjson)")
	f.StringVar(&fl.sqlite, "sqlite", "", "SQLite database to query instead of an input file")
	f.StringVar(&fl.query, "query", "", "SQL query to run against --sqlite")
	f.StringVar(&fl.index, "index", "", "column to use as the row index")
	f.StringVar(&fl.where, "where", "", `keep only matching rows, e.g. "age > 30 AND dept = ops"`)
	f.StringSliceVar(&fl.columns, "columns", nil, "keep only these columns")
	f.IntVar(&fl.limit, "limit", 0, "keep at most this many rows")

	cmd.MarkFlagsMutuallyExclusive("input", "sqlite")
	cmd.MarkFlagsRequiredTogether("sqlite", "query")
	cmd.MarkFlagsOneRequired("input", "sqlite")
}

// name labels the input in logs.
func (fl *inputFlags) name() string {
	if fl.input != "" {
		return fl.input
	}
	return fl.sqlite
}

func (fl *inputFlags) options(defaultIndex string) source.Options {
	index := fl.index
	if index == "" {
		index = defaultIndex
	}
	return source.Options{Index: index, Columns: fl.columns, Where: fl.where, Limit: fl.limit}
}

func (fl *inputFlags) load(ctx context.Context, opts source.Options) (*datatable.Frame, error) {
	if fl.sqlite != "" {
		f, err := source.LoadSQLite(ctx, fl.sqlite, fl.query, opts)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", fl.sqlite, err)
		}
		return f, nil
	}
	f, err := source.LoadFile(ctx, fl.input, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", fl.input, err)
	}
	return f, nil
}
