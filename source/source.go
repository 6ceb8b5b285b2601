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

// Package source loads tables into datatable frames from CSV, Parquet,
// JSON and SQLite, and writes frames back out.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/magpierre/engarde/datatable"
	"github.com/magpierre/engarde/internal/query"
)

// ErrUnsupportedFormat is returned for files of an unknown type.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// FileType identifies a supported file format.
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeCSV
	FileTypeParquet
	FileTypeJSON
)

func (t FileType) String() string {
	switch t {
	case FileTypeCSV:
		return "csv"
	case FileTypeParquet:
		return "parquet"
	case FileTypeJSON:
		return "json"
	default:
		return "unknown"
	}
}

// DetectFileType determines the file type from the extension.
func DetectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return FileTypeCSV
	case ".parquet", ".pq":
		return FileTypeParquet
	case ".json", ".ndjson", ".jsonl":
		return FileTypeJSON
	default:
		return FileTypeUnknown
	}
}

// Options shape the loaded frame.
type Options struct {
	// Index names a column to use as the row index.
	Index string
	// Columns keeps only these columns, in this order.
	Columns []string
	// Where keeps only rows matching a filter expression.
	Where string
	// Limit keeps at most this many rows; zero means no limit.
	Limit int
}

// LoadFile loads path, choosing the reader from its extension.
func LoadFile(ctx context.Context, path string, opts Options) (*datatable.Frame, error) {
	switch DetectFileType(path) {
	case FileTypeCSV:
		return LoadCSV(ctx, path, opts)
	case FileTypeParquet:
		return LoadParquet(ctx, path, opts)
	case FileTypeJSON:
		return LoadJSON(ctx, path, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// fromTable flattens tbl into a single record and applies opts.
func fromTable(ctx context.Context, tbl arrow.Table, opts Options) (*datatable.Frame, error) {
	mem := memory.DefaultAllocator
	cols := make([]arrow.Array, tbl.NumCols())
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i := range cols {
		col := tbl.Column(i)
		chunks := col.Data().Chunks()
		switch len(chunks) {
		case 0:
			cols[i] = array.MakeArrayOfNull(mem, col.DataType(), 0)
		case 1:
			chunks[0].Retain()
			cols[i] = chunks[0]
		default:
			arr, err := array.Concatenate(chunks, mem)
			if err != nil {
				return nil, fmt.Errorf("failed to concatenate column %q: %w", col.Name(), err)
			}
			cols[i] = arr
		}
	}
	rec := array.NewRecord(tbl.Schema(), cols, tbl.NumRows())
	defer rec.Release()
	return fromRecord(ctx, rec, opts)
}

// fromRecord builds a frame from rec and applies opts: index, column
// selection, row filter and limit, in that order.
func fromRecord(ctx context.Context, rec arrow.Record, opts Options) (*datatable.Frame, error) {
	var frameOpts []datatable.FrameOption
	if opts.Index != "" {
		frameOpts = append(frameOpts, datatable.WithIndexColumn(opts.Index))
	}
	f, err := datatable.NewFrame(rec, frameOpts...)
	if err != nil {
		return nil, err
	}
	return apply(ctx, f, opts)
}

func apply(ctx context.Context, f *datatable.Frame, opts Options) (*datatable.Frame, error) {
	var err error
	if len(opts.Columns) > 0 {
		if f, err = f.Select(opts.Columns...); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(opts.Where) != "" {
		if f, err = query.Where(ctx, f, opts.Where); err != nil {
			return nil, err
		}
	}
	if opts.Limit > 0 {
		if f, err = f.Head(opts.Limit); err != nil {
			return nil, err
		}
	}
	return f, nil
}
