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
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	arrowcsv "github.com/apache/arrow-go/v18/arrow/csv"

	"github.com/magpierre/engarde/datatable"
)

// NullValues are the CSV cell values read as missing.
var NullValues = []string{"", "NA", "N/A", "null", "NULL"}

const csvChunkSize = 4096

// LoadCSV reads a CSV file with a header row. The separator (comma,
// semicolon, tab or pipe) is detected from the header and column types are
// inferred from every row: int64, float64, bool, timestamp or utf8.
func LoadCSV(ctx context.Context, path string, opts Options) (*datatable.Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return ReadCSV(ctx, bytes.NewReader(data), opts)
}

// ReadCSV is LoadCSV for in-memory data.
func ReadCSV(ctx context.Context, r io.Reader, opts Options) (*datatable.Frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV data: %w", err)
	}
	sep := detectCSVSeparator(data)

	schema, err := inferCSVSchema(data, sep)
	if err != nil {
		return nil, err
	}

	reader := arrowcsv.NewReader(bytes.NewReader(data), schema,
		arrowcsv.WithHeader(true),
		arrowcsv.WithComma(sep),
		arrowcsv.WithNullReader(true, NullValues...),
		arrowcsv.WithChunk(csvChunkSize),
	)
	defer reader.Release()

	var recs []arrow.Record
	defer func() {
		for _, rec := range recs {
			rec.Release()
		}
	}()
	for reader.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := reader.Record()
		rec.Retain()
		recs = append(recs, rec)
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	tbl := array.NewTableFromRecords(reader.Schema(), recs)
	defer tbl.Release()
	return fromTable(ctx, tbl, opts)
}

// detectCSVSeparator picks the most frequent candidate separator of the
// first line, defaulting to a comma.
func detectCSVSeparator(data []byte) rune {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	if !scanner.Scan() {
		return ','
	}
	firstLine := scanner.Text()

	maxCount := 0
	detected := ','
	for _, sep := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(firstLine, string(sep)); n > maxCount {
			maxCount = n
			detected = sep
		}
	}
	return detected
}

// csvType tracks the narrowest type able to hold every value of a column.
type csvType int

const (
	csvNull csvType = iota
	csvInt
	csvFloat
	csvBool
	csvTimestamp
	csvString
)

var timestampLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

func classify(s string) csvType {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return csvInt
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return csvFloat
	}
	switch s {
	case "true", "True", "false", "False":
		return csvBool
	}
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return csvTimestamp
		}
	}
	return csvString
}

func widen(cur, next csvType) csvType {
	switch {
	case cur == next || next == csvNull:
		return cur
	case cur == csvNull:
		return next
	case (cur == csvInt && next == csvFloat) || (cur == csvFloat && next == csvInt):
		return csvFloat
	default:
		return csvString
	}
}

func (t csvType) arrowType() arrow.DataType {
	switch t {
	case csvInt:
		return arrow.PrimitiveTypes.Int64
	case csvFloat:
		return arrow.PrimitiveTypes.Float64
	case csvBool:
		return arrow.FixedWidthTypes.Boolean
	case csvTimestamp:
		return &arrow.TimestampType{Unit: arrow.Nanosecond}
	default:
		return arrow.BinaryTypes.String
	}
}

// inferCSVSchema scans every row to pick column types.
func inferCSVSchema(data []byte, sep rune) (*arrow.Schema, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sep
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: CSV has no header", datatable.ErrEmptyData)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	names := append([]string(nil), header...)

	nulls := make(map[string]bool, len(NullValues))
	for _, v := range NullValues {
		nulls[v] = true
	}
	types := make([]csvType, len(names))
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		for i, cell := range row {
			if nulls[cell] {
				continue
			}
			types[i] = widen(types[i], classify(cell))
		}
	}

	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		fields[i] = arrow.Field{Name: name, Type: types[i].arrowType(), Nullable: true}
	}
	return arrow.NewSchema(fields, nil), nil
}
