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
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/magpierre/engarde/datatable"
)

// WriteOptions configures WriteFile.
type WriteOptions struct {
	// Index, when set, writes the row labels as a leading column of that
	// name.
	Index string
}

// WriteFile writes f to path in the format implied by its extension.
func WriteFile(path string, f *datatable.Frame, opts WriteOptions) error {
	var write func(io.Writer, *datatable.Frame) error
	switch DetectFileType(path) {
	case FileTypeCSV:
		write = func(w io.Writer, f *datatable.Frame) error { return WriteCSV(w, f) }
	case FileTypeJSON:
		write = func(w io.Writer, f *datatable.Frame) error { return WriteJSON(w, f) }
	case FileTypeParquet:
		write = WriteParquet
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if opts.Index != "" {
		indexed, err := withIndexColumn(f, opts.Index)
		if err != nil {
			return err
		}
		defer indexed.Release()
		f = indexed
	}

	var buf bytes.Buffer
	if err := write(&buf, f); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// withIndexColumn returns f with its labels prepended as column name.
func withIndexColumn(f *datatable.Frame, name string) (*datatable.Frame, error) {
	if f.HasColumn(name) {
		return nil, fmt.Errorf("%w: %q", datatable.ErrDuplicateColumn, name)
	}
	rec := f.Record()
	index := f.Index().Array()
	fields := append([]arrow.Field{{Name: name, Type: index.DataType(), Nullable: true}}, rec.Schema().Fields()...)
	cols := append([]arrow.Array{index}, rec.Columns()...)
	out := array.NewRecord(arrow.NewSchema(fields, nil), cols, rec.NumRows())
	defer out.Release()
	return datatable.NewFrame(out, datatable.WithMetadata(f.Metadata()))
}

// WriteParquet writes f as Snappy compressed Parquet, storing the arrow
// schema so dtypes round trip.
func WriteParquet(w io.Writer, f *datatable.Frame) error {
	rec := f.Record()
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(rec.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.Write(rec); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write parquet data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// WriteCSV writes t as CSV with a header row. Missing values are empty.
func WriteCSV(w io.Writer, t datatable.Cells) error {
	writer := csv.NewWriter(w)

	headers, err := columnNames(t)
	if err != nil {
		return err
	}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, len(headers))
	for r := 0; r < t.RowCount(); r++ {
		for c := range row {
			v, err := t.Cell(r, c)
			if err != nil {
				return err
			}
			row[c] = formatValue(v)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteJSON writes t as an indented JSON array of objects whose keys keep
// column order. NaN and infinities become null.
func WriteJSON(w io.Writer, t datatable.Cells) error {
	names, err := columnNames(t)
	if err != nil {
		return err
	}
	keys := make([][]byte, len(names))
	for i, name := range names {
		if keys[i], err = json.Marshal(name); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for r := 0; r < t.RowCount(); r++ {
		if r > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for c := range keys {
			cell, err := t.Cell(r, c)
			if err != nil {
				return err
			}
			v, err := json.Marshal(getTypedValue(cell))
			if err != nil {
				return fmt.Errorf("failed to encode JSON: %w", err)
			}
			if c > 0 {
				buf.WriteByte(',')
			}
			buf.Write(keys[c])
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(w)
	return err
}

func columnNames(t datatable.Cells) ([]string, error) {
	names := make([]string, t.ColumnCount())
	for i := range names {
		name, err := t.ColumnName(i)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}

// formatValue renders a cell for CSV. Missing values are empty.
func formatValue(v datatable.Value) string {
	if v.IsNull {
		return ""
	}
	switch x := v.Raw.(type) {
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return floatText(x)
	case time.Time:
		if v.Kind == datatable.KindTimestamp {
			return x.Format("2006-01-02 15:04:05.999999999")
		}
	}
	return v.Formatted
}

// getTypedValue converts a cell to a JSON friendly value.
func getTypedValue(v datatable.Value) any {
	if v.IsNull {
		return nil
	}
	switch x := v.Raw.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return json.Number(floatText(x))
	case time.Time:
		if v.Kind == datatable.KindDate {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339Nano)
	case time.Duration:
		return x.String()
	case []byte:
		return string(x)
	default:
		return x
	}
}

// floatText formats x so it reads back as a float: integral values keep a
// trailing ".0".
func floatText(x float64) string {
	s := strconv.FormatFloat(x, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEIN") {
		return s
	}
	return s + ".0"
}
