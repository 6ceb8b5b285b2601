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

package datatable

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Frame is an immutable table of named columns sharing a row index.
// Columns live in a single arrow.Record; the index is a separate array of
// row labels which may contain duplicates.
type Frame struct {
	rec      arrow.Record
	index    arrow.Array
	names    map[string]int
	metadata Metadata
}

// FrameOption configures a Frame at construction time.
type FrameOption func(*frameConfig)

type frameConfig struct {
	index       arrow.Array
	indexColumn string
	metadata    Metadata
}

// WithIndex uses arr as the row labels. It must have one entry per row.
func WithIndex(arr arrow.Array) FrameOption {
	return func(c *frameConfig) {
		c.index = arr
	}
}

// WithIndexColumn moves the named column out of the frame and uses it as
// the row labels.
func WithIndexColumn(name string) FrameOption {
	return func(c *frameConfig) {
		c.indexColumn = name
	}
}

// WithMetadata attaches metadata returned by Frame.Metadata.
func WithMetadata(md Metadata) FrameOption {
	return func(c *frameConfig) {
		c.metadata = md
	}
}

// NewFrame wraps rec in a Frame. The frame retains rec; callers may
// release their own reference afterwards.
func NewFrame(rec arrow.Record, opts ...FrameOption) (*Frame, error) {
	if rec == nil {
		return nil, ErrNoRecord
	}
	var cfg frameConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	index := cfg.index
	if cfg.indexColumn != "" {
		idx := rec.Schema().FieldIndices(cfg.indexColumn)
		if len(idx) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, cfg.indexColumn)
		}
		index = rec.Column(idx[0])
		rec = dropColumn(rec, idx[0])
		defer rec.Release()
	}

	names := make(map[string]int, rec.NumCols())
	for i, field := range rec.Schema().Fields() {
		if _, dup := names[field.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, field.Name)
		}
		names[field.Name] = i
	}

	if index == nil {
		index = rangeIndex(rec.NumRows())
	} else {
		if int64(index.Len()) != rec.NumRows() {
			return nil, fmt.Errorf("%w: index has %d labels for %d rows", ErrLengthMismatch, index.Len(), rec.NumRows())
		}
		index.Retain()
	}
	rec.Retain()

	md := cfg.metadata
	if md == nil {
		md = Metadata{}
	}
	return &Frame{rec: rec, index: index, names: names, metadata: md}, nil
}

// dropColumn returns a new record without column i.
func dropColumn(rec arrow.Record, i int) arrow.Record {
	fields := make([]arrow.Field, 0, rec.NumCols()-1)
	cols := make([]arrow.Array, 0, rec.NumCols()-1)
	for j, field := range rec.Schema().Fields() {
		if j == i {
			continue
		}
		fields = append(fields, field)
		cols = append(cols, rec.Column(j))
	}
	return array.NewRecord(arrow.NewSchema(fields, nil), cols, rec.NumRows())
}

func rangeIndex(n int64) arrow.Array {
	b := array.NewInt64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.Reserve(int(n))
	for i := int64(0); i < n; i++ {
		b.UnsafeAppend(i)
	}
	return b.NewArray()
}

// Release drops the frame's references to its arrow buffers.
func (f *Frame) Release() {
	f.rec.Release()
	f.index.Release()
}

// Record returns the underlying arrow record. The caller must not release it.
func (f *Frame) Record() arrow.Record {
	return f.rec
}

// Schema returns the arrow schema of the columns.
func (f *Frame) Schema() *arrow.Schema {
	return f.rec.Schema()
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int {
	return int(f.rec.NumRows())
}

// NumCols returns the number of columns.
func (f *Frame) NumCols() int {
	return int(f.rec.NumCols())
}

// Shape returns (rows, columns).
func (f *Frame) Shape() (int, int) {
	return f.NumRows(), f.NumCols()
}

// ColumnNames returns the column names in order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, f.rec.NumCols())
	for i := range names {
		names[i] = f.rec.ColumnName(i)
	}
	return names
}

// HasColumn reports whether a column with the given name exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.names[name]
	return ok
}

// Column returns the named column as a Series.
func (f *Frame) Column(name string) (*Series, error) {
	i, ok := f.names[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return f.ColumnAt(i)
}

// ColumnAt returns the column at position i as a Series.
func (f *Frame) ColumnAt(i int) (*Series, error) {
	if i < 0 || i >= f.NumCols() {
		return nil, ErrInvalidColumn
	}
	return &Series{name: f.rec.ColumnName(i), arr: f.rec.Column(i), index: f.index}, nil
}

// Columns resolves names to Series. With no names it returns every column.
func (f *Frame) Columns(names ...string) ([]*Series, error) {
	if len(names) == 0 {
		names = f.ColumnNames()
	}
	return f.Lookup(names)
}

// Lookup resolves exactly the given names, in order. An empty slice yields
// no columns.
func (f *Frame) Lookup(names []string) ([]*Series, error) {
	out := make([]*Series, 0, len(names))
	for _, name := range names {
		s, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Index returns the row labels as a Series named "index".
func (f *Frame) Index() *Series {
	return &Series{name: "index", arr: f.index, index: f.index}
}

// Label returns the label of row i.
func (f *Frame) Label(i int) any {
	return ValueAt(f.index, i).Raw
}

// Labels returns every row label in order.
func (f *Frame) Labels() []any {
	labels := make([]any, f.index.Len())
	for i := range labels {
		labels[i] = f.Label(i)
	}
	return labels
}

// Positions returns the row positions carrying the given label, in order.
func (f *Frame) Positions(label any) []int {
	key := ValueOf(label).Key()
	var pos []int
	for i := 0; i < f.index.Len(); i++ {
		if ValueAt(f.index, i).Key() == key {
			pos = append(pos, i)
		}
	}
	return pos
}

// IndexIsUnique reports whether no label appears twice.
func (f *Frame) IndexIsUnique() bool {
	return f.Index().IsUnique()
}

// DuplicatedLabels returns each label that appears more than once, in
// order of its second appearance.
func (f *Frame) DuplicatedLabels() []any {
	return f.Index().Duplicates()
}

// RowView returns row i as a Row.
func (f *Frame) RowView(i int) Row {
	names := f.ColumnNames()
	values := make([]Value, len(names))
	for j := range names {
		values[j] = ValueAt(f.rec.Column(j), i)
	}
	return Row{Position: i, Label: f.Label(i), Columns: names, Values: values}
}

// Rows returns every row as a Row.
func (f *Frame) Rows() []Row {
	rows := make([]Row, f.NumRows())
	for i := range rows {
		rows[i] = f.RowView(i)
	}
	return rows
}

// Select returns a frame holding only the named columns, in the given
// order, sharing the same index.
func (f *Frame) Select(names ...string) (*Frame, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no columns selected", ErrEmptyData)
	}
	fields := make([]arrow.Field, len(names))
	cols := make([]arrow.Array, len(names))
	for i, name := range names {
		idx, ok := f.names[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		fields[i] = f.rec.Schema().Field(idx)
		cols[i] = f.rec.Column(idx)
	}
	rec := array.NewRecord(arrow.NewSchema(fields, nil), cols, f.rec.NumRows())
	defer rec.Release()
	return NewFrame(rec, WithIndex(f.index), WithMetadata(f.metadata))
}

// Head returns a frame with at most the first n rows.
func (f *Frame) Head(n int) (*Frame, error) {
	if n < 0 || int64(n) >= f.rec.NumRows() {
		return f, nil
	}
	rec := f.rec.NewSlice(0, int64(n))
	defer rec.Release()
	index := array.NewSlice(f.index, 0, int64(n))
	defer index.Release()
	return NewFrame(rec, WithIndex(index), WithMetadata(f.metadata))
}

// Take returns a frame holding the rows at the given positions, in order,
// with their labels.
func (f *Frame) Take(ctx context.Context, rows []int) (*Frame, error) {
	b := array.NewInt64Builder(memory.DefaultAllocator)
	defer b.Release()
	for _, r := range rows {
		if r < 0 || int64(r) >= f.rec.NumRows() {
			return nil, fmt.Errorf("%w: %d", ErrInvalidRow, r)
		}
		b.Append(int64(r))
	}
	indices := b.NewArray()
	defer indices.Release()

	cols := make([]arrow.Array, f.NumCols())
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i := range cols {
		taken, err := compute.TakeArray(ctx, f.rec.Column(i), indices)
		if err != nil {
			return nil, fmt.Errorf("take column %q: %w", f.rec.ColumnName(i), err)
		}
		cols[i] = taken
	}
	index, err := compute.TakeArray(ctx, f.index, indices)
	if err != nil {
		return nil, fmt.Errorf("take index: %w", err)
	}
	defer index.Release()

	rec := array.NewRecord(f.rec.Schema(), cols, int64(len(rows)))
	defer rec.Release()
	return NewFrame(rec, WithIndex(index), WithMetadata(f.metadata))
}

// RowCount implements Cells.
func (f *Frame) RowCount() int {
	return f.NumRows()
}

// ColumnCount implements Cells.
func (f *Frame) ColumnCount() int {
	return f.NumCols()
}

// ColumnName implements Cells.
func (f *Frame) ColumnName(col int) (string, error) {
	if col < 0 || col >= f.NumCols() {
		return "", ErrInvalidColumn
	}
	return f.rec.ColumnName(col), nil
}

// Cell implements Cells.
func (f *Frame) Cell(row, col int) (Value, error) {
	if row < 0 || row >= f.NumRows() {
		return Value{}, ErrInvalidRow
	}
	if col < 0 || col >= f.NumCols() {
		return Value{}, ErrInvalidColumn
	}
	return ValueAt(f.rec.Column(col), row), nil
}

// Metadata returns the metadata attached with WithMetadata.
func (f *Frame) Metadata() Metadata {
	return f.metadata
}

// Row is a single row of a Frame.
type Row struct {
	Position int
	Label    any
	Columns  []string
	Values   []Value
}

// Get returns the value of the named column.
func (r Row) Get(name string) (Value, bool) {
	for i, c := range r.Columns {
		if c == name {
			return r.Values[i], true
		}
	}
	return Value{}, false
}

// Strings returns the formatted values of the row.
func (r Row) Strings() []string {
	out := make([]string, len(r.Values))
	for i, v := range r.Values {
		out[i] = v.Formatted
	}
	return out
}
