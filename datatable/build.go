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
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Column is a named arrow array used to assemble a Frame.
type Column struct {
	Name string
	Data arrow.Array
	err  error
}

// New builds a Frame from columns of equal length with a default
// positional index.
func New(cols ...Column) (*Frame, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrEmptyData)
	}
	fields := make([]arrow.Field, len(cols))
	arrs := make([]arrow.Array, len(cols))
	n := cols[0].Data
	for i, c := range cols {
		if c.err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, c.err)
		}
		if n != nil && c.Data.Len() != n.Len() {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrLengthMismatch, c.Name, c.Data.Len(), n.Len())
		}
		fields[i] = arrow.Field{Name: c.Name, Type: c.Data.DataType(), Nullable: true}
		arrs[i] = c.Data
	}
	rec := array.NewRecord(arrow.NewSchema(fields, nil), arrs, int64(n.Len()))
	defer rec.Release()
	return NewFrame(rec)
}

// MustNew is New for fixtures; it panics on error.
func MustNew(cols ...Column) *Frame {
	f, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return f
}

// Int64s builds an int64 column.
func Int64s(name string, vals ...int64) Column {
	b := array.NewInt64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(vals, nil)
	return Column{Name: name, Data: b.NewArray()}
}

// Float64s builds a float64 column. NaN values are stored as NaN and
// count as missing.
func Float64s(name string, vals ...float64) Column {
	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(vals, nil)
	return Column{Name: name, Data: b.NewArray()}
}

// Strings builds a utf8 column.
func Strings(name string, vals ...string) Column {
	b := array.NewStringBuilder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(vals, nil)
	return Column{Name: name, Data: b.NewArray()}
}

// Bools builds a boolean column.
func Bools(name string, vals ...bool) Column {
	b := array.NewBooleanBuilder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(vals, nil)
	return Column{Name: name, Data: b.NewArray()}
}

// Timestamps builds a nanosecond UTC timestamp column.
func Timestamps(name string, vals ...time.Time) Column {
	anys := make([]any, len(vals))
	for i, v := range vals {
		anys[i] = v
	}
	return Values(name, TimestampType, anys...)
}

// Values builds a column of the given type from Go values; nil appends a
// null.
func Values(name string, dt arrow.DataType, vals ...any) Column {
	b := array.NewBuilder(memory.DefaultAllocator, dt)
	defer b.Release()
	for _, v := range vals {
		if err := appendValue(b, ValueOf(v)); err != nil {
			return Column{Name: name, err: err}
		}
	}
	return Column{Name: name, Data: b.NewArray()}
}

// TimestampType is the arrow type used for timestamps built by this package.
var TimestampType = &arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: "UTC"}

// FromRecords builds a Frame from row-oriented Go values. Column types are
// inferred from the non-nil values: booleans, integers, floats (integers
// and floats mixed), strings, timestamps, durations and bytes. A column
// mixing other kinds is stored as strings.
func FromRecords(names []string, rows [][]any, opts ...FrameOption) (*Frame, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrEmptyData)
	}
	cols := make([]Column, len(names))
	for j, name := range names {
		vals := make([]Value, len(rows))
		for i, row := range rows {
			if len(row) != len(names) {
				return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrLengthMismatch, i, len(row), len(names))
			}
			vals[i] = ValueOf(row[j])
		}
		dt := inferArrowType(vals)
		b := array.NewBuilder(memory.DefaultAllocator, dt)
		for _, v := range vals {
			if dt.ID() == arrow.STRING && !v.IsNull {
				v = NewValue(v.Formatted, KindString)
			}
			if err := appendValue(b, v); err != nil {
				b.Release()
				return nil, fmt.Errorf("column %q: %w", name, err)
			}
		}
		cols[j] = Column{Name: name, Data: b.NewArray()}
		b.Release()
	}

	fields := make([]arrow.Field, len(cols))
	arrs := make([]arrow.Array, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c.Name, Type: c.Data.DataType(), Nullable: true}
		arrs[i] = c.Data
	}
	rec := array.NewRecord(arrow.NewSchema(fields, nil), arrs, int64(len(rows)))
	defer rec.Release()
	return NewFrame(rec, opts...)
}

// inferArrowType picks the narrowest arrow type able to hold every value.
func inferArrowType(vals []Value) arrow.DataType {
	kinds := make(map[Kind]bool)
	for _, v := range vals {
		if v.Raw == nil {
			continue
		}
		kinds[v.Kind] = true
	}
	switch {
	case len(kinds) == 0:
		return arrow.Null
	case len(kinds) == 1 && kinds[KindBool]:
		return arrow.FixedWidthTypes.Boolean
	case len(kinds) == 1 && kinds[KindInt]:
		return arrow.PrimitiveTypes.Int64
	case len(kinds) == 1 && kinds[KindUint]:
		return arrow.PrimitiveTypes.Uint64
	case onlyKinds(kinds, KindInt, KindUint, KindFloat):
		return arrow.PrimitiveTypes.Float64
	case len(kinds) == 1 && kinds[KindTimestamp]:
		return TimestampType
	case len(kinds) == 1 && kinds[KindDuration]:
		return arrow.FixedWidthTypes.Duration_ns
	case len(kinds) == 1 && kinds[KindBinary]:
		return arrow.BinaryTypes.Binary
	default:
		return arrow.BinaryTypes.String
	}
}

func onlyKinds(kinds map[Kind]bool, allowed ...Kind) bool {
	ok := make(map[Kind]bool, len(allowed))
	for _, k := range allowed {
		ok[k] = true
	}
	for k := range kinds {
		if !ok[k] {
			return false
		}
	}
	return true
}

// appendValue appends a normalized Value to a builder of a compatible type.
func appendValue(builder array.Builder, v Value) error {
	if v.Raw == nil {
		builder.AppendNull()
		return nil
	}

	switch b := builder.(type) {
	case *array.NullBuilder:
		return fmt.Errorf("%w: non-null value %v in null column", ErrTypeMismatch, v)
	case *array.StringBuilder:
		b.Append(v.Formatted)
	case *array.BinaryBuilder:
		raw, ok := v.Raw.([]byte)
		if !ok {
			raw = []byte(v.Formatted)
		}
		b.Append(raw)
	case *array.BooleanBuilder:
		raw, ok := v.Raw.(bool)
		if !ok {
			return fmt.Errorf("%w: %v is not a bool", ErrTypeMismatch, v)
		}
		b.Append(raw)
	case *array.Int8Builder, *array.Int16Builder, *array.Int32Builder, *array.Int64Builder:
		raw, ok := v.Raw.(int64)
		if !ok {
			return fmt.Errorf("%w: %v is not an integer", ErrTypeMismatch, v)
		}
		appendInt(b, raw)
	case *array.Uint8Builder, *array.Uint16Builder, *array.Uint32Builder, *array.Uint64Builder:
		var raw uint64
		switch x := v.Raw.(type) {
		case uint64:
			raw = x
		case int64:
			if x < 0 {
				return fmt.Errorf("%w: %d is negative", ErrTypeMismatch, x)
			}
			raw = uint64(x)
		default:
			return fmt.Errorf("%w: %v is not an unsigned integer", ErrTypeMismatch, v)
		}
		appendUint(b, raw)
	case *array.Float32Builder:
		f, ok := v.Float64()
		if !ok && !v.IsNull {
			return fmt.Errorf("%w: %v is not a number", ErrTypeMismatch, v)
		}
		if v.IsNull {
			f = v.Raw.(float64)
		}
		b.Append(float32(f))
	case *array.Float64Builder:
		f, ok := v.Float64()
		if !ok && !v.IsNull {
			return fmt.Errorf("%w: %v is not a number", ErrTypeMismatch, v)
		}
		if v.IsNull {
			f = v.Raw.(float64)
		}
		b.Append(f)
	case *array.TimestampBuilder:
		t, ok := v.Raw.(time.Time)
		if !ok {
			return fmt.Errorf("%w: %v is not a time", ErrTypeMismatch, v)
		}
		unit := b.Type().(*arrow.TimestampType).Unit
		ts, err := arrow.TimestampFromTime(t, unit)
		if err != nil {
			return err
		}
		b.Append(ts)
	case *array.Date32Builder:
		t, ok := v.Raw.(time.Time)
		if !ok {
			return fmt.Errorf("%w: %v is not a date", ErrTypeMismatch, v)
		}
		b.Append(arrow.Date32FromTime(t))
	case *array.DurationBuilder:
		d, ok := v.Raw.(time.Duration)
		if !ok {
			return fmt.Errorf("%w: %v is not a duration", ErrTypeMismatch, v)
		}
		unit := b.Type().(*arrow.DurationType).Unit
		b.Append(arrow.Duration(d / unit.Multiplier()))
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, builder.Type())
	}
	return nil
}

func appendInt(builder array.Builder, v int64) {
	switch b := builder.(type) {
	case *array.Int8Builder:
		b.Append(int8(v))
	case *array.Int16Builder:
		b.Append(int16(v))
	case *array.Int32Builder:
		b.Append(int32(v))
	case *array.Int64Builder:
		b.Append(v)
	}
}

func appendUint(builder array.Builder, v uint64) {
	switch b := builder.(type) {
	case *array.Uint8Builder:
		b.Append(uint8(v))
	case *array.Uint16Builder:
		b.Append(uint16(v))
	case *array.Uint32Builder:
		b.Append(uint32(v))
	case *array.Uint64Builder:
		b.Append(v)
	}
}
