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

// Package datatable provides an in-memory labeled table backed by Apache Arrow.
package datatable

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// Kind represents the general kind of data in a column.
type Kind int

const (
	// KindString represents string data.
	KindString Kind = iota
	// KindInt represents signed integer data (any size).
	KindInt
	// KindUint represents unsigned integer data (any size).
	KindUint
	// KindFloat represents floating-point data (any precision).
	KindFloat
	// KindBool represents boolean data.
	KindBool
	// KindDate represents date data (without time).
	KindDate
	// KindTimestamp represents timestamp data (date + time).
	KindTimestamp
	// KindTime represents time-of-day data.
	KindTime
	// KindDuration represents elapsed time.
	KindDuration
	// KindInterval represents calendar intervals.
	KindInterval
	// KindBinary represents binary/blob data.
	KindBinary
	// KindDecimal represents decimal/numeric data (fixed precision).
	KindDecimal
	// KindCategorical represents dictionary-encoded data.
	KindCategorical
	// KindStruct represents structured data (nested fields).
	KindStruct
	// KindList represents list/array data.
	KindList
	// KindNull represents a column with no values at all.
	KindNull
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindInt:
		return "Int"
	case KindUint:
		return "Uint"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindDate:
		return "Date"
	case KindTimestamp:
		return "Timestamp"
	case KindTime:
		return "Time"
	case KindDuration:
		return "Duration"
	case KindInterval:
		return "Interval"
	case KindBinary:
		return "Binary"
	case KindDecimal:
		return "Decimal"
	case KindCategorical:
		return "Categorical"
	case KindStruct:
		return "Struct"
	case KindList:
		return "List"
	case KindNull:
		return "Null"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// IsNumeric reports whether values of this kind take part in arithmetic.
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindUint || k == KindFloat || k == KindDecimal
}

// KindOf maps an arrow data type to its Kind.
func KindOf(dt arrow.DataType) Kind {
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING, arrow.STRING_VIEW:
		return KindString
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64:
		return KindInt
	case arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return KindUint
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return KindFloat
	case arrow.BOOL:
		return KindBool
	case arrow.DATE32, arrow.DATE64:
		return KindDate
	case arrow.TIMESTAMP:
		return KindTimestamp
	case arrow.TIME32, arrow.TIME64:
		return KindTime
	case arrow.DURATION:
		return KindDuration
	case arrow.INTERVAL_MONTHS, arrow.INTERVAL_DAY_TIME, arrow.INTERVAL_MONTH_DAY_NANO:
		return KindInterval
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.FIXED_SIZE_BINARY:
		return KindBinary
	case arrow.DECIMAL128, arrow.DECIMAL256:
		return KindDecimal
	case arrow.DICTIONARY:
		return KindCategorical
	case arrow.STRUCT:
		return KindStruct
	case arrow.LIST, arrow.LARGE_LIST, arrow.FIXED_SIZE_LIST:
		return KindList
	default:
		return KindNull
	}
}

// Value is a typed container for cell values.
// It holds the raw value, kind information, and a pre-formatted string for display.
type Value struct {
	// Raw holds the underlying value, normalized to int64, uint64, float64,
	// string, []byte, bool, time.Time or time.Duration.
	Raw any

	// Kind indicates the kind of this value.
	Kind Kind

	// IsNull indicates whether this value is null/nil or a floating NaN.
	IsNull bool

	// Formatted is a pre-formatted string representation for messages.
	Formatted string
}

// NewValue creates a new Value from a raw value and kind.
func NewValue(raw any, kind Kind) Value {
	if raw == nil {
		return NewNullValue(kind)
	}

	return Value{
		Raw:       raw,
		Kind:      kind,
		IsNull:    isNaN(raw),
		Formatted: formatRaw(raw),
	}
}

// NewNullValue creates a null value of the specified kind.
func NewNullValue(kind Kind) Value {
	return Value{
		Raw:       nil,
		Kind:      kind,
		IsNull:    true,
		Formatted: "",
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.IsNull {
		if v.Raw != nil {
			return v.Formatted
		}
		return "<null>"
	}
	return v.Formatted
}

// Metadata holds optional metadata about a data source.
type Metadata map[string]any

// Direction specifies the expected ordering of a sequence.
type Direction int

const (
	// Either accepts increasing or decreasing order.
	Either Direction = iota
	// Increasing requires each value to be at least the previous one.
	Increasing
	// Decreasing requires each value to be at most the previous one.
	Decreasing
)

// String returns the string representation of a Direction.
func (d Direction) String() string {
	switch d {
	case Either:
		return "either"
	case Increasing:
		return "increasing"
	case Decreasing:
		return "decreasing"
	default:
		return fmt.Sprintf("unknown(%d)", d)
	}
}
