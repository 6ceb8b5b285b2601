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
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// Inferred type names reported by InferType.
const (
	InferredString            = "string"
	InferredUnicode           = "unicode"
	InferredBytes             = "bytes"
	InferredFloating          = "floating"
	InferredInteger           = "integer"
	InferredMixedInteger      = "mixed-integer"
	InferredMixedIntegerFloat = "mixed-integer-float"
	InferredComplex           = "complex"
	InferredCategorical       = "categorical"
	InferredBoolean           = "boolean"
	InferredDatetime64        = "datetime64"
	InferredDatetime          = "datetime"
	InferredDate              = "date"
	InferredTimedelta64       = "timedelta64"
	InferredTimedelta         = "timedelta"
	InferredTime              = "time"
	InferredPeriod            = "period"
	InferredMixed             = "mixed"
)

var inferredNames = map[string]bool{
	InferredString: true, InferredUnicode: true, InferredBytes: true,
	InferredFloating: true, InferredInteger: true, InferredMixedInteger: true,
	InferredMixedIntegerFloat: true, InferredComplex: true,
	InferredCategorical: true, InferredBoolean: true,
	InferredDatetime64: true, InferredDatetime: true, InferredDate: true,
	InferredTimedelta64: true, InferredTimedelta: true, InferredTime: true,
	InferredPeriod: true, InferredMixed: true,
}

// IsInferredName reports whether name belongs to the InferType vocabulary.
func IsInferredName(name string) bool {
	return inferredNames[name]
}

// InferType names the kind of values a column holds. Arrow columns carry
// a single dtype, so the result follows from it; dictionary columns are
// categorical and dtypes without a direct counterpart are mixed.
func InferType(s *Series) string {
	dt := s.DataType()
	if dt.ID() == arrow.DICTIONARY {
		return InferredCategorical
	}
	switch KindOf(dt) {
	case KindString:
		return InferredString
	case KindBinary:
		return InferredBytes
	case KindInt, KindUint:
		return InferredInteger
	case KindFloat:
		return InferredFloating
	case KindBool:
		return InferredBoolean
	case KindDate:
		return InferredDate
	case KindTimestamp:
		return InferredDatetime64
	case KindTime:
		return InferredTime
	case KindDuration:
		return InferredTimedelta64
	case KindInterval:
		return InferredPeriod
	default:
		return InferredMixed
	}
}

var namedTypes = map[string]arrow.DataType{
	"int8":    arrow.PrimitiveTypes.Int8,
	"int16":   arrow.PrimitiveTypes.Int16,
	"int32":   arrow.PrimitiveTypes.Int32,
	"int64":   arrow.PrimitiveTypes.Int64,
	"uint8":   arrow.PrimitiveTypes.Uint8,
	"uint16":  arrow.PrimitiveTypes.Uint16,
	"uint32":  arrow.PrimitiveTypes.Uint32,
	"uint64":  arrow.PrimitiveTypes.Uint64,
	"float16": arrow.FixedWidthTypes.Float16,
	"float32": arrow.PrimitiveTypes.Float32,
	"float64": arrow.PrimitiveTypes.Float64,
	"bool":    arrow.FixedWidthTypes.Boolean,
	"utf8":    arrow.BinaryTypes.String,
	"binary":  arrow.BinaryTypes.Binary,
	"date32":  arrow.FixedWidthTypes.Date32,
	"date64":  arrow.FixedWidthTypes.Date64,
	"null":    arrow.Null,

	"large_utf8":   arrow.BinaryTypes.LargeString,
	"large_binary": arrow.BinaryTypes.LargeBinary,
}

var typeAliases = map[string]string{
	"int":     "int64",
	"float":   "float64",
	"double":  "float64",
	"boolean": "bool",
	"str":     "utf8",
	"string":  "utf8",
	"bytes":   "binary",
	"date":    "date32",
}

var timeUnits = map[string]arrow.TimeUnit{
	"s":  arrow.Second,
	"ms": arrow.Millisecond,
	"us": arrow.Microsecond,
	"ns": arrow.Nanosecond,
}

// ParseDataType resolves a dtype name such as "int64", "utf8",
// "timestamp[ns]", "timestamp[us, tz=UTC]" or "duration[ms]". Matching is
// case-insensitive.
func ParseDataType(name string) (arrow.DataType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := typeAliases[n]; ok {
		n = alias
	}
	if dt, ok := namedTypes[n]; ok {
		return dt, nil
	}

	open := strings.IndexByte(n, '[')
	if open < 0 || !strings.HasSuffix(n, "]") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
	}
	base, args := n[:open], strings.Split(n[open+1:len(n)-1], ",")
	unit, ok := timeUnits[strings.TrimSpace(args[0])]
	if !ok {
		return nil, fmt.Errorf("%w: %q: unknown time unit", ErrUnsupportedType, name)
	}
	switch base {
	case "timestamp":
		ts := &arrow.TimestampType{Unit: unit}
		if len(args) > 1 {
			tz, found := strings.CutPrefix(strings.TrimSpace(args[1]), "tz=")
			if !found {
				return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
			}
			ts.TimeZone = strings.ToUpper(tz)
			if ts.TimeZone != "UTC" {
				// tz database names are case sensitive
				ts.TimeZone = strings.TrimSpace(name[strings.Index(strings.ToLower(name), "tz=")+3 : len(name)-1])
			}
		}
		return ts, nil
	case "duration":
		return &arrow.DurationType{Unit: unit}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
	}
}

// SameDataType reports whether a and b are the same dtype. Timestamp time
// zones are ignored when either side has none.
func SameDataType(a, b arrow.DataType) bool {
	if arrow.TypeEqual(a, b) {
		return true
	}
	ta, okA := a.(*arrow.TimestampType)
	tb, okB := b.(*arrow.TimestampType)
	if okA && okB && ta.Unit == tb.Unit {
		return ta.TimeZone == "" || tb.TimeZone == ""
	}
	return false
}
