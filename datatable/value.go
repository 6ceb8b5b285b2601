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
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// ValueAt reads the cell at pos of col into a Value.
func ValueAt(col arrow.Array, pos int) Value {
	kind := KindOf(col.DataType())
	if col.IsNull(pos) {
		return NewNullValue(kind)
	}
	return NewValue(rawAt(col, pos), kind)
}

// rawAt returns the typed value of col at pos, normalized to a small set
// of Go types.
func rawAt(col arrow.Array, pos int) any {
	switch c := col.(type) {
	case *array.String:
		return c.Value(pos)
	case *array.LargeString:
		return c.Value(pos)
	case *array.Binary:
		return c.Value(pos)
	case *array.LargeBinary:
		return c.Value(pos)
	case *array.Boolean:
		return c.Value(pos)
	case *array.Int8:
		return int64(c.Value(pos))
	case *array.Int16:
		return int64(c.Value(pos))
	case *array.Int32:
		return int64(c.Value(pos))
	case *array.Int64:
		return c.Value(pos)
	case *array.Uint8:
		return uint64(c.Value(pos))
	case *array.Uint16:
		return uint64(c.Value(pos))
	case *array.Uint32:
		return uint64(c.Value(pos))
	case *array.Uint64:
		return c.Value(pos)
	case *array.Float16:
		return float64(c.Value(pos).Float32())
	case *array.Float32:
		return float64(c.Value(pos))
	case *array.Float64:
		return c.Value(pos)
	case *array.Date32:
		return c.Value(pos).ToTime()
	case *array.Date64:
		return c.Value(pos).ToTime()
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return c.Value(pos).ToTime(unit).UTC()
	case *array.Time32:
		unit := c.DataType().(*arrow.Time32Type).Unit
		return time.Duration(c.Value(pos)) * unit.Multiplier()
	case *array.Time64:
		unit := c.DataType().(*arrow.Time64Type).Unit
		return time.Duration(c.Value(pos)) * unit.Multiplier()
	case *array.Duration:
		unit := c.DataType().(*arrow.DurationType).Unit
		return time.Duration(c.Value(pos)) * unit.Multiplier()
	case *array.Decimal128:
		scale := c.DataType().(*arrow.Decimal128Type).Scale
		return c.Value(pos).ToFloat64(scale)
	case *array.Dictionary:
		return rawAt(c.Dictionary(), c.GetValueIndex(pos))
	default:
		return col.ValueStr(pos)
	}
}

// ValueOf converts a Go value into a Value, normalizing numeric widths the
// same way cells read from arrow arrays are normalized.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return NewNullValue(KindNull)
	case Value:
		return x
	case string:
		return NewValue(x, KindString)
	case []byte:
		return NewValue(x, KindBinary)
	case bool:
		return NewValue(x, KindBool)
	case int:
		return NewValue(int64(x), KindInt)
	case int8:
		return NewValue(int64(x), KindInt)
	case int16:
		return NewValue(int64(x), KindInt)
	case int32:
		return NewValue(int64(x), KindInt)
	case int64:
		return NewValue(x, KindInt)
	case uint:
		return NewValue(uint64(x), KindUint)
	case uint8:
		return NewValue(uint64(x), KindUint)
	case uint16:
		return NewValue(uint64(x), KindUint)
	case uint32:
		return NewValue(uint64(x), KindUint)
	case uint64:
		return NewValue(x, KindUint)
	case float32:
		return NewValue(float64(x), KindFloat)
	case float64:
		return NewValue(x, KindFloat)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return NewValue(i, KindInt)
		}
		if f, err := x.Float64(); err == nil {
			return NewValue(f, KindFloat)
		}
		return NewValue(x.String(), KindString)
	case time.Time:
		return NewValue(x.UTC(), KindTimestamp)
	case time.Duration:
		return NewValue(x, KindDuration)
	default:
		return NewValue(fmt.Sprint(x), KindString)
	}
}

// Float64 returns the value as a float64 when it is numeric and not null.
func (v Value) Float64() (float64, bool) {
	if v.IsNull {
		return 0, false
	}
	switch x := v.Raw.(type) {
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

type nullKey struct{}

type timeKey int64

type bytesKey string

// Key returns a comparable representation of the value suitable for use
// as a map key. Numeric values share one key space so that 1 and 1.0
// collide; all nulls share a single key.
func (v Value) Key() any {
	if v.IsNull {
		return nullKey{}
	}
	if f, ok := v.Float64(); ok {
		return f
	}
	switch x := v.Raw.(type) {
	case time.Time:
		return timeKey(x.UnixNano())
	case []byte:
		return bytesKey(x)
	default:
		return x
	}
}

// Equal reports whether two values have the same Key.
func (v Value) Equal(other Value) bool {
	return v.Key() == other.Key()
}

// Compare orders two non-null values. It returns ErrTypeMismatch when the
// values are not mutually comparable.
func Compare(a, b Value) (int, error) {
	if a.IsNull || b.IsNull {
		return 0, fmt.Errorf("%w: cannot order null values", ErrTypeMismatch)
	}
	if x, ok := a.Raw.(int64); ok {
		if y, ok := b.Raw.(int64); ok {
			return cmpOrdered(x, y), nil
		}
	}
	if x, ok := a.Float64(); ok {
		if y, ok := b.Float64(); ok {
			return cmpOrdered(x, y), nil
		}
		return 0, fmt.Errorf("%w: %v and %v", ErrTypeMismatch, a.Kind, b.Kind)
	}
	switch x := a.Raw.(type) {
	case string:
		if y, ok := b.Raw.(string); ok {
			return strings.Compare(x, y), nil
		}
	case []byte:
		if y, ok := b.Raw.([]byte); ok {
			return bytes.Compare(x, y), nil
		}
	case bool:
		if y, ok := b.Raw.(bool); ok {
			return cmpBool(x, y), nil
		}
	case time.Time:
		if y, ok := b.Raw.(time.Time); ok {
			return x.Compare(y), nil
		}
	case time.Duration:
		if y, ok := b.Raw.(time.Duration); ok {
			return cmpOrdered(x, y), nil
		}
	}
	return 0, fmt.Errorf("%w: %v and %v", ErrTypeMismatch, a.Kind, b.Kind)
}

func cmpOrdered[T int64 | float64 | time.Duration](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func isNaN(raw any) bool {
	f, ok := raw.(float64)
	return ok && math.IsNaN(f)
}

// formatRaw converts a normalized raw value to a string.
func formatRaw(raw any) string {
	switch x := raw.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05.999999999")
	default:
		return fmt.Sprintf("%v", x)
	}
}
