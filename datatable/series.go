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
	"math"

	"github.com/apache/arrow-go/v18/arrow"
)

// Series is a single named column together with the frame's row labels.
type Series struct {
	name  string
	arr   arrow.Array
	index arrow.Array
}

// Name returns the column name.
func (s *Series) Name() string {
	return s.name
}

// Len returns the number of values.
func (s *Series) Len() int {
	return s.arr.Len()
}

// DataType returns the arrow data type of the column.
func (s *Series) DataType() arrow.DataType {
	return s.arr.DataType()
}

// Kind returns the general kind of the column.
func (s *Series) Kind() Kind {
	return KindOf(s.arr.DataType())
}

// Array returns the underlying arrow array. The caller must not release it.
func (s *Series) Array() arrow.Array {
	return s.arr
}

// IsNumeric reports whether the column holds numbers.
func (s *Series) IsNumeric() bool {
	return s.Kind().IsNumeric()
}

// IsNull reports whether value i is missing: an arrow null or a NaN.
func (s *Series) IsNull(i int) bool {
	if s.arr.IsNull(i) {
		return true
	}
	return s.Kind() == KindFloat && math.IsNaN(s.Value(i).Raw.(float64))
}

// NullCount returns the number of missing values.
func (s *Series) NullCount() int {
	if s.Kind() != KindFloat {
		return s.arr.NullN()
	}
	n := 0
	for i := 0; i < s.Len(); i++ {
		if s.IsNull(i) {
			n++
		}
	}
	return n
}

// Value returns value i.
func (s *Series) Value(i int) Value {
	return ValueAt(s.arr, i)
}

// Values returns every value in order.
func (s *Series) Values() []Value {
	out := make([]Value, s.Len())
	for i := range out {
		out[i] = s.Value(i)
	}
	return out
}

// Strings returns every value formatted as a string; nulls are empty.
func (s *Series) Strings() []string {
	out := make([]string, s.Len())
	for i := range out {
		out[i] = s.Value(i).Formatted
	}
	return out
}

// Float64 returns value i as a float64 when it is a non-null number.
func (s *Series) Float64(i int) (float64, bool) {
	return s.Value(i).Float64()
}

// Float64s returns the column as float64s with missing values as NaN.
// Non-numeric columns yield all NaN.
func (s *Series) Float64s() []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		f, ok := s.Float64(i)
		if !ok {
			f = math.NaN()
		}
		out[i] = f
	}
	return out
}

// Label returns the row label of value i.
func (s *Series) Label(i int) any {
	return ValueAt(s.index, i).Raw
}

// IsUnique reports whether no value appears twice. Missing values compare
// equal to each other.
func (s *Series) IsUnique() bool {
	seen := make(map[any]struct{}, s.Len())
	for i := 0; i < s.Len(); i++ {
		k := s.Value(i).Key()
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
	}
	return true
}

// Duplicates returns each value that appears more than once, reported once
// at its second appearance.
func (s *Series) Duplicates() []any {
	counts := make(map[any]int, s.Len())
	var dups []any
	for i := 0; i < s.Len(); i++ {
		v := s.Value(i)
		k := v.Key()
		counts[k]++
		if counts[k] == 2 {
			dups = append(dups, v.Raw)
		}
	}
	return dups
}

// Mean returns the arithmetic mean of the non-missing values. ok is false
// for non-numeric columns or when no value is present.
func (s *Series) Mean() (mean float64, ok bool) {
	if !s.IsNumeric() {
		return 0, false
	}
	var sum float64
	n := 0
	for i := 0; i < s.Len(); i++ {
		if f, ok := s.Float64(i); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Std returns the sample standard deviation (one delta degree of freedom)
// of the non-missing values. ok is false when fewer than two values exist.
func (s *Series) Std() (std float64, ok bool) {
	mean, ok := s.Mean()
	if !ok {
		return 0, false
	}
	var ss float64
	n := 0
	for i := 0; i < s.Len(); i++ {
		if f, ok := s.Float64(i); ok {
			d := f - mean
			ss += d * d
			n++
		}
	}
	if n < 2 {
		return 0, false
	}
	return math.Sqrt(ss / float64(n-1)), true
}

// IsMonotonic reports whether the values are ordered in the given
// direction. With strict, equal neighbours break the order. Any missing
// value makes the column non-monotonic.
func (s *Series) IsMonotonic(dir Direction, strict bool) (bool, error) {
	var inc, dec = true, true
	for i := 0; i < s.Len(); i++ {
		if s.IsNull(i) {
			return false, nil
		}
		if i == 0 {
			continue
		}
		c, err := Compare(s.Value(i-1), s.Value(i))
		if err != nil {
			return false, fmt.Errorf("column %q: %w", s.name, err)
		}
		if c > 0 || (strict && c == 0) {
			inc = false
		}
		if c < 0 || (strict && c == 0) {
			dec = false
		}
	}
	switch dir {
	case Increasing:
		return inc, nil
	case Decreasing:
		return dec, nil
	case Either:
		return inc || dec, nil
	default:
		return false, fmt.Errorf("unknown direction %d", dir)
	}
}

// Diff returns the first discrete difference of a numeric column. The
// first element and any element next to a missing value are NaN.
func (s *Series) Diff() []float64 {
	vals := s.Float64s()
	out := make([]float64, len(vals))
	for i := range out {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = vals[i] - vals[i-1]
	}
	return out
}
