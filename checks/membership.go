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

package checks

import (
	"fmt"

	"github.com/magpierre/engarde/datatable"
)

// WithinSet passes when every value of each column in items is one of the
// allowed values. Numbers match across types (1 == 1.0). A missing value is
// a member only when the set contains nil.
func WithinSet(f *datatable.Frame, items map[string][]any) (*datatable.Frame, error) {
	cols, err := itemSeries(f, items)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return f, nil
	}
	allowed := make([]map[any]struct{}, len(cols))
	for i, s := range cols {
		allowed[i] = make(map[any]struct{}, len(items[s.Name()]))
		for _, v := range items[s.Name()] {
			allowed[i][datatable.ValueOf(v).Key()] = struct{}{}
		}
	}

	var values []any
	mask, err := maskWhere(f, cols, func(c int, s *datatable.Series, row int) bool {
		v := s.Value(row)
		if _, ok := allowed[c][v.Key()]; ok {
			return false
		}
		values = append(values, v.Raw)
		return true
	})
	if err != nil {
		return nil, err
	}
	if !mask.Any() {
		return f, nil
	}
	e := fail(NameWithinSet, f, "Not in set: %v", values)
	e.Values = values
	e.Locations = BadLocations(mask)
	e.Columns = failingColumns(mask)
	e.Mask = mask
	return nil, e
}

// Bounds is an inclusive range. A nil bound is open.
type Bounds struct {
	Low  any
	High any
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%v, %v]", b.Low, b.High)
}

// WithinRange passes when every value of each column in items lies within
// its bounds. Missing values pass. The failure carries a mask of the
// offending cells.
func WithinRange(f *datatable.Frame, items map[string]Bounds) (*datatable.Frame, error) {
	cols, err := itemSeries(f, items)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return f, nil
	}

	var (
		values []any
		cmpErr error
	)
	mask, err := maskWhere(f, cols, func(c int, s *datatable.Series, row int) bool {
		if cmpErr != nil || s.IsNull(row) {
			return false
		}
		v := s.Value(row)
		out, err := outside(v, items[s.Name()])
		if err != nil {
			cmpErr = fmt.Errorf("%w: column %q: %w", ErrIncomparable, s.Name(), err)
			return false
		}
		if out {
			values = append(values, v.Raw)
		}
		return out
	})
	if err != nil {
		return nil, err
	}
	if cmpErr != nil {
		return nil, cmpErr
	}
	if !mask.Any() {
		return f, nil
	}
	e := fail(NameWithinRange, f, "Outside range: %v", values)
	e.Values = values
	e.Locations = BadLocations(mask)
	e.Columns = failingColumns(mask)
	e.Mask = mask
	return nil, e
}

func outside(v datatable.Value, b Bounds) (bool, error) {
	if b.Low != nil {
		c, err := datatable.Compare(datatable.ValueOf(b.Low), v)
		if err != nil {
			return false, err
		}
		if c > 0 {
			return true, nil
		}
	}
	if b.High != nil {
		c, err := datatable.Compare(v, datatable.ValueOf(b.High))
		if err != nil {
			return false, err
		}
		if c > 0 {
			return true, nil
		}
	}
	return false, nil
}
