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
	"math"

	"github.com/magpierre/engarde/datatable"
)

// DefaultNStd is the usual outlier threshold for WithinNStd.
const DefaultNStd = 3

// WithinNStd passes when every value of every numeric column lies strictly
// within n sample standard deviations of the column mean. Missing values
// are ignored, as are columns with fewer than two values or no spread.
//
// This is looser than a literal |v-mean| < n*std test, which would flag
// NaN cells and every cell of a constant column.
func WithinNStd(f *datatable.Frame, n float64) (*datatable.Frame, error) {
	if !(n > 0) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidN, n)
	}
	var numeric []*datatable.Series
	for _, name := range f.ColumnNames() {
		s, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		if s.IsNumeric() {
			numeric = append(numeric, s)
		}
	}
	if len(numeric) == 0 {
		return f, nil
	}

	type moments struct {
		mean, std float64
		ok        bool
	}
	stats := make([]moments, len(numeric))
	for i, s := range numeric {
		mean, _ := s.Mean()
		std, ok := s.Std()
		stats[i] = moments{mean: mean, std: std, ok: ok && std > 0}
	}

	mask, err := maskWhere(f, numeric, func(c int, s *datatable.Series, row int) bool {
		m := stats[c]
		if !m.ok {
			return false
		}
		v, ok := s.Float64(row)
		if !ok {
			return false
		}
		return !(math.Abs(v-m.mean) < n*m.std)
	})
	if err != nil {
		return nil, err
	}
	if !mask.Any() {
		return f, nil
	}
	locs := BadLocations(mask)
	e := fail(NameWithinNStd, f, "%d values outside %v standard deviations", len(locs), n)
	e.Locations = locs
	e.Columns = failingColumns(mask)
	e.Mask = mask
	return nil, e
}
