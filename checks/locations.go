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

import "github.com/magpierre/engarde/datatable"

// BadLocations returns the (row label, column) pairs set in mask, column by
// column and, within a column, in row order.
func BadLocations(mask *datatable.Mask) []Location {
	var locs []Location
	for c, name := range mask.Columns() {
		for r, bad := range mask.Column(c) {
			if bad {
				locs = append(locs, Location{Row: mask.Label(r), Column: name})
			}
		}
	}
	return locs
}

// maskWhere builds a mask over cols setting the cells for which bad is true.
func maskWhere(f *datatable.Frame, cols []*datatable.Series, bad func(c int, s *datatable.Series, row int) bool) (*datatable.Mask, error) {
	names := make([]string, len(cols))
	for i, s := range cols {
		names[i] = s.Name()
	}
	mask, err := datatable.NewMask(f, names...)
	if err != nil {
		return nil, err
	}
	for c, s := range cols {
		for r := 0; r < s.Len(); r++ {
			if bad(c, s, r) {
				mask.Set(c, r, true)
			}
		}
	}
	return mask, nil
}
