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

// NoneMissing passes when no selected cell is null or NaN. With no columns
// every column is checked. The failure lists the missing cells.
func NoneMissing(f *datatable.Frame, columns ...string) (*datatable.Frame, error) {
	cols, err := f.Columns(columns...)
	if err != nil {
		return nil, unknownColumn(err)
	}
	mask, err := maskWhere(f, cols, func(_ int, s *datatable.Series, row int) bool {
		return s.IsNull(row)
	})
	if err != nil {
		return nil, err
	}
	if !mask.Any() {
		return f, nil
	}
	locs := BadLocations(mask)
	e := fail(NameNoneMissing, f, "%d missing values", len(locs))
	e.Locations = locs
	e.Mask = mask
	e.Columns = failingColumns(mask)
	return nil, e
}

func failingColumns(mask *datatable.Mask) []string {
	var out []string
	for c, name := range mask.Columns() {
		for _, bad := range mask.Column(c) {
			if bad {
				out = append(out, name)
				break
			}
		}
	}
	return out
}
