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

// OneToMany passes when every distinct value of the many column appears
// with a single value of the unit column. Rows missing either value are
// ignored.
func OneToMany(f *datatable.Frame, unit, many string) (*datatable.Frame, error) {
	unitCol, err := f.Column(unit)
	if err != nil {
		return nil, unknownColumn(err)
	}
	manyCol, err := f.Column(many)
	if err != nil {
		return nil, unknownColumn(err)
	}

	owner := make(map[any]any, manyCol.Len())
	for i := 0; i < manyCol.Len(); i++ {
		if unitCol.IsNull(i) || manyCol.IsNull(i) {
			continue
		}
		m, u := manyCol.Value(i), unitCol.Value(i)
		prev, seen := owner[m.Key()]
		if !seen {
			owner[m.Key()] = u.Key()
			continue
		}
		if prev != u.Key() {
			e := fail(NameOneToMany, f, "%v in %s has multiple values for %s", m, many, unit)
			e.Columns = []string{many, unit}
			e.Values = []any{m.Raw}
			e.Rows = []any{f.Label(i)}
			return nil, e
		}
	}
	return f, nil
}

// IsSameAs passes when f equals ref under datatable.Equal. The failure
// wraps the difference reported by Equal.
func IsSameAs(f, ref *datatable.Frame, opts ...datatable.EqualOption) (*datatable.Frame, error) {
	if ref == nil {
		return nil, fmt.Errorf("%w: nil reference frame", ErrInvalidRule)
	}
	if err := datatable.Equal(f, ref, opts...); err != nil {
		e := fail(NameIsSameAs, f, "Frames are not equal")
		e.Cause = err
		return nil, e
	}
	return f, nil
}
