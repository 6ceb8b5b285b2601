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
	"strings"

	"github.com/magpierre/engarde/datatable"
)

// Monotonic describes the required order of a column.
type Monotonic struct {
	Direction datatable.Direction
	// Strict forbids equal consecutive values.
	Strict bool
}

func (m Monotonic) String() string {
	if m.Strict {
		return "strictly " + m.Direction.String()
	}
	return m.Direction.String()
}

// IsMonotonic passes when every column in items is ordered as required.
// Columns holding missing values are never monotonic.
func IsMonotonic(f *datatable.Frame, items map[string]Monotonic) (*datatable.Frame, error) {
	names, err := itemColumns(f, items)
	if err != nil {
		return nil, err
	}
	var failed, descs []string
	for _, name := range names {
		s, err := f.Column(name)
		if err != nil {
			return nil, unknownColumn(err)
		}
		rule := items[name]
		ok, err := s.IsMonotonic(rule.Direction, rule.Strict)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIncomparable, err)
		}
		if !ok {
			failed = append(failed, name)
			descs = append(descs, fmt.Sprintf("%s (%s)", name, rule))
		}
	}
	if len(failed) == 0 {
		return f, nil
	}
	e := fail(NameIsMonotonic, f, "Columns are not monotonic: %s", strings.Join(descs, ", "))
	e.Columns = failed
	return nil, e
}

// IsMonotonicAll applies one Monotonic rule to every column.
func IsMonotonicAll(f *datatable.Frame, rule Monotonic) (*datatable.Frame, error) {
	items := make(map[string]Monotonic, f.NumCols())
	for _, name := range f.ColumnNames() {
		items[name] = rule
	}
	return IsMonotonic(f, items)
}
