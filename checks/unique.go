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

// IsUnique passes when no selected column holds a value twice. With no
// columns every column is checked. The failure names the first offending
// column and its duplicated values.
func IsUnique(f *datatable.Frame, columns ...string) (*datatable.Frame, error) {
	cols, err := f.Columns(columns...)
	if err != nil {
		return nil, unknownColumn(err)
	}
	for _, s := range cols {
		if s.IsUnique() {
			continue
		}
		e := fail(NameIsUnique, f, "Column %q contains non-unique values", s.Name())
		e.Columns = []string{s.Name()}
		e.Values = s.Duplicates()
		return nil, e
	}
	return f, nil
}

// UniqueIndex passes when no row label appears twice. The failure lists
// the duplicated labels.
func UniqueIndex(f *datatable.Frame) (*datatable.Frame, error) {
	if f.IndexIsUnique() {
		return f, nil
	}
	dups := f.DuplicatedLabels()
	e := fail(NameUniqueIndex, f, "Index has duplicate labels: %v", dups)
	e.Rows = dups
	return nil, e
}
