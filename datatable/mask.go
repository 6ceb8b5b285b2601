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

import "fmt"

// Mask is a boolean matrix shaped like a frame (or a column subset of
// it). Checks set cells to true where a value violates a condition.
type Mask struct {
	columns []string
	labels  []any
	cells   [][]bool // column-major
}

// NewMask returns an all-false mask over the named columns of f, or over
// every column when none are given.
func NewMask(f *Frame, columns ...string) (*Mask, error) {
	if len(columns) == 0 {
		columns = f.ColumnNames()
	}
	for _, c := range columns {
		if !f.HasColumn(c) {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, c)
		}
	}
	cells := make([][]bool, len(columns))
	for i := range cells {
		cells[i] = make([]bool, f.NumRows())
	}
	return &Mask{columns: columns, labels: f.Labels(), cells: cells}, nil
}

// Set marks the cell at row position row of column col.
func (m *Mask) Set(col, row int, v bool) {
	m.cells[col][row] = v
}

// Get returns the cell at row position row of column col.
func (m *Mask) Get(col, row int) bool {
	return m.cells[col][row]
}

// Columns returns the mask's column names.
func (m *Mask) Columns() []string {
	return m.columns
}

// NumRows returns the number of rows.
func (m *Mask) NumRows() int {
	return len(m.labels)
}

// Label returns the row label of position row.
func (m *Mask) Label(row int) any {
	return m.labels[row]
}

// Column returns the cells of column col.
func (m *Mask) Column(col int) []bool {
	return m.cells[col]
}

// Any reports whether any cell is set.
func (m *Mask) Any() bool {
	for _, col := range m.cells {
		for _, v := range col {
			if v {
				return true
			}
		}
	}
	return false
}

// AnyRow returns, per row, whether any column is set in that row.
func (m *Mask) AnyRow() []bool {
	out := make([]bool, len(m.labels))
	for _, col := range m.cells {
		for i, v := range col {
			out[i] = out[i] || v
		}
	}
	return out
}

// Count returns the number of set cells.
func (m *Mask) Count() int {
	n := 0
	for _, col := range m.cells {
		for _, v := range col {
			if v {
				n++
			}
		}
	}
	return n
}
