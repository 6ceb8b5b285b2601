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

// Cells is cell by cell read access to a table, as consumed by the text
// writers of package source. Out of range positions return ErrInvalidRow
// or ErrInvalidColumn.
type Cells interface {
	RowCount() int
	ColumnCount() int
	ColumnName(col int) (string, error)
	Cell(row, col int) (Value, error)
}

var _ Cells = (*Frame)(nil)
