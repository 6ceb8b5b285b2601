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

package query

import (
	"context"

	"github.com/magpierre/engarde/datatable"
)

// Where returns the rows of f matching expr, keeping their labels.
func Where(ctx context.Context, f *datatable.Frame, expr string) (*datatable.Frame, error) {
	filter, err := NewParser(f.ColumnNames()).Parse(expr)
	if err != nil {
		return nil, err
	}
	return Apply(ctx, f, filter)
}

// Apply returns the rows of f for which filter holds.
func Apply(ctx context.Context, f *datatable.Frame, filter Filter) (*datatable.Frame, error) {
	var keep []int
	for i := 0; i < f.NumRows(); i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		ok, err := filter.Evaluate(f.RowView(i))
		if err != nil {
			return nil, err
		}
		if ok {
			keep = append(keep, i)
		}
	}
	if len(keep) == f.NumRows() {
		return f, nil
	}
	return f.Take(ctx, keep)
}
