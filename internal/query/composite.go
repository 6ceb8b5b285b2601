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
	"fmt"
	"strings"

	"github.com/magpierre/engarde/datatable"
)

// LogicOp combines filters.
type LogicOp int

const (
	LogicAND LogicOp = iota
	LogicOR
)

func (op LogicOp) String() string {
	switch op {
	case LogicAND:
		return "AND"
	case LogicOR:
		return "OR"
	default:
		return fmt.Sprintf("unknown(%d)", op)
	}
}

// CompositeFilter combines filters with AND or OR, short-circuiting.
type CompositeFilter struct {
	Filters []Filter
	Logic   LogicOp
}

func (f *CompositeFilter) Evaluate(row datatable.Row) (bool, error) {
	if len(f.Filters) == 0 {
		return true, nil
	}

	switch f.Logic {
	case LogicAND:
		for _, filter := range f.Filters {
			passes, err := filter.Evaluate(row)
			if err != nil {
				return false, err
			}
			if !passes {
				return false, nil
			}
		}
		return true, nil

	case LogicOR:
		for _, filter := range f.Filters {
			passes, err := filter.Evaluate(row)
			if err != nil {
				return false, err
			}
			if passes {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, fmt.Errorf("%w: unknown logic operator %d", ErrInvalidFilter, f.Logic)
	}
}

func (f *CompositeFilter) Description() string {
	if len(f.Filters) == 0 {
		return "all rows"
	}
	descriptions := make([]string, len(f.Filters))
	for i, filter := range f.Filters {
		descriptions[i] = filter.Description()
	}
	return "(" + strings.Join(descriptions, " "+f.Logic.String()+" ") + ")"
}

// simplify unwraps a composite holding a single filter.
func (f *CompositeFilter) simplify() Filter {
	if len(f.Filters) == 1 {
		return f.Filters[0]
	}
	return f
}
