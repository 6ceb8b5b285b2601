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
	"strconv"
	"strings"

	"github.com/magpierre/engarde/datatable"
)

// CompOp is a comparison operator.
type CompOp int

const (
	OpEqual CompOp = iota
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpContains
)

func (op CompOp) String() string {
	for _, o := range operators {
		if o.op == op {
			return o.symbol
		}
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// Comparison compares one column with a literal. Numeric cells compare
// numerically when the literal parses as a number; everything else
// compares case-insensitively as text. Missing cells only match !=.
type Comparison struct {
	Column string
	Op     CompOp
	Value  string
}

func (c *Comparison) Evaluate(row datatable.Row) (bool, error) {
	v, ok := row.Get(c.Column)
	if !ok {
		return false, fmt.Errorf("%w: %q", datatable.ErrColumnNotFound, c.Column)
	}
	if v.IsNull {
		return c.Op == OpNotEqual, nil
	}

	if c.Op == OpContains {
		return strings.Contains(strings.ToLower(v.Formatted), strings.ToLower(c.Value)), nil
	}
	cmp := compare(v, c.Value)
	switch c.Op {
	case OpEqual:
		return cmp == 0, nil
	case OpNotEqual:
		return cmp != 0, nil
	case OpGreater:
		return cmp > 0, nil
	case OpLess:
		return cmp < 0, nil
	case OpGreaterEqual:
		return cmp >= 0, nil
	case OpLessEqual:
		return cmp <= 0, nil
	default:
		return false, fmt.Errorf("%w: unknown operator %d", ErrInvalidFilter, c.Op)
	}
}

func (c *Comparison) Description() string {
	return fmt.Sprintf("%s %s %s", c.Column, c.Op, c.Value)
}

func compare(v datatable.Value, literal string) int {
	if f, ok := v.Float64(); ok {
		if lit, err := strconv.ParseFloat(strings.TrimSpace(literal), 64); err == nil {
			switch {
			case f < lit:
				return -1
			case f > lit:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(strings.ToLower(v.Formatted), strings.ToLower(literal))
}

// ContainsAny matches rows where any non-missing cell contains Value,
// ignoring case.
type ContainsAny struct {
	Value string
}

func (c *ContainsAny) Evaluate(row datatable.Row) (bool, error) {
	term := strings.ToLower(c.Value)
	for _, v := range row.Values {
		if !v.IsNull && strings.Contains(strings.ToLower(v.Formatted), term) {
			return true, nil
		}
	}
	return false, nil
}

func (c *ContainsAny) Description() string {
	return fmt.Sprintf("* ~ %s", c.Value)
}
