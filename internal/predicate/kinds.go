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

package predicate

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/magpierre/engarde/datatable"
)

type (
	frameFunc  = func(rows, cols int, columns []string) (bool, string)
	columnFunc = func(name, dtype, kind string, n, nulls int, unique, numeric bool, mean, std float64, num []float64, str []string) (bool, string)
	rowFunc    = func(label string, num map[string]float64, str map[string]string, null map[string]bool) (bool, string)
	dtypeFunc  = func(dtype, kind string) (bool, string)
)

// Frame is a compiled frame predicate.
type Frame struct {
	Expr string
	fn   frameFunc
}

// CompileFrame compiles an expression over rows, cols and columns.
func CompileFrame(expr string) (*Frame, error) {
	fn, err := compile[frameFunc]("rows, cols int, columns []string", expr)
	if err != nil {
		return nil, err
	}
	return &Frame{Expr: expr, fn: fn}, nil
}

// Eval evaluates the predicate on f.
func (p *Frame) Eval(f *datatable.Frame) (bool, error) {
	return result(p.Expr, func() (bool, string) {
		return p.fn(f.NumRows(), f.NumCols(), f.ColumnNames())
	})
}

// Column is a compiled column predicate.
type Column struct {
	Expr string
	fn   columnFunc
}

// CompileColumn compiles an expression over a column's summary variables.
func CompileColumn(expr string) (*Column, error) {
	fn, err := compile[columnFunc](
		"name, dtype, kind string, n, nulls int, unique, numeric bool, mean, std float64, num []float64, str []string",
		expr)
	if err != nil {
		return nil, err
	}
	return &Column{Expr: expr, fn: fn}, nil
}

// Eval evaluates the predicate on s.
func (p *Column) Eval(s *datatable.Series) (bool, error) {
	mean, _ := s.Mean()
	std, _ := s.Std()
	return result(p.Expr, func() (bool, string) {
		return p.fn(s.Name(), s.DataType().String(), kindName(s.Kind()),
			s.Len(), s.NullCount(), s.IsUnique(), s.IsNumeric(),
			mean, std, s.Float64s(), s.Strings())
	})
}

// Row is a compiled row predicate.
type Row struct {
	Expr string
	fn   rowFunc
}

// CompileRow compiles an expression over a row's values.
func CompileRow(expr string) (*Row, error) {
	fn, err := compile[rowFunc](
		"label string, num map[string]float64, str map[string]string, null map[string]bool",
		expr)
	if err != nil {
		return nil, err
	}
	return &Row{Expr: expr, fn: fn}, nil
}

// Eval evaluates the predicate on r.
func (p *Row) Eval(r datatable.Row) (bool, error) {
	num := make(map[string]float64, len(r.Columns))
	str := make(map[string]string, len(r.Columns))
	null := make(map[string]bool, len(r.Columns))
	for i, name := range r.Columns {
		v := r.Values[i]
		if v.IsNull {
			null[name] = true
			continue
		}
		if f, ok := v.Float64(); ok {
			num[name] = f
		}
		str[name] = v.Formatted
	}
	return result(p.Expr, func() (bool, string) {
		return p.fn(datatable.ValueOf(r.Label).Formatted, num, str, null)
	})
}

// Dtype is a compiled dtype predicate.
type Dtype struct {
	Expr string
	fn   dtypeFunc
}

// CompileDtype compiles an expression over dtype and kind.
func CompileDtype(expr string) (*Dtype, error) {
	fn, err := compile[dtypeFunc]("dtype, kind string", expr)
	if err != nil {
		return nil, err
	}
	return &Dtype{Expr: expr, fn: fn}, nil
}

// Eval evaluates the predicate on dt.
func (p *Dtype) Eval(dt arrow.DataType) (bool, error) {
	return result(p.Expr, func() (bool, string) {
		return p.fn(dt.String(), kindName(datatable.KindOf(dt)))
	})
}

func kindName(k datatable.Kind) string {
	return strings.ToLower(k.String())
}
