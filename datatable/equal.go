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

import (
	"fmt"
	"math"
	"slices"
)

// EqualOption configures Equal.
type EqualOption func(*equalConfig)

type equalConfig struct {
	rtol        float64
	atol        float64
	checkDtype  bool
	ignoreOrder bool
	exact       bool
}

// Default tolerances used by Equal for floating point values.
const (
	DefaultRelTol = 1e-5
	DefaultAbsTol = 1e-8
)

// WithTolerance sets the relative and absolute tolerance for floating
// point comparison: |a-b| <= atol + rtol*|b|.
func WithTolerance(rtol, atol float64) EqualOption {
	return func(c *equalConfig) {
		c.rtol, c.atol = rtol, atol
	}
}

// WithCheckDtype controls whether column dtypes must match exactly.
// When false, numeric columns of different dtypes compare by value.
func WithCheckDtype(check bool) EqualOption {
	return func(c *equalConfig) {
		c.checkDtype = check
	}
}

// WithIgnoreColumnOrder matches columns by name regardless of position.
func WithIgnoreColumnOrder() EqualOption {
	return func(c *equalConfig) {
		c.ignoreOrder = true
	}
}

// WithExact disables tolerances.
func WithExact() EqualOption {
	return func(c *equalConfig) {
		c.exact = true
	}
}

// Equal reports whether a and b hold the same data: shape, row labels,
// column names, dtypes and values. Missing values (null or NaN) equal each
// other. The returned error wraps ErrNotEqual and names the first
// difference found.
func Equal(a, b *Frame, opts ...EqualOption) error {
	cfg := equalConfig{rtol: DefaultRelTol, atol: DefaultAbsTol, checkDtype: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	ar, ac := a.Shape()
	br, bc := b.Shape()
	if ar != br || ac != bc {
		return fmt.Errorf("%w: shape (%d, %d) != (%d, %d)", ErrNotEqual, ar, ac, br, bc)
	}

	an, bn := a.ColumnNames(), b.ColumnNames()
	if cfg.ignoreOrder {
		an, bn = slices.Clone(an), slices.Clone(bn)
		slices.Sort(an)
		slices.Sort(bn)
	}
	if !slices.Equal(an, bn) {
		return fmt.Errorf("%w: columns %v != %v", ErrNotEqual, a.ColumnNames(), b.ColumnNames())
	}

	ai, bi := a.Index(), b.Index()
	for i := 0; i < ar; i++ {
		if !cfg.valuesEqual(ai.Value(i), bi.Value(i)) {
			return fmt.Errorf("%w: index label at position %d: %v != %v", ErrNotEqual, i, ai.Value(i), bi.Value(i))
		}
	}

	for _, name := range a.ColumnNames() {
		as, err := a.Column(name)
		if err != nil {
			return err
		}
		bs, err := b.Column(name)
		if err != nil {
			return err
		}
		if err := cfg.seriesEqual(as, bs); err != nil {
			return err
		}
	}
	return nil
}

func (c equalConfig) seriesEqual(a, b *Series) error {
	if c.checkDtype && !SameDataType(a.DataType(), b.DataType()) {
		return fmt.Errorf("%w: column %q dtype %s != %s", ErrNotEqual, a.Name(), a.DataType(), b.DataType())
	}
	if !c.checkDtype && a.Kind() != b.Kind() && !(a.IsNumeric() && b.IsNumeric()) {
		return fmt.Errorf("%w: column %q kind %s != %s", ErrNotEqual, a.Name(), a.Kind(), b.Kind())
	}
	for i := 0; i < a.Len(); i++ {
		va, vb := a.Value(i), b.Value(i)
		if !c.valuesEqual(va, vb) {
			return fmt.Errorf("%w: column %q at row %v: %v != %v", ErrNotEqual, a.Name(), a.Label(i), va, vb)
		}
	}
	return nil
}

func (c equalConfig) valuesEqual(a, b Value) bool {
	if a.IsNull || b.IsNull {
		return a.IsNull && b.IsNull
	}
	if !c.exact && (a.Kind == KindFloat || b.Kind == KindFloat || a.Kind == KindDecimal || b.Kind == KindDecimal) {
		x, okA := a.Float64()
		y, okB := b.Float64()
		if okA && okB {
			if math.IsInf(x, 0) || math.IsInf(y, 0) {
				return x == y
			}
			return math.Abs(x-y) <= c.atol+c.rtol*math.Abs(y)
		}
	}
	return a.Equal(b)
}
