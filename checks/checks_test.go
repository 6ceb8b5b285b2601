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

package checks_test

import (
	"errors"
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/engarde/checks"
	"github.com/magpierre/engarde/datatable"
)

func frame(t *testing.T, cols ...datatable.Column) *datatable.Frame {
	t.Helper()
	f, err := datatable.New(cols...)
	require.NoError(t, err)
	t.Cleanup(f.Release)
	return f
}

func clean(t *testing.T) *datatable.Frame {
	return frame(t,
		datatable.Int64s("a", 1, 2, 3, 4),
		datatable.Float64s("b", 0.5, 1.5, 2.5, 3.5),
		datatable.Strings("c", "w", "x", "y", "z"),
	)
}

func requireValidation(t *testing.T, err error) *checks.ValidationError {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, checks.ErrValidationFailed)
	assert.False(t, checks.IsConfigurationError(err))
	ve, ok := checks.AsValidationError(err)
	require.True(t, ok)
	return ve
}

func requireConfig(t *testing.T, err error, target error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, target)
	assert.ErrorIs(t, err, checks.ErrConfiguration)
	assert.False(t, checks.IsValidationError(err))
}

func TestPassThroughIdentity(t *testing.T) {
	f := clean(t)
	ref := clean(t)

	passing := map[string]func(*datatable.Frame) (*datatable.Frame, error){
		"none_missing": func(f *datatable.Frame) (*datatable.Frame, error) { return checks.NoneMissing(f) },
		"is_monotonic": func(f *datatable.Frame) (*datatable.Frame, error) {
			return checks.IsMonotonicAll(f, checks.Monotonic{Direction: datatable.Increasing, Strict: true})
		},
		"is_shape":     func(f *datatable.Frame) (*datatable.Frame, error) { return checks.IsShape(f, 4, 3) },
		"is_unique":    func(f *datatable.Frame) (*datatable.Frame, error) { return checks.IsUnique(f) },
		"unique_index": checks.UniqueIndex,
		"within_set": func(f *datatable.Frame) (*datatable.Frame, error) {
			return checks.WithinSet(f, map[string][]any{"a": {1, 2, 3, 4}})
		},
		"within_range": func(f *datatable.Frame) (*datatable.Frame, error) {
			return checks.WithinRange(f, map[string]checks.Bounds{"b": {Low: 0, High: 4}})
		},
		"within_n_std": func(f *datatable.Frame) (*datatable.Frame, error) { return checks.WithinNStd(f, checks.DefaultNStd) },
		"has_dtypes": func(f *datatable.Frame) (*datatable.Frame, error) {
			return checks.HasDtypes(f, map[string]checks.DtypeRule{
				"a": checks.Dtype(arrow.PrimitiveTypes.Int64),
				"b": checks.Inferred("floating"),
			})
		},
		"one_to_many": func(f *datatable.Frame) (*datatable.Frame, error) { return checks.OneToMany(f, "a", "c") },
		"is_same_as":  func(f *datatable.Frame) (*datatable.Frame, error) { return checks.IsSameAs(f, ref) },
		"verify_df": func(f *datatable.Frame) (*datatable.Frame, error) {
			return checks.VerifyDF(f, func(f *datatable.Frame) bool { return f.NumRows() == 4 })
		},
		"verify_columns": func(f *datatable.Frame) (*datatable.Frame, error) {
			return checks.VerifyColumns(f, func(s *datatable.Series) bool { return s.Len() == 4 })
		},
		"verify_rows": func(f *datatable.Frame) (*datatable.Frame, error) {
			return checks.VerifyRows(f, func(r datatable.Row) bool { return len(r.Values) == 3 })
		},
	}
	for name, check := range passing {
		t.Run(name, func(t *testing.T) {
			got, err := check(f)
			require.NoError(t, err)
			assert.Same(t, f, got)

			again, err := check(got)
			require.NoError(t, err)
			assert.Same(t, f, again)
		})
	}
}

func TestNoneMissing(t *testing.T) {
	f := frame(t,
		datatable.Float64s("A", 1, math.NaN(), 3),
		datatable.Float64s("B", 1, 2, 3),
	)
	got, err := checks.NoneMissing(f)
	assert.Nil(t, got)
	ve := requireValidation(t, err)
	assert.Equal(t, checks.NameNoneMissing, ve.Check)
	assert.Equal(t, []checks.Location{{Row: int64(1), Column: "A"}}, ve.Locations)
	assert.Equal(t, []string{"A"}, ve.Columns)

	_, err = checks.NoneMissing(f, "B")
	assert.NoError(t, err)

	_, err = checks.NoneMissing(f, "Z")
	requireConfig(t, err, datatable.ErrColumnNotFound)
}

func TestNoneMissing_LocationOrder(t *testing.T) {
	f := frame(t,
		datatable.Values("x", arrow.PrimitiveTypes.Int64, nil, 1, nil),
		datatable.Values("y", arrow.BinaryTypes.String, "a", nil, "c"),
	)
	_, err := checks.NoneMissing(f)
	ve := requireValidation(t, err)
	assert.Equal(t, []checks.Location{
		{Row: int64(0), Column: "x"},
		{Row: int64(2), Column: "x"},
		{Row: int64(1), Column: "y"},
	}, ve.Locations)
	assert.Contains(t, ve.Error(), "3 missing values")
}

func TestIsMonotonic(t *testing.T) {
	tests := []struct {
		name string
		col  datatable.Column
		rule checks.Monotonic
		ok   bool
	}{
		{"strict increasing with tie", datatable.Int64s("a", 1, 1, 2), checks.Monotonic{Direction: datatable.Increasing, Strict: true}, false},
		{"increasing with tie", datatable.Int64s("a", 1, 1, 2), checks.Monotonic{Direction: datatable.Increasing}, true},
		{"either detects decreasing", datatable.Int64s("a", 3, 2, 1), checks.Monotonic{Direction: datatable.Either}, true},
		{"either strict", datatable.Int64s("a", 3, 2, 2), checks.Monotonic{Direction: datatable.Either, Strict: true}, false},
		{"decreasing", datatable.Int64s("a", 1, 2), checks.Monotonic{Direction: datatable.Decreasing}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := frame(t, tt.col)
			got, err := checks.IsMonotonic(f, map[string]checks.Monotonic{"a": tt.rule})
			if tt.ok {
				require.NoError(t, err)
				assert.Same(t, f, got)
				return
			}
			ve := requireValidation(t, err)
			assert.Equal(t, []string{"a"}, ve.Columns)
		})
	}

	f := frame(t, datatable.Int64s("a", 1))
	_, err := checks.IsMonotonic(f, map[string]checks.Monotonic{"nope": {}})
	requireConfig(t, err, datatable.ErrColumnNotFound)
}

func TestIsShape(t *testing.T) {
	two := frame(t, datatable.Int64s("a", 1, 2, 3), datatable.Int64s("b", 1, 2, 3))
	three := frame(t, datatable.Int64s("a", 1), datatable.Int64s("b", 1), datatable.Int64s("c", 1))

	_, err := checks.IsShape(two, checks.AnySize, 2)
	assert.NoError(t, err)

	_, err = checks.IsShape(three, checks.AnySize, 2)
	ve := requireValidation(t, err)
	assert.Equal(t, "Expected shape: (-1, 2)\n\t\tActual shape:   (1, 3)", ve.Message)

	_, err = checks.IsShape(two, 3, checks.AnySize)
	assert.NoError(t, err)

	_, err = checks.IsShape(two, -2, 1)
	requireConfig(t, err, checks.ErrInvalidShape)
}

func TestIsUnique(t *testing.T) {
	f := frame(t, datatable.Int64s("a", 1, 2, 3), datatable.Strings("b", "x", "y", "x"))

	_, err := checks.IsUnique(f, "a")
	assert.NoError(t, err)

	_, err = checks.IsUnique(f)
	ve := requireValidation(t, err)
	assert.Equal(t, `Column "b" contains non-unique values`, ve.Message)
	assert.Equal(t, []string{"b"}, ve.Columns)
	assert.Equal(t, []any{"x"}, ve.Values)
}

func TestUniqueIndex(t *testing.T) {
	base := frame(t, datatable.Strings("k", "a", "b", "a"), datatable.Int64s("v", 1, 2, 3))
	f, err := datatable.NewFrame(base.Record(), datatable.WithIndexColumn("k"))
	require.NoError(t, err)
	defer f.Release()

	_, err = checks.UniqueIndex(f)
	ve := requireValidation(t, err)
	assert.Equal(t, []any{"a"}, ve.Rows)
}

func TestWithinSet(t *testing.T) {
	f := frame(t, datatable.Int64s("A", 1, 2, 3))

	_, err := checks.WithinSet(f, map[string][]any{"A": {1, 2}})
	ve := requireValidation(t, err)
	assert.Equal(t, []any{int64(3)}, ve.Values)
	assert.Equal(t, []checks.Location{{Row: int64(2), Column: "A"}}, ve.Locations)

	_, err = checks.WithinSet(f, map[string][]any{"A": {1.0, 2.0, 3.0}})
	assert.NoError(t, err)

	withNull := frame(t, datatable.Values("A", arrow.BinaryTypes.String, "x", nil))
	_, err = checks.WithinSet(withNull, map[string][]any{"A": {"x"}})
	requireValidation(t, err)
	_, err = checks.WithinSet(withNull, map[string][]any{"A": {"x", nil}})
	assert.NoError(t, err)
}

func TestWithinRange(t *testing.T) {
	f := frame(t, datatable.Int64s("A", -1, 5))

	_, err := checks.WithinRange(f, map[string]checks.Bounds{"A": {Low: 0, High: 10}})
	ve := requireValidation(t, err)
	require.NotNil(t, ve.Mask)
	assert.Equal(t, []bool{true, false}, ve.Mask.Column(0))
	assert.Equal(t, []any{int64(-1)}, ve.Values)

	_, err = checks.WithinRange(f, map[string]checks.Bounds{"A": {Low: -1, High: 5}})
	assert.NoError(t, err)

	_, err = checks.WithinRange(f, map[string]checks.Bounds{"A": {High: 5}})
	assert.NoError(t, err, "nil bound is open")

	nulls := frame(t, datatable.Float64s("A", math.NaN(), 1))
	_, err = checks.WithinRange(nulls, map[string]checks.Bounds{"A": {Low: 0, High: 2}})
	assert.NoError(t, err)

	_, err = checks.WithinRange(f, map[string]checks.Bounds{"A": {Low: "a", High: "z"}})
	requireConfig(t, err, checks.ErrIncomparable)
}

func TestWithinNStd(t *testing.T) {
	vals := make([]float64, 20)
	for i := range vals {
		vals[i] = float64(i % 2)
	}
	vals[7] = 100
	f := frame(t,
		datatable.Float64s("x", vals...),
		datatable.Strings("label", make([]string, 20)...),
	)

	_, err := checks.WithinNStd(f, 3)
	ve := requireValidation(t, err)
	assert.Equal(t, []checks.Location{{Row: int64(7), Column: "x"}}, ve.Locations)

	_, err = checks.WithinNStd(f, 10)
	assert.NoError(t, err)

	constant := frame(t, datatable.Int64s("c", 4, 4, 4))
	_, err = checks.WithinNStd(constant, 1)
	assert.NoError(t, err)

	_, err = checks.WithinNStd(f, 0)
	requireConfig(t, err, checks.ErrInvalidN)
}

func TestHasDtypes(t *testing.T) {
	f := frame(t, datatable.Int64s("a", 1), datatable.Int64s("b", 2))
	mixed := frame(t, datatable.Int64s("a", 1), datatable.Float64s("b", 2))

	int64Rule := checks.Dtype(arrow.PrimitiveTypes.Int64)
	_, err := checks.HasDtype(f, int64Rule)
	assert.NoError(t, err)

	_, err = checks.HasDtype(mixed, int64Rule)
	ve := requireValidation(t, err)
	assert.Equal(t, []string{"b"}, ve.Columns)
	assert.Equal(t, `Column "b" is checked for dtype int64, had dtype float64`, ve.Message)

	_, err = checks.HasDtypes(mixed, map[string]checks.DtypeRule{"b": checks.Inferred("integer")})
	ve = requireValidation(t, err)
	assert.Equal(t, `Column "b" expected "integer" for infer_dtype, got "floating"`, ve.Message)

	isInt := checks.DtypePredicate("is_int", func(dt arrow.DataType) any {
		return datatable.KindOf(dt) == datatable.KindInt
	})
	_, err = checks.HasDtype(f, isInt)
	assert.NoError(t, err)
	_, err = checks.HasDtype(mixed, isInt)
	ve = requireValidation(t, err)
	assert.Contains(t, ve.Message, "for function is_int")

	yes := checks.DtypePredicate("yes", func(arrow.DataType) any { return "yes" })
	_, err = checks.HasDtype(f, yes)
	requireConfig(t, err, checks.ErrNonBooleanResult)

	boom := checks.DtypePredicate("boom", func(arrow.DataType) any { return errors.New("boom") })
	_, err = checks.HasDtype(f, boom)
	requireConfig(t, err, checks.ErrConfiguration)
	assert.NotErrorIs(t, err, checks.ErrNonBooleanResult)
	assert.ErrorContains(t, err, "boom")

	_, err = checks.HasDtype(f, checks.Inferred("whatever"))
	requireConfig(t, err, checks.ErrInvalidRule)
}

func TestParseDtypeRule(t *testing.T) {
	r, err := checks.ParseDtypeRule("integer")
	require.NoError(t, err)
	assert.Equal(t, checks.RuleInferred, r.Kind)

	r, err = checks.ParseDtypeRule("int64")
	require.NoError(t, err)
	assert.Equal(t, checks.RuleDtype, r.Kind)
	assert.Equal(t, "int64", r.String())

	_, err = checks.ParseDtypeRule("int65")
	requireConfig(t, err, checks.ErrInvalidRule)
	assert.ErrorIs(t, err, datatable.ErrUnsupportedType)
}

func TestOneToMany(t *testing.T) {
	f := frame(t,
		datatable.Int64s("dept", 1, 1, 2),
		datatable.Int64s("emp", 1, 2, 1),
	)
	_, err := checks.OneToMany(f, "dept", "emp")
	ve := requireValidation(t, err)
	assert.Equal(t, "1 in emp has multiple values for dept", ve.Message)
	assert.Equal(t, []any{int64(1)}, ve.Values)

	ok := frame(t,
		datatable.Int64s("dept", 1, 1, 2, 1),
		datatable.Int64s("emp", 1, 2, 3, 1),
	)
	_, err = checks.OneToMany(ok, "dept", "emp")
	assert.NoError(t, err)

	_, err = checks.OneToMany(ok, "dept", "nope")
	requireConfig(t, err, datatable.ErrColumnNotFound)
}

func TestIsSameAs(t *testing.T) {
	f := frame(t, datatable.Float64s("a", 1, 2))
	other := frame(t, datatable.Float64s("a", 1, 3))

	_, err := checks.IsSameAs(f, other)
	ve := requireValidation(t, err)
	assert.Equal(t, "Frames are not equal", ve.Message)
	assert.ErrorIs(t, err, datatable.ErrNotEqual)
	assert.ErrorIs(t, errors.Unwrap(ve), datatable.ErrNotEqual)

	near := frame(t, datatable.Float64s("a", 1, 2.05))
	_, err = checks.IsSameAs(f, near, datatable.WithTolerance(0.1, 0))
	assert.NoError(t, err)
}

func TestEmptyItems(t *testing.T) {
	f := clean(t)
	never := func(*datatable.Series) bool { return false }
	tests := map[string]func() (*datatable.Frame, error){
		"within_set": func() (*datatable.Frame, error) {
			return checks.WithinSet(f, map[string][]any{})
		},
		"within_range": func() (*datatable.Frame, error) {
			return checks.WithinRange(f, map[string]checks.Bounds{})
		},
		"is_monotonic": func() (*datatable.Frame, error) {
			return checks.IsMonotonic(f, map[string]checks.Monotonic{})
		},
		"has_dtypes": func() (*datatable.Frame, error) {
			return checks.HasDtypes(f, map[string]checks.DtypeRule{})
		},
		"verify_each_column": func() (*datatable.Frame, error) {
			return checks.VerifyEachColumn(f, map[string]checks.SeriesPredicate{}, checks.HowAll)
		},
		"verify_columns_no_names": func() (*datatable.Frame, error) {
			return checks.VerifyColumns(f, func(*datatable.Series) bool { return true }, checks.OnColumns())
		},
		"verify_rows_no_labels": func() (*datatable.Frame, error) {
			return checks.VerifyRows(f, func(datatable.Row) bool { return true }, checks.OnRows([]any{}...))
		},
		"nil_maps": func() (*datatable.Frame, error) {
			return checks.WithinSet(f, nil)
		},
	}
	for name, run := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := run()
			require.NoError(t, err)
			assert.Same(t, f, got)
		})
	}

	t.Run("verify_each_column_any", func(t *testing.T) {
		_, err := checks.VerifyEachColumn(f, map[string]checks.SeriesPredicate{}, checks.HowAny)
		ve := requireValidation(t, err)
		assert.Empty(t, ve.Columns)
	})

	t.Run("empty_row_labels_check_every_row", func(t *testing.T) {
		_, err := checks.VerifyRows(f, func(datatable.Row) bool { return false }, checks.OnRows([]any{}...))
		ve := requireValidation(t, err)
		assert.Len(t, ve.Rows, f.NumRows())
	})

	t.Run("single_column", func(t *testing.T) {
		_, err := checks.VerifyEachColumn(f, map[string]checks.SeriesPredicate{"a": never}, checks.HowAll)
		ve := requireValidation(t, err)
		assert.Equal(t, []string{"a"}, ve.Columns)
	})
}

func TestIdempotent(t *testing.T) {
	f := clean(t)
	tests := map[string]func() (*datatable.Frame, error){
		"none_missing": func() (*datatable.Frame, error) { return checks.NoneMissing(f) },
		"is_unique":    func() (*datatable.Frame, error) { return checks.IsUnique(f, "a") },
		"within_set": func() (*datatable.Frame, error) {
			return checks.WithinSet(f, map[string][]any{"c": {"w", "x", "y", "z"}})
		},
		"within_range": func() (*datatable.Frame, error) {
			return checks.WithinRange(f, map[string]checks.Bounds{"a": {Low: 1, High: 4}})
		},
		"within_n_std": func() (*datatable.Frame, error) { return checks.WithinNStd(f, checks.DefaultNStd) },
		"is_monotonic": func() (*datatable.Frame, error) {
			return checks.IsMonotonicAll(f, checks.Monotonic{Direction: datatable.Increasing, Strict: true})
		},
	}
	for name, run := range tests {
		t.Run(name, func(t *testing.T) {
			first, err := run()
			require.NoError(t, err)
			second, err := run()
			require.NoError(t, err)
			assert.Same(t, f, first)
			assert.Same(t, first, second)
			assert.Equal(t, 4, f.NumRows())
		})
	}
}
