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

package pipeline

import (
	"github.com/magpierre/engarde/checks"
	"github.com/magpierre/engarde/datatable"
)

// NoneMissing returns a Check running checks.NoneMissing.
func NoneMissing(columns ...string) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.NoneMissing(f, columns...)
	}
}

// IsMonotonic returns a Check running checks.IsMonotonic.
func IsMonotonic(items map[string]checks.Monotonic) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.IsMonotonic(f, items)
	}
}

// IsMonotonicAll returns a Check running checks.IsMonotonicAll.
func IsMonotonicAll(rule checks.Monotonic) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.IsMonotonicAll(f, rule)
	}
}

// IsShape returns a Check running checks.IsShape.
func IsShape(rows, cols int) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.IsShape(f, rows, cols)
	}
}

// IsUnique returns a Check running checks.IsUnique.
func IsUnique(columns ...string) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.IsUnique(f, columns...)
	}
}

// UniqueIndex returns a Check running checks.UniqueIndex.
func UniqueIndex() Check {
	return checks.UniqueIndex
}

// WithinSet returns a Check running checks.WithinSet.
func WithinSet(items map[string][]any) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.WithinSet(f, items)
	}
}

// WithinRange returns a Check running checks.WithinRange.
func WithinRange(items map[string]checks.Bounds) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.WithinRange(f, items)
	}
}

// WithinNStd returns a Check running checks.WithinNStd.
func WithinNStd(n float64) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.WithinNStd(f, n)
	}
}

// HasDtypes returns a Check running checks.HasDtypes.
func HasDtypes(items map[string]checks.DtypeRule) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.HasDtypes(f, items)
	}
}

// HasDtype returns a Check running checks.HasDtype.
func HasDtype(rule checks.DtypeRule) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.HasDtype(f, rule)
	}
}

// OneToMany returns a Check running checks.OneToMany.
func OneToMany(unit, many string) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.OneToMany(f, unit, many)
	}
}

// IsSameAs returns a Check comparing frames against ref.
func IsSameAs(ref *datatable.Frame, opts ...datatable.EqualOption) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.IsSameAs(f, ref, opts...)
	}
}

// VerifyDF returns a Check running checks.VerifyDF.
func VerifyDF(pred func(*datatable.Frame) bool) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.VerifyDF(f, pred)
	}
}

// VerifyDFNamed is VerifyDF with an explicit predicate name.
func VerifyDFNamed(name string, pred func(*datatable.Frame) bool) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.VerifyDFNamed(f, name, pred)
	}
}

// VerifyColumns returns a Check running checks.VerifyColumns.
func VerifyColumns(fn checks.SeriesPredicate, opts ...checks.AxisOption) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.VerifyColumns(f, fn, opts...)
	}
}

// VerifyEachColumn returns a Check running checks.VerifyEachColumn.
func VerifyEachColumn(preds map[string]checks.SeriesPredicate, how checks.How) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.VerifyEachColumn(f, preds, how)
	}
}

// VerifyRows returns a Check running checks.VerifyRows.
func VerifyRows(fn checks.RowPredicate, opts ...checks.AxisOption) Check {
	return func(f *datatable.Frame) (*datatable.Frame, error) {
		return checks.VerifyRows(f, fn, opts...)
	}
}
