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

import (
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"github.com/magpierre/engarde/datatable"
)

// How combines per-column or per-row results into one outcome.
type How string

const (
	// HowAll passes when every slice passes.
	HowAll How = "all"
	// HowAny passes when at least one slice passes.
	HowAny How = "any"
)

// ParseHow converts s to a How. The empty string means HowAll.
func ParseHow(s string) (How, error) {
	switch How(strings.ToLower(strings.TrimSpace(s))) {
	case HowAll, "":
		return HowAll, nil
	case HowAny:
		return HowAny, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidHow, s)
	}
}

func (h How) validate() error {
	if h != HowAll && h != HowAny {
		return fmt.Errorf("%w: got %q", ErrInvalidHow, string(h))
	}
	return nil
}

// reduce short-circuits like a composite AND/OR filter.
func (h How) reduce(results []bool) bool {
	switch h {
	case HowAny:
		for _, r := range results {
			if r {
				return true
			}
		}
		return false
	default:
		for _, r := range results {
			if !r {
				return false
			}
		}
		return true
	}
}

// AxisOption configures VerifyColumns and VerifyRows.
type AxisOption func(*axisConfig)

type axisConfig struct {
	columns []string
	rows    []any
	how     How
}

// OnColumns restricts VerifyColumns to the named columns.
func OnColumns(names ...string) AxisOption {
	return func(c *axisConfig) {
		c.columns = names
	}
}

// OnRows restricts VerifyRows to the rows carrying the given labels. With
// no labels every row is checked.
func OnRows(labels ...any) AxisOption {
	return func(c *axisConfig) {
		c.rows = labels
	}
}

// WithHow sets the reduction mode. The default is HowAll.
func WithHow(h How) AxisOption {
	return func(c *axisConfig) {
		c.how = h
	}
}

func newAxisConfig(opts []AxisOption) (axisConfig, error) {
	cfg := axisConfig{how: HowAll}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg, cfg.how.validate()
}

// SeriesPredicate is evaluated once per column.
type SeriesPredicate func(*datatable.Series) bool

// RowPredicate is evaluated once per row.
type RowPredicate func(datatable.Row) bool

// VerifyDF passes when pred holds for the whole frame. The failure names
// the predicate function.
func VerifyDF(f *datatable.Frame, pred func(*datatable.Frame) bool) (*datatable.Frame, error) {
	return VerifyDFNamed(f, funcName(pred), pred)
}

// VerifyDFNamed is VerifyDF with an explicit predicate name.
func VerifyDFNamed(f *datatable.Frame, name string, pred func(*datatable.Frame) bool) (*datatable.Frame, error) {
	if pred == nil {
		return nil, fmt.Errorf("%w: nil predicate", ErrInvalidRule)
	}
	if !pred(f) {
		return nil, fail(NameVerifyDF, f, "%s is not true", name)
	}
	return f, nil
}

// VerifyColumns applies fn to each selected column and reduces the results
// with the configured How.
func VerifyColumns(f *datatable.Frame, fn SeriesPredicate, opts ...AxisOption) (*datatable.Frame, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil predicate", ErrInvalidRule)
	}
	cfg, err := newAxisConfig(opts)
	if err != nil {
		return nil, err
	}
	cols, err := f.Columns(cfg.columns...)
	if err != nil {
		return nil, unknownColumn(err)
	}
	preds := make([]SeriesPredicate, len(cols))
	for i := range preds {
		preds[i] = fn
	}
	return verifyColumns(f, cols, preds, cfg.how)
}

// VerifyEachColumn applies a different predicate to each named column.
// Columns are evaluated in frame order. An empty map reduces no results:
// HowAll passes and HowAny fails.
func VerifyEachColumn(f *datatable.Frame, preds map[string]SeriesPredicate, how How) (*datatable.Frame, error) {
	if err := how.validate(); err != nil {
		return nil, err
	}
	cols, err := itemSeries(f, preds)
	if err != nil {
		return nil, err
	}
	fns := make([]SeriesPredicate, len(cols))
	for i, s := range cols {
		if preds[s.Name()] == nil {
			return nil, fmt.Errorf("%w: nil predicate for column %q", ErrInvalidRule, s.Name())
		}
		fns[i] = preds[s.Name()]
	}
	return verifyColumns(f, cols, fns, how)
}

func verifyColumns(f *datatable.Frame, cols []*datatable.Series, preds []SeriesPredicate, how How) (*datatable.Frame, error) {
	failed, ok := verifyAxis(cols, how,
		func(i int, s *datatable.Series) bool { return preds[i](s) },
		func(s *datatable.Series) string { return s.Name() },
	)
	if ok {
		return f, nil
	}
	e := fail(NameVerifyColumns, f, "Columns %v don't pass the check", failed)
	e.Columns = failed
	return nil, e
}

// VerifyRows applies fn to each selected row and reduces the results with
// the configured How.
func VerifyRows(f *datatable.Frame, fn RowPredicate, opts ...AxisOption) (*datatable.Frame, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil predicate", ErrInvalidRule)
	}
	cfg, err := newAxisConfig(opts)
	if err != nil {
		return nil, err
	}

	var rows []datatable.Row
	if len(cfg.rows) == 0 {
		rows = f.Rows()
	} else {
		for _, label := range cfg.rows {
			pos := f.Positions(label)
			if len(pos) == 0 {
				return nil, fmt.Errorf("%w: %w: label %v", ErrConfiguration, datatable.ErrInvalidRow, label)
			}
			for _, p := range pos {
				rows = append(rows, f.RowView(p))
			}
		}
	}

	failed, ok := verifyAxis(rows, cfg.how,
		func(_ int, r datatable.Row) bool { return fn(r) },
		func(r datatable.Row) any { return r.Label },
	)
	if ok {
		return f, nil
	}
	e := fail(NameVerifyRows, f, "Rows %v don't pass the check", failed)
	e.Rows = failed
	return nil, e
}

// verifyAxis evaluates pass on every slice of one axis, reduces the results
// with how and returns the labels of the slices that did not pass.
func verifyAxis[T any, L any](items []T, how How, pass func(int, T) bool, label func(T) L) ([]L, bool) {
	results := make([]bool, len(items))
	var failed []L
	for i, item := range items {
		results[i] = pass(i, item)
		if !results[i] {
			failed = append(failed, label(item))
		}
	}
	return failed, how.reduce(results)
}

// itemColumns returns the keys of items that are frame columns, in frame
// order, or a configuration error naming the first unknown key.
func itemColumns[V any](f *datatable.Frame, items map[string]V) ([]string, error) {
	var unknown []string
	for name := range items {
		if !f.HasColumn(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, unknownColumn(fmt.Errorf("%w: %q", datatable.ErrColumnNotFound, unknown[0]))
	}
	names := make([]string, 0, len(items))
	for _, name := range f.ColumnNames() {
		if _, ok := items[name]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// itemSeries resolves the keys of items like itemColumns. No items means
// no columns.
func itemSeries[V any](f *datatable.Frame, items map[string]V) ([]*datatable.Series, error) {
	names, err := itemColumns(f, items)
	if err != nil {
		return nil, err
	}
	cols, err := f.Lookup(names)
	if err != nil {
		return nil, unknownColumn(err)
	}
	return cols, nil
}

func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "predicate"
	}
	name := runtime.FuncForPC(v.Pointer()).Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
