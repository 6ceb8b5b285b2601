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

package suite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/magpierre/engarde/checks"
	"github.com/magpierre/engarde/datatable"
	"github.com/magpierre/engarde/internal/logging"
	"github.com/magpierre/engarde/internal/predicate"
	"github.com/magpierre/engarde/internal/query"
	"github.com/magpierre/engarde/pipeline"
	"github.com/magpierre/engarde/source"
)

// LoadFunc loads a reference frame for is_same_as.
type LoadFunc func(ctx context.Context, path string, opts source.Options) (*datatable.Frame, error)

// Options configures Compile.
type Options struct {
	// Name labels the run in logs. Defaults to "suite".
	Name   string
	Logger *slog.Logger
	// Load defaults to source.LoadFile.
	Load LoadFunc
}

// Plan is a compiled suite, ready to run against frames.
type Plan struct {
	name   string
	index  string
	steps  []step
	logger *slog.Logger
}

type runFunc func(context.Context, *datatable.Frame) (*datatable.Frame, error)

type step struct {
	spec Spec
	run  runFunc
}

// Compile validates every check's parameters, compiles its predicates and
// loads reference frames.
func (s *Suite) Compile(ctx context.Context, opts Options) (*Plan, error) {
	if opts.Name == "" {
		opts.Name = "suite"
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Load == nil {
		opts.Load = source.LoadFile
	}

	p := &Plan{name: opts.Name, index: s.Index, logger: opts.Logger}
	for _, spec := range s.Checks {
		run, err := s.compile(ctx, spec, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: check %q: %w", ErrInvalidSuite, spec.ID, err)
		}
		if spec.Where != "" {
			run = where(spec.Where, run)
		}
		p.steps = append(p.steps, step{spec: spec, run: run})
	}
	return p, nil
}

// Index returns the index column named by the suite.
func (p *Plan) Index() string {
	return p.index
}

// Len returns the number of checks.
func (p *Plan) Len() int {
	return len(p.steps)
}

func (s *Suite) compile(ctx context.Context, spec Spec, opts Options) (runFunc, error) {
	switch spec.Type {
	case checks.NameNoneMissing:
		return lift(pipeline.NoneMissing(spec.Columns...)), nil

	case checks.NameIsMonotonic:
		if !hasItems(spec) {
			dir, err := parseDirection(spec.Direction)
			if err != nil {
				return nil, err
			}
			return lift(pipeline.IsMonotonicAll(checks.Monotonic{Direction: dir, Strict: spec.Strict})), nil
		}
		var raw map[string]struct {
			Direction string `yaml:"direction"`
			Strict    bool   `yaml:"strict"`
		}
		if err := spec.Items.Decode(&raw); err != nil {
			return nil, err
		}
		items := make(map[string]checks.Monotonic, len(raw))
		for col, m := range raw {
			dir, err := parseDirection(m.Direction)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col, err)
			}
			items[col] = checks.Monotonic{Direction: dir, Strict: m.Strict}
		}
		return lift(pipeline.IsMonotonic(items)), nil

	case checks.NameIsShape:
		if len(spec.Shape) != 2 {
			return nil, fmt.Errorf("shape must be [rows, cols], got %v", spec.Shape)
		}
		return lift(pipeline.IsShape(spec.Shape[0], spec.Shape[1])), nil

	case checks.NameIsUnique:
		return lift(pipeline.IsUnique(spec.Columns...)), nil

	case checks.NameUniqueIndex:
		return lift(pipeline.UniqueIndex()), nil

	case checks.NameWithinSet:
		var items map[string][]any
		if err := decodeItems(spec, &items); err != nil {
			return nil, err
		}
		return lift(pipeline.WithinSet(items)), nil

	case checks.NameWithinRange:
		var raw map[string][]any
		if err := decodeItems(spec, &raw); err != nil {
			return nil, err
		}
		items := make(map[string]checks.Bounds, len(raw))
		for col, b := range raw {
			if len(b) != 2 {
				return nil, fmt.Errorf("column %q: range must be [low, high], got %v", col, b)
			}
			items[col] = checks.Bounds{Low: b[0], High: b[1]}
		}
		return lift(pipeline.WithinRange(items)), nil

	case checks.NameWithinNStd:
		n := float64(checks.DefaultNStd)
		if spec.N != nil {
			n = *spec.N
		}
		return lift(pipeline.WithinNStd(n)), nil

	case checks.NameHasDtypes:
		if !hasItems(spec) {
			if spec.Rule == "" {
				return nil, errors.New("has_dtypes needs items or rule")
			}
			rule, err := parseRule(spec.Rule)
			if err != nil {
				return nil, err
			}
			return lift(pipeline.HasDtype(rule)), nil
		}
		var raw map[string]string
		if err := spec.Items.Decode(&raw); err != nil {
			return nil, err
		}
		items := make(map[string]checks.DtypeRule, len(raw))
		for col, r := range raw {
			rule, err := parseRule(r)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col, err)
			}
			items[col] = rule
		}
		return lift(pipeline.HasDtypes(items)), nil

	case checks.NameOneToMany:
		if spec.Unit == "" || spec.Many == "" {
			return nil, errors.New("one_to_many needs unit and many")
		}
		return lift(pipeline.OneToMany(spec.Unit, spec.Many)), nil

	case checks.NameIsSameAs:
		return s.sameAs(ctx, spec, opts.Load)

	case checks.NameVerifyDF:
		pred, err := predicate.CompileFrame(spec.Expr)
		if err != nil {
			return nil, err
		}
		return func(_ context.Context, f *datatable.Frame) (*datatable.Frame, error) {
			var ev evalState
			out, err := checks.VerifyDFNamed(f, spec.ID, func(f *datatable.Frame) bool {
				return ev.keep(pred.Eval(f))
			})
			return ev.result(out, err)
		}, nil

	case checks.NameVerifyColumns:
		pred, err := predicate.CompileColumn(spec.Expr)
		if err != nil {
			return nil, err
		}
		axis, err := axisOptions(spec, checks.OnColumns(spec.Columns...))
		if err != nil {
			return nil, err
		}
		return func(_ context.Context, f *datatable.Frame) (*datatable.Frame, error) {
			var ev evalState
			out, err := checks.VerifyColumns(f, func(s *datatable.Series) bool {
				return ev.keep(pred.Eval(s))
			}, axis...)
			return ev.result(out, err)
		}, nil

	case checks.NameVerifyRows:
		pred, err := predicate.CompileRow(spec.Expr)
		if err != nil {
			return nil, err
		}
		axis, err := axisOptions(spec, checks.OnRows(spec.Rows...))
		if err != nil {
			return nil, err
		}
		return func(_ context.Context, f *datatable.Frame) (*datatable.Frame, error) {
			var ev evalState
			out, err := checks.VerifyRows(f, func(r datatable.Row) bool {
				return ev.keep(pred.Eval(r))
			}, axis...)
			return ev.result(out, err)
		}, nil
	}
	return nil, fmt.Errorf("%w %q", errUnknownType, spec.Type)
}

func (s *Suite) sameAs(ctx context.Context, spec Spec, load LoadFunc) (runFunc, error) {
	if spec.Reference == "" {
		return nil, errors.New("is_same_as needs a reference")
	}
	path := spec.Reference
	if !filepath.IsAbs(path) && s.dir != "" {
		path = filepath.Join(s.dir, path)
	}
	ref, err := load(ctx, path, source.Options{Index: s.Index})
	if err != nil {
		return nil, fmt.Errorf("failed to load reference: %w", err)
	}

	var eq []datatable.EqualOption
	if spec.Exact {
		eq = append(eq, datatable.WithExact())
	}
	if spec.Rtol != nil || spec.Atol != nil {
		rtol, atol := 1e-5, 1e-8
		if spec.Rtol != nil {
			rtol = *spec.Rtol
		}
		if spec.Atol != nil {
			atol = *spec.Atol
		}
		eq = append(eq, datatable.WithTolerance(rtol, atol))
	}
	if spec.CheckDtype != nil {
		eq = append(eq, datatable.WithCheckDtype(*spec.CheckDtype))
	}
	if spec.IgnoreColumnOrder {
		eq = append(eq, datatable.WithIgnoreColumnOrder())
	}
	return lift(pipeline.IsSameAs(ref, eq...)), nil
}

// where restricts run to the rows matching expr. The unfiltered frame is
// passed through on success.
func where(expr string, run runFunc) runFunc {
	return func(ctx context.Context, f *datatable.Frame) (*datatable.Frame, error) {
		g, err := query.Where(ctx, f, expr)
		if err != nil {
			if errors.Is(err, query.ErrInvalidFilter) {
				return nil, fmt.Errorf("%w: %w", checks.ErrConfiguration, err)
			}
			return nil, err
		}
		if _, err := run(ctx, g); err != nil {
			return nil, err
		}
		return f, nil
	}
}

func lift(ck pipeline.Check) runFunc {
	return func(_ context.Context, f *datatable.Frame) (*datatable.Frame, error) {
		return ck(f)
	}
}

func hasItems(spec Spec) bool {
	return spec.Items.Kind != 0
}

func decodeItems(spec Spec, v any) error {
	if !hasItems(spec) {
		return fmt.Errorf("%s needs items", spec.Type)
	}
	return spec.Items.Decode(v)
}

func axisOptions(spec Spec, on checks.AxisOption) ([]checks.AxisOption, error) {
	how, err := checks.ParseHow(spec.How)
	if err != nil {
		return nil, err
	}
	return []checks.AxisOption{on, checks.WithHow(how)}, nil
}

func parseDirection(s string) (datatable.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "either":
		return datatable.Either, nil
	case "increasing":
		return datatable.Increasing, nil
	case "decreasing":
		return datatable.Decreasing, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// parseRule reads a dtype rule. "expr: <go expression>" compiles a dtype
// predicate; anything else is an inferred type name or a dtype.
func parseRule(s string) (checks.DtypeRule, error) {
	expr, ok := strings.CutPrefix(strings.TrimSpace(s), "expr:")
	if !ok {
		return checks.ParseDtypeRule(s)
	}
	expr = strings.TrimSpace(expr)
	pred, err := predicate.CompileDtype(expr)
	if err != nil {
		return checks.DtypeRule{}, err
	}
	return checks.DtypePredicate(expr, func(dt arrow.DataType) any {
		ok, err := pred.Eval(dt)
		if err != nil {
			return err
		}
		return ok
	}), nil
}

// evalState keeps the first error raised by a predicate during one check.
type evalState struct {
	err error
}

func (e *evalState) keep(ok bool, err error) bool {
	if err != nil && e.err == nil {
		e.err = err
	}
	return ok && err == nil
}

// result prefers a predicate error over the check's own outcome.
func (e *evalState) result(f *datatable.Frame, err error) (*datatable.Frame, error) {
	switch {
	case e.err == nil:
		return f, err
	case errors.Is(e.err, predicate.ErrNonBoolean):
		return nil, fmt.Errorf("%w: %w", checks.ErrNonBooleanResult, e.err)
	default:
		return nil, fmt.Errorf("%w: %w", checks.ErrConfiguration, e.err)
	}
}
