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

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/magpierre/engarde/datatable"
)

// RuleKind selects how a DtypeRule matches a column.
type RuleKind int

const (
	// RulePredicate calls a function with the column's dtype.
	RulePredicate RuleKind = iota
	// RuleDtype requires an exact dtype.
	RuleDtype
	// RuleInferred requires an InferType name.
	RuleInferred
)

// DtypeRule is one of: a predicate on the column dtype, an exact dtype, or
// an inferred type name.
type DtypeRule struct {
	Kind RuleKind

	// Predicate must return a bool. An error result is reported as a
	// failed evaluation and any other result as ErrNonBooleanResult; both
	// are configuration errors. Name labels it in messages.
	Predicate func(arrow.DataType) any
	Name      string

	Dtype    arrow.DataType
	Inferred string
}

// DtypePredicate builds a RulePredicate rule.
func DtypePredicate(name string, fn func(arrow.DataType) any) DtypeRule {
	return DtypeRule{Kind: RulePredicate, Predicate: fn, Name: name}
}

// Dtype builds a RuleDtype rule.
func Dtype(dt arrow.DataType) DtypeRule {
	return DtypeRule{Kind: RuleDtype, Dtype: dt}
}

// Inferred builds a RuleInferred rule, e.g. Inferred("integer").
func Inferred(name string) DtypeRule {
	return DtypeRule{Kind: RuleInferred, Inferred: name}
}

// ParseDtypeRule resolves a name to a rule. Names of the InferType
// vocabulary win over dtype names, so "string" is an inferred type while
// "utf8" is a dtype.
func ParseDtypeRule(name string) (DtypeRule, error) {
	if datatable.IsInferredName(name) {
		return Inferred(name), nil
	}
	dt, err := datatable.ParseDataType(name)
	if err != nil {
		return DtypeRule{}, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	return Dtype(dt), nil
}

func (r DtypeRule) String() string {
	switch r.Kind {
	case RulePredicate:
		return r.Name
	case RuleDtype:
		if r.Dtype == nil {
			return "<nil>"
		}
		return r.Dtype.String()
	case RuleInferred:
		return r.Inferred
	default:
		return fmt.Sprintf("rule(%d)", r.Kind)
	}
}

func (r DtypeRule) validate() error {
	switch r.Kind {
	case RulePredicate:
		if r.Predicate == nil {
			return fmt.Errorf("%w: nil dtype predicate", ErrInvalidRule)
		}
	case RuleDtype:
		if r.Dtype == nil {
			return fmt.Errorf("%w: nil dtype", ErrInvalidRule)
		}
	case RuleInferred:
		if !datatable.IsInferredName(r.Inferred) {
			return fmt.Errorf("%w: unknown inferred type %q", ErrInvalidRule, r.Inferred)
		}
	default:
		return fmt.Errorf("%w: unknown rule kind %d", ErrInvalidRule, r.Kind)
	}
	return nil
}

// match returns an empty message when s satisfies the rule.
func (r DtypeRule) match(s *datatable.Series) (string, error) {
	dt := s.DataType()
	switch r.Kind {
	case RulePredicate:
		res := r.Predicate(dt)
		if _, typed := res.(interface{ ResultType() string }); !typed {
			if err, isErr := res.(error); isErr {
				return "", fmt.Errorf("%w: function %s for column %q: %w", ErrConfiguration, r.Name, s.Name(), err)
			}
		}
		ok, isBool := res.(bool)
		if !isBool {
			return "", fmt.Errorf("%w: function %s for column %q returned %s", ErrNonBooleanResult, r.Name, s.Name(), typeName(res))
		}
		if !ok {
			return fmt.Sprintf("Column %q has the wrong dtype (%s) for function %s", s.Name(), dt, r.Name), nil
		}
	case RuleDtype:
		if !datatable.SameDataType(dt, r.Dtype) {
			return fmt.Sprintf("Column %q is checked for dtype %s, had dtype %s", s.Name(), r.Dtype, dt), nil
		}
	case RuleInferred:
		if got := datatable.InferType(s); got != r.Inferred {
			return fmt.Sprintf("Column %q expected %q for infer_dtype, got %q", s.Name(), r.Inferred, got), nil
		}
	}
	return "", nil
}

// HasDtypes passes when each column in items satisfies its rule. All rules
// are validated before any column is inspected.
func HasDtypes(f *datatable.Frame, items map[string]DtypeRule) (*datatable.Frame, error) {
	names, err := itemColumns(f, items)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if err := items[name].validate(); err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
	}
	for _, name := range names {
		s, err := f.Column(name)
		if err != nil {
			return nil, unknownColumn(err)
		}
		msg, err := items[name].match(s)
		if err != nil {
			return nil, err
		}
		if msg != "" {
			e := fail(NameHasDtypes, f, "%s", msg)
			e.Columns = []string{name}
			return nil, e
		}
	}
	return f, nil
}

// HasDtype applies one rule to every column.
func HasDtype(f *datatable.Frame, rule DtypeRule) (*datatable.Frame, error) {
	items := make(map[string]DtypeRule, f.NumCols())
	for _, name := range f.ColumnNames() {
		items[name] = rule
	}
	return HasDtypes(f, items)
}

// typeName names the type of a predicate result. Results produced by
// interpreted predicates report the interpreted type.
func typeName(v any) string {
	if t, ok := v.(interface{ ResultType() string }); ok {
		return t.ResultType()
	}
	return fmt.Sprintf("%T", v)
}
