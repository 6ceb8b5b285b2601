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

// Package predicate compiles Go boolean expressions into predicates over
// frames, columns, rows and dtypes using an embedded Go interpreter.
//
// Each kind of predicate sees a fixed set of variables:
//
//	frame:  rows, cols int; columns []string
//	column: name, dtype, kind string; n, nulls int; unique, numeric bool;
//	        mean, std float64; num []float64; str []string
//	row:    label string; num map[string]float64; str map[string]string;
//	        null map[string]bool
//	dtype:  dtype, kind string
//
// The math, strings, strconv and time packages are imported.
package predicate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

var (
	// ErrCompile is returned when an expression cannot be compiled.
	ErrCompile = errors.New("invalid expression")
	// ErrNonBoolean is returned when an expression yields a non-bool value.
	ErrNonBoolean = errors.New("expression did not evaluate to a bool")
	// ErrEval is returned when evaluating an expression panics.
	ErrEval = errors.New("expression failed")
)

const source = `package predicate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	_ = math.Abs
	_ = strconv.Itoa
	_ = strings.Contains
	_ = time.Second
)

func Eval(%s) (bool, string) {
	var out_ interface{} = (%s)
	if b, ok := out_.(bool); ok {
		return b, ""
	}
	return false, fmt.Sprintf("%%T", out_)
}
`

// compile evaluates expr as the body of a function with the given
// parameter list and returns it as F.
func compile[F any](params, expr string) (F, error) {
	var zero F
	if strings.TrimSpace(expr) == "" {
		return zero, fmt.Errorf("%w: empty expression", ErrCompile)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return zero, fmt.Errorf("load stdlib: %w", err)
	}
	if _, err := i.Eval(fmt.Sprintf(source, params, expr)); err != nil {
		return zero, fmt.Errorf("%w: %q: %w", ErrCompile, expr, err)
	}
	v, err := i.Eval("predicate.Eval")
	if err != nil {
		return zero, fmt.Errorf("%w: %q: %w", ErrCompile, expr, err)
	}
	fn, ok := v.Interface().(F)
	if !ok {
		return zero, fmt.Errorf("%w: %q: unexpected function type %s", ErrCompile, expr, v.Type())
	}
	return fn, nil
}

// result converts the (value, type name) pair returned by a compiled
// expression, recovering from panics raised while evaluating it.
func result(expr string, call func() (bool, string)) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("%w: %q: %v", ErrEval, expr, r)
		}
	}()
	b, typ := call()
	if typ != "" {
		return false, &NonBoolError{Expr: expr, Type: typ}
	}
	return b, nil
}

// NonBoolError reports the type an expression evaluated to instead of bool.
type NonBoolError struct {
	Expr string
	Type string
}

func (e *NonBoolError) Error() string {
	return fmt.Sprintf("%s: %q returned %s", ErrNonBoolean, e.Expr, e.Type)
}

func (e *NonBoolError) Is(target error) bool {
	return target == ErrNonBoolean
}

// ResultType returns the type name the expression evaluated to.
func (e *NonBoolError) ResultType() string {
	return e.Type
}
