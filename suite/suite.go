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

// Package suite reads declarative check suites from YAML and runs them
// against frames.
//
// A suite lists checks by type, using the check names of package checks:
//
//	version: "1"
//	index: id
//	checks:
//	  - id: no-nulls
//	    type: none_missing
//	    columns: [a, b]
//	  - type: verify_rows
//	    expr: num["a"] <= num["b"]
//	    where: "a >= 1"
//	    on_fail: warn
//
// Predicates (expr) are Go boolean expressions, see internal/predicate for
// the variables each check type exposes.
package suite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/magpierre/engarde/checks"
)

// Version is the suite format version understood by this package.
const Version = "1"

var (
	// ErrInvalidSuite is returned for malformed suites. It wraps
	// checks.ErrConfiguration.
	ErrInvalidSuite = fmt.Errorf("%w: invalid suite", checks.ErrConfiguration)

	errUnknownType = errors.New("unknown check type")
)

// OnFail selects what a failing check does to the run.
type OnFail string

const (
	// OnFailError stops the run with the failure.
	OnFailError OnFail = "error"
	// OnFailWarn logs the failure and continues.
	OnFailWarn OnFail = "warn"
)

// Suite is a parsed check suite.
type Suite struct {
	Version string `yaml:"version"`
	// Index names the column used as row labels when loading data.
	Index  string `yaml:"index,omitempty"`
	Checks []Spec `yaml:"checks"`

	// dir resolves relative reference paths.
	dir string
}

// Spec is one check of a suite. Which fields apply depends on Type.
type Spec struct {
	ID     string `yaml:"id,omitempty"`
	Type   string `yaml:"type"`
	OnFail OnFail `yaml:"on_fail,omitempty"`
	// Where restricts the check to matching rows.
	Where string `yaml:"where,omitempty"`

	Columns []string  `yaml:"columns,omitempty"`
	Rows    []any     `yaml:"rows,omitempty"`
	Items   yaml.Node `yaml:"items,omitempty"`
	Expr    string    `yaml:"expr,omitempty"`
	How     string    `yaml:"how,omitempty"`

	// is_shape
	Shape []int `yaml:"shape,omitempty"`
	// within_n_std
	N *float64 `yaml:"n,omitempty"`
	// is_monotonic without items
	Direction string `yaml:"direction,omitempty"`
	Strict    bool   `yaml:"strict,omitempty"`
	// has_dtypes without items
	Rule string `yaml:"rule,omitempty"`
	// one_to_many
	Unit string `yaml:"unit,omitempty"`
	Many string `yaml:"many,omitempty"`

	// is_same_as
	Reference         string   `yaml:"reference,omitempty"`
	Exact             bool     `yaml:"exact,omitempty"`
	Rtol              *float64 `yaml:"rtol,omitempty"`
	Atol              *float64 `yaml:"atol,omitempty"`
	CheckDtype        *bool    `yaml:"check_dtype,omitempty"`
	IgnoreColumnOrder bool     `yaml:"ignore_column_order,omitempty"`
}

var checkTypes = map[string]bool{
	checks.NameVerifyDF:      true,
	checks.NameVerifyColumns: true,
	checks.NameVerifyRows:    true,
	checks.NameNoneMissing:   true,
	checks.NameIsMonotonic:   true,
	checks.NameIsShape:       true,
	checks.NameIsUnique:      true,
	checks.NameUniqueIndex:   true,
	checks.NameWithinSet:     true,
	checks.NameWithinRange:   true,
	checks.NameWithinNStd:    true,
	checks.NameHasDtypes:     true,
	checks.NameOneToMany:     true,
	checks.NameIsSameAs:      true,
}

// Load reads and validates the suite at path. Relative references in the
// suite resolve against the suite's directory.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite: %w", err)
	}
	s, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// Parse reads and validates a suite. Unknown keys are rejected.
func Parse(r io.Reader) (*Suite, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Suite
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidSuite)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSuite, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the suite structure and fills in defaults: missing ids
// become "<type>-<n>" and a missing on_fail becomes OnFailError. Check
// parameters are validated when the suite is compiled.
func (s *Suite) Validate() error {
	if s.Version != "" && s.Version != Version {
		return fmt.Errorf("%w: unsupported version %q", ErrInvalidSuite, s.Version)
	}
	if len(s.Checks) == 0 {
		return fmt.Errorf("%w: no checks", ErrInvalidSuite)
	}

	seen := make(map[string]bool, len(s.Checks))
	for i := range s.Checks {
		c := &s.Checks[i]
		c.Type = strings.ToLower(strings.TrimSpace(c.Type))
		if !checkTypes[c.Type] {
			return fmt.Errorf("%w: check %d: %w %q", ErrInvalidSuite, i+1, errUnknownType, c.Type)
		}
		if c.ID == "" {
			c.ID = fmt.Sprintf("%s-%d", c.Type, i+1)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate check id %q", ErrInvalidSuite, c.ID)
		}
		seen[c.ID] = true

		switch c.OnFail {
		case "":
			c.OnFail = OnFailError
		case OnFailError, OnFailWarn:
		default:
			return fmt.Errorf("%w: check %q: on_fail must be %q or %q", ErrInvalidSuite, c.ID, OnFailError, OnFailWarn)
		}
	}
	return nil
}

// Dir returns the directory relative references resolve against.
func (s *Suite) Dir() string {
	return s.dir
}
