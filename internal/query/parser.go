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

// Package query parses row filters such as
//
//	age >= 18 AND dept = sales OR name ~ bob
//
// into composite filters over datatable rows. AND binds tighter than OR.
// Supported operators are =, !=, >, <, >=, <= and ~ (contains); a bare
// term matches rows where any column contains it.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/magpierre/engarde/datatable"
)

// ErrInvalidFilter is returned for malformed filter expressions.
var ErrInvalidFilter = errors.New("invalid filter")

// Filter decides whether a row is kept.
type Filter interface {
	Evaluate(row datatable.Row) (bool, error)
	Description() string
}

// Parser parses filter expressions against a known set of columns.
type Parser struct {
	columns map[string]string // lower case -> actual name
}

// NewParser creates a parser for the given column names. Column
// references are matched case-insensitively.
func NewParser(columns []string) *Parser {
	m := make(map[string]string, len(columns))
	for _, c := range columns {
		m[strings.ToLower(c)] = c
	}
	return &Parser{columns: m}
}

// Parse parses expr. An empty expression yields a filter that keeps every
// row.
func (p *Parser) Parse(expr string) (Filter, error) {
	parts := splitByLogicOps(expr)
	if len(parts) == 0 {
		return &CompositeFilter{Logic: LogicAND}, nil
	}

	or := &CompositeFilter{Logic: LogicOR}
	and := &CompositeFilter{Logic: LogicAND}
	expectTerm := true
	for _, part := range parts {
		if part.isOperator != !expectTerm {
			return nil, fmt.Errorf("%w: misplaced %q", ErrInvalidFilter, part.text)
		}
		expectTerm = !expectTerm
		if !part.isOperator {
			f, err := p.parseComparison(part.text)
			if err != nil {
				return nil, err
			}
			and.Filters = append(and.Filters, f)
			continue
		}
		if part.text == "OR" {
			or.Filters = append(or.Filters, and.simplify())
			and = &CompositeFilter{Logic: LogicAND}
		}
	}
	if expectTerm {
		return nil, fmt.Errorf("%w: expression ends with an operator", ErrInvalidFilter)
	}
	or.Filters = append(or.Filters, and.simplify())
	return or.simplify(), nil
}

type queryPart struct {
	text       string
	isOperator bool
}

// splitByLogicOps splits on whitespace delimited AND/OR keywords, keeping
// the keywords as operator parts. Quoted text is never split.
func splitByLogicOps(query string) []queryPart {
	var parts []queryPart
	var current strings.Builder
	var quote byte

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			parts = append(parts, queryPart{text: s})
		}
		current.Reset()
	}

	for i := 0; i < len(query); {
		c := query[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		default:
			if kw := keywordAt(query, i); kw != "" {
				flush()
				parts = append(parts, queryPart{text: kw, isOperator: true})
				i += len(kw)
				continue
			}
		}
		current.WriteByte(c)
		i++
	}
	flush()
	return parts
}

func keywordAt(s string, i int) string {
	for _, kw := range []string{"AND", "OR"} {
		end := i + len(kw)
		if end > len(s) || !strings.EqualFold(s[i:end], kw) {
			continue
		}
		if (i == 0 || isWhitespace(s[i-1])) && (end == len(s) || isWhitespace(s[end])) {
			return kw
		}
	}
	return ""
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

var operators = []struct {
	op     CompOp
	symbol string
}{
	{OpGreaterEqual, ">="},
	{OpLessEqual, "<="},
	{OpNotEqual, "!="},
	{OpEqual, "="},
	{OpGreater, ">"},
	{OpLess, "<"},
	{OpContains, "~"},
}

// parseComparison parses "column op value" or a bare search term.
func (p *Parser) parseComparison(s string) (Filter, error) {
	best, bestIdx := -1, len(s)
	for i, o := range operators {
		if idx := strings.Index(s, o.symbol); idx >= 0 && idx < bestIdx {
			best, bestIdx = i, idx
		}
	}
	if best < 0 {
		return &ContainsAny{Value: strings.Trim(s, `"'`)}, nil
	}
	if bestIdx == 0 {
		return nil, fmt.Errorf("%w: missing column in %q", ErrInvalidFilter, s)
	}

	o := operators[best]
	name := strings.TrimSpace(s[:bestIdx])
	col, ok := p.columns[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidFilter, datatable.ErrColumnNotFound, name)
	}
	value := strings.TrimSpace(s[bestIdx+len(o.symbol):])
	value = strings.Trim(value, `"'`)
	return &Comparison{Column: col, Op: o.op, Value: value}, nil
}
