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

package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/engarde/source"
)

const ordersCSV = "id,amount,dept\n1,10.5,a\n2,20.25,a\n3,30.75,b\n"

const passingSuite = `
version: "1"
index: id
checks:
  - type: none_missing
  - type: is_shape
    shape: [3, 2]
  - type: within_range
    items: {amount: [0, 100]}
`

const failingSuite = `
checks:
  - type: none_missing
  - id: rows
    type: is_shape
    shape: [5, -1]
  - type: unique_index
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCheck_Passes(t *testing.T) {
	dir := writeFiles(t, map[string]string{"orders.csv": ordersCSV, "suite.yaml": passingSuite})
	code, stdout, stderr := execute(t, "check",
		"--suite", filepath.Join(dir, "suite.yaml"),
		"--input", filepath.Join(dir, "orders.csv"))

	assert.Equal(t, exitSuccess, code, stderr)
	assert.Contains(t, stdout, "ID")
	assert.Contains(t, stdout, "is_shape-2")
	assert.Contains(t, stdout, "Total: 3 check(s), 3 passed, 0 failed, 0 warned, 0 skipped")
	assert.Contains(t, stderr, "checks passed")
}

func TestCheck_Fails(t *testing.T) {
	dir := writeFiles(t, map[string]string{"orders.csv": ordersCSV, "suite.yaml": failingSuite})
	code, stdout, stderr := execute(t, "check",
		"--suite", filepath.Join(dir, "suite.yaml"),
		"--input", filepath.Join(dir, "orders.csv"))

	assert.Equal(t, exitValidation, code)
	assert.Contains(t, stdout, "Total: 3 check(s), 1 passed, 1 failed, 0 warned, 1 skipped")
	assert.Contains(t, stdout, "Expected shape: (5, -1) Actual shape: (3, 3)")
	assert.Contains(t, stderr, "engarde: Expected shape")
}

func TestCheck_Warn(t *testing.T) {
	suiteDoc := `
checks:
  - id: depts
    type: within_set
    items: {dept: [a]}
    on_fail: warn
`
	dir := writeFiles(t, map[string]string{"orders.csv": ordersCSV, "suite.yaml": suiteDoc})
	code, stdout, stderr := execute(t, "check",
		"--suite", filepath.Join(dir, "suite.yaml"),
		"--input", filepath.Join(dir, "orders.csv"))

	assert.Equal(t, exitSuccess, code, stderr)
	assert.Contains(t, stdout, "warned")
	assert.Contains(t, stderr, "check failed")
}

func TestCheck_Errors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"orders.csv":  ordersCSV,
		"orders.xlsx": "x",
		"suite.yaml":  passingSuite,
		"bad.yaml":    "checks: [{type: is_purple}]",
	})
	suitePath := filepath.Join(dir, "suite.yaml")
	input := filepath.Join(dir, "orders.csv")

	tests := map[string][]string{
		"no suite flag":   {"check", "--input", input},
		"no input":        {"check", "--suite", suitePath},
		"input and db":    {"check", "--suite", suitePath, "--input", input, "--sqlite", "x.db", "--query", "select 1"},
		"missing suite":   {"check", "--suite", filepath.Join(dir, "absent.yaml"), "--input", input},
		"invalid suite":   {"check", "--suite", filepath.Join(dir, "bad.yaml"), "--input", input},
		"missing input":   {"check", "--suite", suitePath, "--input", filepath.Join(dir, "absent.csv")},
		"unsupported":     {"check", "--suite", suitePath, "--input", filepath.Join(dir, "orders.xlsx")},
		"bad where":       {"check", "--suite", suitePath, "--input", input, "--where", "nope > 1"},
		"bad log level":   {"check", "--suite", suitePath, "--input", input, "--log-level", "loud"},
		"unknown command": {"validate"},
		"missing config":  {"check", "--config", filepath.Join(dir, "absent.yaml"), "--suite", suitePath, "--input", input},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			code, _, stderr := execute(t, args...)
			assert.Equal(t, exitError, code)
			assert.Contains(t, stderr, "engarde: ")
		})
	}
}

func TestCheck_JSON(t *testing.T) {
	dir := writeFiles(t, map[string]string{"orders.csv": ordersCSV, "suite.yaml": failingSuite})
	code, stdout, _ := execute(t, "check", "--json",
		"--suite", filepath.Join(dir, "suite.yaml"),
		"--input", filepath.Join(dir, "orders.csv"))
	assert.Equal(t, exitValidation, code)

	var report struct {
		RunID   string `json:"run_id"`
		Passed  bool   `json:"passed"`
		Results []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.False(t, report.Passed)
	require.Len(t, report.Results, 3)
	assert.Equal(t, "rows", report.Results[1].ID)
	assert.Equal(t, "failed", report.Results[1].Status)

	id, err := uuid.Parse(report.RunID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestCheck_Output(t *testing.T) {
	dir := writeFiles(t, map[string]string{"orders.csv": ordersCSV, "suite.yaml": passingSuite})
	out := filepath.Join(dir, "checked.parquet")
	code, _, stderr := execute(t, "check",
		"--suite", filepath.Join(dir, "suite.yaml"),
		"--input", filepath.Join(dir, "orders.csv"),
		"--output", out)
	require.Equal(t, exitSuccess, code, stderr)

	f, err := source.LoadFile(context.Background(), out, source.Options{Index: "id"})
	require.NoError(t, err)
	defer f.Release()
	assert.Equal(t, []string{"amount", "dept"}, f.ColumnNames())
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, f.Labels())
}

func TestCheck_SQLite(t *testing.T) {
	dir := writeFiles(t, map[string]string{"suite.yaml": passingSuite})
	dbPath := filepath.Join(dir, "shop.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE orders (id INTEGER, amount REAL, dept TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO orders VALUES (1, 10.5, 'a'), (2, 20.25, 'a'), (3, 30.75, 'b'), (4, 99.0, 'c')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	code, stdout, stderr := execute(t, "check",
		"--suite", filepath.Join(dir, "suite.yaml"),
		"--sqlite", dbPath,
		"--query", "SELECT id, amount, dept FROM orders ORDER BY id",
		"--limit", "3")
	assert.Equal(t, exitSuccess, code, stderr)
	assert.Contains(t, stdout, "3 passed")
}

func TestInfer(t *testing.T) {
	dir := writeFiles(t, map[string]string{"orders.csv": ordersCSV})
	code, stdout, stderr := execute(t, "infer", "--input", filepath.Join(dir, "orders.csv"))
	require.Equal(t, exitSuccess, code, stderr)
	assert.Contains(t, stdout, "COLUMN")
	assert.Contains(t, stdout, "integer")
	assert.Contains(t, stdout, "floating")
	assert.Contains(t, stdout, "Total: 3 column(s), 3 row(s)")
}

func TestInfer_JSONFromEnv(t *testing.T) {
	t.Setenv("ENGARDE_JSON", "true")
	dir := writeFiles(t, map[string]string{"orders.csv": ordersCSV})
	code, stdout, stderr := execute(t, "infer", "--input", filepath.Join(dir, "orders.csv"), "--columns", "amount,dept")
	require.Equal(t, exitSuccess, code, stderr)

	var cols []columnInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &cols))
	require.Len(t, cols, 2)
	assert.Equal(t, columnInfo{Column: "amount", Dtype: "float64", Inferred: "floating", Nulls: 0, Unique: true}, cols[0])
	assert.Equal(t, "string", cols[1].Inferred)
	assert.False(t, cols[1].Unique)
}

func TestConfigFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"orders.csv":   ordersCSV,
		"engarde.yaml": "json: true\nlog_level: debug\ntimeout: 5\n",
	})
	code, stdout, stderr := execute(t, "infer",
		"--config", filepath.Join(dir, "engarde.yaml"),
		"--input", filepath.Join(dir, "orders.csv"))
	require.Equal(t, exitSuccess, code, stderr)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stderr, `"msg":"inferred types"`)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, func() int { code, _, _ := execute(t); return code }())
	assert.Equal(t, exitError, exitCode(os.ErrNotExist))
}
