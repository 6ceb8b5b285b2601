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

package source_test

import (
	"bytes"
	"context"
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/engarde/datatable"
	"github.com/magpierre/engarde/source"
)

func sample(t *testing.T) *datatable.Frame {
	t.Helper()
	f, err := datatable.New(
		datatable.Int64s("id", 1, 22, 333),
		datatable.Float64s("score", 1.5, math.NaN(), -0.25),
		datatable.Values("name", arrow.BinaryTypes.String, "ann", nil, "cid"),
		datatable.Bools("ok", true, false, true),
		datatable.Timestamps("at",
			time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 3, 11, 30, 0, 0, time.UTC),
			time.Date(2024, 1, 4, 12, 0, 1, 0, time.UTC),
		),
	)
	require.NoError(t, err)
	t.Cleanup(f.Release)
	return f
}

func fieldTypes(f *datatable.Frame) []arrow.Type {
	var out []arrow.Type
	for _, field := range f.Schema().Fields() {
		out = append(out, field.Type.ID())
	}
	return out
}

func TestDetectFileType(t *testing.T) {
	tests := map[string]source.FileType{
		"a.csv":     source.FileTypeCSV,
		"a.TSV":     source.FileTypeCSV,
		"a.parquet": source.FileTypeParquet,
		"a.pq":      source.FileTypeParquet,
		"a.json":    source.FileTypeJSON,
		"a.ndjson":  source.FileTypeJSON,
		"a.xlsx":    source.FileTypeUnknown,
		"no_ext":    source.FileTypeUnknown,
	}
	for path, want := range tests {
		assert.Equal(t, want, source.DetectFileType(path), path)
	}
}

func TestReadCSV_InfersTypes(t *testing.T) {
	data := "id,score,name,flag,at\n" +
		"1,1.5,ann,true,2024-01-02 10:00:00\n" +
		"22,,bob,false,2024-01-03 11:00:00\n" +
		"333,NA,,True,\n"
	f, err := source.ReadCSV(context.Background(), strings.NewReader(data), source.Options{})
	require.NoError(t, err)
	defer f.Release()

	assert.Equal(t, []string{"id", "score", "name", "flag", "at"}, f.ColumnNames())
	assert.Equal(t, []arrow.Type{arrow.INT64, arrow.FLOAT64, arrow.STRING, arrow.BOOL, arrow.TIMESTAMP}, fieldTypes(f))

	id, err := f.Column("id")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "22", "333"}, id.Strings())

	score, err := f.Column("score")
	require.NoError(t, err)
	assert.Equal(t, 2, score.NullCount())

	name, err := f.Column("name")
	require.NoError(t, err)
	assert.True(t, name.IsNull(2))
}

func TestReadCSV_Separators(t *testing.T) {
	for _, sep := range []string{";", "\t", "|"} {
		data := "a" + sep + "b\n1" + sep + "x\n2" + sep + "y\n"
		f, err := source.ReadCSV(context.Background(), strings.NewReader(data), source.Options{})
		require.NoError(t, err, "separator %q", sep)
		assert.Equal(t, []string{"a", "b"}, f.ColumnNames())
		assert.Equal(t, 2, f.NumRows())
		f.Release()
	}
}

func TestReadCSV_MixedColumnsWiden(t *testing.T) {
	data := "a,b,c\n1,1,x\n2.5,y,2\n"
	f, err := source.ReadCSV(context.Background(), strings.NewReader(data), source.Options{})
	require.NoError(t, err)
	defer f.Release()
	assert.Equal(t, []arrow.Type{arrow.FLOAT64, arrow.STRING, arrow.STRING}, fieldTypes(f))
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := source.ReadCSV(context.Background(), strings.NewReader(""), source.Options{})
	assert.ErrorIs(t, err, datatable.ErrEmptyData)
}

func TestReadCSV_Options(t *testing.T) {
	data := "key,score,name\nk1,5,ann\nk2,1,bob\nk3,7,cid\nk4,9,dan\n"
	ctx := context.Background()

	t.Run("index", func(t *testing.T) {
		f, err := source.ReadCSV(ctx, strings.NewReader(data), source.Options{Index: "key"})
		require.NoError(t, err)
		assert.Equal(t, []string{"score", "name"}, f.ColumnNames())
		assert.Equal(t, []any{"k1", "k2", "k3", "k4"}, f.Labels())
	})
	t.Run("columns", func(t *testing.T) {
		f, err := source.ReadCSV(ctx, strings.NewReader(data), source.Options{Columns: []string{"name", "key"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "key"}, f.ColumnNames())
	})
	t.Run("where and limit", func(t *testing.T) {
		f, err := source.ReadCSV(ctx, strings.NewReader(data), source.Options{Index: "key", Where: "score > 4", Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []any{"k1", "k3"}, f.Labels())
	})
	t.Run("unknown column", func(t *testing.T) {
		_, err := source.ReadCSV(ctx, strings.NewReader(data), source.Options{Columns: []string{"nope"}})
		assert.ErrorIs(t, err, datatable.ErrColumnNotFound)
	})
}

func TestReadJSON_Shapes(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		data string
		rows int
	}{
		{"array", `[{"b": 1, "a": "x"}, {"a": "y", "b": 2.5}]`, 2},
		{"ndjson", "{\"b\": 1, \"a\": \"x\"}\n{\"b\": 2.5, \"a\": \"y\"}\n", 2},
		{"object", `{"b": 1, "a": "x"}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := source.ReadJSON(ctx, strings.NewReader(tt.data), source.Options{})
			require.NoError(t, err)
			defer f.Release()
			assert.Equal(t, []string{"b", "a"}, f.ColumnNames())
			assert.Equal(t, tt.rows, f.NumRows())
		})
	}
}

func TestReadJSON_Values(t *testing.T) {
	data := `[{"n": 1, "x": 1.5, "s": "a", "nested": {"k": [1, 2]}},
	          {"n": 2, "s": null, "flag": true}]`
	f, err := source.ReadJSON(context.Background(), strings.NewReader(data), source.Options{})
	require.NoError(t, err)
	defer f.Release()

	assert.Equal(t, []string{"n", "x", "s", "nested", "flag"}, f.ColumnNames())
	assert.Equal(t, []arrow.Type{arrow.INT64, arrow.FLOAT64, arrow.STRING, arrow.STRING, arrow.BOOL}, fieldTypes(f))

	nested, err := f.Column("nested")
	require.NoError(t, err)
	assert.Equal(t, `{"k":[1,2]}`, nested.Value(0).Formatted)
	assert.True(t, nested.IsNull(1))

	x, err := f.Column("x")
	require.NoError(t, err)
	assert.True(t, x.IsNull(1))
}

func TestReadJSON_Errors(t *testing.T) {
	ctx := context.Background()
	_, err := source.ReadJSON(ctx, strings.NewReader(""), source.Options{})
	assert.ErrorIs(t, err, datatable.ErrEmptyData)

	_, err = source.ReadJSON(ctx, strings.NewReader("[]"), source.Options{})
	assert.ErrorIs(t, err, datatable.ErrEmptyData)

	_, err = source.ReadJSON(ctx, strings.NewReader("42"), source.Options{})
	assert.Error(t, err)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.csv", "out.parquet"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := sample(t)
			path := filepath.Join(dir, name)
			require.NoError(t, source.WriteFile(path, want, source.WriteOptions{}))

			got, err := source.LoadFile(ctx, path, source.Options{})
			require.NoError(t, err)
			defer got.Release()
			assert.NoError(t, datatable.Equal(want, got))
		})
	}
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	want, err := datatable.New(
		datatable.Int64s("id", 1, 22, 333),
		datatable.Float64s("score", 1.5, math.NaN(), -0.25),
		datatable.Values("name", arrow.BinaryTypes.String, "ann", nil, "cid"),
	)
	require.NoError(t, err)
	defer want.Release()

	var buf bytes.Buffer
	require.NoError(t, source.WriteJSON(&buf, want))
	assert.True(t, strings.Index(buf.String(), `"id"`) < strings.Index(buf.String(), `"score"`))
	assert.Contains(t, buf.String(), `"score": null`)

	got, err := source.ReadJSON(context.Background(), &buf, source.Options{})
	require.NoError(t, err)
	defer got.Release()
	assert.NoError(t, datatable.Equal(want, got))
}

func TestWriteCSV(t *testing.T) {
	f, err := datatable.New(
		datatable.Int64s("id", 1, 2),
		datatable.Values("name", arrow.BinaryTypes.String, "a,b", nil),
	)
	require.NoError(t, err)
	defer f.Release()

	var buf bytes.Buffer
	require.NoError(t, source.WriteCSV(&buf, f))
	assert.Equal(t, "id,name\n1,\"a,b\"\n2,\n", buf.String())
}

func TestWriteFile_Index(t *testing.T) {
	ctx := context.Background()
	data := "key,v\nk1,1\nk2,2\n"
	f, err := source.ReadCSV(ctx, strings.NewReader(data), source.Options{Index: "key"})
	require.NoError(t, err)
	defer f.Release()

	path := filepath.Join(t.TempDir(), "indexed.parquet")
	require.NoError(t, source.WriteFile(path, f, source.WriteOptions{Index: "key"}))

	got, err := source.LoadFile(ctx, path, source.Options{Index: "key"})
	require.NoError(t, err)
	defer got.Release()
	assert.Equal(t, []any{"k1", "k2"}, got.Labels())
	assert.NoError(t, datatable.Equal(f, got))

	err = source.WriteFile(path, f, source.WriteOptions{Index: "v"})
	assert.ErrorIs(t, err, datatable.ErrDuplicateColumn)
}

func TestWriteFile_Unsupported(t *testing.T) {
	err := source.WriteFile(filepath.Join(t.TempDir(), "out.xlsx"), sample(t), source.WriteOptions{})
	assert.ErrorIs(t, err, source.ErrUnsupportedFormat)

	_, err = source.LoadFile(context.Background(), "data.xlsx", source.Options{})
	assert.ErrorIs(t, err, source.ErrUnsupportedFormat)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := source.LoadFile(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), source.Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestQueryFrame(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE orders (id INTEGER, amount REAL, customer TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO orders VALUES (1, 9.5, 'ann'), (2, NULL, 'bob'), (3, 12.25, NULL)`)
	require.NoError(t, err)

	f, err := source.QueryFrame(ctx, db, `SELECT id, amount, customer FROM orders WHERE id >= ? ORDER BY id`, source.Options{Index: "id"}, 1)
	require.NoError(t, err)
	defer f.Release()

	assert.Equal(t, []string{"amount", "customer"}, f.ColumnNames())
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, f.Labels())
	assert.Equal(t, []arrow.Type{arrow.FLOAT64, arrow.STRING}, fieldTypes(f))

	amount, err := f.Column("amount")
	require.NoError(t, err)
	assert.True(t, amount.IsNull(1))
}

func TestLoadSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "load.db")
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE t (a INTEGER, b TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO t VALUES (1, 'x'), (2, 'y'), (3, 'z')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	f, err := source.LoadSQLite(ctx, dsn, `SELECT a, b FROM t ORDER BY a`, source.Options{Where: "a > 1"})
	require.NoError(t, err)
	defer f.Release()
	assert.Equal(t, 2, f.NumRows())
}
