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

package datatable_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/engarde/datatable"
)

func column(t *testing.T, c datatable.Column) *datatable.Series {
	t.Helper()
	f, err := datatable.New(c)
	require.NoError(t, err)
	t.Cleanup(f.Release)
	s, err := f.Column(c.Name)
	require.NoError(t, err)
	return s
}

func TestSeries_IsMonotonic(t *testing.T) {
	tests := []struct {
		name   string
		col    datatable.Column
		dir    datatable.Direction
		strict bool
		want   bool
	}{
		{"increasing", datatable.Int64s("a", 1, 2, 2, 3), datatable.Increasing, false, true},
		{"increasing strict tie", datatable.Int64s("a", 1, 2, 2, 3), datatable.Increasing, true, false},
		{"increasing strict", datatable.Int64s("a", 1, 2, 3), datatable.Increasing, true, true},
		{"decreasing", datatable.Float64s("a", 3, 2, 2), datatable.Decreasing, false, true},
		{"decreasing fails", datatable.Float64s("a", 3, 4), datatable.Decreasing, false, false},
		{"either", datatable.Strings("a", "c", "b", "a"), datatable.Either, false, true},
		{"neither", datatable.Int64s("a", 1, 3, 2), datatable.Either, false, false},
		{"missing", datatable.Float64s("a", 1, math.NaN(), 3), datatable.Increasing, false, false},
		{"empty", datatable.Int64s("a"), datatable.Increasing, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := column(t, tt.col).IsMonotonic(tt.dir, tt.strict)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeries_Stats(t *testing.T) {
	s := column(t, datatable.Float64s("a", 2, 4, math.NaN(), 6))

	mean, ok := s.Mean()
	require.True(t, ok)
	assert.InDelta(t, 4.0, mean, 1e-12)

	std, ok := s.Std()
	require.True(t, ok)
	assert.InDelta(t, 2.0, std, 1e-12)

	_, ok = column(t, datatable.Float64s("a", 1)).Std()
	assert.False(t, ok, "one value has no sample std")

	_, ok = column(t, datatable.Strings("a", "x", "y")).Mean()
	assert.False(t, ok)

	diff := column(t, datatable.Int64s("a", 1, 4, 9)).Diff()
	assert.True(t, math.IsNaN(diff[0]))
	assert.Equal(t, []float64{3, 5}, diff[1:])
}

func TestSeries_Unique(t *testing.T) {
	assert.True(t, column(t, datatable.Int64s("a", 1, 2, 3)).IsUnique())

	s := column(t, datatable.Strings("a", "x", "y", "x", "x", "y"))
	assert.False(t, s.IsUnique())
	assert.Equal(t, []any{"x", "y"}, s.Duplicates())
}

func TestValue_Compare(t *testing.T) {
	c, err := datatable.Compare(datatable.ValueOf(1), datatable.ValueOf(1.5))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	now := time.Now()
	c, err = datatable.Compare(datatable.ValueOf(now.Add(time.Hour)), datatable.ValueOf(now))
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	_, err = datatable.Compare(datatable.ValueOf("a"), datatable.ValueOf(1))
	assert.ErrorIs(t, err, datatable.ErrTypeMismatch)

	_, err = datatable.Compare(datatable.ValueOf(nil), datatable.ValueOf(1))
	assert.ErrorIs(t, err, datatable.ErrTypeMismatch)
}

func TestValue_Key(t *testing.T) {
	assert.True(t, datatable.ValueOf(1).Equal(datatable.ValueOf(1.0)))
	assert.True(t, datatable.ValueOf(uint8(3)).Equal(datatable.ValueOf(int64(3))))
	assert.False(t, datatable.ValueOf("1").Equal(datatable.ValueOf(1)))
	assert.True(t, datatable.ValueOf(math.NaN()).Equal(datatable.ValueOf(nil)))
}
