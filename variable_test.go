/*
Copyright © 2026 the HARP authors.
This file is part of HARP.

HARP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

HARP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with HARP.  If not, see <http://www.gnu.org/licenses/>.
*/

package harp

import (
	"testing"

	"github.com/spatialmodel/harp/libharp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDimensionType(t *testing.T) {
	for _, d := range []DimensionType{Independent, Time, Latitude, Longitude, Vertical, Spectral} {
		code, err := DimensionCode(d)
		require.NoError(t, err)
		back, err := DimensionName(code)
		require.NoError(t, err)
		assert.Equal(t, d, back)

		parsed, err := ParseDimensionType(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}
	assert.Equal(t, "independent", Independent.String())

	var ude *UnsupportedDimensionError
	_, err := DimensionCode("space")
	assert.ErrorAs(t, err, &ude)
	_, err = DimensionName(42)
	assert.ErrorAs(t, err, &ude)
	_, err = ParseDimensionType("bogus")
	assert.ErrorAs(t, err, &ude)
}

// roundTrip converts v to its native form and back.
func roundTrip(t *testing.T, c *Context, v *Variable) *Variable {
	t.Helper()
	nv, err := c.variableToNative("x", v)
	require.NoError(t, err)
	got, err := c.variableFromNative(nv)
	require.NoError(t, err)
	return got
}

func TestVariableRoundTrip(t *testing.T) {
	c, _ := newTestContext()

	t.Run("float array", func(t *testing.T) {
		v := NewVariable([]float32{7.7, 8.7, 9.7, 10.7}, Time)
		dt, err := v.DataType()
		require.NoError(t, err)
		assert.Equal(t, "float", dt.String())

		got := roundTrip(t, c, v)
		a := got.Data.(*Array)
		assert.Equal(t, []int{4}, a.Shape)
		assert.InDeltaSlice(t, []float32{7.7, 8.7, 9.7, 10.7}, a.Elements, 0.001)
		assert.Equal(t, []DimensionType{Time}, got.Dimension)
		assert.Nil(t, got.ValidMin)
		assert.Nil(t, got.ValidMax)
	})

	t.Run("scalar", func(t *testing.T) {
		got := roundTrip(t, c, NewVariable(12.13))
		assert.Equal(t, 12.13, got.Data)
		assert.Empty(t, got.Dimension)
	})

	t.Run("double keeps precision with bounds", func(t *testing.T) {
		v := NewVariable(12.13)
		v.ValidMin = 0
		got := roundTrip(t, c, v)
		assert.Equal(t, 12.13, got.Data)
		assert.Equal(t, 0.0, got.ValidMin)

		v = NewVariable([]float64{0.1, 12.13}, Time)
		v.ValidMin = 0
		v.ValidMax = 16.5
		got = roundTrip(t, c, v)
		assert.Equal(t, &Array{Shape: []int{2}, Elements: []float64{0.1, 12.13}}, got.Data)
		assert.Equal(t, 0.0, got.ValidMin)
		assert.Equal(t, 16.5, got.ValidMax)
	})

	t.Run("single element collapses to scalar", func(t *testing.T) {
		got := roundTrip(t, c, NewVariable(&Array{Shape: []int{1}, Elements: []float64{3}}))
		assert.Equal(t, 3.0, got.Data)
	})

	t.Run("attributes", func(t *testing.T) {
		v := NewVariable([]int32{0, 1, 2}, Time)
		v.Unit = "1"
		v.Description = "surface type"
		v.ValidMin = int8(0)
		v.ValidMax = int8(2)
		v.Enum = []string{"land", "sea", "ice"}

		got := roundTrip(t, c, v)
		assert.Equal(t, &Array{Shape: []int{3}, Elements: []int8{0, 1, 2}}, got.Data)
		assert.Equal(t, "1", got.Unit)
		assert.Equal(t, "surface type", got.Description)
		assert.Equal(t, int8(0), got.ValidMin)
		assert.Equal(t, int8(2), got.ValidMax)
		assert.Equal(t, []string{"land", "sea", "ice"}, got.Enum)
	})

	t.Run("two dimensional", func(t *testing.T) {
		v := NewVariable(&Array{Shape: []int{2, 3}, Elements: []float64{1, 2, 3, 4, 5, 6}}, Time, Independent)
		got := roundTrip(t, c, v)
		assert.Equal(t, v.Data, got.Data)
		assert.Equal(t, []DimensionType{Time, Independent}, got.Dimension)
	})

	t.Run("strings", func(t *testing.T) {
		got := roundTrip(t, c, NewVariable([]string{"a", "bc"}, Time))
		assert.Equal(t, &Array{Shape: []int{2}, Elements: []string{"a", "bc"}}, got.Data)

		got = roundTrip(t, c, NewVariable(&Array{Shape: []int{2}, Elements: []interface{}{[]byte("x"), []byte("yz")}}, Time))
		assert.Equal(t, []string{"x", "yz"}, got.Data.(*Array).Elements)

		got = roundTrip(t, c, NewVariable("abc"))
		assert.Equal(t, "abc", got.Data)

		got = roundTrip(t, c, NewVariable([]byte("raw")))
		assert.Equal(t, "raw", got.Data)
	})
}

func TestVariableToNativeErrors(t *testing.T) {
	c, _ := newTestContext()
	tests := []struct {
		name string
		v    *Variable
		msg  string
	}{
		{"no data", &Variable{}, "harp: no data for variable"},
		{"scalar with dimensions", &Variable{Data: 1.0, Dimension: []DimensionType{Time}}, "harp: dimensions incorrect"},
		{"rank mismatch", NewVariable([]float64{1, 2}, Time, Vertical), "harp: dimensions incorrect"},
		{"array without dimensions", NewVariable([]float64{1, 2, 3}), "harp: size of data must be 1 for a scalar"},
		{"bad shape", NewVariable(&Array{Shape: []int{4}, Elements: []float64{1}}, Time), "harp: array shape [4] needs 4 elements, not 1"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := c.variableToNative("x", test.v)
			assert.EqualError(t, err, test.msg)
		})
	}

	_, err := c.variableToNative("x", NewVariable([]float64{1}, "space"))
	var ude *UnsupportedDimensionError
	assert.ErrorAs(t, err, &ude)

	_, err = c.variableToNative("x", NewVariable([]bool{true}, Time))
	var ute *UnsupportedTypeError
	assert.ErrorAs(t, err, &ute)

	v := NewVariable([]float64{1}, Time)
	v.Enum = []string{"a"}
	_, err = c.variableToNative("x", v)
	var le *LibraryError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, libharp.ErrInvalidType, le.Code)
}

func TestVariableCopy(t *testing.T) {
	v := NewVariable([]float64{1, 2}, Time)
	v.Enum = []string{"a"}
	o := v.Copy()
	o.Data.(*Array).Elements.([]float64)[0] = 9
	o.Dimension[0] = Vertical
	o.Enum[0] = "b"
	assert.Equal(t, []float64{1, 2}, v.Data.(*Array).Elements)
	assert.Equal(t, []DimensionType{Time}, v.Dimension)
	assert.Equal(t, []string{"a"}, v.Enum)
}

func TestVariableString(t *testing.T) {
	v := NewVariable(&Array{Shape: []int{2, 2}, Elements: []float64{1, 2, 3, 4}}, Time, Independent)
	v.Unit = "K"
	v.ValidMin = 0.0
	v.Description = "temperature"
	assert.Equal(t, `type = double
dimension = {time=2, 2}
unit = "K"
valid_min = 0
description = "temperature"
data =
[1 2 3 4]
`, v.String())

	assert.Equal(t, "type = string\ndata = \"abc\"\n", NewVariable("abc").String())
	assert.Equal(t, "type = byte\ndimension = {time=0}\ndata = <empty>\n", NewVariable([]int8{}, Time).String())
}
