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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferDataType(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  DataType
	}{
		{"int8", int8(-3), Int8},
		{"small int16", int16(100), Int8},
		{"int16", int16(-300), Int16},
		{"int", 70000, Int32},
		{"int64", int64(-5), Int8},
		{"uint8", uint8(200), Int16},
		{"uint16", uint16(40000), Int32},
		{"float32", float32(1), Float32},
		{"float64", 1.0, Float64},
		{"string", "abc", String},
		{"byte string", []byte("abc"), String},
		{"int32 array", &Array{Shape: []int{3}, Elements: []int32{1, 2, 3}}, Int8},
		{"int array", &Array{Shape: []int{2}, Elements: []int{-129, 0}}, Int16},
		{"int64 array", &Array{Shape: []int{2}, Elements: []int64{0, math.MaxInt32}}, Int32},
		{"uint8 array", &Array{Shape: []int{2}, Elements: []uint8{0, 127}}, Int8},
		{"empty array", &Array{Shape: []int{0}, Elements: []int16{}}, Int8},
		{"float32 array", &Array{Shape: []int{1}, Elements: []float32{1e30}}, Float32},
		{"float64 array", &Array{Shape: []int{1}, Elements: []float64{0.5}}, Float64},
		{"string array", &Array{Shape: []int{2}, Elements: []string{"a", "b"}}, String},
		{"byte string array", &Array{Shape: []int{1}, Elements: [][]byte{[]byte("a")}}, String},
		{"text objects", &Array{Shape: []int{2}, Elements: []interface{}{"a", "b"}}, String},
		{"byte objects", &Array{Shape: []int{1}, Elements: []interface{}{[]byte("a")}}, String},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := InferDataType(test.value)
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestInferDataTypeWidening(t *testing.T) {
	values := []int64{0}
	steps := []struct {
		next int64
		want DataType
	}{
		{math.MaxInt8, Int8},
		{math.MaxInt8 + 1, Int16},
		{math.MinInt16, Int16},
		{math.MaxInt16 + 1, Int32},
		{math.MinInt32, Int32},
	}
	prev := Int8
	for _, s := range steps {
		values = append(values, s.next)
		got, err := InferDataType(&Array{Shape: []int{len(values)}, Elements: values})
		require.NoError(t, err)
		assert.Equal(t, s.want, got, "after adding %d", s.next)
		assert.True(t, got >= prev, "the type never narrows")
		prev = got
	}

	values = append(values, math.MaxInt32+1)
	_, err := InferDataType(&Array{Shape: []int{len(values)}, Elements: values})
	var ute *UnsupportedTypeError
	assert.ErrorAs(t, err, &ute)
}

func TestInferDataTypeErrors(t *testing.T) {
	for name, value := range map[string]interface{}{
		"nil":             nil,
		"bool":            true,
		"map":             map[string]int{},
		"int64 range":     int64(1) << 40,
		"mixed objects":   &Array{Shape: []int{2}, Elements: []interface{}{"a", []byte("b")}},
		"numeric objects": &Array{Shape: []int{1}, Elements: []interface{}{1}},
		"bool array":      &Array{Shape: []int{1}, Elements: []bool{true}},
		"nil array":       (*Array)(nil),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := InferDataType(value)
			var ute *UnsupportedTypeError
			assert.ErrorAs(t, err, &ute)
		})
	}
}

func TestCanCast(t *testing.T) {
	into := map[DataType][]DataType{
		Int8:    {Int8},
		Int16:   {Int8, Int16},
		Int32:   {Int8, Int16, Int32},
		Float32: {Int8, Int16, Float32, Float64},
		Float64: {Int8, Int16, Int32, Float32, Float64},
		String:  {String},
	}
	for dst, sources := range into {
		for src := Int8; src <= String; src++ {
			assert.Equal(t, contains(sources, src), CanCast(src, dst), "%s to %s", src, dst)
		}
	}
}

func contains(types []DataType, t DataType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func TestJoinDataType(t *testing.T) {
	tests := []struct {
		types []DataType
		want  DataType
		ok    bool
	}{
		{[]DataType{Int8, Int16}, Int16, true},
		{[]DataType{Int32, Float32}, Float64, true},
		{[]DataType{Int16, Float32}, Float32, true},
		{[]DataType{Float64, Float32}, Float64, true},
		{[]DataType{Float64, Int8}, Float64, true},
		{[]DataType{Int32, Int16}, Int32, true},
		{[]DataType{String, String}, String, true},
		{[]DataType{String, Int8}, 0, false},
	}
	for _, test := range tests {
		got, ok := joinDataType(test.types...)
		assert.Equal(t, test.ok, ok, "%v", test.types)
		if ok {
			assert.Equal(t, test.want, got, "%v", test.types)
		}
	}
}

func TestDataTypeString(t *testing.T) {
	assert.Equal(t, "byte", Int8.String())
	assert.Equal(t, "double", Float64.String())
	assert.Equal(t, "string", String.String())
	assert.Equal(t, "DataType(9)", DataType(9).String())
}

func TestVariableDataType(t *testing.T) {
	tests := []struct {
		name string
		v    *Variable
		want DataType
	}{
		{"bounds widen integers", &Variable{Data: []int8{1, 2}, ValidMax: 1000}, Int16},
		{"float32 exact bound", &Variable{Data: []float32{1}, ValidMin: 0.5}, Float32},
		{"float32 inexact bound", &Variable{Data: []float32{1}, ValidMin: 0.1}, Float64},
		{"double with integer bound", &Variable{Data: []float64{0.1, 12.13}, ValidMin: 0}, Float64},
		{"double with float32 exact bound", &Variable{Data: []float64{0.1}, ValidMax: 0.5}, Float64},
		{"scalar double with integer bound", &Variable{Data: 12.13, ValidMin: 0}, Float64},
		{"long with float bound", &Variable{Data: []int32{100000}, ValidMin: float32(0)}, Float64},
		{"scalar bound array", &Variable{Data: int8(1), ValidMin: []int16{-1000}}, Int16},
		{"strings ignore bounds", &Variable{Data: []string{"a"}, ValidMin: 1}, String},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := test.v.DataType()
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}

	_, err := (&Variable{Data: []int8{1}, ValidMin: "low"}).DataType()
	assert.EqualError(t, err, "harp: type 'string' of valid_min attribute incompatible with type 'byte' of data")

	_, err = (&Variable{Data: 1.0, ValidMax: []float64{1, 2}}).DataType()
	assert.EqualError(t, err, "harp: valid_max attribute should be scalar")
}
