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

package libharp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayViews(t *testing.T) {
	a, err := ArrayOf([]int16{1, -2, 3})
	require.NoError(t, err)
	assert.Equal(t, Int16, a.DataType())
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, []int16{1, -2, 3}, a.Int16())
	assert.Nil(t, a.Double())
	assert.Equal(t, -2.0, a.Float64At(1))

	a.SetFloat64At(0, 7.9)
	assert.Equal(t, int16(7), a.Int16()[0])

	c := a.Clone()
	c.Int16()[2] = 100
	assert.Equal(t, int16(3), a.Int16()[2], "clone must not alias")

	empty := NewArray(Double, 0)
	assert.Equal(t, []float64{}, empty.Slice())

	_, err = ArrayOf([]uint64{1})
	assert.Equal(t, ErrInvalidType, Errno(err))
}

func TestArrayConvert(t *testing.T) {
	a, err := ArrayOf([]float64{1.5, math.NaN(), -3})
	require.NoError(t, err)
	i, err := a.Convert(Int32)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 0, -3}, i.Int32())

	s, err := ArrayOf([]string{"a"})
	require.NoError(t, err)
	_, err = s.Convert(Double)
	assert.Error(t, err)
}

func TestNewVariable(t *testing.T) {
	v, err := NewVariable("temperature", Float, []DimensionType{Time, Vertical}, []int{2, 3})
	require.NoError(t, err)
	assert.Equal(t, 6, v.NumElements())
	assert.Len(t, v.Data.Float(), 6)
	assert.True(t, v.IsTimeDependent())
	assert.True(t, v.HasDefaultValidMin())
	assert.True(t, math.IsInf(float64(v.ValidMax.Float), 1))
	require.NoError(t, v.Verify())

	_, err = NewVariable("2bad", Float, nil, nil)
	assert.Equal(t, ErrInvalidName, Errno(err))

	_, err = NewVariable("x", Float, []DimensionType{Time}, []int{1, 2})
	assert.Equal(t, ErrArrayNumDimsMismatch, Errno(err))

	v, err = NewVariable("x", Float, []DimensionType{Vertical, Time}, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, ErrInvalidVariable, Errno(v.Verify()), "time is only allowed as the first dimension")
}

func TestVariableStrings(t *testing.T) {
	v, err := NewVariable("label", String, []DimensionType{Independent}, []int{2})
	require.NoError(t, err)
	require.NoError(t, v.SetString(1, "b"))
	assert.Equal(t, []string{"", "b"}, v.Data.Strings())
	assert.Error(t, v.SetString(2, "c"))
	assert.Error(t, v.SetString(0, "a\x00"))
	assert.Error(t, v.SetEnumeration([]string{"x"}), "enumerations need integer data")
}

func TestVariableConvertDataType(t *testing.T) {
	v, err := NewVariable("flag", Int8, []DimensionType{Time}, []int{2})
	require.NoError(t, err)
	v.Data.Int8()[0], v.Data.Int8()[1] = 4, -1
	v.ValidMin = ScalarOf(Int8, 0)
	require.NoError(t, v.SetEnumeration([]string{"a", "b"}))

	require.NoError(t, v.ConvertDataType(Double))
	assert.Equal(t, []float64{4, -1}, v.Data.Double())
	assert.Equal(t, 0.0, v.ValidMin.Double)
	assert.True(t, v.HasDefaultValidMax())
	assert.Nil(t, v.EnumName)
}

func TestVariableChecksum(t *testing.T) {
	a, err := NewVariable("x", Double, []DimensionType{Time}, []int{3})
	require.NoError(t, err)
	copy(a.Data.Double(), []float64{1, 2, 3})
	b := a.Copy()
	assert.Equal(t, a.Checksum(), b.Checksum())
	b.Data.Double()[2] = 4
	assert.NotEqual(t, a.Checksum(), b.Checksum())
	b = a.Copy()
	b.Unit = "m"
	assert.NotEqual(t, a.Checksum(), b.Checksum())
}
