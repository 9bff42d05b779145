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

func TestExecuteOperations(t *testing.T) {
	c, lib := newTestContext()
	p := timeSeries("temperature", "K", 7, 8, 9, 10)
	require.NoError(t, p.Set("pressure", NewVariable([]float64{1000, 900, 800, 700}, Time)))

	same, err := c.ExecuteOperations(p, "")
	require.NoError(t, err)
	assert.True(t, same == p)

	got, err := c.ExecuteOperations(p, "temperature > 8; exclude(pressure); derive(temperature [degC])")
	require.NoError(t, err)
	assert.Equal(t, []string{"temperature"}, got.Names())
	assert.InDeltaSlice(t, []float64{-264.15, -263.15}, variableData(t, got, "temperature"), 1e-9)
	v, _ := got.Get("temperature")
	assert.Equal(t, "degC", v.Unit)
	assert.Equal(t, []float64{7, 8, 9, 10}, variableData(t, p, "temperature"), "p is unchanged")

	var le *LibraryError
	_, err = c.ExecuteOperations(p, "temperature >>> 8")
	require.ErrorAs(t, err, &le)
	assert.Equal(t, libharp.ErrOperationSyntax, le.Code)
	assert.Empty(t, lib.live())
}

func TestExecuteOperationsAll(t *testing.T) {
	c, lib := newTestContext()
	a := timeSeries("temperature", "K", 1, 2)
	b := timeSeries("temperature", "K", 3, 4)

	got, err := c.ExecuteOperationsAll([]*Product{a, b}, "", "")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, variableData(t, got, "temperature"))
	assert.Equal(t, []int32{0, 1, 0, 1}, variableData(t, got, "index"))

	got, err = c.ExecuteOperationsAll([]*Product{a, b}, "temperature > 1", "temperature < 4")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, variableData(t, got, "temperature"))

	var nde *NoDataError
	_, err = c.ExecuteOperationsAll([]*Product{a, b}, "temperature > 10", "")
	assert.ErrorAs(t, err, &nde)
	_, err = c.ExecuteOperationsAll(nil, "", "")
	assert.ErrorAs(t, err, &nde)

	var le *LibraryError
	_, err = c.ExecuteOperationsAll([]*Product{a, b}, "", "bin(nothing)")
	require.ErrorAs(t, err, &le)

	_, err = c.ExecuteOperationsAll([]*Product{a, timeSeries("temperature", "degC", 5)}, "", "")
	require.ErrorAs(t, err, &le)
	assert.Equal(t, libharp.ErrInvalidArgument, le.Code)
	assert.Empty(t, lib.live())
}

func TestConvertUnit(t *testing.T) {
	c, _ := newTestContext()

	got, err := c.ConvertUnit("degC", "K", 0)
	require.NoError(t, err)
	assert.InDelta(t, 273.15, got, 1e-9)

	values := []float32{1, 2}
	got, err = c.ConvertUnit("km", "m", values)
	require.NoError(t, err)
	assert.Equal(t, []float64{1000, 2000}, got)
	assert.Equal(t, []float32{1, 2}, values, "input is unchanged")

	got, err = c.ConvertUnit("hPa", "Pa", &Array{Shape: []int{1, 2}, Elements: []int16{1, 10}})
	require.NoError(t, err)
	assert.Equal(t, &Array{Shape: []int{1, 2}, Elements: []float64{100, 1000}}, got)

	var le *LibraryError
	_, err = c.ConvertUnit("K", "m", 1.0)
	require.ErrorAs(t, err, &le)
	assert.Equal(t, libharp.ErrUnitConversion, le.Code)

	var ute *UnsupportedTypeError
	_, err = c.ConvertUnit("K", "degC", "abc")
	assert.ErrorAs(t, err, &ute)
	_, err = c.ConvertUnit("K", "degC", []string{"abc"})
	assert.ErrorAs(t, err, &ute)
}
