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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductReservedNames(t *testing.T) {
	p := NewProduct()
	require.NoError(t, p.Set("history", NewVariable("made by hand")))
	assert.Equal(t, "made by hand", p.History)
	assert.Equal(t, 0, p.Len())
	assert.False(t, p.Has("history"))
	_, ok := p.Get("history")
	assert.False(t, ok)

	h, ok := p.Attr(HistoryAttr)
	assert.True(t, ok)
	assert.Equal(t, "made by hand", h)

	assert.Error(t, p.Set("source_product", NewVariable(3.0)), "attributes hold strings")
	assert.Error(t, p.Set("_hidden", NewVariable(1.0)))
	assert.Error(t, p.Set("", NewVariable(1.0)))
	assert.Error(t, p.Set("x", nil))
	assert.Error(t, p.SetAttr("unit", "K"))

	require.NoError(t, p.Delete("history"))
	_, ok = p.Attr(HistoryAttr)
	assert.False(t, ok)
	assert.Error(t, p.Delete("missing"))
}

func TestProductOrder(t *testing.T) {
	p := NewProduct()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, p.Set(name, NewVariable(1.0)))
	}
	require.NoError(t, p.Set("a", NewVariable([]float64{1, 2}, Time)))
	assert.Equal(t, []string{"c", "a", "b"}, p.Names())

	v, ok := p.Get("a")
	require.True(t, ok)
	assert.Equal(t, &Array{Shape: []int{2}, Elements: []float64{1, 2}}, v.Data, "bare slices become arrays")

	require.NoError(t, p.Delete("c"))
	assert.Equal(t, []string{"a", "b"}, p.Names())

	var seen []string
	p.Range(func(name string, _ *Variable) bool {
		seen = append(seen, name)
		return false
	})
	assert.Equal(t, []string{"a"}, seen)
}

func TestProductToDict(t *testing.T) {
	p := timeSeries("temperature", "K", 280, 290)
	require.NoError(t, p.Set("flag", NewVariable(int8(1))))
	p.History = "x"
	assert.Equal(t, map[string]interface{}{
		"temperature":      &Array{Shape: []int{2}, Elements: []float64{280, 290}},
		"temperature_unit": "K",
		"flag":             int8(1),
	}, p.ToDict())
}

func TestProductString(t *testing.T) {
	p := timeSeries("temperature", "K", 280, 290)
	p.SourceProduct = "input.nc"
	require.NoError(t, p.Set("site", NewVariable("Cabauw")))
	require.NoError(t, p.Set("none", NewVariable([]float32{}, Time)))
	p.variables["broken"] = &Variable{}
	p.names = append(p.names, "broken")
	assert.Equal(t, `source product = "input.nc"

double temperature {time=2} [K]
string site
<empty variable 'none'>
<non-compliant variable 'broken'>
`, p.String())
	assert.Equal(t, "", NewProduct().String())
}

func TestProductNative(t *testing.T) {
	c, lib := newTestContext()
	p := timeSeries("temperature", "K", 280, 290)
	p.SourceProduct = "input.nc"
	p.History = "line one"
	require.NoError(t, p.Set("orbit", NewVariable(int16(1234))))

	np, err := c.productToNative(p)
	require.NoError(t, err)
	got, err := c.productFromNative(np)
	np.Delete()
	require.NoError(t, err)
	assert.Equal(t, p.Names(), got.Names())
	assert.Equal(t, "input.nc", got.SourceProduct)
	assert.Equal(t, "line one", got.History)
	orbit, _ := got.Get("orbit")
	assert.Equal(t, int16(1234), orbit.Data)
	assert.Empty(t, lib.live())

	require.NoError(t, p.Set("bad", NewVariable([]float64{1, 2, 3})))
	_, err = c.productToNative(p)
	assert.EqualError(t, err, "harp: variable 'bad' could not be exported (size of data must be 1 for a scalar)")
	var cause *Error
	require.True(t, errors.As(errors.Unwrap(err), &cause))
	assert.Equal(t, "size of data must be 1 for a scalar", cause.Message)
	assert.Empty(t, lib.live(), "a failed conversion releases the native product")
}
