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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertUnit(t *testing.T) {
	tests := []struct {
		from, to string
		in, want float64
	}{
		{from: "km", to: "m", in: 1.5, want: 1500},
		{from: "hPa", to: "Pa", in: 1013.25, want: 101325},
		{from: "degC", to: "K", in: 0, want: 273.15},
		{from: "K", to: "degC", in: 300, want: 26.85},
		{from: "degF", to: "degC", in: 212, want: 100},
		{from: "ppmv", to: "ppbv", in: 2, want: 2000},
		{from: "%", to: "1", in: 50, want: 0.5},
		{from: "mol/m2", to: "molec/cm2", in: 1, want: 6.02214076e19},
		{from: "DU", to: "molec cm-2", in: 1, want: 2.6867e16},
		{from: "kg m-3", to: "g/cm3", in: 1000, want: 1},
		{from: "kg.m^-3", to: "g cm**-3", in: 1000, want: 1},
		{from: "deg", to: "rad", in: 180, want: 3.141592653589793},
		{from: "degree_north", to: "degrees", in: 45, want: 45},
		{from: "h", to: "s", in: 2, want: 7200},
		{from: "days since 2000-01-01", to: "s since 2000-01-02", in: 1.5, want: 43200},
		{from: "hours since 2000-01-01 12:00:00", to: "days since 2000-01-01", in: 12, want: 1},
		{from: "", to: "1", in: 3, want: 3},
		{from: "m/s", to: "km/h", in: 10, want: 36},
		{from: "1e-6", to: "1", in: 1, want: 1e-6},
	}
	for _, test := range tests {
		t.Run(test.from+"->"+test.to, func(t *testing.T) {
			v := []float64{test.in}
			require.NoError(t, ConvertUnit(test.from, test.to, v))
			assert.InEpsilon(t, test.want, v[0], 1e-9)
		})
	}
}

func TestConvertUnitErrors(t *testing.T) {
	for _, pair := range [][2]string{
		{"m", "s"},
		{"kg", "furlong"},
		{"m/", "m"},
		{"/m", "m"},
		{"K since 2000-01-01", "s"},
		{"days since yesterday", "s"},
	} {
		err := ConvertUnit(pair[0], pair[1], []float64{1})
		assert.Equal(t, ErrUnitConversion, Errno(err), "%s -> %s", pair[0], pair[1])
	}
}

func TestUnitsCompatible(t *testing.T) {
	u := NewUnits()
	assert.True(t, u.Compatible("mol", "molec"))
	assert.False(t, u.Compatible("mol", "kg"))
	d, err := u.Dimensions("N")
	require.NoError(t, err)
	assert.NotEmpty(t, d)
}

func TestUnitsLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[unit]]
symbol = "kilotonne"
definition = "t"
scale = 1e3

[[unit]]
symbol = "mK"
definition = "K"
scale = 0.001
`), 0o644))

	l := New()
	require.NoError(t, l.LoadUnitDefinitions(path))
	v := []float64{2}
	require.NoError(t, l.ConvertUnit("kilotonne", "Gg", v))
	assert.InEpsilon(t, 2, v[0], 1e-12)

	v = []float64{1500}
	require.NoError(t, l.ConvertUnit("mK", "K", v))
	assert.InEpsilon(t, 1.5, v[0], 1e-12)

	assert.Error(t, ConvertUnit("kilotonne", "kg", []float64{1}), "definitions are per library")
	assert.Equal(t, ErrUnitConversion, Errno(l.Units().Define("kilotonne", "kg", 1, 0)), "already defined")
	assert.Equal(t, ErrFileRead, Errno(l.LoadUnitDefinitions(filepath.Join(t.TempDir(), "missing.toml"))))
}
