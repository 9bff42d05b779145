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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testProduct returns a product exercising every data type.
func testProduct(t *testing.T) *Product {
	t.Helper()
	p := NewProduct()
	p.History = "created by test"

	dt := newTestVariable(t, "datetime", []DimensionType{Time}, []int{3}, 1, 2, 3)
	dt.Unit = "days since 2000-01-01"
	require.NoError(t, p.AddVariable(dt))

	o3 := newTestVariable(t, "O3_column_number_density", []DimensionType{Time, Vertical}, []int{3, 2},
		1, 2, 3, 4, 5, math.NaN())
	o3.Unit = "molec/cm2"
	o3.Description = "ozone column"
	o3.ValidMin = ScalarOf(Double, 0)
	require.NoError(t, p.AddVariable(o3))

	f, err := NewVariable("cloud_fraction", Float, []DimensionType{Time}, []int{3})
	require.NoError(t, err)
	copy(f.Data.Float(), []float32{0.25, 0.5, 0.75})
	f.ValidMax = ScalarOf(Float, 1)
	require.NoError(t, p.AddVariable(f))

	flag, err := NewVariable("scene_type", Int8, []DimensionType{Time}, []int{3})
	require.NoError(t, err)
	copy(flag.Data.Int8(), []int8{0, 1, -1})
	require.NoError(t, flag.SetEnumeration([]string{"land", "sea"}))
	require.NoError(t, p.AddVariable(flag))

	n, err := NewVariable("orbit", Int16, nil, nil)
	require.NoError(t, err)
	n.Data.Int16()[0] = 1234
	require.NoError(t, p.AddVariable(n))

	id, err := NewVariable("pixel", Int32, []DimensionType{Time, Independent}, []int{3, 4})
	require.NoError(t, err)
	for i := range id.Data.Int32() {
		id.Data.Int32()[i] = int32(i * 1000000)
	}
	require.NoError(t, p.AddVariable(id))

	s, err := NewVariable("site", String, []DimensionType{Time}, []int{3})
	require.NoError(t, err)
	require.NoError(t, s.SetString(0, "Cabauw"))
	require.NoError(t, s.SetString(2, "De Bilt"))
	require.NoError(t, p.AddVariable(s))
	return p
}

func assertProductsEqual(t *testing.T, want, got *Product) {
	t.Helper()
	require.Len(t, got.Variables, len(want.Variables))
	assert.Equal(t, want.Dimension, got.Dimension)
	for i, w := range want.Variables {
		g := got.Variables[i]
		assert.Equal(t, w.Name, g.Name)
		assert.Equal(t, w.DataType, g.DataType, w.Name)
		assert.Equal(t, w.Dimension, g.Dimension, w.Name)
		assert.Equal(t, w.DimensionType, g.DimensionType, w.Name)
		assert.Equal(t, w.Unit, g.Unit, w.Name)
		assert.Equal(t, w.Description, g.Description, w.Name)
		assert.True(t, w.ValidMin.Equal(w.DataType, g.ValidMin), w.Name)
		assert.True(t, w.ValidMax.Equal(w.DataType, g.ValidMax), w.Name)
		assert.Equal(t, w.EnumName, g.EnumName, w.Name)
		assert.Equal(t, w.Checksum(), g.Checksum(), w.Name)
	}
}

func TestNetCDFRoundTrip(t *testing.T) {
	l := New()
	for _, ext := range []string{".nc", ".nc.gz", ".nc.zst", ".nc.lz4"} {
		t.Run(ext, func(t *testing.T) {
			want := testProduct(t)
			filename := filepath.Join(t.TempDir(), "product"+ext)
			require.NoError(t, l.Export(filename, "netcdf", want))

			got, err := l.Import(filename, "", "")
			require.NoError(t, err)
			defer got.Delete()
			assertProductsEqual(t, want, got)
			assert.Equal(t, "product"+ext, got.SourceProduct)
			assert.Equal(t, "created by test", got.History)
		})
	}
}

func TestNetCDFCompressionLevel(t *testing.T) {
	l := New()
	require.NoError(t, l.SetHDF5Compression(9))
	assert.Equal(t, 9, l.HDF5Compression())
	assert.Equal(t, ErrInvalidArgument, Errno(l.SetHDF5Compression(10)))

	filename := filepath.Join(t.TempDir(), "product.nc.gz")
	require.NoError(t, l.Export(filename, "", testProduct(t)))
	got, err := l.Import(filename, "", "compression=gzip")
	require.NoError(t, err)
	got.Delete()

	_, err = l.Import(filename, "", "compression=none")
	assert.Equal(t, ErrUnsupportedProduct, Errno(err), "gzip data read as plain netCDF")
}

func TestImportOperations(t *testing.T) {
	l := New()
	filename := filepath.Join(t.TempDir(), "product.nc")
	require.NoError(t, l.Export(filename, "netcdf", testProduct(t)))

	p, err := l.Import(filename, "cloud_fraction > 0.3; keep(cloud_fraction, datetime)", "")
	require.NoError(t, err)
	defer p.Delete()
	require.Len(t, p.Variables, 2)
	assert.Equal(t, 2, p.Dimension[Time])
	assert.Equal(t, []float64{2, 3}, p.Variables[0].Data.Double())
}

func TestImportErrors(t *testing.T) {
	l := New()
	dir := t.TempDir()
	_, err := l.Import(filepath.Join(dir, "missing.nc"), "", "")
	assert.Equal(t, ErrFileNotFound, Errno(err))

	filename := filepath.Join(dir, "product.nc")
	require.NoError(t, l.Export(filename, "netcdf", testProduct(t)))

	_, err = l.Import(filename, "", "compression")
	assert.Equal(t, ErrIngestionOptionSyntax, Errno(err))
	_, err = l.Import(filename, "", "color=red")
	assert.Equal(t, ErrInvalidIngestionOption, Errno(err))
	_, err = l.Import(filename, "", "compression=bzip2")
	assert.Equal(t, ErrInvalidIngestionOptValue, Errno(err))
	_, err = l.Import(filename, "keep(", "")
	assert.Equal(t, ErrOperationSyntax, Errno(err))

	text := filepath.Join(dir, "text.nc")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o644))
	_, err = l.Import(text, "", "")
	assert.Equal(t, ErrUnsupportedProduct, Errno(err))

	hdf4 := filepath.Join(dir, "product.hdf")
	require.NoError(t, os.WriteFile(hdf4, append(magicHDF4, 0, 0, 0, 0), 0o644))
	_, err = l.Import(hdf4, "", "")
	assert.Equal(t, ErrNoHDF4Support, Errno(err))
}

func TestExportErrors(t *testing.T) {
	l := New()
	dir := t.TempDir()
	p := testProduct(t)
	assert.Equal(t, ErrNoHDF4Support, Errno(l.Export(filepath.Join(dir, "x.hdf"), "hdf4", p)))
	assert.Equal(t, ErrNoHDF5Support, Errno(l.Export(filepath.Join(dir, "x.h5"), "hdf5", p)))
	assert.Equal(t, ErrInvalidFormat, Errno(l.Export(filepath.Join(dir, "x.csv"), "csv", p)))

	empty := NewProduct()
	require.NoError(t, empty.AddVariable(newTestVariable(t, "x", []DimensionType{Time}, []int{0})))
	filename := filepath.Join(dir, "empty.nc")
	assert.Equal(t, ErrExport, Errno(l.Export(filename, "netcdf", empty)))
	_, err := os.Stat(filename)
	assert.True(t, os.IsNotExist(err), "no file is left behind")
}

func TestImportMetadata(t *testing.T) {
	l := New()
	dir := t.TempDir()
	filename := filepath.Join(dir, "product.nc")
	p := testProduct(t)
	p.SourceProduct = "L2_input.nc"
	require.NoError(t, l.Export(filename, "netcdf", p))

	m, err := l.ImportMetadata(filename, "")
	require.NoError(t, err)
	assert.Equal(t, filename, m.Filename)
	assert.Equal(t, "netCDF", m.Format)
	assert.Equal(t, 1.0, m.DatetimeStart)
	assert.Equal(t, 3.0, m.DatetimeStop)
	assert.Equal(t, [NumDimensionTypes]int{3, 0, 0, 2, 0}, m.Dimension)
	assert.Equal(t, "L2_input.nc", m.SourceProduct)
	assert.Equal(t, "created by test", m.History)

	// Without datetime information the range is unbounded.
	q := NewProduct()
	require.NoError(t, q.AddVariable(newTestVariable(t, "x", []DimensionType{Time}, []int{1}, 1)))
	filename = filepath.Join(dir, "nodatetime.nc.zst")
	require.NoError(t, l.Export(filename, "netcdf", q))
	m, err = l.ImportMetadata(filename, "")
	require.NoError(t, err)
	assert.True(t, math.IsInf(m.DatetimeStart, -1))
	assert.True(t, math.IsInf(m.DatetimeStop, 1))
}
